// Package worker recomputes cached account totals from the transaction
// ledger. It reacts to transaction events from the queue and also runs a
// periodic full reconcile as a backstop for lost messages.
package worker

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/cache"
	"fintrack/internal/core"
	"fintrack/internal/export"
	"fintrack/internal/log"
	"fintrack/internal/services"
	"fintrack/internal/storage"
)

// Recalculator keeps the per-account total columns and the Redis totals cache
// consistent with the transaction table.
type Recalculator struct {
	accounts     storage.AccountRepository
	transactions storage.TransactionRepository
	totalsCache  *cache.Cache[core.Totals]
	exporter     *export.SheetsExporter
	interval     time.Duration
	logger       *log.Logger
}

func NewRecalculator(
	accounts storage.AccountRepository,
	transactions storage.TransactionRepository,
	totalsCache *cache.Cache[core.Totals],
	exporter *export.SheetsExporter,
	interval time.Duration,
	logger *log.Logger,
) *Recalculator {
	return &Recalculator{
		accounts:     accounts,
		transactions: transactions,
		totalsCache:  totalsCache,
		exporter:     exporter,
		interval:     interval,
		logger:       logger.WithComponent(log.ComponentWorker),
	}
}

// HandleEvent processes one transaction event: the account's totals are
// recounted and, for inserts, the transaction is exported. Returning an error
// requeues the event.
func (r *Recalculator) HandleEvent(event *amqp.TransactionEvent) error {
	ctx := context.Background()

	if err := r.RecountAccount(ctx, event.AccountNameOwner); err != nil {
		return fmt.Errorf("recount account %s: %w", event.AccountNameOwner, err)
	}

	if event.Operation == amqp.OperationInsert {
		if err := r.exportTransaction(ctx, event.GUID); err != nil {
			// Export is best effort; a failed append must not requeue the
			// event and recount the account forever.
			r.logger.ErrorContext(ctx, "transaction export failed",
				log.FieldError, err,
				log.FieldGUID, event.GUID)
		}
	}
	return nil
}

// RecountAccount recomputes one account's totals from its transactions and
// refreshes the cached entry.
func (r *Recalculator) RecountAccount(ctx context.Context, accountNameOwner string) error {
	sums, err := r.transactions.SumByStateForAccount(ctx, accountNameOwner)
	if err != nil {
		return fmt.Errorf("sum transactions: %w", err)
	}
	totals := core.TotalsFromStateSums(sums)

	if err := r.accounts.UpdateTotals(ctx, accountNameOwner, totals); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// The account was deleted after the event was published.
			r.logger.WarnContext(ctx, "skipping recount for missing account",
				log.FieldAccount, accountNameOwner)
			return nil
		}
		return fmt.Errorf("update totals: %w", err)
	}

	r.totalsCache.Invalidate(ctx, accountNameOwner, services.GrandTotalsKey)
	r.logger.InfoContext(ctx, "account totals recounted",
		log.FieldOperation, log.OpRecount,
		log.FieldAccount, accountNameOwner,
		log.FieldAmountCents, totals.GrandTotal.Cents)
	return nil
}

// RecountAll reconciles every active account. Per-account failures are logged
// and the sweep continues.
func (r *Recalculator) RecountAll(ctx context.Context) error {
	accounts, err := r.accounts.List(ctx, true)
	if err != nil {
		return fmt.Errorf("list accounts: %w", err)
	}

	for _, account := range accounts {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := r.RecountAccount(ctx, account.NameOwner); err != nil {
			r.logger.ErrorContext(ctx, "account recount failed",
				log.FieldError, err,
				log.FieldAccount, account.NameOwner)
		}
	}
	return nil
}

// Run performs an initial full reconcile and then repeats it on the
// configured interval until ctx is cancelled.
func (r *Recalculator) Run(ctx context.Context) error {
	r.logger.InfoContext(ctx, "recalculator started",
		log.FieldOperation, log.OpStartup,
		"interval", r.interval.String())

	if err := r.RecountAll(ctx); err != nil && !errors.Is(err, context.Canceled) {
		r.logger.ErrorContext(ctx, "initial reconcile failed", log.FieldError, err)
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.InfoContext(ctx, "recalculator stopped", log.FieldOperation, log.OpShutdown)
			return ctx.Err()
		case <-ticker.C:
			if err := r.RecountAll(ctx); err != nil && !errors.Is(err, context.Canceled) {
				r.logger.ErrorContext(ctx, "periodic reconcile failed", log.FieldError, err)
			}
		}
	}
}

func (r *Recalculator) exportTransaction(ctx context.Context, guid string) error {
	if r.exporter == nil {
		return nil
	}
	tr, err := r.transactions.FindByGUID(ctx, guid)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		return fmt.Errorf("find transaction: %w", err)
	}
	return r.exporter.AppendTransaction(ctx, *tr)
}
