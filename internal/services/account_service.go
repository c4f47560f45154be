// Package services holds the business layer. Every operation returns a
// result.ServiceResult so callers switch on exactly one outcome variant, and
// every repository call runs under the resilience executor.
package services

import (
	"context"

	"fintrack/internal/cache"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/resilience"
	"fintrack/internal/result"
	"fintrack/internal/storage"
)

// GrandTotalsKey is the cache key for the all-accounts totals aggregate.
const GrandTotalsKey = "all"

// AccountService manages accounts and their per-state totals.
type AccountService struct {
	accounts     storage.AccountRepository
	transactions storage.TransactionRepository
	exec         *resilience.Executor
	totalsCache  *cache.Cache[core.Totals]
	logger       *log.Logger
}

func NewAccountService(
	accounts storage.AccountRepository,
	transactions storage.TransactionRepository,
	exec *resilience.Executor,
	totalsCache *cache.Cache[core.Totals],
	logger *log.Logger,
) *AccountService {
	return &AccountService{
		accounts:     accounts,
		transactions: transactions,
		exec:         exec,
		totalsCache:  totalsCache,
		logger:       logger.WithComponent(log.ComponentService),
	}
}

func (s *AccountService) Create(ctx context.Context, account core.Account) result.ServiceResult[core.Account] {
	account.NameOwner = core.NormalizeName(account.NameOwner)
	account.ActiveStatus = true
	if account.Moniker == "" {
		account.Moniker = "0000"
	}
	if err := account.Validate(); err != nil {
		return result.Classify[core.Account](err)
	}

	created, err := resilience.Execute(ctx, s.exec, "account.insert", func(ctx context.Context) (core.Account, error) {
		return s.accounts.Insert(ctx, account)
	})
	if err != nil {
		return result.Classify[core.Account](err)
	}

	s.logger.InfoContext(ctx, "account created",
		log.FieldOperation, log.OpCreate, log.FieldAccount, created.NameOwner)
	return result.Success(created)
}

func (s *AccountService) Get(ctx context.Context, nameOwner string) result.ServiceResult[core.Account] {
	account, err := resilience.Execute(ctx, s.exec, "account.find", func(ctx context.Context) (*core.Account, error) {
		return s.accounts.FindByNameOwner(ctx, nameOwner)
	})
	if err != nil {
		return result.Classify[core.Account](err)
	}
	return result.Success(*account)
}

func (s *AccountService) List(ctx context.Context, activeOnly bool) result.ServiceResult[[]core.Account] {
	accounts, err := resilience.Execute(ctx, s.exec, "account.list", func(ctx context.Context) ([]core.Account, error) {
		return s.accounts.List(ctx, activeOnly)
	})
	if err != nil {
		return result.Classify[[]core.Account](err)
	}
	return result.Success(accounts)
}

func (s *AccountService) Update(ctx context.Context, account core.Account) result.ServiceResult[core.Account] {
	account.NameOwner = core.NormalizeName(account.NameOwner)
	if err := account.Validate(); err != nil {
		return result.Classify[core.Account](err)
	}

	_, err := resilience.Execute(ctx, s.exec, "account.update", func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.accounts.Update(ctx, account)
	})
	if err != nil {
		return result.Classify[core.Account](err)
	}
	return s.Get(ctx, account.NameOwner)
}

// Rename changes the account's name-owner, cascading to the denormalized
// column on its transactions.
func (s *AccountService) Rename(ctx context.Context, oldName, newName string) result.ServiceResult[core.Account] {
	newName = core.NormalizeName(newName)
	if !core.ValidAccountNameOwner(newName) {
		return result.Validation[core.Account](core.ValidationErrors{
			"accountNameOwner": "must be lowercase letters, digits and single underscores",
		})
	}

	_, err := resilience.Execute(ctx, s.exec, "account.rename", func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.accounts.Rename(ctx, oldName, newName)
	})
	if err != nil {
		return result.Classify[core.Account](err)
	}

	s.invalidateTotals(ctx, oldName, newName)
	s.logger.InfoContext(ctx, "account renamed",
		log.FieldOperation, log.OpUpdate, log.FieldAccount, newName, "previous_name", oldName)
	return s.Get(ctx, newName)
}

// Deactivate soft-closes an account; its transactions stay on the books.
func (s *AccountService) Deactivate(ctx context.Context, nameOwner string) result.ServiceResult[struct{}] {
	_, err := resilience.Execute(ctx, s.exec, "account.deactivate", func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.accounts.SetActiveStatus(ctx, nameOwner, false)
	})
	if err != nil {
		return result.Classify[struct{}](err)
	}
	return result.Success(struct{}{})
}

func (s *AccountService) Delete(ctx context.Context, nameOwner string) result.ServiceResult[struct{}] {
	_, err := resilience.Execute(ctx, s.exec, "account.delete", func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.accounts.Delete(ctx, nameOwner)
	})
	if err != nil {
		return result.Classify[struct{}](err)
	}
	s.invalidateTotals(ctx, nameOwner)
	return result.Success(struct{}{})
}

// Totals aggregates the account's active transactions by state, reading
// through the cache when one is configured.
func (s *AccountService) Totals(ctx context.Context, nameOwner string) result.ServiceResult[core.Totals] {
	if totals, ok := s.totalsCache.Get(ctx, nameOwner); ok {
		return result.Success(totals)
	}

	if _, err := resilience.Execute(ctx, s.exec, "account.find", func(ctx context.Context) (*core.Account, error) {
		return s.accounts.FindByNameOwner(ctx, nameOwner)
	}); err != nil {
		return result.Classify[core.Totals](err)
	}

	sums, err := resilience.Execute(ctx, s.exec, "account.totals", func(ctx context.Context) (map[core.TransactionState]int64, error) {
		return s.transactions.SumByStateForAccount(ctx, nameOwner)
	})
	if err != nil {
		return result.Classify[core.Totals](err)
	}

	totals := core.TotalsFromStateSums(sums)
	s.totalsCache.Set(ctx, nameOwner, totals)
	return result.Success(totals)
}

// GrandTotals aggregates every active transaction by state across all
// accounts.
func (s *AccountService) GrandTotals(ctx context.Context) result.ServiceResult[core.Totals] {
	if totals, ok := s.totalsCache.Get(ctx, GrandTotalsKey); ok {
		return result.Success(totals)
	}

	sums, err := resilience.Execute(ctx, s.exec, "account.grand_totals", func(ctx context.Context) (map[core.TransactionState]int64, error) {
		return s.transactions.SumByState(ctx)
	})
	if err != nil {
		return result.Classify[core.Totals](err)
	}

	totals := core.TotalsFromStateSums(sums)
	s.totalsCache.Set(ctx, GrandTotalsKey, totals)
	return result.Success(totals)
}

func (s *AccountService) invalidateTotals(ctx context.Context, accounts ...string) {
	s.totalsCache.Invalidate(ctx, append(accounts, GrandTotalsKey)...)
}
