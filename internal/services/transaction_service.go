package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"fintrack/internal/amqp"
	"fintrack/internal/cache"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/resilience"
	"fintrack/internal/result"
	"fintrack/internal/storage"
)

// TransactionService manages the transaction ledger. Every mutation publishes
// a transaction event so the worker refreshes the affected account's cached
// totals; a publish failure is logged and never fails the request.
type TransactionService struct {
	transactions storage.TransactionRepository
	accounts     storage.AccountRepository
	exec         *resilience.Executor
	amqpClient   *amqp.Client
	totalsCache  *cache.Cache[core.Totals]
	logger       *log.Logger
}

func NewTransactionService(
	transactions storage.TransactionRepository,
	accounts storage.AccountRepository,
	exec *resilience.Executor,
	amqpClient *amqp.Client,
	totalsCache *cache.Cache[core.Totals],
	logger *log.Logger,
) *TransactionService {
	return &TransactionService{
		transactions: transactions,
		accounts:     accounts,
		exec:         exec,
		amqpClient:   amqpClient,
		totalsCache:  totalsCache,
		logger:       logger.WithComponent(log.ComponentService),
	}
}

func (s *TransactionService) Create(ctx context.Context, tr core.Transaction) result.ServiceResult[core.Transaction] {
	tr.Normalize()
	if tr.GUID == "" {
		tr.GUID = uuid.NewString()
	}
	tr.ActiveStatus = true
	if err := tr.Validate(); err != nil {
		return result.Classify[core.Transaction](err)
	}
	if err := checkStateForDate(tr.TransactionDate, tr.State); err != nil {
		return result.Classify[core.Transaction](err)
	}

	account, res := s.requireAccount(ctx, tr.AccountNameOwner)
	if !res.IsSuccess() {
		return res
	}
	tr.AccountID = account.AccountID
	tr.AccountType = account.AccountType

	created, err := resilience.Execute(ctx, s.exec, "transaction.insert", func(ctx context.Context) (core.Transaction, error) {
		return s.transactions.Insert(ctx, tr)
	})
	if err != nil {
		return result.Classify[core.Transaction](err)
	}

	s.afterMutation(ctx, created.GUID, created.AccountNameOwner, amqp.OperationInsert)
	return result.Success(created)
}

func (s *TransactionService) Get(ctx context.Context, guid string) result.ServiceResult[core.Transaction] {
	tr, err := resilience.Execute(ctx, s.exec, "transaction.find", func(ctx context.Context) (*core.Transaction, error) {
		return s.transactions.FindByGUID(ctx, guid)
	})
	if err != nil {
		return result.Classify[core.Transaction](err)
	}
	return result.Success(*tr)
}

func (s *TransactionService) ListByAccount(ctx context.Context, accountNameOwner string) result.ServiceResult[[]core.Transaction] {
	transactions, err := resilience.Execute(ctx, s.exec, "transaction.list", func(ctx context.Context) ([]core.Transaction, error) {
		return s.transactions.ListByAccount(ctx, accountNameOwner)
	})
	if err != nil {
		return result.Classify[[]core.Transaction](err)
	}
	return result.Success(transactions)
}

func (s *TransactionService) Update(ctx context.Context, tr core.Transaction) result.ServiceResult[core.Transaction] {
	tr.Normalize()
	if err := tr.Validate(); err != nil {
		return result.Classify[core.Transaction](err)
	}
	if err := checkStateForDate(tr.TransactionDate, tr.State); err != nil {
		return result.Classify[core.Transaction](err)
	}

	_, err := resilience.Execute(ctx, s.exec, "transaction.update", func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.transactions.Update(ctx, tr)
	})
	if err != nil {
		return result.Classify[core.Transaction](err)
	}

	s.afterMutation(ctx, tr.GUID, tr.AccountNameOwner, amqp.OperationUpdate)
	return s.Get(ctx, tr.GUID)
}

// UpdateState moves a transaction to a new lifecycle state. A future-dated
// transaction cannot be marked cleared.
func (s *TransactionService) UpdateState(ctx context.Context, guid string, state core.TransactionState) result.ServiceResult[core.Transaction] {
	if !state.Valid() {
		return result.Validation[core.Transaction](core.ValidationErrors{
			"transactionState": "must be cleared, outstanding, future or undefined",
		})
	}

	current, err := resilience.Execute(ctx, s.exec, "transaction.find", func(ctx context.Context) (*core.Transaction, error) {
		return s.transactions.FindByGUID(ctx, guid)
	})
	if err != nil {
		return result.Classify[core.Transaction](err)
	}
	if err := checkStateForDate(current.TransactionDate, state); err != nil {
		return result.Classify[core.Transaction](err)
	}

	_, err = resilience.Execute(ctx, s.exec, "transaction.update_state", func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.transactions.UpdateStateByGUID(ctx, guid, state)
	})
	if err != nil {
		return result.Classify[core.Transaction](err)
	}

	s.afterMutation(ctx, guid, current.AccountNameOwner, amqp.OperationUpdate)
	return s.Get(ctx, guid)
}

// Delete soft-deletes a transaction; the row stays for audit but drops out of
// listings and totals.
func (s *TransactionService) Delete(ctx context.Context, guid string) result.ServiceResult[struct{}] {
	current, err := resilience.Execute(ctx, s.exec, "transaction.find", func(ctx context.Context) (*core.Transaction, error) {
		return s.transactions.FindByGUID(ctx, guid)
	})
	if err != nil {
		return result.Classify[struct{}](err)
	}

	_, err = resilience.Execute(ctx, s.exec, "transaction.delete", func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.transactions.SoftDeleteByGUID(ctx, guid)
	})
	if err != nil {
		return result.Classify[struct{}](err)
	}

	s.afterMutation(ctx, guid, current.AccountNameOwner, amqp.OperationDelete)
	return result.Success(struct{}{})
}

// MoveToAccount repoints a transaction at another active account.
func (s *TransactionService) MoveToAccount(ctx context.Context, guid, accountNameOwner string) result.ServiceResult[core.Transaction] {
	current, err := resilience.Execute(ctx, s.exec, "transaction.find", func(ctx context.Context) (*core.Transaction, error) {
		return s.transactions.FindByGUID(ctx, guid)
	})
	if err != nil {
		return result.Classify[core.Transaction](err)
	}

	target, res := s.requireAccount(ctx, accountNameOwner)
	if !res.IsSuccess() {
		return res
	}

	_, err = resilience.Execute(ctx, s.exec, "transaction.move", func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.transactions.MoveToAccount(ctx, guid, *target)
	})
	if err != nil {
		return result.Classify[core.Transaction](err)
	}

	// Both the old and the new account totals change.
	s.afterMutation(ctx, guid, current.AccountNameOwner, amqp.OperationUpdate)
	s.afterMutation(ctx, guid, target.NameOwner, amqp.OperationUpdate)
	return s.Get(ctx, guid)
}

// requireAccount resolves an active account for a transaction to land on. A
// missing or closed account is a business rule violation, not a lookup miss.
func (s *TransactionService) requireAccount(ctx context.Context, nameOwner string) (*core.Account, result.ServiceResult[core.Transaction]) {
	account, err := resilience.Execute(ctx, s.exec, "account.find", func(ctx context.Context) (*core.Account, error) {
		return s.accounts.FindByNameOwner(ctx, nameOwner)
	})
	if err != nil {
		if result.Classify[core.Transaction](err).Status() == result.StatusNotFound {
			return nil, result.Business[core.Transaction](result.CodeAccountNotFound,
				"account "+nameOwner+" does not exist")
		}
		return nil, result.Classify[core.Transaction](err)
	}
	if !account.ActiveStatus {
		return nil, result.Business[core.Transaction](result.CodeAccountNotActive,
			"account "+nameOwner+" is not active")
	}
	return account, result.Success(core.Transaction{})
}

// afterMutation invalidates cached totals and publishes the event feeding the
// totals worker.
func (s *TransactionService) afterMutation(ctx context.Context, guid, accountNameOwner, operation string) {
	s.totalsCache.Invalidate(ctx, accountNameOwner, GrandTotalsKey)

	event := amqp.NewTransactionEvent(guid, accountNameOwner, operation)
	if err := s.amqpClient.PublishTransactionEvent(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish transaction event",
			log.FieldError, err,
			log.FieldGUID, guid,
			log.FieldAccount, accountNameOwner,
			log.FieldOperation, operation)
	}
}

// checkStateForDate rejects marking a future-dated transaction cleared.
func checkStateForDate(date time.Time, state core.TransactionState) error {
	if state == core.TransactionStateCleared && date.After(time.Now()) {
		return result.NewBusinessError(result.CodeInvalidStateTransition,
			"a future-dated transaction cannot be cleared")
	}
	return nil
}
