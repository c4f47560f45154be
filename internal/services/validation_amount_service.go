package services

import (
	"context"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/resilience"
	"fintrack/internal/result"
	"fintrack/internal/storage"
)

// ValidationAmountService records balance checkpoints against accounts. Each
// checkpoint stamps the account's validation date.
type ValidationAmountService struct {
	validations storage.ValidationAmountRepository
	accounts    storage.AccountRepository
	exec        *resilience.Executor
	logger      *log.Logger
}

func NewValidationAmountService(
	validations storage.ValidationAmountRepository,
	accounts storage.AccountRepository,
	exec *resilience.Executor,
	logger *log.Logger,
) *ValidationAmountService {
	return &ValidationAmountService{
		validations: validations,
		accounts:    accounts,
		exec:        exec,
		logger:      logger.WithComponent(log.ComponentService),
	}
}

// Create records a checkpoint for the named account. A zero validation date
// defaults to now.
func (s *ValidationAmountService) Create(ctx context.Context, accountNameOwner string, v core.ValidationAmount) result.ServiceResult[core.ValidationAmount] {
	account, err := resilience.Execute(ctx, s.exec, "account.find", func(ctx context.Context) (*core.Account, error) {
		return s.accounts.FindByNameOwner(ctx, core.NormalizeName(accountNameOwner))
	})
	if err != nil {
		return result.Classify[core.ValidationAmount](err)
	}

	v.AccountID = account.AccountID
	v.ActiveStatus = true
	if v.ValidationDate.IsZero() {
		v.ValidationDate = time.Now()
	}
	if err := v.Validate(); err != nil {
		return result.Classify[core.ValidationAmount](err)
	}

	created, err := resilience.Execute(ctx, s.exec, "validation_amount.insert", func(ctx context.Context) (core.ValidationAmount, error) {
		return s.validations.InsertAndStamp(ctx, v)
	})
	if err != nil {
		return result.Classify[core.ValidationAmount](err)
	}

	s.logger.InfoContext(ctx, "validation amount recorded",
		log.FieldOperation, log.OpCreate,
		log.FieldAccount, account.NameOwner,
		log.FieldAmountCents, created.Amount.Cents,
		log.FieldState, string(created.State))
	return result.Success(created)
}

func (s *ValidationAmountService) ListByAccount(ctx context.Context, accountNameOwner string) result.ServiceResult[[]core.ValidationAmount] {
	account, err := resilience.Execute(ctx, s.exec, "account.find", func(ctx context.Context) (*core.Account, error) {
		return s.accounts.FindByNameOwner(ctx, core.NormalizeName(accountNameOwner))
	})
	if err != nil {
		return result.Classify[[]core.ValidationAmount](err)
	}

	validations, err := resilience.Execute(ctx, s.exec, "validation_amount.list", func(ctx context.Context) ([]core.ValidationAmount, error) {
		return s.validations.ListByAccount(ctx, account.AccountID)
	})
	if err != nil {
		return result.Classify[[]core.ValidationAmount](err)
	}
	return result.Success(validations)
}

// Latest returns the most recent checkpoint for the account and state.
func (s *ValidationAmountService) Latest(ctx context.Context, accountNameOwner string, state core.TransactionState) result.ServiceResult[core.ValidationAmount] {
	account, err := resilience.Execute(ctx, s.exec, "account.find", func(ctx context.Context) (*core.Account, error) {
		return s.accounts.FindByNameOwner(ctx, core.NormalizeName(accountNameOwner))
	})
	if err != nil {
		return result.Classify[core.ValidationAmount](err)
	}

	latest, err := resilience.Execute(ctx, s.exec, "validation_amount.latest", func(ctx context.Context) (*core.ValidationAmount, error) {
		return s.validations.LatestForAccount(ctx, account.AccountID, state)
	})
	if err != nil {
		return result.Classify[core.ValidationAmount](err)
	}
	return result.Success(*latest)
}
