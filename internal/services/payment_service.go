package services

import (
	"context"

	"github.com/google/uuid"

	"fintrack/internal/amqp"
	"fintrack/internal/cache"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/resilience"
	"fintrack/internal/result"
	"fintrack/internal/storage"
)

// DefaultPaymentAccountParameter names the runtime parameter holding the
// funding account used when a payment omits its source.
const DefaultPaymentAccountParameter = "payment_account"

// PaymentService settles credit accounts from a funding debit account. Each
// payment spawns two negative transactions, one per account, atomically.
type PaymentService struct {
	payments    storage.PaymentRepository
	accounts    storage.AccountRepository
	parameters  storage.ParameterRepository
	exec        *resilience.Executor
	amqpClient  *amqp.Client
	totalsCache *cache.Cache[core.Totals]
	logger      *log.Logger
}

func NewPaymentService(
	payments storage.PaymentRepository,
	accounts storage.AccountRepository,
	parameters storage.ParameterRepository,
	exec *resilience.Executor,
	amqpClient *amqp.Client,
	totalsCache *cache.Cache[core.Totals],
	logger *log.Logger,
) *PaymentService {
	return &PaymentService{
		payments:    payments,
		accounts:    accounts,
		parameters:  parameters,
		exec:        exec,
		amqpClient:  amqpClient,
		totalsCache: totalsCache,
		logger:      logger.WithComponent(log.ComponentService),
	}
}

func (s *PaymentService) Create(ctx context.Context, payment core.Payment) result.ServiceResult[core.Payment] {
	payment.SourceAccount = core.NormalizeName(payment.SourceAccount)
	payment.DestinationAccount = core.NormalizeName(payment.DestinationAccount)

	if payment.SourceAccount == "" {
		source, res := s.defaultSourceAccount(ctx)
		if !res.IsSuccess() {
			return result.Map(res, func(struct{}) core.Payment { return payment })
		}
		payment.SourceAccount = source
	}

	if err := payment.Validate(); err != nil {
		return result.Classify[core.Payment](err)
	}

	source, res := s.requireAccount(ctx, payment.SourceAccount)
	if !res.IsSuccess() {
		return result.Map(res, func(struct{}) core.Payment { return payment })
	}
	if source.AccountType != core.AccountTypeDebit {
		return result.Business[core.Payment](result.CodeInvalidAccountType,
			"source account "+source.NameOwner+" must be a debit account")
	}

	destination, res := s.requireAccount(ctx, payment.DestinationAccount)
	if !res.IsSuccess() {
		return result.Map(res, func(struct{}) core.Payment { return payment })
	}
	if destination.AccountType != core.AccountTypeCredit {
		return result.Business[core.Payment](result.CodeInvalidAccountType,
			"payment destination "+destination.NameOwner+" must be a credit account")
	}

	payment.GUIDSource = uuid.NewString()
	payment.GUIDDestination = uuid.NewString()
	payment.ActiveStatus = true

	sourceCents, destinationCents := core.PaymentEntryAmounts(payment.Amount)
	sourceEntry := paymentEntry(*source, payment, sourceCents, payment.GUIDSource)
	destinationEntry := paymentEntry(*destination, payment, destinationCents, payment.GUIDDestination)

	created, err := resilience.Execute(ctx, s.exec, "payment.insert", func(ctx context.Context) (core.Payment, error) {
		return s.payments.InsertWithEntries(ctx, payment, sourceEntry, destinationEntry)
	})
	if err != nil {
		return result.Classify[core.Payment](err)
	}

	s.afterEntries(ctx, created.GUIDSource, created.SourceAccount, amqp.OperationInsert)
	s.afterEntries(ctx, created.GUIDDestination, created.DestinationAccount, amqp.OperationInsert)
	s.logger.InfoContext(ctx, "payment created",
		log.FieldOperation, log.OpCreate,
		log.FieldAccount, created.DestinationAccount,
		log.FieldAmountCents, created.Amount.Cents)
	return result.Success(created)
}

func (s *PaymentService) Get(ctx context.Context, id int64) result.ServiceResult[core.Payment] {
	payment, err := resilience.Execute(ctx, s.exec, "payment.find", func(ctx context.Context) (*core.Payment, error) {
		return s.payments.FindByID(ctx, id)
	})
	if err != nil {
		return result.Classify[core.Payment](err)
	}
	return result.Success(*payment)
}

func (s *PaymentService) List(ctx context.Context) result.ServiceResult[[]core.Payment] {
	payments, err := resilience.Execute(ctx, s.exec, "payment.list", func(ctx context.Context) ([]core.Payment, error) {
		return s.payments.List(ctx)
	})
	if err != nil {
		return result.Classify[[]core.Payment](err)
	}
	return result.Success(payments)
}

// Delete removes a payment and soft-deletes its two transactions.
func (s *PaymentService) Delete(ctx context.Context, id int64) result.ServiceResult[struct{}] {
	payment, err := resilience.Execute(ctx, s.exec, "payment.find", func(ctx context.Context) (*core.Payment, error) {
		return s.payments.FindByID(ctx, id)
	})
	if err != nil {
		return result.Classify[struct{}](err)
	}

	_, err = resilience.Execute(ctx, s.exec, "payment.delete", func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.payments.DeleteWithEntries(ctx, id)
	})
	if err != nil {
		return result.Classify[struct{}](err)
	}

	s.afterEntries(ctx, payment.GUIDSource, payment.SourceAccount, amqp.OperationDelete)
	s.afterEntries(ctx, payment.GUIDDestination, payment.DestinationAccount, amqp.OperationDelete)
	return result.Success(struct{}{})
}

// defaultSourceAccount resolves the funding account from the payment_account
// parameter.
func (s *PaymentService) defaultSourceAccount(ctx context.Context) (string, result.ServiceResult[struct{}]) {
	parameter, err := resilience.Execute(ctx, s.exec, "parameter.find", func(ctx context.Context) (*core.Parameter, error) {
		return s.parameters.FindByName(ctx, DefaultPaymentAccountParameter)
	})
	if err != nil {
		if result.Classify[struct{}](err).Status() == result.StatusNotFound {
			return "", result.Business[struct{}](result.CodeMissingParameter,
				"parameter "+DefaultPaymentAccountParameter+" is not configured")
		}
		return "", result.Classify[struct{}](err)
	}
	return parameter.Value, result.Success(struct{}{})
}

func (s *PaymentService) requireAccount(ctx context.Context, nameOwner string) (*core.Account, result.ServiceResult[struct{}]) {
	account, err := resilience.Execute(ctx, s.exec, "account.find", func(ctx context.Context) (*core.Account, error) {
		return s.accounts.FindByNameOwner(ctx, nameOwner)
	})
	if err != nil {
		if result.Classify[struct{}](err).Status() == result.StatusNotFound {
			return nil, result.Business[struct{}](result.CodeAccountNotFound,
				"account "+nameOwner+" does not exist")
		}
		return nil, result.Classify[struct{}](err)
	}
	if !account.ActiveStatus {
		return nil, result.Business[struct{}](result.CodeAccountNotActive,
			"account "+nameOwner+" is not active")
	}
	return account, result.Success(struct{}{})
}

func (s *PaymentService) afterEntries(ctx context.Context, guid, accountNameOwner, operation string) {
	s.totalsCache.Invalidate(ctx, accountNameOwner, GrandTotalsKey)
	event := amqp.NewTransactionEvent(guid, accountNameOwner, operation)
	if err := s.amqpClient.PublishTransactionEvent(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish transaction event",
			log.FieldError, err,
			log.FieldGUID, guid,
			log.FieldAccount, accountNameOwner)
	}
}

func paymentEntry(account core.Account, payment core.Payment, amount core.Money, guid string) core.Transaction {
	return core.Transaction{
		GUID:             guid,
		AccountID:        account.AccountID,
		AccountNameOwner: account.NameOwner,
		AccountType:      account.AccountType,
		TransactionDate:  payment.TransactionDate,
		Description:      "payment",
		Category:         "bill_pay",
		Amount:           amount,
		State:            core.TransactionStateOutstanding,
		Type:             core.TransactionTypeTransfer,
		ReoccurringType:  core.ReoccurringOnetime,
		ActiveStatus:     true,
	}
}
