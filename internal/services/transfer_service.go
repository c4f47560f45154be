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

// TransferService moves funds between two debit accounts, spawning a negative
// entry on the source and a positive entry on the destination.
type TransferService struct {
	transfers   storage.TransferRepository
	accounts    storage.AccountRepository
	exec        *resilience.Executor
	amqpClient  *amqp.Client
	totalsCache *cache.Cache[core.Totals]
	logger      *log.Logger
}

func NewTransferService(
	transfers storage.TransferRepository,
	accounts storage.AccountRepository,
	exec *resilience.Executor,
	amqpClient *amqp.Client,
	totalsCache *cache.Cache[core.Totals],
	logger *log.Logger,
) *TransferService {
	return &TransferService{
		transfers:   transfers,
		accounts:    accounts,
		exec:        exec,
		amqpClient:  amqpClient,
		totalsCache: totalsCache,
		logger:      logger.WithComponent(log.ComponentService),
	}
}

func (s *TransferService) Create(ctx context.Context, transfer core.Transfer) result.ServiceResult[core.Transfer] {
	transfer.SourceAccount = core.NormalizeName(transfer.SourceAccount)
	transfer.DestinationAccount = core.NormalizeName(transfer.DestinationAccount)
	if err := transfer.Validate(); err != nil {
		return result.Classify[core.Transfer](err)
	}

	source, res := s.requireDebitAccount(ctx, transfer.SourceAccount)
	if !res.IsSuccess() {
		return result.Map(res, func(struct{}) core.Transfer { return transfer })
	}
	destination, res := s.requireDebitAccount(ctx, transfer.DestinationAccount)
	if !res.IsSuccess() {
		return result.Map(res, func(struct{}) core.Transfer { return transfer })
	}

	transfer.GUIDSource = uuid.NewString()
	transfer.GUIDDestination = uuid.NewString()
	transfer.ActiveStatus = true

	sourceCents, destinationCents := core.TransferEntryAmounts(transfer.Amount)
	sourceEntry := transferEntry(*source, transfer, sourceCents, transfer.GUIDSource)
	destinationEntry := transferEntry(*destination, transfer, destinationCents, transfer.GUIDDestination)

	created, err := resilience.Execute(ctx, s.exec, "transfer.insert", func(ctx context.Context) (core.Transfer, error) {
		return s.transfers.InsertWithEntries(ctx, transfer, sourceEntry, destinationEntry)
	})
	if err != nil {
		return result.Classify[core.Transfer](err)
	}

	s.afterEntries(ctx, created.GUIDSource, created.SourceAccount, amqp.OperationInsert)
	s.afterEntries(ctx, created.GUIDDestination, created.DestinationAccount, amqp.OperationInsert)
	s.logger.InfoContext(ctx, "transfer created",
		log.FieldOperation, log.OpCreate,
		log.FieldAccount, created.SourceAccount,
		log.FieldAmountCents, created.Amount.Cents)
	return result.Success(created)
}

func (s *TransferService) Get(ctx context.Context, id int64) result.ServiceResult[core.Transfer] {
	transfer, err := resilience.Execute(ctx, s.exec, "transfer.find", func(ctx context.Context) (*core.Transfer, error) {
		return s.transfers.FindByID(ctx, id)
	})
	if err != nil {
		return result.Classify[core.Transfer](err)
	}
	return result.Success(*transfer)
}

func (s *TransferService) List(ctx context.Context) result.ServiceResult[[]core.Transfer] {
	transfers, err := resilience.Execute(ctx, s.exec, "transfer.list", func(ctx context.Context) ([]core.Transfer, error) {
		return s.transfers.List(ctx)
	})
	if err != nil {
		return result.Classify[[]core.Transfer](err)
	}
	return result.Success(transfers)
}

// Delete removes a transfer and soft-deletes its two transactions.
func (s *TransferService) Delete(ctx context.Context, id int64) result.ServiceResult[struct{}] {
	transfer, err := resilience.Execute(ctx, s.exec, "transfer.find", func(ctx context.Context) (*core.Transfer, error) {
		return s.transfers.FindByID(ctx, id)
	})
	if err != nil {
		return result.Classify[struct{}](err)
	}

	_, err = resilience.Execute(ctx, s.exec, "transfer.delete", func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.transfers.DeleteWithEntries(ctx, id)
	})
	if err != nil {
		return result.Classify[struct{}](err)
	}

	s.afterEntries(ctx, transfer.GUIDSource, transfer.SourceAccount, amqp.OperationDelete)
	s.afterEntries(ctx, transfer.GUIDDestination, transfer.DestinationAccount, amqp.OperationDelete)
	return result.Success(struct{}{})
}

func (s *TransferService) requireDebitAccount(ctx context.Context, nameOwner string) (*core.Account, result.ServiceResult[struct{}]) {
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
	if account.AccountType != core.AccountTypeDebit {
		return nil, result.Business[struct{}](result.CodeInvalidAccountType,
			"transfers run between debit accounts; "+nameOwner+" is "+string(account.AccountType))
	}
	return account, result.Success(struct{}{})
}

func (s *TransferService) afterEntries(ctx context.Context, guid, accountNameOwner, operation string) {
	s.totalsCache.Invalidate(ctx, accountNameOwner, GrandTotalsKey)
	event := amqp.NewTransactionEvent(guid, accountNameOwner, operation)
	if err := s.amqpClient.PublishTransactionEvent(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish transaction event",
			log.FieldError, err,
			log.FieldGUID, guid,
			log.FieldAccount, accountNameOwner)
	}
}

func transferEntry(account core.Account, transfer core.Transfer, amount core.Money, guid string) core.Transaction {
	return core.Transaction{
		GUID:             guid,
		AccountID:        account.AccountID,
		AccountNameOwner: account.NameOwner,
		AccountType:      account.AccountType,
		TransactionDate:  transfer.TransactionDate,
		Description:      "transfer",
		Category:         "transfer",
		Amount:           amount,
		State:            core.TransactionStateOutstanding,
		Type:             core.TransactionTypeTransfer,
		ReoccurringType:  core.ReoccurringOnetime,
		ActiveStatus:     true,
	}
}
