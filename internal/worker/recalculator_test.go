package worker

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/storage"
)

func newTestRecalculator(t *testing.T) (*Recalculator, storage.AccountRepository, storage.TransactionRepository) {
	t.Helper()

	store, err := storage.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	accounts := storage.NewAccountRepository(store)
	transactions := storage.NewTransactionRepository(store)
	logger := log.New(log.DefaultConfig())

	return NewRecalculator(accounts, transactions, nil, nil, time.Minute, logger), accounts, transactions
}

func seedAccount(t *testing.T, accounts storage.AccountRepository, name string) core.Account {
	t.Helper()
	account, err := accounts.Insert(context.Background(), core.Account{
		NameOwner:    name,
		AccountType:  core.AccountTypeDebit,
		ActiveStatus: true,
		Moniker:      "0000",
	})
	require.NoError(t, err)
	return account
}

func seedTransaction(t *testing.T, transactions storage.TransactionRepository, account core.Account, guid string, cents int64, state core.TransactionState) {
	t.Helper()
	_, err := transactions.Insert(context.Background(), core.Transaction{
		GUID:             guid,
		AccountID:        account.AccountID,
		AccountNameOwner: account.NameOwner,
		AccountType:      account.AccountType,
		TransactionDate:  time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		Description:      "grocery store",
		Category:         "groceries",
		Amount:           core.Money{Cents: cents},
		State:            state,
		Type:             core.TransactionTypeExpense,
		ReoccurringType:  core.ReoccurringOnetime,
		ActiveStatus:     true,
	})
	require.NoError(t, err)
}

func TestRecountAccount(t *testing.T) {
	r, accounts, transactions := newTestRecalculator(t)
	ctx := context.Background()

	account := seedAccount(t, accounts, "boa_brian")
	seedTransaction(t, transactions, account, "11111111-1111-1111-1111-111111111111", -2500, core.TransactionStateOutstanding)
	seedTransaction(t, transactions, account, "22222222-2222-2222-2222-222222222222", -1500, core.TransactionStateCleared)

	// Corrupt the cached columns, then recount.
	require.NoError(t, accounts.UpdateTotals(ctx, "boa_brian", core.Totals{
		Cleared: core.Money{Cents: 999999},
	}))

	require.NoError(t, r.RecountAccount(ctx, "boa_brian"))

	fixed, err := accounts.FindByNameOwner(ctx, "boa_brian")
	require.NoError(t, err)
	assert.Equal(t, int64(-2500), fixed.Outstanding.Cents)
	assert.Equal(t, int64(-1500), fixed.Cleared.Cents)
	assert.Zero(t, fixed.Future.Cents)
}

func TestRecountAccountMissingIsSkipped(t *testing.T) {
	r, _, _ := newTestRecalculator(t)

	assert.NoError(t, r.RecountAccount(context.Background(), "missing_account"))
}

func TestHandleEventRecounts(t *testing.T) {
	r, accounts, transactions := newTestRecalculator(t)
	ctx := context.Background()

	account := seedAccount(t, accounts, "boa_brian")
	seedTransaction(t, transactions, account, "11111111-1111-1111-1111-111111111111", -2500, core.TransactionStateOutstanding)

	event := amqp.NewTransactionEvent("11111111-1111-1111-1111-111111111111", "boa_brian", amqp.OperationInsert)
	require.NoError(t, r.HandleEvent(event))

	fixed, err := accounts.FindByNameOwner(ctx, "boa_brian")
	require.NoError(t, err)
	assert.Equal(t, int64(-2500), fixed.Outstanding.Cents)
}

func TestRecountAll(t *testing.T) {
	r, accounts, transactions := newTestRecalculator(t)
	ctx := context.Background()

	first := seedAccount(t, accounts, "boa_brian")
	second := seedAccount(t, accounts, "savings_brian")
	seedTransaction(t, transactions, first, "11111111-1111-1111-1111-111111111111", -2500, core.TransactionStateOutstanding)
	seedTransaction(t, transactions, second, "22222222-2222-2222-2222-222222222222", 10000, core.TransactionStateCleared)

	require.NoError(t, r.RecountAll(ctx))

	a, err := accounts.FindByNameOwner(ctx, "boa_brian")
	require.NoError(t, err)
	assert.Equal(t, int64(-2500), a.Outstanding.Cents)

	b, err := accounts.FindByNameOwner(ctx, "savings_brian")
	require.NoError(t, err)
	assert.Equal(t, int64(10000), b.Cleared.Cents)
}
