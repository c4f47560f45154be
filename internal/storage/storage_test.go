package storage

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/core"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func insertTestAccount(t *testing.T, store *Store, name string, accountType core.AccountType) core.Account {
	t.Helper()
	account, err := NewAccountRepository(store).Insert(context.Background(), core.Account{
		NameOwner:    name,
		AccountType:  accountType,
		ActiveStatus: true,
		Moniker:      "0000",
	})
	require.NoError(t, err)
	return account
}

func testTransaction(account core.Account, cents int64, state core.TransactionState) core.Transaction {
	return core.Transaction{
		GUID:             uuid.NewString(),
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
	}
}

func TestAccountRepositoryRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	repo := NewAccountRepository(store)

	inserted := insertTestAccount(t, store, "chase_brian", core.AccountTypeCredit)
	assert.NotZero(t, inserted.AccountID)

	found, err := repo.FindByNameOwner(ctx, "chase_brian")
	require.NoError(t, err)
	assert.Equal(t, core.AccountTypeCredit, found.AccountType)
	assert.True(t, found.ActiveStatus)
	assert.Zero(t, found.Cleared.Cents)

	err = repo.UpdateTotals(ctx, "chase_brian", core.Totals{
		Future:      core.Money{Cents: 1000},
		Cleared:     core.Money{Cents: -2550},
		Outstanding: core.Money{Cents: 300},
	})
	require.NoError(t, err)

	found, err = repo.FindByNameOwner(ctx, "chase_brian")
	require.NoError(t, err)
	assert.Equal(t, int64(1000), found.Future.Cents)
	assert.Equal(t, int64(-2550), found.Cleared.Cents)
	assert.Equal(t, int64(300), found.Outstanding.Cents)
}

func TestAccountRepositoryNotFound(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	repo := NewAccountRepository(store)

	_, err := repo.FindByNameOwner(ctx, "missing_account")
	assert.ErrorIs(t, err, sql.ErrNoRows)

	err = repo.SetActiveStatus(ctx, "missing_account", false)
	assert.ErrorIs(t, err, sql.ErrNoRows)

	err = repo.Delete(ctx, "missing_account")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestAccountRepositoryDuplicateName(t *testing.T) {
	store := newTestStore(t)
	repo := NewAccountRepository(store)

	insertTestAccount(t, store, "chase_brian", core.AccountTypeCredit)
	_, err := repo.Insert(context.Background(), core.Account{
		NameOwner:    "chase_brian",
		AccountType:  core.AccountTypeDebit,
		ActiveStatus: true,
		Moniker:      "0000",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "UNIQUE")
}

func TestAccountRepositoryRenameCascades(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	accounts := NewAccountRepository(store)
	transactions := NewTransactionRepository(store)

	account := insertTestAccount(t, store, "old_name", core.AccountTypeDebit)
	_, err := transactions.Insert(ctx, testTransaction(account, -500, core.TransactionStateCleared))
	require.NoError(t, err)

	require.NoError(t, accounts.Rename(ctx, "old_name", "new_name"))

	_, err = accounts.FindByNameOwner(ctx, "old_name")
	assert.ErrorIs(t, err, sql.ErrNoRows)

	listed, err := transactions.ListByAccount(ctx, "new_name")
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "new_name", listed[0].AccountNameOwner)
}

func TestTransactionRepositorySumByState(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	transactions := NewTransactionRepository(store)

	account := insertTestAccount(t, store, "checking_brian", core.AccountTypeDebit)
	other := insertTestAccount(t, store, "savings_brian", core.AccountTypeDebit)

	for _, tr := range []core.Transaction{
		testTransaction(account, -1000, core.TransactionStateCleared),
		testTransaction(account, -250, core.TransactionStateCleared),
		testTransaction(account, -400, core.TransactionStateOutstanding),
		testTransaction(account, -9900, core.TransactionStateFuture),
		testTransaction(other, -7777, core.TransactionStateCleared),
	} {
		_, err := transactions.Insert(ctx, tr)
		require.NoError(t, err)
	}

	// Soft-deleted rows must not count.
	deleted := testTransaction(account, -123456, core.TransactionStateCleared)
	_, err := transactions.Insert(ctx, deleted)
	require.NoError(t, err)
	require.NoError(t, transactions.SoftDeleteByGUID(ctx, deleted.GUID))

	sums, err := transactions.SumByStateForAccount(ctx, "checking_brian")
	require.NoError(t, err)
	assert.Equal(t, int64(-1250), sums[core.TransactionStateCleared])
	assert.Equal(t, int64(-400), sums[core.TransactionStateOutstanding])
	assert.Equal(t, int64(-9900), sums[core.TransactionStateFuture])

	all, err := transactions.SumByState(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(-9027), all[core.TransactionStateCleared])
}

func TestTransactionRepositoryUpdateState(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	transactions := NewTransactionRepository(store)

	account := insertTestAccount(t, store, "checking_brian", core.AccountTypeDebit)
	tr := testTransaction(account, -500, core.TransactionStateOutstanding)
	_, err := transactions.Insert(ctx, tr)
	require.NoError(t, err)

	require.NoError(t, transactions.UpdateStateByGUID(ctx, tr.GUID, core.TransactionStateCleared))

	found, err := transactions.FindByGUID(ctx, tr.GUID)
	require.NoError(t, err)
	assert.Equal(t, core.TransactionStateCleared, found.State)

	err = transactions.UpdateStateByGUID(ctx, uuid.NewString(), core.TransactionStateCleared)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestCategoryRepositoryMerge(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	categories := NewCategoryRepository(store)
	transactions := NewTransactionRepository(store)

	account := insertTestAccount(t, store, "checking_brian", core.AccountTypeDebit)
	for _, name := range []string{"grocery", "groceries"} {
		_, err := categories.Insert(ctx, core.Category{Name: name, ActiveStatus: true})
		require.NoError(t, err)
	}
	for i := 0; i < 3; i++ {
		tr := testTransaction(account, -100, core.TransactionStateCleared)
		tr.Category = "grocery"
		_, err := transactions.Insert(ctx, tr)
		require.NoError(t, err)
	}

	reassigned, err := categories.Merge(ctx, "grocery", "groceries")
	require.NoError(t, err)
	assert.Equal(t, int64(3), reassigned)

	source, err := categories.FindByName(ctx, "grocery")
	require.NoError(t, err)
	assert.False(t, source.ActiveStatus)

	target, err := categories.FindByName(ctx, "groceries")
	require.NoError(t, err)
	assert.Equal(t, int64(3), target.Count)

	listed, err := categories.List(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "groceries", listed[0].Name)
}

func TestDescriptionRepositoryMergeMissingSource(t *testing.T) {
	store := newTestStore(t)
	descriptions := NewDescriptionRepository(store)

	_, err := descriptions.Insert(context.Background(), core.Description{Name: "amazon", ActiveStatus: true})
	require.NoError(t, err)

	_, err = descriptions.Merge(context.Background(), "amazn", "amazon")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestPaymentRepositoryDoubleEntry(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	payments := NewPaymentRepository(store)
	transactions := NewTransactionRepository(store)

	source := insertTestAccount(t, store, "checking_brian", core.AccountTypeDebit)
	destination := insertTestAccount(t, store, "visa_brian", core.AccountTypeCredit)

	payment := core.Payment{
		SourceAccount:      source.NameOwner,
		DestinationAccount: destination.NameOwner,
		TransactionDate:    time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		Amount:             core.Money{Cents: 5000},
		GUIDSource:         uuid.NewString(),
		GUIDDestination:    uuid.NewString(),
		ActiveStatus:       true,
	}
	sourceEntry := testTransaction(source, -5000, core.TransactionStateOutstanding)
	sourceEntry.GUID = payment.GUIDSource
	destEntry := testTransaction(destination, -5000, core.TransactionStateOutstanding)
	destEntry.GUID = payment.GUIDDestination

	inserted, err := payments.InsertWithEntries(ctx, payment, sourceEntry, destEntry)
	require.NoError(t, err)
	assert.NotZero(t, inserted.PaymentID)

	for _, guid := range []string{payment.GUIDSource, payment.GUIDDestination} {
		entry, err := transactions.FindByGUID(ctx, guid)
		require.NoError(t, err)
		assert.Equal(t, int64(-5000), entry.Amount.Cents)
		assert.True(t, entry.ActiveStatus)
	}

	require.NoError(t, payments.DeleteWithEntries(ctx, inserted.PaymentID))

	_, err = payments.FindByID(ctx, inserted.PaymentID)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	for _, guid := range []string{payment.GUIDSource, payment.GUIDDestination} {
		entry, err := transactions.FindByGUID(ctx, guid)
		require.NoError(t, err)
		assert.False(t, entry.ActiveStatus)
	}
}

func TestPaymentRepositoryDuplicate(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	payments := NewPaymentRepository(store)

	source := insertTestAccount(t, store, "checking_brian", core.AccountTypeDebit)
	destination := insertTestAccount(t, store, "visa_brian", core.AccountTypeCredit)

	newPayment := func() (core.Payment, core.Transaction, core.Transaction) {
		p := core.Payment{
			SourceAccount:      source.NameOwner,
			DestinationAccount: destination.NameOwner,
			TransactionDate:    time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
			Amount:             core.Money{Cents: 5000},
			GUIDSource:         uuid.NewString(),
			GUIDDestination:    uuid.NewString(),
			ActiveStatus:       true,
		}
		s := testTransaction(source, -5000, core.TransactionStateOutstanding)
		s.GUID = p.GUIDSource
		d := testTransaction(destination, -5000, core.TransactionStateOutstanding)
		d.GUID = p.GUIDDestination
		return p, s, d
	}

	p, s, d := newPayment()
	_, err := payments.InsertWithEntries(ctx, p, s, d)
	require.NoError(t, err)

	// Same destination, date and amount trips the uniqueness constraint, and
	// the duplicate's transactions must roll back with it.
	p2, s2, d2 := newPayment()
	_, err = payments.InsertWithEntries(ctx, p2, s2, d2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "UNIQUE")

	transactions := NewTransactionRepository(store)
	_, err = transactions.FindByGUID(ctx, p2.GUIDSource)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestTransferRepositoryDoubleEntry(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	transfers := NewTransferRepository(store)
	transactions := NewTransactionRepository(store)

	source := insertTestAccount(t, store, "checking_brian", core.AccountTypeDebit)
	destination := insertTestAccount(t, store, "savings_brian", core.AccountTypeDebit)

	transfer := core.Transfer{
		SourceAccount:      source.NameOwner,
		DestinationAccount: destination.NameOwner,
		TransactionDate:    time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		Amount:             core.Money{Cents: 2500},
		GUIDSource:         uuid.NewString(),
		GUIDDestination:    uuid.NewString(),
		ActiveStatus:       true,
	}
	sourceEntry := testTransaction(source, -2500, core.TransactionStateOutstanding)
	sourceEntry.GUID = transfer.GUIDSource
	destEntry := testTransaction(destination, 2500, core.TransactionStateOutstanding)
	destEntry.GUID = transfer.GUIDDestination

	inserted, err := transfers.InsertWithEntries(ctx, transfer, sourceEntry, destEntry)
	require.NoError(t, err)

	out, err := transactions.FindByGUID(ctx, transfer.GUIDSource)
	require.NoError(t, err)
	assert.Equal(t, int64(-2500), out.Amount.Cents)

	in, err := transactions.FindByGUID(ctx, transfer.GUIDDestination)
	require.NoError(t, err)
	assert.Equal(t, int64(2500), in.Amount.Cents)

	listed, err := transfers.List(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, inserted.TransferID, listed[0].TransferID)
}

func TestParameterRepository(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	parameters := NewParameterRepository(store)

	_, err := parameters.Insert(ctx, core.Parameter{
		Name:         "payment_account",
		Value:        "checking_brian",
		ActiveStatus: true,
	})
	require.NoError(t, err)

	found, err := parameters.FindByName(ctx, "payment_account")
	require.NoError(t, err)
	assert.Equal(t, "checking_brian", found.Value)

	found.Value = "savings_brian"
	require.NoError(t, parameters.Update(ctx, *found))

	found, err = parameters.FindByName(ctx, "payment_account")
	require.NoError(t, err)
	assert.Equal(t, "savings_brian", found.Value)

	require.NoError(t, parameters.Delete(ctx, "payment_account"))
	_, err = parameters.FindByName(ctx, "payment_account")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestFamilyMemberRepository(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	members := NewFamilyMemberRepository(store)

	inserted, err := members.Insert(ctx, core.FamilyMember{
		Owner:        "brian",
		MemberName:   "alice",
		Relationship: core.RelationshipChild,
		ActiveStatus: true,
	})
	require.NoError(t, err)

	_, err = members.Insert(ctx, core.FamilyMember{
		Owner:        "brian",
		MemberName:   "alice",
		Relationship: core.RelationshipOther,
		ActiveStatus: true,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "UNIQUE")

	require.NoError(t, members.SetActiveStatus(ctx, inserted.FamilyMemberID, false))

	listed, err := members.ListByOwner(ctx, "brian")
	require.NoError(t, err)
	assert.Empty(t, listed)
}

func TestMedicalExpenseRepository(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	expenses := NewMedicalExpenseRepository(store)

	inserted, err := expenses.Insert(ctx, core.MedicalExpense{
		ServiceDate:           time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		ServiceDescription:    "annual physical",
		BilledAmount:          core.Money{Cents: 25000},
		InsuranceDiscount:     core.Money{Cents: 5000},
		InsurancePaid:         core.Money{Cents: 15000},
		PatientResponsibility: core.Money{Cents: 5000},
		ClaimStatus:           core.ClaimStatusSubmitted,
		ActiveStatus:          true,
	})
	require.NoError(t, err)

	require.NoError(t, expenses.UpdateClaimStatus(ctx, inserted.MedicalExpenseID, core.ClaimStatusApproved))

	paidOn := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, expenses.MarkPaid(ctx, inserted.MedicalExpenseID, sql.NullTime{Time: paidOn, Valid: true}))

	found, err := expenses.FindByID(ctx, inserted.MedicalExpenseID)
	require.NoError(t, err)
	assert.Equal(t, core.ClaimStatusPaid, found.ClaimStatus)
	assert.True(t, found.PaidDate.Equal(paidOn))
}

func TestReceiptImageRepositoryLinkLifecycle(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	images := NewReceiptImageRepository(store)
	transactions := NewTransactionRepository(store)

	account := insertTestAccount(t, store, "checking_brian", core.AccountTypeDebit)
	tr, err := transactions.Insert(ctx, testTransaction(account, -500, core.TransactionStateCleared))
	require.NoError(t, err)

	inserted, err := images.InsertAndLink(ctx, core.ReceiptImage{
		TransactionID: tr.TransactionID,
		Image:         []byte{0xff, 0xd8, 0xff},
		Format:        core.ImageFormatJPEG,
		ActiveStatus:  true,
	})
	require.NoError(t, err)

	linked, err := transactions.FindByGUID(ctx, tr.GUID)
	require.NoError(t, err)
	require.NotNil(t, linked.ReceiptImageID)
	assert.Equal(t, inserted.ReceiptImageID, *linked.ReceiptImageID)

	// One receipt per transaction.
	_, err = images.InsertAndLink(ctx, core.ReceiptImage{
		TransactionID: tr.TransactionID,
		Image:         []byte{0x89, 0x50},
		Format:        core.ImageFormatPNG,
		ActiveStatus:  true,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "UNIQUE")

	require.NoError(t, images.DeleteAndUnlink(ctx, inserted.ReceiptImageID))

	unlinked, err := transactions.FindByGUID(ctx, tr.GUID)
	require.NoError(t, err)
	assert.Nil(t, unlinked.ReceiptImageID)
}

func TestValidationAmountRepositoryStampsAccount(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	validations := NewValidationAmountRepository(store)
	accounts := NewAccountRepository(store)

	account := insertTestAccount(t, store, "checking_brian", core.AccountTypeDebit)

	when := time.Date(2024, 7, 4, 12, 0, 0, 0, time.UTC)
	inserted, err := validations.InsertAndStamp(ctx, core.ValidationAmount{
		AccountID:      account.AccountID,
		ValidationDate: when,
		State:          core.TransactionStateCleared,
		Amount:         core.Money{Cents: 123450},
		ActiveStatus:   true,
	})
	require.NoError(t, err)
	assert.NotZero(t, inserted.ValidationAmountID)

	stamped, err := accounts.FindByNameOwner(ctx, "checking_brian")
	require.NoError(t, err)
	assert.True(t, stamped.ValidationDate.Equal(when))

	latest, err := validations.LatestForAccount(ctx, account.AccountID, core.TransactionStateCleared)
	require.NoError(t, err)
	assert.Equal(t, inserted.ValidationAmountID, latest.ValidationAmountID)
}
