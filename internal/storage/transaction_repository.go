package storage

import (
	"context"
	"database/sql"
	"fmt"

	"fintrack/internal/core"
)

// TransactionRepository is the data access interface for transactions.
type TransactionRepository interface {
	Insert(ctx context.Context, tr core.Transaction) (core.Transaction, error)
	FindByGUID(ctx context.Context, guid string) (*core.Transaction, error)
	ListByAccount(ctx context.Context, accountNameOwner string) ([]core.Transaction, error)
	Update(ctx context.Context, tr core.Transaction) error
	SoftDeleteByGUID(ctx context.Context, guid string) error
	UpdateStateByGUID(ctx context.Context, guid string, state core.TransactionState) error
	MoveToAccount(ctx context.Context, guid string, account core.Account) error
	SetReceiptImageID(ctx context.Context, guid string, receiptImageID int64) error

	SumByStateForAccount(ctx context.Context, accountNameOwner string) (map[core.TransactionState]int64, error)
	SumByState(ctx context.Context) (map[core.TransactionState]int64, error)

	ReassignCategory(ctx context.Context, from, to string) (int64, error)
	ReassignDescription(ctx context.Context, from, to string) (int64, error)
	CountByCategory(ctx context.Context, category string) (int64, error)
	CountByDescription(ctx context.Context, description string) (int64, error)
}

type transactionRepository struct {
	db *sql.DB
}

func NewTransactionRepository(store *Store) TransactionRepository {
	return &transactionRepository{db: store.DB()}
}

const transactionColumns = `transaction_id, guid, account_id, account_name_owner, account_type,
       transaction_date, description, category, amount_cents, transaction_state,
       transaction_type, reoccurring_type, notes, active_status, receipt_image_id`

func scanTransaction(row interface{ Scan(...any) error }) (*core.Transaction, error) {
	var t core.Transaction
	var receiptImageID sql.NullInt64
	err := row.Scan(
		&t.TransactionID,
		&t.GUID,
		&t.AccountID,
		&t.AccountNameOwner,
		&t.AccountType,
		&t.TransactionDate,
		&t.Description,
		&t.Category,
		&t.Amount.Cents,
		&t.State,
		&t.Type,
		&t.ReoccurringType,
		&t.Notes,
		&t.ActiveStatus,
		&receiptImageID,
	)
	if err != nil {
		return nil, err
	}
	if receiptImageID.Valid {
		t.ReceiptImageID = &receiptImageID.Int64
	}
	return &t, nil
}

// insertTransactionTx inserts a transaction row and auto-registers its
// category and description in the registers so listings stay complete.
func insertTransactionTx(ctx context.Context, tx *sql.Tx, tr core.Transaction) (int64, error) {
	if tr.Category != "" {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO t_category (category_name) VALUES (?)`, tr.Category); err != nil {
			return 0, fmt.Errorf("register category %s: %w", tr.Category, err)
		}
	}
	if tr.Description != "" {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO t_description (description_name) VALUES (?)`, tr.Description); err != nil {
			return 0, fmt.Errorf("register description %s: %w", tr.Description, err)
		}
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO t_transaction (guid, account_id, account_name_owner, account_type,
		    transaction_date, description, category, amount_cents, transaction_state,
		    transaction_type, reoccurring_type, notes, active_status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		tr.GUID, tr.AccountID, tr.AccountNameOwner, tr.AccountType,
		tr.TransactionDate, tr.Description, tr.Category, tr.Amount.Cents, tr.State,
		tr.Type, tr.ReoccurringType, tr.Notes, tr.ActiveStatus)
	if err != nil {
		return 0, fmt.Errorf("insert transaction %s: %w", tr.GUID, err)
	}
	return res.LastInsertId()
}

func (r *transactionRepository) Insert(ctx context.Context, tr core.Transaction) (core.Transaction, error) {
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		id, err := insertTransactionTx(ctx, tx, tr)
		if err != nil {
			return err
		}
		tr.TransactionID = id
		return nil
	})
	if err != nil {
		return core.Transaction{}, err
	}
	return tr, nil
}

func (r *transactionRepository) FindByGUID(ctx context.Context, guid string) (*core.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+transactionColumns+` FROM t_transaction WHERE guid = ?`, guid)
	tr, err := scanTransaction(row)
	if err != nil {
		return nil, fmt.Errorf("find transaction %s: %w", guid, err)
	}
	return tr, nil
}

func (r *transactionRepository) ListByAccount(ctx context.Context, accountNameOwner string) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+transactionColumns+`
		FROM t_transaction
		WHERE account_name_owner = ? AND active_status = 1
		ORDER BY transaction_date DESC, transaction_id DESC`, accountNameOwner)
	if err != nil {
		return nil, fmt.Errorf("list transactions for %s: %w", accountNameOwner, err)
	}
	defer rows.Close()

	var transactions []core.Transaction
	for rows.Next() {
		tr, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		transactions = append(transactions, *tr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return transactions, nil
}

func (r *transactionRepository) Update(ctx context.Context, tr core.Transaction) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE t_transaction
		SET transaction_date = ?, description = ?, category = ?, amount_cents = ?,
		    transaction_state = ?, transaction_type = ?, reoccurring_type = ?,
		    notes = ?, active_status = ?, date_updated = CURRENT_TIMESTAMP
		WHERE guid = ?`,
		tr.TransactionDate, tr.Description, tr.Category, tr.Amount.Cents,
		tr.State, tr.Type, tr.ReoccurringType, tr.Notes, tr.ActiveStatus, tr.GUID)
	if err != nil {
		return fmt.Errorf("update transaction %s: %w", tr.GUID, err)
	}
	return requireRow(res, "transaction", tr.GUID)
}

func (r *transactionRepository) SoftDeleteByGUID(ctx context.Context, guid string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE t_transaction SET active_status = 0, date_updated = CURRENT_TIMESTAMP
		WHERE guid = ? AND active_status = 1`, guid)
	if err != nil {
		return fmt.Errorf("soft delete transaction %s: %w", guid, err)
	}
	return requireRow(res, "transaction", guid)
}

func (r *transactionRepository) UpdateStateByGUID(ctx context.Context, guid string, state core.TransactionState) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE t_transaction SET transaction_state = ?, date_updated = CURRENT_TIMESTAMP
		WHERE guid = ?`, state, guid)
	if err != nil {
		return fmt.Errorf("update transaction state %s: %w", guid, err)
	}
	return requireRow(res, "transaction", guid)
}

// MoveToAccount repoints a transaction at another account, refreshing the
// denormalized account columns.
func (r *transactionRepository) MoveToAccount(ctx context.Context, guid string, account core.Account) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE t_transaction
		SET account_id = ?, account_name_owner = ?, account_type = ?,
		    date_updated = CURRENT_TIMESTAMP
		WHERE guid = ?`,
		account.AccountID, account.NameOwner, account.AccountType, guid)
	if err != nil {
		return fmt.Errorf("move transaction %s: %w", guid, err)
	}
	return requireRow(res, "transaction", guid)
}

func (r *transactionRepository) SetReceiptImageID(ctx context.Context, guid string, receiptImageID int64) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE t_transaction SET receipt_image_id = ?, date_updated = CURRENT_TIMESTAMP
		WHERE guid = ?`, receiptImageID, guid)
	if err != nil {
		return fmt.Errorf("set receipt image on %s: %w", guid, err)
	}
	return requireRow(res, "transaction", guid)
}

func (r *transactionRepository) SumByStateForAccount(ctx context.Context, accountNameOwner string) (map[core.TransactionState]int64, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT transaction_state, COALESCE(SUM(amount_cents), 0)
		FROM t_transaction
		WHERE account_name_owner = ? AND active_status = 1
		GROUP BY transaction_state`, accountNameOwner)
	if err != nil {
		return nil, fmt.Errorf("sum transactions for %s: %w", accountNameOwner, err)
	}
	return collectStateSums(rows)
}

func (r *transactionRepository) SumByState(ctx context.Context) (map[core.TransactionState]int64, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT transaction_state, COALESCE(SUM(amount_cents), 0)
		FROM t_transaction
		WHERE active_status = 1
		GROUP BY transaction_state`)
	if err != nil {
		return nil, fmt.Errorf("sum transactions: %w", err)
	}
	return collectStateSums(rows)
}

func collectStateSums(rows *sql.Rows) (map[core.TransactionState]int64, error) {
	defer rows.Close()

	sums := make(map[core.TransactionState]int64)
	for rows.Next() {
		var state core.TransactionState
		var cents int64
		if err := rows.Scan(&state, &cents); err != nil {
			return nil, fmt.Errorf("scan state sum: %w", err)
		}
		sums[state] = cents
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate state sums: %w", err)
	}
	return sums, nil
}

func (r *transactionRepository) ReassignCategory(ctx context.Context, from, to string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE t_transaction SET category = ?, date_updated = CURRENT_TIMESTAMP
		WHERE category = ?`, to, from)
	if err != nil {
		return 0, fmt.Errorf("reassign category %s to %s: %w", from, to, err)
	}
	return res.RowsAffected()
}

func (r *transactionRepository) ReassignDescription(ctx context.Context, from, to string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE t_transaction SET description = ?, date_updated = CURRENT_TIMESTAMP
		WHERE description = ?`, to, from)
	if err != nil {
		return 0, fmt.Errorf("reassign description %s to %s: %w", from, to, err)
	}
	return res.RowsAffected()
}

func (r *transactionRepository) CountByCategory(ctx context.Context, category string) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM t_transaction
		WHERE category = ? AND active_status = 1`, category).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count category %s: %w", category, err)
	}
	return count, nil
}

func (r *transactionRepository) CountByDescription(ctx context.Context, description string) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM t_transaction
		WHERE description = ? AND active_status = 1`, description).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count description %s: %w", description, err)
	}
	return count, nil
}
