package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"fintrack/internal/core"
)

// AccountRepository is the data access interface for accounts.
type AccountRepository interface {
	Insert(ctx context.Context, account core.Account) (core.Account, error)
	FindByNameOwner(ctx context.Context, nameOwner string) (*core.Account, error)
	List(ctx context.Context, activeOnly bool) ([]core.Account, error)
	Update(ctx context.Context, account core.Account) error
	Rename(ctx context.Context, oldName, newName string) error
	SetActiveStatus(ctx context.Context, nameOwner string, active bool) error
	UpdateTotals(ctx context.Context, nameOwner string, totals core.Totals) error
	StampValidationDate(ctx context.Context, accountID int64, when time.Time) error
	Delete(ctx context.Context, nameOwner string) error
}

type accountRepository struct {
	db *sql.DB
}

func NewAccountRepository(store *Store) AccountRepository {
	return &accountRepository{db: store.DB()}
}

const accountColumns = `account_id, account_name_owner, account_type, active_status, moniker,
       future_cents, cleared_cents, outstanding_cents, date_closed, validation_date`

func scanAccount(row interface{ Scan(...any) error }) (*core.Account, error) {
	var a core.Account
	var dateClosed, validationDate sql.NullTime
	err := row.Scan(
		&a.AccountID,
		&a.NameOwner,
		&a.AccountType,
		&a.ActiveStatus,
		&a.Moniker,
		&a.Future.Cents,
		&a.Cleared.Cents,
		&a.Outstanding.Cents,
		&dateClosed,
		&validationDate,
	)
	if err != nil {
		return nil, err
	}
	if dateClosed.Valid {
		a.DateClosed = dateClosed.Time
	}
	if validationDate.Valid {
		a.ValidationDate = validationDate.Time
	}
	return &a, nil
}

func (r *accountRepository) Insert(ctx context.Context, account core.Account) (core.Account, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO t_account (account_name_owner, account_type, active_status, moniker)
		VALUES (?, ?, ?, ?)`,
		account.NameOwner, account.AccountType, account.ActiveStatus, account.Moniker)
	if err != nil {
		return core.Account{}, fmt.Errorf("insert account: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Account{}, fmt.Errorf("account insert id: %w", err)
	}
	account.AccountID = id
	return account, nil
}

func (r *accountRepository) FindByNameOwner(ctx context.Context, nameOwner string) (*core.Account, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM t_account WHERE account_name_owner = ?`, nameOwner)
	account, err := scanAccount(row)
	if err != nil {
		return nil, fmt.Errorf("find account %s: %w", nameOwner, err)
	}
	return account, nil
}

func (r *accountRepository) List(ctx context.Context, activeOnly bool) ([]core.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM t_account`
	if activeOnly {
		query += ` WHERE active_status = 1`
	}
	query += ` ORDER BY account_name_owner`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []core.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		accounts = append(accounts, *account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate accounts: %w", err)
	}
	return accounts, nil
}

func (r *accountRepository) Update(ctx context.Context, account core.Account) error {
	var dateClosed sql.NullTime
	if !account.DateClosed.IsZero() {
		dateClosed = sql.NullTime{Time: account.DateClosed, Valid: true}
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE t_account
		SET account_type = ?, active_status = ?, moniker = ?, date_closed = ?,
		    date_updated = CURRENT_TIMESTAMP
		WHERE account_name_owner = ?`,
		account.AccountType, account.ActiveStatus, account.Moniker, dateClosed, account.NameOwner)
	if err != nil {
		return fmt.Errorf("update account %s: %w", account.NameOwner, err)
	}
	return requireRow(res, "account", account.NameOwner)
}

// Rename changes an account's name-owner and keeps the denormalized copy on
// its transactions in step, atomically.
func (r *accountRepository) Rename(ctx context.Context, oldName, newName string) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE t_account SET account_name_owner = ?, date_updated = CURRENT_TIMESTAMP
			WHERE account_name_owner = ?`, newName, oldName)
		if err != nil {
			return fmt.Errorf("rename account %s: %w", oldName, err)
		}
		if err := requireRow(res, "account", oldName); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `
			UPDATE t_transaction SET account_name_owner = ?, date_updated = CURRENT_TIMESTAMP
			WHERE account_name_owner = ?`, newName, oldName); err != nil {
			return fmt.Errorf("rename account transactions %s: %w", oldName, err)
		}
		return nil
	})
}

func (r *accountRepository) SetActiveStatus(ctx context.Context, nameOwner string, active bool) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE t_account SET active_status = ?, date_updated = CURRENT_TIMESTAMP
		WHERE account_name_owner = ?`, active, nameOwner)
	if err != nil {
		return fmt.Errorf("set account active status %s: %w", nameOwner, err)
	}
	return requireRow(res, "account", nameOwner)
}

func (r *accountRepository) UpdateTotals(ctx context.Context, nameOwner string, totals core.Totals) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE t_account
		SET future_cents = ?, cleared_cents = ?, outstanding_cents = ?,
		    date_updated = CURRENT_TIMESTAMP
		WHERE account_name_owner = ?`,
		totals.Future.Cents, totals.Cleared.Cents, totals.Outstanding.Cents, nameOwner)
	if err != nil {
		return fmt.Errorf("update account totals %s: %w", nameOwner, err)
	}
	return requireRow(res, "account", nameOwner)
}

func (r *accountRepository) StampValidationDate(ctx context.Context, accountID int64, when time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE t_account SET validation_date = ?, date_updated = CURRENT_TIMESTAMP
		WHERE account_id = ?`, when, accountID)
	if err != nil {
		return fmt.Errorf("stamp validation date: %w", err)
	}
	return requireRow(res, "account", fmt.Sprint(accountID))
}

func (r *accountRepository) Delete(ctx context.Context, nameOwner string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM t_account WHERE account_name_owner = ?`, nameOwner)
	if err != nil {
		return fmt.Errorf("delete account %s: %w", nameOwner, err)
	}
	return requireRow(res, "account", nameOwner)
}

// requireRow converts a zero-row update/delete into sql.ErrNoRows so the
// taxonomy classifies it as NotFound.
func requireRow(res sql.Result, entity, key string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", entity, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", entity, key, sql.ErrNoRows)
	}
	return nil
}
