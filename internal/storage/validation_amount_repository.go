package storage

import (
	"context"
	"database/sql"
	"fmt"

	"fintrack/internal/core"
)

// ValidationAmountRepository records account balance checkpoints. Inserting a
// checkpoint also stamps the account's validation_date in the same database
// transaction.
type ValidationAmountRepository interface {
	InsertAndStamp(ctx context.Context, v core.ValidationAmount) (core.ValidationAmount, error)
	FindByID(ctx context.Context, id int64) (*core.ValidationAmount, error)
	ListByAccount(ctx context.Context, accountID int64) ([]core.ValidationAmount, error)
	LatestForAccount(ctx context.Context, accountID int64, state core.TransactionState) (*core.ValidationAmount, error)
}

type validationAmountRepository struct {
	db *sql.DB
}

func NewValidationAmountRepository(store *Store) ValidationAmountRepository {
	return &validationAmountRepository{db: store.DB()}
}

const validationAmountColumns = `validation_amount_id, account_id, validation_date,
       transaction_state, amount_cents, active_status`

func scanValidationAmount(row interface{ Scan(...any) error }) (*core.ValidationAmount, error) {
	var v core.ValidationAmount
	err := row.Scan(
		&v.ValidationAmountID,
		&v.AccountID,
		&v.ValidationDate,
		&v.State,
		&v.Amount.Cents,
		&v.ActiveStatus,
	)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *validationAmountRepository) InsertAndStamp(ctx context.Context, v core.ValidationAmount) (core.ValidationAmount, error) {
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO t_validation_amount (account_id, validation_date, transaction_state,
			    amount_cents, active_status)
			VALUES (?, ?, ?, ?, ?)`,
			v.AccountID, v.ValidationDate, v.State, v.Amount.Cents, v.ActiveStatus)
		if err != nil {
			return fmt.Errorf("insert validation amount: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("validation amount insert id: %w", err)
		}
		v.ValidationAmountID = id

		res, err = tx.ExecContext(ctx, `
			UPDATE t_account SET validation_date = ?, date_updated = CURRENT_TIMESTAMP
			WHERE account_id = ?`, v.ValidationDate, v.AccountID)
		if err != nil {
			return fmt.Errorf("stamp account validation date %d: %w", v.AccountID, err)
		}
		return requireRow(res, "account", fmt.Sprint(v.AccountID))
	})
	if err != nil {
		return core.ValidationAmount{}, err
	}
	return v, nil
}

func (r *validationAmountRepository) FindByID(ctx context.Context, id int64) (*core.ValidationAmount, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+validationAmountColumns+` FROM t_validation_amount WHERE validation_amount_id = ?`, id)
	v, err := scanValidationAmount(row)
	if err != nil {
		return nil, fmt.Errorf("find validation amount %d: %w", id, err)
	}
	return v, nil
}

func (r *validationAmountRepository) ListByAccount(ctx context.Context, accountID int64) ([]core.ValidationAmount, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+validationAmountColumns+` FROM t_validation_amount
		WHERE account_id = ? AND active_status = 1
		ORDER BY validation_date DESC, validation_amount_id DESC`, accountID)
	if err != nil {
		return nil, fmt.Errorf("list validation amounts for account %d: %w", accountID, err)
	}
	defer rows.Close()

	var amounts []core.ValidationAmount
	for rows.Next() {
		v, err := scanValidationAmount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan validation amount: %w", err)
		}
		amounts = append(amounts, *v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate validation amounts: %w", err)
	}
	return amounts, nil
}

func (r *validationAmountRepository) LatestForAccount(ctx context.Context, accountID int64, state core.TransactionState) (*core.ValidationAmount, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+validationAmountColumns+` FROM t_validation_amount
		WHERE account_id = ? AND transaction_state = ? AND active_status = 1
		ORDER BY validation_date DESC, validation_amount_id DESC
		LIMIT 1`, accountID, state)
	v, err := scanValidationAmount(row)
	if err != nil {
		return nil, fmt.Errorf("latest validation amount for account %d: %w", accountID, err)
	}
	return v, nil
}
