package storage

import (
	"context"
	"database/sql"
	"fmt"

	"fintrack/internal/core"
)

// PaymentRepository persists payments together with the two double-entry
// transactions each one spawns, atomically in both directions.
type PaymentRepository interface {
	InsertWithEntries(ctx context.Context, p core.Payment, source, destination core.Transaction) (core.Payment, error)
	FindByID(ctx context.Context, id int64) (*core.Payment, error)
	List(ctx context.Context) ([]core.Payment, error)
	DeleteWithEntries(ctx context.Context, id int64) error
}

type paymentRepository struct {
	db *sql.DB
}

func NewPaymentRepository(store *Store) PaymentRepository {
	return &paymentRepository{db: store.DB()}
}

const paymentColumns = `payment_id, source_account, destination_account, transaction_date,
       amount_cents, guid_source, guid_destination, active_status`

func scanPayment(row interface{ Scan(...any) error }) (*core.Payment, error) {
	var p core.Payment
	err := row.Scan(
		&p.PaymentID,
		&p.SourceAccount,
		&p.DestinationAccount,
		&p.TransactionDate,
		&p.Amount.Cents,
		&p.GUIDSource,
		&p.GUIDDestination,
		&p.ActiveStatus,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *paymentRepository) InsertWithEntries(ctx context.Context, p core.Payment, source, destination core.Transaction) (core.Payment, error) {
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := insertTransactionTx(ctx, tx, source); err != nil {
			return err
		}
		if _, err := insertTransactionTx(ctx, tx, destination); err != nil {
			return err
		}

		res, err := tx.ExecContext(ctx, `
			INSERT INTO t_payment (source_account, destination_account, transaction_date,
			    amount_cents, guid_source, guid_destination, active_status)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			p.SourceAccount, p.DestinationAccount, p.TransactionDate,
			p.Amount.Cents, p.GUIDSource, p.GUIDDestination, p.ActiveStatus)
		if err != nil {
			return fmt.Errorf("insert payment: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("payment insert id: %w", err)
		}
		p.PaymentID = id
		return nil
	})
	if err != nil {
		return core.Payment{}, err
	}
	return p, nil
}

func (r *paymentRepository) FindByID(ctx context.Context, id int64) (*core.Payment, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+paymentColumns+` FROM t_payment WHERE payment_id = ?`, id)
	p, err := scanPayment(row)
	if err != nil {
		return nil, fmt.Errorf("find payment %d: %w", id, err)
	}
	return p, nil
}

func (r *paymentRepository) List(ctx context.Context) ([]core.Payment, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+paymentColumns+` FROM t_payment
		WHERE active_status = 1
		ORDER BY transaction_date DESC, payment_id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()

	var payments []core.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		payments = append(payments, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate payments: %w", err)
	}
	return payments, nil
}

// DeleteWithEntries removes a payment and soft-deletes its two linked
// transactions in one database transaction.
func (r *paymentRepository) DeleteWithEntries(ctx context.Context, id int64) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx,
			`SELECT `+paymentColumns+` FROM t_payment WHERE payment_id = ?`, id)
		p, err := scanPayment(row)
		if err != nil {
			return fmt.Errorf("find payment %d: %w", id, err)
		}

		if _, err := tx.ExecContext(ctx, `
			UPDATE t_transaction SET active_status = 0, date_updated = CURRENT_TIMESTAMP
			WHERE guid IN (?, ?)`, p.GUIDSource, p.GUIDDestination); err != nil {
			return fmt.Errorf("soft delete payment entries %d: %w", id, err)
		}

		res, err := tx.ExecContext(ctx,
			`DELETE FROM t_payment WHERE payment_id = ?`, id)
		if err != nil {
			return fmt.Errorf("delete payment %d: %w", id, err)
		}
		return requireRow(res, "payment", fmt.Sprint(id))
	})
}
