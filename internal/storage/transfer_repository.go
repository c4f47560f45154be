package storage

import (
	"context"
	"database/sql"
	"fmt"

	"fintrack/internal/core"
)

// TransferRepository persists transfers together with their double-entry
// transactions, mirroring PaymentRepository.
type TransferRepository interface {
	InsertWithEntries(ctx context.Context, t core.Transfer, source, destination core.Transaction) (core.Transfer, error)
	FindByID(ctx context.Context, id int64) (*core.Transfer, error)
	List(ctx context.Context) ([]core.Transfer, error)
	DeleteWithEntries(ctx context.Context, id int64) error
}

type transferRepository struct {
	db *sql.DB
}

func NewTransferRepository(store *Store) TransferRepository {
	return &transferRepository{db: store.DB()}
}

const transferColumns = `transfer_id, source_account, destination_account, transaction_date,
       amount_cents, guid_source, guid_destination, active_status`

func scanTransfer(row interface{ Scan(...any) error }) (*core.Transfer, error) {
	var t core.Transfer
	err := row.Scan(
		&t.TransferID,
		&t.SourceAccount,
		&t.DestinationAccount,
		&t.TransactionDate,
		&t.Amount.Cents,
		&t.GUIDSource,
		&t.GUIDDestination,
		&t.ActiveStatus,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *transferRepository) InsertWithEntries(ctx context.Context, t core.Transfer, source, destination core.Transaction) (core.Transfer, error) {
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := insertTransactionTx(ctx, tx, source); err != nil {
			return err
		}
		if _, err := insertTransactionTx(ctx, tx, destination); err != nil {
			return err
		}

		res, err := tx.ExecContext(ctx, `
			INSERT INTO t_transfer (source_account, destination_account, transaction_date,
			    amount_cents, guid_source, guid_destination, active_status)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			t.SourceAccount, t.DestinationAccount, t.TransactionDate,
			t.Amount.Cents, t.GUIDSource, t.GUIDDestination, t.ActiveStatus)
		if err != nil {
			return fmt.Errorf("insert transfer: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("transfer insert id: %w", err)
		}
		t.TransferID = id
		return nil
	})
	if err != nil {
		return core.Transfer{}, err
	}
	return t, nil
}

func (r *transferRepository) FindByID(ctx context.Context, id int64) (*core.Transfer, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+transferColumns+` FROM t_transfer WHERE transfer_id = ?`, id)
	t, err := scanTransfer(row)
	if err != nil {
		return nil, fmt.Errorf("find transfer %d: %w", id, err)
	}
	return t, nil
}

func (r *transferRepository) List(ctx context.Context) ([]core.Transfer, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+transferColumns+` FROM t_transfer
		WHERE active_status = 1
		ORDER BY transaction_date DESC, transfer_id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list transfers: %w", err)
	}
	defer rows.Close()

	var transfers []core.Transfer
	for rows.Next() {
		t, err := scanTransfer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transfer: %w", err)
		}
		transfers = append(transfers, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transfers: %w", err)
	}
	return transfers, nil
}

func (r *transferRepository) DeleteWithEntries(ctx context.Context, id int64) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx,
			`SELECT `+transferColumns+` FROM t_transfer WHERE transfer_id = ?`, id)
		t, err := scanTransfer(row)
		if err != nil {
			return fmt.Errorf("find transfer %d: %w", id, err)
		}

		if _, err := tx.ExecContext(ctx, `
			UPDATE t_transaction SET active_status = 0, date_updated = CURRENT_TIMESTAMP
			WHERE guid IN (?, ?)`, t.GUIDSource, t.GUIDDestination); err != nil {
			return fmt.Errorf("soft delete transfer entries %d: %w", id, err)
		}

		res, err := tx.ExecContext(ctx,
			`DELETE FROM t_transfer WHERE transfer_id = ?`, id)
		if err != nil {
			return fmt.Errorf("delete transfer %d: %w", id, err)
		}
		return requireRow(res, "transfer", fmt.Sprint(id))
	})
}
