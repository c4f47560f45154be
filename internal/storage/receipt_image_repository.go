package storage

import (
	"context"
	"database/sql"
	"fmt"

	"fintrack/internal/core"
)

// ReceiptImageRepository stores receipt image blobs. Inserting also stamps the
// owning transaction's receipt_image_id so the link survives in one step.
type ReceiptImageRepository interface {
	InsertAndLink(ctx context.Context, img core.ReceiptImage) (core.ReceiptImage, error)
	FindByID(ctx context.Context, id int64) (*core.ReceiptImage, error)
	FindByTransactionID(ctx context.Context, transactionID int64) (*core.ReceiptImage, error)
	DeleteAndUnlink(ctx context.Context, id int64) error
}

type receiptImageRepository struct {
	db *sql.DB
}

func NewReceiptImageRepository(store *Store) ReceiptImageRepository {
	return &receiptImageRepository{db: store.DB()}
}

const receiptImageColumns = `receipt_image_id, transaction_id, image, image_format_type, active_status`

func scanReceiptImage(row interface{ Scan(...any) error }) (*core.ReceiptImage, error) {
	var img core.ReceiptImage
	err := row.Scan(
		&img.ReceiptImageID,
		&img.TransactionID,
		&img.Image,
		&img.Format,
		&img.ActiveStatus,
	)
	if err != nil {
		return nil, err
	}
	return &img, nil
}

func (r *receiptImageRepository) InsertAndLink(ctx context.Context, img core.ReceiptImage) (core.ReceiptImage, error) {
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO t_receipt_image (transaction_id, image, image_format_type, active_status)
			VALUES (?, ?, ?, ?)`,
			img.TransactionID, img.Image, img.Format, img.ActiveStatus)
		if err != nil {
			return fmt.Errorf("insert receipt image: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("receipt image insert id: %w", err)
		}
		img.ReceiptImageID = id

		res, err = tx.ExecContext(ctx, `
			UPDATE t_transaction SET receipt_image_id = ?, date_updated = CURRENT_TIMESTAMP
			WHERE transaction_id = ?`, id, img.TransactionID)
		if err != nil {
			return fmt.Errorf("link receipt image to transaction %d: %w", img.TransactionID, err)
		}
		return requireRow(res, "transaction", fmt.Sprint(img.TransactionID))
	})
	if err != nil {
		return core.ReceiptImage{}, err
	}
	return img, nil
}

func (r *receiptImageRepository) FindByID(ctx context.Context, id int64) (*core.ReceiptImage, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+receiptImageColumns+` FROM t_receipt_image WHERE receipt_image_id = ?`, id)
	img, err := scanReceiptImage(row)
	if err != nil {
		return nil, fmt.Errorf("find receipt image %d: %w", id, err)
	}
	return img, nil
}

func (r *receiptImageRepository) FindByTransactionID(ctx context.Context, transactionID int64) (*core.ReceiptImage, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+receiptImageColumns+` FROM t_receipt_image WHERE transaction_id = ?`, transactionID)
	img, err := scanReceiptImage(row)
	if err != nil {
		return nil, fmt.Errorf("find receipt image for transaction %d: %w", transactionID, err)
	}
	return img, nil
}

func (r *receiptImageRepository) DeleteAndUnlink(ctx context.Context, id int64) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			UPDATE t_transaction SET receipt_image_id = NULL, date_updated = CURRENT_TIMESTAMP
			WHERE receipt_image_id = ?`, id); err != nil {
			return fmt.Errorf("unlink receipt image %d: %w", id, err)
		}

		res, err := tx.ExecContext(ctx,
			`DELETE FROM t_receipt_image WHERE receipt_image_id = ?`, id)
		if err != nil {
			return fmt.Errorf("delete receipt image %d: %w", id, err)
		}
		return requireRow(res, "receipt image", fmt.Sprint(id))
	})
}
