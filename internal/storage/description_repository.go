package storage

import (
	"context"
	"database/sql"
	"fmt"

	"fintrack/internal/core"
)

// DescriptionRepository is the data access interface for the description
// register (the normalized payee names transactions carry).
type DescriptionRepository interface {
	Insert(ctx context.Context, description core.Description) (core.Description, error)
	FindByName(ctx context.Context, name string) (*core.Description, error)
	List(ctx context.Context) ([]core.Description, error)
	SetActiveStatus(ctx context.Context, name string, active bool) error
	Delete(ctx context.Context, name string) error
	Merge(ctx context.Context, source, target string) (reassigned int64, err error)
}

type descriptionRepository struct {
	db *sql.DB
}

func NewDescriptionRepository(store *Store) DescriptionRepository {
	return &descriptionRepository{db: store.DB()}
}

func (r *descriptionRepository) Insert(ctx context.Context, description core.Description) (core.Description, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO t_description (description_name, active_status) VALUES (?, ?)`,
		description.Name, description.ActiveStatus)
	if err != nil {
		return core.Description{}, fmt.Errorf("insert description: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Description{}, fmt.Errorf("description insert id: %w", err)
	}
	description.DescriptionID = id
	return description, nil
}

func (r *descriptionRepository) FindByName(ctx context.Context, name string) (*core.Description, error) {
	var d core.Description
	err := r.db.QueryRowContext(ctx, `
		SELECT d.description_id, d.description_name, d.active_status,
		       (SELECT COUNT(*) FROM t_transaction t
		        WHERE t.description = d.description_name AND t.active_status = 1)
		FROM t_description d
		WHERE d.description_name = ?`, name).
		Scan(&d.DescriptionID, &d.Name, &d.ActiveStatus, &d.Count)
	if err != nil {
		return nil, fmt.Errorf("find description %s: %w", name, err)
	}
	return &d, nil
}

func (r *descriptionRepository) List(ctx context.Context) ([]core.Description, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT d.description_id, d.description_name, d.active_status,
		       (SELECT COUNT(*) FROM t_transaction t
		        WHERE t.description = d.description_name AND t.active_status = 1)
		FROM t_description d
		WHERE d.active_status = 1
		ORDER BY d.description_name`)
	if err != nil {
		return nil, fmt.Errorf("list descriptions: %w", err)
	}
	defer rows.Close()

	var descriptions []core.Description
	for rows.Next() {
		var d core.Description
		if err := rows.Scan(&d.DescriptionID, &d.Name, &d.ActiveStatus, &d.Count); err != nil {
			return nil, fmt.Errorf("scan description: %w", err)
		}
		descriptions = append(descriptions, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate descriptions: %w", err)
	}
	return descriptions, nil
}

func (r *descriptionRepository) SetActiveStatus(ctx context.Context, name string, active bool) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE t_description SET active_status = ?, date_updated = CURRENT_TIMESTAMP
		WHERE description_name = ?`, active, name)
	if err != nil {
		return fmt.Errorf("set description active status %s: %w", name, err)
	}
	return requireRow(res, "description", name)
}

func (r *descriptionRepository) Delete(ctx context.Context, name string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM t_description WHERE description_name = ?`, name)
	if err != nil {
		return fmt.Errorf("delete description %s: %w", name, err)
	}
	return requireRow(res, "description", name)
}

func (r *descriptionRepository) Merge(ctx context.Context, source, target string) (int64, error) {
	var reassigned int64
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE t_transaction SET description = ?, date_updated = CURRENT_TIMESTAMP
			WHERE description = ?`, target, source)
		if err != nil {
			return fmt.Errorf("merge reassign %s to %s: %w", source, target, err)
		}
		reassigned, err = res.RowsAffected()
		if err != nil {
			return fmt.Errorf("merge rows affected: %w", err)
		}

		res, err = tx.ExecContext(ctx, `
			UPDATE t_description SET active_status = 0, date_updated = CURRENT_TIMESTAMP
			WHERE description_name = ?`, source)
		if err != nil {
			return fmt.Errorf("deactivate merged description %s: %w", source, err)
		}
		return requireRow(res, "description", source)
	})
	if err != nil {
		return 0, err
	}
	return reassigned, nil
}
