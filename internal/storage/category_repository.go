package storage

import (
	"context"
	"database/sql"
	"fmt"

	"fintrack/internal/core"
)

// CategoryRepository is the data access interface for categories. Merge is a
// composite operation so the transaction reassignment and the source
// deactivation land atomically.
type CategoryRepository interface {
	Insert(ctx context.Context, category core.Category) (core.Category, error)
	FindByName(ctx context.Context, name string) (*core.Category, error)
	List(ctx context.Context) ([]core.Category, error)
	SetActiveStatus(ctx context.Context, name string, active bool) error
	Delete(ctx context.Context, name string) error
	Merge(ctx context.Context, source, target string) (reassigned int64, err error)
}

type categoryRepository struct {
	db *sql.DB
}

func NewCategoryRepository(store *Store) CategoryRepository {
	return &categoryRepository{db: store.DB()}
}

func (r *categoryRepository) Insert(ctx context.Context, category core.Category) (core.Category, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO t_category (category_name, active_status) VALUES (?, ?)`,
		category.Name, category.ActiveStatus)
	if err != nil {
		return core.Category{}, fmt.Errorf("insert category: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Category{}, fmt.Errorf("category insert id: %w", err)
	}
	category.CategoryID = id
	return category, nil
}

func (r *categoryRepository) FindByName(ctx context.Context, name string) (*core.Category, error) {
	var c core.Category
	err := r.db.QueryRowContext(ctx, `
		SELECT c.category_id, c.category_name, c.active_status,
		       (SELECT COUNT(*) FROM t_transaction t
		        WHERE t.category = c.category_name AND t.active_status = 1)
		FROM t_category c
		WHERE c.category_name = ?`, name).
		Scan(&c.CategoryID, &c.Name, &c.ActiveStatus, &c.Count)
	if err != nil {
		return nil, fmt.Errorf("find category %s: %w", name, err)
	}
	return &c, nil
}

func (r *categoryRepository) List(ctx context.Context) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT c.category_id, c.category_name, c.active_status,
		       (SELECT COUNT(*) FROM t_transaction t
		        WHERE t.category = c.category_name AND t.active_status = 1)
		FROM t_category c
		WHERE c.active_status = 1
		ORDER BY c.category_name`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []core.Category
	for rows.Next() {
		var c core.Category
		if err := rows.Scan(&c.CategoryID, &c.Name, &c.ActiveStatus, &c.Count); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}
	return categories, nil
}

func (r *categoryRepository) SetActiveStatus(ctx context.Context, name string, active bool) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE t_category SET active_status = ?, date_updated = CURRENT_TIMESTAMP
		WHERE category_name = ?`, active, name)
	if err != nil {
		return fmt.Errorf("set category active status %s: %w", name, err)
	}
	return requireRow(res, "category", name)
}

func (r *categoryRepository) Delete(ctx context.Context, name string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM t_category WHERE category_name = ?`, name)
	if err != nil {
		return fmt.Errorf("delete category %s: %w", name, err)
	}
	return requireRow(res, "category", name)
}

func (r *categoryRepository) Merge(ctx context.Context, source, target string) (int64, error) {
	var reassigned int64
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE t_transaction SET category = ?, date_updated = CURRENT_TIMESTAMP
			WHERE category = ?`, target, source)
		if err != nil {
			return fmt.Errorf("merge reassign %s to %s: %w", source, target, err)
		}
		reassigned, err = res.RowsAffected()
		if err != nil {
			return fmt.Errorf("merge rows affected: %w", err)
		}

		res, err = tx.ExecContext(ctx, `
			UPDATE t_category SET active_status = 0, date_updated = CURRENT_TIMESTAMP
			WHERE category_name = ?`, source)
		if err != nil {
			return fmt.Errorf("deactivate merged category %s: %w", source, err)
		}
		return requireRow(res, "category", source)
	})
	if err != nil {
		return 0, err
	}
	return reassigned, nil
}
