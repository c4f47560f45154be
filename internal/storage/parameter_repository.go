package storage

import (
	"context"
	"database/sql"
	"fmt"

	"fintrack/internal/core"
)

// ParameterRepository is the data access interface for runtime parameters.
type ParameterRepository interface {
	Insert(ctx context.Context, p core.Parameter) (core.Parameter, error)
	FindByName(ctx context.Context, name string) (*core.Parameter, error)
	List(ctx context.Context) ([]core.Parameter, error)
	Update(ctx context.Context, p core.Parameter) error
	Delete(ctx context.Context, name string) error
}

type parameterRepository struct {
	db *sql.DB
}

func NewParameterRepository(store *Store) ParameterRepository {
	return &parameterRepository{db: store.DB()}
}

func (r *parameterRepository) Insert(ctx context.Context, p core.Parameter) (core.Parameter, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO t_parameter (parameter_name, parameter_value, active_status)
		VALUES (?, ?, ?)`, p.Name, p.Value, p.ActiveStatus)
	if err != nil {
		return core.Parameter{}, fmt.Errorf("insert parameter: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Parameter{}, fmt.Errorf("parameter insert id: %w", err)
	}
	p.ParameterID = id
	return p, nil
}

func (r *parameterRepository) FindByName(ctx context.Context, name string) (*core.Parameter, error) {
	var p core.Parameter
	err := r.db.QueryRowContext(ctx, `
		SELECT parameter_id, parameter_name, parameter_value, active_status
		FROM t_parameter WHERE parameter_name = ?`, name).
		Scan(&p.ParameterID, &p.Name, &p.Value, &p.ActiveStatus)
	if err != nil {
		return nil, fmt.Errorf("find parameter %s: %w", name, err)
	}
	return &p, nil
}

func (r *parameterRepository) List(ctx context.Context) ([]core.Parameter, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT parameter_id, parameter_name, parameter_value, active_status
		FROM t_parameter WHERE active_status = 1
		ORDER BY parameter_name`)
	if err != nil {
		return nil, fmt.Errorf("list parameters: %w", err)
	}
	defer rows.Close()

	var parameters []core.Parameter
	for rows.Next() {
		var p core.Parameter
		if err := rows.Scan(&p.ParameterID, &p.Name, &p.Value, &p.ActiveStatus); err != nil {
			return nil, fmt.Errorf("scan parameter: %w", err)
		}
		parameters = append(parameters, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate parameters: %w", err)
	}
	return parameters, nil
}

func (r *parameterRepository) Update(ctx context.Context, p core.Parameter) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE t_parameter SET parameter_value = ?, active_status = ?,
		    date_updated = CURRENT_TIMESTAMP
		WHERE parameter_name = ?`, p.Value, p.ActiveStatus, p.Name)
	if err != nil {
		return fmt.Errorf("update parameter %s: %w", p.Name, err)
	}
	return requireRow(res, "parameter", p.Name)
}

func (r *parameterRepository) Delete(ctx context.Context, name string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM t_parameter WHERE parameter_name = ?`, name)
	if err != nil {
		return fmt.Errorf("delete parameter %s: %w", name, err)
	}
	return requireRow(res, "parameter", name)
}
