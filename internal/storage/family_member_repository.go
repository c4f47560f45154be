package storage

import (
	"context"
	"database/sql"
	"fmt"

	"fintrack/internal/core"
)

// FamilyMemberRepository is the data access interface for family members.
type FamilyMemberRepository interface {
	Insert(ctx context.Context, m core.FamilyMember) (core.FamilyMember, error)
	FindByID(ctx context.Context, id int64) (*core.FamilyMember, error)
	ListByOwner(ctx context.Context, owner string) ([]core.FamilyMember, error)
	Update(ctx context.Context, m core.FamilyMember) error
	SetActiveStatus(ctx context.Context, id int64, active bool) error
}

type familyMemberRepository struct {
	db *sql.DB
}

func NewFamilyMemberRepository(store *Store) FamilyMemberRepository {
	return &familyMemberRepository{db: store.DB()}
}

const familyMemberColumns = `family_member_id, owner, member_name, relationship,
       date_of_birth, insurance_member_id, active_status`

func scanFamilyMember(row interface{ Scan(...any) error }) (*core.FamilyMember, error) {
	var m core.FamilyMember
	var dob sql.NullTime
	err := row.Scan(
		&m.FamilyMemberID,
		&m.Owner,
		&m.MemberName,
		&m.Relationship,
		&dob,
		&m.InsuranceMemberID,
		&m.ActiveStatus,
	)
	if err != nil {
		return nil, err
	}
	if dob.Valid {
		m.DateOfBirth = dob.Time
	}
	return &m, nil
}

func (r *familyMemberRepository) Insert(ctx context.Context, m core.FamilyMember) (core.FamilyMember, error) {
	var dob sql.NullTime
	if !m.DateOfBirth.IsZero() {
		dob = sql.NullTime{Time: m.DateOfBirth, Valid: true}
	}
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO t_family_member (owner, member_name, relationship, date_of_birth,
		    insurance_member_id, active_status)
		VALUES (?, ?, ?, ?, ?, ?)`,
		m.Owner, m.MemberName, m.Relationship, dob, m.InsuranceMemberID, m.ActiveStatus)
	if err != nil {
		return core.FamilyMember{}, fmt.Errorf("insert family member: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.FamilyMember{}, fmt.Errorf("family member insert id: %w", err)
	}
	m.FamilyMemberID = id
	return m, nil
}

func (r *familyMemberRepository) FindByID(ctx context.Context, id int64) (*core.FamilyMember, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+familyMemberColumns+` FROM t_family_member WHERE family_member_id = ?`, id)
	m, err := scanFamilyMember(row)
	if err != nil {
		return nil, fmt.Errorf("find family member %d: %w", id, err)
	}
	return m, nil
}

func (r *familyMemberRepository) ListByOwner(ctx context.Context, owner string) ([]core.FamilyMember, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+familyMemberColumns+` FROM t_family_member
		WHERE owner = ? AND active_status = 1
		ORDER BY member_name`, owner)
	if err != nil {
		return nil, fmt.Errorf("list family members for %s: %w", owner, err)
	}
	defer rows.Close()

	var members []core.FamilyMember
	for rows.Next() {
		m, err := scanFamilyMember(rows)
		if err != nil {
			return nil, fmt.Errorf("scan family member: %w", err)
		}
		members = append(members, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate family members: %w", err)
	}
	return members, nil
}

func (r *familyMemberRepository) Update(ctx context.Context, m core.FamilyMember) error {
	var dob sql.NullTime
	if !m.DateOfBirth.IsZero() {
		dob = sql.NullTime{Time: m.DateOfBirth, Valid: true}
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE t_family_member
		SET member_name = ?, relationship = ?, date_of_birth = ?,
		    insurance_member_id = ?, active_status = ?, date_updated = CURRENT_TIMESTAMP
		WHERE family_member_id = ?`,
		m.MemberName, m.Relationship, dob, m.InsuranceMemberID, m.ActiveStatus, m.FamilyMemberID)
	if err != nil {
		return fmt.Errorf("update family member %d: %w", m.FamilyMemberID, err)
	}
	return requireRow(res, "family member", fmt.Sprint(m.FamilyMemberID))
}

func (r *familyMemberRepository) SetActiveStatus(ctx context.Context, id int64, active bool) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE t_family_member SET active_status = ?, date_updated = CURRENT_TIMESTAMP
		WHERE family_member_id = ?`, active, id)
	if err != nil {
		return fmt.Errorf("set family member active status %d: %w", id, err)
	}
	return requireRow(res, "family member", fmt.Sprint(id))
}
