package storage

import (
	"context"
	"database/sql"
	"fmt"

	"fintrack/internal/core"
)

// MedicalExpenseRepository is the data access interface for medical expenses
// and their optional link to a ledger transaction.
type MedicalExpenseRepository interface {
	Insert(ctx context.Context, m core.MedicalExpense) (core.MedicalExpense, error)
	FindByID(ctx context.Context, id int64) (*core.MedicalExpense, error)
	FindByTransactionID(ctx context.Context, transactionID int64) (*core.MedicalExpense, error)
	List(ctx context.Context) ([]core.MedicalExpense, error)
	ListByFamilyMember(ctx context.Context, familyMemberID int64) ([]core.MedicalExpense, error)
	Update(ctx context.Context, m core.MedicalExpense) error
	UpdateClaimStatus(ctx context.Context, id int64, status core.ClaimStatus) error
	MarkPaid(ctx context.Context, id int64, paidDate sql.NullTime) error
	SetActiveStatus(ctx context.Context, id int64, active bool) error
}

type medicalExpenseRepository struct {
	db *sql.DB
}

func NewMedicalExpenseRepository(store *Store) MedicalExpenseRepository {
	return &medicalExpenseRepository{db: store.DB()}
}

const medicalExpenseColumns = `medical_expense_id, transaction_id, provider_id, family_member_id,
       service_date, service_description, procedure_code, diagnosis_code,
       billed_cents, insurance_discount_cents, insurance_paid_cents, patient_resp_cents,
       paid_date, is_out_of_network, claim_number, claim_status, active_status`

func scanMedicalExpense(row interface{ Scan(...any) error }) (*core.MedicalExpense, error) {
	var m core.MedicalExpense
	var paidDate sql.NullTime
	err := row.Scan(
		&m.MedicalExpenseID,
		&m.TransactionID,
		&m.ProviderID,
		&m.FamilyMemberID,
		&m.ServiceDate,
		&m.ServiceDescription,
		&m.ProcedureCode,
		&m.DiagnosisCode,
		&m.BilledAmount.Cents,
		&m.InsuranceDiscount.Cents,
		&m.InsurancePaid.Cents,
		&m.PatientResponsibility.Cents,
		&paidDate,
		&m.IsOutOfNetwork,
		&m.ClaimNumber,
		&m.ClaimStatus,
		&m.ActiveStatus,
	)
	if err != nil {
		return nil, err
	}
	if paidDate.Valid {
		m.PaidDate = paidDate.Time
	}
	return &m, nil
}

func (r *medicalExpenseRepository) Insert(ctx context.Context, m core.MedicalExpense) (core.MedicalExpense, error) {
	var paidDate sql.NullTime
	if !m.PaidDate.IsZero() {
		paidDate = sql.NullTime{Time: m.PaidDate, Valid: true}
	}
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO t_medical_expense (transaction_id, provider_id, family_member_id,
		    service_date, service_description, procedure_code, diagnosis_code,
		    billed_cents, insurance_discount_cents, insurance_paid_cents, patient_resp_cents,
		    paid_date, is_out_of_network, claim_number, claim_status, active_status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.TransactionID, m.ProviderID, m.FamilyMemberID,
		m.ServiceDate, m.ServiceDescription, m.ProcedureCode, m.DiagnosisCode,
		m.BilledAmount.Cents, m.InsuranceDiscount.Cents, m.InsurancePaid.Cents,
		m.PatientResponsibility.Cents,
		paidDate, m.IsOutOfNetwork, m.ClaimNumber, m.ClaimStatus, m.ActiveStatus)
	if err != nil {
		return core.MedicalExpense{}, fmt.Errorf("insert medical expense: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.MedicalExpense{}, fmt.Errorf("medical expense insert id: %w", err)
	}
	m.MedicalExpenseID = id
	return m, nil
}

func (r *medicalExpenseRepository) FindByID(ctx context.Context, id int64) (*core.MedicalExpense, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+medicalExpenseColumns+` FROM t_medical_expense WHERE medical_expense_id = ?`, id)
	m, err := scanMedicalExpense(row)
	if err != nil {
		return nil, fmt.Errorf("find medical expense %d: %w", id, err)
	}
	return m, nil
}

func (r *medicalExpenseRepository) FindByTransactionID(ctx context.Context, transactionID int64) (*core.MedicalExpense, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+medicalExpenseColumns+` FROM t_medical_expense WHERE transaction_id = ?`, transactionID)
	m, err := scanMedicalExpense(row)
	if err != nil {
		return nil, fmt.Errorf("find medical expense for transaction %d: %w", transactionID, err)
	}
	return m, nil
}

func (r *medicalExpenseRepository) List(ctx context.Context) ([]core.MedicalExpense, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+medicalExpenseColumns+` FROM t_medical_expense
		WHERE active_status = 1
		ORDER BY service_date DESC, medical_expense_id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list medical expenses: %w", err)
	}
	defer rows.Close()
	return collectMedicalExpenses(rows)
}

func (r *medicalExpenseRepository) ListByFamilyMember(ctx context.Context, familyMemberID int64) ([]core.MedicalExpense, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+medicalExpenseColumns+` FROM t_medical_expense
		WHERE family_member_id = ? AND active_status = 1
		ORDER BY service_date DESC, medical_expense_id DESC`, familyMemberID)
	if err != nil {
		return nil, fmt.Errorf("list medical expenses for member %d: %w", familyMemberID, err)
	}
	defer rows.Close()
	return collectMedicalExpenses(rows)
}

func collectMedicalExpenses(rows *sql.Rows) ([]core.MedicalExpense, error) {
	var expenses []core.MedicalExpense
	for rows.Next() {
		m, err := scanMedicalExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("scan medical expense: %w", err)
		}
		expenses = append(expenses, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate medical expenses: %w", err)
	}
	return expenses, nil
}

func (r *medicalExpenseRepository) Update(ctx context.Context, m core.MedicalExpense) error {
	var paidDate sql.NullTime
	if !m.PaidDate.IsZero() {
		paidDate = sql.NullTime{Time: m.PaidDate, Valid: true}
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE t_medical_expense
		SET transaction_id = ?, provider_id = ?, family_member_id = ?,
		    service_date = ?, service_description = ?, procedure_code = ?, diagnosis_code = ?,
		    billed_cents = ?, insurance_discount_cents = ?, insurance_paid_cents = ?,
		    patient_resp_cents = ?, paid_date = ?, is_out_of_network = ?,
		    claim_number = ?, claim_status = ?, active_status = ?,
		    date_updated = CURRENT_TIMESTAMP
		WHERE medical_expense_id = ?`,
		m.TransactionID, m.ProviderID, m.FamilyMemberID,
		m.ServiceDate, m.ServiceDescription, m.ProcedureCode, m.DiagnosisCode,
		m.BilledAmount.Cents, m.InsuranceDiscount.Cents, m.InsurancePaid.Cents,
		m.PatientResponsibility.Cents, paidDate, m.IsOutOfNetwork,
		m.ClaimNumber, m.ClaimStatus, m.ActiveStatus, m.MedicalExpenseID)
	if err != nil {
		return fmt.Errorf("update medical expense %d: %w", m.MedicalExpenseID, err)
	}
	return requireRow(res, "medical expense", fmt.Sprint(m.MedicalExpenseID))
}

func (r *medicalExpenseRepository) UpdateClaimStatus(ctx context.Context, id int64, status core.ClaimStatus) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE t_medical_expense SET claim_status = ?, date_updated = CURRENT_TIMESTAMP
		WHERE medical_expense_id = ?`, status, id)
	if err != nil {
		return fmt.Errorf("update claim status %d: %w", id, err)
	}
	return requireRow(res, "medical expense", fmt.Sprint(id))
}

func (r *medicalExpenseRepository) MarkPaid(ctx context.Context, id int64, paidDate sql.NullTime) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE t_medical_expense SET paid_date = ?, claim_status = ?,
		    date_updated = CURRENT_TIMESTAMP
		WHERE medical_expense_id = ?`, paidDate, core.ClaimStatusPaid, id)
	if err != nil {
		return fmt.Errorf("mark medical expense paid %d: %w", id, err)
	}
	return requireRow(res, "medical expense", fmt.Sprint(id))
}

func (r *medicalExpenseRepository) SetActiveStatus(ctx context.Context, id int64, active bool) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE t_medical_expense SET active_status = ?, date_updated = CURRENT_TIMESTAMP
		WHERE medical_expense_id = ?`, active, id)
	if err != nil {
		return fmt.Errorf("set medical expense active status %d: %w", id, err)
	}
	return requireRow(res, "medical expense", fmt.Sprint(id))
}
