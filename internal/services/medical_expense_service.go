package services

import (
	"context"
	"database/sql"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/resilience"
	"fintrack/internal/result"
	"fintrack/internal/storage"
)

// claimTransitions is the allowed claim status state machine. Closed is
// terminal.
var claimTransitions = map[core.ClaimStatus][]core.ClaimStatus{
	core.ClaimStatusSubmitted:  {core.ClaimStatusProcessing, core.ClaimStatusApproved, core.ClaimStatusDenied, core.ClaimStatusClosed},
	core.ClaimStatusProcessing: {core.ClaimStatusApproved, core.ClaimStatusDenied, core.ClaimStatusClosed},
	core.ClaimStatusApproved:   {core.ClaimStatusPaid, core.ClaimStatusClosed},
	core.ClaimStatusDenied:     {core.ClaimStatusProcessing, core.ClaimStatusClosed},
	core.ClaimStatusPaid:       {core.ClaimStatusClosed},
	core.ClaimStatusClosed:     {},
}

func claimTransitionAllowed(from, to core.ClaimStatus) bool {
	for _, next := range claimTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// MedicalExpenseService tracks medical expenses, their insurance claim
// lifecycle, and their optional links to ledger transactions and family
// members. Referential links are enforced by the schema, so a dangling
// transaction or member id surfaces as a data integrity violation.
type MedicalExpenseService struct {
	expenses storage.MedicalExpenseRepository
	exec     *resilience.Executor
	logger   *log.Logger
}

func NewMedicalExpenseService(expenses storage.MedicalExpenseRepository, exec *resilience.Executor, logger *log.Logger) *MedicalExpenseService {
	return &MedicalExpenseService{
		expenses: expenses,
		exec:     exec,
		logger:   logger.WithComponent(log.ComponentService),
	}
}

func (s *MedicalExpenseService) Create(ctx context.Context, expense core.MedicalExpense) result.ServiceResult[core.MedicalExpense] {
	expense.ActiveStatus = true
	if expense.ClaimStatus == "" {
		expense.ClaimStatus = core.ClaimStatusSubmitted
	}
	if err := expense.Validate(); err != nil {
		return result.Classify[core.MedicalExpense](err)
	}

	created, err := resilience.Execute(ctx, s.exec, "medical_expense.insert", func(ctx context.Context) (core.MedicalExpense, error) {
		return s.expenses.Insert(ctx, expense)
	})
	if err != nil {
		return result.Classify[core.MedicalExpense](err)
	}
	return result.Success(created)
}

func (s *MedicalExpenseService) Get(ctx context.Context, id int64) result.ServiceResult[core.MedicalExpense] {
	expense, err := resilience.Execute(ctx, s.exec, "medical_expense.find", func(ctx context.Context) (*core.MedicalExpense, error) {
		return s.expenses.FindByID(ctx, id)
	})
	if err != nil {
		return result.Classify[core.MedicalExpense](err)
	}
	return result.Success(*expense)
}

func (s *MedicalExpenseService) GetByTransaction(ctx context.Context, transactionID int64) result.ServiceResult[core.MedicalExpense] {
	expense, err := resilience.Execute(ctx, s.exec, "medical_expense.find_by_transaction", func(ctx context.Context) (*core.MedicalExpense, error) {
		return s.expenses.FindByTransactionID(ctx, transactionID)
	})
	if err != nil {
		return result.Classify[core.MedicalExpense](err)
	}
	return result.Success(*expense)
}

func (s *MedicalExpenseService) List(ctx context.Context) result.ServiceResult[[]core.MedicalExpense] {
	expenses, err := resilience.Execute(ctx, s.exec, "medical_expense.list", func(ctx context.Context) ([]core.MedicalExpense, error) {
		return s.expenses.List(ctx)
	})
	if err != nil {
		return result.Classify[[]core.MedicalExpense](err)
	}
	return result.Success(expenses)
}

func (s *MedicalExpenseService) ListByFamilyMember(ctx context.Context, familyMemberID int64) result.ServiceResult[[]core.MedicalExpense] {
	expenses, err := resilience.Execute(ctx, s.exec, "medical_expense.list_by_member", func(ctx context.Context) ([]core.MedicalExpense, error) {
		return s.expenses.ListByFamilyMember(ctx, familyMemberID)
	})
	if err != nil {
		return result.Classify[[]core.MedicalExpense](err)
	}
	return result.Success(expenses)
}

func (s *MedicalExpenseService) Update(ctx context.Context, expense core.MedicalExpense) result.ServiceResult[core.MedicalExpense] {
	if err := expense.Validate(); err != nil {
		return result.Classify[core.MedicalExpense](err)
	}

	current, err := resilience.Execute(ctx, s.exec, "medical_expense.find", func(ctx context.Context) (*core.MedicalExpense, error) {
		return s.expenses.FindByID(ctx, expense.MedicalExpenseID)
	})
	if err != nil {
		return result.Classify[core.MedicalExpense](err)
	}
	if expense.ClaimStatus != current.ClaimStatus && !claimTransitionAllowed(current.ClaimStatus, expense.ClaimStatus) {
		return result.Business[core.MedicalExpense](result.CodeInvalidStateTransition,
			"claim cannot move from "+string(current.ClaimStatus)+" to "+string(expense.ClaimStatus))
	}

	_, err = resilience.Execute(ctx, s.exec, "medical_expense.update", func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.expenses.Update(ctx, expense)
	})
	if err != nil {
		return result.Classify[core.MedicalExpense](err)
	}
	return s.Get(ctx, expense.MedicalExpenseID)
}

// UpdateClaimStatus advances the claim through its state machine.
func (s *MedicalExpenseService) UpdateClaimStatus(ctx context.Context, id int64, status core.ClaimStatus) result.ServiceResult[core.MedicalExpense] {
	if !status.Valid() {
		return result.Validation[core.MedicalExpense](core.ValidationErrors{
			"claimStatus": "unknown claim status",
		})
	}

	current, err := resilience.Execute(ctx, s.exec, "medical_expense.find", func(ctx context.Context) (*core.MedicalExpense, error) {
		return s.expenses.FindByID(ctx, id)
	})
	if err != nil {
		return result.Classify[core.MedicalExpense](err)
	}
	if status != current.ClaimStatus && !claimTransitionAllowed(current.ClaimStatus, status) {
		return result.Business[core.MedicalExpense](result.CodeInvalidStateTransition,
			"claim cannot move from "+string(current.ClaimStatus)+" to "+string(status))
	}

	_, err = resilience.Execute(ctx, s.exec, "medical_expense.update_claim", func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.expenses.UpdateClaimStatus(ctx, id, status)
	})
	if err != nil {
		return result.Classify[core.MedicalExpense](err)
	}
	return s.Get(ctx, id)
}

// MarkPaid records the paid date and moves the claim to paid. Only approved
// claims can be paid.
func (s *MedicalExpenseService) MarkPaid(ctx context.Context, id int64, paidDate time.Time) result.ServiceResult[core.MedicalExpense] {
	current, err := resilience.Execute(ctx, s.exec, "medical_expense.find", func(ctx context.Context) (*core.MedicalExpense, error) {
		return s.expenses.FindByID(ctx, id)
	})
	if err != nil {
		return result.Classify[core.MedicalExpense](err)
	}
	if !claimTransitionAllowed(current.ClaimStatus, core.ClaimStatusPaid) {
		return result.Business[core.MedicalExpense](result.CodeInvalidStateTransition,
			"claim cannot move from "+string(current.ClaimStatus)+" to paid")
	}
	if paidDate.IsZero() {
		paidDate = time.Now()
	}

	_, err = resilience.Execute(ctx, s.exec, "medical_expense.mark_paid", func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.expenses.MarkPaid(ctx, id, sql.NullTime{Time: paidDate, Valid: true})
	})
	if err != nil {
		return result.Classify[core.MedicalExpense](err)
	}
	return s.Get(ctx, id)
}

func (s *MedicalExpenseService) Deactivate(ctx context.Context, id int64) result.ServiceResult[struct{}] {
	_, err := resilience.Execute(ctx, s.exec, "medical_expense.deactivate", func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.expenses.SetActiveStatus(ctx, id, false)
	})
	if err != nil {
		return result.Classify[struct{}](err)
	}
	return result.Success(struct{}{})
}
