package core

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func validTransaction() Transaction {
	return Transaction{
		GUID:             "123e4567-e89b-12d3-a456-426614174000",
		AccountNameOwner: "checking_alice",
		TransactionDate:  time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		Description:      "grocery store",
		Category:         "groceries",
		Amount:           Money{Cents: -4599},
		State:            TransactionStateOutstanding,
		Type:             TransactionTypeExpense,
		ReoccurringType:  ReoccurringOnetime,
		ActiveStatus:     true,
	}
}

func TestTransactionValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Transaction)
		wantField string
	}{
		{"valid", func(tr *Transaction) {}, ""},
		{"bad guid", func(tr *Transaction) { tr.GUID = "not-a-guid" }, "guid"},
		{"bad account name", func(tr *Transaction) { tr.AccountNameOwner = "Checking Alice" }, "accountNameOwner"},
		{"zero date", func(tr *Transaction) { tr.TransactionDate = time.Time{} }, "transactionDate"},
		{"ancient date", func(tr *Transaction) { tr.TransactionDate = time.Date(1999, 1, 1, 0, 0, 0, 0, time.UTC) }, "transactionDate"},
		{"empty description", func(tr *Transaction) { tr.Description = "  " }, "description"},
		{"long description", func(tr *Transaction) { tr.Description = strings.Repeat("x", 76) }, "description"},
		{"empty category", func(tr *Transaction) { tr.Category = "" }, "category"},
		{"bad state", func(tr *Transaction) { tr.State = "pending" }, "transactionState"},
		{"bad type", func(tr *Transaction) { tr.Type = "debit" }, "transactionType"},
		{"bad reoccurring", func(tr *Transaction) { tr.ReoccurringType = "sometimes" }, "reoccurringType"},
		{"long notes", func(tr *Transaction) { tr.Notes = strings.Repeat("n", 101) }, "notes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := validTransaction()
			tt.mutate(&tr)
			err := tr.Validate()
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("Validate() unexpected error: %v", err)
				}
				return
			}
			var verrs ValidationErrors
			if !errors.As(err, &verrs) {
				t.Fatalf("Validate() = %v, want ValidationErrors", err)
			}
			if _, ok := verrs[tt.wantField]; !ok {
				t.Errorf("Validate() missing field %q, got %v", tt.wantField, verrs)
			}
		})
	}
}

func TestAccountValidate(t *testing.T) {
	acct := Account{
		NameOwner:   "visa_alice",
		AccountType: AccountTypeCredit,
		Moniker:     "4321",
	}
	if err := acct.Validate(); err != nil {
		t.Fatalf("valid account rejected: %v", err)
	}

	acct.NameOwner = "Visa Alice"
	acct.AccountType = AccountTypeUndefined
	acct.Moniker = "abc"
	err := acct.Validate()
	var verrs ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("Validate() = %v, want ValidationErrors", err)
	}
	for _, field := range []string{"accountNameOwner", "accountType", "moniker"} {
		if _, ok := verrs[field]; !ok {
			t.Errorf("missing validation failure for %q: %v", field, verrs)
		}
	}
}

func TestPaymentValidate(t *testing.T) {
	p := Payment{
		SourceAccount:      "checking_alice",
		DestinationAccount: "visa_alice",
		TransactionDate:    time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		Amount:             Money{Cents: 10000},
	}
	if err := p.Validate(); err != nil {
		t.Fatalf("valid payment rejected: %v", err)
	}

	p.DestinationAccount = p.SourceAccount
	if err := p.Validate(); err == nil {
		t.Error("payment to same account should fail validation")
	}

	p.DestinationAccount = "visa_alice"
	p.Amount = Money{Cents: 0}
	if err := p.Validate(); err == nil {
		t.Error("zero amount payment should fail validation")
	}

	// Source may be omitted; the service fills it from the payment_account parameter.
	p.SourceAccount = ""
	p.Amount = Money{Cents: 500}
	if err := p.Validate(); err != nil {
		t.Errorf("payment without source should pass validation: %v", err)
	}
}

func TestMedicalExpenseValidate(t *testing.T) {
	m := MedicalExpense{
		ServiceDate:           time.Date(2024, 2, 9, 0, 0, 0, 0, time.UTC),
		BilledAmount:          Money{Cents: 30000},
		InsuranceDiscount:     Money{Cents: 5000},
		InsurancePaid:         Money{Cents: 20000},
		PatientResponsibility: Money{Cents: 5000},
		ClaimStatus:           ClaimStatusSubmitted,
	}
	if err := m.Validate(); err != nil {
		t.Fatalf("valid medical expense rejected: %v", err)
	}

	m.InsurancePaid = Money{Cents: 26000} // allocation now exceeds billed
	err := m.Validate()
	var verrs ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("Validate() = %v, want ValidationErrors", err)
	}
	if _, ok := verrs["billedAmount"]; !ok {
		t.Errorf("expected billedAmount allocation failure, got %v", verrs)
	}
}

func TestTransactionNormalize(t *testing.T) {
	tr := Transaction{Description: "  Whole Foods  ", Category: "GROCERIES"}
	tr.Normalize()

	if tr.Description != "whole foods" {
		t.Errorf("description = %q, want %q", tr.Description, "whole foods")
	}
	if tr.Category != "groceries" {
		t.Errorf("category = %q, want %q", tr.Category, "groceries")
	}
	if tr.State != TransactionStateUndefined {
		t.Errorf("state = %q, want undefined", tr.State)
	}
	if tr.ReoccurringType != ReoccurringOnetime {
		t.Errorf("reoccurringType = %q, want onetime", tr.ReoccurringType)
	}
}

func TestValidationErrorsMessage(t *testing.T) {
	errs := ValidationErrors{"b": "second", "a": "first"}
	got := errs.Error()
	want := "validation failed: a: first; b: second"
	if got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
