package core

import (
	"errors"
	"strings"
	"time"
)

// ErrInvalidAmount is returned when a decimal amount cannot be parsed.
var ErrInvalidAmount = errors.New("invalid amount")

const maxNameLength = 50

type (
	// Account is a ledger bucket (a bank account or a credit card). The three
	// total columns are caches recomputed from transaction sums.
	Account struct {
		AccountID      int64       `json:"accountId"`
		NameOwner      string      `json:"accountNameOwner"`
		AccountType    AccountType `json:"accountType"`
		ActiveStatus   bool        `json:"activeStatus"`
		Moniker        string      `json:"moniker"`
		Future         Money       `json:"future"`
		Cleared        Money       `json:"cleared"`
		Outstanding    Money       `json:"outstanding"`
		DateClosed     time.Time   `json:"dateClosed,omitempty"`
		ValidationDate time.Time   `json:"validationDate,omitempty"`
	}

	Transaction struct {
		TransactionID    int64            `json:"transactionId"`
		GUID             string           `json:"guid"`
		AccountID        int64            `json:"accountId"`
		AccountNameOwner string           `json:"accountNameOwner"`
		AccountType      AccountType      `json:"accountType"`
		TransactionDate  time.Time        `json:"transactionDate"`
		Description      string           `json:"description"`
		Category         string           `json:"category"`
		Amount           Money            `json:"amount"`
		State            TransactionState `json:"transactionState"`
		Type             TransactionType  `json:"transactionType"`
		ReoccurringType  ReoccurringType  `json:"reoccurringType"`
		Notes            string           `json:"notes"`
		ActiveStatus     bool             `json:"activeStatus"`
		ReceiptImageID   *int64           `json:"receiptImageId,omitempty"`
	}

	Category struct {
		CategoryID   int64  `json:"categoryId"`
		Name         string `json:"categoryName"`
		ActiveStatus bool   `json:"activeStatus"`
		Count        int64  `json:"categoryCount"`
	}

	Description struct {
		DescriptionID int64  `json:"descriptionId"`
		Name          string `json:"descriptionName"`
		ActiveStatus  bool   `json:"activeStatus"`
		Count         int64  `json:"descriptionCount"`
	}

	// Payment settles a credit account from a funding (debit) account. The two
	// GUIDs link the double-entry transactions it spawned.
	Payment struct {
		PaymentID          int64     `json:"paymentId"`
		SourceAccount      string    `json:"sourceAccount"`
		DestinationAccount string    `json:"destinationAccount"`
		TransactionDate    time.Time `json:"transactionDate"`
		Amount             Money     `json:"amount"`
		GUIDSource         string    `json:"guidSource"`
		GUIDDestination    string    `json:"guidDestination"`
		ActiveStatus       bool      `json:"activeStatus"`
	}

	// Transfer moves funds between two debit accounts.
	Transfer struct {
		TransferID         int64     `json:"transferId"`
		SourceAccount      string    `json:"sourceAccount"`
		DestinationAccount string    `json:"destinationAccount"`
		TransactionDate    time.Time `json:"transactionDate"`
		Amount             Money     `json:"amount"`
		GUIDSource         string    `json:"guidSource"`
		GUIDDestination    string    `json:"guidDestination"`
		ActiveStatus       bool      `json:"activeStatus"`
	}

	Parameter struct {
		ParameterID  int64  `json:"parameterId"`
		Name         string `json:"parameterName"`
		Value        string `json:"parameterValue"`
		ActiveStatus bool   `json:"activeStatus"`
	}

	FamilyMember struct {
		FamilyMemberID    int64              `json:"familyMemberId"`
		Owner             string             `json:"owner"`
		MemberName        string             `json:"memberName"`
		Relationship      FamilyRelationship `json:"relationship"`
		DateOfBirth       time.Time          `json:"dateOfBirth,omitempty"`
		InsuranceMemberID string             `json:"insuranceMemberId,omitempty"`
		ActiveStatus      bool               `json:"activeStatus"`
	}

	MedicalExpense struct {
		MedicalExpenseID      int64       `json:"medicalExpenseId"`
		TransactionID         *int64      `json:"transactionId,omitempty"`
		ProviderID            *int64      `json:"providerId,omitempty"`
		FamilyMemberID        *int64      `json:"familyMemberId,omitempty"`
		ServiceDate           time.Time   `json:"serviceDate"`
		ServiceDescription    string      `json:"serviceDescription"`
		ProcedureCode         string      `json:"procedureCode,omitempty"`
		DiagnosisCode         string      `json:"diagnosisCode,omitempty"`
		BilledAmount          Money       `json:"billedAmount"`
		InsuranceDiscount     Money       `json:"insuranceDiscount"`
		InsurancePaid         Money       `json:"insurancePaid"`
		PatientResponsibility Money       `json:"patientResponsibility"`
		PaidDate              time.Time   `json:"paidDate,omitempty"`
		IsOutOfNetwork        bool        `json:"isOutOfNetwork"`
		ClaimNumber           string      `json:"claimNumber,omitempty"`
		ClaimStatus           ClaimStatus `json:"claimStatus"`
		ActiveStatus          bool        `json:"activeStatus"`
	}

	ReceiptImage struct {
		ReceiptImageID int64           `json:"receiptImageId"`
		TransactionID  int64           `json:"transactionId"`
		Image          []byte          `json:"image"`
		Format         ImageFormatType `json:"imageFormatType"`
		ActiveStatus   bool            `json:"activeStatus"`
	}

	ValidationAmount struct {
		ValidationAmountID int64            `json:"validationAmountId"`
		AccountID          int64            `json:"accountId"`
		ValidationDate     time.Time        `json:"validationDate"`
		State              TransactionState `json:"transactionState"`
		Amount             Money            `json:"amount"`
		ActiveStatus       bool             `json:"activeStatus"`
	}
)

func (a Account) Validate() error {
	errs := ValidationErrors{}
	if !ValidAccountNameOwner(a.NameOwner) {
		errs.add("accountNameOwner", "must be lowercase letters, digits and single underscores")
	} else if len(a.NameOwner) > maxNameLength {
		errs.add("accountNameOwner", "must be at most 50 characters")
	}
	if !a.AccountType.Valid() || a.AccountType == AccountTypeUndefined {
		errs.add("accountType", "must be credit or debit")
	}
	if a.Moniker != "" && !monikerPattern.MatchString(a.Moniker) {
		errs.add("moniker", "must be a 4-digit code")
	}
	return errs.orNil()
}

func (t Transaction) Validate() error {
	errs := ValidationErrors{}
	if t.GUID != "" && !ValidGUID(t.GUID) {
		errs.add("guid", "must be a lowercase UUID")
	}
	if !ValidAccountNameOwner(t.AccountNameOwner) {
		errs.add("accountNameOwner", "must be lowercase letters, digits and single underscores")
	}
	if t.TransactionDate.IsZero() {
		errs.add("transactionDate", "must be set")
	} else if t.TransactionDate.Year() < 2000 {
		errs.add("transactionDate", "must be on or after 2000-01-01")
	}
	desc := strings.TrimSpace(t.Description)
	if desc == "" {
		errs.add("description", "must not be empty")
	} else if len(desc) > 75 {
		errs.add("description", "must be at most 75 characters")
	}
	if strings.TrimSpace(t.Category) == "" {
		errs.add("category", "must not be empty")
	} else if len(t.Category) > maxNameLength {
		errs.add("category", "must be at most 50 characters")
	}
	if !t.State.Valid() {
		errs.add("transactionState", "must be cleared, outstanding, future or undefined")
	}
	if !t.Type.Valid() {
		errs.add("transactionType", "must be expense, income, transfer or undefined")
	}
	if !t.ReoccurringType.Valid() {
		errs.add("reoccurringType", "unknown reoccurring type")
	}
	if len(t.Notes) > 100 {
		errs.add("notes", "must be at most 100 characters")
	}
	return errs.orNil()
}

func (c Category) Validate() error {
	errs := ValidationErrors{}
	name := strings.TrimSpace(c.Name)
	switch {
	case name == "":
		errs.add("categoryName", "must not be empty")
	case len(name) > maxNameLength:
		errs.add("categoryName", "must be at most 50 characters")
	case name != NormalizeName(name):
		errs.add("categoryName", "must be lowercase")
	}
	return errs.orNil()
}

func (d Description) Validate() error {
	errs := ValidationErrors{}
	name := strings.TrimSpace(d.Name)
	switch {
	case name == "":
		errs.add("descriptionName", "must not be empty")
	case len(name) > maxNameLength:
		errs.add("descriptionName", "must be at most 50 characters")
	case name != NormalizeName(name):
		errs.add("descriptionName", "must be lowercase")
	}
	return errs.orNil()
}

func (p Payment) Validate() error {
	errs := ValidationErrors{}
	if p.SourceAccount != "" && !ValidAccountNameOwner(p.SourceAccount) {
		errs.add("sourceAccount", "must be lowercase letters, digits and single underscores")
	}
	if !ValidAccountNameOwner(p.DestinationAccount) {
		errs.add("destinationAccount", "must be lowercase letters, digits and single underscores")
	}
	if p.SourceAccount != "" && p.SourceAccount == p.DestinationAccount {
		errs.add("destinationAccount", "must differ from source account")
	}
	if p.TransactionDate.IsZero() {
		errs.add("transactionDate", "must be set")
	}
	if p.Amount.Cents <= 0 {
		errs.add("amount", "must be positive")
	}
	return errs.orNil()
}

func (t Transfer) Validate() error {
	errs := ValidationErrors{}
	if !ValidAccountNameOwner(t.SourceAccount) {
		errs.add("sourceAccount", "must be lowercase letters, digits and single underscores")
	}
	if !ValidAccountNameOwner(t.DestinationAccount) {
		errs.add("destinationAccount", "must be lowercase letters, digits and single underscores")
	}
	if t.SourceAccount == t.DestinationAccount {
		errs.add("destinationAccount", "must differ from source account")
	}
	if t.TransactionDate.IsZero() {
		errs.add("transactionDate", "must be set")
	}
	if t.Amount.Cents <= 0 {
		errs.add("amount", "must be positive")
	}
	return errs.orNil()
}

func (p Parameter) Validate() error {
	errs := ValidationErrors{}
	if strings.TrimSpace(p.Name) == "" {
		errs.add("parameterName", "must not be empty")
	} else if len(p.Name) > maxNameLength {
		errs.add("parameterName", "must be at most 50 characters")
	}
	if strings.TrimSpace(p.Value) == "" {
		errs.add("parameterValue", "must not be empty")
	}
	return errs.orNil()
}

func (f FamilyMember) Validate() error {
	errs := ValidationErrors{}
	if !ValidAccountNameOwner(f.Owner) {
		errs.add("owner", "must be lowercase letters, digits and single underscores")
	}
	if strings.TrimSpace(f.MemberName) == "" {
		errs.add("memberName", "must not be empty")
	} else if len(f.MemberName) > maxNameLength {
		errs.add("memberName", "must be at most 50 characters")
	}
	if !f.Relationship.Valid() {
		errs.add("relationship", "must be self, spouse, child, dependent or other")
	}
	if !f.DateOfBirth.IsZero() && f.DateOfBirth.After(time.Now()) {
		errs.add("dateOfBirth", "must not be in the future")
	}
	return errs.orNil()
}

func (m MedicalExpense) Validate() error {
	errs := ValidationErrors{}
	if m.ServiceDate.IsZero() {
		errs.add("serviceDate", "must be set")
	}
	if m.BilledAmount.Cents < 0 {
		errs.add("billedAmount", "must not be negative")
	}
	if m.InsuranceDiscount.Cents < 0 {
		errs.add("insuranceDiscount", "must not be negative")
	}
	if m.InsurancePaid.Cents < 0 {
		errs.add("insurancePaid", "must not be negative")
	}
	if m.PatientResponsibility.Cents < 0 {
		errs.add("patientResponsibility", "must not be negative")
	}
	allocated := m.InsuranceDiscount.Cents + m.InsurancePaid.Cents + m.PatientResponsibility.Cents
	if allocated > m.BilledAmount.Cents {
		errs.add("billedAmount", "allocated amounts exceed billed amount")
	}
	if !m.ClaimStatus.Valid() {
		errs.add("claimStatus", "unknown claim status")
	}
	return errs.orNil()
}

func (r ReceiptImage) Validate() error {
	errs := ValidationErrors{}
	if r.TransactionID <= 0 {
		errs.add("transactionId", "must reference a transaction")
	}
	if len(r.Image) == 0 {
		errs.add("image", "must not be empty")
	}
	if !r.Format.Valid() || r.Format == ImageFormatUndefined {
		errs.add("imageFormatType", "must be jpeg or png")
	}
	return errs.orNil()
}

func (v ValidationAmount) Validate() error {
	errs := ValidationErrors{}
	if v.AccountID <= 0 {
		errs.add("accountId", "must reference an account")
	}
	if v.ValidationDate.IsZero() {
		errs.add("validationDate", "must be set")
	}
	if !v.State.Valid() {
		errs.add("transactionState", "must be cleared, outstanding, future or undefined")
	}
	return errs.orNil()
}

// Normalize applies the stored-form conventions before validation: lowercase
// trimmed description and category, defaulted enums.
func (t *Transaction) Normalize() {
	t.Description = NormalizeName(t.Description)
	t.Category = NormalizeName(t.Category)
	if t.State == "" {
		t.State = TransactionStateUndefined
	}
	if t.Type == "" {
		t.Type = TransactionTypeUndefined
	}
	if t.ReoccurringType == "" {
		t.ReoccurringType = ReoccurringOnetime
	}
}
