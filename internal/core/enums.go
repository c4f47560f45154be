package core

// AccountType distinguishes credit accounts (cards, lines of credit) from
// debit accounts (checking, savings).
type AccountType string

const (
	AccountTypeCredit    AccountType = "credit"
	AccountTypeDebit     AccountType = "debit"
	AccountTypeUndefined AccountType = "undefined"
)

func (t AccountType) Valid() bool {
	switch t {
	case AccountTypeCredit, AccountTypeDebit, AccountTypeUndefined:
		return true
	}
	return false
}

// TransactionState tracks where a transaction sits in its lifecycle. Totals
// are aggregated per state.
type TransactionState string

const (
	TransactionStateCleared     TransactionState = "cleared"
	TransactionStateOutstanding TransactionState = "outstanding"
	TransactionStateFuture      TransactionState = "future"
	TransactionStateUndefined   TransactionState = "undefined"
)

func (s TransactionState) Valid() bool {
	switch s {
	case TransactionStateCleared, TransactionStateOutstanding,
		TransactionStateFuture, TransactionStateUndefined:
		return true
	}
	return false
}

// ParseTransactionState maps a wire value onto a known state, falling back to
// undefined for anything it does not recognize.
func ParseTransactionState(s string) TransactionState {
	state := TransactionState(s)
	if state.Valid() {
		return state
	}
	return TransactionStateUndefined
}

type TransactionType string

const (
	TransactionTypeExpense   TransactionType = "expense"
	TransactionTypeIncome    TransactionType = "income"
	TransactionTypeTransfer  TransactionType = "transfer"
	TransactionTypeUndefined TransactionType = "undefined"
)

func (t TransactionType) Valid() bool {
	switch t {
	case TransactionTypeExpense, TransactionTypeIncome,
		TransactionTypeTransfer, TransactionTypeUndefined:
		return true
	}
	return false
}

// ReoccurringType marks how often a transaction repeats.
type ReoccurringType string

const (
	ReoccurringOnetime     ReoccurringType = "onetime"
	ReoccurringMonthly     ReoccurringType = "monthly"
	ReoccurringFortnightly ReoccurringType = "fortnightly"
	ReoccurringQuarterly   ReoccurringType = "quarterly"
	ReoccurringBiannually  ReoccurringType = "biannually"
	ReoccurringAnnually    ReoccurringType = "annually"
	ReoccurringUndefined   ReoccurringType = "undefined"
)

func (t ReoccurringType) Valid() bool {
	switch t {
	case ReoccurringOnetime, ReoccurringMonthly, ReoccurringFortnightly,
		ReoccurringQuarterly, ReoccurringBiannually, ReoccurringAnnually,
		ReoccurringUndefined:
		return true
	}
	return false
}

type ImageFormatType string

const (
	ImageFormatJPEG      ImageFormatType = "jpeg"
	ImageFormatPNG       ImageFormatType = "png"
	ImageFormatUndefined ImageFormatType = "undefined"
)

func (f ImageFormatType) Valid() bool {
	switch f {
	case ImageFormatJPEG, ImageFormatPNG, ImageFormatUndefined:
		return true
	}
	return false
}

// ClaimStatus tracks an insurance claim attached to a medical expense.
type ClaimStatus string

const (
	ClaimStatusSubmitted  ClaimStatus = "submitted"
	ClaimStatusProcessing ClaimStatus = "processing"
	ClaimStatusApproved   ClaimStatus = "approved"
	ClaimStatusDenied     ClaimStatus = "denied"
	ClaimStatusPaid       ClaimStatus = "paid"
	ClaimStatusClosed     ClaimStatus = "closed"
)

func (s ClaimStatus) Valid() bool {
	switch s {
	case ClaimStatusSubmitted, ClaimStatusProcessing, ClaimStatusApproved,
		ClaimStatusDenied, ClaimStatusPaid, ClaimStatusClosed:
		return true
	}
	return false
}

type FamilyRelationship string

const (
	RelationshipSelf      FamilyRelationship = "self"
	RelationshipSpouse    FamilyRelationship = "spouse"
	RelationshipChild     FamilyRelationship = "child"
	RelationshipDependent FamilyRelationship = "dependent"
	RelationshipOther     FamilyRelationship = "other"
)

func (r FamilyRelationship) Valid() bool {
	switch r {
	case RelationshipSelf, RelationshipSpouse, RelationshipChild,
		RelationshipDependent, RelationshipOther:
		return true
	}
	return false
}
