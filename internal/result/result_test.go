package result

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/core"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus Status
		wantCode   Code
	}{
		{
			name:       "no rows maps to not found",
			err:        fmt.Errorf("find account: %w", sql.ErrNoRows),
			wantStatus: StatusNotFound,
		},
		{
			name:       "validation errors map to validation",
			err:        core.ValidationErrors{"amount": "must be positive"},
			wantStatus: StatusValidationError,
		},
		{
			name:       "business error carries its code",
			err:        NewBusinessError(CodeInvalidAccountType, "destination must be a credit account"),
			wantStatus: StatusBusinessError,
			wantCode:   CodeInvalidAccountType,
		},
		{
			name:       "wrapped business error",
			err:        fmt.Errorf("create payment: %w", NewBusinessError(CodeMissingParameter, "no payment_account parameter")),
			wantStatus: StatusBusinessError,
			wantCode:   CodeMissingParameter,
		},
		{
			name:       "unique constraint maps to data integrity",
			err:        errors.New("constraint failed: UNIQUE constraint failed: t_category.category_name (2067)"),
			wantStatus: StatusBusinessError,
			wantCode:   CodeDataIntegrityViolation,
		},
		{
			name:       "deadline maps to system timeout",
			err:        fmt.Errorf("query: %w", context.DeadlineExceeded),
			wantStatus: StatusSystemError,
			wantCode:   CodeTimeout,
		},
		{
			name:       "breaker open maps to unavailable",
			err:        fmt.Errorf("account.find: %w", ErrUnavailable),
			wantStatus: StatusSystemError,
			wantCode:   CodeUnavailable,
		},
		{
			name:       "unknown error maps to system internal",
			err:        errors.New("disk I/O error"),
			wantStatus: StatusSystemError,
			wantCode:   CodeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Classify[string](tt.err)
			assert.Equal(t, tt.wantStatus, res.Status())
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, res.Code())
			}
			assert.False(t, res.IsSuccess())
		})
	}
}

func TestSuccessCarriesData(t *testing.T) {
	res := Success(core.Account{NameOwner: "checking_alice"})

	require.True(t, res.IsSuccess())
	assert.Equal(t, StatusSuccess, res.Status())
	assert.Equal(t, "checking_alice", res.Data().NameOwner)
	assert.Empty(t, res.Message())
}

func TestValidationCarriesFieldErrors(t *testing.T) {
	errs := core.ValidationErrors{"moniker": "must be a 4-digit code"}
	res := Validation[core.Account](errs)

	assert.Equal(t, StatusValidationError, res.Status())
	require.Contains(t, res.FieldErrors(), "moniker")
	assert.Equal(t, "must be a 4-digit code", res.FieldErrors()["moniker"])
}

func TestMapPreservesFailureVariants(t *testing.T) {
	nf := NotFound[int]("no such transaction")
	mapped := Map(nf, func(i int) string { return fmt.Sprint(i) })

	assert.Equal(t, StatusNotFound, mapped.Status())
	assert.Equal(t, "no such transaction", mapped.Message())

	ok := Map(Success(21), func(i int) int { return i * 2 })
	require.True(t, ok.IsSuccess())
	assert.Equal(t, 42, ok.Data())
}
