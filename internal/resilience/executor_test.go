package resilience

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/core"
	"fintrack/internal/result"
)

func testConfig() Config {
	return Config{
		MaxRetries:      2,
		BaseBackoff:     time.Millisecond,
		OpTimeout:       time.Second,
		BreakerFailures: 3,
		BreakerOpenFor:  time.Minute,
	}
}

func TestExecuteSuccess(t *testing.T) {
	ex := NewExecutor(testConfig())

	got, err := Execute(context.Background(), ex, "account.find", func(ctx context.Context) (string, error) {
		return "checking_alice", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "checking_alice", got)
}

func TestExecuteRetriesTransientFailures(t *testing.T) {
	ex := NewExecutor(testConfig())
	attempts := 0

	got, err := Execute(context.Background(), ex, "transaction.list", func(ctx context.Context) (int, error) {
		attempts++
		if attempts < 3 {
			return 0, errors.New("database is locked")
		}
		return 7, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 7, got)
	assert.Equal(t, 3, attempts)
}

func TestExecuteDoesNotRetryDomainErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		unwrap func(t *testing.T, err error)
	}{
		{
			name: "no rows",
			err:  sql.ErrNoRows,
			unwrap: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, sql.ErrNoRows)
			},
		},
		{
			name: "validation",
			err:  core.ValidationErrors{"amount": "must be positive"},
			unwrap: func(t *testing.T, err error) {
				var verrs core.ValidationErrors
				require.ErrorAs(t, err, &verrs)
				assert.Equal(t, "must be positive", verrs["amount"])
			},
		},
		{
			name: "business",
			err:  result.NewBusinessError(result.CodeInvalidAccountType, "not a credit account"),
			unwrap: func(t *testing.T, err error) {
				var berr *result.BusinessError
				require.ErrorAs(t, err, &berr)
				assert.Equal(t, result.CodeInvalidAccountType, berr.Code)
			},
		},
		{
			name: "constraint",
			err:  errors.New("UNIQUE constraint failed: t_parameter.parameter_name"),
			unwrap: func(t *testing.T, err error) {
				assert.ErrorContains(t, err, "UNIQUE constraint failed")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ex := NewExecutor(testConfig())
			attempts := 0

			_, err := Execute(context.Background(), ex, "op", func(ctx context.Context) (int, error) {
				attempts++
				return 0, tt.err
			})

			require.Error(t, err)
			tt.unwrap(t, err)
			assert.Equal(t, 1, attempts, "domain errors must not be retried")
		})
	}
}

func TestExecuteBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	cfg := testConfig()
	cfg.MaxRetries = 0
	ex := NewExecutor(cfg)
	boom := errors.New("connection refused")

	for i := 0; i < int(cfg.BreakerFailures); i++ {
		_, err := Execute(context.Background(), ex, "flaky", func(ctx context.Context) (int, error) {
			return 0, boom
		})
		require.ErrorIs(t, err, boom)
	}

	// Breaker is now open: the call must be shed without invoking fn.
	invoked := false
	_, err := Execute(context.Background(), ex, "flaky", func(ctx context.Context) (int, error) {
		invoked = true
		return 1, nil
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, result.ErrUnavailable)
	assert.False(t, invoked, "open breaker must shed the call")
}

func TestExecuteBreakerIgnoresDomainOutcomes(t *testing.T) {
	cfg := testConfig()
	cfg.MaxRetries = 0
	ex := NewExecutor(cfg)

	// Far more not-found results than the trip threshold.
	for i := 0; i < int(cfg.BreakerFailures)*3; i++ {
		_, err := Execute(context.Background(), ex, "lookup", func(ctx context.Context) (int, error) {
			return 0, sql.ErrNoRows
		})
		require.ErrorIs(t, err, sql.ErrNoRows)
	}

	got, err := Execute(context.Background(), ex, "lookup", func(ctx context.Context) (int, error) {
		return 42, nil
	})
	require.NoError(t, err, "breaker must stay closed on domain outcomes")
	assert.Equal(t, 42, got)
}

func TestExecuteHonorsTimeout(t *testing.T) {
	cfg := testConfig()
	cfg.OpTimeout = 20 * time.Millisecond
	cfg.MaxRetries = 0
	ex := NewExecutor(cfg)

	_, err := Execute(context.Background(), ex, "slow", func(ctx context.Context) (int, error) {
		select {
		case <-time.After(time.Second):
			return 1, nil
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestExecuteSeparateBreakersPerOperation(t *testing.T) {
	cfg := testConfig()
	cfg.MaxRetries = 0
	ex := NewExecutor(cfg)
	boom := errors.New("connection refused")

	for i := 0; i < int(cfg.BreakerFailures); i++ {
		_, _ = Execute(context.Background(), ex, "broken", func(ctx context.Context) (int, error) {
			return 0, boom
		})
	}

	got, err := Execute(context.Background(), ex, "healthy", func(ctx context.Context) (int, error) {
		return 9, nil
	})
	require.NoError(t, err, "breakers are scoped per operation name")
	assert.Equal(t, 9, got)
}
