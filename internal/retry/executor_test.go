package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type flakyOperation struct {
	calls     int
	failUntil int // calls below this return transientErr
	transient error
	final     error
}

func (f *flakyOperation) run(ctx context.Context) error {
	f.calls++
	if f.calls < f.failUntil {
		if f.transient != nil {
			return f.transient
		}
		return &pgconn.PgError{Code: "08006", Message: "connection failure"}
	}
	return f.final
}

func fastExecutor(attempts int) *Executor {
	return NewExecutor(
		NewPostgreSQLErrorClassifier(),
		NewExponentialBackoff(attempts, WithInitialDelay(time.Millisecond), WithJitter(0)),
	)
}

func TestExecutor_SucceedsFirstTime(t *testing.T) {
	op := &flakyOperation{failUntil: 1}
	require.NoError(t, fastExecutor(3).Execute(context.Background(), op.run))
	assert.Equal(t, 1, op.calls)
}

func TestExecutor_RetriesTransientErrors(t *testing.T) {
	op := &flakyOperation{failUntil: 3}
	var retries []int

	executor := fastExecutor(5).WithOnRetry(func(attempt int, err error, delay time.Duration) {
		retries = append(retries, attempt)
	})

	require.NoError(t, executor.Execute(context.Background(), op.run))
	assert.Equal(t, 3, op.calls)
	assert.Equal(t, []int{0, 1}, retries)
}

func TestExecutor_StopsOnFatalError(t *testing.T) {
	fatal := &pgconn.PgError{Code: "28P01", Message: "password authentication failed"}
	op := &flakyOperation{failUntil: 1, final: fatal}

	err := fastExecutor(5).Execute(context.Background(), op.run)
	assert.ErrorIs(t, err, fatal)
	assert.Equal(t, 1, op.calls)
}

func TestExecutor_ExhaustsAttempts(t *testing.T) {
	op := &flakyOperation{failUntil: 100}

	err := fastExecutor(2).Execute(context.Background(), op.run)
	var pgErr *pgconn.PgError
	require.True(t, errors.As(err, &pgErr))
	assert.Equal(t, "08006", pgErr.Code)
	assert.Equal(t, 3, op.calls)
}

func TestExecutor_HonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	op := &flakyOperation{failUntil: 100}

	executor := NewExecutor(NewPostgreSQLErrorClassifier(), NewExponentialBackoff(-1, WithInitialDelay(time.Hour), WithJitter(0))).
		WithOnRetry(func(int, error, time.Duration) { cancel() })

	err := executor.Execute(ctx, op.run)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, op.calls)
}

func TestExecutor_WithOnRetryDoesNotMutateReceiver(t *testing.T) {
	base := fastExecutor(1)
	_ = base.WithOnRetry(func(int, error, time.Duration) {})
	assert.Nil(t, base.onRetry)
}

func TestNewExecutor_PanicsOnNilDependencies(t *testing.T) {
	assert.Panics(t, func() { NewExecutor(nil, NewExponentialBackoff(1)) })
	assert.Panics(t, func() { NewExecutor(NewPostgreSQLErrorClassifier(), nil) })
}
