package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	testhelpers "github.com/vvka-141/pgdash/internal/testing"
	"github.com/vvka-141/pgdash/pkg/pgdash"
)

func TestPostgresStore_ReplaceAndQuery(t *testing.T) {
	s := testhelpers.NewTestPostgresStore(t)
	ctx := context.Background()

	ts := time.Date(2017, 10, 2, 10, 56, 33, 0, time.UTC)
	require.NoError(t, s.ReplaceTable(ctx, ordersTable(
		[]any{"o1", int64(2), 29.99, ts},
		[]any{"o2", nil, 10.0, nil},
	)))

	result, err := s.Query(ctx, `SELECT order_id, items, price, purchased_at FROM olist_orders_dataset ORDER BY order_id`)
	require.NoError(t, err)
	require.Equal(t, 2, result.RowCount())

	assert.Equal(t, pgdash.ColumnText, result.Columns[0].Type)
	assert.Equal(t, pgdash.ColumnInteger, result.Columns[1].Type)
	assert.Equal(t, pgdash.ColumnFloat, result.Columns[2].Type)
	assert.Equal(t, pgdash.ColumnTimestamp, result.Columns[3].Type)
	assert.Equal(t, int64(2), result.Rows[0][1])
	assert.Nil(t, result.Rows[1][1])

	got, ok := result.Rows[0][3].(time.Time)
	require.True(t, ok, "expected time.Time, got %T", result.Rows[0][3])
	assert.True(t, ts.Equal(got), "got %v", got)
}

func TestPostgresStore_ReplaceIsIdempotent(t *testing.T) {
	s := testhelpers.NewTestPostgresStore(t)
	ctx := context.Background()
	table := ordersTable([]any{"o1", int64(1), 1.5, nil}, []any{"o2", int64(3), 2.5, nil})

	require.NoError(t, s.ReplaceTable(ctx, table))
	require.NoError(t, s.ReplaceTable(ctx, table))

	result, err := s.Query(ctx, "SELECT COUNT(*) AS n FROM olist_orders_dataset")
	require.NoError(t, err)
	assert.Equal(t, int64(2), result.Rows[0][0])
}

func TestPostgresStore_FailedReplaceKeepsPreviousTable(t *testing.T) {
	s := testhelpers.NewTestPostgresStore(t)
	ctx := context.Background()

	require.NoError(t, s.ReplaceTable(ctx, ordersTable([]any{"o1", int64(1), 1.5, nil})))

	// text in an integer column fails inside COPY, after the drop
	bad := ordersTable([]any{"o9", "not a number", 1.0, nil})
	require.Error(t, s.ReplaceTable(ctx, bad))

	result, err := s.Query(ctx, "SELECT order_id FROM olist_orders_dataset")
	require.NoError(t, err)
	require.Equal(t, 1, result.RowCount())
	assert.Equal(t, "o1", result.Rows[0][0])
}

func TestPostgresStore_NumericBecomesFloat(t *testing.T) {
	s := testhelpers.NewTestPostgresStore(t)

	result, err := s.Query(context.Background(), "SELECT AVG(x)::numeric AS avg_x FROM (VALUES (1), (2)) v(x)")
	require.NoError(t, err)
	require.Equal(t, 1, result.RowCount())
	assert.Equal(t, pgdash.ColumnFloat, result.Columns[0].Type)
	assert.InDelta(t, 1.5, result.Rows[0][0], 1e-9)
}

func TestPostgresStore_QueryError(t *testing.T) {
	s := testhelpers.NewTestPostgresStore(t)

	_, err := s.Query(context.Background(), "SELECT * FROM missing_table")
	require.Error(t, err)
}
