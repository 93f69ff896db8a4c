package runlog

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kisanmitra/internal/action"
)

func rec(i int) action.Record {
	return action.Record{
		ID:      fmt.Sprintf("run-%d", i),
		Flow:    "askAI",
		State:   action.Returned,
		Trail:   []action.State{action.Received, action.Validating, action.Invoking, action.Returned},
		Started: time.Date(2024, 6, 1, 10, 0, i, 0, time.UTC),
	}
}

func ids(recs []action.Record) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.ID
	}
	return out
}

func TestMemoryStoreNewestFirst(t *testing.T) {
	s := NewMemoryStore(3)
	ctx := context.Background()
	for i := 1; i <= 2; i++ {
		require.NoError(t, s.Append(ctx, rec(i)))
	}
	got, err := s.List(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"run-2", "run-1"}, ids(got))
}

func TestMemoryStoreWrapsAround(t *testing.T) {
	s := NewMemoryStore(3)
	ctx := context.Background()
	for i := 1; i <= 5; i++ {
		require.NoError(t, s.Append(ctx, rec(i)))
	}
	got, err := s.List(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"run-5", "run-4", "run-3"}, ids(got))

	got, err = s.List(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"run-5", "run-4"}, ids(got))
}

func TestMemoryStoreCopiesTrail(t *testing.T) {
	s := NewMemoryStore(0)
	r := rec(1)
	require.NoError(t, s.Append(context.Background(), r))
	r.Trail[0] = action.Rejected

	got, err := s.List(context.Background(), 1)
	require.NoError(t, err)
	if diff := cmp.Diff(rec(1), got[0]); diff != "" {
		t.Fatalf("stored record changed (-want +got):\n%s", diff)
	}
}

func TestPostgresStoreWithoutDB(t *testing.T) {
	_, err := OpenPostgres("  ")
	assert.Error(t, err)

	s := NewPostgresStore(nil)
	assert.Error(t, s.Append(context.Background(), rec(1)))
	_, err = s.List(context.Background(), 1)
	assert.Error(t, err)
	assert.NoError(t, s.Close())
}

type fakeRow struct {
	vals []any
	err  error
}

func (f fakeRow) Scan(dest ...any) error {
	if f.err != nil {
		return f.err
	}
	for i, d := range dest {
		switch p := d.(type) {
		case *string:
			*p = f.vals[i].(string)
		case *[]byte:
			*p = f.vals[i].([]byte)
		case *time.Time:
			*p = f.vals[i].(time.Time)
		case *int64:
			*p = f.vals[i].(int64)
		}
	}
	return nil
}

func TestScanRecord(t *testing.T) {
	started := time.Date(2024, 6, 1, 15, 30, 0, 0, time.FixedZone("IST", 5*3600+1800))
	row := fakeRow{vals: []any{
		"run-9", "getMarketPrice", "error_returned", []byte(`["received","validating","invoking","error_returned"]`),
		started, int64(2 * time.Second), int64(3), "Could not fetch market prices.", "boom",
	}}
	got, err := scanRecord(row)
	require.NoError(t, err)
	want := action.Record{
		ID:         "run-9",
		Flow:       "getMarketPrice",
		State:      action.ErrorReturned,
		Trail:      []action.State{action.Received, action.Validating, action.Invoking, action.ErrorReturned},
		Started:    started.UTC(),
		Duration:   2 * time.Second,
		ModelCalls: 3,
		Message:    "Could not fetch market prices.",
		Error:      "boom",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("scanRecord mismatch (-want +got):\n%s", diff)
	}

	_, err = scanRecord(fakeRow{err: errors.New("closed")})
	assert.Error(t, err)
}
