package generator_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iimin/restosim/generator"
	"github.com/iimin/restosim/registry"
	"github.com/iimin/restosim/testutil/storetest"
)

func statusRows(rows ...[]any) func(string, []any) [][]any {
	return func(sql string, _ []any) [][]any {
		if strings.Contains(sql, `FROM "booking_status"`) {
			return rows
		}

		return nil
	}
}

func requireStatusID(t *testing.T, reg *registry.Registry, name string, want int64) {
	t.Helper()

	id, ok := reg.StatusID(name)
	require.True(t, ok, "status %q not reconciled", name)
	assert.Equal(t, want, id)
}

func TestSeedBookingStatusesOnEmptyStore(t *testing.T) {
	db := &storetest.FakeDB{}
	reg := registry.New()

	require.NoError(t, generator.SeedBookingStatuses(context.Background(), db, reg))

	require.Len(t, db.Execs, 4)
	assert.Equal(t, 1, db.Commits)

	assert.Equal(t, []any{int64(1), "Pending"}, db.Execs[0].Args)
	assert.Equal(t, []any{int64(2), "Confirmed"}, db.Execs[1].Args)
	assert.Equal(t, []any{int64(3), "Cancelled"}, db.Execs[2].Args)
	assert.Equal(t, []any{int64(4), "Completed"}, db.Execs[3].Args)

	requireStatusID(t, reg, "Pending", 1)
	requireStatusID(t, reg, "Confirmed", 2)
	requireStatusID(t, reg, "Cancelled", 3)
	requireStatusID(t, reg, "Completed", 4)
}

func TestSeedBookingStatusesIsIdempotent(t *testing.T) {
	db := &storetest.FakeDB{}
	db.RowsFunc = statusRows(
		[]any{int64(1), "Pending"},
		[]any{int64(2), "Confirmed"},
		[]any{int64(3), "Cancelled"},
		[]any{int64(4), "Completed"},
	)
	reg := registry.New()

	require.NoError(t, generator.SeedBookingStatuses(context.Background(), db, reg))

	assert.Empty(t, db.Execs)
	assert.Equal(t, 0, db.Commits)

	requireStatusID(t, reg, "Pending", 1)
	requireStatusID(t, reg, "Completed", 4)
}

func TestSeedBookingStatusesRenamesMisnamedTargetID(t *testing.T) {
	db := &storetest.FakeDB{}
	db.RowsFunc = statusRows(
		[]any{int64(1), "Oddball"},
		[]any{int64(2), "Confirmed"},
		[]any{int64(3), "Cancelled"},
		[]any{int64(4), "Completed"},
	)
	reg := registry.New()

	require.NoError(t, generator.SeedBookingStatuses(context.Background(), db, reg))

	require.Len(t, db.Execs, 1)
	assert.Contains(t, db.Execs[0].SQL, "UPDATE")
	assert.Equal(t, []any{"Pending", int64(1)}, db.Execs[0].Args)
	assert.Equal(t, 1, db.Commits)

	requireStatusID(t, reg, "Pending", 1)
}

func TestSeedBookingStatusesAdoptsExistingNameUnderOtherID(t *testing.T) {
	db := &storetest.FakeDB{}
	db.RowsFunc = statusRows(
		[]any{int64(7), "Pending"},
		[]any{int64(2), "Confirmed"},
		[]any{int64(3), "Cancelled"},
		[]any{int64(4), "Completed"},
	)
	reg := registry.New()

	require.NoError(t, generator.SeedBookingStatuses(context.Background(), db, reg))

	assert.Empty(t, db.Execs)
	assert.Equal(t, 0, db.Commits)

	requireStatusID(t, reg, "Pending", 7)
	requireStatusID(t, reg, "Confirmed", 2)
}
