package generator_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iimin/restosim/generator"
	"github.com/iimin/restosim/registry"
	"github.com/iimin/restosim/synth"
	"github.com/iimin/restosim/testutil/storetest"
)

func newGenerator(db *storetest.FakeDB, reg *registry.Registry) *generator.Generator {
	return generator.New(db, reg, synth.New(1), generator.Config{
		InitialCount:   10,
		OrderChance:    1.0,
		DateRangeYears: 1,
	})
}

func TestClientsBatchRegistersInsertedRows(t *testing.T) {
	db := &storetest.FakeDB{}
	reg := registry.New()
	g := newGenerator(db, reg)

	inserted, err := g.Clients(context.Background(), 5)
	require.NoError(t, err)

	assert.Equal(t, 5, inserted)
	assert.Len(t, db.Execs, 5)
	assert.Equal(t, 1, db.Commits)
	assert.Equal(t, 5, db.SavepointCommits)

	assert.Equal(t, 5, reg.Count(registry.Client))
	for id := int64(1); id <= 5; id++ {
		assert.True(t, reg.Contains(registry.Client, id))
	}
	assert.Equal(t, int64(6), reg.NextID(registry.Client))
}

func TestClientsBatchSkipsFailedRow(t *testing.T) {
	db := &storetest.FakeDB{}

	var execCalls int
	db.FailFunc = func(sql string, _ []any) error {
		if !strings.HasPrefix(sql, "INSERT") {
			return nil
		}

		execCalls++
		if execCalls == 3 {
			return errors.New("duplicate key")
		}

		return nil
	}

	reg := registry.New()
	g := newGenerator(db, reg)

	inserted, err := g.Clients(context.Background(), 5)
	require.NoError(t, err)

	assert.Equal(t, 4, inserted)
	assert.Equal(t, 4, reg.Count(registry.Client))
	assert.Equal(t, 1, db.SavepointRollbacks)
	assert.Equal(t, 4, db.SavepointCommits)
	assert.Equal(t, 1, db.Commits)
}

func TestTablesReferenceKnownRestaurants(t *testing.T) {
	db := &storetest.FakeDB{}
	reg := registry.New()
	for _, id := range []int64{10, 20, 30} {
		reg.Register(registry.Restaurant, id)
	}
	g := newGenerator(db, reg)

	inserted, err := g.Tables(context.Background(), 8)
	require.NoError(t, err)

	assert.Equal(t, 8, inserted)
	require.Len(t, db.Execs, 8)

	// Insert columns are emitted in alphabetical order, so the
	// restaurant id is the second argument.
	for _, stmt := range db.Execs {
		require.Len(t, stmt.Args, 3)
		assert.Contains(t, []any{int64(10), int64(20), int64(30)}, stmt.Args[1])
	}

	assert.Equal(t, 8, reg.Count(registry.Table))
}

func TestMenuItemsRegisterPriceAndOwner(t *testing.T) {
	db := &storetest.FakeDB{}
	reg := registry.New()
	reg.Register(registry.Restaurant, 1)
	g := newGenerator(db, reg)

	inserted, err := g.MenuItems(context.Background(), 3)
	require.NoError(t, err)

	assert.Equal(t, 3, inserted)
	assert.Equal(t, 3, reg.Count(registry.MenuItem))
	assert.Len(t, reg.MenuItemsOf(1), 3)

	for _, id := range reg.KnownIDs(registry.MenuItem) {
		price, ok := reg.MenuPrice(id)
		require.True(t, ok)
		assert.GreaterOrEqual(t, price, 5.0)
		assert.LessOrEqual(t, price, 100.0)
	}
}

func TestOrdersCoverEachBookingAtMostOnce(t *testing.T) {
	db := &storetest.FakeDB{}
	reg := registry.New()

	bookingIDs := make([]int64, 0, 20)
	for id := int64(1); id <= 20; id++ {
		reg.Register(registry.Booking, id)
		bookingIDs = append(bookingIDs, id)
	}
	reg.RegisterMenuItem(1, 1, 5.0)

	g := newGenerator(db, reg)

	inserted, err := g.OrdersAndRelated(context.Background(), 50)
	require.NoError(t, err)

	assert.Equal(t, 20, inserted)
	assert.Equal(t, 20, reg.Count(registry.Order))

	// Line item plus payment per order.
	require.Len(t, db.Execs, 40)

	var orderedBookings []int64
	for _, stmt := range db.Queries {
		if strings.HasPrefix(stmt.SQL, `INSERT INTO "orders"`) {
			orderedBookings = append(orderedBookings, stmt.Args[0].(int64))
		}
	}

	assert.ElementsMatch(t, bookingIDs, orderedBookings)
}

func TestOrdersWithZeroChanceInsertNothing(t *testing.T) {
	db := &storetest.FakeDB{}
	reg := registry.New()
	reg.Register(registry.Booking, 1)
	reg.RegisterMenuItem(1, 1, 5.0)

	g := generator.New(db, reg, synth.New(1), generator.Config{
		InitialCount:   10,
		OrderChance:    0,
		DateRangeYears: 1,
	})

	inserted, err := g.OrdersAndRelated(context.Background(), 10)
	require.NoError(t, err)

	assert.Equal(t, 0, inserted)
	assert.Empty(t, db.Execs)
	assert.Equal(t, 0, db.Commits)
	assert.Equal(t, 0, reg.Count(registry.Order))
}

func TestLoadExistingResumesFromStoreMaxima(t *testing.T) {
	db := &storetest.FakeDB{}
	db.RowsFunc = func(sql string, _ []any) [][]any {
		switch {
		case strings.Contains(sql, `FROM "client"`):
			return [][]any{{int64(3)}, {int64(8)}}
		case strings.Contains(sql, `FROM "restaurant"`):
			return [][]any{{int64(2)}}
		case strings.Contains(sql, `FROM "menu_item"`):
			return [][]any{{int64(5), int64(2), 9.5}}
		case strings.Contains(sql, `FROM "booking_status"`):
			return [][]any{{int64(1), "Pending "}}
		default:
			return nil
		}
	}

	reg := registry.New()

	require.NoError(t, generator.LoadExisting(context.Background(), db, reg))

	assert.Equal(t, 2, reg.Count(registry.Client))
	assert.Equal(t, int64(9), reg.NextID(registry.Client))
	assert.Equal(t, 1, reg.Count(registry.Restaurant))
	assert.Equal(t, 1, reg.Count(registry.MenuItem))

	price, ok := reg.MenuPrice(5)
	require.True(t, ok)
	assert.InDelta(t, 9.5, price, 0.001)
	assert.Equal(t, []int64{5}, reg.MenuItemsOf(2))

	// Status names are trimmed on load.
	id, ok := reg.StatusID("Pending")
	require.True(t, ok)
	assert.Equal(t, int64(1), id)
}
