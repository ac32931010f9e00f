package simulator_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iimin/restosim/registry"
	"github.com/iimin/restosim/simulator"
	"github.com/iimin/restosim/synth"
	"github.com/iimin/restosim/testutil/storetest"
)

func newHandlers(reg *registry.Registry) *simulator.Handlers {
	return simulator.NewHandlers(reg, synth.New(1))
}

func TestCreateClientRegistersOnlyAfterApply(t *testing.T) {
	db := &storetest.FakeDB{}
	reg := registry.New()
	h := newHandlers(reg)

	apply, err := h.HandlerFor(simulator.ActionCreateClient)(context.Background(), db)
	require.NoError(t, err)
	require.NotNil(t, apply)

	assert.Equal(t, 0, reg.Count(registry.Client))

	apply()

	assert.Equal(t, 1, reg.Count(registry.Client))
	assert.True(t, reg.Contains(registry.Client, 1))
}

func TestEmptyRegistryActionsAreNoOps(t *testing.T) {
	kinds := []simulator.ActionKind{
		simulator.ActionCreateBooking,
		simulator.ActionCreateReview,
		simulator.ActionAddMenuItem,
		simulator.ActionReadRestaurantMenu,
		simulator.ActionReadClientOrders,
		simulator.ActionUpdateBookingStatus,
		simulator.ActionDeleteReview,
		simulator.ActionRemoveMenuItem,
		simulator.ActionCancelBooking,
	}

	for _, kind := range kinds {
		t.Run(kind.String(), func(t *testing.T) {
			db := &storetest.FakeDB{}
			h := newHandlers(registry.New())

			apply, err := h.HandlerFor(kind)(context.Background(), db)
			require.NoError(t, err)
			require.NotNil(t, apply)
			apply()

			assert.Empty(t, db.Execs)
			assert.Empty(t, db.Queries)
		})
	}
}

func TestUpdateClientInfoChangesExactlyOneField(t *testing.T) {
	db := &storetest.FakeDB{}
	reg := registry.New()
	reg.Register(registry.Client, 1)
	h := newHandlers(reg)

	const calls = 100

	for i := 0; i < calls; i++ {
		apply, err := h.HandlerFor(simulator.ActionUpdateClientInfo)(context.Background(), db)
		require.NoError(t, err)
		apply()
	}

	require.Len(t, db.Execs, calls)

	var phones, emails int
	for _, sql := range db.ExecSQL() {
		hasPhone := strings.Contains(sql, `"phone"`)
		hasEmail := strings.Contains(sql, `"email"`)
		assert.True(t, hasPhone != hasEmail, "statement must set exactly one field: %s", sql)

		if hasPhone {
			phones++
		} else {
			emails++
		}
	}

	assert.Positive(t, phones)
	assert.Positive(t, emails)
}

func TestDeleteReviewRemovesFromRegistryOnlyWhenRowExisted(t *testing.T) {
	db := &storetest.FakeDB{}
	reg := registry.New()
	reg.Register(registry.Review, 9)
	h := newHandlers(reg)

	db.AffectedFunc = func(string, []any) int64 { return 0 }

	apply, err := h.HandlerFor(simulator.ActionDeleteReview)(context.Background(), db)
	require.NoError(t, err)
	apply()

	assert.True(t, reg.Contains(registry.Review, 9))

	db.AffectedFunc = func(string, []any) int64 { return 1 }

	apply, err = h.HandlerFor(simulator.ActionDeleteReview)(context.Background(), db)
	require.NoError(t, err)
	apply()

	assert.False(t, reg.Contains(registry.Review, 9))
	assert.Equal(t, 0, reg.Count(registry.Review))
}

func TestCreateOrderFromBookingWithoutCandidateIsANoOp(t *testing.T) {
	db := &storetest.FakeDB{}
	reg := registry.New()
	reg.Register(registry.Booking, 1)
	reg.RegisterMenuItem(1, 1, 10.0)
	h := newHandlers(reg)

	apply, err := h.HandlerFor(simulator.ActionCreateOrderFromBooking)(context.Background(), db)
	require.NoError(t, err)
	require.NotNil(t, apply)
	apply()

	assert.Empty(t, db.Execs)
	assert.Equal(t, 0, reg.Count(registry.Order))
}

func TestCreateOrderFromBookingInsertsOrderItemAndPayment(t *testing.T) {
	db := &storetest.FakeDB{}
	db.RowsFunc = func(sql string, _ []any) [][]any {
		switch {
		case strings.Contains(sql, "LEFT JOIN"):
			return [][]any{{int64(42)}}
		case strings.Contains(sql, `FROM "menu_item"`):
			return [][]any{{12.5}}
		default:
			return nil
		}
	}

	reg := registry.New()
	reg.Register(registry.Booking, 42)
	reg.RegisterMenuItem(7, 1, 12.5)
	h := newHandlers(reg)

	apply, err := h.HandlerFor(simulator.ActionCreateOrderFromBooking)(context.Background(), db)
	require.NoError(t, err)

	execs := db.ExecSQL()
	require.Len(t, execs, 2)
	assert.Contains(t, execs[0], `"order_item"`)
	assert.Contains(t, execs[1], `"payment"`)

	assert.Equal(t, 0, reg.Count(registry.Order))

	apply()

	assert.Equal(t, 1, reg.Count(registry.Order))
	assert.True(t, reg.Contains(registry.Order, 1))
}

func TestCancelBookingCascadesChildrenBeforeParents(t *testing.T) {
	db := &storetest.FakeDB{}
	db.RowsFunc = func(sql string, _ []any) [][]any {
		switch {
		case strings.Contains(sql, "random()"):
			return [][]any{{int64(77)}}
		case strings.Contains(sql, `FROM "orders"`):
			return [][]any{{int64(5)}, {int64(6)}}
		default:
			return nil
		}
	}

	reg := registry.New()
	reg.Register(registry.Booking, 77)
	reg.Register(registry.Order, 5)
	reg.Register(registry.Order, 6)
	h := newHandlers(reg)

	apply, err := h.HandlerFor(simulator.ActionCancelBooking)(context.Background(), db)
	require.NoError(t, err)

	execs := db.ExecSQL()
	require.Len(t, execs, 7)
	for _, i := range []int{0, 3} {
		assert.Contains(t, execs[i], `"payment"`)
	}
	for _, i := range []int{1, 4} {
		assert.Contains(t, execs[i], `"order_item"`)
	}
	for _, i := range []int{2, 5} {
		assert.Contains(t, execs[i], `"orders"`)
	}
	assert.Contains(t, execs[6], `"booking"`)

	assert.True(t, reg.Contains(registry.Booking, 77))

	apply()

	assert.False(t, reg.Contains(registry.Booking, 77))
	assert.Equal(t, 0, reg.Count(registry.Order))
}

func TestCancelBookingWithoutCandidateIsANoOp(t *testing.T) {
	db := &storetest.FakeDB{}
	reg := registry.New()
	reg.Register(registry.Booking, 1)
	h := newHandlers(reg)

	apply, err := h.HandlerFor(simulator.ActionCancelBooking)(context.Background(), db)
	require.NoError(t, err)
	apply()

	assert.Empty(t, db.Execs)
	assert.True(t, reg.Contains(registry.Booking, 1))
}
