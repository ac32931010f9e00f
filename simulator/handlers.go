package simulator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"

	"github.com/iimin/restosim/registry"
	"github.com/iimin/restosim/schema"
	"github.com/iimin/restosim/store"
	"github.com/iimin/restosim/synth"
)

// Handler executes one logical workload operation on an open
// transaction. It never commits or rolls back. The returned apply
// closure carries the registry mutations for the operation; the caller
// invokes it only after a successful commit, so the registry never
// records rows the store discarded.
type Handler func(ctx context.Context, q store.Querier) (apply func(), err error)

var noop = func() {}

// Handlers binds the action implementations to one registry and one
// synthetic-value source. Each simulated user gets its own instance
// because the value source is not safe for concurrent use.
type Handlers struct {
	reg  *registry.Registry
	vals *synth.Provider
}

// NewHandlers creates a Handlers instance.
func NewHandlers(reg *registry.Registry, vals *synth.Provider) *Handlers {
	return &Handlers{reg: reg, vals: vals}
}

// HandlerFor returns the implementation of one action kind.
func (h *Handlers) HandlerFor(kind ActionKind) Handler {
	switch kind {
	case ActionCreateClient:
		return h.createClient
	case ActionCreateBooking:
		return h.createBooking
	case ActionCreateOrderFromBooking:
		return h.createOrderFromBooking
	case ActionCreateReview:
		return h.createReview
	case ActionAddMenuItem:
		return h.addMenuItem
	case ActionReadRestaurantMenu:
		return h.readRestaurantMenu
	case ActionReadClientOrders:
		return h.readClientOrders
	case ActionReadBookingStatus:
		return h.readBookingStatus
	case ActionReadRestaurantReviews:
		return h.readRestaurantReviews
	case ActionReadFindRestaurants:
		return h.readFindRestaurants
	case ActionReadPaymentStatus:
		return h.readPaymentStatus
	case ActionReadSpecificClientInfo:
		return h.readSpecificClientInfo
	case ActionReadRestaurantDetails:
		return h.readRestaurantDetails
	case ActionReadAvailableTables:
		return h.readAvailableTables
	case ActionUpdateBookingStatus:
		return h.updateBookingStatus
	case ActionUpdateClientInfo:
		return h.updateClientInfo
	case ActionUpdateOrderStatus:
		return h.updateOrderStatus
	case ActionUpdateMenuItemPrice:
		return h.updateMenuItemPrice
	case ActionDeleteReview:
		return h.deleteReview
	case ActionCancelBooking:
		return h.cancelBooking
	case ActionRemoveMenuItem:
		return h.removeMenuItem
	default:
		return func(context.Context, store.Querier) (func(), error) {
			return nil, fmt.Errorf("no handler for action kind %d", kind)
		}
	}
}

// statusID resolves a booking status name to its reconciled store id,
// falling back to the logical id when the store was never seeded.
func (h *Handlers) statusID(name string, fallback int64) int64 {
	if id, ok := h.reg.StatusID(name); ok {
		return id
	}

	return fallback
}

func (h *Handlers) createClient(ctx context.Context, q store.Querier) (func(), error) {
	sql, args, err := store.PSQL.Insert(schema.TableClient).
		Rows(goqu.Record{
			schema.ColClientName:       schema.Truncate(h.vals.Name(), schema.MaxLenClientName),
			schema.ColClientPhone:      schema.Truncate(h.vals.Phone(), schema.MaxLenClientPhone),
			schema.ColClientEmail:      schema.Truncate(h.vals.Email(), schema.MaxLenClientEmail),
			schema.ColRegistrationDate: time.Now(),
		}).
		Returning(goqu.C(schema.ColClientID)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, err
	}

	var id int64
	if err = q.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return func() { h.reg.Register(registry.Client, id) }, nil
}

func (h *Handlers) createBooking(ctx context.Context, q store.Querier) (func(), error) {
	clientID, okClient := h.reg.Pick(registry.Client)
	tableID, okTable := h.reg.Pick(registry.Table)
	if !okClient || !okTable {
		return noop, nil
	}

	bookingDate := time.Now().
		AddDate(0, 0, 1+h.vals.Intn(30)).
		Add(time.Duration(10+h.vals.Intn(11)) * time.Hour)

	sql, args, err := store.PSQL.Insert(schema.TableBooking).
		Rows(goqu.Record{
			schema.ColClientID:    clientID,
			schema.ColStatusID:    h.statusID("Pending", schema.StatusPending),
			schema.ColTableID:     tableID,
			schema.ColBookingDate: bookingDate,
		}).
		Returning(goqu.C(schema.ColBookingID)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, err
	}

	var id int64
	if err = q.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		return nil, fmt.Errorf("failed to create booking for client %d: %w", clientID, err)
	}

	return func() { h.reg.Register(registry.Booking, id) }, nil
}

// createOrderFromBooking turns one confirmed booking without an order
// into an order with a single line item and a payment. Finding no such
// booking is a normal outcome, not an error.
func (h *Handlers) createOrderFromBooking(ctx context.Context, q store.Querier) (func(), error) {
	if h.reg.Count(registry.Booking) == 0 || h.reg.Count(registry.MenuItem) == 0 {
		return noop, nil
	}

	candidateSQL, candidateArgs, err := store.PSQL.From(goqu.T(schema.TableBooking).As("b")).
		LeftJoin(
			goqu.T(schema.TableOrder).As("o"),
			goqu.On(goqu.I("b.booking_id").Eq(goqu.I("o.booking_id"))),
		).
		Select(goqu.I("b.booking_id")).
		Where(
			goqu.I("b.status_id").Eq(h.statusID("Confirmed", schema.StatusConfirmed)),
			goqu.I("o.order_id").IsNull(),
		).
		Order(goqu.L("random()").Asc()).
		Limit(1).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, err
	}

	var bookingID int64
	if err = q.QueryRow(ctx, candidateSQL, candidateArgs...).Scan(&bookingID); err != nil {
		if errors.Is(err, store.ErrNoRows) {
			return noop, nil
		}

		return nil, fmt.Errorf("failed to find an orderable booking: %w", err)
	}

	menuItemID, ok := h.reg.Pick(registry.MenuItem)
	if !ok {
		return noop, nil
	}

	priceSQL, priceArgs, err := store.PSQL.From(schema.TableMenuItem).
		Select(goqu.C(schema.ColMenuPrice)).
		Where(goqu.C(schema.ColMenuID).Eq(menuItemID)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, err
	}

	var price float64
	if err = q.QueryRow(ctx, priceSQL, priceArgs...).Scan(&price); err != nil {
		if errors.Is(err, store.ErrNoRows) {
			return noop, nil
		}

		return nil, fmt.Errorf("failed to read price of menu item %d: %w", menuItemID, err)
	}

	priceAtOrder := int(price)

	orderSQL, orderArgs, err := store.PSQL.Insert(schema.TableOrder).
		Rows(goqu.Record{
			schema.ColBookingID:   bookingID,
			schema.ColOrderStatus: schema.OrderStatusNew,
			schema.ColOrderTotal:  priceAtOrder,
		}).
		Returning(goqu.C(schema.ColOrderID)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, err
	}

	var orderID int64
	if err = q.QueryRow(ctx, orderSQL, orderArgs...).Scan(&orderID); err != nil {
		return nil, fmt.Errorf("failed to create order for booking %d: %w", bookingID, err)
	}

	itemSQL, itemArgs, err := store.PSQL.Insert(schema.TableOrderItem).
		Rows(goqu.Record{
			schema.ColOrderID:      orderID,
			schema.ColMenuID:       menuItemID,
			schema.ColPriceAtOrder: priceAtOrder,
		}).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, err
	}

	if _, err = q.Exec(ctx, itemSQL, itemArgs...); err != nil {
		return nil, fmt.Errorf("failed to add line item to order %d: %w", orderID, err)
	}

	paySQL, payArgs, err := store.PSQL.Insert(schema.TablePayment).
		Rows(goqu.Record{
			schema.ColOrderID:       orderID,
			schema.ColPaymentMethod: schema.Truncate(h.vals.PickString(schema.PaymentMethods()), schema.MaxLenPaymentMethod),
			schema.ColPaymentStatus: schema.Truncate(h.vals.PickString(schema.PaymentStatuses()), schema.MaxLenPaymentStatus),
		}).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, err
	}

	if _, err = q.Exec(ctx, paySQL, payArgs...); err != nil {
		return nil, fmt.Errorf("failed to add payment to order %d: %w", orderID, err)
	}

	return func() { h.reg.Register(registry.Order, orderID) }, nil
}

func (h *Handlers) createReview(ctx context.Context, q store.Querier) (func(), error) {
	clientID, okClient := h.reg.Pick(registry.Client)
	restaurantID, okRestaurant := h.reg.Pick(registry.Restaurant)
	if !okClient || !okRestaurant {
		return noop, nil
	}

	comment := h.vals.Comment(50 + h.vals.Intn(400))

	sql, args, err := store.PSQL.Insert(schema.TableReview).
		Rows(goqu.Record{
			schema.ColClientID:      clientID,
			schema.ColRestaurantID:  restaurantID,
			schema.ColReviewRating:  h.vals.Rating(),
			schema.ColReviewComment: schema.Truncate(comment, schema.MaxLenReviewComment),
			schema.ColReviewDate:    time.Now().AddDate(0, 0, -h.vals.Intn(31)),
		}).
		Returning(goqu.C(schema.ColReviewID)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, err
	}

	var id int64
	if err = q.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		return nil, fmt.Errorf("failed to create review for restaurant %d: %w", restaurantID, err)
	}

	return func() { h.reg.Register(registry.Review, id) }, nil
}

func (h *Handlers) addMenuItem(ctx context.Context, q store.Querier) (func(), error) {
	restaurantID, ok := h.reg.Pick(registry.Restaurant)
	if !ok {
		return noop, nil
	}

	price := h.vals.Price()

	sql, args, err := store.PSQL.Insert(schema.TableMenuItem).
		Rows(goqu.Record{
			schema.ColRestaurantID: restaurantID,
			schema.ColMenuDishName: schema.Truncate(h.vals.DishName(), schema.MaxLenDishName),
			schema.ColMenuPrice:    price,
		}).
		Returning(goqu.C(schema.ColMenuID)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, err
	}

	var id int64
	if err = q.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		return nil, fmt.Errorf("failed to add menu item to restaurant %d: %w", restaurantID, err)
	}

	return func() { h.reg.RegisterMenuItem(id, restaurantID, price) }, nil
}

// Read handlers execute one bounded select and discard the result.
// They exist to generate realistic read contention.

func (h *Handlers) readRestaurantMenu(ctx context.Context, q store.Querier) (func(), error) {
	restaurantID, ok := h.reg.Pick(registry.Restaurant)
	if !ok {
		return noop, nil
	}

	sql, args, err := store.PSQL.From(schema.TableMenuItem).
		Select(goqu.C(schema.ColMenuDishName), goqu.C(schema.ColMenuPrice)).
		Where(goqu.C(schema.ColRestaurantID).Eq(restaurantID)).
		Limit(20).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, err
	}

	return noop, h.discardAll(ctx, q, sql, args)
}

func (h *Handlers) readClientOrders(ctx context.Context, q store.Querier) (func(), error) {
	clientID, ok := h.reg.Pick(registry.Client)
	if !ok {
		return noop, nil
	}

	sql, args, err := store.PSQL.From(goqu.T(schema.TableOrder).As("o")).
		Join(
			goqu.T(schema.TableBooking).As("b"),
			goqu.On(goqu.I("o.booking_id").Eq(goqu.I("b.booking_id"))),
		).
		Select(goqu.I("o.order_id"), goqu.I("o.total_price"), goqu.I("o.status_order"), goqu.I("b.booking_date")).
		Where(goqu.I("b.client_id").Eq(clientID)).
		Order(goqu.I("b.booking_date").Desc()).
		Limit(10).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, err
	}

	return noop, h.discardAll(ctx, q, sql, args)
}

func (h *Handlers) readBookingStatus(ctx context.Context, q store.Querier) (func(), error) {
	bookingID, ok := h.reg.Pick(registry.Booking)
	if !ok {
		return noop, nil
	}

	sql, args, err := store.PSQL.From(goqu.T(schema.TableBooking).As("b")).
		Join(
			goqu.T(schema.TableBookingStatus).As("bs"),
			goqu.On(goqu.I("b.status_id").Eq(goqu.I("bs.status_id"))),
		).
		Select(goqu.I("b.booking_id"), goqu.I("b.booking_date"), goqu.I("bs.status_name")).
		Where(goqu.I("b.booking_id").Eq(bookingID)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, err
	}

	var (
		id   int64
		date time.Time
		name string
	)
	if err = q.QueryRow(ctx, sql, args...).Scan(&id, &date, &name); err != nil && !errors.Is(err, store.ErrNoRows) {
		return nil, fmt.Errorf("failed to read status of booking %d: %w", bookingID, err)
	}

	return noop, nil
}

func (h *Handlers) readRestaurantReviews(ctx context.Context, q store.Querier) (func(), error) {
	restaurantID, ok := h.reg.Pick(registry.Restaurant)
	if !ok {
		return noop, nil
	}

	sql, args, err := store.PSQL.From(goqu.T(schema.TableReview).As("r")).
		Join(
			goqu.T(schema.TableClient).As("c"),
			goqu.On(goqu.I("r.client_id").Eq(goqu.I("c.client_id"))),
		).
		Select(goqu.I("r.rating"), goqu.I("r.comment"), goqu.I("r.review_date"), goqu.I("c.name")).
		Where(goqu.I("r.restaurant_id").Eq(restaurantID)).
		Order(goqu.I("r.review_date").Desc()).
		Limit(10).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, err
	}

	return noop, h.discardAll(ctx, q, sql, args)
}

func (h *Handlers) readFindRestaurants(ctx context.Context, q store.Querier) (func(), error) {
	cuisine := schema.Truncate(h.vals.Cuisine(), schema.MaxLenRestaurantCuisine)

	sql, args, err := store.PSQL.From(schema.TableRestaurant).
		Select(goqu.C(schema.ColRestaurantName), goqu.C(schema.ColRestaurantAddress), goqu.C(schema.ColRestaurantCuisine)).
		Where(goqu.C(schema.ColRestaurantCuisine).Like("%" + cuisine + "%")).
		Order(goqu.L("random()").Asc()).
		Limit(10).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, err
	}

	return noop, h.discardAll(ctx, q, sql, args)
}

func (h *Handlers) readPaymentStatus(ctx context.Context, q store.Querier) (func(), error) {
	orderID, ok := h.reg.Pick(registry.Order)
	if !ok {
		return noop, nil
	}

	sql, args, err := store.PSQL.From(schema.TablePayment).
		Select(goqu.C(schema.ColPaymentStatus), goqu.C(schema.ColPaymentMethod)).
		Where(goqu.C(schema.ColOrderID).Eq(orderID)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, err
	}

	var status, method string
	if err = q.QueryRow(ctx, sql, args...).Scan(&status, &method); err != nil && !errors.Is(err, store.ErrNoRows) {
		return nil, fmt.Errorf("failed to read payment of order %d: %w", orderID, err)
	}

	return noop, nil
}

func (h *Handlers) readSpecificClientInfo(ctx context.Context, q store.Querier) (func(), error) {
	clientID, ok := h.reg.Pick(registry.Client)
	if !ok {
		return noop, nil
	}

	sql, args, err := store.PSQL.From(schema.TableClient).
		Select(
			goqu.C(schema.ColClientID), goqu.C(schema.ColClientName),
			goqu.C(schema.ColClientPhone), goqu.C(schema.ColClientEmail),
			goqu.C(schema.ColRegistrationDate),
		).
		Where(goqu.C(schema.ColClientID).Eq(clientID)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, err
	}

	var (
		id                 int64
		name, phone, email string
		registered         time.Time
	)
	err = q.QueryRow(ctx, sql, args...).Scan(&id, &name, &phone, &email, &registered)
	if err != nil && !errors.Is(err, store.ErrNoRows) {
		return nil, fmt.Errorf("failed to read client %d: %w", clientID, err)
	}

	return noop, nil
}

func (h *Handlers) readRestaurantDetails(ctx context.Context, q store.Querier) (func(), error) {
	restaurantID, ok := h.reg.Pick(registry.Restaurant)
	if !ok {
		return noop, nil
	}

	sql, args, err := store.PSQL.From(schema.TableRestaurant).
		Select(
			goqu.C(schema.ColRestaurantID), goqu.C(schema.ColRestaurantName),
			goqu.C(schema.ColRestaurantAddress), goqu.C(schema.ColRestaurantCuisine),
		).
		Where(goqu.C(schema.ColRestaurantID).Eq(restaurantID)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, err
	}

	var (
		id                     int64
		name, address, cuisine string
	)
	err = q.QueryRow(ctx, sql, args...).Scan(&id, &name, &address, &cuisine)
	if err != nil && !errors.Is(err, store.ErrNoRows) {
		return nil, fmt.Errorf("failed to read restaurant %d: %w", restaurantID, err)
	}

	return noop, nil
}

// readAvailableTables looks for tables of one restaurant with no
// pending or confirmed booking within two hours of a random near
// future point in time.
func (h *Handlers) readAvailableTables(ctx context.Context, q store.Querier) (func(), error) {
	restaurantID, ok := h.reg.Pick(registry.Restaurant)
	if !ok {
		return noop, nil
	}

	searchTime := time.Now().
		AddDate(0, 0, h.vals.Intn(8)).
		Add(time.Duration(10+h.vals.Intn(11)) * time.Hour)

	occupied := store.PSQL.From(goqu.T(schema.TableBooking).As("b")).
		Select(goqu.L("1")).
		Where(
			goqu.I("b.table_id").Eq(goqu.I("t.table_id")),
			goqu.I("b.status_id").In(
				h.statusID("Pending", schema.StatusPending),
				h.statusID("Confirmed", schema.StatusConfirmed),
			),
			goqu.I("b.booking_date").Between(goqu.Range(
				searchTime.Add(-2*time.Hour),
				searchTime.Add(2*time.Hour),
			)),
		)

	sql, args, err := store.PSQL.From(goqu.T(schema.TableRestTable).As("t")).
		Select(goqu.I("t.table_id"), goqu.I("t.capacity")).
		Where(
			goqu.I("t.restaurant_id").Eq(restaurantID),
			goqu.L("NOT EXISTS ?", occupied),
		).
		Order(goqu.I("t.capacity").Asc()).
		Limit(5).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, err
	}

	return noop, h.discardAll(ctx, q, sql, args)
}

func (h *Handlers) updateBookingStatus(ctx context.Context, q store.Querier) (func(), error) {
	bookingID, ok := h.reg.Pick(registry.Booking)
	if !ok {
		return noop, nil
	}

	next := []int64{
		h.statusID("Confirmed", schema.StatusConfirmed),
		h.statusID("Cancelled", schema.StatusCancelled),
		h.statusID("Completed", schema.StatusCompleted),
	}

	sql, args, err := store.PSQL.Update(schema.TableBooking).
		Set(goqu.Record{schema.ColStatusID: next[h.vals.Intn(len(next))]}).
		Where(goqu.C(schema.ColBookingID).Eq(bookingID)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, err
	}

	if _, err = q.Exec(ctx, sql, args...); err != nil {
		return nil, fmt.Errorf("failed to update status of booking %d: %w", bookingID, err)
	}

	return noop, nil
}

// updateClientInfo mutates exactly one of phone or email per call.
func (h *Handlers) updateClientInfo(ctx context.Context, q store.Querier) (func(), error) {
	clientID, ok := h.reg.Pick(registry.Client)
	if !ok {
		return noop, nil
	}

	var change goqu.Record
	if h.vals.Float64() < 0.5 {
		change = goqu.Record{schema.ColClientPhone: schema.Truncate(h.vals.Phone(), schema.MaxLenClientPhone)}
	} else {
		change = goqu.Record{schema.ColClientEmail: schema.Truncate(h.vals.Email(), schema.MaxLenClientEmail)}
	}

	sql, args, err := store.PSQL.Update(schema.TableClient).
		Set(change).
		Where(goqu.C(schema.ColClientID).Eq(clientID)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, err
	}

	if _, err = q.Exec(ctx, sql, args...); err != nil {
		return nil, fmt.Errorf("failed to update client %d: %w", clientID, err)
	}

	return noop, nil
}

func (h *Handlers) updateOrderStatus(ctx context.Context, q store.Querier) (func(), error) {
	orderID, ok := h.reg.Pick(registry.Order)
	if !ok {
		return noop, nil
	}

	next := []int{schema.OrderStatusPreparing, schema.OrderStatusCompleted}

	sql, args, err := store.PSQL.Update(schema.TableOrder).
		Set(goqu.Record{schema.ColOrderStatus: h.vals.PickInt(next)}).
		Where(goqu.C(schema.ColOrderID).Eq(orderID)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, err
	}

	if _, err = q.Exec(ctx, sql, args...); err != nil {
		return nil, fmt.Errorf("failed to update status of order %d: %w", orderID, err)
	}

	return noop, nil
}

func (h *Handlers) updateMenuItemPrice(ctx context.Context, q store.Querier) (func(), error) {
	menuItemID, ok := h.reg.Pick(registry.MenuItem)
	if !ok {
		return noop, nil
	}

	sql, args, err := store.PSQL.Update(schema.TableMenuItem).
		Set(goqu.Record{schema.ColMenuPrice: h.vals.Price()}).
		Where(goqu.C(schema.ColMenuID).Eq(menuItemID)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, err
	}

	if _, err = q.Exec(ctx, sql, args...); err != nil {
		return nil, fmt.Errorf("failed to update price of menu item %d: %w", menuItemID, err)
	}

	return noop, nil
}

func (h *Handlers) deleteReview(ctx context.Context, q store.Querier) (func(), error) {
	reviewID, ok := h.reg.Pick(registry.Review)
	if !ok {
		return noop, nil
	}

	affected, err := h.deleteByID(ctx, q, schema.TableReview, schema.ColReviewID, reviewID)
	if err != nil {
		return nil, fmt.Errorf("failed to delete review %d: %w", reviewID, err)
	}

	if affected == 0 {
		return noop, nil
	}

	return func() { h.reg.Remove(registry.Review, reviewID) }, nil
}

// cancelBooking deletes one cancellation-eligible booking and cascades
// through its orders in strict child before parent order: payment,
// line items, order, booking.
func (h *Handlers) cancelBooking(ctx context.Context, q store.Querier) (func(), error) {
	if h.reg.Count(registry.Booking) == 0 {
		return noop, nil
	}

	pending := h.statusID("Pending", schema.StatusPending)
	cancelled := h.statusID("Cancelled", schema.StatusCancelled)
	completed := h.statusID("Completed", schema.StatusCompleted)

	candidateSQL, candidateArgs, err := store.PSQL.From(schema.TableBooking).
		Select(goqu.C(schema.ColBookingID)).
		Where(goqu.Or(
			goqu.C(schema.ColStatusID).In(pending, cancelled),
			goqu.And(
				goqu.C(schema.ColStatusID).Neq(completed),
				goqu.C(schema.ColBookingDate).Gt(time.Now()),
			),
		)).
		Order(goqu.L("random()").Asc()).
		Limit(1).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, err
	}

	var bookingID int64
	if err = q.QueryRow(ctx, candidateSQL, candidateArgs...).Scan(&bookingID); err != nil {
		if errors.Is(err, store.ErrNoRows) {
			return noop, nil
		}

		return nil, fmt.Errorf("failed to find a cancellable booking: %w", err)
	}

	ordersSQL, ordersArgs, err := store.PSQL.From(schema.TableOrder).
		Select(goqu.C(schema.ColOrderID)).
		Where(goqu.C(schema.ColBookingID).Eq(bookingID)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, err
	}

	rows, err := q.Query(ctx, ordersSQL, ordersArgs...)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders of booking %d: %w", bookingID, err)
	}

	var orderIDs []int64
	for rows.Next() {
		var orderID int64
		if err = rows.Scan(&orderID); err != nil {
			_ = rows.Close()
			return nil, err
		}

		orderIDs = append(orderIDs, orderID)
	}
	_ = rows.Close()
	if err = rows.Err(); err != nil {
		return nil, err
	}

	removedOrders := make([]int64, 0, len(orderIDs))

	for _, orderID := range orderIDs {
		if _, err = h.deleteByID(ctx, q, schema.TablePayment, schema.ColOrderID, orderID); err != nil {
			return nil, fmt.Errorf("failed to delete payment of order %d: %w", orderID, err)
		}

		if _, err = h.deleteByID(ctx, q, schema.TableOrderItem, schema.ColOrderID, orderID); err != nil {
			return nil, fmt.Errorf("failed to delete line items of order %d: %w", orderID, err)
		}

		affected, delErr := h.deleteByID(ctx, q, schema.TableOrder, schema.ColOrderID, orderID)
		if delErr != nil {
			return nil, fmt.Errorf("failed to delete order %d: %w", orderID, delErr)
		}

		if affected > 0 {
			removedOrders = append(removedOrders, orderID)
		}
	}

	affected, err := h.deleteByID(ctx, q, schema.TableBooking, schema.ColBookingID, bookingID)
	if err != nil {
		return nil, fmt.Errorf("failed to delete booking %d: %w", bookingID, err)
	}

	return func() {
		for _, orderID := range removedOrders {
			h.reg.Remove(registry.Order, orderID)
		}
		if affected > 0 {
			h.reg.Remove(registry.Booking, bookingID)
		}
	}, nil
}

func (h *Handlers) removeMenuItem(ctx context.Context, q store.Querier) (func(), error) {
	menuItemID, ok := h.reg.Pick(registry.MenuItem)
	if !ok {
		return noop, nil
	}

	affected, err := h.deleteByID(ctx, q, schema.TableMenuItem, schema.ColMenuID, menuItemID)
	if err != nil {
		return nil, fmt.Errorf("failed to remove menu item %d: %w", menuItemID, err)
	}

	if affected == 0 {
		return noop, nil
	}

	return func() { h.reg.Remove(registry.MenuItem, menuItemID) }, nil
}

func (h *Handlers) deleteByID(ctx context.Context, q store.Querier, table, idCol string, id int64) (int64, error) {
	sql, args, err := store.PSQL.Delete(table).
		Where(goqu.C(idCol).Eq(id)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return 0, err
	}

	res, err := q.Exec(ctx, sql, args...)
	if err != nil {
		return 0, err
	}

	return res.RowsAffected()
}

// discardAll runs a query and drains the rows without scanning them.
func (h *Handlers) discardAll(ctx context.Context, q store.Querier, sql string, args []any) error {
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
	}

	return rows.Err()
}
