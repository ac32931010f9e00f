// Package migrator performs the one-shot relational to document store
// snapshot migration. It reads every table, drops the target
// collections and writes denormalized document batches.
package migrator

import (
	"context"
	"fmt"
	"log"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/iimin/restosim/schema"
	"github.com/iimin/restosim/store"
)

// Target collection names.
const (
	CollBookingStatuses = "booking_statuses"
	CollClients         = "clients"
	CollRestaurants     = "restaurants"
	CollTables          = "tables"
	CollMenuItems       = "menu_items"
	CollBookings        = "bookings"
	CollOrders          = "orders"
	CollPayments        = "payments"
	CollReviews         = "reviews"
)

const insertBatchSize = 1000

// Migrator copies a snapshot of the relational schema into the
// document store.
type Migrator struct {
	sqlDB *sqlx.DB
	docs  *mongo.Database
}

// New creates a Migrator over an open relational connection and a
// target document database.
func New(sqlDB *sqlx.DB, docs *mongo.Database) *Migrator {
	return &Migrator{sqlDB: sqlDB, docs: docs}
}

// Run executes the full migration. Existing target collections are
// dropped first, so the result is a clean snapshot.
func (m *Migrator) Run(ctx context.Context) error {
	runID := uuid.New()

	log.Printf("migration %s: dropping target collections", runID)

	collections := []string{
		CollBookingStatuses, CollClients, CollRestaurants, CollTables,
		CollMenuItems, CollBookings, CollOrders, CollPayments, CollReviews,
	}
	for _, name := range collections {
		if err := m.docs.Collection(name).Drop(ctx); err != nil {
			return fmt.Errorf("failed to drop collection %s: %w", name, err)
		}
	}

	steps := []struct {
		label string
		fn    func(context.Context) (int, error)
	}{
		{"booking statuses", m.migrateStatuses},
		{"clients", m.migrateClients},
		{"restaurants", m.migrateRestaurants},
		{"tables", m.migrateTables},
		{"menu items", m.migrateMenuItems},
		{"bookings", m.migrateBookings},
		{"orders", m.migrateOrders},
		{"payments", m.migratePayments},
		{"reviews", m.migrateReviews},
	}

	for _, step := range steps {
		count, err := step.fn(ctx)
		if err != nil {
			return fmt.Errorf("failed to migrate %s: %w", step.label, err)
		}

		log.Printf("migration %s: migrated %d %s", runID, count, step.label)
	}

	log.Printf("migration %s: complete", runID)

	return nil
}

func (m *Migrator) migrateStatuses(ctx context.Context) (int, error) {
	var rows []statusRow
	err := m.selectAll(ctx, &rows, store.PSQL.From(schema.TableBookingStatus).
		Select(goqu.C(schema.ColStatusID), goqu.C(schema.ColStatusName)))
	if err != nil {
		return 0, err
	}

	docs := make([]statusDoc, 0, len(rows))
	for _, r := range rows {
		docs = append(docs, statusDoc{StatusID: r.ID, StatusName: r.Name})
	}

	return len(docs), insertAll(ctx, m.docs.Collection(CollBookingStatuses), docs)
}

func (m *Migrator) migrateClients(ctx context.Context) (int, error) {
	var rows []clientRow
	err := m.selectAll(ctx, &rows, store.PSQL.From(schema.TableClient).
		Select(
			goqu.C(schema.ColClientID), goqu.C(schema.ColClientName),
			goqu.C(schema.ColClientPhone), goqu.C(schema.ColClientEmail),
			goqu.C(schema.ColRegistrationDate),
		))
	if err != nil {
		return 0, err
	}

	docs := make([]clientDoc, 0, len(rows))
	for _, r := range rows {
		docs = append(docs, clientDoc{
			ClientID:         r.ID,
			Name:             r.Name,
			Phone:            r.Phone,
			Email:            r.Email,
			RegistrationDate: r.Registered,
		})
	}

	return len(docs), insertAll(ctx, m.docs.Collection(CollClients), docs)
}

func (m *Migrator) migrateRestaurants(ctx context.Context) (int, error) {
	var rows []restaurantRow
	err := m.selectAll(ctx, &rows, store.PSQL.From(schema.TableRestaurant).
		Select(
			goqu.C(schema.ColRestaurantID), goqu.C(schema.ColRestaurantName),
			goqu.C(schema.ColRestaurantAddress), goqu.C(schema.ColRestaurantCuisine),
		))
	if err != nil {
		return 0, err
	}

	docs := make([]restaurantDoc, 0, len(rows))
	for _, r := range rows {
		docs = append(docs, restaurantDoc{
			RestaurantID: r.ID,
			Name:         r.Name,
			Address:      r.Address,
			Cuisine:      r.Cuisine,
		})
	}

	return len(docs), insertAll(ctx, m.docs.Collection(CollRestaurants), docs)
}

func (m *Migrator) migrateTables(ctx context.Context) (int, error) {
	var rows []tableRow
	err := m.selectAll(ctx, &rows, store.PSQL.From(schema.TableRestTable).
		Select(goqu.C(schema.ColTableID), goqu.C(schema.ColRestaurantID), goqu.C(schema.ColTableCapacity)))
	if err != nil {
		return 0, err
	}

	docs := make([]tableDoc, 0, len(rows))
	for _, r := range rows {
		docs = append(docs, tableDoc{TableID: r.ID, RestaurantID: r.RestaurantID, Capacity: r.Capacity})
	}

	return len(docs), insertAll(ctx, m.docs.Collection(CollTables), docs)
}

func (m *Migrator) migrateMenuItems(ctx context.Context) (int, error) {
	var rows []menuItemRow
	err := m.selectAll(ctx, &rows, store.PSQL.From(schema.TableMenuItem).
		Select(
			goqu.C(schema.ColMenuID), goqu.C(schema.ColRestaurantID),
			goqu.C(schema.ColMenuDishName), goqu.C(schema.ColMenuPrice),
		))
	if err != nil {
		return 0, err
	}

	docs := make([]menuItemDoc, 0, len(rows))
	for _, r := range rows {
		docs = append(docs, menuItemDoc{
			MenuItemID:   r.ID,
			RestaurantID: r.RestaurantID,
			DishName:     r.DishName,
			Price:        r.Price,
		})
	}

	return len(docs), insertAll(ctx, m.docs.Collection(CollMenuItems), docs)
}

func (m *Migrator) migrateBookings(ctx context.Context) (int, error) {
	rows, err := m.readBookings(ctx)
	if err != nil {
		return 0, err
	}

	docs := make([]bookingDoc, 0, len(rows))
	for _, r := range rows {
		docs = append(docs, bookingDoc{
			BookingID:   r.ID,
			ClientID:    r.ClientID,
			StatusID:    r.StatusID,
			TableID:     r.TableID,
			BookingDate: r.Date,
		})
	}

	return len(docs), insertAll(ctx, m.docs.Collection(CollBookings), docs)
}

func (m *Migrator) migrateOrders(ctx context.Context) (int, error) {
	var orders []orderRow
	err := m.selectAll(ctx, &orders, store.PSQL.From(schema.TableOrder).
		Select(
			goqu.C(schema.ColOrderID), goqu.C(schema.ColBookingID),
			goqu.C(schema.ColOrderStatus), goqu.C(schema.ColOrderTotal),
		))
	if err != nil {
		return 0, err
	}

	var items []orderItemRow
	err = m.selectAll(ctx, &items, store.PSQL.From(goqu.T(schema.TableOrderItem).As("oi")).
		LeftJoin(
			goqu.T(schema.TableMenuItem).As("mi"),
			goqu.On(goqu.I("oi.menu_id").Eq(goqu.I("mi.menu_id"))),
		).
		Select(goqu.I("oi.order_id"), goqu.I("oi.menu_id"), goqu.I("oi.price_at_order"), goqu.I("mi.dish_name")))
	if err != nil {
		return 0, err
	}

	bookings, err := m.readBookings(ctx)
	if err != nil {
		return 0, err
	}

	docs := buildOrderDocs(orders, items, bookings)

	return len(docs), insertAll(ctx, m.docs.Collection(CollOrders), docs)
}

func (m *Migrator) migratePayments(ctx context.Context) (int, error) {
	var rows []paymentRow
	err := m.selectAll(ctx, &rows, store.PSQL.From(schema.TablePayment).
		Select(goqu.C(schema.ColOrderID), goqu.C(schema.ColPaymentMethod), goqu.C(schema.ColPaymentStatus)))
	if err != nil {
		return 0, err
	}

	docs := make([]paymentDoc, 0, len(rows))
	for _, r := range rows {
		docs = append(docs, paymentDoc{
			ID:      primitive.NewObjectID(),
			OrderID: r.OrderID,
			Method:  r.Method,
			Status:  r.Status,
		})
	}

	return len(docs), insertAll(ctx, m.docs.Collection(CollPayments), docs)
}

func (m *Migrator) migrateReviews(ctx context.Context) (int, error) {
	var rows []reviewRow
	err := m.selectAll(ctx, &rows, store.PSQL.From(schema.TableReview).
		Select(
			goqu.C(schema.ColClientID), goqu.C(schema.ColRestaurantID),
			goqu.C(schema.ColReviewRating), goqu.C(schema.ColReviewComment),
			goqu.C(schema.ColReviewDate),
		))
	if err != nil {
		return 0, err
	}

	docs := make([]reviewDoc, 0, len(rows))
	for _, r := range rows {
		docs = append(docs, reviewDoc{
			ID:           primitive.NewObjectID(),
			ClientID:     r.ClientID,
			RestaurantID: r.RestaurantID,
			Rating:       r.Rating,
			Comment:      r.Comment,
			ReviewDate:   r.Date,
		})
	}

	return len(docs), insertAll(ctx, m.docs.Collection(CollReviews), docs)
}

func (m *Migrator) readBookings(ctx context.Context) ([]bookingRow, error) {
	var rows []bookingRow
	err := m.selectAll(ctx, &rows, store.PSQL.From(schema.TableBooking).
		Select(
			goqu.C(schema.ColBookingID), goqu.C(schema.ColClientID),
			goqu.C(schema.ColStatusID), goqu.C(schema.ColTableID),
			goqu.C(schema.ColBookingDate),
		))

	return rows, err
}

func (m *Migrator) selectAll(ctx context.Context, dest any, ds *goqu.SelectDataset) error {
	sql, args, err := ds.Prepared(true).ToSQL()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}

	return m.sqlDB.SelectContext(ctx, dest, sql, args...)
}

func insertAll[T any](ctx context.Context, coll *mongo.Collection, docs []T) error {
	for start := 0; start < len(docs); start += insertBatchSize {
		end := start + insertBatchSize
		if end > len(docs) {
			end = len(docs)
		}

		batch := make([]any, 0, end-start)
		for _, doc := range docs[start:end] {
			batch = append(batch, doc)
		}

		if _, err := coll.InsertMany(ctx, batch); err != nil {
			return fmt.Errorf("failed to insert into %s: %w", coll.Name(), err)
		}
	}

	return nil
}
