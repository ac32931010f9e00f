// Package generator implements the bulk seeding path: booking status
// reconciliation, registry loading and the per-entity batch generators.
// Each batch runs in one transaction with a savepoint per row, so a
// single bad row is skipped without poisoning the rest of the batch.
package generator

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/doug-martin/goqu/v9"

	"github.com/iimin/restosim/registry"
	"github.com/iimin/restosim/schema"
	"github.com/iimin/restosim/store"
	"github.com/iimin/restosim/synth"
)

// errSkipRow marks a candidate row the generator decided not to insert.
// It is not a failure and is not logged.
var errSkipRow = errors.New("row skipped")

// Config holds the generation knobs.
type Config struct {
	// InitialCount is the target batch size for every entity type.
	InitialCount int

	// OrderChance is the probability that a candidate booking gets an
	// order during order generation.
	OrderChance float64

	// DateRangeYears bounds how far in the past generated timestamps
	// may fall.
	DateRangeYears int
}

// Generator seeds the relational store with synthetic entities.
type Generator struct {
	db   store.DB
	reg  *registry.Registry
	vals *synth.Provider
	cfg  Config
}

// New creates a Generator. The registry must be the same instance the
// caller loaded existing ids into.
func New(db store.DB, reg *registry.Registry, vals *synth.Provider, cfg Config) *Generator {
	return &Generator{db: db, reg: reg, vals: vals, cfg: cfg}
}

// Run executes the full seeding sequence in foreign key order.
func (g *Generator) Run(ctx context.Context) error {
	if err := SeedBookingStatuses(ctx, g.db, g.reg); err != nil {
		return err
	}

	if err := LoadExisting(ctx, g.db, g.reg); err != nil {
		return err
	}

	n := g.cfg.InitialCount

	steps := []struct {
		label string
		fn    func(context.Context, int) (int, error)
	}{
		{"clients", g.Clients},
		{"restaurants", g.Restaurants},
		{"tables", g.Tables},
		{"menu items", g.MenuItems},
		{"bookings", g.Bookings},
		{"orders", g.OrdersAndRelated},
		{"reviews", g.Reviews},
	}

	for _, step := range steps {
		inserted, err := step.fn(ctx, n)
		if err != nil {
			return fmt.Errorf("failed generating %s: %w", step.label, err)
		}

		log.Printf("generated %d %s", inserted, step.label)
	}

	return nil
}

// Clients inserts n clients with explicitly assigned primary keys.
func (g *Generator) Clients(ctx context.Context, n int) (int, error) {
	return g.insertBatch(ctx, "client", n, func(ctx context.Context, tx store.Tx) error {
		id := g.reg.NextID(registry.Client)

		sql, args, err := store.PSQL.Insert(schema.TableClient).
			Rows(goqu.Record{
				schema.ColClientID:         id,
				schema.ColClientName:       schema.Truncate(g.vals.Name(), schema.MaxLenClientName),
				schema.ColClientPhone:      schema.Truncate(g.vals.Phone(), schema.MaxLenClientPhone),
				schema.ColClientEmail:      schema.Truncate(g.vals.Email(), schema.MaxLenClientEmail),
				schema.ColRegistrationDate: g.pastTime(),
			}).
			Prepared(true).
			ToSQL()
		if err != nil {
			return err
		}

		if _, err = tx.Exec(ctx, sql, args...); err != nil {
			return fmt.Errorf("client %d: %w", id, err)
		}

		g.reg.Register(registry.Client, id)

		return nil
	})
}

// Restaurants inserts n restaurants with explicitly assigned primary keys.
func (g *Generator) Restaurants(ctx context.Context, n int) (int, error) {
	return g.insertBatch(ctx, "restaurant", n, func(ctx context.Context, tx store.Tx) error {
		id := g.reg.NextID(registry.Restaurant)

		sql, args, err := store.PSQL.Insert(schema.TableRestaurant).
			Rows(goqu.Record{
				schema.ColRestaurantID:      id,
				schema.ColRestaurantName:    schema.Truncate(g.vals.Company(), schema.MaxLenRestaurantName),
				schema.ColRestaurantAddress: schema.Truncate(g.vals.Address(), schema.MaxLenRestaurantAddress),
				schema.ColRestaurantCuisine: schema.Truncate(g.vals.Cuisine(), schema.MaxLenRestaurantCuisine),
			}).
			Prepared(true).
			ToSQL()
		if err != nil {
			return err
		}

		if _, err = tx.Exec(ctx, sql, args...); err != nil {
			return fmt.Errorf("restaurant %d: %w", id, err)
		}

		g.reg.Register(registry.Restaurant, id)

		return nil
	})
}

// Tables inserts n restaurant tables with explicitly assigned primary
// keys, each attached to a random known restaurant.
func (g *Generator) Tables(ctx context.Context, n int) (int, error) {
	if g.reg.Count(registry.Restaurant) == 0 {
		return 0, nil
	}

	capacities := []int{2, 4, 6, 8, 10}

	return g.insertBatch(ctx, "table", n, func(ctx context.Context, tx store.Tx) error {
		restaurantID, ok := g.reg.Pick(registry.Restaurant)
		if !ok {
			return errSkipRow
		}

		id := g.reg.NextID(registry.Table)

		sql, args, err := store.PSQL.Insert(schema.TableRestTable).
			Rows(goqu.Record{
				schema.ColTableID:       id,
				schema.ColRestaurantID:  restaurantID,
				schema.ColTableCapacity: g.vals.PickInt(capacities),
			}).
			Prepared(true).
			ToSQL()
		if err != nil {
			return err
		}

		if _, err = tx.Exec(ctx, sql, args...); err != nil {
			return fmt.Errorf("table %d: %w", id, err)
		}

		g.reg.Register(registry.Table, id)

		return nil
	})
}

// MenuItems inserts n menu items against random known restaurants.
// Primary keys come back from the store.
func (g *Generator) MenuItems(ctx context.Context, n int) (int, error) {
	if g.reg.Count(registry.Restaurant) == 0 {
		return 0, nil
	}

	return g.insertBatch(ctx, "menu item", n, func(ctx context.Context, tx store.Tx) error {
		restaurantID, ok := g.reg.Pick(registry.Restaurant)
		if !ok {
			return errSkipRow
		}

		price := g.vals.Price()

		sql, args, err := store.PSQL.Insert(schema.TableMenuItem).
			Rows(goqu.Record{
				schema.ColRestaurantID: restaurantID,
				schema.ColMenuDishName: schema.Truncate(g.vals.DishName(), schema.MaxLenDishName),
				schema.ColMenuPrice:    price,
			}).
			Returning(goqu.C(schema.ColMenuID)).
			Prepared(true).
			ToSQL()
		if err != nil {
			return err
		}

		var id int64
		if err = tx.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
			return fmt.Errorf("menu item for restaurant %d: %w", restaurantID, err)
		}

		g.reg.RegisterMenuItem(id, restaurantID, price)

		return nil
	})
}

// Bookings inserts n bookings drawing client, table and status ids
// from the registry. Primary keys come back from the store.
func (g *Generator) Bookings(ctx context.Context, n int) (int, error) {
	if g.reg.Count(registry.Client) == 0 || g.reg.Count(registry.Table) == 0 || len(g.reg.StatusIDs()) == 0 {
		return 0, nil
	}

	return g.insertBatch(ctx, "booking", n, func(ctx context.Context, tx store.Tx) error {
		clientID, okClient := g.reg.Pick(registry.Client)
		tableID, okTable := g.reg.Pick(registry.Table)
		statusID, okStatus := g.reg.PickStatusID()
		if !okClient || !okTable || !okStatus {
			return errSkipRow
		}

		sql, args, err := store.PSQL.Insert(schema.TableBooking).
			Rows(goqu.Record{
				schema.ColClientID:    clientID,
				schema.ColStatusID:    statusID,
				schema.ColTableID:     tableID,
				schema.ColBookingDate: g.pastTime(),
			}).
			Returning(goqu.C(schema.ColBookingID)).
			Prepared(true).
			ToSQL()
		if err != nil {
			return err
		}

		var id int64
		if err = tx.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
			return fmt.Errorf("booking for client %d: %w", clientID, err)
		}

		g.reg.Register(registry.Booking, id)

		return nil
	})
}

// OrdersAndRelated walks up to n distinct known bookings and, with the
// configured chance, gives each one an order with a single line item
// and a payment. Walking distinct bookings keeps a full chance run at
// one order per booking. A failed order insert skips its dependents.
func (g *Generator) OrdersAndRelated(ctx context.Context, n int) (int, error) {
	if g.reg.Count(registry.Booking) == 0 || g.reg.Count(registry.MenuItem) == 0 {
		return 0, nil
	}

	bookingIDs := g.reg.KnownIDs(registry.Booking)
	if n > len(bookingIDs) {
		n = len(bookingIDs)
	}

	next := 0

	return g.insertBatch(ctx, "order", n, func(ctx context.Context, tx store.Tx) error {
		bookingID := bookingIDs[next]
		next++

		if g.vals.Float64() >= g.cfg.OrderChance {
			return errSkipRow
		}

		menuItemID, okMenu := g.reg.Pick(registry.MenuItem)
		if !okMenu {
			return errSkipRow
		}

		priceAtOrder := 1 + g.vals.Intn(10)

		orderSQL, orderArgs, err := store.PSQL.Insert(schema.TableOrder).
			Rows(goqu.Record{
				schema.ColBookingID:   bookingID,
				schema.ColOrderStatus: g.vals.PickInt(schema.OrderStatusCodes()),
				schema.ColOrderTotal:  priceAtOrder,
			}).
			Returning(goqu.C(schema.ColOrderID)).
			Prepared(true).
			ToSQL()
		if err != nil {
			return err
		}

		var orderID int64
		if err = tx.QueryRow(ctx, orderSQL, orderArgs...).Scan(&orderID); err != nil {
			return fmt.Errorf("order for booking %d: %w", bookingID, err)
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
			return err
		}

		if _, err = tx.Exec(ctx, itemSQL, itemArgs...); err != nil {
			return fmt.Errorf("line item for order %d: %w", orderID, err)
		}

		paySQL, payArgs, err := store.PSQL.Insert(schema.TablePayment).
			Rows(goqu.Record{
				schema.ColOrderID:       orderID,
				schema.ColPaymentMethod: schema.Truncate(g.vals.PickString(schema.PaymentMethods()), schema.MaxLenPaymentMethod),
				schema.ColPaymentStatus: schema.Truncate(g.vals.PickString(schema.PaymentStatuses()), schema.MaxLenPaymentStatus),
			}).
			Prepared(true).
			ToSQL()
		if err != nil {
			return err
		}

		if _, err = tx.Exec(ctx, paySQL, payArgs...); err != nil {
			return fmt.Errorf("payment for order %d: %w", orderID, err)
		}

		g.reg.Register(registry.Order, orderID)

		return nil
	})
}

// Reviews inserts n reviews against random known clients and
// restaurants. Primary keys come back from the store.
func (g *Generator) Reviews(ctx context.Context, n int) (int, error) {
	if g.reg.Count(registry.Client) == 0 || g.reg.Count(registry.Restaurant) == 0 {
		return 0, nil
	}

	return g.insertBatch(ctx, "review", n, func(ctx context.Context, tx store.Tx) error {
		clientID, okClient := g.reg.Pick(registry.Client)
		restaurantID, okRestaurant := g.reg.Pick(registry.Restaurant)
		if !okClient || !okRestaurant {
			return errSkipRow
		}

		comment := g.vals.Comment(50 + g.vals.Intn(400))

		sql, args, err := store.PSQL.Insert(schema.TableReview).
			Rows(goqu.Record{
				schema.ColClientID:      clientID,
				schema.ColRestaurantID:  restaurantID,
				schema.ColReviewRating:  g.vals.Rating(),
				schema.ColReviewComment: schema.Truncate(comment, schema.MaxLenReviewComment),
				schema.ColReviewDate:    g.pastTime(),
			}).
			Returning(goqu.C(schema.ColReviewID)).
			Prepared(true).
			ToSQL()
		if err != nil {
			return err
		}

		var id int64
		if err = tx.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
			return fmt.Errorf("review for client %d: %w", clientID, err)
		}

		g.reg.Register(registry.Review, id)

		return nil
	})
}

// insertBatch runs n row inserts inside one transaction, each behind
// its own savepoint. Failed rows are logged and skipped. The batch is
// committed when at least one row succeeded and rolled back otherwise.
func (g *Generator) insertBatch(
	ctx context.Context,
	label string,
	n int,
	insertOne func(ctx context.Context, tx store.Tx) error,
) (int, error) {
	tx, err := g.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin %s batch: %w", label, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	inserted := 0

	for i := 0; i < n; i++ {
		sp, spErr := tx.Begin(ctx)
		if spErr != nil {
			return inserted, fmt.Errorf("failed to open savepoint in %s batch: %w", label, spErr)
		}

		if rowErr := insertOne(ctx, sp); rowErr != nil {
			if !errors.Is(rowErr, errSkipRow) {
				log.Printf("skipping %s row: %v", label, rowErr)
			}
			_ = sp.Rollback(ctx)

			continue
		}

		if spErr = sp.Commit(ctx); spErr != nil {
			log.Printf("skipping %s row, savepoint release failed: %v", label, spErr)
			continue
		}

		inserted++
	}

	if inserted == 0 {
		return 0, nil
	}

	if err = tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit %s batch: %w", label, err)
	}

	return inserted, nil
}

// pastTime returns a random timestamp within the configured past range.
func (g *Generator) pastTime() time.Time {
	years := g.cfg.DateRangeYears
	if years <= 0 {
		years = 1
	}

	maxAge := years * 365 * 24 * 3600

	return time.Now().Add(-time.Duration(g.vals.Intn(maxAge)) * time.Second).Truncate(time.Second)
}
