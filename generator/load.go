package generator

import (
	"context"
	"fmt"
	"strings"

	"github.com/doug-martin/goqu/v9"

	"github.com/iimin/restosim/registry"
	"github.com/iimin/restosim/schema"
	"github.com/iimin/restosim/store"
)

// LoadExisting populates the registry with every id currently in the
// store, so re-running the generator resumes from the existing maxima
// instead of colliding with prior runs.
func LoadExisting(ctx context.Context, q store.Querier, reg *registry.Registry) error {
	if err := loadStatusIDs(ctx, q, reg); err != nil {
		return err
	}

	simple := []struct {
		kind  registry.Kind
		table string
		idCol string
	}{
		{registry.Client, schema.TableClient, schema.ColClientID},
		{registry.Restaurant, schema.TableRestaurant, schema.ColRestaurantID},
		{registry.Table, schema.TableRestTable, schema.ColTableID},
		{registry.Booking, schema.TableBooking, schema.ColBookingID},
		{registry.Order, schema.TableOrder, schema.ColOrderID},
		{registry.Review, schema.TableReview, schema.ColReviewID},
	}

	for _, s := range simple {
		ids, err := collectIDs(ctx, q, store.PSQL.From(s.table).Select(goqu.C(s.idCol)).Prepared(true))
		if err != nil {
			return fmt.Errorf("failed to load %s ids: %w", s.kind, err)
		}

		for _, id := range ids {
			reg.Register(s.kind, id)
		}
	}

	return loadMenuItems(ctx, q, reg, store.PSQL.From(schema.TableMenuItem).
		Select(goqu.C(schema.ColMenuID), goqu.C(schema.ColRestaurantID), goqu.C(schema.ColMenuPrice)).
		Prepared(true))
}

// LoadRecent populates the registry with a bounded sample of existing
// ids, preferring the most recent rows where a timestamp column exists
// and a random sample everywhere else. The simulator uses this at
// startup so huge stores do not delay the run.
func LoadRecent(ctx context.Context, q store.Querier, reg *registry.Registry, limit uint) error {
	if err := loadStatusIDs(ctx, q, reg); err != nil {
		return err
	}

	sampled := []struct {
		kind    registry.Kind
		dataset *goqu.SelectDataset
	}{
		{registry.Client, store.PSQL.From(schema.TableClient).
			Select(goqu.C(schema.ColClientID)).Order(goqu.L("random()").Asc())},
		{registry.Restaurant, store.PSQL.From(schema.TableRestaurant).
			Select(goqu.C(schema.ColRestaurantID)).Order(goqu.L("random()").Asc())},
		{registry.Table, store.PSQL.From(schema.TableRestTable).
			Select(goqu.C(schema.ColTableID)).Order(goqu.L("random()").Asc())},
		{registry.Booking, store.PSQL.From(schema.TableBooking).
			Select(goqu.C(schema.ColBookingID)).Order(goqu.C(schema.ColBookingDate).Desc())},
		{registry.Order, store.PSQL.From(schema.TableOrder).
			Select(goqu.C(schema.ColOrderID)).Order(goqu.C(schema.ColOrderID).Desc())},
		{registry.Review, store.PSQL.From(schema.TableReview).
			Select(goqu.C(schema.ColReviewID)).Order(goqu.C(schema.ColReviewDate).Desc())},
	}

	for _, s := range sampled {
		ids, err := collectIDs(ctx, q, s.dataset.Limit(limit).Prepared(true))
		if err != nil {
			return fmt.Errorf("failed to load %s ids: %w", s.kind, err)
		}

		for _, id := range ids {
			reg.Register(s.kind, id)
		}
	}

	return loadMenuItems(ctx, q, reg, store.PSQL.From(schema.TableMenuItem).
		Select(goqu.C(schema.ColMenuID), goqu.C(schema.ColRestaurantID), goqu.C(schema.ColMenuPrice)).
		Order(goqu.L("random()").Asc()).
		Limit(limit).
		Prepared(true))
}

func loadStatusIDs(ctx context.Context, q store.Querier, reg *registry.Registry) error {
	sql, args, err := store.PSQL.From(schema.TableBookingStatus).
		Select(goqu.C(schema.ColStatusID), goqu.C(schema.ColStatusName)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return fmt.Errorf("failed to build status query: %w", err)
	}

	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("failed to load booking statuses: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var (
			id   int64
			name string
		)
		if err = rows.Scan(&id, &name); err != nil {
			return fmt.Errorf("failed to scan booking status: %w", err)
		}

		reg.SetStatusID(strings.TrimSpace(name), id)
	}

	return rows.Err()
}

func loadMenuItems(ctx context.Context, q store.Querier, reg *registry.Registry, ds *goqu.SelectDataset) error {
	sql, args, err := ds.ToSQL()
	if err != nil {
		return fmt.Errorf("failed to build menu query: %w", err)
	}

	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("failed to load menu items: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var (
			id, restaurantID int64
			price            float64
		)
		if err = rows.Scan(&id, &restaurantID, &price); err != nil {
			return fmt.Errorf("failed to scan menu item: %w", err)
		}

		reg.RegisterMenuItem(id, restaurantID, price)
	}

	return rows.Err()
}

func collectIDs(ctx context.Context, q store.Querier, ds *goqu.SelectDataset) ([]int64, error) {
	sql, args, err := ds.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("failed to build id query: %w", err)
	}

	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []int64
	for rows.Next() {
		var id int64
		if err = rows.Scan(&id); err != nil {
			return nil, err
		}

		out = append(out, id)
	}

	return out, rows.Err()
}
