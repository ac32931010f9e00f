package generator

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/doug-martin/goqu/v9"

	"github.com/iimin/restosim/registry"
	"github.com/iimin/restosim/schema"
	"github.com/iimin/restosim/store"
)

// SeedBookingStatuses reconciles the booking_status table against the
// target name set. It is idempotent: a second run against the same
// store makes no changes and yields the same name to id mapping.
//
// Per target status, in order:
//   - the target id already holds the target name: nothing to do
//   - the target id holds a different name: the name is updated in place
//   - the name already exists under another id: that id is adopted
//   - otherwise the status is inserted, under the next free id if the
//     target id is somehow taken
//
// The transaction is committed only when a row was actually written.
func SeedBookingStatuses(ctx context.Context, db store.DB, reg *registry.Registry) error {
	tx, err := db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin status seeding: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	byID, byName, err := loadStatusRows(ctx, tx)
	if err != nil {
		return err
	}

	nextFree := int64(1)
	for id := range byID {
		if id >= nextFree {
			nextFree = id + 1
		}
	}

	targets := schema.BookingStatusNames()
	names := make([]string, 0, len(targets))
	for name := range targets {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return targets[names[i]] < targets[names[j]] })

	changed := false

	for _, name := range names {
		targetID := targets[name]
		name = schema.Truncate(name, schema.MaxLenStatusName)

		if current, ok := byID[targetID]; ok {
			if !strings.EqualFold(current, name) {
				log.Printf("booking status %d is named %q, renaming to %q", targetID, current, name)

				if err = renameStatus(ctx, tx, targetID, name); err != nil {
					return err
				}

				delete(byName, current)
				byID[targetID] = name
				byName[name] = targetID
				changed = true
			}

			reg.SetStatusID(name, targetID)
			continue
		}

		if existingID, ok := byName[name]; ok {
			log.Printf("booking status %q already exists under id %d, adopting it", name, existingID)
			reg.SetStatusID(name, existingID)
			continue
		}

		idToInsert := targetID
		if _, taken := byID[idToInsert]; taken {
			idToInsert = nextFree
			nextFree++
		}

		if err = insertStatus(ctx, tx, idToInsert, name); err != nil {
			return err
		}

		byID[idToInsert] = name
		byName[name] = idToInsert
		reg.SetStatusID(name, idToInsert)
		changed = true
	}

	if !changed {
		return nil
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit status seeding: %w", err)
	}

	return nil
}

func loadStatusRows(ctx context.Context, q store.Querier) (byID map[int64]string, byName map[string]int64, err error) {
	sql, args, err := store.PSQL.From(schema.TableBookingStatus).
		Select(goqu.C(schema.ColStatusID), goqu.C(schema.ColStatusName)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build status query: %w", err)
	}

	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read booking statuses: %w", err)
	}
	defer func() { _ = rows.Close() }()

	byID = make(map[int64]string)
	byName = make(map[string]int64)

	for rows.Next() {
		var (
			id   int64
			name string
		)
		if err = rows.Scan(&id, &name); err != nil {
			return nil, nil, fmt.Errorf("failed to scan booking status: %w", err)
		}

		name = strings.TrimSpace(name)
		byID[id] = name
		byName[name] = id
	}

	return byID, byName, rows.Err()
}

func renameStatus(ctx context.Context, tx store.Tx, id int64, name string) error {
	sql, args, err := store.PSQL.Update(schema.TableBookingStatus).
		Set(goqu.Record{schema.ColStatusName: name}).
		Where(goqu.C(schema.ColStatusID).Eq(id)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return fmt.Errorf("failed to build status rename: %w", err)
	}

	if _, err = tx.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("failed to rename booking status %d: %w", id, err)
	}

	return nil
}

func insertStatus(ctx context.Context, tx store.Tx, id int64, name string) error {
	sql, args, err := store.PSQL.Insert(schema.TableBookingStatus).
		Rows(goqu.Record{
			schema.ColStatusID:   id,
			schema.ColStatusName: name,
		}).
		Prepared(true).
		ToSQL()
	if err != nil {
		return fmt.Errorf("failed to build status insert: %w", err)
	}

	if _, err = tx.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("failed to insert booking status %q (id %d): %w", name, id, err)
	}

	return nil
}
