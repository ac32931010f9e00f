// Package simulator drives many concurrent simulated users against the
// relational store. Each user repeatedly picks a weighted random action
// from a fixed catalog, executes it in its own transaction and pauses
// for a random think time before the next pick.
package simulator

import (
	"fmt"
	"math/rand"
	"sort"
)

// ActionKind enumerates the workload actions. The set is closed: a
// weight table naming anything else is rejected when the catalog is
// built, before any user starts.
type ActionKind int

const (
	ActionCreateClient ActionKind = iota
	ActionCreateBooking
	ActionCreateOrderFromBooking
	ActionCreateReview
	ActionAddMenuItem
	ActionReadRestaurantMenu
	ActionReadClientOrders
	ActionReadBookingStatus
	ActionReadRestaurantReviews
	ActionReadFindRestaurants
	ActionReadPaymentStatus
	ActionReadSpecificClientInfo
	ActionReadRestaurantDetails
	ActionReadAvailableTables
	ActionUpdateBookingStatus
	ActionUpdateClientInfo
	ActionUpdateOrderStatus
	ActionUpdateMenuItemPrice
	ActionDeleteReview
	ActionCancelBooking
	ActionRemoveMenuItem
	actionKindCount
)

var actionNames = [actionKindCount]string{
	ActionCreateClient:           "create_client",
	ActionCreateBooking:          "create_booking",
	ActionCreateOrderFromBooking: "create_order_from_booking",
	ActionCreateReview:           "create_review",
	ActionAddMenuItem:            "add_menu_item",
	ActionReadRestaurantMenu:     "read_restaurant_menu",
	ActionReadClientOrders:       "read_client_orders",
	ActionReadBookingStatus:      "read_booking_status",
	ActionReadRestaurantReviews:  "read_restaurant_reviews",
	ActionReadFindRestaurants:    "read_find_restaurants",
	ActionReadPaymentStatus:      "read_payment_status",
	ActionReadSpecificClientInfo: "read_specific_client_info",
	ActionReadRestaurantDetails:  "read_restaurant_details",
	ActionReadAvailableTables:    "read_available_tables",
	ActionUpdateBookingStatus:    "update_booking_status",
	ActionUpdateClientInfo:       "update_client_info",
	ActionUpdateOrderStatus:      "update_order_status",
	ActionUpdateMenuItemPrice:    "update_menu_item_price",
	ActionDeleteReview:           "delete_review",
	ActionCancelBooking:          "cancel_booking",
	ActionRemoveMenuItem:         "remove_menu_item",
}

// String returns the action name as used in weight tables and logs.
func (k ActionKind) String() string {
	if k < 0 || k >= actionKindCount {
		return "unknown"
	}

	return actionNames[k]
}

// ParseActionKind resolves a weight table name to its ActionKind.
func ParseActionKind(name string) (ActionKind, error) {
	for kind, known := range actionNames {
		if known == name {
			return ActionKind(kind), nil
		}
	}

	return 0, fmt.Errorf("unknown action %q", name)
}

type catalogEntry struct {
	kind   ActionKind
	weight int
}

// Catalog holds the selectable actions and their weights. An action
// absent from the weight table is never selected.
type Catalog struct {
	entries []catalogEntry
	total   int
}

// NewCatalog validates a weight table and builds the selection catalog.
// Unknown action names and non-positive weights are construction
// errors, not runtime surprises.
func NewCatalog(weights map[string]int) (*Catalog, error) {
	if len(weights) == 0 {
		return nil, fmt.Errorf("weight table is empty, no actions to simulate")
	}

	c := &Catalog{entries: make([]catalogEntry, 0, len(weights))}

	for name, weight := range weights {
		kind, err := ParseActionKind(name)
		if err != nil {
			return nil, fmt.Errorf("invalid weight table: %w", err)
		}

		if weight <= 0 {
			return nil, fmt.Errorf("invalid weight table: action %q has non-positive weight %d", name, weight)
		}

		c.entries = append(c.entries, catalogEntry{kind: kind, weight: weight})
		c.total += weight
	}

	sort.Slice(c.entries, func(i, j int) bool { return c.entries[i].kind < c.entries[j].kind })

	return c, nil
}

// Pick returns a weighted random action kind.
func (c *Catalog) Pick() ActionKind {
	n := rand.Intn(c.total) //nolint:gosec // weak random is fine for workload selection

	for _, e := range c.entries {
		n -= e.weight
		if n < 0 {
			return e.kind
		}
	}

	return c.entries[len(c.entries)-1].kind
}

// Kinds returns the selectable action kinds in enum order.
func (c *Catalog) Kinds() []ActionKind {
	out := make([]ActionKind, len(c.entries))
	for i, e := range c.entries {
		out[i] = e.kind
	}

	return out
}

// DefaultWeights returns the built-in weight table used when no weight
// file is supplied. Reads dominate, mutations are rarer.
func DefaultWeights() map[string]int {
	return map[string]int{
		"read_restaurant_menu":      15,
		"read_client_orders":        10,
		"read_booking_status":       8,
		"read_restaurant_reviews":   12,
		"read_find_restaurants":     18,
		"read_payment_status":       7,
		"read_specific_client_info": 5,
		"read_restaurant_details":   6,
		"read_available_tables":     9,
		"create_booking":            20,
		"create_order_from_booking": 15,
		"create_review":             10,
		"create_client":             3,
		"add_menu_item":             2,
		"update_booking_status":     10,
		"update_client_info":        7,
		"update_order_status":       8,
		"update_menu_item_price":    2,
		"delete_review":             3,
		"cancel_booking":            5,
		"remove_menu_item":          1,
	}
}
