// Package registry keeps process-local caches of the primary keys known
// to exist in the relational store, so random generation never produces
// dangling foreign keys. It is an explicit component instance; callers
// share one Registry per run.
package registry

import (
	"math/rand"
	"sync"
)

// Kind identifies an entity type tracked by the Registry.
type Kind int

const (
	Client Kind = iota
	Restaurant
	Table
	MenuItem
	Booking
	Order
	Review
	kindCount
)

// String returns the kind name for log messages.
func (k Kind) String() string {
	switch k {
	case Client:
		return "client"
	case Restaurant:
		return "restaurant"
	case Table:
		return "table"
	case MenuItem:
		return "menu_item"
	case Booking:
		return "booking"
	case Order:
		return "order"
	case Review:
		return "review"
	default:
		return "unknown"
	}
}

// Registry is safe for concurrent use. All state updates are protected
// by a mutex because simulated users run on separate goroutines.
type Registry struct {
	mu sync.RWMutex

	ids    [kindCount][]int64
	member [kindCount]map[int64]int // id -> index into ids slice

	// Derived indexes.
	menuPrices      map[int64]float64 // menu item id -> last known price
	restaurantMenus map[int64][]int64 // restaurant id -> its menu item ids

	// Booking status name -> id, reconciled at seeding time.
	statusIDs map[string]int64

	// Next free primary key per kind, for tables the generator keys
	// explicitly. Kept in sync with the store maxima at load time.
	nextID [kindCount]int64
}

// New creates an empty Registry.
func New() *Registry {
	r := &Registry{
		menuPrices:      make(map[int64]float64),
		restaurantMenus: make(map[int64][]int64),
		statusIDs:       make(map[string]int64),
	}

	for k := range r.member {
		r.member[k] = make(map[int64]int)
	}
	for k := range r.nextID {
		r.nextID[k] = 1
	}

	return r
}

// Register records an id as existing in the store. Registering an id
// twice is a no-op. The id is visible to Pick immediately.
func (r *Registry) Register(kind Kind, id int64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.register(kind, id)
}

func (r *Registry) register(kind Kind, id int64) {
	if _, ok := r.member[kind][id]; ok {
		return
	}

	r.member[kind][id] = len(r.ids[kind])
	r.ids[kind] = append(r.ids[kind], id)

	if id >= r.nextID[kind] {
		r.nextID[kind] = id + 1
	}
}

// RegisterMenuItem records a menu item id together with its derived
// payload (owning restaurant and price).
func (r *Registry) RegisterMenuItem(id, restaurantID int64, price float64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.register(MenuItem, id)
	r.menuPrices[id] = price
	r.restaurantMenus[restaurantID] = append(r.restaurantMenus[restaurantID], id)
}

// Remove forgets an id. Returns false if the id was not known.
// Callers must only remove ids whose delete statement actually
// affected a row, so the Registry never drifts ahead of the store.
func (r *Registry) Remove(kind Kind, id int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx, ok := r.member[kind][id]
	if !ok {
		return false
	}

	last := len(r.ids[kind]) - 1
	moved := r.ids[kind][last]
	r.ids[kind][idx] = moved
	r.member[kind][moved] = idx
	r.ids[kind] = r.ids[kind][:last]
	delete(r.member[kind], id)

	if kind == MenuItem {
		delete(r.menuPrices, id)
	}

	return true
}

// Pick returns a uniformly random known id. ok is false when no id of
// that kind is known; callers treat that as "nothing to do".
func (r *Registry) Pick(kind Kind) (id int64, ok bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := len(r.ids[kind])
	if n == 0 {
		return 0, false
	}

	return r.ids[kind][rand.Intn(n)], true //nolint:gosec // weak random is fine for workload selection
}

// Count returns the number of known ids of a kind.
func (r *Registry) Count(kind Kind) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.ids[kind])
}

// KnownIDs returns a copy of the known ids of a kind.
func (r *Registry) KnownIDs(kind Kind) []int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]int64, len(r.ids[kind]))
	copy(out, r.ids[kind])

	return out
}

// Contains reports whether an id is known.
func (r *Registry) Contains(kind Kind, id int64) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.member[kind][id]
	return ok
}

// NextID allocates the next free primary key for kinds the generator
// keys explicitly, advancing the counter.
func (r *Registry) NextID(kind Kind) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.nextID[kind]
	r.nextID[kind]++

	return id
}

// MenuPrice returns the cached price of a menu item.
func (r *Registry) MenuPrice(id int64) (float64, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.menuPrices[id]
	return p, ok
}

// MenuItemsOf returns a copy of the menu item ids of one restaurant.
func (r *Registry) MenuItemsOf(restaurantID int64) []int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := r.restaurantMenus[restaurantID]
	out := make([]int64, len(items))
	copy(out, items)

	return out
}

// SetStatusID records the store id a booking status name resolved to.
func (r *Registry) SetStatusID(name string, id int64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.statusIDs[name] = id
}

// StatusID returns the store id of a booking status name.
func (r *Registry) StatusID(name string) (int64, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.statusIDs[name]
	return id, ok
}

// StatusIDs returns the ids of all reconciled booking statuses.
func (r *Registry) StatusIDs() []int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]int64, 0, len(r.statusIDs))
	for _, id := range r.statusIDs {
		out = append(out, id)
	}

	return out
}

// PickStatusID returns a uniformly random reconciled status id.
func (r *Registry) PickStatusID() (int64, bool) {
	ids := r.StatusIDs()
	if len(ids) == 0 {
		return 0, false
	}

	return ids[rand.Intn(len(ids))], true //nolint:gosec // weak random is fine for workload selection
}
