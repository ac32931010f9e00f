// Package schema is the single source of truth for the relational schema
// metadata the generator, simulator and migrator share: table and column
// names, text column length limits and the small fixed vocabularies
// (booking statuses, order status codes, payment values).
package schema

// Table names.
const (
	TableClient        = "client"
	TableRestaurant    = "restaurant"
	TableRestTable     = "restaurant_table"
	TableMenuItem      = "menu_item"
	TableBookingStatus = "booking_status"
	TableBooking       = "booking"
	TableOrder         = "orders"
	TableOrderItem     = "order_item"
	TablePayment       = "payment"
	TableReview        = "review"
)

// Column names, grouped by table.
const (
	ColClientID         = "client_id"
	ColClientName       = "name"
	ColClientPhone      = "phone"
	ColClientEmail      = "email"
	ColRegistrationDate = "registration_date"

	ColRestaurantID      = "restaurant_id"
	ColRestaurantName    = "name"
	ColRestaurantAddress = "address"
	ColRestaurantCuisine = "cuisine"

	ColTableID       = "table_id"
	ColTableCapacity = "capacity"

	ColMenuID       = "menu_id"
	ColMenuDishName = "dish_name"
	ColMenuPrice    = "price"

	ColStatusID   = "status_id"
	ColStatusName = "status_name"

	ColBookingID   = "booking_id"
	ColBookingDate = "booking_date"

	ColOrderID      = "order_id"
	ColOrderStatus  = "status_order"
	ColOrderTotal   = "total_price"
	ColPriceAtOrder = "price_at_order"

	ColPaymentMethod = "method"
	ColPaymentStatus = "payment_status"

	ColReviewID      = "review_id"
	ColReviewRating  = "rating"
	ColReviewComment = "comment"
	ColReviewDate    = "review_date"
)

// Text column length limits. The store truncates nothing on its own;
// every value must be trimmed before insert.
const (
	MaxLenStatusName        = 10
	MaxLenClientName        = 50
	MaxLenClientPhone       = 10
	MaxLenClientEmail       = 20
	MaxLenRestaurantName    = 30
	MaxLenRestaurantAddress = 50
	MaxLenRestaurantCuisine = 50
	MaxLenDishName          = 100
	MaxLenPaymentMethod     = 20
	MaxLenPaymentStatus     = 20
	MaxLenReviewComment     = 500
)

// Logical booking status ids. Reconciliation targets these ids but
// adopts whatever id a status name already has in the store.
const (
	StatusPending   = 1
	StatusConfirmed = 2
	StatusCancelled = 3
	StatusCompleted = 4
)

// BookingStatusNames maps the four target statuses to their logical ids.
func BookingStatusNames() map[string]int64 {
	return map[string]int64{
		"Pending":   StatusPending,
		"Confirmed": StatusConfirmed,
		"Cancelled": StatusCancelled,
		"Completed": StatusCompleted,
	}
}

// Order status codes (integer column, no lookup table).
const (
	OrderStatusNew       = 1
	OrderStatusPreparing = 2
	OrderStatusCompleted = 3
)

// OrderStatusCodes returns the valid order status codes.
func OrderStatusCodes() []int {
	return []int{OrderStatusNew, OrderStatusPreparing, OrderStatusCompleted}
}

// PaymentMethods returns the accepted payment method values.
func PaymentMethods() []string {
	return []string{"Cash", "Card", "Online"}
}

// PaymentStatuses returns the accepted payment status values.
func PaymentStatuses() []string {
	return []string{"Paid", "Pending", "Failed"}
}

// Truncate trims s to at most maxLen bytes, returning the empty string
// for empty input. Column limits are byte-based in the store schema.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}

	return s[:maxLen]
}
