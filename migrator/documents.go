package migrator

import (
	"database/sql"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Relational rows as read through sqlx.

type statusRow struct {
	ID   int64  `db:"status_id"`
	Name string `db:"status_name"`
}

type clientRow struct {
	ID         int64     `db:"client_id"`
	Name       string    `db:"name"`
	Phone      string    `db:"phone"`
	Email      string    `db:"email"`
	Registered time.Time `db:"registration_date"`
}

type restaurantRow struct {
	ID      int64  `db:"restaurant_id"`
	Name    string `db:"name"`
	Address string `db:"address"`
	Cuisine string `db:"cuisine"`
}

type tableRow struct {
	ID           int64 `db:"table_id"`
	RestaurantID int64 `db:"restaurant_id"`
	Capacity     int   `db:"capacity"`
}

type menuItemRow struct {
	ID           int64   `db:"menu_id"`
	RestaurantID int64   `db:"restaurant_id"`
	DishName     string  `db:"dish_name"`
	Price        float64 `db:"price"`
}

type bookingRow struct {
	ID       int64     `db:"booking_id"`
	ClientID int64     `db:"client_id"`
	StatusID int64     `db:"status_id"`
	TableID  int64     `db:"table_id"`
	Date     time.Time `db:"booking_date"`
}

type orderRow struct {
	ID         int64 `db:"order_id"`
	BookingID  int64 `db:"booking_id"`
	Status     int   `db:"status_order"`
	TotalPrice int64 `db:"total_price"`
}

type orderItemRow struct {
	OrderID      int64          `db:"order_id"`
	MenuItemID   int64          `db:"menu_id"`
	PriceAtOrder int64          `db:"price_at_order"`
	DishName     sql.NullString `db:"dish_name"`
}

type paymentRow struct {
	OrderID int64  `db:"order_id"`
	Method  string `db:"method"`
	Status  string `db:"payment_status"`
}

type reviewRow struct {
	ClientID     int64     `db:"client_id"`
	RestaurantID int64     `db:"restaurant_id"`
	Rating       int       `db:"rating"`
	Comment      string    `db:"comment"`
	Date         time.Time `db:"review_date"`
}

// Document shapes written to the document store.

type statusDoc struct {
	StatusID   int64  `bson:"statusId"`
	StatusName string `bson:"statusName"`
}

type clientDoc struct {
	ClientID         int64     `bson:"clientId"`
	Name             string    `bson:"name"`
	Phone            string    `bson:"phone"`
	Email            string    `bson:"email"`
	RegistrationDate time.Time `bson:"registrationDate"`
}

type restaurantDoc struct {
	RestaurantID int64  `bson:"restaurantId"`
	Name         string `bson:"name"`
	Address      string `bson:"address"`
	Cuisine      string `bson:"cuisine"`
}

type tableDoc struct {
	TableID      int64 `bson:"tableId"`
	RestaurantID int64 `bson:"restaurantId"`
	Capacity     int   `bson:"capacity"`
}

type menuItemDoc struct {
	MenuItemID   int64   `bson:"menuItemId"`
	RestaurantID int64   `bson:"restaurantId"`
	DishName     string  `bson:"dishName"`
	Price        float64 `bson:"price"`
}

type bookingDoc struct {
	BookingID   int64     `bson:"bookingId"`
	ClientID    int64     `bson:"clientId"`
	StatusID    int64     `bson:"statusId"`
	TableID     int64     `bson:"tableId"`
	BookingDate time.Time `bson:"bookingDate"`
}

type orderItemDoc struct {
	MenuItemID   int64   `bson:"menuItemId"`
	PriceAtOrder float64 `bson:"priceAtOrder"`
	ItemName     string  `bson:"itemName"`
}

// orderDoc is the denormalized order: line items are embedded with the
// dish name resolved, and the parent booking's client and date are
// copied in so common lookups need no joins.
type orderDoc struct {
	OrderID     int64          `bson:"orderId"`
	BookingID   int64          `bson:"bookingId"`
	StatusOrder int            `bson:"statusOrder"`
	TotalPrice  float64        `bson:"totalPrice"`
	ClientID    *int64         `bson:"clientId"`
	OrderDate   *time.Time     `bson:"orderDate"`
	Items       []orderItemDoc `bson:"items"`
}

type paymentDoc struct {
	ID      primitive.ObjectID `bson:"_id"`
	OrderID int64              `bson:"orderId"`
	Method  string             `bson:"method"`
	Status  string             `bson:"status"`
}

type reviewDoc struct {
	ID           primitive.ObjectID `bson:"_id"`
	ClientID     int64              `bson:"clientId"`
	RestaurantID int64              `bson:"restaurantId"`
	Rating       int                `bson:"rating"`
	Comment      string             `bson:"comment"`
	ReviewDate   time.Time          `bson:"reviewDate"`
}

const unknownDishName = "Unknown Dish"

// buildOrderDocs denormalizes orders: line items grouped by order id
// and booking context resolved through the bookings slice. Orders
// whose booking is missing keep nil client and date.
func buildOrderDocs(orders []orderRow, items []orderItemRow, bookings []bookingRow) []orderDoc {
	itemsByOrder := make(map[int64][]orderItemDoc, len(orders))
	for _, item := range items {
		name := unknownDishName
		if item.DishName.Valid {
			name = item.DishName.String
		}

		itemsByOrder[item.OrderID] = append(itemsByOrder[item.OrderID], orderItemDoc{
			MenuItemID:   item.MenuItemID,
			PriceAtOrder: float64(item.PriceAtOrder),
			ItemName:     name,
		})
	}

	bookingByID := make(map[int64]bookingRow, len(bookings))
	for _, b := range bookings {
		bookingByID[b.ID] = b
	}

	docs := make([]orderDoc, 0, len(orders))
	for _, o := range orders {
		doc := orderDoc{
			OrderID:     o.ID,
			BookingID:   o.BookingID,
			StatusOrder: o.Status,
			TotalPrice:  float64(o.TotalPrice),
			Items:       itemsByOrder[o.ID],
		}
		if doc.Items == nil {
			doc.Items = []orderItemDoc{}
		}

		if b, ok := bookingByID[o.BookingID]; ok {
			clientID := b.ClientID
			orderDate := b.Date
			doc.ClientID = &clientID
			doc.OrderDate = &orderDate
		}

		docs = append(docs, doc)
	}

	return docs
}
