package migrator

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildOrderDocsEmbedsItemsAndBookingContext(t *testing.T) {
	bookingDate := time.Date(2024, 5, 12, 19, 0, 0, 0, time.UTC)

	orders := []orderRow{
		{ID: 1, BookingID: 10, Status: 2, TotalPrice: 18},
	}
	items := []orderItemRow{
		{OrderID: 1, MenuItemID: 5, PriceAtOrder: 9, DishName: sql.NullString{String: "Spicy Noodles", Valid: true}},
		{OrderID: 1, MenuItemID: 6, PriceAtOrder: 9, DishName: sql.NullString{String: "Green Curry", Valid: true}},
	}
	bookings := []bookingRow{
		{ID: 10, ClientID: 3, StatusID: 2, TableID: 7, Date: bookingDate},
	}

	docs := buildOrderDocs(orders, items, bookings)
	require.Len(t, docs, 1)

	doc := docs[0]
	assert.Equal(t, int64(1), doc.OrderID)
	assert.Equal(t, int64(10), doc.BookingID)
	assert.Equal(t, 2, doc.StatusOrder)
	assert.InDelta(t, 18.0, doc.TotalPrice, 0.001)

	require.NotNil(t, doc.ClientID)
	assert.Equal(t, int64(3), *doc.ClientID)
	require.NotNil(t, doc.OrderDate)
	assert.Equal(t, bookingDate, *doc.OrderDate)

	require.Len(t, doc.Items, 2)
	assert.Equal(t, "Spicy Noodles", doc.Items[0].ItemName)
	assert.Equal(t, int64(5), doc.Items[0].MenuItemID)
	assert.InDelta(t, 9.0, doc.Items[0].PriceAtOrder, 0.001)
}

func TestBuildOrderDocsFallsBackForDeletedMenuItems(t *testing.T) {
	orders := []orderRow{{ID: 1, BookingID: 10}}
	items := []orderItemRow{
		{OrderID: 1, MenuItemID: 5, PriceAtOrder: 9, DishName: sql.NullString{}},
	}

	docs := buildOrderDocs(orders, items, nil)
	require.Len(t, docs, 1)
	require.Len(t, docs[0].Items, 1)
	assert.Equal(t, "Unknown Dish", docs[0].Items[0].ItemName)
}

func TestBuildOrderDocsWithMissingBookingKeepsNilContext(t *testing.T) {
	orders := []orderRow{{ID: 1, BookingID: 99}}

	docs := buildOrderDocs(orders, nil, nil)
	require.Len(t, docs, 1)

	assert.Nil(t, docs[0].ClientID)
	assert.Nil(t, docs[0].OrderDate)
	require.NotNil(t, docs[0].Items)
	assert.Empty(t, docs[0].Items)
}
