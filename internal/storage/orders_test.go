package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ordertrail/ordertrail/internal/common"
	"github.com/ordertrail/ordertrail/internal/model"
)

func createTestStore(t *testing.T) *SQLiteStorage {
	t.Helper()

	store, err := NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	require.NoError(t, store.Migrate(context.Background()))

	t.Cleanup(func() { _ = store.Close() })
	return store
}

func testOrder(orderNumber string) *model.Order {
	now := time.Now().UTC()
	price := 45.0
	return &model.Order{
		ID:           uuid.NewString(),
		OrderNumber:  orderNumber,
		Vendor:       "Amazon",
		CustomerName: "Sara",
		Status:       model.StatusOrdered,
		Location:     "Dubai",
		Notes:        "left at reception",
		CreatedAt:    now,
		UpdatedAt:    now,
		Items: []model.OrderItem{
			{ID: uuid.NewString(), ItemName: "USB cable", Quantity: 2, Price: &price, Currency: "AED"},
		},
	}
}

func TestCreateAndGetOrder(t *testing.T) {
	store := createTestStore(t)
	ctx := context.Background()

	order := testOrder("123-4567890-1234567")
	require.NoError(t, store.CreateOrder(ctx, order))

	got, err := store.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.OrderNumber, got.OrderNumber)
	assert.Equal(t, order.Vendor, got.Vendor)
	assert.Equal(t, order.Notes, got.Notes)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "USB cable", got.Items[0].ItemName)
	assert.Equal(t, order.ID, got.Items[0].OrderID)
	require.NotNil(t, got.Items[0].Price)
	assert.InDelta(t, 45.0, *got.Items[0].Price, 0.001)

	byNumber, err := store.GetOrderByNumber(ctx, order.OrderNumber)
	require.NoError(t, err)
	assert.Equal(t, order.ID, byNumber.ID)
}

func TestGetOrderNotFound(t *testing.T) {
	store := createTestStore(t)
	ctx := context.Background()

	_, err := store.GetOrder(ctx, "missing-id")
	assert.True(t, errors.Is(err, common.ErrNotFound))

	_, err = store.GetOrderByNumber(ctx, "missing-number")
	assert.True(t, errors.Is(err, common.ErrNotFound))
}

func TestCreateOrderDuplicateNumber(t *testing.T) {
	store := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.CreateOrder(ctx, testOrder("NAED12345678")))

	err := store.CreateOrder(ctx, testOrder("NAED12345678"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrDuplicateEntry))
}

func TestCreateOrderValidation(t *testing.T) {
	store := createTestStore(t)
	ctx := context.Background()

	tests := []struct {
		mutate func(*model.Order)
		name   string
	}{
		{name: "missing id", mutate: func(o *model.Order) { o.ID = "" }},
		{name: "missing order number", mutate: func(o *model.Order) { o.OrderNumber = "" }},
		{name: "item missing id", mutate: func(o *model.Order) { o.Items[0].ID = "" }},
		{name: "item zero quantity", mutate: func(o *model.Order) { o.Items[0].Quantity = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order := testOrder("ORD-2025-001")
			tt.mutate(order)
			err := store.CreateOrder(ctx, order)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidOrder))
		})
	}
}

func TestUpdateOrder(t *testing.T) {
	store := createTestStore(t)
	ctx := context.Background()

	order := testOrder("NAED12345678")
	require.NoError(t, store.CreateOrder(ctx, order))

	order.Status = model.StatusDelivered
	order.Location = "Abu Dhabi"
	order.UpdatedAt = time.Now().UTC()
	require.NoError(t, store.UpdateOrder(ctx, order, false))

	got, err := store.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusDelivered, got.Status)
	assert.Equal(t, "Abu Dhabi", got.Location)
	// replaceItems false leaves the item list alone.
	require.Len(t, got.Items, 1)
}

func TestUpdateOrderReplacesItems(t *testing.T) {
	store := createTestStore(t)
	ctx := context.Background()

	order := testOrder("NM-123456")
	require.NoError(t, store.CreateOrder(ctx, order))

	order.Items = []model.OrderItem{
		{ID: uuid.NewString(), OrderID: order.ID, ItemName: "Shoes", Quantity: 1, Currency: "AED"},
		{ID: uuid.NewString(), OrderID: order.ID, ItemName: "Socks", Quantity: 3, Currency: "AED"},
	}
	require.NoError(t, store.UpdateOrder(ctx, order, true))

	got, err := store.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 2)
	assert.Equal(t, "Shoes", got.Items[0].ItemName)
	assert.Equal(t, "Socks", got.Items[1].ItemName)
	assert.Nil(t, got.Items[0].Price)
}

func TestUpdateOrderNotFound(t *testing.T) {
	store := createTestStore(t)

	order := testOrder("NAED12345678")
	err := store.UpdateOrder(context.Background(), order, false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrNotFound))
}

func TestDeleteOrderCascades(t *testing.T) {
	store := createTestStore(t)
	ctx := context.Background()

	order := testOrder("NAED12345678")
	require.NoError(t, store.CreateOrder(ctx, order))
	require.NoError(t, store.DeleteOrder(ctx, order.ID))

	_, err := store.GetOrder(ctx, order.ID)
	assert.True(t, errors.Is(err, common.ErrNotFound))

	var count int
	require.NoError(t, store.db.QueryRow(`SELECT COUNT(*) FROM order_items`).Scan(&count))
	assert.Equal(t, 0, count)

	assert.True(t, errors.Is(store.DeleteOrder(ctx, order.ID), common.ErrNotFound))
}

func TestListOrders(t *testing.T) {
	store := createTestStore(t)
	ctx := context.Background()

	seed := []struct {
		number   string
		vendor   string
		customer string
		status   string
	}{
		{"123-4567890-1234567", "Amazon", "Sara", model.StatusShipped},
		{"NAED12345678", "Noon", "Omar", model.StatusOrdered},
		{"NM-123456", "Namshi", "Sara", model.StatusDelivered},
	}
	for i, s := range seed {
		order := testOrder(s.number)
		order.Vendor = s.vendor
		order.CustomerName = s.customer
		order.Status = s.status
		// Spread creation times so ordering is deterministic.
		order.CreatedAt = time.Now().UTC().Add(time.Duration(i) * time.Second)
		order.UpdatedAt = order.CreatedAt
		require.NoError(t, store.CreateOrder(ctx, order))
	}

	t.Run("no filter returns newest first", func(t *testing.T) {
		orders, total, err := store.ListOrders(ctx, OrderFilter{})
		require.NoError(t, err)
		assert.Equal(t, 3, total)
		require.Len(t, orders, 3)
		assert.Equal(t, "NM-123456", orders[0].OrderNumber)
		require.Len(t, orders[0].Items, 1)
	})

	t.Run("status filter", func(t *testing.T) {
		orders, total, err := store.ListOrders(ctx, OrderFilter{Status: model.StatusShipped})
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		require.Len(t, orders, 1)
		assert.Equal(t, "123-4567890-1234567", orders[0].OrderNumber)
	})

	t.Run("vendor filter", func(t *testing.T) {
		orders, total, err := store.ListOrders(ctx, OrderFilter{Vendor: "Noon"})
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		require.Len(t, orders, 1)
	})

	t.Run("search matches order number and customer", func(t *testing.T) {
		_, total, err := store.ListOrders(ctx, OrderFilter{Search: "NAED"})
		require.NoError(t, err)
		assert.Equal(t, 1, total)

		_, total, err = store.ListOrders(ctx, OrderFilter{Search: "Sara"})
		require.NoError(t, err)
		assert.Equal(t, 2, total)
	})

	t.Run("pagination", func(t *testing.T) {
		orders, total, err := store.ListOrders(ctx, OrderFilter{Limit: 2, Offset: 2})
		require.NoError(t, err)
		assert.Equal(t, 3, total)
		require.Len(t, orders, 1)
	})
}
