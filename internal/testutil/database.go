// Package testutil provides shared helpers for package tests.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ordertrail/ordertrail/internal/model"
	"github.com/ordertrail/ordertrail/internal/storage"
)

// SetupTestStore creates a migrated in-memory database and registers its
// cleanup with the test.
func SetupTestStore(t *testing.T) *storage.SQLiteStorage {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := store.Migrate(context.Background()); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() {
		_ = store.Close()
	})

	return store
}

// NewOrder builds a minimal valid order for seeding tests. Fields beyond the
// order number get stable defaults; tests override what they care about.
func NewOrder(orderNumber string) *model.Order {
	now := time.Now().UTC()
	return &model.Order{
		ID:           uuid.NewString(),
		OrderNumber:  orderNumber,
		Vendor:       "Amazon",
		CustomerName: "Test Customer",
		Status:       model.StatusOrdered,
		CreatedAt:    now,
		UpdatedAt:    now,
		Items:        []model.OrderItem{},
	}
}

// NewItem builds one order item for the given order.
func NewItem(orderID, name string, price float64) model.OrderItem {
	return model.OrderItem{
		ID:       uuid.NewString(),
		OrderID:  orderID,
		ItemName: name,
		Quantity: 1,
		Price:    &price,
		Currency: "AED",
	}
}
