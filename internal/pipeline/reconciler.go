package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ordertrail/ordertrail/internal/common"
	"github.com/ordertrail/ordertrail/internal/model"
)

// Store is the persistence surface the reconciler needs. The storage layer
// enforces the order-number uniqueness constraint; CreateOrder reports a
// violation as common.ErrDuplicateEntry.
type Store interface {
	GetOrderByNumber(ctx context.Context, orderNumber string) (*model.Order, error)
	CreateOrder(ctx context.Context, order *model.Order) error
	UpdateOrder(ctx context.Context, order *model.Order, replaceItems bool) error
}

// Reconciliation actions.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
)

// Reconciler merges validated facts into persisted order state, keyed by
// order number.
type Reconciler struct {
	store  Store
	logger *slog.Logger
	now    func() time.Time
}

// NewReconciler creates a reconciler over the given store.
func NewReconciler(store Store, logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{store: store, logger: logger, now: time.Now}
}

// Reconcile creates or updates the order identified by facts.OrderNumber and
// returns the action taken plus the resulting persisted order.
//
// Lookup-then-write is not atomic, so two concurrent deliveries of the same
// new order number can both reach the create path. The storage uniqueness
// constraint catches the loser; it retries as an update.
func (r *Reconciler) Reconcile(ctx context.Context, facts Facts) (string, *model.Order, error) {
	existing, err := r.store.GetOrderByNumber(ctx, facts.OrderNumber)
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return "", nil, fmt.Errorf("failed to look up order %s: %w", facts.OrderNumber, err)
	}

	if existing != nil {
		updated, err := r.update(ctx, existing, facts)
		if err != nil {
			return "", nil, err
		}
		return ActionUpdated, updated, nil
	}

	created, err := r.create(ctx, facts)
	if err == nil {
		return ActionCreated, created, nil
	}
	if !errors.Is(err, common.ErrDuplicateEntry) {
		return "", nil, err
	}

	// Lost the create race: another delivery inserted this order number
	// first. Re-read and merge into it instead.
	r.logger.Info("create lost uniqueness race, retrying as update",
		"order_number", facts.OrderNumber)

	existing, err = r.store.GetOrderByNumber(ctx, facts.OrderNumber)
	if err != nil {
		return "", nil, fmt.Errorf("failed to re-read order after duplicate: %w", err)
	}
	updated, err := r.update(ctx, existing, facts)
	if err != nil {
		return "", nil, err
	}
	return ActionUpdated, updated, nil
}

// create builds a new order from the facts. Absent vendor/customer become
// "Unknown" here and only here; earlier stages keep them empty so updates
// can tell silence from substance.
func (r *Reconciler) create(ctx context.Context, facts Facts) (*model.Order, error) {
	now := r.now().UTC()
	order := &model.Order{
		ID:           uuid.NewString(),
		OrderNumber:  facts.OrderNumber,
		Vendor:       defaultIfEmpty(facts.Vendor, "Unknown"),
		CustomerName: defaultIfEmpty(facts.CustomerName, "Unknown"),
		Status:       defaultIfEmpty(facts.Status, model.StatusOrdered),
		Location:     facts.Location,
		ExpectedDate: facts.ExpectedDate,
		Notes:        facts.Notes,
		CreatedAt:    now,
		UpdatedAt:    now,
		Items:        buildItems(facts.Items),
	}

	if err := r.store.CreateOrder(ctx, order); err != nil {
		return nil, err
	}

	r.logger.Info("order created",
		"order_number", order.OrderNumber,
		"vendor", order.Vendor,
		"items", len(order.Items))

	return order, nil
}

// update merges non-empty facts into the existing order. An empty new value
// never blanks an existing one: the oracle's silence means "don't know", not
// "known to be empty". The same rule applies to items: a non-empty new list
// replaces all owned items in one transaction, an empty list leaves them
// untouched.
func (r *Reconciler) update(ctx context.Context, existing *model.Order, facts Facts) (*model.Order, error) {
	merged := *existing
	merged.Vendor = mergeField(facts.Vendor, existing.Vendor)
	merged.CustomerName = mergeField(facts.CustomerName, existing.CustomerName)
	merged.Status = mergeField(facts.Status, existing.Status)
	merged.Location = mergeField(facts.Location, existing.Location)
	merged.ExpectedDate = mergeField(facts.ExpectedDate, existing.ExpectedDate)
	merged.Notes = mergeField(facts.Notes, existing.Notes)
	merged.UpdatedAt = r.now().UTC()

	replaceItems := len(facts.Items) > 0
	if replaceItems {
		merged.Items = buildItems(facts.Items)
		for i := range merged.Items {
			merged.Items[i].OrderID = merged.ID
		}
	}

	if err := r.store.UpdateOrder(ctx, &merged, replaceItems); err != nil {
		return nil, fmt.Errorf("failed to update order %s: %w", merged.OrderNumber, err)
	}

	r.logger.Info("order updated",
		"order_number", merged.OrderNumber,
		"status", merged.Status,
		"items_replaced", replaceItems)

	return &merged, nil
}

func buildItems(items []LineItem) []model.OrderItem {
	built := make([]model.OrderItem, 0, len(items))
	for _, item := range items {
		built = append(built, model.OrderItem{
			ID:       uuid.NewString(),
			ItemName: item.ItemName,
			Quantity: item.Quantity,
			Price:    item.Price,
			Currency: item.Currency,
		})
	}
	return built
}

func mergeField(next, current string) string {
	if next != "" {
		return next
	}
	return current
}

func defaultIfEmpty(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
