package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ordertrail/ordertrail/internal/model"
)

// Validation errors.
var (
	ErrNilContext   = errors.New("context cannot be nil")
	ErrEmptyString  = errors.New("string parameter cannot be empty")
	ErrNilParameter = errors.New("parameter cannot be nil")
	ErrInvalidOrder = errors.New("invalid order")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateOrder validates an order before it is written.
func validateOrder(order *model.Order) error {
	if order == nil {
		return fmt.Errorf("%w: order", ErrNilParameter)
	}
	if strings.TrimSpace(order.ID) == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidOrder)
	}
	if strings.TrimSpace(order.OrderNumber) == "" {
		return fmt.Errorf("%w: missing order number", ErrInvalidOrder)
	}
	for i, item := range order.Items {
		if strings.TrimSpace(item.ID) == "" {
			return fmt.Errorf("%w: item %d missing id", ErrInvalidOrder, i)
		}
		if item.Quantity < 1 {
			return fmt.Errorf("%w: item %d has non-positive quantity", ErrInvalidOrder, i)
		}
	}
	return nil
}
