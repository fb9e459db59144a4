// Package pipeline wires the email-to-order flow: normalize, classify,
// extract, validate, reconcile. Each webhook request runs the flow once,
// front to back, with no branching back.
package pipeline

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ordertrail/ordertrail/internal/model"
)

// Validation rejections.
var (
	ErrExtractionFailed   = errors.New("extraction unsuccessful")
	ErrMissingOrderNumber = errors.New("missing order number")
)

// DefaultCurrency is the home-market currency assumed when the oracle omits
// one.
const DefaultCurrency = "AED"

// LineItem is a validated, normalized line item. Price is nil when the raw
// price could not be parsed as a number after stripping currency tokens.
type LineItem struct {
	ItemName string
	Quantity int
	Price    *float64
	Currency string
}

// Facts is the validated output of an extraction. Vendor and CustomerName
// stay empty when the oracle was silent; the reconciler substitutes
// "Unknown" only at first-time order creation, so that merge logic can still
// distinguish "unknown" from an explicit value.
type Facts struct {
	OrderNumber  string
	Vendor       string
	CustomerName string
	Status       string
	Location     string
	ExpectedDate string
	Notes        string
	Items        []LineItem
}

// ValidateExtraction sanitizes untrusted oracle output into Facts. It
// rejects only on the mandatory field: an unsuccessful extraction or a
// missing order number. Everything else is defaulted or normalized.
func ValidateExtraction(res model.ExtractionResult) (Facts, error) {
	if !res.Success {
		return Facts{}, fmt.Errorf("%w: %s", ErrExtractionFailed, res.Error)
	}
	if strings.TrimSpace(res.OrderNumber) == "" {
		return Facts{}, ErrMissingOrderNumber
	}

	status := res.OrderStatus
	if status == "" {
		status = model.StatusOrdered
	}

	facts := Facts{
		OrderNumber:  strings.TrimSpace(res.OrderNumber),
		Vendor:       strings.TrimSpace(res.Vendor),
		CustomerName: strings.TrimSpace(res.CustomerName),
		Status:       status,
		Location:     strings.TrimSpace(res.DeliveryInfo.Location),
		ExpectedDate: strings.TrimSpace(res.DeliveryInfo.ExpectedDate),
		Notes:        strings.TrimSpace(res.Notes),
	}

	for _, raw := range res.Items {
		facts.Items = append(facts.Items, normalizeItem(raw))
	}

	return facts, nil
}

// normalizeItem applies the per-item defaults: quantity at least 1, currency
// defaulted, price parsed leniently. An item with an unparsable price is
// kept; its name and quantity are still informative.
func normalizeItem(raw model.RawLineItem) LineItem {
	quantity := int(raw.Quantity)
	if quantity < 1 {
		quantity = 1
	}

	currency := strings.TrimSpace(raw.Currency)
	if currency == "" {
		currency = DefaultCurrency
	}

	return LineItem{
		ItemName: strings.TrimSpace(raw.ItemName),
		Quantity: quantity,
		Price:    ParsePrice(string(raw.Price)),
		Currency: currency,
	}
}

// ParsePrice coerces a raw price string that may embed a currency symbol
// ("AED 45.00", "$12") into a numeric amount. It strips everything but
// digits, decimal point, and sign, then parses. Unparsable input yields nil
// rather than an error.
func ParsePrice(raw string) *float64 {
	stripped := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			return r
		}
		return -1
	}, raw)

	if stripped == "" {
		return nil
	}

	value, err := strconv.ParseFloat(stripped, 64)
	if err != nil {
		return nil
	}
	return &value
}
