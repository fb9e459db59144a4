package pipeline

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ordertrail/ordertrail/internal/model"
)

func TestValidateExtraction(t *testing.T) {
	res := model.ExtractionResult{
		Success:      true,
		OrderNumber:  " 123-4567890-1234567 ",
		Vendor:       "Amazon",
		CustomerName: "Sara",
		OrderStatus:  "Shipped",
		DeliveryInfo: model.DeliveryInfo{Location: "Dubai Marina", ExpectedDate: "Tomorrow"},
		Items: []model.RawLineItem{
			{ItemName: "USB cable", Quantity: 2, Price: "AED 45.00", Currency: "AED"},
		},
	}

	facts, err := ValidateExtraction(res)
	require.NoError(t, err)

	assert.Equal(t, "123-4567890-1234567", facts.OrderNumber)
	assert.Equal(t, "Amazon", facts.Vendor)
	assert.Equal(t, "Shipped", facts.Status)
	assert.Equal(t, "Dubai Marina", facts.Location)
	assert.Equal(t, "Tomorrow", facts.ExpectedDate)
	require.Len(t, facts.Items, 1)
	assert.Equal(t, 2, facts.Items[0].Quantity)
	require.NotNil(t, facts.Items[0].Price)
	assert.InDelta(t, 45.00, *facts.Items[0].Price, 0.001)
}

func TestValidateExtractionRejections(t *testing.T) {
	tests := []struct {
		name    string
		res     model.ExtractionResult
		wantErr error
	}{
		{
			name:    "unsuccessful extraction",
			res:     model.ExtractionResult{Success: false, Error: "oracle timeout"},
			wantErr: ErrExtractionFailed,
		},
		{
			name:    "missing order number",
			res:     model.ExtractionResult{Success: true, Vendor: "Amazon"},
			wantErr: ErrMissingOrderNumber,
		},
		{
			name:    "whitespace order number",
			res:     model.ExtractionResult{Success: true, OrderNumber: "   "},
			wantErr: ErrMissingOrderNumber,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidateExtraction(tt.res)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr))
		})
	}
}

func TestValidateExtractionDefaults(t *testing.T) {
	res := model.ExtractionResult{
		Success:     true,
		OrderNumber: "NAED12345678",
		Items: []model.RawLineItem{
			{ItemName: "Blender"}, // no quantity, price, or currency
			{ItemName: "Kettle", Quantity: -1},
		},
	}

	facts, err := ValidateExtraction(res)
	require.NoError(t, err)

	assert.Equal(t, model.StatusOrdered, facts.Status)
	// Vendor and customer stay empty; "Unknown" is applied only at creation.
	assert.Empty(t, facts.Vendor)
	assert.Empty(t, facts.CustomerName)

	require.Len(t, facts.Items, 2)
	for _, item := range facts.Items {
		assert.Equal(t, 1, item.Quantity)
		assert.Equal(t, DefaultCurrency, item.Currency)
		assert.Nil(t, item.Price)
	}
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want *float64
	}{
		{name: "currency prefix", raw: "AED 45.00", want: ptr(45.00)},
		{name: "dollar symbol", raw: "$12.99", want: ptr(12.99)},
		{name: "bare number", raw: "199", want: ptr(199.0)},
		{name: "decimal", raw: "45.5", want: ptr(45.5)},
		{name: "empty", raw: "", want: nil},
		{name: "no digits", raw: "free", want: nil},
		{name: "multiple points", raw: "1.2.3", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParsePrice(tt.raw)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.InDelta(t, *tt.want, *got, 0.001)
		})
	}
}

func ptr(f float64) *float64 { return &f }
