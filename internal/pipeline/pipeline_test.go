package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ordertrail/ordertrail/internal/mail"
	"github.com/ordertrail/ordertrail/internal/model"
	"github.com/ordertrail/ordertrail/internal/testutil"
)

func orderEmail() model.NormalizedEmail {
	return model.NormalizedEmail{
		Subject: "Your Amazon order has shipped",
		Content: "Order 123-4567890-1234567 is on its way",
	}
}

func TestProcessRejectsEmptyEmail(t *testing.T) {
	store := testutil.SetupTestStore(t)
	oracle := NewMockOracle(model.ClassificationResult{}, model.ExtractionResult{})
	p := New(oracle, store, nil)

	_, err := p.Process(context.Background(), model.NormalizedEmail{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrEmptyEmail))
	// Empty payloads never reach the oracle.
	assert.Equal(t, 0, oracle.ClassifyCalls())
}

func TestProcessGatesNonOrderEmail(t *testing.T) {
	store := testutil.SetupTestStore(t)
	oracle := NewMockOracle(
		model.ClassificationResult{IsOrderEmail: false, Confidence: model.ConfidenceHigh, Reason: "newsletter"},
		model.ExtractionResult{},
	)
	p := New(oracle, store, nil)

	result, err := p.Process(context.Background(), model.NormalizedEmail{
		Subject: "Weekly deals",
		Content: "Check out our sale",
	})
	require.NoError(t, err)

	assert.Equal(t, ActionSkipped, result.Action)
	assert.Nil(t, result.Order)
	require.NotNil(t, result.Classification)
	assert.Equal(t, "newsletter", result.Classification.Reason)

	// The gate short-circuits: exactly one oracle call, never extraction.
	assert.Equal(t, 1, oracle.ClassifyCalls())
	assert.Equal(t, 0, oracle.ExtractCalls())
}

func TestProcessCreatesOrder(t *testing.T) {
	store := testutil.SetupTestStore(t)
	oracle := NewMockOracle(
		model.ClassificationResult{IsOrderEmail: true, Confidence: model.ConfidenceHigh},
		model.ExtractionResult{
			Success:     true,
			OrderNumber: "123-4567890-1234567",
			Vendor:      "Amazon",
			OrderStatus: model.StatusShipped,
			Items: []model.RawLineItem{
				{ItemName: "USB cable", Quantity: 2, Price: "AED 45.00"},
			},
		},
	)
	p := New(oracle, store, nil)

	result, err := p.Process(context.Background(), orderEmail())
	require.NoError(t, err)

	assert.Equal(t, ActionCreated, result.Action)
	assert.Equal(t, "Order created successfully", result.Message)
	require.NotNil(t, result.Order)
	assert.Equal(t, "123-4567890-1234567", result.Order.OrderNumber)
	require.Len(t, result.Order.Items, 1)
	require.NotNil(t, result.Order.Items[0].Price)
	assert.InDelta(t, 45.0, *result.Order.Items[0].Price, 0.001)

	// At most two oracle calls per request.
	assert.Equal(t, 1, oracle.ClassifyCalls())
	assert.Equal(t, 1, oracle.ExtractCalls())
}

func TestProcessRedeliveryUpdates(t *testing.T) {
	store := testutil.SetupTestStore(t)
	oracle := NewMockOracle(
		model.ClassificationResult{IsOrderEmail: true, Confidence: model.ConfidenceHigh},
		model.ExtractionResult{Success: true, OrderNumber: "NAED12345678", Vendor: "Noon"},
	)
	p := New(oracle, store, nil)
	ctx := context.Background()

	first, err := p.Process(ctx, orderEmail())
	require.NoError(t, err)
	second, err := p.Process(ctx, orderEmail())
	require.NoError(t, err)

	assert.Equal(t, ActionCreated, first.Action)
	assert.Equal(t, ActionUpdated, second.Action)
	assert.Equal(t, "Order updated successfully", second.Message)
	assert.Equal(t, first.Order.ID, second.Order.ID)
}

func TestProcessFailedExtraction(t *testing.T) {
	store := testutil.SetupTestStore(t)
	oracle := NewMockOracle(
		model.ClassificationResult{IsOrderEmail: true, Confidence: model.ConfidenceMedium},
		model.ExtractionResult{Success: false, Error: "oracle timeout"},
	)
	p := New(oracle, store, nil)

	result, err := p.Process(context.Background(), orderEmail())
	require.NoError(t, err)

	assert.Equal(t, ActionFailed, result.Action)
	assert.Equal(t, "Failed to extract order data", result.Message)
	assert.Nil(t, result.Order)
	// Both payloads ride along for diagnosis.
	require.NotNil(t, result.Classification)
	require.NotNil(t, result.Extraction)
	assert.Equal(t, "oracle timeout", result.Extraction.Error)
}

func TestProcessMissingOrderNumberFails(t *testing.T) {
	store := testutil.SetupTestStore(t)
	oracle := NewMockOracle(
		model.ClassificationResult{IsOrderEmail: true, Confidence: model.ConfidenceHigh},
		model.ExtractionResult{Success: true, Vendor: "Amazon"},
	)
	p := New(oracle, store, nil)

	result, err := p.Process(context.Background(), orderEmail())
	require.NoError(t, err)
	assert.Equal(t, ActionFailed, result.Action)
}

func TestProcessTruncatesOracleInput(t *testing.T) {
	store := testutil.SetupTestStore(t)

	var classifyLen, extractLen int
	oracle := &MockOracle{
		ClassifyFunc: func(_, content string) model.ClassificationResult {
			classifyLen = len(content)
			return model.ClassificationResult{IsOrderEmail: true, Confidence: model.ConfidenceHigh}
		},
		ExtractFunc: func(_, content string) model.ExtractionResult {
			extractLen = len(content)
			return model.ExtractionResult{Success: true, OrderNumber: "NAED12345678"}
		},
	}
	p := New(oracle, store, nil)

	email := model.NormalizedEmail{
		Subject: "Order",
		Content: strings.Repeat("x", mail.ExtractContentLimit+1000),
	}
	_, err := p.Process(context.Background(), email)
	require.NoError(t, err)

	assert.Equal(t, mail.ClassifyContentLimit, classifyLen)
	assert.Equal(t, mail.ExtractContentLimit, extractLen)
}
