package llm

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ordertrail/ordertrail/internal/model"
)

// stubClient scripts Complete replies for classifier and extractor tests.
type stubClient struct {
	reply string
	err   error
	calls atomic.Int32
}

func (s *stubClient) Complete(_ context.Context, _, _ string) (string, error) {
	s.calls.Add(1)
	return s.reply, s.err
}

func TestClassify(t *testing.T) {
	client := &stubClient{reply: `{"isOrderEmail": true, "confidence": "High", "indicators": ["order number"], "reason": "shipping confirmation"}`}
	classifier := NewClassifier(client, Config{}, nil)
	defer classifier.Close()

	verdict := classifier.Classify(context.Background(), "Your order shipped", "Order 123-4567890-1234567")

	assert.True(t, verdict.IsOrderEmail)
	assert.Equal(t, model.ConfidenceHigh, verdict.Confidence)
	assert.Empty(t, verdict.Error)
}

func TestClassifyFailsClosed(t *testing.T) {
	tests := []struct {
		name   string
		client *stubClient
	}{
		{
			name:   "oracle unreachable",
			client: &stubClient{err: errors.New("connection refused")},
		},
		{
			name:   "malformed reply",
			client: &stubClient{reply: "I am not JSON"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			classifier := NewClassifier(tt.client, Config{}, nil)
			defer classifier.Close()

			verdict := classifier.Classify(context.Background(), "Your order shipped", "body")

			assert.False(t, verdict.IsOrderEmail)
			assert.Equal(t, model.ConfidenceLow, verdict.Confidence)
			assert.NotEmpty(t, verdict.Error)
		})
	}
}

func TestClassifyCachesVerdicts(t *testing.T) {
	client := &stubClient{reply: `{"isOrderEmail": true, "confidence": "High"}`}
	classifier := NewClassifier(client, Config{}, nil)
	defer classifier.Close()

	first := classifier.Classify(context.Background(), "subject", "content")
	second := classifier.Classify(context.Background(), "subject", "content")

	assert.Equal(t, first, second)
	// Redelivery of identical content must not cost a second oracle call.
	assert.Equal(t, int32(1), client.calls.Load())

	classifier.Classify(context.Background(), "different subject", "content")
	assert.Equal(t, int32(2), client.calls.Load())
}

func TestClassifyDefaultsConfidence(t *testing.T) {
	client := &stubClient{reply: `{"isOrderEmail": true}`}
	classifier := NewClassifier(client, Config{}, nil)
	defer classifier.Close()

	verdict := classifier.Classify(context.Background(), "subject", "content")
	require.True(t, verdict.IsOrderEmail)
	assert.Equal(t, model.ConfidenceLow, verdict.Confidence)
}
