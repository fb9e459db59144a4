package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOpenAIClient(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{
			name:   "valid config",
			config: Config{APIKey: "test-key"},
		},
		{
			name:    "missing API key",
			config:  Config{APIKey: ""},
			wantErr: true,
		},
		{
			name: "custom model and settings",
			config: Config{
				APIKey:      "test-key",
				Model:       "openai/gpt-4o",
				Temperature: 0.5,
				MaxTokens:   200,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := newOpenAIClient(tt.config)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.NotNil(t, client)
			}
		})
	}
}

func TestOpenAIComplete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		messages, ok := body["messages"].([]any)
		require.True(t, ok)
		require.Len(t, messages, 2)

		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": `{"isOrderEmail": true}`}},
			},
		})
	}))
	defer server.Close()

	client, err := newOpenAIClient(Config{APIKey: "test-key", Endpoint: server.URL})
	require.NoError(t, err)

	reply, err := client.Complete(context.Background(), "classify this", "Subject: order")
	require.NoError(t, err)
	assert.Equal(t, `{"isOrderEmail": true}`, reply)
}

func TestOpenAICompleteAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error": "rate limited"}`))
	}))
	defer server.Close()

	client, err := newOpenAIClient(Config{APIKey: "test-key", Endpoint: server.URL})
	require.NoError(t, err)

	_, err = client.Complete(context.Background(), "classify this", "Subject: order")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 429")
}

func TestOpenAICompleteNoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"choices": []}`))
	}))
	defer server.Close()

	client, err := newOpenAIClient(Config{APIKey: "test-key", Endpoint: server.URL})
	require.NoError(t, err)

	_, err = client.Complete(context.Background(), "classify this", "Subject: order")
	require.Error(t, err)
}
