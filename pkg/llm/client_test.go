package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigFromReader(t *testing.T) {
	t.Setenv(envAPIKey, "override-key")
	t.Setenv(envTimeout, "45s")
	t.Setenv(envMaxRetries, "5")

	data := `
base_url: "https://example.com"
api_key: "${OPENAI_API_KEY}"
default_model: "gpt-4o"
timeout: "30s"
max_retries: 2
log_level: "debug"

models:
  gpt-4o:
    model_name: "gpt-4o-2024-08-06"
    temperature: 0.5
    max_tokens: 1024
`

	cfg, err := LoadConfigFromReader(strings.NewReader(data))
	require.NoError(t, err)

	require.Equal(t, "https://example.com", cfg.BaseURL)
	require.Equal(t, "override-key", cfg.APIKey)
	require.Equal(t, "gpt-4o", cfg.DefaultModel)
	require.Equal(t, 5, cfg.MaxRetries)
	require.Equal(t, 45*time.Second, cfg.Timeout)

	model, ok := cfg.Model("gpt-4o")
	require.True(t, ok)
	require.Equal(t, "gpt-4o-2024-08-06", model.ModelName)
	require.NotNil(t, model.Temperature)
	require.InDelta(t, 0.5, *model.Temperature, 0.0001)
}

func TestClientChat(t *testing.T) {
	var (
		mu        sync.Mutex
		lastBody  []byte
		lastPath  string
		callCount int
	)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		callCount++
		lastPath = r.URL.Path
		body, _ := io.ReadAll(r.Body)
		lastBody = body

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id":"chatcmpl-1",
			"object":"chat.completion",
			"created":1730366400,
			"model":"gpt-4o-2024-08-06",
			"choices":[
				{
					"index":0,
					"finish_reason":"stop",
					"logprobs":null,
					"message":{
						"role":"assistant",
						"content":"Hello from test",
						"tool_calls":[]
					}
				}
			],
			"usage":{
				"prompt_tokens":10,
				"completion_tokens":12,
				"total_tokens":22
			}
		}`))
	}))
	defer server.Close()

	cfg := &Config{
		BaseURL:      server.URL,
		APIKey:       "test-key",
		DefaultModel: "gpt-4o",
		Timeout:      5 * time.Second,
		MaxRetries:   1,
		LogLevel:     "error",
		Models: map[string]ModelConfig{
			"gpt-4o": {
				ModelName: "gpt-4o-2024-08-06",
			},
		},
	}

	client, err := NewClient(cfg, WithHTTPClient(server.Client()))
	require.NoError(t, err)
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	resp, err := client.Chat(ctx, &ChatRequest{
		Model: "gpt-4o",
		Messages: []Message{
			{Role: "user", Content: "hi"},
		},
	})
	require.NoError(t, err)

	require.Equal(t, "gpt-4o-2024-08-06", resp.Model)
	require.Len(t, resp.Choices, 1)
	require.Equal(t, "Hello from test", resp.Choices[0].Message.Content)
	require.Equal(t, 22, resp.Usage.TotalTokens)

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, "/chat/completions", lastPath)
	var payload map[string]any
	require.NoError(t, json.Unmarshal(lastBody, &payload))
	require.Equal(t, "gpt-4o-2024-08-06", payload["model"])
	require.Equal(t, 1, callCount)
}

func TestClientChatRejectsEmptyRequest(t *testing.T) {
	cfg := &Config{
		BaseURL:      "https://api.example.com",
		APIKey:       "test-key",
		DefaultModel: "gpt-4o",
		Timeout:      5 * time.Second,
		MaxRetries:   1,
	}

	client, err := NewClient(cfg)
	require.NoError(t, err)
	defer client.Close()

	_, err = client.Chat(context.Background(), nil)
	require.Error(t, err)

	_, err = client.Chat(context.Background(), &ChatRequest{})
	require.Error(t, err)
	require.Contains(t, err.Error(), "at least one message")
}

func TestClientOptions(t *testing.T) {
	cfg := func() *Config {
		return &Config{
			BaseURL:      "https://api.example.com",
			APIKey:       "test-key",
			DefaultModel: "gpt-4o",
			Timeout:      5 * time.Second,
			MaxRetries:   1,
		}
	}

	t.Run("WithLogger", func(t *testing.T) {
		customLogger := NewLogger("debug")
		client, err := NewClient(cfg(), WithLogger(customLogger))
		require.NoError(t, err)
		defer client.Close()

		require.Equal(t, customLogger, client.logger)
	})

	t.Run("WithRetryHandler", func(t *testing.T) {
		customRetry := NewRetryHandler(RetryConfig{MaxRetries: 5})
		client, err := NewClient(cfg(), WithRetryHandler(customRetry))
		require.NoError(t, err)
		defer client.Close()

		require.Equal(t, customRetry, client.retryHandler)
	})

	t.Run("multiple options", func(t *testing.T) {
		customLogger := NewLogger("debug")
		customRetry := NewRetryHandler(RetryConfig{MaxRetries: 5})
		customHTTPClient := &http.Client{Timeout: 10 * time.Second}

		client, err := NewClient(cfg(),
			WithLogger(customLogger),
			WithRetryHandler(customRetry),
			WithHTTPClient(customHTTPClient),
		)
		require.NoError(t, err)
		defer client.Close()

		require.Equal(t, customLogger, client.logger)
		require.Equal(t, customRetry, client.retryHandler)
	})
}

func TestGetConfig(t *testing.T) {
	cfg := &Config{
		BaseURL:      "https://api.example.com",
		APIKey:       "test-key",
		DefaultModel: "gpt-4o",
		Timeout:      5 * time.Second,
		MaxRetries:   3,
		LogLevel:     "info",
	}

	client, err := NewClient(cfg)
	require.NoError(t, err)
	defer client.Close()

	returnedCfg := client.GetConfig()
	require.NotNil(t, returnedCfg)
	require.Equal(t, cfg.BaseURL, returnedCfg.BaseURL)
	require.Equal(t, cfg.APIKey, returnedCfg.APIKey)
	require.Equal(t, cfg.DefaultModel, returnedCfg.DefaultModel)
	require.Equal(t, cfg.Timeout, returnedCfg.Timeout)

	// Verify it's a clone, not the original
	require.NotSame(t, cfg, returnedCfg)
}

func TestBuildChatParamsFallsBackToDefaultModel(t *testing.T) {
	cfg := &Config{
		BaseURL:      "https://api.example.com",
		APIKey:       "test-key",
		DefaultModel: "gpt-4o",
		Timeout:      5 * time.Second,
		MaxRetries:   1,
	}
	client, err := NewClient(cfg)
	require.NoError(t, err)
	defer client.Close()

	_, modelID, err := client.buildChatParams(&ChatRequest{
		Messages: []Message{{Role: "user", Content: "hi"}},
	})
	require.NoError(t, err)
	require.Equal(t, "gpt-4o", modelID)
}
