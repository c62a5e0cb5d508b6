package llm

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServerClient(t *testing.T, handler http.HandlerFunc) *HTTPClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewHTTPClient(HTTPConfig{
		APIKey:  "test-key",
		BaseURL: srv.URL,
		Model:   "test-model",
		Timeout: 5 * time.Second,
	})
}

func TestCompleteWithSystem(t *testing.T) {
	client := newServerClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"  hello there  "}}]}`))
	})

	text, err := client.CompleteWithSystem(context.Background(), "be brief", "hi")
	require.NoError(t, err)
	assert.Equal(t, "hello there", text, "whitespace is trimmed")
}

func TestCompleteEmptyChoices(t *testing.T) {
	client := newServerClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	})

	_, err := client.Complete(context.Background(), "hi")
	assert.ErrorIs(t, err, ErrNoCompletion)
}

func TestCompleteAPIError(t *testing.T) {
	client := newServerClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":{"message":"model overloaded","type":"server_error"}}`))
	})

	_, err := client.Complete(context.Background(), "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model overloaded")
}

func TestCompleteRetriesOn429(t *testing.T) {
	var calls atomic.Int32
	client := newServerClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"choices":[{"message":{"content":"recovered"}}]}`))
	})

	text, err := client.Complete(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, "recovered", text)
	assert.Equal(t, int32(2), calls.Load())
}

func TestCompleteNoRetryOn400(t *testing.T) {
	var calls atomic.Int32
	client := newServerClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "bad request", http.StatusBadRequest)
	})

	_, err := client.Complete(context.Background(), "hi")
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestCompleteMissingAPIKey(t *testing.T) {
	client := NewHTTPClient(HTTPConfig{BaseURL: "http://localhost:1"})
	_, err := client.Complete(context.Background(), "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key")
}

func TestScriptedClient(t *testing.T) {
	t.Run("replays in order then repeats last", func(t *testing.T) {
		c := NewScriptedClient("one", "two")

		first, err := c.Complete(context.Background(), "a")
		require.NoError(t, err)
		second, err := c.Complete(context.Background(), "b")
		require.NoError(t, err)
		third, err := c.Complete(context.Background(), "c")
		require.NoError(t, err)

		assert.Equal(t, []string{"one", "two", "two"}, []string{first, second, third})
		assert.Len(t, c.Calls(), 3)
	})

	t.Run("failing client", func(t *testing.T) {
		boom := errors.New("transport down")
		c := NewFailingClient(boom)
		_, err := c.Complete(context.Background(), "a")
		assert.ErrorIs(t, err, boom)
	})

	t.Run("honors cancellation", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		c := NewScriptedClient("never")
		_, err := c.Complete(ctx, "a")
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestNewClientFactory(t *testing.T) {
	t.Run("openai default", func(t *testing.T) {
		c, err := NewClient(context.Background(), ProviderConfig{Provider: "openai", APIKey: "k"})
		require.NoError(t, err)
		assert.IsType(t, &HTTPClient{}, c)
	})

	t.Run("custom provider requires base url", func(t *testing.T) {
		_, err := NewClient(context.Background(), ProviderConfig{Provider: "somethingelse"})
		assert.Error(t, err)
	})

	t.Run("custom provider with base url", func(t *testing.T) {
		c, err := NewClient(context.Background(), ProviderConfig{
			Provider: "local", APIKey: "k", BaseURL: "http://localhost:8080/v1", Model: "llama",
		})
		require.NoError(t, err)
		assert.IsType(t, &HTTPClient{}, c)
	})
}
