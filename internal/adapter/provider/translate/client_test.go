package translate

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestClient_Translate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/translate", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "le chat", req["q"])
		assert.Equal(t, "fr", req["source"])
		assert.Equal(t, "en", req["target"])
		assert.Equal(t, "text", req["format"])
		assert.Equal(t, "secret", req["api_key"])

		json.NewEncoder(w).Encode(map[string]string{"translatedText": "the cat"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret", 5*time.Second, discardLogger())
	got, err := c.Translate(context.Background(), "French", "English", "le chat")
	require.NoError(t, err)
	assert.Equal(t, "the cat", got)
}

func TestClient_TranslateUnsupportedLanguage(t *testing.T) {
	c := NewClient("http://localhost:1", "", time.Second, discardLogger())

	_, err := c.Translate(context.Background(), "klingon", "english", "nuqneH")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported source language")

	_, err = c.Translate(context.Background(), "french", "klingon", "chat")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported target language")
}

func TestClient_TranslateAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		json.NewEncoder(w).Encode(map[string]string{"error": "invalid api key"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "wrong", time.Second, discardLogger())
	_, err := c.Translate(context.Background(), "french", "english", "chat")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid api key")
}

func TestClient_RetryOnServerError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}

		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "chat", req["q"], "retry must resend the payload")

		json.NewEncoder(w).Encode(map[string]string{"translatedText": "cat"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", 5*time.Second, discardLogger())
	got, err := c.Translate(context.Background(), "french", "english", "chat")
	require.NoError(t, err)
	assert.Equal(t, "cat", got)
	assert.Equal(t, int32(2), calls.Load())
}

func TestClient_CancelDuringRetryBackoff(t *testing.T) {
	var calls atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		cancel()
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", 5*time.Second, discardLogger())

	start := time.Now()
	_, err := c.Translate(ctx, "french", "english", "chat")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int32(1), calls.Load(), "cancelled back-off must not retry")
	assert.Less(t, time.Since(start), retryDelay)
}

func TestClient_RetryExhausted(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": "backend down"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", 5*time.Second, discardLogger())
	_, err := c.Translate(context.Background(), "french", "english", "chat")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "backend down")
	assert.Equal(t, int32(2), calls.Load())
}
