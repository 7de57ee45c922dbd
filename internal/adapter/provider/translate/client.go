// Package translate implements a client for a LibreTranslate-compatible
// machine-translation HTTP API. The translator is an unreliable external
// collaborator: callers are expected to fold failures into per-record data
// rather than abort a batch.
package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// retryDelay is the back-off before the single retry attempt.
const retryDelay = 500 * time.Millisecond

// languageCodes maps the language names used in corpus headers to the ISO
// 639-1 codes the API expects.
var languageCodes = map[string]string{
	"french":     "fr",
	"english":    "en",
	"spanish":    "es",
	"german":     "de",
	"italian":    "it",
	"portuguese": "pt",
	"dutch":      "nl",
	"russian":    "ru",
	"japanese":   "ja",
}

// Client fetches translations from a LibreTranslate-compatible endpoint.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	log        *slog.Logger
}

// NewClient creates a Client for the given base URL. An empty apiKey is
// allowed for keyless instances.
func NewClient(baseURL, apiKey string, timeout time.Duration, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		log:        logger.With("adapter", "translate"),
	}
}

type translateRequest struct {
	Query  string `json:"q"`
	Source string `json:"source"`
	Target string `json:"target"`
	Format string `json:"format"`
	APIKey string `json:"api_key,omitempty"`
}

type translateResponse struct {
	TranslatedText string `json:"translatedText"`
	Error          string `json:"error"`
}

// Translate returns the translation of text from sourceLang to targetLang.
// Language arguments are corpus-header names ("French"), not codes.
func (c *Client) Translate(ctx context.Context, sourceLang, targetLang, text string) (string, error) {
	src, ok := languageCodes[strings.ToLower(strings.TrimSpace(sourceLang))]
	if !ok {
		return "", fmt.Errorf("translate: unsupported source language %q", sourceLang)
	}
	tgt, ok := languageCodes[strings.ToLower(strings.TrimSpace(targetLang))]
	if !ok {
		return "", fmt.Errorf("translate: unsupported target language %q", targetLang)
	}

	payload, err := json.Marshal(translateRequest{
		Query:  text,
		Source: src,
		Target: tgt,
		Format: "text",
		APIKey: c.apiKey,
	})
	if err != nil {
		return "", fmt.Errorf("translate: encode request: %w", err)
	}

	c.log.DebugContext(ctx, "translate request",
		slog.String("text", text), slog.String("source", src), slog.String("target", tgt))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/translate", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("translate: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.doWithRetry(ctx, req, payload, text)
	if err != nil {
		c.log.WarnContext(ctx, "translate request failed",
			slog.String("text", text), slog.String("error", err.Error()))
		return "", fmt.Errorf("translate: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("translate: read body: %w", err)
	}

	var decoded translateResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return "", fmt.Errorf("translate: decode json: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		if decoded.Error != "" {
			return "", fmt.Errorf("translate: status %d: %s", resp.StatusCode, decoded.Error)
		}
		return "", fmt.Errorf("translate: unexpected status %d", resp.StatusCode)
	}

	c.log.DebugContext(ctx, "translate response",
		slog.String("text", text), slog.String("translation", decoded.TranslatedText))

	return decoded.TranslatedText, nil
}

// doWithRetry executes the request with a single retry on 5xx or network
// errors. The body is rebuilt for the second attempt; cancellation during
// the back-off aborts it.
func (c *Client) doWithRetry(ctx context.Context, req *http.Request, payload []byte, text string) (*http.Response, error) {
	resp, err := c.httpClient.Do(req)

	shouldRetry := err != nil || (resp != nil && resp.StatusCode >= 500)
	if !shouldRetry {
		return resp, err
	}

	reason := "network error"
	if err == nil && resp != nil {
		reason = fmt.Sprintf("status %d", resp.StatusCode)
	}
	c.log.WarnContext(ctx, "translate retry", slog.String("text", text), slog.String("reason", reason))

	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(retryDelay):
	}

	retryReq := req.Clone(ctx)
	retryReq.Body = io.NopCloser(bytes.NewReader(payload))
	return c.httpClient.Do(retryReq)
}
