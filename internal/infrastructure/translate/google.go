// Package translate wraps the Google Translate v2 REST API behind a
// fail-open circuit breaker: a bad key must degrade ingestion to
// untranslated content, never block it.
package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"NewsIngest/internal/config"
	"NewsIngest/internal/ports"
)

// Client posts texts to the translation backend. After one authentication or
// quota rejection it disables itself for the remainder of the process, so a
// broken key is not retried across thousands of items per run.
type Client struct {
	endpoint string
	apiKey   string
	http     *http.Client
	logger   *slog.Logger
	disabled atomic.Bool
}

var _ ports.Translator = (*Client)(nil)

// NewClient builds a client from configuration. An empty API key starts the
// client in the disabled state.
func NewClient(cfg config.TranslateConfig, log *slog.Logger) *Client {
	c := &Client{
		endpoint: cfg.Endpoint,
		apiKey:   strings.TrimSpace(cfg.APIKey),
		http:     &http.Client{Timeout: 15 * time.Second},
		logger:   log,
	}
	if c.apiKey == "" {
		c.disabled.Store(true)
	}
	return c
}

// Disabled reports whether the circuit has tripped (or no key was set).
func (c *Client) Disabled() bool {
	return c.disabled.Load()
}

// Translate returns the translation of text into targetLang, or empty string
// when no translation is available. Backend failures are logged and degrade
// to empty; they never surface as ingestion errors.
func (c *Client) Translate(ctx context.Context, text, targetLang string) (string, error) {
	if text == "" || c.disabled.Load() {
		return "", nil
	}

	body, err := json.Marshal(map[string]string{
		"q":      text,
		"target": targetLang,
		"format": "text",
	})
	if err != nil {
		return "", fmt.Errorf("marshal translate payload: %w", err)
	}

	endpoint := c.endpoint + "?key=" + url.QueryEscape(c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.warn("translate request failed", "error", err)
		return "", nil
	}
	defer resp.Body.Close()

	// 400 means invalid key, 403 quota or permission denial. Either way the
	// key is unusable for the rest of the process.
	if resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusForbidden {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		c.disabled.Store(true)
		c.warn("translation backend rejected key, disabling translations",
			"status", resp.Status, "detail", strings.TrimSpace(string(detail)))
		return "", nil
	}

	if resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		c.warn("translation backend error", "status", resp.Status, "detail", strings.TrimSpace(string(detail)))
		return "", nil
	}

	var payload struct {
		Data struct {
			Translations []struct {
				TranslatedText string `json:"translatedText"`
			} `json:"translations"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		c.warn("translation response malformed", "error", err)
		return "", nil
	}

	if len(payload.Data.Translations) == 0 {
		return "", nil
	}
	return payload.Data.Translations[0].TranslatedText, nil
}

func (c *Client) warn(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Warn(msg, args...)
	}
}
