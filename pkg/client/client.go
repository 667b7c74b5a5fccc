// Package client is a typed HTTP client for the dashboard API. Network
// and decode failures are wrapped in TransientError so polling callers
// can tell a flaky fetch apart from a server-side rejection.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"botdeck/internal/bot"
	"botdeck/internal/eventlog"
	"botdeck/internal/settings"
	"botdeck/internal/stats"
)

// TransientError marks a failure worth retrying on the next poll tick.
type TransientError struct {
	Op  string
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// APIError is a non-2xx response from the server.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error: status %d: %s", e.Status, e.Body)
}

type Client struct {
	base string
	http *http.Client
}

func New(base string) *Client {
	return &Client{
		base: strings.TrimRight(base, "/"),
		http: &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) Bots(ctx context.Context) ([]bot.Bot, error) {
	var out []bot.Bot
	err := c.do(ctx, http.MethodGet, "/bots", nil, &out)
	return out, err
}

func (c *Client) Logs(ctx context.Context) ([]eventlog.Entry, error) {
	var out []eventlog.Entry
	err := c.do(ctx, http.MethodGet, "/logs", nil, &out)
	return out, err
}

func (c *Client) Stats(ctx context.Context) (stats.Stats, error) {
	var out stats.Stats
	err := c.do(ctx, http.MethodGet, "/stats", nil, &out)
	return out, err
}

func (c *Client) Config(ctx context.Context) (settings.SystemConfig, error) {
	var out settings.SystemConfig
	err := c.do(ctx, http.MethodGet, "/config", nil, &out)
	return out, err
}

func (c *Client) Symbols(ctx context.Context) ([]string, error) {
	var out []string
	err := c.do(ctx, http.MethodGet, "/symbols", nil, &out)
	return out, err
}

// Signal sends the three-key webhook payload. Manual dashboard triggers
// use the same endpoint as external alerting tools.
func (c *Client) Signal(ctx context.Context, botID, passphrase, action string) error {
	payload := map[string]string{
		"bot_id":     botID,
		"passphrase": passphrase,
		"action":     action,
	}
	return c.do(ctx, http.MethodPost, "/webhook", payload, nil)
}

func (c *Client) SetBotActive(ctx context.Context, botID string, active bool) error {
	payload := map[string]bool{"is_active": active}
	return c.do(ctx, http.MethodPatch, "/bots/"+botID, payload, nil)
}

func (c *Client) DeleteBot(ctx context.Context, botID string) error {
	return c.do(ctx, http.MethodDelete, "/bots/"+botID, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, payload, out interface{}) error {
	var body io.Reader
	if payload != nil {
		buf, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode %s: %w", path, err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return fmt.Errorf("build request %s: %w", path, err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &TransientError{Op: method + " " + path, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{Status: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &TransientError{Op: "decode " + path, Err: err}
	}
	return nil
}
