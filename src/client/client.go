// Package client is the Go client for the relay API, used by the operator
// CLI and by FWEA-side tooling.
package client

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"relayapi/src/model"
)

type Client struct {
	http  *resty.Client
	token string
}

// Health is the decoded /api/v1/health payload.
type Health struct {
	Status          string           `json:"status"`
	Ts              int64            `json:"ts"`
	Count           int              `json:"count"`
	LastID          int64            `json:"last_id"`
	UptimeS         int64            `json:"uptime_s"`
	PersistPath     string           `json:"persist_path"`
	LastSeqByTrader map[string]int64 `json:"last_seq_by_trader"`
}

type publishResponse struct {
	OK    bool   `json:"ok"`
	ID    int64  `json:"id"`
	Error string `json:"error"`
}

// New builds a client for the given base URL. The token is sent as a Bearer
// credential on every request; publish ignores it server-side today but that
// is the server's call, not the client's.
func New(baseURL, token string) *Client {
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(30 * time.Second).
		SetRetryCount(3).
		SetRetryWaitTime(500 * time.Millisecond)

	return &Client{http: httpClient, token: token}
}

// Publish sends one event and returns the relay-assigned id.
func (c *Client) Publish(ctx context.Context, event map[string]interface{}) (int64, error) {
	var out publishResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(c.token).
		SetHeader("Content-Type", "application/json").
		SetBody(event).
		SetResult(&out).
		SetError(&out).
		Post("/api/v1/events/publish")
	if err != nil {
		return 0, fmt.Errorf("publish request failed: %w", err)
	}
	if resp.IsError() || !out.OK {
		if out.Error != "" {
			return 0, fmt.Errorf("publish rejected: %s", out.Error)
		}
		return 0, fmt.Errorf("publish rejected: status %d", resp.StatusCode())
	}
	return out.ID, nil
}

// Stream fetches events with id > since (legacy cursor).
func (c *Client) Stream(ctx context.Context, since int64) ([]model.Event, error) {
	return c.stream(ctx, map[string]string{"since": strconv.FormatInt(since, 10)})
}

// StreamSeq fetches events for traderKey with seq > sinceSeq (keyed cursor).
func (c *Client) StreamSeq(ctx context.Context, traderKey string, sinceSeq int64) ([]model.Event, error) {
	return c.stream(ctx, map[string]string{
		"trader_key": traderKey,
		"since_seq":  strconv.FormatInt(sinceSeq, 10),
	})
}

func (c *Client) stream(ctx context.Context, params map[string]string) ([]model.Event, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(c.token).
		SetQueryParams(params).
		Get("/api/v1/events/stream_ndjson")
	if err != nil {
		return nil, fmt.Errorf("stream request failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("stream rejected: status %d", resp.StatusCode())
	}

	events := make([]model.Event, 0)
	scanner := bufio.NewScanner(bytes.NewReader(resp.Body()))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var evt model.Event
		if err := json.Unmarshal(line, &evt); err != nil {
			return nil, fmt.Errorf("malformed stream line: %w", err)
		}
		events = append(events, evt)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("stream read failed: %w", err)
	}
	return events, nil
}

// Health calls the public heartbeat.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	var out Health
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&out).
		Get("/api/v1/health")
	if err != nil {
		return nil, fmt.Errorf("health request failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("health rejected: status %d", resp.StatusCode())
	}
	return &out, nil
}
