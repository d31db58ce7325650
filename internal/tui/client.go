package tui

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sweeney/rad-monitor/internal/status"
)

// Client talks to a running monitor's HTTP console.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a Client for the console at baseURL
// (e.g. "http://raspberrypi.local").
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 2 * time.Second},
	}
}

// Status fetches /index.json.
func (c *Client) Status(ctx context.Context) (status.StatusInner, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/index.json", nil)
	if err != nil {
		return status.StatusInner{}, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return status.StatusInner{}, fmt.Errorf("fetch status: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return status.StatusInner{}, fmt.Errorf("fetch status: %s", resp.Status)
	}

	var sj status.StatusJSON
	if err := json.NewDecoder(resp.Body).Decode(&sj); err != nil {
		return status.StatusInner{}, fmt.Errorf("decode status: %w", err)
	}
	return sj.Status, nil
}

// Toggle posts /api/toggle. It reports whether the request was folded into
// one that was already pending.
func (c *Client) Toggle(ctx context.Context) (coalesced bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/toggle", nil)
	if err != nil {
		return false, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return false, fmt.Errorf("toggle: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusAccepted {
		return false, fmt.Errorf("toggle: %s", resp.Status)
	}

	var out struct {
		Coalesced bool `json:"coalesced"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return false, fmt.Errorf("decode toggle response: %w", err)
	}
	return out.Coalesced, nil
}
