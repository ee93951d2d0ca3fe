// Package power talks to the display power-control sidecar. The sidecar is
// best-effort hardware glue: callers bound every call with a short deadline
// and treat failures as warnings.
package power

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client is an HTTP client for the power-control sidecar.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a sidecar client. timeout is the transport-level cap;
// callers typically pass a shorter per-call context deadline as well.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

type signalRequest struct {
	Location string `json:"location"`
	Action   string `json:"action"`
}

// PowerOn asks the sidecar to power up the display at the given location.
func (c *Client) PowerOn(ctx context.Context, location string) error {
	return c.signal(ctx, location, "on")
}

// PowerOff asks the sidecar to power down the display at the given location.
func (c *Client) PowerOff(ctx context.Context, location string) error {
	return c.signal(ctx, location, "off")
}

func (c *Client) signal(ctx context.Context, location, action string) error {
	body, err := json.Marshal(signalRequest{Location: location, Action: action})
	if err != nil {
		return fmt.Errorf("failed to marshal power request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/power", bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to create power request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("power request failed: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("power sidecar returned status %d", resp.StatusCode)
	}
	return nil
}
