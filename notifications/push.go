package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// PushMessage is the payload handed to the push gateway. Data carries the
// structured payload the client app routes on.
type PushMessage struct {
	To    string                 `json:"to"`
	Title string                 `json:"title"`
	Body  string                 `json:"body"`
	Data  map[string]interface{} `json:"data,omitempty"`
}

// PushClient delivers a push message to a device.
type PushClient interface {
	Send(ctx context.Context, msg PushMessage) error
}

// GatewayClient posts messages to an Expo-compatible push gateway.
type GatewayClient struct {
	url    string
	client *http.Client
}

// NewGatewayClient creates a GatewayClient for the given endpoint.
func NewGatewayClient(url string) *GatewayClient {
	return &GatewayClient{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// Send posts the message as JSON and fails on a non-2xx response.
func (c *GatewayClient) Send(ctx context.Context, msg PushMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("push gateway request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("push gateway returned %d", resp.StatusCode)
	}
	return nil
}
