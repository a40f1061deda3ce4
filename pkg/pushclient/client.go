package pushclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

const DefaultURL = "https://exp.host/--/api/v2/push/send"

var (
	ErrDeviceNotRegistered = errors.New("device not registered")
	ErrRejected            = errors.New("push rejected")
)

type Client struct {
	url        string
	httpClient *http.Client
}

func NewClient(url string) *Client {
	if url == "" {
		url = DefaultURL
	}
	return &Client{
		url: url,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

type Message struct {
	To    string         `json:"to"`
	Sound string         `json:"sound"`
	Title string         `json:"title"`
	Body  string         `json:"body"`
	Data  map[string]any `json:"data"`
}

type Ticket struct {
	ID      string `json:"id,omitempty"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Details struct {
		Error string `json:"error,omitempty"`
	} `json:"details"`
}

type sendResponse struct {
	Data Ticket `json:"data"`
}

func (c *Client) Send(ctx context.Context, msg Message) (*Ticket, error) {
	if msg.Sound == "" {
		msg.Sound = "default"
	}
	if msg.Data == nil {
		msg.Data = map[string]any{}
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("encode message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("push gateway status %d: %w", resp.StatusCode, ErrRejected)
	}

	var result sendResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if result.Data.Status == "error" {
		if result.Data.Details.Error == "DeviceNotRegistered" {
			return &result.Data, fmt.Errorf("%s: %w", result.Data.Message, ErrDeviceNotRegistered)
		}
		return &result.Data, fmt.Errorf("%s: %w", result.Data.Message, ErrRejected)
	}

	return &result.Data, nil
}
