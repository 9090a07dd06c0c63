// Package client is a Go client for the ordering API. It keeps the guest and
// session cookies across calls, so an anonymous caller's cart and
// notifications stay attached to the same identity the server minted.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"sync/atomic"
	"time"
)

// APIError is a structured failure returned by the server.
type APIError struct {
	Status  int               `json:"-"`
	Code    string            `json:"error"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return e.Code
}

// ErrConnectivity wraps transport-level failures so callers can distinguish
// "the server said no" from "the server never answered".
type ErrConnectivity struct {
	cause error
}

func (e *ErrConnectivity) Error() string {
	return "could not reach the ordering service"
}

func (e *ErrConnectivity) Unwrap() error {
	return e.cause
}

type Client struct {
	baseURL string
	http    *http.Client
	token   string

	checkoutInFlight atomic.Bool
}

func New(baseURL string) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Jar:     jar,
			Timeout: 15 * time.Second,
		},
	}, nil
}

// SetToken attaches a bearer token to subsequent requests. Cookie sessions
// work without it; non-browser callers use this instead.
func (c *Client) SetToken(token string) {
	c.token = token
}

type envelope struct {
	Success bool              `json:"success"`
	Data    json.RawMessage   `json:"data"`
	Code    string            `json:"error"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields"`
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &ErrConnectivity{cause: err}
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return &ErrConnectivity{cause: err}
	}

	if !env.Success {
		return &APIError{
			Status:  resp.StatusCode,
			Code:    env.Code,
			Message: env.Message,
			Fields:  env.Fields,
		}
	}
	if out != nil && len(env.Data) > 0 {
		return json.Unmarshal(env.Data, out)
	}
	return nil
}

func restaurantPath(restaurantID int64, suffix string) string {
	return fmt.Sprintf("/api/public/restaurants/%d%s", restaurantID, suffix)
}
