package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"
)

// HTTPClient talks to the member API. The cookie jar carries the auth_token
// cookie between calls, mirroring a browser session.
type HTTPClient struct {
	base string
	http *http.Client
}

func NewHTTPClient(baseURL string) (*HTTPClient, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("client: cookie jar: %w", err)
	}
	return &HTTPClient{
		base: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Jar:     jar,
			Timeout: 15 * time.Second,
		},
	}, nil
}

func (c *HTTPClient) VerifyToken(ctx context.Context) (*User, error) {
	var body struct {
		User *User `json:"user"`
	}
	if err := c.call(ctx, http.MethodGet, "/api/user/verify", nil, &body); err != nil {
		return nil, err
	}
	return body.User, nil
}

func (c *HTTPClient) SignIn(ctx context.Context, username, password string) (*User, error) {
	payload := map[string]string{"username": username, "password": password}
	var body struct {
		User *User `json:"user"`
	}
	if err := c.call(ctx, http.MethodPost, "/api/user/signin", payload, &body); err != nil {
		return nil, err
	}
	return body.User, nil
}

func (c *HTTPClient) SignOut(ctx context.Context) error {
	return c.call(ctx, http.MethodGet, "/api/user/signout", nil, nil)
}

func (c *HTTPClient) Favorites(ctx context.Context) ([]int, error) {
	var body struct {
		Data struct {
			Favorites []int `json:"favorites"`
		} `json:"data"`
	}
	if err := c.call(ctx, http.MethodGet, "/api/favorites", nil, &body); err != nil {
		return nil, err
	}
	return body.Data.Favorites, nil
}

func (c *HTTPClient) AddFavorite(ctx context.Context, productID int) error {
	return c.call(ctx, http.MethodPut, fmt.Sprintf("/api/favorites/%d", productID), nil, nil)
}

func (c *HTTPClient) RemoveFavorite(ctx context.Context, productID int) error {
	return c.call(ctx, http.MethodDelete, fmt.Sprintf("/api/favorites/%d", productID), nil, nil)
}

func (c *HTTPClient) call(ctx context.Context, method, path string, payload, out interface{}) error {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("client: encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return fmt.Errorf("client: build request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("client: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return ErrUnauthenticated
	case resp.StatusCode == http.StatusForbidden:
		return ErrForbidden
	case resp.StatusCode >= 400:
		var failure struct {
			Message string `json:"message"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&failure)
		return &APIError{StatusCode: resp.StatusCode, Message: failure.Message}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("client: decode response: %w", err)
	}
	return nil
}
