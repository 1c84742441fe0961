package campus

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client talks to the campus data API.
type Client struct {
	BaseURL  string
	HTTP     *http.Client
	Cache    Cache
	CacheTTL time.Duration
}

func NewClient(baseURL string, timeout time.Duration, cache Cache, cacheTTL time.Duration) *Client {
	return &Client{
		BaseURL:  strings.TrimRight(baseURL, "/"),
		HTTP:     &http.Client{Timeout: timeout},
		Cache:    cache,
		CacheTTL: cacheTTL,
	}
}

type userRequest struct {
	UserID string `json:"user_id"`
}

func (c *Client) Events(ctx context.Context, id int) (Events, error) {
	raw, err := c.get(ctx, fmt.Sprintf("/event/data/%d", id))
	if err != nil {
		return nil, err
	}
	return decodeList[Event](raw, "events")
}

func (c *Client) Departments(ctx context.Context, id int) (Departments, error) {
	raw, err := c.get(ctx, fmt.Sprintf("/department/data/%d", id))
	if err != nil {
		return nil, err
	}
	return decodeList[Department](raw, "departments")
}

func (c *Client) BusRoutes(ctx context.Context, id int) (BusRoutes, error) {
	raw, err := c.get(ctx, fmt.Sprintf("/bus/route/%d", id))
	if err != nil {
		return nil, err
	}
	return decodeList[BusRoute](raw, "routes")
}

func (c *Client) Menu(ctx context.Context, id int) (Menu, error) {
	raw, err := c.get(ctx, fmt.Sprintf("/cafeteria/menu/%d", id))
	if err != nil {
		return nil, err
	}
	return decodeList[MenuItem](raw, "menu", "items", "meals")
}

func (c *Client) ExamResults(ctx context.Context, userID string) (ExamResults, error) {
	raw, err := c.post(ctx, "/user/exam-result", userRequest{UserID: userID})
	if err != nil {
		return nil, err
	}
	return decodeList[ExamResult](raw, "exam_results", "results")
}

func (c *Client) UserProfile(ctx context.Context, userID string) (Profiles, error) {
	raw, err := c.post(ctx, "/user/fetch", userRequest{UserID: userID})
	if err != nil {
		return nil, err
	}
	return decodeList[UserProfile](raw, "user", "user_data")
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	url := c.BaseURL + path
	if c.Cache != nil {
		if hit, ok := c.Cache.Get(ctx, url); ok {
			return hit, nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	body, err := c.do(req)
	if err != nil {
		return nil, err
	}

	if c.Cache != nil {
		c.Cache.Set(ctx, url, body, c.CacheTTL)
	}
	return body, nil
}

// post is never cached: it serves per-user data.
func (c *Client) post(ctx context.Context, path string, payload interface{}) ([]byte, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	req.Header.Set("Accept", "application/json")
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("campus api request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("campus api error: status %d", resp.StatusCode)
	}
	return body, nil
}

// decodeList accepts a bare array, a single object, or an object wrapping
// the array under "data" or one of the given keys.
func decodeList[T any](raw []byte, keys ...string) ([]T, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, ErrMalformedRecord
	}

	if raw[0] == '[' {
		var list []T
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
		}
		return list, nil
	}
	if raw[0] != '{' {
		return nil, ErrMalformedRecord
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}
	for _, key := range append([]string{"data"}, keys...) {
		if inner, ok := envelope[key]; ok && len(inner) > 0 && string(inner) != "null" {
			return decodeList[T](inner, keys...)
		}
	}
	if msg, ok := envelope["error"]; ok {
		return nil, fmt.Errorf("campus api error: %s", strings.Trim(string(msg), `"`))
	}

	var single T
	if err := json.Unmarshal(raw, &single); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}
	return []T{single}, nil
}
