package recordstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/herdwatch/herdwatch/internal/domain/assignment"
	"github.com/herdwatch/herdwatch/internal/domain/cases"
	"github.com/herdwatch/herdwatch/internal/domain/farmers"
	"github.com/herdwatch/herdwatch/internal/domain/livestock"
	"github.com/herdwatch/herdwatch/internal/domain/vets"
)

// ErrUnauthenticated signals that the upstream record store rejected our
// credentials. It is never retried automatically.
var ErrUnauthenticated = errors.New("record store: unauthenticated")

// Client is the poll source for nodes that consume an upstream record-store
// API instead of owning the database. Responses may be a bare JSON array or
// wrapped as {"data": [...]}.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// envelope tolerates both wrapped and bare collection payloads.
type envelope[T any] struct {
	Data []T `json:"data"`
}

func decodeList[T any](body []byte) ([]T, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var out []T
		if err := json.Unmarshal(trimmed, &out); err != nil {
			return nil, fmt.Errorf("decode list: %w", err)
		}
		return out, nil
	}
	var env envelope[T]
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	return env.Data, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, payload any) ([]byte, int, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, 0, fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read response: %w", err)
	}
	return raw, resp.StatusCode, nil
}

func (c *Client) getList(ctx context.Context, path string, query url.Values) ([]byte, error) {
	raw, status, err := c.do(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return nil, err
	}
	switch {
	case status == http.StatusUnauthorized:
		return nil, ErrUnauthenticated
	case status >= 400:
		return nil, fmt.Errorf("GET %s: status %d", path, status)
	}
	return raw, nil
}

// ListCases fetches cases with an optional status filter and free-text
// search.
func (c *Client) ListCases(ctx context.Context, f cases.Filter, limit, offset int) ([]*cases.Case, error) {
	q := url.Values{}
	if f.Status != "" {
		q.Set("status", string(f.Status))
	}
	if f.Query != "" {
		q.Set("q", f.Query)
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
		q.Set("offset", strconv.Itoa(offset))
	}
	raw, err := c.getList(ctx, "/cases", q)
	if err != nil {
		return nil, err
	}
	return decodeList[*cases.Case](raw)
}

func (c *Client) ListVeterinarians(ctx context.Context, f vets.Filter) ([]*vets.Veterinarian, error) {
	q := url.Values{}
	if f.UserType != "" {
		q.Set("user_type", string(f.UserType))
	}
	if f.Sector != "" {
		q.Set("sector", f.Sector)
	}
	if f.District != "" {
		q.Set("district", f.District)
	}
	raw, err := c.getList(ctx, "/veterinarians", q)
	if err != nil {
		return nil, err
	}
	return decodeList[*vets.Veterinarian](raw)
}

func (c *Client) ListVeterinariansByLocation(ctx context.Context, sector, district string) ([]*vets.Veterinarian, error) {
	q := url.Values{}
	q.Set("sector", sector)
	q.Set("district", district)
	raw, err := c.getList(ctx, "/veterinarians/by-location", q)
	if err != nil {
		return nil, err
	}
	return decodeList[*vets.Veterinarian](raw)
}

type assignPayload struct {
	VeterinarianID uuid.UUID `json:"veterinarian_id"`
}

// AssignCase sets the case's assignee upstream. A 409 means a concurrent
// actor won the race; the caller re-fetches instead of assuming success.
func (c *Client) AssignCase(ctx context.Context, caseID, vetID uuid.UUID) (*cases.Case, error) {
	path := "/cases/" + caseID.String() + "/assign"
	raw, status, err := c.do(ctx, http.MethodPost, path, nil, assignPayload{VeterinarianID: vetID})
	if err != nil {
		return nil, err
	}
	switch {
	case status == http.StatusUnauthorized:
		return nil, ErrUnauthenticated
	case status == http.StatusConflict:
		return nil, fmt.Errorf("%w: %s", assignment.ErrAssignmentRejected, bytes.TrimSpace(raw))
	case status >= 400:
		return nil, fmt.Errorf("POST %s: status %d", path, status)
	}

	var updated cases.Case
	if err := json.Unmarshal(raw, &updated); err != nil {
		return nil, fmt.Errorf("decode case: %w", err)
	}
	return &updated, nil
}

func (c *Client) UnassignCase(ctx context.Context, caseID uuid.UUID) (*cases.Case, error) {
	path := "/cases/" + caseID.String() + "/assignment"
	raw, status, err := c.do(ctx, http.MethodDelete, path, nil, nil)
	if err != nil {
		return nil, err
	}
	switch {
	case status == http.StatusUnauthorized:
		return nil, ErrUnauthenticated
	case status >= 400:
		return nil, fmt.Errorf("DELETE %s: status %d", path, status)
	}

	var updated cases.Case
	if err := json.Unmarshal(raw, &updated); err != nil {
		return nil, fmt.Errorf("decode case: %w", err)
	}
	return &updated, nil
}

func (c *Client) ListFarmers(ctx context.Context, approved *bool) ([]*farmers.Farmer, error) {
	q := url.Values{}
	if approved != nil {
		q.Set("approved", strconv.FormatBool(*approved))
	}
	raw, err := c.getList(ctx, "/farmers", q)
	if err != nil {
		return nil, err
	}
	return decodeList[*farmers.Farmer](raw)
}

func (c *Client) ListLivestock(ctx context.Context) ([]*livestock.Animal, error) {
	raw, err := c.getList(ctx, "/livestock", nil)
	if err != nil {
		return nil, err
	}
	return decodeList[*livestock.Animal](raw)
}

// poll.Source implementation: the coordinator polls the full collections.

func (c *Client) FetchCases(ctx context.Context) ([]*cases.Case, error) {
	return c.ListCases(ctx, cases.Filter{}, 0, 0)
}

func (c *Client) FetchVeterinarians(ctx context.Context) ([]*vets.Veterinarian, error) {
	return c.ListVeterinarians(ctx, vets.Filter{})
}

func (c *Client) FetchFarmers(ctx context.Context) ([]*farmers.Farmer, error) {
	return c.ListFarmers(ctx, nil)
}

func (c *Client) FetchLivestock(ctx context.Context) ([]*livestock.Animal, error) {
	return c.ListLivestock(ctx)
}
