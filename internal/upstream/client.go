package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const searchPath = "/booking-search"

// APIError is a non-2xx upstream response, surfaced with status and message
// so the fetcher can decide whether a fallback strategy applies.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("upstream api error: status %d: %s", e.Status, e.Message)
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	signer     *Signer
}

func NewClient(baseURL string, creds Credentials) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		signer:     NewSigner(creds),
	}
}

type searchRequest struct {
	StartDateRange    *dateRange `json:"startDateRange,omitempty"`
	CreationDateRange *dateRange `json:"creationDateRange,omitempty"`
}

type dateRange struct {
	From string `json:"from"`
	To   string `json:"to"`
}

func newDateRange(from, to time.Time) *dateRange {
	return &dateRange{
		From: from.UTC().Format(time.RFC3339),
		To:   to.UTC().Format(time.RFC3339),
	}
}

// SearchByTourDate queries reservations whose tour start falls in [from, to].
func (c *Client) SearchByTourDate(ctx context.Context, from, to time.Time) ([]Reservation, error) {
	return c.search(ctx, searchRequest{StartDateRange: newDateRange(from, to)})
}

// SearchByCreationDate queries reservations created in [from, to], used when
// the platform refuses tour-date windows fully in the past.
func (c *Client) SearchByCreationDate(ctx context.Context, from, to time.Time) ([]Reservation, error) {
	return c.search(ctx, searchRequest{CreationDateRange: newDateRange(from, to)})
}

func (c *Client) search(ctx context.Context, req searchRequest) ([]Reservation, error) {
	headers, err := c.signer.Headers(http.MethodPost, searchPath)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal search request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+searchPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}
	httpReq.Header = headers

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("execute search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &APIError{Status: resp.StatusCode, Message: string(msg)}
	}

	var parsed SearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}
	return parsed.Items, nil
}
