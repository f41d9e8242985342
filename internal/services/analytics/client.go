// Package analytics provides the HTTP client for the analytics backend.
package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/a-linden/genboard-tui/internal/logger"
	"github.com/a-linden/genboard-tui/internal/models"
)

// Endpoint names as exposed by the analytics backend.
const (
	GenerationsEndpoint = "gens_by_time_and_tier.json"
	ModelsUsageEndpoint = "models_usage.json"
)

// FetchError indicates a transport-level failure or a non-2xx status from
// one of the analytics endpoints.
type FetchError struct {
	Endpoint   string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetching %s failed: %v", e.Endpoint, e.Err)
	}
	return fmt.Sprintf("fetching %s failed (status %d)", e.Endpoint, e.StatusCode)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// ParseError indicates a response body missing the expected shape. A parse
// failure is total: no partial records are surfaced.
type ParseError struct {
	Endpoint string
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing %s response failed: %v", e.Endpoint, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Client fetches metric records from the analytics backend. The token can be
// swapped at runtime when the env watcher observes a rotation.
type Client struct {
	httpClient *http.Client
	baseURL    string

	mu    sync.RWMutex
	token string
}

// NewClient creates a client for the given backend root and token.
func NewClient(baseURL, token string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    baseURL,
		token:      token,
	}
}

// SetToken replaces the authorization token for subsequent requests.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

func (c *Client) currentToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// FetchGenerations retrieves generation volume over time for the given tier.
func (c *Client) FetchGenerations(ctx context.Context, tier models.Tier) ([]models.GenerationRecord, error) {
	if !tier.Valid() {
		return nil, fmt.Errorf("invalid tier %q", tier)
	}

	body, err := c.getData(ctx, GenerationsEndpoint, url.Values{"user_tier": {tier.String()}})
	if err != nil {
		return nil, err
	}

	var records []models.GenerationRecord
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, &ParseError{Endpoint: GenerationsEndpoint, Err: err}
	}

	for i := range records {
		if err := validateGeneration(&records[i]); err != nil {
			return nil, &ParseError{Endpoint: GenerationsEndpoint, Err: err}
		}
	}

	return records, nil
}

// FetchModelsUsage retrieves per-model usage and performance statistics.
func (c *Client) FetchModelsUsage(ctx context.Context) ([]models.ModelUsageRecord, error) {
	body, err := c.getData(ctx, ModelsUsageEndpoint, nil)
	if err != nil {
		return nil, err
	}

	var records []models.ModelUsageRecord
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, &ParseError{Endpoint: ModelsUsageEndpoint, Err: err}
	}

	for i := range records {
		if err := validateModelUsage(&records[i]); err != nil {
			return nil, &ParseError{Endpoint: ModelsUsageEndpoint, Err: err}
		}
	}

	return records, nil
}

// envelope is the common response wrapper. Data stays raw so a missing field
// can be told apart from an empty list.
type envelope struct {
	Data json.RawMessage `json:"data"`
}

// getData performs the request and unwraps the data envelope. The token goes
// into the query string and never into errors or logs.
func (c *Client) getData(ctx context.Context, endpoint string, params url.Values) (json.RawMessage, error) {
	query := url.Values{"token": {c.currentToken()}}
	for k, vs := range params {
		for _, v := range vs {
			query.Add(k, v)
		}
	}

	reqURL := c.baseURL + "/" + endpoint + "?" + query.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, &FetchError{Endpoint: endpoint, Err: fmt.Errorf("creating request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &FetchError{Endpoint: endpoint, Err: err}
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Error("failed to close response body", "endpoint", endpoint, "error", err)
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{Endpoint: endpoint, Err: fmt.Errorf("reading response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{Endpoint: endpoint, StatusCode: resp.StatusCode}
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, &ParseError{Endpoint: endpoint, Err: err}
	}
	if env.Data == nil {
		return nil, &ParseError{Endpoint: endpoint, Err: fmt.Errorf("response missing data field")}
	}

	return env.Data, nil
}

func validateGeneration(rec *models.GenerationRecord) error {
	if rec.Timestamp.IsZero() {
		return fmt.Errorf("generation record missing timestamp")
	}
	if !rec.UserTier.Valid() {
		return fmt.Errorf("generation record has unknown tier %q", rec.UserTier)
	}
	if rec.Count < 0 {
		return fmt.Errorf("generation record has negative count %d", rec.Count)
	}
	return nil
}

func validateModelUsage(rec *models.ModelUsageRecord) error {
	if rec.Model == "" {
		return fmt.Errorf("model usage record missing model identifier")
	}
	if rec.Requests < 0 || rec.Failures < 0 {
		return fmt.Errorf("model %s has negative counters", rec.Model)
	}
	if rec.Failures > rec.Requests {
		return fmt.Errorf("model %s reports %d failures for %d requests", rec.Model, rec.Failures, rec.Requests)
	}
	if rec.SuccessRate < 0 || rec.SuccessRate > 100 {
		return fmt.Errorf("model %s reports success rate %v outside [0,100]", rec.Model, rec.SuccessRate)
	}
	if rec.AvgDuration < 0 {
		return fmt.Errorf("model %s reports negative avg duration", rec.Model)
	}
	return nil
}
