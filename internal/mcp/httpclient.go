package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/claude/trailbook/internal/controller"
	"github.com/claude/trailbook/internal/models"
)

// HTTPClient implements DataSource by calling the trailbook REST API.
// Used for remote MCP mode where the binary runs locally (stdio) but the
// workouts live on a server (reached over Tailscale).
type HTTPClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Compile-time check: HTTPClient satisfies DataSource.
var _ DataSource = (*HTTPClient)(nil)

// NewHTTPClient creates an HTTPClient targeting the given base URL. apiKey
// is sent as X-API-Key on mutating calls when non-empty.
func NewHTTPClient(baseURL, apiKey string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// statusError is a non-2xx response from the API.
type statusError struct {
	path   string
	status int
	body   string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("httpclient: %s returned %d: %s", e.path, e.status, e.body)
}

// Unwrap maps a validation rejection back to controller.ErrInvalidInput.
func (e *statusError) Unwrap() error {
	if e.status == http.StatusUnprocessableEntity {
		return controller.ErrInvalidInput
	}
	return nil
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("httpclient: encode body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("httpclient: create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" && method != http.MethodGet {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("httpclient: read body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &statusError{path: path, status: resp.StatusCode, body: apiError(data)}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("httpclient: decode %s: %w", path, err)
	}
	return nil
}

// apiError extracts the {"error": ...} message, falling back to the raw body.
func apiError(body []byte) string {
	var e struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &e) == nil && e.Error != "" {
		return e.Error
	}
	return strings.TrimSpace(string(body))
}

func isNotFound(err error) bool {
	se, ok := err.(*statusError)
	return ok && se.status == http.StatusNotFound
}

func (c *HTTPClient) Workouts(ctx context.Context) ([]models.Workout, error) {
	var workouts []models.Workout
	if err := c.do(ctx, http.MethodGet, "/api/v1/workouts", nil, &workouts); err != nil {
		return nil, err
	}
	return workouts, nil
}

func (c *HTTPClient) Workout(ctx context.Context, id string) (models.Workout, bool, error) {
	var w models.Workout
	err := c.do(ctx, http.MethodGet, "/api/v1/workouts/"+url.PathEscape(id), nil, &w)
	if isNotFound(err) {
		return models.Workout{}, false, nil
	}
	if err != nil {
		return models.Workout{}, false, err
	}
	return w, true, nil
}

func (c *HTTPClient) Record(ctx context.Context, coords models.Coords, in controller.FormInput) (models.Workout, error) {
	body := map[string]any{
		"lat":       coords.Lat,
		"lng":       coords.Lng,
		"type":      in.Type,
		"distance":  in.Distance,
		"duration":  in.Duration,
		"cadence":   in.Cadence,
		"elevation": in.Elevation,
	}
	var w models.Workout
	if err := c.do(ctx, http.MethodPost, "/api/v1/record", body, &w); err != nil {
		return models.Workout{}, err
	}
	return w, nil
}

func (c *HTTPClient) Focus(ctx context.Context, id string) (models.Workout, bool, error) {
	var w models.Workout
	err := c.do(ctx, http.MethodPost, "/api/v1/workouts/"+url.PathEscape(id)+"/focus", nil, &w)
	if isNotFound(err) {
		return models.Workout{}, false, nil
	}
	if err != nil {
		return models.Workout{}, false, err
	}
	return w, true, nil
}

func (c *HTTPClient) Status(ctx context.Context) (controller.Status, error) {
	var st controller.Status
	if err := c.do(ctx, http.MethodGet, "/api/v1/status", nil, &st); err != nil {
		return controller.Status{}, err
	}
	return st, nil
}
