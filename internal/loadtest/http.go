package loadtest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/okian/cardwise/internal/domain/profile"
	"github.com/okian/cardwise/internal/domain/recommendation"
)

// apiClient speaks the session API of a cardwise server.
type apiClient struct {
	client  *http.Client
	baseURL string
}

func newAPIClient(baseURL string, timeout time.Duration) *apiClient {
	return &apiClient{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

// sessionView is the part of a session the load run reads back.
type sessionView struct {
	ID         string                  `json:"id"`
	Step       int                     `json:"step"`
	State      string                  `json:"state"`
	Violations []string                `json:"violations"`
	Results    *recommendation.Results `json:"results,omitempty"`
	Error      string                  `json:"error,omitempty"`
}

type transition struct {
	From       int         `json:"from"`
	To         int         `json:"to"`
	Violations []string    `json:"violations"`
	Submitted  bool        `json:"submitted"`
	Session    sessionView `json:"session"`
	Error      *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (c *apiClient) do(ctx context.Context, method, path string, body, out any) (int, error) {
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("failed to marshal request body: %w", err)
		}
		rd = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, fmt.Errorf("failed to read response: %w", err)
	}
	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return resp.StatusCode, fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return resp.StatusCode, nil
}

func (c *apiClient) health(ctx context.Context) error {
	status, err := c.do(ctx, http.MethodGet, "/healthz", nil, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	if status != http.StatusOK {
		return fmt.Errorf("service health check failed with status: %d", status)
	}
	return nil
}

func (c *apiClient) start(ctx context.Context) (sessionView, error) {
	var v sessionView
	status, err := c.do(ctx, http.MethodPost, "/api/v1/sessions", struct{}{}, &v)
	if err != nil {
		return v, err
	}
	if status != http.StatusCreated {
		return v, fmt.Errorf("create session: unexpected status %d", status)
	}
	return v, nil
}

// fill writes every field of d in one atomic patch.
func (c *apiClient) fill(ctx context.Context, id string, d profile.Draft) error {
	values := make(map[string]any, len(profile.All()))
	for _, f := range profile.All() {
		v, err := profile.Value(d, f.Path())
		if err != nil {
			return err
		}
		values[f.Path()] = v
	}
	status, err := c.do(ctx, http.MethodPatch, "/api/v1/sessions/"+id+"/fields", values, nil)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("set fields: unexpected status %d", status)
	}
	return nil
}

func (c *apiClient) advance(ctx context.Context, id string) (int, transition, error) {
	var tr transition
	status, err := c.do(ctx, http.MethodPost, "/api/v1/sessions/"+id+"/advance", nil, &tr)
	return status, tr, err
}

func (c *apiClient) discard(ctx context.Context, id string) error {
	status, err := c.do(ctx, http.MethodDelete, "/api/v1/sessions/"+id, nil, nil)
	if err != nil {
		return err
	}
	if status != http.StatusNoContent && status != http.StatusNotFound {
		return fmt.Errorf("discard session: unexpected status %d", status)
	}
	return nil
}
