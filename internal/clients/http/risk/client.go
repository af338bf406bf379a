package risk

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// EvaluationPath is the risk central scoring endpoint.
const EvaluationPath = "/risk-evaluation"

// DefaultTimeout bounds a single call when no http.Client is supplied.
const DefaultTimeout = 5 * time.Second

// ErrEmptyResponse is returned when the risk central answers without a usable body.
var ErrEmptyResponse = errors.New("risk central returned an empty response")

// EvaluationRequest carries only the member document number.
type EvaluationRequest struct {
	DocumentNumber string `json:"documentNumber"`
}

// EvaluationResponse is the risk central score payload.
type EvaluationResponse struct {
	DocumentNumber string `json:"documentNumber,omitempty"`
	Score          *int   `json:"score"`
	RiskLevel      string `json:"riskLevel"`
	Recommendation string `json:"recommendation"`
}

// Client calls the risk central over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewRiskClient instantiates the risk client. A nil httpClient gets a traced client with
// DefaultTimeout.
func NewRiskClient(baseURL string, httpClient *http.Client) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("risk central base URL is required")
	}
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:   DefaultTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	return &Client{baseURL: baseURL, httpClient: httpClient}, nil
}

// Evaluate requests a score for the document number.
func (c *Client) Evaluate(ctx context.Context, documentNumber string) (*EvaluationResponse, error) {
	if c == nil || c.httpClient == nil {
		return nil, errors.New("risk client not configured")
	}
	documentNumber = strings.TrimSpace(documentNumber)
	if documentNumber == "" {
		return nil, errors.New("document number is required")
	}
	body, err := json.Marshal(EvaluationRequest{DocumentNumber: documentNumber})
	if err != nil {
		return nil, fmt.Errorf("encode risk request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+EvaluationPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build risk request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call risk central: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read risk response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("risk central unexpected status: %s", resp.Status)
	}
	if len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, ErrEmptyResponse
	}
	var out EvaluationResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode risk response: %w", err)
	}
	if out.Score == nil {
		return nil, fmt.Errorf("%w: missing score", ErrEmptyResponse)
	}
	return &out, nil
}
