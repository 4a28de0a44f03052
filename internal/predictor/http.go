package predictor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"yield-advisor/internal/features"
)

// HTTPClient calls a remote model service that accepts the feature vector as JSON.
type HTTPClient struct {
	endpoint string
	client   *http.Client
}

// NewHTTPClient creates a client for endpoint. A zero timeout means 10 seconds.
func NewHTTPClient(endpoint string, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPClient{
		endpoint: endpoint,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// Request is the body sent to the model service.
type Request struct {
	Features     []float64 `json:"features"`
	FeatureOrder []string  `json:"feature_order"`
	Version      string    `json:"version"`
}

// Response is the body the model service answers with.
type Response struct {
	Prediction *float64 `json:"prediction"`
}

// Predict posts v to the model service and returns its estimate.
func (c *HTTPClient) Predict(ctx context.Context, v features.Vector) (float64, error) {
	body, err := json.Marshal(Request{
		Features:     v.Slice(),
		FeatureOrder: features.FieldOrder[:],
		Version:      features.Version,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to marshal predictor request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("failed to create predictor request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		reason := "transport"
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			reason = "timeout"
		}
		return 0, &UnavailableError{Reason: reason, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return 0, &UnavailableError{
			Reason: "status",
			Err:    fmt.Errorf("model service returned status %d: %s", resp.StatusCode, bytes.TrimSpace(snippet)),
		}
	}

	var out Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, &UnavailableError{Reason: "decode", Err: fmt.Errorf("failed to decode predictor response: %w", err)}
	}
	if out.Prediction == nil {
		return 0, &UnavailableError{Reason: "decode", Err: errors.New("response has no prediction")}
	}

	return checkFinite(*out.Prediction)
}

func isTimeout(err error) bool {
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}
