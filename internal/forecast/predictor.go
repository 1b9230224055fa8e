package forecast

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Predictor is the external forecasting capability. Implementations return
// one predicted feature vector per future step, in the same normalized
// feature space as the input. Any transport or format failure is reported
// as an error; the pipeline treats every error identically.
type Predictor interface {
	Forecast(ctx context.Context, series []Point, horizon int) ([]Point, error)
}

// HTTPPredictor calls a remote prediction service over HTTP.
type HTTPPredictor struct {
	url    string
	client *http.Client
}

// NewHTTPPredictor creates a predictor client for the given endpoint URL.
func NewHTTPPredictor(url string, timeout time.Duration) *HTTPPredictor {
	return &HTTPPredictor{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

type predictRequest struct {
	Series  []Point `json:"series"`
	Horizon int     `json:"horizon"`
}

// Forecast POSTs the normalized series and horizon to the service. The
// service may answer with a bare JSON array of vectors or with an object
// carrying a "predictions" array; anything else is a format error.
func (p *HTTPPredictor) Forecast(ctx context.Context, series []Point, horizon int) ([]Point, error) {
	payload, err := json.Marshal(predictRequest{Series: series, Horizon: horizon})
	if err != nil {
		return nil, fmt.Errorf("failed to encode predict request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build predict request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("predictor request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("predictor returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read predictor response: %w", err)
	}

	return parsePredictions(body)
}

func parsePredictions(body []byte) ([]Point, error) {
	var arr []Point
	if err := json.Unmarshal(body, &arr); err == nil {
		return arr, nil
	}

	var obj struct {
		Predictions []Point `json:"predictions"`
	}
	if err := json.Unmarshal(body, &obj); err != nil || obj.Predictions == nil {
		return nil, fmt.Errorf("malformed predictor response")
	}

	return obj.Predictions, nil
}
