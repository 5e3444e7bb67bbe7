// Package mlclient talks to the external demand prediction service.
// Transport failures and 5xx responses surface as PROVIDER_UNAVAILABLE;
// 4xx responses and malformed bodies surface as PROVIDER_REJECTED.
package mlclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/andresuchdata/demandcast/internal/config"
	"github.com/andresuchdata/demandcast/internal/domain"
	"github.com/andresuchdata/demandcast/internal/faults"
	"github.com/andresuchdata/demandcast/internal/requestid"
	"github.com/rs/zerolog/log"
)

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func New(cfg config.MLConfig) *Client {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// predictPayload mirrors the prediction service's wire format. Boolean
// flags travel as 0/1.
type predictPayload struct {
	Date              string  `json:"date"`
	Category          string  `json:"category"`
	Region            string  `json:"region"`
	InventoryLevel    int     `json:"inventory_level"`
	UnitsSold         int     `json:"units_sold"`
	UnitsOrdered      int     `json:"units_ordered"`
	Price             float64 `json:"price"`
	Discount          float64 `json:"discount"`
	WeatherCondition  string  `json:"weather_condition"`
	Promotion         int     `json:"promotion"`
	CompetitorPricing float64 `json:"competitor_pricing"`
	Seasonality       string  `json:"seasonality"`
	Epidemic          int     `json:"epidemic"`
}

type predictResponse struct {
	Demand     *float64 `json:"demand"`
	LowerBound *float64 `json:"lower_bound"`
	UpperBound *float64 `json:"upper_bound"`
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func toPayload(input domain.ForecastInput) predictPayload {
	return predictPayload{
		Date:              input.Date.String(),
		Category:          input.Category,
		Region:            input.Region,
		InventoryLevel:    input.InventoryLevel,
		UnitsSold:         input.UnitsSold,
		UnitsOrdered:      input.UnitsOrdered,
		Price:             input.Price,
		Discount:          input.Discount,
		WeatherCondition:  input.WeatherCondition,
		Promotion:         boolToInt(input.Promotion),
		CompetitorPricing: input.CompetitorPricing,
		Seasonality:       input.Seasonality,
		Epidemic:          boolToInt(input.Epidemic),
	}
}

// Predict requests a single demand prediction.
func (c *Client) Predict(ctx context.Context, input domain.ForecastInput) (domain.Prediction, error) {
	body, err := c.postJSON(ctx, "/predict", toPayload(input))
	if err != nil {
		return domain.Prediction{}, err
	}
	var resp predictResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return domain.Prediction{}, faults.Wrap(faults.ProviderRejected, err, "prediction service returned a malformed response")
	}
	return toPrediction(resp)
}

// PredictBatch requests predictions for several inputs at once. The
// response must match the request in length and order.
func (c *Client) PredictBatch(ctx context.Context, inputs []domain.ForecastInput) ([]domain.Prediction, error) {
	payloads := make([]predictPayload, len(inputs))
	for i, input := range inputs {
		payloads[i] = toPayload(input)
	}
	body, err := c.postJSON(ctx, "/predict/batch", payloads)
	if err != nil {
		return nil, err
	}
	var resp []predictResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, faults.Wrap(faults.ProviderRejected, err, "prediction service returned a malformed batch response")
	}
	if len(resp) != len(inputs) {
		return nil, faults.New(faults.ProviderRejected,
			"prediction service batch size mismatch: sent %d, received %d", len(inputs), len(resp))
	}
	predictions := make([]domain.Prediction, len(resp))
	for i, r := range resp {
		prediction, err := toPrediction(r)
		if err != nil {
			return nil, err
		}
		predictions[i] = prediction
	}
	return predictions, nil
}

// FeatureImportance fetches the model's feature weights.
func (c *Client) FeatureImportance(ctx context.Context) (map[string]float64, error) {
	body, err := c.getJSON(ctx, "/feature-importance")
	if err != nil {
		return nil, err
	}
	var entries []struct {
		Feature    string  `json:"feature"`
		Importance float64 `json:"importance"`
	}
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, faults.Wrap(faults.ProviderRejected, err, "prediction service returned malformed feature importances")
	}
	importances := make(map[string]float64, len(entries))
	for _, entry := range entries {
		importances[entry.Feature] = entry.Importance
	}
	return importances, nil
}

// ModelInfo fetches the live model metadata.
func (c *Client) ModelInfo(ctx context.Context) (map[string]any, error) {
	body, err := c.getJSON(ctx, "/model/info")
	if err != nil {
		return nil, err
	}
	var info map[string]any
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, faults.Wrap(faults.ProviderRejected, err, "prediction service returned malformed model info")
	}
	return info, nil
}

// Healthy reports whether the prediction service answers its health
// probe. Any failure reads as unhealthy.
func (c *Client) Healthy(ctx context.Context) bool {
	body, err := c.getJSON(ctx, "/health")
	if err != nil {
		return false
	}
	var resp struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return false
	}
	return resp.Status == "ok"
}

func toPrediction(resp predictResponse) (domain.Prediction, error) {
	if resp.Demand == nil {
		return domain.Prediction{}, faults.New(faults.ProviderRejected, "prediction service response missing 'demand'")
	}
	lower, upper := resp.LowerBound, resp.UpperBound
	if lower != nil && upper != nil && *lower > *upper {
		lower, upper = upper, lower
	}
	return domain.Prediction{Demand: *resp.Demand, LowerBound: lower, UpperBound: upper}, nil
}

func (c *Client) postJSON(ctx context.Context, path string, payload any) ([]byte, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode prediction request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("build prediction request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

func (c *Client) getJSON(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("build prediction request: %w", err)
	}
	return c.do(req)
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	if id := requestid.FromContext(req.Context()); id != "" {
		req.Header.Set(requestid.Header, id)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, faults.Wrap(faults.ProviderUnavailable, err, "prediction service unreachable")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, faults.Wrap(faults.ProviderUnavailable, err, "prediction service response read failed")
	}

	switch {
	case resp.StatusCode >= 500:
		log.Warn().Int("status", resp.StatusCode).Str("path", req.URL.Path).Msg("prediction service server error")
		return nil, faults.New(faults.ProviderUnavailable, "prediction service error (%d): %s", resp.StatusCode, truncate(body))
	case resp.StatusCode >= 400:
		return nil, faults.New(faults.ProviderRejected, "prediction service rejected request (%d): %s", resp.StatusCode, truncate(body))
	}
	return body, nil
}

func truncate(body []byte) string {
	const limit = 512
	if len(body) > limit {
		return string(body[:limit]) + "..."
	}
	return string(body)
}
