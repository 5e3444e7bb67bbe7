package mlclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/andresuchdata/demandcast/internal/config"
	"github.com/andresuchdata/demandcast/internal/domain"
	"github.com/andresuchdata/demandcast/internal/faults"
	"github.com/andresuchdata/demandcast/internal/requestid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return New(config.MLConfig{BaseURL: server.URL, TimeoutSeconds: 2})
}

func sampleInput() domain.ForecastInput {
	date, _ := domain.ParseDate("2026-03-01")
	return domain.ForecastInput{
		Date:      date,
		Category:  "Electronics",
		Region:    "North",
		Price:     12.5,
		Promotion: true,
	}
}

func TestPredictSendsWireFormat(t *testing.T) {
	var captured map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/predict", r.URL.Path)
		require.Equal(t, "req-42", r.Header.Get(requestid.Header))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.Write([]byte(`{"demand": 123.4, "lower_bound": 100.0, "upper_bound": 150.0}`))
	})

	ctx := requestid.WithContext(context.Background(), "req-42")
	prediction, err := client.Predict(ctx, sampleInput())
	require.NoError(t, err)

	assert.Equal(t, 123.4, prediction.Demand)
	require.NotNil(t, prediction.LowerBound)
	assert.Equal(t, 100.0, *prediction.LowerBound)

	// snake_case payload with boolean flags as 0/1
	assert.Equal(t, "2026-03-01", captured["date"])
	assert.Equal(t, float64(1), captured["promotion"])
	assert.Equal(t, float64(0), captured["epidemic"])
	assert.Contains(t, captured, "inventory_level")
	assert.Contains(t, captured, "competitor_pricing")
}

func TestPredictMissingDemandRejected(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"lower_bound": 1.0}`))
	})

	_, err := client.Predict(context.Background(), sampleInput())
	require.Error(t, err)
	assert.True(t, faults.IsKind(err, faults.ProviderRejected))
}

func TestPredictSwapsInvertedBounds(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"demand": 50.0, "lower_bound": 80.0, "upper_bound": 20.0}`))
	})

	prediction, err := client.Predict(context.Background(), sampleInput())
	require.NoError(t, err)
	assert.Equal(t, 20.0, *prediction.LowerBound)
	assert.Equal(t, 80.0, *prediction.UpperBound)
}

func TestPredictServerErrorIsUnavailable(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	_, err := client.Predict(context.Background(), sampleInput())
	require.Error(t, err)
	assert.True(t, faults.IsKind(err, faults.ProviderUnavailable))
}

func TestPredictClientErrorIsRejected(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad feature vector", http.StatusUnprocessableEntity)
	})

	_, err := client.Predict(context.Background(), sampleInput())
	require.Error(t, err)
	assert.True(t, faults.IsKind(err, faults.ProviderRejected))
}

func TestPredictUnreachableHost(t *testing.T) {
	client := New(config.MLConfig{BaseURL: "http://127.0.0.1:1", TimeoutSeconds: 1})

	_, err := client.Predict(context.Background(), sampleInput())
	require.Error(t, err)
	assert.True(t, faults.IsKind(err, faults.ProviderUnavailable))
}

func TestPredictBatchLengthMismatch(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/predict/batch", r.URL.Path)
		w.Write([]byte(`[{"demand": 1.0}]`))
	})

	_, err := client.PredictBatch(context.Background(), []domain.ForecastInput{sampleInput(), sampleInput()})
	require.Error(t, err)
	assert.True(t, faults.IsKind(err, faults.ProviderRejected))
}

func TestPredictBatchPreservesOrder(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"demand": 1.0}, {"demand": 2.0}]`))
	})

	predictions, err := client.PredictBatch(context.Background(), []domain.ForecastInput{sampleInput(), sampleInput()})
	require.NoError(t, err)
	require.Len(t, predictions, 2)
	assert.Equal(t, 1.0, predictions[0].Demand)
	assert.Equal(t, 2.0, predictions[1].Demand)
}

func TestFeatureImportance(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/feature-importance", r.URL.Path)
		w.Write([]byte(`[{"feature": "Price", "importance": 0.4}, {"feature": "Discount", "importance": 0.1}]`))
	})

	importances, err := client.FeatureImportance(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0.4, importances["Price"])
	assert.Equal(t, 0.1, importances["Discount"])
}

func TestHealthy(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": "ok"}`))
	})
	assert.True(t, client.Healthy(context.Background()))

	degraded := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": "degraded"}`))
	})
	assert.False(t, degraded.Healthy(context.Background()))
}
