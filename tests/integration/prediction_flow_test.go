package integration_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aradsms/churn_dashboard/internal/churn_service/app"
	"github.com/aradsms/churn_dashboard/internal/churn_service/dataset"
	"github.com/aradsms/churn_dashboard/internal/churn_service/domain"
	"github.com/aradsms/churn_dashboard/internal/churn_service/model"
	"github.com/aradsms/churn_dashboard/internal/churn_service/repository/postgres"
	httptransport "github.com/aradsms/churn_dashboard/internal/churn_service/transport/http"
	"github.com/aradsms/churn_dashboard/internal/platform/config"
	"github.com/aradsms/churn_dashboard/internal/platform/database"
)

const (
	artifactPath = "../../artifacts/churn_model.json"
	datasetPath  = "../../data/churn-bigml-80.csv"
	migration    = "../../migrations/001_create_churn_predictions.sql"
)

// getEnv reads an environment variable or returns a fallback value.
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// startDashboard wires the shipped artifact and dataset exactly like main does.
func startDashboard(t *testing.T, scalingMode string, repo domain.PredictionRepository) *httptest.Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	data, err := dataset.Load(datasetPath)
	require.NoError(t, err)
	artifact, err := model.LoadArtifact(artifactPath)
	require.NoError(t, err)

	svc, err := app.NewPredictionService(artifact, scalingMode, repo, nil, "", logger)
	require.NoError(t, err)
	dashboard, err := httptransport.NewDashboardHandler(svc, data, logger)
	require.NoError(t, err)
	api := httptransport.NewAPIHandler(svc, data, logger, httptransport.NewValidator())

	srv := httptest.NewServer(httptransport.NewRouter(httptransport.RouterConfig{RequestTimeout: 10 * time.Second}, dashboard, api, logger))
	t.Cleanup(srv.Close)
	return srv
}

func customerPayload(serviceCalls int, intlPlan int) map[string]any {
	return map[string]any{
		"account_length": 100, "area_code": 408, "number_vmail_messages": 0,
		"total_day_minutes": 184.0, "total_day_calls": 97, "total_day_charge": 31.0,
		"total_eve_minutes": 351.0, "total_eve_calls": 80, "total_eve_charge": 29.0,
		"total_night_minutes": 215.0, "total_night_calls": 90, "total_night_charge": 9.0,
		"total_intl_minutes": 8.0, "total_intl_calls": 4, "total_intl_charge": 2.0,
		"customer_service_calls": serviceCalls, "international_plan_yes": intlPlan, "voice_mail_plan_yes": 0,
		"region": "Northeast",
	}
}

func predict(t *testing.T, baseURL string, payload map[string]any) (int, httptransport.PredictionResponseDTO) {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	resp, err := http.Post(baseURL+"/api/v1/predictions", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	var out httptransport.PredictionResponseDTO
	if resp.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	}
	return resp.StatusCode, out
}

func TestPredictionFlow_ShippedArtifact(t *testing.T) {
	srv := startDashboard(t, config.ScalingModeNone, nil)

	code, low := predict(t, srv.URL, customerPayload(1, 0))
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Non-Churn", low.LabelText)
	assert.InDelta(t, 0.125, low.ChurnProbability, 1e-9)
	assert.False(t, low.Scaled)
	assert.NotEqual(t, uuid.Nil, low.ID)

	code, high := predict(t, srv.URL, customerPayload(5, 1))
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Churn", high.LabelText)
	assert.InDelta(t, 0.725, high.ChurnProbability, 1e-9)

	code, _ = predict(t, srv.URL, customerPayload(-1, 0))
	assert.Equal(t, http.StatusUnprocessableEntity, code)
}

func TestPredictionFlow_FormSubmission(t *testing.T) {
	srv := startDashboard(t, config.ScalingModeNone, nil)

	form := url.Values{}
	for k, v := range customerPayload(5, 1) {
		b, _ := json.Marshal(v)
		form.Set(k, strings.Trim(string(b), `"`))
	}
	resp, err := http.PostForm(srv.URL+"/predict", form)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "Prediction: Churn")
}

func TestPredictionFlow_FittedScaling(t *testing.T) {
	srv := startDashboard(t, config.ScalingModeFitted, nil)

	code, p := predict(t, srv.URL, customerPayload(1, 0))
	require.Equal(t, http.StatusOK, code)
	assert.True(t, p.Scaled)
	assert.Contains(t, []string{"Churn", "Non-Churn"}, p.LabelText)
	// Features are reported unscaled.
	assert.Equal(t, 408.0, p.Features["area_code"])
}

func TestPredictionFlow_Charts(t *testing.T) {
	srv := startDashboard(t, config.ScalingModeNone, nil)

	resp, err := http.Get(srv.URL + "/api/v1/charts/total-charges")
	require.NoError(t, err)
	defer resp.Body.Close()
	var points []dataset.ChargePoint
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&points))
	assert.Len(t, points, 120)

	resp2, err := http.Get(srv.URL + "/visualization")
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusOK, resp2.StatusCode)
}

// TestPredictionFlow_AuditLog needs a reachable PostgreSQL; set CHURN_TEST_POSTGRES_DSN to run it.
func TestPredictionFlow_AuditLog(t *testing.T) {
	dsn := getEnv("CHURN_TEST_POSTGRES_DSN", "")
	if dsn == "" {
		t.Skip("CHURN_TEST_POSTGRES_DSN not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	dbPool, err := database.NewDBPool(ctx, dsn, logger)
	require.NoError(t, err)
	defer dbPool.Close()

	ddl, err := os.ReadFile(migration)
	require.NoError(t, err)
	_, err = dbPool.Exec(ctx, string(ddl))
	require.NoError(t, err)

	srv := startDashboard(t, config.ScalingModeNone, postgres.NewPgPredictionRepository(dbPool, logger))

	code, p := predict(t, srv.URL, customerPayload(5, 1))
	require.Equal(t, http.StatusOK, code)
	defer func() {
		if _, delErr := dbPool.Exec(context.Background(), "DELETE FROM churn_predictions WHERE id = $1", p.ID); delErr != nil {
			t.Logf("Failed to clean up prediction %s: %v", p.ID, delErr)
		}
	}()

	resp, err := http.Get(srv.URL + "/api/v1/predictions?limit=50")
	require.NoError(t, err)
	defer resp.Body.Close()
	var list httptransport.ListPredictionsResponseDTO
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))

	found := false
	for _, item := range list.Predictions {
		if item.ID == p.ID {
			found = true
			assert.Equal(t, "Churn", item.LabelText)
			assert.Equal(t, 5.0, item.Features["customer_service_calls"])
		}
	}
	assert.True(t, found, "served prediction should be in the audit log")
}
