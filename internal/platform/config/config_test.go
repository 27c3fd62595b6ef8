package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aradsms/churn_dashboard/internal/churn_service/domain"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load("test")
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 8501, cfg.HTTPPort)
	assert.Equal(t, 0, cfg.GRPCHealthPort)
	assert.Equal(t, "artifacts/churn_model.json", cfg.ArtifactPath)
	assert.Equal(t, "data/churn-bigml-80.csv", cfg.DatasetPath)
	assert.Equal(t, ScalingModeNone, cfg.ScalingMode)
	assert.Equal(t, EventBrokerNone, cfg.EventBroker)
	assert.Equal(t, "churn.prediction.made", cfg.PredictionEventsSubject)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_FileAndEnvironment(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "configs"), 0o755))
	yaml := "LOG_LEVEL: debug\nHTTP_PORT: 9000\nSCALING_MODE: Fitted\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "configs", "config.defaults.yaml"), []byte(yaml), 0o600))

	t.Setenv("APP_HTTP_PORT", "9100")
	t.Setenv("APP_EVENT_BROKER", "kafka")
	t.Setenv("APP_KAFKA_BROKERS", "k1:9092, k2:9092,")

	cfg, err := Load("test")
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 9100, cfg.HTTPPort)
	assert.Equal(t, domain.ScalingModeFitted, cfg.ScalingMode)
	assert.Equal(t, EventBrokerKafka, cfg.EventBroker)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokerList())
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			HTTPPort:              8501,
			DatasetPath:           "data.csv",
			ArtifactPath:          "model.json",
			ScalingMode:           ScalingModeNone,
			RequestTimeoutSeconds: 30,
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		substr string
	}{
		{"bad port", func(c *Config) { c.HTTPPort = 0 }, "HTTP_PORT"},
		{"bad grpc port", func(c *Config) { c.GRPCHealthPort = 70000 }, "GRPC_HEALTH_PORT"},
		{"no dataset", func(c *Config) { c.DatasetPath = "" }, "DATASET_PATH"},
		{"no artifact", func(c *Config) { c.ArtifactPath = "" }, "ARTIFACT_PATH"},
		{"unknown scaling", func(c *Config) { c.ScalingMode = "auto" }, "SCALING_MODE"},
		{"unknown broker", func(c *Config) { c.EventBroker = "redis" }, "EVENT_BROKER"},
		{"nats without url", func(c *Config) { c.EventBroker = EventBrokerNATS }, "NATS_URL"},
		{"kafka without brokers", func(c *Config) { c.EventBroker = EventBrokerKafka }, "KAFKA_BROKERS"},
		{"zero timeout", func(c *Config) { c.RequestTimeoutSeconds = 0 }, "REQUEST_TIMEOUT_SECONDS"},
	}

	base := valid()
	require.NoError(t, base.Validate())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.substr)
		})
	}
}
