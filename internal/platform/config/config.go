package config

import (
	"log"
	"strings"

	"github.com/spf13/viper"

	"github.com/aradsms/churn_dashboard/internal/churn_service/domain"
)

// Accepted SCALING_MODE values.
const (
	ScalingModeNone   = domain.ScalingModeNone
	ScalingModeFitted = domain.ScalingModeFitted
)

// Event broker backends.
const (
	EventBrokerNone  = ""
	EventBrokerNATS  = "nats"
	EventBrokerKafka = "kafka"
)

// Config holds all configuration for the churn dashboard.
type Config struct {
	LogLevel              string `mapstructure:"LOG_LEVEL"`
	HTTPPort              int    `mapstructure:"HTTP_PORT"`
	GRPCHealthPort        int    `mapstructure:"GRPC_HEALTH_PORT"`
	RequestTimeoutSeconds int    `mapstructure:"REQUEST_TIMEOUT_SECONDS"`

	// Read-only inputs loaded once at startup.
	DatasetPath  string `mapstructure:"DATASET_PATH"`
	ArtifactPath string `mapstructure:"ARTIFACT_PATH"`
	ScalingMode  string `mapstructure:"SCALING_MODE"`

	// Optional prediction audit log. Empty disables it.
	PostgresDSN string `mapstructure:"POSTGRES_DSN"`

	// Optional prediction events.
	EventBroker             string `mapstructure:"EVENT_BROKER"`
	NATSURL                 string `mapstructure:"NATS_URL"`
	KafkaBrokers            string `mapstructure:"KAFKA_BROKERS"` // comma separated
	PredictionEventsSubject string `mapstructure:"PREDICTION_EVENTS_SUBJECT"`

	// Bearer JWT secret guarding /api/v1. Empty leaves the API open.
	APIJWTSecret string `mapstructure:"API_JWT_SECRET"`
}

// KafkaBrokerList splits KafkaBrokers into addresses.
func (c *Config) KafkaBrokerList() []string {
	var brokers []string
	for _, b := range strings.Split(c.KafkaBrokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

// Load reads configs/config.defaults.yaml (if found) and APP_-prefixed environment overrides.
func Load(serviceName string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config.defaults")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.SetEnvPrefix("APP") // APP_LOG_LEVEL, APP_ARTIFACT_PATH etc.

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("HTTP_PORT", 8501)
	v.SetDefault("GRPC_HEALTH_PORT", 0)
	v.SetDefault("REQUEST_TIMEOUT_SECONDS", 30)
	v.SetDefault("DATASET_PATH", "data/churn-bigml-80.csv")
	v.SetDefault("ARTIFACT_PATH", "artifacts/churn_model.json")
	v.SetDefault("SCALING_MODE", ScalingModeNone)
	v.SetDefault("POSTGRES_DSN", "")
	v.SetDefault("EVENT_BROKER", EventBrokerNone)
	v.SetDefault("NATS_URL", "nats://localhost:4222")
	v.SetDefault("KAFKA_BROKERS", "localhost:9092")
	v.SetDefault("PREDICTION_EVENTS_SUBJECT", "churn.prediction.made")
	v.SetDefault("API_JWT_SECRET", "")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Printf("%s: configuration file 'config.defaults.yaml' not found; using defaults and environment variables.", serviceName)
		} else {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	cfg.ScalingMode = strings.ToLower(strings.TrimSpace(cfg.ScalingMode))
	cfg.EventBroker = strings.ToLower(strings.TrimSpace(cfg.EventBroker))
	return &cfg, nil
}
