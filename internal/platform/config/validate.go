package config

import (
	"errors"
	"fmt"
)

// Validate rejects settings the service cannot start with.
func (c *Config) Validate() error {
	var errs []error
	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		errs = append(errs, fmt.Errorf("HTTP_PORT %d out of range", c.HTTPPort))
	}
	if c.GRPCHealthPort < 0 || c.GRPCHealthPort > 65535 {
		errs = append(errs, fmt.Errorf("GRPC_HEALTH_PORT %d out of range", c.GRPCHealthPort))
	}
	if c.DatasetPath == "" {
		errs = append(errs, errors.New("DATASET_PATH is required"))
	}
	if c.ArtifactPath == "" {
		errs = append(errs, errors.New("ARTIFACT_PATH is required"))
	}
	switch c.ScalingMode {
	case ScalingModeNone, ScalingModeFitted:
	default:
		errs = append(errs, fmt.Errorf("SCALING_MODE %q must be %q or %q", c.ScalingMode, ScalingModeNone, ScalingModeFitted))
	}
	switch c.EventBroker {
	case EventBrokerNone:
	case EventBrokerNATS:
		if c.NATSURL == "" {
			errs = append(errs, errors.New("NATS_URL is required when EVENT_BROKER=nats"))
		}
	case EventBrokerKafka:
		if len(c.KafkaBrokerList()) == 0 {
			errs = append(errs, errors.New("KAFKA_BROKERS is required when EVENT_BROKER=kafka"))
		}
	default:
		errs = append(errs, fmt.Errorf("EVENT_BROKER %q must be empty, %q or %q", c.EventBroker, EventBrokerNATS, EventBrokerKafka))
	}
	if c.RequestTimeoutSeconds <= 0 {
		errs = append(errs, fmt.Errorf("REQUEST_TIMEOUT_SECONDS %d must be positive", c.RequestTimeoutSeconds))
	}
	return errors.Join(errs...)
}
