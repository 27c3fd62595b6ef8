package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/aradsms/churn_dashboard/internal/churn_service/domain"
	"github.com/aradsms/churn_dashboard/internal/churn_service/model"
)

// Scaler standardizes a feature vector before classification.
type Scaler interface {
	Transform(v domain.FeatureVector) (domain.FeatureVector, error)
}

// ModelInfo describes the model serving predictions.
type ModelInfo struct {
	ModelVersion   string   `json:"model_version"`
	ArtifactDigest string   `json:"artifact_digest,omitempty"`
	Kind           string   `json:"kind"`
	FeatureNames   []string `json:"feature_names"`
	ScalingMode    string   `json:"scaling_mode"`
	HasScaler      bool     `json:"has_scaler"`
}

// PredictionService runs customer input through the feature builder, the optional scaler and
// the classifier. Audit writes and event publishes are best effort.
type PredictionService struct {
	classifier model.Classifier
	scaler     Scaler // nil when scaling mode is none
	info       ModelInfo
	repo       domain.PredictionRepository // optional
	publisher  domain.EventPublisher       // optional
	subject    string
	logger     *slog.Logger

	now   func() time.Time
	newID func() uuid.UUID
}

// NewPredictionService wires the loaded artifact with the configured scaling mode.
// repo and publisher may be nil.
func NewPredictionService(
	artifact *model.Artifact,
	scalingMode string,
	repo domain.PredictionRepository,
	publisher domain.EventPublisher,
	subject string,
	logger *slog.Logger,
) (*PredictionService, error) {
	if artifact == nil || artifact.Classifier == nil {
		return nil, domain.ErrModelUnavailable
	}
	if subject == "" {
		subject = domain.SubjectPredictionMade
	}

	s := &PredictionService{
		classifier: artifact.Classifier,
		info: ModelInfo{
			ModelVersion:   artifact.ModelVersion,
			ArtifactDigest: artifact.Digest,
			Kind:           artifact.Kind,
			FeatureNames:   artifact.FeatureNames,
			ScalingMode:    scalingMode,
			HasScaler:      artifact.Scaler != nil,
		},
		repo:      repo,
		publisher: publisher,
		subject:   subject,
		logger:    logger.With("component", "prediction_service"),
		now:       func() time.Time { return time.Now().UTC() },
		newID:     uuid.New,
	}

	switch scalingMode {
	case domain.ScalingModeNone:
	case domain.ScalingModeFitted:
		if artifact.Scaler == nil {
			return nil, fmt.Errorf("scaling mode %q: artifact %s has no fitted scaler", scalingMode, artifact.ModelVersion)
		}
		s.scaler = artifact.Scaler
	default:
		return nil, fmt.Errorf("unknown scaling mode %q", scalingMode)
	}
	return s, nil
}

// ModelInfo returns metadata about the serving model.
func (s *PredictionService) ModelInfo() ModelInfo {
	info := s.info
	info.FeatureNames = append([]string(nil), s.info.FeatureNames...)
	return info
}

// Scaled reports whether the classifier sees standardized input.
func (s *PredictionService) Scaled() bool { return s.scaler != nil }

// Predict builds the feature vector for in and classifies it. A *domain.ValidationError means the
// classifier was never invoked; a *domain.InferenceError means it failed.
func (s *PredictionService) Predict(ctx context.Context, in domain.CustomerInput) (*domain.Prediction, error) {
	start := time.Now()

	vec, err := domain.BuildFeatureVector(in)
	if err != nil {
		validationFailuresCounter.Inc()
		s.logger.InfoContext(ctx, "Rejected customer input", "error", err)
		return nil, err
	}

	label, proba, err := s.classify(vec)
	if err != nil {
		inferenceErrorsCounter.Inc()
		s.logger.ErrorContext(ctx, "Inference failed", "model_version", s.info.ModelVersion, "error", err)
		return nil, err
	}
	predictionDurationHist.Observe(time.Since(start).Seconds())

	region := in.Region
	if region == "" {
		region = domain.RegionOther
	}
	p := &domain.Prediction{
		ID:               s.newID(),
		Label:            label,
		ChurnProbability: proba,
		ModelVersion:     s.info.ModelVersion,
		Scaled:           s.Scaled(),
		Features:         vec,
		Region:           region,
		CreatedAt:        s.now(),
	}
	predictionsCounter.WithLabelValues(label.String(), strconv.FormatBool(p.Scaled)).Inc()
	s.logger.InfoContext(ctx, "Prediction served",
		"prediction_id", p.ID, "label", label.String(), "churn_probability", proba, "scaled", p.Scaled)

	s.record(ctx, p)
	return p, nil
}

func (s *PredictionService) classify(vec domain.FeatureVector) (domain.Label, float64, error) {
	input := vec
	if s.scaler != nil {
		scaled, err := s.scaler.Transform(vec)
		if err != nil {
			return 0, 0, asInferenceError(err)
		}
		input = scaled
	}
	label, err := s.classifier.Predict(input)
	if err != nil {
		return 0, 0, asInferenceError(err)
	}
	proba, err := s.classifier.PredictProba(input)
	if err != nil {
		return 0, 0, asInferenceError(err)
	}
	return label, proba, nil
}

func asInferenceError(err error) error {
	var infErr *domain.InferenceError
	if errors.As(err, &infErr) {
		return err
	}
	return &domain.InferenceError{Err: err}
}

// record writes the audit row and publishes the event. Failures are logged and counted only.
func (s *PredictionService) record(ctx context.Context, p *domain.Prediction) {
	if s.repo != nil {
		if err := s.repo.Save(ctx, p); err != nil {
			sideEffectFailuresCounter.WithLabelValues("audit").Inc()
			s.logger.ErrorContext(ctx, "Failed to save prediction audit record", "prediction_id", p.ID, "error", err)
		}
	}
	if s.publisher != nil {
		data, err := json.Marshal(domain.NewPredictionMadeEvent(p))
		if err != nil {
			s.logger.ErrorContext(ctx, "Failed to marshal prediction event", "prediction_id", p.ID, "error", err)
			return
		}
		if err := s.publisher.Publish(ctx, s.subject, data); err != nil {
			sideEffectFailuresCounter.WithLabelValues("event").Inc()
			s.logger.ErrorContext(ctx, "Failed to publish prediction event", "subject", s.subject, "prediction_id", p.ID, "error", err)
		}
	}
}

// ListRecent returns the most recent audited predictions, newest first. Without an audit store the
// result is empty.
func (s *PredictionService) ListRecent(ctx context.Context, limit int) ([]*domain.Prediction, error) {
	if s.repo == nil {
		return []*domain.Prediction{}, nil
	}
	if limit <= 0 {
		limit = 20
	}
	if limit > 500 {
		limit = 500
	}
	preds, err := s.repo.ListRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("listing recent predictions: %w", err)
	}
	return preds, nil
}
