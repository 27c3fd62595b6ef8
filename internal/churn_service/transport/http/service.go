package http

import (
	"context"

	"github.com/aradsms/churn_dashboard/internal/churn_service/app"
	"github.com/aradsms/churn_dashboard/internal/churn_service/domain"
)

// PredictionService is the part of *app.PredictionService the handlers use.
type PredictionService interface {
	Predict(ctx context.Context, in domain.CustomerInput) (*domain.Prediction, error)
	ListRecent(ctx context.Context, limit int) ([]*domain.Prediction, error)
	ModelInfo() app.ModelInfo
}

var _ PredictionService = (*app.PredictionService)(nil)
