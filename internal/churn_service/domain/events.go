package domain

import (
	"time"

	"github.com/google/uuid"
)

// SubjectPredictionMade is the default subject/topic for PredictionMadeEvent.
const SubjectPredictionMade = "churn.prediction.made"

// PredictionMadeEvent is published after every successful prediction.
type PredictionMadeEvent struct {
	PredictionID     uuid.UUID          `json:"prediction_id"`
	Label            int                `json:"label"`
	LabelText        string             `json:"label_text"`
	ChurnProbability float64            `json:"churn_probability"`
	ModelVersion     string             `json:"model_version"`
	Scaled           bool               `json:"scaled"`
	Region           string             `json:"region"`
	Features         map[string]float64 `json:"features"`
	CreatedAt        time.Time          `json:"created_at"`
}

// NewPredictionMadeEvent builds the event payload for p.
func NewPredictionMadeEvent(p *Prediction) PredictionMadeEvent {
	return PredictionMadeEvent{
		PredictionID:     p.ID,
		Label:            int(p.Label),
		LabelText:        p.Label.String(),
		ChurnProbability: p.ChurnProbability,
		ModelVersion:     p.ModelVersion,
		Scaled:           p.Scaled,
		Region:           string(p.Region),
		Features:         p.Features.Named(),
		CreatedAt:        p.CreatedAt,
	}
}
