package domain

import (
	"context"
)

// PredictionRepository persists an audit trail of served predictions.
type PredictionRepository interface {
	Save(ctx context.Context, p *Prediction) error
	ListRecent(ctx context.Context, limit int) ([]*Prediction, error)
}

// EventPublisher delivers domain events to a message broker.
type EventPublisher interface {
	Publish(ctx context.Context, subject string, data []byte) error
	Close()
}
