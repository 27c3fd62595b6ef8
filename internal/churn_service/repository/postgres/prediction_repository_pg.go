package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/aradsms/churn_dashboard/internal/churn_service/domain"
)

// DBTX is satisfied by *pgxpool.Pool, pgx.Tx and pgxmock pools.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PgPredictionRepository struct {
	db     DBTX
	logger *slog.Logger
}

// NewPgPredictionRepository creates a PredictionRepository backed by the churn_predictions table.
func NewPgPredictionRepository(db DBTX, logger *slog.Logger) domain.PredictionRepository {
	return &PgPredictionRepository{db: db, logger: logger.With("component", "prediction_repository_pg")}
}

const insertPredictionSQL = `INSERT INTO churn_predictions (id, label, churn_probability, model_version, scaled, region, features, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

func (r *PgPredictionRepository) Save(ctx context.Context, p *domain.Prediction) error {
	features, err := json.Marshal(p.Features)
	if err != nil {
		return fmt.Errorf("marshal features: %w", err)
	}
	_, err = r.db.Exec(ctx, insertPredictionSQL,
		p.ID, int(p.Label), p.ChurnProbability, p.ModelVersion, p.Scaled, string(p.Region), features, p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert prediction %s: %w", p.ID, err)
	}
	r.logger.DebugContext(ctx, "Prediction saved", "prediction_id", p.ID)
	return nil
}

const listRecentPredictionsSQL = `SELECT id, label, churn_probability, model_version, scaled, region, features, created_at FROM churn_predictions ORDER BY created_at DESC LIMIT $1`

func (r *PgPredictionRepository) ListRecent(ctx context.Context, limit int) ([]*domain.Prediction, error) {
	rows, err := r.db.Query(ctx, listRecentPredictionsSQL, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent predictions: %w", err)
	}
	defer rows.Close()

	preds := make([]*domain.Prediction, 0, limit)
	for rows.Next() {
		var (
			p        domain.Prediction
			label    int
			region   string
			features []byte
		)
		if err := rows.Scan(&p.ID, &label, &p.ChurnProbability, &p.ModelVersion, &p.Scaled, &region, &features, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan prediction: %w", err)
		}
		if err := json.Unmarshal(features, &p.Features); err != nil {
			return nil, fmt.Errorf("decode features of prediction %s: %w", p.ID, err)
		}
		p.Label = domain.Label(label)
		p.Region = domain.Region(region)
		preds = append(preds, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate predictions: %w", err)
	}
	return preds, nil
}
