package model

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/aradsms/churn_dashboard/internal/churn_service/domain"
)

// StandardScaler applies a standardization fitted offline: (x - mean) / scale.
type StandardScaler struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

func (s *StandardScaler) validate(n int) error {
	if len(s.Mean) != n || len(s.Scale) != n {
		return fmt.Errorf("scaler has %d means and %d scales, want %d: %w", len(s.Mean), len(s.Scale), n, domain.ErrDimensionMismatch)
	}
	for i, sc := range s.Scale {
		if sc < 0 {
			return fmt.Errorf("scaler scale[%d] is negative", i)
		}
	}
	return nil
}

// Transform returns a standardized copy of v. A zero scale leaves the centered value unscaled.
func (s *StandardScaler) Transform(v domain.FeatureVector) (domain.FeatureVector, error) {
	if len(v) != len(s.Mean) || len(v) != len(s.Scale) {
		return nil, &domain.InferenceError{Err: fmt.Errorf("scaler expects %d features, got %d: %w", len(s.Mean), len(v), domain.ErrDimensionMismatch)}
	}
	divisor := make([]float64, len(s.Scale))
	for i, sc := range s.Scale {
		divisor[i] = sc
		if sc == 0 {
			divisor[i] = 1
		}
	}
	out := make(domain.FeatureVector, len(v))
	floats.SubTo(out, v, s.Mean)
	floats.Div(out, divisor)
	return out, nil
}
