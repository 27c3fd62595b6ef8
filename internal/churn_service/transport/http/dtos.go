package http

import (
	"time"

	"github.com/google/uuid"

	"github.com/aradsms/churn_dashboard/internal/churn_service/domain"
)

// PredictionRequestDTO is the JSON body of POST /api/v1/predictions.
type PredictionRequestDTO struct {
	AccountLength        *int64   `json:"account_length" validate:"required,min=0"`
	AreaCode             *int64   `json:"area_code" validate:"required,min=0"`
	NumberVmailMessages  *int64   `json:"number_vmail_messages" validate:"required,min=0"`
	TotalDayMinutes      *float64 `json:"total_day_minutes" validate:"required,min=0"`
	TotalDayCalls        *int64   `json:"total_day_calls" validate:"required,min=0"`
	TotalDayCharge       *float64 `json:"total_day_charge" validate:"required,min=0"`
	TotalEveMinutes      *float64 `json:"total_eve_minutes" validate:"required,min=0"`
	TotalEveCalls        *int64   `json:"total_eve_calls" validate:"required,min=0"`
	TotalEveCharge       *float64 `json:"total_eve_charge" validate:"required,min=0"`
	TotalNightMinutes    *float64 `json:"total_night_minutes" validate:"required,min=0"`
	TotalNightCalls      *int64   `json:"total_night_calls" validate:"required,min=0"`
	TotalNightCharge     *float64 `json:"total_night_charge" validate:"required,min=0"`
	TotalIntlMinutes     *float64 `json:"total_intl_minutes" validate:"required,min=0"`
	TotalIntlCalls       *int64   `json:"total_intl_calls" validate:"required,min=0"`
	TotalIntlCharge      *float64 `json:"total_intl_charge" validate:"required,min=0"`
	CustomerServiceCalls *int64   `json:"customer_service_calls" validate:"required,min=0"`
	InternationalPlan    *int64   `json:"international_plan_yes" validate:"required,oneof=0 1"`
	VoiceMailPlan        *int64   `json:"voice_mail_plan_yes" validate:"required,oneof=0 1"`
	// Region is matched case-insensitively; empty means Other.
	Region string `json:"region,omitempty" validate:"max=32"`
}

// toCustomerInput must only be called after validation, when every pointer is set.
func (d PredictionRequestDTO) toCustomerInput() (domain.CustomerInput, error) {
	region, err := domain.ParseRegion(d.Region)
	if err != nil {
		verr := domain.NewValidationError()
		verr.Add("region", "must be one of Northeast, South, West, Other")
		return domain.CustomerInput{}, verr
	}
	return domain.CustomerInput{
		AccountLength:        *d.AccountLength,
		AreaCode:             *d.AreaCode,
		NumberVmailMessages:  *d.NumberVmailMessages,
		TotalDayMinutes:      *d.TotalDayMinutes,
		TotalDayCalls:        *d.TotalDayCalls,
		TotalDayCharge:       *d.TotalDayCharge,
		TotalEveMinutes:      *d.TotalEveMinutes,
		TotalEveCalls:        *d.TotalEveCalls,
		TotalEveCharge:       *d.TotalEveCharge,
		TotalNightMinutes:    *d.TotalNightMinutes,
		TotalNightCalls:      *d.TotalNightCalls,
		TotalNightCharge:     *d.TotalNightCharge,
		TotalIntlMinutes:     *d.TotalIntlMinutes,
		TotalIntlCalls:       *d.TotalIntlCalls,
		TotalIntlCharge:      *d.TotalIntlCharge,
		CustomerServiceCalls: *d.CustomerServiceCalls,
		InternationalPlan:    *d.InternationalPlan,
		VoiceMailPlan:        *d.VoiceMailPlan,
		Region:               region,
	}, nil
}

// PredictionResponseDTO is one served or audited prediction.
type PredictionResponseDTO struct {
	ID               uuid.UUID          `json:"id"`
	Label            int                `json:"label"`
	LabelText        string             `json:"label_text"`
	ChurnProbability float64            `json:"churn_probability"`
	ModelVersion     string             `json:"model_version"`
	Scaled           bool               `json:"scaled"`
	Region           string             `json:"region"`
	Features         map[string]float64 `json:"features,omitempty"`
	CreatedAt        time.Time          `json:"created_at"`
}

func toPredictionResponseDTO(p *domain.Prediction) PredictionResponseDTO {
	return PredictionResponseDTO{
		ID:               p.ID,
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

// ListPredictionsResponseDTO wraps GET /api/v1/predictions.
type ListPredictionsResponseDTO struct {
	Predictions []PredictionResponseDTO `json:"predictions"`
	Count       int                     `json:"count"`
}

// ValidationErrorResponse carries per-field messages with a 422.
type ValidationErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields"`
}
