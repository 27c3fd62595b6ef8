package domain

import (
	"time"

	"github.com/google/uuid"
)

// FeatureCount is the dimensionality of every feature vector handed to the classifier.
const FeatureCount = 21

// FeatureNames is the ordered schema of the classifier input. The artifact's own feature list is
// checked against it at load time.
var FeatureNames = [FeatureCount]string{
	"account_length",
	"area_code",
	"number_vmail_messages",
	"total_day_minutes",
	"total_day_calls",
	"total_day_charge",
	"total_eve_minutes",
	"total_eve_calls",
	"total_eve_charge",
	"total_night_minutes",
	"total_night_calls",
	"total_night_charge",
	"total_intl_minutes",
	"total_intl_calls",
	"total_intl_charge",
	"customer_service_calls",
	"international_plan_yes",
	"voice_mail_plan_yes",
	"region_northeast",
	"region_south",
	"region_west",
}

// Scaling modes for the input scaler.
const (
	// ScalingModeNone hands raw feature values to the classifier.
	ScalingModeNone = "none"
	// ScalingModeFitted applies the standardization stored in the trained artifact.
	ScalingModeFitted = "fitted"
)

// FeatureVector is one customer record in classifier order.
type FeatureVector []float64

// CustomerInput holds the raw values entered for one customer.
type CustomerInput struct {
	AccountLength        int64
	AreaCode             int64
	NumberVmailMessages  int64
	TotalDayMinutes      float64
	TotalDayCalls        int64
	TotalDayCharge       float64
	TotalEveMinutes      float64
	TotalEveCalls        int64
	TotalEveCharge       float64
	TotalNightMinutes    float64
	TotalNightCalls      int64
	TotalNightCharge     float64
	TotalIntlMinutes     float64
	TotalIntlCalls       int64
	TotalIntlCharge      float64
	CustomerServiceCalls int64
	InternationalPlan    int64
	VoiceMailPlan        int64
	Region               Region
}

// DefaultCustomerInput returns the values the prediction form is prefilled with.
func DefaultCustomerInput() CustomerInput {
	return CustomerInput{
		AccountLength:        100,
		AreaCode:             408,
		NumberVmailMessages:  0,
		TotalDayMinutes:      184.0,
		TotalDayCalls:        97,
		TotalDayCharge:       31.0,
		TotalEveMinutes:      351.0,
		TotalEveCalls:        80,
		TotalEveCharge:       29.0,
		TotalNightMinutes:    215.0,
		TotalNightCalls:      90,
		TotalNightCharge:     9.0,
		TotalIntlMinutes:     8.0,
		TotalIntlCalls:       4,
		TotalIntlCharge:      2.0,
		CustomerServiceCalls: 1,
		InternationalPlan:    0,
		VoiceMailPlan:        0,
		Region:               RegionNortheast,
	}
}

// Label is the binary classifier output.
type Label int

const (
	LabelRetained Label = 0
	LabelChurned  Label = 1
)

// String returns the text shown to users.
func (l Label) String() string {
	if l == LabelChurned {
		return "Churn"
	}
	return "Non-Churn"
}

// Prediction is the result of one pass through the pipeline.
type Prediction struct {
	ID               uuid.UUID
	Label            Label
	ChurnProbability float64
	ModelVersion     string
	Scaled           bool
	Features         FeatureVector
	Region           Region
	CreatedAt        time.Time
}
