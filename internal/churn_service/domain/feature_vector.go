package domain

import (
	"math"
)

// BuildFeatureVector validates the input and assembles it into classifier order.
// An unset region is treated as RegionOther.
func BuildFeatureVector(in CustomerInput) (FeatureVector, error) {
	verr := NewValidationError()

	counts := []struct {
		name  string
		value int64
	}{
		{"account_length", in.AccountLength},
		{"area_code", in.AreaCode},
		{"number_vmail_messages", in.NumberVmailMessages},
		{"total_day_calls", in.TotalDayCalls},
		{"total_eve_calls", in.TotalEveCalls},
		{"total_night_calls", in.TotalNightCalls},
		{"total_intl_calls", in.TotalIntlCalls},
		{"customer_service_calls", in.CustomerServiceCalls},
	}
	for _, c := range counts {
		if c.value < 0 {
			verr.Add(c.name, "must not be negative")
		}
	}

	amounts := []struct {
		name  string
		value float64
	}{
		{"total_day_minutes", in.TotalDayMinutes},
		{"total_day_charge", in.TotalDayCharge},
		{"total_eve_minutes", in.TotalEveMinutes},
		{"total_eve_charge", in.TotalEveCharge},
		{"total_night_minutes", in.TotalNightMinutes},
		{"total_night_charge", in.TotalNightCharge},
		{"total_intl_minutes", in.TotalIntlMinutes},
		{"total_intl_charge", in.TotalIntlCharge},
	}
	for _, a := range amounts {
		switch {
		case math.IsNaN(a.value) || math.IsInf(a.value, 0):
			verr.Add(a.name, "must be a finite number")
		case a.value < 0:
			verr.Add(a.name, "must not be negative")
		}
	}

	if in.InternationalPlan != 0 && in.InternationalPlan != 1 {
		verr.Add("international_plan_yes", "must be 0 or 1")
	}
	if in.VoiceMailPlan != 0 && in.VoiceMailPlan != 1 {
		verr.Add("voice_mail_plan_yes", "must be 0 or 1")
	}

	region := in.Region
	if region == "" {
		region = RegionOther
	}
	if !region.Valid() {
		verr.Add("region", "must be one of Northeast, South, West, Other")
	}

	if verr.HasErrors() {
		return nil, verr
	}

	northeast, south, west := region.flags()
	return FeatureVector{
		float64(in.AccountLength),
		float64(in.AreaCode),
		float64(in.NumberVmailMessages),
		in.TotalDayMinutes,
		float64(in.TotalDayCalls),
		in.TotalDayCharge,
		in.TotalEveMinutes,
		float64(in.TotalEveCalls),
		in.TotalEveCharge,
		in.TotalNightMinutes,
		float64(in.TotalNightCalls),
		in.TotalNightCharge,
		in.TotalIntlMinutes,
		float64(in.TotalIntlCalls),
		in.TotalIntlCharge,
		float64(in.CustomerServiceCalls),
		float64(in.InternationalPlan),
		float64(in.VoiceMailPlan),
		northeast,
		south,
		west,
	}, nil
}

// Named pairs each value with its schema name, mostly for logging and audit payloads.
func (v FeatureVector) Named() map[string]float64 {
	out := make(map[string]float64, len(v))
	for i, x := range v {
		if i < FeatureCount {
			out[FeatureNames[i]] = x
		}
	}
	return out
}
