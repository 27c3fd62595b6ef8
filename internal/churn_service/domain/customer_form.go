package domain

import (
	"errors"
	"net/url"
	"strconv"
	"strings"
)

// ParseCustomerForm reads the prediction form. Integer fields reject fractional values;
// range checks are left to BuildFeatureVector.
func ParseCustomerForm(form url.Values) (CustomerInput, error) {
	verr := NewValidationError()
	var in CustomerInput

	intField := func(name string, dst *int64) {
		raw := strings.TrimSpace(form.Get(name))
		if raw == "" {
			verr.Add(name, "is required")
			return
		}
		v, err := strconv.ParseInt(raw, 10, 64)
		if errors.Is(err, strconv.ErrRange) {
			verr.Add(name, "is too large")
			return
		}
		if err != nil {
			verr.Add(name, "must be a whole number")
			return
		}
		*dst = v
	}
	floatField := func(name string, dst *float64) {
		raw := strings.TrimSpace(form.Get(name))
		if raw == "" {
			verr.Add(name, "is required")
			return
		}
		v, err := strconv.ParseFloat(raw, 64)
		if errors.Is(err, strconv.ErrRange) {
			verr.Add(name, "is too large")
			return
		}
		if err != nil {
			verr.Add(name, "must be a number")
			return
		}
		*dst = v
	}

	intField("account_length", &in.AccountLength)
	intField("area_code", &in.AreaCode)
	intField("number_vmail_messages", &in.NumberVmailMessages)
	floatField("total_day_minutes", &in.TotalDayMinutes)
	intField("total_day_calls", &in.TotalDayCalls)
	floatField("total_day_charge", &in.TotalDayCharge)
	floatField("total_eve_minutes", &in.TotalEveMinutes)
	intField("total_eve_calls", &in.TotalEveCalls)
	floatField("total_eve_charge", &in.TotalEveCharge)
	floatField("total_night_minutes", &in.TotalNightMinutes)
	intField("total_night_calls", &in.TotalNightCalls)
	floatField("total_night_charge", &in.TotalNightCharge)
	floatField("total_intl_minutes", &in.TotalIntlMinutes)
	intField("total_intl_calls", &in.TotalIntlCalls)
	floatField("total_intl_charge", &in.TotalIntlCharge)
	intField("customer_service_calls", &in.CustomerServiceCalls)
	intField("international_plan_yes", &in.InternationalPlan)
	intField("voice_mail_plan_yes", &in.VoiceMailPlan)

	region, err := ParseRegion(form.Get("region"))
	if err != nil {
		verr.Add("region", "must be one of Northeast, South, West, Other")
	}
	in.Region = region

	if verr.HasErrors() {
		return in, verr
	}
	return in, nil
}
