package http

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/aradsms/churn_dashboard/internal/churn_service/app"
	"github.com/aradsms/churn_dashboard/internal/churn_service/dataset"
	"github.com/aradsms/churn_dashboard/internal/churn_service/domain"
)

// DashboardHandler serves the HTML pages: home, data visualization and the prediction form.
type DashboardHandler struct {
	svc    PredictionService
	data   *dataset.Dataset
	logger *slog.Logger
	pages  pageTemplates
}

// NewDashboardHandler parses the embedded page templates.
func NewDashboardHandler(svc PredictionService, data *dataset.Dataset, logger *slog.Logger) (*DashboardHandler, error) {
	pages, err := parsePages()
	if err != nil {
		return nil, err
	}
	return &DashboardHandler{
		svc:    svc,
		data:   data,
		logger: logger.With("component", "dashboard_handler"),
		pages:  pages,
	}, nil
}

// RegisterRoutes sets up the page routes.
func (h *DashboardHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.Home)
	r.Get("/visualization", h.Visualization)
	r.Get("/predict", h.PredictForm)
	r.Post("/predict", h.SubmitPrediction)
}

type homePage struct {
	Active           string
	Summary          dataset.Summary
	ChurnRatePercent float64
	Model            app.ModelInfo
}

func (h *DashboardHandler) Home(w http.ResponseWriter, r *http.Request) {
	summary := h.data.Summary()
	h.pages.render(w, r, h.logger, http.StatusOK, pageHome, homePage{
		Active:           "home",
		Summary:          summary,
		ChurnRatePercent: summary.ChurnRate * 100,
		Model:            h.svc.ModelInfo(),
	})
}

type visualizationPage struct {
	Active     string
	Charges    []dataset.ChargePoint
	StateChurn []dataset.StateChurn
	StateCalls []dataset.StateServiceCalls
}

func (h *DashboardHandler) Visualization(w http.ResponseWriter, r *http.Request) {
	h.pages.render(w, r, h.logger, http.StatusOK, pageVisualization, visualizationPage{
		Active:     "visualization",
		Charges:    h.data.TotalChargesByChurn(),
		StateChurn: h.data.ChurnCountsByState(),
		StateCalls: h.data.ServiceCallsByState(),
	})
}

type formField struct {
	Name  string
	Label string
	Value string
	Error string
	Step  string
	Flag  bool
}

type predictionResult struct {
	Label              string
	Churn              bool
	ProbabilityPercent float64
	ModelVersion       string
	Scaled             bool
}

type predictPage struct {
	Active      string
	Fields      []formField
	Region      string
	RegionError string
	Regions     []domain.Region
	Result      *predictionResult
	Error       string
}

type fieldKind int

const (
	kindCount fieldKind = iota
	kindAmount
	kindFlag
)

// formLayout lists the form inputs in feature order, region excluded.
var formLayout = []struct {
	name  string
	label string
	kind  fieldKind
}{
	{"account_length", "Account Length", kindCount},
	{"area_code", "Area Code", kindCount},
	{"number_vmail_messages", "Number of Voicemail Messages", kindCount},
	{"total_day_minutes", "Total Day Minutes", kindAmount},
	{"total_day_calls", "Total Day Calls", kindCount},
	{"total_day_charge", "Total Day Charge", kindAmount},
	{"total_eve_minutes", "Total Evening Minutes", kindAmount},
	{"total_eve_calls", "Total Evening Calls", kindCount},
	{"total_eve_charge", "Total Evening Charge", kindAmount},
	{"total_night_minutes", "Total Night Minutes", kindAmount},
	{"total_night_calls", "Total Night Calls", kindCount},
	{"total_night_charge", "Total Night Charge", kindAmount},
	{"total_intl_minutes", "Total International Minutes", kindAmount},
	{"total_intl_calls", "Total International Calls", kindCount},
	{"total_intl_charge", "Total International Charge", kindAmount},
	{"customer_service_calls", "Customer Service Calls", kindCount},
	{"international_plan_yes", "International Plan", kindFlag},
	{"voice_mail_plan_yes", "Voice Mail Plan", kindFlag},
}

// defaultFormValues renders DefaultCustomerInput as form values.
func defaultFormValues() url.Values {
	d := domain.DefaultCustomerInput()
	vec, _ := domain.BuildFeatureVector(d)
	values := url.Values{}
	for i, f := range formLayout {
		if f.kind == kindAmount {
			values.Set(f.name, strconv.FormatFloat(vec[i], 'f', 1, 64))
		} else {
			values.Set(f.name, strconv.FormatFloat(vec[i], 'f', 0, 64))
		}
	}
	values.Set("region", string(d.Region))
	return values
}

func newPredictPage(values url.Values, fieldErrors map[string]string) predictPage {
	page := predictPage{
		Active:      "predict",
		Region:      values.Get("region"),
		RegionError: fieldErrors["region"],
		Regions:     domain.Regions,
	}
	if region, err := domain.ParseRegion(page.Region); err == nil {
		page.Region = string(region)
	}
	for _, f := range formLayout {
		field := formField{
			Name:  f.name,
			Label: f.label,
			Value: values.Get(f.name),
			Error: fieldErrors[f.name],
			Step:  "1",
			Flag:  f.kind == kindFlag,
		}
		if f.kind == kindAmount {
			field.Step = "any"
		}
		page.Fields = append(page.Fields, field)
	}
	return page
}

func (h *DashboardHandler) PredictForm(w http.ResponseWriter, r *http.Request) {
	h.pages.render(w, r, h.logger, http.StatusOK, pagePredict, newPredictPage(defaultFormValues(), nil))
}

func (h *DashboardHandler) SubmitPrediction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}

	in, err := domain.ParseCustomerForm(r.PostForm)
	var p *domain.Prediction
	if err == nil {
		p, err = h.svc.Predict(ctx, in)
	}

	var vErr *domain.ValidationError
	switch {
	case errors.As(err, &vErr):
		page := newPredictPage(r.PostForm, vErr.Fields)
		page.Error = "Please correct the highlighted fields."
		h.pages.render(w, r, h.logger, http.StatusUnprocessableEntity, pagePredict, page)
	case err != nil:
		h.logger.ErrorContext(ctx, "Prediction failed", "error", err)
		page := newPredictPage(r.PostForm, nil)
		page.Error = "The prediction could not be computed. Please try again later."
		h.pages.render(w, r, h.logger, http.StatusInternalServerError, pagePredict, page)
	default:
		page := newPredictPage(r.PostForm, nil)
		page.Result = &predictionResult{
			Label:              p.Label.String(),
			Churn:              p.Label == domain.LabelChurned,
			ProbabilityPercent: p.ChurnProbability * 100,
			ModelVersion:       p.ModelVersion,
			Scaled:             p.Scaled,
		}
		h.pages.render(w, r, h.logger, http.StatusOK, pagePredict, page)
	}
}
