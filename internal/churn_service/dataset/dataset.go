// Package dataset loads the customer churn CSV and precomputes the chart aggregations served by the
// dashboard. A Dataset is immutable once loaded.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/aradsms/churn_dashboard/internal/churn_service/domain"
)

const (
	ColumnState                = "State"
	ColumnChurn                = "Churn"
	ColumnTotalDayCharge       = "Total day charge"
	ColumnTotalEveCharge       = "Total eve charge"
	ColumnTotalNightCharge     = "Total night charge"
	ColumnTotalIntlCharge      = "Total intl charge"
	ColumnCustomerServiceCalls = "Customer service calls"
)

// RequiredColumns must all be present in the header.
var RequiredColumns = []string{
	ColumnState,
	ColumnChurn,
	ColumnTotalDayCharge,
	ColumnTotalEveCharge,
	ColumnTotalNightCharge,
	ColumnTotalIntlCharge,
	ColumnCustomerServiceCalls,
}

// Customer is one dataset row restricted to the columns the dashboard uses.
type Customer struct {
	State                string
	Churn                bool
	TotalDayCharge       float64
	TotalEveCharge       float64
	TotalNightCharge     float64
	TotalIntlCharge      float64
	CustomerServiceCalls int
}

// TotalCharges sums the four per-period charges.
func (c Customer) TotalCharges() float64 {
	return c.TotalDayCharge + c.TotalEveCharge + c.TotalNightCharge + c.TotalIntlCharge
}

// ChargePoint is one point of the total-charges scatter plot.
type ChargePoint struct {
	Index        int     `json:"index"`
	TotalCharges float64 `json:"total_charges"`
	Churn        int     `json:"churn"`
}

// StateChurn holds churn counts for one state.
type StateChurn struct {
	State    string `json:"state"`
	Churn    int    `json:"churn"`
	NonChurn int    `json:"non_churn"`
	Total    int    `json:"total"`
}

// StateServiceCalls holds the summed customer service calls for one state.
type StateServiceCalls struct {
	State                string `json:"state"`
	CustomerServiceCalls int    `json:"customer_service_calls"`
}

// Summary holds headline numbers for the home page.
type Summary struct {
	Customers int     `json:"customers"`
	Churned   int     `json:"churned"`
	ChurnRate float64 `json:"churn_rate"`
	States    int     `json:"states"`
}

// Dataset is the loaded table plus its cached aggregations.
type Dataset struct {
	Path      string
	Customers []Customer

	chargePoints []ChargePoint
	stateChurn   []StateChurn
	stateCalls   []StateServiceCalls
	summary      Summary
}

// Load reads the CSV at path. Every failure is an *domain.ArtifactLoadError.
func Load(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &domain.ArtifactLoadError{Path: path, Err: err}
	}
	defer f.Close()

	ds, err := Parse(f)
	if err != nil {
		return nil, &domain.ArtifactLoadError{Path: path, Err: err}
	}
	ds.Path = path
	return ds, nil
}

// Parse reads a churn CSV from r and computes the aggregations.
func Parse(r io.Reader) (*Dataset, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("dataset is empty")
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}
	var missing []string
	for _, col := range RequiredColumns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}

	var customers []Customer
	for line := 2; ; line++ {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		c, err := parseCustomer(rec, index)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		customers = append(customers, c)
	}

	ds := &Dataset{Customers: customers}
	ds.aggregate()
	return ds, nil
}

func parseCustomer(rec []string, index map[string]int) (Customer, error) {
	var c Customer
	var err error

	c.State = strings.TrimSpace(rec[index[ColumnState]])
	if c.State == "" {
		return c, errors.New("empty State")
	}
	if c.Churn, err = parseChurn(rec[index[ColumnChurn]]); err != nil {
		return c, err
	}

	charges := []struct {
		col string
		dst *float64
	}{
		{ColumnTotalDayCharge, &c.TotalDayCharge},
		{ColumnTotalEveCharge, &c.TotalEveCharge},
		{ColumnTotalNightCharge, &c.TotalNightCharge},
		{ColumnTotalIntlCharge, &c.TotalIntlCharge},
	}
	for _, ch := range charges {
		v, err := strconv.ParseFloat(strings.TrimSpace(rec[index[ch.col]]), 64)
		if err != nil {
			return c, fmt.Errorf("%s: %w", ch.col, err)
		}
		*ch.dst = v
	}

	calls, err := strconv.Atoi(strings.TrimSpace(rec[index[ColumnCustomerServiceCalls]]))
	if err != nil {
		return c, fmt.Errorf("%s: %w", ColumnCustomerServiceCalls, err)
	}
	c.CustomerServiceCalls = calls
	return c, nil
}

func parseChurn(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true":
		return true, nil
	case "0", "false":
		return false, nil
	}
	return false, fmt.Errorf("Churn: unrecognized value %q", s)
}

func (d *Dataset) aggregate() {
	d.chargePoints = make([]ChargePoint, len(d.Customers))
	churnByState := make(map[string]*StateChurn)
	callsByState := make(map[string]int)
	churned := 0

	for i, c := range d.Customers {
		churn := 0
		if c.Churn {
			churn = 1
			churned++
		}
		d.chargePoints[i] = ChargePoint{Index: i, TotalCharges: c.TotalCharges(), Churn: churn}

		sc, ok := churnByState[c.State]
		if !ok {
			sc = &StateChurn{State: c.State}
			churnByState[c.State] = sc
		}
		if c.Churn {
			sc.Churn++
		} else {
			sc.NonChurn++
		}
		sc.Total++
		callsByState[c.State] += c.CustomerServiceCalls
	}

	states := make([]string, 0, len(churnByState))
	for s := range churnByState {
		states = append(states, s)
	}
	sort.Strings(states)

	d.stateChurn = make([]StateChurn, 0, len(states))
	d.stateCalls = make([]StateServiceCalls, 0, len(states))
	for _, s := range states {
		d.stateChurn = append(d.stateChurn, *churnByState[s])
		d.stateCalls = append(d.stateCalls, StateServiceCalls{State: s, CustomerServiceCalls: callsByState[s]})
	}

	d.summary = Summary{Customers: len(d.Customers), Churned: churned, States: len(states)}
	if len(d.Customers) > 0 {
		d.summary.ChurnRate = float64(churned) / float64(len(d.Customers))
	}
}

// TotalChargesByChurn returns the scatter plot points, in row order.
func (d *Dataset) TotalChargesByChurn() []ChargePoint { return d.chargePoints }

// ChurnCountsByState returns churn counts per state, sorted by state code.
func (d *Dataset) ChurnCountsByState() []StateChurn { return d.stateChurn }

// ServiceCallsByState returns summed customer service calls per state, sorted by state code.
func (d *Dataset) ServiceCallsByState() []StateServiceCalls { return d.stateCalls }

// Summary returns headline numbers.
func (d *Dataset) Summary() Summary { return d.summary }
