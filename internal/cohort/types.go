package cohort

import "math"

// ZeroishThreshold is the display threshold below which a currency magnitude
// renders as empty. It never affects accumulation; sums stay exact.
const ZeroishThreshold = 0.5

// Cell is one numeric aggregate in a matrix. Zeroish marks values whose
// magnitude falls under the display threshold so consumers can render them
// as blank without re-deriving the convention.
type Cell struct {
	Value   float64 `json:"value"`
	Zeroish bool    `json:"zeroish"`
}

// NewCell builds a cell with its Zeroish flag derived from the value.
func NewCell(v float64) Cell {
	return Cell{Value: v, Zeroish: math.Abs(v) < ZeroishThreshold}
}

// CohortSize is one entry of the cohort-sizes sequence: the number of new
// customers acquired in a cohort month.
type CohortSize struct {
	CohortMonth  string `json:"cohort_month"`
	NewCustomers int    `json:"new_customers"`
}

// CurvePoint is one entry of the cross-cohort average retention curve.
type CurvePoint struct {
	Month     int     `json:"month"`
	Retention float64 `json:"retention"`
}

// Filter narrows a claim set by payer and/or service type before
// aggregation. Empty fields match everything. Filters never mutate the
// record set they are applied to.
type Filter struct {
	Payer       string `json:"payer,omitempty"`
	ServiceType string `json:"service_type,omitempty"`
}

// IsZero reports whether the filter matches all records.
func (f Filter) IsZero() bool {
	return f.Payer == "" && f.ServiceType == ""
}

// round1 rounds to one decimal place, the percent-table convention.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// round2 rounds to two decimal places, the currency-table convention.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
