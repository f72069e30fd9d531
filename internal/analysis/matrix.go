package analysis

import (
	"github.com/cohortpulse/cohortpulse/internal/cohort"
	"github.com/cohortpulse/cohortpulse/internal/record"
)

// MatrixRow is the wire shape of one waterfall matrix row. Payment cells are
// plain numbers; months with no cash for the row are absent from the map.
type MatrixRow struct {
	DOSMonth    string             `json:"dos_month"`
	GrossCharge float64            `json:"gross_charge"`
	Payments    map[string]float64 `json:"payments"`
}

// MatrixTotals is the wire shape of the synthetic totals row.
type MatrixTotals struct {
	GrossCharge float64            `json:"gross_charge"`
	Payments    map[string]float64 `json:"payments"`
}

// MatrixData is the cohort-matrix response contract.
type MatrixData struct {
	Matrix        []MatrixRow  `json:"matrix"`
	PaymentMonths []string     `json:"payment_months"`
	Totals        MatrixTotals `json:"totals"`

	// SkippedRows counts replayed rows dropped for unparseable dates.
	SkippedRows int `json:"skipped_rows,omitempty"`
}

// BuildMatrix aggregates claims under the filter and shapes the result for
// the wire.
func BuildMatrix(claims []record.ClaimPayment, filter cohort.Filter) *MatrixData {
	return ShapeMatrix(cohort.BuildMatrix(claims, filter))
}

// ShapeMatrix converts an engine matrix into its wire shape. A nil matrix
// shapes to an empty response.
func ShapeMatrix(m *cohort.Matrix) *MatrixData {
	if m == nil {
		m = &cohort.Matrix{}
	}
	data := &MatrixData{
		Matrix:        make([]MatrixRow, 0, len(m.Rows)),
		PaymentMonths: make([]string, 0, len(m.PaymentMonths)),
		Totals: MatrixTotals{
			GrossCharge: m.Totals.GrossCharge.Value,
			Payments:    flattenPayments(m.Totals.Payments),
		},
	}
	for _, pm := range m.PaymentMonths {
		data.PaymentMonths = append(data.PaymentMonths, string(pm))
	}
	for _, row := range m.Rows {
		data.Matrix = append(data.Matrix, MatrixRow{
			DOSMonth:    string(row.DOSMonth),
			GrossCharge: row.GrossCharge.Value,
			Payments:    flattenPayments(row.Payments),
		})
	}
	return data
}

func flattenPayments(cells map[cohort.Month]cohort.Cell) map[string]float64 {
	out := make(map[string]float64, len(cells))
	for month, c := range cells {
		out[string(month)] = c.Value
	}
	return out
}
