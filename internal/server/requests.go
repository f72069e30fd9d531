package server

import (
	"github.com/cohortpulse/cohortpulse/internal/record"
)

// ClaimRow is the wire shape of one claim-payment row as replayed by a
// client or echoed back from an upload. Dates travel as strings.
type ClaimRow struct {
	ClaimID      string  `json:"claim_id" validate:"required"`
	ServiceDate  string  `json:"service_date" validate:"required"`
	DatePaid     string  `json:"date_paid" validate:"required"`
	BilledAmount float64 `json:"billed_amount"`
	AmountPaid   float64 `json:"amount_paid"`
	Payer        string  `json:"payer"`
	ServiceType  string  `json:"service_type"`
}

// MatrixRequest is the POST cohort-matrix payload: replayed rows plus an
// optional filter.
type MatrixRequest struct {
	Data        []ClaimRow `json:"data" validate:"required,min=1,dive"`
	Payer       string     `json:"payer"`
	ServiceType string     `json:"service_type"`
}

// FilterValues lists the distinct filter options present in a dataset.
type FilterValues struct {
	Payers       []string `json:"payers"`
	ServiceTypes []string `json:"service_types"`
}

// decodeRows converts wire rows into claim records. Rows with unparseable
// dates are dropped and counted, matching the lenient normalization policy.
func decodeRows(rows []ClaimRow) (claims []record.ClaimPayment, skipped int) {
	claims = make([]record.ClaimPayment, 0, len(rows))
	for _, row := range rows {
		service, err := record.ParseDate(row.ServiceDate)
		if err != nil {
			skipped++
			continue
		}
		paid, err := record.ParseDate(row.DatePaid)
		if err != nil {
			skipped++
			continue
		}
		claims = append(claims, record.ClaimPayment{
			ClaimID:      row.ClaimID,
			ServiceDate:  service,
			DatePaid:     paid,
			BilledAmount: row.BilledAmount,
			AmountPaid:   row.AmountPaid,
			Payer:        row.Payer,
			ServiceType:  row.ServiceType,
		})
	}
	return claims, skipped
}

// encodeRows converts claim records back to the wire shape for the upload
// response's retained-data echo.
func encodeRows(claims []record.ClaimPayment) []ClaimRow {
	rows := make([]ClaimRow, 0, len(claims))
	for _, c := range claims {
		rows = append(rows, ClaimRow{
			ClaimID:      c.ClaimID,
			ServiceDate:  c.ServiceDate.Format("2006-01-02"),
			DatePaid:     c.DatePaid.Format("2006-01-02"),
			BilledAmount: c.BilledAmount,
			AmountPaid:   c.AmountPaid,
			Payer:        c.Payer,
			ServiceType:  c.ServiceType,
		})
	}
	return rows
}
