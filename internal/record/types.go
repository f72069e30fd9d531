// Package record defines the canonical input record shapes and the
// normalization boundary that turns loosely typed rows into them.
package record

import (
	"fmt"
	"time"
)

// Order is a single order-level row used for acquisition-cohort analysis.
type Order struct {
	CustomerID string    `json:"customer_id"`
	OrderDate  time.Time `json:"order_date"`
	// Amount is signed; refunds and adjustments arrive as negative values.
	Amount float64 `json:"order_amount"`
}

// ClaimPayment is a single claim-payment row used for waterfall analysis.
// A claim may appear on multiple rows, one per payment; BilledAmount is the
// claim's gross charge and repeats on every row for that claim.
type ClaimPayment struct {
	ClaimID      string    `json:"claim_id"`
	ServiceDate  time.Time `json:"service_date"`
	DatePaid     time.Time `json:"date_paid"`
	BilledAmount float64   `json:"billed_amount"`
	AmountPaid   float64   `json:"amount_paid"`
	Payer        string    `json:"payer"`
	ServiceType  string    `json:"service_type"`
}

// RawRow is a loosely typed input row keyed by canonicalized column name.
type RawRow map[string]string

// RowError describes a single row that failed normalization.
type RowError struct {
	Row    int    `json:"row"`
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// Error implements the error interface.
func (e RowError) Error() string {
	return fmt.Sprintf("row %d: field %q: %s", e.Row, e.Field, e.Reason)
}

// BatchError is returned in strict mode when any row fails normalization.
type BatchError struct {
	First RowError
	Total int
}

// Error implements the error interface.
func (e *BatchError) Error() string {
	return fmt.Sprintf("%d invalid row(s), first: %s", e.Total, e.First.Error())
}
