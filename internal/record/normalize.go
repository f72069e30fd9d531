package record

import (
	"strconv"
	"strings"
	"time"
)

// dateLayouts are the accepted date formats, tried in order.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"01/02/2006",
	"2006/01/02",
}

// ParseDate parses a date cell against the accepted layouts.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	var lastErr error
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// ParseAmount parses a currency cell. Currency symbols, thousands separators,
// and surrounding whitespace are tolerated; the value must be a finite number.
func ParseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, ",", "")
	return strconv.ParseFloat(s, 64)
}

// orderFields are the required columns for retention-mode rows.
var orderFields = []string{"customer_id", "order_date", "order_amount"}

// claimFields are the required columns for waterfall-mode rows.
var claimFields = []string{"claim_id", "service_date", "date_paid", "billed_amount", "amount_paid", "payer", "service_type"}

// MissingColumns returns required columns absent from the first row's header
// set for the given field list.
func MissingColumns(rows []RawRow, required []string) []string {
	if len(rows) == 0 {
		return nil
	}
	var missing []string
	for _, f := range required {
		if _, ok := rows[0][f]; !ok {
			missing = append(missing, f)
		}
	}
	return missing
}

// OrderColumns returns the required order columns missing from the rows.
func OrderColumns(rows []RawRow) []string { return MissingColumns(rows, orderFields) }

// ClaimColumns returns the required claim columns missing from the rows.
func ClaimColumns(rows []RawRow) []string { return MissingColumns(rows, claimFields) }

// NormalizeOrders validates and coerces raw rows into Order records.
// In strict mode any invalid row fails the whole batch with a BatchError
// carrying the first offending row and field. Otherwise invalid rows are
// dropped and reported per-row. Output order matches input order.
//
// A missing or unparseable amount is always an error for its row; it is
// never defaulted to zero.
func NormalizeOrders(rows []RawRow, strict bool) ([]Order, []RowError, error) {
	orders := make([]Order, 0, len(rows))
	var errs []RowError

	for i, row := range rows {
		o, rerr := normalizeOrder(i, row)
		if rerr != nil {
			errs = append(errs, *rerr)
			continue
		}
		orders = append(orders, o)
	}

	if strict && len(errs) > 0 {
		return nil, errs, &BatchError{First: errs[0], Total: len(errs)}
	}
	return orders, errs, nil
}

func normalizeOrder(idx int, row RawRow) (Order, *RowError) {
	id := strings.TrimSpace(row["customer_id"])
	if id == "" {
		return Order{}, &RowError{Row: idx, Field: "customer_id", Reason: "missing value"}
	}
	date, err := ParseDate(row["order_date"])
	if err != nil || row["order_date"] == "" {
		return Order{}, &RowError{Row: idx, Field: "order_date", Reason: "unparseable date"}
	}
	amt, err := ParseAmount(row["order_amount"])
	if err != nil {
		return Order{}, &RowError{Row: idx, Field: "order_amount", Reason: "unparseable amount"}
	}
	return Order{CustomerID: id, OrderDate: date, Amount: amt}, nil
}

// NormalizeClaims validates and coerces raw rows into ClaimPayment records,
// with the same strictness semantics as NormalizeOrders.
func NormalizeClaims(rows []RawRow, strict bool) ([]ClaimPayment, []RowError, error) {
	claims := make([]ClaimPayment, 0, len(rows))
	var errs []RowError

	for i, row := range rows {
		c, rerr := normalizeClaim(i, row)
		if rerr != nil {
			errs = append(errs, *rerr)
			continue
		}
		claims = append(claims, c)
	}

	if strict && len(errs) > 0 {
		return nil, errs, &BatchError{First: errs[0], Total: len(errs)}
	}
	return claims, errs, nil
}

func normalizeClaim(idx int, row RawRow) (ClaimPayment, *RowError) {
	id := strings.TrimSpace(row["claim_id"])
	if id == "" {
		return ClaimPayment{}, &RowError{Row: idx, Field: "claim_id", Reason: "missing value"}
	}
	service, err := ParseDate(row["service_date"])
	if err != nil || row["service_date"] == "" {
		return ClaimPayment{}, &RowError{Row: idx, Field: "service_date", Reason: "unparseable date"}
	}
	paid, err := ParseDate(row["date_paid"])
	if err != nil || row["date_paid"] == "" {
		return ClaimPayment{}, &RowError{Row: idx, Field: "date_paid", Reason: "unparseable date"}
	}
	billed, err := ParseAmount(row["billed_amount"])
	if err != nil {
		return ClaimPayment{}, &RowError{Row: idx, Field: "billed_amount", Reason: "unparseable amount"}
	}
	amount, err := ParseAmount(row["amount_paid"])
	if err != nil {
		return ClaimPayment{}, &RowError{Row: idx, Field: "amount_paid", Reason: "unparseable amount"}
	}
	return ClaimPayment{
		ClaimID:      id,
		ServiceDate:  service,
		DatePaid:     paid,
		BilledAmount: billed,
		AmountPaid:   amount,
		Payer:        strings.TrimSpace(row["payer"]),
		ServiceType:  strings.TrimSpace(row["service_type"]),
	}, nil
}
