package record

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestCanonicalizeHeader(t *testing.T) {
	cases := map[string]string{
		"Order Date":    "order_date",
		"  customer_id": "customer_id",
		"ORDER AMOUNT":  "order_amount",
		"claim_id":      "claim_id",
	}
	for in, want := range cases {
		if got := CanonicalizeHeader(in); got != want {
			t.Errorf("CanonicalizeHeader(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestReadCSV(t *testing.T) {
	doc := "Customer ID,Order Date,Order Amount\nC001, 2024-01-15 ,50.00\nC002,2024-01-20,\n"
	rows, err := ReadCSV(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[0]["order_date"] != "2024-01-15" {
		t.Errorf("cell not trimmed: %q", rows[0]["order_date"])
	}
	if rows[1]["order_amount"] != "" {
		t.Errorf("empty cell should stay empty, got %q", rows[1]["order_amount"])
	}
}

func TestReadCSVEmpty(t *testing.T) {
	if _, err := ReadCSV(strings.NewReader("")); err == nil {
		t.Fatal("expected error for empty document")
	}
}

func TestParseDateLayouts(t *testing.T) {
	for _, s := range []string{"2024-03-05", "2024-03-05 10:30:00", "2024-03-05T10:30:00", "03/05/2024", "2024/03/05"} {
		d, err := ParseDate(s)
		if err != nil {
			t.Errorf("ParseDate(%q): %v", s, err)
			continue
		}
		if d.Year() != 2024 || d.Month() != time.March || d.Day() != 5 {
			t.Errorf("ParseDate(%q) = %v", s, d)
		}
	}
	if _, err := ParseDate("not-a-date"); err == nil {
		t.Error("expected error for garbage date")
	}
}

func TestParseAmount(t *testing.T) {
	cases := map[string]float64{
		"50.00":      50,
		"$1,234.56":  1234.56,
		" -25.5 ":    -25.5,
		"$-1,000.00": -1000,
	}
	for in, want := range cases {
		got, err := ParseAmount(in)
		if err != nil {
			t.Errorf("ParseAmount(%q): %v", in, err)
			continue
		}
		if got != want {
			t.Errorf("ParseAmount(%q) = %v, want %v", in, got, want)
		}
	}
	if _, err := ParseAmount(""); err == nil {
		t.Error("empty amount must not default to zero")
	}
}

func TestNormalizeOrdersLenient(t *testing.T) {
	rows := []RawRow{
		{"customer_id": "C001", "order_date": "2024-01-15", "order_amount": "50.00"},
		{"customer_id": "", "order_date": "2024-01-16", "order_amount": "10"},
		{"customer_id": "C002", "order_date": "bogus", "order_amount": "10"},
		{"customer_id": "C003", "order_date": "2024-02-01", "order_amount": ""},
		{"customer_id": "C004", "order_date": "2024-02-02", "order_amount": "-20"},
	}
	orders, errs, err := NormalizeOrders(rows, false)
	if err != nil {
		t.Fatalf("lenient mode must not fail the batch: %v", err)
	}
	if len(orders) != 2 {
		t.Fatalf("got %d orders, want 2", len(orders))
	}
	if orders[0].CustomerID != "C001" || orders[1].CustomerID != "C004" {
		t.Errorf("output order must match input order: %+v", orders)
	}
	if orders[1].Amount != -20 {
		t.Errorf("negative amounts must survive: %v", orders[1].Amount)
	}
	if len(errs) != 3 {
		t.Fatalf("got %d row errors, want 3", len(errs))
	}
	if errs[2].Field != "order_amount" {
		t.Errorf("missing amount must be reported, got field %q", errs[2].Field)
	}
}

func TestNormalizeOrdersStrict(t *testing.T) {
	rows := []RawRow{
		{"customer_id": "C001", "order_date": "2024-01-15", "order_amount": "50.00"},
		{"customer_id": "C002", "order_date": "bogus", "order_amount": "10"},
	}
	orders, _, err := NormalizeOrders(rows, true)
	if err == nil {
		t.Fatal("strict mode must fail on an invalid row")
	}
	var be *BatchError
	if !errors.As(err, &be) {
		t.Fatalf("expected *BatchError, got %T", err)
	}
	if be.First.Row != 1 || be.First.Field != "order_date" {
		t.Errorf("wrong first error: %+v", be.First)
	}
	if orders != nil {
		t.Error("strict failure must not return partial output")
	}
}

func TestNormalizeClaims(t *testing.T) {
	rows := []RawRow{
		{
			"claim_id": "CLM001", "service_date": "2024-01-10", "date_paid": "2024-02-15",
			"billed_amount": "$500.00", "amount_paid": "400.00",
			"payer": " Aetna ", "service_type": "Consult",
		},
		{
			"claim_id": "CLM002", "service_date": "2024-01-12", "date_paid": "2024-02-20",
			"billed_amount": "300", "amount_paid": "",
			"payer": "BCBS", "service_type": "Lab",
		},
	}
	claims, errs, err := NormalizeClaims(rows, false)
	if err != nil {
		t.Fatalf("NormalizeClaims: %v", err)
	}
	if len(claims) != 1 || len(errs) != 1 {
		t.Fatalf("got %d claims %d errors, want 1 and 1", len(claims), len(errs))
	}
	if claims[0].Payer != "Aetna" {
		t.Errorf("payer not trimmed: %q", claims[0].Payer)
	}
	if errs[0].Field != "amount_paid" {
		t.Errorf("missing paid amount must be an error, got %q", errs[0].Field)
	}
}

func TestMissingColumns(t *testing.T) {
	rows := []RawRow{{"customer_id": "C001", "order_date": "2024-01-01"}}
	missing := OrderColumns(rows)
	if len(missing) != 1 || missing[0] != "order_amount" {
		t.Errorf("got %v, want [order_amount]", missing)
	}
	if m := OrderColumns(nil); m != nil {
		t.Errorf("empty input should report nothing missing, got %v", m)
	}
}
