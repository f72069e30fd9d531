package cohort

import (
	"testing"
	"time"

	"github.com/cohortpulse/cohortpulse/internal/record"
)

func claim(id string, service, paid time.Time, billed, amount float64, payer, svc string) record.ClaimPayment {
	return record.ClaimPayment{
		ClaimID: id, ServiceDate: service, DatePaid: paid,
		BilledAmount: billed, AmountPaid: amount,
		Payer: payer, ServiceType: svc,
	}
}

// Worked waterfall example: one claim paid across two months.
func exampleClaims() []record.ClaimPayment {
	return []record.ClaimPayment{
		claim("CLM001", day(2024, time.January, 10), day(2024, time.February, 15), 500, 425, "Aetna", "Consult"),
		claim("CLM001", day(2024, time.January, 10), day(2024, time.March, 3), 500, 50, "Aetna", "Consult"),
	}
}

func TestAssignClaimCohorts(t *testing.T) {
	cohorts := AssignClaimCohorts(exampleClaims())
	if cohorts["CLM001"] != "2024-01" {
		t.Errorf("CLM001 cohort = %s, want 2024-01", cohorts["CLM001"])
	}
}

func TestBuildMatrixGrossDedup(t *testing.T) {
	m := BuildMatrix(exampleClaims(), Filter{})
	if len(m.Rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(m.Rows))
	}
	row := m.Rows[0]
	if row.DOSMonth != "2024-01" {
		t.Errorf("DOS month = %s, want 2024-01", row.DOSMonth)
	}
	if row.GrossCharge.Value != 500 {
		t.Errorf("gross = %v, want 500 counted once across payment rows", row.GrossCharge.Value)
	}
	if row.Payments["2024-02"].Value != 425 {
		t.Errorf("2024-02 = %v, want 425", row.Payments["2024-02"].Value)
	}
	if row.Payments["2024-03"].Value != 50 {
		t.Errorf("2024-03 = %v, want 50", row.Payments["2024-03"].Value)
	}
}

func TestBuildMatrixGrossFirstSeenWins(t *testing.T) {
	claims := []record.ClaimPayment{
		claim("CLM001", day(2024, time.January, 10), day(2024, time.February, 1), 500, 100, "Aetna", "Consult"),
		claim("CLM001", day(2024, time.January, 10), day(2024, time.March, 1), 999, 100, "Aetna", "Consult"),
	}
	m := BuildMatrix(claims, Filter{})
	if g := m.Rows[0].GrossCharge.Value; g != 500 {
		t.Errorf("gross = %v, want first-seen 500", g)
	}
}

func TestBuildMatrixNegativePayments(t *testing.T) {
	claims := []record.ClaimPayment{
		claim("CLM001", day(2024, time.January, 5), day(2024, time.February, 1), 300, 250, "BCBS", "Lab"),
		claim("CLM001", day(2024, time.January, 5), day(2024, time.February, 20), 300, -75, "BCBS", "Lab"),
	}
	m := BuildMatrix(claims, Filter{})
	if v := m.Rows[0].Payments["2024-02"].Value; v != 175 {
		t.Errorf("2024-02 = %v, want 175 with the recoupment netted in", v)
	}
}

func TestBuildMatrixSparseColumns(t *testing.T) {
	m := BuildMatrix(exampleClaims(), Filter{})
	row := m.Rows[0]
	if _, ok := row.Payments["2024-01"]; ok {
		t.Error("payment month with no cash must be absent, not zero")
	}
	if len(m.PaymentMonths) != 2 || m.PaymentMonths[0] != "2024-02" || m.PaymentMonths[1] != "2024-03" {
		t.Errorf("payment months = %v, want [2024-02 2024-03]", m.PaymentMonths)
	}
}

func TestBuildMatrixPaymentBeforeServiceMonth(t *testing.T) {
	// Prepayment: a column may precede the row's own cohort month.
	claims := []record.ClaimPayment{
		claim("CLM001", day(2024, time.March, 10), day(2024, time.February, 1), 200, 200, "Aetna", "Consult"),
	}
	m := BuildMatrix(claims, Filter{})
	if v := m.Rows[0].Payments["2024-02"].Value; v != 200 {
		t.Errorf("2024-02 = %v, want 200", v)
	}
}

func TestBuildMatrixTotals(t *testing.T) {
	claims := append(exampleClaims(),
		claim("CLM002", day(2024, time.February, 1), day(2024, time.March, 10), 300, 120, "BCBS", "Lab"))
	m := BuildMatrix(claims, Filter{})
	if m.Totals.GrossCharge.Value != 800 {
		t.Errorf("total gross = %v, want 800", m.Totals.GrossCharge.Value)
	}
	if v := m.Totals.Payments["2024-03"].Value; v != 170 {
		t.Errorf("total 2024-03 = %v, want 170", v)
	}
	if v := m.Totals.Payments["2024-02"].Value; v != 425 {
		t.Errorf("total 2024-02 = %v, want 425", v)
	}
}

func TestBuildMatrixFilter(t *testing.T) {
	claims := append(exampleClaims(),
		claim("CLM002", day(2024, time.January, 20), day(2024, time.February, 5), 300, 120, "BCBS", "Lab"))

	m := BuildMatrix(claims, Filter{Payer: "BCBS"})
	if len(m.Rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(m.Rows))
	}
	if m.Rows[0].GrossCharge.Value != 300 {
		t.Errorf("filtered gross = %v, want 300", m.Rows[0].GrossCharge.Value)
	}

	// Gross dedup happens inside the filtered subset: a claim whose rows are
	// all filtered out contributes nothing.
	if m.Totals.GrossCharge.Value != 300 {
		t.Errorf("filtered total gross = %v, want 300", m.Totals.GrossCharge.Value)
	}
}

func TestBuildMatrixFilterMonotone(t *testing.T) {
	claims := append(exampleClaims(),
		claim("CLM002", day(2024, time.January, 20), day(2024, time.February, 5), 300, 120, "BCBS", "Lab"))

	all := BuildMatrix(claims, Filter{})
	narrowed := BuildMatrix(claims, Filter{Payer: "Aetna", ServiceType: "Consult"})
	if narrowed.Totals.GrossCharge.Value > all.Totals.GrossCharge.Value {
		t.Error("narrowing a filter must never increase totals")
	}
}

func TestBuildMatrixNoMatch(t *testing.T) {
	m := BuildMatrix(exampleClaims(), Filter{Payer: "Cigna"})
	if len(m.Rows) != 0 || len(m.PaymentMonths) != 0 {
		t.Errorf("no-match filter must yield an empty matrix: %+v", m)
	}
}

func TestBuildMatrixEmpty(t *testing.T) {
	m := BuildMatrix(nil, Filter{})
	if len(m.Rows) != 0 {
		t.Errorf("empty input must yield an empty matrix: %+v", m)
	}
}

func TestBuildMatrixDoesNotMutateInput(t *testing.T) {
	claims := exampleClaims()
	before := claims[0]
	BuildMatrix(claims, Filter{Payer: "Aetna"})
	if claims[0] != before {
		t.Error("filtering must not mutate the record set")
	}
}

func TestFilterValues(t *testing.T) {
	claims := []record.ClaimPayment{
		claim("1", day(2024, time.January, 1), day(2024, time.January, 2), 1, 1, "BCBS", "Lab"),
		claim("2", day(2024, time.January, 1), day(2024, time.January, 2), 1, 1, "Aetna", "Consult"),
		claim("3", day(2024, time.January, 1), day(2024, time.January, 2), 1, 1, "Aetna", ""),
	}
	payers, svcs := FilterValues(claims)
	if len(payers) != 2 || payers[0] != "Aetna" || payers[1] != "BCBS" {
		t.Errorf("payers = %v", payers)
	}
	if len(svcs) != 2 || svcs[0] != "Consult" || svcs[1] != "Lab" {
		t.Errorf("service types = %v", svcs)
	}
}

func TestNewCellZeroish(t *testing.T) {
	if !NewCell(0.4).Zeroish {
		t.Error("|0.4| is under the display threshold")
	}
	if !NewCell(-0.49).Zeroish {
		t.Error("|-0.49| is under the display threshold")
	}
	if NewCell(0.5).Zeroish {
		t.Error("0.5 is at the threshold and must not be zeroish")
	}
}
