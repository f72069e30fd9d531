package cohort

import (
	"sort"

	"github.com/cohortpulse/cohortpulse/internal/record"
)

// MatrixRow is one date-of-service cohort row of the waterfall matrix.
// Payments is sparse: a payment month with no cash for this cohort is absent,
// never zero.
type MatrixRow struct {
	DOSMonth    Month          `json:"dos_month"`
	GrossCharge Cell           `json:"gross_charge"`
	Payments    map[Month]Cell `json:"payments"`
}

// MatrixTotals is the synthetic all-cohorts row: total gross charge and
// column-wise payment sums.
type MatrixTotals struct {
	GrossCharge Cell           `json:"gross_charge"`
	Payments    map[Month]Cell `json:"payments"`
}

// Matrix is the waterfall matrix for one filtered claim set: one row per
// date-of-service month, columns keyed by absolute payment month.
type Matrix struct {
	Rows          []MatrixRow  `json:"matrix"`
	PaymentMonths []Month      `json:"payment_months"`
	Totals        MatrixTotals `json:"totals"`
}

// AssignClaimCohorts computes each claim's cohort: the calendar month of its
// service date. Every payment row of the claim inherits it.
func AssignClaimCohorts(claims []record.ClaimPayment) map[string]Month {
	cohorts := make(map[string]Month, len(claims))
	for _, c := range claims {
		if _, ok := cohorts[c.ClaimID]; !ok {
			cohorts[c.ClaimID] = MonthOf(c.ServiceDate)
		}
	}
	return cohorts
}

// BuildMatrix aggregates claim-payment records into a waterfall matrix in a
// single pass over the filtered subset.
//
// Gross charge is deduplicated per claim_id: the first occurrence of a claim
// within the filtered subset contributes its billed amount once, regardless
// of how many payment rows reference the claim. When rows disagree on a
// claim's billed amount, the first-seen value wins.
//
// Payment cells sum amount_paid per (service month, payment month) and
// include negative amounts. A payment month may precede the row's own cohort
// month. Empty input and filters matching nothing both yield an empty matrix.
func BuildMatrix(claims []record.ClaimPayment, filter Filter) *Matrix {
	grossByDOS := make(map[Month]float64)
	cash := make(map[Month]map[Month]float64)
	seenClaims := make(map[string]struct{})
	payMonths := make(map[Month]struct{})
	dosMonths := make(map[Month]struct{})

	for _, c := range claims {
		if filter.Payer != "" && c.Payer != filter.Payer {
			continue
		}
		if filter.ServiceType != "" && c.ServiceType != filter.ServiceType {
			continue
		}

		dos := MonthOf(c.ServiceDate)
		pay := MonthOf(c.DatePaid)
		dosMonths[dos] = struct{}{}
		payMonths[pay] = struct{}{}

		if _, dup := seenClaims[c.ClaimID]; !dup {
			seenClaims[c.ClaimID] = struct{}{}
			grossByDOS[dos] += c.BilledAmount
		}

		if cash[dos] == nil {
			cash[dos] = make(map[Month]float64)
		}
		cash[dos][pay] += c.AmountPaid
	}

	m := &Matrix{
		PaymentMonths: sortedMonths(payMonths),
		Totals:        MatrixTotals{GrossCharge: NewCell(0), Payments: make(map[Month]Cell)},
	}
	if len(dosMonths) == 0 {
		return m
	}

	var totalGross float64
	totalPay := make(map[Month]float64)

	for _, dos := range sortedMonths(dosMonths) {
		row := MatrixRow{
			DOSMonth:    dos,
			GrossCharge: NewCell(round2(grossByDOS[dos])),
			Payments:    make(map[Month]Cell, len(cash[dos])),
		}
		for pay, amt := range cash[dos] {
			row.Payments[pay] = NewCell(round2(amt))
			totalPay[pay] += amt
		}
		totalGross += grossByDOS[dos]
		m.Rows = append(m.Rows, row)
	}

	m.Totals.GrossCharge = NewCell(round2(totalGross))
	for pay, amt := range totalPay {
		m.Totals.Payments[pay] = NewCell(round2(amt))
	}
	return m
}

// FilterValues returns the distinct non-empty payers and service types in
// the claim set, sorted ascending, for populating filter pickers.
func FilterValues(claims []record.ClaimPayment) (payers, serviceTypes []string) {
	pset := make(map[string]struct{})
	sset := make(map[string]struct{})
	for _, c := range claims {
		if c.Payer != "" {
			pset[c.Payer] = struct{}{}
		}
		if c.ServiceType != "" {
			sset[c.ServiceType] = struct{}{}
		}
	}
	for p := range pset {
		payers = append(payers, p)
	}
	for s := range sset {
		serviceTypes = append(serviceTypes, s)
	}
	sort.Strings(payers)
	sort.Strings(serviceTypes)
	return payers, serviceTypes
}

func sortedMonths(set map[Month]struct{}) []Month {
	months := make([]Month, 0, len(set))
	for m := range set {
		months = append(months, m)
	}
	sort.Slice(months, func(i, j int) bool { return months[i] < months[j] })
	return months
}
