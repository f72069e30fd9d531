package cohort

import (
	"sort"

	"github.com/cohortpulse/cohortpulse/internal/record"
)

// RetentionSet holds the accumulated retention-mode matrices for one record
// set. Count and revenue cells are accumulated in a single pass; the percent
// tables are derived on read against each cohort's month-0 baseline.
//
// Matrices are sparse: a (cohort, offset) pair with no contributing orders is
// absent from the inner map, never stored as zero, so "no data yet" stays
// distinguishable from "zero activity".
type RetentionSet struct {
	// Cohorts lists observed cohort months in chronological order.
	Cohorts []Month

	// Offsets lists observed month offsets in ascending order.
	Offsets []int

	// CustomerCount maps (cohort, offset) to the count of distinct customers
	// active in that offset month.
	CustomerCount map[Month]map[int]int

	// Revenue maps (cohort, offset) to the signed sum of order amounts,
	// rounded to two decimals.
	Revenue map[Month]map[int]Cell

	// ClampedOffsets counts orders whose computed offset was negative and
	// clamped to 0. Should stay 0 given the min-date cohort rule.
	ClampedOffsets int
}

// AssignOrderCohorts computes each customer's cohort: the calendar month of
// their earliest order date. Every order of that customer inherits it.
func AssignOrderCohorts(orders []record.Order) map[string]Month {
	earliest := make(map[string]Month, len(orders))
	for _, o := range orders {
		m := MonthOf(o.OrderDate)
		if cur, ok := earliest[o.CustomerID]; !ok || m < cur {
			earliest[o.CustomerID] = m
		}
	}
	return earliest
}

// AggregateRetention builds the retention-mode matrix set from order records
// in a single pass. Empty input yields an empty set, not an error.
func AggregateRetention(orders []record.Order) *RetentionSet {
	set := &RetentionSet{
		CustomerCount: make(map[Month]map[int]int),
		Revenue:       make(map[Month]map[int]Cell),
	}
	if len(orders) == 0 {
		return set
	}

	cohorts := AssignOrderCohorts(orders)

	// Distinct-customer tracking per cell during the pass.
	seen := make(map[Month]map[int]map[string]struct{})
	revenue := make(map[Month]map[int]float64)

	for _, o := range orders {
		cohort := cohorts[o.CustomerID]
		offset := MonthsBetween(cohort, MonthOf(o.OrderDate))
		if offset < 0 {
			set.ClampedOffsets++
			offset = 0
		}

		if seen[cohort] == nil {
			seen[cohort] = make(map[int]map[string]struct{})
			revenue[cohort] = make(map[int]float64)
		}
		if seen[cohort][offset] == nil {
			seen[cohort][offset] = make(map[string]struct{})
		}
		seen[cohort][offset][o.CustomerID] = struct{}{}
		revenue[cohort][offset] += o.Amount
	}

	offsets := make(map[int]struct{})
	for cohort, cells := range seen {
		set.Cohorts = append(set.Cohorts, cohort)
		set.CustomerCount[cohort] = make(map[int]int, len(cells))
		set.Revenue[cohort] = make(map[int]Cell, len(cells))
		for offset, customers := range cells {
			set.CustomerCount[cohort][offset] = len(customers)
			set.Revenue[cohort][offset] = NewCell(round2(revenue[cohort][offset]))
			offsets[offset] = struct{}{}
		}
	}

	sort.Slice(set.Cohorts, func(i, j int) bool { return set.Cohorts[i] < set.Cohorts[j] })
	for off := range offsets {
		set.Offsets = append(set.Offsets, off)
	}
	sort.Ints(set.Offsets)

	return set
}

// RetentionPct derives the customer-retention percent table: distinct
// customers active at offset k over distinct customers at offset 0, per
// cohort. Cohorts with a zero or absent month-0 baseline produce no row;
// the ratio is undefined there, not a divide-by-zero.
func (s *RetentionSet) RetentionPct() map[Month]map[int]Cell {
	out := make(map[Month]map[int]Cell, len(s.CustomerCount))
	for cohort, cells := range s.CustomerCount {
		base := cells[0]
		if base <= 0 {
			continue
		}
		row := make(map[int]Cell, len(cells))
		for offset, n := range cells {
			row[offset] = NewCell(round1(float64(n) / float64(base) * 100))
		}
		out[cohort] = row
	}
	return out
}

// RevenueRetentionPct derives the revenue-retention percent table against
// each cohort's month-0 revenue baseline.
func (s *RetentionSet) RevenueRetentionPct() map[Month]map[int]Cell {
	out := make(map[Month]map[int]Cell, len(s.Revenue))
	for cohort, cells := range s.Revenue {
		baseCell, ok := cells[0]
		if !ok || baseCell.Value == 0 {
			continue
		}
		base := baseCell.Value
		row := make(map[int]Cell, len(cells))
		for offset, c := range cells {
			row[offset] = NewCell(round1(c.Value / base * 100))
		}
		out[cohort] = row
	}
	return out
}

// CohortSizes returns new-customer counts per cohort month in chronological
// order. A cohort's size is its month-0 distinct customer count.
func (s *RetentionSet) CohortSizes() []CohortSize {
	sizes := make([]CohortSize, 0, len(s.Cohorts))
	for _, cohort := range s.Cohorts {
		sizes = append(sizes, CohortSize{
			CohortMonth:  string(cohort),
			NewCustomers: s.CustomerCount[cohort][0],
		})
	}
	return sizes
}

// RetentionCurve averages each offset's retention percentage across the
// cohorts that have reached that offset, ordered by offset ascending.
func (s *RetentionSet) RetentionCurve() []CurvePoint {
	pct := s.RetentionPct()
	curve := make([]CurvePoint, 0, len(s.Offsets))
	for _, offset := range s.Offsets {
		var sum float64
		var n int
		for _, row := range pct {
			if cell, ok := row[offset]; ok {
				sum += cell.Value
				n++
			}
		}
		if n == 0 {
			continue
		}
		curve = append(curve, CurvePoint{Month: offset, Retention: round1(sum / float64(n))})
	}
	return curve
}
