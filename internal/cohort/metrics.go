package cohort

import (
	"fmt"

	"github.com/cohortpulse/cohortpulse/internal/record"
)

// Summary holds the headline counts for an analyzed order set.
type Summary struct {
	TotalOrders     int     `json:"total_orders"`
	UniqueCustomers int     `json:"unique_customers"`
	TotalRevenue    float64 `json:"total_revenue"`
	DateRange       string  `json:"date_range"`
	NumCohorts      int     `json:"num_cohorts"`
}

// Metrics holds the derived scalar KPIs.
type Metrics struct {
	LTV                  float64 `json:"ltv"`
	AOV                  float64 `json:"aov"`
	RepeatRate           float64 `json:"repeat_rate"`
	AvgOrdersPerCustomer float64 `json:"avg_orders_per_customer"`
	RepeatCustomers      int     `json:"repeat_customers"`
	OneTimeCustomers     int     `json:"one_time_customers"`
}

// Summarize computes the order-set summary. Empty input yields zero counts
// and an empty date range, not an error.
func Summarize(orders []record.Order, set *RetentionSet) Summary {
	s := Summary{TotalOrders: len(orders), NumCohorts: len(set.Cohorts)}
	if len(orders) == 0 {
		return s
	}

	customers := make(map[string]struct{})
	minDate, maxDate := orders[0].OrderDate, orders[0].OrderDate
	for _, o := range orders {
		customers[o.CustomerID] = struct{}{}
		s.TotalRevenue += o.Amount
		if o.OrderDate.Before(minDate) {
			minDate = o.OrderDate
		}
		if o.OrderDate.After(maxDate) {
			maxDate = o.OrderDate
		}
	}
	s.UniqueCustomers = len(customers)
	s.TotalRevenue = round2(s.TotalRevenue)
	s.DateRange = fmt.Sprintf("%s to %s", minDate.Format("2006-01-02"), maxDate.Format("2006-01-02"))
	return s
}

// DeriveMetrics computes the scalar KPIs from the order set and its
// aggregated matrices.
//
// A repeat customer is one active in at least two distinct calendar months,
// so two orders placed in the same month do not count as a repeat.
func DeriveMetrics(orders []record.Order, set *RetentionSet) Metrics {
	var m Metrics
	if len(orders) == 0 {
		return m
	}

	orderCount := make(map[string]int)
	months := make(map[string]map[Month]struct{})
	var totalRevenue float64
	for _, o := range orders {
		orderCount[o.CustomerID]++
		if months[o.CustomerID] == nil {
			months[o.CustomerID] = make(map[Month]struct{})
		}
		months[o.CustomerID][MonthOf(o.OrderDate)] = struct{}{}
		totalRevenue += o.Amount
	}

	unique := len(orderCount)
	for _, ms := range months {
		if len(ms) >= 2 {
			m.RepeatCustomers++
		}
	}
	m.OneTimeCustomers = unique - m.RepeatCustomers

	m.AOV = totalRevenue / float64(len(orders))
	m.RepeatRate = float64(m.RepeatCustomers) / float64(unique) * 100
	m.AvgOrdersPerCustomer = float64(len(orders)) / float64(unique)
	m.LTV = ProjectLTV(set, totalRevenue, unique)
	return m
}

// ltvTail bounds the geometric extrapolation beyond the observed columns.
const (
	ltvTailMonths  = 24
	ltvTailMinTerm = 0.01
)

// ProjectLTV estimates per-customer lifetime value from the revenue-retention
// decay observed across cohorts.
//
// Formula: with r_k the mean revenue-retention fraction at offset k across
// cohorts that have reached offset k, and ARPC0 the mean month-0 revenue per
// month-0 customer across cohorts,
//
//	LTV = ARPC0 * (r_0 + r_1 + ... + r_K)
//
// extended past the last observed offset K by a geometric tail r_K*d^i with
// decay ratio d = r_K/r_(K-1), applied only when 0 < d < 1 and stopped once
// a term falls below 0.01 or 24 projected months have been added.
//
// With fewer than two observed offsets there is no decay to extrapolate;
// the fallback is average revenue per customer.
func ProjectLTV(set *RetentionSet, totalRevenue float64, uniqueCustomers int) float64 {
	fallback := 0.0
	if uniqueCustomers > 0 {
		fallback = totalRevenue / float64(uniqueCustomers)
	}
	if len(set.Offsets) < 2 {
		return fallback
	}

	// Mean revenue-retention fraction per offset across cohorts.
	pct := set.RevenueRetentionPct()
	if len(pct) == 0 {
		return fallback
	}
	retention := make([]float64, 0, len(set.Offsets))
	for _, offset := range set.Offsets {
		var sum float64
		var n int
		for _, row := range pct {
			if cell, ok := row[offset]; ok {
				sum += cell.Value / 100
				n++
			}
		}
		if n == 0 {
			continue
		}
		retention = append(retention, sum/float64(n))
	}
	if len(retention) < 2 {
		return fallback
	}

	// Mean month-0 revenue per month-0 customer across cohorts.
	var arpcSum float64
	var arpcN int
	for cohort, cells := range set.Revenue {
		base, ok := cells[0]
		count := set.CustomerCount[cohort][0]
		if !ok || count == 0 {
			continue
		}
		arpcSum += base.Value / float64(count)
		arpcN++
	}
	if arpcN == 0 {
		return fallback
	}
	arpc0 := arpcSum / float64(arpcN)

	var multiplier float64
	for _, r := range retention {
		multiplier += r
	}

	// Geometric tail beyond the last observed offset.
	last := retention[len(retention)-1]
	prev := retention[len(retention)-2]
	if prev > 0 {
		decay := last / prev
		if decay > 0 && decay < 1 {
			term := last * decay
			for i := 0; i < ltvTailMonths && term >= ltvTailMinTerm; i++ {
				multiplier += term
				term *= decay
			}
		}
	}

	return round2(arpc0 * multiplier)
}
