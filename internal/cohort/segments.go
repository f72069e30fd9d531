package cohort

import (
	"sort"

	"github.com/cohortpulse/cohortpulse/internal/record"
)

// Frequency segment labels, in ascending order-count order.
var frequencyLabels = []string{"1 order", "2 orders", "3-4 orders", "5+ orders"}

// frequencyBucket maps a customer's order count to its frequency segment.
func frequencyBucket(count int) string {
	switch {
	case count == 1:
		return frequencyLabels[0]
	case count == 2:
		return frequencyLabels[1]
	case count <= 4:
		return frequencyLabels[2]
	default:
		return frequencyLabels[3]
	}
}

// Revenue quartile labels, low spenders first. When there are too few
// customers to fill four quartiles, segmentation falls back to halves.
var (
	quartileLabels = []string{"Bottom 25%", "Lower-Mid 25%", "Upper-Mid 25%", "Top 25%"}
	quartileTiers  = []string{"Low Value", "Mid-Low", "Mid-High", "High Value"}
	halfTiers      = []string{"Lower Half", "Upper Half"}
)

// FrequencySegment summarizes the customers in one purchase-frequency bucket.
type FrequencySegment struct {
	Segment      string  `json:"segment"`
	Customers    int     `json:"customers"`
	TotalRevenue float64 `json:"total_revenue"`
	AvgRevenue   float64 `json:"avg_revenue"`
	AvgOrders    float64 `json:"avg_orders"`
	CustomerPct  float64 `json:"customer_pct"`
}

// RevenueSegment summarizes the customers in one revenue quartile.
type RevenueSegment struct {
	Segment      string  `json:"segment"`
	Customers    int     `json:"customers"`
	TotalRevenue float64 `json:"total_revenue"`
	AvgRevenue   float64 `json:"avg_revenue"`
	MinRevenue   float64 `json:"min_revenue"`
	MaxRevenue   float64 `json:"max_revenue"`
	AvgOrders    float64 `json:"avg_orders"`
	RevenuePct   float64 `json:"revenue_pct"`
}

// SegmentRetentionPoint is one (segment, offset) cell of a segmented
// retention curve: distinct customers active at the offset and their share of
// the segment's month-0 base.
type SegmentRetentionPoint struct {
	Segment   string  `json:"segment"`
	Month     int     `json:"month"`
	Customers int     `json:"customers"`
	Retention float64 `json:"retention"`
}

// CohortRevenue is the revenue rollup for one cohort month across all of its
// observed offsets.
type CohortRevenue struct {
	CohortMonth        string  `json:"cohort_month"`
	TotalRevenue       float64 `json:"total_revenue"`
	Customers          int     `json:"customers"`
	RevenuePerCustomer float64 `json:"revenue_per_customer"`
}

// customerStats is the per-customer rollup segmentation keys on.
type customerStats struct {
	id     string
	orders int
	spent  float64
}

func rollupCustomers(orders []record.Order) []customerStats {
	idx := make(map[string]int, len(orders))
	var stats []customerStats
	for _, o := range orders {
		i, ok := idx[o.CustomerID]
		if !ok {
			i = len(stats)
			idx[o.CustomerID] = i
			stats = append(stats, customerStats{id: o.CustomerID})
		}
		stats[i].orders++
		stats[i].spent += o.Amount
	}
	return stats
}

// FrequencySegments buckets customers by order count and summarizes each
// bucket. Segments with no customers are absent; the rest appear in
// ascending frequency order.
func FrequencySegments(orders []record.Order) []FrequencySegment {
	stats := rollupCustomers(orders)
	if len(stats) == 0 {
		return nil
	}

	byLabel := make(map[string]*FrequencySegment, len(frequencyLabels))
	for _, c := range stats {
		label := frequencyBucket(c.orders)
		seg, ok := byLabel[label]
		if !ok {
			seg = &FrequencySegment{Segment: label}
			byLabel[label] = seg
		}
		seg.Customers++
		seg.TotalRevenue += c.spent
		seg.AvgOrders += float64(c.orders)
	}

	total := len(stats)
	out := make([]FrequencySegment, 0, len(byLabel))
	for _, label := range frequencyLabels {
		seg, ok := byLabel[label]
		if !ok {
			continue
		}
		n := float64(seg.Customers)
		seg.TotalRevenue = round2(seg.TotalRevenue)
		seg.AvgRevenue = round2(seg.TotalRevenue / n)
		seg.AvgOrders = round1(seg.AvgOrders / n)
		seg.CustomerPct = round1(n / float64(total) * 100)
		out = append(out, *seg)
	}
	return out
}

// revenueTiers splits customers into spend-ranked groups: quartiles when at
// least four customers exist, halves otherwise. Returned groups are ordered
// low spenders first and never empty.
func revenueTiers(stats []customerStats, labels4, labels2 []string) (groups [][]customerStats, labels []string) {
	if len(stats) == 0 {
		return nil, nil
	}
	sorted := make([]customerStats, len(stats))
	copy(sorted, stats)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].spent != sorted[j].spent {
			return sorted[i].spent < sorted[j].spent
		}
		return sorted[i].id < sorted[j].id
	})

	labels = labels4
	if len(sorted) < len(labels4) {
		labels = labels2
	}
	q := len(labels)
	for i := 0; i < q; i++ {
		lo, hi := i*len(sorted)/q, (i+1)*len(sorted)/q
		if lo == hi {
			continue
		}
		groups = append(groups, sorted[lo:hi])
	}
	if len(groups) < len(labels) {
		labels = labels[len(labels)-len(groups):]
	}
	return groups, labels
}

// RevenueSegments ranks customers by total spend and summarizes each
// quartile, low spenders first.
func RevenueSegments(orders []record.Order) []RevenueSegment {
	groups, labels := revenueTiers(rollupCustomers(orders), quartileLabels, halfTiers)
	if len(groups) == 0 {
		return nil
	}

	var grandTotal float64
	out := make([]RevenueSegment, len(groups))
	for i, group := range groups {
		seg := RevenueSegment{
			Segment:    labels[i],
			Customers:  len(group),
			MinRevenue: group[0].spent,
			MaxRevenue: group[0].spent,
		}
		var orderSum int
		for _, c := range group {
			seg.TotalRevenue += c.spent
			orderSum += c.orders
			if c.spent < seg.MinRevenue {
				seg.MinRevenue = c.spent
			}
			if c.spent > seg.MaxRevenue {
				seg.MaxRevenue = c.spent
			}
		}
		grandTotal += seg.TotalRevenue
		seg.TotalRevenue = round2(seg.TotalRevenue)
		seg.AvgRevenue = round2(seg.TotalRevenue / float64(len(group)))
		seg.MinRevenue = round2(seg.MinRevenue)
		seg.MaxRevenue = round2(seg.MaxRevenue)
		seg.AvgOrders = round1(float64(orderSum) / float64(len(group)))
		out[i] = seg
	}
	for i := range out {
		if grandTotal != 0 {
			out[i].RevenuePct = round1(out[i].TotalRevenue / grandTotal * 100)
		}
	}
	return out
}

// segmentRetention computes a pooled retention curve per segment: distinct
// customers active at each offset across all cohorts, against the segment's
// own month-0 base. Segments with no month-0 activity produce no points.
func segmentRetention(orders []record.Order, segmentOf map[string]string, segmentOrder []string) []SegmentRetentionPoint {
	cohorts := AssignOrderCohorts(orders)

	active := make(map[string]map[int]map[string]struct{})
	for _, o := range orders {
		seg, ok := segmentOf[o.CustomerID]
		if !ok {
			continue
		}
		offset := MonthsBetween(cohorts[o.CustomerID], MonthOf(o.OrderDate))
		if offset < 0 {
			offset = 0
		}
		if active[seg] == nil {
			active[seg] = make(map[int]map[string]struct{})
		}
		if active[seg][offset] == nil {
			active[seg][offset] = make(map[string]struct{})
		}
		active[seg][offset][o.CustomerID] = struct{}{}
	}

	var out []SegmentRetentionPoint
	for _, seg := range segmentOrder {
		cells := active[seg]
		base := len(cells[0])
		if base == 0 {
			continue
		}
		offsets := make([]int, 0, len(cells))
		for off := range cells {
			offsets = append(offsets, off)
		}
		sort.Ints(offsets)
		for _, off := range offsets {
			n := len(cells[off])
			out = append(out, SegmentRetentionPoint{
				Segment:   seg,
				Month:     off,
				Customers: n,
				Retention: round1(float64(n) / float64(base) * 100),
			})
		}
	}
	return out
}

// RetentionByFrequency computes pooled retention curves per purchase-
// frequency segment.
func RetentionByFrequency(orders []record.Order) []SegmentRetentionPoint {
	stats := rollupCustomers(orders)
	segmentOf := make(map[string]string, len(stats))
	for _, c := range stats {
		segmentOf[c.id] = frequencyBucket(c.orders)
	}
	return segmentRetention(orders, segmentOf, frequencyLabels)
}

// RetentionByRevenue computes pooled retention curves per revenue tier.
func RetentionByRevenue(orders []record.Order) []SegmentRetentionPoint {
	groups, labels := revenueTiers(rollupCustomers(orders), quartileTiers, halfTiers)
	segmentOf := make(map[string]string)
	for i, group := range groups {
		for _, c := range group {
			segmentOf[c.id] = labels[i]
		}
	}
	return segmentRetention(orders, segmentOf, labels)
}

// RevenuePerCohort rolls revenue up per cohort month across all observed
// offsets: total, distinct customers, and revenue per customer.
func (s *RetentionSet) RevenuePerCohort() []CohortRevenue {
	out := make([]CohortRevenue, 0, len(s.Cohorts))
	for _, cohort := range s.Cohorts {
		var total float64
		for _, cell := range s.Revenue[cohort] {
			total += cell.Value
		}
		customers := s.CustomerCount[cohort][0]
		cr := CohortRevenue{
			CohortMonth:  string(cohort),
			TotalRevenue: round2(total),
			Customers:    customers,
		}
		if customers > 0 {
			cr.RevenuePerCustomer = round2(total / float64(customers))
		}
		out = append(out, cr)
	}
	return out
}
