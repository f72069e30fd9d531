package cohort

import (
	"testing"
	"time"

	"github.com/cohortpulse/cohortpulse/internal/record"
)

// segmentOrders: A places 1 order, B places 2, C places 3, D places 5,
// spread over months so segmented retention has shape.
func segmentOrders() []record.Order {
	return []record.Order{
		order("A", day(2024, time.January, 5), 10),

		order("B", day(2024, time.January, 10), 20),
		order("B", day(2024, time.February, 10), 20),

		order("C", day(2024, time.January, 15), 30),
		order("C", day(2024, time.February, 15), 30),
		order("C", day(2024, time.March, 15), 30),

		order("D", day(2024, time.January, 20), 50),
		order("D", day(2024, time.January, 25), 50),
		order("D", day(2024, time.February, 20), 50),
		order("D", day(2024, time.March, 20), 50),
		order("D", day(2024, time.April, 20), 50),
	}
}

func TestFrequencyBucket(t *testing.T) {
	cases := map[int]string{
		1: "1 order",
		2: "2 orders",
		3: "3-4 orders",
		4: "3-4 orders",
		5: "5+ orders",
		9: "5+ orders",
	}
	for count, want := range cases {
		if got := frequencyBucket(count); got != want {
			t.Errorf("frequencyBucket(%d) = %q, want %q", count, got, want)
		}
	}
}

func TestFrequencySegments(t *testing.T) {
	segs := FrequencySegments(segmentOrders())
	if len(segs) != 4 {
		t.Fatalf("got %d segments, want 4", len(segs))
	}
	// Ascending frequency order.
	wantOrder := []string{"1 order", "2 orders", "3-4 orders", "5+ orders"}
	for i, w := range wantOrder {
		if segs[i].Segment != w {
			t.Errorf("segment %d = %q, want %q", i, segs[i].Segment, w)
		}
	}

	one := segs[0]
	if one.Customers != 1 || one.TotalRevenue != 10 || one.AvgOrders != 1 {
		t.Errorf("1-order segment = %+v", one)
	}
	if one.CustomerPct != 25 {
		t.Errorf("customer pct = %v, want 25", one.CustomerPct)
	}

	five := segs[3]
	if five.Customers != 1 || five.TotalRevenue != 250 || five.AvgOrders != 5 {
		t.Errorf("5+ segment = %+v", five)
	}
}

func TestFrequencySegmentsSkipsEmptyBuckets(t *testing.T) {
	orders := []record.Order{
		order("A", day(2024, time.January, 1), 10),
		order("B", day(2024, time.January, 2), 10),
	}
	segs := FrequencySegments(orders)
	if len(segs) != 1 || segs[0].Segment != "1 order" {
		t.Errorf("segments = %+v, want only the 1-order bucket", segs)
	}
	if segs[0].CustomerPct != 100 {
		t.Errorf("customer pct = %v, want 100", segs[0].CustomerPct)
	}
}

func TestFrequencySegmentsEmpty(t *testing.T) {
	if segs := FrequencySegments(nil); segs != nil {
		t.Errorf("empty input must yield no segments, got %+v", segs)
	}
}

func TestRevenueSegments(t *testing.T) {
	// Spends: A=10, B=40, C=90, D=250; one customer per quartile.
	segs := RevenueSegments(segmentOrders())
	if len(segs) != 4 {
		t.Fatalf("got %d segments, want 4", len(segs))
	}
	if segs[0].Segment != "Bottom 25%" || segs[3].Segment != "Top 25%" {
		t.Errorf("segment order = %q .. %q", segs[0].Segment, segs[3].Segment)
	}
	bottom := segs[0]
	if bottom.Customers != 1 || bottom.TotalRevenue != 10 || bottom.MinRevenue != 10 || bottom.MaxRevenue != 10 {
		t.Errorf("bottom quartile = %+v", bottom)
	}
	top := segs[3]
	if top.TotalRevenue != 250 || top.AvgOrders != 5 {
		t.Errorf("top quartile = %+v", top)
	}
	// 250 / 390 = 64.1%.
	if top.RevenuePct != 64.1 {
		t.Errorf("top revenue pct = %v, want 64.1", top.RevenuePct)
	}

	var pctSum float64
	for _, s := range segs {
		pctSum += s.RevenuePct
	}
	if pctSum < 99.5 || pctSum > 100.5 {
		t.Errorf("revenue pct sum = %v, want ~100", pctSum)
	}
}

func TestRevenueSegmentsFewCustomersFallsBackToHalves(t *testing.T) {
	orders := []record.Order{
		order("A", day(2024, time.January, 1), 10),
		order("B", day(2024, time.January, 2), 90),
	}
	segs := RevenueSegments(orders)
	if len(segs) != 2 {
		t.Fatalf("got %d segments, want 2", len(segs))
	}
	if segs[0].Segment != "Lower Half" || segs[1].Segment != "Upper Half" {
		t.Errorf("segments = %q, %q", segs[0].Segment, segs[1].Segment)
	}
	if segs[0].TotalRevenue != 10 || segs[1].TotalRevenue != 90 {
		t.Errorf("halves = %+v", segs)
	}
}

func TestRetentionByFrequency(t *testing.T) {
	points := RetentionByFrequency(segmentOrders())
	if len(points) == 0 {
		t.Fatal("expected retention points")
	}

	// Index by segment and month.
	byKey := make(map[string]map[int]SegmentRetentionPoint)
	for _, p := range points {
		if byKey[p.Segment] == nil {
			byKey[p.Segment] = make(map[int]SegmentRetentionPoint)
		}
		byKey[p.Segment][p.Month] = p
	}

	// The 1-order segment exists only at month 0, at 100%.
	one := byKey["1 order"]
	if len(one) != 1 || one[0].Retention != 100 || one[0].Customers != 1 {
		t.Errorf("1-order points = %+v", one)
	}

	// D (5+ orders) is active months 0-3 against a base of 1.
	five := byKey["5+ orders"]
	if five[3].Retention != 100 {
		t.Errorf("5+ month 3 = %+v", five[3])
	}

	// Points within a segment are ordered by month ascending.
	lastMonth := -1
	seg := ""
	for _, p := range points {
		if p.Segment != seg {
			seg, lastMonth = p.Segment, -1
		}
		if p.Month <= lastMonth {
			t.Errorf("months out of order in %q: %d after %d", seg, p.Month, lastMonth)
		}
		lastMonth = p.Month
	}
}

func TestRetentionByRevenue(t *testing.T) {
	points := RetentionByRevenue(segmentOrders())
	if len(points) == 0 {
		t.Fatal("expected retention points")
	}
	segs := make(map[string]bool)
	for _, p := range points {
		segs[p.Segment] = true
		if p.Month == 0 && p.Retention != 100 {
			t.Errorf("month 0 retention = %v for %q", p.Retention, p.Segment)
		}
	}
	for _, want := range []string{"Low Value", "Mid-Low", "Mid-High", "High Value"} {
		if !segs[want] {
			t.Errorf("missing segment %q", want)
		}
	}
}

func TestRevenuePerCohort(t *testing.T) {
	orders := append(segmentOrders(),
		order("E", day(2024, time.February, 1), 75))
	set := AggregateRetention(orders)
	rev := set.RevenuePerCohort()
	if len(rev) != 2 {
		t.Fatalf("got %d cohorts, want 2", len(rev))
	}

	jan := rev[0]
	if jan.CohortMonth != "2024-01" {
		t.Fatalf("first cohort = %s", jan.CohortMonth)
	}
	// All revenue from A-D lands in the January cohort: 10+40+90+250.
	if jan.TotalRevenue != 390 || jan.Customers != 4 {
		t.Errorf("jan = %+v", jan)
	}
	if jan.RevenuePerCustomer != 97.5 {
		t.Errorf("jan revenue per customer = %v, want 97.5", jan.RevenuePerCustomer)
	}

	feb := rev[1]
	if feb.CohortMonth != "2024-02" || feb.TotalRevenue != 75 || feb.Customers != 1 {
		t.Errorf("feb = %+v", feb)
	}
}
