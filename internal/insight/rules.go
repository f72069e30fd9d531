package insight

import (
	"fmt"

	"github.com/cohortpulse/cohortpulse/internal/cohort"
)

// Repeat-rate thresholds, in percent.
const (
	repeatRateStrong = 30.0
	repeatRateLow    = 15.0
)

// RepeatRate flags a strong repeat-purchase rate or warns on a low one.
func RepeatRate(ctx *Context) []Insight {
	rate := ctx.Metrics.RepeatRate
	if ctx.Summary.UniqueCustomers == 0 {
		return nil
	}
	switch {
	case rate >= repeatRateStrong:
		return []Insight{{
			Type:  TypePositive,
			Title: "Strong repeat purchases",
			Text:  fmt.Sprintf("%.1f%% of customers have made more than one purchase.", rate),
			Score: rate - repeatRateStrong,
		}}
	case rate < repeatRateLow:
		return []Insight{{
			Type:  TypeWarning,
			Title: "Low repeat rate",
			Text:  fmt.Sprintf("Only %.1f%% of customers return. Consider retention strategies.", rate),
			Score: repeatRateLow - rate,
		}}
	}
	return nil
}

// month1Stats collects month-1 retention across cohorts that have reached it.
func month1Stats(ctx *Context) (best, worst cohort.Month, bestPct, worstPct, mean float64, n int) {
	var sum float64
	for _, c := range ctx.Cohorts {
		cell, ok := ctx.Retention[c][1]
		if !ok {
			continue
		}
		v := cell.Value
		if n == 0 || v > bestPct {
			best, bestPct = c, v
		}
		if n == 0 || v < worstPct {
			worst, worstPct = c, v
		}
		sum += v
		n++
	}
	if n > 0 {
		mean = sum / float64(n)
	}
	return best, worst, bestPct, worstPct, mean, n
}

// TopCohort highlights the cohort whose month-1 retention is at least 20%
// above the cross-cohort average.
func TopCohort(ctx *Context) []Insight {
	best, _, bestPct, _, mean, n := month1Stats(ctx)
	if n < 2 || mean <= 0 || bestPct <= mean*1.2 {
		return nil
	}
	return []Insight{{
		Type:  TypePositive,
		Title: "Top performing cohort",
		Text: fmt.Sprintf("%s cohort has %.1f%% Month 1 retention, %.0f%% above average.",
			best, bestPct, (bestPct/mean-1)*100),
		Score: bestPct - mean,
	}}
}

// UnderperformingCohort warns about the cohort whose month-1 retention is at
// least 20% below the cross-cohort average.
func UnderperformingCohort(ctx *Context) []Insight {
	_, worst, _, worstPct, mean, n := month1Stats(ctx)
	if n < 2 || mean <= 0 || worstPct >= mean*0.8 {
		return nil
	}
	return []Insight{{
		Type:  TypeWarning,
		Title: "Underperforming cohort",
		Text:  fmt.Sprintf("%s cohort has only %.1f%% Month 1 retention.", worst, worstPct),
		Score: mean - worstPct,
	}}
}

// AcquisitionTrend compares the newest three cohort sizes against the oldest
// three and reports growth or decline beyond 20%.
func AcquisitionTrend(ctx *Context) []Insight {
	sizes := ctx.CohortSizes
	if len(sizes) < 3 {
		return nil
	}
	mean3 := func(s []cohort.CohortSize) float64 {
		var sum int
		for _, c := range s {
			sum += c.NewCustomers
		}
		return float64(sum) / float64(len(s))
	}
	older := mean3(sizes[:3])
	recent := mean3(sizes[len(sizes)-3:])
	if older <= 0 {
		return nil
	}

	switch {
	case recent > older*1.2:
		growth := (recent/older - 1) * 100
		return []Insight{{
			Type:  TypePositive,
			Title: "Growing customer acquisition",
			Text:  fmt.Sprintf("Recent cohorts are %.0f%% larger than earlier ones.", growth),
			Score: growth,
		}}
	case recent < older*0.8:
		decline := (1 - recent/older) * 100
		return []Insight{{
			Type:  TypeWarning,
			Title: "Declining acquisition",
			Text:  fmt.Sprintf("Recent cohorts are %.0f%% smaller than earlier ones.", decline),
			Score: decline,
		}}
	}
	return nil
}

// DecliningRetention warns about cohorts whose retention fell across two
// consecutive observed offsets.
func DecliningRetention(ctx *Context) []Insight {
	var out []Insight
	for _, c := range ctx.Cohorts {
		row := ctx.Retention[c]
		// Walk consecutive offset triples present for this cohort.
		for k := 0; ; k++ {
			a, okA := row[k]
			b, okB := row[k+1]
			cc, okC := row[k+2]
			if !okA || !okB || !okC {
				break
			}
			if b.Value < a.Value && cc.Value < b.Value {
				drop := a.Value - cc.Value
				out = append(out, Insight{
					Type:  TypeWarning,
					Title: fmt.Sprintf("Declining retention in %s cohort", c),
					Text: fmt.Sprintf("%s retention fell two periods running, from %.1f%% at Month %d to %.1f%% at Month %d.",
						c, a.Value, k, cc.Value, k+2),
					Score: drop,
				})
				break
			}
		}
	}
	return out
}

// LifetimeValue reports the projected per-customer lifetime value.
func LifetimeValue(ctx *Context) []Insight {
	if ctx.Metrics.LTV <= 0 {
		return nil
	}
	return []Insight{{
		Type:  TypeInfo,
		Title: "Customer lifetime value",
		Text:  fmt.Sprintf("Average customer generates $%.2f in revenue over their lifetime.", ctx.Metrics.LTV),
		Score: 0.5,
	}}
}

// PurchaseFrequency reports the average orders per customer.
func PurchaseFrequency(ctx *Context) []Insight {
	if ctx.Metrics.AvgOrdersPerCustomer <= 0 {
		return nil
	}
	return []Insight{{
		Type:  TypeInfo,
		Title: "Purchase frequency",
		Text:  fmt.Sprintf("Customers place an average of %.1f orders each.", ctx.Metrics.AvgOrdersPerCustomer),
		Score: 0.25,
	}}
}

// longTermRetentionFloor is the month-2 average retention that counts as
// good long-term stickiness, in percent.
const longTermRetentionFloor = 20.0

// LongTermRetention flags a healthy average month-2 retention.
func LongTermRetention(ctx *Context) []Insight {
	var sum float64
	var n int
	for _, c := range ctx.Cohorts {
		if cell, ok := ctx.Retention[c][2]; ok {
			sum += cell.Value
			n++
		}
	}
	if n == 0 {
		return nil
	}
	avg := sum / float64(n)
	if avg < longTermRetentionFloor {
		return nil
	}
	return []Insight{{
		Type:  TypePositive,
		Title: "Good long-term retention",
		Text:  fmt.Sprintf("Average %.1f%% of customers are still active by Month 2.", avg),
		Score: avg - longTermRetentionFloor,
	}}
}
