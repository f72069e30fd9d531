// Package insight provides the rule-based insight engine that turns cohort
// matrices into a ranked, capped list of natural-language findings.
package insight

import "github.com/cohortpulse/cohortpulse/internal/cohort"

// Insight types.
const (
	TypePositive = "positive"
	TypeWarning  = "warning"
	TypeInfo     = "info"
)

// MaxInsights caps how many insights are surfaced per analysis.
const MaxInsights = 6

// Insight is one generated finding.
type Insight struct {
	Type  string `json:"type"`
	Title string `json:"title"`
	Text  string `json:"text"`

	// Score ranks insights: the magnitude of the deviation that triggered
	// the rule. Not serialized on the wire contract.
	Score float64 `json:"-"`
}

// Context provides all aggregated data the rules examine. It is derived once
// per analysis and passed read-only to every rule.
type Context struct {
	// Summary holds the headline counts.
	Summary cohort.Summary

	// Metrics holds the derived scalar KPIs.
	Metrics cohort.Metrics

	// Cohorts lists cohort months in chronological order.
	Cohorts []cohort.Month

	// Retention is the derived customer-retention percent table.
	Retention map[cohort.Month]map[int]cohort.Cell

	// CohortSizes lists new customers per cohort month, chronological.
	CohortSizes []cohort.CohortSize
}

// NewContext derives a rule context from an aggregated retention set.
func NewContext(set *cohort.RetentionSet, summary cohort.Summary, metrics cohort.Metrics) *Context {
	return &Context{
		Summary:     summary,
		Metrics:     metrics,
		Cohorts:     set.Cohorts,
		Retention:   set.RetentionPct(),
		CohortSizes: set.CohortSizes(),
	}
}

// Rule examines the context and produces zero or more insights.
type Rule func(ctx *Context) []Insight
