// Package analysis assembles engine output into the response contracts
// shared by the CLI and the HTTP API.
package analysis

import (
	"strconv"

	"github.com/cohortpulse/cohortpulse/internal/cohort"
	"github.com/cohortpulse/cohortpulse/internal/insight"
	"github.com/cohortpulse/cohortpulse/internal/record"
)

// Table is a wire-shape cohort table: cohort month to stringified column key
// to value. Cells with no contributing records are absent, never zero.
type Table map[string]map[string]float64

// Response is the retention analysis response contract.
type Response struct {
	Success  bool              `json:"success"`
	Error    string            `json:"error,omitempty"`
	Summary  cohort.Summary    `json:"summary"`
	Metrics  cohort.Metrics    `json:"metrics"`
	Insights []insight.Insight `json:"insights"`

	RetentionTable        Table `json:"retention_table"`
	RevenueTable          Table `json:"revenue_table"`
	CustomerTable         Table `json:"customer_table"`
	RevenueRetentionTable Table `json:"revenue_retention_table"`

	CohortSizes    []cohort.CohortSize    `json:"cohort_sizes"`
	RetentionCurve []cohort.CurvePoint    `json:"retention_curve"`
	CohortRevenue  []cohort.CohortRevenue `json:"cohort_revenue"`

	FrequencySegments    []cohort.FrequencySegment      `json:"frequency_segments"`
	RevenueSegments      []cohort.RevenueSegment        `json:"revenue_segments"`
	RetentionByFrequency []cohort.SegmentRetentionPoint `json:"retention_by_frequency"`
	RetentionByRevenue   []cohort.SegmentRetentionPoint `json:"retention_by_revenue"`

	// SkippedRows counts input rows dropped during normalization.
	SkippedRows int `json:"skipped_rows,omitempty"`
}

// Run executes the full retention pipeline over normalized orders:
// assign, bucket, aggregate, derive. It never fails; empty input produces a
// successful response with empty tables and zero counts.
func Run(orders []record.Order) *Response {
	set := cohort.AggregateRetention(orders)
	summary := cohort.Summarize(orders, set)
	metrics := cohort.DeriveMetrics(orders, set)
	insights := insight.NewEngine().Run(insight.NewContext(set, summary, metrics))
	if insights == nil {
		insights = []insight.Insight{}
	}

	return &Response{
		Success:               true,
		Summary:               summary,
		Metrics:               metrics,
		Insights:              insights,
		RetentionTable:        flattenCells(set.RetentionPct()),
		RevenueTable:          flattenCells(set.Revenue),
		CustomerTable:         flattenCounts(set.CustomerCount),
		RevenueRetentionTable: flattenCells(set.RevenueRetentionPct()),
		CohortSizes:           set.CohortSizes(),
		RetentionCurve:        set.RetentionCurve(),
		CohortRevenue:         set.RevenuePerCohort(),
		FrequencySegments:     cohort.FrequencySegments(orders),
		RevenueSegments:       cohort.RevenueSegments(orders),
		RetentionByFrequency:  cohort.RetentionByFrequency(orders),
		RetentionByRevenue:    cohort.RetentionByRevenue(orders),
	}
}

// ErrorResponse builds the failure shape for the analyze contract.
func ErrorResponse(msg string) *Response {
	return &Response{Success: false, Error: msg}
}

func flattenCells(m map[cohort.Month]map[int]cohort.Cell) Table {
	out := make(Table, len(m))
	for month, cells := range m {
		row := make(map[string]float64, len(cells))
		for offset, c := range cells {
			row[strconv.Itoa(offset)] = c.Value
		}
		out[string(month)] = row
	}
	return out
}

func flattenCounts(m map[cohort.Month]map[int]int) Table {
	out := make(Table, len(m))
	for month, cells := range m {
		row := make(map[string]float64, len(cells))
		for offset, n := range cells {
			row[strconv.Itoa(offset)] = float64(n)
		}
		out[string(month)] = row
	}
	return out
}
