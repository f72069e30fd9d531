package insight

// Engine runs all registered rules against a Context and collects the
// resulting insights.
type Engine struct {
	rules []Rule
	cap   int
}

// NewEngine creates an engine with all built-in rules registered and the
// default insight cap.
func NewEngine() *Engine {
	return &Engine{
		rules: []Rule{
			RepeatRate,
			TopCohort,
			UnderperformingCohort,
			AcquisitionTrend,
			DecliningRetention,
			LifetimeValue,
			PurchaseFrequency,
			LongTermRetention,
		},
		cap: MaxInsights,
	}
}

// Run executes every rule against the context and returns the insights
// ranked by score descending, capped. Given the same matrices the output is
// identical across runs.
func (e *Engine) Run(ctx *Context) []Insight {
	var all []Insight
	for _, rule := range e.rules {
		all = append(all, rule(ctx)...)
	}
	ranked := Rank(all)
	if len(ranked) > e.cap {
		ranked = ranked[:e.cap]
	}
	return ranked
}
