package insight

import "sort"

// Rank sorts insights by score descending. Ties break on title so the
// ordering is deterministic for identical input matrices.
func Rank(insights []Insight) []Insight {
	sorted := make([]Insight, len(insights))
	copy(sorted, insights)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Score != sorted[j].Score {
			return sorted[i].Score > sorted[j].Score
		}
		return sorted[i].Title < sorted[j].Title
	})
	return sorted
}
