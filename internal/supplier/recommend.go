package supplier

import (
	"sort"
	"strings"
)

// DefaultRecommendLimit is used when the caller does not pass a positive limit.
const DefaultRecommendLimit = 3

// Recommendation pairs a supplier with its composite score.
type Recommendation struct {
	Supplier Supplier `json:"supplier"`
	Score    float64  `json:"score"`
}

// CompositeScore averages the rating (scaled to 0-100) with the four performance scores.
func CompositeScore(s Supplier) float64 {
	sum := s.Rating*20 + float64(s.ReliabilityScore+s.QualityScore+s.DeliveryScore+s.CommunicationScore)
	return float64(int(sum/5*10+0.5)) / 10
}

// Recommend ranks active, non non-compliant suppliers by composite score.
// Ties keep catalog order.
func Recommend(suppliers []Supplier, category string, limit int) []Recommendation {
	if limit <= 0 {
		limit = DefaultRecommendLimit
	}
	category = strings.TrimSpace(category)
	out := make([]Recommendation, 0, len(suppliers))
	for _, s := range suppliers {
		if s.Status == StatusInactive || s.ComplianceStatus == ComplianceNonCompliant {
			continue
		}
		if category != "" && !equalFold(s.Category, category) {
			continue
		}
		out = append(out, Recommendation{Supplier: s.clone(), Score: CompositeScore(s)})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
