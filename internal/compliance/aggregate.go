package compliance

// Aggregate reduces item statuses to one supplier status. Precedence is fixed:
// any non-compliant item wins, then any item under review. Counts are ignored.
func Aggregate(items []Item) string {
	if len(items) == 0 {
		return StatusUnknown
	}
	review := false
	for _, it := range items {
		switch it.Status {
		case StatusNonCompliant:
			return StatusNonCompliant
		case StatusReview:
			review = true
		}
	}
	if review {
		return StatusReview
	}
	return StatusCompliant
}
