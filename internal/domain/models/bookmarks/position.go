package bookmarks

// PositionUpdate assigns an absolute position to an item.
// Absolute values keep batch writes idempotent.
type PositionUpdate struct {
	ID       string `json:"id" validate:"required"`
	Position int    `json:"position" validate:"gte=0"`
}

// IsDense reports whether positions are exactly {0, ..., len-1}.
func IsDense(positions []int) bool {
	seen := make([]bool, len(positions))
	for _, p := range positions {
		if p < 0 || p >= len(positions) || seen[p] {
			return false
		}
		seen[p] = true
	}
	return true
}
