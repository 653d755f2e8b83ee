package search

// Best is the longest sequence length observed. It never decreases.
// Best is owned by one goroutine and is not safe for concurrent use.
type Best struct {
	value int
}

// Observe raises the value to k if k is larger and reports whether it rose.
func (b *Best) Observe(k int) bool {
	if k <= b.value {
		return false
	}
	b.value = k
	return true
}

// Value returns the current best length.
func (b *Best) Value() int { return b.value }
