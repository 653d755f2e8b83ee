package errors

// MaxLabels bounds the label alphabet accepted from user input. The number of
// trees of size 2 alone is n², so anything larger is never useful.
const MaxLabels = 1 << 16

// ValidateLabels checks a label count n. Labels are drawn from 1..n.
func ValidateLabels(n int) error {
	if n < 1 {
		return New(ErrCodeInvalidInput, "label count must be >= 1, got %d", n)
	}
	if n > MaxLabels {
		return New(ErrCodeInvalidInput, "label count too large (max %d), got %d", MaxLabels, n)
	}
	return nil
}

// ValidateSize checks a tree size (node count).
func ValidateSize(size int) error {
	if size < 1 {
		return New(ErrCodeInvalidInput, "tree size must be >= 1, got %d", size)
	}
	return nil
}

// ValidateBound checks an optional upper bound where zero means unbounded.
func ValidateBound(name string, v int) error {
	if v < 0 {
		return New(ErrCodeInvalidInput, "%s must be >= 0 (0 = unbounded), got %d", name, v)
	}
	return nil
}
