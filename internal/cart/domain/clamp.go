package domain

// Clamp constrains requested to [1, available]. It returns 0 when nothing can
// be held (no stock or a non-positive request).
func Clamp(requested, available int) int {
	if requested < 1 || available < 1 {
		return 0
	}
	if requested > available {
		return available
	}
	return requested
}

// WithinStock reports whether q satisfies 1 <= q <= available.
func WithinStock(q, available int) bool {
	return q >= 1 && q <= available
}
