package domain

// Line is one row of a server-side cart. Product data is joined from the
// catalog when the cart is read.
type Line struct {
	ID        string
	ProductID string
	Quantity  int
}

func IndexByProduct(lines []Line) map[string]int {
	idx := make(map[string]int, len(lines))
	for i, l := range lines {
		idx[l.ProductID] = i
	}
	return idx
}
