package catalog

import (
	"sort"
	"strings"
)

// Match reports whether p passes the category and search filters of q.
// Search is a case-insensitive substring match on name or description.
func (q Query) Match(p Product) bool {
	if q.Category != "" && p.Category != q.Category {
		return false
	}
	if q.Search == "" {
		return true
	}
	needle := strings.ToLower(q.Search)
	return strings.Contains(strings.ToLower(p.Name), needle) ||
		strings.Contains(strings.ToLower(p.Description), needle)
}

// SortProducts orders products in place according to q.Sort.
func (q Query) SortProducts(products []Product) {
	var less func(a, b Product) bool
	switch q.Sort {
	case SortPriceAsc:
		less = func(a, b Product) bool { return a.Price.LessThan(b.Price) }
	case SortPriceDesc:
		less = func(a, b Product) bool { return a.Price.GreaterThan(b.Price) }
	case SortRating:
		less = func(a, b Product) bool { return a.Rating > b.Rating }
	default:
		less = func(a, b Product) bool { return a.CreatedAt.After(b.CreatedAt) }
	}
	sort.SliceStable(products, func(i, j int) bool { return less(products[i], products[j]) })
}
