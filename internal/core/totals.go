package core

import "iter"

// CategoryAmount is one row of a category breakdown.
type CategoryAmount struct {
	Category string  `json:"category"`
	Total    float64 `json:"total"`
}

// CategoryTotals maps category labels to running sums and remembers the order
// in which categories were first seen. Listings iterate in that order.
type CategoryTotals struct {
	keys   []string
	totals map[string]float64
}

func NewCategoryTotals() *CategoryTotals {
	return &CategoryTotals{totals: make(map[string]float64)}
}

// Add accumulates amount under category.
func (c *CategoryTotals) Add(category string, amount float64) {
	if _, ok := c.totals[category]; !ok {
		c.keys = append(c.keys, category)
	}
	c.totals[category] += amount
}

// Get returns the total for category.
func (c *CategoryTotals) Get(category string) (float64, bool) {
	v, ok := c.totals[category]
	return v, ok
}

func (c *CategoryTotals) Len() int {
	return len(c.keys)
}

// All iterates categories in insertion order.
func (c *CategoryTotals) All() iter.Seq2[string, float64] {
	return func(yield func(string, float64) bool) {
		for _, k := range c.keys {
			if !yield(k, c.totals[k]) {
				return
			}
		}
	}
}

// Entries returns the breakdown as a slice in insertion order.
func (c *CategoryTotals) Entries() []CategoryAmount {
	out := make([]CategoryAmount, 0, len(c.keys))
	for k, v := range c.All() {
		out = append(out, CategoryAmount{Category: k, Total: v})
	}
	return out
}
