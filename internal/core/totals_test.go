package core

import "testing"

func TestCategoryTotalsKeepsInsertionOrder(t *testing.T) {
	c := NewCategoryTotals()
	c.Add("shopping", 400)
	c.Add("food", 300)
	c.Add("shopping", 50)
	c.Add("entertainment", 10)

	entries := c.Entries()
	want := []CategoryAmount{{"shopping", 450}, {"food", 300}, {"entertainment", 10}}
	if len(entries) != len(want) {
		t.Fatalf("entries = %v", entries)
	}
	for i := range want {
		if entries[i] != want[i] {
			t.Fatalf("entry %d = %v, want %v", i, entries[i], want[i])
		}
	}
	if v, ok := c.Get("food"); !ok || v != 300 {
		t.Fatalf("Get(food) = %v, %v", v, ok)
	}
	if _, ok := c.Get("rent"); ok {
		t.Fatal("rent should be absent")
	}
	if c.Len() != 3 {
		t.Fatalf("Len = %d", c.Len())
	}
}
