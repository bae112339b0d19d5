package diag

import (
	"cmp"
	"slices"
)

// Bag collects diagnostics in report order.
type Bag struct {
	items []Diagnostic
}

func NewBag() *Bag { return &Bag{} }

func (b *Bag) Add(d Diagnostic) { b.items = append(b.items, d) }

func (b *Bag) Len() int { return len(b.items) }

// Items возвращает внутренний срез, не модифицировать.
func (b *Bag) Items() []Diagnostic { return b.items }

// Truncate keeps the first n diagnostics and returns how many it cut.
// n <= 0 keeps everything.
func (b *Bag) Truncate(n int) int {
	if n <= 0 || len(b.items) <= n {
		return 0
	}
	cut := len(b.items) - n
	b.items = b.items[:n:n]
	return cut
}

// Filter keeps the diagnostics keep accepts and returns how many it dropped.
func (b *Bag) Filter(keep func(Diagnostic) bool) int {
	before := len(b.items)
	b.items = slices.DeleteFunc(b.items, func(d Diagnostic) bool { return !keep(d) })
	return before - len(b.items)
}

// Sort orders by file, start, end, then severity descending, then code.
func (b *Bag) Sort() {
	slices.SortStableFunc(b.items, compare)
}

func compare(a, c Diagnostic) int {
	return cmp.Or(
		cmp.Compare(a.Primary.File, c.Primary.File),
		cmp.Compare(a.Primary.Start, c.Primary.Start),
		cmp.Compare(a.Primary.End, c.Primary.End),
		cmp.Compare(c.Severity, a.Severity),
		cmp.Compare(a.Code, c.Code),
	)
}
