package spend

import (
	"slices"
	"time"
)

// Criteria restricts a dataset. Constraints are ANDed; an empty set or a nil
// bound matches everything on that dimension. Set members are compared with
// Record.Key, so BlankKey selects records with an empty value.
type Criteria struct {
	Accounts   []string
	Products   []string
	PriceBooks []string
	From       *time.Time // inclusive, from the start of that day
	To         *time.Time // inclusive, through the end of that day
}

// IsZero reports whether c constrains nothing.
func (c Criteria) IsZero() bool {
	return len(c.Accounts) == 0 && len(c.Products) == 0 && len(c.PriceBooks) == 0 &&
		c.From == nil && c.To == nil
}

// Match reports whether r satisfies every constraint. A date bound excludes
// records without an invoice date.
func (c Criteria) Match(r Record) bool {
	if !matchSet(c.Accounts, r, FieldAccount) ||
		!matchSet(c.Products, r, FieldProduct) ||
		!matchSet(c.PriceBooks, r, FieldPriceBook) {
		return false
	}

	if c.From == nil && c.To == nil {
		return true
	}

	if r.InvoiceDate == nil {
		return false
	}

	d := *r.InvoiceDate

	if c.From != nil && d.Before(startOfDay(*c.From)) {
		return false
	}

	if c.To != nil && !d.Before(startOfDay(*c.To).AddDate(0, 0, 1)) {
		return false
	}

	return true
}

func matchSet(set []string, r Record, f Field) bool {
	if len(set) == 0 {
		return true
	}

	k, _ := r.Key(f)

	return slices.Contains(set, k)
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// Filter returns the records matching c, in source order.
func (d *Dataset) Filter(c Criteria) *Dataset {
	if c.IsZero() {
		return d.subset(slices.Clone(d.records))
	}

	return d.Where(c.Match)
}

// Where returns the records for which keep returns true, in source order.
func (d *Dataset) Where(keep func(Record) bool) *Dataset {
	var out []Record

	for _, r := range d.records {
		if keep(r) {
			out = append(out, r)
		}
	}

	return d.subset(out)
}
