package spend

import (
	"slices"
	"strings"

	"github.com/shopspring/decimal"
)

// Group is one key combination of a View and the sum of its totals.
type Group struct {
	Key   []string
	Sum   decimal.Decimal
	Count int // records whose total contributed to Sum
}

// Label joins the key parts for display.
func (g Group) Label() string {
	return strings.Join(g.Key, " / ")
}

// View is a grouped-and-summed result, sorted by descending sum with ties
// broken by lexical key order.
type View struct {
	Fields []Field
	Groups []Group
}

// Len returns the number of groups.
func (v View) Len() int { return len(v.Groups) }

// Top returns the first n groups. Fewer than n groups are returned as is.
func (v View) Top(n int) View {
	n = max(0, min(n, len(v.Groups)))

	return View{
		Fields: v.Fields,
		Groups: slices.Clone(v.Groups[:n]),
	}
}

// Total sums the groups.
func (v View) Total() decimal.Decimal {
	sum := decimal.Zero
	for _, g := range v.Groups {
		sum = sum.Add(g.Sum)
	}

	return sum
}

// Lookup returns the group whose key equals key.
func (v View) Lookup(key ...string) (Group, bool) {
	for _, g := range v.Groups {
		if slices.Equal(g.Key, key) {
			return g, true
		}
	}

	return Group{}, false
}

// Labels and Values expose the view as parallel series for charting.
func (v View) Labels() []string {
	out := make([]string, len(v.Groups))
	for i, g := range v.Groups {
		out[i] = g.Label()
	}

	return out
}

func (v View) Values() []float64 {
	out := make([]float64, len(v.Groups))
	for i, g := range v.Groups {
		out[i] = g.Sum.InexactFloat64()
	}

	return out
}

// Aggregate sums totals per unique combination of fields. Null totals are left
// out of the sums but still place their record's group in the view, so a
// group made only of unparseable totals shows up with a zero sum. Empty string
// keys group under BlankKey. Records without an invoice date are skipped when
// FieldMonth is one of the fields.
func Aggregate(ds *Dataset, fields ...Field) View {
	type acc struct {
		key   []string
		sum   decimal.Decimal
		count int
	}

	index := make(map[string]*acc)
	order := make([]*acc, 0)

	for _, r := range ds.records {
		key, ok := recordKey(r, fields)
		if !ok {
			continue
		}

		id := strings.Join(key, "\x00")

		a, found := index[id]
		if !found {
			a = &acc{key: key, sum: decimal.Zero}
			index[id] = a
			order = append(order, a)
		}

		if r.Total.Valid {
			a.sum = a.sum.Add(r.Total.Decimal)
			a.count++
		}
	}

	groups := make([]Group, len(order))
	for i, a := range order {
		groups[i] = Group{Key: a.key, Sum: a.sum, Count: a.count}
	}

	slices.SortStableFunc(groups, compareGroups)

	return View{
		Fields: slices.Clone(fields),
		Groups: groups,
	}
}

func recordKey(r Record, fields []Field) ([]string, bool) {
	key := make([]string, len(fields))

	for i, f := range fields {
		v, ok := r.Key(f)
		if !ok {
			return nil, false
		}

		key[i] = v
	}

	return key, true
}

// compareGroups orders by descending sum, then by key.
func compareGroups(a, b Group) int {
	if c := b.Sum.Cmp(a.Sum); c != 0 {
		return c
	}

	return slices.Compare(a.Key, b.Key)
}
