// Package spend loads invoice-line CSV exports and derives the grouped,
// pivoted and filtered views the dashboards chart.
//
// Every operation is a pure function of an immutable *Dataset; nothing here
// performs I/O beyond reading the source handed to Load.
package spend

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/spendviz/internal/encoding"
)

var (
	ErrSourceNotFound = errors.New("source not found")
	ErrMissingColumn  = errors.New("missing column")
	ErrUnknownField   = errors.New("unknown field")
)

// Field identifies a grouping dimension.
type Field string

const (
	FieldAccount   Field = "account_name"
	FieldProduct   Field = "product_name"
	FieldPriceBook Field = "price_book_name"
	FieldMonth     Field = "month"
)

// BlankKey labels the group of records whose string key is empty.
const BlankKey = "(blank)"

// ParseField maps a user supplied name onto a Field using the same
// normalization as CSV headers, so "Account Name" and "account_name" agree.
func ParseField(s string) (Field, error) {
	switch lookupName(s) {
	case "account_name", "account":
		return FieldAccount, nil
	case "product_product_name", "product_name", "product":
		return FieldProduct, nil
	case "price_book_price_book_name", "price_book_name", "price_book", "pricebook":
		return FieldPriceBook, nil
	case "month", "invoice_month":
		return FieldMonth, nil
	}

	return "", fmt.Errorf("%w: %q", ErrUnknownField, s)
}

// Label is the human readable name of the field.
func (f Field) Label() string {
	switch f {
	case FieldAccount:
		return "Account Name"
	case FieldProduct:
		return "Product Name"
	case FieldPriceBook:
		return "Price Book"
	case FieldMonth:
		return "Month"
	}

	return string(f)
}

// Record is one invoice line.
type Record struct {
	AccountName   string
	ProductName   string
	PriceBookName string
	InvoiceDate   *time.Time          // nil when the cell could not be parsed
	Total         decimal.NullDecimal // invalid when the cell could not be parsed

	line int
	raw  []string
}

// Line is the 1-based line of the record in its source file.
func (r Record) Line() int { return r.line }

// Key returns the grouping value of the record for f. ok is false when the
// record has no value for a date-derived field.
func (r Record) Key(f Field) (string, bool) {
	var v string

	switch f {
	case FieldAccount:
		v = r.AccountName
	case FieldProduct:
		v = r.ProductName
	case FieldPriceBook:
		v = r.PriceBookName
	case FieldMonth:
		if r.InvoiceDate == nil {
			return "", false
		}

		return MonthKey(*r.InvoiceDate), true
	default:
		return "", false
	}

	if v == "" {
		return BlankKey, true
	}

	return v, true
}

// MonthKey formats t as YYYY-MM, which sorts chronologically.
func MonthKey(t time.Time) string {
	return t.Format("2006-01")
}

// FieldParseWarning records a cell that could not be converted. The value is
// nulled and excluded from sums; loading carries on.
type FieldParseWarning struct {
	Line   int
	Column string
	Value  string
}

func (w FieldParseWarning) String() string {
	return fmt.Sprintf("line %d: %s: cannot parse %q", w.Line, w.Column, w.Value)
}

// Dataset is an ordered, read-only collection of records.
type Dataset struct {
	header   []string
	records  []Record
	warnings []FieldParseWarning
	charset  encoding.Charset
}

// Len returns the number of records.
func (d *Dataset) Len() int { return len(d.records) }

// Records returns a copy of the records in source order.
func (d *Dataset) Records() []Record { return slices.Clone(d.records) }

// Header returns the source header as it appeared in the file.
func (d *Dataset) Header() []string { return slices.Clone(d.header) }

// Warnings returns the parse warnings of the records in this dataset.
func (d *Dataset) Warnings() []FieldParseWarning { return slices.Clone(d.warnings) }

// Charset reports the encoding the source was decoded from.
func (d *Dataset) Charset() encoding.Charset { return d.charset }

// Accounts returns the sorted distinct account keys.
func (d *Dataset) Accounts() []string { return d.distinct(FieldAccount) }

// Products returns the sorted distinct product keys.
func (d *Dataset) Products() []string { return d.distinct(FieldProduct) }

// PriceBooks returns the sorted distinct price book keys.
func (d *Dataset) PriceBooks() []string { return d.distinct(FieldPriceBook) }

// Months returns the sorted distinct months with a parsed invoice date.
func (d *Dataset) Months() []string { return d.distinct(FieldMonth) }

func (d *Dataset) distinct(f Field) []string {
	seen := make(map[string]struct{})

	for _, r := range d.records {
		if k, ok := r.Key(f); ok {
			seen[k] = struct{}{}
		}
	}

	out := make([]string, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}

	slices.Sort(out)

	return out
}

// Years returns the sorted distinct years with a parsed invoice date.
func (d *Dataset) Years() []int {
	seen := make(map[int]struct{})

	for _, r := range d.records {
		if r.InvoiceDate != nil {
			seen[r.InvoiceDate.Year()] = struct{}{}
		}
	}

	out := make([]int, 0, len(seen))
	for y := range seen {
		out = append(out, y)
	}

	slices.Sort(out)

	return out
}

// DateRange returns the earliest and latest parsed invoice dates. ok is false
// when no record has a date.
func (d *Dataset) DateRange() (minDate, maxDate time.Time, ok bool) {
	for _, r := range d.records {
		if r.InvoiceDate == nil {
			continue
		}

		if !ok || r.InvoiceDate.Before(minDate) {
			minDate = *r.InvoiceDate
		}

		if !ok || r.InvoiceDate.After(maxDate) {
			maxDate = *r.InvoiceDate
		}

		ok = true
	}

	return minDate, maxDate, ok
}

// Total sums every non-null total.
func (d *Dataset) Total() decimal.Decimal {
	sum := decimal.Zero

	for _, r := range d.records {
		if r.Total.Valid {
			sum = sum.Add(r.Total.Decimal)
		}
	}

	return sum
}

// subset builds a dataset sharing the header and charset of d.
func (d *Dataset) subset(records []Record) *Dataset {
	lines := make(map[int]struct{}, len(records))
	for _, r := range records {
		lines[r.line] = struct{}{}
	}

	var warnings []FieldParseWarning

	for _, w := range d.warnings {
		if _, ok := lines[w.Line]; ok {
			warnings = append(warnings, w)
		}
	}

	return &Dataset{
		header:   d.header,
		records:  records,
		warnings: warnings,
		charset:  d.charset,
	}
}

// lookupName is the key headers are matched on: NormalizeHeader, lower-cased,
// with runs of underscores collapsed and trimmed so "Invoice Date :" still
// resolves.
func lookupName(s string) string {
	parts := strings.FieldsFunc(strings.ToLower(NormalizeHeader(s)), func(r rune) bool {
		return r == '_'
	})

	return strings.Join(parts, "_")
}

// NormalizeHeader trims s, replaces spaces with underscores and strips colons.
func NormalizeHeader(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, " ", "_")

	return strings.ReplaceAll(s, ":", "")
}
