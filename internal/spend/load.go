package spend

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	enc "github.com/MrJamesThe3rd/spendviz/internal/encoding"
)

// column is a required input column.
type column struct {
	name    string // canonical header, used in errors
	aliases []string
}

var (
	colAccount   = column{"Account_Name", []string{"account_name"}}
	colProduct   = column{"Product_Product_Name", []string{"product_product_name", "product_name"}}
	colPriceBook = column{"Price_Book_Price_Book_Name", []string{"price_book_price_book_name", "price_book_name"}}
	colDate      = column{"Invoice_Date", []string{"invoice_date"}}
	colTotal     = column{"Total", []string{"total"}}
)

var requiredColumns = []column{colAccount, colProduct, colPriceBook, colDate, colTotal}

// dateLayouts are tried in order; the first that parses wins.
var dateLayouts = []string{
	time.DateOnly,
	"1/2/2006",
	"1/2/06",
	time.DateTime,
	"2006-01-02T15:04:05",
	"1/2/2006 15:04",
	"1/2/2006 15:04:05",
	"1/2/2006 3:04 PM",
	"1/2/2006 3:04:05 PM",
	"2006/01/02",
	"02-Jan-2006",
	"2-Jan-2006",
	"Jan 2, 2006",
	"January 2, 2006",
	time.RFC3339,
}

// LoadFile opens path and loads it. A missing or unreadable file fails with
// ErrSourceNotFound.
func LoadFile(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
			return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, path)
		}

		return nil, fmt.Errorf("%w: %s: %w", ErrSourceNotFound, path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err == nil && info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrSourceNotFound, path)
	}

	return Load(f)
}

// Load parses a CSV export. Header cells are normalized before lookup so
// irregular spacing and colons are tolerated; extra columns are kept for
// re-export only. Cells that fail to parse become null and are reported
// through Dataset.Warnings.
func Load(r io.Reader) (*Dataset, error) {
	if r == nil {
		return nil, ErrSourceNotFound
	}

	utf8r, charset, err := enc.Detect(r)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	reader := csv.NewReader(utf8r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: %s (empty source)", ErrMissingColumn, colAccount.name)
	}

	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	idx, err := resolveColumns(header)
	if err != nil {
		return nil, err
	}

	ds := &Dataset{
		header:  header,
		charset: charset,
	}

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}

		line, _ := reader.FieldPos(0)

		rec, warnings := parseRow(idx, row, line)
		ds.records = append(ds.records, rec)
		ds.warnings = append(ds.warnings, warnings...)
	}

	return ds, nil
}

// colIndex holds the position of each required column in a row.
type colIndex struct {
	account, product, priceBook, date, total int
}

func resolveColumns(header []string) (colIndex, error) {
	positions := make(map[string]int, len(header))

	for i, cell := range header {
		name := lookupName(cell)
		if _, dup := positions[name]; name != "" && !dup {
			positions[name] = i
		}
	}

	find := make(map[string]int, len(requiredColumns))

	for _, col := range requiredColumns {
		found := false

		for _, alias := range col.aliases {
			if i, ok := positions[alias]; ok {
				find[col.name] = i
				found = true

				break
			}
		}

		if !found {
			return colIndex{}, fmt.Errorf("%w: %s", ErrMissingColumn, col.name)
		}
	}

	return colIndex{
		account:   find[colAccount.name],
		product:   find[colProduct.name],
		priceBook: find[colPriceBook.name],
		date:      find[colDate.name],
		total:     find[colTotal.name],
	}, nil
}

func parseRow(idx colIndex, row []string, line int) (Record, []FieldParseWarning) {
	rec := Record{
		AccountName:   cellValue(row, idx.account),
		ProductName:   cellValue(row, idx.product),
		PriceBookName: cellValue(row, idx.priceBook),
		line:          line,
		raw:           row,
	}

	var warnings []FieldParseWarning

	if s := cellValue(row, idx.date); s != "" {
		if t, ok := parseDate(s); ok {
			rec.InvoiceDate = &t
		} else {
			warnings = append(warnings, FieldParseWarning{Line: line, Column: colDate.name, Value: s})
		}
	}

	if s := cellValue(row, idx.total); s != "" {
		if d, ok := parseTotal(s); ok {
			rec.Total = decimal.NullDecimal{Decimal: d, Valid: true}
		} else {
			warnings = append(warnings, FieldParseWarning{Line: line, Column: colTotal.name, Value: s})
		}
	}

	return rec, warnings
}

// parseTotal strips thousands separators and a leading dollar sign, e.g.
// "1,000.00" -> 1000, "$ 12.50" -> 12.5.
func parseTotal(s string) (decimal.Decimal, bool) {
	clean := strings.ReplaceAll(s, ",", "")
	clean = strings.TrimSpace(clean)

	neg := strings.HasPrefix(clean, "-")
	clean = strings.TrimPrefix(clean, "-")
	clean = strings.TrimSpace(strings.TrimPrefix(clean, "$"))

	d, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Decimal{}, false
	}

	if neg {
		d = d.Neg()
	}

	return d, true
}

func parseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}

// cellValue safely gets a trimmed cell value from a row.
func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}
