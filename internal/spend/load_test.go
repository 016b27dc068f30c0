package spend_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/spendviz/internal/spend"
)

const fixture = `Account Name,Product: Product Name,Price Book: Price Book Name,Invoice Date,Total,Invoice Number
Dealer A,Oil Change,Retail,2024-01-05,"1,000.00",INV-1
Dealer A,Brake Pads,Retail,2024-01-10,500,INV-2
Dealer B,Oil Change,Fleet,2024-02-01,250.50,INV-3
Dealer B,Tyres,Fleet,2023-12-15,N/A,INV-4
Dealer C,Tyres,Retail,not a date,75,INV-5
`

func load(t *testing.T, content string) *spend.Dataset {
	t.Helper()

	ds, err := spend.Load(strings.NewReader(content))
	require.NoError(t, err)

	return ds
}

func TestLoad(t *testing.T) {
	ds := load(t, fixture)
	require.Equal(t, 5, ds.Len())

	recs := ds.Records()

	assert.Equal(t, "Dealer A", recs[0].AccountName)
	assert.Equal(t, "Oil Change", recs[0].ProductName)
	assert.Equal(t, "Retail", recs[0].PriceBookName)
	require.NotNil(t, recs[0].InvoiceDate)
	assert.Equal(t, time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), *recs[0].InvoiceDate)
	require.True(t, recs[0].Total.Valid)
	assert.Equal(t, "1000.00", recs[0].Total.Decimal.StringFixed(2))
	assert.Equal(t, 2, recs[0].Line())

	// N/A total is nulled but the record is kept.
	assert.False(t, recs[3].Total.Valid)
	assert.Equal(t, "Dealer B", recs[3].AccountName)

	// Unparseable date is nulled but the record is kept.
	assert.Nil(t, recs[4].InvoiceDate)
	assert.True(t, recs[4].Total.Valid)

	warnings := ds.Warnings()
	require.Len(t, warnings, 2)
	assert.Equal(t, spend.FieldParseWarning{Line: 5, Column: "Total", Value: "N/A"}, warnings[0])
	assert.Equal(t, spend.FieldParseWarning{Line: 6, Column: "Invoice_Date", Value: "not a date"}, warnings[1])
}

func TestLoad_HeaderNormalization(t *testing.T) {
	type testCase struct {
		name   string
		header string
	}

	tests := []testCase{
		{
			name:   "Export Headers",
			header: "Account Name,Product: Product Name,Price Book: Price Book Name,Invoice Date:,Total",
		},
		{
			name:   "Snake Case",
			header: "account_name,product_name,price_book_name,invoice_date,total",
		},
		{
			name:   "Irregular Whitespace",
			header: "  Account Name ,Product_Product_Name,  Price Book : Price Book Name,Invoice Date :, TOTAL ",
		},
		{
			name:   "Reordered With Extras",
			header: "Total,Notes,Invoice_Date,Price_Book_Price_Book_Name,Product_Product_Name,Account_Name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := rowFor(tt.header, map[string]string{
				"account":   "Dealer A",
				"product":   "Oil Change",
				"pricebook": "Retail",
				"date":      "2024-03-01",
				"total":     "12.34",
			})

			ds := load(t, tt.header+"\n"+row+"\n")
			require.Equal(t, 1, ds.Len())

			rec := ds.Records()[0]
			assert.Equal(t, "Dealer A", rec.AccountName)
			assert.Equal(t, "Oil Change", rec.ProductName)
			assert.Equal(t, "Retail", rec.PriceBookName)
			require.NotNil(t, rec.InvoiceDate)
			assert.Equal(t, "2024-03", spend.MonthKey(*rec.InvoiceDate))
			assert.Equal(t, "12.34", rec.Total.Decimal.StringFixed(2))
		})
	}
}

// rowFor builds a data row matching the column order of header.
func rowFor(header string, values map[string]string) string {
	cells := strings.Split(header, ",")
	out := make([]string, len(cells))

	for i, cell := range cells {
		name := strings.ToLower(cell)
		switch {
		case strings.Contains(name, "account"):
			out[i] = values["account"]
		case strings.Contains(name, "product"):
			out[i] = values["product"]
		case strings.Contains(name, "price"):
			out[i] = values["pricebook"]
		case strings.Contains(name, "date"):
			out[i] = values["date"]
		case strings.Contains(name, "total"):
			out[i] = values["total"]
		}
	}

	return strings.Join(out, ",")
}

func TestLoad_TotalParsing(t *testing.T) {
	type testCase struct {
		raw   string
		want  string
		valid bool
	}

	tests := []testCase{
		{raw: `"1,000.00"`, want: "1000.00", valid: true},
		{raw: "500", want: "500.00", valid: true},
		{raw: `"1,234,567.89"`, want: "1234567.89", valid: true},
		{raw: "$12.50", want: "12.50", valid: true},
		{raw: `"-$1,200.10"`, want: "-1200.10", valid: true},
		{raw: " 7.5 ", want: "7.50", valid: true},
		{raw: "N/A", valid: false},
		{raw: "", valid: false},
		{raw: "abc", valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			ds := load(t, "Account_Name,Product_Product_Name,Price_Book_Price_Book_Name,Invoice_Date,Total\nA,P,PB,2024-01-01,"+tt.raw+"\n")
			require.Equal(t, 1, ds.Len())

			total := ds.Records()[0].Total
			assert.Equal(t, tt.valid, total.Valid)

			if tt.valid {
				assert.Equal(t, tt.want, total.Decimal.StringFixed(2))
			}
		})
	}
}

func TestLoad_DateLayouts(t *testing.T) {
	want := time.Date(2024, 3, 7, 0, 0, 0, 0, time.UTC)

	for _, raw := range []string{
		"2024-03-07",
		"3/7/2024",
		"03/07/2024",
		"3/7/24",
		"2024/03/07",
		"07-Mar-2024",
		"7-Mar-2024",
		"Mar 7, 2024",
		"March 7, 2024",
		"2024-03-07 10:30:00",
		"2024-03-07T10:30:00",
		"2024-03-07T10:30:00Z",
		"03/07/2024 10:30",
		"03/07/2024 10:30:00",
		"3/7/2024 10:30 AM",
		"3/7/2024 10:30:15 PM",
	} {
		t.Run(raw, func(t *testing.T) {
			ds := load(t, "Account_Name,Product_Product_Name,Price_Book_Price_Book_Name,Invoice_Date,Total\nA,P,PB,\""+raw+"\",1\n")

			got := ds.Records()[0].InvoiceDate
			require.NotNil(t, got)
			assert.True(t, want.Equal(dayOf(*got)), "got %s", got)
			assert.True(t, ds.Records()[0].Total.Valid)
		})
	}
}

func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func TestLoad_MissingColumn(t *testing.T) {
	_, err := spend.Load(strings.NewReader("Account Name,Product Name,Invoice Date,Total\nA,P,2024-01-01,1\n"))
	require.Error(t, err)
	assert.ErrorIs(t, err, spend.ErrMissingColumn)
	assert.Contains(t, err.Error(), "Price_Book_Price_Book_Name")
}

func TestLoad_EmptySource(t *testing.T) {
	_, err := spend.Load(strings.NewReader(""))
	assert.ErrorIs(t, err, spend.ErrMissingColumn)
}

func TestLoad_HeaderOnly(t *testing.T) {
	ds := load(t, "Account_Name,Product_Product_Name,Price_Book_Price_Book_Name,Invoice_Date,Total\n")
	assert.Equal(t, 0, ds.Len())
	assert.True(t, ds.Total().IsZero())
}

func TestLoad_RaggedRows(t *testing.T) {
	ds := load(t, "Account_Name,Product_Product_Name,Price_Book_Price_Book_Name,Invoice_Date,Total\nA,P\n")
	require.Equal(t, 1, ds.Len())

	rec := ds.Records()[0]
	assert.Equal(t, "A", rec.AccountName)
	assert.Equal(t, "", rec.PriceBookName)
	assert.Nil(t, rec.InvoiceDate)
	assert.False(t, rec.Total.Valid)
	assert.Empty(t, ds.Warnings())
}

func TestLoadFile_NotFound(t *testing.T) {
	_, err := spend.LoadFile(filepath.Join(t.TempDir(), "missing.csv"))
	assert.ErrorIs(t, err, spend.ErrSourceNotFound)
}

func TestLoadFile_Directory(t *testing.T) {
	_, err := spend.LoadFile(t.TempDir())
	assert.ErrorIs(t, err, spend.ErrSourceNotFound)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.csv")
	require.NoError(t, os.WriteFile(path, []byte(fixture), 0o644))

	ds, err := spend.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 5, ds.Len())
}

func TestLoad_Idempotent(t *testing.T) {
	a := load(t, fixture)
	b := load(t, fixture)

	for _, fields := range [][]spend.Field{
		{spend.FieldAccount},
		{spend.FieldProduct},
		{spend.FieldAccount, spend.FieldMonth},
	} {
		assert.Equal(t, spend.Aggregate(a, fields...), spend.Aggregate(b, fields...))
	}

	assert.Equal(t, spend.Pivot(a, spend.FieldMonth, spend.FieldPriceBook), spend.Pivot(b, spend.FieldMonth, spend.FieldPriceBook))
}

func TestDataset_WriteCSV_Identity(t *testing.T) {
	ds := load(t, fixture)

	var buf bytes.Buffer
	require.NoError(t, ds.WriteCSV(&buf))
	assert.Equal(t, fixture, buf.String())

	again := load(t, buf.String())
	assert.Equal(t, ds.Records(), again.Records())
}

func TestDataset_Distinct(t *testing.T) {
	ds := load(t, fixture)

	assert.Equal(t, []string{"Dealer A", "Dealer B", "Dealer C"}, ds.Accounts())
	assert.Equal(t, []string{"Brake Pads", "Oil Change", "Tyres"}, ds.Products())
	assert.Equal(t, []string{"Fleet", "Retail"}, ds.PriceBooks())
	assert.Equal(t, []string{"2023-12", "2024-01", "2024-02"}, ds.Months())
	assert.Equal(t, []int{2023, 2024}, ds.Years())

	minDate, maxDate, ok := ds.DateRange()
	require.True(t, ok)
	assert.Equal(t, time.Date(2023, 12, 15, 0, 0, 0, 0, time.UTC), minDate)
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), maxDate)

	assert.Equal(t, "1825.50", ds.Total().StringFixed(2))
}

func TestParseField(t *testing.T) {
	for in, want := range map[string]spend.Field{
		"account_name":                spend.FieldAccount,
		"Account Name":                spend.FieldAccount,
		"Product_Product_Name":        spend.FieldProduct,
		"product":                     spend.FieldProduct,
		"Price Book: Price Book Name": spend.FieldPriceBook,
		"month":                       spend.FieldMonth,
	} {
		got, err := spend.ParseField(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := spend.ParseField("total")
	assert.ErrorIs(t, err, spend.ErrUnknownField)
}
