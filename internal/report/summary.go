package report

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/MrJamesThe3rd/spendviz/internal/spend"
)

var printer = message.NewPrinter(language.English)

// FormatAmount renders d with thousands separators and two decimals.
func FormatAmount(d decimal.Decimal) string {
	return printer.Sprintf("%.2f", d.Round(2).InexactFloat64())
}

// Summary describes a loaded dataset in a few lines of plain text.
func Summary(ds *spend.Dataset) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Records: %d\n", ds.Len()))
	sb.WriteString(fmt.Sprintf("Total spend: %s\n", FormatAmount(ds.Total())))

	if from, to, ok := ds.DateRange(); ok {
		sb.WriteString(fmt.Sprintf("Invoice dates: %s to %s\n", from.Format("2006-01-02"), to.Format("2006-01-02")))
	}

	sb.WriteString(fmt.Sprintf("Accounts: %d, products: %d, price books: %d\n",
		len(ds.Accounts()), len(ds.Products()), len(ds.PriceBooks())))

	if n := len(ds.Warnings()); n > 0 {
		sb.WriteString(fmt.Sprintf("Unparseable values: %d\n", n))
	}

	return sb.String()
}
