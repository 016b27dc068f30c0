// Package report builds the named spend reports and writes them to files.
package report

import (
	"errors"
	"fmt"
	"html/template"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/spendviz/internal/chart"
	"github.com/MrJamesThe3rd/spendviz/internal/spend"
)

// ErrUnknownReport is returned when a report kind is not recognised.
var ErrUnknownReport = errors.New("unknown report")

// Kind identifies one of the named reports.
type Kind string

const (
	KindByAccount        Kind = "by-account"
	KindByProduct        Kind = "by-product"
	KindByPriceBook      Kind = "by-pricebook"
	KindMonthOverMonth   Kind = "month-over-month"
	KindMonthlyByProduct Kind = "monthly-by-product"
	KindYearToDate       Kind = "ytd"
)

// Kinds lists the reports in menu order.
var Kinds = []Kind{
	KindByAccount,
	KindByProduct,
	KindByPriceBook,
	KindMonthOverMonth,
	KindMonthlyByProduct,
	KindYearToDate,
}

// ParseKind validates a report name taken from a URL or flag.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if !slices.Contains(Kinds, k) {
		return "", fmt.Errorf("%w: %q", ErrUnknownReport, s)
	}

	return k, nil
}

// DefaultTopProducts is how many products the product reports keep.
const DefaultTopProducts = 20

// Chart is one rendered chart of a report. Name is the default export
// filename without extension; Account is set on per-account charts.
type Chart struct {
	Name    string
	Title   string
	Account string
	SVG     template.HTML
	Table   spend.Table
}

// Report is the data and charts of one named report. Bar reports fill View;
// pivot reports fill Table, or one Table per chart for per-account reports.
type Report struct {
	Kind   Kind
	Title  string
	View   spend.View
	Table  spend.Table
	Charts []Chart
}

// Empty reports whether the report has nothing to show.
func (r *Report) Empty() bool {
	return r.View.Len() == 0 && r.Table.Empty() && len(r.Charts) == 0
}

// Chart returns the first chart, if any.
func (r *Report) Chart() (Chart, bool) {
	if len(r.Charts) == 0 {
		return Chart{}, false
	}

	return r.Charts[0], true
}

// Params narrows the reports that accept an account or a year.
type Params struct {
	Account string
	Year    int
}

// Service renders the named reports.
type Service struct {
	topProducts int
	width       int
	height      int
}

// NewService creates a report service keeping topProducts products in the
// product reports.
func NewService(topProducts int) *Service {
	if topProducts <= 0 {
		topProducts = DefaultTopProducts
	}

	return &Service{
		topProducts: topProducts,
		width:       chart.DefaultWidth,
		height:      chart.DefaultHeight,
	}
}

// TopProducts returns the product limit of the service.
func (s *Service) TopProducts() int { return s.topProducts }

// Build dispatches to the report named by kind.
func (s *Service) Build(ds *spend.Dataset, kind Kind, p Params) (*Report, error) {
	switch kind {
	case KindByAccount:
		return s.SpendByAccount(ds, p.Account)
	case KindByProduct:
		return s.SpendByProduct(ds)
	case KindByPriceBook:
		return s.SpendByPriceBook(ds)
	case KindMonthOverMonth:
		return s.MonthOverMonth(ds, p.Account)
	case KindMonthlyByProduct:
		return s.MonthlyByProduct(ds, p.Account)
	case KindYearToDate:
		return s.YearToDate(ds, p.Year)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownReport, kind)
	}
}

// SpendByAccount sums spend per account, descending. A non-empty account
// restricts the report to that account.
func (s *Service) SpendByAccount(ds *spend.Dataset, account string) (*Report, error) {
	title := "Total Spend by Account"
	if account != "" {
		ds = ds.Filter(spend.Criteria{Accounts: []string{account}})
		title = "Total Spend for " + account
	}

	return s.barReport(KindByAccount, title, "spend_by_account", spend.Aggregate(ds, spend.FieldAccount))
}

// SpendByProduct sums spend per product and keeps the top products.
func (s *Service) SpendByProduct(ds *spend.Dataset) (*Report, error) {
	title := fmt.Sprintf("Top %d Products by Spend", s.topProducts)
	view := spend.Aggregate(ds, spend.FieldProduct).Top(s.topProducts)

	return s.barReport(KindByProduct, title, "spend_by_product", view)
}

// SpendByPriceBook sums spend per price book.
func (s *Service) SpendByPriceBook(ds *spend.Dataset) (*Report, error) {
	return s.barReport(KindByPriceBook, "Total Spend by Price Book", "spend_by_pricebook", spend.Aggregate(ds, spend.FieldPriceBook))
}

func (s *Service) barReport(kind Kind, title, name string, view spend.View) (*Report, error) {
	r := &Report{Kind: kind, Title: title, View: view}
	if view.Len() == 0 {
		return r, nil
	}

	svg, err := chart.ViewBars(s.width, s.height, view, chart.Opts{Title: title})
	if err != nil {
		return nil, fmt.Errorf("rendering %s: %w", kind, err)
	}

	r.Charts = []Chart{{Name: name, Title: title, SVG: svg}}

	return r, nil
}

// MonthOverMonth pivots each account's spend by month and price book, one
// stacked chart per account. A non-empty account restricts it to that
// account.
func (s *Service) MonthOverMonth(ds *spend.Dataset, account string) (*Report, error) {
	r := &Report{Kind: KindMonthOverMonth, Title: "Month-over-Month Spend by Account"}

	accounts := ds.Accounts()
	if account != "" {
		accounts = []string{account}
	}

	for _, acc := range accounts {
		tbl := spend.Pivot(ds.Filter(spend.Criteria{Accounts: []string{acc}}), spend.FieldMonth, spend.FieldPriceBook)
		if tbl.Empty() {
			continue
		}

		title := "Month-over-Month Spend for " + acc

		svg, err := chart.Stacked(s.width, s.height, tbl, chart.Opts{Title: title})
		if err != nil {
			return nil, fmt.Errorf("rendering %s for %s: %w", KindMonthOverMonth, acc, err)
		}

		r.Charts = append(r.Charts, Chart{
			Name:    "monthly_spend_" + acc,
			Title:   title,
			Account: acc,
			SVG:     svg,
			Table:   tbl,
		})
	}

	return r, nil
}

// MonthlyByProduct pivots spend by month and every product, optionally for a
// single account. Products are ordered by total spend.
func (s *Service) MonthlyByProduct(ds *spend.Dataset, account string) (*Report, error) {
	title := "Monthly Spend by Product"
	name := "monthly_spend_by_product"

	if account != "" {
		ds = ds.Filter(spend.Criteria{Accounts: []string{account}})
		title += " for " + account
		name += "_" + account
	}

	byProduct := spend.Aggregate(ds, spend.FieldProduct)
	tbl := keepCols(spend.Pivot(ds, spend.FieldMonth, spend.FieldProduct), byProduct.Labels())

	r := &Report{Kind: KindMonthlyByProduct, Title: title, Table: tbl}
	if tbl.Empty() || len(tbl.Cols) == 0 {
		return r, nil
	}

	svg, err := chart.Stacked(s.width, s.height, tbl, chart.Opts{Title: title})
	if err != nil {
		return nil, fmt.Errorf("rendering %s: %w", KindMonthlyByProduct, err)
	}

	r.Charts = []Chart{{Name: name, Title: title, SVG: svg, Table: tbl}}

	return r, nil
}

// YearToDate builds the account by price book summary for year.
func (s *Service) YearToDate(ds *spend.Dataset, year int) (*Report, error) {
	title := fmt.Sprintf("Year-to-Date Summary %d", year)
	tbl := spend.YearToDateSummary(ds, year)

	r := &Report{Kind: KindYearToDate, Title: title, Table: tbl}
	if tbl.Empty() {
		return r, nil
	}

	svg, err := chart.Grouped(s.width, s.height, tbl, chart.Opts{Title: title})
	if err != nil {
		return nil, fmt.Errorf("rendering %s: %w", KindYearToDate, err)
	}

	r.Charts = []Chart{{Name: fmt.Sprintf("ytd_summary_%d", year), Title: title, SVG: svg, Table: tbl}}

	return r, nil
}

// keepCols orders the columns of t as listed in cols, dropping the rest.
func keepCols(t spend.Table, cols []string) spend.Table {
	out := spend.Table{
		RowField: t.RowField,
		ColField: t.ColField,
		Rows:     t.Rows,
	}

	var idx []int

	for _, c := range cols {
		if j := slices.Index(t.Cols, c); j >= 0 {
			out.Cols = append(out.Cols, c)
			idx = append(idx, j)
		}
	}

	out.Values = make([][]decimal.Decimal, len(t.Values))
	for i, row := range t.Values {
		for _, j := range idx {
			out.Values[i] = append(out.Values[i], row[j])
		}
	}

	return out
}
