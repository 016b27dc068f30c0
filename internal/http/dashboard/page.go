package dashboard

import (
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/MrJamesThe3rd/spendviz/internal/report"
	"github.com/MrJamesThe3rd/spendviz/internal/spend"
)

const maxWarnings = 50

type option struct {
	Value    string
	Selected bool
}

type link struct {
	Label string
	URL   string
}

type tableView struct {
	Caption string
	Header  []string
	Rows    [][]string
	Footer  []string
}

type reportView struct {
	Kind      report.Kind
	Title     string
	Empty     bool
	Charts    []template.HTML
	Tables    []tableView
	Downloads []link
}

type dashboardPage struct {
	AppName         string
	Base            string
	Records         int
	FilteredRecords int
	Total           string
	DateRange       string
	Charset         string
	Warnings        []spend.FieldParseWarning
	WarningCount    int
	Accounts        []option
	Products        []option
	PriceBooks      []option
	ProductAccounts []option
	ViewAccounts    []option
	Years           []option
	From            string
	To              string
	CSVURL          string
	Reports         []reportView
}

func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	ds := datasetFrom(r.Context())
	q := r.URL.Query()

	criteria, err := parseCriteria(q)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	year, err := parseYear(q, ds)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	base := "/datasets/" + chi.URLParam(r, "id")
	filtered := ds.Filter(criteria)
	filters := filterQuery(q)

	page := dashboardPage{
		AppName:         h.opts.AppName,
		Base:            base,
		Records:         ds.Len(),
		FilteredRecords: filtered.Len(),
		Total:           report.FormatAmount(filtered.Total()),
		Charset:         string(ds.Charset()),
		WarningCount:    len(ds.Warnings()),
		Accounts:        options(ds.Accounts(), criteria.Accounts),
		Products:        options(ds.Products(), criteria.Products),
		PriceBooks:      options(ds.PriceBooks(), criteria.PriceBooks),
		ProductAccounts: options(filtered.Accounts(), []string{reportParams(q, report.KindMonthlyByProduct, year).Account}),
		ViewAccounts:    options(filtered.Accounts(), []string{reportParams(q, report.KindByAccount, year).Account}),
		Years:           yearOptions(ds.Years(), year),
		From:            q.Get("from"),
		To:              q.Get("to"),
		CSVURL:          withQuery(base+"/export.csv", filters),
	}

	if from, to, ok := filtered.DateRange(); ok {
		page.DateRange = from.Format(time.DateOnly) + " to " + to.Format(time.DateOnly)
	}

	warnings := ds.Warnings()
	page.Warnings = warnings[:min(len(warnings), maxWarnings)]

	page.Reports = make([]reportView, len(report.Kinds))

	var g errgroup.Group

	for i, kind := range report.Kinds {
		params := reportParams(q, kind, year)
		if kind == report.KindMonthOverMonth {
			// The page charts every account; the account only narrows the
			// per-account SVG download.
			params.Account = ""
		}

		g.Go(func() error {
			rep, err := h.reports.Build(filtered, kind, params)
			if err != nil {
				return err
			}

			page.Reports[i] = newReportView(rep, base, filters, params)

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	h.render(w, http.StatusOK, "dashboard.html", page)
}

func newReportView(rep *report.Report, base string, filters url.Values, params report.Params) reportView {
	v := reportView{
		Kind:  rep.Kind,
		Title: rep.Title,
		Empty: rep.Empty(),
	}

	for _, c := range rep.Charts {
		v.Charts = append(v.Charts, c.SVG)
	}

	q := filters
	if params.Account != "" {
		q = with(q, accountKeys[rep.Kind], params.Account)
	}

	switch rep.Kind {
	case report.KindByAccount, report.KindByProduct, report.KindByPriceBook:
		if rep.View.Len() > 0 {
			v.Tables = append(v.Tables, viewTable(rep.View))
		}
	case report.KindMonthOverMonth:
		for _, c := range rep.Charts {
			v.Tables = append(v.Tables, pivotTable(c.Title, c.Table))
		}
	default:
		if !rep.Table.Empty() {
			v.Tables = append(v.Tables, pivotTable("", rep.Table))
		}
	}

	if rep.Kind == report.KindYearToDate {
		q = with(q, "year", strconv.Itoa(params.Year))
		v.Downloads = append(v.Downloads,
			link{Label: "Download table (XLSX)", URL: withQuery(base+"/ytd.xlsx", q)},
			link{Label: "Download table (CSV)", URL: withQuery(base+"/ytd.csv", q)},
		)
	}

	chartURL := fmt.Sprintf("%s/charts/%s.svg", base, rep.Kind)

	if rep.Kind == report.KindMonthOverMonth && params.Account == "" {
		for _, acc := range accountsOf(rep) {
			v.Downloads = append(v.Downloads, link{
				Label: "Download " + acc + " chart (SVG)",
				URL:   withQuery(chartURL, with(q, accountKeys[report.KindMonthOverMonth], acc)),
			})
		}

		return v
	}

	if len(rep.Charts) > 0 {
		v.Downloads = append(v.Downloads, link{Label: "Download chart (SVG)", URL: withQuery(chartURL, q)})
	}

	return v
}

func accountsOf(rep *report.Report) []string {
	out := make([]string, 0, len(rep.Charts))
	for _, c := range rep.Charts {
		out = append(out, c.Account)
	}

	return out
}

func viewTable(v spend.View) tableView {
	label := "Key"
	if len(v.Fields) > 0 {
		label = v.Fields[0].Label()
	}

	t := tableView{
		Header: []string{label, "Total spend", "Lines"},
		Footer: []string{"Total", report.FormatAmount(v.Total()), ""},
	}

	for _, g := range v.Groups {
		t.Rows = append(t.Rows, []string{g.Label(), report.FormatAmount(g.Sum), strconv.Itoa(g.Count)})
	}

	return t
}

func pivotTable(caption string, p spend.Table) tableView {
	t := tableView{Caption: caption}

	t.Header = append([]string{p.RowField.Label()}, p.Cols...)
	t.Header = append(t.Header, "Total")

	rowTotals := p.RowTotals()

	for i, key := range p.Rows {
		row := []string{key}
		for _, v := range p.Values[i] {
			row = append(row, report.FormatAmount(v))
		}

		t.Rows = append(t.Rows, append(row, report.FormatAmount(rowTotals[i])))
	}

	t.Footer = []string{"Total"}
	for _, v := range p.ColTotals() {
		t.Footer = append(t.Footer, report.FormatAmount(v))
	}

	grand := decimal.Zero
	for _, v := range rowTotals {
		grand = grand.Add(v)
	}

	t.Footer = append(t.Footer, report.FormatAmount(grand))

	return t
}

func options(all, selected []string) []option {
	out := make([]option, 0, len(all))
	for _, v := range all {
		out = append(out, option{Value: v, Selected: slices.Contains(selected, v)})
	}

	return out
}

func yearOptions(years []int, selected int) []option {
	if !slices.Contains(years, selected) {
		years = append(slices.Clone(years), selected)
		slices.Sort(years)
	}

	out := make([]option, 0, len(years))
	for _, y := range slices.Backward(years) {
		out = append(out, option{Value: strconv.Itoa(y), Selected: y == selected})
	}

	return out
}
