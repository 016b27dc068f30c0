package dashboard

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/spendviz/internal/report"
	"github.com/MrJamesThe3rd/spendviz/internal/spend"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (h *Handler) exportCSV(w http.ResponseWriter, r *http.Request) {
	criteria, err := parseCriteria(r.URL.Query())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var buf bytes.Buffer
	if err := datasetFrom(r.Context()).Filter(criteria).WriteCSV(&buf); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	attachment(w, "text/csv; charset=utf-8", report.Filename("", report.FilteredCSVName, ".csv"), buf.Bytes())
}

// yearToDate resolves the filtered year-to-date table of a download request.
func yearToDate(r *http.Request) (spend.Table, int, error) {
	q := r.URL.Query()
	ds := datasetFrom(r.Context())

	criteria, err := parseCriteria(q)
	if err != nil {
		return spend.Table{}, 0, err
	}

	year, err := parseYear(q, ds)
	if err != nil {
		return spend.Table{}, 0, err
	}

	return spend.YearToDateSummary(ds.Filter(criteria), year), year, nil
}

func (h *Handler) ytdXLSX(w http.ResponseWriter, r *http.Request) {
	tbl, year, err := yearToDate(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var buf bytes.Buffer
	if err := report.WriteTableXLSX(&buf, tbl, fmt.Sprintf("Year-to-Date Summary %d", year)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	attachment(w, xlsxContentType, fmt.Sprintf("ytd_summary_%d.xlsx", year), buf.Bytes())
}

func (h *Handler) ytdCSV(w http.ResponseWriter, r *http.Request) {
	tbl, year, err := yearToDate(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var buf bytes.Buffer
	if err := report.WriteTableCSV(&buf, tbl); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	attachment(w, "text/csv; charset=utf-8", fmt.Sprintf("ytd_summary_%d.csv", year), buf.Bytes())
}

func (h *Handler) chartSVG(w http.ResponseWriter, r *http.Request) {
	kind, err := report.ParseKind(chi.URLParam(r, "report"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	q := r.URL.Query()
	ds := datasetFrom(r.Context())

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

	rep, err := h.reports.Build(ds.Filter(criteria), kind, reportParams(q, kind, year))
	if err != nil {
		if errors.Is(err, report.ErrUnknownReport) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}

		http.Error(w, err.Error(), http.StatusInternalServerError)

		return
	}

	c, ok := rep.Chart()
	if !ok {
		http.Error(w, "no records match the current filters", http.StatusNotFound)
		return
	}

	attachment(w, "image/svg+xml", report.Filename("", c.Name, ".svg"), []byte(c.SVG))
}
