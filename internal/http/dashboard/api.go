package dashboard

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/spendviz/internal/spend"
)

type uploadResponse struct {
	ID       uuid.UUID `json:"id"`
	Records  int       `json:"records"`
	Warnings int       `json:"warnings"`
}

type summaryResponse struct {
	ID         string            `json:"id"`
	Records    int               `json:"records"`
	Total      string            `json:"total"`
	Charset    string            `json:"charset"`
	Accounts   []string          `json:"accounts"`
	Products   []string          `json:"products"`
	PriceBooks []string          `json:"price_books"`
	Years      []int             `json:"years"`
	Warnings   []warningResponse `json:"warnings"`
}

type warningResponse struct {
	Line   int    `json:"line"`
	Column string `json:"column"`
	Value  string `json:"value"`
}

type groupResponse struct {
	Key   []string `json:"key"`
	Sum   string   `json:"sum"`
	Count int      `json:"count"`
}

type aggregateResponse struct {
	Fields []spend.Field   `json:"fields"`
	Groups []groupResponse `json:"groups"`
	Total  string          `json:"total"`
}

type pivotResponse struct {
	RowField spend.Field `json:"row_field"`
	ColField spend.Field `json:"col_field"`
	Rows     []string    `json:"rows"`
	Cols     []string    `json:"cols"`
	Values   [][]string  `json:"values"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) apiUpload(w http.ResponseWriter, r *http.Request) {
	ds, status, err := h.readUpload(w, r)
	if err != nil {
		http.Error(w, err.Error(), status)
		return
	}

	id := h.store.Put(ds)
	slog.Info("dataset uploaded", "id", id, "records", ds.Len(), "warnings", len(ds.Warnings()))

	writeJSON(w, http.StatusCreated, uploadResponse{
		ID:       id,
		Records:  ds.Len(),
		Warnings: len(ds.Warnings()),
	})
}

func (h *Handler) apiSummary(w http.ResponseWriter, r *http.Request) {
	ds := datasetFrom(r.Context())

	resp := summaryResponse{
		ID:         chi.URLParam(r, "id"),
		Records:    ds.Len(),
		Total:      ds.Total().StringFixed(2),
		Charset:    string(ds.Charset()),
		Accounts:   ds.Accounts(),
		Products:   ds.Products(),
		PriceBooks: ds.PriceBooks(),
		Years:      ds.Years(),
		Warnings:   make([]warningResponse, 0),
	}

	for _, warn := range ds.Warnings() {
		resp.Warnings = append(resp.Warnings, warningResponse{Line: warn.Line, Column: warn.Column, Value: warn.Value})
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) apiDelete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "dataset not found", http.StatusNotFound)
		return
	}

	h.store.Delete(id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) apiAggregate(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	by := q.Get("by")
	if strings.TrimSpace(by) == "" {
		http.Error(w, "by parameter is required", http.StatusBadRequest)
		return
	}

	var fields []spend.Field

	for _, name := range strings.Split(by, ",") {
		f, err := spend.ParseField(name)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		fields = append(fields, f)
	}

	criteria, err := parseCriteria(q)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	view := spend.Aggregate(datasetFrom(r.Context()).Filter(criteria), fields...)

	if s := q.Get("top"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			http.Error(w, "invalid top parameter", http.StatusBadRequest)
			return
		}

		view = view.Top(n)
	}

	resp := aggregateResponse{
		Fields: view.Fields,
		Groups: make([]groupResponse, 0, view.Len()),
		Total:  view.Total().StringFixed(2),
	}

	for _, g := range view.Groups {
		resp.Groups = append(resp.Groups, groupResponse{Key: g.Key, Sum: g.Sum.StringFixed(2), Count: g.Count})
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) apiPivot(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	row, err := spend.ParseField(q.Get("row"))
	if err != nil {
		http.Error(w, "row: "+err.Error(), http.StatusBadRequest)
		return
	}

	col, err := spend.ParseField(q.Get("col"))
	if err != nil {
		http.Error(w, "col: "+err.Error(), http.StatusBadRequest)
		return
	}

	criteria, err := parseCriteria(q)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, toPivotResponse(spend.Pivot(datasetFrom(r.Context()).Filter(criteria), row, col)))
}

func (h *Handler) apiYearToDate(w http.ResponseWriter, r *http.Request) {
	tbl, _, err := yearToDate(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, toPivotResponse(tbl))
}

func toPivotResponse(t spend.Table) pivotResponse {
	resp := pivotResponse{
		RowField: t.RowField,
		ColField: t.ColField,
		Rows:     append([]string{}, t.Rows...),
		Cols:     append([]string{}, t.Cols...),
		Values:   make([][]string, len(t.Values)),
	}

	for i, row := range t.Values {
		resp.Values[i] = make([]string, len(row))
		for j, v := range row {
			resp.Values[i][j] = v.StringFixed(2)
		}
	}

	return resp
}
