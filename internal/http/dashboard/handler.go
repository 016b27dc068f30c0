package dashboard

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"mime"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/spendviz/internal/report"
	"github.com/MrJamesThe3rd/spendviz/internal/session"
	"github.com/MrJamesThe3rd/spendviz/internal/spend"
	"github.com/MrJamesThe3rd/spendviz/web"
)

const (
	defaultMaxUploadBytes = 32 << 20
	defaultUploadRate     = 20
	defaultDownloadRate   = 120
)

// Options tunes the dashboard handler.
type Options struct {
	AppName               string
	MaxUploadBytes        int64
	UploadRatePerMinute   int
	DownloadRatePerMinute int
}

type Handler struct {
	store     session.Store
	reports   *report.Service
	templates *template.Template
	opts      Options
}

func NewHandler(store session.Store, reports *report.Service, opts Options) (*Handler, error) {
	t, err := template.ParseFS(web.TemplatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parsing templates: %w", err)
	}

	if opts.AppName == "" {
		opts.AppName = "Spendviz"
	}

	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = defaultMaxUploadBytes
	}

	if opts.UploadRatePerMinute <= 0 {
		opts.UploadRatePerMinute = defaultUploadRate
	}

	if opts.DownloadRatePerMinute <= 0 {
		opts.DownloadRatePerMinute = defaultDownloadRate
	}

	return &Handler{
		store:     store,
		reports:   reports,
		templates: t,
		opts:      opts,
	}, nil
}

// Routes mounts the HTML dashboard and its downloads.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.index)
	r.With(limiter(h.opts.UploadRatePerMinute)).Post("/datasets", h.upload)

	r.Route("/datasets/{id}", func(r chi.Router) {
		r.Use(h.datasetCtx)
		r.Get("/", h.dashboard)

		r.Group(func(r chi.Router) {
			r.Use(limiter(h.opts.DownloadRatePerMinute))
			r.Get("/export.csv", h.exportCSV)
			r.Get("/ytd.xlsx", h.ytdXLSX)
			r.Get("/ytd.csv", h.ytdCSV)
			r.Get("/charts/{report}.svg", h.chartSVG)
		})
	})
}

// APIRoutes mounts the JSON API for datasets.
func (h *Handler) APIRoutes(r chi.Router) {
	r.With(limiter(h.opts.UploadRatePerMinute)).Post("/", h.apiUpload)

	r.Route("/{id}", func(r chi.Router) {
		r.Use(h.datasetCtx)
		r.Get("/", h.apiSummary)
		r.Delete("/", h.apiDelete)
		r.Get("/aggregate", h.apiAggregate)
		r.Get("/pivot", h.apiPivot)
		r.Get("/ytd", h.apiYearToDate)
	})
}

func limiter(perMinute int) func(http.Handler) http.Handler {
	return httprate.Limit(perMinute, time.Minute,
		httprate.WithKeyFuncs(rateLimitKey),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
		}),
	)
}

func rateLimitKey(r *http.Request) (string, error) {
	key, err := httprate.KeyByIP(r)
	if err != nil {
		return "", err
	}

	return "ip:" + key, nil
}

type datasetKey struct{}

func (h *Handler) datasetCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			http.Error(w, "dataset not found", http.StatusNotFound)
			return
		}

		ds, ok := h.store.Get(id)
		if !ok {
			http.Error(w, "dataset not found", http.StatusNotFound)
			return
		}

		ctx := context.WithValue(r.Context(), datasetKey{}, ds)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func datasetFrom(ctx context.Context) *spend.Dataset {
	ds, _ := ctx.Value(datasetKey{}).(*spend.Dataset)
	return ds
}

type indexPage struct {
	AppName string
	Error   string
}

func (h *Handler) index(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, "index.html", indexPage{AppName: h.opts.AppName})
}

func (h *Handler) upload(w http.ResponseWriter, r *http.Request) {
	ds, status, err := h.readUpload(w, r)
	if err != nil {
		h.render(w, status, "index.html", indexPage{AppName: h.opts.AppName, Error: err.Error()})
		return
	}

	id := h.store.Put(ds)
	slog.Info("dataset uploaded", "id", id, "records", ds.Len(), "warnings", len(ds.Warnings()))

	http.Redirect(w, r, "/datasets/"+id.String(), http.StatusSeeOther)
}

// readUpload parses the multipart file field into a dataset. On failure it
// returns the status code the error maps to.
func (h *Handler) readUpload(w http.ResponseWriter, r *http.Request) (*spend.Dataset, int, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.opts.MaxUploadBytes)

	if err := r.ParseMultipartForm(h.opts.MaxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, http.StatusRequestEntityTooLarge, fmt.Errorf("file is larger than %d bytes", h.opts.MaxUploadBytes)
		}

		return nil, http.StatusBadRequest, fmt.Errorf("failed to parse form: %w", err)
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		return nil, http.StatusBadRequest, errors.New("file field is required")
	}
	defer file.Close()

	ds, err := spend.Load(file)
	if err != nil {
		if errors.Is(err, spend.ErrMissingColumn) {
			return nil, http.StatusUnprocessableEntity, err
		}

		return nil, http.StatusBadRequest, err
	}

	return ds, 0, nil
}

func (h *Handler) render(w http.ResponseWriter, status int, name string, data any) {
	var buf bytes.Buffer

	if err := h.templates.ExecuteTemplate(&buf, name, data); err != nil {
		slog.Error("failed to render template", "template", name, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)

	if _, err := buf.WriteTo(w); err != nil {
		slog.Error("failed to write response", "error", err)
	}
}

func attachment(w http.ResponseWriter, contentType, filename string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))

	if _, err := w.Write(body); err != nil {
		slog.Error("failed to write response", "error", err)
	}
}
