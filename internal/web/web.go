// Package web serves the server-rendered openfootprint UI under /ui/.
//
// Pages are html/template files embedded in the binary. Every record page
// lists its records and, when requested with ?new=1, a create form. Form
// posts redirect back to the list on success and re-render the form with
// field messages on validation errors.
package web

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"net/url"
	"strings"

	"github.com/Masterminds/sprig/v3"
	"github.com/rs/zerolog"

	"github.com/rshade/openfootprint/internal/catalog"
	"github.com/rshade/openfootprint/internal/format"
	"github.com/rshade/openfootprint/internal/model"
	"github.com/rshade/openfootprint/internal/store"
	"github.com/rshade/openfootprint/pkg/version"
)

// Prefix is the path the UI is mounted at.
const Prefix = "/ui/"

//go:embed templates/*.html
var templateFS embed.FS

// pages lists the page templates; each is parsed together with layout.html.
//
//nolint:gochecknoglobals // fixed template set.
var pages = []string{
	"dashboard",
	"organizations",
	"facilities",
	"emission_reports",
	"emission_statements",
	"csrd_reports",
	"export",
	"error",
}

// navItem is one entry of the navigation bar.
type navItem struct {
	Label string
	Path  string
	Key   string
}

//nolint:gochecknoglobals // fixed navigation.
var navigation = []navItem{
	{"Dashboard", Prefix, "dashboard"},
	{"Organizations", Prefix + "organizations", "organizations"},
	{"Facilities", Prefix + "facilities", "facilities"},
	{"Emission Reports", Prefix + "emission-reports", "emission_reports"},
	{"Emission Statements", Prefix + "emission-statements", "emission_statements"},
	{"CSRD Reports", Prefix + "csrd-reports", "csrd_reports"},
	{"Excel Export", Prefix + "export", "export"},
}

// view is the data every page template receives.
type view struct {
	Title    string
	Active   string
	Nav      []navItem
	Version  string
	Flash    string
	ShowForm bool
	Form     url.Values
	Errors   map[string]string
	Data     any
}

// Handler renders the UI.
type Handler struct {
	svc        *catalog.Service
	dateLayout string
	logger     zerolog.Logger
	templates  map[string]*template.Template
	mux        *http.ServeMux
}

// Option configures a Handler.
type Option func(*Handler)

// WithDateLayout sets the Go time layout used for dates in tables.
func WithDateLayout(layout string) Option {
	return func(h *Handler) {
		if layout != "" {
			h.dateLayout = layout
		}
	}
}

// WithLogger sets the logger used when no request logger is present.
func WithLogger(l zerolog.Logger) Option {
	return func(h *Handler) { h.logger = l }
}

// New parses the embedded templates and builds the UI routes.
func New(svc *catalog.Service, opts ...Option) (*Handler, error) {
	h := &Handler{
		svc:        svc,
		dateLayout: format.DefaultDateLayout,
		logger:     zerolog.Nop(),
		templates:  make(map[string]*template.Template, len(pages)),
	}
	for _, opt := range opts {
		opt(h)
	}

	funcs := sprig.HtmlFuncMap()
	funcs["fmtDate"] = func(v any) string { return h.date(v) }
	funcs["statusClass"] = statusClass

	for _, name := range pages {
		tmpl, err := template.New(name).Funcs(funcs).ParseFS(templateFS,
			"templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", name, err)
		}
		h.templates[name] = tmpl
	}

	h.mux = http.NewServeMux()
	h.routes()
	return h, nil
}

// Templates returns the names of the embedded template files.
func Templates() ([]string, error) {
	return fs.Glob(templateFS, "templates/*.html")
}

func (h *Handler) routes() {
	h.mux.HandleFunc("GET /ui/{$}", h.dashboard)

	h.mux.HandleFunc("GET /ui/organizations", h.organizations)
	h.mux.HandleFunc("POST /ui/organizations", h.createOrganization)
	h.mux.HandleFunc("GET /ui/facilities", h.facilities)
	h.mux.HandleFunc("POST /ui/facilities", h.createFacility)
	h.mux.HandleFunc("GET /ui/emission-reports", h.emissionReports)
	h.mux.HandleFunc("POST /ui/emission-reports", h.createEmissionReport)
	h.mux.HandleFunc("GET /ui/emission-statements", h.emissionStatements)
	h.mux.HandleFunc("POST /ui/emission-statements", h.createEmissionStatement)
	h.mux.HandleFunc("GET /ui/csrd-reports", h.csrdReports)
	h.mux.HandleFunc("POST /ui/csrd-reports", h.createCSRDReport)
	h.mux.HandleFunc("POST /ui/csrd-reports/{pk}/validate", h.validateCSRDReport)
	h.mux.HandleFunc("POST /ui/csrd-reports/{pk}/generate", h.generateCSRDReport)

	h.mux.HandleFunc("GET /ui/export", h.export)
	h.mux.HandleFunc("/ui/", h.notFound)
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *Handler) log(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &h.logger
}

// render executes page into a buffer first so template errors never leave a
// half written response.
func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, page string, v view) {
	tmpl, ok := h.templates[page]
	if !ok {
		h.log(r.Context()).Error().Str("page", page).Msg("unknown page template")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	v.Active = page
	v.Nav = navigation
	v.Version = version.GetVersion()
	if v.Form == nil {
		v.Form = url.Values{}
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", v); err != nil {
		h.log(r.Context()).Error().Err(err).Str("page", page).Msg("rendering page")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// fail renders the error page for err.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, context.Canceled) {
		h.log(r.Context()).Debug().Err(err).Msg("request cancelled")
		return
	}
	status, msg := http.StatusInternalServerError, "Something went wrong while loading this page."
	switch {
	case store.IsNotFound(err):
		status, msg = http.StatusNotFound, err.Error()
	case errors.Is(err, catalog.ErrUnsupportedFormat):
		status, msg = http.StatusBadRequest, err.Error()
	default:
		h.log(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("ui request failed")
	}
	h.render(w, r, status, "error", view{Title: http.StatusText(status), Data: msg})
}

func (h *Handler) notFound(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusNotFound, "error", view{
		Title: http.StatusText(http.StatusNotFound),
		Data:  "No page exists at " + r.URL.Path + ".",
	})
}

// redirect sends a 303 to the list page of path with an optional flash.
func redirect(w http.ResponseWriter, r *http.Request, path string, query url.Values) {
	target := path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func showForm(r *http.Request) bool {
	v := r.URL.Query().Get("new")
	return v == "1" || strings.EqualFold(v, "true")
}

// formErrors returns the field messages of a validation error.
func formErrors(err error) (map[string]string, bool) {
	var verr *model.ValidationError
	if errors.As(err, &verr) {
		return verr.Fields, true
	}
	return nil, false
}

func statusClass(status any) string {
	switch strings.ToLower(fmt.Sprint(status)) {
	case "passed", "complete", "verified", "published", "submitted":
		return "ok"
	case "warning", "in-progress", "in review", "final", "approved":
		return "warn"
	case "failed", "rejected":
		return "bad"
	}
	return "neutral"
}
