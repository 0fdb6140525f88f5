package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/rshade/openfootprint/internal/catalog"
	"github.com/rshade/openfootprint/internal/export"
	"github.com/rshade/openfootprint/internal/model"
	"github.com/rshade/openfootprint/internal/store"
	"github.com/rshade/openfootprint/pkg/version"
)

const maxBodyBytes = 1 << 20

// WelcomeMessage is returned by GET /.
const WelcomeMessage = "Welcome to OpenFootprint API for CSRD compliance reporting"

// resource binds the three record operations of one kind.
type resource[T, C any] struct {
	kind   model.Kind
	list   func(context.Context, store.Page) ([]T, error)
	get    func(context.Context, string) (T, error)
	create func(context.Context, C) (T, error)
}

func (s *Server) routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", s.metrics.Handler())

	svc := s.svc
	register(mux, resource[model.Organization, model.OrganizationCreate]{
		model.KindOrganization, svc.ListOrganizations, svc.GetOrganization, svc.CreateOrganization,
	})
	register(mux, resource[model.Facility, model.FacilityCreate]{
		model.KindFacility, svc.ListFacilities, svc.GetFacility, svc.CreateFacility,
	})
	register(mux, resource[model.EmissionReport, model.EmissionReportCreate]{
		model.KindEmissionReport, svc.ListEmissionReports, svc.GetEmissionReport, svc.CreateEmissionReport,
	})
	register(mux, resource[model.EmissionStatement, model.EmissionStatementCreate]{
		model.KindEmissionStatement, svc.ListEmissionStatements, svc.GetEmissionStatement, svc.CreateEmissionStatement,
	})
	register(mux, resource[model.CSRDReport, model.CSRDReportCreate]{
		model.KindCSRDReport, svc.ListCSRDReports, svc.GetCSRDReport, svc.CreateCSRDReport,
	})
	register(mux, resource[model.DataQuality, model.DataQualityCreate]{
		model.KindDataQuality, svc.ListDataQuality, svc.GetDataQuality, svc.CreateDataQuality,
	})
	register(mux, resource[model.WaterActivityType, model.WaterActivityTypeCreate]{
		model.KindWaterActivityType, svc.ListWaterActivityTypes, svc.GetWaterActivityType, svc.CreateWaterActivityType,
	})
	register(mux, resource[model.EnvironmentalProductDeclaration, model.EnvironmentalProductDeclarationCreate]{
		model.KindEnvironmentalProductDeclaration,
		svc.ListEnvironmentalProductDeclarations,
		svc.GetEnvironmentalProductDeclaration,
		svc.CreateEnvironmentalProductDeclaration,
	})

	mux.HandleFunc("GET /api/csrd-reports/{pk}/validate", s.handleValidate)
	mux.HandleFunc("GET /api/csrd-reports/{pk}/generate", s.handleGenerate)
	mux.HandleFunc("GET /api/csrd-reports/{pk}/download", s.handleDownload)
	mux.HandleFunc("GET /api/excel/{dataset}", s.handleExcel)
	mux.HandleFunc("GET /api/dashboard", s.handleDashboard)

	if s.ui != nil {
		mux.Handle("/ui/", s.ui)
		mux.Handle("GET /ui", http.RedirectHandler("/ui/", http.StatusMovedPermanently))
	}
}

// register adds list, get and create routes for r, with and without a
// trailing slash on the collection path.
func register[T, C any](mux *http.ServeMux, r resource[T, C]) {
	base := "/api/" + string(r.kind)

	list := func(w http.ResponseWriter, req *http.Request) {
		page, err := parsePage(req)
		if err != nil {
			writeDetail(w, http.StatusBadRequest, err.Error())
			return
		}
		recs, err := r.list(req.Context(), page)
		if err != nil {
			writeError(w, req, r.kind, err)
			return
		}
		writeJSON(w, http.StatusOK, recs)
	}
	create := func(w http.ResponseWriter, req *http.Request) {
		var in C
		if err := decodeBody(w, req, &in); err != nil {
			writeDetail(w, http.StatusBadRequest, err.Error())
			return
		}
		rec, err := r.create(req.Context(), in)
		if err != nil {
			writeError(w, req, r.kind, err)
			return
		}
		writeJSON(w, http.StatusOK, rec)
	}

	mux.HandleFunc("GET "+base, list)
	mux.HandleFunc("GET "+base+"/{$}", list)
	mux.HandleFunc("POST "+base, create)
	mux.HandleFunc("POST "+base+"/{$}", create)
	mux.HandleFunc("GET "+base+"/{pk}", func(w http.ResponseWriter, req *http.Request) {
		rec, err := r.get(req.Context(), req.PathValue("pk"))
		if err != nil {
			writeError(w, req, r.kind, err)
			return
		}
		writeJSON(w, http.StatusOK, rec)
	})
}

func parsePage(r *http.Request) (store.Page, error) {
	var page store.Page
	q := r.URL.Query()
	for name, dst := range map[string]*int{"skip": &page.Skip, "limit": &page.Limit} {
		raw := q.Get(name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return page, fmt.Errorf("query parameter %s must be an integer", name)
		}
		*dst = n
	}
	if page.Limit == 0 && q.Get("limit") != "" {
		return page, errors.New("query parameter limit must be at least 1")
	}
	return page.Normalize()
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(body)
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": WelcomeMessage,
		"version": version.GetVersion(),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	res, err := s.svc.ValidateCSRDReport(r.Context(), r.PathValue("pk"))
	if err != nil {
		writeError(w, r, model.KindCSRDReport, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func documentFormat(r *http.Request) string {
	if f := r.URL.Query().Get("format"); f != "" {
		return f
	}
	return catalog.FormatPDF
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	doc, err := s.svc.GenerateCSRDDocument(r.Context(), r.PathValue("pk"), documentFormat(r))
	if err != nil {
		writeError(w, r, model.KindCSRDReport, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	doc, err := s.svc.DownloadCSRDDocument(r.Context(), r.PathValue("pk"), documentFormat(r))
	if err != nil {
		writeError(w, r, model.KindCSRDReport, err)
		return
	}
	writeAttachment(w, doc.Filename, doc.ContentType, doc.Body)
}

func (s *Server) handleExcel(w http.ResponseWriter, r *http.Request) {
	d, err := export.ParseDataset(r.PathValue("dataset"))
	if err != nil {
		writeError(w, r, "", err)
		return
	}
	var buf bytes.Buffer
	if err = s.svc.Exporter().Write(r.Context(), &buf, d); err != nil {
		writeError(w, r, "", err)
		return
	}
	writeAttachment(w, export.Filename(string(d)), export.ContentType, buf.Bytes())
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := s.svc.Dashboard(r.Context())
	if err != nil {
		writeError(w, r, "", err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func writeAttachment(w http.ResponseWriter, filename, contentType string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", "attachment; filename="+filename)
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
