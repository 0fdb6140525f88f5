package web

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/rshade/openfootprint/internal/catalog"
	"github.com/rshade/openfootprint/internal/model"
	"github.com/rshade/openfootprint/internal/store"
)

// recordKind ties a list page to its loader and create action.
type recordKind struct {
	kind    model.Kind
	page    string
	pkField string
	load    func(ctx context.Context, r *http.Request) (recordPage, error)
	// create parses the form and stores the record. fields holds parse
	// errors found before the service was called.
	create func(ctx context.Context, form url.Values) (pk string, fields map[string]string, err error)
}

func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.svc.Dashboard(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, "dashboard", view{Title: "Dashboard", Data: d})
}

func (h *Handler) export(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "export", view{
		Title: "Excel Export",
		Data:  exportPage{Links: exportLinks(), Notes: exportNotes},
	})
}

// list renders the list page of k, with the create form when ?new=1.
func (h *Handler) list(w http.ResponseWriter, r *http.Request, k recordKind) {
	data, err := k.load(r.Context(), r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	v := view{Title: k.kind.PluralTitle(), ShowForm: showForm(r), Data: data}
	q := r.URL.Query()
	if pk := q.Get("created"); pk != "" {
		v.Flash = k.kind.Title() + " " + pk + " created."
	}
	if pk := q.Get("validated"); pk != "" {
		v.Flash = "Validation completed for " + pk + "."
	}
	h.render(w, r, http.StatusOK, k.page, v)
}

// submit handles a create form post for k.
func (h *Handler) submit(w http.ResponseWriter, r *http.Request, k recordKind) {
	if err := r.ParseForm(); err != nil {
		h.rerender(w, r, k, http.StatusBadRequest, url.Values{}, map[string]string{"form": "could not be read"})
		return
	}
	pk, fields, err := k.create(r.Context(), r.PostForm)
	switch {
	case fields != nil:
		h.rerender(w, r, k, http.StatusUnprocessableEntity, r.PostForm, fields)
		return
	case errors.Is(err, store.ErrAlreadyExists):
		h.rerender(w, r, k, http.StatusConflict, r.PostForm, map[string]string{k.pkField: "already exists"})
		return
	case err != nil:
		if verr, ok := formErrors(err); ok {
			h.rerender(w, r, k, http.StatusUnprocessableEntity, r.PostForm, verr)
			return
		}
		h.fail(w, r, err)
		return
	}
	h.log(r.Context()).Info().Str("kind", string(k.kind)).Str("pk", pk).Msg("record created from ui")
	redirect(w, r, Prefix+string(k.kind), url.Values{"created": {pk}})
}

func (h *Handler) rerender(
	w http.ResponseWriter, r *http.Request, k recordKind, status int, form url.Values, fields map[string]string,
) {
	data, err := k.load(r.Context(), r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.render(w, r, status, k.page, view{
		Title:    k.kind.PluralTitle(),
		ShowForm: true,
		Form:     form,
		Errors:   fields,
		Data:     data,
	})
}

func (h *Handler) organizationKind() recordKind {
	return recordKind{
		kind:    model.KindOrganization,
		page:    "organizations",
		pkField: "organization_pk",
		load: func(ctx context.Context, _ *http.Request) (recordPage, error) {
			lookup, err := h.svc.Lookup(ctx)
			if err != nil {
				return recordPage{}, err
			}
			recs, err := store.ListAll(ctx, h.svc.Store().Organizations())
			if err != nil {
				return recordPage{}, err
			}
			return recordPage{
				Rows:          organizationRows(recs, lookup),
				Organizations: nameOptions(lookup.Organizations()),
			}, nil
		},
		create: func(ctx context.Context, form url.Values) (string, map[string]string, error) {
			in, fields := organizationForm(form)
			if fields != nil {
				return "", fields, nil
			}
			rec, err := h.svc.CreateOrganization(ctx, in)
			return rec.OrganizationPK, nil, err
		},
	}
}

func (h *Handler) facilityKind() recordKind {
	return recordKind{
		kind:    model.KindFacility,
		page:    "facilities",
		pkField: "facility_pk",
		load: func(ctx context.Context, _ *http.Request) (recordPage, error) {
			lookup, err := h.svc.Lookup(ctx)
			if err != nil {
				return recordPage{}, err
			}
			recs, err := store.ListAll(ctx, h.svc.Store().Facilities())
			if err != nil {
				return recordPage{}, err
			}
			return recordPage{
				Rows:          facilityRows(recs, lookup),
				Organizations: nameOptions(lookup.Organizations()),
			}, nil
		},
		create: func(ctx context.Context, form url.Values) (string, map[string]string, error) {
			in, fields := facilityForm(form)
			if fields != nil {
				return "", fields, nil
			}
			rec, err := h.svc.CreateFacility(ctx, in)
			return rec.FacilityPK, nil, err
		},
	}
}

func (h *Handler) emissionReportKind() recordKind {
	return recordKind{
		kind:    model.KindEmissionReport,
		page:    "emission_reports",
		pkField: "emission_report_pk",
		load: func(ctx context.Context, _ *http.Request) (recordPage, error) {
			lookup, err := h.svc.Lookup(ctx)
			if err != nil {
				return recordPage{}, err
			}
			recs, err := store.ListAll(ctx, h.svc.Store().EmissionReports())
			if err != nil {
				return recordPage{}, err
			}
			return recordPage{
				Rows:          h.emissionReportRows(recs, lookup),
				Organizations: nameOptions(lookup.Organizations()),
				Types:         enumOptions(model.AllReportTypes()),
				Statuses:      enumOptions(model.AllReportStatuses()),
			}, nil
		},
		create: func(ctx context.Context, form url.Values) (string, map[string]string, error) {
			in, fields := emissionReportForm(form)
			if fields != nil {
				return "", fields, nil
			}
			rec, err := h.svc.CreateEmissionReport(ctx, in)
			return rec.EmissionReportPK, nil, err
		},
	}
}

func (h *Handler) emissionStatementKind() recordKind {
	return recordKind{
		kind:    model.KindEmissionStatement,
		page:    "emission_statements",
		pkField: "emission_statement_pk",
		load: func(ctx context.Context, _ *http.Request) (recordPage, error) {
			lookup, err := h.svc.Lookup(ctx)
			if err != nil {
				return recordPage{}, err
			}
			recs, err := store.ListAll(ctx, h.svc.Store().EmissionStatements())
			if err != nil {
				return recordPage{}, err
			}
			return recordPage{
				Rows:          h.emissionStatementRows(recs, lookup),
				Organizations: nameOptions(lookup.Organizations()),
				Facilities:    nameOptions(lookup.Facilities()),
				Units:         enumOptions(model.StatementUnits()),
			}, nil
		},
		create: func(ctx context.Context, form url.Values) (string, map[string]string, error) {
			in, fields := emissionStatementForm(form)
			if fields != nil {
				return "", fields, nil
			}
			rec, err := h.svc.CreateEmissionStatement(ctx, in)
			return rec.EmissionStatementPK, nil, err
		},
	}
}

func (h *Handler) csrdReportKind() recordKind {
	return recordKind{
		kind:    model.KindCSRDReport,
		page:    "csrd_reports",
		pkField: "csrd_report_pk",
		load: func(ctx context.Context, r *http.Request) (recordPage, error) {
			lookup, err := h.svc.Lookup(ctx)
			if err != nil {
				return recordPage{}, err
			}
			recs, err := store.ListAll(ctx, h.svc.Store().CSRDReports())
			if err != nil {
				return recordPage{}, err
			}
			reports, err := store.ListAll(ctx, h.svc.Store().EmissionReports())
			if err != nil {
				return recordPage{}, err
			}
			return recordPage{
				Rows:          h.csrdReportRows(recs, lookup, r.URL.Query().Get("validated")),
				Organizations: nameOptions(lookup.Organizations()),
				Reports:       reportOptions(reports),
				Types:         enumOptions(model.AllCSRDReportTypes()),
				Statuses:      enumOptions(model.AllCSRDStatuses()),
				Formats:       enumOptions([]string{catalog.FormatPDF, catalog.FormatXLSX}),
			}, nil
		},
		create: func(ctx context.Context, form url.Values) (string, map[string]string, error) {
			in, fields := csrdReportForm(form)
			if fields != nil {
				return "", fields, nil
			}
			rec, err := h.svc.CreateCSRDReport(ctx, in)
			return rec.CSRDReportPK, nil, err
		},
	}
}

func (h *Handler) organizations(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.organizationKind())
}

func (h *Handler) createOrganization(w http.ResponseWriter, r *http.Request) {
	h.submit(w, r, h.organizationKind())
}

func (h *Handler) facilities(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.facilityKind())
}

func (h *Handler) createFacility(w http.ResponseWriter, r *http.Request) {
	h.submit(w, r, h.facilityKind())
}

func (h *Handler) emissionReports(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.emissionReportKind())
}

func (h *Handler) createEmissionReport(w http.ResponseWriter, r *http.Request) {
	h.submit(w, r, h.emissionReportKind())
}

func (h *Handler) emissionStatements(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.emissionStatementKind())
}

func (h *Handler) createEmissionStatement(w http.ResponseWriter, r *http.Request) {
	h.submit(w, r, h.emissionStatementKind())
}

func (h *Handler) csrdReports(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.csrdReportKind())
}

func (h *Handler) createCSRDReport(w http.ResponseWriter, r *http.Request) {
	h.submit(w, r, h.csrdReportKind())
}

func (h *Handler) validateCSRDReport(w http.ResponseWriter, r *http.Request) {
	pk := r.PathValue("pk")
	if _, err := h.svc.ValidateCSRDReport(r.Context(), pk); err != nil {
		h.fail(w, r, err)
		return
	}
	redirect(w, r, Prefix+string(model.KindCSRDReport), url.Values{"validated": {pk}})
}

// generateCSRDReport renders the document and sends the browser to its
// download URL.
func (h *Handler) generateCSRDReport(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.fail(w, r, err)
		return
	}
	format := r.PostForm.Get("format")
	if format == "" {
		format = catalog.FormatPDF
	}
	gen, err := h.svc.GenerateCSRDDocument(r.Context(), r.PathValue("pk"), format)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	http.Redirect(w, r, gen.DownloadURL, http.StatusSeeOther)
}
