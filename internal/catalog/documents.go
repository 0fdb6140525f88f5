package catalog

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/rshade/openfootprint/internal/cache"
	"github.com/rshade/openfootprint/internal/carbon"
	"github.com/rshade/openfootprint/internal/document"
	"github.com/rshade/openfootprint/internal/export"
)

// ErrUnsupportedFormat is returned for document formats other than pdf and xlsx.
var ErrUnsupportedFormat = errors.New("unsupported document format")

// Document formats.
const (
	FormatPDF  = "pdf"
	FormatXLSX = "xlsx"
)

// GeneratedDocument describes a rendered CSRD document.
type GeneratedDocument struct {
	Status      string    `json:"status"`
	Message     string    `json:"message"`
	ReportID    string    `json:"report_id"`
	DocumentID  string    `json:"document_id"`
	Format      string    `json:"format"`
	GeneratedAt time.Time `json:"generated_at"`
	DownloadURL string    `json:"download_url"`
}

// Document is a rendered file ready to be served.
type Document struct {
	Filename    string
	ContentType string
	Body        []byte
}

// DownloadURL is where a generated document can be fetched.
func DownloadURL(pk, format string) string {
	return "/api/csrd-reports/" + url.PathEscape(pk) + "/download?format=" + url.QueryEscape(format)
}

func documentKey(pk, format string) string {
	return cache.Key("csrd-document", pk, format)
}

func checkFormat(format string) error {
	if format != FormatPDF && format != FormatXLSX {
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	return nil
}

// GenerateCSRDDocument renders the report in format and keeps the result in
// the document cache for DownloadCSRDDocument.
func (s *Service) GenerateCSRDDocument(ctx context.Context, pk, format string) (GeneratedDocument, error) {
	if err := checkFormat(format); err != nil {
		return GeneratedDocument{}, err
	}
	doc, err := s.RenderCSRDDocument(ctx, pk, format)
	if err != nil {
		return GeneratedDocument{}, err
	}

	if s.docs != nil {
		if cacheErr := s.docs.SetBlob(documentKey(pk, format), doc.Body); cacheErr != nil &&
			!errors.Is(cacheErr, cache.ErrCacheDisabled) {
			s.log(ctx).Warn().Err(cacheErr).Str("csrd_report_pk", pk).Msg("could not cache generated document")
		}
	}

	return GeneratedDocument{
		Status:      "success",
		Message:     fmt.Sprintf("CSRD report document generated in %s format", format),
		ReportID:    pk,
		DocumentID:  ulid.Make().String(),
		Format:      format,
		GeneratedAt: s.now().UTC(),
		DownloadURL: DownloadURL(pk, format),
	}, nil
}

// DownloadCSRDDocument returns the cached document, rendering it afresh
// when nothing was cached.
func (s *Service) DownloadCSRDDocument(ctx context.Context, pk, format string) (Document, error) {
	if err := checkFormat(format); err != nil {
		return Document{}, err
	}
	if s.docs != nil {
		if body, err := s.docs.GetBlob(documentKey(pk, format)); err == nil {
			// The report must still exist.
			if _, err = s.store.CSRDReports().Get(ctx, pk); err != nil {
				return Document{}, err
			}
			return newDocument(pk, format, body), nil
		}
	}
	return s.RenderCSRDDocument(ctx, pk, format)
}

// RenderCSRDDocument renders the report without touching the cache.
func (s *Service) RenderCSRDDocument(ctx context.Context, pk, format string) (Document, error) {
	if err := checkFormat(format); err != nil {
		return Document{}, err
	}
	scope, err := s.loadScope(ctx, pk)
	if err != nil {
		return Document{}, err
	}

	var buf bytes.Buffer
	switch format {
	case FormatPDF:
		data, dataErr := s.documentData(ctx, scope)
		if dataErr != nil {
			return Document{}, dataErr
		}
		err = document.RenderCSRDPDF(&buf, data)
	case FormatXLSX:
		err = s.exporter.WriteCSRDReport(ctx, &buf, scope.report)
	}
	if err != nil {
		return Document{}, err
	}
	return newDocument(pk, format, buf.Bytes()), nil
}

func newDocument(pk, format string, body []byte) Document {
	ct := document.ContentTypePDF
	if format == FormatXLSX {
		ct = export.ContentType
	}
	return Document{
		Filename:    "csrd_report_" + safeName(pk) + "." + format,
		ContentType: ct,
		Body:        body,
	}
}

// safeName replaces characters that are unsafe in filenames.
func safeName(pk string) string {
	out := make([]rune, 0, len(pk))
	for _, r := range pk {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			out = append(out, r)
		default:
			out = append(out, '_')
		}
	}
	return string(out)
}

func (s *Service) documentData(ctx context.Context, scope reportScope) (document.DocumentData, error) {
	lookup, err := s.Lookup(ctx)
	if err != nil {
		return document.DocumentData{}, err
	}

	rows := make([]document.EmissionReportRow, len(scope.emissions))
	byOrg := make(map[string]*document.EmissionReportRow)
	for i, er := range scope.emissions {
		rows[i] = document.EmissionReportRow{
			Report:           er,
			OrganizationName: lookup.OrganizationName(er.OrganizationID),
		}
		if _, ok := byOrg[er.OrganizationID]; !ok {
			byOrg[er.OrganizationID] = &rows[i]
		}
	}

	var total float64
	for _, st := range scope.statements {
		kg, convErr := st.KgCO2e()
		if convErr != nil {
			s.log(ctx).Warn().Err(convErr).Str("emission_statement_pk", st.EmissionStatementPK).
				Msg("skipping statement with unusable unit")
			continue
		}
		total += kg
		// Statements carry no report id; attribute them to the first report of their organization.
		if row := byOrg[st.OrganizationID]; row != nil {
			row.StatementCount++
			row.TotalKgCO2e += kg
		}
	}

	eq, err := carbon.Equivalencies(total)
	if err != nil {
		eq = carbon.EquivalencyOutput{IsEmpty: true}
	}

	return document.DocumentData{
		Report:           scope.report,
		OrganizationName: lookup.OrganizationName(scope.report.OrganizationID),
		EmissionReports:  rows,
		TotalKgCO2e:      total,
		Equivalency:      eq,
		DateLayout:       s.dateLayout,
		GeneratedAt:      s.now().UTC(),
	}, nil
}
