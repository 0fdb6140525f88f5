// Package catalog implements the record operations shared by the API, the
// web pages and the CLI: listing and creating records, cross-reference
// lookups, ESRS validation, CSRD document generation and the dashboard.
package catalog

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/rshade/openfootprint/internal/export"
	"github.com/rshade/openfootprint/internal/format"
	"github.com/rshade/openfootprint/internal/model"
	"github.com/rshade/openfootprint/internal/store"
)

// BlobCache keeps rendered documents between generation and download.
// *cache.FileStore satisfies it.
type BlobCache interface {
	GetBlob(key string) ([]byte, error)
	SetBlob(key string, b []byte) error
}

// Service wraps a Store with validation and derived operations.
type Service struct {
	store      store.Store
	exporter   *export.Exporter
	docs       BlobCache
	now        func() time.Time
	dateLayout string
	logger     zerolog.Logger
}

// Option customises a Service.
type Option func(*Service)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithDocumentCache keeps generated documents in c.
func WithDocumentCache(c BlobCache) Option {
	return func(s *Service) { s.docs = c }
}

// WithDateLayout sets the layout used in rendered documents.
func WithDateLayout(layout string) Option {
	return func(s *Service) { s.dateLayout = layout }
}

// WithLogger sets the service logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// New returns a Service over st.
func New(st store.Store, opts ...Option) *Service {
	s := &Service{
		store:      st,
		exporter:   export.New(st),
		now:        time.Now,
		dateLayout: format.DefaultDateLayout,
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Store returns the underlying store.
func (s *Service) Store() store.Store { return s.store }

// Exporter returns the workbook exporter over the same store.
func (s *Service) Exporter() *export.Exporter { return s.exporter }

// log prefers the request logger carried by ctx.
func (s *Service) log(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &s.logger
}

func (s *Service) ListOrganizations(ctx context.Context, page store.Page) ([]model.Organization, error) {
	return s.store.Organizations().List(ctx, page)
}

func (s *Service) GetOrganization(ctx context.Context, pk string) (model.Organization, error) {
	return s.store.Organizations().Get(ctx, pk)
}

// CreateOrganization validates in and stores it. Parent organizations are
// not required to exist.
func (s *Service) CreateOrganization(ctx context.Context, in model.OrganizationCreate) (model.Organization, error) {
	if err := in.Validate(); err != nil {
		return model.Organization{}, err
	}
	return s.store.Organizations().Create(ctx, model.Organization{OrganizationCreate: in})
}

func (s *Service) ListFacilities(ctx context.Context, page store.Page) ([]model.Facility, error) {
	return s.store.Facilities().List(ctx, page)
}

func (s *Service) GetFacility(ctx context.Context, pk string) (model.Facility, error) {
	return s.store.Facilities().Get(ctx, pk)
}

func (s *Service) CreateFacility(ctx context.Context, in model.FacilityCreate) (model.Facility, error) {
	if err := in.Validate(); err != nil {
		return model.Facility{}, err
	}
	return s.store.Facilities().Create(ctx, model.Facility{FacilityCreate: in})
}

func (s *Service) ListEmissionReports(ctx context.Context, page store.Page) ([]model.EmissionReport, error) {
	return s.store.EmissionReports().List(ctx, page)
}

func (s *Service) GetEmissionReport(ctx context.Context, pk string) (model.EmissionReport, error) {
	return s.store.EmissionReports().Get(ctx, pk)
}

// CreateEmissionReport validates in and stores it. The organization is
// not required to exist.
func (s *Service) CreateEmissionReport(ctx context.Context, in model.EmissionReportCreate) (model.EmissionReport, error) {
	if err := in.Validate(); err != nil {
		return model.EmissionReport{}, err
	}
	return s.store.EmissionReports().Create(ctx, model.EmissionReport{EmissionReportCreate: in})
}

func (s *Service) ListEmissionStatements(ctx context.Context, page store.Page) ([]model.EmissionStatement, error) {
	return s.store.EmissionStatements().List(ctx, page)
}

func (s *Service) GetEmissionStatement(ctx context.Context, pk string) (model.EmissionStatement, error) {
	return s.store.EmissionStatements().Get(ctx, pk)
}

func (s *Service) CreateEmissionStatement(
	ctx context.Context, in model.EmissionStatementCreate,
) (model.EmissionStatement, error) {
	if err := in.Validate(); err != nil {
		return model.EmissionStatement{}, err
	}
	return s.store.EmissionStatements().Create(ctx, model.EmissionStatement{EmissionStatementCreate: in})
}

func (s *Service) ListCSRDReports(ctx context.Context, page store.Page) ([]model.CSRDReport, error) {
	return s.store.CSRDReports().List(ctx, page)
}

func (s *Service) GetCSRDReport(ctx context.Context, pk string) (model.CSRDReport, error) {
	return s.store.CSRDReports().Get(ctx, pk)
}

// CreateCSRDReport validates in and stores it with empty JSON sections.
// Emission report ids that do not resolve are dropped from the links.
func (s *Service) CreateCSRDReport(ctx context.Context, in model.CSRDReportCreate) (model.CSRDReport, error) {
	if err := in.Validate(); err != nil {
		return model.CSRDReport{}, err
	}

	linked := make([]string, 0, len(in.EmissionReportIDs))
	for _, id := range in.EmissionReportIDs {
		_, err := s.store.EmissionReports().Get(ctx, id)
		switch {
		case err == nil:
			linked = append(linked, id)
		case store.IsNotFound(err):
			s.log(ctx).Warn().
				Str("csrd_report_pk", in.CSRDReportPK).
				Str("emission_report_pk", id).
				Msg("dropping link to unknown emission report")
		default:
			return model.CSRDReport{}, err
		}
	}
	in.EmissionReportIDs = linked

	return s.store.CSRDReports().Create(ctx, model.NewCSRDReport(in))
}

func (s *Service) ListDataQuality(ctx context.Context, page store.Page) ([]model.DataQuality, error) {
	return s.store.DataQuality().List(ctx, page)
}

func (s *Service) GetDataQuality(ctx context.Context, entityID string) (model.DataQuality, error) {
	return s.store.DataQuality().Get(ctx, entityID)
}

func (s *Service) CreateDataQuality(ctx context.Context, in model.DataQualityCreate) (model.DataQuality, error) {
	if err := in.Validate(); err != nil {
		return model.DataQuality{}, err
	}
	return s.store.DataQuality().Create(ctx, model.DataQuality{DataQualityCreate: in})
}

func (s *Service) ListWaterActivityTypes(ctx context.Context, page store.Page) ([]model.WaterActivityType, error) {
	return s.store.WaterActivityTypes().List(ctx, page)
}

func (s *Service) GetWaterActivityType(ctx context.Context, id string) (model.WaterActivityType, error) {
	return s.store.WaterActivityTypes().Get(ctx, id)
}

func (s *Service) CreateWaterActivityType(
	ctx context.Context, in model.WaterActivityTypeCreate,
) (model.WaterActivityType, error) {
	if err := in.Validate(); err != nil {
		return model.WaterActivityType{}, err
	}
	return s.store.WaterActivityTypes().Create(ctx, model.WaterActivityType{WaterActivityTypeCreate: in})
}

func (s *Service) ListEnvironmentalProductDeclarations(
	ctx context.Context, page store.Page,
) ([]model.EnvironmentalProductDeclaration, error) {
	return s.store.EnvironmentalProductDeclarations().List(ctx, page)
}

func (s *Service) GetEnvironmentalProductDeclaration(
	ctx context.Context, pk string,
) (model.EnvironmentalProductDeclaration, error) {
	return s.store.EnvironmentalProductDeclarations().Get(ctx, pk)
}

func (s *Service) CreateEnvironmentalProductDeclaration(
	ctx context.Context, in model.EnvironmentalProductDeclarationCreate,
) (model.EnvironmentalProductDeclaration, error) {
	if err := in.Validate(); err != nil {
		return model.EnvironmentalProductDeclaration{}, err
	}
	return s.store.EnvironmentalProductDeclarations().Create(ctx,
		model.EnvironmentalProductDeclaration{EnvironmentalProductDeclarationCreate: in})
}
