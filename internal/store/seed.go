package store

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/rshade/openfootprint/internal/model"
)

// SeedResult counts what Seed inserted and skipped.
type SeedResult struct {
	Created int
	Skipped int
}

func ptr[T any](v T) *T { return &v }

func stamp(s string) model.Timestamps {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return model.Timestamps{CreatedAt: t}
}

// Fixture records. Their timestamps are kept so seeded data reads the same
// on every machine.
//
//nolint:gochecknoglobals // read-only fixture data
var (
	seedOrganizations = []model.Organization{
		{
			OrganizationCreate: model.OrganizationCreate{
				OrganizationPK: "namespace:master-data--Organization:12345",
				Name:           "Example Corporation",
				Description:    "A multinational corporation",
			},
			Timestamps: stamp("2025-01-15T10:00:00Z"),
		},
		{
			OrganizationCreate: model.OrganizationCreate{
				OrganizationPK:       "namespace:master-data--Organization:12346",
				Name:                 "Manufacturing Division",
				Description:          "Manufacturing operations division",
				ParentOrganizationID: "namespace:master-data--Organization:12345",
			},
			Timestamps: stamp("2025-01-16T11:30:00Z"),
		},
		{
			OrganizationCreate: model.OrganizationCreate{
				OrganizationPK:       "namespace:master-data--Organization:12347",
				Name:                 "Distribution Division",
				Description:          "Distribution and logistics division",
				ParentOrganizationID: "namespace:master-data--Organization:12345",
			},
			Timestamps: stamp("2025-01-17T09:15:00Z"),
		},
	}

	seedFacilities = []model.Facility{
		{
			FacilityCreate: model.FacilityCreate{
				FacilityPK:     "namespace:master-data--Facility:12345",
				Name:           "Manufacturing Plant Alpha",
				Description:    "Primary manufacturing facility",
				Address:        "123 Industrial Way",
				City:           "Springfield",
				Country:        "United States",
				Latitude:       ptr(37.7749),
				Longitude:      ptr(-122.4194),
				OrganizationID: "namespace:master-data--Organization:12346",
			},
			Timestamps: stamp("2025-01-15T10:00:00Z"),
		},
		{
			FacilityCreate: model.FacilityCreate{
				FacilityPK:     "namespace:master-data--Facility:12346",
				Name:           "Distribution Center Beta",
				Description:    "Regional distribution center",
				Address:        "456 Logistics Blvd",
				City:           "Chicago",
				Country:        "United States",
				Latitude:       ptr(41.8781),
				Longitude:      ptr(-87.6298),
				OrganizationID: "namespace:master-data--Organization:12347",
			},
			Timestamps: stamp("2025-01-16T11:30:00Z"),
		},
		{
			FacilityCreate: model.FacilityCreate{
				FacilityPK:     "namespace:master-data--Facility:12347",
				Name:           "European Operations HQ",
				Description:    "European headquarters and operations",
				Address:        "78 Industrial Park",
				City:           "Munich",
				Country:        "Germany",
				Latitude:       ptr(48.1351),
				Longitude:      ptr(11.5820),
				OrganizationID: "namespace:master-data--Organization:12345",
			},
			Timestamps: stamp("2025-01-17T09:15:00Z"),
		},
	}

	seedEmissionReports = []model.EmissionReport{
		{
			EmissionReportCreate: model.EmissionReportCreate{
				EmissionReportPK:  "namespace:transactional-data--EmissionReport:12345",
				Description:       "Annual GHG emissions report for 2024",
				ReportPeriodStart: model.MustDate("2024-01-01"),
				ReportPeriodEnd:   model.MustDate("2024-12-31"),
				OrganizationID:    "namespace:master-data--Organization:12345",
				ReportType:        model.ReportTypeCSRD,
				Status:            model.ReportStatusFinal,
			},
			Timestamps: stamp("2025-01-20T14:30:00Z"),
		},
		{
			EmissionReportCreate: model.EmissionReportCreate{
				EmissionReportPK:  "namespace:transactional-data--EmissionReport:12346",
				Description:       "Q1 2025 emissions report",
				ReportPeriodStart: model.MustDate("2025-01-01"),
				ReportPeriodEnd:   model.MustDate("2025-03-31"),
				OrganizationID:    "namespace:master-data--Organization:12345",
				ReportType:        model.ReportTypeCSRD,
				Status:            model.ReportStatusDraft,
			},
			Timestamps: stamp("2025-04-05T09:15:00Z"),
		},
		{
			EmissionReportCreate: model.EmissionReportCreate{
				EmissionReportPK:  "namespace:transactional-data--EmissionReport:12347",
				Description:       "Manufacturing Division Annual Report 2024",
				ReportPeriodStart: model.MustDate("2024-01-01"),
				ReportPeriodEnd:   model.MustDate("2024-12-31"),
				OrganizationID:    "namespace:master-data--Organization:12346",
				ReportType:        model.ReportTypeGHG,
				Status:            model.ReportStatusSubmitted,
			},
			Timestamps: stamp("2025-01-25T11:45:00Z"),
		},
	}

	seedEmissionStatements = []model.EmissionStatement{
		{
			EmissionStatementCreate: model.EmissionStatementCreate{
				EmissionStatementPK:        "namespace:transactional-data--EmissionStatement:12345",
				EmissionActivityID:         "namespace:reference-data--EmissionActivity:67890",
				EmissionCalculationModelID: "namespace:reference-data--EmissionCalculationModel:54321",
				Value:                      1250.5,
				Unit:                       model.UnitKgCO2e,
				ReportingPeriodStart:       model.MustDate("2024-01-01"),
				ReportingPeriodEnd:         model.MustDate("2024-01-31"),
				FacilityID:                 "namespace:master-data--Facility:12345",
				OrganizationID:             "namespace:master-data--Organization:12345",
			},
			Timestamps: stamp("2025-01-20T14:30:00Z"),
		},
		{
			EmissionStatementCreate: model.EmissionStatementCreate{
				EmissionStatementPK:        "namespace:transactional-data--EmissionStatement:12346",
				EmissionActivityID:         "namespace:reference-data--EmissionActivity:67891",
				EmissionCalculationModelID: "namespace:reference-data--EmissionCalculationModel:54322",
				Value:                      875.2,
				Unit:                       model.UnitKgCO2e,
				ReportingPeriodStart:       model.MustDate("2024-02-01"),
				ReportingPeriodEnd:         model.MustDate("2024-02-29"),
				FacilityID:                 "namespace:master-data--Facility:12345",
				OrganizationID:             "namespace:master-data--Organization:12345",
			},
			Timestamps: stamp("2025-01-21T10:15:00Z"),
		},
		{
			EmissionStatementCreate: model.EmissionStatementCreate{
				EmissionStatementPK:        "namespace:transactional-data--EmissionStatement:12347",
				EmissionActivityID:         "namespace:reference-data--EmissionActivity:67892",
				EmissionCalculationModelID: "namespace:reference-data--EmissionCalculationModel:54323",
				Value:                      3250.8,
				Unit:                       model.UnitKgCO2e,
				ReportingPeriodStart:       model.MustDate("2024-01-01"),
				ReportingPeriodEnd:         model.MustDate("2024-01-31"),
				FacilityID:                 "namespace:master-data--Facility:12346",
				OrganizationID:             "namespace:master-data--Organization:12346",
			},
			Timestamps: stamp("2025-01-22T09:45:00Z"),
		},
	}

	seedCSRDReports = []model.CSRDReport{
		csrdFixture(model.CSRDReportCreate{
			CSRDReportPK:         "namespace:transactional-data--CSRDReport:12345",
			Title:                "Annual CSRD Compliance Report 2024",
			Description:          "Comprehensive CSRD report covering all ESRS requirements",
			ReportingPeriodStart: model.MustDate("2024-01-01"),
			ReportingPeriodEnd:   model.MustDate("2024-12-31"),
			OrganizationID:       "namespace:master-data--Organization:12345",
			ReportType:           model.CSRDReportTypeAnnual,
			Status:               model.CSRDStatusDraft,
			Version:              "1.0",
			PreparedBy:           "Sustainability Department",
			EmissionReportIDs: []string{
				"namespace:transactional-data--EmissionReport:12345",
				"namespace:transactional-data--EmissionReport:12346",
			},
		}, "2025-02-10T09:00:00Z"),
		csrdFixture(model.CSRDReportCreate{
			CSRDReportPK:         "namespace:transactional-data--CSRDReport:12346",
			Title:                "Manufacturing Division CSRD Report 2024",
			Description:          "Division-level CSRD disclosure for manufacturing operations",
			ReportingPeriodStart: model.MustDate("2024-01-01"),
			ReportingPeriodEnd:   model.MustDate("2024-12-31"),
			OrganizationID:       "namespace:master-data--Organization:12346",
			ReportType:           model.CSRDReportTypeAnnual,
			Status:               model.CSRDStatusInReview,
			Version:              "1.2",
			PreparedBy:           "Manufacturing Sustainability Team",
			ApprovedBy:           "Sustainability Director",
			EmissionReportIDs: []string{
				"namespace:transactional-data--EmissionReport:12347",
			},
		}, "2025-02-12T15:20:00Z"),
	}

	seedWaterActivityTypes = []model.WaterActivityType{
		{
			WaterActivityTypeCreate: model.WaterActivityTypeCreate{
				WaterActivityTypeID:   "namespace:master-data--WaterActivityType:12345",
				WaterActivityTypeName: "Water Withdrawal",
				Description:           "Extraction of water from any source",
			},
			Timestamps: stamp("2025-01-15T10:00:00Z"),
		},
	}

	seedEPDs = []model.EnvironmentalProductDeclaration{
		{
			EnvironmentalProductDeclarationCreate: model.EnvironmentalProductDeclarationCreate{
				EnvironmentalProductDeclarationPK: "namespace:master-data--EnvironmentalProductDeclaration:12345",
				Description:                       "EPD for Product XYZ",
				ProductName:                       "Product XYZ",
				OrganizationID:                    "namespace:master-data--Organization:12345",
				ValidFrom:                         model.MustDate("2025-01-01"),
				ValidTo:                           model.MustDate("2030-01-01"),
			},
			Timestamps: stamp("2025-01-15T10:00:00Z"),
		},
	}

	seedDataQuality = []model.DataQuality{
		{
			DataQualityCreate: model.DataQualityCreate{
				EntityID:           "namespace:transactional-data--EmissionStatement:12345",
				QualityScore:       ptr(85.5),
				VerificationStatus: model.VerificationVerified,
				VerificationDate:   model.MustDate("2025-03-15"),
				VerifiedBy:         "EcoVerify Inc.",
				Notes:              "Data verified through third-party audit",
			},
			Timestamps: stamp("2025-03-15T12:00:00Z"),
		},
	}
)

func csrdFixture(c model.CSRDReportCreate, created string) model.CSRDReport {
	r := model.NewCSRDReport(c)
	r.Timestamps = stamp(created)
	return r
}

// Seed loads the fixture records into s. Records whose key already exists
// are left untouched, so Seed can run on every start.
func Seed(ctx context.Context, s Store) (SeedResult, error) {
	var res SeedResult
	steps := []func() error{
		func() error { return seedAll(ctx, s.Organizations(), seedOrganizations, &res) },
		func() error { return seedAll(ctx, s.Facilities(), seedFacilities, &res) },
		func() error { return seedAll(ctx, s.EmissionReports(), seedEmissionReports, &res) },
		func() error { return seedAll(ctx, s.EmissionStatements(), seedEmissionStatements, &res) },
		func() error { return seedAll(ctx, s.CSRDReports(), seedCSRDReports, &res) },
		func() error { return seedAll(ctx, s.WaterActivityTypes(), seedWaterActivityTypes, &res) },
		func() error { return seedAll(ctx, s.EnvironmentalProductDeclarations(), seedEPDs, &res) },
		func() error { return seedAll(ctx, s.DataQuality(), seedDataQuality, &res) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return res, err
		}
	}

	zerolog.Ctx(ctx).Debug().
		Int("created", res.Created).
		Int("skipped", res.Skipped).
		Msg("seeded fixture records")
	return res, nil
}

func seedAll[T any](ctx context.Context, c Collection[T], recs []T, res *SeedResult) error {
	for _, rec := range recs {
		_, err := c.Create(ctx, rec)
		switch {
		case err == nil:
			res.Created++
		case errors.Is(err, ErrAlreadyExists):
			res.Skipped++
		default:
			return err
		}
	}
	return nil
}
