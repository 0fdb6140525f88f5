package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rshade/openfootprint/internal/carbon"
	"github.com/rshade/openfootprint/internal/model"
	"github.com/rshade/openfootprint/internal/store"
)

// RecentActivityLimit is how many records the dashboard lists as recent.
const RecentActivityLimit = 5

// ChecklistState is the progress of one compliance step.
type ChecklistState string

// Checklist states.
const (
	StateComplete   ChecklistState = "complete"
	StateInProgress ChecklistState = "in-progress"
	StatePending    ChecklistState = "pending"
)

// Counts are the record totals shown on the dashboard.
type Counts struct {
	Organizations      int `json:"organizations"`
	Facilities         int `json:"facilities"`
	EmissionReports    int `json:"emission_reports"`
	EmissionStatements int `json:"emission_statements"`
	CSRDReports        int `json:"csrd_reports"`
}

// ChecklistItem is one step of the CSRD compliance checklist.
type ChecklistItem struct {
	Label string         `json:"label"`
	State ChecklistState `json:"state"`
}

// Activity is a recently created record.
type Activity struct {
	Kind        model.Kind `json:"kind"`
	PK          string     `json:"pk"`
	Description string     `json:"description"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Dashboard summarises the stored data.
type Dashboard struct {
	Counts             Counts                   `json:"counts"`
	TotalEmissionsKg   float64                  `json:"total_emissions_kg_co2e"`
	TotalEmissionsText string                   `json:"total_emissions_text"`
	Equivalency        carbon.EquivalencyOutput `json:"equivalency"`
	CompliancePercent  int                      `json:"compliance_percent"`
	Checklist          []ChecklistItem          `json:"checklist"`
	RecentActivity     []Activity               `json:"recent_activity"`
}

// Dashboard loads counts, totals and recent activity concurrently.
func (s *Service) Dashboard(ctx context.Context) (Dashboard, error) {
	var (
		d          Dashboard
		statements []model.EmissionStatement
		reports    []model.EmissionReport
		csrd       []model.CSRDReport
		quality    []model.DataQuality
		recent     []store.Entry
	)

	g, gctx := errgroup.WithContext(ctx)
	count := func(dst *int, c func(context.Context) (int, error)) {
		g.Go(func() error {
			n, err := c(gctx)
			*dst = n
			return err
		})
	}
	count(&d.Counts.Organizations, s.store.Organizations().Count)
	count(&d.Counts.Facilities, s.store.Facilities().Count)
	g.Go(func() (err error) {
		statements, err = store.ListAll(gctx, s.store.EmissionStatements())
		return err
	})
	g.Go(func() (err error) {
		reports, err = store.ListAll(gctx, s.store.EmissionReports())
		return err
	})
	g.Go(func() (err error) {
		csrd, err = store.ListAll(gctx, s.store.CSRDReports())
		return err
	})
	g.Go(func() (err error) {
		quality, err = store.ListAll(gctx, s.store.DataQuality())
		return err
	})
	g.Go(func() (err error) {
		recent, err = s.store.Recent(gctx, RecentActivityLimit)
		return err
	})
	if err := g.Wait(); err != nil {
		return Dashboard{}, fmt.Errorf("loading dashboard: %w", err)
	}

	d.Counts.EmissionStatements = len(statements)
	d.Counts.EmissionReports = len(reports)
	d.Counts.CSRDReports = len(csrd)

	for _, st := range statements {
		kg, err := st.KgCO2e()
		if err != nil {
			continue
		}
		d.TotalEmissionsKg += kg
	}
	d.TotalEmissionsText = carbon.FormatKg(d.TotalEmissionsKg)
	if eq, err := carbon.Equivalencies(d.TotalEmissionsKg); err == nil {
		d.Equivalency = eq
	} else {
		d.Equivalency = carbon.EquivalencyOutput{IsEmpty: true}
	}

	d.Checklist = checklist(d.Counts, reports, csrd, quality)
	d.CompliancePercent = compliancePercent(d.Checklist)

	d.RecentActivity = make([]Activity, 0, len(recent))
	for _, e := range recent {
		d.RecentActivity = append(d.RecentActivity, Activity{
			Kind:        e.Kind,
			PK:          e.PK,
			Description: describe(e),
			CreatedAt:   e.CreatedAt,
		})
	}
	return d, nil
}

func checklist(
	c Counts, reports []model.EmissionReport, csrd []model.CSRDReport, quality []model.DataQuality,
) []ChecklistItem {
	presence := func(n int) ChecklistState {
		if n > 0 {
			return StateComplete
		}
		return StatePending
	}

	emissionData := presence(c.EmissionStatements)
	if emissionData == StatePending && c.EmissionReports > 0 {
		emissionData = StateInProgress
	}

	verification := StatePending
	for _, r := range reports {
		switch r.Status {
		case model.ReportStatusVerified:
			verification = StateComplete
		case model.ReportStatusSubmitted:
			if verification == StatePending {
				verification = StateInProgress
			}
		}
	}
	if len(quality) > 0 && verification == StatePending {
		verification = StateInProgress
	}

	final := StatePending
	for _, r := range csrd {
		switch r.Status {
		case model.CSRDStatusPublished, model.CSRDStatusSubmitted:
			final = StateComplete
		default:
			if final == StatePending {
				final = StateInProgress
			}
		}
	}

	return []ChecklistItem{
		{Label: "Organization structure defined", State: presence(c.Organizations)},
		{Label: "Facilities registered", State: presence(c.Facilities)},
		{Label: "Emission data collected", State: emissionData},
		{Label: "Verification in progress", State: verification},
		{Label: "Final report generation", State: final},
	}
}

// compliancePercent counts complete steps fully and in-progress steps as half.
func compliancePercent(items []ChecklistItem) int {
	if len(items) == 0 {
		return 0
	}
	var score float64
	for _, it := range items {
		switch it.State {
		case StateComplete:
			score++
		case StateInProgress:
			score += 0.5
		}
	}
	return int(score * 100 / float64(len(items)))
}

// describe builds a one-line activity description from a stored record.
func describe(e store.Entry) string {
	var fields map[string]any
	_ = json.Unmarshal(e.Body, &fields)
	label := e.PK
	for _, key := range []string{
		"name", "title", "description", "product_name", "water_activity_type_name", "emission_activity_id",
	} {
		if v, ok := fields[key].(string); ok && v != "" {
			label = v
			break
		}
	}
	return fmt.Sprintf("New %s created: %s", e.Kind.Title(), label)
}
