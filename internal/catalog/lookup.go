package catalog

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/rshade/openfootprint/internal/model"
	"github.com/rshade/openfootprint/internal/store"
)

// Placeholder names for unresolved references.
const (
	UnknownOrganization = "Unknown Organization"
	UnknownFacility     = "Unknown Facility"
	NotApplicable       = "N/A"
	NoParent            = "None"
	UnknownParent       = "Unknown"
)

// Lookup resolves organization and facility ids to display names.
type Lookup struct {
	organizations map[string]string
	facilities    map[string]string
}

// NewLookup builds a Lookup from already loaded records.
func NewLookup(orgs []model.Organization, facilities []model.Facility) *Lookup {
	l := &Lookup{
		organizations: make(map[string]string, len(orgs)),
		facilities:    make(map[string]string, len(facilities)),
	}
	for _, o := range orgs {
		l.organizations[o.OrganizationPK] = o.Name
	}
	for _, f := range facilities {
		l.facilities[f.FacilityPK] = f.Name
	}
	return l
}

// Lookup snapshots every organization and facility.
func (s *Service) Lookup(ctx context.Context) (*Lookup, error) {
	var (
		orgs       []model.Organization
		facilities []model.Facility
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		orgs, err = store.ListAll(gctx, s.store.Organizations())
		if err != nil {
			return fmt.Errorf("loading organizations: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		facilities, err = store.ListAll(gctx, s.store.Facilities())
		if err != nil {
			return fmt.Errorf("loading facilities: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return NewLookup(orgs, facilities), nil
}

// OrganizationName returns the organization's name or UnknownOrganization.
func (l *Lookup) OrganizationName(id string) string {
	if name, ok := l.organizations[id]; ok {
		return name
	}
	return UnknownOrganization
}

// FacilityName returns NotApplicable for an empty id, the facility's name,
// or UnknownFacility.
func (l *Lookup) FacilityName(id string) string {
	if id == "" {
		return NotApplicable
	}
	if name, ok := l.facilities[id]; ok {
		return name
	}
	return UnknownFacility
}

// ParentName returns NoParent for an empty id, the parent's name, or UnknownParent.
func (l *Lookup) ParentName(id string) string {
	if id == "" {
		return NoParent
	}
	if name, ok := l.organizations[id]; ok {
		return name
	}
	return UnknownParent
}

// Organizations returns id/name pairs in no particular order, for select inputs.
func (l *Lookup) Organizations() map[string]string { return l.organizations }

// Facilities returns id/name pairs in no particular order, for select inputs.
func (l *Lookup) Facilities() map[string]string { return l.facilities }
