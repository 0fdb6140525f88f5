package store_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/openfootprint/internal/model"
	"github.com/rshade/openfootprint/internal/store"
)

func openTestStore(t *testing.T, opts ...store.Option) *store.SQLite {
	t.Helper()
	s, err := store.OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "db", "test.db"), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func org(pk, name string) model.Organization {
	return model.Organization{OrganizationCreate: model.OrganizationCreate{OrganizationPK: pk, Name: name}}
}

func TestPageNormalize(t *testing.T) {
	tests := []struct {
		name    string
		page    store.Page
		want    store.Page
		wantErr bool
	}{
		{name: "zero uses default", page: store.Page{}, want: store.Page{Limit: store.DefaultLimit}},
		{name: "explicit", page: store.Page{Skip: 5, Limit: 10}, want: store.Page{Skip: 5, Limit: 10}},
		{name: "max", page: store.Page{Limit: store.MaxLimit}, want: store.Page{Limit: store.MaxLimit}},
		{name: "over max", page: store.Page{Limit: store.MaxLimit + 1}, wantErr: true},
		{name: "negative skip", page: store.Page{Skip: -1}, wantErr: true},
		{name: "negative limit", page: store.Page{Limit: -1}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.page.Normalize()
			if tt.wantErr {
				require.ErrorIs(t, err, store.ErrInvalidPage)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCreateListGet(t *testing.T) {
	ctx := context.Background()
	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s := openTestStore(t, store.WithClock(func() time.Time { return fixed }))
	orgs := s.Organizations()

	for _, o := range []model.Organization{org("b", "Beta"), org("a", "Alpha"), org("c", "Gamma")} {
		created, err := orgs.Create(ctx, o)
		require.NoError(t, err)
		assert.Equal(t, fixed, created.CreatedAt)
		assert.Nil(t, created.UpdatedAt)
	}

	list, err := orgs.List(ctx, store.Page{})
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"b", "a", "c"}, []string{list[0].OrganizationPK, list[1].OrganizationPK, list[2].OrganizationPK})

	page, err := orgs.List(ctx, store.Page{Skip: 1, Limit: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "a", page[0].OrganizationPK)

	got, err := orgs.Get(ctx, "c")
	require.NoError(t, err)
	assert.Equal(t, "Gamma", got.Name)

	n, err := orgs.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	// Kinds do not share keys.
	n, err = s.Facilities().Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestListEmptyIsNotNil(t *testing.T) {
	s := openTestStore(t)
	list, err := s.Facilities().List(context.Background(), store.Page{})
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestCreateDuplicate(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	_, err := s.Organizations().Create(ctx, org("a", "Alpha"))
	require.NoError(t, err)
	_, err = s.Organizations().Create(ctx, org("a", "Again"))
	require.ErrorIs(t, err, store.ErrAlreadyExists)

	got, err := s.Organizations().Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "Alpha", got.Name)
}

func TestGetNotFound(t *testing.T) {
	s := openTestStore(t)
	_, err := s.EmissionReports().Get(context.Background(), "missing")
	require.ErrorIs(t, err, store.ErrNotFound)
	assert.Contains(t, err.Error(), "Emission Report")
}

func TestUpdateKeepsCreatedAt(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	s := openTestStore(t, store.WithClock(func() time.Time { return now }))

	_, err := s.Organizations().Create(ctx, org("a", "Alpha"))
	require.NoError(t, err)

	now = now.Add(time.Hour)
	changed := org("a", "Alpha Renamed")
	updated, err := s.Organizations().Update(ctx, changed)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), updated.CreatedAt)
	require.NotNil(t, updated.UpdatedAt)
	assert.Equal(t, now, *updated.UpdatedAt)

	got, err := s.Organizations().Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "Alpha Renamed", got.Name)
	require.NotNil(t, got.UpdatedAt)

	_, err = s.Organizations().Update(ctx, org("zzz", "Nope"))
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestCSRDLinksRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	r := model.NewCSRDReport(model.CSRDReportCreate{
		CSRDReportPK:      "csrd-1",
		Title:             "Report",
		EmissionReportIDs: []string{"er-2", "er-1", "er-2"},
	})
	_, err := s.CSRDReports().Create(ctx, r)
	require.NoError(t, err)

	got, err := s.CSRDReports().Get(ctx, "csrd-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"er-2", "er-1"}, got.EmissionReportIDs)
	assert.NotNil(t, got.ESRSCompliance)

	got.EmissionReportIDs = []string{"er-3"}
	got.ESRSCompliance = model.Section{"overall_status": "passed"}
	_, err = s.CSRDReports().Update(ctx, got)
	require.NoError(t, err)

	list, err := s.CSRDReports().List(ctx, store.Page{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, []string{"er-3"}, list[0].EmissionReportIDs)
	assert.Equal(t, "passed", list[0].ESRSCompliance["overall_status"])
}

func TestRecent(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	_, err := s.Organizations().Create(ctx, org("o1", "One"))
	require.NoError(t, err)
	_, err = s.Facilities().Create(ctx, model.Facility{FacilityCreate: model.FacilityCreate{FacilityPK: "f1", Name: "Plant"}})
	require.NoError(t, err)
	_, err = s.Organizations().Create(ctx, org("o2", "Two"))
	require.NoError(t, err)

	recent, err := s.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, model.KindOrganization, recent[0].Kind)
	assert.Equal(t, "o2", recent[0].PK)
	assert.Equal(t, model.KindFacility, recent[1].Kind)
	assert.Contains(t, string(recent[1].Body), `"name":"Plant"`)

	none, err := s.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestPersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "persist.db")

	s, err := store.OpenSQLite(ctx, path)
	require.NoError(t, err)
	_, err = s.Organizations().Create(ctx, org("a", "Alpha"))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = store.OpenSQLite(ctx, path)
	require.NoError(t, err)
	defer s.Close()
	got, err := s.Organizations().Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "Alpha", got.Name)
	assert.Equal(t, path, s.Path())
}

func TestSeedIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	res, err := store.Seed(ctx, s)
	require.NoError(t, err)
	assert.Equal(t, 17, res.Created)
	assert.Zero(t, res.Skipped)

	res, err = store.Seed(ctx, s)
	require.NoError(t, err)
	assert.Zero(t, res.Created)
	assert.Equal(t, 17, res.Skipped)

	orgs, err := s.Organizations().List(ctx, store.Page{})
	require.NoError(t, err)
	require.Len(t, orgs, 3)
	assert.Equal(t, "Example Corporation", orgs[0].Name)
	assert.Equal(t, "2025-01-15T10:00:00Z", orgs[0].CreatedAt.Format(time.RFC3339))

	csrd, err := s.CSRDReports().Get(ctx, "namespace:transactional-data--CSRDReport:12345")
	require.NoError(t, err)
	assert.Len(t, csrd.EmissionReportIDs, 2)
}

func TestDelayed(t *testing.T) {
	ctx := context.Background()
	base := openTestStore(t)
	_, err := base.Organizations().Create(ctx, org("a", "Alpha"))
	require.NoError(t, err)

	assert.Same(t, base, store.NewDelayed(base, 0))

	d := store.NewDelayed(base, 20*time.Millisecond)
	start := time.Now()
	list, err := d.Organizations().List(ctx, store.Page{})
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = d.Organizations().Get(cancelled, "a")
	require.ErrorIs(t, err, context.Canceled)

	_, err = d.Recent(cancelled, 1)
	require.ErrorIs(t, err, context.Canceled)

	// Writes are not delayed or cancelled by the wrapper.
	_, err = d.Organizations().Create(ctx, org("b", "Beta"))
	require.NoError(t, err)
}
