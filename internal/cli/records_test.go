package cli_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	orgExample   = "namespace:master-data--Organization:12345"
	csrdExample  = "namespace:transactional-data--CSRDReport:12345"
	facilityBeta = "Distribution Center Beta"
)

func TestSeedIsIdempotent(t *testing.T) {
	db := setupCLITest(t)

	out, err := execute(t, "seed", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "Seeded ")
	assert.Contains(t, out, "(0 already present)")

	out, err = execute(t, "seed", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "Seeded 0 records")
}

func TestOrganizationListTable(t *testing.T) {
	db := setupCLITest(t)

	out, err := execute(t, "organization", "list", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "Example Corporation")
	assert.Contains(t, out, "Distribution Division")
	assert.Contains(t, out, "Showing 1-3 of 3 organizations (page 1 of 1)")
}

func TestOrganizationListAlias(t *testing.T) {
	db := setupCLITest(t)

	out, err := execute(t, "organizations", "list", "--db", db, "--output", "ndjson")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	var first map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, orgExample, first["organization_pk"])
}

func TestListPagination(t *testing.T) {
	db := setupCLITest(t)

	out, err := execute(t, "facility", "list", "--db", db, "--skip", "1", "--limit", "1", "--output", "json")
	require.NoError(t, err)
	var recs []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &recs))
	require.Len(t, recs, 1)
	assert.Equal(t, facilityBeta, recs[0]["name"])

	out, err = execute(t, "facility", "list", "--db", db, "--page", "2", "--page-size", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "European Operations HQ")
	assert.NotContains(t, out, facilityBeta)
	assert.Contains(t, out, "Showing 3-3 of 3 facilities (page 2 of 2)")
}

func TestListSort(t *testing.T) {
	db := setupCLITest(t)

	out, err := execute(t, "organization", "list", "--db", db, "--sort", "name", "--output", "json")
	require.NoError(t, err)
	var recs []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &recs))
	require.Len(t, recs, 3)
	assert.Equal(t, "Distribution Division", recs[0]["name"])
	assert.Equal(t, "Example Corporation", recs[1]["name"])
	assert.Equal(t, "Manufacturing Division", recs[2]["name"])

	_, err = execute(t, "organization", "list", "--db", db, "--sort", "colour")
	require.Error(t, err)
}

func TestListPaginationErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"negative skip", []string{"--skip", "-1"}, "skip cannot be negative"},
		{"limit too large", []string{"--limit", "1001"}, "limit must be at most"},
		{"page and skip", []string{"--page", "1", "--skip", "2"}, "mutually exclusive"},
		{"page-size without page", []string{"--page-size", "10"}, "page must be specified"},
		{"bad sort order", []string{"--sort", "name:up"}, "sort order must be"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := setupCLITest(t)
			args := append([]string{"organization", "list", "--db", db}, tt.args...)
			_, err := execute(t, args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestOrganizationCreateAndGet(t *testing.T) {
	db := setupCLITest(t)

	out, err := execute(t, "organization", "create", "--db", db,
		"--pk", "org:acme", "--name", "Acme Manufacturing", "--parent", orgExample)
	require.NoError(t, err)
	assert.Equal(t, "Organization org:acme created.\n", out)

	out, err = execute(t, "organization", "get", "org:acme", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "Acme Manufacturing")
	assert.Contains(t, out, "Parent Organization:")
	assert.Contains(t, out, "Example Corporation")

	out, err = execute(t, "organization", "get", "org:acme", "--db", db, "-o", "json")
	require.NoError(t, err)
	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &rec))
	assert.Equal(t, "Acme Manufacturing", rec["name"])
	assert.NotEmpty(t, rec["created_at"])

	_, err = execute(t, "organization", "create", "--db", db, "--pk", "org:acme", "--name", "Again")
	require.Error(t, err, "duplicate keys are rejected")

	_, err = execute(t, "organization", "get", "org:none", "--db", db)
	require.Error(t, err)
}

func TestCreateValidationErrors(t *testing.T) {
	db := setupCLITest(t)

	_, err := execute(t, "organization", "create", "--db", db, "--pk", "org:x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "name")

	_, err = execute(t, "facility", "create", "--db", db, "--pk", "fac:x", "--name", "X", "--latitude", "north")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--latitude")
}

func TestCreateFromFile(t *testing.T) {
	db := setupCLITest(t)

	path := filepath.Join(t.TempDir(), "facility.json")
	doc := `{"facility_pk":"fac:gamma","name":"Plant Gamma","city":"Lyon","country":"France",` +
		`"organization_id":"` + orgExample + `"}`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	out, err := execute(t, "facility", "create", "--db", db, "--file", path, "--output", "json")
	require.NoError(t, err)
	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &rec))
	assert.Equal(t, "fac:gamma", rec["facility_pk"])
	assert.Equal(t, "Lyon", rec["city"])

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"facility_pk":"fac:x","colour":"red"}`), 0o600))
	_, err = execute(t, "facility", "create", "--db", db, "--file", bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decoding")
}
