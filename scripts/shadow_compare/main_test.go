package main

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func previewServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/timetables/preview", r.URL.Path)
		assert.Equal(t, "Bearer tkn", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestComparePlanIgnoresVolatileFields(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "p.yaml"), []byte("semester: \"5\"\nbatches: [A]\n"), 0o600))

	base := previewServer(t, `{"data":{"runId":"r1","proposalId":"p1","timetable":{"A":{"Monday":{}}},"unscheduled":[]}}`)
	cand := previewServer(t, `{"data":{"runId":"r2","proposalId":"p2","timetable":{"A":{"Monday":{}}},"unscheduled":[{"batch":"A"}]}}`)

	comp := comparePlan(http.DefaultClient, base.URL+"/api/v1", cand.URL+"/api/v1", "tkn", plan{Name: "p", File: "p.yaml"}, dir)
	require.NoError(t, comp.Error)
	assert.True(t, comp.StatusMatch)
	assert.True(t, comp.GridMatch)
	assert.Equal(t, 1, comp.UnscheduledDelta)
}

func TestComparePlanFlagsGridDiff(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "p.json"), []byte(`{"semester":"5"}`), 0o600))

	base := previewServer(t, `{"data":{"timetable":{"A":{"Monday":{"08:30-09:20":null}}}}}`)
	cand := previewServer(t, `{"data":{"timetable":{"A":{"Monday":{"08:30-09:20":{"courseCode":"MA101"}}}}}}`)

	comp := comparePlan(http.DefaultClient, base.URL+"/api/v1", cand.URL+"/api/v1", "tkn", plan{Name: "p", File: "p.json"}, dir)
	require.NoError(t, comp.Error)
	assert.False(t, comp.GridMatch)
}

func TestLoadPlansRequiresEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plans.yaml")
	require.NoError(t, os.WriteFile(path, []byte("plans: []\n"), 0o600))
	_, err := loadPlans(path)
	assert.Error(t, err)

	plans, err := loadPlans("plans.yaml")
	require.NoError(t, err)
	assert.Equal(t, "two-batch-lab-mix", plans[0].Name)
}
