package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-timetable-api/internal/dto"
	"github.com/noah-isme/sma-timetable-api/internal/models"
	"github.com/noah-isme/sma-timetable-api/internal/service"
)

const samplePlan = `
semester: "5"
studentType: Regular
batches: [CSE-A, CSE-B]
courses:
  - code: MA101
    credits: 3
    category: theory
  - code: CS104
    credits: 2
    category: lab
faculty:
  - facultyName: Anand
    courseCode: MA101
    batch: CSE-A
  - facultyName: Bala
    courseCode: MA101
    batch: CSE-B
  - facultyName: Deepa
    courseCode: CS104
`

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	root := newRootCmd(out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(append([]string{"--log-level", "error"}, args...))
	err := root.Execute()
	return out.String(), err
}

func writePlan(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func countCourse(grid dto.WeeklyGrid, code string) int {
	n := 0
	for _, slots := range grid {
		for _, cell := range slots {
			if cell != nil && cell.CourseCode == code {
				n++
			}
		}
	}
	return n
}

func TestDecodePlanAcceptsYAMLAndJSON(t *testing.T) {
	fromYAML, err := decodePlan([]byte(samplePlan))
	require.NoError(t, err)

	asJSON, err := json.Marshal(fromYAML)
	require.NoError(t, err)
	fromJSON, err := decodePlan(asJSON)
	require.NoError(t, err)

	assert.Equal(t, fromYAML, fromJSON)
	assert.Equal(t, []string{"CSE-A", "CSE-B"}, fromYAML.Batches)
	assert.Equal(t, "Anand", fromYAML.Faculty[0].FacultyName)
	assert.Equal(t, 3, fromYAML.Courses[0].Credits)
}

func TestDecodePlanRejectsEmpty(t *testing.T) {
	_, err := decodePlan([]byte("   \n"))
	assert.Error(t, err)
}

func TestGenerateJSON(t *testing.T) {
	out, err := runCLI(t, "generate", "--input", writePlan(t, "plan.yaml", samplePlan))
	require.NoError(t, err)

	var resp dto.GenerateTimetableResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "5", resp.Semester)
	assert.NotEmpty(t, resp.ProposalID)
	require.Len(t, resp.Timetable, 2)
	for _, batch := range []string{"CSE-A", "CSE-B"} {
		assert.Equal(t, 3, countCourse(resp.Timetable[batch], "MA101"), batch)
		assert.Equal(t, 2, countCourse(resp.Timetable[batch], "CS104"), batch)
	}
	assert.Empty(t, resp.Unscheduled)
}

func TestGenerateCSVWritesOneTablePerBatch(t *testing.T) {
	target := filepath.Join(t.TempDir(), "out.csv")
	_, err := runCLI(t, "generate", "-i", writePlan(t, "plan.yaml", samplePlan), "--format", "csv", "-o", target)
	require.NoError(t, err)

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, "# Timetable CSE-A\n")
	assert.Contains(t, text, "# Timetable CSE-B\n")
	assert.Equal(t, 2, strings.Count(text, "Day,08:30-09:20"))
	assert.Contains(t, text, "MA101 (Anand)")
}

func TestGenerateRejectsBadInput(t *testing.T) {
	plan := writePlan(t, "plan.yaml", samplePlan)

	_, err := runCLI(t, "generate", "-i", plan, "--format", "xml")
	assert.ErrorContains(t, err, "unsupported format")

	_, err = runCLI(t, "generate", "-i", plan, "--phases", "labs,lunch")
	assert.Error(t, err)

	_, err = runCLI(t, "generate", "-i", writePlan(t, "bad.yaml", "semester: 5\nbatches: []\n"))
	assert.Error(t, err)

	_, err = runCLI(t, "generate")
	assert.Error(t, err)
}

func TestHoursCommand(t *testing.T) {
	out, err := runCLI(t, "hours", "--credits", "3", "--category", "lab integrated")
	require.NoError(t, err)

	var resp dto.HoursResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "LabIntegrated", resp.Category)
	assert.Equal(t, 2, resp.Theory)
	assert.Equal(t, 4, resp.LabIntegrated)
	assert.Equal(t, 2, resp.Block)

	_, err = runCLI(t, "hours", "--credits", "3", "--category", "seminar")
	assert.Error(t, err)
}

func TestTokenCommandIssuesVerifiableToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "cli-secret")
	t.Setenv("JWT_ISSUER", "")

	out, err := runCLI(t, "token", "--user-id", "u-1", "--role", "faculty")
	require.NoError(t, err)

	claims, err := service.NewTokenService(service.TokenConfig{Secret: "cli-secret"}).ValidateToken(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, models.RoleFaculty, claims.Role)

	_, err = runCLI(t, "token", "--user-id", "u-1", "--role", "janitor")
	assert.Error(t, err)
}
