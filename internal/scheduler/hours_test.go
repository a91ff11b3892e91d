package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveHours(t *testing.T) {
	cases := []struct {
		name     string
		credits  int
		category Category
		want     Hours
	}{
		{"theory one credit", 1, CategoryTheory, Hours{Theory: 1}},
		{"theory four credits", 4, CategoryTheory, Hours{Theory: 4}},
		{"lab two credits", 2, CategoryLab, Hours{Lab: 2, Block: 2}},
		{"lab integrated two", 2, CategoryLabIntegrated, Hours{Lab: 3, LabIntegrated: 3, Block: 3}},
		{"lab integrated three", 3, CategoryLabIntegrated, Hours{Theory: 2, Lab: 2, LabIntegrated: 4, Block: 2}},
		{"lab integrated four", 4, CategoryLabIntegrated, Hours{Theory: 3, Lab: 2, LabIntegrated: 5, Block: 2}},
		{"lab integrated five", 5, CategoryLabIntegrated, Hours{Theory: 3, Lab: 4, LabIntegrated: 7, Block: 4}},
		{"lab integrated six", 6, CategoryLabIntegrated, Hours{Theory: 3, Lab: 4, LabIntegrated: 7, Block: 4}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ResolveHours(tc.credits, tc.category))
		})
	}
}

// Unmapped combinations silently produce no demand. This pins the current
// behaviour; whether such courses should be reported is still undecided.
func TestResolveHoursUnmappedIsZero(t *testing.T) {
	unmapped := []struct {
		credits  int
		category Category
	}{
		{6, CategoryTheory},
		{0, CategoryTheory},
		{3, CategoryLab},
		{1, CategoryLabIntegrated},
		{7, CategoryLabIntegrated},
		{3, Category("Seminar")},
	}
	for _, u := range unmapped {
		h := ResolveHours(u.credits, u.category)
		assert.True(t, h.Zero(), "%s/%d should resolve to zero", u.category, u.credits)
	}
}

func TestParseCategory(t *testing.T) {
	cases := map[string]Category{
		"Theory":         CategoryTheory,
		" lab ":          CategoryLab,
		"Lab Integrated": CategoryLabIntegrated,
		"LAB_INTEGRATED": CategoryLabIntegrated,
		"labintegrated":  CategoryLabIntegrated,
	}
	for raw, want := range cases {
		got, ok := ParseCategory(raw)
		assert.True(t, ok, raw)
		assert.Equal(t, want, got, raw)
	}

	_, ok := ParseCategory("elective")
	assert.False(t, ok)
}
