package scheduler

import "strings"

// Category classifies how a course is taught.
type Category string

const (
	CategoryTheory        Category = "Theory"
	CategoryLab           Category = "Lab"
	CategoryLabIntegrated Category = "LabIntegrated"
)

// ParseCategory normalises free-form category names such as "lab integrated".
func ParseCategory(raw string) (Category, bool) {
	key := strings.ToLower(strings.TrimSpace(raw))
	key = strings.NewReplacer(" ", "", "_", "", "-", "").Replace(key)
	switch key {
	case "theory":
		return CategoryTheory, true
	case "lab":
		return CategoryLab, true
	case "labintegrated":
		return CategoryLabIntegrated, true
	}
	return "", false
}

// Hours is the weekly session demand of a course.
type Hours struct {
	Theory        int `json:"theory"`
	Lab           int `json:"lab"`
	LabIntegrated int `json:"labIntegrated"`
	Block         int `json:"block"`
}

// Zero reports whether the course needs no sessions at all.
func (h Hours) Zero() bool {
	return h == Hours{}
}

// ResolveHours maps credits and category to session counts. Combinations
// outside the table resolve to zero sessions.
func ResolveHours(credits int, category Category) Hours {
	switch category {
	case CategoryTheory:
		if credits >= 1 && credits <= 4 {
			return Hours{Theory: credits}
		}
	case CategoryLab:
		if credits == 2 {
			return Hours{Lab: 2, Block: 2}
		}
	case CategoryLabIntegrated:
		switch credits {
		case 2:
			return Hours{Lab: 3, LabIntegrated: 3, Block: 3}
		case 3:
			return Hours{Theory: 2, Lab: 2, LabIntegrated: 4, Block: 2}
		case 4:
			return Hours{Theory: 3, Lab: 2, LabIntegrated: 5, Block: 2}
		case 5, 6:
			return Hours{Theory: 3, Lab: 4, LabIntegrated: 7, Block: 4}
		}
	}
	return Hours{}
}
