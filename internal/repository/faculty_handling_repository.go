package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-timetable-api/internal/models"
)

// FacultyHandlingRepository reads the faculty course-handling directory.
type FacultyHandlingRepository struct {
	db *sqlx.DB
}

// NewFacultyHandlingRepository constructs repository.
func NewFacultyHandlingRepository(db *sqlx.DB) *FacultyHandlingRepository {
	return &FacultyHandlingRepository{db: db}
}

// ListByCourseCodes returns the links for the given courses in insertion
// order, which is the order faculty resolution relies on.
func (r *FacultyHandlingRepository) ListByCourseCodes(ctx context.Context, codes []string) ([]models.FacultyCourseHandling, error) {
	if len(codes) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(`SELECT id, faculty_name, course_code, role, batch, created_at
FROM faculty_course_handling WHERE course_code IN (?) ORDER BY created_at, id`, codes)
	if err != nil {
		return nil, fmt.Errorf("build faculty handling query: %w", err)
	}
	var links []models.FacultyCourseHandling
	if err := r.db.SelectContext(ctx, &links, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("list faculty handling: %w", err)
	}
	return links, nil
}
