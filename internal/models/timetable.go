package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// Timetable is the stored weekly grid of one batch for a semester. Grid,
// Unscheduled and Stats hold the JSON encoding of the scheduler output.
type Timetable struct {
	ID          string         `db:"id" json:"id"`
	RunID       string         `db:"run_id" json:"run_id"`
	Semester    string         `db:"semester" json:"semester"`
	Batch       string         `db:"batch" json:"batch"`
	StudentType string         `db:"student_type" json:"student_type"`
	Grid        types.JSONText `db:"grid" json:"grid"`
	Unscheduled types.JSONText `db:"unscheduled" json:"unscheduled"`
	Stats       types.JSONText `db:"stats" json:"stats"`
	GeneratedBy *string        `db:"generated_by" json:"generated_by,omitempty"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updated_at"`
}

// TimetableSummary is the list view of a stored timetable.
type TimetableSummary struct {
	ID               string    `db:"id" json:"id"`
	RunID            string    `db:"run_id" json:"run_id"`
	Semester         string    `db:"semester" json:"semester"`
	Batch            string    `db:"batch" json:"batch"`
	StudentType      string    `db:"student_type" json:"student_type"`
	UnscheduledCount int       `db:"unscheduled_count" json:"unscheduled_count"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}

// FacultyCourseHandling links a faculty member to a course they teach,
// optionally for one batch only.
type FacultyCourseHandling struct {
	ID          string    `db:"id" json:"id"`
	FacultyName string    `db:"faculty_name" json:"faculty_name"`
	CourseCode  string    `db:"course_code" json:"course_code"`
	Role        string    `db:"role" json:"role"`
	Batch       *string   `db:"batch" json:"batch,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
