package dto

import (
	"time"

	"github.com/noah-isme/sma-timetable-api/internal/scheduler"
)

// UnassignedFaculty is shown in place of a faculty name when no faculty is
// linked to a course.
const UnassignedFaculty = "Unassigned"

// CourseRequest describes one course to place for every requested batch.
type CourseRequest struct {
	Code     string `json:"code" validate:"required,max=32"`
	Credits  int    `json:"credits" validate:"gte=0,lte=12"`
	Category string `json:"category" validate:"required,max=32"`
	// Batch, when set, is matched against faculty links instead of the batch
	// being scheduled.
	Batch    string `json:"batch,omitempty" validate:"omitempty,max=64"`
	Semester string `json:"semester,omitempty" validate:"omitempty,max=32"`
}

// FacultyLinkRequest overrides the stored faculty directory for one request.
type FacultyLinkRequest struct {
	FacultyName string `json:"facultyName" validate:"required,max=128"`
	CourseCode  string `json:"courseCode" validate:"required,max=32"`
	Role        string `json:"role,omitempty" validate:"omitempty,max=32"`
	Batch       string `json:"batch,omitempty" validate:"omitempty,max=64"`
}

// GenerateTimetableRequest asks for the weekly timetable of a set of batches.
type GenerateTimetableRequest struct {
	Semester    string          `json:"semester" validate:"required,max=32"`
	StudentType string          `json:"studentType" validate:"required,max=32"`
	Batches     []string        `json:"batches" validate:"required,min=1,max=32,dive,required,max=64"`
	Courses     []CourseRequest `json:"courses" validate:"required,min=1,max=128,dive"`
	// Faculty replaces the stored faculty_course_handling rows when present.
	Faculty []FacultyLinkRequest `json:"faculty,omitempty" validate:"omitempty,max=512,dive"`
	// Phases overrides the configured pipeline order for this request.
	Phases []string `json:"phases,omitempty" validate:"omitempty,max=5"`
}

// CommitProposalRequest persists a previewed timetable.
type CommitProposalRequest struct {
	ProposalID string `json:"proposalId" validate:"required,uuid"`
}

// SlotCell is one occupied slot as rendered to clients.
type SlotCell struct {
	CourseCode  string `json:"courseCode"`
	Faculty     string `json:"faculty"`
	Session     string `json:"session"`
	Role        string `json:"role"`
	BlockLength int    `json:"blockLength,omitempty"`
}

// WeeklyGrid maps day name to slot label to cell. Free slots are null.
type WeeklyGrid map[string]map[string]*SlotCell

// UnscheduledItem reports a session the scheduler gave up on.
type UnscheduledItem struct {
	CourseCode string `json:"courseCode"`
	Faculty    string `json:"faculty"`
	Semester   string `json:"semester"`
	Batch      string `json:"batch"`
	Reason     string `json:"reason"`
}

// GenerateTimetableResponse is returned by generate, preview and commit.
type GenerateTimetableResponse struct {
	RunID       string                `json:"runId"`
	ProposalID  string                `json:"proposalId,omitempty"`
	ExpiresAt   *time.Time            `json:"expiresAt,omitempty"`
	Semester    string                `json:"semester"`
	Phases      []string              `json:"phases"`
	Timetable   map[string]WeeklyGrid `json:"timetable"`
	Unscheduled []UnscheduledItem     `json:"unscheduled"`
	Stats       scheduler.Stats       `json:"stats"`
	Warnings    []scheduler.Violation `json:"warnings,omitempty"`
}

// TimetableResponse is one stored batch timetable.
type TimetableResponse struct {
	ID          string            `json:"id"`
	RunID       string            `json:"runId"`
	Semester    string            `json:"semester"`
	Batch       string            `json:"batch"`
	StudentType string            `json:"studentType"`
	Grid        WeeklyGrid        `json:"grid"`
	Unscheduled []UnscheduledItem `json:"unscheduled"`
	Stats       scheduler.Stats   `json:"stats"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

// ExportRequest selects the export format.
type ExportRequest struct {
	Format string `json:"format" validate:"required,oneof=csv pdf"`
}

// ExportResponse carries the signed download link of a rendered export.
type ExportResponse struct {
	ExportID  string    `json:"exportId"`
	Format    string    `json:"format"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// HoursResponse exposes the session counts for a credit/category pair.
type HoursResponse struct {
	Credits  int    `json:"credits"`
	Category string `json:"category"`
	scheduler.Hours
}
