package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"

	"github.com/noah-isme/sma-timetable-api/internal/models"
)

// TimetableRepository persists generated batch timetables, one row per
// (semester, batch).
type TimetableRepository struct {
	db *sqlx.DB
}

// NewTimetableRepository constructs repository.
func NewTimetableRepository(db *sqlx.DB) *TimetableRepository {
	return &TimetableRepository{db: db}
}

func (r *TimetableRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// Upsert inserts the timetable or replaces the stored grid for the same
// semester and batch. ID and CreatedAt are refreshed from the stored row.
func (r *TimetableRepository) Upsert(ctx context.Context, exec sqlx.ExtContext, timetable *models.Timetable) error {
	if timetable == nil {
		return fmt.Errorf("timetable payload is nil")
	}
	if timetable.Semester == "" || timetable.Batch == "" {
		return fmt.Errorf("semester and batch are required")
	}
	if timetable.ID == "" {
		timetable.ID = uuid.NewString()
	}
	for _, field := range []*types.JSONText{&timetable.Grid, &timetable.Unscheduled, &timetable.Stats} {
		if len(*field) == 0 {
			*field = types.JSONText(`null`)
		}
	}
	now := time.Now().UTC()
	if timetable.CreatedAt.IsZero() {
		timetable.CreatedAt = now
	}
	timetable.UpdatedAt = now

	const query = `
INSERT INTO timetables (id, run_id, semester, batch, student_type, grid, unscheduled, stats, generated_by, created_at, updated_at)
VALUES (:id, :run_id, :semester, :batch, :student_type, :grid, :unscheduled, :stats, :generated_by, :created_at, :updated_at)
ON CONFLICT (semester, batch) DO UPDATE SET
	run_id = EXCLUDED.run_id,
	student_type = EXCLUDED.student_type,
	grid = EXCLUDED.grid,
	unscheduled = EXCLUDED.unscheduled,
	stats = EXCLUDED.stats,
	generated_by = EXCLUDED.generated_by,
	updated_at = EXCLUDED.updated_at
RETURNING id, created_at`

	rows, err := sqlx.NamedQueryContext(ctx, r.exec(exec), query, timetable)
	if err != nil {
		return fmt.Errorf("upsert timetable: %w", err)
	}
	defer rows.Close()
	if rows.Next() {
		if err := rows.Scan(&timetable.ID, &timetable.CreatedAt); err != nil {
			return fmt.Errorf("scan upserted timetable: %w", err)
		}
	}
	return rows.Err()
}

// FindBySemesterBatch loads one stored timetable. It returns sql.ErrNoRows
// when nothing was generated yet.
func (r *TimetableRepository) FindBySemesterBatch(ctx context.Context, semester, batch string) (*models.Timetable, error) {
	const query = `SELECT id, run_id, semester, batch, student_type, grid, unscheduled, stats, generated_by, created_at, updated_at
FROM timetables WHERE semester = $1 AND batch = $2`
	var timetable models.Timetable
	if err := r.db.GetContext(ctx, &timetable, query, semester, batch); err != nil {
		return nil, err
	}
	return &timetable, nil
}

// ListBySemester returns summaries of every stored batch for the semester.
func (r *TimetableRepository) ListBySemester(ctx context.Context, semester string) ([]models.TimetableSummary, error) {
	const query = `SELECT id, run_id, semester, batch, student_type,
COALESCE(jsonb_array_length(unscheduled), 0) AS unscheduled_count, updated_at
FROM timetables WHERE semester = $1 ORDER BY batch`
	var summaries []models.TimetableSummary
	if err := r.db.SelectContext(ctx, &summaries, query, semester); err != nil {
		return nil, fmt.Errorf("list timetables: %w", err)
	}
	return summaries, nil
}
