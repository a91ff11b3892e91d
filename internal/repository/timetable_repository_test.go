package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-timetable-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "postgres")
	return sqlxDB, mock, func() { sqlxDB.Close() }
}

func TestTimetableRepositoryUpsert(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	created := time.Date(2024, 7, 1, 8, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO timetables") + "(?s).*" + regexp.QuoteMeta("ON CONFLICT (semester, batch) DO UPDATE")).
		WithArgs(sqlmock.AnyArg(), "run-1", "2024-ODD", "CSE-A", "UG", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("tt-existing", created))

	record := &models.Timetable{
		RunID:       "run-1",
		Semester:    "2024-ODD",
		Batch:       "CSE-A",
		StudentType: "UG",
		Grid:        types.JSONText(`[]`),
	}
	require.NoError(t, repo.Upsert(context.Background(), nil, record))
	assert.Equal(t, "tt-existing", record.ID)
	assert.Equal(t, created, record.CreatedAt)
	assert.Equal(t, types.JSONText(`null`), record.Stats)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryUpsertRequiresKey(t *testing.T) {
	db, _, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	assert.Error(t, repo.Upsert(context.Background(), nil, &models.Timetable{Semester: "2024-ODD"}))
	assert.Error(t, repo.Upsert(context.Background(), nil, nil))
}

func TestTimetableRepositoryFindBySemesterBatch(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	columns := []string{"id", "run_id", "semester", "batch", "student_type", "grid", "unscheduled", "stats", "generated_by", "created_at", "updated_at"}
	mock.ExpectQuery(regexp.QuoteMeta("FROM timetables WHERE semester = $1 AND batch = $2")).
		WithArgs("2024-ODD", "CSE-A").
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow("tt-1", "run-1", "2024-ODD", "CSE-A", "UG", []byte(`[]`), []byte(`[]`), []byte(`{}`), nil, time.Now(), time.Now()))

	record, err := repo.FindBySemesterBatch(context.Background(), "2024-ODD", "CSE-A")
	require.NoError(t, err)
	assert.Equal(t, "tt-1", record.ID)
	assert.Nil(t, record.GeneratedBy)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryFindMissing(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM timetables WHERE semester = $1 AND batch = $2")).
		WithArgs("2024-ODD", "CSE-Z").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindBySemesterBatch(context.Background(), "2024-ODD", "CSE-Z")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestTimetableRepositoryListBySemester(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	rows := sqlmock.NewRows([]string{"id", "run_id", "semester", "batch", "student_type", "unscheduled_count", "updated_at"}).
		AddRow("tt-1", "run-1", "2024-ODD", "CSE-A", "UG", 0, time.Now()).
		AddRow("tt-2", "run-1", "2024-ODD", "CSE-B", "UG", 2, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM timetables WHERE semester = $1 ORDER BY batch")).
		WithArgs("2024-ODD").
		WillReturnRows(rows)

	list, err := repo.ListBySemester(context.Background(), "2024-ODD")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, 2, list[1].UnscheduledCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}
