package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFacultyHandlingRepositoryListByCourseCodes(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewFacultyHandlingRepository(db)

	rows := sqlmock.NewRows([]string{"id", "faculty_name", "course_code", "role", "batch", "created_at"}).
		AddRow("fh-1", "Anand", "MA101", "Primary", "CSE-A", time.Now()).
		AddRow("fh-2", "Chitra", "CS102", "Primary", nil, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM faculty_course_handling WHERE course_code IN ($1, $2) ORDER BY created_at, id")).
		WithArgs("MA101", "CS102").
		WillReturnRows(rows)

	links, err := repo.ListByCourseCodes(context.Background(), []string{"MA101", "CS102"})
	require.NoError(t, err)
	require.Len(t, links, 2)
	require.NotNil(t, links[0].Batch)
	assert.Equal(t, "CSE-A", *links[0].Batch)
	assert.Nil(t, links[1].Batch)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFacultyHandlingRepositoryNoCodes(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewFacultyHandlingRepository(db)

	links, err := repo.ListByCourseCodes(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, links)
	assert.NoError(t, mock.ExpectationsWereMet())
}
