package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/faculty-erp-api/internal/models"
)

func newClassSessionRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func classSessionRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "employee_id", "session_date", "start_time", "end_time", "std_id", "std_name", "division_id", "division_name", "subject_name", "topic_covered", "attendance_taken", "created_at"})
}

func TestClassSessionRepositoryListByEmployee(t *testing.T) {
	db, mock, cleanup := newClassSessionRepoMock(t)
	defer cleanup()
	repo := NewClassSessionRepository(db)

	sessionDate := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
	rows := classSessionRows().
		AddRow("cs-1", "emp-1", sessionDate, "09:00:00", "10:30:00", "std-10", "Standard 10", "div-a", "Division A", "Chemistry", "Stoichiometry", true, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM class_sessions WHERE employee_id = $1 ORDER BY session_date ASC, start_time ASC")).
		WithArgs("emp-1").
		WillReturnRows(rows)

	sessions, err := repo.ListByEmployee(context.Background(), models.ClassSessionFilter{EmployeeID: "emp-1"})
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, "Stoichiometry", sessions[0].TopicCovered)
	assert.True(t, sessions[0].AttendanceTaken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassSessionRepositoryListByEmployeeDateWindow(t *testing.T) {
	db, mock, cleanup := newClassSessionRepoMock(t)
	defer cleanup()
	repo := NewClassSessionRepository(db)

	from := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 7)
	mock.ExpectQuery(regexp.QuoteMeta("AND session_date >= $2 AND session_date <= $3")).
		WithArgs("emp-1", from, to).
		WillReturnRows(classSessionRows())

	sessions, err := repo.ListByEmployee(context.Background(), models.ClassSessionFilter{EmployeeID: "emp-1", From: &from, To: &to})
	require.NoError(t, err)
	assert.Empty(t, sessions)
	assert.NoError(t, mock.ExpectationsWereMet())
}
