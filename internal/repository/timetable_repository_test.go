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

func newTimetableRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func timetableRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "employee_id", "day_of_week", "start_time", "end_time", "std_id", "std_name", "division_id", "division_name", "subject_name", "room_no", "created_at"})
}

func TestTimetableRepositoryListByEmployee(t *testing.T) {
	db, mock, cleanup := newTimetableRepoMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	rows := timetableRows().
		AddRow("tt-1", "emp-1", 0, "09:00:00", "10:00:00", "std-10", "Standard 10", "div-a", "Division A", "Physics", "R-101", time.Now()).
		AddRow("tt-2", "emp-1", 2, "11:00:00", "12:00:00", "std-10", "Standard 10", "div-b", "Division B", "Physics", "R-102", time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM timetable_slots WHERE employee_id = $1 ORDER BY day_of_week ASC, start_time ASC")).
		WithArgs("emp-1").
		WillReturnRows(rows)

	slots, err := repo.ListByEmployee(context.Background(), models.TimetableFilter{EmployeeID: "emp-1"})
	require.NoError(t, err)
	require.Len(t, slots, 2)
	assert.Equal(t, "Physics", slots[0].SubjectName)
	assert.Equal(t, 2, slots[1].DayOfWeek)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryListByEmployeeDayFilter(t *testing.T) {
	db, mock, cleanup := newTimetableRepoMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("AND day_of_week = $2")).
		WithArgs("emp-1", 4).
		WillReturnRows(timetableRows())

	day := 4
	slots, err := repo.ListByEmployee(context.Background(), models.TimetableFilter{EmployeeID: "emp-1", DayOfWeek: &day})
	require.NoError(t, err)
	assert.Empty(t, slots)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryListByEmployeeLimit(t *testing.T) {
	db, mock, cleanup := newTimetableRepoMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("LIMIT $2")).
		WithArgs("emp-1", 50).
		WillReturnRows(timetableRows())

	_, err := repo.ListByEmployee(context.Background(), models.TimetableFilter{EmployeeID: "emp-1", PageSize: 50})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
