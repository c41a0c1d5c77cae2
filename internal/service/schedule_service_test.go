package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/faculty-erp-api/internal/models"
	appErrors "github.com/noah-isme/faculty-erp-api/pkg/errors"
)

type fakeTimetableRepo struct {
	slots []models.TimetableSlot
	err   error
}

func (f *fakeTimetableRepo) ListByEmployee(context.Context, models.TimetableFilter) ([]models.TimetableSlot, error) {
	return f.slots, f.err
}

type fakeSessionRepo struct {
	sessions []models.ClassSession
	err      error
}

func (f *fakeSessionRepo) ListByEmployee(context.Context, models.ClassSessionFilter) ([]models.ClassSession, error) {
	return f.sessions, f.err
}

func newScheduleService(timetables *fakeTimetableRepo, sessions *fakeSessionRepo) *ScheduleService {
	svc := NewScheduleService(timetables, sessions, nil, nil, zap.NewNop(), ScheduleConfig{DefaultRangeDays: 7})
	// 2026-03-11 is a Wednesday.
	svc.now = func() time.Time { return time.Date(2026, 3, 11, 12, 0, 0, 0, time.UTC) }
	return svc
}

func testRange() models.DateRange {
	return models.DateRange{
		From: time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
	}
}

func TestBuildCalendarEventsRemapsWeekdays(t *testing.T) {
	slots := make([]models.TimetableSlot, 0, 7)
	for d := 0; d < 7; d++ {
		slots = append(slots, models.TimetableSlot{
			ID: string(rune('a' + d)), DayOfWeek: d, StartTime: "09:00:00", EndTime: "10:00:00",
		})
	}
	svc := newScheduleService(&fakeTimetableRepo{slots: slots}, &fakeSessionRepo{})

	calendar, err := svc.BuildCalendarEvents(context.Background(), "emp-1", testRange())
	require.NoError(t, err)
	require.Len(t, calendar.Events, 7)

	// Roster Monday=0..Sunday=6 maps onto calendar Sunday=0..Saturday=6
	// without collisions: Sunday wraps to 0, everything else shifts by one.
	seen := map[int]bool{}
	for d, event := range calendar.Events {
		require.NotNil(t, event.DayOfWeek)
		expected := d + 1
		if d == 6 {
			expected = 0
		}
		assert.Equal(t, expected, *event.DayOfWeek, "roster day %d", d)
		seen[*event.DayOfWeek] = true
	}
	assert.Len(t, seen, 7)
}

func TestBuildCalendarEventsNormalisesClocks(t *testing.T) {
	timetables := &fakeTimetableRepo{slots: []models.TimetableSlot{
		{ID: "a", DayOfWeek: 1, StartTime: "09:30:00", EndTime: "10:45:15", SubjectName: "Physics"},
		{ID: "b", DayOfWeek: 2, StartTime: "9am", EndTime: "", SubjectName: "Maths"},
	}}
	svc := newScheduleService(timetables, &fakeSessionRepo{})

	calendar, err := svc.BuildCalendarEvents(context.Background(), "emp-1", testRange())
	require.NoError(t, err)
	require.Len(t, calendar.Events, 2)

	assert.Equal(t, "09:30", calendar.Events[0].StartTime)
	assert.Equal(t, "10:45", calendar.Events[0].EndTime)
	assert.Equal(t, "09:00", calendar.Events[1].StartTime)
	assert.Equal(t, "09:00", calendar.Events[1].EndTime)
}

func TestBuildCalendarEventsKeepsBothSources(t *testing.T) {
	// A dated session on a weekday that also has a recurring slot stays a
	// separate event; the aggregator never reconciles the two sources.
	timetables := &fakeTimetableRepo{slots: []models.TimetableSlot{
		{ID: "a", DayOfWeek: 0, StartTime: "09:00:00", EndTime: "10:00:00", SubjectName: "Physics"},
	}}
	sessions := &fakeSessionRepo{sessions: []models.ClassSession{
		{ID: "s1", SessionDate: time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC), StartTime: "09:00:00", EndTime: "10:00:00", SubjectName: "Physics"},
	}}
	svc := newScheduleService(timetables, sessions)

	calendar, err := svc.BuildCalendarEvents(context.Background(), "emp-1", testRange())
	require.NoError(t, err)
	require.Len(t, calendar.Events, 2)
	assert.Equal(t, models.EventKindRecurring, calendar.Events[0].Kind)
	assert.Equal(t, models.EventKindDated, calendar.Events[1].Kind)
}

func TestBuildCalendarEventsDegradesPerSource(t *testing.T) {
	timetables := &fakeTimetableRepo{err: errors.New("connection refused")}
	sessions := &fakeSessionRepo{sessions: []models.ClassSession{
		{ID: "s1", SessionDate: time.Date(2026, 3, 13, 0, 0, 0, 0, time.UTC), StartTime: "14:00:00", EndTime: "15:00:00"},
	}}
	svc := newScheduleService(timetables, sessions)

	calendar, err := svc.BuildCalendarEvents(context.Background(), "emp-1", testRange())
	require.NoError(t, err)
	assert.Equal(t, models.SourceUnavailable, calendar.Sources.Timetable)
	assert.Equal(t, models.SourceOK, calendar.Sources.ClassSessions)
	require.Len(t, calendar.Events, 1)
	assert.Equal(t, models.EventKindDated, calendar.Events[0].Kind)
}

func TestBuildCalendarEventsRequiresEmployee(t *testing.T) {
	svc := newScheduleService(&fakeTimetableRepo{}, &fakeSessionRepo{})
	_, err := svc.BuildCalendarEvents(context.Background(), "", testRange())
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestComputeStats(t *testing.T) {
	timetables := &fakeTimetableRepo{slots: []models.TimetableSlot{
		// Monday 09:00-10:30, resolves to 2026-03-09, before "now"
		{ID: "a", DayOfWeek: 0, StartTime: "09:00:00", EndTime: "10:30:00", StandardID: "std-10", DivisionID: "div-a"},
		// Sunday 11:00-12:00, resolves to 2026-03-15, after "now"
		{ID: "b", DayOfWeek: 6, StartTime: "11:00:00", EndTime: "12:00:00", StandardID: "std-10", DivisionID: "div-a"},
	}}
	sessions := &fakeSessionRepo{sessions: []models.ClassSession{
		// Friday after "now"
		{ID: "s1", SessionDate: time.Date(2026, 3, 13, 0, 0, 0, 0, time.UTC), StartTime: "14:00:00", EndTime: "15:00:00", StandardID: "std-9", DivisionID: "div-b"},
		// Tuesday before "now"
		{ID: "s2", SessionDate: time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), StartTime: "08:00:00", EndTime: "08:45:00", StandardID: "std-9", DivisionID: "div-b"},
	}}
	svc := newScheduleService(timetables, sessions)

	calendar, err := svc.BuildCalendarEvents(context.Background(), "emp-1", testRange())
	require.NoError(t, err)

	assert.Equal(t, 4, calendar.Stats.TotalClasses)
	// 1.5 + 1 + 1 + 0.75 hours, rounded to one decimal
	assert.InDelta(t, 4.3, calendar.Stats.TotalHours, 0.001)
	// Only dated sessions count towards upcoming; the Sunday slot recurs and
	// is excluded. s1 ends Friday 15:00, after "now" (Wednesday 12:00).
	assert.Equal(t, 1, calendar.Stats.UpcomingClasses)
	assert.Equal(t, 2, calendar.Stats.UniqueSections)

	// Counters must not depend on event order.
	reversed := make([]models.CalendarEvent, len(calendar.Events))
	for i, ev := range calendar.Events {
		reversed[len(reversed)-1-i] = ev
	}
	assert.Equal(t, calendar.Stats, svc.ComputeStats(reversed))
}

func TestComputeStatsUpcomingUsesSessionEnd(t *testing.T) {
	// A session that started before "now" but has not ended yet still counts.
	sessions := &fakeSessionRepo{sessions: []models.ClassSession{
		{ID: "s1", SessionDate: time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC), StartTime: "11:00:00", EndTime: "12:30:00"},
		{ID: "s2", SessionDate: time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC), StartTime: "10:00:00", EndTime: "11:00:00"},
	}}
	svc := newScheduleService(&fakeTimetableRepo{}, sessions)

	calendar, err := svc.BuildCalendarEvents(context.Background(), "emp-1", testRange())
	require.NoError(t, err)
	assert.Equal(t, 1, calendar.Stats.UpcomingClasses)
}

func TestWeeklyScenario(t *testing.T) {
	// One recurring Monday slot plus one dated Wednesday session across the
	// visible week: two events, two hours, and only the session upcoming.
	timetables := &fakeTimetableRepo{slots: []models.TimetableSlot{
		{ID: "a", DayOfWeek: 0, StartTime: "10:00:00", EndTime: "11:00:00", StandardID: "std-10", StandardName: "10", DivisionID: "div-a", DivisionName: "A", SubjectName: "Physics"},
	}}
	sessions := &fakeSessionRepo{sessions: []models.ClassSession{
		{ID: "s1", SessionDate: time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC), StartTime: "14:00:00", EndTime: "15:00:00", StandardID: "std-9", StandardName: "9", DivisionID: "div-b", DivisionName: "B", SubjectName: "Chemistry"},
	}}
	svc := newScheduleService(timetables, sessions)

	calendar, err := svc.BuildCalendarEvents(context.Background(), "emp-1", testRange())
	require.NoError(t, err)
	require.Len(t, calendar.Events, 2)

	assert.Equal(t, "Std 10 / A", calendar.Events[0].Title)
	assert.Equal(t, "Std 9 / B", calendar.Events[1].Title)

	assert.Equal(t, 2, calendar.Stats.TotalClasses)
	assert.InDelta(t, 2.0, calendar.Stats.TotalHours, 0.001)
	assert.Equal(t, 1, calendar.Stats.UpcomingClasses)
	assert.Equal(t, 2, calendar.Stats.UniqueSections)
}

func TestRenderICSWeeklyRule(t *testing.T) {
	timetables := &fakeTimetableRepo{slots: []models.TimetableSlot{
		{ID: "a", DayOfWeek: 0, StartTime: "09:00:00", EndTime: "10:00:00", SubjectName: "Physics", RoomNo: "R-101"},
	}}
	svc := newScheduleService(timetables, &fakeSessionRepo{})

	payload, err := svc.RenderICS(context.Background(), "emp-1", testRange())
	require.NoError(t, err)

	content := string(payload)
	assert.Contains(t, content, "BEGIN:VCALENDAR")
	assert.Contains(t, content, "RRULE:FREQ=WEEKLY;BYDAY=MO")
	assert.Contains(t, content, "SUMMARY:Physics")
	assert.Contains(t, content, "LOCATION:R-101")
	assert.True(t, strings.HasSuffix(content, "END:VCALENDAR\r\n"))
}

func TestSchedulePDF(t *testing.T) {
	timetables := &fakeTimetableRepo{slots: []models.TimetableSlot{
		{ID: "a", DayOfWeek: 0, StartTime: "09:00:00", EndTime: "10:00:00", SubjectName: "Physics"},
	}}
	svc := newScheduleService(timetables, &fakeSessionRepo{})

	payload, err := svc.SchedulePDF(context.Background(), "emp-1", testRange())
	require.NoError(t, err)
	assert.True(t, len(payload) > 0)
	assert.Equal(t, "%PDF", string(payload[:4]))
}

func TestNormalizeClock(t *testing.T) {
	assert.Equal(t, "09:15", normalizeClock("09:15:30"))
	assert.Equal(t, "23:59", normalizeClock("23:59"))
	assert.Equal(t, "09:00", normalizeClock(""))
	assert.Equal(t, "09:00", normalizeClock("9:15"))
	assert.Equal(t, "09:00", normalizeClock("ab:cd:ef"))
}

func TestNormalizeRangeDefaultsToWeek(t *testing.T) {
	svc := newScheduleService(&fakeTimetableRepo{}, &fakeSessionRepo{})
	rng := svc.normalizeRange(models.DateRange{})
	assert.Equal(t, time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC), rng.From)
	assert.Equal(t, time.Date(2026, 3, 17, 0, 0, 0, 0, time.UTC), rng.To)
}
