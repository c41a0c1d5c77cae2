package service

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/faculty-erp-api/internal/models"
	appErrors "github.com/noah-isme/faculty-erp-api/pkg/errors"
	"github.com/noah-isme/faculty-erp-api/pkg/export"
)

type timetableRepository interface {
	ListByEmployee(ctx context.Context, filter models.TimetableFilter) ([]models.TimetableSlot, error)
}

type classSessionRepository interface {
	ListByEmployee(ctx context.Context, filter models.ClassSessionFilter) ([]models.ClassSession, error)
}

// ScheduleConfig tunes aggregation behaviour.
type ScheduleConfig struct {
	CacheTTL         time.Duration
	DefaultRangeDays int
	MaxPageSize      int
}

// ScheduleService merges the recurring timetable and dated class sessions
// into a single calendar view. Each source degrades independently: a failed
// fetch yields an empty contribution and an "unavailable" flag rather than
// failing the whole request.
type ScheduleService struct {
	timetables timetableRepository
	sessions   classSessionRepository
	cache      *CacheService
	metrics    *MetricsService
	ics        *export.ICSExporter
	pdf        *export.PDFExporter
	logger     *zap.Logger
	config     ScheduleConfig
	now        func() time.Time
}

// NewScheduleService constructs a schedule service.
func NewScheduleService(timetables timetableRepository, sessions classSessionRepository, cache *CacheService, metrics *MetricsService, logger *zap.Logger, config ScheduleConfig) *ScheduleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.DefaultRangeDays <= 0 {
		config.DefaultRangeDays = 7
	}
	return &ScheduleService{
		timetables: timetables,
		sessions:   sessions,
		cache:      cache,
		metrics:    metrics,
		ics:        export.NewICSExporter(),
		pdf:        export.NewPDFExporter(),
		logger:     logger,
		config:     config,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Clocks with fewer than five usable characters fall back here, matching the
// long-standing display behaviour consumers already rely on.
const fallbackClock = "09:00"

// ListTimetable returns the raw recurring slots for an employee.
func (s *ScheduleService) ListTimetable(ctx context.Context, filter models.TimetableFilter) ([]models.TimetableSlot, error) {
	if filter.EmployeeID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "employee id is required")
	}
	filter.PageSize = s.clampPageSize(filter.PageSize)
	slots, err := s.timetables.ListByEmployee(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list timetable")
	}
	return slots, nil
}

// ListClassSessions returns the raw dated sessions for an employee.
func (s *ScheduleService) ListClassSessions(ctx context.Context, filter models.ClassSessionFilter) ([]models.ClassSession, error) {
	if filter.EmployeeID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "employee id is required")
	}
	filter.PageSize = s.clampPageSize(filter.PageSize)
	sessions, err := s.sessions.ListByEmployee(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list class sessions")
	}
	return sessions, nil
}

// BuildCalendarEvents fetches both sources concurrently, normalises them into
// calendar events and computes summary stats. Events from the two sources are
// kept as-is; a session on a day with a recurring slot appears twice.
func (s *ScheduleService) BuildCalendarEvents(ctx context.Context, employeeID string, rng models.DateRange) (*models.FacultyCalendar, error) {
	if employeeID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "employee id is required")
	}
	rng = s.normalizeRange(rng)

	cacheKey := fmt.Sprintf("calendar:%s:%s:%s", employeeID, rng.From.Format("2006-01-02"), rng.To.Format("2006-01-02"))
	var cached models.FacultyCalendar
	if hit, _ := s.cache.Get(ctx, cacheKey, &cached); hit {
		return &cached, nil
	}

	var (
		wg       sync.WaitGroup
		slots    []models.TimetableSlot
		sessions []models.ClassSession
		sources  = models.SourceStates{Timetable: models.SourceOK, ClassSessions: models.SourceOK}
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		start := time.Now()
		result, err := s.timetables.ListByEmployee(ctx, models.TimetableFilter{EmployeeID: employeeID, PageSize: s.config.MaxPageSize})
		if s.metrics != nil {
			s.metrics.ObserveSourceFetch("timetable", time.Since(start), err != nil)
		}
		if err != nil {
			s.logger.Warn("timetable source degraded", zap.String("employee_id", employeeID), zap.Error(err))
			sources.Timetable = models.SourceUnavailable
			return
		}
		slots = result
	}()
	go func() {
		defer wg.Done()
		start := time.Now()
		result, err := s.sessions.ListByEmployee(ctx, models.ClassSessionFilter{EmployeeID: employeeID, From: &rng.From, To: &rng.To, PageSize: s.config.MaxPageSize})
		if s.metrics != nil {
			s.metrics.ObserveSourceFetch("class_sessions", time.Since(start), err != nil)
		}
		if err != nil {
			s.logger.Warn("class session source degraded", zap.String("employee_id", employeeID), zap.Error(err))
			sources.ClassSessions = models.SourceUnavailable
			return
		}
		sessions = result
	}()
	wg.Wait()

	events := make([]models.CalendarEvent, 0, len(slots)+len(sessions))
	for _, slot := range slots {
		events = append(events, eventFromSlot(slot))
	}
	for _, session := range sessions {
		events = append(events, eventFromSession(session))
	}

	calendar := &models.FacultyCalendar{
		EmployeeID:  employeeID,
		Range:       rng,
		Events:      events,
		Stats:       s.ComputeStats(events),
		Sources:     sources,
		GeneratedAt: s.now(),
	}

	if sources.Timetable == models.SourceOK && sources.ClassSessions == models.SourceOK {
		_ = s.cache.Set(ctx, cacheKey, calendar, s.config.CacheTTL)
	}
	return calendar, nil
}

// ComputeStats derives the summary counters shown alongside the calendar.
// Upcoming counts dated sessions only, by their end instant: a recurring slot
// repeats indefinitely and has no single occurrence to compare against now.
func (s *ScheduleService) ComputeStats(events []models.CalendarEvent) models.ScheduleStats {
	now := s.now()
	totalMinutes := 0
	upcoming := 0
	sections := map[string]struct{}{}

	for _, event := range events {
		totalMinutes += clockMinutes(event.EndTime) - clockMinutes(event.StartTime)

		if event.Kind == models.EventKindDated && event.Date != nil {
			end := event.Date.Add(time.Duration(clockMinutes(event.EndTime)) * time.Minute)
			if end.After(now) {
				upcoming++
			}
		}

		if event.Metadata.StandardID != "" || event.Metadata.DivisionID != "" {
			sections[event.Metadata.StandardID+"|"+event.Metadata.DivisionID] = struct{}{}
		}
	}

	return models.ScheduleStats{
		TotalClasses:    len(events),
		TotalHours:      math.Round(float64(totalMinutes)/60*10) / 10,
		UpcomingClasses: upcoming,
		UniqueSections:  len(sections),
	}
}

// RenderICS exports the merged calendar as an iCalendar document.
func (s *ScheduleService) RenderICS(ctx context.Context, employeeID string, rng models.DateRange) ([]byte, error) {
	calendar, err := s.BuildCalendarEvents(ctx, employeeID, rng)
	if err != nil {
		return nil, err
	}

	icsEvents := make([]export.ICSEvent, 0, len(calendar.Events))
	for _, event := range calendar.Events {
		summary := event.Metadata.Subject
		if summary == "" {
			summary = event.Title
		}
		ics := export.ICSEvent{
			UID:         event.ID,
			Summary:     summary,
			Description: event.Metadata.Topic,
			Location:    event.Metadata.Room,
			StartTime:   event.StartTime,
			EndTime:     event.EndTime,
		}
		if event.Kind == models.EventKindRecurring && event.DayOfWeek != nil {
			ics.Weekly = true
			ics.DayOfWeek = time.Weekday(*event.DayOfWeek)
		} else if event.Date != nil {
			ics.Date = *event.Date
		}
		icsEvents = append(icsEvents, ics)
	}

	payload, err := s.ics.Render("Faculty Schedule", calendar.Range.From, icsEvents)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render ics")
	}
	return payload, nil
}

// SchedulePDF exports the merged calendar as a printable table.
func (s *ScheduleService) SchedulePDF(ctx context.Context, employeeID string, rng models.DateRange) ([]byte, error) {
	calendar, err := s.BuildCalendarEvents(ctx, employeeID, rng)
	if err != nil {
		return nil, err
	}

	dataset := export.Dataset{
		Headers: []string{"Day", "Date", "Time", "Subject", "Class", "Room", "Topic"},
	}
	for _, event := range calendar.Events {
		row := map[string]string{
			"Time":    event.StartTime + " - " + event.EndTime,
			"Subject": event.Metadata.Subject,
			"Class":   sectionLabel(event.Metadata),
			"Room":    event.Metadata.Room,
			"Topic":   event.Metadata.Topic,
		}
		if event.DayOfWeek != nil {
			row["Day"] = time.Weekday(*event.DayOfWeek).String()
			row["Date"] = "weekly"
		} else if event.Date != nil {
			row["Day"] = event.Date.Weekday().String()
			row["Date"] = event.Date.Format("2006-01-02")
		}
		dataset.Rows = append(dataset.Rows, row)
	}

	title := fmt.Sprintf("Weekly Schedule %s to %s", calendar.Range.From.Format("02 Jan 2006"), calendar.Range.To.Format("02 Jan 2006"))
	payload, err := s.pdf.Render(dataset, title)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
	}
	return payload, nil
}

func (s *ScheduleService) normalizeRange(rng models.DateRange) models.DateRange {
	if rng.From.IsZero() {
		now := s.now()
		rng.From = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	}
	if rng.To.IsZero() || rng.To.Before(rng.From) {
		rng.To = rng.From.AddDate(0, 0, s.config.DefaultRangeDays-1)
	}
	return rng
}

func (s *ScheduleService) clampPageSize(size int) int {
	if s.config.MaxPageSize > 0 && (size <= 0 || size > s.config.MaxPageSize) {
		return s.config.MaxPageSize
	}
	return size
}

func eventFromSlot(slot models.TimetableSlot) models.CalendarEvent {
	dow := calendarDayOfWeek(slot.DayOfWeek)
	start := normalizeClock(slot.StartTime)
	end := normalizeClock(slot.EndTime)
	return models.CalendarEvent{
		ID:        "tt-" + slot.ID,
		Title:     eventTitle(slot.StandardName, slot.DivisionName),
		Kind:      models.EventKindRecurring,
		DayOfWeek: &dow,
		StartTime: start,
		EndTime:   end,
		ColorTag:  "blue",
		Metadata: models.EventMetadata{
			Subject:      slot.SubjectName,
			Room:         slot.RoomNo,
			Duration:     formatDuration(clockMinutes(end) - clockMinutes(start)),
			StandardID:   slot.StandardID,
			StandardName: slot.StandardName,
			DivisionID:   slot.DivisionID,
			DivisionName: slot.DivisionName,
		},
	}
}

func eventFromSession(session models.ClassSession) models.CalendarEvent {
	date := session.SessionDate
	start := normalizeClock(session.StartTime)
	end := normalizeClock(session.EndTime)
	attendance := session.AttendanceTaken
	return models.CalendarEvent{
		ID:        "cs-" + session.ID,
		Title:     eventTitle(session.StandardName, session.DivisionName),
		Kind:      models.EventKindDated,
		Date:      &date,
		StartTime: start,
		EndTime:   end,
		ColorTag:  "green",
		Metadata: models.EventMetadata{
			Subject:         session.SubjectName,
			Topic:           session.TopicCovered,
			AttendanceTaken: &attendance,
			Duration:        formatDuration(clockMinutes(end) - clockMinutes(start)),
			StandardID:      session.StandardID,
			StandardName:    session.StandardName,
			DivisionID:      session.DivisionID,
			DivisionName:    session.DivisionName,
		},
	}
}

// calendarDayOfWeek remaps the roster convention (Monday=0 .. Sunday=6) to
// the calendar convention (Sunday=0 .. Saturday=6).
func calendarDayOfWeek(rosterDow int) int {
	if rosterDow == 6 {
		return 0
	}
	return rosterDow + 1
}

// normalizeClock trims HH:MM:SS values to HH:MM and substitutes the fallback
// for anything that does not look like a clock.
func normalizeClock(raw string) string {
	if len(raw) < 5 {
		return fallbackClock
	}
	clock := raw[:5]
	if clock[2] != ':' || !isDigit(clock[0]) || !isDigit(clock[1]) || !isDigit(clock[3]) || !isDigit(clock[4]) {
		return fallbackClock
	}
	return clock
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func clockMinutes(clock string) int {
	if len(clock) < 5 {
		return 0
	}
	hours := int(clock[0]-'0')*10 + int(clock[1]-'0')
	minutes := int(clock[3]-'0')*10 + int(clock[4]-'0')
	return hours*60 + minutes
}

func formatDuration(minutes int) string {
	if minutes <= 0 {
		return ""
	}
	h, m := minutes/60, minutes%60
	switch {
	case h > 0 && m > 0:
		return fmt.Sprintf("%dh %dm", h, m)
	case h > 0:
		return fmt.Sprintf("%dh", h)
	default:
		return fmt.Sprintf("%dm", m)
	}
}

func eventTitle(standard, division string) string {
	title := "Std " + standard
	if division != "" {
		title += " / " + division
	}
	return title
}

func sectionLabel(meta models.EventMetadata) string {
	if meta.StandardName == "" {
		return meta.DivisionName
	}
	if meta.DivisionName == "" {
		return meta.StandardName
	}
	return meta.StandardName + " " + meta.DivisionName
}
