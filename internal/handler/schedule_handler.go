package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/faculty-erp-api/internal/models"
	appErrors "github.com/noah-isme/faculty-erp-api/pkg/errors"
	"github.com/noah-isme/faculty-erp-api/pkg/response"
)

type scheduleService interface {
	ListTimetable(ctx context.Context, filter models.TimetableFilter) ([]models.TimetableSlot, error)
	ListClassSessions(ctx context.Context, filter models.ClassSessionFilter) ([]models.ClassSession, error)
	BuildCalendarEvents(ctx context.Context, employeeID string, rng models.DateRange) (*models.FacultyCalendar, error)
	RenderICS(ctx context.Context, employeeID string, rng models.DateRange) ([]byte, error)
	SchedulePDF(ctx context.Context, employeeID string, rng models.DateRange) ([]byte, error)
}

// ScheduleHandler wires the schedule service to HTTP endpoints.
type ScheduleHandler struct {
	service scheduleService
}

// NewScheduleHandler constructs the handler.
func NewScheduleHandler(service scheduleService) *ScheduleHandler {
	return &ScheduleHandler{service: service}
}

// ListTimetable godoc
// @Summary List the authenticated faculty's weekly timetable
// @Tags Schedule
// @Produce json
// @Param day_of_week query int false "Roster weekday (Monday=0)"
// @Param employee_id query string false "Target employee (admin only)"
// @Param page_size query int false "Maximum rows"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /timetables [get]
func (h *ScheduleHandler) ListTimetable(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	filter := models.TimetableFilter{EmployeeID: employeeScope(c, claims)}
	if raw := strings.TrimSpace(c.Query("day_of_week")); raw != "" {
		day, err := strconv.Atoi(raw)
		if err != nil || day < 0 || day > 6 {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "day_of_week must be between 0 and 6"))
			return
		}
		filter.DayOfWeek = &day
	}
	filter.PageSize, _ = strconv.Atoi(c.Query("page_size"))

	slots, err := h.service.ListTimetable(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, slots, nil)
}

// ListClassSessions godoc
// @Summary List the authenticated faculty's class sessions
// @Tags Schedule
// @Produce json
// @Param from query string false "Start date (YYYY-MM-DD)"
// @Param to query string false "End date (YYYY-MM-DD)"
// @Param page_size query int false "Maximum rows"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /class-sessions [get]
func (h *ScheduleHandler) ListClassSessions(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	filter := models.ClassSessionFilter{EmployeeID: employeeScope(c, claims)}
	rng, err := parseRange(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if !rng.From.IsZero() {
		filter.From = &rng.From
	}
	if !rng.To.IsZero() {
		filter.To = &rng.To
	}
	filter.PageSize, _ = strconv.Atoi(c.Query("page_size"))

	sessions, err := h.service.ListClassSessions(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sessions, nil)
}

// Calendar godoc
// @Summary Merged calendar of timetable slots and class sessions
// @Tags Schedule
// @Produce json
// @Param from query string false "Start date (YYYY-MM-DD). Defaults to today"
// @Param to query string false "End date (YYYY-MM-DD). Defaults to one week"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /faculty/calendar [get]
func (h *ScheduleHandler) Calendar(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	rng, err := parseRange(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	calendar, err := h.service.BuildCalendarEvents(c.Request.Context(), employeeScope(c, claims), rng)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, calendar, nil)
}

// ExportICS godoc
// @Summary Export the merged calendar as an iCalendar file
// @Tags Schedule
// @Produce text/calendar
// @Param from query string false "Start date (YYYY-MM-DD)"
// @Param to query string false "End date (YYYY-MM-DD)"
// @Success 200 {file} binary
// @Security BearerAuth
// @Router /class-sessions/ics [get]
func (h *ScheduleHandler) ExportICS(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	rng, err := parseRange(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	payload, err := h.service.RenderICS(c.Request.Context(), employeeScope(c, claims), rng)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, "schedule.ics", "text/calendar", payload)
}

// ExportPDF godoc
// @Summary Export the merged calendar as a printable PDF
// @Tags Schedule
// @Produce application/pdf
// @Param from query string false "Start date (YYYY-MM-DD)"
// @Param to query string false "End date (YYYY-MM-DD)"
// @Success 200 {file} binary
// @Security BearerAuth
// @Router /faculty/calendar/export.pdf [get]
func (h *ScheduleHandler) ExportPDF(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	rng, err := parseRange(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	payload, err := h.service.SchedulePDF(c.Request.Context(), employeeScope(c, claims), rng)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, "schedule.pdf", "application/pdf", payload)
}

func parseRange(c *gin.Context) (models.DateRange, error) {
	var rng models.DateRange
	if raw := strings.TrimSpace(c.Query("from")); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return rng, appErrors.Clone(appErrors.ErrValidation, "invalid from date, expected YYYY-MM-DD")
		}
		rng.From = parsed
	}
	if raw := strings.TrimSpace(c.Query("to")); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return rng, appErrors.Clone(appErrors.ErrValidation, "invalid to date, expected YYYY-MM-DD")
		}
		rng.To = parsed
	}
	if !rng.From.IsZero() && !rng.To.IsZero() && rng.To.Before(rng.From) {
		return rng, appErrors.Clone(appErrors.ErrValidation, "to must not be before from")
	}
	return rng, nil
}
