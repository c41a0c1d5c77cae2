package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/faculty-erp-api/internal/dto"
	"github.com/noah-isme/faculty-erp-api/internal/models"
	appErrors "github.com/noah-isme/faculty-erp-api/pkg/errors"
	"github.com/noah-isme/faculty-erp-api/pkg/response"
)

type videoProgressService interface {
	GetVideo(ctx context.Context, id string) (*models.Video, error)
	ListVideos(ctx context.Context, limit int) ([]models.Video, error)
	Track(ctx context.Context, employeeID string, req dto.TrackProgressRequest) (*models.VideoProgress, bool, error)
	List(ctx context.Context, filter models.VideoProgressFilter) ([]models.VideoProgress, error)
}

// VideoProgressHandler wires the video progress service to HTTP endpoints.
type VideoProgressHandler struct {
	service videoProgressService
}

// NewVideoProgressHandler constructs the handler.
func NewVideoProgressHandler(service videoProgressService) *VideoProgressHandler {
	return &VideoProgressHandler{service: service}
}

// GetVideo godoc
// @Summary Fetch one learning video
// @Tags Videos
// @Produce json
// @Param id path string true "Video ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /videos/{id} [get]
func (h *VideoProgressHandler) GetVideo(c *gin.Context) {
	if claimsFromContext(c) == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	video, err := h.service.GetVideo(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, video, nil)
}

// ListVideos godoc
// @Summary List learning videos
// @Tags Videos
// @Produce json
// @Param page_size query int false "Maximum rows"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /videos [get]
func (h *VideoProgressHandler) ListVideos(c *gin.Context) {
	if claimsFromContext(c) == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	limit, _ := strconv.Atoi(c.Query("page_size"))
	videos, err := h.service.ListVideos(c.Request.Context(), limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, videos, nil)
}

// Track godoc
// @Summary Record a watch position report
// @Tags Videos
// @Accept json
// @Produce json
// @Param payload body dto.TrackProgressRequest true "Progress report"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /emp-video-progress/track [post]
func (h *VideoProgressHandler) Track(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.TrackProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid progress payload"))
		return
	}

	progress, applied, err := h.service.Track(c.Request.Context(), claims.EmployeeID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.TrackProgressResponse{Progress: progress, Applied: applied}, nil)
}

// ListProgress godoc
// @Summary List the authenticated faculty's stored watch positions
// @Tags Videos
// @Produce json
// @Param video_id query string false "Restrict to one video"
// @Param employee_id query string false "Target employee (admin only)"
// @Param page_size query int false "Maximum rows"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /emp-video-progress [get]
func (h *VideoProgressHandler) ListProgress(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	filter := models.VideoProgressFilter{
		EmployeeID: employeeScope(c, claims),
		VideoID:    strings.TrimSpace(c.Query("video_id")),
	}
	filter.PageSize, _ = strconv.Atoi(c.Query("page_size"))

	rows, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}
