package handler

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sfa-api/internal/middleware"
	"github.com/noah-isme/sfa-api/internal/models"
	"github.com/noah-isme/sfa-api/internal/service"
	appErrors "github.com/noah-isme/sfa-api/pkg/errors"
	"github.com/noah-isme/sfa-api/pkg/response"
)

type sessionService interface {
	Create(ctx context.Context, teacherID string, req service.CreateSessionRequest) (*models.Session, error)
	ListForTeacher(ctx context.Context, teacherID string) ([]models.Session, error)
	ListAll(ctx context.Context) ([]models.Session, error)
	ListForStudent(ctx context.Context, studentID string) ([]models.Session, error)
}

type feedbackReadService interface {
	ListForSession(ctx context.Context, sessionID string) ([]models.Feedback, error)
	AverageRating(ctx context.Context, sessionID string) (*models.RatingSummary, error)
	StudentsWithoutFeedback(ctx context.Context, sessionID string) ([]models.StudentProfile, error)
	Export(ctx context.Context, sessionID string, format service.ExportFormat) (*service.ExportResult, error)
}

// SessionHandler exposes session management and feedback aggregation
// endpoints.
type SessionHandler struct {
	sessions sessionService
	feedback feedbackReadService
}

// NewSessionHandler constructs SessionHandler.
func NewSessionHandler(sessions sessionService, feedback feedbackReadService) *SessionHandler {
	return &SessionHandler{sessions: sessions, feedback: feedback}
}

// Create godoc
// @Summary Create a feedback session
// @Tags Sessions
// @Accept json
// @Produce json
// @Param payload body service.CreateSessionRequest true "Session payload"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /session/create-session [post]
func (h *SessionHandler) Create(c *gin.Context) {
	var req service.CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	session, err := h.sessions.Create(c.Request.Context(), middleware.TeacherID(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, session)
}

// ListOwned godoc
// @Summary List sessions owned by the acting teacher
// @Tags Sessions
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /session/get-session [get]
func (h *SessionHandler) ListOwned(c *gin.Context) {
	sessions, err := h.sessions.ListForTeacher(c.Request.Context(), middleware.TeacherID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, sessions)
}

// ListAll godoc
// @Summary List every session
// @Tags Sessions
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /session/get-all-sessions [get]
func (h *SessionHandler) ListAll(c *gin.Context) {
	sessions, err := h.sessions.ListAll(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, sessions)
}

// ListEnrolled godoc
// @Summary List sessions the acting student has joined
// @Tags Sessions
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /session/get-student-sessions [get]
func (h *SessionHandler) ListEnrolled(c *gin.Context) {
	sessions, err := h.sessions.ListForStudent(c.Request.Context(), middleware.StudentID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, sessions)
}

// Feedback godoc
// @Summary List anonymous feedback for a session
// @Tags Feedback
// @Produce json
// @Param sessionId query string true "Session ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /session/get-feedback [get]
func (h *SessionHandler) Feedback(c *gin.Context) {
	records, err := h.feedback.ListForSession(c.Request.Context(), strings.TrimSpace(c.Query("sessionId")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, records)
}

// Rating godoc
// @Summary Get the mean rating for a session
// @Tags Feedback
// @Produce json
// @Param sessionId query string true "Session ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /session/get-rating [get]
func (h *SessionHandler) Rating(c *gin.Context) {
	summary, err := h.feedback.AverageRating(c.Request.Context(), strings.TrimSpace(c.Query("sessionId")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, summary)
}

// NoFeedback godoc
// @Summary List enrolled students who have not submitted feedback
// @Tags Feedback
// @Produce json
// @Param sessionId query string true "Session ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /session/no-feedback [get]
func (h *SessionHandler) NoFeedback(c *gin.Context) {
	students, err := h.feedback.StudentsWithoutFeedback(c.Request.Context(), strings.TrimSpace(c.Query("sessionId")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, students)
}

// ExportFeedback godoc
// @Summary Download a session's feedback as CSV or PDF
// @Tags Feedback
// @Produce octet-stream
// @Param sessionId query string true "Session ID"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} binary
// @Security BearerAuth
// @Router /session/export-feedback [get]
func (h *SessionHandler) ExportFeedback(c *gin.Context) {
	format := service.ExportFormat(c.DefaultQuery("format", string(service.ExportCSV)))
	result, err := h.feedback.Export(c.Request.Context(), strings.TrimSpace(c.Query("sessionId")), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	c.Data(http.StatusOK, result.ContentType, result.Content)
}
