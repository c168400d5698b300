package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sfa-api/internal/middleware"
	"github.com/noah-isme/sfa-api/internal/service"
	appErrors "github.com/noah-isme/sfa-api/pkg/errors"
	"github.com/noah-isme/sfa-api/pkg/response"
)

type studentActionService interface {
	Join(ctx context.Context, studentID string, req service.JoinSessionRequest) error
	Submit(ctx context.Context, studentID string, req service.SubmitFeedbackRequest) error
}

// StudentHandler exposes the student-side session actions.
type StudentHandler struct {
	actions studentActionService
}

// NewStudentHandler constructs StudentHandler.
func NewStudentHandler(actions studentActionService) *StudentHandler {
	return &StudentHandler{actions: actions}
}

// JoinSession godoc
// @Summary Join a session
// @Tags Students
// @Accept json
// @Produce json
// @Param payload body service.JoinSessionRequest true "Join payload"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /student/join-session [post]
func (h *StudentHandler) JoinSession(c *gin.Context) {
	var req service.JoinSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := h.actions.Join(c.Request.Context(), middleware.StudentID(c), req); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"message": "session joined successfully"})
}

// SubmitFeedback godoc
// @Summary Submit anonymous feedback for a joined session
// @Tags Students
// @Accept json
// @Produce json
// @Param payload body service.SubmitFeedbackRequest true "Feedback payload"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /student/submit-feedback [post]
func (h *StudentHandler) SubmitFeedback(c *gin.Context) {
	var req service.SubmitFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := h.actions.Submit(c.Request.Context(), middleware.StudentID(c), req); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"message": "feedback submitted successfully"})
}
