package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sfa-api/internal/service"
	appErrors "github.com/noah-isme/sfa-api/pkg/errors"
	"github.com/noah-isme/sfa-api/pkg/response"
)

// Context keys storing the resolved identity for downstream handlers.
const (
	ContextTeacherKey = "currentTeacher"
	ContextStudentKey = "currentStudent"
)

// RequireTeacher protects teacher-only routes. The bearer token must verify
// and resolve to an existing teacher row.
func RequireTeacher(auth *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			return
		}
		teacherID, err := auth.ResolveTeacher(c.Request.Context(), token)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}
		c.Set(ContextTeacherKey, teacherID)
		c.Next()
	}
}

// RequireStudent protects student-only routes.
func RequireStudent(auth *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			return
		}
		studentID, err := auth.ResolveStudent(c.Request.Context(), token)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}
		c.Set(ContextStudentKey, studentID)
		c.Next()
	}
}

// TeacherID returns the teacher id resolved by RequireTeacher.
func TeacherID(c *gin.Context) string {
	if v, exists := c.Get(ContextTeacherKey); exists {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

// StudentID returns the student id resolved by RequireStudent.
func StudentID(c *gin.Context) string {
	if v, exists := c.Get(ContextStudentKey); exists {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		c.Abort()
		return "", false
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "invalid authorization header"))
		c.Abort()
		return "", false
	}
	return parts[1], true
}
