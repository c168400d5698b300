package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sfa-api/internal/middleware"
	"github.com/noah-isme/sfa-api/internal/service"
)

// Routes wires every endpoint onto the engine. Paths follow the public API
// contract; the auth gates are applied per group.
func Routes(r *gin.Engine, auth *service.AuthService, authH *AuthHandler, sessionH *SessionHandler, studentH *StudentHandler, metrics *service.MetricsService) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP"})
	})
	r.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	if metrics != nil {
		r.GET("/metrics", gin.WrapH(metrics.Handler()))
	}

	teacher := r.Group("/teacher")
	{
		teacher.POST("/register", authH.TeacherRegister)
		teacher.POST("/login", authH.TeacherLogin)
	}

	student := r.Group("/student")
	{
		student.POST("/register", authH.StudentRegister)
		student.POST("/login", authH.StudentLogin)
		student.POST("/join-session", middleware.RequireStudent(auth), studentH.JoinSession)
		student.POST("/submit-feedback", middleware.RequireStudent(auth), studentH.SubmitFeedback)
	}

	session := r.Group("/session")
	{
		session.GET("/get-all-sessions", sessionH.ListAll)
		session.GET("/get-student-sessions", middleware.RequireStudent(auth), sessionH.ListEnrolled)

		teacherOnly := session.Group("", middleware.RequireTeacher(auth))
		teacherOnly.POST("/create-session", sessionH.Create)
		teacherOnly.GET("/get-session", sessionH.ListOwned)
		teacherOnly.GET("/get-feedback", sessionH.Feedback)
		teacherOnly.GET("/get-rating", sessionH.Rating)
		teacherOnly.GET("/no-feedback", sessionH.NoFeedback)
		teacherOnly.GET("/export-feedback", sessionH.ExportFeedback)
	}
}
