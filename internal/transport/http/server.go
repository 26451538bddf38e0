package http

import (
	"time"

	"github.com/gin-gonic/gin"

	appsvc "learnpool-client/internal/app"
	"learnpool-client/internal/bootstrap"
	"learnpool-client/internal/model"
	"learnpool-client/internal/platform/rabbitmq"
	"learnpool-client/internal/repository"
	"learnpool-client/internal/transport/http/handler"
	"learnpool-client/internal/transport/http/middleware"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	healthHandler := handler.NewHealthHandler(app)
	router.GET("/healthz", healthHandler.Check)

	userRepo := repository.NewUserRepository(app.DB)
	courseRepo := repository.NewCourseRepository(app.DB)
	sessionRepo := repository.NewSessionRepository(app.DB)
	questionRepo := repository.NewQuestionRepository(app.DB)
	answerRepo := repository.NewAnswerRepository(app.DB)
	feedbackRepo := repository.NewFeedbackRepository(app.DB)
	documentRepo := repository.NewDocumentRepository(app.DB)

	var reportCache appsvc.ReportCache
	if app.ReportCache != nil {
		reportCache = app.ReportCache
	}
	var publisher appsvc.AsyncAnswerPublisher
	if app.MQConn != nil {
		publisher = rabbitmq.NewAnswerPublisher(app.MQConn, app.Config.RabbitMQ.AnswerQueue)
	}

	authService := appsvc.NewAuthService(
		userRepo,
		app.Config.Auth.JWTSecret,
		time.Duration(app.Config.Auth.JWTExpireMinute)*time.Minute,
	)
	sessionService := appsvc.NewSessionService(courseRepo, sessionRepo, documentRepo, userRepo)
	qaService := appsvc.NewQAService(sessionRepo, courseRepo, questionRepo, answerRepo, feedbackRepo, publisher, reportCache)
	reportService := appsvc.NewReportService(sessionRepo, courseRepo, questionRepo, answerRepo, feedbackRepo, reportCache)

	authHandler := handler.NewAuthHandler(authService)
	studentHandler := handler.NewStudentHandler(sessionService, qaService, reportService)
	professorHandler := handler.NewProfessorHandler(sessionService, qaService, reportService, app.Config.App.UploadDir)

	router.POST("/auth/login", authHandler.Login)

	secret := app.Config.Auth.JWTSecret

	student := router.Group("/api/student")
	student.Use(middleware.AuthJWT(secret), middleware.RequireRole(model.RoleStudent))
	student.GET("/courses", studentHandler.Courses)
	student.GET("/courses/:id/sessions", studentHandler.Sessions)
	student.GET("/sessions/:id/check", studentHandler.CheckSession)
	student.GET("/sessions/:id/questions", studentHandler.Questions)
	student.POST("/sessions/:id/questions", studentHandler.AskQuestion)
	student.GET("/sessions/:id/documents", studentHandler.Documents)
	student.GET("/sessions/:id/report", studentHandler.Report)
	student.POST("/sessions/:id/publish", studentHandler.Publish)
	student.POST("/answers/:id/feedback", studentHandler.Feedback)

	professor := router.Group("/api/professor")
	professor.Use(middleware.AuthJWT(secret), middleware.RequireRole(model.RoleProfessor))
	professor.GET("/courses", professorHandler.Courses)
	professor.GET("/courses/:id/sessions", professorHandler.Sessions)
	professor.POST("/courses/:id/sessions", professorHandler.CreateSession)
	professor.POST("/courses/:id/schedule", professorHandler.ScheduleLecture)
	professor.GET("/courses/:id/documents", professorHandler.Documents)
	professor.POST("/courses/:id/documents", professorHandler.AddDocument)
	professor.POST("/courses/:id/documents/upload", professorHandler.UploadDocument)
	professor.GET("/sessions/:id", professorHandler.SessionDetail)
	professor.PATCH("/sessions/:id", professorHandler.UpdateSession)
	professor.PATCH("/sessions/:id/status", professorHandler.UpdateStatus)
	professor.DELETE("/sessions/:id", professorHandler.DeleteSession)
	professor.GET("/sessions/:id/report", professorHandler.Report)
	professor.PATCH("/questions/:id", professorHandler.UpdateQuestion)

	return router
}
