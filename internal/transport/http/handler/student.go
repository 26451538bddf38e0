package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"learnpool-client/internal/app"
	"learnpool-client/internal/model"
	"learnpool-client/internal/transport/http/middleware"
	"learnpool-client/internal/transport/http/response"
)

type StudentHandler struct {
	sessionService *app.SessionService
	qaService      *app.QAService
	reportService  *app.ReportService
}

func NewStudentHandler(sessionService *app.SessionService, qaService *app.QAService, reportService *app.ReportService) *StudentHandler {
	return &StudentHandler{
		sessionService: sessionService,
		qaService:      qaService,
		reportService:  reportService,
	}
}

func (h *StudentHandler) Courses(c *gin.Context) {
	courses, err := h.sessionService.CoursesForStudent(middleware.UserID(c))
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "list courses failed")
		return
	}
	response.OK(c, http.StatusOK, courses)
}

func (h *StudentHandler) Sessions(c *gin.Context) {
	courseID, ok := pathID(c, "id")
	if !ok {
		return
	}
	sessions, err := h.sessionService.SessionsForStudent(courseID, middleware.UserID(c))
	if err != nil {
		studentError(c, err, "list sessions failed")
		return
	}
	response.OK(c, http.StatusOK, sessions)
}

func (h *StudentHandler) CheckSession(c *gin.Context) {
	sessionID, ok := pathID(c, "id")
	if !ok {
		return
	}
	check, err := h.qaService.CheckSession(sessionID, middleware.UserID(c))
	if err != nil {
		studentError(c, err, "session check failed")
		return
	}
	response.OK(c, http.StatusOK, check)
}

func (h *StudentHandler) Questions(c *gin.Context) {
	sessionID, ok := pathID(c, "id")
	if !ok {
		return
	}
	questions, err := h.qaService.Transcript(sessionID, middleware.UserID(c), model.RoleStudent)
	if err != nil {
		studentError(c, err, "list questions failed")
		return
	}
	response.OK(c, http.StatusOK, questions)
}

type askQuestionRequest struct {
	Content     string            `json:"content" binding:"required"`
	Personality model.Personality `json:"personality"`
	Anonymous   bool              `json:"anonymous"`
}

func (h *StudentHandler) AskQuestion(c *gin.Context) {
	sessionID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req askQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusUnprocessableEntity, "invalid request payload")
		return
	}

	out, err := h.qaService.AskQuestion(c.Request.Context(), app.AskQuestionInput{
		SessionID:   sessionID,
		StudentID:   middleware.UserID(c),
		Content:     req.Content,
		Personality: req.Personality,
		Anonymous:   req.Anonymous,
	})
	if err != nil {
		studentError(c, err, "ask question failed")
		return
	}
	response.OK(c, http.StatusCreated, out)
}

func (h *StudentHandler) Documents(c *gin.Context) {
	sessionID, ok := pathID(c, "id")
	if !ok {
		return
	}
	docs, err := h.sessionService.SessionDocuments(sessionID, middleware.UserID(c))
	if err != nil {
		studentError(c, err, "list documents failed")
		return
	}
	response.OK(c, http.StatusOK, docs)
}

func (h *StudentHandler) Report(c *gin.Context) {
	sessionID, ok := pathID(c, "id")
	if !ok {
		return
	}
	report, err := h.reportService.StudentReport(c.Request.Context(), sessionID, middleware.UserID(c))
	if err != nil {
		studentError(c, err, "build report failed")
		return
	}
	response.OK(c, http.StatusOK, report)
}

type feedbackRequest struct {
	Feedback model.FeedbackValue `json:"feedback" binding:"required"`
}

func (h *StudentHandler) Feedback(c *gin.Context) {
	answerID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req feedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusUnprocessableEntity, "invalid request payload")
		return
	}

	result, err := h.qaService.ToggleFeedback(c.Request.Context(), answerID, middleware.UserID(c), req.Feedback)
	if err != nil {
		studentError(c, err, "submit feedback failed")
		return
	}
	response.OK(c, http.StatusOK, result)
}

type publishRequest struct {
	QuestionIDs []uint `json:"question_ids"`
}

func (h *StudentHandler) Publish(c *gin.Context) {
	sessionID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req publishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusUnprocessableEntity, "invalid request payload")
		return
	}

	count, err := h.qaService.PublishQuestions(c.Request.Context(), sessionID, middleware.UserID(c), req.QuestionIDs)
	if err != nil {
		studentError(c, err, "publish questions failed")
		return
	}
	response.OK(c, http.StatusOK, gin.H{"published_count": count})
}

func studentError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, app.ErrSessionNotFound),
		errors.Is(err, app.ErrQuestionNotFound),
		errors.Is(err, app.ErrAnswerNotFound),
		errors.Is(err, app.ErrCourseNotFound):
		response.Error(c, http.StatusNotFound, err.Error())
	case errors.Is(err, app.ErrNotEnrolled):
		response.Error(c, http.StatusForbidden, err.Error())
	case errors.Is(err, app.ErrSessionClosed):
		response.Error(c, http.StatusConflict, err.Error())
	case errors.Is(err, app.ErrQuestionTooShort),
		errors.Is(err, app.ErrQuestionTooLong),
		errors.Is(err, app.ErrInvalidInput):
		response.Error(c, http.StatusUnprocessableEntity, err.Error())
	default:
		response.Error(c, http.StatusInternalServerError, fallback)
	}
}
