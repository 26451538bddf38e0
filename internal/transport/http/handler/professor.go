package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"

	"learnpool-client/internal/app"
	"learnpool-client/internal/model"
	"learnpool-client/internal/transport/http/middleware"
	"learnpool-client/internal/transport/http/response"
)

type ProfessorHandler struct {
	sessionService *app.SessionService
	qaService      *app.QAService
	reportService  *app.ReportService
	uploadDir      string
}

func NewProfessorHandler(sessionService *app.SessionService, qaService *app.QAService, reportService *app.ReportService, uploadDir string) *ProfessorHandler {
	return &ProfessorHandler{
		sessionService: sessionService,
		qaService:      qaService,
		reportService:  reportService,
		uploadDir:      uploadDir,
	}
}

func (h *ProfessorHandler) Courses(c *gin.Context) {
	courses, err := h.sessionService.CoursesForProfessor(middleware.UserID(c))
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "list courses failed")
		return
	}
	response.OK(c, http.StatusOK, courses)
}

func (h *ProfessorHandler) Sessions(c *gin.Context) {
	courseID, ok := pathID(c, "id")
	if !ok {
		return
	}
	sessions, err := h.sessionService.SessionsForProfessor(courseID, middleware.UserID(c))
	if err != nil {
		professorError(c, err, "list sessions failed")
		return
	}
	response.OK(c, http.StatusOK, sessions)
}

func (h *ProfessorHandler) SessionDetail(c *gin.Context) {
	sessionID, ok := pathID(c, "id")
	if !ok {
		return
	}
	detail, err := h.sessionService.SessionDetail(sessionID, middleware.UserID(c))
	if err != nil {
		professorError(c, err, "session detail failed")
		return
	}
	response.OK(c, http.StatusOK, detail)
}

type createSessionRequest struct {
	Title     string `json:"title" binding:"required,max=128"`
	Scheduled bool   `json:"scheduled"`
}

func (h *ProfessorHandler) CreateSession(c *gin.Context) {
	courseID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req createSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusUnprocessableEntity, "invalid request payload")
		return
	}

	session, err := h.sessionService.CreateSession(app.CreateSessionInput{
		CourseID:    courseID,
		ProfessorID: middleware.UserID(c),
		Title:       req.Title,
		Scheduled:   req.Scheduled,
	})
	if err != nil {
		professorError(c, err, "create session failed")
		return
	}
	response.OK(c, http.StatusCreated, sessionSummary(session))
}

type scheduleLectureRequest struct {
	Title         string `json:"title"`
	ScheduledDate string `json:"scheduled_date"`
	ScheduledTime string `json:"scheduled_time"`
	Location      string `json:"location"`
	DocumentIDs   []uint `json:"document_ids"`
}

func (h *ProfessorHandler) ScheduleLecture(c *gin.Context) {
	courseID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req scheduleLectureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusUnprocessableEntity, "invalid request payload")
		return
	}
	scheduledAt, err := parseSchedule(req.ScheduledDate, req.ScheduledTime)
	if err != nil {
		response.Error(c, http.StatusUnprocessableEntity, err.Error())
		return
	}

	session, err := h.sessionService.ScheduleLecture(app.ScheduleLectureInput{
		CourseID:    courseID,
		ProfessorID: middleware.UserID(c),
		Title:       req.Title,
		ScheduledAt: scheduledAt,
		Location:    req.Location,
		DocumentIDs: req.DocumentIDs,
	})
	if err != nil {
		professorError(c, err, "schedule lecture failed")
		return
	}
	response.OK(c, http.StatusCreated, sessionSummary(session))
}

func (h *ProfessorHandler) UpdateSession(c *gin.Context) {
	sessionID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req scheduleLectureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusUnprocessableEntity, "invalid request payload")
		return
	}

	input := app.UpdateSessionInput{
		SessionID:   sessionID,
		ProfessorID: middleware.UserID(c),
		DocumentIDs: req.DocumentIDs,
	}
	if req.Title != "" {
		input.Title = &req.Title
	}
	if req.Location != "" {
		input.Location = &req.Location
	}
	if req.ScheduledDate != "" {
		scheduledAt, err := parseSchedule(req.ScheduledDate, req.ScheduledTime)
		if err != nil {
			response.Error(c, http.StatusUnprocessableEntity, err.Error())
			return
		}
		input.ScheduledAt = &scheduledAt
	}

	session, err := h.sessionService.UpdateSession(input)
	if err != nil {
		professorError(c, err, "update session failed")
		return
	}
	response.OK(c, http.StatusOK, sessionSummary(session))
}

type statusRequest struct {
	Status model.SessionStatus `json:"status" binding:"required"`
}

func (h *ProfessorHandler) UpdateStatus(c *gin.Context) {
	sessionID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusUnprocessableEntity, "invalid request payload")
		return
	}

	session, err := h.sessionService.UpdateStatus(sessionID, middleware.UserID(c), req.Status)
	if err != nil {
		professorError(c, err, "update status failed")
		return
	}
	response.OK(c, http.StatusOK, sessionSummary(session))
}

func (h *ProfessorHandler) DeleteSession(c *gin.Context) {
	sessionID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.sessionService.DeleteSession(sessionID, middleware.UserID(c)); err != nil {
		professorError(c, err, "delete session failed")
		return
	}
	response.OK(c, http.StatusOK, gin.H{"deleted": sessionID})
}

func (h *ProfessorHandler) Report(c *gin.Context) {
	sessionID, ok := pathID(c, "id")
	if !ok {
		return
	}
	report, err := h.reportService.ProfessorReport(c.Request.Context(), sessionID, middleware.UserID(c))
	if err != nil {
		professorError(c, err, "build report failed")
		return
	}
	response.OK(c, http.StatusOK, report)
}

func (h *ProfessorHandler) Documents(c *gin.Context) {
	courseID, ok := pathID(c, "id")
	if !ok {
		return
	}
	docs, err := h.sessionService.CourseDocuments(courseID, middleware.UserID(c))
	if err != nil {
		professorError(c, err, "list documents failed")
		return
	}
	response.OK(c, http.StatusOK, docs)
}

type addDocumentRequest struct {
	Title      string `json:"title" binding:"required,max=256"`
	Content    string `json:"content"`
	SessionIDs []uint `json:"session_ids"`
}

func (h *ProfessorHandler) AddDocument(c *gin.Context) {
	courseID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req addDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusUnprocessableEntity, "invalid request payload")
		return
	}

	doc := &model.Document{Filename: req.Title, Content: req.Content}
	created, err := h.sessionService.AddDocument(courseID, middleware.UserID(c), doc, req.SessionIDs)
	if err != nil {
		professorError(c, err, "add document failed")
		return
	}
	response.OK(c, http.StatusCreated, created)
}

// UploadDocument stores a multipart material file on disk and registers
// it; session_ids arrives as a JSON array encoded into a string field.
func (h *ProfessorHandler) UploadDocument(c *gin.Context) {
	courseID, ok := pathID(c, "id")
	if !ok {
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		response.Error(c, http.StatusUnprocessableEntity, "missing file")
		return
	}

	var sessionIDs []uint
	if raw := c.PostForm("session_ids"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &sessionIDs); err != nil {
			response.Error(c, http.StatusUnprocessableEntity, "invalid session_ids")
			return
		}
	}
	title := c.PostForm("title")
	if title == "" {
		title = file.Filename
	}

	if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
		response.Error(c, http.StatusInternalServerError, "store file failed")
		return
	}
	storagePath := filepath.Join(h.uploadDir, fmt.Sprintf("%d-%d-%s", courseID, time.Now().UnixNano(), filepath.Base(file.Filename)))
	if err := c.SaveUploadedFile(file, storagePath); err != nil {
		response.Error(c, http.StatusInternalServerError, "store file failed")
		return
	}

	doc := &model.Document{Filename: title, StoragePath: storagePath}
	created, err := h.sessionService.AddDocument(courseID, middleware.UserID(c), doc, sessionIDs)
	if err != nil {
		professorError(c, err, "add document failed")
		return
	}
	response.OK(c, http.StatusCreated, created)
}

type updateQuestionRequest struct {
	Labels []string `json:"labels"`
	Notes  *string  `json:"notes"`
}

func (h *ProfessorHandler) UpdateQuestion(c *gin.Context) {
	questionID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req updateQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusUnprocessableEntity, "invalid request payload")
		return
	}

	question, err := h.qaService.UpdateReview(c.Request.Context(), app.ReviewUpdateInput{
		QuestionID:  questionID,
		ProfessorID: middleware.UserID(c),
		Labels:      req.Labels,
		Notes:       req.Notes,
	})
	if err != nil {
		professorError(c, err, "update question failed")
		return
	}
	response.OK(c, http.StatusOK, gin.H{"question_id": question.ID})
}

func sessionSummary(s *model.Session) model.SessionSummary {
	return model.SessionSummary{
		ID:        s.ID,
		Title:     s.Title,
		Status:    s.Status,
		StartedAt: s.StartedAt,
	}
}

func parseSchedule(date, clock string) (time.Time, error) {
	if date == "" {
		return time.Time{}, errors.New("scheduled_date is required")
	}
	if clock == "" {
		clock = "00:00"
	}
	scheduledAt, err := time.ParseInLocation("2006-01-02 15:04", date+" "+clock, time.Local)
	if err != nil {
		return time.Time{}, errors.New("invalid scheduled date or time")
	}
	return scheduledAt, nil
}

func professorError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, app.ErrSessionNotFound),
		errors.Is(err, app.ErrQuestionNotFound),
		errors.Is(err, app.ErrCourseNotFound),
		errors.Is(err, app.ErrDocumentNotFound):
		response.Error(c, http.StatusNotFound, err.Error())
	case errors.Is(err, app.ErrNotOwner):
		response.Error(c, http.StatusForbidden, err.Error())
	case errors.Is(err, app.ErrActiveExists),
		errors.Is(err, app.ErrNotUpcoming),
		errors.Is(err, app.ErrBadStatusChange):
		response.Error(c, http.StatusConflict, err.Error())
	case errors.Is(err, app.ErrInvalidInput):
		response.Error(c, http.StatusUnprocessableEntity, err.Error())
	default:
		response.Error(c, http.StatusInternalServerError, fallback)
	}
}
