package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"learnpool-client/internal/model"
)

func (c *Client) ProfessorCourses(ctx context.Context) ([]model.CourseSummary, error) {
	return getJSON[[]model.CourseSummary](ctx, c, "/api/professor/courses")
}

func (c *Client) ProfessorSessions(ctx context.Context, courseID uint) ([]model.SessionSummary, error) {
	return getJSON[[]model.SessionSummary](ctx, c, fmt.Sprintf("/api/professor/courses/%d/sessions", courseID))
}

func (c *Client) SessionDetail(ctx context.Context, sessionID uint) (model.SessionDetail, error) {
	return getJSON[model.SessionDetail](ctx, c, fmt.Sprintf("/api/professor/sessions/%d", sessionID))
}

type CreateSessionRequest struct {
	Title     string `json:"title"`
	Scheduled bool   `json:"scheduled"`
}

// CreateSession starts a session immediately, or creates it as upcoming
// when Scheduled is set. The server rejects a start while another session
// in the course is active, regardless of what the client's advisory gate
// said.
func (c *Client) CreateSession(ctx context.Context, courseID uint, req CreateSessionRequest) (model.SessionSummary, error) {
	return sendJSON[model.SessionSummary](ctx, c, http.MethodPost, fmt.Sprintf("/api/professor/courses/%d/sessions", courseID), req)
}

type ScheduleLectureRequest struct {
	Title         string `json:"title"`
	ScheduledDate string `json:"scheduled_date"`
	ScheduledTime string `json:"scheduled_time"`
	Location      string `json:"location"`
	DocumentIDs   []uint `json:"document_ids"`
}

func (c *Client) ScheduleLecture(ctx context.Context, courseID uint, req ScheduleLectureRequest) (model.SessionSummary, error) {
	return sendJSON[model.SessionSummary](ctx, c, http.MethodPost, fmt.Sprintf("/api/professor/courses/%d/schedule", courseID), req)
}

func (c *Client) UpdateSession(ctx context.Context, sessionID uint, req ScheduleLectureRequest) (model.SessionSummary, error) {
	return sendJSON[model.SessionSummary](ctx, c, http.MethodPatch, fmt.Sprintf("/api/professor/sessions/%d", sessionID), req)
}

func (c *Client) UpdateSessionStatus(ctx context.Context, sessionID uint, status model.SessionStatus) (model.SessionSummary, error) {
	body := map[string]model.SessionStatus{"status": status}
	return sendJSON[model.SessionSummary](ctx, c, http.MethodPatch, fmt.Sprintf("/api/professor/sessions/%d/status", sessionID), body)
}

// DeleteSession removes a scheduled lecture. The server only permits this
// pre-start.
func (c *Client) DeleteSession(ctx context.Context, sessionID uint) error {
	_, err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/professor/sessions/%d", sessionID), nil, "")
	return err
}

func (c *Client) ProfessorReport(ctx context.Context, sessionID uint) (model.SessionReport, error) {
	return getJSON[model.SessionReport](ctx, c, fmt.Sprintf("/api/professor/sessions/%d/report", sessionID))
}

func (c *Client) CourseDocuments(ctx context.Context, courseID uint) ([]model.Document, error) {
	return getJSON[[]model.Document](ctx, c, fmt.Sprintf("/api/professor/courses/%d/documents", courseID))
}

type AddDocumentRequest struct {
	Title      string `json:"title"`
	Content    string `json:"content"`
	SessionIDs []uint `json:"session_ids"`
}

func (c *Client) AddDocument(ctx context.Context, courseID uint, req AddDocumentRequest) (model.Document, error) {
	return sendJSON[model.Document](ctx, c, http.MethodPost, fmt.Sprintf("/api/professor/courses/%d/documents", courseID), req)
}

// UploadDocument sends a material file as multipart form data; session_ids
// travels as a JSON-encoded string field per the upload contract.
func (c *Client) UploadDocument(ctx context.Context, courseID uint, filename, title string, sessionIDs []uint, file io.Reader) (model.Document, error) {
	ids, err := json.Marshal(sessionIDs)
	if err != nil {
		return model.Document{}, fmt.Errorf("marshal session ids failed: %w", err)
	}
	if title == "" {
		title = filename
	}
	fields := map[string]string{
		"title":       title,
		"session_ids": string(ids),
	}
	raw, err := c.postMultipart(ctx, fmt.Sprintf("/api/professor/courses/%d/documents/upload", courseID), fields, "file", filename, file)
	if err != nil {
		return model.Document{}, err
	}
	var doc model.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return model.Document{}, fmt.Errorf("parse response failed: %w", err)
	}
	return doc, nil
}

type UpdateQuestionRequest struct {
	Labels []string `json:"labels"`
	Notes  *string  `json:"notes"`
}

// UpdateQuestionReview patches professor labels and notes on a question.
func (c *Client) UpdateQuestionReview(ctx context.Context, questionID uint, req UpdateQuestionRequest) error {
	_, err := sendJSON[map[string]uint](ctx, c, http.MethodPatch, fmt.Sprintf("/api/professor/questions/%d", questionID), req)
	return err
}
