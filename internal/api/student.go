package api

import (
	"context"
	"fmt"
	"net/http"

	"learnpool-client/internal/model"
)

func (c *Client) StudentCourses(ctx context.Context) ([]model.CourseSummary, error) {
	return getJSON[[]model.CourseSummary](ctx, c, "/api/student/courses")
}

func (c *Client) StudentSessions(ctx context.Context, courseID uint) ([]model.SessionSummary, error) {
	return getJSON[[]model.SessionSummary](ctx, c, fmt.Sprintf("/api/student/courses/%d/sessions", courseID))
}

// CheckSession is the enrollment gate. Callers run it with Retry off
// before starting any polling; a not-enrolled result means leave without
// loading anything.
func (c *Client) CheckSession(ctx context.Context, sessionID uint) (model.SessionCheck, error) {
	return getJSON[model.SessionCheck](ctx, c, fmt.Sprintf("/api/student/sessions/%d/check", sessionID))
}

func (c *Client) Questions(ctx context.Context, sessionID uint) ([]model.QuestionOut, error) {
	return getJSON[[]model.QuestionOut](ctx, c, fmt.Sprintf("/api/student/sessions/%d/questions", sessionID))
}

type AskQuestionRequest struct {
	Content     string            `json:"content"`
	Personality model.Personality `json:"personality"`
	Anonymous   bool              `json:"anonymous"`
}

// AskQuestion submits a new question. The response is the authoritative
// question object; the answer attaches asynchronously and arrives on a
// later poll.
func (c *Client) AskQuestion(ctx context.Context, sessionID uint, req AskQuestionRequest) (model.QuestionOut, error) {
	return sendJSON[model.QuestionOut](ctx, c, http.MethodPost, fmt.Sprintf("/api/student/sessions/%d/questions", sessionID), req)
}

func (c *Client) SessionDocuments(ctx context.Context, sessionID uint) ([]model.Document, error) {
	return getJSON[[]model.Document](ctx, c, fmt.Sprintf("/api/student/sessions/%d/documents", sessionID))
}

func (c *Client) StudentReport(ctx context.Context, sessionID uint) (model.SessionReport, error) {
	return getJSON[model.SessionReport](ctx, c, fmt.Sprintf("/api/student/sessions/%d/report", sessionID))
}

type FeedbackResponse struct {
	ThumbsUp   int                 `json:"thumbs_up"`
	ThumbsDown int                 `json:"thumbs_down"`
	MyFeedback model.FeedbackValue `json:"my_feedback,omitempty"`
}

// SubmitFeedback casts a vote. Casting the viewer's current vote again
// toggles it off; the server enforces the same semantics the optimistic
// patch predicts.
func (c *Client) SubmitFeedback(ctx context.Context, answerID uint, value model.FeedbackValue) (FeedbackResponse, error) {
	body := map[string]model.FeedbackValue{"feedback": value}
	return sendJSON[FeedbackResponse](ctx, c, http.MethodPost, fmt.Sprintf("/api/student/answers/%d/feedback", answerID), body)
}

type PublishResponse struct {
	PublishedCount int `json:"published_count"`
}

func (c *Client) PublishQuestions(ctx context.Context, sessionID uint, questionIDs []uint) (PublishResponse, error) {
	body := map[string][]uint{"question_ids": questionIDs}
	return sendJSON[PublishResponse](ctx, c, http.MethodPost, fmt.Sprintf("/api/student/sessions/%d/publish", sessionID), body)
}
