package model

import "time"

// ReportQuestion is the projection the report endpoints return: the asker
// is reduced to a display pseudonym, and MyFeedback is the viewer's own
// vote ("" when the viewer has not voted).
type ReportQuestion struct {
	QuestionID    uint             `json:"question_id"`
	Content       string           `json:"content"`
	AskedAt       time.Time        `json:"asked_at"`
	AnonymousName string           `json:"anonymous_name"`
	Answer        *Answer          `json:"answer"`
	Feedback      *FeedbackSummary `json:"feedback"`
	MyFeedback    FeedbackValue    `json:"my_feedback,omitempty"`
	Labels        []string         `json:"labels"`
	Notes         string           `json:"notes"`
}

// TopicGroup is server-computed; the client never regroups, it only
// projects display metrics over the groups it is handed.
type TopicGroup struct {
	TopicName     string           `json:"topic_name"`
	StudentCount  int              `json:"student_count"`
	QuestionCount int              `json:"question_count"`
	Summary       string           `json:"summary,omitempty"`
	IsHot         bool             `json:"is_hot"`
	Questions     []ReportQuestion `json:"questions"`
}

type SessionReport struct {
	Groups         []TopicGroup `json:"groups"`
	TotalQuestions int          `json:"total_questions"`
}
