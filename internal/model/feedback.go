package model

import "time"

type FeedbackValue string

const (
	FeedbackUp   FeedbackValue = "up"
	FeedbackDown FeedbackValue = "down"
)

func (v FeedbackValue) Valid() bool {
	return v == FeedbackUp || v == FeedbackDown
}

// AnswerFeedback is one viewer's vote on one answer. At most one row per
// (answer, student); casting the same value again deletes the row.
type AnswerFeedback struct {
	ID        uint          `gorm:"primaryKey" json:"id"`
	AnswerID  uint          `gorm:"not null;index:idx_answer_student,unique" json:"answer_id"`
	StudentID uint          `gorm:"not null;index:idx_answer_student,unique" json:"student_id"`
	Value     FeedbackValue `gorm:"size:8;not null" json:"value"`
	CreatedAt time.Time     `json:"created_at"`
}

// FeedbackSummary is the per-answer tally the report carries.
// NeedsAttention is derived: thumbs_down strictly greater than thumbs_up.
type FeedbackSummary struct {
	ThumbsUp       int  `json:"thumbs_up"`
	ThumbsDown     int  `json:"thumbs_down"`
	NeedsAttention bool `json:"needs_attention"`
}

func NewFeedbackSummary(up, down int) FeedbackSummary {
	return FeedbackSummary{
		ThumbsUp:       up,
		ThumbsDown:     down,
		NeedsAttention: down > up,
	}
}
