package model

import "time"

type Answer struct {
	ID                  uint       `gorm:"primaryKey" json:"answer_id"`
	QuestionID          uint       `gorm:"not null;uniqueIndex" json:"question_id"`
	Content             string     `gorm:"type:text;not null" json:"content"`
	ModelUsed           string     `gorm:"size:64" json:"model_used"`
	GenerationLatencyMS *int64     `json:"generation_latency_ms"`
	Citations           []Citation `gorm:"foreignKey:AnswerID" json:"citations"`
	CreatedAt           time.Time  `json:"created_at"`
}

// Citation orders are dense and contiguous from 1 within an answer; the
// display layer assumes this and does no gap filling.
type Citation struct {
	ID             uint    `gorm:"primaryKey" json:"-"`
	AnswerID       uint    `gorm:"not null;index" json:"-"`
	ChunkID        string  `gorm:"size:64;not null" json:"chunk_id"`
	Content        string  `gorm:"type:text;not null" json:"content"`
	PageNumber     *int    `json:"page_number"`
	RelevanceScore float64 `json:"relevance_score"`
	CitationOrder  int     `gorm:"not null" json:"citation_order"`
}
