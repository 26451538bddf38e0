package model

import (
	"encoding/json"
	"time"
)

const (
	QuestionMinLen = 5
	QuestionMaxLen = 2000
)

// Question rows also carry professor review fields. Labels is stored as a
// JSON array of strings for portability across mysql and sqlite.
type Question struct {
	ID            uint      `gorm:"primaryKey" json:"question_id"`
	SessionID     uint      `gorm:"not null;index" json:"session_id"`
	StudentID     uint      `gorm:"not null;index" json:"student_id"`
	Content       string    `gorm:"type:text;not null" json:"content"`
	Anonymous     bool      `gorm:"not null" json:"anonymous"`
	Published     bool      `gorm:"not null;index" json:"published"`
	Labels        string    `gorm:"type:text" json:"-"`
	Notes         string    `gorm:"type:text" json:"-"`
	Topic         string    `gorm:"size:64;index" json:"-"`
	AnonymousName string    `gorm:"size:64" json:"-"`
	AskedAt       time.Time `json:"asked_at"`
}

func (q *Question) LabelList() []string {
	if q.Labels == "" {
		return nil
	}
	var v []string
	_ = json.Unmarshal([]byte(q.Labels), &v)
	return v
}

func (q *Question) SetLabels(labels []string) {
	if len(labels) == 0 {
		q.Labels = "[]"
		return
	}
	b, _ := json.Marshal(labels)
	q.Labels = string(b)
}

// QuestionOut is the transcript wire shape; Answer is nil while the
// answer worker has not caught up yet.
type QuestionOut struct {
	QuestionID uint      `json:"question_id"`
	Content    string    `json:"content"`
	AskedAt    time.Time `json:"asked_at"`
	StudentID  uint      `json:"student_id"`
	Anonymous  bool      `json:"anonymous"`
	Published  bool      `json:"published"`
	Answer     *Answer   `json:"answer"`
}

type Personality string

const (
	PersonalitySupportive Personality = "supportive"
	PersonalityNormal     Personality = "normal"
	PersonalityFunny      Personality = "funny"
)

func (p Personality) Valid() bool {
	switch p {
	case PersonalitySupportive, PersonalityNormal, PersonalityFunny:
		return true
	}
	return false
}
