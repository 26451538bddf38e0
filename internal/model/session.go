package model

import "time"

type SessionStatus string

const (
	SessionUpcoming SessionStatus = "upcoming"
	SessionActive   SessionStatus = "active"
	SessionEnded    SessionStatus = "ended"
	SessionReleased SessionStatus = "released"
)

func (s SessionStatus) Valid() bool {
	switch s {
	case SessionUpcoming, SessionActive, SessionEnded, SessionReleased:
		return true
	}
	return false
}

type Session struct {
	ID          uint          `gorm:"primaryKey" json:"id"`
	CourseID    uint          `gorm:"not null;index" json:"course_id"`
	Title       string        `gorm:"size:128;not null" json:"title"`
	Status      SessionStatus `gorm:"size:16;not null;index" json:"status"`
	Location    string        `gorm:"size:128" json:"location"`
	StartedAt   time.Time     `json:"started_at"`
	ScheduledAt *time.Time    `json:"scheduled_at"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

type SessionSummary struct {
	ID        uint          `json:"id"`
	Title     string        `json:"title"`
	Status    SessionStatus `json:"status"`
	StartedAt time.Time     `json:"started_at"`
}

type SessionDetail struct {
	ID          uint          `json:"id"`
	Title       string        `json:"title"`
	Status      SessionStatus `json:"status"`
	Location    string        `json:"location"`
	StartedAt   time.Time     `json:"started_at"`
	ScheduledAt *time.Time    `json:"scheduled_at"`
	DocumentIDs []uint        `json:"document_ids"`
}

// SessionCheck is the enrollment gate response the client must pass
// before it starts polling a session.
type SessionCheck struct {
	SessionID     uint          `json:"session_id"`
	Enrolled      bool          `json:"enrolled"`
	SessionStatus SessionStatus `json:"session_status"`
}
