package model

import "time"

type Document struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CourseID    uint      `gorm:"not null;index" json:"course_id"`
	Filename    string    `gorm:"size:256;not null" json:"filename"`
	StoragePath string    `gorm:"size:512" json:"storage_path"`
	URL         string    `gorm:"size:512" json:"url"`
	Content     string    `gorm:"type:text" json:"content,omitempty"`
	PageCount   *int      `json:"page_count"`
	CreatedAt   time.Time `json:"created_at"`
}

// SessionDocument attaches a document to a session; attachment order is
// the ordered document_ids set the session detail exposes.
type SessionDocument struct {
	ID         uint `gorm:"primaryKey" json:"id"`
	SessionID  uint `gorm:"not null;index:idx_session_doc,unique" json:"session_id"`
	DocumentID uint `gorm:"not null;index:idx_session_doc,unique" json:"document_id"`
	Position   int  `gorm:"not null" json:"position"`
}
