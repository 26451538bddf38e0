package model

import "time"

type Course struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:128;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	ProfessorID uint      `gorm:"not null;index" json:"-"`
	CreatedAt   time.Time `json:"created_at"`
}

// CourseSummary is the wire shape list endpoints return.
type CourseSummary struct {
	ID            uint   `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	ProfessorName string `json:"professor_name"`
	SessionCount  int    `json:"session_count"`
}

type Enrollment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CourseID  uint      `gorm:"not null;index:idx_enroll,unique" json:"course_id"`
	StudentID uint      `gorm:"not null;index:idx_enroll,unique" json:"student_id"`
	CreatedAt time.Time `json:"created_at"`
}
