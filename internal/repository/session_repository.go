package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"learnpool-client/internal/model"
)

type SessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Create(session *model.Session) error {
	if err := r.db.Create(session).Error; err != nil {
		return fmt.Errorf("create session failed: %w", err)
	}
	return nil
}

func (r *SessionRepository) GetByID(id uint) (*model.Session, error) {
	var session model.Session
	if err := r.db.First(&session, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get session failed: %w", err)
	}
	return &session, nil
}

func (r *SessionRepository) ListByCourseID(courseID uint) ([]model.Session, error) {
	var sessions []model.Session
	if err := r.db.Where("course_id = ?", courseID).Order("started_at DESC").Find(&sessions).Error; err != nil {
		return nil, fmt.Errorf("list sessions failed: %w", err)
	}
	return sessions, nil
}

// HasActive reports whether any session in the course is currently live.
// This backs the one-active-session-per-course invariant.
func (r *SessionRepository) HasActive(courseID uint) (bool, error) {
	var count int64
	err := r.db.Model(&model.Session{}).
		Where("course_id = ? AND status = ?", courseID, model.SessionActive).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("count active sessions failed: %w", err)
	}
	return count > 0, nil
}

func (r *SessionRepository) Save(session *model.Session) error {
	if err := r.db.Save(session).Error; err != nil {
		return fmt.Errorf("update session failed: %w", err)
	}
	return nil
}

func (r *SessionRepository) Delete(id uint) error {
	if err := r.db.Delete(&model.Session{}, id).Error; err != nil {
		return fmt.Errorf("delete session failed: %w", err)
	}
	return nil
}

// ReplaceDocuments rewrites the ordered document attachments of a session.
func (r *SessionRepository) ReplaceDocuments(sessionID uint, documentIDs []uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("session_id = ?", sessionID).Delete(&model.SessionDocument{}).Error; err != nil {
			return fmt.Errorf("clear session documents failed: %w", err)
		}
		for i, docID := range documentIDs {
			link := &model.SessionDocument{SessionID: sessionID, DocumentID: docID, Position: i}
			if err := tx.Create(link).Error; err != nil {
				return fmt.Errorf("attach document failed: %w", err)
			}
		}
		return nil
	})
}

func (r *SessionRepository) DocumentIDs(sessionID uint) ([]uint, error) {
	var links []model.SessionDocument
	if err := r.db.Where("session_id = ?", sessionID).Order("position ASC").Find(&links).Error; err != nil {
		return nil, fmt.Errorf("list session documents failed: %w", err)
	}
	ids := make([]uint, 0, len(links))
	for _, l := range links {
		ids = append(ids, l.DocumentID)
	}
	return ids, nil
}
