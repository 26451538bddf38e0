package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"learnpool-client/internal/model"
)

type DocumentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

func (r *DocumentRepository) Create(doc *model.Document) error {
	if err := r.db.Create(doc).Error; err != nil {
		return fmt.Errorf("create document failed: %w", err)
	}
	return nil
}

func (r *DocumentRepository) GetByID(id uint) (*model.Document, error) {
	var doc model.Document
	if err := r.db.First(&doc, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get document failed: %w", err)
	}
	return &doc, nil
}

func (r *DocumentRepository) ListByCourseID(courseID uint) ([]model.Document, error) {
	var docs []model.Document
	if err := r.db.Where("course_id = ?", courseID).Order("id ASC").Find(&docs).Error; err != nil {
		return nil, fmt.Errorf("list course documents failed: %w", err)
	}
	return docs, nil
}

func (r *DocumentRepository) ListBySessionID(sessionID uint) ([]model.Document, error) {
	var docs []model.Document
	err := r.db.
		Joins("JOIN session_documents ON session_documents.document_id = documents.id").
		Where("session_documents.session_id = ?", sessionID).
		Order("session_documents.position ASC").
		Find(&docs).Error
	if err != nil {
		return nil, fmt.Errorf("list session documents failed: %w", err)
	}
	return docs, nil
}

func (r *DocumentRepository) AttachToSessions(documentID uint, sessionIDs []uint) error {
	for _, sessionID := range sessionIDs {
		var position int64
		if err := r.db.Model(&model.SessionDocument{}).Where("session_id = ?", sessionID).Count(&position).Error; err != nil {
			return fmt.Errorf("count session documents failed: %w", err)
		}
		link := &model.SessionDocument{SessionID: sessionID, DocumentID: documentID, Position: int(position)}
		if err := r.db.Create(link).Error; err != nil {
			return fmt.Errorf("attach document failed: %w", err)
		}
	}
	return nil
}
