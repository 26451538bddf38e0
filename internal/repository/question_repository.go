package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"learnpool-client/internal/model"
)

type QuestionRepository struct {
	db *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) *QuestionRepository {
	return &QuestionRepository{db: db}
}

func (r *QuestionRepository) Create(question *model.Question) error {
	if err := r.db.Create(question).Error; err != nil {
		return fmt.Errorf("create question failed: %w", err)
	}
	return nil
}

func (r *QuestionRepository) GetByID(id uint) (*model.Question, error) {
	var question model.Question
	if err := r.db.First(&question, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get question failed: %w", err)
	}
	return &question, nil
}

// ListBySessionID returns questions in ask order; this ordering is the
// transcript contract, the client never reorders.
func (r *QuestionRepository) ListBySessionID(sessionID uint) ([]model.Question, error) {
	var questions []model.Question
	if err := r.db.Where("session_id = ?", sessionID).Order("asked_at ASC, id ASC").Find(&questions).Error; err != nil {
		return nil, fmt.Errorf("list questions failed: %w", err)
	}
	return questions, nil
}

func (r *QuestionRepository) ListByStudent(sessionID, studentID uint) ([]model.Question, error) {
	var questions []model.Question
	err := r.db.Where("session_id = ? AND student_id = ?", sessionID, studentID).
		Order("asked_at ASC, id ASC").Find(&questions).Error
	if err != nil {
		return nil, fmt.Errorf("list student questions failed: %w", err)
	}
	return questions, nil
}

func (r *QuestionRepository) Save(question *model.Question) error {
	if err := r.db.Save(question).Error; err != nil {
		return fmt.Errorf("update question failed: %w", err)
	}
	return nil
}

// MarkPublished flips the published flag on the student's own questions
// and returns how many rows actually changed.
func (r *QuestionRepository) MarkPublished(sessionID, studentID uint, ids []uint) (int, error) {
	res := r.db.Model(&model.Question{}).
		Where("session_id = ? AND student_id = ? AND id IN ?", sessionID, studentID, ids).
		Update("published", true)
	if res.Error != nil {
		return 0, fmt.Errorf("publish questions failed: %w", res.Error)
	}
	return int(res.RowsAffected), nil
}

func (r *QuestionRepository) CountBySessionID(sessionID uint) (int, error) {
	var count int64
	if err := r.db.Model(&model.Question{}).Where("session_id = ?", sessionID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count questions failed: %w", err)
	}
	return int(count), nil
}
