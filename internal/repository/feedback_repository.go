package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"learnpool-client/internal/model"
)

type FeedbackRepository struct {
	db *gorm.DB
}

func NewFeedbackRepository(db *gorm.DB) *FeedbackRepository {
	return &FeedbackRepository{db: db}
}

func (r *FeedbackRepository) Get(answerID, studentID uint) (*model.AnswerFeedback, error) {
	var fb model.AnswerFeedback
	err := r.db.Where("answer_id = ? AND student_id = ?", answerID, studentID).First(&fb).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get feedback failed: %w", err)
	}
	return &fb, nil
}

func (r *FeedbackRepository) Create(fb *model.AnswerFeedback) error {
	if err := r.db.Create(fb).Error; err != nil {
		return fmt.Errorf("create feedback failed: %w", err)
	}
	return nil
}

func (r *FeedbackRepository) Save(fb *model.AnswerFeedback) error {
	if err := r.db.Save(fb).Error; err != nil {
		return fmt.Errorf("update feedback failed: %w", err)
	}
	return nil
}

func (r *FeedbackRepository) Delete(id uint) error {
	if err := r.db.Delete(&model.AnswerFeedback{}, id).Error; err != nil {
		return fmt.Errorf("delete feedback failed: %w", err)
	}
	return nil
}

// Counts tallies the votes on one answer.
func (r *FeedbackRepository) Counts(answerID uint) (up, down int, err error) {
	var upCount, downCount int64
	if err := r.db.Model(&model.AnswerFeedback{}).
		Where("answer_id = ? AND value = ?", answerID, model.FeedbackUp).
		Count(&upCount).Error; err != nil {
		return 0, 0, fmt.Errorf("count up votes failed: %w", err)
	}
	if err := r.db.Model(&model.AnswerFeedback{}).
		Where("answer_id = ? AND value = ?", answerID, model.FeedbackDown).
		Count(&downCount).Error; err != nil {
		return 0, 0, fmt.Errorf("count down votes failed: %w", err)
	}
	return int(upCount), int(downCount), nil
}

// ListByAnswerIDs loads every vote for an answer set, for report assembly.
func (r *FeedbackRepository) ListByAnswerIDs(answerIDs []uint) ([]model.AnswerFeedback, error) {
	if len(answerIDs) == 0 {
		return nil, nil
	}
	var rows []model.AnswerFeedback
	if err := r.db.Where("answer_id IN ?", answerIDs).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list feedback failed: %w", err)
	}
	return rows, nil
}
