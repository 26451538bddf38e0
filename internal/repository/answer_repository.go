package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"learnpool-client/internal/model"
)

type AnswerRepository struct {
	db *gorm.DB
}

func NewAnswerRepository(db *gorm.DB) *AnswerRepository {
	return &AnswerRepository{db: db}
}

// Create persists the answer together with its citations; citation order
// is expected dense and 1-based by the time it gets here.
func (r *AnswerRepository) Create(answer *model.Answer) error {
	if err := r.db.Create(answer).Error; err != nil {
		return fmt.Errorf("create answer failed: %w", err)
	}
	return nil
}

func (r *AnswerRepository) GetByID(id uint) (*model.Answer, error) {
	var answer model.Answer
	if err := r.db.Preload("Citations", citationOrder).First(&answer, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get answer failed: %w", err)
	}
	return &answer, nil
}

func (r *AnswerRepository) GetByQuestionID(questionID uint) (*model.Answer, error) {
	var answer model.Answer
	err := r.db.Preload("Citations", citationOrder).
		Where("question_id = ?", questionID).First(&answer).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get answer by question failed: %w", err)
	}
	return &answer, nil
}

// MapByQuestionIDs loads the answers for a question set in one query.
func (r *AnswerRepository) MapByQuestionIDs(questionIDs []uint) (map[uint]*model.Answer, error) {
	if len(questionIDs) == 0 {
		return map[uint]*model.Answer{}, nil
	}
	var answers []model.Answer
	err := r.db.Preload("Citations", citationOrder).
		Where("question_id IN ?", questionIDs).Find(&answers).Error
	if err != nil {
		return nil, fmt.Errorf("list answers failed: %w", err)
	}
	out := make(map[uint]*model.Answer, len(answers))
	for i := range answers {
		out[answers[i].QuestionID] = &answers[i]
	}
	return out, nil
}

func citationOrder(db *gorm.DB) *gorm.DB {
	return db.Order("citation_order ASC")
}
