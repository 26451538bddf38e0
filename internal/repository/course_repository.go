package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"learnpool-client/internal/model"
)

type CourseRepository struct {
	db *gorm.DB
}

func NewCourseRepository(db *gorm.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

func (r *CourseRepository) Create(course *model.Course) error {
	if err := r.db.Create(course).Error; err != nil {
		return fmt.Errorf("create course failed: %w", err)
	}
	return nil
}

func (r *CourseRepository) GetByID(id uint) (*model.Course, error) {
	var course model.Course
	if err := r.db.First(&course, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get course failed: %w", err)
	}
	return &course, nil
}

func (r *CourseRepository) ListByProfessorID(professorID uint) ([]model.Course, error) {
	var courses []model.Course
	if err := r.db.Where("professor_id = ?", professorID).Order("id ASC").Find(&courses).Error; err != nil {
		return nil, fmt.Errorf("list professor courses failed: %w", err)
	}
	return courses, nil
}

func (r *CourseRepository) ListByStudentID(studentID uint) ([]model.Course, error) {
	var courses []model.Course
	err := r.db.
		Joins("JOIN enrollments ON enrollments.course_id = courses.id").
		Where("enrollments.student_id = ?", studentID).
		Order("courses.id ASC").
		Find(&courses).Error
	if err != nil {
		return nil, fmt.Errorf("list student courses failed: %w", err)
	}
	return courses, nil
}

func (r *CourseRepository) Enroll(courseID, studentID uint) error {
	enrollment := &model.Enrollment{CourseID: courseID, StudentID: studentID}
	if err := r.db.Create(enrollment).Error; err != nil {
		return fmt.Errorf("create enrollment failed: %w", err)
	}
	return nil
}

func (r *CourseRepository) IsEnrolled(courseID, studentID uint) (bool, error) {
	var count int64
	err := r.db.Model(&model.Enrollment{}).
		Where("course_id = ? AND student_id = ?", courseID, studentID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check enrollment failed: %w", err)
	}
	return count > 0, nil
}

func (r *CourseRepository) SessionCount(courseID uint) (int, error) {
	var count int64
	if err := r.db.Model(&model.Session{}).Where("course_id = ?", courseID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count sessions failed: %w", err)
	}
	return int(count), nil
}
