package bootstrap

import (
	"time"

	appsvc "learnpool-client/internal/app"
	"learnpool-client/internal/model"
	"learnpool-client/internal/repository"
)

// SeedDemo fills an empty database with a demo professor, two students,
// one course with an active session, and one lecture slide document.
// Running it against a non-empty database is a no-op.
func (a *App) SeedDemo() error {
	userRepo := repository.NewUserRepository(a.DB)
	courseRepo := repository.NewCourseRepository(a.DB)
	sessionRepo := repository.NewSessionRepository(a.DB)
	documentRepo := repository.NewDocumentRepository(a.DB)

	existing, err := userRepo.GetByEmail("professor@learnpool.dev")
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	authService := appsvc.NewAuthService(userRepo, a.Config.Auth.JWTSecret, time.Hour)
	professor, err := authService.CreateUser("professor@learnpool.dev", "Prof. Rivera", "password123", model.RoleProfessor)
	if err != nil {
		return err
	}
	alice, err := authService.CreateUser("alice@learnpool.dev", "Alice Chen", "password123", model.RoleStudent)
	if err != nil {
		return err
	}
	bob, err := authService.CreateUser("bob@learnpool.dev", "Bob Okafor", "password123", model.RoleStudent)
	if err != nil {
		return err
	}

	course := &model.Course{
		Name:        "Data Structures",
		Description: "Foundations: lists, trees, graphs, and complexity.",
		ProfessorID: professor.ID,
	}
	if err := courseRepo.Create(course); err != nil {
		return err
	}
	if err := courseRepo.Enroll(course.ID, alice.ID); err != nil {
		return err
	}
	if err := courseRepo.Enroll(course.ID, bob.ID); err != nil {
		return err
	}

	session := &model.Session{
		CourseID:  course.ID,
		Title:     "Week 4: Trees",
		Status:    model.SessionActive,
		StartedAt: time.Now(),
	}
	if err := sessionRepo.Create(session); err != nil {
		return err
	}

	doc := &model.Document{
		CourseID: course.ID,
		Filename: "week4-trees.pdf",
		URL:      "https://materials.learnpool.dev/week4-trees.pdf",
	}
	if err := documentRepo.Create(doc); err != nil {
		return err
	}
	if err := sessionRepo.ReplaceDocuments(session.ID, []uint{doc.ID}); err != nil {
		return err
	}

	a.Log.WithField("course_id", course.ID).Info("seeded demo data")
	return nil
}
