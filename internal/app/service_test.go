package app

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"learnpool-client/internal/model"
	"learnpool-client/internal/platform/rabbitmq"
	"learnpool-client/internal/repository"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.Course{},
		&model.Enrollment{},
		&model.Session{},
		&model.Question{},
		&model.Answer{},
		&model.Citation{},
		&model.AnswerFeedback{},
		&model.Document{},
		&model.SessionDocument{},
	))
	return db
}

// fixture is one course with an enrolled student and an active session.
type fixture struct {
	db        *gorm.DB
	professor *model.User
	student   *model.User
	outsider  *model.User
	course    *model.Course
	session   *model.Session
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testDB(t)

	users := repository.NewUserRepository(db)
	courses := repository.NewCourseRepository(db)
	sessions := repository.NewSessionRepository(db)

	professor := &model.User{Email: "prof@learnpool.dev", DisplayName: "Prof. Rivera", Role: model.RoleProfessor, PasswordHash: "x"}
	require.NoError(t, users.Create(professor))
	student := &model.User{Email: "alice@learnpool.dev", DisplayName: "Alice Chen", Role: model.RoleStudent, PasswordHash: "x"}
	require.NoError(t, users.Create(student))
	outsider := &model.User{Email: "mallory@learnpool.dev", DisplayName: "Mallory", Role: model.RoleStudent, PasswordHash: "x"}
	require.NoError(t, users.Create(outsider))

	course := &model.Course{Name: "Data Structures", ProfessorID: professor.ID}
	require.NoError(t, courses.Create(course))
	require.NoError(t, courses.Enroll(course.ID, student.ID))

	session := &model.Session{CourseID: course.ID, Title: "Week 4: Trees", Status: model.SessionActive, StartedAt: time.Now()}
	require.NoError(t, sessions.Create(session))

	return &fixture{
		db:        db,
		professor: professor,
		student:   student,
		outsider:  outsider,
		course:    course,
		session:   session,
	}
}

func (f *fixture) enroll(t *testing.T, studentID uint) {
	t.Helper()
	require.NoError(t, repository.NewCourseRepository(f.db).Enroll(f.course.ID, studentID))
}

type capturePublisher struct {
	requests []rabbitmq.AnswerRequest
}

func (p *capturePublisher) Publish(ctx context.Context, req rabbitmq.AnswerRequest) error {
	p.requests = append(p.requests, req)
	return nil
}

func (f *fixture) qaService(publisher AsyncAnswerPublisher) *QAService {
	return NewQAService(
		repository.NewSessionRepository(f.db),
		repository.NewCourseRepository(f.db),
		repository.NewQuestionRepository(f.db),
		repository.NewAnswerRepository(f.db),
		repository.NewFeedbackRepository(f.db),
		publisher,
		nil,
	)
}

func (f *fixture) sessionService() *SessionService {
	return NewSessionService(
		repository.NewCourseRepository(f.db),
		repository.NewSessionRepository(f.db),
		repository.NewDocumentRepository(f.db),
		repository.NewUserRepository(f.db),
	)
}

func (f *fixture) reportService() *ReportService {
	return NewReportService(
		repository.NewSessionRepository(f.db),
		repository.NewCourseRepository(f.db),
		repository.NewQuestionRepository(f.db),
		repository.NewAnswerRepository(f.db),
		repository.NewFeedbackRepository(f.db),
		nil,
	)
}

// ask creates a question directly through the service so tests exercise
// topic and pseudonym assignment the same way the handler does.
func (f *fixture) ask(t *testing.T, content string, anonymous bool) *model.QuestionOut {
	t.Helper()
	svc := f.qaService(nil)
	out, err := svc.AskQuestion(context.Background(), AskQuestionInput{
		SessionID:   f.session.ID,
		StudentID:   f.student.ID,
		Content:     content,
		Personality: model.PersonalitySupportive,
		Anonymous:   anonymous,
	})
	require.NoError(t, err)
	return out
}

// answer attaches a stored answer to a question.
func (f *fixture) answer(t *testing.T, questionID uint) *model.Answer {
	t.Helper()
	answer := &model.Answer{
		QuestionID: questionID,
		Content:    "canned",
		ModelUsed:  "stub-answerer-v1",
		Citations: []model.Citation{
			{ChunkID: "c1", Content: "passage", RelevanceScore: 0.9, CitationOrder: 1},
		},
	}
	require.NoError(t, repository.NewAnswerRepository(f.db).Create(answer))
	return answer
}
