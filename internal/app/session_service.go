package app

import (
	"errors"
	"strings"
	"time"

	"learnpool-client/internal/model"
	"learnpool-client/internal/repository"
)

var (
	ErrCourseNotFound   = errors.New("course not found")
	ErrActiveExists     = errors.New("course already has an active session")
	ErrNotUpcoming      = errors.New("only upcoming sessions can be deleted")
	ErrBadStatusChange  = errors.New("invalid session status transition")
	ErrDocumentNotFound = errors.New("document not found")
)

// statusTransitions is the lifecycle the professor drives. released is
// terminal; upcoming can be started directly or cancelled by deletion.
var statusTransitions = map[model.SessionStatus][]model.SessionStatus{
	model.SessionUpcoming: {model.SessionActive},
	model.SessionActive:   {model.SessionEnded},
	model.SessionEnded:    {model.SessionReleased},
}

type SessionService struct {
	courseRepo   *repository.CourseRepository
	sessionRepo  *repository.SessionRepository
	documentRepo *repository.DocumentRepository
	userRepo     *repository.UserRepository
}

type CreateSessionInput struct {
	CourseID    uint
	ProfessorID uint
	Title       string
	Scheduled   bool
}

type ScheduleLectureInput struct {
	CourseID    uint
	ProfessorID uint
	Title       string
	ScheduledAt time.Time
	Location    string
	DocumentIDs []uint
}

type UpdateSessionInput struct {
	SessionID   uint
	ProfessorID uint
	Title       *string
	Location    *string
	ScheduledAt *time.Time
	DocumentIDs []uint
}

func NewSessionService(
	courseRepo *repository.CourseRepository,
	sessionRepo *repository.SessionRepository,
	documentRepo *repository.DocumentRepository,
	userRepo *repository.UserRepository,
) *SessionService {
	return &SessionService{
		courseRepo:   courseRepo,
		sessionRepo:  sessionRepo,
		documentRepo: documentRepo,
		userRepo:     userRepo,
	}
}

func (s *SessionService) CoursesForStudent(studentID uint) ([]model.CourseSummary, error) {
	courses, err := s.courseRepo.ListByStudentID(studentID)
	if err != nil {
		return nil, err
	}
	return s.summarize(courses)
}

func (s *SessionService) CoursesForProfessor(professorID uint) ([]model.CourseSummary, error) {
	courses, err := s.courseRepo.ListByProfessorID(professorID)
	if err != nil {
		return nil, err
	}
	return s.summarize(courses)
}

func (s *SessionService) summarize(courses []model.Course) ([]model.CourseSummary, error) {
	out := make([]model.CourseSummary, 0, len(courses))
	for _, c := range courses {
		count, err := s.courseRepo.SessionCount(c.ID)
		if err != nil {
			return nil, err
		}
		professorName := ""
		if prof, err := s.userRepo.GetByID(c.ProfessorID); err == nil && prof != nil {
			professorName = prof.DisplayName
		}
		out = append(out, model.CourseSummary{
			ID:            c.ID,
			Name:          c.Name,
			Description:   c.Description,
			ProfessorName: professorName,
			SessionCount:  count,
		})
	}
	return out, nil
}

// SessionsForStudent lists a course's sessions for an enrolled student.
func (s *SessionService) SessionsForStudent(courseID, studentID uint) ([]model.SessionSummary, error) {
	enrolled, err := s.courseRepo.IsEnrolled(courseID, studentID)
	if err != nil {
		return nil, err
	}
	if !enrolled {
		return nil, ErrNotEnrolled
	}
	return s.listSummaries(courseID)
}

func (s *SessionService) SessionsForProfessor(courseID, professorID uint) ([]model.SessionSummary, error) {
	if _, err := s.ownedCourse(courseID, professorID); err != nil {
		return nil, err
	}
	return s.listSummaries(courseID)
}

func (s *SessionService) listSummaries(courseID uint) ([]model.SessionSummary, error) {
	sessions, err := s.sessionRepo.ListByCourseID(courseID)
	if err != nil {
		return nil, err
	}
	out := make([]model.SessionSummary, 0, len(sessions))
	for _, sess := range sessions {
		out = append(out, model.SessionSummary{
			ID:        sess.ID,
			Title:     sess.Title,
			Status:    sess.Status,
			StartedAt: sess.StartedAt,
		})
	}
	return out, nil
}

func (s *SessionService) SessionDetail(sessionID, professorID uint) (*model.SessionDetail, error) {
	session, err := s.ownedSession(sessionID, professorID)
	if err != nil {
		return nil, err
	}
	docIDs, err := s.sessionRepo.DocumentIDs(sessionID)
	if err != nil {
		return nil, err
	}
	return &model.SessionDetail{
		ID:          session.ID,
		Title:       session.Title,
		Status:      session.Status,
		Location:    session.Location,
		StartedAt:   session.StartedAt,
		ScheduledAt: session.ScheduledAt,
		DocumentIDs: docIDs,
	}, nil
}

// CreateSession starts a live session immediately. One active session per
// course at a time.
func (s *SessionService) CreateSession(input CreateSessionInput) (*model.Session, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrInvalidInput
	}
	if _, err := s.ownedCourse(input.CourseID, input.ProfessorID); err != nil {
		return nil, err
	}

	status := model.SessionActive
	if input.Scheduled {
		status = model.SessionUpcoming
	} else {
		active, err := s.sessionRepo.HasActive(input.CourseID)
		if err != nil {
			return nil, err
		}
		if active {
			return nil, ErrActiveExists
		}
	}

	session := &model.Session{
		CourseID:  input.CourseID,
		Title:     title,
		Status:    status,
		StartedAt: time.Now(),
	}
	if err := s.sessionRepo.Create(session); err != nil {
		return nil, err
	}
	return session, nil
}

// ScheduleLecture creates an upcoming session with a scheduled time and
// an optional ordered document set.
func (s *SessionService) ScheduleLecture(input ScheduleLectureInput) (*model.Session, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" || input.ScheduledAt.IsZero() {
		return nil, ErrInvalidInput
	}
	if _, err := s.ownedCourse(input.CourseID, input.ProfessorID); err != nil {
		return nil, err
	}
	if err := s.checkDocuments(input.CourseID, input.DocumentIDs); err != nil {
		return nil, err
	}

	scheduled := input.ScheduledAt
	session := &model.Session{
		CourseID:    input.CourseID,
		Title:       title,
		Status:      model.SessionUpcoming,
		Location:    input.Location,
		StartedAt:   scheduled,
		ScheduledAt: &scheduled,
	}
	if err := s.sessionRepo.Create(session); err != nil {
		return nil, err
	}
	if len(input.DocumentIDs) > 0 {
		if err := s.sessionRepo.ReplaceDocuments(session.ID, input.DocumentIDs); err != nil {
			return nil, err
		}
	}
	return session, nil
}

func (s *SessionService) UpdateSession(input UpdateSessionInput) (*model.Session, error) {
	session, err := s.ownedSession(input.SessionID, input.ProfessorID)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, ErrInvalidInput
		}
		session.Title = title
	}
	if input.Location != nil {
		session.Location = *input.Location
	}
	if input.ScheduledAt != nil {
		scheduled := *input.ScheduledAt
		session.ScheduledAt = &scheduled
		if session.Status == model.SessionUpcoming {
			session.StartedAt = scheduled
		}
	}
	if err := s.sessionRepo.Save(session); err != nil {
		return nil, err
	}

	if input.DocumentIDs != nil {
		if err := s.checkDocuments(session.CourseID, input.DocumentIDs); err != nil {
			return nil, err
		}
		if err := s.sessionRepo.ReplaceDocuments(session.ID, input.DocumentIDs); err != nil {
			return nil, err
		}
	}
	return session, nil
}

// UpdateStatus advances the session lifecycle. Starting an upcoming
// session re-checks the one-active-session rule.
func (s *SessionService) UpdateStatus(sessionID, professorID uint, status model.SessionStatus) (*model.Session, error) {
	if !status.Valid() {
		return nil, ErrInvalidInput
	}
	session, err := s.ownedSession(sessionID, professorID)
	if err != nil {
		return nil, err
	}

	allowed := false
	for _, next := range statusTransitions[session.Status] {
		if next == status {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, ErrBadStatusChange
	}

	if status == model.SessionActive {
		active, err := s.sessionRepo.HasActive(session.CourseID)
		if err != nil {
			return nil, err
		}
		if active {
			return nil, ErrActiveExists
		}
		session.StartedAt = time.Now()
	}

	session.Status = status
	if err := s.sessionRepo.Save(session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *SessionService) DeleteSession(sessionID, professorID uint) error {
	session, err := s.ownedSession(sessionID, professorID)
	if err != nil {
		return err
	}
	if session.Status != model.SessionUpcoming {
		return ErrNotUpcoming
	}
	return s.sessionRepo.Delete(sessionID)
}

// SessionDocuments lists the documents attached to a session, for an
// enrolled student.
func (s *SessionService) SessionDocuments(sessionID, studentID uint) ([]model.Document, error) {
	session, err := s.sessionRepo.GetByID(sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	enrolled, err := s.courseRepo.IsEnrolled(session.CourseID, studentID)
	if err != nil {
		return nil, err
	}
	if !enrolled {
		return nil, ErrNotEnrolled
	}
	return s.documentRepo.ListBySessionID(sessionID)
}

func (s *SessionService) CourseDocuments(courseID, professorID uint) ([]model.Document, error) {
	if _, err := s.ownedCourse(courseID, professorID); err != nil {
		return nil, err
	}
	return s.documentRepo.ListByCourseID(courseID)
}

// AddDocument registers course material by reference (URL) or by an
// already stored file path. Upload handling stores the file first and
// then calls this with the storage path.
func (s *SessionService) AddDocument(courseID, professorID uint, doc *model.Document, sessionIDs []uint) (*model.Document, error) {
	if _, err := s.ownedCourse(courseID, professorID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(doc.Filename) == "" {
		return nil, ErrInvalidInput
	}
	doc.CourseID = courseID
	if err := s.documentRepo.Create(doc); err != nil {
		return nil, err
	}
	if len(sessionIDs) > 0 {
		if err := s.documentRepo.AttachToSessions(doc.ID, sessionIDs); err != nil {
			return nil, err
		}
	}
	return doc, nil
}

func (s *SessionService) checkDocuments(courseID uint, documentIDs []uint) error {
	for _, id := range documentIDs {
		doc, err := s.documentRepo.GetByID(id)
		if err != nil {
			return err
		}
		if doc == nil || doc.CourseID != courseID {
			return ErrDocumentNotFound
		}
	}
	return nil
}

func (s *SessionService) ownedCourse(courseID, professorID uint) (*model.Course, error) {
	course, err := s.courseRepo.GetByID(courseID)
	if err != nil {
		return nil, err
	}
	if course == nil {
		return nil, ErrCourseNotFound
	}
	if course.ProfessorID != professorID {
		return nil, ErrNotOwner
	}
	return course, nil
}

func (s *SessionService) ownedSession(sessionID, professorID uint) (*model.Session, error) {
	session, err := s.sessionRepo.GetByID(sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	if _, err := s.ownedCourse(session.CourseID, professorID); err != nil {
		return nil, err
	}
	return session, nil
}
