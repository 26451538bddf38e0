package app

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"learnpool-client/internal/model"
	"learnpool-client/internal/platform/rabbitmq"
	"learnpool-client/internal/repository"
)

var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrQuestionNotFound = errors.New("question not found")
	ErrAnswerNotFound   = errors.New("answer not found")
	ErrNotEnrolled      = errors.New("student is not enrolled in this course")
	ErrSessionClosed    = errors.New("session does not accept questions")
	ErrQuestionTooShort = errors.New("question content is too short")
	ErrQuestionTooLong  = errors.New("question content is too long")
	ErrNotOwner         = errors.New("question belongs to another student")
	ErrAnswerEnqueue    = errors.New("answer enqueue failed")
)

type QAService struct {
	sessionRepo  *repository.SessionRepository
	courseRepo   *repository.CourseRepository
	questionRepo *repository.QuestionRepository
	answerRepo   *repository.AnswerRepository
	feedbackRepo *repository.FeedbackRepository
	publisher    AsyncAnswerPublisher
	reportCache  ReportCache
}

// AsyncAnswerPublisher hands a freshly asked question to the answer
// worker. The ask path never waits for the answer itself.
type AsyncAnswerPublisher interface {
	Publish(ctx context.Context, req rabbitmq.AnswerRequest) error
}

// ReportCache invalidates cached session reports when transcript state
// changes. A nil implementation is allowed and means no caching.
type ReportCache interface {
	GetReport(ctx context.Context, sessionID uint) (*model.SessionReport, bool, error)
	SetReport(ctx context.Context, sessionID uint, report *model.SessionReport) error
	DeleteReport(ctx context.Context, sessionID uint) error
	MarkDirty(ctx context.Context, sessionID uint) error
	IsDirty(ctx context.Context, sessionID uint) (bool, error)
}

type AskQuestionInput struct {
	SessionID   uint
	StudentID   uint
	Content     string
	Personality model.Personality
	Anonymous   bool
}

type FeedbackResult struct {
	ThumbsUp   int                 `json:"thumbs_up"`
	ThumbsDown int                 `json:"thumbs_down"`
	MyFeedback model.FeedbackValue `json:"my_feedback,omitempty"`
}

type ReviewUpdateInput struct {
	QuestionID  uint
	ProfessorID uint
	Labels      []string
	Notes       *string
}

func NewQAService(
	sessionRepo *repository.SessionRepository,
	courseRepo *repository.CourseRepository,
	questionRepo *repository.QuestionRepository,
	answerRepo *repository.AnswerRepository,
	feedbackRepo *repository.FeedbackRepository,
	publisher AsyncAnswerPublisher,
	reportCache ReportCache,
) *QAService {
	return &QAService{
		sessionRepo:  sessionRepo,
		courseRepo:   courseRepo,
		questionRepo: questionRepo,
		answerRepo:   answerRepo,
		feedbackRepo: feedbackRepo,
		publisher:    publisher,
		reportCache:  reportCache,
	}
}

// CheckSession is the cheap pre-poll gate: does the session exist, is the
// student enrolled, and what status is it in.
func (s *QAService) CheckSession(sessionID, studentID uint) (*model.SessionCheck, error) {
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

	return &model.SessionCheck{
		SessionID:     session.ID,
		Enrolled:      enrolled,
		SessionStatus: session.Status,
	}, nil
}

// Transcript returns the viewer's chat list for a session, oldest first.
// Students see only their own questions; professors see everything.
func (s *QAService) Transcript(sessionID, viewerID uint, role model.Role) ([]model.QuestionOut, error) {
	session, err := s.sessionRepo.GetByID(sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}

	var questions []model.Question
	if role == model.RoleProfessor {
		questions, err = s.questionRepo.ListBySessionID(sessionID)
	} else {
		questions, err = s.questionRepo.ListByStudent(sessionID, viewerID)
	}
	if err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(questions))
	for _, q := range questions {
		ids = append(ids, q.ID)
	}
	answers, err := s.answerRepo.MapByQuestionIDs(ids)
	if err != nil {
		return nil, err
	}

	out := make([]model.QuestionOut, 0, len(questions))
	for _, q := range questions {
		out = append(out, model.QuestionOut{
			QuestionID: q.ID,
			Content:    q.Content,
			AskedAt:    q.AskedAt,
			StudentID:  q.StudentID,
			Anonymous:  q.Anonymous,
			Published:  q.Published,
			Answer:     answers[q.ID],
		})
	}
	return out, nil
}

func (s *QAService) AskQuestion(ctx context.Context, input AskQuestionInput) (*model.QuestionOut, error) {
	content := strings.TrimSpace(input.Content)
	if utf8.RuneCountInString(content) < model.QuestionMinLen {
		return nil, ErrQuestionTooShort
	}
	if utf8.RuneCountInString(content) > model.QuestionMaxLen {
		return nil, ErrQuestionTooLong
	}

	session, err := s.sessionRepo.GetByID(input.SessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	if session.Status != model.SessionActive && session.Status != model.SessionReleased {
		return nil, ErrSessionClosed
	}

	enrolled, err := s.courseRepo.IsEnrolled(session.CourseID, input.StudentID)
	if err != nil {
		return nil, err
	}
	if !enrolled {
		return nil, ErrNotEnrolled
	}

	personality := input.Personality
	if !personality.Valid() {
		personality = model.PersonalitySupportive
	}

	question := &model.Question{
		SessionID:     input.SessionID,
		StudentID:     input.StudentID,
		Content:       content,
		Anonymous:     input.Anonymous,
		Topic:         AssignTopic(content),
		AnonymousName: Pseudonym(input.SessionID, input.StudentID),
		AskedAt:       time.Now(),
	}
	question.SetLabels(nil)
	if err := s.questionRepo.Create(question); err != nil {
		return nil, err
	}

	if s.publisher != nil {
		req := rabbitmq.AnswerRequest{
			QuestionID:  question.ID,
			SessionID:   question.SessionID,
			Content:     question.Content,
			Personality: string(personality),
		}
		if err := s.publisher.Publish(ctx, req); err != nil {
			return nil, ErrAnswerEnqueue
		}
	}

	s.invalidateReport(ctx, input.SessionID)

	return &model.QuestionOut{
		QuestionID: question.ID,
		Content:    question.Content,
		AskedAt:    question.AskedAt,
		StudentID:  question.StudentID,
		Anonymous:  question.Anonymous,
	}, nil
}

// ToggleFeedback applies one vote with toggle semantics: a repeated value
// removes the vote, a different value replaces it.
func (s *QAService) ToggleFeedback(ctx context.Context, answerID, studentID uint, value model.FeedbackValue) (*FeedbackResult, error) {
	if !value.Valid() {
		return nil, ErrInvalidInput
	}

	answer, err := s.answerRepo.GetByID(answerID)
	if err != nil {
		return nil, err
	}
	if answer == nil {
		return nil, ErrAnswerNotFound
	}

	existing, err := s.feedbackRepo.Get(answerID, studentID)
	if err != nil {
		return nil, err
	}

	var mine model.FeedbackValue
	switch {
	case existing == nil:
		fb := &model.AnswerFeedback{AnswerID: answerID, StudentID: studentID, Value: value}
		if err := s.feedbackRepo.Create(fb); err != nil {
			return nil, err
		}
		mine = value
	case existing.Value == value:
		if err := s.feedbackRepo.Delete(existing.ID); err != nil {
			return nil, err
		}
		mine = ""
	default:
		existing.Value = value
		if err := s.feedbackRepo.Save(existing); err != nil {
			return nil, err
		}
		mine = value
	}

	up, down, err := s.feedbackRepo.Counts(answerID)
	if err != nil {
		return nil, err
	}

	if question, err := s.questionRepo.GetByID(answer.QuestionID); err == nil && question != nil {
		s.invalidateReport(ctx, question.SessionID)
	}

	return &FeedbackResult{ThumbsUp: up, ThumbsDown: down, MyFeedback: mine}, nil
}

// PublishQuestions shares a batch of the student's own questions into the
// session report. Already published or foreign ids are skipped, not
// errors; the returned count is rows actually flipped.
func (s *QAService) PublishQuestions(ctx context.Context, sessionID, studentID uint, questionIDs []uint) (int, error) {
	session, err := s.sessionRepo.GetByID(sessionID)
	if err != nil {
		return 0, err
	}
	if session == nil {
		return 0, ErrSessionNotFound
	}
	if len(questionIDs) == 0 {
		return 0, nil
	}

	count, err := s.questionRepo.MarkPublished(sessionID, studentID, questionIDs)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		s.invalidateReport(ctx, sessionID)
	}
	return count, nil
}

// UpdateReview sets professor labels and notes on one question. A nil
// Notes leaves notes untouched; nil Labels leaves labels untouched.
func (s *QAService) UpdateReview(ctx context.Context, input ReviewUpdateInput) (*model.Question, error) {
	question, err := s.questionRepo.GetByID(input.QuestionID)
	if err != nil {
		return nil, err
	}
	if question == nil {
		return nil, ErrQuestionNotFound
	}

	session, err := s.sessionRepo.GetByID(question.SessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	course, err := s.courseRepo.GetByID(session.CourseID)
	if err != nil {
		return nil, err
	}
	if course == nil || course.ProfessorID != input.ProfessorID {
		return nil, ErrNotOwner
	}

	if input.Labels != nil {
		question.SetLabels(input.Labels)
	}
	if input.Notes != nil {
		question.Notes = *input.Notes
	}
	if err := s.questionRepo.Save(question); err != nil {
		return nil, err
	}

	s.invalidateReport(ctx, question.SessionID)
	return question, nil
}

func (s *QAService) invalidateReport(ctx context.Context, sessionID uint) {
	if s.reportCache == nil {
		return
	}
	_ = s.reportCache.DeleteReport(ctx, sessionID)
	_ = s.reportCache.MarkDirty(ctx, sessionID)
}
