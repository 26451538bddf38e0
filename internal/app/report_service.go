package app

import (
	"context"

	"learnpool-client/internal/model"
	"learnpool-client/internal/repository"
)

// ReportService assembles the shared session report: published questions
// grouped into topic buckets, with answers, tallies, and review fields.
// The cached payload is viewer-agnostic; MyFeedback is overlaid per
// request after any cache hit.
type ReportService struct {
	sessionRepo  *repository.SessionRepository
	courseRepo   *repository.CourseRepository
	questionRepo *repository.QuestionRepository
	answerRepo   *repository.AnswerRepository
	feedbackRepo *repository.FeedbackRepository
	reportCache  ReportCache
}

func NewReportService(
	sessionRepo *repository.SessionRepository,
	courseRepo *repository.CourseRepository,
	questionRepo *repository.QuestionRepository,
	answerRepo *repository.AnswerRepository,
	feedbackRepo *repository.FeedbackRepository,
	reportCache ReportCache,
) *ReportService {
	return &ReportService{
		sessionRepo:  sessionRepo,
		courseRepo:   courseRepo,
		questionRepo: questionRepo,
		answerRepo:   answerRepo,
		feedbackRepo: feedbackRepo,
		reportCache:  reportCache,
	}
}

// StudentReport returns the session report for an enrolled student.
func (s *ReportService) StudentReport(ctx context.Context, sessionID, studentID uint) (*model.SessionReport, error) {
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
	return s.report(ctx, sessionID, studentID)
}

// ProfessorReport returns the session report for the owning professor.
func (s *ReportService) ProfessorReport(ctx context.Context, sessionID, professorID uint) (*model.SessionReport, error) {
	session, err := s.sessionRepo.GetByID(sessionID)
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
	if course == nil || course.ProfessorID != professorID {
		return nil, ErrNotOwner
	}
	return s.report(ctx, sessionID, professorID)
}

func (s *ReportService) report(ctx context.Context, sessionID, viewerID uint) (*model.SessionReport, error) {
	base, err := s.cachedBase(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	s.overlayViewer(base, viewerID)
	return base, nil
}

func (s *ReportService) cachedBase(ctx context.Context, sessionID uint) (*model.SessionReport, error) {
	if s.reportCache != nil {
		dirty, err := s.reportCache.IsDirty(ctx, sessionID)
		if err == nil && !dirty {
			if cached, ok, err := s.reportCache.GetReport(ctx, sessionID); err == nil && ok {
				return cached, nil
			}
		}
	}

	report, err := s.build(sessionID)
	if err != nil {
		return nil, err
	}
	if s.reportCache != nil {
		_ = s.reportCache.SetReport(ctx, sessionID, report)
	}
	return report, nil
}

// build assembles the report from storage: published questions only,
// bucketed by topic, groups ordered by question count descending with
// the first built group winning ties and flagged hot.
func (s *ReportService) build(sessionID uint) (*model.SessionReport, error) {
	questions, err := s.questionRepo.ListBySessionID(sessionID)
	if err != nil {
		return nil, err
	}

	published := make([]model.Question, 0, len(questions))
	ids := make([]uint, 0, len(questions))
	for _, q := range questions {
		if q.Published {
			published = append(published, q)
			ids = append(ids, q.ID)
		}
	}

	answers, err := s.answerRepo.MapByQuestionIDs(ids)
	if err != nil {
		return nil, err
	}
	answerIDs := make([]uint, 0, len(answers))
	for _, a := range answers {
		answerIDs = append(answerIDs, a.ID)
	}
	votes, err := s.feedbackRepo.ListByAnswerIDs(answerIDs)
	if err != nil {
		return nil, err
	}
	tallies := make(map[uint]*model.FeedbackSummary)
	for _, v := range votes {
		t := tallies[v.AnswerID]
		if t == nil {
			t = &model.FeedbackSummary{}
			tallies[v.AnswerID] = t
		}
		if v.Value == model.FeedbackUp {
			t.ThumbsUp++
		} else {
			t.ThumbsDown++
		}
	}
	for _, t := range tallies {
		t.NeedsAttention = t.ThumbsDown > t.ThumbsUp
	}

	groupIndex := make(map[string]int)
	groupStudents := make(map[string]map[uint]bool)
	groups := make([]model.TopicGroup, 0)
	for _, q := range published {
		topic := q.Topic
		if topic == "" {
			topic = defaultTopic
		}
		idx, ok := groupIndex[topic]
		if !ok {
			idx = len(groups)
			groupIndex[topic] = idx
			groupStudents[topic] = make(map[uint]bool)
			groups = append(groups, model.TopicGroup{TopicName: topic})
		}

		answer := answers[q.ID]
		var summary *model.FeedbackSummary
		if answer != nil {
			if t := tallies[answer.ID]; t != nil {
				copied := *t
				summary = &copied
			} else {
				summary = &model.FeedbackSummary{}
			}
		}

		name := q.AnonymousName
		if !q.Anonymous {
			name = ""
		}

		groups[idx].Questions = append(groups[idx].Questions, model.ReportQuestion{
			QuestionID:    q.ID,
			Content:       q.Content,
			AskedAt:       q.AskedAt,
			AnonymousName: name,
			Answer:        answer,
			Feedback:      summary,
			Labels:        q.LabelList(),
			Notes:         q.Notes,
		})
		groups[idx].QuestionCount++
		groupStudents[topic][q.StudentID] = true
	}

	hot, hotCount := -1, 0
	for i := range groups {
		groups[i].StudentCount = len(groupStudents[groups[i].TopicName])
		if groups[i].QuestionCount > hotCount {
			hot, hotCount = i, groups[i].QuestionCount
		}
	}
	if hot >= 0 {
		groups[hot].IsHot = true
	}

	return &model.SessionReport{
		Groups:         groups,
		TotalQuestions: len(published),
	}, nil
}

// overlayViewer fills MyFeedback in place for one viewer. The shared
// cached report never carries viewer-specific fields.
func (s *ReportService) overlayViewer(report *model.SessionReport, viewerID uint) {
	answerIDs := make([]uint, 0)
	for _, g := range report.Groups {
		for _, q := range g.Questions {
			if q.Answer != nil {
				answerIDs = append(answerIDs, q.Answer.ID)
			}
		}
	}
	if len(answerIDs) == 0 {
		return
	}

	votes, err := s.feedbackRepo.ListByAnswerIDs(answerIDs)
	if err != nil {
		return
	}
	mine := make(map[uint]model.FeedbackValue)
	for _, v := range votes {
		if v.StudentID == viewerID {
			mine[v.AnswerID] = v.Value
		}
	}

	for gi := range report.Groups {
		for qi := range report.Groups[gi].Questions {
			q := &report.Groups[gi].Questions[qi]
			if q.Answer != nil {
				q.MyFeedback = mine[q.Answer.ID]
			}
		}
	}
}
