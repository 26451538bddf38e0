package app

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"learnpool-client/internal/model"
)

func TestAskQuestionLengthBounds(t *testing.T) {
	f := newFixture(t)
	svc := f.qaService(nil)

	_, err := svc.AskQuestion(context.Background(), AskQuestionInput{
		SessionID: f.session.ID, StudentID: f.student.ID, Content: "why?",
	})
	assert.ErrorIs(t, err, ErrQuestionTooShort)

	_, err = svc.AskQuestion(context.Background(), AskQuestionInput{
		SessionID: f.session.ID, StudentID: f.student.ID, Content: strings.Repeat("x", 2001),
	})
	assert.ErrorIs(t, err, ErrQuestionTooLong)

	out, err := svc.AskQuestion(context.Background(), AskQuestionInput{
		SessionID: f.session.ID, StudentID: f.student.ID, Content: "  abcde  ",
	})
	require.NoError(t, err)
	assert.Equal(t, "abcde", out.Content, "content stored trimmed")
}

func TestAskQuestionSessionLifecycle(t *testing.T) {
	tests := []struct {
		status  model.SessionStatus
		wantErr error
	}{
		{model.SessionUpcoming, ErrSessionClosed},
		{model.SessionActive, nil},
		{model.SessionEnded, ErrSessionClosed},
		{model.SessionReleased, nil},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			f := newFixture(t)
			require.NoError(t, f.db.Model(f.session).Update("status", tt.status).Error)

			_, err := f.qaService(nil).AskQuestion(context.Background(), AskQuestionInput{
				SessionID: f.session.ID, StudentID: f.student.ID, Content: "what is a binary tree",
			})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestAskQuestionRequiresEnrollment(t *testing.T) {
	f := newFixture(t)
	_, err := f.qaService(nil).AskQuestion(context.Background(), AskQuestionInput{
		SessionID: f.session.ID, StudentID: f.outsider.ID, Content: "let me in please",
	})
	assert.ErrorIs(t, err, ErrNotEnrolled)
}

func TestAskQuestionEnqueuesAnswerRequest(t *testing.T) {
	f := newFixture(t)
	publisher := &capturePublisher{}
	svc := f.qaService(publisher)

	out, err := svc.AskQuestion(context.Background(), AskQuestionInput{
		SessionID:   f.session.ID,
		StudentID:   f.student.ID,
		Content:     "how does recursion terminate",
		Personality: model.PersonalityFunny,
	})
	require.NoError(t, err)
	assert.Nil(t, out.Answer, "answer arrives asynchronously")

	require.Len(t, publisher.requests, 1)
	req := publisher.requests[0]
	assert.Equal(t, out.QuestionID, req.QuestionID)
	assert.Equal(t, f.session.ID, req.SessionID)
	assert.Equal(t, "funny", req.Personality)
}

func TestAskQuestionAssignsTopicAndPseudonym(t *testing.T) {
	f := newFixture(t)
	out := f.ask(t, "how does recursion terminate", true)

	var stored model.Question
	require.NoError(t, f.db.First(&stored, out.QuestionID).Error)
	assert.Equal(t, "Recursion", stored.Topic)
	assert.NotEmpty(t, stored.AnonymousName)

	// Same student, same session: same pseudonym.
	again := f.ask(t, "more about recursion please", true)
	var second model.Question
	require.NoError(t, f.db.First(&second, again.QuestionID).Error)
	assert.Equal(t, stored.AnonymousName, second.AnonymousName)
}

func TestToggleFeedbackSemantics(t *testing.T) {
	f := newFixture(t)
	q := f.ask(t, "what is amortized analysis", false)
	answer := f.answer(t, q.QuestionID)
	svc := f.qaService(nil)

	// New vote.
	res, err := svc.ToggleFeedback(context.Background(), answer.ID, f.student.ID, model.FeedbackUp)
	require.NoError(t, err)
	assert.Equal(t, 1, res.ThumbsUp)
	assert.Equal(t, 0, res.ThumbsDown)
	assert.Equal(t, model.FeedbackUp, res.MyFeedback)

	// Same vote toggles off.
	res, err = svc.ToggleFeedback(context.Background(), answer.ID, f.student.ID, model.FeedbackUp)
	require.NoError(t, err)
	assert.Equal(t, 0, res.ThumbsUp)
	assert.Equal(t, model.FeedbackValue(""), res.MyFeedback)

	// Vote, then switch direction.
	_, err = svc.ToggleFeedback(context.Background(), answer.ID, f.student.ID, model.FeedbackUp)
	require.NoError(t, err)
	res, err = svc.ToggleFeedback(context.Background(), answer.ID, f.student.ID, model.FeedbackDown)
	require.NoError(t, err)
	assert.Equal(t, 0, res.ThumbsUp)
	assert.Equal(t, 1, res.ThumbsDown)
	assert.Equal(t, model.FeedbackDown, res.MyFeedback)
}

func TestToggleFeedbackCountsAllVoters(t *testing.T) {
	f := newFixture(t)
	q := f.ask(t, "what is amortized analysis", false)
	answer := f.answer(t, q.QuestionID)
	svc := f.qaService(nil)

	_, err := svc.ToggleFeedback(context.Background(), answer.ID, f.student.ID, model.FeedbackUp)
	require.NoError(t, err)
	res, err := svc.ToggleFeedback(context.Background(), answer.ID, f.outsider.ID, model.FeedbackDown)
	require.NoError(t, err)

	assert.Equal(t, 1, res.ThumbsUp)
	assert.Equal(t, 1, res.ThumbsDown)
	assert.Equal(t, model.FeedbackDown, res.MyFeedback, "my_feedback is the caller's vote only")
}

func TestToggleFeedbackUnknownAnswer(t *testing.T) {
	f := newFixture(t)
	_, err := f.qaService(nil).ToggleFeedback(context.Background(), 999, f.student.ID, model.FeedbackUp)
	assert.ErrorIs(t, err, ErrAnswerNotFound)
}

func TestPublishQuestionsCountsOwnRowsOnly(t *testing.T) {
	f := newFixture(t)
	svc := f.qaService(nil)

	mine := f.ask(t, "what is a heap exactly", false)
	alreadyShared := f.ask(t, "how do b-trees split", false)
	require.NoError(t, f.db.Model(&model.Question{}).Where("id = ?", alreadyShared.QuestionID).Update("published", true).Error)

	count, err := svc.PublishQuestions(context.Background(), f.session.ID, f.student.ID,
		[]uint{mine.QuestionID, alreadyShared.QuestionID, 424242})
	require.NoError(t, err)
	assert.Equal(t, 1, count, "published and unknown ids are skipped, not errors")

	count, err = svc.PublishQuestions(context.Background(), f.session.ID, f.outsider.ID, []uint{mine.QuestionID})
	require.NoError(t, err)
	assert.Zero(t, count, "cannot publish another student's question")
}

func TestTranscriptVisibility(t *testing.T) {
	f := newFixture(t)
	svc := f.qaService(nil)

	f.enroll(t, f.outsider.ID)
	own := f.ask(t, "what is a red-black tree", false)

	other, err := svc.AskQuestion(context.Background(), AskQuestionInput{
		SessionID: f.session.ID, StudentID: f.outsider.ID, Content: "what is a splay tree",
	})
	require.NoError(t, err)

	studentView, err := svc.Transcript(f.session.ID, f.student.ID, model.RoleStudent)
	require.NoError(t, err)
	require.Len(t, studentView, 1)
	assert.Equal(t, own.QuestionID, studentView[0].QuestionID)

	professorView, err := svc.Transcript(f.session.ID, f.professor.ID, model.RoleProfessor)
	require.NoError(t, err)
	require.Len(t, professorView, 2)
	assert.Equal(t, own.QuestionID, professorView[0].QuestionID, "oldest first")
	assert.Equal(t, other.QuestionID, professorView[1].QuestionID)
}

func TestUpdateReviewOwnershipAndPartialUpdate(t *testing.T) {
	f := newFixture(t)
	svc := f.qaService(nil)
	q := f.ask(t, "what is a trie used for", false)

	notes := "cover in week 5"
	updated, err := svc.UpdateReview(context.Background(), ReviewUpdateInput{
		QuestionID:  q.QuestionID,
		ProfessorID: f.professor.ID,
		Labels:      []string{"confusing"},
		Notes:       &notes,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"confusing"}, updated.LabelList())
	assert.Equal(t, "cover in week 5", updated.Notes)

	// Nil notes leaves notes alone.
	updated, err = svc.UpdateReview(context.Background(), ReviewUpdateInput{
		QuestionID:  q.QuestionID,
		ProfessorID: f.professor.ID,
		Labels:      []string{},
	})
	require.NoError(t, err)
	assert.Empty(t, updated.LabelList())
	assert.Equal(t, "cover in week 5", updated.Notes)

	_, err = svc.UpdateReview(context.Background(), ReviewUpdateInput{
		QuestionID:  q.QuestionID,
		ProfessorID: f.student.ID,
	})
	assert.ErrorIs(t, err, ErrNotOwner)
}

func TestCheckSession(t *testing.T) {
	f := newFixture(t)
	svc := f.qaService(nil)

	check, err := svc.CheckSession(f.session.ID, f.student.ID)
	require.NoError(t, err)
	assert.True(t, check.Enrolled)
	assert.Equal(t, model.SessionActive, check.SessionStatus)

	check, err = svc.CheckSession(f.session.ID, f.outsider.ID)
	require.NoError(t, err)
	assert.False(t, check.Enrolled, "not-enrolled is a result, not an error")

	_, err = svc.CheckSession(999, f.student.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}
