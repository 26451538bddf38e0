package gate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"learnpool-client/internal/model"
)

func TestCanAsk(t *testing.T) {
	tests := []struct {
		status model.SessionStatus
		want   bool
	}{
		{model.SessionUpcoming, false},
		{model.SessionActive, true},
		{model.SessionEnded, false},
		{model.SessionReleased, true},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.want, CanAsk(tt.status))
		})
	}
}

func TestCanVoteRequiresAnswer(t *testing.T) {
	assert.False(t, CanVote(model.ReportQuestion{QuestionID: 1}))
	assert.True(t, CanVote(model.ReportQuestion{QuestionID: 1, Answer: &model.Answer{ID: 2}}))

	assert.False(t, CanVoteOnTranscript(model.QuestionOut{QuestionID: 1}))
	assert.True(t, CanVoteOnTranscript(model.QuestionOut{QuestionID: 1, Answer: &model.Answer{ID: 2}}))
}

func TestCanPublish(t *testing.T) {
	assert.True(t, CanPublish(model.RoleStudent, []uint{1}))
	assert.False(t, CanPublish(model.RoleStudent, nil))
	assert.False(t, CanPublish(model.RoleProfessor, []uint{1}))
}

func TestCanStartSession(t *testing.T) {
	none := []model.SessionSummary{
		{ID: 1, Status: model.SessionEnded},
		{ID: 2, Status: model.SessionUpcoming},
	}
	assert.True(t, CanStartSession(none))
	assert.True(t, CanStartSession(nil))

	withActive := append(none, model.SessionSummary{ID: 3, Status: model.SessionActive})
	assert.False(t, CanStartSession(withActive))
}

func TestCanDeleteSession(t *testing.T) {
	assert.True(t, CanDeleteSession(model.SessionUpcoming))
	assert.False(t, CanDeleteSession(model.SessionActive))
	assert.False(t, CanDeleteSession(model.SessionEnded))
	assert.False(t, CanDeleteSession(model.SessionReleased))
}
