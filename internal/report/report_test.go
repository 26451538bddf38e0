package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"learnpool-client/internal/model"
)

func fb(up, down int) *model.FeedbackSummary {
	return &model.FeedbackSummary{ThumbsUp: up, ThumbsDown: down, NeedsAttention: down > up}
}

func TestComputeMetrics(t *testing.T) {
	r := model.SessionReport{
		TotalQuestions: 4,
		Groups: []model.TopicGroup{
			{
				TopicName: "Recursion",
				Questions: []model.ReportQuestion{
					{QuestionID: 1, AnonymousName: "Curious Otter 3", Feedback: fb(2, 0)},
					{QuestionID: 2, AnonymousName: "Quiet Lynx 7", Feedback: fb(0, 3)},
				},
			},
			{
				TopicName: "General",
				Questions: []model.ReportQuestion{
					{QuestionID: 3, AnonymousName: "Curious Otter 3", Feedback: fb(0, 0)},
					{QuestionID: 4, Feedback: fb(1, 0)},
				},
			},
		},
	}

	m := Compute(r)
	assert.Equal(t, 4, m.TotalQuestions)
	assert.Equal(t, 6, m.TotalVotes)
	assert.Equal(t, 75, m.EngagementPct, "3 of 4 questions have at least one vote")
	assert.Equal(t, 1, m.AttentionCount)
	assert.Equal(t, 2, m.UniqueStudents, "repeated pseudonym counts once, named asker not at all")
}

func TestComputeEmptyReport(t *testing.T) {
	m := Compute(model.SessionReport{})
	assert.Zero(t, m.TotalQuestions)
	assert.Zero(t, m.EngagementPct, "zero questions must not divide")
	assert.Zero(t, m.TotalVotes)
}

func TestHottestTopicFirstWinsOnTie(t *testing.T) {
	groups := []model.TopicGroup{
		{TopicName: "Trees & Graphs", QuestionCount: 3},
		{TopicName: "Recursion", QuestionCount: 3},
		{TopicName: "General", QuestionCount: 1},
	}

	hot, ok := HottestTopic(groups)
	require.True(t, ok)
	assert.Equal(t, "Trees & Graphs", hot.TopicName)

	_, ok = HottestTopic(nil)
	assert.False(t, ok)
}

func TestSortByAttention(t *testing.T) {
	groups := []model.TopicGroup{
		{
			TopicName:     "Calm",
			QuestionCount: 5,
			Questions:     []model.ReportQuestion{{QuestionID: 1, Feedback: fb(4, 0)}},
		},
		{
			TopicName:     "Struggling",
			QuestionCount: 2,
			Questions: []model.ReportQuestion{
				{QuestionID: 2, Feedback: fb(0, 2)},
				{QuestionID: 3, Feedback: fb(1, 3)},
			},
		},
		{
			TopicName:     "MildlyStruggling",
			QuestionCount: 4,
			Questions:     []model.ReportQuestion{{QuestionID: 4, Feedback: fb(0, 1)}},
		},
	}

	sorted := SortByAttention(groups)
	assert.Equal(t, "Struggling", sorted[0].TopicName)
	assert.Equal(t, "MildlyStruggling", sorted[1].TopicName)
	assert.Equal(t, "Calm", sorted[2].TopicName)

	assert.Equal(t, "Calm", groups[0].TopicName, "input order untouched")
}
