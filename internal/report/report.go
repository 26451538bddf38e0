// Package report projects display metrics over the topic groups the
// server returns and holds the pure patch functions the mutation engine
// applies to cached report payloads. Everything here is recomputed from
// the payload on demand; nothing is cached independently, so the numbers
// cannot drift from the data they describe.
package report

import (
	"math"
	"sort"

	"learnpool-client/internal/model"
)

type Metrics struct {
	TotalQuestions int
	TotalVotes     int
	EngagementPct  int
	AttentionCount int

	// UniqueStudents counts distinct display pseudonyms. Pseudonyms are
	// not stable identities, so this is an approximation.
	UniqueStudents int
}

func Compute(r model.SessionReport) Metrics {
	m := Metrics{TotalQuestions: r.TotalQuestions}

	withVote := 0
	names := make(map[string]struct{})
	for _, g := range r.Groups {
		for _, q := range g.Questions {
			if q.AnonymousName != "" {
				names[q.AnonymousName] = struct{}{}
			}
			if q.Feedback == nil {
				continue
			}
			votes := q.Feedback.ThumbsUp + q.Feedback.ThumbsDown
			m.TotalVotes += votes
			if votes > 0 {
				withVote++
			}
			if q.Feedback.NeedsAttention {
				m.AttentionCount++
			}
		}
	}
	m.UniqueStudents = len(names)

	if r.TotalQuestions > 0 {
		m.EngagementPct = int(math.Round(100 * float64(withVote) / float64(r.TotalQuestions)))
	}
	return m
}

// HottestTopic returns the group with the highest question count. Ties go
// to the group encountered first in server order; that ordering is
// implementation-defined, not a contract.
func HottestTopic(groups []model.TopicGroup) (model.TopicGroup, bool) {
	if len(groups) == 0 {
		return model.TopicGroup{}, false
	}
	best := groups[0]
	for _, g := range groups[1:] {
		if g.QuestionCount > best.QuestionCount {
			best = g
		}
	}
	return best, true
}

func attentionCount(g model.TopicGroup) int {
	n := 0
	for _, q := range g.Questions {
		if q.Feedback != nil && q.Feedback.NeedsAttention {
			n++
		}
	}
	return n
}

// SortByAttention orders groups for the professor view: groups with more
// questions needing attention first, then by question count, stable
// otherwise. The input slice is not modified.
func SortByAttention(groups []model.TopicGroup) []model.TopicGroup {
	out := make([]model.TopicGroup, len(groups))
	copy(out, groups)
	sort.SliceStable(out, func(i, j int) bool {
		ai, aj := attentionCount(out[i]), attentionCount(out[j])
		if ai != aj {
			return ai > aj
		}
		return out[i].QuestionCount > out[j].QuestionCount
	})
	return out
}
