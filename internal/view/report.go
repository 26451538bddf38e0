package view

import (
	"context"
	"time"

	"learnpool-client/internal/api"
	"learnpool-client/internal/model"
	"learnpool-client/internal/report"
	"learnpool-client/internal/syncer"
)

type ReportView struct {
	deps  Deps
	query api.ReportQuery
	key   syncer.Key
	sub   *syncer.Subscription
}

// OpenReport loads the aggregated report for the viewer's role. The
// professor view polls in the background; the student view loads once and
// refreshes on demand.
func OpenReport(ctx context.Context, deps Deps, sessionID uint, pollInterval time.Duration) (*ReportView, error) {
	query := api.ReportQuery{Role: deps.App.Role(), SessionID: sessionID}
	v := &ReportView{deps: deps, query: query, key: query.Key()}

	loader := query.Load(deps.API)
	res := deps.Cache.Fetch(ctx, v.key, loader, syncer.Options{Enabled: true, Retry: true})
	if res.Err != nil && res.Data == nil {
		return nil, res.Err
	}

	if deps.App.Role() == model.RoleProfessor && pollInterval > 0 {
		v.sub = syncer.NewSubscription(deps.Cache, v.key, loader, pollInterval, deps.Log)
		v.sub.Start(ctx)
	}
	return v, nil
}

func (v *ReportView) current() model.SessionReport {
	data, ok := v.deps.Cache.Get(v.key)
	if !ok {
		return model.SessionReport{}
	}
	rep, _ := data.(model.SessionReport)
	return rep
}

func (v *ReportView) Report() model.SessionReport {
	return v.current()
}

// Metrics are derived from the cached payload on every call, including
// right after an optimistic vote patch, so they can never drift.
func (v *ReportView) Metrics() report.Metrics {
	return report.Compute(v.current())
}

func (v *ReportView) HottestTopic() (model.TopicGroup, bool) {
	return report.HottestTopic(v.current().Groups)
}

// GroupsByAttention is the professor ordering: most questions needing
// attention first.
func (v *ReportView) GroupsByAttention() []model.TopicGroup {
	return report.SortByAttention(v.current().Groups)
}

func (v *ReportView) Refresh(ctx context.Context) error {
	return v.deps.Cache.Revalidate(ctx, v.key, v.query.Load(v.deps.API))
}

// Vote applies the toggle prediction to the cached report, then submits.
// A failed call restores the exact pre-vote payload.
func (v *ReportView) Vote(ctx context.Context, answerID uint, dir model.FeedbackValue) error {
	return v.deps.Mut.Do(ctx, syncer.Mutation{
		Key: v.key,
		Patch: func(old any) any {
			rep, _ := old.(model.SessionReport)
			return report.ToggleVote(rep, answerID, dir)
		},
		Call: func(ctx context.Context) (any, error) {
			return v.deps.API.SubmitFeedback(ctx, answerID, dir)
		},
	})
}

// ToggleLabel flips a professor label. The target label set is computed
// from the cached value before the patch so the remote call and the
// prediction agree.
func (v *ReportView) ToggleLabel(ctx context.Context, questionID uint, label string) error {
	labels, notes, found := v.findReview(questionID)
	if !found {
		return nil
	}
	target := toggleInList(labels, label)

	return v.deps.Mut.Do(ctx, syncer.Mutation{
		Key: v.key,
		Patch: func(old any) any {
			rep, _ := old.(model.SessionReport)
			return report.ToggleLabel(rep, questionID, label)
		},
		Call: func(ctx context.Context) (any, error) {
			err := v.deps.API.UpdateQuestionReview(ctx, questionID, api.UpdateQuestionRequest{
				Labels: target,
				Notes:  &notes,
			})
			return nil, err
		},
	})
}

func (v *ReportView) SetNotes(ctx context.Context, questionID uint, notes string) error {
	labels, _, found := v.findReview(questionID)
	if !found {
		return nil
	}
	return v.deps.Mut.Do(ctx, syncer.Mutation{
		Key: v.key,
		Patch: func(old any) any {
			rep, _ := old.(model.SessionReport)
			return report.SetNotes(rep, questionID, notes)
		},
		Call: func(ctx context.Context) (any, error) {
			err := v.deps.API.UpdateQuestionReview(ctx, questionID, api.UpdateQuestionRequest{
				Labels: labels,
				Notes:  &notes,
			})
			return nil, err
		},
	})
}

func (v *ReportView) findReview(questionID uint) (labels []string, notes string, found bool) {
	rep := v.current()
	for _, g := range rep.Groups {
		for _, q := range g.Questions {
			if q.QuestionID == questionID {
				return q.Labels, q.Notes, true
			}
		}
	}
	return nil, "", false
}

func toggleInList(labels []string, label string) []string {
	out := make([]string, 0, len(labels)+1)
	removed := false
	for _, l := range labels {
		if l == label {
			removed = true
			continue
		}
		out = append(out, l)
	}
	if !removed {
		out = append(out, label)
	}
	return out
}

func (v *ReportView) Close() {
	if v.sub != nil {
		v.sub.Stop()
	}
	v.deps.Cache.Drop(v.key)
}
