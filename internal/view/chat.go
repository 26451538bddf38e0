// Package view composes the client pieces into the two screens the app
// has: the live chat transcript and the session report. Each view owns a
// polling subscription bound to its lifetime; Close stops polling and
// drops the cached entry so late responses cannot land on unrelated state.
package view

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"learnpool-client/internal/api"
	"learnpool-client/internal/gate"
	"learnpool-client/internal/model"
	"learnpool-client/internal/state"
	"learnpool-client/internal/syncer"
	"learnpool-client/internal/transcript"
)

var (
	ErrNotEnrolled   = errors.New("not enrolled in this session")
	ErrSessionClosed = errors.New("session no longer accepts questions")
	ErrNothingToSend = errors.New("publish selection is empty")
)

type Deps struct {
	API   *api.Client
	Cache *syncer.Cache
	Mut   *syncer.Mutator
	App   *state.App
	Log   logrus.FieldLogger
}

type ChatView struct {
	deps      Deps
	sessionID uint
	check     model.SessionCheck
	key       syncer.Key
	sub       *syncer.Subscription
	log       *transcript.Transcript
}

// OpenChat runs the enrollment check first — with retries off, so a
// failed check is never masked — and refuses to load anything when the
// viewer is not enrolled. Only after the check passes does the transcript
// load and the poll start.
func OpenChat(ctx context.Context, deps Deps, sessionID uint, pollInterval time.Duration) (*ChatView, error) {
	check, err := deps.API.CheckSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !check.Enrolled {
		return nil, ErrNotEnrolled
	}

	v := &ChatView{
		deps:      deps,
		sessionID: sessionID,
		check:     check,
		key:       api.TranscriptKey(sessionID),
		log:       transcript.New(),
	}

	loader := api.TranscriptLoader(deps.API, sessionID)
	res := deps.Cache.Fetch(ctx, v.key, loader, syncer.Options{Enabled: true, Retry: true})
	if res.Err != nil && res.Data == nil {
		return nil, res.Err
	}

	if pollInterval > 0 {
		v.sub = syncer.NewSubscription(deps.Cache, v.key, loader, pollInterval, deps.Log)
		v.sub.Start(ctx)
	}
	return v, nil
}

func (v *ChatView) Status() model.SessionStatus {
	return v.check.SessionStatus
}

// Questions returns the current transcript and whether it grew since the
// last read, so the caller can decide about scrolling.
func (v *ChatView) Questions() ([]model.QuestionOut, bool) {
	data, ok := v.deps.Cache.Get(v.key)
	if !ok {
		return v.log.Questions(), false
	}
	list, _ := data.([]model.QuestionOut)
	grew := v.log.Replace(list)
	return v.log.Questions(), grew
}

// Ask validates the content locally, re-checks the session status (the
// server may have ended it since the view opened), submits, and
// invalidates the transcript so the next poll pulls the authoritative
// list. Questions appear post-ack only. On error the caller keeps the
// typed text.
func (v *ChatView) Ask(ctx context.Context, content string, anonymous bool) (model.QuestionOut, error) {
	if err := transcript.ValidateContent(content); err != nil {
		return model.QuestionOut{}, err
	}

	check, err := v.deps.API.CheckSession(ctx, v.sessionID)
	if err != nil {
		return model.QuestionOut{}, err
	}
	v.check = check
	if !gate.CanAsk(check.SessionStatus) {
		return model.QuestionOut{}, ErrSessionClosed
	}

	q, err := v.deps.API.AskQuestion(ctx, v.sessionID, api.AskQuestionRequest{
		Content:     content,
		Personality: v.deps.App.Personality(),
		Anonymous:   anonymous,
	})
	if err != nil {
		return model.QuestionOut{}, err
	}
	v.deps.Cache.Invalidate(v.key)
	return q, nil
}

// Vote casts feedback from the chat view. The transcript carries no
// tallies, so there is nothing to patch optimistically here; the report
// view owns that path.
func (v *ChatView) Vote(ctx context.Context, answerID uint, dir model.FeedbackValue) error {
	_, err := v.deps.API.SubmitFeedback(ctx, answerID, dir)
	return err
}

// Publish shares the selection to the class feed with an optimistic
// published-flag patch, rolled back if the call fails.
func (v *ChatView) Publish(ctx context.Context, questionIDs []uint) error {
	if !gate.CanPublish(v.deps.App.Role(), questionIDs) {
		return ErrNothingToSend
	}
	return v.deps.Mut.Do(ctx, syncer.Mutation{
		Key: v.key,
		Patch: func(old any) any {
			list, _ := old.([]model.QuestionOut)
			return transcript.MarkPublished(list, questionIDs)
		},
		Call: func(ctx context.Context) (any, error) {
			return v.deps.API.PublishQuestions(ctx, v.sessionID, questionIDs)
		},
	})
}

// Close stops polling and forgets the cached transcript. Required on
// navigation away; a late poll response must never be applied once the
// view is gone.
func (v *ChatView) Close() {
	if v.sub != nil {
		v.sub.Stop()
	}
	v.deps.Cache.Drop(v.key)
}
