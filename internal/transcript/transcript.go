// Package transcript models the live chat view of a session: an ordered,
// append-only question log in server return order. Revalidation replaces
// the whole list; per-session lists are bounded and ordering is stable, so
// incremental diffing buys nothing.
package transcript

import (
	"errors"
	"strings"
	"unicode/utf8"

	"learnpool-client/internal/model"
)

var (
	ErrContentTooShort = errors.New("question must be at least 5 characters")
	ErrContentTooLong  = errors.New("question must be at most 2000 characters")
)

// ValidateContent enforces the [5,2000] length bounds before any network
// call. Violations surface inline at the input; they never reach the
// mutation pipeline.
func ValidateContent(content string) error {
	n := utf8.RuneCountInString(strings.TrimSpace(content))
	if n < model.QuestionMinLen {
		return ErrContentTooShort
	}
	if n > model.QuestionMaxLen {
		return ErrContentTooLong
	}
	return nil
}

type Transcript struct {
	questions []model.QuestionOut
}

func New() *Transcript {
	return &Transcript{}
}

// Replace swaps in the server's list wholesale and reports whether the set
// grew, so the view can decide about scrolling. The model never reorders.
func (t *Transcript) Replace(list []model.QuestionOut) (grew bool) {
	grew = len(list) > len(t.questions)
	t.questions = list
	return grew
}

func (t *Transcript) Questions() []model.QuestionOut {
	return t.questions
}

func (t *Transcript) Len() int {
	return len(t.questions)
}

// Pending reports whether the question is still waiting on its answer.
// This is a normal state the view renders as a placeholder, not an error.
func Pending(q model.QuestionOut) bool {
	return q.Answer == nil
}

func (t *Transcript) PendingCount() int {
	n := 0
	for _, q := range t.questions {
		if Pending(q) {
			n++
		}
	}
	return n
}

// MarkPublished is the optimistic patch for batch publish: the selected
// questions flip their published flag on a copied list.
func MarkPublished(list []model.QuestionOut, ids []uint) []model.QuestionOut {
	selected := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		selected[id] = struct{}{}
	}
	out := make([]model.QuestionOut, len(list))
	copy(out, list)
	for i := range out {
		if _, ok := selected[out[i].QuestionID]; ok {
			out[i].Published = true
		}
	}
	return out
}
