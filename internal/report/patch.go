package report

import "learnpool-client/internal/model"

// Patch functions are pure: they deep-copy everything they touch so a
// snapshot taken before the patch stays byte-for-byte intact for rollback.
// Answer pointers are shared between copies because no patch ever writes
// through them.

func clone(r model.SessionReport) model.SessionReport {
	out := r
	out.Groups = make([]model.TopicGroup, len(r.Groups))
	for i, g := range r.Groups {
		cg := g
		cg.Questions = make([]model.ReportQuestion, len(g.Questions))
		for j, q := range g.Questions {
			cq := q
			if q.Feedback != nil {
				fb := *q.Feedback
				cq.Feedback = &fb
			}
			cq.Labels = append([]string(nil), q.Labels...)
			cg.Questions[j] = cq
		}
		out.Groups[i] = cg
	}
	return out
}

// ToggleVote predicts the server's vote semantics on the cached report:
// casting the viewer's current vote again removes it, casting the other
// direction moves the tally both ways. Unknown answer IDs return the
// report unchanged.
func ToggleVote(r model.SessionReport, answerID uint, dir model.FeedbackValue) model.SessionReport {
	out := clone(r)
	for gi := range out.Groups {
		qs := out.Groups[gi].Questions
		for qi := range qs {
			q := &qs[qi]
			if q.Answer == nil || q.Answer.ID != answerID {
				continue
			}
			if q.Feedback == nil {
				q.Feedback = &model.FeedbackSummary{}
			}
			switch {
			case q.MyFeedback == dir:
				adjust(q.Feedback, dir, -1)
				q.MyFeedback = ""
			case q.MyFeedback == "":
				adjust(q.Feedback, dir, +1)
				q.MyFeedback = dir
			default:
				adjust(q.Feedback, q.MyFeedback, -1)
				adjust(q.Feedback, dir, +1)
				q.MyFeedback = dir
			}
			q.Feedback.NeedsAttention = q.Feedback.ThumbsDown > q.Feedback.ThumbsUp
			return out
		}
	}
	return out
}

func adjust(fb *model.FeedbackSummary, dir model.FeedbackValue, delta int) {
	switch dir {
	case model.FeedbackUp:
		fb.ThumbsUp += delta
		if fb.ThumbsUp < 0 {
			fb.ThumbsUp = 0
		}
	case model.FeedbackDown:
		fb.ThumbsDown += delta
		if fb.ThumbsDown < 0 {
			fb.ThumbsDown = 0
		}
	}
}

// ToggleLabel adds the label to the question when absent and removes it
// when present.
func ToggleLabel(r model.SessionReport, questionID uint, label string) model.SessionReport {
	out := clone(r)
	for gi := range out.Groups {
		qs := out.Groups[gi].Questions
		for qi := range qs {
			q := &qs[qi]
			if q.QuestionID != questionID {
				continue
			}
			for li, existing := range q.Labels {
				if existing == label {
					q.Labels = append(q.Labels[:li], q.Labels[li+1:]...)
					return out
				}
			}
			q.Labels = append(q.Labels, label)
			return out
		}
	}
	return out
}

func SetNotes(r model.SessionReport, questionID uint, notes string) model.SessionReport {
	out := clone(r)
	for gi := range out.Groups {
		qs := out.Groups[gi].Questions
		for qi := range qs {
			if qs[qi].QuestionID == questionID {
				qs[qi].Notes = notes
				return out
			}
		}
	}
	return out
}
