// Package gate derives the actions a viewer may take from a session's
// status and the viewer's role. Status transitions themselves are
// server-authoritative; these checks exist so the client fails fast and
// never has to interpret a rejected call after the fact.
package gate

import "learnpool-client/internal/model"

// CanAsk reports whether new questions are accepted. Ended sessions are
// read-only; the existing transcript stays visible. Role does not matter.
func CanAsk(status model.SessionStatus) bool {
	switch status {
	case model.SessionActive, model.SessionReleased:
		return true
	}
	return false
}

// CanVote is status-independent: feedback stays open after a session ends,
// it only requires that an answer exists to vote on.
func CanVote(q model.ReportQuestion) bool {
	return q.Answer != nil
}

// CanVoteOnTranscript is the transcript-side variant of CanVote.
func CanVoteOnTranscript(q model.QuestionOut) bool {
	return q.Answer != nil
}

// CanPublish allows students to share a non-empty selection to the class
// feed.
func CanPublish(role model.Role, selection []uint) bool {
	return role == model.RoleStudent && len(selection) > 0
}

// CanStartSession is advisory only: the server re-checks, and a start
// attempt can still fail even when this returns true.
func CanStartSession(sessions []model.SessionSummary) bool {
	for _, s := range sessions {
		if s.Status == model.SessionActive {
			return false
		}
	}
	return true
}

// CanDeleteSession permits deletion only before a session has started.
func CanDeleteSession(status model.SessionStatus) bool {
	return status == model.SessionUpcoming
}
