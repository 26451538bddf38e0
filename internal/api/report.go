package api

import (
	"context"
	"fmt"

	"learnpool-client/internal/model"
	"learnpool-client/internal/syncer"
)

// ReportQuery is the one place viewer role selects a report loader.
// Professor and student hit different endpoints and receive different
// projections of the same session; everything downstream of Load is
// role-agnostic.
type ReportQuery struct {
	Role      model.Role
	SessionID uint
}

func (q ReportQuery) Key() syncer.Key {
	return syncer.Key{Resource: "session-report", SessionID: q.SessionID, Role: q.Role}
}

func (q ReportQuery) Load(c *Client) syncer.Loader {
	return func(ctx context.Context) (any, error) {
		var (
			rep model.SessionReport
			err error
		)
		switch q.Role {
		case model.RoleProfessor:
			rep, err = c.ProfessorReport(ctx, q.SessionID)
		case model.RoleStudent:
			rep, err = c.StudentReport(ctx, q.SessionID)
		default:
			return nil, fmt.Errorf("unknown viewer role %q", q.Role)
		}
		if err != nil {
			return nil, err
		}
		return rep, nil
	}
}

// TranscriptKey is the cache key for a session's question log. Transcripts
// are role-independent.
func TranscriptKey(sessionID uint) syncer.Key {
	return syncer.Key{Resource: "session-questions", SessionID: sessionID}
}

func TranscriptLoader(c *Client, sessionID uint) syncer.Loader {
	return func(ctx context.Context) (any, error) {
		list, err := c.Questions(ctx, sessionID)
		if err != nil {
			return nil, err
		}
		return list, nil
	}
}
