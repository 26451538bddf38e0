package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"learnpool-client/internal/model"
	"learnpool-client/internal/repository"
)

func TestCreateSessionRejectsSecondActive(t *testing.T) {
	f := newFixture(t)
	svc := f.sessionService()

	_, err := svc.CreateSession(CreateSessionInput{
		CourseID: f.course.ID, ProfessorID: f.professor.ID, Title: "Week 5",
	})
	assert.ErrorIs(t, err, ErrActiveExists, "fixture already has an active session")

	// A scheduled session is fine alongside the active one.
	scheduled, err := svc.CreateSession(CreateSessionInput{
		CourseID: f.course.ID, ProfessorID: f.professor.ID, Title: "Week 5", Scheduled: true,
	})
	require.NoError(t, err)
	assert.Equal(t, model.SessionUpcoming, scheduled.Status)
}

func TestCreateSessionOwnership(t *testing.T) {
	f := newFixture(t)
	_, err := f.sessionService().CreateSession(CreateSessionInput{
		CourseID: f.course.ID, ProfessorID: f.student.ID, Title: "Hijack",
	})
	assert.ErrorIs(t, err, ErrNotOwner)
}

func TestStatusTransitions(t *testing.T) {
	tests := []struct {
		name    string
		from    model.SessionStatus
		to      model.SessionStatus
		wantErr error
	}{
		{"upcoming to active", model.SessionUpcoming, model.SessionActive, nil},
		{"active to ended", model.SessionActive, model.SessionEnded, nil},
		{"ended to released", model.SessionEnded, model.SessionReleased, nil},
		{"active straight to released", model.SessionActive, model.SessionReleased, ErrBadStatusChange},
		{"released is terminal", model.SessionReleased, model.SessionActive, ErrBadStatusChange},
		{"no going back", model.SessionEnded, model.SessionActive, ErrBadStatusChange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			require.NoError(t, f.db.Model(f.session).Update("status", tt.from).Error)

			updated, err := f.sessionService().UpdateStatus(f.session.ID, f.professor.ID, tt.to)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.to, updated.Status)
		})
	}
}

func TestStartingUpcomingChecksActiveRule(t *testing.T) {
	f := newFixture(t)
	svc := f.sessionService()

	upcoming, err := svc.CreateSession(CreateSessionInput{
		CourseID: f.course.ID, ProfessorID: f.professor.ID, Title: "Week 5", Scheduled: true,
	})
	require.NoError(t, err)

	// The fixture session is still active, so the start is refused.
	_, err = svc.UpdateStatus(upcoming.ID, f.professor.ID, model.SessionActive)
	assert.ErrorIs(t, err, ErrActiveExists)

	_, err = svc.UpdateStatus(f.session.ID, f.professor.ID, model.SessionEnded)
	require.NoError(t, err)

	started, err := svc.UpdateStatus(upcoming.ID, f.professor.ID, model.SessionActive)
	require.NoError(t, err)
	assert.Equal(t, model.SessionActive, started.Status)
}

func TestDeleteSessionOnlyUpcoming(t *testing.T) {
	f := newFixture(t)
	svc := f.sessionService()

	err := svc.DeleteSession(f.session.ID, f.professor.ID)
	assert.ErrorIs(t, err, ErrNotUpcoming)

	upcoming, err := svc.CreateSession(CreateSessionInput{
		CourseID: f.course.ID, ProfessorID: f.professor.ID, Title: "Week 9", Scheduled: true,
	})
	require.NoError(t, err)
	require.NoError(t, svc.DeleteSession(upcoming.ID, f.professor.ID))

	_, err = svc.SessionDetail(upcoming.ID, f.professor.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestScheduleLectureWithDocuments(t *testing.T) {
	f := newFixture(t)
	svc := f.sessionService()
	docs := repository.NewDocumentRepository(f.db)

	slides := &model.Document{CourseID: f.course.ID, Filename: "week6.pdf"}
	require.NoError(t, docs.Create(slides))
	notes := &model.Document{CourseID: f.course.ID, Filename: "notes.pdf"}
	require.NoError(t, docs.Create(notes))

	when := time.Now().Add(48 * time.Hour).Truncate(time.Minute)
	session, err := svc.ScheduleLecture(ScheduleLectureInput{
		CourseID:    f.course.ID,
		ProfessorID: f.professor.ID,
		Title:       "Week 6: Graphs",
		ScheduledAt: when,
		Location:    "Room 204",
		DocumentIDs: []uint{notes.ID, slides.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, model.SessionUpcoming, session.Status)

	detail, err := svc.SessionDetail(session.ID, f.professor.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{notes.ID, slides.ID}, detail.DocumentIDs, "attachment order preserved")
	assert.Equal(t, "Room 204", detail.Location)
}

func TestScheduleLectureRejectsForeignDocument(t *testing.T) {
	f := newFixture(t)
	svc := f.sessionService()

	otherCourse := &model.Course{Name: "Algorithms", ProfessorID: f.professor.ID}
	require.NoError(t, repository.NewCourseRepository(f.db).Create(otherCourse))
	foreign := &model.Document{CourseID: otherCourse.ID, Filename: "other.pdf"}
	require.NoError(t, repository.NewDocumentRepository(f.db).Create(foreign))

	_, err := svc.ScheduleLecture(ScheduleLectureInput{
		CourseID:    f.course.ID,
		ProfessorID: f.professor.ID,
		Title:       "Week 6",
		ScheduledAt: time.Now().Add(time.Hour),
		DocumentIDs: []uint{foreign.ID},
	})
	assert.ErrorIs(t, err, ErrDocumentNotFound)
}

func TestSessionsForStudentRequiresEnrollment(t *testing.T) {
	f := newFixture(t)
	svc := f.sessionService()

	sessions, err := svc.SessionsForStudent(f.course.ID, f.student.ID)
	require.NoError(t, err)
	assert.Len(t, sessions, 1)

	_, err = svc.SessionsForStudent(f.course.ID, f.outsider.ID)
	assert.ErrorIs(t, err, ErrNotEnrolled)
}

func TestCourseSummaries(t *testing.T) {
	f := newFixture(t)
	svc := f.sessionService()

	forStudent, err := svc.CoursesForStudent(f.student.ID)
	require.NoError(t, err)
	require.Len(t, forStudent, 1)
	assert.Equal(t, "Data Structures", forStudent[0].Name)
	assert.Equal(t, "Prof. Rivera", forStudent[0].ProfessorName)
	assert.Equal(t, 1, forStudent[0].SessionCount)

	none, err := svc.CoursesForStudent(f.outsider.ID)
	require.NoError(t, err)
	assert.Empty(t, none)

	forProfessor, err := svc.CoursesForProfessor(f.professor.ID)
	require.NoError(t, err)
	assert.Len(t, forProfessor, 1)
}

func TestSessionDocumentsEnrollmentGate(t *testing.T) {
	f := newFixture(t)
	svc := f.sessionService()
	docs := repository.NewDocumentRepository(f.db)

	slides := &model.Document{CourseID: f.course.ID, Filename: "week4.pdf"}
	require.NoError(t, docs.Create(slides))
	require.NoError(t, repository.NewSessionRepository(f.db).ReplaceDocuments(f.session.ID, []uint{slides.ID}))

	listed, err := svc.SessionDocuments(f.session.ID, f.student.ID)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "week4.pdf", listed[0].Filename)

	_, err = svc.SessionDocuments(f.session.ID, f.outsider.ID)
	assert.ErrorIs(t, err, ErrNotEnrolled)
}
