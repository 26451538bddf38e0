package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"learnpool-client/internal/model"
	"learnpool-client/internal/state"
)

func testApp(t *testing.T) *state.App {
	t.Helper()
	app, err := state.Load(filepath.Join(t.TempDir(), "state.toml"))
	require.NoError(t, err)
	return app
}

func TestLoginStoresSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/auth/login", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"tok-1","token_type":"bearer","user_id":7,"display_name":"Alice Chen","role":"student"}`))
	}))
	defer server.Close()

	app := testApp(t)
	client := NewClient(server.URL, time.Second, app, nil, nil)

	resp, err := client.Login(context.Background(), "alice@learnpool.dev", "password123")
	require.NoError(t, err)
	assert.Equal(t, "tok-1", resp.AccessToken)

	assert.True(t, app.LoggedIn())
	assert.Equal(t, uint(7), app.UserID())
	assert.Equal(t, model.RoleStudent, app.Role())
}

func TestBearerAttachedToEveryRequest(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	app := testApp(t)
	require.NoError(t, app.SetSession("tok-xyz", 1, "Alice", model.RoleStudent))
	client := NewClient(server.URL, time.Second, app, nil, nil)

	_, err := client.StudentCourses(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-xyz", gotAuth)
}

func TestUnauthorizedClearsStateAndFiresHookOnce(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail":"token expired"}`))
	}))
	defer server.Close()

	app := testApp(t)
	require.NoError(t, app.SetSession("stale", 1, "Alice", model.RoleStudent))

	hookCalls := 0
	client := NewClient(server.URL, time.Second, app, func() { hookCalls++ }, nil)

	_, err := client.StudentCourses(context.Background())
	require.Error(t, err)
	assert.True(t, IsAuthError(err))
	assert.False(t, app.LoggedIn(), "credentials cleared by the transport")

	_, err = client.Questions(context.Background(), 1)
	require.Error(t, err)
	assert.Equal(t, 1, hookCalls, "logout hook fires exactly once per client")
}

func TestErrorDetailParsed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"detail":"session does not accept questions"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second, testApp(t), nil, nil)

	_, err := client.AskQuestion(context.Background(), 5, AskQuestionRequest{Content: "why recursion"})
	require.Error(t, err)
	apiErr, ok := err.(*APIError)
	require.True(t, ok)
	assert.Equal(t, http.StatusConflict, apiErr.Status)
	assert.Equal(t, "session does not accept questions", apiErr.Detail)
}

func TestReportQuerySelectsRoleEndpoint(t *testing.T) {
	var paths []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		w.Write([]byte(`{"groups":[],"total_questions":0}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second, testApp(t), nil, nil)

	studentLoader := ReportQuery{Role: model.RoleStudent, SessionID: 3}.Load(client)
	_, err := studentLoader(context.Background())
	require.NoError(t, err)

	professorLoader := ReportQuery{Role: model.RoleProfessor, SessionID: 3}.Load(client)
	_, err = professorLoader(context.Background())
	require.NoError(t, err)

	require.Len(t, paths, 2)
	assert.Equal(t, "/api/student/sessions/3/report", paths[0])
	assert.Equal(t, "/api/professor/sessions/3/report", paths[1])
}

func TestReportQueryKeyIncludesRole(t *testing.T) {
	student := ReportQuery{Role: model.RoleStudent, SessionID: 3}.Key()
	professor := ReportQuery{Role: model.RoleProfessor, SessionID: 3}.Key()
	assert.NotEqual(t, student, professor)
}

func TestUpdateQuestionReviewSendsPatch(t *testing.T) {
	var gotMethod, gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		w.Write([]byte(`{"question_id":12}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second, testApp(t), nil, nil)
	notes := "revisit"
	err := client.UpdateQuestionReview(context.Background(), 12, UpdateQuestionRequest{
		Labels: []string{"confusing"},
		Notes:  &notes,
	})
	require.NoError(t, err)
	assert.Equal(t, http.MethodPatch, gotMethod)
	assert.Equal(t, "/api/professor/questions/12", gotPath)
}
