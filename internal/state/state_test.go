package state

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"learnpool-client/internal/model"
)

func statePath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "state.toml")
}

func TestLoadMissingFileIsEmpty(t *testing.T) {
	app, err := Load(statePath(t))
	require.NoError(t, err)

	assert.False(t, app.LoggedIn())
	assert.Equal(t, model.PersonalitySupportive, app.Personality())
}

func TestSessionRoundTrip(t *testing.T) {
	path := statePath(t)

	app, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, app.SetSession("tok-123", 42, "Alice Chen", model.RoleStudent))
	require.NoError(t, app.SetPersonality(model.PersonalityFunny))

	reloaded, err := Load(path)
	require.NoError(t, err)
	assert.True(t, reloaded.LoggedIn())
	assert.Equal(t, "tok-123", reloaded.Token())
	assert.Equal(t, uint(42), reloaded.UserID())
	assert.Equal(t, "Alice Chen", reloaded.DisplayName())
	assert.Equal(t, model.RoleStudent, reloaded.Role())
	assert.Equal(t, model.PersonalityFunny, reloaded.Personality())
}

func TestClearKeepsPersonality(t *testing.T) {
	path := statePath(t)

	app, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, app.SetSession("tok", 1, "Bob", model.RoleProfessor))
	require.NoError(t, app.SetPersonality(model.PersonalityNormal))

	require.NoError(t, app.Clear())

	reloaded, err := Load(path)
	require.NoError(t, err)
	assert.False(t, reloaded.LoggedIn())
	assert.Empty(t, reloaded.Token())
	assert.Zero(t, reloaded.UserID())
	assert.Equal(t, model.PersonalityNormal, reloaded.Personality())
}

func TestUnknownSchemaVersionTreatedAsEmpty(t *testing.T) {
	path := statePath(t)
	raw := "version = 99\ntoken = \"stale\"\nuser_id = 5\n"
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o600))

	app, err := Load(path)
	require.NoError(t, err)
	assert.False(t, app.LoggedIn(), "an unknown schema must not resurrect credentials")
}

func TestInvalidPersonalityFallsBack(t *testing.T) {
	path := statePath(t)
	raw := "version = 1\ntoken = \"tok\"\npersonality = \"sarcastic\"\n"
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o600))

	app, err := Load(path)
	require.NoError(t, err)
	assert.True(t, app.LoggedIn())
	assert.Equal(t, model.PersonalitySupportive, app.Personality())
}

func TestSetPersonalityRejectsInvalid(t *testing.T) {
	app, err := Load(statePath(t))
	require.NoError(t, err)
	assert.Error(t, app.SetPersonality(model.Personality("sarcastic")))
}
