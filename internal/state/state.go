// Package state holds the client's durable local state: the auth token,
// the signed-in profile, and the answer personality preference. It is an
// explicit object passed by reference to whatever needs it — loaded once
// at startup, saved on every change, cleared on logout. Nothing here is a
// package-level global.
package state

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/BurntSushi/toml"

	"learnpool-client/internal/model"
)

// schemaVersion guards the on-disk format. An unknown or missing version
// is treated as empty state (the user logs in again) rather than migrated.
const schemaVersion = 1

type persisted struct {
	Version     int               `toml:"version"`
	Token       string            `toml:"token"`
	UserID      uint              `toml:"user_id"`
	DisplayName string            `toml:"display_name"`
	Role        model.Role        `toml:"role"`
	Personality model.Personality `toml:"personality"`
}

type App struct {
	mu   sync.Mutex
	path string
	data persisted
}

func Load(path string) (*App, error) {
	a := &App{path: path}
	a.data = persisted{Version: schemaVersion, Personality: model.PersonalitySupportive}

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return a, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read state file failed: %w", err)
	}

	var p persisted
	if err := toml.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("decode state file failed: %w", err)
	}
	if p.Version != schemaVersion {
		return a, nil
	}
	if !p.Personality.Valid() {
		p.Personality = model.PersonalitySupportive
	}
	a.data = p
	return a, nil
}

func (a *App) save() error {
	if err := os.MkdirAll(filepath.Dir(a.path), 0o700); err != nil {
		return fmt.Errorf("create state dir failed: %w", err)
	}
	f, err := os.OpenFile(a.path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("open state file failed: %w", err)
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(a.data); err != nil {
		return fmt.Errorf("encode state file failed: %w", err)
	}
	return nil
}

func (a *App) Token() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.data.Token
}

func (a *App) LoggedIn() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.data.Token != ""
}

func (a *App) UserID() uint {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.data.UserID
}

func (a *App) DisplayName() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.data.DisplayName
}

func (a *App) Role() model.Role {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.data.Role
}

func (a *App) Personality() model.Personality {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.data.Personality
}

func (a *App) SetPersonality(p model.Personality) error {
	if !p.Valid() {
		return fmt.Errorf("invalid personality %q", p)
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.data.Personality = p
	return a.save()
}

// SetSession stores credentials after a successful login.
func (a *App) SetSession(token string, userID uint, displayName string, role model.Role) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.data.Token = token
	a.data.UserID = userID
	a.data.DisplayName = displayName
	a.data.Role = role
	return a.save()
}

// Clear wipes credentials but keeps the personality preference. Called on
// logout and by the transport's 401 hook.
func (a *App) Clear() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.data.Token = ""
	a.data.UserID = 0
	a.data.DisplayName = ""
	a.data.Role = ""
	return a.save()
}
