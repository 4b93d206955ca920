// Package credentials manages the bearer credential for the quill assistant
// API: a credentials.toml file in the .quill/ directory, with an environment
// variable override for CI and scripted use.
package credentials

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/quillhq/quill/pkg/dotdir"
)

const (
	credentialsFile = "credentials.toml"

	currentVersion = 0
)

// EnvVar is the environment variable consulted before the credentials file.
const EnvVar = "QUILL_API_TOKEN"

// Manager manages reading and writing credentials.toml in the .quill/ directory.
type Manager struct {
	ddm        *dotdir.Manager
	targetPath string
}

// NewManager creates a new credentials Manager. If override is non-empty it is
// used as the .quill/ directory; otherwise the standard dotdir resolution applies.
func NewManager(override string) (*Manager, error) {
	mgr := &Manager{}
	mgr.ddm = dotdir.NewManager()

	target, err := mgr.ddm.Target(override)
	if err != nil {
		return nil, err
	}

	mgr.targetPath = filepath.Join(target, credentialsFile)

	return mgr, nil
}

// Load reads credentials.toml from the target directory.
// Returns empty Credentials if the file does not exist.
func (m *Manager) Load() (*Credentials, error) {
	data, err := os.ReadFile(m.targetPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Credentials{Version: currentVersion}, nil
		}
		return nil, fmt.Errorf("reading credentials: %w", err)
	}

	creds := &Credentials{}
	if err := toml.Unmarshal(data, creds); err != nil {
		return nil, fmt.Errorf("parsing credentials: %w", err)
	}

	return creds, nil
}

// Save writes credentials to credentials.toml with 0600 permissions.
func (m *Manager) Save(creds *Credentials) error {
	if creds == nil {
		return errors.New("cannot save nil credentials")
	}

	var buf bytes.Buffer
	encoder := toml.NewEncoder(&buf)
	if err := encoder.Encode(creds); err != nil {
		return fmt.Errorf("encoding credentials: %w", err)
	}

	if err := os.WriteFile(m.targetPath, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("writing credentials: %w", err)
	}

	return nil
}

// SetToken stores the API token.
func (m *Manager) SetToken(token string) error {
	creds, err := m.Load()
	if err != nil {
		return err
	}

	creds.Version = currentVersion
	creds.Auth.Token = token

	return m.Save(creds)
}

// GetToken returns the stored API token. Returns an empty string if no token
// is stored.
func (m *Manager) GetToken() (string, error) {
	creds, err := m.Load()
	if err != nil {
		return "", err
	}

	return creds.Auth.Token, nil
}

// RemoveToken deletes the stored token.
func (m *Manager) RemoveToken() error {
	creds, err := m.Load()
	if err != nil {
		return err
	}

	creds.Auth.Token = ""

	return m.Save(creds)
}

// HasToken reports whether a token is available from the environment or the
// credentials file.
func (m *Manager) HasToken() bool {
	if strings.TrimSpace(os.Getenv(EnvVar)) != "" {
		return true
	}

	token, err := m.GetToken()
	return err == nil && strings.TrimSpace(token) != ""
}

// GetTarget returns the resolved path to the credentials file.
func (m *Manager) GetTarget() string {
	return m.targetPath
}

// Token implements the assistant client's TokenProvider interface. The
// QUILL_API_TOKEN environment variable wins over the credentials file so
// scripted runs never touch disk state.
func (m *Manager) Token(_ context.Context) (string, error) {
	if env := strings.TrimSpace(os.Getenv(EnvVar)); env != "" {
		return env, nil
	}

	token, err := m.GetToken()
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(token), nil
}
