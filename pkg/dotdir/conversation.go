package dotdir

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	conversationFile = "conversation.json"
)

// ConversationState represents the persisted conversation state: the
// server-side conversation the user last talked to, per assistant. The
// conversation itself lives on the server; only its identifier is kept here.
type ConversationState struct {
	// Assistant is the assistant id the conversation belongs to.
	Assistant string `json:"assistant"`

	// ConversationID is the server-assigned conversation identifier.
	ConversationID string `json:"conversation_id"`

	// UpdatedAt is when the state was last written.
	UpdatedAt time.Time `json:"updated_at"`
}

// LoadConversationState loads the state from a target .quill/conversation.json.
// Returns nil, nil if no state exists (fresh conversation).
// If overrideDir is non-empty, it is used instead of the default ~/.quill/ location.
func (m *Manager) LoadConversationState(overrideDir string) (*ConversationState, error) {
	dir, err := m.Target(overrideDir)
	if err != nil {
		return nil, err
	}

	path := filepath.Join(dir, conversationFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading conversation state: %w", err)
	}

	state := &ConversationState{}
	if err := json.Unmarshal(data, state); err != nil {
		return nil, fmt.Errorf("parsing conversation state: %w", err)
	}

	return state, nil
}

// SaveConversationState persists the state to a target .quill/conversation.json.
func (m *Manager) SaveConversationState(state *ConversationState, overrideDir string) error {
	if state == nil {
		return errors.New("cannot save nil conversation state")
	}

	dir, err := m.Target(overrideDir)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling conversation state: %w", err)
	}

	path := filepath.Join(dir, conversationFile)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing conversation state: %w", err)
	}

	return nil
}

// ClearConversationState removes the conversation state file so the next chat
// session starts a fresh conversation. Returns nil if the file doesn't exist
// (already cleared).
func (m *Manager) ClearConversationState(overrideDir string) error {
	dir, err := m.Target(overrideDir)
	if err != nil {
		return err
	}

	path := filepath.Join(dir, conversationFile)
	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("removing conversation state: %w", err)
	}

	return nil
}
