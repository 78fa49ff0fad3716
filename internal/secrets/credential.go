package secrets

import (
	"errors"
	"strings"
)

// APIKeyName is the fixed identifier the Gemini API key is stored under.
const APIKeyName = "gemini/api-key"

// CredentialStore reads and writes the single API key held by a SecretStore.
// Nothing is validated and nothing expires.
type CredentialStore struct {
	store SecretStore
}

// NewCredentialStore wraps store.
func NewCredentialStore(store SecretStore) *CredentialStore {
	return &CredentialStore{store: store}
}

// Get returns the saved key, or "" when none is saved.
func (c *CredentialStore) Get() (string, error) {
	val, err := c.store.Get(APIKeyName)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	return val, err
}

// Set saves value, replacing any previous key. Surrounding whitespace from
// paste is dropped.
func (c *CredentialStore) Set(value string) error {
	return c.store.Set(APIKeyName, strings.TrimSpace(value))
}

// Clear removes the saved key.
func (c *CredentialStore) Clear() error {
	return c.store.Delete(APIKeyName)
}

// Mask renders a key for display, keeping only its last four characters.
func Mask(key string) string {
	if key == "" {
		return "(not set)"
	}
	if len(key) <= 4 {
		return strings.Repeat("•", len(key))
	}
	return strings.Repeat("•", 8) + key[len(key)-4:]
}
