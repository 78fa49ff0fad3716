// Package secrets stores the generation API key.
// It uses the OS keychain (macOS Keychain, Linux Secret Service) when available,
// with a file-based fallback for environments without a keychain (CI, containers).
package secrets

import (
	"errors"
	"fmt"
)

// serviceName is the keychain service identifier for all nanogen secrets.
const serviceName = "nanogen"

// SecretStore provides credential storage.
type SecretStore interface {
	// Get retrieves a secret by key. Returns ErrNotFound if not present.
	Get(key string) (string, error)
	// Set stores a secret under the given key, replacing any existing value.
	Set(key, value string) error
	// Delete removes a secret. No error if the key doesn't exist.
	Delete(key string) error
}

// ErrNotFound is returned when a secret key does not exist.
var ErrNotFound = errors.New("secret not found")

// Backend selects where secrets live.
type Backend string

const (
	BackendAuto     Backend = "auto"
	BackendKeychain Backend = "keychain"
	BackendFile     Backend = "file"
)

// ParseBackend validates a configured backend name. Empty means auto.
func ParseBackend(s string) (Backend, error) {
	switch Backend(s) {
	case "", BackendAuto:
		return BackendAuto, nil
	case BackendKeychain, BackendFile:
		return Backend(s), nil
	}
	return "", fmt.Errorf("unknown secret backend %q (want auto, keychain or file)", s)
}

// New returns a SecretStore for the requested backend. For BackendAuto it
// probes the OS keychain and falls back to a file under dir.
func New(dir string, backend Backend) SecretStore {
	switch backend {
	case BackendFile:
		return newFileStore(dir)
	case BackendKeychain:
		return newKeychainStore()
	}

	ks := newKeychainStore()
	probeKey := "__nanogen_probe__"
	if err := ks.Set(probeKey, "ok"); err != nil {
		return newFileStore(dir)
	}
	_ = ks.Delete(probeKey)
	return ks
}

// Describe names the concrete store for status output.
func Describe(s SecretStore) string {
	switch s.(type) {
	case *keychainStore:
		return "OS keychain"
	case *fileStore:
		return "file"
	default:
		return "custom"
	}
}
