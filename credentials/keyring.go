package credentials

import (
	"errors"
	"fmt"
	"sort"

	"github.com/99designs/keyring"
)

// ServiceName is the keyring service every bat secret is stored under.
const ServiceName = "bat"

// DefaultKeyringDir is where the file backend keeps its entries when
// BAT_KEYRING_DIR is unset.
const DefaultKeyringDir = "~/.bat/keyring"

// KeyringStore implements Store on top of a 99designs/keyring backend.
type KeyringStore struct {
	ring keyring.Keyring
}

func openKeyring(cfg keyring.Config) (Store, error) {
	ring, err := keyring.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open keyring: %w", err)
	}
	return newKeyringStore(ring), nil
}

func newKeyringStore(ring keyring.Keyring) *KeyringStore {
	return &KeyringStore{ring: ring}
}

// keyringConfig configures the platform keyring. BAT_KEYCHAIN selects a
// macOS keychain other than the login keychain.
func keyringConfig(getenv func(string) string) keyring.Config {
	return keyring.Config{
		ServiceName:              ServiceName,
		KeychainName:             getenv("BAT_KEYCHAIN"),
		KeychainTrustApplication: true,
		LibSecretCollectionName:  ServiceName,
		KeyCtlScope:              "user",
		WinCredPrefix:            ServiceName,
	}
}

// fileConfig configures the encrypted file backend in BAT_KEYRING_DIR. The
// password comes from BAT_KEYRING_PASSWORD or is prompted for.
func fileConfig(getenv func(string) string) keyring.Config {
	cfg := keyringConfig(getenv)
	cfg.AllowedBackends = []keyring.BackendType{keyring.FileBackend}
	cfg.FileDir = getenv("BAT_KEYRING_DIR")
	if cfg.FileDir == "" {
		cfg.FileDir = DefaultKeyringDir
	}
	cfg.FilePasswordFunc = keyring.TerminalPrompt
	if password := getenv("BAT_KEYRING_PASSWORD"); password != "" {
		cfg.FilePasswordFunc = keyring.FixedStringPrompt(password)
	}
	return cfg
}

// Get retrieves the secret stored under id.
func (k *KeyringStore) Get(id string) (string, error) {
	item, err := k.ring.Get(id)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "", fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return "", fmt.Errorf("failed to get credential from keyring: %w", err)
	}
	return string(item.Data), nil
}

// Set stores secret under id.
func (k *KeyringStore) Set(id, secret string) error {
	if id == "" {
		return errors.New("credential id must not be empty")
	}
	err := k.ring.Set(keyring.Item{
		Key:         id,
		Data:        []byte(secret),
		Label:       ServiceName + ": " + id,
		Description: "bat plugin credential",
	})
	if err != nil {
		return fmt.Errorf("failed to store credential in keyring: %w", err)
	}
	return nil
}

// List returns the stored ids, sorted.
func (k *KeyringStore) List() ([]string, error) {
	keys, err := k.ring.Keys()
	if err != nil {
		return nil, fmt.Errorf("failed to list credentials from keyring: %w", err)
	}
	sort.Strings(keys)
	return keys, nil
}
