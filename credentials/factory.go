package credentials

import (
	"fmt"
	"os"
	"sort"
	"strings"
)

// Backend names accepted in BAT_CREDENTIALS.
const (
	// BackendKeyring is the platform keyring: Keychain, Secret Service or
	// keyctl, Credential Manager.
	BackendKeyring = "keyring"
	// BackendFile is an encrypted file store for machines without a keyring
	// daemon.
	BackendFile = "file"
)

var backends = map[string]func(getenv func(string) string) (Store, error){
	BackendKeyring: func(getenv func(string) string) (Store, error) {
		return openKeyring(keyringConfig(getenv))
	},
	BackendFile: func(getenv func(string) string) (Store, error) {
		return openKeyring(fileConfig(getenv))
	},
}

// Backends returns the names of the available backends, sorted.
func Backends() []string {
	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewStore opens the credential store selected by the environment.
//
// BAT_CREDENTIALS names the backend. When it is unset, BAT_KEYRING_DIR
// selects the file backend and the platform keyring is used otherwise.
func NewStore() (Store, error) {
	return newStore(os.Getenv)
}

func newStore(getenv func(string) string) (Store, error) {
	name := backendName(getenv)
	open, ok := backends[name]
	if !ok {
		return nil, fmt.Errorf("unknown credential backend %q (want one of %s)", name, strings.Join(Backends(), ", "))
	}
	return open(getenv)
}

func backendName(getenv func(string) string) string {
	if name := strings.ToLower(strings.TrimSpace(getenv("BAT_CREDENTIALS"))); name != "" {
		return name
	}
	if getenv("BAT_KEYRING_DIR") != "" {
		return BackendFile
	}
	return BackendKeyring
}
