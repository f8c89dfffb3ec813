// Package credentials stores secrets that plugins need, such as API tokens,
// in the operating system's keystore.
package credentials

import "errors"

// ErrNotFound is returned by Get when no secret is stored under the id.
var ErrNotFound = errors.New("credential not found")

// Store gives access to secrets kept in an OS keystore.
type Store interface {
	// Get retrieves the secret stored under id.
	Get(id string) (string, error)
	// Set stores secret under id, replacing any previous value.
	Set(id, secret string) error
	// List returns the ids of all stored secrets.
	List() ([]string, error)
}
