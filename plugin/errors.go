package plugin

import (
	"errors"
	"fmt"
)

var (
	// ErrInvocationFailure is returned by Invoke when the plugin reported
	// that it produced no result.
	ErrInvocationFailure = errors.New("plugin produced no output")

	// ErrDuplicateCommand is wrapped by the LoadError of a plugin whose
	// command is already provided by a loaded plugin.
	ErrDuplicateCommand = errors.New("duplicate plugin command")

	// ErrMissingSymbol is wrapped when a module lacks a contract entry point.
	ErrMissingSymbol = errors.New("missing contract symbol")

	// ErrUnloaded is returned when invoking a plugin that is no longer
	// registered with the manager.
	ErrUnloaded = errors.New("plugin is not loaded")
)

// SymbolError reports a contract entry point a module does not export.
type SymbolError struct {
	Symbol string
	Err    error
}

func (e *SymbolError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("the %q symbol wasn't found", e.Symbol)
	}
	return fmt.Sprintf("the %q symbol wasn't found: %v", e.Symbol, e.Err)
}

func (e *SymbolError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrMissingSymbol}
	}
	return []error{ErrMissingSymbol, e.Err}
}

// LoadError reports a plugin file that could not be loaded.
type LoadError struct {
	// Path is the plugin file.
	Path string
	// Symbol names the missing entry point, if that was the cause.
	Symbol string
	Err    error
}

func newLoadError(path string, err error) *LoadError {
	le := &LoadError{Path: path, Err: err}
	var symErr *SymbolError
	if errors.As(err, &symErr) {
		le.Symbol = symErr.Symbol
	}
	return le
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load plugin %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}
