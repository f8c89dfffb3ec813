//go:build wasip1

package main

import (
	"github.com/rs/zerolog"

	"github.com/joncooperworks/bat/plugins/nets/issues"
	"github.com/joncooperworks/bat/sdk/wasm"
)

func newLogger() zerolog.Logger {
	return zerolog.New(wasm.LogWriter{}).With().Str("component", "nets").Logger()
}

func newRunner() *issues.Runner {
	return &issues.Runner{HTTPClient: wasm.HTTPClient()}
}
