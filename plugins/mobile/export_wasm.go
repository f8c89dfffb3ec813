//go:build wasip1

package main

import (
	"github.com/rs/zerolog"

	"github.com/joncooperworks/bat/sdk/wasm"
)

func newLogger() zerolog.Logger {
	return zerolog.New(wasm.LogWriter{}).With().Str("component", "mobile").Logger()
}
