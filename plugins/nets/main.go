// Command nets is a bat plugin that turns the open issues of a GitHub
// repository into a feature file, one scenario per issue.
//
// Build it as a shared library next to the bat binary:
//
//	go build -buildmode=c-shared -o libnets.so ./plugins/nets
//
// or as a WebAssembly module:
//
//	GOOS=wasip1 GOARCH=wasm go build -buildmode=c-shared -o nets.wasm ./plugins/nets
package main

import (
	"os"

	"github.com/rs/zerolog"

	"github.com/joncooperworks/bat/plugins/nets/issues"
	"github.com/joncooperworks/bat/sdk"
	"github.com/joncooperworks/bat/wire"
)

var log = zerolog.Nop()

func init() {
	sdk.Register(sdk.Definition{
		Name:      "Nets",
		Command:   "nets",
		Version:   "0.1.0",
		Arguments: issues.Arguments,
		Handler: func(params wire.Parameters) (*wire.Result, error) {
			r := newRunner()
			r.Getenv = os.Getenv
			r.Log = &log
			return r.Handle(params)
		},
		OnLoad: func() {
			log = newLogger()
			log.Debug().Msg("🕸 Nets loaded")
		},
		OnUnload: func() {
			log.Debug().Msg("🕸 Nets unloaded")
		},
		Logf: func(format string, args ...interface{}) {
			log.Error().Msgf(format, args...)
		},
	})
}

func main() {}
