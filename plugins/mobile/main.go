// Command mobile is a bat plugin that generates API test features from
// OpenAPI 3 and Swagger 2 documents.
//
// Build it as a shared library next to the bat binary:
//
//	go build -buildmode=c-shared -o libmobile.so ./plugins/mobile
//
// or as a WebAssembly module:
//
//	GOOS=wasip1 GOARCH=wasm go build -buildmode=c-shared -o mobile.wasm ./plugins/mobile
package main

import (
	"github.com/rs/zerolog"

	"github.com/joncooperworks/bat/plugins/mobile/generator"
	"github.com/joncooperworks/bat/sdk"
)

var log = zerolog.Nop()

func init() {
	sdk.Register(sdk.Definition{
		Name:      "Mobile",
		Command:   "mobile",
		Version:   "0.1.0",
		Arguments: generator.Arguments,
		Handler:   generator.Handle,
		OnLoad: func() {
			log = newLogger()
			log.Debug().Msg("🔥 Mobile loaded")
		},
		OnUnload: func() {
			log.Debug().Msg("🔥 Mobile unloaded")
		},
		Logf: func(format string, args ...interface{}) {
			log.Error().Msgf(format, args...)
		},
	})
}

func main() {}
