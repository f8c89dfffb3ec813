//go:build !wasip1

package main

import (
	"os"

	"github.com/rs/zerolog"

	"github.com/joncooperworks/bat/credentials"
	"github.com/joncooperworks/bat/internal/logx"
	"github.com/joncooperworks/bat/plugins/nets/issues"
	_ "github.com/joncooperworks/bat/sdk/native"
)

func newLogger() zerolog.Logger {
	logx.Configure(os.Getenv("BAT_LOG"))
	return logx.Component("nets")
}

func newRunner() *issues.Runner {
	r := &issues.Runner{}
	store, err := credentials.NewStore()
	if err != nil {
		log.Debug().Err(err).Msg("credential store unavailable")
		return r
	}
	r.Secrets = store
	return r
}
