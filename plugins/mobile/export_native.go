//go:build !wasip1

package main

import (
	"os"

	"github.com/rs/zerolog"

	"github.com/joncooperworks/bat/internal/logx"
	_ "github.com/joncooperworks/bat/sdk/native"
)

func newLogger() zerolog.Logger {
	logx.Configure(os.Getenv("BAT_LOG"))
	return logx.Component("mobile")
}
