//go:build wasip1

package wasm

import (
	"strings"

	"github.com/extism/go-pdk"
	"github.com/rs/zerolog"
)

// LogWriter sends zerolog output to the host logger at the matching level.
type LogWriter struct{}

func (LogWriter) Write(p []byte) (int, error) {
	pdk.Log(pdk.LogInfo, strings.TrimRight(string(p), "\n"))
	return len(p), nil
}

func (LogWriter) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	msg := strings.TrimRight(string(p), "\n")
	switch level {
	case zerolog.TraceLevel, zerolog.DebugLevel:
		pdk.Log(pdk.LogDebug, msg)
	case zerolog.WarnLevel:
		pdk.Log(pdk.LogWarn, msg)
	case zerolog.ErrorLevel, zerolog.FatalLevel, zerolog.PanicLevel:
		pdk.Log(pdk.LogError, msg)
	default:
		pdk.Log(pdk.LogInfo, msg)
	}
	return len(p), nil
}
