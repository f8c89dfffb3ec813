package sdk

import (
	"errors"
	"fmt"
	"regexp"
	"slices"

	"github.com/joncooperworks/bat/wire"
)

var commandPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]*$`)

// Adapter implements the plugin contract for a Definition at byte level.
//
// Every method corresponds to one exported entry point. Buffers returned by
// Arguments and Run are fresh slices the caller owns; an empty slice from Run
// is the "no result" sentinel.
type Adapter struct {
	def       Definition
	arguments []byte
}

// NewAdapter validates def and prepares its encoded argument list.
func NewAdapter(def Definition) (*Adapter, error) {
	if def.Name == "" {
		return nil, errors.New("plugin name cannot be empty")
	}
	if !commandPattern.MatchString(def.Command) {
		return nil, fmt.Errorf("plugin command %q is not a CLI-safe token", def.Command)
	}
	if def.Handler == nil {
		return nil, fmt.Errorf("plugin %q has no handler", def.Command)
	}

	seen := make(map[string]bool, len(def.Arguments))
	for _, arg := range def.Arguments {
		if arg.Name == "" {
			return nil, fmt.Errorf("plugin %q declares an argument without a name", def.Command)
		}
		if seen[arg.Name] {
			return nil, fmt.Errorf("plugin %q declares argument %q twice", def.Command, arg.Name)
		}
		seen[arg.Name] = true
	}

	encoded, err := wire.EncodeArguments(def.Arguments)
	if err != nil {
		return nil, fmt.Errorf("plugin %q: %w", def.Command, err)
	}

	def.Arguments = slices.Clone(def.Arguments)
	return &Adapter{def: def, arguments: encoded}, nil
}

// Name returns the display name.
func (a *Adapter) Name() string { return a.def.Name }

// Command returns the dispatch key.
func (a *Adapter) Command() string { return a.def.Command }

// Version returns the version string.
func (a *Adapter) Version() string { return a.def.Version }

// Arguments returns the encoded argument descriptors.
func (a *Adapter) Arguments() []byte {
	return slices.Clone(a.arguments)
}

// OnLoad runs the definition's load hook.
func (a *Adapter) OnLoad() {
	if a.def.OnLoad != nil {
		a.def.OnLoad()
	}
}

// OnUnload runs the definition's unload hook.
func (a *Adapter) OnUnload() {
	if a.def.OnUnload != nil {
		a.def.OnUnload()
	}
}

// Run decodes the parameters, calls the handler and encodes its result.
// Any failure, including a handler panic, yields the empty sentinel.
func (a *Adapter) Run(input []byte) []byte {
	params, err := wire.DecodeParameters(input)
	if err != nil {
		a.logf("%s: %v", a.def.Command, err)
		return nil
	}

	result, err := a.call(params)
	if err != nil {
		a.logf("%s: %v", a.def.Command, err)
		return nil
	}
	if result == nil {
		return nil
	}
	if result.Filename == "" {
		a.logf("%s: result has no filename", a.def.Command)
		return nil
	}

	out, err := wire.EncodeResult(result)
	if err != nil {
		a.logf("%s: %v", a.def.Command, err)
		return nil
	}
	return out
}

func (a *Adapter) call(params wire.Parameters) (result *wire.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			result, err = nil, fmt.Errorf("handler panicked: %v", r)
		}
	}()
	return a.def.Handler(params)
}

func (a *Adapter) logf(format string, args ...interface{}) {
	if a.def.Logf != nil {
		a.def.Logf(format, args...)
	}
}
