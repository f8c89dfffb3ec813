package plugin

import (
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/joncooperworks/bat/gherkin"
	"github.com/joncooperworks/bat/sdk"
	"github.com/joncooperworks/bat/wire"
)

const fakeExt = ".fake"

// recorder collects lifecycle events from fake modules. Cleanup of a
// discarded Manager runs on another goroutine, hence the lock.
type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) add(format string, args ...interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, fmt.Sprintf(format, args...))
}

func (r *recorder) Events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

// fakeModule serves the plugin contract from an sdk.Adapter in process.
type fakeModule struct {
	adapter *sdk.Adapter
	rec     *recorder

	// arguments replaces the adapter's argument buffer when set.
	arguments []byte
	// output replaces the result of Run when set.
	output []byte
	// loadErr makes OnLoad fail.
	loadErr error

	closed bool
}

func (fm *fakeModule) Name() (string, error)    { return fm.adapter.Name(), nil }
func (fm *fakeModule) Command() (string, error) { return fm.adapter.Command(), nil }
func (fm *fakeModule) Version() (string, error) { return fm.adapter.Version(), nil }

func (fm *fakeModule) Arguments() ([]byte, error) {
	if fm.arguments != nil {
		return fm.arguments, nil
	}
	return fm.adapter.Arguments(), nil
}

func (fm *fakeModule) Run(input []byte) ([]byte, error) {
	fm.rec.add("run:%s", fm.adapter.Command())
	if fm.output != nil {
		return fm.output, nil
	}
	return fm.adapter.Run(input), nil
}

func (fm *fakeModule) OnLoad() error {
	fm.rec.add("load:%s", fm.adapter.Command())
	if fm.loadErr != nil {
		return fm.loadErr
	}
	fm.adapter.OnLoad()
	return nil
}

func (fm *fakeModule) OnUnload() error {
	fm.rec.add("unload:%s", fm.adapter.Command())
	fm.adapter.OnUnload()
	return nil
}

func (fm *fakeModule) Close() error {
	fm.rec.add("close:%s", fm.adapter.Command())
	fm.closed = true
	return nil
}

// fakeLoader opens fake modules by file base name.
type fakeLoader struct {
	modules map[string]*fakeModule
	errs    map[string]error
}

func newFakeLoader() *fakeLoader {
	return &fakeLoader{
		modules: make(map[string]*fakeModule),
		errs:    make(map[string]error),
	}
}

func (fl *fakeLoader) Open(path string) (Module, error) {
	base := filepath.Base(path)
	if err, ok := fl.errs[base]; ok {
		return nil, err
	}
	fm, ok := fl.modules[base]
	if !ok {
		return nil, fmt.Errorf("no fake module for %s", base)
	}
	return fm, nil
}

// add registers a fake module served as <command>.fake.
func (fl *fakeLoader) add(t *testing.T, rec *recorder, def sdk.Definition) *fakeModule {
	t.Helper()
	adapter, err := sdk.NewAdapter(def)
	if err != nil {
		t.Fatalf("NewAdapter() error = %v", err)
	}
	fm := &fakeModule{adapter: adapter, rec: rec}
	fl.modules[def.Command+fakeExt] = fm
	return fm
}

func definition(command string, handler sdk.Handler) sdk.Definition {
	return sdk.Definition{
		Name:    "Plugin " + command,
		Command: command,
		Version: "0.1.0",
		Arguments: []wire.Argument{
			{Name: "INPUT", Usage: "<INPUT> 'Sets the input file to use'"},
			{Name: "verbose", Usage: "-v, --verbose 'Enables verbose output'"},
		},
		Handler: handler,
	}
}

// echoHandler produces a feature named after the INPUT parameter.
func echoHandler(params wire.Parameters) (*wire.Result, error) {
	return &wire.Result{
		Filename: "echo.feature",
		Feature:  gherkin.NewFeature(params["INPUT"]),
	}, nil
}

func newTestManager(loader Loader) *Manager {
	return NewManager(
		WithLogger(zerolog.Nop()),
		WithLoader(fakeExt, loader),
	)
}
