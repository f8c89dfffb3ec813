package plugin

import (
	"fmt"
	"runtime"
	"slices"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"go.uber.org/multierr"

	"github.com/joncooperworks/bat/wire"
)

// Plugin is the record of a loaded plugin. Its metadata is copied out of the
// module while loading; the module itself is only reachable through the
// Manager that loaded it.
type Plugin struct {
	name    string
	command string
	version string
	path    string
	args    []wire.Argument
	module  Module
}

// Name returns the display name.
func (p *Plugin) Name() string { return p.name }

// Command returns the dispatch key.
func (p *Plugin) Command() string { return p.command }

// Version returns the plugin version.
func (p *Plugin) Version() string { return p.version }

// Path returns the file the plugin was loaded from.
func (p *Plugin) Path() string { return p.path }

// Arguments returns the declared arguments in order.
func (p *Plugin) Arguments() []wire.Argument { return slices.Clone(p.args) }

// ArgumentNames returns the names of the declared arguments in order.
func (p *Plugin) ArgumentNames() []string {
	names := make([]string, len(p.args))
	for i, arg := range p.args {
		names[i] = arg.Name
	}
	return names
}

// Usage joins the usage strings of the declared arguments, one per line.
func (p *Plugin) Usage() string {
	usages := make([]string, len(p.args))
	for i, arg := range p.args {
		usages[i] = arg.Usage
	}
	return strings.Join(usages, "\n")
}

// Info is a display snapshot of a loaded plugin.
type Info struct {
	Name    string
	Version string
	Command string
	Usage   string
}

// Option configures a Manager.
type Option func(*registry)

// WithLogger sets the logger used for load and unload diagnostics.
func WithLogger(log zerolog.Logger) Option {
	return func(r *registry) {
		r.log = log
	}
}

// WithLoader makes the manager open files with the given extension using
// loader instead of the registered factory.
func WithLoader(extension string, loader Loader) Option {
	return func(r *registry) {
		r.loaders[strings.ToLower(extension)] = loader
	}
}

// Manager owns loaded plugins and their modules.
//
// Records are dropped before their modules are closed, and a module is
// closed only after every unload hook has returned. If a Manager becomes
// unreachable while plugins are still loaded, they are torn down
// automatically.
//
// Calls are serialised; the Manager offers no concurrency of its own.
type Manager struct {
	*registry
}

type registry struct {
	mu      sync.Mutex
	log     zerolog.Logger
	loaders map[string]Loader
	order   []string
	plugins map[string]*Plugin
	modules map[string]Module
	baseDir func() (string, error)
}

// NewManager creates an empty manager.
func NewManager(opts ...Option) *Manager {
	r := &registry{
		log:     zerolog.Nop(),
		loaders: make(map[string]Loader),
		plugins: make(map[string]*Plugin),
		modules: make(map[string]Module),
		baseDir: executableDir,
	}
	for _, opt := range opts {
		opt(r)
	}

	m := &Manager{registry: r}
	runtime.AddCleanup(m, func(r *registry) {
		if err := r.teardown(); err != nil {
			r.log.Error().Err(err).Msg("teardown of discarded plugin manager failed")
		}
	}, r)
	return m
}

// Load opens the plugin file at path and registers it.
//
// Loading is transactional: if anything fails after the file was opened,
// the module is closed and nothing stays registered. Commands must be
// unique; a plugin whose command is already registered is rejected with an
// error wrapping ErrDuplicateCommand and the first plugin stays in place.
func (m *Manager) Load(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.load(path)
}

func (r *registry) load(path string) (err error) {
	loader, err := r.loaderFor(path)
	if err != nil {
		return newLoadError(path, err)
	}

	module, err := loader.Open(path)
	if err != nil {
		return newLoadError(path, err)
	}
	defer func() {
		if err != nil {
			if closeErr := module.Close(); closeErr != nil {
				r.log.Warn().Err(closeErr).Str("path", path).Msg("failed to close rejected plugin")
			}
		}
	}()

	p, err := describe(path, module)
	if err != nil {
		return newLoadError(path, err)
	}
	if existing, ok := r.plugins[p.command]; ok {
		return newLoadError(path, fmt.Errorf("%w: %q is already provided by %s", ErrDuplicateCommand, p.command, existing.path))
	}

	r.modules[p.command] = module
	if err := module.OnLoad(); err != nil {
		delete(r.modules, p.command)
		return newLoadError(path, fmt.Errorf("load hook: %w", err))
	}
	r.plugins[p.command] = p
	r.order = append(r.order, p.command)

	r.log.Debug().Str("plugin", p.name).Str("version", p.version).Str("command", p.command).Str("path", path).Msg("loaded plugin")
	return nil
}

// describe reads the module's metadata into a new record.
func describe(path string, module Module) (*Plugin, error) {
	name, err := module.Name()
	if err != nil {
		return nil, fmt.Errorf("plugin_name: %w", err)
	}
	command, err := module.Command()
	if err != nil {
		return nil, fmt.Errorf("plugin_command: %w", err)
	}
	if command == "" || strings.ContainsAny(command, " \t\r\n") {
		return nil, fmt.Errorf("plugin_command: invalid command %q", command)
	}
	version, err := module.Version()
	if err != nil {
		return nil, fmt.Errorf("plugin_version: %w", err)
	}

	buf, err := module.Arguments()
	if err != nil {
		return nil, fmt.Errorf("plugin_arguments: %w", err)
	}
	args, err := wire.DecodeArguments(buf)
	if err != nil {
		return nil, fmt.Errorf("plugin_arguments: %w", err)
	}

	return &Plugin{
		name:    name,
		command: command,
		version: version,
		path:    path,
		args:    args,
		module:  module,
	}, nil
}

// Lookup returns the first plugin, in load order, whose command satisfies match.
func (m *Manager) Lookup(match func(command string) bool) (*Plugin, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, command := range m.order {
		if match(command) {
			return m.plugins[command], true
		}
	}
	return nil, false
}

// Get returns the plugin registered for command.
func (m *Manager) Get(command string) (*Plugin, bool) {
	return m.Lookup(func(c string) bool { return c == command })
}

// Plugins returns the loaded plugins in load order.
func (m *Manager) Plugins() []*Plugin {
	m.mu.Lock()
	defer m.mu.Unlock()
	plugins := make([]*Plugin, 0, len(m.order))
	for _, command := range m.order {
		plugins = append(plugins, m.plugins[command])
	}
	return plugins
}

// List returns a display snapshot of the loaded plugins in load order.
func (m *Manager) List() []Info {
	plugins := m.Plugins()
	infos := make([]Info, len(plugins))
	for i, p := range plugins {
		infos[i] = Info{Name: p.name, Version: p.version, Command: p.command, Usage: p.Usage()}
	}
	return infos
}

// Invoke runs p with params.
//
// It returns ErrInvocationFailure when the plugin reports no result, and an
// error wrapping *wire.DecodeError when the plugin's result cannot be
// decoded, which means host and plugin disagree on the contract.
func (m *Manager) Invoke(p *Plugin, params wire.Parameters) (*wire.Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if p == nil || m.plugins[p.command] != p {
		return nil, ErrUnloaded
	}

	input, err := wire.EncodeParameters(params)
	if err != nil {
		return nil, fmt.Errorf("plugin %s: %w", p.command, err)
	}

	output, err := p.module.Run(input)
	if err != nil {
		return nil, fmt.Errorf("plugin %s: run: %w", p.command, err)
	}
	if len(output) == 0 {
		return nil, ErrInvocationFailure
	}

	result, err := wire.DecodeResult(output)
	if err != nil {
		m.log.Error().Err(err).Str("command", p.command).Str("path", p.path).Msg("plugin returned a result that does not match the contract")
		return nil, fmt.Errorf("plugin %s: %w", p.command, err)
	}
	return result, nil
}

// Teardown unloads every plugin: all unload hooks run, in load order, before
// any module is closed. Calling it on an empty manager does nothing.
func (m *Manager) Teardown() error {
	return m.teardown()
}

func (r *registry) teardown() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.order) == 0 {
		return nil
	}

	order := r.order
	var err error
	for _, command := range order {
		r.log.Debug().Str("command", command).Msg("firing unload hook")
		if unloadErr := r.plugins[command].module.OnUnload(); unloadErr != nil {
			err = multierr.Append(err, fmt.Errorf("unload %s: %w", command, unloadErr))
		}
	}

	r.plugins = make(map[string]*Plugin)
	r.order = nil

	for _, command := range order {
		if closeErr := r.modules[command].Close(); closeErr != nil {
			err = multierr.Append(err, fmt.Errorf("close %s: %w", command, closeErr))
		}
		delete(r.modules, command)
	}
	return err
}
