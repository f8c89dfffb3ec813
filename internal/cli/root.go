// Package cli builds the bat command line from the loaded plugins.
package cli

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/joncooperworks/bat/credentials"
	"github.com/joncooperworks/bat/internal/config"
	"github.com/joncooperworks/bat/plugin"
	"github.com/joncooperworks/bat/wire"
)

// Host runs plugins. *plugin.Manager implements it.
type Host interface {
	Plugins() []*plugin.Plugin
	List() []plugin.Info
	Invoke(p *plugin.Plugin, params wire.Parameters) (*wire.Result, error)
}

// Option configures the command tree.
type Option func(*app)

// WithLogger sets the logger for command diagnostics.
func WithLogger(log zerolog.Logger) Option {
	return func(a *app) {
		a.log = log
	}
}

// WithStore sets how the credential store is opened.
func WithStore(open func() (credentials.Store, error)) Option {
	return func(a *app) {
		a.openStore = open
	}
}

type app struct {
	host        Host
	cfg         config.Config
	log         zerolog.Logger
	openStore   func() (credentials.Store, error)
	credentials credentials.Store
	output      string
}

// NewRootCommand builds the bat command with one subcommand per plugin.
// Plugins whose usage strings cannot be turned into a command are skipped
// with a warning.
func NewRootCommand(host Host, cfg config.Config, opts ...Option) *cobra.Command {
	a := &app{
		host:      host,
		cfg:       cfg,
		log:       zerolog.Nop(),
		openStore: credentials.NewStore,
	}
	for _, opt := range opts {
		opt(a)
	}

	root := &cobra.Command{
		Use:   "bat",
		Short: "Behaviour-driven test scaffolding",
		Long: `bat turns specifications into Gherkin feature files.

Each subcommand is provided by a plugin loaded from the plugin directory.`,
		Args:          cobra.ArbitraryArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	root.PersistentFlags().StringVarP(&a.output, "output", "o", cfg.OutputDir, "directory that receives the generated feature file")

	root.AddCommand(newManCommand(), a.newCaveCommand())
	for _, p := range host.Plugins() {
		cmd, err := a.newPluginCommand(p)
		if err != nil {
			a.log.Warn().Err(err).Str("command", p.Command()).Str("path", p.Path()).Msg("skipping plugin command")
			continue
		}
		root.AddCommand(cmd)
	}
	return root
}
