package main

import (
	"fmt"
	"os"

	"github.com/joncooperworks/bat/internal/cli"
	"github.com/joncooperworks/bat/internal/config"
	"github.com/joncooperworks/bat/internal/logx"
	"github.com/joncooperworks/bat/plugin"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return 1
	}
	logx.Configure(cfg.LogLevel)

	pm := plugin.NewManager(plugin.WithLogger(logx.Component("plugin")))
	defer func() {
		if err := pm.Teardown(); err != nil {
			fmt.Fprintf(os.Stderr, "Error unloading plugins: %v\n", err)
		}
	}()

	failures, err := pm.Discover(cfg.PluginDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading plugins from %s: %v\n", cfg.PluginDir, err)
		return 1
	}
	for _, failure := range failures {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", failure)
	}

	root := cli.NewRootCommand(pm, cfg, cli.WithLogger(logx.Component("cli")))
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
