package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joncooperworks/bat/gherkin"
	"github.com/joncooperworks/bat/plugin"
	"github.com/joncooperworks/bat/wire"
)

// ErrNoOutput is returned when a plugin ran but produced no feature.
var ErrNoOutput = errors.New("no output produced")

// reserved names belong to the root and cobra's built-in flags.
var (
	reservedLong  = map[string]bool{"output": true, "help": true}
	reservedShort = map[string]bool{"o": true, "h": true}
	builtinNames  = map[string]bool{"man": true, "cave": true, "help": true}
)

func (a *app) newPluginCommand(p *plugin.Plugin) (*cobra.Command, error) {
	if builtinNames[p.Command()] {
		return nil, fmt.Errorf("command %q is reserved", p.Command())
	}

	var args []Arg
	for _, decl := range p.Arguments() {
		arg, err := ParseUsage(decl.Usage)
		if err != nil {
			return nil, fmt.Errorf("argument %s: %w", decl.Name, err)
		}
		// The descriptor name is the parameter key the plugin expects.
		arg.Name = decl.Name
		args = append(args, arg)
	}

	use := []string{p.Command()}
	var positional []Arg
	for _, arg := range args {
		if !arg.Positional {
			continue
		}
		if n := len(positional); n > 0 && positional[n-1].Multiple {
			return nil, fmt.Errorf("argument %s follows a repeated argument", arg.Name)
		}
		positional = append(positional, arg)
		use = append(use, positionalUse(arg))
	}

	cmd := &cobra.Command{
		Use:     strings.Join(use, " "),
		Short:   p.Name(),
		Version: p.Version(),
		Args:    positionalArgs(positional),
		RunE: func(cmd *cobra.Command, values []string) error {
			return a.runPlugin(cmd, p, args, values)
		},
	}

	for _, arg := range args {
		if arg.Positional {
			continue
		}
		long := arg.Long
		if long == "" {
			long = arg.Name
		}
		if reservedLong[long] || reservedShort[arg.Short] {
			return nil, fmt.Errorf("argument %s uses a reserved flag", arg.Name)
		}
		if cmd.Flags().Lookup(long) != nil || (arg.Short != "" && cmd.Flags().ShorthandLookup(arg.Short) != nil) {
			return nil, fmt.Errorf("argument %s redefines a flag", arg.Name)
		}
		switch {
		case !arg.TakesValue():
			cmd.Flags().BoolP(long, arg.Short, false, arg.Help)
		case arg.Multiple:
			cmd.Flags().StringSliceP(long, arg.Short, nil, arg.Help)
		default:
			cmd.Flags().StringP(long, arg.Short, "", arg.Help)
		}
		if arg.Required {
			if err := cmd.MarkFlagRequired(long); err != nil {
				return nil, err
			}
		}
	}
	return cmd, nil
}

func positionalUse(arg Arg) string {
	use := arg.Name
	if arg.Multiple {
		use += "..."
	}
	if arg.Required {
		return "<" + use + ">"
	}
	return "[" + use + "]"
}

func positionalArgs(positional []Arg) cobra.PositionalArgs {
	required := 0
	for _, arg := range positional {
		if arg.Required {
			required++
		}
	}
	if n := len(positional); n > 0 && positional[n-1].Multiple {
		return cobra.MinimumNArgs(required)
	}
	return cobra.RangeArgs(required, len(positional))
}

// parameters collects the values the user gave. Arguments that were not
// given are left out; flags become "true".
func parameters(cmd *cobra.Command, args []Arg, values []string) (wire.Parameters, error) {
	params := wire.Parameters{}
	i := 0
	for _, arg := range args {
		if arg.Positional {
			if i >= len(values) {
				continue
			}
			if arg.Multiple {
				params[arg.Name] = strings.Join(values[i:], " ")
				i = len(values)
			} else {
				params[arg.Name] = values[i]
				i++
			}
			continue
		}

		long := arg.Long
		if long == "" {
			long = arg.Name
		}
		if !cmd.Flags().Changed(long) {
			continue
		}
		switch {
		case !arg.TakesValue():
			on, err := cmd.Flags().GetBool(long)
			if err != nil {
				return nil, err
			}
			if on {
				params[arg.Name] = "true"
			}
		case arg.Multiple:
			vals, err := cmd.Flags().GetStringSlice(long)
			if err != nil {
				return nil, err
			}
			params[arg.Name] = strings.Join(vals, ",")
		default:
			val, err := cmd.Flags().GetString(long)
			if err != nil {
				return nil, err
			}
			params[arg.Name] = val
		}
	}
	return params, nil
}

func (a *app) runPlugin(cmd *cobra.Command, p *plugin.Plugin, args []Arg, values []string) error {
	params, err := parameters(cmd, args, values)
	if err != nil {
		return err
	}

	a.log.Trace().Str("plugin", p.Name()).Msg("executing")
	result, err := a.host.Invoke(p, params)
	if errors.Is(err, plugin.ErrInvocationFailure) {
		return ErrNoOutput
	}
	if err != nil {
		return err
	}

	path, err := writeFeature(a.output, result)
	if err != nil {
		return err
	}
	a.log.Info().Str("plugin", p.Command()).Str("path", path).Msg("feature written")
	return nil
}

// writeFeature renders the result and writes it below dir.
func writeFeature(dir string, result *wire.Result) (string, error) {
	if !filepath.IsLocal(result.Filename) {
		return "", fmt.Errorf("plugin returned unsafe filename %q", result.Filename)
	}
	text := gherkin.Render(result.Feature)

	path := filepath.Join(dir, result.Filename)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return "", fmt.Errorf("failed to write feature: %w", err)
	}
	return path, nil
}
