package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joncooperworks/bat/credentials"
)

func (a *app) newCaveCommand() *cobra.Command {
	cave := &cobra.Command{
		Use:   "cave",
		Short: "Welcome to the Batcave",
		Args:  cobra.NoArgs,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, newStyles(out).batSignal("Welcome to the Batcave"))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Usage()
		},
	}
	cave.AddCommand(a.newCaveListCommand(), a.newTokenCommand())
	return cave
}

func (a *app) newCaveListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the available plugins",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			s := newStyles(out)
			fmt.Fprintln(out, "Available items:")
			for _, info := range a.host.List() {
				fmt.Fprintf(out, "\t%s (%s): %s\n", s.name.Render(info.Name), s.command.Render(info.Command), info.Version)
			}
			fmt.Fprintln(out, s.muted.Render(fmt.Sprintf("plugins: %s  output: %s  language: %s",
				a.cfg.PluginDir, a.cfg.OutputDir, a.cfg.Language)))
		},
	}
}

func (a *app) newTokenCommand() *cobra.Command {
	token := &cobra.Command{
		Use:   "token",
		Short: "Manage plugin credentials in the OS keyring",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Usage()
		},
	}

	token.AddCommand(&cobra.Command{
		Use:   "set <id> [secret]",
		Short: "Store a credential; the secret is read from stdin when omitted",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.store()
			if err != nil {
				return err
			}
			var secret string
			if len(args) == 2 {
				secret = args[1]
			} else if secret, err = readSecret(cmd.InOrStdin()); err != nil {
				return err
			}
			if err := store.Set(args[0], secret); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Stored credential %q\n", args[0])
			return nil
		},
	})

	token.AddCommand(&cobra.Command{
		Use:   "get <id>",
		Short: "Print a stored credential",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.store()
			if err != nil {
				return err
			}
			secret, err := store.Get(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), secret)
			return nil
		},
	})

	token.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List stored credential ids",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.store()
			if err != nil {
				return err
			}
			ids, err := store.List()
			if err != nil {
				return err
			}
			for _, id := range ids {
				fmt.Fprintln(cmd.OutOrStdout(), id)
			}
			return nil
		},
	})
	return token
}

// readSecret reads the first line of r.
func readSecret(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read secret: %w", err)
	}
	secret := strings.TrimRight(line, "\r\n")
	if secret == "" {
		return "", errors.New("empty secret")
	}
	return secret, nil
}

// store opens the credential store on first use.
func (a *app) store() (credentials.Store, error) {
	if a.credentials == nil {
		s, err := a.openStore()
		if err != nil {
			return nil, fmt.Errorf("failed to open credential store: %w", err)
		}
		a.credentials = s
	}
	return a.credentials, nil
}
