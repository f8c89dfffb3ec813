package issues

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/joncooperworks/bat/wire"
)

// Arguments declares the arguments of the nets plugin.
var Arguments = []wire.Argument{
	{Name: "REPO", Usage: "<REPO> 'Github repo'"},
	{Name: "TOKEN", Usage: "[TOKEN] 'Github personal token. Override the GITHUB_TOKEN env variable'"},
	{Name: "number", Usage: "-n, --number=[number] 'Issue number'"},
}

// TokenID is the credential id the GitHub token is stored under.
const TokenID = "github"

// Secrets looks up stored credentials.
type Secrets interface {
	Get(id string) (string, error)
}

// Options selects the issues to turn into scenarios.
type Options struct {
	Owner string
	Repo  string
	Token string
	// Number restricts the output to one issue when non-zero.
	Number int
}

// ParseOptions reads the plugin parameters. The token comes from TOKEN,
// then the GITHUB_TOKEN environment variable, then the credential store.
// secrets may be nil.
func ParseOptions(params wire.Parameters, getenv func(string) string, secrets Secrets) (Options, error) {
	var opts Options

	owner, repo, ok := strings.Cut(params["REPO"], "/")
	if !ok || owner == "" || repo == "" || strings.Contains(repo, "/") {
		return Options{}, fmt.Errorf("REPO must be owner/name, got %q", params["REPO"])
	}
	opts.Owner, opts.Repo = owner, repo

	if n := params["number"]; n != "" {
		number, err := strconv.Atoi(n)
		if err != nil || number <= 0 {
			return Options{}, fmt.Errorf("invalid issue number %q", n)
		}
		opts.Number = number
	}

	opts.Token = params["TOKEN"]
	if opts.Token == "" {
		opts.Token = getenv("GITHUB_TOKEN")
	}
	if opts.Token == "" && secrets != nil {
		if token, err := secrets.Get(TokenID); err == nil {
			opts.Token = token
		}
	}
	if opts.Token == "" {
		return Options{}, errors.New("no GitHub token: pass TOKEN, set GITHUB_TOKEN or run `bat cave token set github`")
	}
	return opts, nil
}
