// Package issues turns the open issues of a GitHub repository into a Gherkin
// feature. Each issue becomes a scenario whose steps are the Gherkin lines
// of the issue body.
package issues

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/go-github/v66/github"
	"github.com/rs/zerolog"

	"github.com/joncooperworks/bat/gherkin"
	"github.com/joncooperworks/bat/wire"
)

// Filename is the name of the generated feature file.
const Filename = "github.feature"

const perPage = 100

// Fetch lists the open issues of the repository, following every page.
// Pull requests are skipped.
func Fetch(ctx context.Context, client *github.Client, opts Options) ([]*github.Issue, error) {
	list := &github.IssueListByRepoOptions{
		State:       "open",
		ListOptions: github.ListOptions{PerPage: perPage},
	}

	var issues []*github.Issue
	for {
		page, resp, err := client.Issues.ListByRepo(ctx, opts.Owner, opts.Repo, list)
		if err != nil {
			return nil, fmt.Errorf("failed to list issues of %s/%s: %w", opts.Owner, opts.Repo, err)
		}
		for _, issue := range page {
			if issue.IsPullRequest() {
				continue
			}
			if opts.Number != 0 && issue.GetNumber() != opts.Number {
				continue
			}
			issues = append(issues, issue)
		}
		if resp.NextPage == 0 {
			return issues, nil
		}
		list.Page = resp.NextPage
	}
}

// Feature builds one scenario per issue.
func Feature(repo string, issues []*github.Issue) gherkin.Feature {
	feature := gherkin.NewFeature(repo)
	for _, issue := range issues {
		scenario := gherkin.NewScenario(fmt.Sprintf("#%d %s", issue.GetNumber(), issue.GetTitle()))
		for _, step := range Steps(issue.GetBody()) {
			scenario = scenario.WithStep(step.Keyword, step.Text)
		}
		feature = feature.WithScenario(scenario)
	}
	return feature
}

var keywords = []gherkin.StepKeyword{gherkin.Given, gherkin.When, gherkin.Then, gherkin.And, gherkin.But}

// Steps extracts the lines of body that start with a step keyword. List
// markers and surrounding whitespace are ignored.
func Steps(body string) []gherkin.Step {
	var steps []gherkin.Step
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimSpace(strings.TrimLeft(line, "-*>"))
		for _, kw := range keywords {
			text, ok := strings.CutPrefix(line, kw.String()+" ")
			if !ok {
				continue
			}
			if text = strings.TrimSpace(text); text != "" {
				steps = append(steps, gherkin.Step{Keyword: kw, Text: text})
			}
			break
		}
	}
	return steps
}

// Runner implements the nets plugin.
type Runner struct {
	// HTTPClient is used for GitHub API calls; nil means http.DefaultClient.
	HTTPClient *http.Client
	// BaseURL overrides the GitHub API endpoint when set.
	BaseURL string
	Getenv  func(string) string
	Secrets Secrets
	Log     *zerolog.Logger
}

// Handle lists the selected issues and writes github.feature.
func (r *Runner) Handle(params wire.Parameters) (*wire.Result, error) {
	opts, err := ParseOptions(params, r.Getenv, r.Secrets)
	if err != nil {
		return nil, err
	}

	client := github.NewClient(r.HTTPClient).WithAuthToken(opts.Token)
	client.UserAgent = "Bat-nets"
	if r.BaseURL != "" {
		if client, err = client.WithEnterpriseURLs(r.BaseURL, r.BaseURL); err != nil {
			return nil, fmt.Errorf("invalid GitHub URL: %w", err)
		}
	}

	issues, err := Fetch(context.Background(), client, opts)
	if err != nil {
		return nil, err
	}
	for _, issue := range issues {
		r.logger().Info().Int("number", issue.GetNumber()).Str("title", issue.GetTitle()).Msg(issue.GetBody())
	}

	return &wire.Result{
		Filename: Filename,
		Feature:  Feature(opts.Owner+"/"+opts.Repo, issues),
	}, nil
}

func (r *Runner) logger() *zerolog.Logger {
	if r.Log == nil {
		nop := zerolog.Nop()
		return &nop
	}
	return r.Log
}
