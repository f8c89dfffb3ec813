// Package gherkin models the feature documents produced by plugins and renders
// them to the .feature text format.
//
// Documents are values: every builder method returns a new value and leaves
// its receiver untouched, so a Feature handed to the renderer or the wire
// codec cannot change underneath them.
package gherkin

import (
	"fmt"
	"slices"
)

// StepKeyword is the keyword that opens a step line.
type StepKeyword string

const (
	Given StepKeyword = "Given"
	When  StepKeyword = "When"
	Then  StepKeyword = "Then"
	And   StepKeyword = "And"
	But   StepKeyword = "But"
)

// Valid reports whether k is one of the five step keywords.
func (k StepKeyword) Valid() bool {
	switch k {
	case Given, When, Then, And, But:
		return true
	}
	return false
}

// opensBlock reports whether a blank line is rendered before a step with this keyword.
func (k StepKeyword) opensBlock() bool {
	return k == Given || k == When || k == Then
}

func (k StepKeyword) String() string {
	return string(k)
}

// Step is a single keyword/text line of a scenario.
type Step struct {
	Keyword StepKeyword `msgpack:"keyword"`
	Text    string      `msgpack:"text"`
}

// Examples is the table attached to a scenario outline.
type Examples struct {
	Fields []string   `msgpack:"fields"`
	Rows   [][]string `msgpack:"rows"`
}

// NewExamples creates an example table with the given column names and no rows.
func NewExamples(fields ...string) Examples {
	return Examples{Fields: slices.Clone(fields)}
}

// WithRow returns a copy of e with one more row appended.
func (e Examples) WithRow(values ...string) Examples {
	e.Fields = slices.Clone(e.Fields)
	e.Rows = append(slices.Clip(e.Rows), slices.Clone(values))
	return e
}

// Scenario is a named sequence of steps, optionally with an examples table.
type Scenario struct {
	Name     string    `msgpack:"name"`
	Steps    []Step    `msgpack:"steps"`
	Examples *Examples `msgpack:"examples"`
}

// NewScenario creates an empty scenario.
func NewScenario(name string) Scenario {
	return Scenario{Name: name}
}

// Outline reports whether the scenario is a scenario outline, which is the
// case exactly when it carries examples.
func (s Scenario) Outline() bool {
	return s.Examples != nil
}

// WithStep returns a copy of s with a step appended.
func (s Scenario) WithStep(keyword StepKeyword, text string) Scenario {
	s.Steps = append(slices.Clip(s.Steps), Step{Keyword: keyword, Text: text})
	return s
}

// WithExamples returns a copy of s turned into an outline with the given examples.
func (s Scenario) WithExamples(examples Examples) Scenario {
	s.Steps = slices.Clip(s.Steps)
	s.Examples = &examples
	return s
}

// Feature is the root of a document.
type Feature struct {
	Name      string     `msgpack:"name"`
	Scenarios []Scenario `msgpack:"scenarios"`
}

// NewFeature creates a feature without scenarios.
func NewFeature(name string) Feature {
	return Feature{Name: name}
}

// WithScenario returns a copy of f with a scenario appended.
func (f Feature) WithScenario(scenario Scenario) Feature {
	f.Scenarios = append(slices.Clip(f.Scenarios), scenario)
	return f
}

// Validate checks that every step uses a known keyword.
func (f Feature) Validate() error {
	for i, scenario := range f.Scenarios {
		for j, step := range scenario.Steps {
			if !step.Keyword.Valid() {
				return fmt.Errorf("scenario %d step %d: unknown keyword %q", i, j, step.Keyword)
			}
		}
	}
	return nil
}
