package gherkin

import (
	"strings"
)

const (
	scenarioIndent = "  "
	stepIndent     = "    "
	exampleIndent  = "      "
)

// Render returns the .feature text for f.
//
// The output is a pure function of the tree: scenarios, steps and example
// rows appear in insertion order, and rendering the same value twice yields
// identical bytes.
func Render(f Feature) string {
	var b strings.Builder
	b.WriteString("Feature: ")
	b.WriteString(f.Name)
	for _, scenario := range f.Scenarios {
		b.WriteString("\n\n")
		b.WriteString(scenarioIndent)
		writeScenario(&b, scenario)
	}
	return b.String()
}

// String renders the feature.
func (f Feature) String() string {
	return Render(f)
}

func writeScenario(b *strings.Builder, s Scenario) {
	if s.Outline() {
		b.WriteString("Scenario outline: ")
	} else {
		b.WriteString("Scenario: ")
	}
	b.WriteString(s.Name)

	for _, step := range s.Steps {
		if step.Keyword.opensBlock() {
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(stepIndent)
		b.WriteString(step.Keyword.String())
		b.WriteString(" ")
		b.WriteString(step.Text)
	}

	if s.Examples != nil {
		writeExamples(b, *s.Examples)
	}
}

func writeExamples(b *strings.Builder, e Examples) {
	b.WriteString("\n\n")
	b.WriteString(stepIndent)
	b.WriteString("Examples: \n")
	writeRow(b, e.Fields)
	for _, row := range e.Rows {
		writeRow(b, row)
	}
}

func writeRow(b *strings.Builder, cells []string) {
	b.WriteString(exampleIndent)
	b.WriteString("|")
	b.WriteString(strings.Join(cells, "|"))
	b.WriteString("|\n")
}
