// Package generator turns OpenAPI documents into Gherkin features with one
// scenario outline per documented response.
package generator

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/gosimple/slug"

	"github.com/joncooperworks/bat/gherkin"
)

const (
	bodyResponse      = "the body response is <body>"
	emptyBodyResponse = "the response does not have a body"

	// placeholder fills example cells the tester has to complete.
	placeholder = "\t"
)

type method struct {
	name      string
	operation func(*openapi3.PathItem) *openapi3.Operation
}

// methods lists the HTTP methods in the order scenarios are generated.
var methods = []method{
	{"GET", func(p *openapi3.PathItem) *openapi3.Operation { return p.Get }},
	{"DELETE", func(p *openapi3.PathItem) *openapi3.Operation { return p.Delete }},
	{"POST", func(p *openapi3.PathItem) *openapi3.Operation { return p.Post }},
	{"PUT", func(p *openapi3.PathItem) *openapi3.Operation { return p.Put }},
	{"OPTIONS", func(p *openapi3.PathItem) *openapi3.Operation { return p.Options }},
	{"PATCH", func(p *openapi3.PathItem) *openapi3.Operation { return p.Patch }},
	{"TRACE", func(p *openapi3.PathItem) *openapi3.Operation { return p.Trace }},
	{"HEAD", func(p *openapi3.PathItem) *openapi3.Operation { return p.Head }},
}

// Generate builds the feature for doc. Paths and response codes are sorted.
func Generate(doc *openapi3.T) gherkin.Feature {
	title := ""
	if doc.Info != nil {
		title = doc.Info.Title
	}
	feature := gherkin.NewFeature(title)
	if doc.Paths == nil {
		return feature
	}

	items := doc.Paths.Map()
	paths := make([]string, 0, len(items))
	for path := range items {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	for _, path := range paths {
		item := items[path]
		for _, m := range methods {
			op := m.operation(item)
			if op == nil {
				continue
			}
			for _, scenario := range operationScenarios(path, m.name, item, op) {
				feature = feature.WithScenario(scenario)
			}
		}
	}
	return feature
}

func operationScenarios(path, method string, item *openapi3.PathItem, op *openapi3.Operation) []gherkin.Scenario {
	name := op.Summary
	if name == "" {
		name = op.Description
	}
	if name == "" {
		name = path
	}
	params := parameters(item, op)

	if op.Responses == nil {
		return nil
	}
	responses := op.Responses.Map()
	codes := make([]string, 0, len(responses))
	for code := range responses {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	scenarios := make([]gherkin.Scenario, 0, len(codes))
	for _, code := range codes {
		ref := responses[code]
		if ref == nil || ref.Value == nil {
			continue
		}
		scenarios = append(scenarios, responseScenario(path, method, name, code, ref.Value, params))
	}
	return scenarios
}

func responseScenario(path, method, name, code string, resp *openapi3.Response, params []*openapi3.Parameter) gherkin.Scenario {
	responseName := code
	if resp.Description != nil && *resp.Description != "" {
		responseName = *resp.Description
	}

	s := gherkin.NewScenario(fmt.Sprintf("%s\n    For: %s", name, responseName)).
		WithStep(gherkin.Given, "a resource "+pathTemplate(path))
	for _, p := range params {
		if p.In != openapi3.ParameterInPath {
			s = s.WithStep(gherkin.And, fmt.Sprintf("a parameter %q in %s", p.Name, p.In))
		}
	}
	s = s.WithStep(gherkin.When, fmt.Sprintf("a %s request is made on this resource", method))
	for _, p := range params {
		if p.In != openapi3.ParameterInPath {
			s = s.WithStep(gherkin.And, fmt.Sprintf("the value for %q is <%s>", p.Name, Slug(p.Name)))
		}
	}

	success := isSuccess(code)
	hasBody := len(resp.Content) > 0
	body := emptyBodyResponse
	if hasBody {
		body = bodyResponse
	}
	if success {
		s = s.WithStep(gherkin.Then, "the response code is <code>").
			WithStep(gherkin.And, body)
	} else {
		s = s.WithStep(gherkin.Then, body)
	}

	var fields, row []string
	if success {
		fields = append(fields, "code")
		row = append(row, code)
	}
	for _, p := range params {
		fields = append(fields, Slug(p.Name))
		row = append(row, placeholder)
	}
	if hasBody {
		fields = append(fields, "body")
		row = append(row, placeholder)
	}
	return s.WithExamples(gherkin.NewExamples(fields...).WithRow(row...))
}

// parameters merges path-level and operation-level parameters. An operation
// parameter replaces a path parameter with the same name and location.
func parameters(item *openapi3.PathItem, op *openapi3.Operation) []*openapi3.Parameter {
	var params []*openapi3.Parameter
	index := map[string]int{}
	add := func(refs openapi3.Parameters) {
		for _, ref := range refs {
			if ref == nil || ref.Value == nil {
				continue
			}
			key := ref.Value.In + "/" + ref.Value.Name
			if i, ok := index[key]; ok {
				params[i] = ref.Value
				continue
			}
			index[key] = len(params)
			params = append(params, ref.Value)
		}
	}
	add(item.Parameters)
	add(op.Parameters)
	return params
}

// pathTemplate turns /pets/{id} into /pets/<id>.
func pathTemplate(path string) string {
	return strings.NewReplacer("{", "<", "}", ">").Replace(path)
}

// isSuccess reports whether code is a 2xx or 3xx status. Codes that are not
// numbers, such as "default", are not.
func isSuccess(code string) bool {
	n, err := strconv.Atoi(code)
	if err != nil {
		return false
	}
	return n >= 200 && n < 400
}

// Slug turns a parameter name into an example column name.
func Slug(name string) string {
	return strings.ReplaceAll(slug.Make(name), "-", "_")
}
