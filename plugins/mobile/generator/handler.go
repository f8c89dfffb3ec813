package generator

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/joncooperworks/bat/wire"
)

// Arguments declares the INPUT argument of the mobile plugin.
var Arguments = []wire.Argument{
	{Name: "INPUT", Usage: "<INPUT> 'Input file to use'"},
}

// Handle generates <stem>.feature from the document named by INPUT.
func Handle(params wire.Parameters) (*wire.Result, error) {
	input := params["INPUT"]
	if input == "" {
		return nil, errors.New("missing INPUT")
	}

	doc, err := Load(input)
	if err != nil {
		return nil, err
	}

	base := filepath.Base(input)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return &wire.Result{
		Filename: stem + ".feature",
		Feature:  Generate(doc),
	}, nil
}
