package cli

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Arg is a command-line argument declared by a plugin usage string.
//
// Usage strings follow the clap grammar:
//
//	<INPUT> 'Sets the input file'        required positional
//	[INPUT] 'Sets the input file'        optional positional
//	-v, --verbose 'Verbose output'       boolean flag
//	-c, --config=[FILE] 'Config file'    option taking a value
//	--token <TOKEN> 'API token'          required option
//	[name] --long 'Help'                 explicit name
//
// A trailing "..." on the name or value allows repetition.
type Arg struct {
	// Name is the parameter key the plugin receives.
	Name       string
	Short      string
	Long       string
	Value      string
	Positional bool
	Required   bool
	Multiple   bool
	Help       string
}

// TakesValue reports whether the argument carries a value.
func (a Arg) TakesValue() bool {
	return a.Positional || a.Value != ""
}

// ParseUsage parses a single usage string.
func ParseUsage(usage string) (Arg, error) {
	var arg Arg

	decl := strings.TrimSpace(usage)
	if start := strings.IndexByte(decl, '\''); start >= 0 {
		end := strings.LastIndexByte(decl, '\'')
		if end == start {
			return Arg{}, fmt.Errorf("usage %q: unterminated help text", usage)
		}
		arg.Help = decl[start+1 : end]
		if rest := strings.TrimSpace(decl[end+1:]); rest != "" {
			return Arg{}, fmt.Errorf("usage %q: unexpected %q after help text", usage, rest)
		}
		decl = decl[:start]
	}

	fields := strings.FieldsFunc(decl, func(r rune) bool {
		return r == ' ' || r == '\t' || r == ',' || r == '='
	})
	if len(fields) == 0 {
		return Arg{}, fmt.Errorf("usage %q: no argument name", usage)
	}

	var explicit string
	for _, field := range fields {
		switch {
		case strings.HasPrefix(field, "--"):
			if arg.Long != "" || len(field) == 2 {
				return Arg{}, fmt.Errorf("usage %q: invalid long flag %q", usage, field)
			}
			arg.Long = field[2:]
		case strings.HasPrefix(field, "-"):
			if arg.Short != "" || utf8.RuneCountInString(field) != 2 {
				return Arg{}, fmt.Errorf("usage %q: invalid short flag %q", usage, field)
			}
			arg.Short = field[1:]
		case field == "...":
			arg.Multiple = true
		default:
			name, required, multiple, ok := bracketed(field)
			if !ok {
				return Arg{}, fmt.Errorf("usage %q: unexpected token %q", usage, field)
			}
			if multiple {
				arg.Multiple = true
			}
			if arg.Short == "" && arg.Long == "" {
				if explicit != "" {
					return Arg{}, fmt.Errorf("usage %q: more than one name", usage)
				}
				explicit = name
				arg.Required = required
				continue
			}
			if arg.Value != "" {
				return Arg{}, fmt.Errorf("usage %q: more than one value", usage)
			}
			arg.Value = name
			arg.Required = required
		}
	}

	arg.Positional = explicit != "" && arg.Short == "" && arg.Long == ""
	switch {
	case explicit != "":
		arg.Name = explicit
	case arg.Long != "":
		arg.Name = arg.Long
	default:
		arg.Name = arg.Short
	}
	if !arg.Positional && explicit != "" && arg.Value == "" {
		// "[name] --flag" names a flag; it is never required.
		arg.Required = false
	}
	return arg, nil
}

// bracketed parses <NAME>, [NAME] and their "..." forms.
func bracketed(field string) (name string, required, multiple, ok bool) {
	if strings.HasSuffix(field, "...") {
		multiple = true
		field = strings.TrimSuffix(field, "...")
	}
	if len(field) < 3 {
		return "", false, false, false
	}
	switch {
	case field[0] == '<' && field[len(field)-1] == '>':
		required = true
	case field[0] == '[' && field[len(field)-1] == ']':
	default:
		return "", false, false, false
	}
	name = field[1 : len(field)-1]
	if strings.ContainsAny(name, "<>[]") {
		return "", false, false, false
	}
	return name, required, multiple, true
}
