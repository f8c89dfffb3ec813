// Package wire encodes the values that cross the plugin boundary.
//
// Three shapes travel between host and plugin: the argument descriptors a
// plugin declares, the parameter mapping the host passes to a run, and the
// result a run produces. Each is encoded as MessagePack with named fields, so
// a buffer can be decoded without an external schema. Decoding is strict: a
// buffer that does not hold exactly one value of the requested shape fails
// with a *DecodeError.
//
// A zero-length buffer is never a valid encoding. The plugin contract uses it
// as the "no result" sentinel.
package wire

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/joncooperworks/bat/gherkin"
)

// Shape names the value a buffer is expected to hold.
type Shape string

const (
	ShapeArguments  Shape = "arguments"
	ShapeParameters Shape = "parameters"
	ShapeResult     Shape = "result"
)

// ErrEmptyBuffer is returned when decoding a zero-length buffer.
var ErrEmptyBuffer = errors.New("empty buffer")

// DecodeError reports bytes that do not match the expected encoding.
type DecodeError struct {
	Shape Shape
	Err   error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Shape, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Argument declares one named input a plugin accepts. Usage is an opaque
// specification string interpreted by the CLI layer.
type Argument struct {
	Name  string `msgpack:"name"`
	Usage string `msgpack:"usage"`
}

// Parameters maps argument names to the values given on the command line.
type Parameters map[string]string

// Result is the payload of a successful run.
type Result struct {
	Filename string          `msgpack:"filename"`
	Feature  gherkin.Feature `msgpack:"feature"`
}

// EncodeArguments encodes an ordered argument list.
func EncodeArguments(args []Argument) ([]byte, error) {
	return encode(args)
}

// DecodeArguments decodes a buffer produced by EncodeArguments.
func DecodeArguments(data []byte) ([]Argument, error) {
	var args []Argument
	if err := decode(data, ShapeArguments, &args); err != nil {
		return nil, err
	}
	for i, arg := range args {
		if arg.Name == "" {
			return nil, &DecodeError{Shape: ShapeArguments, Err: fmt.Errorf("argument %d has no name", i)}
		}
	}
	return args, nil
}

// EncodeParameters encodes a parameter mapping. Keys are written in sorted
// order so equal mappings produce identical bytes.
func EncodeParameters(params Parameters) ([]byte, error) {
	return encode(params)
}

// DecodeParameters decodes a buffer produced by EncodeParameters.
func DecodeParameters(data []byte) (Parameters, error) {
	var params Parameters
	if err := decode(data, ShapeParameters, &params); err != nil {
		return nil, err
	}
	return params, nil
}

// EncodeResult encodes a run result.
func EncodeResult(result *Result) ([]byte, error) {
	if result == nil {
		return nil, errors.New("encode result: nil result")
	}
	return encode(result)
}

// DecodeResult decodes a buffer produced by EncodeResult.
func DecodeResult(data []byte) (*Result, error) {
	var result Result
	if err := decode(data, ShapeResult, &result); err != nil {
		return nil, err
	}
	if result.Filename == "" {
		return nil, &DecodeError{Shape: ShapeResult, Err: errors.New("missing filename")}
	}
	if err := result.Feature.Validate(); err != nil {
		return nil, &DecodeError{Shape: ShapeResult, Err: err}
	}
	return &result, nil
}

func encode(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetSortMapKeys(true)
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	return buf.Bytes(), nil
}

func decode(data []byte, shape Shape, v interface{}) error {
	if len(data) == 0 {
		return &DecodeError{Shape: shape, Err: ErrEmptyBuffer}
	}

	r := bytes.NewReader(data)
	dec := msgpack.NewDecoder(r)
	dec.DisallowUnknownFields(true)
	if err := dec.Decode(v); err != nil {
		return &DecodeError{Shape: shape, Err: err}
	}
	if r.Len() != 0 {
		return &DecodeError{Shape: shape, Err: fmt.Errorf("%d trailing bytes", r.Len())}
	}
	return nil
}
