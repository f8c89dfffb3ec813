package wire

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/joncooperworks/bat/gherkin"
)

// nilIfEmpty keeps generated values in the form the decoder produces for
// absent collections.
func nilIfEmpty[T any](s []T) []T {
	if len(s) == 0 {
		return nil
	}
	return s
}

func genStrings(t *rapid.T, label string) []string {
	return nilIfEmpty(rapid.SliceOfN(rapid.String(), 0, 4).Draw(t, label))
}

func genArguments(t *rapid.T) []Argument {
	n := rapid.IntRange(0, 5).Draw(t, "argc")
	var args []Argument
	for i := 0; i < n; i++ {
		args = append(args, Argument{
			Name:  rapid.StringMatching(`[A-Za-z][A-Za-z0-9_]{0,8}`).Draw(t, "name"),
			Usage: rapid.String().Draw(t, "usage"),
		})
	}
	return args
}

func genFeature(t *rapid.T) gherkin.Feature {
	keywords := []gherkin.StepKeyword{gherkin.Given, gherkin.When, gherkin.Then, gherkin.And, gherkin.But}
	f := gherkin.NewFeature(rapid.String().Draw(t, "feature"))
	for i, n := 0, rapid.IntRange(0, 3).Draw(t, "scenarios"); i < n; i++ {
		s := gherkin.NewScenario(rapid.String().Draw(t, "scenario"))
		for j, m := 0, rapid.IntRange(0, 4).Draw(t, "steps"); j < m; j++ {
			s = s.WithStep(rapid.SampledFrom(keywords).Draw(t, "keyword"), rapid.String().Draw(t, "text"))
		}
		if rapid.Bool().Draw(t, "outline") {
			e := gherkin.NewExamples(genStrings(t, "fields")...)
			for k, r := 0, rapid.IntRange(0, 3).Draw(t, "rows"); k < r; k++ {
				e = e.WithRow(genStrings(t, "row")...)
			}
			s = s.WithExamples(e)
		}
		f = f.WithScenario(s)
	}
	return f
}

func TestArguments_RoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		args := genArguments(t)

		data, err := EncodeArguments(args)
		require.NoError(t, err)
		require.NotEmpty(t, data, "encoding must never be the empty sentinel")

		got, err := DecodeArguments(data)
		require.NoError(t, err)
		assert.Equal(t, args, got)
	})
}

func TestParameters_RoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		params := Parameters(rapid.MapOf(rapid.String(), rapid.String()).Draw(t, "params"))

		data, err := EncodeParameters(params)
		require.NoError(t, err)
		require.NotEmpty(t, data)

		got, err := DecodeParameters(data)
		require.NoError(t, err)
		assert.Equal(t, len(params), len(got))
		for k, v := range params {
			assert.Equal(t, v, got[k], "key %q", k)
		}
	})
}

func TestResult_RoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		result := &Result{
			Filename: rapid.StringMatching(`[a-z]{1,8}\.feature`).Draw(t, "filename"),
			Feature:  genFeature(t),
		}

		data, err := EncodeResult(result)
		require.NoError(t, err)
		require.NotEmpty(t, data)

		got, err := DecodeResult(data)
		require.NoError(t, err)
		assert.Equal(t, result, got)
		assert.Equal(t, gherkin.Render(result.Feature), gherkin.Render(got.Feature))
	})
}

func TestParameters_EncodingIsDeterministic(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		params := Parameters(rapid.MapOf(rapid.String(), rapid.String()).Draw(t, "params"))

		first, err := EncodeParameters(params)
		require.NoError(t, err)
		for i := 0; i < 3; i++ {
			again, err := EncodeParameters(params)
			require.NoError(t, err)
			require.True(t, bytes.Equal(first, again), "encodings differ")
		}
	})
}

func TestEncodeResult_EmptyFeatureIsNotSentinel(t *testing.T) {
	data, err := EncodeResult(&Result{Filename: "x.feature"})
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}

func TestDecode_EmptyBuffer(t *testing.T) {
	_, err := DecodeResult(nil)
	var decodeErr *DecodeError
	require.ErrorAs(t, err, &decodeErr)
	assert.Equal(t, ShapeResult, decodeErr.Shape)
	assert.True(t, errors.Is(err, ErrEmptyBuffer))

	_, err = DecodeArguments([]byte{})
	assert.ErrorIs(t, err, ErrEmptyBuffer)

	_, err = DecodeParameters(nil)
	assert.ErrorIs(t, err, ErrEmptyBuffer)
}

func TestDecode_ShapeMismatch(t *testing.T) {
	args, err := EncodeArguments([]Argument{{Name: "INPUT", Usage: "<INPUT>"}})
	require.NoError(t, err)
	params, err := EncodeParameters(Parameters{"INPUT": "spec.json"})
	require.NoError(t, err)
	result, err := EncodeResult(&Result{Filename: "a.feature", Feature: gherkin.NewFeature("A")})
	require.NoError(t, err)

	tests := []struct {
		name   string
		decode func([]byte) error
		data   []byte
	}{
		{"ArgumentsAsParameters", func(b []byte) error { _, err := DecodeParameters(b); return err }, args},
		{"ArgumentsAsResult", func(b []byte) error { _, err := DecodeResult(b); return err }, args},
		{"ParametersAsArguments", func(b []byte) error { _, err := DecodeArguments(b); return err }, params},
		{"ParametersAsResult", func(b []byte) error { _, err := DecodeResult(b); return err }, params},
		{"ResultAsArguments", func(b []byte) error { _, err := DecodeArguments(b); return err }, result},
		{"ResultAsParameters", func(b []byte) error { _, err := DecodeParameters(b); return err }, result},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.decode(tt.data)
			var decodeErr *DecodeError
			assert.ErrorAs(t, err, &decodeErr)
		})
	}
}

func TestDecode_TrailingBytes(t *testing.T) {
	data, err := EncodeResult(&Result{Filename: "a.feature", Feature: gherkin.NewFeature("A")})
	require.NoError(t, err)

	_, err = DecodeResult(append(data, 0x01))
	var decodeErr *DecodeError
	assert.ErrorAs(t, err, &decodeErr)
}

func TestDecode_Truncated(t *testing.T) {
	data, err := EncodeResult(&Result{Filename: "a.feature", Feature: gherkin.NewFeature("Truncated")})
	require.NoError(t, err)

	for i := 1; i < len(data); i++ {
		_, err := DecodeResult(data[:i])
		assert.Error(t, err, "prefix of length %d decoded", i)
	}
}

func TestDecodeResult_UnknownKeyword(t *testing.T) {
	bad := gherkin.NewFeature("F").WithScenario(gherkin.NewScenario("s").WithStep("Perhaps", "x"))
	data, err := EncodeResult(&Result{Filename: "a.feature", Feature: bad})
	require.NoError(t, err)

	_, err = DecodeResult(data)
	var decodeErr *DecodeError
	assert.ErrorAs(t, err, &decodeErr)
}

func TestDecodeResult_MissingFilename(t *testing.T) {
	data, err := EncodeResult(&Result{Feature: gherkin.NewFeature("F")})
	require.NoError(t, err)

	_, err = DecodeResult(data)
	assert.Error(t, err)
}

func TestDecodeArguments_Garbage(t *testing.T) {
	_, err := DecodeArguments([]byte("not msgpack at all"))
	var decodeErr *DecodeError
	assert.ErrorAs(t, err, &decodeErr)
}
