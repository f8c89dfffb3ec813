package generator

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/getkin/kin-openapi/openapi2"
	"github.com/getkin/kin-openapi/openapi2conv"
	"github.com/getkin/kin-openapi/openapi3"
	"gopkg.in/yaml.v3"
)

// Load reads an OpenAPI 3 or Swagger 2 document, in JSON or YAML, and
// returns it as OpenAPI 3. References are resolved.
func Load(path string) (*openapi3.T, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var header struct {
		Swagger string `yaml:"swagger"`
		OpenAPI string `yaml:"openapi"`
	}
	if err := yaml.Unmarshal(data, &header); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	switch {
	case header.Swagger != "":
		return loadV2(data)
	case header.OpenAPI != "":
		loader := openapi3.NewLoader()
		doc, err := loader.LoadFromFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load OpenAPI document: %w", err)
		}
		return doc, nil
	default:
		return nil, fmt.Errorf("%s is neither an OpenAPI 3 nor a Swagger 2 document", path)
	}
}

func loadV2(data []byte) (*openapi3.T, error) {
	var raw interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse Swagger document: %w", err)
	}
	encoded, err := json.Marshal(jsonCompatible(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to parse Swagger document: %w", err)
	}

	var doc openapi2.T
	if err := json.Unmarshal(encoded, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse Swagger document: %w", err)
	}
	v3, err := openapi2conv.ToV3(&doc)
	if err != nil {
		return nil, fmt.Errorf("failed to convert Swagger document: %w", err)
	}
	return v3, nil
}

// jsonCompatible turns YAML mappings with non-string keys, such as response
// codes written as integers, into string-keyed maps.
func jsonCompatible(v interface{}) interface{} {
	switch v := v.(type) {
	case map[string]interface{}:
		for key, value := range v {
			v[key] = jsonCompatible(value)
		}
		return v
	case map[interface{}]interface{}:
		m := make(map[string]interface{}, len(v))
		for key, value := range v {
			m[fmt.Sprint(key)] = jsonCompatible(value)
		}
		return m
	case []interface{}:
		for i, value := range v {
			v[i] = jsonCompatible(value)
		}
		return v
	default:
		return v
	}
}
