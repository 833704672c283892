package asymmetric

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/xeipuuv/gojsonschema"

	"digital.vasic.promisematchers/pkg/matcher"
)

// jsonOf returns the JSON document for actual. Strings and byte
// slices are taken as JSON text; other values are marshalled.
func jsonOf(actual any) ([]byte, bool) {
	switch v := actual.(type) {
	case string:
		return []byte(v), gjson.Valid(v)
	case []byte:
		return v, gjson.ValidBytes(v)
	case json.RawMessage:
		return v, gjson.ValidBytes(v)
	}
	data, err := json.Marshal(actual)
	if err != nil {
		return nil, false
	}
	return data, true
}

// JSONPath matches JSON payloads whose value at path (gjson
// syntax) equals want, or satisfies want when it is a
// PayloadMatcher. Numbers are compared as float64.
func JSONPath(path string, want any) matcher.PayloadMatcher {
	return Func{
		Name: fmt.Sprintf("jsonPath(%s=%v)", path, want),
		Fn: func(actual any) bool {
			data, ok := jsonOf(actual)
			if !ok {
				return false
			}
			res := gjson.GetBytes(data, path)
			if !res.Exists() {
				return false
			}
			return valueMatches(normalizeNumber(want), res.Value())
		},
	}
}

func normalizeNumber(v any) any {
	switch n := v.(type) {
	case int:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case uint:
		return float64(n)
	case float32:
		return float64(n)
	}
	return v
}

// JSONSchema matches JSON payloads valid against schema. It
// panics if schema is not a valid JSON schema.
func JSONSchema(schema string) matcher.PayloadMatcher {
	m, err := NewJSONSchema(schema)
	if err != nil {
		panic(err)
	}
	return m
}

// NewJSONSchema is JSONSchema returning an error for an invalid
// schema.
func NewJSONSchema(schema string) (matcher.PayloadMatcher, error) {
	compiled, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schema))
	if err != nil {
		return nil, fmt.Errorf("asymmetric: invalid JSON schema: %w", err)
	}

	return Func{
		Name: "jsonSchema",
		Fn: func(actual any) bool {
			data, ok := jsonOf(actual)
			if !ok {
				return false
			}
			res, err := compiled.Validate(gojsonschema.NewBytesLoader(data))
			return err == nil && res.Valid()
		},
	}, nil
}
