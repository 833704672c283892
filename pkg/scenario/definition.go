// Package scenario evaluates promise expectations declared in
// YAML files. Each scenario settles a promise, applies a matcher
// from the registry and compares the outcome with the declared
// one.
package scenario

import (
	"regexp"
	"time"

	"github.com/pkg/errors"

	"digital.vasic.promisematchers/pkg/asymmetric"
	"digital.vasic.promisematchers/pkg/matcher"
)

// Want is the declared outcome of a scenario.
type Want string

const (
	WantPass Want = "pass"
	WantFail Want = "fail"
)

// File is the top-level structure of a scenario file.
type File struct {
	Name      string      `yaml:"name"`
	Scenarios []*Scenario `yaml:"scenarios"`
}

// Settle describes how the promise of a scenario settles.
type Settle struct {
	// Disposition is "resolved" or "rejected".
	Disposition string `yaml:"disposition"`

	// Value is the fulfillment value, or the rejection reason
	// when Error is empty.
	Value any `yaml:"value"`

	// Error rejects with an error carrying this text.
	Error string `yaml:"error"`

	// Delay postpones settlement.
	Delay time.Duration `yaml:"delay"`
}

// Match declares an asymmetric expected payload.
type Match struct {
	Kind    string `yaml:"kind"`
	Type    string `yaml:"type"`
	Pattern string `yaml:"pattern"`
	Path    string `yaml:"path"`
	Value   any    `yaml:"value"`
	Schema  string `yaml:"schema"`
}

// Match kinds.
const (
	KindAnything         = "anything"
	KindAny              = "any"
	KindEqual            = "equal"
	KindStringMatching   = "string_matching"
	KindStringContaining = "string_containing"
	KindMapContaining    = "map_containing"
	KindJSONPath         = "json_path"
	KindJSONSchema       = "json_schema"
)

// Scenario is one declared expectation.
type Scenario struct {
	Name          string `yaml:"name"`
	Settle        Settle `yaml:"settle"`
	Matcher       string `yaml:"matcher"`
	Expected      any    `yaml:"expected"`
	ExpectedError string `yaml:"expected_error"`
	Match         *Match `yaml:"match"`
	Negate        bool   `yaml:"negate"`
	Want          Want   `yaml:"want"`

	// Message, when set, must equal the message the matcher
	// reports.
	Message string `yaml:"message"`

	// Suite is the name of the file the scenario came from.
	Suite string `yaml:"-"`
}

// settlement returns the disposition and the data the promise
// settles with.
func (s *Scenario) settlement() (matcher.Disposition, any, error) {
	d, err := matcher.ParseDisposition(s.Settle.Disposition)
	if err != nil {
		return "", nil, err
	}
	if d == matcher.Rejected && s.Settle.Error != "" {
		return d, errors.New(s.Settle.Error), nil
	}
	return d, s.Settle.Value, nil
}

// expected returns the payload handed to the matcher.
func (s *Scenario) expected() (any, error) {
	switch {
	case s.Match != nil:
		return s.Match.build()
	case s.ExpectedError != "":
		return errors.New(s.ExpectedError), nil
	}
	return s.Expected, nil
}

var anySamples = map[string]any{
	"string": "",
	"int":    0,
	"float":  0.0,
	"bool":   false,
	"map":    map[string]any{},
	"list":   []any{},
	"error":  errors.New(""),
}

func (m *Match) build() (matcher.PayloadMatcher, error) {
	switch m.Kind {
	case KindAnything:
		return asymmetric.Anything(), nil
	case KindAny:
		sample, ok := anySamples[m.Type]
		if !ok {
			return nil, errors.Errorf("unknown type %q", m.Type)
		}
		return asymmetric.Any(sample), nil
	case KindEqual:
		return asymmetric.Equal(m.Value), nil
	case KindStringMatching:
		if _, err := regexp.Compile(m.Pattern); err != nil {
			return nil, errors.Wrap(err, "pattern")
		}
		return asymmetric.StringMatching(m.Pattern), nil
	case KindStringContaining:
		return asymmetric.StringContaining(m.Pattern), nil
	case KindMapContaining:
		entries, ok := m.Value.(map[string]any)
		if !ok {
			return nil, errors.New("map_containing needs a mapping value")
		}
		return asymmetric.MapContaining(entries), nil
	case KindJSONPath:
		if m.Path == "" {
			return nil, errors.New("json_path needs a path")
		}
		return asymmetric.JSONPath(m.Path, m.Value), nil
	case KindJSONSchema:
		return asymmetric.NewJSONSchema(m.Schema)
	}
	return nil, errors.Errorf("unknown match kind %q", m.Kind)
}
