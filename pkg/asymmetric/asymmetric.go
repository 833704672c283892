// Package asymmetric provides payload matchers that decide
// equality with a predicate. Each value implements
// matcher.PayloadMatcher and fmt.Stringer, so it can be passed
// as the expected payload of toBeResolvedWith or
// toBeRejectedWith.
package asymmetric

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/stretchr/testify/assert"

	"digital.vasic.promisematchers/pkg/matcher"
)

// Func adapts a predicate to a PayloadMatcher. Name is used when
// the matcher is printed in failure messages.
type Func struct {
	Name string
	Fn   func(actual any) bool
}

// Matches calls Fn.
func (f Func) Matches(actual any) bool {
	return f.Fn(actual)
}

func (f Func) String() string {
	return "<" + f.Name + ">"
}

// Anything matches any non-nil value.
func Anything() matcher.PayloadMatcher {
	return Func{
		Name: "anything",
		Fn:   func(actual any) bool { return actual != nil },
	}
}

// Any matches values of the same dynamic type as sample.
func Any(sample any) matcher.PayloadMatcher {
	want := reflect.TypeOf(sample)
	return Func{
		Name: fmt.Sprintf("any(%v)", want),
		Fn: func(actual any) bool {
			return actual != nil && reflect.TypeOf(actual) == want
		},
	}
}

// Equal matches values deeply equal to want.
func Equal(want any) matcher.PayloadMatcher {
	return Func{
		Name: fmt.Sprintf("equal(%v)", want),
		Fn: func(actual any) bool {
			return assert.ObjectsAreEqual(want, actual)
		},
	}
}

// textOf returns the text of strings, byte slices, errors and
// Stringers.
func textOf(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case []byte:
		return string(t), true
	case error:
		return t.Error(), true
	case fmt.Stringer:
		return t.String(), true
	}
	return "", false
}

// StringMatching matches text whose content matches pattern. It
// panics if pattern does not compile, like regexp.MustCompile.
func StringMatching(pattern string) matcher.PayloadMatcher {
	re := regexp.MustCompile(pattern)
	return Func{
		Name: "stringMatching(" + pattern + ")",
		Fn: func(actual any) bool {
			s, ok := textOf(actual)
			return ok && re.MatchString(s)
		},
	}
}

// StringContaining matches text containing sub.
func StringContaining(sub string) matcher.PayloadMatcher {
	return Func{
		Name: "stringContaining(" + sub + ")",
		Fn: func(actual any) bool {
			s, ok := textOf(actual)
			return ok && strings.Contains(s, sub)
		},
	}
}

// MapContaining matches a map[string]any holding at least the
// given entries. Entry values may themselves be PayloadMatchers.
func MapContaining(entries map[string]any) matcher.PayloadMatcher {
	return Func{
		Name: fmt.Sprintf("mapContaining(%v)", entries),
		Fn: func(actual any) bool {
			m, ok := actual.(map[string]any)
			if !ok {
				return false
			}
			for k, want := range entries {
				got, exists := m[k]
				if !exists || !valueMatches(want, got) {
					return false
				}
			}
			return true
		},
	}
}

func valueMatches(want, got any) bool {
	if pm, ok := want.(matcher.PayloadMatcher); ok {
		return pm.Matches(got)
	}
	return assert.ObjectsAreEqual(want, got)
}
