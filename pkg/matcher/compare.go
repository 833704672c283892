package matcher

import (
	"fmt"
	"reflect"
)

// Evaluate decides a settled expectation. observed and data
// describe how the promise settled. A disposition mismatch
// always fails; a payload mismatch fails only when the
// expectation is not negated.
func Evaluate(observed Disposition, data any, exp Expectation) (failed bool, message string) {
	disposition := compareDisposition(observed, exp.Disposition, exp.Negate)
	if !disposition.Passed {
		return true, disposition.Message
	}

	payload := comparePayload(data, exp)
	return !payload.Passed && !exp.Negate, payload.Message
}

func not(negate bool) string {
	if negate {
		return " not"
	}
	return ""
}

func compareDisposition(observed, expected Disposition, negate bool) Comparison {
	c := Comparison{
		Passed:  observed == expected,
		Message: fmt.Sprintf("Expected promise%s to be %s", not(negate), expected),
	}
	if negate {
		c.Passed = !c.Passed
	}
	return c
}

func comparePayload(actual any, exp Expectation) Comparison {
	if !exp.HasPayload {
		return Comparison{Passed: true}
	}

	expected := exp.Expected
	if a, ok := describeError(actual); ok {
		if e, ok := describeError(expected); ok {
			actual, expected = a, e
		}
	}

	var c Comparison
	if m, ok := expected.(PayloadMatcher); ok {
		c = Comparison{
			Passed: m.Matches(actual),
			Message: fmt.Sprintf(`Expected "%v"%s to contain "%v"`,
				actual, not(exp.Negate), expected),
		}
	} else {
		c = Comparison{
			Passed: strictEqual(actual, expected),
			Message: fmt.Sprintf(`Expected "%v"%s to be "%v"`,
				actual, not(exp.Negate), expected),
		}
	}

	if exp.Negate {
		c.Passed = !c.Passed
	}
	return c
}

func describeError(v any) (string, bool) {
	switch e := v.(type) {
	case ErrorLike:
		return e.Description(), true
	case error:
		return e.Error(), true
	}
	return "", false
}

// strictEqual reports whether a and b are the same value: equal
// dynamic types and == for comparable types, identity for maps,
// slices, funcs and channels.
func strictEqual(a, b any) (equal bool) {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() {
		return false
	}

	switch va.Kind() {
	case reflect.Map, reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return va.Pointer() == vb.Pointer()
	case reflect.Slice:
		return va.Pointer() == vb.Pointer() && va.Len() == vb.Len()
	}

	// Comparable struct and array types can still hold
	// uncomparable values in interface fields.
	defer func() {
		if recover() != nil {
			equal = false
		}
	}()
	return a == b
}
