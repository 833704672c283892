package scenario

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// ErrInvalidScenario is returned when a scenario file fails
// validation.
var ErrInvalidScenario = errors.New("invalid scenario")

// ValidationError is one problem found in a scenario file.
type ValidationError struct {
	Field   string
	Message string
	Index   int // -1 if not applicable
}

func (e ValidationError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("scenarios[%d].%s: %s", e.Index, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks a parsed file and returns every problem found.
func Validate(file *File) []ValidationError {
	var problems []ValidationError
	add := func(i int, field, format string, args ...any) {
		problems = append(problems, ValidationError{
			Field: field, Message: fmt.Sprintf(format, args...), Index: i,
		})
	}

	if len(file.Scenarios) == 0 {
		add(-1, "scenarios", "at least one scenario is required")
	}

	names := make(map[string]bool)
	for i, s := range file.Scenarios {
		if s == nil {
			add(i, "name", "empty scenario")
			continue
		}

		switch {
		case s.Name == "":
			add(i, "name", "scenario name is required")
		case names[s.Name]:
			add(i, "name", "duplicate name: %s", s.Name)
		default:
			names[s.Name] = true
		}

		if s.Matcher == "" {
			add(i, "matcher", "matcher is required")
		}
		if _, _, err := s.settlement(); err != nil {
			add(i, "settle.disposition", "%v", err)
		}
		if s.Want != WantPass && s.Want != WantFail {
			add(i, "want", "must be %q or %q, got %q", WantPass, WantFail, s.Want)
		}
		if s.Match != nil && s.ExpectedError != "" {
			add(i, "match", "match and expected_error are exclusive")
		}
		if _, err := s.expected(); err != nil {
			add(i, "match", "%v", err)
		}
	}
	return problems
}

func joinProblems(problems []ValidationError) string {
	msgs := make([]string, len(problems))
	for i, p := range problems {
		msgs[i] = p.Error()
	}
	return strings.Join(msgs, "; ")
}
