package scenario

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
)

// Summary aggregates the results of a run.
type Summary struct {
	ID          string        `json:"id"`
	GeneratedAt time.Time     `json:"generated_at"`
	Total       int           `json:"total"`
	Passed      int           `json:"passed"`
	Failed      int           `json:"failed"`
	Errored     int           `json:"errored"`
	Duration    time.Duration `json:"duration"`
	Results     []*Result     `json:"results"`
}

// BuildSummary counts results by status.
func BuildSummary(results []*Result) *Summary {
	s := &Summary{
		ID:          uuid.NewString(),
		GeneratedAt: time.Now(),
		Results:     results,
	}
	for _, r := range results {
		s.Total++
		s.Duration += r.Duration
		switch r.Status {
		case StatusPassed:
			s.Passed++
		case StatusFailed:
			s.Failed++
		default:
			s.Errored++
		}
	}
	return s
}

// OK reports whether every scenario passed.
func (s *Summary) OK() bool {
	return s.Passed == s.Total
}

// WriteJSON writes s as indented JSON.
func WriteJSON(w io.Writer, s *Summary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}

func paint(attr color.Attribute, noColor bool) *color.Color {
	c := color.New(attr)
	if noColor {
		c.DisableColor()
	} else {
		c.EnableColor()
	}
	return c
}

// WriteConsole writes one line per result followed by the
// totals.
func WriteConsole(w io.Writer, s *Summary, noColor bool) error {
	pass := paint(color.FgGreen, noColor)
	fail := paint(color.FgRed, noColor)
	errc := paint(color.FgYellow, noColor)
	dim := paint(color.Faint, noColor)

	for _, r := range s.Results {
		var err error
		switch r.Status {
		case StatusPassed:
			_, err = pass.Fprint(w, "PASS ")
		case StatusFailed:
			_, err = fail.Fprint(w, "FAIL ")
		default:
			_, err = errc.Fprint(w, "ERR  ")
		}
		if err != nil {
			return err
		}

		not := ""
		if r.Negated {
			not = "not."
		}
		if _, err := fmt.Fprintf(w, "%s/%s %s%s", r.Suite, r.Scenario, not, r.Matcher); err != nil {
			return err
		}
		if _, err := dim.Fprintf(w, " (%s)\n", r.Duration.Round(time.Microsecond)); err != nil {
			return err
		}

		switch r.Status {
		case StatusFailed:
			_, err = fmt.Fprintf(w, "     want %s, got %s: %s\n", r.Want, r.Outcome, r.Message)
		case StatusError:
			_, err = fmt.Fprintf(w, "     %s\n", r.Error)
		}
		if err != nil {
			return err
		}
	}

	_, err := fmt.Fprintf(w, "\n%d scenarios: %d passed, %d failed, %d errored\n",
		s.Total, s.Passed, s.Failed, s.Errored)
	return err
}
