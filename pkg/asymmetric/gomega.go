package asymmetric

import (
	"fmt"

	"github.com/onsi/gomega/types"

	"digital.vasic.promisematchers/pkg/matcher"
)

type gomegaMatcher struct {
	m types.GomegaMatcher
}

// Gomega adapts a gomega matcher. A matcher that returns an
// error does not match.
func Gomega(m types.GomegaMatcher) matcher.PayloadMatcher {
	return gomegaMatcher{m: m}
}

func (g gomegaMatcher) Matches(actual any) bool {
	ok, err := g.m.Match(actual)
	return err == nil && ok
}

func (g gomegaMatcher) String() string {
	return fmt.Sprintf("gomega(%T)", g.m)
}
