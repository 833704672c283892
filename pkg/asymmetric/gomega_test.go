package asymmetric_test

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"digital.vasic.promisematchers/pkg/asymmetric"
	"digital.vasic.promisematchers/pkg/matcher"
	"digital.vasic.promisematchers/pkg/promise"
)

func waitFor(s *matcher.Signal) matcher.Outcome {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	outcome, err := s.Wait(ctx)
	Expect(err).NotTo(HaveOccurred())
	return outcome
}

var _ = Describe("Gomega", func() {
	var inline promise.Scheduler

	BeforeEach(func() {
		inline = promise.SchedulerFunc(func(task func()) { task() })
	})

	It("matches when the gomega matcher succeeds", func() {
		m := asymmetric.Gomega(BeNumerically(">", 10))
		Expect(m.Matches(11)).To(BeTrue())
		Expect(m.Matches(9)).To(BeFalse())
	})

	It("does not match when the gomega matcher errors", func() {
		m := asymmetric.Gomega(BeNumerically(">", 10))
		Expect(m.Matches("eleven")).To(BeFalse())
	})

	It("names the wrapped matcher", func() {
		m := asymmetric.Gomega(ContainSubstring("x"))
		Expect(m.(interface{ String() string }).String()).To(HavePrefix("gomega("))
	})

	Describe("as the payload of toBeResolvedWith", func() {
		var (
			signal *matcher.Signal
			m      matcher.Matcher
		)

		BeforeEach(func() {
			signal = matcher.NewSignal()
			m = matcher.NewMatcher(nil, matcher.Resolved, true)
		})

		It("succeeds when the resolved value satisfies the matcher", func() {
			value := promise.Resolved(inline, map[string]int{"a": 1})
			m.Compare(value, asymmetric.Gomega(HaveKeyWithValue("a", 1)), signal)

			outcome := waitFor(signal)
			Expect(outcome.Failed).To(BeFalse())
		})

		It("fails with a containment message otherwise", func() {
			value := promise.Resolved(inline, "hello")
			m.Compare(value, asymmetric.Gomega(ContainSubstring("bye")), signal)

			outcome := waitFor(signal)
			Expect(outcome.Failed).To(BeTrue())
			Expect(outcome.Message).To(HavePrefix(`Expected "hello" to contain "gomega(`))
		})
	})

	Describe("with rejected promises", func() {
		It("reads the error through the gomega matcher", func() {
			signal := matcher.NewSignal()
			value := promise.Rejected(inline, errors.New("connection refused"))

			matcher.NewMatcher(nil, matcher.Rejected, true).
				Compare(value, asymmetric.Gomega(MatchError(ContainSubstring("refused"))), signal)

			outcome := waitFor(signal)
			Expect(outcome.Failed).To(BeFalse())
		})
	})
})
