package backtrack_test

import (
	"bytes"
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/cpsolver/studentsct/internal/fixture"
	"github.com/cpsolver/studentsct/pkg/sectioning"
	"github.com/cpsolver/studentsct/pkg/sectioning/assignment"
	"github.com/cpsolver/studentsct/pkg/sectioning/backtrack"
	"github.com/cpsolver/studentsct/pkg/sectioning/config"
	"github.com/cpsolver/studentsct/pkg/sectioning/model"
	"github.com/cpsolver/studentsct/pkg/sectioning/selection"
)

type recordingProvider struct {
	inner sectioning.CandidateProvider
	asked []sectioning.Identifier
	err   error
}

func (p *recordingProvider) Candidates(ctx sectioning.SelectionContext, r sectioning.Request) (*sectioning.EnrollmentIterator, error) {
	p.asked = append(p.asked, r.Identifier())
	if p.err != nil {
		return nil, p.err
	}
	return p.inner.Candidates(ctx, r)
}

type failingConflicts struct {
	err error
}

func (c failingConflicts) Conflicts(sectioning.Assignment, sectioning.Enrollment) ([]sectioning.Enrollment, error) {
	return nil, c.err
}

func byRequest(n *backtrack.Neighbour, r sectioning.Request) sectioning.Enrollment {
	for _, e := range n.Enrollments {
		if e.Request().Identifier() == r.Identifier() {
			return e
		}
	}
	return nil
}

var _ = Describe("Engine", func() {
	var (
		problem  *fixture.Problem
		a        *assignment.Map
		feasible []sectioning.Enrollment
		freeTime sectioning.Enrollment
	)

	BeforeEach(func() {
		problem = fixture.New(2, 2)
		a = assignment.New()
		var err error
		feasible, err = problem.Course.ComputeEnrollments(a)
		Expect(err).ToNot(HaveOccurred())
		Expect(feasible).To(HaveLen(4))
		free, err := problem.FreeTime.ComputeEnrollments(a)
		Expect(err).ToNot(HaveOccurred())
		freeTime = free[0]
	})

	newEngine := func(options ...backtrack.Option) *backtrack.Engine {
		e, err := backtrack.New(selection.Exhaustive{}, problem.Model, options...)
		Expect(err).ToNot(HaveOccurred())
		return e
	}

	It("assigns an unassigned request", func() {
		n, err := newEngine().Select(context.Background(), a, problem.Course)
		Expect(err).ToNot(HaveOccurred())
		Expect(n).ToNot(BeNil())
		Expect(n.Value).To(BeNumerically("~", 1, 1e-9))
		Expect(n.Enrollments).To(HaveLen(1))
		Expect(n.Enrollments[0].Identifier()).To(Equal(feasible[0].Identifier()))
	})

	It("finds nothing when the request already has its best value", func() {
		a.Assign(feasible[0])
		n, err := newEngine().Select(context.Background(), a, problem.Course)
		Expect(err).ToNot(HaveOccurred())
		Expect(n).To(BeNil())
	})

	It("avoids values whose conflicts cannot be resolved", func() {
		a.Assign(freeTime)
		n, err := newEngine().Select(context.Background(), a, problem.Course)
		Expect(err).ToNot(HaveOccurred())
		Expect(n).ToNot(BeNil())
		Expect(n.Value).To(BeNumerically("~", 1, 1e-9))
		Expect(byRequest(n, problem.Course).Identifier()).To(Equal(feasible[2].Identifier()))
		Expect(byRequest(n, problem.FreeTime).Identifier()).To(Equal(freeTime.Identifier()))
	})

	It("moves a conflicting request to make room", func() {
		a.Assign(feasible[0])
		n, err := newEngine().Select(context.Background(), a, problem.FreeTime)
		Expect(err).ToNot(HaveOccurred())
		Expect(n).ToNot(BeNil())
		Expect(n.Value).To(BeNumerically("~", 0.1, 1e-9))
		Expect(n.Enrollments).To(HaveLen(2))
		Expect(byRequest(n, problem.Course).Identifier()).To(Equal(feasible[2].Identifier()))

		By("leaving the input assignment untouched")
		Expect(a.Value(problem.Course)).To(BeIdenticalTo(feasible[0]))
		Expect(a.Value(problem.FreeTime)).To(BeNil())

		By("applying the neighbour")
		n.Apply(a)
		Expect(a.Value(problem.FreeTime).Identifier()).To(Equal(freeTime.Identifier()))
		Expect(a.Value(problem.Course).Identifier()).To(Equal(feasible[2].Identifier()))
		Expect(assignment.TotalValue(a)).To(BeNumerically("~", 1.1, 1e-9))
		_, valid, err := problem.Model.Revalidate(a, nil)
		Expect(err).ToNot(HaveOccurred())
		Expect(valid).To(BeTrue())
	})

	It("does not reassign more requests than the depth allows", func() {
		a.Assign(feasible[0])
		n, err := newEngine(backtrack.WithDepth(1)).Select(context.Background(), a, problem.FreeTime)
		Expect(err).ToNot(HaveOccurred())
		Expect(n).To(BeNil())
	})

	It("asks the injected provider for candidates", func() {
		a.Assign(freeTime)
		p := &recordingProvider{inner: selection.Exhaustive{}}
		e, err := backtrack.New(p, problem.Model)
		Expect(err).ToNot(HaveOccurred())
		_, err = e.Select(context.Background(), a, problem.Course)
		Expect(err).ToNot(HaveOccurred())
		Expect(p.asked).ToNot(BeEmpty())
		Expect(p.asked[0]).To(Equal(problem.Course.Identifier()))
		Expect(p.asked).To(ContainElement(problem.FreeTime.Identifier()))
	})

	It("searches over a bounded random sample", func() {
		problem = fixture.New(2, 5)
		e, err := backtrack.New(selection.NewRandomized(3), problem.Model)
		Expect(err).ToNot(HaveOccurred())
		all, err := problem.Course.ComputeEnrollments(a)
		Expect(err).ToNot(HaveOccurred())
		ids := make([]sectioning.Identifier, len(all))
		for i, v := range all {
			ids[i] = v.Identifier()
		}
		for i := 0; i < 10; i++ {
			n, err := e.Select(context.Background(), assignment.New(), problem.Course)
			Expect(err).ToNot(HaveOccurred())
			Expect(n).ToNot(BeNil())
			Expect(ids).To(ContainElement(n.Enrollments[0].Identifier()))
		}
	})

	It("falls back to every feasible value without a provider", func() {
		e, err := backtrack.New(nil, problem.Model)
		Expect(err).ToNot(HaveOccurred())
		n, err := e.Select(context.Background(), a, problem.Course)
		Expect(err).ToNot(HaveOccurred())
		Expect(n.Enrollments[0].Identifier()).To(Equal(feasible[0].Identifier()))
	})

	It("traces decision points", func() {
		var buf bytes.Buffer
		_, err := newEngine(backtrack.WithTracer(backtrack.LoggingTracer{Writer: &buf})).Select(context.Background(), a, problem.Course)
		Expect(err).ToNot(HaveOccurred())
		Expect(buf.String()).To(ContainSubstring("Variable: s1-r1"))
	})

	Context("budgets", func() {
		It("stops after the iteration limit", func() {
			n, err := newEngine(backtrack.WithMaxIterations(1)).Select(context.Background(), a, problem.Course)
			Expect(err).ToNot(HaveOccurred())
			Expect(n).To(BeNil())
		})

		It("stops when the context is done", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			n, err := newEngine().Select(ctx, a, problem.Course)
			Expect(err).ToNot(HaveOccurred())
			Expect(n).To(BeNil())
		})
	})

	Context("faults", func() {
		errBoom := errors.New("boom")

		It("passes provider errors through unchanged", func() {
			e, err := backtrack.New(&recordingProvider{err: errBoom}, problem.Model)
			Expect(err).ToNot(HaveOccurred())
			_, err = e.Select(context.Background(), a, problem.Course)
			Expect(err).To(BeIdenticalTo(errBoom))
		})

		It("passes conflict model errors through unchanged", func() {
			e, err := backtrack.New(selection.Exhaustive{}, failingConflicts{err: errBoom})
			Expect(err).ToNot(HaveOccurred())
			_, err = e.Select(context.Background(), a, problem.Course)
			Expect(err).To(BeIdenticalTo(errBoom))
		})

		It("rejects a nil request", func() {
			_, err := newEngine().Select(context.Background(), a, nil)
			Expect(err).To(MatchError(sectioning.ErrNilRequest))
			_, err = newEngine().Select(context.Background(), a, (*model.CourseRequest)(nil))
			Expect(err).To(MatchError(sectioning.ErrNilRequest))
		})

		It("rejects a nil assignment", func() {
			n, err := newEngine().Select(context.Background(), nil, problem.Course)
			Expect(err).To(MatchError(sectioning.ErrNoAssignment))
			Expect(n).To(BeNil())
			_, err = newEngine().Select(context.Background(), (*assignment.Map)(nil), problem.Course)
			Expect(err).To(MatchError(sectioning.ErrNoAssignment))
		})
	})
})

var _ = Describe("New", func() {
	It("requires a conflict model", func() {
		_, err := backtrack.New(selection.Exhaustive{}, nil)
		Expect(err).To(HaveOccurred())
	})

	It("rejects negative budgets", func() {
		problem := fixture.New(1, 1)
		_, err := backtrack.New(nil, problem.Model, backtrack.WithDepth(-1))
		Expect(err).To(HaveOccurred())
		_, err = backtrack.New(nil, problem.Model, backtrack.WithMaxIterations(-1))
		Expect(err).To(HaveOccurred())
		_, err = backtrack.New(nil, problem.Model, backtrack.WithTimeout(-1))
		Expect(err).To(HaveOccurred())
	})

	It("reads the budget from properties", func() {
		problem := fixture.New(2, 2)
		p := config.NewProperties()
		p.Set(backtrack.DepthProperty, "1")
		e, err := backtrack.NewFromProperties(p, nil, problem.Model)
		Expect(err).ToNot(HaveOccurred())

		a := assignment.New()
		feasible, err := problem.Course.ComputeEnrollments(a)
		Expect(err).ToNot(HaveOccurred())
		a.Assign(feasible[0])
		n, err := e.Select(context.Background(), a, problem.FreeTime)
		Expect(err).ToNot(HaveOccurred())
		Expect(n).To(BeNil())
	})

	It("reports malformed properties", func() {
		p := config.NewProperties()
		p.Set(backtrack.TimeoutProperty, "soon")
		_, err := backtrack.NewFromProperties(p, nil, fixture.New(1, 1).Model)
		var cerr *config.ConfigurationError
		Expect(errors.As(err, &cerr)).To(BeTrue())
		Expect(cerr.Key).To(Equal(backtrack.TimeoutProperty))
	})
})
