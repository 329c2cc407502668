package selection_test

import (
	"errors"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/cpsolver/studentsct/internal/fixture"
	"github.com/cpsolver/studentsct/pkg/sectioning"
	"github.com/cpsolver/studentsct/pkg/sectioning/assignment"
	"github.com/cpsolver/studentsct/pkg/sectioning/config"
	"github.com/cpsolver/studentsct/pkg/sectioning/model"
	"github.com/cpsolver/studentsct/pkg/sectioning/selection"
)

type selectionContext struct {
	assignment sectioning.Assignment
}

func (c selectionContext) Assignment() sectioning.Assignment {
	return c.assignment
}

type stubEnrollment struct {
	id      sectioning.Identifier
	request sectioning.Request
}

func (e stubEnrollment) Identifier() sectioning.Identifier { return e.id }
func (e stubEnrollment) Request() sectioning.Request       { return e.request }
func (stubEnrollment) Value() float64                      { return 1 }

// stubRequest has a fixed list of values and no sampling capability.
type stubRequest struct {
	id     sectioning.Identifier
	values int
	err    error
}

func (r *stubRequest) Identifier() sectioning.Identifier { return r.id }
func (r *stubRequest) StudentID() sectioning.Identifier  { return "s" }
func (r *stubRequest) ComputeEnrollments(sectioning.Assignment) ([]sectioning.Enrollment, error) {
	if r.err != nil {
		return nil, r.err
	}
	out := make([]sectioning.Enrollment, r.values)
	for i := range out {
		out[i] = stubEnrollment{id: sectioning.Identifier(string(r.id) + "-" + string(rune('a'+i))), request: r}
	}
	return out, nil
}

// samplingRequest records how it was asked for values.
type samplingRequest struct {
	stubRequest
	limits    []int
	sampleErr error
}

func (r *samplingRequest) ComputeRandomEnrollments(a sectioning.Assignment, limit int) ([]sectioning.Enrollment, error) {
	r.limits = append(r.limits, limit)
	if r.sampleErr != nil {
		return nil, r.sampleErr
	}
	all, _ := r.stubRequest.ComputeEnrollments(a)
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func identifiers(es []sectioning.Enrollment) []sectioning.Identifier {
	out := make([]sectioning.Identifier, len(es))
	for i, e := range es {
		out[i] = e.Identifier()
	}
	return out
}

func candidates(p sectioning.CandidateProvider, ctx sectioning.SelectionContext, r sectioning.Request) []sectioning.Enrollment {
	it, err := p.Candidates(ctx, r)
	Expect(err).ToNot(HaveOccurred())
	return it.Collect()
}

var _ = Describe("Randomized", func() {
	var (
		problem  *fixture.Problem
		ctx      selectionContext
		feasible []sectioning.Enrollment
	)

	BeforeEach(func() {
		problem = fixture.New(2, 5)
		ctx = selectionContext{assignment: assignment.New()}
		var err error
		feasible, err = problem.Course.ComputeEnrollments(ctx.assignment)
		Expect(err).ToNot(HaveOccurred())
		Expect(feasible).To(HaveLen(10))
	})

	It("returns exactly the bound of distinct feasible enrollments when the space is larger", func() {
		values := candidates(selection.NewRandomized(3), ctx, problem.Course)
		Expect(values).To(HaveLen(3))
		for _, id := range identifiers(values) {
			Expect(identifiers(feasible)).To(ContainElement(id))
		}
		Expect(map[sectioning.Identifier]bool{
			values[0].Identifier(): true,
			values[1].Identifier(): true,
			values[2].Identifier(): true,
		}).To(HaveLen(3))
	})

	It("enumerates everything when the bound is zero", func() {
		values := candidates(selection.NewRandomized(0), ctx, problem.Course)
		Expect(identifiers(values)).To(Equal(identifiers(feasible)))
	})

	It("enumerates everything when the bound is negative", func() {
		values := candidates(selection.NewRandomized(-7), ctx, problem.Course)
		Expect(identifiers(values)).To(Equal(identifiers(feasible)))
	})

	It("returns the whole space when it is smaller than the bound", func() {
		values := candidates(selection.NewRandomized(100), ctx, problem.Course)
		Expect(identifiers(values)).To(ConsistOf(identifiers(feasible)))
	})

	It("ignores the bound for requests that cannot be sampled", func() {
		r := &stubRequest{id: "r", values: 2}
		values := candidates(selection.NewRandomized(5), ctx, r)
		Expect(identifiers(values)).To(Equal([]sectioning.Identifier{"r-a", "r-b"}))

		r = &stubRequest{id: "r", values: 8}
		values = candidates(selection.NewRandomized(1), ctx, r)
		Expect(values).To(HaveLen(8))

		values = candidates(selection.NewRandomized(1), ctx, problem.FreeTime)
		Expect(values).To(HaveLen(1))
	})

	It("samples by capability rather than by concrete type", func() {
		r := &samplingRequest{stubRequest: stubRequest{id: "r", values: 6}}
		values := candidates(selection.NewRandomized(4), ctx, r)
		Expect(values).To(HaveLen(4))
		Expect(r.limits).To(Equal([]int{4}))

		candidates(selection.NewRandomized(0), ctx, r)
		Expect(r.limits).To(Equal([]int{4}))
	})

	It("produces a fresh result on every call", func() {
		s := selection.NewRandomized(3)
		for i := 0; i < 25; i++ {
			values := candidates(s, ctx, problem.Course)
			Expect(values).To(HaveLen(3))
			seen := map[sectioning.Identifier]bool{}
			for _, id := range identifiers(values) {
				Expect(seen).ToNot(HaveKey(id))
				seen[id] = true
				Expect(identifiers(feasible)).To(ContainElement(id))
			}
		}

		first, err := s.Candidates(ctx, problem.Course)
		Expect(err).ToNot(HaveOccurred())
		second, err := s.Candidates(ctx, problem.Course)
		Expect(err).ToNot(HaveOccurred())
		Expect(first).ToNot(BeIdenticalTo(second))
		Expect(first.Collect()).To(HaveLen(3))
		Expect(first.Next()).To(BeFalse())
		Expect(second.Remaining()).To(Equal(3))
	})

	It("does not change the assignment", func() {
		a := assignment.New()
		a.Assign(feasible[4])
		before := a.Assigned()
		candidates(selection.NewRandomized(3), selectionContext{assignment: a}, problem.Course)
		candidates(selection.NewRandomized(0), selectionContext{assignment: a}, problem.Course)
		Expect(a.Assigned()).To(Equal(before))
	})

	It("can be shared between concurrent searches", func() {
		s := selection.NewRandomized(3)
		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer GinkgoRecover()
				defer wg.Done()
				own := selectionContext{assignment: assignment.New()}
				for j := 0; j < 10; j++ {
					it, err := s.Candidates(own, problem.Course)
					Expect(err).ToNot(HaveOccurred())
					Expect(it.Collect()).To(HaveLen(3))
				}
			}()
		}
		wg.Wait()
	})

	Context("faults", func() {
		errBoom := errors.New("boom")

		It("passes sampling errors through unchanged", func() {
			r := &samplingRequest{stubRequest: stubRequest{id: "r", values: 3}, sampleErr: errBoom}
			it, err := selection.NewRandomized(2).Candidates(ctx, r)
			Expect(err).To(BeIdenticalTo(errBoom))
			Expect(it).To(BeNil())
		})

		It("passes enumeration errors through unchanged", func() {
			r := &stubRequest{id: "r", err: errBoom}
			_, err := selection.NewRandomized(2).Candidates(ctx, r)
			Expect(err).To(BeIdenticalTo(errBoom))
			_, err = selection.Exhaustive{}.Candidates(ctx, r)
			Expect(err).To(BeIdenticalTo(errBoom))
		})

		It("rejects a nil request", func() {
			_, err := selection.NewRandomized(2).Candidates(ctx, nil)
			Expect(err).To(MatchError(sectioning.ErrNilRequest))
		})

		It("rejects a nil pointer wrapped in the request interface", func() {
			_, err := selection.NewRandomized(2).Candidates(ctx, (*model.CourseRequest)(nil))
			Expect(err).To(MatchError(sectioning.ErrNilRequest))
			_, err = selection.NewRandomized(0).Candidates(ctx, (*model.FreeTimeRequest)(nil))
			Expect(err).To(MatchError(sectioning.ErrNilRequest))
			_, err = selection.Exhaustive{}.Candidates(ctx, (*model.CourseRequest)(nil))
			Expect(err).To(MatchError(sectioning.ErrNilRequest))
		})

		It("rejects a context without an assignment", func() {
			_, err := selection.NewRandomized(2).Candidates(selectionContext{}, problem.Course)
			Expect(err).To(MatchError(sectioning.ErrNoAssignment))
			_, err = selection.NewRandomized(2).Candidates(selectionContext{assignment: (*assignment.Map)(nil)}, problem.Course)
			Expect(err).To(MatchError(sectioning.ErrNoAssignment))
			_, err = selection.NewRandomized(2).Candidates(nil, problem.Course)
			Expect(err).To(MatchError(sectioning.ErrNoAssignment))
		})
	})
})

var _ = Describe("NewRandomizedFromProperties", func() {
	It("defaults to 100", func() {
		s, err := selection.NewRandomizedFromProperties(config.NewProperties())
		Expect(err).ToNot(HaveOccurred())
		Expect(s.MaxValues()).To(Equal(selection.DefaultMaxValues))
		Expect(s.MaxValues()).To(Equal(100))

		s, err = selection.NewRandomizedFromProperties(nil)
		Expect(err).ToNot(HaveOccurred())
		Expect(s.MaxValues()).To(Equal(100))
	})

	It("reads Neighbour.MaxValues", func() {
		p := config.NewProperties()
		p.Set("Neighbour.MaxValues", "0")
		s, err := selection.NewRandomizedFromProperties(p)
		Expect(err).ToNot(HaveOccurred())
		Expect(s.MaxValues()).To(Equal(0))

		p.Set("Neighbour.MaxValues", "12")
		s, err = selection.NewRandomizedFromProperties(p)
		Expect(err).ToNot(HaveOccurred())
		Expect(s.MaxValues()).To(Equal(12))
	})

	DescribeTable("fails on values that are not non-negative integers",
		func(value string) {
			p := config.NewProperties()
			p.Set(selection.MaxValuesProperty, value)
			s, err := selection.NewRandomizedFromProperties(p)
			Expect(s).To(BeNil())
			var cerr *config.ConfigurationError
			Expect(errors.As(err, &cerr)).To(BeTrue())
			Expect(cerr.Key).To(Equal(selection.MaxValuesProperty))
		},
		Entry("text", "many"),
		Entry("negative", "-1"),
		Entry("fraction", "2.5"),
	)
})

var _ = Describe("Exhaustive", func() {
	It("returns every feasible enrollment in generator order", func() {
		problem := fixture.New(3, 2)
		ctx := selectionContext{assignment: assignment.New()}
		feasible, err := problem.Course.ComputeEnrollments(ctx.assignment)
		Expect(err).ToNot(HaveOccurred())
		values := candidates(selection.Exhaustive{}, ctx, problem.Course)
		Expect(identifiers(values)).To(Equal(identifiers(feasible)))
	})
})
