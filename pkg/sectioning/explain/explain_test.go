package explain_test

import (
	"bytes"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/cpsolver/studentsct/internal/fixture"
	"github.com/cpsolver/studentsct/internal/sat"
	"github.com/cpsolver/studentsct/pkg/sectioning"
	"github.com/cpsolver/studentsct/pkg/sectioning/assignment"
	"github.com/cpsolver/studentsct/pkg/sectioning/explain"
	"github.com/cpsolver/studentsct/pkg/sectioning/model"
)

var _ = Describe("Explain", func() {
	It("shows an enrollment that fits", func() {
		problem := fixture.New(2, 2)
		e, err := explain.Explain(assignment.New(), problem.Course)
		Expect(err).ToNot(HaveOccurred())
		Expect(e.Feasible()).To(BeTrue())
		Expect(e.Reasons).To(BeEmpty())
		Expect(e.Course.ID).To(Equal(sectioning.Identifier("MATH101")))
		Expect(e.Config.ID).To(Equal(sectioning.Identifier("MATH101-c1")))
		Expect(e.Sections).To(HaveLen(2))
		Expect(e.Sections[0].Subpart.Name).To(Equal("Lec"))
		Expect(e.Sections[1].Subpart.Name).To(Equal("Rec"))
		Expect(e.String()).To(HavePrefix("s1-r1 can take MATH101"))
	})

	It("avoids sections overlapping the student's other enrollments", func() {
		problem := fixture.New(2, 1)
		a := assignment.New()
		free, err := problem.FreeTime.ComputeEnrollments(a)
		Expect(err).ToNot(HaveOccurred())
		a.Assign(free[0])

		e, err := explain.Explain(a, problem.Course)
		Expect(err).ToNot(HaveOccurred())
		Expect(e.Feasible()).To(BeTrue())
		Expect(e.Sections[0].ID).To(Equal(sectioning.Identifier("MATH101-L2")))
	})

	It("reports overlaps with the student's other enrollments", func() {
		problem := fixture.New(1, 1)
		a := assignment.New()
		free, err := problem.FreeTime.ComputeEnrollments(a)
		Expect(err).ToNot(HaveOccurred())
		a.Assign(free[0])

		var traces bytes.Buffer
		e, err := explain.Explain(a, problem.Course, sat.WithTracer(sat.LoggingTracer{Writer: &traces}))
		Expect(err).ToNot(HaveOccurred())
		Expect(e.Feasible()).To(BeFalse())
		Expect(e.Reasons).To(ContainElement(ContainSubstring("overlaps")))
		Expect(e.Reasons).To(ContainElement("request s1-r1 needs an enrollment"))
		Expect(e.String()).To(HavePrefix("s1-r1 cannot be enrolled:"))
		Expect(traces.String()).To(ContainSubstring("Conflicts:"))
	})

	It("reports full sections", func() {
		m := model.New()
		o := fixture.Offering("CHEM", 1, 1, 1)
		Expect(m.AddOffering(o)).To(Succeed())
		var requests []*model.CourseRequest
		for _, id := range []sectioning.Identifier{"s1", "s2"} {
			s := model.NewStudent(id, "")
			requests = append(requests, s.AddCourseRequest(id+"-r1", 1, false, o.Courses[0]))
			Expect(m.AddStudent(s)).To(Succeed())
		}
		a := assignment.New()
		taken, err := requests[1].ComputeEnrollments(a)
		Expect(err).ToNot(HaveOccurred())
		a.Assign(taken[0])

		e, err := explain.Explain(a, requests[0])
		Expect(err).ToNot(HaveOccurred())
		Expect(e.Feasible()).To(BeFalse())
		Expect(e.Reasons).To(ContainElement(ContainSubstring("is full")))
	})

	It("reports reservations without space", func() {
		m := model.New()
		o := fixture.Offering("BIO", 1, 1, model.Unlimited)
		o.AddReservation("BIO-res", 0, true).AddStudent("s1")
		Expect(m.AddOffering(o)).To(Succeed())
		s := model.NewStudent("s1", "")
		r := s.AddCourseRequest("s1-r1", 1, false, o.Courses[0])
		Expect(m.AddStudent(s)).To(Succeed())

		e, err := explain.Explain(assignment.New(), r)
		Expect(err).ToNot(HaveOccurred())
		Expect(e.Feasible()).To(BeFalse())
		Expect(e.Reasons).To(ContainElement(ContainSubstring("reservation")))
	})

	It("falls back to an alternative course", func() {
		m := model.New()
		full := fixture.Offering("ART", 1, 1, 0)
		open := fixture.Offering("MUS", 1, 1, model.Unlimited)
		Expect(m.AddOffering(full)).To(Succeed())
		Expect(m.AddOffering(open)).To(Succeed())
		s := model.NewStudent("s1", "")
		r := s.AddCourseRequest("s1-r1", 1, false, full.Courses[0], open.Courses[0])
		Expect(m.AddStudent(s)).To(Succeed())

		e, err := explain.Explain(assignment.New(), r)
		Expect(err).ToNot(HaveOccurred())
		Expect(e.Feasible()).To(BeTrue())
		Expect(e.Course.ID).To(Equal(sectioning.Identifier("MUS")))
	})

	It("rejects missing input", func() {
		_, err := explain.Explain(assignment.New(), nil)
		Expect(err).To(MatchError(sectioning.ErrNilRequest))
		_, err = explain.Explain(nil, fixture.New(1, 1).Course)
		Expect(err).To(MatchError(sectioning.ErrNoAssignment))
	})
})

var _ = Describe("WriteDIMACS", func() {
	It("writes the encoding with its legend", func() {
		problem := fixture.New(2, 1)
		var out bytes.Buffer
		Expect(explain.WriteDIMACS(&out, assignment.New(), problem.Course)).To(Succeed())
		Expect(out.String()).To(ContainSubstring(" request/s1-r1\n"))
		Expect(out.String()).To(ContainSubstring(" section/MATH101/MATH101-L2\n"))
		Expect(out.String()).To(ContainSubstring("\np cnf "))
		Expect(out.String()).To(ContainSubstring("c request s1-r1 needs an enrollment\n"))
	})

	It("rejects missing input", func() {
		var out bytes.Buffer
		Expect(explain.WriteDIMACS(&out, assignment.New(), nil)).To(MatchError(sectioning.ErrNilRequest))
		Expect(explain.WriteDIMACS(&out, nil, fixture.New(1, 1).Course)).To(MatchError(sectioning.ErrNoAssignment))
		Expect(out.Len()).To(BeZero())
	})
})
