package problem_test

import (
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/cpsolver/studentsct/pkg/sectioning"
	"github.com/cpsolver/studentsct/pkg/sectioning/assignment"
	"github.com/cpsolver/studentsct/pkg/sectioning/model"
	"github.com/cpsolver/studentsct/pkg/sectioning/problem"
)

var _ = Describe("Load", func() {
	var m *model.Model

	BeforeEach(func() {
		var err error
		m, err = problem.Load("testdata/problem.yaml")
		Expect(err).ToNot(HaveOccurred())
	})

	It("reads offerings and courses", func() {
		Expect(m.Offerings()).To(HaveLen(2))
		math := m.Course("MATH101")
		Expect(math).ToNot(BeNil())
		Expect(math.Limit).To(Equal(3))
		Expect(math.Offering.Name).To(Equal("Calculus"))
		Expect(m.Course("ENGL102").Offering).To(BeIdenticalTo(m.Course("ENGL101").Offering))
		Expect(m.Course("ENGL101").Limit).To(Equal(model.Unlimited))
	})

	It("links parent subparts and sections", func() {
		config := m.Course("MATH101").Offering.Configs[0]
		Expect(config.Subparts).To(HaveLen(2))
		lec, rec := config.Subparts[0], config.Subparts[1]
		Expect(rec.Parent).To(BeIdenticalTo(lec))
		Expect(rec.Sections[2].Parent).To(BeIdenticalTo(lec.Sections[1]))
		Expect(lec.Sections[0].Time.String()).To(Equal("MWF 08:30-09:20"))
		Expect(m.Course("ENGL101").Offering.Configs[0].Subparts[0].Sections[1].Time).To(BeNil())
	})

	It("reads reservations", func() {
		res := m.Course("MATH101").Offering.Reservations
		Expect(res).To(HaveLen(1))
		Expect(res[0].Limit).To(Equal(1))
		Expect(res[0].AppliesTo("s3")).To(BeTrue())
		Expect(res[0].AppliesTo("s1")).To(BeFalse())
	})

	It("reads students and their requests", func() {
		Expect(m.Students()).To(HaveLen(3))
		requests := m.Student("s1").Requests()
		Expect(requests).To(HaveLen(3))
		Expect(requests[0].Identifier()).To(Equal(sectioning.Identifier("s1-r1")))

		english, ok := requests[1].(*model.CourseRequest)
		Expect(ok).To(BeTrue())
		Expect(english.Weight()).To(Equal(0.5))
		Expect(english.Courses()).To(HaveLen(2))

		free, ok := requests[2].(*model.FreeTimeRequest)
		Expect(ok).To(BeTrue())
		Expect(free.Weight()).To(Equal(model.DefaultFreeTimeWeight))
		Expect(free.Time().String()).To(Equal("M 08:00-10:00"))

		Expect(m.Student("s2").Requests()[0].Identifier()).To(Equal(sectioning.Identifier("s2-math")))
		alt := m.Student("s3").Requests()[0].(*model.CourseRequest)
		Expect(alt.Alternative()).To(BeTrue())
	})

	It("builds a model the generator can enumerate", func() {
		r := m.Student("s1").Requests()[0].(*model.CourseRequest)
		values, err := r.ComputeEnrollments(assignment.New())
		Expect(err).ToNot(HaveOccurred())
		// L1 with R1 or R2, L2 with R3
		Expect(values).To(HaveLen(3))
	})

	It("wraps open errors with the path", func() {
		_, err := problem.Load("testdata/missing.yaml")
		Expect(err).To(MatchError(ContainSubstring("testdata/missing.yaml")))
	})
})

var _ = Describe("Parse", func() {
	It("accepts an empty document", func() {
		m, err := problem.Parse(strings.NewReader(""))
		Expect(err).ToNot(HaveOccurred())
		Expect(m.Students()).To(BeEmpty())
	})

	It("gives a lone offering a course of its own", func() {
		m, err := problem.Parse(strings.NewReader("offerings: [{id: PHYS}]"))
		Expect(err).ToNot(HaveOccurred())
		Expect(m.Course("PHYS")).ToNot(BeNil())
	})

	DescribeTable("rejects malformed problems",
		func(doc, message string) {
			_, err := problem.Parse(strings.NewReader(doc))
			Expect(err).To(MatchError(ContainSubstring(message)))
		},
		Entry("unknown field", "offering: []", "field offering not found"),
		Entry("unknown course", "students: [{id: s1, requests: [{courses: [NOPE]}]}]", `unknown course "NOPE"`),
		Entry("empty request", "students: [{id: s1, requests: [{weight: 1}]}]", "neither courses nor free time"),
		Entry("both kinds", `students: [{id: s1, requests: [{courses: [X], freeTime: {days: M, start: "08:00", length: 60}}]}]`, "both courses and free time"),
		Entry("bad days", `students: [{id: s1, requests: [{freeTime: {days: X, start: "08:00", length: 60}}]}]`, "request s1-r1"),
		Entry("unknown parent subpart", "offerings: [{id: A, configs: [{id: c, subparts: [{id: s, parent: p}]}]}]", `unknown parent subpart "p"`),
		Entry("unknown reservation section", "offerings: [{id: A, reservations: [{id: r, sections: [x]}]}]", `unknown section "x"`),
		Entry("duplicate student", "students: [{id: s1}, {id: s1}]", `duplicate identifier "s1"`),
		Entry("request id shared by two students",
			"offerings: [{id: A}, {id: B}]\nstudents: [{id: s1, requests: [{id: r1, courses: [A]}]}, {id: s2, requests: [{id: r1, courses: [B]}]}]",
			`student s2: duplicate identifier "r1"`),
		Entry("request id repeated by one student",
			"offerings: [{id: A}, {id: B}]\nstudents: [{id: s1, requests: [{id: r1, courses: [A]}, {id: r1, courses: [B]}]}]",
			`student s1: duplicate identifier "r1"`),
		Entry("missing offering id", "offerings: [{name: A}]", "missing id"),
	)
})
