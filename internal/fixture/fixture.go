// Package fixture builds small sectioning problems for tests.
package fixture

import (
	"fmt"

	"github.com/cpsolver/studentsct/pkg/sectioning"
	"github.com/cpsolver/studentsct/pkg/sectioning/model"
)

const (
	firstClass = 7 * 60
	hour       = 60
	classLen   = 50
)

// Offering returns an offering with a single course and config made of
// a lecture subpart meeting MWF and a recitation subpart meeting TR.
// None of its sections overlap each other, so it has
// lectures*recitations enrollments.
func Offering(id string, lectures, recitations, limit int) *model.Offering {
	o := model.NewOffering(sectioning.Identifier(id), id)
	o.AddCourse(sectioning.Identifier(id), id, model.Unlimited)
	c := o.AddConfig(sectioning.Identifier(id+"-c1"), "c1", model.Unlimited)
	lec := c.AddSubpart(sectioning.Identifier(id+"-lec"), "Lec", nil)
	for i := 0; i < lectures; i++ {
		lec.AddSection(sectioning.Identifier(fmt.Sprintf("%s-L%d", id, i+1)), fmt.Sprintf("Lec %d", i+1), nil,
			&model.TimeLocation{Days: model.Monday | model.Wednesday | model.Friday, Start: firstClass + i*hour, Length: classLen}, limit)
	}
	rec := c.AddSubpart(sectioning.Identifier(id+"-rec"), "Rec", nil)
	for i := 0; i < recitations; i++ {
		rec.AddSection(sectioning.Identifier(fmt.Sprintf("%s-R%d", id, i+1)), fmt.Sprintf("Rec %d", i+1), nil,
			&model.TimeLocation{Days: model.Tuesday | model.Thursday, Start: firstClass + i*hour, Length: classLen}, limit)
	}
	return o
}

// Problem is a model with one student requesting a course with
// lectures*recitations enrollments and a free time block.
type Problem struct {
	Model    *model.Model
	Student  *model.Student
	Course   *model.CourseRequest
	FreeTime *model.FreeTimeRequest
}

// New builds a Problem. The free time overlaps the first lecture.
func New(lectures, recitations int) *Problem {
	m := model.New()
	o := Offering("MATH101", lectures, recitations, model.Unlimited)
	if err := m.AddOffering(o); err != nil {
		panic(err)
	}
	s := model.NewStudent("s1", "Student 1")
	if err := m.AddStudent(s); err != nil {
		panic(err)
	}
	cr := s.AddCourseRequest("s1-r1", 1, false, o.Courses[0])
	ft := s.AddFreeTimeRequest("s1-r2", model.DefaultFreeTimeWeight,
		&model.TimeLocation{Days: model.Monday, Start: firstClass, Length: hour})
	return &Problem{Model: m, Student: s, Course: cr, FreeTime: ft}
}
