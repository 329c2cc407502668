package explain

import (
	"fmt"
	"strings"

	"github.com/cpsolver/studentsct/internal/sat"
	"github.com/cpsolver/studentsct/pkg/sectioning"
	"github.com/cpsolver/studentsct/pkg/sectioning/model"
)

type problem struct {
	request   *model.CourseRequest
	variables []sat.Variable
	courses   map[sat.Identifier]*model.Course
	configs   map[sat.Identifier]*model.Config
	sections  map[sat.Identifier]*model.Section
}

func requestID(r *model.CourseRequest) sat.Identifier {
	return sat.Identifier("request/" + r.Identifier())
}

func courseID(c *model.Course) sat.Identifier {
	return sat.Identifier("course/" + c.ID)
}

func configID(c *model.Course, cfg *model.Config) sat.Identifier {
	return sat.Identifier(fmt.Sprintf("config/%s/%s", c.ID, cfg.ID))
}

func subpartID(c *model.Course, sp *model.Subpart) sat.Identifier {
	return sat.Identifier(fmt.Sprintf("subpart/%s/%s", c.ID, sp.ID))
}

// Section variables are per course since courses of one offering
// share their sections.
func sectionID(c *model.Course, s *model.Section) sat.Identifier {
	return sat.Identifier(fmt.Sprintf("section/%s/%s", c.ID, s.ID))
}

// assigned holds the student's other enrollments.
type assigned struct {
	request    sectioning.Request
	enrollment *model.Enrollment
}

func othersOf(a sectioning.Assignment, r *model.CourseRequest) []assigned {
	var out []assigned
	for _, other := range r.Student().Requests() {
		if other.Identifier() == r.Identifier() {
			continue
		}
		if e, ok := a.Value(other).(*model.Enrollment); ok && e != nil {
			out = append(out, assigned{request: other, enrollment: e})
		}
	}
	return out
}

func overlapping(s *model.Section, e *model.Enrollment) bool {
	if e.FreeTime() != nil {
		return s.Time.Overlaps(e.FreeTime())
	}
	for _, o := range e.Sections() {
		if s.Overlaps(o) {
			return true
		}
	}
	return false
}

func newProblem(a sectioning.Assignment, r *model.CourseRequest) (*problem, error) {
	availability, err := r.Availability(a)
	if err != nil {
		return nil, err
	}
	others := othersOf(a, r)
	p := &problem{
		request:  r,
		courses:  map[sat.Identifier]*model.Course{},
		configs:  map[sat.Identifier]*model.Config{},
		sections: map[sat.Identifier]*model.Section{},
	}

	courses := r.Courses()
	courseIDs := make([]sat.Identifier, len(courses))
	names := make([]string, len(courses))
	for i, c := range courses {
		courseIDs[i] = courseID(c)
		names[i] = c.String()
	}
	p.add(sat.NewSimpleVariable(requestID(r),
		sat.Describe(sat.Mandatory(), fmt.Sprintf("request %s needs an enrollment", r.Identifier())),
		sat.Describe(sat.Dependency(courseIDs...), fmt.Sprintf("request %s asks for one of %s", r.Identifier(), strings.Join(names, ", "))),
		sat.AtMost(1, courseIDs...),
	))

	for _, c := range courses {
		p.encodeCourse(c, availability, others)
	}
	return p, nil
}

func (p *problem) add(v *sat.SimpleVariable) {
	p.variables = append(p.variables, v)
}

func (p *problem) encodeCourse(c *model.Course, availability *model.Availability, others []assigned) {
	configs := c.Offering.Configs
	configIDs := make([]sat.Identifier, len(configs))
	for i, cfg := range configs {
		configIDs[i] = configID(c, cfg)
	}
	v := sat.NewSimpleVariable(courseID(c),
		sat.Describe(sat.Dependency(configIDs...), fmt.Sprintf("course %s needs one of its %d configurations", c, len(configs))),
		sat.AtMost(1, configIDs...),
	)
	var reasons []string
	switch {
	case availability.MustUseReservation(c.Offering) && !availability.Course(c):
		reasons = append(reasons, fmt.Sprintf("course %s is only open through a reservation that has no space left", c))
	case !availability.Course(c):
		reasons = append(reasons, fmt.Sprintf("course %s is full", c))
	}
	for _, other := range others {
		if oc := other.enrollment.Course(); oc != nil && oc.Offering == c.Offering {
			reasons = append(reasons, fmt.Sprintf("course %s is already taken as %s by request %s", c, oc, other.request.Identifier()))
		}
	}
	prohibit(v, reasons)
	p.courses[v.Identifier()] = c
	p.add(v)

	for _, cfg := range configs {
		p.encodeConfig(c, cfg, availability, others)
	}
}

func (p *problem) encodeConfig(c *model.Course, cfg *model.Config, availability *model.Availability, others []assigned) {
	v := sat.NewSimpleVariable(configID(c, cfg), sat.Dependency(courseID(c)))
	for _, sp := range cfg.Subparts {
		v.AddConstraint(sat.Describe(sat.Dependency(subpartID(c, sp)), fmt.Sprintf("configuration %s of %s needs a %s section", cfg.Name, c, sp.Name)))
	}
	if !availability.Config(cfg) {
		prohibit(v, []string{fmt.Sprintf("configuration %s of %s is full", cfg.Name, c)})
	}
	p.configs[v.Identifier()] = cfg
	p.add(v)

	var all []*model.Section
	for _, sp := range cfg.Subparts {
		sectionIDs := make([]sat.Identifier, len(sp.Sections))
		for i, s := range sp.Sections {
			sectionIDs[i] = sectionID(c, s)
		}
		p.add(sat.NewSimpleVariable(subpartID(c, sp),
			sat.Dependency(configID(c, cfg)),
			sat.Describe(sat.Dependency(sectionIDs...), fmt.Sprintf("%s of %s needs one of its %d sections", sp.Name, c, len(sp.Sections))),
			sat.AtMost(1, sectionIDs...),
		))
		all = append(all, sp.Sections...)
	}

	for i, s := range all {
		v := sat.NewSimpleVariable(sectionID(c, s), sat.Dependency(subpartID(c, s.Subpart)))
		if s.Parent != nil {
			v.AddConstraint(sat.Describe(sat.Dependency(sectionID(c, s.Parent)), fmt.Sprintf("%s of %s requires %s", s.Name, c, s.Parent.Name)))
		}
		for _, o := range all[i+1:] {
			if o.Subpart != s.Subpart && s.Overlaps(o) {
				v.AddConstraint(sat.Describe(sat.Conflict(sectionID(c, o)), fmt.Sprintf("%s overlaps %s", s, o)))
			}
		}
		var reasons []string
		switch {
		case availability.Section(c.Offering, s):
		case availability.MustUseReservation(c.Offering):
			reasons = append(reasons, fmt.Sprintf("%s of %s is not open through any reservation of the student", s.Name, c))
		default:
			reasons = append(reasons, fmt.Sprintf("%s of %s is full", s.Name, c))
		}
		for _, other := range others {
			if overlapping(s, other.enrollment) {
				reasons = append(reasons, fmt.Sprintf("%s of %s overlaps %s of request %s", s, c, other.enrollment, other.request.Identifier()))
			}
		}
		prohibit(v, reasons)
		p.sections[v.Identifier()] = s
		p.add(v)
	}
}

// prohibit rules v out for all reasons at once. Separate Prohibited
// constraints would share one literal and only one reason would be
// reported.
func prohibit(v *sat.SimpleVariable, reasons []string) {
	if len(reasons) == 0 {
		return
	}
	v.AddConstraint(sat.Describe(sat.Prohibited(), strings.Join(reasons, "; ")))
}

func (p *problem) decode(selected []sat.Variable) *Explanation {
	out := &Explanation{Request: p.request}
	for _, v := range selected {
		id := v.Identifier()
		if c, ok := p.courses[id]; ok {
			out.Course = c
		}
		if cfg, ok := p.configs[id]; ok {
			out.Config = cfg
		}
		if s, ok := p.sections[id]; ok {
			out.Sections = append(out.Sections, s)
		}
	}
	return out
}
