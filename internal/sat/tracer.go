package sat

import (
	"fmt"
	"io"
)

type SearchPosition interface {
	Variables() []Variable
	Conflicts() []AppliedConstraint
}

type Tracer interface {
	Trace(p SearchPosition)
}

type DefaultTracer struct{}

func (DefaultTracer) Trace(_ SearchPosition) {
}

type LoggingTracer struct {
	Writer io.Writer
}

func (t LoggingTracer) Trace(p SearchPosition) {
	fmt.Fprintf(t.Writer, "---\nSelected:\n")
	for _, v := range p.Variables() {
		fmt.Fprintf(t.Writer, "- %s\n", v.Identifier())
	}
	fmt.Fprintf(t.Writer, "Conflicts:\n")
	for _, a := range p.Conflicts() {
		fmt.Fprintf(t.Writer, "- %s\n", a)
	}
}

type position struct {
	variables []Variable
	conflicts []AppliedConstraint
}

func (p position) Variables() []Variable          { return p.variables }
func (p position) Conflicts() []AppliedConstraint { return p.conflicts }
