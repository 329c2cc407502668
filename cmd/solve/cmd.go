package solve

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cpsolver/studentsct/cmd/flags"
	"github.com/cpsolver/studentsct/pkg/sectioning/model"
	"github.com/cpsolver/studentsct/pkg/sectioning/problem"
	"github.com/cpsolver/studentsct/pkg/sectioning/solver"
)

func NewSolveCommand(globals *flags.Globals) *cobra.Command {
	return &cobra.Command{
		Use:   "solve <problem.yaml>",
		Short: "Sections the students of a problem file",
		Long: `Sections the students of a problem file and prints the enrollment of
every request. Search budgets are read from the properties, for instance:

  studentsct solve problem.yaml --set Neighbour.MaxValues=20 --set Sectioning.Rounds=5
`,
		Args: cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return Exists(args[0])
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			m, solution, err := Run(cmd, globals, args[0])
			if err != nil {
				return err
			}
			Print(cmd.OutOrStdout(), m, solution)
			return nil
		},
	}
}

// Exists fails when the problem file is missing.
func Exists(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("file (%s) not found", path)
	}
	return nil
}

// Run loads the problem and solves it with the configured properties.
func Run(cmd *cobra.Command, globals *flags.Globals, path string) (*model.Model, *solver.Solution, error) {
	p, err := globals.LoadProperties()
	if err != nil {
		return nil, nil, err
	}
	for _, key := range p.Keys() {
		value, _ := p.Get(key)
		globals.Logger.Debug("property", zap.String("key", key), zap.String("value", value))
	}
	m, err := problem.Load(path)
	if err != nil {
		return nil, nil, err
	}
	s, err := solver.NewSolverFromProperties(m, p, solver.WithLogger(globals.Logger))
	if err != nil {
		return nil, nil, err
	}
	solution, err := s.Solve(cmd.Context())
	if err != nil {
		return nil, nil, err
	}
	return m, solution, nil
}

func Print(w io.Writer, m *model.Model, solution *solver.Solution) {
	a := solution.Assignment()
	for _, student := range m.Students() {
		fmt.Fprintf(w, "%s\n", student)
		for _, r := range student.Requests() {
			if e := a.Value(r); e != nil {
				fmt.Fprintf(w, "  %s: %s\n", r.Identifier(), e)
			} else {
				fmt.Fprintf(w, "  %s: not assigned\n", r.Identifier())
			}
		}
	}
	fmt.Fprintf(w, "value: %.3f, assigned: %d, not assigned: %d\n",
		solution.Value(), len(solution.Assigned()), len(solution.Unassigned()))
}
