package dimacs

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cpsolver/studentsct/cmd/flags"
	"github.com/cpsolver/studentsct/cmd/solve"
	"github.com/cpsolver/studentsct/pkg/sectioning"
	"github.com/cpsolver/studentsct/pkg/sectioning/explain"
	"github.com/cpsolver/studentsct/pkg/sectioning/model"
)

func NewDimacsCommand(globals *flags.Globals) *cobra.Command {
	var request string
	cmd := &cobra.Command{
		Use:   "dimacs <problem.yaml> --request <id>",
		Short: "Prints the enrollment problem of a course request in dimacs format",
		Long: `Sections the students of a problem file, then prints the formula that
decides whether the given course request can be enrolled next to the
student's other enrollments. For instance:
c 1 request/s1-r1
c 2 course/MATH101
p cnf 24 31
...
c request/s1-r1 is mandatory
1 0
Comment lines map variable numbers to their meaning and unit clauses to
the facts they stand for.`,
		Args: cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if request == "" {
				return fmt.Errorf("--request is required")
			}
			return solve.Exists(args[0])
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			m, solution, err := solve.Run(cmd, globals, args[0])
			if err != nil {
				return err
			}
			r, err := courseRequest(m, sectioning.Identifier(request))
			if err != nil {
				return err
			}
			a := solution.Assignment().(sectioning.MutableAssignment).Clone()
			a.Unassign(r)
			return explain.WriteDIMACS(cmd.OutOrStdout(), a, r)
		},
	}
	cmd.Flags().StringVarP(&request, "request", "r", "", "Course request to encode")
	return cmd
}

func courseRequest(m *model.Model, id sectioning.Identifier) (*model.CourseRequest, error) {
	for _, r := range m.Requests() {
		if cr, ok := r.(*model.CourseRequest); ok && cr.Identifier() == id {
			return cr, nil
		}
	}
	return nil, fmt.Errorf("no course request %q", id)
}
