package explain

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cpsolver/studentsct/cmd/flags"
	"github.com/cpsolver/studentsct/cmd/solve"
	"github.com/cpsolver/studentsct/pkg/sectioning"
	explainer "github.com/cpsolver/studentsct/pkg/sectioning/explain"
	"github.com/cpsolver/studentsct/pkg/sectioning/model"
)

func NewExplainCommand(globals *flags.Globals) *cobra.Command {
	var requests []string
	cmd := &cobra.Command{
		Use:   "explain <problem.yaml>",
		Short: "Explains why course requests are left without an enrollment",
		Long: `Sections the students of a problem file, then explains for every course
request left without an enrollment (or for the requests given with
--request) why it cannot be enrolled next to the student's other
enrollments.`,
		Args: cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return solve.Exists(args[0])
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			m, solution, err := solve.Run(cmd, globals, args[0])
			if err != nil {
				return err
			}
			targets, err := selectRequests(m, solution.Unassigned(), requests)
			if err != nil {
				return err
			}
			a := solution.Assignment().(sectioning.MutableAssignment).Clone()
			w := cmd.OutOrStdout()
			if len(targets) == 0 {
				fmt.Fprintln(w, "every course request has an enrollment")
				return nil
			}
			for _, r := range targets {
				a.Unassign(r)
				e, err := explainer.Explain(a, r)
				if err != nil {
					return fmt.Errorf("explaining %s: %w", r.Identifier(), err)
				}
				fmt.Fprintln(w, e)
				if current := solution.Assignment().Value(r); current != nil {
					a.Assign(current)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringArrayVarP(&requests, "request", "r", nil, "Explain this request (repeatable)")
	return cmd
}

func selectRequests(m *model.Model, unassigned []sectioning.Request, ids []string) ([]*model.CourseRequest, error) {
	var out []*model.CourseRequest
	if len(ids) == 0 {
		for _, r := range unassigned {
			if cr, ok := r.(*model.CourseRequest); ok {
				out = append(out, cr)
			}
		}
		return out, nil
	}
	byID := map[sectioning.Identifier]*model.CourseRequest{}
	for _, r := range m.Requests() {
		if cr, ok := r.(*model.CourseRequest); ok {
			byID[cr.Identifier()] = cr
		}
	}
	for _, id := range ids {
		cr, ok := byID[sectioning.Identifier(id)]
		if !ok {
			return nil, fmt.Errorf("no course request %q", id)
		}
		out = append(out, cr)
	}
	return out, nil
}
