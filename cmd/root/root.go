package root

import (
	"github.com/spf13/cobra"

	"github.com/cpsolver/studentsct/cmd/dimacs"
	"github.com/cpsolver/studentsct/cmd/explain"
	"github.com/cpsolver/studentsct/cmd/flags"
	"github.com/cpsolver/studentsct/cmd/solve"
)

func NewRootCmd() *cobra.Command {
	globals := &flags.Globals{}
	rootCmd := &cobra.Command{
		Use:   "studentsct",
		Short: "studentsct sections students into classes",
		Long: `Assigns students to the sections of the courses they request, improving
the assignment with a randomized backtracking search, and explains why a
request cannot be enrolled.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return globals.Init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			globals.Sync()
		},
	}
	globals.AddFlags(rootCmd.PersistentFlags())

	// add sub-commands
	rootCmd.AddCommand(solve.NewSolveCommand(globals))
	rootCmd.AddCommand(explain.NewExplainCommand(globals))
	rootCmd.AddCommand(dimacs.NewDimacsCommand(globals))

	return rootCmd
}
