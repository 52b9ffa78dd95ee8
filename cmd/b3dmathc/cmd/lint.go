package cmd

import (
	"fmt"

	"github.com/b3d/mathc/internal/lint"
	"github.com/spf13/cobra"
)

var lintCmd = &cobra.Command{
	Use:   "lint <dir>",
	Short: "Check a directory of C files for raw libm calls",
	Long: `Walk a directory of .c files and flag any use of the raw math.h
names (sinf, cosf, tanf, sqrtf, fabsf, sincosf) instead of their b3d_*
wrappers, and any file that uses a b3d_* wrapper without including
b3d-math.h.`,
	Args: cobra.ExactArgs(1),
	RunE: runLint,
}

func init() {
	rootCmd.AddCommand(lintCmd)
}

func runLint(_ *cobra.Command, args []string) error {
	results, err := lint.CheckDir(args[0])
	if err != nil {
		return err
	}

	report, code := lint.Report(results)
	fmt.Print(report)
	if code != 0 {
		return fmt.Errorf("lint found offenses")
	}
	return nil
}
