package cmd

import (
	"fmt"
	"os"

	"github.com/b3d/mathc/internal/lexer"
	"github.com/spf13/cobra"
)

var lexEval string

var lexCmd = &cobra.Command{
	Use:   "lex [file]",
	Short: "Tokenize a DSL file or expression",
	Long: `Tokenize a math DSL source and print the resulting tokens, one per
line. Useful for debugging the lexer's Unicode/ASCII alphabet handling.`,
	Args: cobra.MaximumNArgs(1),
	RunE: lexSource,
}

func init() {
	rootCmd.AddCommand(lexCmd)
	lexCmd.Flags().StringVarP(&lexEval, "eval", "e", "", "tokenize inline source instead of reading a file")
}

func lexSource(_ *cobra.Command, args []string) error {
	var input string
	switch {
	case lexEval != "":
		input = lexEval
	case len(args) == 1:
		content, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read file %s: %w", args[0], err)
		}
		input = string(content)
	default:
		return fmt.Errorf("either provide a file path or use -e for inline source")
	}

	for _, tok := range lexer.Lex(input) {
		fmt.Println(tok.String())
	}
	return nil
}
