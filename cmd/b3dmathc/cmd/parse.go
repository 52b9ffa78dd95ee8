package cmd

import (
	"fmt"
	"os"

	"github.com/b3d/mathc/internal/lexer"
	"github.com/b3d/mathc/internal/parser"
	"github.com/spf13/cobra"
)

var parseEval string

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Parse a DSL file or expression and print the function summary",
	Long: `Parse a math DSL source and print, for each function definition found,
its name, parameter names and types, and inferred return type. Useful
for debugging the parser's where-clause and return-type inference.`,
	Args: cobra.MaximumNArgs(1),
	RunE: parseSource,
}

func init() {
	rootCmd.AddCommand(parseCmd)
	parseCmd.Flags().StringVarP(&parseEval, "eval", "e", "", "parse inline source instead of reading a file")
}

func parseSource(_ *cobra.Command, args []string) error {
	var input, filename string
	switch {
	case parseEval != "":
		input, filename = parseEval, "<eval>"
	case len(args) == 1:
		content, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read file %s: %w", args[0], err)
		}
		input, filename = string(content), args[0]
	default:
		return fmt.Errorf("either provide a file path or use -e for inline source")
	}

	toks := lexer.Lex(input)
	funcs, err := parser.New(toks, parser.WithSource(input), parser.WithFile(filename)).Parse()
	if err != nil {
		return err
	}

	for _, fn := range funcs {
		fmt.Printf("%s(", fn.Name)
		for i, p := range fn.Params {
			if i > 0 {
				fmt.Print(", ")
			}
			fmt.Printf("%s: %s", p.Name, p.Type)
		}
		fmt.Printf(") -> %s\n", fn.ReturnType)
	}
	return nil
}
