package cmd

import (
	"fmt"
	"os"

	"github.com/b3d/mathc/internal/codegen"
	"github.com/b3d/mathc/internal/compiler"
	"github.com/spf13/cobra"
)

var (
	// Version information (set by build flags)
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var (
	dslPath    string
	outputPath string
	suffix     string
	modeFlag   string
	debugFlag  bool
)

var rootCmd = &cobra.Command{
	Use:   "b3dmathc [path]",
	Short: "Compile the b3d math DSL to ANSI C",
	Long: `b3dmathc compiles a small Unicode-math notation language into ANSI C
source: a sequence of function definitions in an I❤LA-inspired syntax
(∑, ∈, ‖·‖, subscripts, superscripts, ASCII/LaTeX fallbacks) becomes a
header-style file of static inline C functions over a fixed b3d_* vector
and matrix runtime, in either floating-point or fixed-point arithmetic.`,
	Version: Version,
	Args:    cobra.MaximumNArgs(1),
	RunE:    runCompile,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd prints the same build metadata as "--version", as its own
// subcommand so it can be invoked without the root command's other flags.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Display detailed version information including commit hash and build date.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("b3dmathc version %s\n", Version)
		fmt.Printf("Git Commit: %s\n", GitCommit)
		fmt.Printf("Build Date: %s\n", BuildDate)
	},
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
Built:  %s
`, GitCommit, BuildDate))

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")

	rootCmd.Flags().StringVar(&dslPath, "dsl", "", "DSL source file (default \"src/math.dsl\")")
	rootCmd.Flags().StringVarP(&outputPath, "output", "o", "", "destination file; if absent, write to stdout")
	rootCmd.Flags().StringVar(&suffix, "suffix", "", "appended to every generated function's name, after b3d_<name>")
	rootCmd.Flags().StringVar(&modeFlag, "mode", "float", "arithmetic lowering: float or fixed")
	rootCmd.Flags().BoolVar(&debugFlag, "debug", false, "print the first 50 tokens and a per-function summary before emitting C")

	rootCmd.AddCommand(versionCmd)
}

// resolveDSLPath applies the "positional or --dsl, default src/math.dsl"
// precedence from the CLI's input-selection rule.
func resolveDSLPath(args []string) string {
	if len(args) == 1 {
		return args[0]
	}
	if dslPath != "" {
		return dslPath
	}
	return "src/math.dsl"
}

func runCompile(_ *cobra.Command, args []string) error {
	path := resolveDSLPath(args)

	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	mode, err := codegen.ParseMode(modeFlag)
	if err != nil {
		return err
	}

	c := compiler.New(string(content))
	c.SetFile(path)
	c.SetMode(mode)
	c.SetSuffix(suffix)
	c.SetDebug(debugFlag)

	out, err := c.Compile()
	if err != nil {
		return err
	}

	if debugFlag {
		printDebugSummary(c)
	}

	if outputPath == "" {
		fmt.Print(out)
		return nil
	}
	if err := os.WriteFile(outputPath, []byte(out), 0o644); err != nil {
		return fmt.Errorf("failed to write output file %s: %w", outputPath, err)
	}
	return nil
}

// printDebugSummary prints the first 50 tokens and a per-function summary
// (name, parameter names, inferred return type), per the --debug contract.
func printDebugSummary(c *compiler.Compiler) {
	toks := c.Tokens()
	limit := len(toks)
	if limit > 50 {
		limit = 50
	}
	fmt.Println("-- tokens --")
	for _, tok := range toks[:limit] {
		fmt.Println(tok.String())
	}

	fmt.Println("-- functions --")
	for _, fn := range c.Funcs() {
		names := make([]string, len(fn.Params))
		for i, p := range fn.Params {
			names[i] = p.Name
		}
		fmt.Printf("%s(%v) -> %s\n", fn.Name, names, fn.ReturnType)
	}
	fmt.Println("-- output --")
}
