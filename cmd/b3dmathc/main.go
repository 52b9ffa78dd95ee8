// Command b3dmathc compiles the math DSL into ANSI C source.
package main

import (
	"fmt"
	"os"

	"github.com/b3d/mathc/cmd/b3dmathc/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
