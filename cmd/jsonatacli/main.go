// Command jsonatacli is a small command-line front end for the jsonata
// package: compile a JSONata expression and evaluate it against a JSON
// document, either once (eval) or interactively (repl).
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "jsonatacli:", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "jsonatacli",
		Short:         "Compile and evaluate JSONata expressions against JSON documents",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newEvalCommand())
	root.AddCommand(newReplCommand())
	return root
}
