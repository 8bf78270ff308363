package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/secondlayerco/jsonata"
)

// newReplCommand builds the "repl" subcommand: an interactive loop that
// compiles and evaluates one expression per line against a JSON document
// loaded once at startup. Each line gets a fresh Program (and so a fresh
// $/$$` binding of the loaded document), matching the way a JSONata REPL
// user expects `$` to mean "the loaded document" on every line rather than
// carrying state between lines.
func newReplCommand() *cobra.Command {
	var filePath string

	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Interactively evaluate JSONata expressions against a JSON document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Without --file, stdin belongs to the interactive loop; the
			// document context is simply absent rather than read from it.
			var input interface{}
			if filePath != "" {
				var err error
				input, err = readInput(filePath, cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("reading input: %w", err)
				}
			}
			return runRepl(cmd.OutOrStdout(), cmd.InOrStdin(), input)
		},
	}

	cmd.Flags().StringVarP(&filePath, "file", "f", "", "path to a JSON input document (omitted: expressions run with no input)")
	return cmd
}

func runRepl(out io.Writer, in io.Reader, input interface{}) error {
	scanner := bufio.NewScanner(in)
	fmt.Fprintln(out, "jsonata repl — one expression per line, Ctrl-D to exit")
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		prog, err := jsonata.Compile(line)
		if err != nil {
			fmt.Fprintln(out, "compile error:", err)
			continue
		}
		result, err := prog.Evaluate(input)
		if err != nil {
			fmt.Fprintln(out, "eval error:", err)
			continue
		}
		encoded, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			fmt.Fprintln(out, "encode error:", err)
			continue
		}
		fmt.Fprintln(out, string(encoded))
	}
	return scanner.Err()
}
