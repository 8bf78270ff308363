package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/secondlayerco/jsonata"
)

// newEvalCommand builds the "eval" subcommand: compile the given
// expression and run it once against a JSON document read from --file (or
// stdin, if --file is omitted), printing the result as indented JSON.
func newEvalCommand() *cobra.Command {
	var (
		filePath string
		bindings []string
		compact  bool
	)

	cmd := &cobra.Command{
		Use:   "eval <expression>",
		Short: "Compile and evaluate a JSONata expression once",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := readInput(filePath, cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("reading input: %w", err)
			}

			prog, err := jsonata.Compile(args[0])
			if err != nil {
				return fmt.Errorf("compiling expression: %w", err)
			}
			if err := applyBindings(prog, bindings); err != nil {
				return err
			}

			result, err := prog.Evaluate(input)
			if err != nil {
				return fmt.Errorf("evaluating expression: %w", err)
			}

			return printResult(cmd.OutOrStdout(), result, compact)
		},
	}

	cmd.Flags().StringVarP(&filePath, "file", "f", "", "path to a JSON input document (defaults to stdin)")
	cmd.Flags().StringArrayVarP(&bindings, "bind", "b", nil, `variable binding "name=jsonValue", repeatable`)
	cmd.Flags().BoolVarP(&compact, "compact", "c", false, "print result as compact (non-indented) JSON")
	return cmd
}

func readInput(filePath string, stdin io.Reader) (interface{}, error) {
	var raw []byte
	var err error
	if filePath != "" {
		raw, err = os.ReadFile(filePath)
	} else {
		raw, err = io.ReadAll(stdin)
	}
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, nil
	}
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}
	return v, nil
}

// applyBindings parses each "name=jsonValue" spec and binds it on prog.
func applyBindings(prog *jsonata.Program, specs []string) error {
	for _, spec := range specs {
		name, raw, ok := splitBinding(spec)
		if !ok {
			return fmt.Errorf("invalid --bind value %q, expected name=jsonValue", spec)
		}
		var v interface{}
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			return fmt.Errorf("parsing --bind %q: %w", spec, err)
		}
		prog.Bind(name, v)
	}
	return nil
}

func splitBinding(spec string) (name, value string, ok bool) {
	for i := 0; i < len(spec); i++ {
		if spec[i] == '=' {
			return spec[:i], spec[i+1:], true
		}
	}
	return "", "", false
}

func printResult(w io.Writer, result interface{}, compact bool) error {
	if compact {
		enc := json.NewEncoder(w)
		return enc.Encode(result)
	}
	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}
