// internal/cli/eval.go
package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shellpin/shellpin/pkg/descriptor"
)

var (
	evalAttr       string
	evalAllSystems bool
)

var evalCmd = &cobra.Command{
	Use:   "eval",
	Short: "Show the outputs the descriptor produces",
	Long: `Evaluate shellpin.yaml and print the outputs it produces for the
target system as JSON: the dev shell's package list, the formatter,
and any custom packages. With --attr only that addressed output is
printed.

Examples:
  shellpin eval
  shellpin eval --system=aarch64-darwin
  shellpin eval --attr packages.x86_64-linux.darglint
  shellpin eval --all-systems`,
	Args: cobra.NoArgs,
	RunE: runEval,
}

func init() {
	evalCmd.Flags().StringVar(&evalAttr, "attr", "", "evaluate one addressed output (e.g. packages.x86_64-linux.darglint)")
	evalCmd.Flags().BoolVar(&evalAllSystems, "all-systems", false, "evaluate every supported system")
}

func runEval(cmd *cobra.Command, args []string) error {
	m, err := newManager()
	if err != nil {
		return err
	}

	if evalAttr != "" {
		out, err := m.EvalAttr(evalAttr)
		if err != nil {
			return err
		}
		return printJSON(out)
	}

	if evalAllSystems {
		all := make([]*descriptor.Outputs, 0, len(m.Descriptor().Systems))
		for _, system := range m.Descriptor().Systems {
			out, err := m.Eval(system)
			if err != nil {
				return err
			}
			all = append(all, out)
		}
		return printJSON(all)
	}

	system, err := targetSystem()
	if err != nil {
		return err
	}

	out, err := m.Eval(system)
	if err != nil {
		return err
	}
	return printJSON(out)
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
