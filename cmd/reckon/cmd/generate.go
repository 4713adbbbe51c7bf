package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/example/reckon/internal/generate"
)

var generateOut string

// generateCmd emits a synthetic workload with a known final state.
var generateCmd = &cobra.Command{
	Use:   "generate [clients]",
	Short: "Emit a synthetic transaction workload as CSV",
	Long: `Generate a deterministic transaction stream for the given number of
clients. Each client settles to a closed-form final balance, which makes
the output useful for benchmarks and end-to-end checks.`,
	Args: cobra.ExactArgs(1),
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVar(&generateOut, "out", "", "write to this file instead of stdout")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	n, err := strconv.ParseUint(args[0], 10, 16)
	if err != nil {
		return fmt.Errorf("invalid client count %q: %w", args[0], err)
	}

	out := os.Stdout
	if generateOut != "" {
		f, err := os.Create(generateOut)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	return generate.Workload(out, uint16(n))
}
