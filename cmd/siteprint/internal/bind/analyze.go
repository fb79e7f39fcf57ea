package bind

import "github.com/spf13/cobra"

// AnalyzeOptions holds the inputs of the analyze command.
type AnalyzeOptions struct {
	// Inputs are evidence files; "-" means standard input.
	Inputs []string
	Target string
	Groups bool
	Save   bool
}

// BindAnalyzeOptions reads analyze flags. Without positional arguments evidence is read
// from standard input.
func BindAnalyzeOptions(cmd *cobra.Command, args []string) (AnalyzeOptions, error) {
	target, _ := cmd.Flags().GetString("target")
	groups, _ := cmd.Flags().GetBool("groups")
	save, _ := cmd.Flags().GetBool("save")

	inputs := append([]string(nil), args...)
	if len(inputs) == 0 {
		inputs = []string{"-"}
	}

	return AnalyzeOptions{
		Inputs: inputs,
		Target: target,
		Groups: groups,
		Save:   save,
	}, nil
}
