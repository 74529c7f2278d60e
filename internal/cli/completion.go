package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/rulegraph/pkg/errors"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for rulegraph.

Besides subcommands and flags, the scripts complete the <states> argument
of report, analyze, graph, export, classify and explore with the state
counts allowed by max_states:

  $ rulegraph report <TAB>
  2  3  4  5  6

Bash:
  $ source <(rulegraph completion bash)
  $ rulegraph completion bash > /etc/bash_completion.d/rulegraph

Zsh:
  $ rulegraph completion zsh > "${fpath[1]}/_rulegraph"

Fish:
  $ rulegraph completion fish > ~/.config/fish/completions/rulegraph.fish

PowerShell:
  PS> rulegraph completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(w, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(w)
			case "fish":
				return cmd.Root().GenFishCompletion(w, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(w)
			}
			return nil
		},
	}
}

// completeStates completes the leading <states> argument with every state
// count from the minimum to the configured maximum. Later arguments are rule
// numbers, which are not enumerable.
func (c *CLI) completeStates(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	// Completion runs without the root pre-run.
	_ = c.loadConfig()

	var out []string
	for s := errors.MinStates; s <= c.conf().MaxStates; s++ {
		out = append(out, strconv.Itoa(s))
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}
