package commands

import (
	"io"

	"github.com/spf13/cobra"
)

// yamlExtensions restrict file completion of config and environment flags.
var yamlExtensions = []string{"yaml", "yml"}

// completionShell generates the completion script of one shell.
type completionShell struct {
	name     string
	generate func(root *cobra.Command, w io.Writer) error
}

var completionShells = []completionShell{
	{name: "bash", generate: func(root *cobra.Command, w io.Writer) error { return root.GenBashCompletionV2(w, true) }},
	{name: "zsh", generate: func(root *cobra.Command, w io.Writer) error { return root.GenZshCompletion(w) }},
	{name: "fish", generate: func(root *cobra.Command, w io.Writer) error { return root.GenFishCompletion(w, true) }},
	{name: "powershell", generate: func(root *cobra.Command, w io.Writer) error { return root.GenPowerShellCompletionWithDesc(w) }},
}

func completionShellNames() []string {
	names := make([]string, 0, len(completionShells))
	for _, s := range completionShells {
		names = append(names, s.name)
	}
	return names
}

// Completion returns the completion command for shell autocompletion.
func Completion() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Completion prints the completion script of a shell.

Besides commands and flags, the scripts complete the values of
plan --output and limit --config and --env to YAML files.

Bash:
  $ source <(k8zenv completion bash)

Zsh:
  $ k8zenv completion zsh > "${fpath[1]}/_k8zenv"

Fish:
  $ k8zenv completion fish > ~/.config/fish/completions/k8zenv.fish

PowerShell:
  PS> k8zenv completion powershell | Out-String | Invoke-Expression`,
		DisableFlagsInUseLine: true,
		ValidArgs:             completionShellNames(),
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, s := range completionShells {
				if s.name == args[0] {
					return s.generate(cmd.Root(), cmd.OutOrStdout())
				}
			}
			return nil
		},
	}
	return cmd
}

// completeValues registers fixed value completion for a flag.
func completeValues(cmd *cobra.Command, flag string, values []string) {
	_ = cmd.RegisterFlagCompletionFunc(flag, cobra.FixedCompletions(values, cobra.ShellCompDirectiveNoFileComp))
}
