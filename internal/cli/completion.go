package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/mapsvg/pkg/datamap"
	"github.com/matzehuels/mapsvg/pkg/geo/projection"
	"github.com/matzehuels/mapsvg/pkg/source"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for mapsvg.

Bash:
  $ source <(mapsvg completion bash)

Zsh:
  $ mapsvg completion zsh > "${fpath[1]}/_mapsvg"

Fish:
  $ mapsvg completion fish > ~/.config/fish/completions/mapsvg.fish

PowerShell:
  PS> mapsvg completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(os.Stdout)
			case "zsh":
				return cmd.Root().GenZshCompletion(os.Stdout)
			case "fish":
				return cmd.Root().GenFishCompletion(os.Stdout, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
			}
			return nil
		},
	}
}

// completeFlags registers value completions for the map flags present on
// cmd.
func completeFlags(cmd *cobra.Command) {
	fixed := map[string][]string{
		"format":     datamap.Formats,
		"projection": projection.Algorithms(),
		"data-type":  {source.JSON, source.CSV},
		"scope":      {projection.ScopeWorld, projection.ScopeUSA},
	}
	for name, values := range fixed {
		if cmd.Flags().Lookup(name) == nil {
			continue
		}
		_ = cmd.RegisterFlagCompletionFunc(name, cobra.FixedCompletions(values, cobra.ShellCompDirectiveNoFileComp))
	}
}
