package cli

import (
	"os"
	"slices"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/matzehuels/techradar/pkg/pipeline"
)

// completionCommand generates shell completion scripts.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for techradar.

Bash:
  $ source <(techradar completion bash)

Zsh:
  $ techradar completion zsh > "${fpath[1]}/_techradar"

Fish:
  $ techradar completion fish > ~/.config/fish/completions/techradar.fish

PowerShell:
  PS> techradar completion powershell | Out-String | Invoke-Expression
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
			default:
				return cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
			}
		},
	}
}

// completeFormats completes the comma-separated --format list, offering only
// formats not yet named.
func completeFormats(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	prefix := ""
	if i := strings.LastIndex(toComplete, ","); i >= 0 {
		prefix = toComplete[:i+1]
	}
	taken := strings.Split(prefix, ",")
	names := lo.Filter(lo.Keys(pipeline.ValidFormats), func(f string, _ int) bool {
		return !slices.Contains(taken, f)
	})
	slices.Sort(names)
	return lo.Map(names, func(f string, _ int) string { return prefix + f }), cobra.ShellCompDirectiveNoSpace
}

// completeBackends completes the --cache flag.
func completeBackends(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return []string{cacheFile, cacheRedis, cacheNone}, cobra.ShellCompDirectiveNoFileComp
}
