package cli

import (
	"maps"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/deeptime/pkg/dataset"
	"github.com/matzehuels/deeptime/pkg/pipeline"
	"github.com/matzehuels/deeptime/pkg/render/sink"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for deeptime.

Besides commands and flags, the scripts complete output formats, themes,
rasterizers and the eon or era names accepted by "tree --focus".

  $ source <(deeptime completion bash)
  $ deeptime completion zsh > "${fpath[1]}/_deeptime"
  $ deeptime completion fish > ~/.config/fish/completions/deeptime.fish
  PS> deeptime completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(cmd.OutOrStdout(), true)
			case "zsh":
				return cmd.Root().GenZshCompletion(cmd.OutOrStdout())
			case "fish":
				return cmd.Root().GenFishCompletion(cmd.OutOrStdout(), true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(cmd.OutOrStdout())
			}
			return nil
		},
	}

	return cmd
}

type completeFunc = func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective)

// fixedCompletion completes one value of a comma-separated list from values.
func fixedCompletion(values []string) completeFunc {
	return func(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		head, tail := "", toComplete
		if i := strings.LastIndexByte(toComplete, ','); i >= 0 {
			head, tail = toComplete[:i+1], toComplete[i+1:]
		}
		var out []string
		for _, v := range values {
			if strings.HasPrefix(v, tail) {
				out = append(out, head+v)
			}
		}
		return out, cobra.ShellCompDirectiveNoFileComp | cobra.ShellCompDirectiveNoSpace
	}
}

func formatCompletion(vizType string) completeFunc {
	return fixedCompletion(slices.Sorted(maps.Keys(pipeline.ValidFormats[vizType])))
}

func themeCompletion() completeFunc {
	return fixedCompletion(slices.Sorted(maps.Keys(pipeline.Themes)))
}

func rasterizerCompletion() completeFunc {
	return fixedCompletion([]string{string(sink.RasterChrome), string(sink.RasterRSVG)})
}

// focusCompletion offers the eon and era names of the builtin dataset.
func focusCompletion() completeFunc {
	return func(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		p, err := dataset.Prepare(dataset.Builtin())
		if err != nil {
			return nil, cobra.ShellCompDirectiveError
		}
		var out []string
		for _, iv := range slices.Concat(p.Eons, p.Eras) {
			if strings.HasPrefix(strings.ToLower(iv.Name), strings.ToLower(toComplete)) {
				out = append(out, iv.Name)
			}
		}
		return out, cobra.ShellCompDirectiveNoFileComp
	}
}
