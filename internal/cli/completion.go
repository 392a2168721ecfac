package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

var completionShells = map[string]func(root *cobra.Command, w io.Writer) error{
	"bash":       func(root *cobra.Command, w io.Writer) error { return root.GenBashCompletionV2(w, true) },
	"zsh":        func(root *cobra.Command, w io.Writer) error { return root.GenZshCompletion(w) },
	"fish":       func(root *cobra.Command, w io.Writer) error { return root.GenFishCompletion(w, true) },
	"powershell": func(root *cobra.Command, w io.Writer) error { return root.GenPowerShellCompletionWithDesc(w) },
}

func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Print a completion script for devflow. Package ids are not completed;
framework and family flags are.`,
		Example: `  source <(devflow completion bash)
  devflow completion zsh > "${fpath[1]}/_devflow"
  devflow completion fish > ~/.config/fish/completions/devflow.fish`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			gen, ok := completionShells[args[0]]
			if !ok {
				return fmt.Errorf("unsupported shell %q", args[0])
			}
			return gen(cmd.Root(), cmd.OutOrStdout())
		},
	}
}
