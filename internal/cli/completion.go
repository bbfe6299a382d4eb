package cli

import (
	"os"

	"github.com/spf13/cobra"
)

// sceneFileCompletion completes a positional scene argument to *.toml
// files. Shared by render, graph, and stats, which all take one scene.
func sceneFileCompletion(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) != 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return []string{"toml"}, cobra.ShellCompDirectiveFilterFileExt
}

// completionCommand creates the completion command. The generated
// scripts complete subcommands and flags, and narrow scene arguments to
// TOML files via sceneFileCompletion.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for rulemesh.

To load completions:

Bash:
  $ source <(rulemesh completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ rulemesh completion bash > /etc/bash_completion.d/rulemesh
  # macOS:
  $ rulemesh completion bash > $(brew --prefix)/etc/bash_completion.d/rulemesh

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. You can execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ rulemesh completion zsh > "${fpath[1]}/_rulemesh"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ rulemesh completion fish | source

  # To load completions for each session, execute once:
  $ rulemesh completion fish > ~/.config/fish/completions/rulemesh.fish

PowerShell:
  PS> rulemesh completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> rulemesh completion powershell > rulemesh.ps1
  # and source this file from your PowerShell profile.
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

	return cmd
}
