package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "agentdeck",
	Short: "Web board for coding-agent sessions",
	Long: `agentdeck is a self-hosted web board for coding-agent sessions.

Browse the session hierarchy, follow conversations as the agent works,
reply with new prompts, and manage session lifecycle, all backed by the
agent backend's REST API.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
