package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/agentdeck/internal/app"
	"github.com/emiliopalmerini/agentdeck/internal/backend"
	"github.com/emiliopalmerini/agentdeck/internal/domain"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Manage sessions",
	Long:  `List and manage agent sessions without opening the board.`,
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List sessions",
	Long: `List sessions from the agent backend.

Examples:
  agentdeck sessions list                      # All non-archived sessions
  agentdeck sessions list --status archived    # Archived sessions
  agentdeck sessions list --all                # Everything`,
	RunE: runSessionsList,
}

var sessionsArchiveCmd = &cobra.Command{
	Use:   "archive <id>",
	Short: "Archive a session",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionsArchive,
}

// Flags
var (
	sessionsStatus string
	sessionsAll    bool
)

func init() {
	rootCmd.AddCommand(sessionsCmd)
	sessionsCmd.AddCommand(sessionsListCmd)
	sessionsCmd.AddCommand(sessionsArchiveCmd)

	sessionsListCmd.Flags().StringVarP(&sessionsStatus, "status", "s", "", "Filter by uiStatus bucket")
	sessionsListCmd.Flags().BoolVarP(&sessionsAll, "all", "a", false, "Include archived sessions")
}

func backendClient() (*backend.Client, error) {
	cfg, err := app.New()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return backend.NewClient(cfg.BackendURL, cfg.BackendToken), nil
}

func runSessionsList(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	client, err := backendClient()
	if err != nil {
		return err
	}

	sessions, err := client.ListSessions(ctx)
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}

	var filtered []domain.Session
	for _, s := range sessions {
		if sessionsStatus != "" && s.UIStatus != domain.ParseUIStatus(sessionsStatus) {
			continue
		}
		if sessionsStatus == "" && !sessionsAll && s.UIStatus == domain.UIStatusArchived {
			continue
		}
		filtered = append(filtered, s)
	}

	if len(filtered) == 0 {
		fmt.Println("No sessions found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tREPO\tBRANCH\tSTATUS\tCREATED")
	for _, s := range filtered {
		title := s.Title
		if title == "" {
			title = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			s.ID, title, s.Repo, s.TargetBranch, s.InboxStatus,
			s.CreatedAt.Format("2006-01-02 15:04"))
	}
	return w.Flush()
}

func runSessionsArchive(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	client, err := backendClient()
	if err != nil {
		return err
	}

	session, err := client.ArchiveSession(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to archive session: %w", err)
	}

	fmt.Printf("Archived session %s\n", session.ID)
	return nil
}
