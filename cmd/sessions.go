package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/lernpath/internal/store"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List paused sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, _ := cmd.Flags().GetString("user")

		dbPath, err := resolveDBPath(cmd)
		if err != nil {
			return fmt.Errorf("resolve database path: %w", err)
		}
		s, err := store.Open(dbPath)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer s.Close()

		recs, err := s.ListSessions(context.Background(), userID)
		if err != nil {
			return fmt.Errorf("list sessions: %w", err)
		}

		if len(recs) == 0 {
			fmt.Printf("No paused sessions for %s.\n", userID)
			return nil
		}

		fmt.Printf("%-12s  %-36s  %-22s  %s\n", "Goal", "Name", "Phase", "Saved")
		fmt.Println(strings.Repeat("─", 96))

		for _, r := range recs {
			name := r.Name
			if len(name) > 36 {
				name = name[:33] + "..."
			}
			fmt.Printf("%-12s  %-36s  %-22s  %s\n",
				r.GoalID, name, r.Phase, r.SavedAt.Local().Format("2006-01-02 15:04:05"))
		}

		fmt.Printf("\n%d session(s)\n", len(recs))
		return nil
	},
}

var sessionsRmCmd = &cobra.Command{
	Use:   "rm <goalID>",
	Short: "Discard a paused session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, _ := cmd.Flags().GetString("user")

		dbPath, err := resolveDBPath(cmd)
		if err != nil {
			return fmt.Errorf("resolve database path: %w", err)
		}
		s, err := store.Open(dbPath)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer s.Close()

		if err := s.DeleteSession(context.Background(), userID, args[0]); err != nil {
			return fmt.Errorf("delete session: %w", err)
		}
		fmt.Printf("Discarded session for goal %s.\n", args[0])
		return nil
	},
}

func init() {
	sessionsCmd.AddCommand(sessionsRmCmd)
}
