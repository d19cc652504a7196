package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/lernpath/internal/store"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Inspect the learning journal",
}

var journalListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent journal events",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		goalID, _ := cmd.Flags().GetString("goal")
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

		ctx := context.Background()
		events, err := s.EventRepo().QueryLearnEvents(ctx, store.QueryOpts{
			Limit:  limit,
			UserID: userID,
			GoalID: goalID,
		})
		if err != nil {
			return fmt.Errorf("query events: %w", err)
		}

		if len(events) == 0 {
			fmt.Println("No journal events found.")
			return nil
		}

		fmt.Printf("%-6s  %-19s  %-18s  %-8s  %-6s  %s\n",
			"Seq", "Timestamp", "Type", "Concept", "Score", "Text")
		fmt.Println(strings.Repeat("─", 110))

		for _, e := range events {
			score := ""
			if e.Score != nil {
				score = fmt.Sprintf("%d", *e.Score)
			}
			text := strings.ReplaceAll(e.Text, "\n", " ")
			if len(text) > 48 {
				text = text[:45] + "..."
			}
			fmt.Printf("%-6d  %-19s  %-18s  %-8s  %-6s  %s\n",
				e.Sequence,
				e.Timestamp.Local().Format("2006-01-02 15:04:05"),
				e.Type,
				e.ConceptID,
				score,
				text,
			)
		}
		return nil
	},
}

var journalExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the journal as JSONL on stdout, oldest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		goalID, _ := cmd.Flags().GetString("goal")
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

		ctx := context.Background()
		events, err := s.EventRepo().QueryLearnEvents(ctx, store.QueryOpts{
			UserID: userID,
			GoalID: goalID,
		})
		if err != nil {
			return fmt.Errorf("query events: %w", err)
		}

		enc := json.NewEncoder(os.Stdout)
		for i := len(events) - 1; i >= 0; i-- {
			if err := enc.Encode(events[i]); err != nil {
				return fmt.Errorf("encode event: %w", err)
			}
		}
		return nil
	},
}

func init() {
	journalListCmd.Flags().IntP("limit", "n", 30, "Number of events to show")
	journalListCmd.Flags().StringP("goal", "g", "", "Filter by goal ID")
	journalExportCmd.Flags().StringP("goal", "g", "", "Filter by goal ID")

	journalCmd.AddCommand(journalListCmd)
	journalCmd.AddCommand(journalExportCmd)
}
