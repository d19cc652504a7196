package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/lernpath/internal/path"
	"github.com/abhisek/lernpath/internal/store"
)

var goalsCmd = &cobra.Command{
	Use:   "goals",
	Short: "List goals and path progress",
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

		goals, err := s.ListGoals(context.Background(), userID)
		if err != nil {
			return fmt.Errorf("list goals: %w", err)
		}

		if len(goals) == 0 {
			fmt.Printf("No goals yet for %s. Start one with: lernpath learn\n", userID)
			return nil
		}

		fmt.Printf("%-12s  %-36s  %-12s  %-8s  %s\n",
			"ID", "Name", "Status", "Path", "Studying")
		fmt.Println(strings.Repeat("─", 100))

		for _, g := range goals {
			covered := 0
			current := "-"
			for _, c := range g.Path {
				switch c.Status {
				case path.StatusMastered, path.StatusSkipped:
					covered++
				case path.StatusActive, path.StatusReview, path.StatusReactivated:
					if current == "-" {
						current = c.Name
					}
				}
			}
			name := g.Name
			if len(name) > 36 {
				name = name[:33] + "..."
			}
			if len(current) > 30 {
				current = current[:27] + "..."
			}
			fmt.Printf("%-12s  %-36s  %-12s  %3d/%-4d  %s\n",
				g.GoalID, name, string(g.Status), covered, len(g.Path), current)
		}

		fmt.Printf("\n%d goal(s)\n", len(goals))
		return nil
	},
}
