package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/lernpath/internal/llm"
	"github.com/abhisek/lernpath/internal/store"
)

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect LLM request/response events",
}

var llmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent LLM events",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		purpose, _ := cmd.Flags().GetString("purpose")

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
		events, err := s.EventRepo().QueryLLMEvents(ctx, store.QueryOpts{Limit: limit, Purpose: purpose})
		if err != nil {
			return fmt.Errorf("query events: %w", err)
		}

		if len(events) == 0 {
			fmt.Println("No LLM events found.")
			return nil
		}

		fmt.Printf("%-5s  %-19s  %-13s  %-26s  %12s  %6s  %s\n",
			"ID", "When", "Purpose", "Model", "In/Out", "Ms", "Status")
		fmt.Println(strings.Repeat("─", 100))

		for _, e := range events {
			status := "ok"
			if !e.Success {
				status = "error"
			}
			fmt.Printf("%-5d  %-19s  %-13s  %-26s  %5d/%-6d  %6d  %s\n",
				e.ID,
				e.Timestamp.Local().Format("2006-01-02 15:04:05"),
				e.Purpose,
				clip(e.Model, 26),
				e.InputTokens,
				e.OutputTokens,
				e.LatencyMs,
				status,
			)
		}

		fmt.Printf("\n%d event(s)\n", len(events))
		return nil
	},
}

var llmViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "View full request/response for an LLM event",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid ID %q: %w", args[0], err)
		}

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
		e, err := s.EventRepo().GetLLMEvent(ctx, id)
		if err != nil {
			return fmt.Errorf("get event: %w", err)
		}
		if e == nil {
			return fmt.Errorf("event %d not found", id)
		}

		fmt.Printf("Event:    #%d at %s\n", e.ID, e.Timestamp.Local().Format("2006-01-02 15:04:05"))
		fmt.Printf("Call:     %s %s (%s)\n", e.Provider, e.Model, e.Purpose)
		fmt.Printf("Usage:    %d tokens in, %d out, %dms\n", e.InputTokens, e.OutputTokens, e.LatencyMs)
		if !e.Success {
			fmt.Printf("Failed:   %s\n", e.ErrorMessage)
		}

		printBody("REQUEST", e.RequestBody)
		printBody("RESPONSE", e.ResponseBody)
		return nil
	},
}

var llmStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show aggregated LLM token usage and estimated cost",
	RunE: func(cmd *cobra.Command, args []string) error {
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
		byPurpose, err := s.EventRepo().LLMUsageByPurpose(ctx)
		if err != nil {
			return fmt.Errorf("query usage: %w", err)
		}

		if len(byPurpose) == 0 {
			fmt.Println("No LLM usage recorded yet.")
			return nil
		}

		rule := strings.Repeat("─", 70)

		fmt.Println("Token usage by purpose")
		fmt.Println(rule)
		fmt.Printf("%-16s  %6s  %10s  %10s  %8s\n", "Purpose", "Calls", "In", "Out", "Avg ms")
		fmt.Println(rule)

		var calls, in, out int
		for _, u := range byPurpose {
			fmt.Printf("%-16s  %6d  %10d  %10d  %8d\n",
				u.Purpose, u.Calls, u.InputTokens, u.OutputTokens, u.AvgLatencyMs)
			calls += u.Calls
			in += u.InputTokens
			out += u.OutputTokens
		}
		fmt.Println(rule)
		fmt.Printf("%-16s  %6d  %10d  %10d\n", "Total", calls, in, out)

		byModel, err := s.EventRepo().LLMUsageByModel(ctx)
		if err != nil {
			return fmt.Errorf("query model usage: %w", err)
		}
		if len(byModel) == 0 {
			return nil
		}

		fmt.Println()
		fmt.Println("Estimated spend by model")
		fmt.Println(rule)
		fmt.Printf("%-30s  %6s  %10s  %10s  %8s\n", "Model", "Calls", "In", "Out", "USD")
		fmt.Println(rule)

		var spend float64
		var unpriced []string
		for _, u := range byModel {
			cost := llm.LookupCost(u.Model)
			if cost == nil {
				unpriced = append(unpriced, u.Model)
				fmt.Printf("%-30s  %6d  %10d  %10d  %8s\n",
					clip(u.Model, 30), u.Calls, u.InputTokens, u.OutputTokens, "n/a")
				continue
			}
			usd := cost.Cost(u.InputTokens, u.OutputTokens)
			spend += usd
			fmt.Printf("%-30s  %6d  %10d  %10d  %8s\n",
				clip(u.Model, 30), u.Calls, u.InputTokens, u.OutputTokens, dollars(usd))
		}

		fmt.Println(rule)
		label := "Total"
		if len(unpriced) > 0 {
			label = "Total (priced models only)"
		}
		fmt.Printf("%-30s  %6s  %10s  %10s  %8s\n", label, "", "", "", dollars(spend))
		if len(unpriced) > 0 {
			fmt.Printf("\nNo pricing for: %s\n", strings.Join(unpriced, ", "))
		}
		return nil
	},
}

// printBody renders one captured payload section of the view output.
func printBody(title, body string) {
	fmt.Println()
	fmt.Printf("── %s %s\n", title, strings.Repeat("─", 55-len(title)))
	if body == "" {
		fmt.Println("(not captured)")
		return
	}
	fmt.Println(body)
}

func clip(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

func dollars(usd float64) string {
	if usd > 0 && usd < 0.01 {
		return fmt.Sprintf("$%.4f", usd)
	}
	return fmt.Sprintf("$%.2f", usd)
}

func init() {
	llmListCmd.Flags().IntP("limit", "n", 20, "Number of events to show")
	llmListCmd.Flags().StringP("purpose", "p", "", "Filter by purpose (e.g. goal-path, material, chat, test-eval)")

	llmCmd.AddCommand(llmListCmd)
	llmCmd.AddCommand(llmViewCmd)
	llmCmd.AddCommand(llmStatsCmd)
}
