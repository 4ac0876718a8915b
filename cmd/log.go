package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/lingo/internal/store"
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Inspect lesson API calls",
}

var logListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent lesson API calls",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		op, _ := cmd.Flags().GetString("op")
		failed, _ := cmd.Flags().GetBool("failed")

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		ctx := context.Background()
		events, err := s.EventRepo().QueryBackendCalls(ctx, store.QueryOpts{Limit: limit})
		if err != nil {
			return fmt.Errorf("query events: %w", err)
		}

		if len(events) == 0 {
			fmt.Println("No API calls recorded.")
			return nil
		}

		// Header.
		fmt.Printf("%-5s  %-19s  %-16s  %-6s  %-32s  %-6s  %-7s  %s\n",
			"ID", "Timestamp", "Operation", "Method", "Path", "Status", "Ms", "OK")
		fmt.Println(strings.Repeat("─", 110))

		for _, e := range events {
			if op != "" && e.Operation != op {
				continue
			}
			if failed && e.Success {
				continue
			}
			ok := "✓"
			if !e.Success {
				ok = "✗"
			}
			fmt.Printf("%-5d  %-19s  %-16s  %-6s  %-32s  %-6d  %-7d  %s\n",
				e.ID,
				e.Timestamp.Local().Format("2006-01-02 15:04:05"),
				e.Operation,
				e.Method,
				truncate(e.Path, 32),
				e.StatusCode,
				e.LatencyMs,
				ok,
			)
		}
		return nil
	},
}

var logViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "View full request/response for an API call",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var id int
		if _, err := fmt.Sscanf(args[0], "%d", &id); err != nil {
			return fmt.Errorf("invalid ID %q: %w", args[0], err)
		}

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		ctx := context.Background()
		e, err := s.EventRepo().GetBackendCall(ctx, id)
		if err != nil {
			return fmt.Errorf("get event: %w", err)
		}
		if e == nil {
			return fmt.Errorf("event %d not found", id)
		}

		sep := strings.Repeat("─", 60)

		fmt.Printf("ID:         %d\n", e.ID)
		fmt.Printf("Time:       %s\n", e.Timestamp.Local().Format("2006-01-02 15:04:05"))
		fmt.Printf("Operation:  %s\n", e.Operation)
		fmt.Printf("Request:    %s %s\n", e.Method, e.Path)
		fmt.Printf("Request ID: %s\n", e.RequestID)
		fmt.Printf("Status:     %d\n", e.StatusCode)
		fmt.Printf("Latency:    %dms\n", e.LatencyMs)
		fmt.Printf("Success:    %v\n", e.Success)
		if e.ErrorMessage != "" {
			fmt.Printf("Error:      %s\n", e.ErrorMessage)
		}

		fmt.Println()
		fmt.Println(sep)
		fmt.Println("REQUEST")
		fmt.Println(sep)
		if e.RequestBody != "" {
			fmt.Println(e.RequestBody)
		} else {
			fmt.Println("(no body)")
		}

		fmt.Println(sep)
		fmt.Println("RESPONSE")
		fmt.Println(sep)
		if e.ResponseBody != "" {
			fmt.Println(e.ResponseBody)
		} else {
			fmt.Println("(not captured)")
		}

		return nil
	},
}

var logStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show call counts, failures and latency per operation",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		stats, err := s.EventRepo().BackendCallStats(context.Background())
		if err != nil {
			return fmt.Errorf("query stats: %w", err)
		}

		if len(stats) == 0 {
			fmt.Println("No API calls recorded yet.")
			return nil
		}

		fmt.Println("Calls by Operation")
		fmt.Println(strings.Repeat("─", 60))
		fmt.Printf("%-18s  %8s  %8s  %8s  %8s\n", "Operation", "Calls", "Failed", "Fail %", "Avg Ms")
		fmt.Println(strings.Repeat("─", 60))

		var totalCalls, totalFailed int
		for _, st := range stats {
			fmt.Printf("%-18s  %8d  %8d  %7.1f%%  %8d\n",
				st.Operation, st.Calls, st.Failures, percent(st.Failures, st.Calls), st.AvgLatencyMs)
			totalCalls += st.Calls
			totalFailed += st.Failures
		}

		fmt.Println(strings.Repeat("─", 60))
		fmt.Printf("%-18s  %8d  %8d  %7.1f%%\n", "TOTAL", totalCalls, totalFailed, percent(totalFailed, totalCalls))
		return nil
	},
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}

func percent(n, of int) float64 {
	if of == 0 {
		return 0
	}
	return float64(n) / float64(of) * 100
}

func init() {
	logListCmd.Flags().IntP("limit", "n", 20, "Number of events to show")
	logListCmd.Flags().StringP("op", "o", "", "Filter by operation (e.g. submit_answer, card_statuses)")
	logListCmd.Flags().Bool("failed", false, "Show only failed calls")

	logCmd.AddCommand(logListCmd)
	logCmd.AddCommand(logViewCmd)
	logCmd.AddCommand(logStatsCmd)
}
