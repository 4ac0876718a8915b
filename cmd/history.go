package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/lingo/internal/store"
)

var historyCmd = &cobra.Command{
	Use:   "history [session-id]",
	Short: "List finished lessons, or the answers of one session",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		ctx := context.Background()
		if len(args) == 1 {
			return printAnswers(ctx, s.EventRepo(), args[0])
		}

		sessions, err := s.EventRepo().QuerySessionSummaries(ctx, store.QueryOpts{Limit: limit})
		if err != nil {
			return fmt.Errorf("query sessions: %w", err)
		}
		if len(sessions) == 0 {
			fmt.Println("No lessons finished yet.")
			return nil
		}

		fmt.Printf("%-36s  %-16s  %-28s  %-7s  %-5s  %-6s  %s\n",
			"Session", "Finished", "Lesson", "Cards", "Score", "XP", "Time")
		fmt.Println(strings.Repeat("─", 120))
		for _, r := range sessions {
			title := r.LessonTitle
			if r.Topic != "" {
				title += " / " + r.Topic
			}
			fmt.Printf("%-36s  %-16s  %-28s  %-7s  %-5d  %-6d  %d:%02d\n",
				r.SessionID,
				r.Timestamp.Local().Format("2006-01-02 15:04"),
				truncate(title, 28),
				fmt.Sprintf("%d/%d", r.CardsCorrect, r.CardsTotal),
				r.Score,
				r.ExperienceGained,
				r.DurationSecs/60, r.DurationSecs%60,
			)
		}
		return nil
	},
}

func printAnswers(ctx context.Context, repo store.EventRepo, sessionID string) error {
	answers, err := repo.QueryAnswerEvents(ctx, sessionID, store.QueryOpts{})
	if err != nil {
		return fmt.Errorf("query answers: %w", err)
	}
	if len(answers) == 0 {
		fmt.Printf("No answers recorded for session %s.\n", sessionID)
		return nil
	}

	fmt.Printf("%-8s  %-10s  %-9s  %-32s  %-24s  %s\n", "Time", "Type", "Input", "Question", "Answer", "OK")
	fmt.Println(strings.Repeat("─", 100))
	for _, a := range answers {
		ok := "✓"
		if !a.Correct {
			ok = "✗"
		}
		if a.Precheck != a.Correct {
			ok += " (precheck differed)"
		}
		fmt.Printf("%-8s  %-10s  %-9s  %-32s  %-24s  %s\n",
			a.Timestamp.Local().Format("15:04:05"),
			a.CardType,
			a.InputMode,
			truncate(a.QuestionText, 32),
			truncate(a.Answer, 24),
			ok,
		)
	}
	return nil
}

func init() {
	historyCmd.Flags().IntP("limit", "n", 20, "Number of sessions to show")
}
