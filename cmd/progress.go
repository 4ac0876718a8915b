package cmd

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/lingo/internal/cards"
	"github.com/abhisek/lingo/internal/session"
	"github.com/abhisek/lingo/internal/store"
)

var progressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Show experience and level",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		b, err := newBackend(cmd, s.EventRepo())
		if err != nil {
			return err
		}

		ctx := context.Background()
		snaps := s.SnapshotRepo()
		p, err := b.Progress(ctx)
		if err != nil {
			snap, serr := snaps.Latest(ctx)
			if serr != nil || snap == nil {
				return fmt.Errorf("load progress: %w", err)
			}
			fmt.Printf("Lesson API unavailable (%v).\n", err)
			fmt.Printf("Showing progress saved %s.\n\n", snap.Timestamp.Local().Format("2006-01-02 15:04"))
			saved := session.ProgressFromSnapshot(snap.Data)
			p = &saved
		} else {
			_ = snaps.Save(ctx, &store.Snapshot{Timestamp: time.Now(), Data: session.SnapshotData(*p)})
			_ = snaps.Prune(ctx, session.SnapshotsKept)
		}

		into, span := session.LevelProgress(p.TotalExperience)
		fmt.Printf("Level:       %d (%d/%d XP to next)\n", p.CurrentLevel, into, span)
		fmt.Printf("Experience:  %d XP\n", p.TotalExperience)
		fmt.Printf("Lessons:     %d completed\n", p.TotalLessonsCompleted)
		fmt.Printf("Cards:       %d completed\n", p.TotalCardsCompleted)
		if p.CorrectAnswers+p.IncorrectAnswers > 0 {
			fmt.Printf("Answers:     %d correct, %d incorrect (%.0f%%)\n",
				p.CorrectAnswers, p.IncorrectAnswers, p.Accuracy)
		}
		return nil
	},
}

var statusesCmd = &cobra.Command{
	Use:   "statuses",
	Short: "Show card statuses for a lesson",
	RunE: func(cmd *cobra.Command, args []string) error {
		lessonID, _ := cmd.Flags().GetInt("lesson")
		if lessonID <= 0 {
			return fmt.Errorf("--lesson is required")
		}

		b, err := newBackend(cmd, nil)
		if err != nil {
			return err
		}

		statuses, err := b.CardStatuses(context.Background(), lessonID)
		if err != nil {
			return fmt.Errorf("load card statuses: %w", err)
		}
		if len(statuses) == 0 {
			fmt.Println("No cards attempted yet.")
			return nil
		}

		ids := make([]int, 0, len(statuses))
		for id := range statuses {
			ids = append(ids, id)
		}
		sort.Ints(ids)

		fmt.Printf("%-8s  %-8s  %-8s  %s\n", "Card", "Status", "Color", "Attempts")
		fmt.Println(strings.Repeat("─", 44))
		for _, id := range ids {
			st := statuses[id]
			status := st.Status.Normalize()
			color := st.Color
			if color == "" {
				color = status.Color()
			}
			fmt.Printf("%-8d  %-8s  %-8s  %d\n", id, cards.Label(status, st.AttemptsCount), color, st.AttemptsCount)
		}

		fmt.Printf("\n%d cards\n", len(ids))
		return nil
	},
}

func init() {
	statusesCmd.Flags().IntP("lesson", "l", 0, "Lesson ID")
}
