package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Start a lesson session",
	RunE: func(cmd *cobra.Command, args []string) error {
		lessonID, _ := cmd.Flags().GetInt("lesson")
		topic, _ := cmd.Flags().GetString("topic")
		notify, _ := cmd.Flags().GetString("notify")
		if topic != "" && lessonID <= 0 {
			return fmt.Errorf("--topic requires --lesson")
		}
		return runApp(cmd, lessonID, topic, notify)
	},
}

func init() {
	playCmd.Flags().IntP("lesson", "l", 0, "Open this lesson directly instead of the lesson list")
	playCmd.Flags().StringP("topic", "t", "", "Practice only this topic (requires --lesson)")
	playCmd.Flags().String("notify", "", "Append completed-card events as JSON lines to this file")

	// Context for speech provider initialization.
	playCmd.SetContext(context.Background())
}
