package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/lingo/internal/app"
	"github.com/abhisek/lingo/internal/grader"
	"github.com/abhisek/lingo/internal/screens/card"
	"github.com/abhisek/lingo/internal/screens/grid"
	"github.com/abhisek/lingo/internal/session"
	"github.com/abhisek/lingo/internal/speech"
)

// runApp opens the store, builds dependencies, and launches the TUI.
// notify, when set, receives every completed card as a JSON line.
func runApp(cmd *cobra.Command, lessonID int, topic, notify string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	eventRepo := st.EventRepo()
	b, err := newBackend(cmd, eventRepo)
	if err != nil {
		return err
	}

	speechCfg := speech.ConfigFromEnv()
	deps := grid.Deps{
		Backend:     b,
		Events:      eventRepo,
		Snapshots:   st.SnapshotRepo(),
		Broadcaster: session.NewBroadcaster(),
		Grader:      newGrader(speechCfg),
		Speech:      newSpeech(ctx, speechCfg),
	}

	if notify != "" {
		f, err := os.OpenFile(notify, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open notify file: %w", err)
		}
		defer f.Close()
		sinkCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		session.JSONSink(sinkCtx, deps.Broadcaster, f)
	}

	return app.Run(deps, lessonID, topic)
}

// newGrader picks a tokenizer for the language being learned.
func newGrader(cfg speech.Config) *grader.Grader {
	tok, err := grader.ForLanguage(cfg.Language)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: tokenizer for %s unavailable, using whitespace: %v\n", cfg.Language, err)
		return grader.New()
	}
	return grader.New(grader.WithTokenizer(tok))
}

// newSpeech builds the optional recognizer and synthesizer. Missing
// configuration disables the feature with a warning; the app works
// without them.
func newSpeech(ctx context.Context, cfg speech.Config) card.Speech {
	var sp card.Speech
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "Speech recognition not configured:", err)
		fmt.Fprintln(os.Stderr, "Speaking cards will be unavailable.")
	} else if r, err := speech.NewRecognizerFromConfig(ctx, cfg); err != nil {
		fmt.Fprintln(os.Stderr, "Speech recognition unavailable:", err)
	} else {
		sp.Listener = r
	}

	if s, err := speech.NewSynthesizer(cfg); err == nil {
		sp.Speaker = s
	}
	return sp
}
