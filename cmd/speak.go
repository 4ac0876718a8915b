package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/lingo/internal/cards"
	"github.com/abhisek/lingo/internal/speech"
)

var speakCmd = &cobra.Command{
	Use:   "speak",
	Short: "Record one answer, transcribe it and grade it",
	Long: "Record from the microphone (or replay a WAV file with --file), print the transcript " +
		"and, when --expect is given, grade it the way a speaking card would.",
	RunE: func(cmd *cobra.Command, args []string) error {
		file, _ := cmd.Flags().GetString("file")
		expect, _ := cmd.Flags().GetStringSlice("expect")

		cfg := speech.ConfigFromEnv()
		if err := cfg.Validate(); err != nil {
			return err
		}

		ctx := context.Background()
		t, err := speech.NewTranscriber(ctx, cfg)
		if err != nil {
			return fmt.Errorf("create transcriber: %w", err)
		}
		var device speech.Device = speech.NewCommandDevice(cfg.RecordCmd)
		if file != "" {
			device = &speech.FileDevice{Path: file}
		} else {
			fmt.Fprintln(os.Stderr, "Listening... press Ctrl+C to stop.")
		}
		r := speech.NewRecognizer(device, t, cfg.Language, cfg.Timeout)

		// Ctrl+C ends the recording and transcribes what was captured.
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt)
		defer signal.Stop(sig)
		go func() {
			if _, ok := <-sig; ok {
				r.Finish()
			}
		}()

		transcript, err := r.Listen(ctx)
		if err != nil {
			if msg := speech.Message(err); msg != "" {
				fmt.Fprintln(os.Stderr, msg)
			}
			return err
		}
		fmt.Printf("Transcript:  %s\n", transcript)

		if len(expect) == 0 {
			return nil
		}
		card := &cards.Card{Type: cards.TypeRepeat, Extra: cards.Extra{Words: expect}}
		g := newGrader(cfg)
		if g.IsSpeechCorrect(card, transcript) {
			fmt.Println("Result:      ✓ correct")
			return nil
		}
		fmt.Println("Result:      ✗ not quite")
		fmt.Printf("Expected:    %s\n", strings.Join(expect, " | "))
		return nil
	},
}

var sayCmd = &cobra.Command{
	Use:   "say <text>",
	Short: "Read text aloud with the configured voice",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := speech.NewSynthesizer(speech.ConfigFromEnv())
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		return s.Speak(ctx, strings.Join(args, " "))
	},
}

func init() {
	speakCmd.Flags().StringP("file", "f", "", "Transcribe this WAV file instead of recording")
	speakCmd.Flags().StringSliceP("expect", "e", nil, "Accepted phrase (repeatable)")
}
