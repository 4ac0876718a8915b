package speech

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	openai "github.com/sashabaranov/go-openai"
)

// Synthesizer speaks text aloud using OpenAI text-to-speech. Audio is cached
// on disk keyed by voice, model and text, so each phrase is fetched once.
type Synthesizer struct {
	client   *openai.Client
	model    string
	voice    string
	cacheDir string
	player   []string

	mu sync.Mutex
}

// NewSynthesizer creates a Synthesizer from cfg.
func NewSynthesizer(cfg Config) (*Synthesizer, error) {
	if cfg.OpenAIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required for speech synthesis")
	}
	return newSynthesizer(openai.DefaultConfig(cfg.OpenAIKey), cfg), nil
}

func newSynthesizer(config openai.ClientConfig, cfg Config) *Synthesizer {
	model := cfg.TTSModel
	if model == "" {
		model = string(openai.TTSModel1)
	}
	voice := cfg.Voice
	if voice == "" {
		voice = string(openai.VoiceAlloy)
	}
	return &Synthesizer{
		client:   openai.NewClientWithConfig(config),
		model:    model,
		voice:    voice,
		cacheDir: cfg.CacheDir,
		player:   strings.Fields(cfg.PlayCmd),
	}
}

func (s *Synthesizer) cacheKey(text string) string {
	h := sha256.Sum256([]byte(s.model + ":" + s.voice + ":" + text))
	return hex.EncodeToString(h[:16])
}

// Fetch returns the path of an MP3 file with text spoken, synthesizing it
// if it is not cached yet.
func (s *Synthesizer) Fetch(ctx context.Context, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("nothing to say")
	}

	path := filepath.Join(s.cacheDir, s.cacheKey(text)+".mp3")
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := os.Stat(path); err == nil {
		return path, nil
	}

	resp, err := s.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          openai.SpeechModel(s.model),
		Input:          text,
		Voice:          openai.SpeechVoice(s.voice),
		ResponseFormat: openai.SpeechResponseFormatMp3,
	})
	if err != nil {
		return "", mapOpenAIError(ctx, err)
	}
	defer resp.Close()

	if err := os.MkdirAll(s.cacheDir, 0o755); err != nil {
		return "", fmt.Errorf("create speech cache: %w", err)
	}

	// Write to a temp file first so an interrupted download is never
	// mistaken for a cached phrase.
	tmp, err := os.CreateTemp(s.cacheDir, "tts-*.part")
	if err != nil {
		return "", fmt.Errorf("create speech cache file: %w", err)
	}
	if _, err := io.Copy(tmp, resp); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", newError(ReasonNetwork, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("write speech cache file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("store speech cache file: %w", err)
	}
	return path, nil
}

// Speak synthesizes text and plays it, returning when playback ends.
func (s *Synthesizer) Speak(ctx context.Context, text string) error {
	path, err := s.Fetch(ctx, text)
	if err != nil {
		return err
	}
	return s.Play(ctx, path)
}

// Play runs the configured player on an audio file.
func (s *Synthesizer) Play(ctx context.Context, path string) error {
	if len(s.player) == 0 {
		return newError(ReasonNoDevice, fmt.Errorf("no play command configured"))
	}
	args := append(append([]string{}, s.player[1:]...), path)
	cmd := exec.CommandContext(ctx, s.player[0], args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		if ctx.Err() != nil {
			return newError(ReasonAborted, ctx.Err())
		}
		return classifyRecordError(err, string(out))
	}
	return nil
}
