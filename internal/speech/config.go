package speech

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config holds speech capture, recognition and synthesis configuration.
type Config struct {
	// Provider selects the speech-to-text backend.
	// Values: "openai", "gemini", "mock"
	Provider string

	// Model is the transcription model. Default depends on the provider.
	Model string

	// Language is the BCP 47 tag of the language being learned.
	// Default: "en-US".
	Language string

	// RecordCmd captures audio from the microphone and writes a WAV stream
	// to stdout. It is split on whitespace.
	RecordCmd string

	// PlayCmd plays an audio file; the file path is appended.
	PlayCmd string

	// Timeout is how long Listen waits for speech. Default: 10s.
	Timeout time.Duration

	OpenAIKey string
	GeminiKey string

	// TTSModel and Voice configure synthesis.
	TTSModel string
	Voice    string

	// CacheDir holds synthesized audio keyed by text.
	CacheDir string
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Provider:  "openai",
		Language:  "en-US",
		RecordCmd: "arecord -q -f S16_LE -r 16000 -c 1 -t wav -",
		PlayCmd:   "mpg123 -q",
		Timeout:   10 * time.Second,
		TTSModel:  "tts-1",
		Voice:     "alloy",
		CacheDir:  defaultCacheDir(),
	}
}

// ConfigFromEnv builds a Config from environment variables, falling back
// to defaults for unset values.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()

	if p := os.Getenv("LINGO_STT_PROVIDER"); p != "" {
		cfg.Provider = p
	}
	if m := os.Getenv("LINGO_STT_MODEL"); m != "" {
		cfg.Model = m
	}
	if l := os.Getenv("LINGO_SPEECH_LANG"); l != "" {
		cfg.Language = l
	}
	if c := os.Getenv("LINGO_RECORD_CMD"); c != "" {
		cfg.RecordCmd = c
	}
	if c := os.Getenv("LINGO_PLAY_CMD"); c != "" {
		cfg.PlayCmd = c
	}
	if d := os.Getenv("LINGO_SPEECH_TIMEOUT"); d != "" {
		if v, err := time.ParseDuration(d); err == nil {
			cfg.Timeout = v
		} else {
			fmt.Fprintf(os.Stderr, "warning: ignoring invalid LINGO_SPEECH_TIMEOUT %q: %v\n", d, err)
		}
	}
	if v := os.Getenv("LINGO_TTS_VOICE"); v != "" {
		cfg.Voice = v
	}
	if d := os.Getenv("LINGO_SPEECH_CACHE"); d != "" {
		cfg.CacheDir = d
	}

	cfg.OpenAIKey = os.Getenv("OPENAI_API_KEY")
	cfg.GeminiKey = os.Getenv("GEMINI_API_KEY")

	return cfg
}

// Validate checks that the selected provider has its required API key set.
func (c Config) Validate() error {
	switch c.Provider {
	case "openai":
		if c.OpenAIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required for the openai speech provider")
		}
	case "gemini":
		if c.GeminiKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required for the gemini speech provider")
		}
	case "mock":
		// No API key needed.
	default:
		return fmt.Errorf("unknown speech provider: %q", c.Provider)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("LINGO_SPEECH_TIMEOUT must be positive, got %s", c.Timeout)
	}
	return nil
}

// LanguageBase returns the primary subtag of Language ("en" for "en-US").
func (c Config) LanguageBase() string {
	return strings.ToLower(strings.SplitN(c.Language, "-", 2)[0])
}

func defaultCacheDir() string {
	if d := os.Getenv("XDG_CACHE_HOME"); d != "" {
		return filepath.Join(d, "lingo", "speech")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".cache", "lingo", "speech")
	}
	return filepath.Join(os.TempDir(), "lingo-speech")
}
