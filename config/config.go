// Package config loads the YAML configuration file. Every field has a
// working default so the app runs with no file at all.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type LocalConfig struct {
	// BaseURL of the transcription sidecar's HTTP API.
	BaseURL string `yaml:"base_url"`
	// Command, when set, is the sidecar binary the supervisor spawns on
	// first need. Empty means "probe only, never spawn".
	Command string   `yaml:"command"`
	Args    []string `yaml:"args"`
	// StartupWaitMS bounds how long to wait for a spawned sidecar to
	// become healthy.
	StartupWaitMS int `yaml:"startup_wait_ms"`
	// ProbeTimeoutMS bounds one health probe.
	ProbeTimeoutMS int `yaml:"probe_timeout_ms"`
}

type RemoteConfig struct {
	BaseURL string `yaml:"base_url"`
	// APIKeyEnv names the environment variable holding the key; the key
	// itself never lives in the config file.
	APIKeyEnv string `yaml:"api_key_env"`
	Model     string `yaml:"model"`
}

type Config struct {
	// Language is "auto" or an explicit code passed to the backend.
	Language string `yaml:"language"`
	// InverseTextNorm turns on number/date normalization in transcripts.
	InverseTextNorm bool `yaml:"inverse_text_norm"`
	// Format is the upload codec: "flac" or "wav".
	Format string `yaml:"format"`
	// AutoPaste pastes the transcript into the focused window after copy.
	AutoPaste bool `yaml:"auto_paste"`
	// Mute silences the recording cue sounds.
	Mute bool `yaml:"mute"`
	// DataDir holds the SQLite database with the pinned collection.
	DataDir string `yaml:"data_dir"`

	HistoryCapacity int `yaml:"history_capacity"`
	PinnedCapacity  int `yaml:"pinned_capacity"`

	// TranscribeTimeoutMS bounds one transcription call end to end.
	TranscribeTimeoutMS int `yaml:"transcribe_timeout_ms"`

	Local  LocalConfig  `yaml:"local"`
	Remote RemoteConfig `yaml:"remote"`
}

func Default() Config {
	return Config{
		Language:            "auto",
		InverseTextNorm:     true,
		Format:              "flac",
		AutoPaste:           false,
		HistoryCapacity:     4,
		PinnedCapacity:      10,
		TranscribeTimeoutMS: 30_000,
		Local: LocalConfig{
			BaseURL:        "http://127.0.0.1:8001",
			StartupWaitMS:  20_000,
			ProbeTimeoutMS: 1_500,
		},
		Remote: RemoteConfig{
			BaseURL:   "https://api.groq.com/openai/v1",
			APIKeyEnv: "GROQ_API_KEY",
			Model:     "whisper-large-v3-turbo",
		},
	}
}

// DefaultPath is the conventional config file location; a missing file is
// not an error.
func DefaultPath() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(base, "murmur", "config.yaml")
}

// DefaultDataDir is where the pinned database lives unless data_dir says
// otherwise.
func DefaultDataDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return "."
	}
	return filepath.Join(base, "murmur")
}

// Load reads path over the defaults. A missing file yields pure defaults;
// a malformed file is an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Format {
	case "flac", "wav":
	default:
		return fmt.Errorf("config: unknown format %q (use flac or wav)", c.Format)
	}
	if c.HistoryCapacity < 1 {
		return fmt.Errorf("config: history_capacity must be positive")
	}
	if c.PinnedCapacity < 1 {
		return fmt.Errorf("config: pinned_capacity must be positive")
	}
	return nil
}
