package config

import (
	"path/filepath"
)

type Config struct {
	Server  ServerConfig
	Remote  RemoteConfig
	LLM     LLMConfig
	Storage StorageConfig
	Worker  WorkerConfig
	Log     LogConfig
}

// ServerConfig is the classifier service side.
type ServerConfig struct {
	Port int
}

// RemoteConfig is the client side: where the classification service lives
// and how patiently its jobs are polled.
type RemoteConfig struct {
	BaseURL      string
	PollInterval string // duration string, e.g. "1s"
	PollTimeout  string // duration string, e.g. "20s"
}

type LLMConfig struct {
	BaseURL string
	Model   string
	Enabled bool
}

type StorageConfig struct {
	DataDir     string
	MailboxPath string // client mailbox blob; empty means <data_dir>/mailbox.json
}

type WorkerConfig struct {
	Concurrency int
}

type LogConfig struct {
	Level string
}

func defaults() Config {
	dataDir := defaultDataDir()
	return Config{
		Server: ServerConfig{
			Port: 8000,
		},
		Remote: RemoteConfig{
			BaseURL:      "http://127.0.0.1:8000",
			PollInterval: "1s",
			PollTimeout:  "20s",
		},
		LLM: LLMConfig{
			BaseURL: "http://localhost:11434",
			Model:   "llama3.2",
			Enabled: true,
		},
		Storage: StorageConfig{
			DataDir: dataDir,
		},
		Worker: WorkerConfig{
			Concurrency: 2,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from the JSON file backend at
// $XDG_CONFIG_HOME/mailtriage/config.json, then applies MAILTRIAGE_* env
// overrides on top of the compiled defaults.
func Load() (Config, error) {
	return loadWith(newFileBackend())
}

func loadWith(b Backend) (Config, error) {
	cfg := defaults()

	if err := applyBackend(&cfg, b); err != nil {
		return Config{}, err
	}

	applyEnvOverrides(&cfg)

	return cfg, nil
}

// Mailbox returns the resolved mailbox blob path.
func (c Config) Mailbox() string {
	if c.Storage.MailboxPath != "" {
		return c.Storage.MailboxPath
	}
	return filepath.Join(c.Storage.DataDir, "mailbox.json")
}
