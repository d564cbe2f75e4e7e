package quizify

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the server and pipeline settings.
type Config struct {
	Server struct {
		Port          string `yaml:"port"`
		SessionSecret string `yaml:"session_secret"`
	} `yaml:"server"`
	Database struct {
		Path string `yaml:"path"` // empty means in-memory only
	} `yaml:"database"`
	OpenAI struct {
		APIKey string `yaml:"api_key"` // OPENAI_API_KEY overrides
		Model  string `yaml:"model"`
	} `yaml:"openai"`
	QuickQuiz struct {
		Size    int    `yaml:"size"`
		PoolTTL string `yaml:"pool_ttl"`
	} `yaml:"quick_quiz"`
	Transcript bool `yaml:"transcript"` // per-ingestion LLM transcript under log/
}

// LoadConfig reads YAML config from path. A missing file yields defaults.
func LoadConfig(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyDefaults()
			return cfg, nil
		}
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = "8180"
	}
	if c.QuickQuiz.Size <= 0 {
		c.QuickQuiz.Size = 10
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		c.OpenAI.APIKey = key
	}
}
