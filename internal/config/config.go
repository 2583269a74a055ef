package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	URL       string `yaml:"url"`
	AgentName string `yaml:"agent_name"`
	DataDir   string `yaml:"data_dir"`
	Trace     bool   `yaml:"trace"`
	VisitDB   bool   `yaml:"visit_db"`
	Debug     bool   `yaml:"debug"`
}

func Defaults() Config {
	return Config{
		URL:       "ws://localhost:8080/v1/ws",
		AgentName: "bot",
		DataDir:   "./data",
		Trace:     true,
		VisitDB:   true,
	}
}

// Load reads a bot config file over the defaults. An empty path just
// returns the defaults.
func Load(path string) (Config, error) {
	cfg := Defaults()
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("bot config: %w", err)
	}
	if strings.TrimSpace(cfg.URL) == "" {
		return cfg, fmt.Errorf("bot config: empty url")
	}
	if strings.TrimSpace(cfg.AgentName) == "" {
		return cfg, fmt.Errorf("bot config: empty agent_name")
	}
	return cfg, nil
}
