package config

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App       AppConfig                `json:"app" yaml:"app"`
	Gateways  map[string]GatewayConfig `json:"gateways" yaml:"gateways"`
	Memory    MemoryConfig             `json:"memory" yaml:"memory"`
	Assistant AssistantConfig          `json:"assistant" yaml:"assistant"`
}

type AppConfig struct {
	Name      string `json:"name" yaml:"name"`
	Workspace string `json:"workspace" yaml:"workspace"`
}

type GatewayConfig struct {
	Token   string `json:"token" yaml:"token"`
	Enabled bool   `json:"enabled" yaml:"enabled"`
}

type MemoryConfig struct {
	Type string `json:"type" yaml:"type"`
	Path string `json:"path" yaml:"path"`
}

// AssistantConfig tunes the command engine. Zero values keep the built-in
// defaults.
type AssistantConfig struct {
	ReminderLookaheadMinutes int `json:"reminder_lookahead_minutes" yaml:"reminder_lookahead_minutes"`
	StateTTLMinutes          int `json:"state_ttl_minutes" yaml:"state_ttl_minutes"`
}

// LoadConfig reads a config file, choosing the codec by extension. JSON is the
// historical format; .yaml/.yml work too.
func LoadConfig(path string) *Config {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("failed to open config file: %v", err)
	}

	var cfg Config
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	default:
		err = json.Unmarshal(data, &cfg)
	}
	if err != nil {
		log.Fatalf("failed to decode config file: %v", err)
	}

	return &cfg
}

// GetTelegramConfig returns telegram config if enabled
func (c *Config) GetTelegramConfig() (GatewayConfig, bool) {
	tg, ok := c.Gateways["telegram"]
	if ok && tg.Enabled {
		return tg, true
	}
	return GatewayConfig{}, false
}
