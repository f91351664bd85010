// Package config loads host configuration from a YAML file, environment
// variables and defaults, in ascending precedence.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// ModelConfig selects the model provider and its generation settings.
type ModelConfig struct {
	// Provider is "openai", "anthropic" or "mock".
	Provider string `mapstructure:"provider"`
	// ID is the provider model identifier, e.g. "gpt-4o-mini".
	ID string `mapstructure:"id"`
	// Temperature overrides the provider default when positive.
	Temperature float64 `mapstructure:"temperature"`
}

// LogConfig controls diagnostic output.
type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // text or json
}

// Config is the full host configuration.
type Config struct {
	// AppName scopes session keys and the advertised card name.
	AppName string `mapstructure:"app_name"`
	// ListenAddr is the HTTP bind address of the front door.
	ListenAddr string `mapstructure:"listen_addr"`
	// AgentURLs are the specialist base endpoints to discover at startup.
	AgentURLs []string `mapstructure:"agent_urls"`
	// AgentRegistry optionally names a YAML file listing additional
	// specialist endpoints, merged after AgentURLs.
	AgentRegistry string `mapstructure:"agent_registry"`
	// PromptTemplate overrides the built-in delegation prompt. May reference
	// {{.AgentCards}}.
	PromptTemplate string `mapstructure:"prompt_template"`
	// WindowSize bounds how many prior conversation turns reach the model.
	WindowSize int `mapstructure:"window_size"`
	// MaxToolRounds bounds model/tool round trips per question.
	MaxToolRounds int         `mapstructure:"max_tool_rounds"`
	Model         ModelConfig `mapstructure:"model"`
	Log           LogConfig   `mapstructure:"log"`
}

// Load reads configuration from the given file (optional; empty path skips
// it) with HOSTAGENT_* environment variables taking precedence.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetDefault("app_name", "host-agent")
	v.SetDefault("listen_addr", ":8000")
	v.SetDefault("window_size", 10)
	v.SetDefault("max_tool_rounds", 8)
	v.SetDefault("model.provider", "openai")
	v.SetDefault("model.id", "gpt-4o-mini")
	v.SetDefault("model.temperature", 0.1)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetEnvPrefix("HOSTAGENT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.AgentRegistry != "" {
		urls, err := LoadAgentRegistry(cfg.AgentRegistry)
		if err != nil {
			return nil, err
		}
		cfg.AgentURLs = mergeURLs(cfg.AgentURLs, urls)
	}
	return &cfg, nil
}

// agentRegistry is the on-disk shape of a specialist registry file.
type agentRegistry struct {
	Agents []struct {
		Name string `yaml:"name"`
		URL  string `yaml:"url"`
	} `yaml:"agents"`
}

// LoadAgentRegistry reads a YAML registry of specialist endpoints:
//
//	agents:
//	  - name: product
//	    url: http://localhost:10000
func LoadAgentRegistry(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read agent registry %s: %w", path, err)
	}
	var reg agentRegistry
	if err := yaml.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("failed to parse agent registry %s: %w", path, err)
	}
	urls := make([]string, 0, len(reg.Agents))
	for _, a := range reg.Agents {
		if a.URL == "" {
			return nil, fmt.Errorf("agent registry %s: entry %q has no url", path, a.Name)
		}
		urls = append(urls, a.URL)
	}
	return urls, nil
}

func mergeURLs(base, extra []string) []string {
	seen := make(map[string]struct{}, len(base))
	out := make([]string, 0, len(base)+len(extra))
	for _, u := range base {
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	for _, u := range extra {
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	return out
}

// Validate reports configuration that cannot produce a working host.
func (c *Config) Validate() error {
	if len(c.AgentURLs) == 0 {
		return fmt.Errorf("at least one agent url is required")
	}
	switch c.Model.Provider {
	case "openai", "anthropic", "mock":
	default:
		return fmt.Errorf("unknown model provider %q", c.Model.Provider)
	}
	if c.WindowSize < 0 {
		return fmt.Errorf("window_size must not be negative")
	}
	return nil
}
