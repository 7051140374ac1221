package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// Config holds the effective configuration for one agentcli invocation.
type Config struct {
	Provider       string        // completion provider: "openai" or "agent-cli"
	Model          string        // model id passed to the provider
	BaseURL        string        // OpenAI-compatible endpoint override
	AgentBin       string        // local agent binary for the agent-cli provider
	LLMTimeout     time.Duration // per completion call
	CommandTimeout time.Duration // per build/test/vcs command
	MaxIterations  int           // repair loop iteration cap
	MaxRetries     int           // corrective retries per authoring call
	MaxTokens      int
	Temperature    float32
}

// rawSettings mirrors setting.yaml. Pointer fields distinguish
// "absent" from zero so file values only override when present.
type rawSettings struct {
	Provider          *string  `yaml:"provider"`
	Model             *string  `yaml:"model"`
	BaseURL           *string  `yaml:"base_url"`
	AgentBin          *string  `yaml:"agent_bin"`
	LLMTimeoutSec     *int     `yaml:"llm_timeout_sec"`
	CommandTimeoutSec *int     `yaml:"command_timeout_sec"`
	MaxIterations     *int     `yaml:"max_iterations"`
	MaxRetries        *int     `yaml:"max_retries"`
	MaxTokens         *int     `yaml:"max_tokens"`
	Temperature       *float32 `yaml:"temperature"`
}

// Default returns the built-in defaults.
func Default() Config {
	return Config{
		Provider:       "openai",
		Model:          "gpt-4.1-mini",
		AgentBin:       "claude",
		LLMTimeout:     60 * time.Second,
		CommandTimeout: 120 * time.Second,
		MaxIterations:  8,
		MaxRetries:     3,
		MaxTokens:      2048,
		Temperature:    0.2,
	}
}

// LoadSettings loads configuration with priority:
// setting.yaml > AGENTCLI_* environment > defaults.
func LoadSettings(fs afero.Fs, settingPath string) (Config, error) {
	cfg := Default()
	applyEnv(&cfg)

	b, err := afero.ReadFile(fs, settingPath)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read %s: %w", settingPath, err)
	}

	var raw rawSettings
	if err := yaml.Unmarshal(b, &raw); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", settingPath, err)
	}
	applyRaw(&cfg, raw)
	return cfg, nil
}

func applyRaw(cfg *Config, raw rawSettings) {
	if raw.Provider != nil {
		cfg.Provider = *raw.Provider
	}
	if raw.Model != nil {
		cfg.Model = *raw.Model
	}
	if raw.BaseURL != nil {
		cfg.BaseURL = *raw.BaseURL
	}
	if raw.AgentBin != nil {
		cfg.AgentBin = *raw.AgentBin
	}
	if raw.LLMTimeoutSec != nil {
		cfg.LLMTimeout = time.Duration(*raw.LLMTimeoutSec) * time.Second
	}
	if raw.CommandTimeoutSec != nil {
		cfg.CommandTimeout = time.Duration(*raw.CommandTimeoutSec) * time.Second
	}
	if raw.MaxIterations != nil {
		cfg.MaxIterations = *raw.MaxIterations
	}
	if raw.MaxRetries != nil {
		cfg.MaxRetries = *raw.MaxRetries
	}
	if raw.MaxTokens != nil {
		cfg.MaxTokens = *raw.MaxTokens
	}
	if raw.Temperature != nil {
		cfg.Temperature = *raw.Temperature
	}
}

func applyEnv(cfg *Config) {
	get := func(k string) string { return os.Getenv("AGENTCLI_" + k) }

	if v := get("PROVIDER"); v != "" {
		cfg.Provider = v
	}
	if v := get("MODEL"); v != "" {
		cfg.Model = v
	}
	if v := get("BASE_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := get("AGENT_BIN"); v != "" {
		cfg.AgentBin = v
	}
	if v := get("LLM_TIMEOUT_SEC"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.LLMTimeout = time.Duration(n) * time.Second
		}
	}
	if v := get("COMMAND_TIMEOUT_SEC"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.CommandTimeout = time.Duration(n) * time.Second
		}
	}
	if v := get("MAX_ITERATIONS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxIterations = n
		}
	}
	if v := get("MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxRetries = n
		}
	}
}
