package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds the helpdesk API configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Database  DatabaseConfig  `yaml:"database"`
	LLM       LLMConfig       `yaml:"llm"`
	Knowledge KnowledgeConfig `yaml:"knowledge"`
	Chat      ChatConfig      `yaml:"chat"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Auth      AuthConfig      `yaml:"auth"`
	Session   SessionConfig   `yaml:"session"`
	Storage   StorageConfig   `yaml:"storage"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds admin API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	Driver           string   `yaml:"driver"` // redis, valkey, memory (default: redis)
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	DB               int      `yaml:"db"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
	CacheTTLSec      int      `yaml:"cache_ttl_sec"` // client-side hash cache; valkey driver only
}

// StorageConfig holds storage settings.
type StorageConfig struct {
	KeyPrefix string `yaml:"key_prefix"`
}

// LLMConfig holds hosted chat-completion settings. An empty APIKey disables the LLM path.
type LLMConfig struct {
	Provider          string       `yaml:"provider"`
	APIKey            string       `yaml:"api_key"`
	BaseURL           string       `yaml:"base_url"`
	Model             string       `yaml:"model"`
	MaxTokens         int          `yaml:"max_tokens"`
	Temperature       float32      `yaml:"temperature"`
	HistoryTurns      int          `yaml:"history_turns"`
	CacheTTLSec       int          `yaml:"cache_ttl_sec"`
	RequestTimeoutSec int          `yaml:"request_timeout_sec"`
	Budget            BudgetConfig `yaml:"budget"`
}

// BudgetConfig caps LLM token spend per UTC day and month. Zero limits are unlimited.
type BudgetConfig struct {
	DailyTokenLimit   int64  `yaml:"daily_token_limit"`
	MonthlyTokenLimit int64  `yaml:"monthly_token_limit"`
	Action            string `yaml:"action"` // warn or reject (default: warn)
}

// Enabled reports whether any token limit is set.
func (c BudgetConfig) Enabled() bool { return c.DailyTokenLimit > 0 || c.MonthlyTokenLimit > 0 }

// Enabled reports whether an LLM provider is configured.
func (c LLMConfig) Enabled() bool { return c.APIKey != "" }

// KnowledgeConfig holds knowledge base location and ranking settings.
type KnowledgeConfig struct {
	Path               string              `yaml:"path"`
	ReloadIntervalSec  int                 `yaml:"reload_interval_sec"` // 0 = no periodic reload
	MaxTopics          int                 `yaml:"max_topics"`
	MaxMatchesPerTopic int                 `yaml:"max_matches_per_topic"`
	MaxResults         int                 `yaml:"max_results"`
	Thesaurus          map[string][]string `yaml:"thesaurus"` // empty = built-in categories
}

// ChatConfig holds chat message and reply settings.
type ChatConfig struct {
	MaxMessageLength int    `yaml:"max_message_length"`
	SystemPrompt     string `yaml:"system_prompt"`
	ResponsesPath    string `yaml:"responses_path"` // empty = built-in canned replies
}

// RateLimitConfig holds per-client request limits.
type RateLimitConfig struct {
	ChatPerMinute     int `yaml:"chat_per_minute"`
	FeedbackPerMinute int `yaml:"feedback_per_minute"`
}

// SessionConfig holds chat session cookie settings.
type SessionConfig struct {
	CookieName string `yaml:"cookie_name"`
	Secure     bool   `yaml:"secure"`
	MaxAgeSec  int    `yaml:"max_age_sec"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
// A .env file in the working directory, if present, is loaded into the environment first.
func Load(env string) (Config, error) {
	_ = godotenv.Load() // .env is optional

	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	return Parse(data)
}

// Parse decodes YAML configuration, expanding ${VAR} references, then applies
// defaults and validates.
func Parse(data []byte) (Config, error) {
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 60
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "redis"
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Database.Driver == "valkey" && c.Database.CacheTTLSec <= 0 {
		c.Database.CacheTTLSec = 60
	}
	if c.Storage.KeyPrefix == "" {
		c.Storage.KeyPrefix = "helpdesk:"
	}

	if c.LLM.Provider == "" {
		c.LLM.Provider = "openai"
	}
	if c.LLM.Model == "" {
		c.LLM.Model = "gpt-4"
	}
	if c.LLM.MaxTokens <= 0 {
		c.LLM.MaxTokens = 300
	}
	if c.LLM.Temperature == 0 {
		c.LLM.Temperature = 0.7
	}
	if c.LLM.HistoryTurns <= 0 {
		c.LLM.HistoryTurns = 5
	}
	if c.LLM.CacheTTLSec <= 0 {
		c.LLM.CacheTTLSec = 3600
	}
	if c.LLM.RequestTimeoutSec <= 0 {
		c.LLM.RequestTimeoutSec = 30
	}
	if c.LLM.Budget.Action == "" {
		c.LLM.Budget.Action = "warn"
	}

	if c.Knowledge.Path == "" {
		c.Knowledge.Path = "knowledge_base.json"
	}
	if c.Knowledge.MaxTopics <= 0 {
		c.Knowledge.MaxTopics = 2
	}
	if c.Knowledge.MaxMatchesPerTopic <= 0 {
		c.Knowledge.MaxMatchesPerTopic = 2
	}
	if c.Knowledge.MaxResults <= 0 {
		c.Knowledge.MaxResults = 3
	}

	if c.Chat.MaxMessageLength <= 0 {
		c.Chat.MaxMessageLength = 1000
	}
	if c.RateLimit.ChatPerMinute <= 0 {
		c.RateLimit.ChatPerMinute = 10
	}
	if c.RateLimit.FeedbackPerMinute <= 0 {
		c.RateLimit.FeedbackPerMinute = 30
	}

	if c.Session.CookieName == "" {
		c.Session.CookieName = "helpdesk_session"
	}
	if c.Session.MaxAgeSec <= 0 {
		c.Session.MaxAgeSec = 86400
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	switch c.Database.Driver {
	case "redis", "valkey":
		if len(c.Database.Addrs) == 0 {
			return fmt.Errorf("database.addrs is required")
		}
	case "memory":
		// ok
	default:
		return fmt.Errorf(
			"database.driver must be \"redis\", \"valkey\" or \"memory\", got %q", c.Database.Driver,
		)
	}
	if c.LLM.Provider != "openai" {
		return fmt.Errorf("llm.provider must be \"openai\", got %q", c.LLM.Provider)
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return fmt.Errorf("llm.temperature must be between 0 and 2, got %v", c.LLM.Temperature)
	}
	if c.LLM.Budget.DailyTokenLimit < 0 || c.LLM.Budget.MonthlyTokenLimit < 0 {
		return fmt.Errorf("llm.budget token limits must not be negative")
	}
	if a := c.LLM.Budget.Action; a != "warn" && a != "reject" {
		return fmt.Errorf("llm.budget.action must be \"warn\" or \"reject\", got %q", a)
	}
	if c.Knowledge.ReloadIntervalSec < 0 {
		return fmt.Errorf("knowledge.reload_interval_sec must not be negative")
	}
	for name, syns := range c.Knowledge.Thesaurus {
		if len(syns) == 0 {
			return fmt.Errorf("knowledge.thesaurus.%s has no synonyms", name)
		}
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
