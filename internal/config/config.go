package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the gateway
type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Lark   LarkConfig   `mapstructure:"lark"`
	OpenAI OpenAIConfig `mapstructure:"openai"`
	Ledger LedgerConfig `mapstructure:"ledger"`
	Dedup  DedupConfig  `mapstructure:"dedup"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// LarkConfig holds Lark open-platform configuration
type LarkConfig struct {
	AppID           string        `mapstructure:"app_id"`
	AppSecret       string        `mapstructure:"app_secret"`
	BitableAppToken string        `mapstructure:"bitable_app_token"`
	AuthURL         string        `mapstructure:"auth_url"`
	MessageURL      string        `mapstructure:"message_url"`
	BitableBaseURL  string        `mapstructure:"bitable_base_url"`
	Timeout         time.Duration `mapstructure:"timeout"`
}

// OpenAIConfig holds OpenAI API configuration
type OpenAIConfig struct {
	APIKey      string        `mapstructure:"api_key"`
	BaseURL     string        `mapstructure:"base_url"`
	Model       string        `mapstructure:"model"`
	Temperature float32       `mapstructure:"temperature"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// LedgerConfig holds processed-message ledger configuration
type LedgerConfig struct {
	Bucket              string `mapstructure:"bucket"`
	ObjectName          string `mapstructure:"object_name"`
	SyncIntervalMinutes int    `mapstructure:"sync_interval_minutes"`
}

// DedupConfig holds duplicate-suppression configuration
type DedupConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

// LoadConfig loads configuration from environment variables and config file
func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	// Set defaults
	setDefaults()

	// Read config file if it exists
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	// Environment variables override config file
	viper.AutomaticEnv()

	// Bind environment variables
	bindEnvVars()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "30s")

	viper.SetDefault("lark.auth_url", "https://open.larksuite.com/open-apis/auth/v3/tenant_access_token/internal")
	viper.SetDefault("lark.message_url", "https://open.larksuite.com/open-apis/im/v1/messages")
	viper.SetDefault("lark.bitable_base_url", "https://open.larksuite.com/open-apis/bitable/v1")
	viper.SetDefault("lark.timeout", "15s")

	viper.SetDefault("openai.model", "gpt-4o-mini")
	viper.SetDefault("openai.temperature", 0.7)
	viper.SetDefault("openai.max_tokens", 1000)
	viper.SetDefault("openai.timeout", "30s")

	viper.SetDefault("ledger.object_name", "processed_messages.json")
	viper.SetDefault("ledger.sync_interval_minutes", 5)

	viper.SetDefault("dedup.ttl", "1m")
}

// bindEnvVars binds environment variables to configuration keys
func bindEnvVars() {
	// Server
	viper.BindEnv("server.port", "PORT", "SERVER_PORT")
	viper.BindEnv("server.read_timeout", "SERVER_READ_TIMEOUT")
	viper.BindEnv("server.write_timeout", "SERVER_WRITE_TIMEOUT")

	// Lark
	viper.BindEnv("lark.app_id", "LARK_APP_ID")
	viper.BindEnv("lark.app_secret", "LARK_APP_SECRET")
	viper.BindEnv("lark.bitable_app_token", "LARK_BITABLE_APP_TOKEN")
	viper.BindEnv("lark.auth_url", "LARK_AUTH_URL")
	viper.BindEnv("lark.message_url", "LARK_MESSAGE_URL")
	viper.BindEnv("lark.bitable_base_url", "LARK_BITABLE_BASE_URL")
	viper.BindEnv("lark.timeout", "LARK_TIMEOUT")

	// OpenAI
	viper.BindEnv("openai.api_key", "OPENAI_API_KEY")
	viper.BindEnv("openai.base_url", "OPENAI_BASE_URL")
	viper.BindEnv("openai.model", "OPENAI_MODEL")
	viper.BindEnv("openai.temperature", "OPENAI_TEMPERATURE")
	viper.BindEnv("openai.max_tokens", "OPENAI_MAX_TOKENS")
	viper.BindEnv("openai.timeout", "OPENAI_TIMEOUT")

	// Ledger
	viper.BindEnv("ledger.bucket", "LEDGER_BUCKET", "BUCKET_NAME")
	viper.BindEnv("ledger.object_name", "LEDGER_OBJECT_NAME")
	viper.BindEnv("ledger.sync_interval_minutes", "LEDGER_SYNC_INTERVAL_MINUTES")

	// Dedup
	viper.BindEnv("dedup.ttl", "DEDUP_TTL")
}

// Validate validates the configuration. Missing platform credentials are not
// an error here: each dependent feature degrades on its own instead of
// blocking startup.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}

	if c.Ledger.SyncIntervalMinutes <= 0 {
		return fmt.Errorf("ledger sync interval must be greater than 0")
	}

	if c.Dedup.TTL <= 0 {
		return fmt.Errorf("dedup ttl must be greater than 0")
	}

	return nil
}

// MessagingEnabled reports whether the Lark app credentials are configured.
func (c LarkConfig) MessagingEnabled() bool {
	return c.AppID != "" && c.AppSecret != ""
}

// BitableEnabled reports whether table commands can be served.
func (c LarkConfig) BitableEnabled() bool {
	return c.MessagingEnabled() && c.BitableAppToken != ""
}

// Enabled reports whether free-text completion is configured.
func (c OpenAIConfig) Enabled() bool {
	return c.APIKey != ""
}

// Enabled reports whether the durable ledger is configured.
func (c LedgerConfig) Enabled() bool {
	return c.Bucket != ""
}
