package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)

	assert.Equal(t, "https://open.larksuite.com/open-apis/auth/v3/tenant_access_token/internal", cfg.Lark.AuthURL)
	assert.Equal(t, "https://open.larksuite.com/open-apis/im/v1/messages", cfg.Lark.MessageURL)
	assert.Equal(t, "https://open.larksuite.com/open-apis/bitable/v1", cfg.Lark.BitableBaseURL)

	assert.Equal(t, "gpt-4o-mini", cfg.OpenAI.Model)
	assert.InDelta(t, 0.7, cfg.OpenAI.Temperature, 1e-6)
	assert.Equal(t, 1000, cfg.OpenAI.MaxTokens)

	assert.Equal(t, "processed_messages.json", cfg.Ledger.ObjectName)
	assert.Equal(t, 5, cfg.Ledger.SyncIntervalMinutes)

	assert.Equal(t, time.Minute, cfg.Dedup.TTL)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("LARK_APP_ID", "cli_test")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "cli_test", cfg.Lark.AppID)
}

func TestConfigValidation(t *testing.T) {
	// Test valid configuration
	config := &Config{
		Server: ServerConfig{Port: "8080"},
		Ledger: LedgerConfig{SyncIntervalMinutes: 5},
		Dedup:  DedupConfig{TTL: time.Minute},
	}

	err := config.Validate()
	assert.NoError(t, err)

	// Test invalid configuration
	invalidConfig := &Config{
		Server: ServerConfig{Port: ""},
	}

	err = invalidConfig.Validate()
	assert.Error(t, err)
}

func TestFeatureFlags(t *testing.T) {
	lark := LarkConfig{}
	assert.False(t, lark.MessagingEnabled())
	assert.False(t, lark.BitableEnabled())

	lark.AppID = "cli_x"
	lark.AppSecret = "secret"
	assert.True(t, lark.MessagingEnabled())
	assert.False(t, lark.BitableEnabled(), "table commands also need the app token")

	lark.BitableAppToken = "bas_y"
	assert.True(t, lark.BitableEnabled())

	assert.False(t, OpenAIConfig{}.Enabled())
	assert.True(t, OpenAIConfig{APIKey: "sk"}.Enabled())

	assert.False(t, LedgerConfig{}.Enabled())
	assert.True(t, LedgerConfig{Bucket: "b"}.Enabled())
}
