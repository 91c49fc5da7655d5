package config

import (
	"flag"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvOverridesFlags(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cfg := &Config{}
	RegisterFlags(fs, cfg)
	require.NoError(t, fs.Parse([]string{"-a", ":9000", "-driver", "sqlite", "-notify-timeout", "3s"}))

	t.Setenv("RUN_ADDRESS", ":8081")
	t.Setenv("SMTP_PORT", "2525")
	t.Setenv("NOTIFY_TIMEOUT", "not-a-duration")
	t.Setenv("ENV", "production")
	ApplyEnv(cfg)

	assert.Equal(t, ":8081", cfg.RunAddress)
	assert.Equal(t, "sqlite", cfg.DatabaseDriver)
	assert.Equal(t, 2525, cfg.SMTPPort)
	assert.Equal(t, 3*time.Second, cfg.NotifyTimeout)
	assert.True(t, cfg.Production())
}

func TestDefaults(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cfg := &Config{}
	RegisterFlags(fs, cfg)
	require.NoError(t, fs.Parse(nil))

	assert.Equal(t, "pgx", cfg.DatabaseDriver)
	assert.Equal(t, "simulated", cfg.PaymentProvider)
	assert.Equal(t, 587, cfg.SMTPPort)
	assert.False(t, cfg.Production())
}
