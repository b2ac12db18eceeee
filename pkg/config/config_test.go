package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_OutboxDefaults(t *testing.T) {
	t.Setenv("EMAIL_OUTBOX_INTERVAL", "")
	t.Setenv("EMAIL_OUTBOX_MAX_RETRIES", "")
	t.Setenv("EMAIL_OUTBOX_BATCH_SIZE", "")

	cfg := Load()
	assert.Equal(t, OutboxConfig{Interval: 5 * time.Second, MaxRetries: 5, BatchSize: 50}, cfg.Outbox)
}

func TestLoad_OutboxFromEnv(t *testing.T) {
	t.Setenv("EMAIL_OUTBOX_INTERVAL", "30s")
	t.Setenv("EMAIL_OUTBOX_MAX_RETRIES", "8")
	t.Setenv("EMAIL_OUTBOX_BATCH_SIZE", "200")

	cfg := Load()
	assert.Equal(t, OutboxConfig{Interval: 30 * time.Second, MaxRetries: 8, BatchSize: 200}, cfg.Outbox)
}

func TestLoad_OutboxIgnoresBadValues(t *testing.T) {
	t.Setenv("EMAIL_OUTBOX_INTERVAL", "-1s")
	t.Setenv("EMAIL_OUTBOX_MAX_RETRIES", "many")

	cfg := Load()
	assert.Equal(t, 5*time.Second, cfg.Outbox.Interval)
	assert.Equal(t, 5, cfg.Outbox.MaxRetries)
}
