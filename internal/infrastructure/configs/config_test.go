package configs

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, uint16(3000), cfg.HTTP.Port)
	assert.Equal(t, "redis", cfg.Session.Store)
	assert.Equal(t, "session_id", cfg.Session.CookieName)
	assert.Equal(t, 24*time.Hour, cfg.Session.TTL)
	assert.True(t, cfg.Relay.ValidateRooms)
	assert.Equal(t, 64, cfg.Relay.SendBuffer)
	assert.False(t, cfg.Events.Enabled)
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
http:
  port: 8081
session:
  store: memory
  ttl: 30m
relay:
  validate_rooms: false
  send_buffer: 8
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, uint16(8081), cfg.HTTP.Port)
	assert.Equal(t, "memory", cfg.Session.Store)
	assert.Equal(t, 30*time.Minute, cfg.Session.TTL)
	assert.False(t, cfg.Relay.ValidateRooms)
	assert.Equal(t, 8, cfg.Relay.SendBuffer)
	assert.Equal(t, "chatroom", cfg.Mongo.Database)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("DB_URL", "mongodb://db:27017")
	t.Setenv("SESSION_STORE", "memory")
	t.Setenv("RABBITMQ_URI", "amqp://mq:5672/")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, uint16(9090), cfg.HTTP.Port)
	assert.Equal(t, "mongodb://db:27017", cfg.Mongo.URI)
	assert.Equal(t, "memory", cfg.Session.Store)
	assert.True(t, cfg.Events.Enabled)
	assert.Equal(t, "amqp://mq:5672/", cfg.Events.RabbitMQURI)
}

func TestLoadRejectsUnknownSessionStore(t *testing.T) {
	path := writeConfig(t, "session:\n  store: cookie\n")

	_, err := Load(path)
	assert.ErrorContains(t, err, "session.store")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
