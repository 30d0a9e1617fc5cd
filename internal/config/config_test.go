package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, "{}\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Addr())
	assert.Equal(t, 2, cfg.Game.WinThreshold)
	assert.Equal(t, 2*time.Second, cfg.Game.FirstRoundDelay)
	assert.Equal(t, 3*time.Second, cfg.Game.NextRoundDelay)
	assert.Equal(t, 2*time.Second, cfg.Game.MatchSummaryDelay)
	assert.Equal(t, 1500*time.Millisecond, cfg.Game.RematchRoundDelay)
	assert.Equal(t, 54*time.Second, cfg.Websocket.PingPeriod)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Empty(t, cfg.Nicknames.WordsFile)
}

func TestLoad_Overrides(t *testing.T) {
	path := writeConfig(t, `
server:
  host: 127.0.0.1
  port: 9000
game:
  win_threshold: 3
  next_round_delay: 500ms
logging:
  level: debug
  format: console
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr())
	assert.Equal(t, 3, cfg.Game.WinThreshold)
	assert.Equal(t, 500*time.Millisecond, cfg.Game.NextRoundDelay)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidate_Failures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"bad port", func(c *Config) { c.Server.Port = 0 }, "server.port"},
		{"zero threshold", func(c *Config) { c.Game.WinThreshold = 0 }, "game.win_threshold"},
		{"negative delay", func(c *Config) { c.Game.NextRoundDelay = -time.Second }, "game.next_round_delay"},
		{"bad level", func(c *Config) { c.Logging.Level = "verbose" }, "logging.level"},
		{"bad format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"ping above pong", func(c *Config) { c.Websocket.PingPeriod = c.Websocket.PongTimeout }, "ping_period"},
		{"zero message size", func(c *Config) { c.Websocket.MaxMessageSize = 0 }, "max_message_size"},
		{"zero send buffer", func(c *Config) { c.Websocket.SendBuffer = 0 }, "send_buffer"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			require.NoError(t, cfg.Validate(), "defaults must validate")
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidate_PortRange(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		cfg := Default()
		port := rapid.IntRange(-100, 70000).Draw(t, "port")
		cfg.Server.Port = port

		err := cfg.Validate()
		if port >= 1 && port <= 65535 {
			assert.NoError(t, err)
		} else {
			assert.Error(t, err)
		}
	})
}
