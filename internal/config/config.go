// Package config provides Viper-based configuration loading for the
// matchmaking server.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	// Host is the bind address for the HTTP listener.
	Host string `mapstructure:"host"`
	// Port is the TCP port for the HTTP listener.
	Port int `mapstructure:"port"`
	// StaticDir is an optional directory of client assets served at "/".
	// Empty disables static serving.
	StaticDir string `mapstructure:"static_dir"`
}

// Addr returns the "host:port" listen address.
//
// Postcondition: Returns a non-empty string in "host:port" format.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// WebsocketConfig holds per-connection WebSocket tuning.
type WebsocketConfig struct {
	// WriteTimeout is the deadline for writing one frame to a peer.
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	// PongTimeout is how long to wait for a pong before the peer is
	// considered gone.
	PongTimeout time.Duration `mapstructure:"pong_timeout"`
	// PingPeriod is the keep-alive ping interval; must stay below PongTimeout.
	PingPeriod time.Duration `mapstructure:"ping_period"`
	// MaxMessageSize is the largest inbound frame accepted, in bytes.
	MaxMessageSize int64 `mapstructure:"max_message_size"`
	// SendBuffer is the per-connection outbound queue length; a peer that
	// falls this far behind is dropped.
	SendBuffer int `mapstructure:"send_buffer"`
}

// GameConfig holds the match rules and notification timing.
type GameConfig struct {
	// WinThreshold is the score that decides a match.
	WinThreshold int `mapstructure:"win_threshold"`
	// FirstRoundDelay is the pause between pairing and round 1.
	FirstRoundDelay time.Duration `mapstructure:"first_round_delay"`
	// NextRoundDelay is the pause between a round result and the next round.
	NextRoundDelay time.Duration `mapstructure:"next_round_delay"`
	// MatchSummaryDelay is the pause before the match summary goes out.
	MatchSummaryDelay time.Duration `mapstructure:"match_summary_delay"`
	// RematchRoundDelay is the pause between rematch acceptance and round 1.
	RematchRoundDelay time.Duration `mapstructure:"rematch_round_delay"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// NicknamesConfig holds display-name generation settings.
type NicknamesConfig struct {
	// WordsFile is an optional YAML file of adjective/animal word lists.
	// Empty uses the compiled-in defaults.
	WordsFile string `mapstructure:"words_file"`
}

// Config is the top-level application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Websocket WebsocketConfig `mapstructure:"websocket"`
	Game      GameConfig      `mapstructure:"game"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Nicknames NicknamesConfig `mapstructure:"nicknames"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error
// describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateServer(c.Server); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateWebsocket(c.Websocket); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateGame(c.Game); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateServer(s ServerConfig) error {
	if s.Port < 1 || s.Port > 65535 {
		return fmt.Errorf("server.port must be 1-65535, got %d", s.Port)
	}
	return nil
}

func validateWebsocket(w WebsocketConfig) error {
	var errs []string
	if w.WriteTimeout <= 0 {
		errs = append(errs, "websocket.write_timeout must be positive")
	}
	if w.PongTimeout <= 0 {
		errs = append(errs, "websocket.pong_timeout must be positive")
	}
	if w.PingPeriod <= 0 || w.PingPeriod >= w.PongTimeout {
		errs = append(errs, "websocket.ping_period must be positive and below websocket.pong_timeout")
	}
	if w.MaxMessageSize < 1 {
		errs = append(errs, fmt.Sprintf("websocket.max_message_size must be >= 1, got %d", w.MaxMessageSize))
	}
	if w.SendBuffer < 1 {
		errs = append(errs, fmt.Sprintf("websocket.send_buffer must be >= 1, got %d", w.SendBuffer))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateGame(g GameConfig) error {
	var errs []string
	if g.WinThreshold < 1 {
		errs = append(errs, fmt.Sprintf("game.win_threshold must be >= 1, got %d", g.WinThreshold))
	}
	for name, d := range map[string]time.Duration{
		"game.first_round_delay":   g.FirstRoundDelay,
		"game.next_round_delay":    g.NextRoundDelay,
		"game.match_summary_delay": g.MatchSummaryDelay,
		"game.rematch_round_delay": g.RematchRoundDelay,
	} {
		if d < 0 {
			errs = append(errs, fmt.Sprintf("%s must not be negative", name))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

// Load reads configuration from the given file path, applies environment
// variable overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Environment variable overrides with ROSHAMBO_ prefix
	v.SetEnvPrefix("ROSHAMBO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Default returns the stock configuration without reading any file.
func Default() Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	// Unmarshalling bare defaults cannot fail.
	_ = v.Unmarshal(&cfg)
	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.static_dir", "")

	v.SetDefault("websocket.write_timeout", "10s")
	v.SetDefault("websocket.pong_timeout", "60s")
	v.SetDefault("websocket.ping_period", "54s")
	v.SetDefault("websocket.max_message_size", 1024)
	v.SetDefault("websocket.send_buffer", 64)

	v.SetDefault("game.win_threshold", 2)
	v.SetDefault("game.first_round_delay", "2s")
	v.SetDefault("game.next_round_delay", "3s")
	v.SetDefault("game.match_summary_delay", "2s")
	v.SetDefault("game.rematch_round_delay", "1500ms")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("nicknames.words_file", "")
}
