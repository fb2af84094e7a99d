// Package bitrpcconfig loads the YAML configuration document described in
// SPEC_FULL.md §2.2.
package bitrpcconfig

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level document.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	RPCClient RPCClientConfig `yaml:"rpc_client"`
	Ring      RingConfig      `yaml:"ring_buffer"`
	Manager   ManagerConfig   `yaml:"manager"`
	Logging   LoggingConfig   `yaml:"logging"`
}

type ServerConfig struct {
	ListenAddr string `yaml:"listen_addr"`
}

type RPCClientConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type RingConfig struct {
	Name         string `yaml:"name"`
	BufferSize   uint64 `yaml:"buffer_size"`
	EnableEvents bool   `yaml:"enable_events"`
}

type ManagerConfig struct {
	MaxMessageSize      uint32 `yaml:"max_message_size"`
	HeartbeatIntervalMs int64  `yaml:"heartbeat_interval_ms"`
	AutoCleanup         bool   `yaml:"auto_cleanup"`
}

// HeartbeatInterval converts HeartbeatIntervalMs to a time.Duration.
func (m ManagerConfig) HeartbeatInterval() time.Duration {
	return time.Duration(m.HeartbeatIntervalMs) * time.Millisecond
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Default matches SPEC_FULL.md §2.2 exactly.
func Default() Config {
	return Config{
		Server:    ServerConfig{ListenAddr: ":7890"},
		RPCClient: RPCClientConfig{Host: "127.0.0.1", Port: 7890},
		Ring: RingConfig{
			Name:         "bitrpc",
			BufferSize:   1048576,
			EnableEvents: true,
		},
		Manager: ManagerConfig{
			MaxMessageSize:      65536,
			HeartbeatIntervalMs: 1000,
			AutoCleanup:         true,
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Load reads and decodes the YAML document at path over Default's values
// (a field absent from the document keeps its default).
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the cross-field invariants Load needs but yaml.Unmarshal
// can't express (ranges, positivity). The ring buffer's own power-of-two
// check happens in ringbuf.Create, not here.
func (c Config) Validate() error {
	if c.RPCClient.Port < 0 || c.RPCClient.Port > 65535 {
		return fmt.Errorf("bitrpcconfig: rpc_client.port out of range: %d", c.RPCClient.Port)
	}
	if c.Ring.BufferSize == 0 {
		return fmt.Errorf("bitrpcconfig: ring_buffer.buffer_size must be > 0")
	}
	if c.Manager.MaxMessageSize == 0 {
		return fmt.Errorf("bitrpcconfig: manager.max_message_size must be > 0")
	}
	return nil
}
