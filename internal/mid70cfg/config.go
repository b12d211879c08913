// Package mid70cfg holds the client's connection and timing parameters,
// loadable from a JSON file with every field optional.
package mid70cfg

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fenwick-systems/mid70lidar/internal/cmdmux"
	"github.com/fenwick-systems/mid70lidar/internal/heartbeat"
)

// Config is the root tuning configuration for a client session. Fields
// left nil at JSON-unmarshal time fall back to their Get* defaults, so
// partial config files are safe.
type Config struct {
	// UserIP is the host's IP address as seen by the sensor, embedded in
	// the Handshake request. The vendor reference default is
	// 192.168.1.50, the address of the host NIC on the sensor's private
	// network.
	UserIP *string `json:"user_ip,omitempty"`

	// CmdPort is the local UDP port the command socket binds to. 0 asks
	// the OS for an ephemeral port, which is also the handshake default.
	CmdPort *int `json:"cmd_port,omitempty"`
	// DataPort is the local UDP port the data socket binds to. 0 asks
	// the OS for an ephemeral port.
	DataPort *int `json:"data_port,omitempty"`
	// IMUPort is the local UDP port advertised for IMU push data. The
	// Mid-70 does not carry an IMU; 0 disables it.
	IMUPort *int `json:"imu_port,omitempty"`

	// HeartbeatPeriod overrides heartbeat.Period, expressed as a
	// duration string like "750ms".
	HeartbeatPeriod *string `json:"heartbeat_period,omitempty"`
	// CommandTimeout overrides cmdmux.DefaultResponseTimeout.
	CommandTimeout *string `json:"command_timeout,omitempty"`
	// InboxCapacity overrides cmdmux.DefaultInboxCapacity.
	InboxCapacity *int `json:"inbox_capacity,omitempty"`
	// DiscoveryTimeout is the broadcast wait reported by
	// GetDiscoveryTimeout. discovery.WaitForOne takes its deadline from
	// its context, and cmd/mid70 uses its -discover-timeout flag; neither
	// reads this field.
	DiscoveryTimeout *string `json:"discovery_timeout,omitempty"`
}

// Empty returns a Config with every field unset; Get* methods then report
// the vendor reference defaults.
func Empty() *Config { return &Config{} }

// Load reads and validates a Config from a JSON file.
func Load(path string) (*Config, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("mid70cfg: config file must have .json extension, got %q", ext)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("mid70cfg: read config file: %w", err)
	}

	cfg := Empty()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("mid70cfg: parse config JSON: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("mid70cfg: invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks that any duration-string or port fields that are set
// parse to sane values.
func (c *Config) Validate() error {
	for name, s := range map[string]*string{
		"heartbeat_period":  c.HeartbeatPeriod,
		"command_timeout":   c.CommandTimeout,
		"discovery_timeout": c.DiscoveryTimeout,
	} {
		if s != nil && *s != "" {
			if _, err := time.ParseDuration(*s); err != nil {
				return fmt.Errorf("invalid %s %q: %w", name, *s, err)
			}
		}
	}
	for name, p := range map[string]*int{
		"cmd_port": c.CmdPort, "data_port": c.DataPort, "imu_port": c.IMUPort,
	} {
		if p != nil && (*p < 0 || *p > 65535) {
			return fmt.Errorf("%s out of range: %d", name, *p)
		}
	}
	if c.InboxCapacity != nil && *c.InboxCapacity < 1 {
		return fmt.Errorf("inbox_capacity must be positive, got %d", *c.InboxCapacity)
	}
	return nil
}

// GetUserIP returns the configured user IP or the vendor reference
// default (192.168.1.50).
func (c *Config) GetUserIP() string {
	if c.UserIP == nil || *c.UserIP == "" {
		return "192.168.1.50"
	}
	return *c.UserIP
}

// GetCmdPort returns the configured command socket bind port, or 0
// (OS-assigned) by default.
func (c *Config) GetCmdPort() int {
	if c.CmdPort == nil {
		return 0
	}
	return *c.CmdPort
}

// GetDataPort returns the configured data socket bind port, or 0
// (OS-assigned) by default.
func (c *Config) GetDataPort() int {
	if c.DataPort == nil {
		return 0
	}
	return *c.DataPort
}

// GetIMUPort returns the configured IMU port, or 0 (disabled) by default.
func (c *Config) GetIMUPort() int {
	if c.IMUPort == nil {
		return 0
	}
	return *c.IMUPort
}

// GetHeartbeatPeriod returns the configured heartbeat period or
// heartbeat.Period.
func (c *Config) GetHeartbeatPeriod() time.Duration {
	if c.HeartbeatPeriod == nil || *c.HeartbeatPeriod == "" {
		return heartbeat.Period
	}
	d, err := time.ParseDuration(*c.HeartbeatPeriod)
	if err != nil {
		return heartbeat.Period
	}
	return d
}

// GetCommandTimeout returns the configured per-command timeout or
// cmdmux.DefaultResponseTimeout.
func (c *Config) GetCommandTimeout() time.Duration {
	if c.CommandTimeout == nil || *c.CommandTimeout == "" {
		return cmdmux.DefaultResponseTimeout
	}
	d, err := time.ParseDuration(*c.CommandTimeout)
	if err != nil {
		return cmdmux.DefaultResponseTimeout
	}
	return d
}

// GetDiscoveryTimeout returns the configured discovery timeout, defaulting
// to 5 seconds.
func (c *Config) GetDiscoveryTimeout() time.Duration {
	if c.DiscoveryTimeout == nil || *c.DiscoveryTimeout == "" {
		return 5 * time.Second
	}
	d, err := time.ParseDuration(*c.DiscoveryTimeout)
	if err != nil {
		return 5 * time.Second
	}
	return d
}

// GetInboxCapacity returns the configured multiplexer inbox capacity or
// cmdmux.DefaultInboxCapacity.
func (c *Config) GetInboxCapacity() int {
	if c.InboxCapacity == nil {
		return cmdmux.DefaultInboxCapacity
	}
	return *c.InboxCapacity
}
