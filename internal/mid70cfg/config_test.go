package mid70cfg

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmptyDefaults(t *testing.T) {
	cfg := Empty()

	assert.Equal(t, "192.168.1.50", cfg.GetUserIP())
	assert.Equal(t, 0, cfg.GetCmdPort())
	assert.Equal(t, 0, cfg.GetDataPort())
	assert.Equal(t, 0, cfg.GetIMUPort())
	assert.Equal(t, 750*time.Millisecond, cfg.GetHeartbeatPeriod())
	assert.Equal(t, 5*time.Second, cfg.GetDiscoveryTimeout())
	assert.Equal(t, 128, cfg.GetInboxCapacity())
	require.NoError(t, cfg.Validate())
}

func TestLoadPartialConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "client.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"cmd_port": 17000, "heartbeat_period": "1s"}`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 17000, cfg.GetCmdPort())
	assert.Equal(t, time.Second, cfg.GetHeartbeatPeriod())
	// Fields omitted from the file still fall back to defaults.
	assert.Equal(t, "192.168.1.50", cfg.GetUserIP())
	assert.Equal(t, 0, cfg.GetDataPort())
}

func TestLoadRejectsNonJSONExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "client.txt")
	require.NoError(t, os.WriteFile(path, []byte(`{}`), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestValidateRejectsBadDuration(t *testing.T) {
	bad := "not-a-duration"
	cfg := &Config{HeartbeatPeriod: &bad}
	require.Error(t, cfg.Validate())
}

func TestValidateRejectsOutOfRangePort(t *testing.T) {
	bad := 70000
	cfg := &Config{CmdPort: &bad}
	require.Error(t, cfg.Validate())
}

func TestValidateRejectsNonPositiveInboxCapacity(t *testing.T) {
	bad := 0
	cfg := &Config{InboxCapacity: &bad}
	require.Error(t, cfg.Validate())
}
