package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, DefaultRPCURL, cfg.RPCURL)
	assert.Equal(t, DefaultWebSocketURL, cfg.WebSocketURL)
	assert.Equal(t, rpc.CommitmentConfirmed, cfg.CommitmentType())
	assert.Equal(t, uint64(DefaultSlippageBps), cfg.SlippageBps)
	assert.Equal(t, DefaultRetries, cfg.Retries)
	assert.Equal(t, 200*time.Millisecond, cfg.RetryInterval())
	assert.True(t, cfg.TrackVolume)
	assert.False(t, cfg.ForceCreateATA)
	assert.Equal(t, DefaultEventBuffer, cfg.EventBuffer)
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	path := writeConfig(t, `
rpc_url: "https://rpc.example.com"
websocket_url: "wss://rpc.example.com"
commitment: "Finalized"
slippage_bps: 100
track_volume: false
`)
	t.Setenv("PUMPFUN_SLIPPAGE_BPS", "250")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "https://rpc.example.com", cfg.RPCURL)
	assert.Equal(t, rpc.CommitmentFinalized, cfg.CommitmentType())
	assert.Equal(t, uint64(250), cfg.SlippageBps)
	assert.False(t, cfg.TrackVolume)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"slippage above 100%", "slippage_bps: 10001\n"},
		{"bad commitment", "commitment: recent\n"},
		{"rpc scheme", "rpc_url: \"ftp://rpc.example.com\"\n"},
		{"websocket scheme", "websocket_url: \"https://rpc.example.com\"\n"},
		{"negative retries", "retries: -1\n"},
		{"zero event buffer", "event_buffer: 0\n"},
		{"unknown priority level", "priority_level: turbo\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestConfig_PriorityFee(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	fee, err := cfg.PriorityFee()
	require.NoError(t, err)
	assert.Nil(t, fee)

	cfg, err = LoadConfig(writeConfig(t, "priority_level: Medium\npriority_unit_price: 7500\n"))
	require.NoError(t, err)
	fee, err = cfg.PriorityFee()
	require.NoError(t, err)
	require.NotNil(t, fee)
	assert.Equal(t, uint32(400_000), fee.UnitLimit)
	assert.Equal(t, uint64(7_500), fee.UnitPrice)
}
