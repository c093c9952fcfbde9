package homekit

import (
	"testing"

	hapaccessory "github.com/brutella/hap/accessory"
	"github.com/cybre/mrsteam-homekit/internal/config"
	"github.com/cybre/mrsteam-homekit/internal/homekit/accessory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerialNumber(t *testing.T) {
	assert.Equal(t, SerialNumber("Sauna"), SerialNumber("Sauna"))
	assert.NotEqual(t, SerialNumber("Sauna"), SerialNumber("Shower"))
	assert.Len(t, SerialNumber("Sauna"), 13)
}

func TestNewServer(t *testing.T) {
	cfg := &config.Config{BridgeName: "Test Bridge", Pin: config.DefaultPin, HomeKitAddr: ":0"}
	sauna := accessory.NewSteamSwitch(hapaccessory.Info{Name: "Sauna"})
	shower := accessory.NewSteamSwitch(hapaccessory.Info{Name: "Shower"})

	server, err := NewServer(cfg, openStore(t), sauna.A, shower.A)
	require.NoError(t, err)

	assert.Equal(t, config.DefaultPin, server.Pin)
	assert.Equal(t, ":0", server.Addr)
	assert.Equal(t, uint64(2), sauna.Id)
	assert.Equal(t, uint64(3), shower.Id)
}
