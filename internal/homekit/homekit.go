package homekit

import (
	"github.com/brutella/hap"
	hapaccessory "github.com/brutella/hap/accessory"
	"github.com/cybre/mrsteam-homekit/internal/config"
	"github.com/cybre/mrsteam-homekit/internal/errors"
	"github.com/google/uuid"
)

// Version is reported as the bridge firmware revision
const Version = "0.1.0"

// NewServer builds the bridge accessory and a HAP server publishing it along
// with accessories. The caller runs it with ListenAndServe.
func NewServer(cfg *config.Config, store hap.Store, accessories ...*hapaccessory.A) (*hap.Server, error) {
	bridge := hapaccessory.NewBridge(hapaccessory.Info{
		Name:         cfg.BridgeName,
		SerialNumber: SerialNumber(cfg.BridgeName),
		Manufacturer: "cybre",
		Model:        "mrsteam-homekit",
		Firmware:     Version,
	})
	bridge.A.Id = 1

	for i, a := range accessories {
		if a.Id == 0 {
			a.Id = uint64(i + 2)
		}
	}

	server, err := hap.NewServer(store, bridge.A, accessories...)
	if err != nil {
		return nil, errors.Wrapf(err, "create hap server")
	}

	server.Pin = cfg.Pin
	server.Addr = cfg.HomeKitAddr

	return server, nil
}

// SerialNumber derives a stable serial number from an accessory name.
func SerialNumber(name string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(name)).String()[:13]
}
