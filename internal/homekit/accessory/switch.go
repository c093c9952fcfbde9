package accessory

import (
	hapaccessory "github.com/brutella/hap/accessory"
	"github.com/cybre/mrsteam-homekit/internal/homekit/service"
)

type SteamSwitch struct {
	*hapaccessory.A
	Switch *service.SteamSwitch
}

func NewSteamSwitch(info hapaccessory.Info) *SteamSwitch {
	return Attach(hapaccessory.New(info, hapaccessory.TypeSwitch))
}

// Attach returns a's switch service, adding one if a has none yet.
func Attach(a *hapaccessory.A) *SteamSwitch {
	for _, s := range a.Ss {
		if sw := service.FromS(s); sw != nil {
			return &SteamSwitch{A: a, Switch: sw}
		}
	}

	sw := service.NewSteamSwitch()
	a.AddS(sw.S)

	return &SteamSwitch{A: a, Switch: sw}
}
