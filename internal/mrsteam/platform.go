package mrsteam

import (
	"net/http"

	hapaccessory "github.com/brutella/hap/accessory"
	"github.com/cybre/mrsteam-homekit/internal/config"
	"github.com/cybre/mrsteam-homekit/internal/errors"
	"github.com/cybre/mrsteam-homekit/internal/platform"
	"github.com/cybre/mrsteam-homekit/internal/voicemonkey"
)

// PlatformName is the name the platform registers under
const PlatformName = "MrSteam"

func init() {
	platform.Register(PlatformName, func(cfg *config.Config) (platform.Platform, error) {
		trigger := voicemonkey.New(
			voicemonkey.WithBaseURL(cfg.TriggerURL),
			voicemonkey.WithHTTPClient(&http.Client{Timeout: cfg.HTTPTimeout}),
		)

		return NewPlatform(cfg, trigger)
	})
}

// Platform holds one steam accessory per configured device
type Platform struct {
	steamers []*SteamAccessory
	byName   map[string]*SteamAccessory
}

func NewPlatform(cfg *config.Config, trigger Triggerer) (*Platform, error) {
	if len(cfg.Devices) == 0 {
		return nil, errors.Errorf("no steam devices configured")
	}

	p := &Platform{
		byName: make(map[string]*SteamAccessory, len(cfg.Devices)),
	}
	for _, d := range cfg.Devices {
		if _, ok := p.byName[d.DeviceName]; ok {
			return nil, errors.Errorf("duplicate steam device %q", d.DeviceName)
		}

		a := hapaccessory.New(hapaccessory.Info{Name: d.DeviceName}, hapaccessory.TypeSwitch)
		s := NewSteamAccessory(a, d, trigger, WithConfirmDelay(cfg.ConfirmDelay))

		p.steamers = append(p.steamers, s)
		p.byName[d.DeviceName] = s
	}

	return p, nil
}

func (p *Platform) Name() string {
	return PlatformName
}

func (p *Platform) Accessories() []*hapaccessory.A {
	as := make([]*hapaccessory.A, 0, len(p.steamers))
	for _, s := range p.steamers {
		as = append(as, s.A)
	}

	return as
}

func (p *Platform) Switches() []platform.Switch {
	sw := make([]platform.Switch, 0, len(p.steamers))
	for _, s := range p.steamers {
		sw = append(sw, s)
	}

	return sw
}

func (p *Platform) Switch(name string) (platform.Switch, bool) {
	s, ok := p.byName[name]
	if !ok {
		return nil, false
	}

	return s, true
}
