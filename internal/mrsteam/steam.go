package mrsteam

import (
	"context"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/brutella/hap"
	hapaccessory "github.com/brutella/hap/accessory"
	"github.com/cybre/mrsteam-homekit/internal/config"
	"github.com/cybre/mrsteam-homekit/internal/errors"
	"github.com/cybre/mrsteam-homekit/internal/homekit"
	"github.com/cybre/mrsteam-homekit/internal/homekit/accessory"
	"github.com/cybre/mrsteam-homekit/internal/voicemonkey"
)

// Command is the name of a Voice Monkey trigger
type Command string

const (
	CommandOn      Command = "steam"
	CommandConfirm Command = "steam-confirm"
	CommandOff     Command = "steam-off"
)

const (
	Manufacturer = "Mr.Steam"
	Model        = "Steamlinx"
)

// Triggerer fires a named Voice Monkey trigger
type Triggerer interface {
	Trigger(ctx context.Context, creds voicemonkey.Credentials, monkey string) error
}

// SteamAccessory bridges the On characteristic of a switch to the steam triggers.
type SteamAccessory struct {
	*accessory.SteamSwitch

	device       config.Device
	trigger      Triggerer
	confirmDelay time.Duration

	steamStatus atomic.Bool
}

type Option func(*SteamAccessory)

// WithConfirmDelay sets the pause between the steam and steam-confirm triggers.
func WithConfirmDelay(d time.Duration) Option {
	return func(s *SteamAccessory) {
		s.confirmDelay = d
	}
}

// NewSteamAccessory attaches a switch to a (reusing one it already has) and
// wires its On characteristic to device's triggers.
func NewSteamAccessory(a *hapaccessory.A, device config.Device, trigger Triggerer, opts ...Option) *SteamAccessory {
	s := &SteamAccessory{
		SteamSwitch: accessory.Attach(a),
		device:      device,
		trigger:     trigger,
	}
	for _, opt := range opts {
		opt(s)
	}

	a.Info.Manufacturer.SetValue(Manufacturer)
	a.Info.Model.SetValue(Model)
	a.Info.SerialNumber.SetValue(homekit.SerialNumber(device.DeviceName))

	// this is what the Home app shows by default
	s.Switch.Name.SetValue(device.DeviceName)

	s.Switch.On.ValueRequestFunc = func(*http.Request) (interface{}, int) {
		return s.State(), hap.JsonStatusSuccess
	}
	s.Switch.On.SetValueRequestFunc = func(v interface{}, r *http.Request) (interface{}, int) {
		on, ok := v.(bool)
		if !ok {
			return nil, hap.JsonStatusInvalidValueInRequest
		}

		ctx := context.Background()
		if r != nil {
			ctx = r.Context()
		}

		if err := s.SetState(ctx, on); err != nil {
			slog.Error("failed to set steam state via homekit", slog.String("device", device.DeviceName), slog.Bool("on", on), slog.Any("error", err))
			return nil, hap.JsonStatusServiceCommunicationFailure
		}

		return nil, hap.JsonStatusSuccess
	}

	return s
}

func (s *SteamAccessory) Name() string {
	return s.device.DeviceName
}

// SetState records value and then fires the triggers for it. The recorded
// state is not rolled back when a trigger fails.
func (s *SteamAccessory) SetState(ctx context.Context, value bool) error {
	s.steamStatus.Store(value)
	// hap skips SetValueRequestFunc for writes equal to the cached value, so
	// the cache has to follow the recorded state even when a trigger fails
	s.Switch.On.SetValue(value)

	if value {
		if err := s.fire(ctx, CommandOn); err != nil {
			return err
		}
		if err := wait(ctx, s.confirmDelay); err != nil {
			return errors.Wrapf(err, "wait before %s", CommandConfirm)
		}
		if err := s.fire(ctx, CommandConfirm); err != nil {
			return err
		}
	} else {
		if err := s.fire(ctx, CommandOff); err != nil {
			return err
		}
	}

	slog.Debug("set characteristic on", slog.String("device", s.device.DeviceName), slog.Bool("value", value))

	return nil
}

// State returns the last value given to SetState.
func (s *SteamAccessory) State() bool {
	on := s.steamStatus.Load()
	slog.Debug("get characteristic on", slog.String("device", s.device.DeviceName), slog.Bool("value", on))

	return on
}

// Toggle is SetState for callers outside HomeKit. Paired controllers are
// notified of the new value whether or not the triggers succeed.
func (s *SteamAccessory) Toggle(ctx context.Context, on bool) error {
	return s.SetState(ctx, on)
}

func (s *SteamAccessory) fire(ctx context.Context, cmd Command) error {
	creds := voicemonkey.Credentials{
		AccessToken: s.device.VMAccessToken,
		SecretToken: s.device.VMSecretToken,
	}

	if err := s.trigger.Trigger(ctx, creds, string(cmd)); err != nil {
		return errors.Wrapf(err, "%s %s", s.device.DeviceName, cmd)
	}

	return nil
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
