package config

import (
	"os"
	"strconv"
	"time"

	"github.com/cybre/mrsteam-homekit/internal/errors"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultTriggerURL is the Voice Monkey trigger endpoint
	DefaultTriggerURL = "https://api.voicemonkey.io/trigger"
	// DefaultPin is the HomeKit setup code used when HOMEKIT_PIN is unset
	DefaultPin = "00102003"
)

// Config is the bridge configuration, read from the environment and the devices file.
type Config struct {
	// BridgeName is what the bridge shows as in the Home app
	BridgeName string
	// Pin is the HomeKit setup code
	Pin string
	// HomeKitAddr is the address the HAP server listens on, empty lets hap pick
	HomeKitAddr string
	// DatabasePath is the bitcask directory holding pairing data
	DatabasePath string
	// DevicesFile is the YAML file listing the steam generators
	DevicesFile string
	// ControlAddr is the address of the local HTTP control channel, empty disables it
	ControlAddr string
	// TriggerURL is the Voice Monkey trigger endpoint
	TriggerURL string
	// ConfirmDelay is the pause between the steam and steam-confirm triggers
	ConfirmDelay time.Duration
	// HTTPTimeout bounds each trigger request
	HTTPTimeout time.Duration
	// Debug enables debug logging
	Debug bool

	Devices []Device
}

// Device is a single steam generator and the Voice Monkey tokens that drive it.
type Device struct {
	DeviceName    string `yaml:"name"`
	VMAccessToken string `yaml:"accessToken"`
	VMSecretToken string `yaml:"secretToken"`
}

type devicesFile struct {
	Devices []Device `yaml:"devices"`
}

// Load reads the optional env files and the environment, then the devices file.
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && len(envFiles) > 0 {
		return nil, errors.Wrapf(err, "load env file")
	}

	cfg := &Config{
		BridgeName:   getenv("BRIDGE_NAME", "Mr.Steam Bridge"),
		Pin:          getenv("HOMEKIT_PIN", DefaultPin),
		HomeKitAddr:  os.Getenv("HOMEKIT_ADDR"),
		DatabasePath: getenv("DATABASE_PATH", "./database"),
		DevicesFile:  getenv("DEVICES_FILE", "./devices.yaml"),
		ControlAddr:  getenv("CONTROL_ADDR", ":8080"),
		TriggerURL:   getenv("VOICEMONKEY_URL", DefaultTriggerURL),
	}

	var err error
	if cfg.ConfirmDelay, err = time.ParseDuration(getenv("CONFIRM_DELAY", "0s")); err != nil {
		return nil, errors.Wrapf(err, "parse CONFIRM_DELAY")
	}
	if cfg.HTTPTimeout, err = time.ParseDuration(getenv("HTTP_TIMEOUT", "10s")); err != nil {
		return nil, errors.Wrapf(err, "parse HTTP_TIMEOUT")
	}
	if cfg.Debug, err = strconv.ParseBool(getenv("DEBUG", "false")); err != nil {
		return nil, errors.Wrapf(err, "parse DEBUG")
	}

	if len(cfg.Pin) != 8 {
		return nil, errors.Errorf("HOMEKIT_PIN must be 8 digits, got %q", cfg.Pin)
	}

	return cfg, nil
}

// LoadDevices reads and validates the devices file at path.
func LoadDevices(path string) ([]Device, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read devices file")
	}

	var df devicesFile
	if err := yaml.Unmarshal(raw, &df); err != nil {
		return nil, errors.Wrapf(err, "parse devices file %s", path)
	}

	if len(df.Devices) == 0 {
		return nil, errors.Errorf("no devices in %s", path)
	}

	seen := make(map[string]bool, len(df.Devices))
	for i, d := range df.Devices {
		switch {
		case d.DeviceName == "":
			return nil, errors.Errorf("device %d: name is required", i)
		case d.VMAccessToken == "" || d.VMSecretToken == "":
			return nil, errors.Errorf("device %q: accessToken and secretToken are required", d.DeviceName)
		case seen[d.DeviceName]:
			return nil, errors.Errorf("device %q: duplicate name", d.DeviceName)
		}
		seen[d.DeviceName] = true
	}

	return df.Devices, nil
}

func getenv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}

	return fallback
}
