package platform

import (
	"context"
	"sort"
	"sync"

	"github.com/brutella/hap/accessory"
	"github.com/cybre/mrsteam-homekit/internal/config"
)

// Platform is the interface which all platforms must satisfy
type Platform interface {
	Name() string
	// Accessories are published by the HAP server
	Accessories() []*accessory.A
	// Switches are exposed on the control channel, in configuration order
	Switches() []Switch
	Switch(name string) (Switch, bool)
}

// Switch is an on/off accessory that can be driven from outside HomeKit
type Switch interface {
	Name() string
	State() bool
	Toggle(ctx context.Context, on bool) error
}

// Factory builds a platform from the bridge configuration
type Factory func(cfg *config.Config) (Platform, error)

var (
	mu        sync.RWMutex
	factories = make(map[string]Factory)
)

// Register is called by each platform package at init time; the first registration of a name wins
func Register(name string, factory Factory) {
	mu.Lock()
	defer mu.Unlock()

	if _, ok := factories[name]; ok {
		return
	}
	factories[name] = factory
}

// Get looks up a registered platform factory by name
func Get(name string) (Factory, bool) {
	mu.RLock()
	defer mu.RUnlock()

	f, ok := factories[name]
	return f, ok
}

// Names lists the registered platforms
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()

	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}
