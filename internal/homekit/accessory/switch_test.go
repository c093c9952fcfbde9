package accessory

import (
	"testing"

	hapaccessory "github.com/brutella/hap/accessory"
	hapservice "github.com/brutella/hap/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countSwitches(a *hapaccessory.A) int {
	n := 0
	for _, s := range a.Ss {
		if s.Type == hapservice.TypeSwitch {
			n++
		}
	}
	return n
}

func TestNewSteamSwitch(t *testing.T) {
	a := NewSteamSwitch(hapaccessory.Info{Name: "Sauna"})

	require.NotNil(t, a.Switch)
	assert.Equal(t, 1, countSwitches(a.A))
	assert.False(t, a.Switch.On.Value())
}

func TestAttach_ReusesExistingSwitch(t *testing.T) {
	first := NewSteamSwitch(hapaccessory.Info{Name: "Sauna"})
	first.Switch.On.SetValue(true)

	second := Attach(first.A)

	assert.Equal(t, 1, countSwitches(first.A))
	assert.Same(t, first.Switch.S, second.Switch.S)
	assert.True(t, second.Switch.On.Value())
}

func TestAttach_PlainHapSwitch(t *testing.T) {
	a := hapaccessory.New(hapaccessory.Info{Name: "Sauna"}, hapaccessory.TypeSwitch)
	plain := hapservice.NewSwitch()
	a.AddS(plain.S)

	sw := Attach(a)

	assert.Equal(t, 1, countSwitches(a))
	assert.Same(t, plain.On.C, sw.Switch.On.C)
	require.NotNil(t, sw.Switch.Name)
}

func TestAttach_AddsSwitchToBareAccessory(t *testing.T) {
	a := hapaccessory.New(hapaccessory.Info{Name: "Sauna"}, hapaccessory.TypeSwitch)
	require.Equal(t, 0, countSwitches(a))

	Attach(a)

	assert.Equal(t, 1, countSwitches(a))
}
