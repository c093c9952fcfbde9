package service

import (
	"github.com/brutella/hap/characteristic"
	hapservice "github.com/brutella/hap/service"
)

type SteamSwitch struct {
	*hapservice.S

	On   *characteristic.On
	Name *characteristic.Name
}

func NewSteamSwitch() *SteamSwitch {
	s := SteamSwitch{}
	s.S = hapservice.New(hapservice.TypeSwitch)

	s.On = characteristic.NewOn()
	s.AddC(s.On.C)

	s.Name = characteristic.NewName()
	s.AddC(s.Name.C)

	return &s
}

// FromS wraps an existing switch service. A Name characteristic is added when
// missing. It returns nil if s is not a switch or has no On characteristic.
func FromS(s *hapservice.S) *SteamSwitch {
	if s == nil || s.Type != hapservice.TypeSwitch {
		return nil
	}

	on := findC(s, characteristic.TypeOn)
	if on == nil {
		return nil
	}

	sw := SteamSwitch{S: s}
	sw.On = &characteristic.On{Bool: &characteristic.Bool{C: on}}

	if name := findC(s, characteristic.TypeName); name != nil {
		sw.Name = &characteristic.Name{String: &characteristic.String{C: name}}
	} else {
		sw.Name = characteristic.NewName()
		sw.AddC(sw.Name.C)
	}

	return &sw
}

func findC(s *hapservice.S, typ string) *characteristic.C {
	for _, c := range s.Cs {
		if c.Type == typ {
			return c
		}
	}

	return nil
}
