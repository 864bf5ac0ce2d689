// pkg/core/side.go
package core

import (
	"fmt"
	"strings"
)

// Side identifies which roster owns a body.
type Side uint8

const (
	SideNeutral Side = iota
	SideA
	SideB
)

func (s Side) String() string {
	switch s {
	case SideA:
		return "A"
	case SideB:
		return "B"
	default:
		return "NEUTRAL"
	}
}

// Opponent returns the opposing roster. Neutral has no opponent.
func (s Side) Opponent() Side {
	switch s {
	case SideA:
		return SideB
	case SideB:
		return SideA
	default:
		return SideNeutral
	}
}

// ParseSide accepts "A", "B" or "NEUTRAL" in any case.
func ParseSide(s string) (Side, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "A":
		return SideA, nil
	case "B":
		return SideB, nil
	case "NEUTRAL", "":
		return SideNeutral, nil
	default:
		return SideNeutral, fmt.Errorf("unknown side %q", s)
	}
}

func (s Side) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Side) UnmarshalText(b []byte) error {
	v, err := ParseSide(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}
