// pkg/core/verdict.go
package core

import "fmt"

// Cause explains why a match ended.
type Cause uint8

const (
	CauseNone Cause = iota
	CauseDestroyed
	CauseDetected
)

func (c Cause) String() string {
	switch c {
	case CauseDestroyed:
		return "destroyed"
	case CauseDetected:
		return "detected"
	default:
		return "none"
	}
}

func (c Cause) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Cause) UnmarshalText(b []byte) error {
	switch string(b) {
	case "destroyed":
		*c = CauseDestroyed
	case "detected":
		*c = CauseDetected
	case "none", "":
		*c = CauseNone
	default:
		return fmt.Errorf("unknown cause %q", b)
	}
	return nil
}

// Verdict is the outcome of a match. The zero value is undecided.
type Verdict struct {
	Winner  Side  `json:"winner"`
	Cause   Cause `json:"cause"`
	Round   int   `json:"round"`
	Decided bool  `json:"decided"`
}

// Draw reports whether the match ended without a winning side.
func (v Verdict) Draw() bool {
	return v.Decided && v.Winner == SideNeutral
}

func (v Verdict) String() string {
	if !v.Decided {
		return "undecided"
	}
	return fmt.Sprintf("winner=%s cause=%s round=%d", v.Winner, v.Cause, v.Round)
}
