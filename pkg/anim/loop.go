// Package anim advances animation clocks and resolves clip data into model
// instances: single-clip players for every resource kind, and a morph
// blender that cross-fades joint poses when its clip changes.
package anim

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// LoopMode selects what a FrameCtrl does when it reaches a bound.
type LoopMode int

const (
	// LoopInherit asks the caller to use the clip's own loop mode.
	LoopInherit LoopMode = -1

	LoopOnce LoopMode = iota - 1
	LoopOnceAndReset
	LoopRepeat
	LoopMirroredOnce
	LoopMirroredRepeat
)

var loopModeNames = map[LoopMode]string{
	LoopInherit:        "inherit",
	LoopOnce:           "once",
	LoopOnceAndReset:   "once_and_reset",
	LoopRepeat:         "repeat",
	LoopMirroredOnce:   "mirrored_once",
	LoopMirroredRepeat: "mirrored_repeat",
}

// String returns the snake_case name used in bundle and config files.
func (m LoopMode) String() string {
	if s, ok := loopModeNames[m]; ok {
		return s
	}
	return fmt.Sprintf("LoopMode(%d)", int(m))
}

// ParseLoopMode parses a loop mode name. The empty string is inherit.
func ParseLoopMode(s string) (LoopMode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return LoopInherit, nil
	}
	for m, name := range loopModeNames {
		if name == s {
			return m, nil
		}
	}
	return 0, errors.Errorf("unknown loop mode %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (m LoopMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *LoopMode) UnmarshalText(b []byte) error {
	v, err := ParseLoopMode(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}
