// Package encoding holds config value types that read the same from a TOML
// file and from the command line.
package encoding

import (
	"fmt"
	"time"

	"code.vegaprotocol.io/venue/logging"
)

// Duration is written as text, e.g. "250ms".
type Duration struct {
	time.Duration
}

func (d Duration) Get() time.Duration {
	return d.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d *Duration) UnmarshalFlag(s string) error {
	return d.UnmarshalText([]byte(s))
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// LogLevel is a logging level written by name, e.g. "debug".
type LogLevel struct {
	logging.Level
}

func (l LogLevel) Get() logging.Level {
	return l.Level
}

func (l *LogLevel) UnmarshalText(text []byte) error {
	lvl, err := logging.ParseLevel(string(text))
	if err != nil {
		return err
	}
	l.Level = lvl
	return nil
}

func (l *LogLevel) UnmarshalFlag(s string) error {
	return l.UnmarshalText([]byte(s))
}

func (l LogLevel) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// Bool is a flag value that only accepts "true" or "false".
type Bool bool

func (b *Bool) UnmarshalFlag(s string) error {
	switch s {
	case "true", "false":
		*b = s == "true"
		return nil
	}
	return fmt.Errorf("invalid boolean %q, want true or false", s)
}

func (b Bool) Get() bool {
	return bool(b)
}
