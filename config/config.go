package config

import (
	"bytes"
	"os"
	"path/filepath"

	"code.vegaprotocol.io/venue/engine"
	"code.vegaprotocol.io/venue/gateway"
	"code.vegaprotocol.io/venue/logging"
	"code.vegaprotocol.io/venue/marketdata"
	"code.vegaprotocol.io/venue/matching"
	"code.vegaprotocol.io/venue/metrics"
	"code.vegaprotocol.io/venue/registry"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

const configFileName = "config.toml"

// ErrConfigExists is returned by Write when a configuration is already present.
var ErrConfigExists = errors.New("configuration already exists")

// Empty is used by the root flag parser, every option lives in a subcommand.
type Empty struct{}

// HomeFlag points to the directory holding the venue configuration.
type HomeFlag struct {
	Home string `long:"home" description:"Directory holding the venue configuration" default:"."`
}

// Config ties together all other application configuration types.
type Config struct {
	Logging    logging.Config    `group:"Logging" namespace:"logging"`
	Matching   matching.Config   `group:"Matching" namespace:"matching"`
	Engine     engine.Config     `group:"Engine" namespace:"engine"`
	MarketData marketdata.Config `group:"MarketData" namespace:"marketdata"`
	Gateway    gateway.Config    `group:"Gateway" namespace:"gateway"`
	Metrics    metrics.Config    `group:"Metrics" namespace:"metrics"`
	Registry   registry.Config   `group:"Registry" namespace:"registry"`
}

// NewDefaultConfig returns a set of default configs for all venue packages, as specified at the per package
// config level.
func NewDefaultConfig() Config {
	return Config{
		Logging:    logging.NewDefaultConfig(),
		Matching:   matching.NewDefaultConfig(),
		Engine:     engine.NewDefaultConfig(),
		MarketData: marketdata.NewDefaultConfig(),
		Gateway:    gateway.NewDefaultConfig(),
		Metrics:    metrics.NewDefaultConfig(),
		Registry:   registry.NewDefaultConfig(),
	}
}

// FilePath returns the location of the configuration file under home.
func FilePath(home string) string {
	return filepath.Join(home, configFileName)
}

// Exists tells whether a configuration file is present under home.
func Exists(home string) (bool, error) {
	_, err := os.Stat(FilePath(home))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// Read loads the configuration file under home on top of the defaults.
func Read(home string) (*Config, error) {
	cfg := NewDefaultConfig()
	if err := decodeFile(FilePath(home), &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Write saves cfg under home. An existing file is only replaced with force.
func Write(home string, cfg Config, force bool) error {
	exists, err := Exists(home)
	if err != nil {
		return err
	}
	if exists && !force {
		return errors.Wrap(ErrConfigExists, FilePath(home))
	}

	if err := os.MkdirAll(home, 0o755); err != nil {
		return errors.Wrap(err, "unable to create home directory")
	}

	buf := &bytes.Buffer{}
	if err := toml.NewEncoder(buf).Encode(cfg); err != nil {
		return errors.Wrap(err, "unable to encode configuration")
	}
	return os.WriteFile(FilePath(home), buf.Bytes(), 0o644)
}

func decodeFile(path string, cfg *Config) error {
	buf, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if _, err := toml.Decode(string(buf), cfg); err != nil {
		return errors.Wrapf(err, "invalid configuration %s", path)
	}
	return nil
}
