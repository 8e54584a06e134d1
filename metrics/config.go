package metrics

import (
	"code.vegaprotocol.io/venue/config/encoding"
)

// Config represents the configuration of the metrics server.
type Config struct {
	Port    int           `long:"port" description:"Port the prometheus endpoint listens on"`
	Path    string        `long:"path" description:"HTTP path of the prometheus endpoint"`
	Enabled encoding.Bool `long:"enabled" choice:"true" choice:"false" description:"Serve prometheus metrics"`
}

// NewDefaultConfig creates an instance of the package specific configuration.
func NewDefaultConfig() Config {
	return Config{
		Port:    2112,
		Path:    "/metrics",
		Enabled: false,
	}
}
