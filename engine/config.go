package engine

import (
	"code.vegaprotocol.io/venue/config/encoding"
	"code.vegaprotocol.io/venue/logging"
)

// namedLogger is the identifier for package and should ideally match the package name
// this is simply emitted as a hierarchical label e.g. 'api.grpc'.
const namedLogger = "engine"

// Config represents the configuration of the engine loop.
type Config struct {
	Level encoding.LogLevel `long:"log-level"`

	QueueSize int `long:"queue-size" description:"Capacity of the inbound command queue"`
	BatchSize int `long:"batch-size" description:"Maximum commands processed per wake up"`
}

// NewDefaultConfig creates an instance of the package specific configuration.
func NewDefaultConfig() Config {
	return Config{
		Level:     encoding.LogLevel{Level: logging.InfoLevel},
		QueueSize: 4096,
		BatchSize: 64,
	}
}
