package gateway

import (
	"time"

	"code.vegaprotocol.io/venue/config/encoding"
	"code.vegaprotocol.io/venue/logging"
)

// namedLogger is the identifier for package and should ideally match the package name
// this is simply emitted as a hierarchical label e.g. 'api.grpc'.
const namedLogger = "gateway"

// Config represents the configuration of the order gateway.
type Config struct {
	Level encoding.LogLevel `long:"log-level"`

	IP            string            `long:"ip"`
	Port          int               `long:"port"`
	ReplyBuffer   int               `long:"reply-buffer" description:"Replies queued per connection before they are dropped"`
	IdleTimeout   encoding.Duration `long:"idle-timeout" description:"Close connections silent for this long, 0 disables"`
	SubmitTimeout encoding.Duration `long:"submit-timeout" description:"Maximum wait for room in the engine queue"`
}

// NewDefaultConfig creates an instance of the package specific configuration.
func NewDefaultConfig() Config {
	return Config{
		Level:         encoding.LogLevel{Level: logging.InfoLevel},
		IP:            "0.0.0.0",
		Port:          3002,
		ReplyBuffer:   256,
		IdleTimeout:   encoding.Duration{Duration: 0},
		SubmitTimeout: encoding.Duration{Duration: 5 * time.Second},
	}
}
