package marketdata

import (
	"time"

	"code.vegaprotocol.io/venue/config/encoding"
	"code.vegaprotocol.io/venue/logging"
)

// namedLogger is the identifier for package and should ideally match the package name
// this is simply emitted as a hierarchical label e.g. 'api.grpc'.
const namedLogger = "marketdata"

// Config represents the configuration of the market data service.
type Config struct {
	Level encoding.LogLevel `long:"log-level"`

	PriceBuffer      int `long:"price-buffer" description:"Capacity of the channel between the engine and the service"`
	SubscriberBuffer int `long:"subscriber-buffer" description:"Default capacity of a subscriber channel"`

	Kafka KafkaConfig `group:"Kafka" namespace:"kafka"`
}

type KafkaConfig struct {
	Enabled      encoding.Bool     `long:"enabled" choice:"true" choice:"false" description:"Publish top of book updates to kafka"`
	Brokers      []string          `long:"broker" description:"Kafka broker address, repeat for each"`
	Topic        string            `long:"topic"`
	BatchTimeout encoding.Duration `long:"batch-timeout"`
	WriteTimeout encoding.Duration `long:"write-timeout"`
}

// NewDefaultConfig creates an instance of the package specific configuration.
func NewDefaultConfig() Config {
	return Config{
		Level:            encoding.LogLevel{Level: logging.InfoLevel},
		PriceBuffer:      1024,
		SubscriberBuffer: 64,
		Kafka: KafkaConfig{
			Enabled:      false,
			Brokers:      []string{"localhost:9092"},
			Topic:        "venue.top-of-book",
			BatchTimeout: encoding.Duration{Duration: 10 * time.Millisecond},
			WriteTimeout: encoding.Duration{Duration: time.Second},
		},
	}
}
