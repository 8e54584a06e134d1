package marketdata

import (
	"context"
	"encoding/json"
	"math/big"

	"code.vegaprotocol.io/venue/logging"
	"code.vegaprotocol.io/venue/types"

	"github.com/pkg/errors"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
)

// Sink publishes top of book updates to an external transport.
//
//go:generate go run github.com/golang/mock/mockgen -destination mocks/sink_mock.go -package mocks code.vegaprotocol.io/venue/marketdata Sink
type Sink interface {
	Publish(ctx context.Context, p types.PriceInfo) error
	Close() error
}

// LogSink writes every update to the logger at debug level.
type LogSink struct {
	log *logging.Logger
}

func NewLogSink(log *logging.Logger) *LogSink {
	return &LogSink{log: log}
}

func (s *LogSink) Publish(_ context.Context, p types.PriceInfo) error {
	s.log.Debug("top of book", logging.PriceInfo(p))
	return nil
}

func (s *LogSink) Close() error {
	return nil
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaSink publishes updates as JSON messages keyed by ticker, so all
// updates of an instrument land on the same partition in order.
type KafkaSink struct {
	log    *logging.Logger
	writer messageWriter
	cfg    KafkaConfig
}

func NewKafkaSink(log *logging.Logger, cfg KafkaConfig) *KafkaSink {
	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: cfg.BatchTimeout.Get(),
		WriteTimeout: cfg.WriteTimeout.Get(),
		ErrorLogger:  kafka.LoggerFunc(log.Errorf),
	}
	return newKafkaSink(log, cfg, w)
}

func newKafkaSink(log *logging.Logger, cfg KafkaConfig, w messageWriter) *KafkaSink {
	return &KafkaSink{
		log:    log,
		writer: w,
		cfg:    cfg,
	}
}

func (s *KafkaSink) Publish(ctx context.Context, p types.PriceInfo) error {
	value, err := encodePriceInfo(p)
	if err != nil {
		return err
	}
	if timeout := s.cfg.WriteTimeout.Get(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	err = s.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(p.Symbol.Ticker),
		Value: value,
	})
	return errors.Wrap(err, "could not write top of book to kafka")
}

func (s *KafkaSink) Close() error {
	return s.writer.Close()
}

type priceMessage struct {
	Ticker  string           `json:"ticker"`
	BestBid uint64           `json:"bestBid"`
	BidSize uint64           `json:"bidSize"`
	BestAsk uint64           `json:"bestAsk"`
	AskSize uint64           `json:"askSize"`
	Mid     *decimal.Decimal `json:"mid,omitempty"`
	Spread  *decimal.Decimal `json:"spread,omitempty"`
}

// encodePriceInfo renders the update as JSON. Mid and spread are only set
// when both sides have liquidity.
func encodePriceInfo(p types.PriceInfo) ([]byte, error) {
	if p.Symbol == nil {
		return nil, errors.New("price info without symbol")
	}
	msg := priceMessage{
		Ticker:  p.Symbol.Ticker,
		BestBid: p.BestBid,
		BidSize: p.BidSize,
		BestAsk: p.BestAsk,
		AskSize: p.AskSize,
	}
	if p.BestBid > 0 && p.BestAsk > 0 {
		bid, ask := decimalFromUint(p.BestBid), decimalFromUint(p.BestAsk)
		mid := bid.Add(ask).Div(decimal.NewFromInt(2))
		spread := ask.Sub(bid)
		msg.Mid, msg.Spread = &mid, &spread
	}
	return json.Marshal(msg)
}

func decimalFromUint(u uint64) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(u), 0)
}
