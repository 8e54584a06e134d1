package marketdata

import (
	"context"
	"encoding/json"
	"testing"

	"code.vegaprotocol.io/venue/logging"
	"code.vegaprotocol.io/venue/types"

	"github.com/pkg/errors"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestEncodePriceInfo(t *testing.T) {
	sym := types.NewSymbol("X")

	b, err := encodePriceInfo(types.PriceInfo{Symbol: sym, BestBid: 100, BidSize: 3, BestAsk: 103, AskSize: 7})
	require.NoError(t, err)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &got))
	assert.Equal(t, "X", got["ticker"])
	assert.Equal(t, float64(100), got["bestBid"])
	assert.Equal(t, float64(7), got["askSize"])
	assert.Equal(t, "101.5", got["mid"])
	assert.Equal(t, "3", got["spread"])

	// one sided book has no mid
	b, err = encodePriceInfo(types.PriceInfo{Symbol: sym, BestBid: 100, BidSize: 3})
	require.NoError(t, err)
	got = nil
	require.NoError(t, json.Unmarshal(b, &got))
	assert.NotContains(t, got, "mid")
	assert.NotContains(t, got, "spread")

	_, err = encodePriceInfo(types.PriceInfo{})
	assert.Error(t, err)
}

func TestKafkaSinkKeysByTicker(t *testing.T) {
	w := &fakeWriter{}
	cfg := NewDefaultConfig().Kafka
	sink := newKafkaSink(logging.NewTestLogger(), cfg, w)

	p := types.PriceInfo{Symbol: types.NewSymbol("X"), BestBid: 1, BidSize: 1}
	require.NoError(t, sink.Publish(context.Background(), p))
	require.Len(t, w.msgs, 1)
	assert.Equal(t, []byte("X"), w.msgs[0].Key)

	expected, err := encodePriceInfo(p)
	require.NoError(t, err)
	assert.Equal(t, expected, w.msgs[0].Value)

	require.NoError(t, sink.Close())
	assert.True(t, w.closed)
}

func TestKafkaSinkWrapsWriteErrors(t *testing.T) {
	cause := errors.New("leader not available")
	sink := newKafkaSink(logging.NewTestLogger(), NewDefaultConfig().Kafka, &fakeWriter{err: cause})

	err := sink.Publish(context.Background(), types.PriceInfo{Symbol: types.NewSymbol("X")})
	assert.ErrorIs(t, err, cause)
}

func TestNewKafkaSinkBuildsWriter(t *testing.T) {
	cfg := NewDefaultConfig().Kafka
	sink := NewKafkaSink(logging.NewTestLogger(), cfg)
	w, ok := sink.writer.(*kafka.Writer)
	require.True(t, ok)
	assert.Equal(t, cfg.Topic, w.Topic)
	assert.Equal(t, cfg.Brokers[0], w.Addr.String())
}

func TestLogSink(t *testing.T) {
	sink := NewLogSink(logging.NewTestLogger())
	assert.NoError(t, sink.Publish(context.Background(), types.PriceInfo{Symbol: types.NewSymbol("X")}))
	assert.NoError(t, sink.Close())
}
