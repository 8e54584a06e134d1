package marketdata

import (
	"context"
	"sort"
	"sync"

	"code.vegaprotocol.io/venue/logging"
	"code.vegaprotocol.io/venue/metrics"
	"code.vegaprotocol.io/venue/types"

	"go.uber.org/atomic"
)

// Service keeps the latest top of book per instrument and fans updates out
// to subscribers and sinks. Delivery to subscribers is best effort.
type Service struct {
	Config
	log *logging.Logger

	in    <-chan types.PriceInfo
	sinks []Sink

	mu        sync.RWMutex
	snapshots map[string]types.PriceInfo

	subMu       sync.Mutex
	subscribers map[uint64]chan types.PriceInfo
	nextSubID   uint64
	closed      bool

	published *atomic.Uint64
}

// NewService creates a service reading updates from in.
func NewService(log *logging.Logger, config Config, in <-chan types.PriceInfo, sinks ...Sink) *Service {
	log = log.Named(namedLogger)
	log.SetLevel(config.Level.Get())

	return &Service{
		Config:      config,
		log:         log,
		in:          in,
		sinks:       sinks,
		snapshots:   map[string]types.PriceInfo{},
		subscribers: map[uint64]chan types.PriceInfo{},
		published:   atomic.NewUint64(0),
	}
}

// ReloadConf is used in order to reload the internal configuration of
// the Service.
func (s *Service) ReloadConf(cfg Config) {
	s.log.Info("reloading configuration")
	if s.log.GetLevel() != cfg.Level.Get() {
		s.log.Info("updating log level",
			logging.String("old", s.log.GetLevel().String()),
			logging.String("new", cfg.Level.String()),
		)
		s.log.SetLevel(cfg.Level.Get())
	}

	s.subMu.Lock()
	s.Config = cfg
	s.subMu.Unlock()
}

// Run consumes updates until ctx is done or the input channel is closed.
// Subscriber channels and sinks are closed on return.
func (s *Service) Run(ctx context.Context) error {
	defer s.shutdown()

	for {
		select {
		case <-ctx.Done():
			return nil
		case p, ok := <-s.in:
			if !ok {
				s.log.Info("price channel closed, stopping")
				return nil
			}
			s.handle(ctx, p)
		}
	}
}

func (s *Service) handle(ctx context.Context, p types.PriceInfo) {
	if p.Symbol == nil {
		s.log.Error("price info without symbol", logging.PriceInfo(p))
		return
	}

	s.mu.Lock()
	s.snapshots[p.Symbol.Ticker] = p
	s.mu.Unlock()
	s.published.Inc()

	s.subMu.Lock()
	for id, ch := range s.subscribers {
		select {
		case ch <- p:
		default:
			metrics.DroppedMessagesInc("subscriber")
			if s.log.IsDebug() {
				s.log.Debug("subscriber too slow, update dropped",
					logging.Uint64("subscriber", id),
					logging.PriceInfo(p))
			}
		}
	}
	s.subMu.Unlock()

	for _, sink := range s.sinks {
		if err := sink.Publish(ctx, p); err != nil {
			metrics.DroppedMessagesInc("sink")
			s.log.Error("could not publish top of book",
				logging.PriceInfo(p),
				logging.Error(err))
		}
	}
}

func (s *Service) shutdown() {
	s.subMu.Lock()
	for id, ch := range s.subscribers {
		close(ch)
		delete(s.subscribers, id)
	}
	s.closed = true
	s.subMu.Unlock()

	for _, sink := range s.sinks {
		if err := sink.Close(); err != nil {
			s.log.Error("could not close sink", logging.Error(err))
		}
	}
}

// Snapshot returns the latest top of book of an instrument.
func (s *Service) Snapshot(ticker string) (types.PriceInfo, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.snapshots[ticker]
	return p, ok
}

// Snapshots returns the latest top of book of every instrument that had an
// update, sorted by ticker.
func (s *Service) Snapshots() []types.PriceInfo {
	s.mu.RLock()
	out := make([]types.PriceInfo, 0, len(s.snapshots))
	for _, p := range s.snapshots {
		out = append(out, p)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].Symbol.Ticker < out[j].Symbol.Ticker
	})
	return out
}

// Published returns the number of updates handled so far.
func (s *Service) Published() uint64 {
	return s.published.Load()
}

// Subscribe registers a new subscriber. A buffer of zero or less uses the
// configured default. The channel is closed on Unsubscribe or when the
// service stops.
func (s *Service) Subscribe(buffer int) (uint64, <-chan types.PriceInfo) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	if buffer <= 0 {
		buffer = s.SubscriberBuffer
	}
	ch := make(chan types.PriceInfo, buffer)
	s.nextSubID++
	if s.closed {
		close(ch)
		return s.nextSubID, ch
	}
	s.subscribers[s.nextSubID] = ch
	return s.nextSubID, ch
}

func (s *Service) Unsubscribe(id uint64) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	if ch, ok := s.subscribers[id]; ok {
		close(ch)
		delete(s.subscribers, id)
	}
}
