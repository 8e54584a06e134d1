package engine

import (
	"context"
	"time"

	"code.vegaprotocol.io/venue/logging"
	"code.vegaprotocol.io/venue/matching"
	"code.vegaprotocol.io/venue/metrics"
	"code.vegaprotocol.io/venue/types"

	"github.com/pkg/errors"
	"go.uber.org/atomic"
)

var (
	ErrLoopStopped        = errors.New("engine loop stopped")
	ErrLoopAlreadyRunning = errors.New("engine loop already running")
	ErrUnknownCommand     = errors.New("unknown command")
)

// Engine is the matching engine driven by the loop.
//
//go:generate go run github.com/golang/mock/mockgen -destination mocks/engine_mock.go -package mocks code.vegaprotocol.io/venue/engine Engine
type Engine interface {
	Execute(sub types.OrderSubmission) types.OrderStatus
	Status(id types.OrderID) (types.OrderStatus, error)
	Cancel(id types.OrderID) (types.OrderStatus, error)
	ReloadConf(cfg matching.Config)
}

// Loop serialises every command to the matching engine. Any number of
// goroutines may Submit, only Run touches the engine.
type Loop struct {
	log    *logging.Logger
	config Config

	engine    Engine
	inbox     chan Command
	priceInfo chan<- types.PriceInfo

	running *atomic.Bool
	done    chan struct{}
}

// New creates a loop over engine. priceInfo is the channel the engine
// publishes to; it is closed when Run returns.
func New(log *logging.Logger, config Config, engine Engine, priceInfo chan<- types.PriceInfo) *Loop {
	log = log.Named(namedLogger)
	log.SetLevel(config.Level.Get())

	if config.BatchSize < 1 {
		config.BatchSize = 1
	}

	return &Loop{
		log:       log,
		config:    config,
		engine:    engine,
		inbox:     make(chan Command, config.QueueSize),
		priceInfo: priceInfo,
		running:   atomic.NewBool(false),
		done:      make(chan struct{}),
	}
}

// ReloadConf updates the loop log level and hands the matching
// configuration to the engine goroutine.
func (l *Loop) ReloadConf(cfg Config, mcfg matching.Config) {
	l.log.Info("reloading configuration")
	if l.log.GetLevel() != cfg.Level.Get() {
		l.log.Info("updating log level",
			logging.String("old", l.log.GetLevel().String()),
			logging.String("new", cfg.Level.String()),
		)
		l.log.SetLevel(cfg.Level.Get())
	}

	// queue and batch sizes only apply at startup
	l.config.Level = cfg.Level

	select {
	case l.inbox <- Command{Type: commandReload, matching: mcfg}:
	case <-l.done:
	default:
		l.log.Warn("command queue full, matching configuration not reloaded")
	}
}

// Submit enqueues cmd. It blocks while the queue is full, until ctx is done
// or the loop stops.
func (l *Loop) Submit(ctx context.Context, cmd Command) error {
	select {
	case <-l.done:
		return ErrLoopStopped
	default:
	}

	select {
	case l.inbox <- cmd:
		metrics.CommandQueueSet(len(l.inbox))
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-l.done:
		return ErrLoopStopped
	}
}

// Run processes commands until ctx is done. It must only be called once.
func (l *Loop) Run(ctx context.Context) error {
	if !l.running.CompareAndSwap(false, true) {
		return ErrLoopAlreadyRunning
	}
	defer func() {
		close(l.done)
		if l.priceInfo != nil {
			close(l.priceInfo)
		}
	}()

	l.log.Info("engine loop started",
		logging.Int("queue-size", cap(l.inbox)),
		logging.Int("batch-size", l.config.BatchSize))

	for {
		select {
		case <-ctx.Done():
			l.log.Info("engine loop stopping", logging.Int("pending-commands", len(l.inbox)))
			return nil
		case cmd := <-l.inbox:
			l.process(cmd)
			l.drain(ctx)
			metrics.CommandQueueSet(len(l.inbox))
		}
	}
}

// drain processes up to BatchSize-1 already queued commands without
// waiting for more.
func (l *Loop) drain(ctx context.Context) {
	for i := 1; i < l.config.BatchSize; i++ {
		if ctx.Err() != nil {
			return
		}
		select {
		case cmd := <-l.inbox:
			l.process(cmd)
		default:
			return
		}
	}
}

func (l *Loop) process(cmd Command) {
	start := time.Now()
	defer func() {
		metrics.CommandObserve(cmd.Type.String(), time.Since(start))
	}()

	var res Result
	switch cmd.Type {
	case CommandExecute:
		res.Status = l.engine.Execute(cmd.Submission)
	case CommandStatus:
		res.Status, res.Err = l.engine.Status(cmd.OrderID)
	case CommandCancel:
		res.Status, res.Err = l.engine.Cancel(cmd.OrderID)
	case commandReload:
		l.engine.ReloadConf(cmd.matching)
		return
	default:
		res.Err = ErrUnknownCommand
	}
	if res.Err != nil {
		res.Status = types.NewRejected(cmd.OrderID, res.Err.Error())
	}

	if l.log.IsDebug() {
		l.log.Debug("command processed",
			logging.String("type", cmd.Type.String()),
			logging.OrderStatus(res.Status),
			logging.Error(res.Err))
	}

	l.reply(cmd, res)
}

// reply never blocks the loop. Callers size their reply channel for the
// commands they have in flight, a full channel is a caller bug and loses the
// result.
func (l *Loop) reply(cmd Command, res Result) {
	if cmd.Reply == nil {
		return
	}
	select {
	case cmd.Reply <- res:
	default:
		metrics.DroppedMessagesInc("reply")
		l.log.Error("dropped reply, caller channel full",
			logging.String("type", cmd.Type.String()),
			logging.OrderStatus(res.Status))
	}
}
