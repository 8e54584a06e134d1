package gateway

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"code.vegaprotocol.io/venue/engine"
	"code.vegaprotocol.io/venue/logging"
	"code.vegaprotocol.io/venue/metrics"
	"code.vegaprotocol.io/venue/types"

	"github.com/google/uuid"
	"go.uber.org/atomic"
)

// SymbolLookup resolves tickers to instruments.
type SymbolLookup interface {
	Get(ticker string) (*types.Symbol, bool)
}

// AccountLookup tells whether an account may trade.
type AccountLookup interface {
	Contains(id types.AccountID) bool
}

// Server accepts client connections and turns their frames into engine
// commands. Each connection gets a reader and a writer goroutine sharing a
// reply channel.
type Server struct {
	Config
	log *logging.Logger

	submitter engine.Submitter
	symbols   SymbolLookup
	accounts  AccountLookup

	conns *atomic.Int64
	wg    sync.WaitGroup

	mu   sync.Mutex
	addr net.Addr
}

func New(log *logging.Logger, config Config, submitter engine.Submitter, symbols SymbolLookup, accounts AccountLookup) *Server {
	log = log.Named(namedLogger)
	log.SetLevel(config.Level.Get())

	return &Server{
		Config:    config,
		log:       log,
		submitter: submitter,
		symbols:   symbols,
		accounts:  accounts,
		conns:     atomic.NewInt64(0),
	}
}

// ReloadConf is used in order to reload the internal configuration of
// the Server. Listening address changes need a restart.
func (s *Server) ReloadConf(cfg Config) {
	s.log.Info("reloading configuration")
	if s.log.GetLevel() != cfg.Level.Get() {
		s.log.Info("updating log level",
			logging.String("old", s.log.GetLevel().String()),
			logging.String("new", cfg.Level.String()),
		)
		s.log.SetLevel(cfg.Level.Get())
	}
}

// ListenAndServe listens on the configured address until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", fmt.Sprintf("%s:%d", s.IP, s.Port))
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is done, then waits for every
// session to finish.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.mu.Lock()
	s.addr = ln.Addr()
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	s.log.Info("gateway listening", logging.String("address", ln.Addr().String()))
	defer s.wg.Wait()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				s.log.Warn("accept failed", logging.Error(err))
				continue
			}
			return err
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handle(ctx, conn)
		}()
	}
}

// Addr returns the address the server listens on, nil before Serve.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

// Connections returns the number of open sessions.
func (s *Server) Connections() int64 {
	return s.conns.Load()
}

func (s *Server) handle(ctx context.Context, conn net.Conn) {
	id := uuid.New()
	log := s.log.With(
		logging.String("session", id.String()),
		logging.String("remote", conn.RemoteAddr().String()))

	metrics.GatewayConnectionsSet(s.conns.Inc())
	defer func() {
		metrics.GatewayConnectionsSet(s.conns.Dec())
	}()
	log.Info("new connection")

	sctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// unblocks the reader when the server stops
	go func() {
		<-sctx.Done()
		conn.Close()
	}()

	// a slot is taken for every command in flight and given back once its
	// reply is written, so the engine always finds room in replies
	size := s.ReplyBuffer
	if size < 1 {
		size = 1
	}
	sess := &session{
		log:     log,
		conn:    conn,
		replies: make(chan engine.Result, size),
		slots:   make(chan struct{}, size),
	}
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.write(sctx, sess)
	}()

	s.read(sctx, sess)
	cancel()
	<-done
	log.Info("connection closed")
}

// session is the state shared by the reader and the writer of a connection.
type session struct {
	log     *logging.Logger
	conn    net.Conn
	replies chan engine.Result
	slots   chan struct{}
}

// reserve blocks until a reply can be queued, so a client that does not read
// its replies stops being read from.
func (ss *session) reserve(ctx context.Context) bool {
	select {
	case ss.slots <- struct{}{}:
		return true
	case <-ctx.Done():
		return false
	}
}

func (ss *session) release() {
	<-ss.slots
}

func (s *Server) read(ctx context.Context, ss *session) {
	log, conn := ss.log, ss.conn
	r := bufio.NewReader(conn)
	for {
		if timeout := s.IdleTimeout.Get(); timeout > 0 {
			_ = conn.SetReadDeadline(time.Now().Add(timeout))
		}
		payload, err := ReadFrame(r)
		if err != nil {
			if err != io.EOF && ctx.Err() == nil {
				log.Warn("could not read frame, closing", logging.Error(err))
			}
			return
		}
		req, err := DecodeRequest(payload)
		if err != nil {
			log.Warn("malformed frame, closing", logging.Error(err))
			return
		}

		if !ss.reserve(ctx) {
			return
		}

		if reason := s.screen(req); reason != nil {
			// the slot guarantees room
			ss.replies <- engine.Result{Status: types.NewRejected(req.OrderID, reason.Error())}
			continue
		}

		if err := s.submit(ctx, req.Command(ss.replies)); err != nil {
			if ctx.Err() == nil {
				log.Error("could not submit command, closing", logging.Error(err))
			}
			return
		}
	}
}

func (s *Server) submit(ctx context.Context, cmd engine.Command) error {
	if timeout := s.SubmitTimeout.Get(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return s.submitter.Submit(ctx, cmd)
}

// screen refuses requests the engine must never see.
func (s *Server) screen(req Request) error {
	if !s.accounts.Contains(req.AccountID) {
		return types.ErrUnknownAccount
	}
	if req.Type == engine.CommandExecute {
		if _, ok := s.symbols.Get(req.Submission.Ticker); !ok {
			return types.ErrUnknownInstrument
		}
	}
	return nil
}

func (s *Server) write(ctx context.Context, ss *session) {
	log, replies := ss.log, ss.replies
	w := bufio.NewWriter(ss.conn)
	for {
		select {
		case <-ctx.Done():
			return
		case res := <-replies:
			ss.release()
			payload, err := EncodeStatus(res.Status)
			if err != nil {
				log.Error("could not encode status", logging.OrderStatus(res.Status), logging.Error(err))
				continue
			}
			if err := WriteFrame(w, payload); err != nil {
				log.Warn("could not write status", logging.Error(err))
				return
			}
			// batch replies that are already waiting
			if len(replies) == 0 {
				if err := w.Flush(); err != nil {
					log.Warn("could not flush status", logging.Error(err))
					return
				}
			}
		}
	}
}
