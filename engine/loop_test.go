package engine_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"code.vegaprotocol.io/venue/engine"
	"code.vegaprotocol.io/venue/engine/mocks"
	"code.vegaprotocol.io/venue/logging"
	"code.vegaprotocol.io/venue/matching"
	"code.vegaprotocol.io/venue/registry"
	"code.vegaprotocol.io/venue/types"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testLoop struct {
	*engine.Loop
	client *engine.Client
	ctrl   *gomock.Controller
	eng    *mocks.MockEngine
	prices chan types.PriceInfo
	cancel context.CancelFunc
	errCh  chan error
}

func getTestLoop(t *testing.T) *testLoop {
	ctrl := gomock.NewController(t)
	eng := mocks.NewMockEngine(ctrl)
	return startLoop(t, eng, engine.NewDefaultConfig(), make(chan types.PriceInfo, 8), ctrl)
}

func startLoop(t *testing.T, eng engine.Engine, cfg engine.Config, prices chan types.PriceInfo, ctrl *gomock.Controller) *testLoop {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	loop := engine.New(logging.NewTestLogger(), cfg, eng, prices)
	tl := &testLoop{
		Loop:   loop,
		client: engine.NewClient(loop),
		ctrl:   ctrl,
		prices: prices,
		cancel: cancel,
		errCh:  make(chan error, 1),
	}
	if m, ok := eng.(*mocks.MockEngine); ok {
		tl.eng = m
	}
	go func() {
		tl.errCh <- loop.Run(ctx)
	}()
	return tl
}

func (l *testLoop) Finish(t *testing.T) {
	l.cancel()
	select {
	case err := <-l.errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("engine loop did not stop")
	}
}

func TestLoopForwardsCommands(t *testing.T) {
	loop := getTestLoop(t)
	defer loop.Finish(t)
	ctx := context.Background()

	sub := types.OrderSubmission{Ticker: "X", Type: types.OrderTypeLimit, Side: types.SideBuy, Price: 10, Size: 1}
	gomock.InOrder(
		loop.eng.EXPECT().Execute(sub).Times(1).Return(types.NewWaiting(1)),
		loop.eng.EXPECT().Status(types.OrderID(1)).Times(1).Return(types.NewWaiting(1), nil),
		loop.eng.EXPECT().Cancel(types.OrderID(1)).Times(1).Return(types.NewCanceled(1), nil),
		loop.eng.EXPECT().Status(types.OrderID(2)).Times(1).Return(types.OrderStatus{}, types.ErrOrderNotFound),
	)

	status, err := loop.client.Execute(ctx, sub)
	require.NoError(t, err)
	assert.Equal(t, types.NewWaiting(1), status)

	status, err = loop.client.Status(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, types.NewWaiting(1), status)

	status, err = loop.client.Cancel(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, types.NewCanceled(1), status)

	status, err = loop.client.Status(ctx, 2)
	assert.ErrorIs(t, err, types.ErrOrderNotFound)
	assert.Equal(t, types.NewRejected(2, types.ErrOrderNotFound.Error()), status)
}

func TestLoopKeepsSubmissionOrder(t *testing.T) {
	loop := getTestLoop(t)
	defer loop.Finish(t)

	const n = 50
	var calls []*gomock.Call
	for i := 1; i <= n; i++ {
		calls = append(calls, loop.eng.EXPECT().Status(types.OrderID(i)).Times(1).Return(types.NewWaiting(types.OrderID(i)), nil))
	}
	gomock.InOrder(calls...)

	reply := make(chan engine.Result, n)
	for i := 1; i <= n; i++ {
		require.NoError(t, loop.Submit(context.Background(), engine.NewStatus(types.OrderID(i), reply)))
	}
	for i := 1; i <= n; i++ {
		res := <-reply
		assert.Equal(t, types.OrderID(i), res.Status.OrderID)
	}
}

func TestLoopDoesNotBlockOnFullReplyChannel(t *testing.T) {
	loop := getTestLoop(t)
	defer loop.Finish(t)

	loop.eng.EXPECT().Status(gomock.Any()).Times(2).Return(types.NewWaiting(1), nil)

	// nobody reads this one
	stuck := make(chan engine.Result)
	require.NoError(t, loop.Submit(context.Background(), engine.NewStatus(1, stuck)))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err := loop.client.Status(ctx, 1)
	assert.NoError(t, err)
}

func TestLoopReloadConf(t *testing.T) {
	loop := getTestLoop(t)
	defer loop.Finish(t)

	mcfg := matching.NewDefaultConfig()
	mcfg.LogPriceLevelsDebug = true
	done := make(chan struct{})
	loop.eng.EXPECT().ReloadConf(mcfg).Times(1).Do(func(matching.Config) { close(done) })

	cfg := engine.NewDefaultConfig()
	cfg.Level.Level = logging.DebugLevel
	loop.ReloadConf(cfg, mcfg)

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("matching configuration never reached the engine")
	}
}

func TestLoopRunsOnce(t *testing.T) {
	loop := getTestLoop(t)
	defer loop.Finish(t)

	loop.eng.EXPECT().Status(gomock.Any()).Times(1).Return(types.NewWaiting(1), nil)
	// once a command got through the loop is running
	_, err := loop.client.Status(context.Background(), 1)
	require.NoError(t, err)

	assert.ErrorIs(t, loop.Run(context.Background()), engine.ErrLoopAlreadyRunning)
}

func TestLoopStopClosesPriceChannel(t *testing.T) {
	loop := getTestLoop(t)
	loop.Finish(t)

	_, ok := <-loop.prices
	assert.False(t, ok)

	err := loop.Submit(context.Background(), engine.NewStatus(1, nil))
	assert.ErrorIs(t, err, engine.ErrLoopStopped)
}

func TestSubmitHonoursContext(t *testing.T) {
	ctrl := gomock.NewController(t)
	// never started, the queue holds a single command
	cfg := engine.NewDefaultConfig()
	cfg.QueueSize = 1
	loop := engine.New(logging.NewTestLogger(), cfg, mocks.NewMockEngine(ctrl), nil)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	require.NoError(t, loop.Submit(ctx, engine.NewStatus(1, nil)))
	assert.ErrorIs(t, loop.Submit(ctx, engine.NewStatus(2, nil)), context.DeadlineExceeded)
}

func TestLoopWithMatchingEngine(t *testing.T) {
	syms, err := registry.NewSymbols([]string{"X"})
	require.NoError(t, err)
	prices := make(chan types.PriceInfo, 1024)
	me := matching.New(logging.NewTestLogger(), matching.NewDefaultConfig(), syms, prices)
	loop := startLoop(t, me, engine.NewDefaultConfig(), prices, nil)
	defer loop.Finish(t)

	const (
		producers = 8
		perClient = 25
	)
	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		ids = map[types.OrderID]struct{}{}
	)
	for p := 0; p < producers; p++ {
		side := types.SideBuy
		if p%2 == 1 {
			side = types.SideSell
		}
		wg.Add(1)
		go func(side types.Side) {
			defer wg.Done()
			for i := 0; i < perClient; i++ {
				status, err := loop.client.Execute(context.Background(), types.OrderSubmission{
					AccountID: 1, Ticker: "X", Type: types.OrderTypeLimit, Side: side, Price: 100, Size: 1,
				})
				if !assert.NoError(t, err) {
					return
				}
				assert.NotEqual(t, types.StatusRejected, status.Type)
				mu.Lock()
				ids[status.OrderID] = struct{}{}
				mu.Unlock()
			}
		}(side)
	}
	wg.Wait()

	// one distinct id per accepted order
	assert.Len(t, ids, producers*perClient)

	// as many buys as sells at one price leaves an empty book. The last
	// reply was sent after the last mutation so reading the book is safe.
	book, ok := me.Book("X")
	require.True(t, ok)
	bid, _ := book.BestBidPriceAndVolume()
	ask, _ := book.BestOfferPriceAndVolume()
	assert.Zero(t, bid)
	assert.Zero(t, ask)

	status, err := loop.client.Execute(context.Background(), types.OrderSubmission{
		AccountID: 1, Ticker: "X", Type: types.OrderTypeLimit, Side: types.SideBuy, Price: 1, Size: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, types.StatusWaiting, status.Type)
	assert.Equal(t, types.OrderID(producers*perClient+1), status.OrderID)
}
