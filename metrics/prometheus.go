package metrics

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"code.vegaprotocol.io/venue/logging"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	Gauge instrument = iota
	Counter
	Histogram
)

const namespace = "venue"

var (
	ErrInstrumentNotSupported = errors.New("instrument type unsupported")
	ErrInstrumentTypeMismatch = errors.New("instrument is not of the expected type")
)

var (
	setupOnce sync.Once
	setupErr  error

	engineTime      *prometheus.CounterVec
	orderCounter    *prometheus.CounterVec
	commandCounter  *prometheus.CounterVec
	commandLatency  *prometheus.HistogramVec
	commandQueue    prometheus.Gauge
	priceUpdates    *prometheus.CounterVec
	droppedMessages *prometheus.CounterVec
	gatewayConns    prometheus.Gauge
)

// abstract prometheus types
type instrument int

// combine all possible prometheus options + way to differentiate between regular or vector type
type instrumentOpts struct {
	opts    prometheus.Opts
	buckets []float64
	vectors []string
}

type mi struct {
	gaugeV     *prometheus.GaugeVec
	gauge      prometheus.Gauge
	counterV   *prometheus.CounterVec
	counter    prometheus.Counter
	histogramV *prometheus.HistogramVec
	histogram  prometheus.Histogram
}

// InstrumentOption - vararg for instrument options setting
type InstrumentOption func(o *instrumentOpts)

// Vectors - configuration used to create a vector of a given interface, slice of label names
func Vectors(labels ...string) InstrumentOption {
	return func(o *instrumentOpts) {
		o.vectors = labels
	}
}

// Help - set the help field on instrument
func Help(help string) InstrumentOption {
	return func(o *instrumentOpts) {
		o.opts.Help = help
	}
}

// Namespace - set namespace
func Namespace(ns string) InstrumentOption {
	return func(o *instrumentOpts) {
		o.opts.Namespace = ns
	}
}

// Buckets - specific to histogram type
func Buckets(b []float64) InstrumentOption {
	return func(o *instrumentOpts) {
		o.buckets = b
	}
}

// AddInstrument, configure and register new metrics instrument
func AddInstrument(t instrument, name string, opts ...InstrumentOption) (*mi, error) {
	var col prometheus.Collector
	ret := mi{}
	opt := instrumentOpts{
		opts: prometheus.Opts{
			Name: name,
		},
	}
	// apply options
	for _, o := range opts {
		o(&opt)
	}
	switch t {
	case Gauge:
		o := prometheus.GaugeOpts(opt.opts)
		if len(opt.vectors) == 0 {
			ret.gauge = prometheus.NewGauge(o)
			col = ret.gauge
		} else {
			ret.gaugeV = prometheus.NewGaugeVec(o, opt.vectors)
			col = ret.gaugeV
		}
	case Counter:
		o := prometheus.CounterOpts(opt.opts)
		if len(opt.vectors) == 0 {
			ret.counter = prometheus.NewCounter(o)
			col = ret.counter
		} else {
			ret.counterV = prometheus.NewCounterVec(o, opt.vectors)
			col = ret.counterV
		}
	case Histogram:
		o := opt.histogram()
		if len(opt.vectors) == 0 {
			ret.histogram = prometheus.NewHistogram(o)
			col = ret.histogram
		} else {
			ret.histogramV = prometheus.NewHistogramVec(o, opt.vectors)
			col = ret.histogramV
		}
	default:
		return nil, ErrInstrumentNotSupported
	}
	if err := prometheus.Register(col); err != nil {
		return nil, err
	}
	return &ret, nil
}

func (i instrumentOpts) histogram() prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Name:        i.opts.Name,
		Namespace:   i.opts.Namespace,
		Subsystem:   i.opts.Subsystem,
		ConstLabels: i.opts.ConstLabels,
		Help:        i.opts.Help,
		Buckets:     i.buckets,
	}
}

func (m mi) Gauge() (prometheus.Gauge, error) {
	if m.gauge == nil {
		return nil, ErrInstrumentTypeMismatch
	}
	return m.gauge, nil
}

func (m mi) CounterVec() (*prometheus.CounterVec, error) {
	if m.counterV == nil {
		return nil, ErrInstrumentTypeMismatch
	}
	return m.counterV, nil
}

func (m mi) HistogramVec() (*prometheus.HistogramVec, error) {
	if m.histogramV == nil {
		return nil, ErrInstrumentTypeMismatch
	}
	return m.histogramV, nil
}

func addCounterVec(name, help string, labels ...string) (*prometheus.CounterVec, error) {
	h, err := AddInstrument(Counter, name, Namespace(namespace), Vectors(labels...), Help(help))
	if err != nil {
		return nil, err
	}
	return h.CounterVec()
}

func addGauge(name, help string) (prometheus.Gauge, error) {
	h, err := AddInstrument(Gauge, name, Namespace(namespace), Help(help))
	if err != nil {
		return nil, err
	}
	return h.Gauge()
}

// Setup registers every instrument with the default prometheus registry.
// It is safe to call several times, only the first call registers.
func Setup() error {
	setupOnce.Do(func() {
		setupErr = setupMetrics()
	})
	return setupErr
}

func setupMetrics() error {
	var err error
	if engineTime, err = addCounterVec(
		"engine_seconds_total", "Time spent in engine functions", "market", "engine", "fn",
	); err != nil {
		return err
	}
	if orderCounter, err = addCounterVec(
		"orders_total", "Number of orders processed", "market", "kind", "valid",
	); err != nil {
		return err
	}
	if commandCounter, err = addCounterVec(
		"commands_total", "Number of commands processed by the engine loop", "type",
	); err != nil {
		return err
	}
	if priceUpdates, err = addCounterVec(
		"price_updates_total", "Number of top of book updates emitted", "market",
	); err != nil {
		return err
	}
	if droppedMessages, err = addCounterVec(
		"dropped_messages_total", "Messages dropped because the receiving channel was full", "kind",
	); err != nil {
		return err
	}

	h, err := AddInstrument(
		Histogram,
		"command_seconds",
		Namespace(namespace),
		Vectors("type"),
		Buckets(prometheus.ExponentialBuckets(0.000001, 4, 10)),
		Help("Time taken to process a command"),
	)
	if err != nil {
		return err
	}
	if commandLatency, err = h.HistogramVec(); err != nil {
		return err
	}

	if commandQueue, err = addGauge("command_queue", "Number of commands waiting for the engine loop"); err != nil {
		return err
	}
	if gatewayConns, err = addGauge("gateway_connections", "Number of open gateway connections"); err != nil {
		return err
	}
	return nil
}

// Start serves the registered instruments until ctx is done. It returns
// immediately when metrics are disabled.
func Start(ctx context.Context, log *logging.Logger, conf Config) error {
	if !conf.Enabled {
		return nil
	}
	if err := Setup(); err != nil {
		return errors.Wrap(err, "could not set up metrics")
	}

	mux := http.NewServeMux()
	mux.Handle(conf.Path, promhttp.Handler())
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", conf.Port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(sctx)
	}()

	log.Info("starting prometheus endpoint",
		logging.Int("port", conf.Port),
		logging.String("path", conf.Path))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// EngineTimeCounterAdd is used to time a function. Call it, using defer, at the start of the
// function to be timed.
//
// e.g.
//
//	defer metrics.EngineTimeCounterAdd("x", "y", "z")()
//
// Note the extra "()" at the end of the above line - the returned function must be called.
func EngineTimeCounterAdd(labelValues ...string) func() {
	start := time.Now()
	return func() {
		// Check that the metric has been set up. (Testing does not use metrics.)
		if engineTime == nil {
			return
		}
		engineTime.WithLabelValues(labelValues...).Add(time.Since(start).Seconds())
	}
}

func OrderCounterInc(labelValues ...string) {
	if orderCounter == nil {
		return
	}
	orderCounter.WithLabelValues(labelValues...).Inc()
}

// CommandObserve counts a processed command and records how long it took.
func CommandObserve(cmdType string, took time.Duration) {
	if commandCounter == nil {
		return
	}
	commandCounter.WithLabelValues(cmdType).Inc()
	commandLatency.WithLabelValues(cmdType).Observe(took.Seconds())
}

func CommandQueueSet(n int) {
	if commandQueue == nil {
		return
	}
	commandQueue.Set(float64(n))
}

func PriceUpdatesInc(market string) {
	if priceUpdates == nil {
		return
	}
	priceUpdates.WithLabelValues(market).Inc()
}

func DroppedMessagesInc(kind string) {
	if droppedMessages == nil {
		return
	}
	droppedMessages.WithLabelValues(kind).Inc()
}

func GatewayConnectionsSet(n int64) {
	if gatewayConns == nil {
		return
	}
	gatewayConns.Set(float64(n))
}
