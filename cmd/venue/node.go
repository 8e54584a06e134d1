package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"code.vegaprotocol.io/venue/config"
	"code.vegaprotocol.io/venue/engine"
	"code.vegaprotocol.io/venue/gateway"
	"code.vegaprotocol.io/venue/logging"
	"code.vegaprotocol.io/venue/marketdata"
	"code.vegaprotocol.io/venue/matching"
	"code.vegaprotocol.io/venue/metrics"
	"code.vegaprotocol.io/venue/registry"
	"code.vegaprotocol.io/venue/types"

	"github.com/jessevdk/go-flags"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

type NodeCmd struct {
	config.HomeFlag

	config.Config
}

var nodeCmd NodeCmd

func (cmd *NodeCmd) Execute(_ []string) error {
	log := logging.NewLoggerFromConfig(logging.NewDefaultConfig())
	defer log.AtExit()

	// we define this option to parse the cli args each time the config is
	// loaded. So that we can respect the cli flag precedence.
	parseFlagOpt := func(cfg *config.Config) error {
		_, err := flags.NewParser(cfg, flags.Default|flags.IgnoreUnknown).Parse()
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	confWatcher, err := config.NewFromFile(ctx, log, cmd.Home, config.Use(parseFlagOpt))
	if err != nil {
		return err
	}
	cfg := confWatcher.Get()

	nodeLog := logging.NewLoggerFromConfig(cfg.Logging)
	defer nodeLog.AtExit()

	n, err := newNode(nodeLog, cfg)
	if err != nil {
		return err
	}
	confWatcher.OnConfigUpdate(n.ReloadConf)

	go func() {
		waitSig(ctx, nodeLog)
		cancel()
	}()

	return n.Run(ctx)
}

func Node(ctx context.Context, parser *flags.Parser) error {
	nodeCmd = NodeCmd{
		Config: config.NewDefaultConfig(),
	}
	cmd, err := parser.AddCommand("node", "Runs a venue node", "Runs the matching engine, market data and the gateway as defined by the config file", &nodeCmd)
	if err != nil {
		return err
	}

	// Print nested groups under parent's name using `::` as the separator.
	for _, parent := range cmd.Groups() {
		for _, grp := range parent.Groups() {
			grp.ShortDescription = parent.ShortDescription + "::" + grp.ShortDescription
		}
	}
	return nil
}

// node holds every running component of the venue.
type node struct {
	log *logging.Logger

	symbols  *registry.Symbols
	accounts *registry.Accounts

	loop       *engine.Loop
	marketData *marketdata.Service
	gateway    *gateway.Server
	metrics    metrics.Config
}

func newNode(log *logging.Logger, cfg config.Config) (*node, error) {
	symbols, err := registry.NewSymbols(cfg.Registry.Symbols)
	if err != nil {
		return nil, errors.Wrap(err, "invalid symbol registry")
	}
	accounts := registry.NewAccounts(cfg.Registry.Accounts)

	sinks := []marketdata.Sink{marketdata.NewLogSink(log)}
	if cfg.MarketData.Kafka.Enabled {
		sinks = append(sinks, marketdata.NewKafkaSink(log, cfg.MarketData.Kafka))
	}

	priceInfo := make(chan types.PriceInfo, cfg.MarketData.PriceBuffer)
	me := matching.New(log, cfg.Matching, symbols, priceInfo)
	loop := engine.New(log, cfg.Engine, me, priceInfo)

	log.Info("venue configured",
		logging.Int("symbols", symbols.Len()),
		logging.Int("accounts", accounts.Len()),
		logging.Bool("kafka", bool(cfg.MarketData.Kafka.Enabled)))

	return &node{
		log:        log,
		symbols:    symbols,
		accounts:   accounts,
		loop:       loop,
		marketData: marketdata.NewService(log, cfg.MarketData, priceInfo, sinks...),
		gateway:    gateway.New(log, cfg.Gateway, loop, symbols, accounts),
		metrics:    cfg.Metrics,
	}, nil
}

// Run starts every component and returns once they all stopped. The first
// failure stops the others.
func (n *node) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return n.loop.Run(gctx)
	})
	g.Go(func() error {
		return n.marketData.Run(gctx)
	})
	g.Go(func() error {
		return n.gateway.ListenAndServe(gctx)
	})
	g.Go(func() error {
		return metrics.Start(gctx, n.log, n.metrics)
	})

	err := g.Wait()
	n.log.Info("venue stopped", logging.Error(err))
	return err
}

// ReloadConf hands the new configuration to every component. Registries,
// listening addresses and buffer sizes only apply at startup.
func (n *node) ReloadConf(cfg config.Config) {
	n.loop.ReloadConf(cfg.Engine, cfg.Matching)
	n.marketData.ReloadConf(cfg.MarketData)
	n.gateway.ReloadConf(cfg.Gateway)
}

func waitSig(ctx context.Context, log *logging.Logger) {
	gracefulStop := make(chan os.Signal, 1)
	signal.Notify(gracefulStop, syscall.SIGTERM, syscall.SIGINT)
	defer signal.Stop(gracefulStop)

	select {
	case sig := <-gracefulStop:
		log.Info("Caught signal", logging.String("name", fmt.Sprintf("%+v", sig)))
	case <-ctx.Done():
		// nothing to do
	}
}
