package main

import (
	"context"
	"fmt"

	"code.vegaprotocol.io/venue/config"
	"code.vegaprotocol.io/venue/logging"

	"github.com/jessevdk/go-flags"
)

type InitCmd struct {
	config.HomeFlag

	Force bool `short:"f" long:"force" description:"Erase existing venue configuration at the specified path"`
}

var initCmd InitCmd

func (opts *InitCmd) Execute(_ []string) error {
	logger := logging.NewLoggerFromConfig(logging.NewDefaultConfig())
	defer logger.AtExit()

	if err := config.Write(opts.Home, config.NewDefaultConfig(), opts.Force); err != nil {
		return fmt.Errorf("couldn't save configuration file: %w", err)
	}

	logger.Info("configuration generated successfully", logging.String("path", config.FilePath(opts.Home)))
	return nil
}

func Init(ctx context.Context, parser *flags.Parser) error {
	initCmd = InitCmd{}

	short := "Initializes a venue"
	long := "Generate the default configuration required for a venue node to start"

	_, err := parser.AddCommand("init", short, long, &initCmd)
	return err
}
