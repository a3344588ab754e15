package server

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/iov-one/tokendist/errors"
	"github.com/tendermint/tendermint/abci/server"
	abci "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/libs/log"
)

// AppGenerator builds the application from the home directory. debug
// enables stack traces in error responses.
type AppGenerator func(home string, logger log.Logger, debug bool) (abci.Application, error)

type startOptions struct {
	bind  string
	debug bool
}

func parseStartFlags(args []string) (startOptions, error) {
	var opts startOptions
	fl := flag.NewFlagSet("start", flag.ContinueOnError)
	fl.StringVar(&opts.bind, "bind", "tcp://localhost:26658", "Address the ABCI socket listens on.")
	fl.BoolVar(&opts.debug, "debug", false, "Include stack traces in error responses.")
	if err := fl.Parse(args); err != nil {
		return opts, errors.Wrap(errors.ErrInput, err.Error())
	}
	return opts, nil
}

// StartCmd serves the generated application over the ABCI socket until
// the process receives SIGINT or SIGTERM.
func StartCmd(gen AppGenerator, logger log.Logger, home string, args []string) error {
	opts, err := parseStartFlags(args)
	if err != nil {
		return err
	}
	app, err := gen(home, logger, opts.debug)
	if err != nil {
		return errors.Wrap(err, "build app")
	}

	srv, err := server.NewServer(opts.bind, "socket", app)
	if err != nil {
		return errors.Wrapf(errors.ErrNetwork, "listen on %s: %s", opts.bind, err)
	}
	srv.SetLogger(logger.With("module", "abci-server"))
	logger.Info("serving ABCI", "bind", opts.bind, "debug", opts.debug)
	if err := srv.Start(); err != nil {
		return errors.Wrapf(errors.ErrNetwork, "start server: %s", err)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	s := <-stop
	logger.Info("shutting down", "signal", s.String())
	return srv.Stop()
}
