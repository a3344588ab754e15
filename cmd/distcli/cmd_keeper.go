package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iov-one/tokendist/cmd/distd/app"
	"github.com/iov-one/tokendist/crypto"
	"github.com/iov-one/tokendist/keeper"
	"github.com/iov-one/tokendist/x/distributor"
	"github.com/tendermint/tendermint/libs/log"
)

func cmdKeeper(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Run a keeper. The keeper periodically scans all distributors and executes
every asset whose balance reached its threshold, claiming the given fee.
The key must belong to the executor configured at genesis.
`)
		fl.PrintDefaults()
	}
	var (
		tmAddrFl = fl.String("tm", defaultTMAddr(),
			"Tendermint node address. You can use DISTCLI_TM_ADDR environment variable to set it.")
		keyPathFl = fl.String("key", defaultKeyPath(),
			"Path to the private key file of the executor. You can use DISTCLI_PRIV_KEY environment variable to set it.")
		feeFl      = flAmount(fl, "fee", "0", "Fee claimed for each execution.")
		intervalFl = fl.Duration("interval", 10*time.Second, "Time between two scans.")
		onceFl     = fl.Bool("once", false, "Scan once and exit.")
		logLevelFl = fl.String("log_level", "info", "One of debug, info, error, none.")
	)
	fl.Parse(args)

	key, err := decodePrivateKey(*keyPathFl)
	if err != nil {
		return fmt.Errorf("cannot load private key: %s", err)
	}
	level, err := log.AllowLevel(*logLevelFl)
	if err != nil {
		flagDie("invalid log level: %s", err)
	}
	logger := log.NewFilter(log.NewTMLogger(log.NewSyncWriter(os.Stderr)), level)

	n := dial(*tmAddrFl)
	k := keeper.New(keeper.NewQueryReader(keeper.NewRPCQuerier(n)), keeper.FixedFee{Amount: *feeFl}, logger)
	s := &rpcSubmitter{node: n, key: key}

	if *onceFl {
		done, err := k.RunOnce(context.Background(), s)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(output, "executed %d\n", done)
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGTERM, os.Interrupt)
		<-sig
		cancel()
	}()
	if err := k.Run(ctx, s, *intervalFl); err != context.Canceled {
		return err
	}
	return nil
}

// rpcSubmitter signs execution requests with the executor key and
// broadcasts them to a node.
type rpcSubmitter struct {
	node node
	key  *crypto.PrivateKey
}

var _ keeper.Submitter = (*rpcSubmitter)(nil)

func (s *rpcSubmitter) Submit(ctx context.Context, msg *distributor.ExecuteMsg) error {
	tx := app.NewTx(msg)
	if err := signTx(s.node, s.key, tx); err != nil {
		return err
	}
	_, err := broadcast(s.node, tx)
	return err
}
