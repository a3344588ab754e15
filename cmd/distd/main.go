package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/iov-one/tokendist"
	distd "github.com/iov-one/tokendist/cmd/distd/app"
	"github.com/iov-one/tokendist/commands/server"
	"github.com/tendermint/tendermint/libs/log"
)

var (
	homeFl     = flag.String("home", filepath.Join(os.ExpandEnv("$HOME"), ".distd"), "Directory holding the genesis file and the database.")
	logLevelFl = flag.String("log_level", "info", "Log level, one of debug, info, error, none.")
)

type command struct {
	help string
	run  func(logger log.Logger, home string, args []string) error
}

var commands = map[string]command{
	"init": {
		help: "Write the app state of the genesis file",
		run: func(logger log.Logger, home string, args []string) error {
			return server.InitCmd(distd.GenInitOptions, logger, home, args)
		},
	},
	"start": {
		help: "Serve the application over the ABCI socket",
		run: func(logger log.Logger, home string, args []string) error {
			return server.StartCmd(distd.GenerateApp, logger, home, args)
		},
	},
	"validate": {
		help: "Check the app state of genesis files, by default the one in home",
		run: func(logger log.Logger, home string, args []string) error {
			if len(args) == 0 {
				args = []string{server.GenesisPath(home)}
			}
			return server.ValidateGenesis(distd.Initializers(), args)
		},
	},
	"version": {
		help: "Print the version",
		run: func(log.Logger, string, []string) error {
			fmt.Println(tokendist.Version)
			return nil
		},
	},
}

func usage() {
	out := flag.CommandLine.Output()
	fmt.Fprintf(out, "distd runs a threshold gated token distribution node.\n\nUsage: %s [flags] <command> [args]\n\nCommands:\n", os.Args[0])
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(out, "  %-10s %s\n", name, commands[name].help)
	}
	fmt.Fprintln(out, "\nFlags:")
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	flag.Parse()

	cmd, ok := commands[flag.Arg(0)]
	if !ok {
		if flag.NArg() != 0 {
			fmt.Fprintf(os.Stderr, "unknown command: %q\n\n", flag.Arg(0))
		}
		usage()
		os.Exit(2)
	}

	logger, err := newLogger(*logLevelFl)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid log level: %s\n", err)
		os.Exit(2)
	}
	if err := cmd.run(logger, *homeFl, flag.Args()[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %+v\n", flag.Arg(0), err)
		os.Exit(1)
	}
}

func newLogger(level string) (log.Logger, error) {
	allow, err := log.AllowLevel(level)
	if err != nil {
		return nil, err
	}
	logger := log.NewTMLogger(log.NewSyncWriter(os.Stdout)).With("module", "distd")
	return log.NewFilter(logger, allow), nil
}
