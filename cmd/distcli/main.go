package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/iov-one/tokendist"
)

// commands is a register of all available commands that can be executed by
// this program. The name is used to match with the first argument given.
//
// A command function is given stdin, stdout and the command line arguments
// without the program name and the command name. It parses the arguments
// itself and reads and writes only to the provided input and output. In the
// special case of an invalid argument a message to os.Stderr and an
// os.Exit(2) call are allowed.
//
// Commands building a transaction write it to the output, so that creating,
// signing and submitting can be combined in a pipeline:
//
//	$ distcli withdraw -id 1 -asset IOV \
//	    | distcli sign \
//	    | distcli submit
var commands = map[string]func(input io.Reader, output io.Writer, args []string) error{
	"bump-sequence":      cmdBumpSequence,
	"create-distributor": cmdCreateDistributor,
	"execute":            cmdExecute,
	"keeper":             cmdKeeper,
	"keyaddr":            cmdKeyaddr,
	"keygen":             cmdKeygen,
	"query":              cmdQuery,
	"send-tokens":        cmdSendTokens,
	"set-policy":         cmdSetPolicy,
	"sign":               cmdSignTransaction,
	"submit":             cmdSubmitTransaction,
	"transfer-ownership": cmdTransferOwnership,
	"version":            cmdVersion,
	"view":               cmdTransactionView,
	"withdraw":           cmdWithdraw,
}

func main() {
	if len(os.Args) == 1 {
		fmt.Fprintf(os.Stderr, "%s is a command line client for the distd application.\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Usage: %s <command> [<flags>]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nAvailable commands are:\n\t%s\n", strings.Join(availableCmds(), "\n\t"))
		fmt.Fprintf(os.Stderr, "Run '%s <command> -help' to learn more about each command.\n", os.Args[0])
		os.Exit(2)
	}
	run, ok := commands[os.Args[1]]
	if !ok {
		fmt.Fprintf(os.Stderr, "Unknown command %q\n", os.Args[1])
		fmt.Fprintf(os.Stderr, "\nAvailable commands are:\n\t%s\n", strings.Join(availableCmds(), "\n\t"))
		os.Exit(2)
	}

	// Skip two first arguments. Second argument is the command name that
	// we just consumed.
	if err := run(os.Stdin, os.Stdout, os.Args[2:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func availableCmds() []string {
	available := make([]string, 0, len(commands))
	for name := range commands {
		available = append(available, name)
	}
	sort.Strings(available)
	return available
}

func cmdVersion(in io.Reader, out io.Writer, args []string) error {
	_, err := fmt.Fprintln(out, tokendist.Version)
	return err
}

// flagDie terminates the program when a flag is invalid.
func flagDie(description string, args ...interface{}) {
	if !strings.HasSuffix(description, "\n") {
		description += "\n"
	}
	fmt.Fprintf(os.Stderr, description, args...)
	os.Exit(2)
}
