package main

import (
	"flag"
	"fmt"
	"io"

	"github.com/iov-one/tokendist/cmd/distd/app"
	"github.com/iov-one/tokendist/x/sigs"
)

func cmdSignTransaction(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Read a transaction from standard input, append a signature made with the
given key and write the result to standard output. A transaction can be piped
through this command several times to collect signatures of multiple keys.

The chain ID and the next sequence of the signer are fetched from the node.
`)
		fl.PrintDefaults()
	}
	tmAddrFl := fl.String("tm", defaultTMAddr(),
		"Tendermint node address. Defaults to DISTCLI_TM_ADDR.")
	keyPathFl := fl.String("key", defaultKeyPath(),
		"Private key file to sign with. Defaults to DISTCLI_PRIV_KEY.")
	fl.Parse(args)

	tx, err := readTx(input)
	if err != nil {
		return fmt.Errorf("cannot read transaction: %s", err)
	}
	key, err := decodePrivateKey(*keyPathFl)
	if err != nil {
		return fmt.Errorf("cannot load private key: %s", err)
	}
	if err := signTx(dial(*tmAddrFl), key, tx); err != nil {
		return fmt.Errorf("cannot sign: %s", err)
	}
	return writeTx(output, tx)
}

func cmdBumpSequence(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Write a transaction that moves the sequence of its signer forward. Every
transaction already signed with one of the skipped sequences can no longer be
submitted.
`)
		fl.PrintDefaults()
	}
	incrementFl := fl.Uint("increment", 1, "Total number the sequence is moved by.")
	fl.Parse(args)

	msg := &sigs.BumpSequenceMsg{Increment: uint32(*incrementFl)}
	if err := msg.Validate(); err != nil {
		flagDie("invalid increment: %s", err)
	}
	return writeTx(output, app.NewTx(msg))
}
