package main

import (
	"flag"
	"fmt"
	"io"

	"github.com/iov-one/tokendist"
	"github.com/iov-one/tokendist/x/distributor"
)

func cmdSubmitTransaction(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Read binary serialized transaction from standard input and submit it. The
command waits until the transaction is committed.

For certain transactions response is written out. Make sure to collect enough
signatures before submitting the transaction.
`)
		fl.PrintDefaults()
	}
	var (
		tmAddrFl = fl.String("tm", defaultTMAddr(),
			"Tendermint node address. You can use DISTCLI_TM_ADDR environment variable to set it.")
	)
	fl.Parse(args)

	tx, err := readTx(input)
	if err != nil {
		return fmt.Errorf("cannot read transaction from input: %s", err)
	}
	res, err := broadcast(dial(*tmAddrFl), tx)
	if err != nil {
		return fmt.Errorf("cannot broadcast transaction: %s", err)
	}

	msg, err := tx.GetMsg()
	if err != nil {
		return err
	}
	format, ok := formatters[msg.Path()]
	if !ok {
		return nil
	}
	pretty, err := format(res)
	if err != nil {
		return fmt.Errorf("cannot format result: %s", err)
	}
	_, err = fmt.Fprintln(output, pretty)
	return err
}

// formatters contains a mapping of a message path to a result formatter.
// Do not register a message if its result should not be printed.
var formatters = map[string]func(*tokendist.DeliverResult) (string, error){
	distributor.CreateMsg{}.Path():  fmtCreated,
	distributor.ExecuteMsg{}.Path(): fmtExecuted,
}

func fmtCreated(res *tokendist.DeliverResult) (string, error) {
	e, err := distributor.ParseCreatedEvent(res.Tags)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("id=%s address=%s", distributor.FormatID(e.ID), e.Address), nil
}

func fmtExecuted(res *tokendist.DeliverResult) (string, error) {
	e, err := distributor.ParseExecutedEvent(res.Tags)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("id=%s distributed=%s fee=%s", distributor.FormatID(e.ID), e.Distributed, e.Fee), nil
}
