package main

import (
	"flag"
	"fmt"
	"io"

	"github.com/iov-one/tokendist/cmd/distd/app"
	"github.com/iov-one/tokendist/x/cash"
)

func cmdSendTokens(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Create a transaction for transferring funds from the source account to the
destination account. Funding a distributor is a transfer to its address.
`)
		fl.PrintDefaults()
	}
	var (
		srcFl    = flAddress(fl, "src", "", "A source account address that the funds are sent from.")
		dstFl    = flAddress(fl, "dst", "", "A destination account address that the funds are sent to.")
		assetFl  = flAddress(fl, "asset", nativeAsset, "Asset to transfer.")
		amountFl = flAmount(fl, "amount", "1", "Amount in the minimal units of the asset.")
		memoFl   = fl.String("memo", "", "A short message attached to the transfer operation.")
	)
	fl.Parse(args)

	msg := &cash.SendMsg{
		Source:      *srcFl,
		Destination: *dstFl,
		Asset:       *assetFl,
		Amount:      *amountFl,
		Memo:        *memoFl,
	}
	if err := msg.Validate(); err != nil {
		flagDie("invalid transfer: %s", err)
	}
	return writeTx(output, app.NewTx(msg))
}
