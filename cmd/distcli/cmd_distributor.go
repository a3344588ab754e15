package main

import (
	"context"
	"flag"
	"fmt"
	"io"

	"github.com/iov-one/tokendist/cmd/distd/app"
	"github.com/iov-one/tokendist/coin"
	"github.com/iov-one/tokendist/keeper"
	"github.com/iov-one/tokendist/x/distributor"
)

var nativeAsset = coin.NativeAsset.String()

func cmdCreateDistributor(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Create a transaction for creating a distributor. The signer becomes both the
creator and the owner. Each account can create only one distributor.

An allocation policy for one asset can be set at creation by providing the
receivers.
`)
		fl.PrintDefaults()
	}
	var (
		creatorFl   = flAddress(fl, "creator", "", "Optional creator address. If not provided the main signer is used.")
		assetFl     = flAddress(fl, "asset", nativeAsset, "Asset of the initial policy.")
		thresholdFl = flAmount(fl, "threshold", "0", "Balance required before the initial policy can be executed.")
		receiversFl = flReceivers(fl, "receivers", "Optional comma separated <address>:<basis points> pairs of the initial policy.")
	)
	fl.Parse(args)

	msg := &distributor.CreateMsg{Creator: *creatorFl}
	if len(receiversFl.Receivers) != 0 {
		msg.Asset = *assetFl
		msg.Threshold = *thresholdFl
		msg.Receivers = receiversFl.Receivers
		msg.Shares = receiversFl.Shares
	}
	if err := msg.Validate(); err != nil {
		flagDie("invalid distributor: %s", err)
	}
	return writeTx(output, app.NewTx(msg))
}

func cmdSetPolicy(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Create a transaction replacing the allocation policy of an asset. Shares are
given in basis points and must sum up to 10000.
`)
		fl.PrintDefaults()
	}
	var (
		idFl        = flID(fl, "id", "Distributor ID.")
		assetFl     = flAddress(fl, "asset", nativeAsset, "Asset the policy applies to.")
		thresholdFl = flAmount(fl, "threshold", "0", "Balance required before the policy can be executed.")
		receiversFl = flReceivers(fl, "receivers", "Comma separated <address>:<basis points> pairs.")
	)
	fl.Parse(args)

	msg := &distributor.SetPolicyMsg{
		DistributorID: *idFl,
		Asset:         *assetFl,
		Threshold:     *thresholdFl,
		Receivers:     receiversFl.Receivers,
		Shares:        receiversFl.Shares,
	}
	if err := msg.Validate(); err != nil {
		flagDie("invalid policy: %s", err)
	}
	return writeTx(output, app.NewTx(msg))
}

func cmdExecute(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Create a transaction executing the distribution of an asset. The current
policy is fetched from the node and claimed by the transaction, so the
execution fails if the policy changes before it is processed.
`)
		fl.PrintDefaults()
	}
	var (
		tmAddrFl = fl.String("tm", defaultTMAddr(),
			"Tendermint node address. You can use DISTCLI_TM_ADDR environment variable to set it.")
		idFl    = flID(fl, "id", "Distributor ID.")
		assetFl = flAddress(fl, "asset", nativeAsset, "Asset to distribute.")
		feeFl   = flAmount(fl, "fee", "0", "Fee paid to the executor before the split.")
	)
	fl.Parse(args)

	if len(*idFl) == 0 {
		flagDie("distributor ID is required")
	}

	reader := keeper.NewQueryReader(keeper.NewRPCQuerier(dial(*tmAddrFl)))
	p, err := reader.Policy(context.Background(), *idFl, *assetFl)
	if err != nil {
		return fmt.Errorf("cannot fetch policy: %s", err)
	}
	msg := &distributor.ExecuteMsg{
		DistributorID: *idFl,
		Asset:         *assetFl,
		Threshold:     p.Threshold,
		Receivers:     p.Receivers,
		Shares:        p.Shares,
		Fee:           *feeFl,
	}
	return writeTx(output, app.NewTx(msg))
}

func cmdWithdraw(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Create a transaction moving the whole balance of an asset held by a
distributor to its owner.
`)
		fl.PrintDefaults()
	}
	var (
		idFl    = flID(fl, "id", "Distributor ID.")
		assetFl = flAddress(fl, "asset", nativeAsset, "Asset to withdraw.")
	)
	fl.Parse(args)

	msg := &distributor.WithdrawMsg{
		DistributorID: *idFl,
		Asset:         *assetFl,
	}
	if err := msg.Validate(); err != nil {
		flagDie("invalid withdraw: %s", err)
	}
	return writeTx(output, app.NewTx(msg))
}

func cmdTransferOwnership(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Create a transaction handing a distributor over to a new owner.
`)
		fl.PrintDefaults()
	}
	var (
		idFl    = flID(fl, "id", "Distributor ID.")
		ownerFl = flAddress(fl, "owner", "", "Address of the new owner.")
	)
	fl.Parse(args)

	msg := &distributor.TransferOwnershipMsg{
		DistributorID: *idFl,
		NewOwner:      *ownerFl,
	}
	if err := msg.Validate(); err != nil {
		flagDie("invalid transfer: %s", err)
	}
	return writeTx(output, app.NewTx(msg))
}
