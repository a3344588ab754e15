package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"

	"github.com/iov-one/tokendist"
)

type signerView struct {
	Address  tokendist.Address `json:"address"`
	Sequence int64             `json:"sequence"`
}

type txView struct {
	Path    string        `json:"path"`
	Msg     tokendist.Msg `json:"msg"`
	Signers []signerView  `json:"signers"`
}

func cmdTransactionView(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Print the message of a binary transaction read from standard input as JSON,
together with the address and the sequence of every signer. Use it to review
a transaction before signing or submitting it.
`)
		fl.PrintDefaults()
	}
	fl.Parse(args)

	tx, err := readTx(input)
	if err != nil {
		return fmt.Errorf("cannot read transaction: %s", err)
	}
	msg, err := tx.GetMsg()
	if err != nil {
		return err
	}
	view := txView{Path: msg.Path(), Msg: msg, Signers: []signerView{}}
	for _, sig := range tx.Signatures {
		if sig == nil || sig.Pubkey == nil {
			continue
		}
		view.Signers = append(view.Signers, signerView{
			Address:  sig.Pubkey.Address(),
			Sequence: sig.Sequence,
		})
	}
	enc := json.NewEncoder(output)
	enc.SetIndent("", "\t")
	return enc.Encode(view)
}
