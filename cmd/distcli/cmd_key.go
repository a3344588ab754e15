package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/iov-one/tokendist/crypto"
)

func cmdKeygen(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Create a private key file. The key is random unless a hex encoded 32 byte seed
is given, in which case the same seed always results in the same key.

An existing key file is never overwritten.
`)
		fl.PrintDefaults()
	}
	var (
		keyPathFl = fl.String("key", defaultKeyPath(),
			"Path to the private key file. You can use DISTCLI_PRIV_KEY environment variable to set it.")
		seedFl = fl.String("seed", "", "Optional hex encoded seed.")
	)
	fl.Parse(args)

	key := crypto.GenPrivKeyEd25519()
	if *seedFl != "" {
		seed, err := hex.DecodeString(*seedFl)
		if err != nil {
			return fmt.Errorf("invalid seed: %s", err)
		}
		if key, err = crypto.PrivKeyEd25519FromSeed(seed); err != nil {
			return err
		}
	}

	fd, err := os.OpenFile(*keyPathFl, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0600)
	if os.IsExist(err) {
		return fmt.Errorf("private key file %q already exists, delete this file and try again", *keyPathFl)
	}
	if err != nil {
		return fmt.Errorf("cannot create private key file: %s", err)
	}
	if _, err := fd.Write(key.Ed25519); err != nil {
		fd.Close()
		return fmt.Errorf("cannot write private key: %s", err)
	}
	return fd.Close()
}

func cmdKeyaddr(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Print out the address that signatures of your private key authorize. Use the
-hrp flag to print it in bech32 form instead of hex.
`)
		fl.PrintDefaults()
	}
	var (
		keyPathFl = fl.String("key", defaultKeyPath(),
			"Path to the private key file. You can use DISTCLI_PRIV_KEY environment variable to set it.")
		hrpFl = fl.String("hrp", "", "Human readable prefix of the bech32 address.")
	)
	fl.Parse(args)

	key, err := decodePrivateKey(*keyPathFl)
	if err != nil {
		return err
	}
	addr := key.PublicKey().Address()
	if *hrpFl == "" {
		_, err = fmt.Fprintln(output, addr)
		return err
	}
	enc, err := addr.Bech32(*hrpFl)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(output, enc)
	return err
}
