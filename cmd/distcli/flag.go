package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/iov-one/tokendist"
	"github.com/iov-one/tokendist/coin"
	"github.com/iov-one/tokendist/x/distributor"
)

// flAddress returns a value that is being initialized with given default value
// and optionally overwritten by a command line argument if provided. This
// function follows Go's flag package convention.
// If given value cannot be deserialized to required type, process is
// terminated.
func flAddress(fl *flag.FlagSet, name, defaultVal, usage string) *tokendist.Address {
	var a tokendist.Address
	if defaultVal != "" {
		if err := a.Set(defaultVal); err != nil {
			fmt.Fprintf(os.Stderr, "Cannot parse %q address flag value. %s", name, err)
			os.Exit(2)
		}
	}
	fl.Var(&a, name, usage)
	return &a
}

// flAmount works like flAddress for amounts.
func flAmount(fl *flag.FlagSet, name, defaultVal, usage string) *coin.Amount {
	var a coin.Amount
	if defaultVal != "" {
		if err := a.Set(defaultVal); err != nil {
			fmt.Fprintf(os.Stderr, "Cannot parse %q amount flag value. %s", name, err)
			os.Exit(2)
		}
	}
	fl.Var(&a, name, usage)
	return &a
}

// flID declares a distributor ID flag. IDs are given in their hex form.
func flID(fl *flag.FlagSet, name, usage string) *idFlag {
	var id idFlag
	fl.Var(&id, name, usage)
	return &id
}

type idFlag []byte

func (id idFlag) String() string {
	if len(id) == 0 {
		return ""
	}
	return distributor.FormatID(id)
}

func (id *idFlag) Set(raw string) error {
	val, err := distributor.ParseID(raw)
	if err != nil {
		return err
	}
	*id = val
	return nil
}

// flReceivers declares a list of receivers with their shares, written as
// comma separated <address>:<basis points> pairs.
func flReceivers(fl *flag.FlagSet, name, usage string) *receiversFlag {
	var r receiversFlag
	fl.Var(&r, name, usage)
	return &r
}

type receiversFlag struct {
	Receivers []tokendist.Address
	Shares    []uint32
}

func (r receiversFlag) String() string {
	pairs := make([]string, len(r.Receivers))
	for i, addr := range r.Receivers {
		pairs[i] = fmt.Sprintf("%s:%d", addr, r.Shares[i])
	}
	return strings.Join(pairs, ",")
}

func (r *receiversFlag) Set(raw string) error {
	var res receiversFlag
	for _, pair := range strings.Split(raw, ",") {
		// The address may carry its own format prefix, so the share is
		// after the last colon.
		pair = strings.TrimSpace(pair)
		i := strings.LastIndex(pair, ":")
		if i < 0 {
			return fmt.Errorf("invalid receiver %q, want <address>:<basis points>", pair)
		}
		addr, err := tokendist.ParseAddress(pair[:i])
		if err != nil {
			return fmt.Errorf("invalid receiver address %q: %s", pair[:i], err)
		}
		if len(addr) == 0 {
			return fmt.Errorf("missing receiver address in %q", pair)
		}
		share, err := strconv.ParseUint(pair[i+1:], 10, 32)
		if err != nil {
			return fmt.Errorf("invalid share %q: %s", pair[i+1:], err)
		}
		res.Receivers = append(res.Receivers, addr)
		res.Shares = append(res.Shares, uint32(share))
	}
	*r = res
	return nil
}
