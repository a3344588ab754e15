package main

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/iov-one/tokendist"
	"github.com/iov-one/tokendist/app"
	"github.com/iov-one/tokendist/errors"
	"github.com/iov-one/tokendist/keeper"
	"github.com/iov-one/tokendist/x/cash"
	"github.com/iov-one/tokendist/x/distributor"
	"github.com/iov-one/tokendist/x/sigs"
	abci "github.com/tendermint/tendermint/abci/types"
)

type respDecoder interface {
	Unmarshal([]byte) error
}

// queryKey describes how the key of a query path is built from the command
// line. A nil key with prefix set lists the whole bucket.
type queryKey func(id []byte, addr, asset tokendist.Address) (key []byte, prefix bool)

var queryPaths = map[string]struct {
	decoder func() respDecoder
	key     queryKey
}{
	"/distributors": {
		decoder: func() respDecoder { return &distributor.Distributor{} },
		key: func(id []byte, _, _ tokendist.Address) ([]byte, bool) {
			return id, len(id) == 0
		},
	},
	"/distributors/creator": {
		decoder: func() respDecoder { return &distributor.Distributor{} },
		key:     addressKey,
	},
	"/distributors/owner": {
		decoder: func() respDecoder { return &distributor.Distributor{} },
		key:     addressKey,
	},
	"/policies": {
		decoder: func() respDecoder { return &distributor.Policy{} },
		key: func(id []byte, _, asset tokendist.Address) ([]byte, bool) {
			if len(asset) == 0 {
				return id, true
			}
			return distributor.PolicyKey(id, asset), false
		},
	},
	"/cash": {
		decoder: func() respDecoder { return &cash.Holding{} },
		key: func(_ []byte, addr, asset tokendist.Address) ([]byte, bool) {
			if len(asset) == 0 {
				return addr, true
			}
			return cash.HoldingKey(addr, asset), false
		},
	},
	"/auth": {
		decoder: func() respDecoder { return &sigs.UserData{} },
		key:     addressKey,
	},
}

func addressKey(_ []byte, addr, _ tokendist.Address) ([]byte, bool) {
	return addr, len(addr) == 0
}

func cmdQuery(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), `
Query the committed state and print the result as JSON.

Supported paths are:
	%s

Missing key parts turn the query into a prefix query, for example /policies
with only -id lists all policies of a distributor.
`, strings.Join(availablePaths(), "\n\t"))
		fl.PrintDefaults()
	}
	var (
		tmAddrFl = fl.String("tm", defaultTMAddr(),
			"Tendermint node address. You can use DISTCLI_TM_ADDR environment variable to set it.")
		pathFl  = fl.String("path", "/distributors", "Query path.")
		idFl    = flID(fl, "id", "Distributor ID, used by /distributors and /policies.")
		addrFl  = flAddress(fl, "address", "", "Account address, used by /distributors/creator, /distributors/owner, /cash and /auth.")
		assetFl = flAddress(fl, "asset", "", "Asset, used by /policies and /cash.")
	)
	fl.Parse(args)

	path, ok := queryPaths[*pathFl]
	if !ok {
		flagDie("unknown path %q", *pathFl)
	}
	key, prefix := path.key(*idFl, *addrFl, *assetFl)
	queryPath := *pathFl
	if prefix {
		queryPath += "?" + tokendist.PrefixQueryMod
	}

	res := keeper.NewRPCQuerier(dial(*tmAddrFl)).Query(abci.RequestQuery{Path: queryPath, Data: key})
	if res.Code != errors.SuccessABCICode {
		return fmt.Errorf("failed to run query: %s", errors.ABCIError(res.Code, res.Log))
	}
	var keys, values app.ResultSet
	if err := keys.Unmarshal(res.Key); err != nil {
		return fmt.Errorf("cannot decode keys: %s", err)
	}
	if err := values.Unmarshal(res.Value); err != nil {
		return fmt.Errorf("cannot decode values: %s", err)
	}
	models, err := app.JoinResults(&keys, &values)
	if err != nil {
		return err
	}

	type result struct {
		Key   string      `json:"key"`
		Value interface{} `json:"value"`
	}
	results := make([]result, 0, len(models))
	for i, m := range models {
		obj := path.decoder()
		if err := obj.Unmarshal(m.Value); err != nil {
			return fmt.Errorf("failed to unmarshal model %d: %s", i, err)
		}
		results = append(results, result{Key: formatKey(m.Key), Value: obj})
	}
	pretty, err := json.MarshalIndent(results, "", "\t")
	if err != nil {
		return fmt.Errorf("cannot JSON serialize: %s", err)
	}
	_, err = fmt.Fprintln(output, string(pretty))
	return err
}

// formatKey drops the bucket prefix of a database key and hex encodes the
// rest.
func formatKey(key []byte) string {
	if i := bytes.IndexByte(key, ':'); i >= 0 {
		key = key[i+1:]
	}
	return strings.ToUpper(hex.EncodeToString(key))
}

func availablePaths() []string {
	paths := make([]string, 0, len(queryPaths))
	for p := range queryPaths {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}
