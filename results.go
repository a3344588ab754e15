package tokendist

import (
	"github.com/iov-one/tokendist/errors"
	abci "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/libs/common"
)

// DeliverResult is what a handler returns for a transaction that was
// applied. A failed transaction is always reported as an error instead.
type DeliverResult struct {
	// Data is a machine readable result, for example the ID of a created
	// distributor.
	Data []byte
	Log  string
	// Tags are indexed by tendermint and make the transaction searchable.
	// Events are published this way.
	Tags    []common.KVPair
	GasUsed int64
}

// CheckResult is what a handler returns for a transaction that may be
// included in a block.
type CheckResult struct {
	Data []byte
	Log  string
	// GasAllocated is the upper bound of work the transaction may need.
	GasAllocated int64
}

// DeliverOrError builds the DeliverTx response. An error takes precedence
// over the result. In debug mode the log carries the full error details.
func DeliverOrError(res *DeliverResult, err error, debug bool) abci.ResponseDeliverTx {
	if err != nil {
		code, log := failure("cannot deliver tx", err, debug)
		return abci.ResponseDeliverTx{Code: code, Log: log}
	}
	if res == nil {
		return abci.ResponseDeliverTx{}
	}
	return abci.ResponseDeliverTx{
		Data:    res.Data,
		Log:     res.Log,
		Tags:    res.Tags,
		GasUsed: res.GasUsed,
	}
}

// CheckOrError builds the CheckTx response. It follows the same rules as
// DeliverOrError.
func CheckOrError(res *CheckResult, err error, debug bool) abci.ResponseCheckTx {
	if err != nil {
		code, log := failure("cannot check tx", err, debug)
		return abci.ResponseCheckTx{Code: code, Log: log}
	}
	if res == nil {
		return abci.ResponseCheckTx{}
	}
	return abci.ResponseCheckTx{
		Data:      res.Data,
		Log:       res.Log,
		GasWanted: res.GasAllocated,
	}
}

// ParseDeliverOrError reads back a DeliverTx response as returned by a node.
// A failed transaction is turned into an error of the kind registered for its
// code, so that it can be tested with Is.
func ParseDeliverOrError(res abci.ResponseDeliverTx) (*DeliverResult, error) {
	if res.Code != errors.SuccessABCICode {
		return nil, errors.ABCIError(res.Code, res.Log)
	}
	return &DeliverResult{
		Data:    res.Data,
		Log:     res.Log,
		Tags:    res.Tags,
		GasUsed: res.GasUsed,
	}, nil
}

func failure(prefix string, err error, debug bool) (uint32, string) {
	code, log := errors.ABCIInfo(err, debug)
	if code != errors.SuccessABCICode {
		log = prefix + ": " + log
	}
	return code, log
}

// Tag is a shortcut for building a single event tag.
func Tag(key, value string) common.KVPair {
	return common.KVPair{Key: []byte(key), Value: []byte(value)}
}

// TagValue returns the value of the first tag with the given key.
func TagValue(tags []common.KVPair, key string) (string, bool) {
	for _, t := range tags {
		if string(t.Key) == key {
			return string(t.Value), true
		}
	}
	return "", false
}
