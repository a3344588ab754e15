package utils

import (
	"time"

	"github.com/iov-one/tokendist"
)

// Logging writes a log entry for every processed transaction with its path
// and processing time in microseconds. Failures are logged at error level.
// Successful checks are logged at debug and deliveries at info level.
type Logging struct{}

var _ tokendist.Decorator = Logging{}

func NewLogging() Logging {
	return Logging{}
}

func (Logging) Check(ctx tokendist.Context, db tokendist.KVStore, tx tokendist.Tx, next tokendist.Checker) (*tokendist.CheckResult, error) {
	start := time.Now()
	res, err := next.Check(ctx, db, tx)
	entry := txLogEntry{ctx: ctx, tx: tx, start: start, debug: true}
	if err == nil {
		entry.msg = res.Log
	}
	entry.write(err)
	return res, err
}

func (Logging) Deliver(ctx tokendist.Context, db tokendist.KVStore, tx tokendist.Tx, next tokendist.Deliverer) (*tokendist.DeliverResult, error) {
	start := time.Now()
	res, err := next.Deliver(ctx, db, tx)
	entry := txLogEntry{ctx: ctx, tx: tx, start: start}
	if err == nil {
		entry.msg = res.Log
	}
	entry.write(err)
	return res, err
}

type txLogEntry struct {
	ctx   tokendist.Context
	tx    tokendist.Tx
	start time.Time
	msg   string
	debug bool
}

// write emits the entry even when the message is empty.
func (e txLogEntry) write(err error) {
	logger := tokendist.GetLogger(e.ctx).With(
		"path", tokendist.GetPath(e.tx),
		"duration", time.Since(e.start)/time.Microsecond,
	)
	switch {
	case err != nil:
		logger.Error(e.msg, "err", err)
	case e.debug:
		logger.Debug(e.msg)
	default:
		logger.Info(e.msg)
	}
}
