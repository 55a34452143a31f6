package utils

import (
	"time"

	"github.com/iov-one/paygate"
)

// Logging is a decorator to log messages as they pass through
type Logging struct{}

var _ paygate.Decorator = Logging{}

// NewLogging creates a Logging decorator
func NewLogging() Logging {
	return Logging{}
}

// Check logs error -> error, success -> debug
func (r Logging) Check(ctx paygate.Context, store paygate.KVStore, tx paygate.Tx, next paygate.Checker) (*paygate.CheckResult, error) {
	start := time.Now()
	res, err := next.Check(ctx, store, tx)
	var resLog string
	if err == nil && res != nil {
		resLog = res.Log
	}
	logDuration(ctx, tx, start, resLog, err, true)
	return res, err
}

// Deliver logs error -> error, success -> info
func (r Logging) Deliver(ctx paygate.Context, store paygate.KVStore, tx paygate.Tx, next paygate.Deliverer) (*paygate.DeliverResult, error) {
	start := time.Now()
	res, err := next.Deliver(ctx, store, tx)
	var resLog string
	if err == nil && res != nil {
		resLog = res.Log
	}
	logDuration(ctx, tx, start, resLog, err, false)
	return res, err
}

// logDuration writes information about the time and result to the logger
func logDuration(ctx paygate.Context, tx paygate.Tx, start time.Time, msg string, err error, lowPrio bool) {
	delta := time.Since(start)
	logger := paygate.GetLogger(ctx).With(
		"path", paygate.GetPath(tx),
		"duration", delta/time.Microsecond,
	)

	// Although message can be empty, we still want to emit a log entry
	// because it contains other relevant information beside the message.
	switch {
	case err != nil:
		logger.Error(msg, "err", err)
	case lowPrio:
		logger.Debug(msg)
	default:
		logger.Info(msg)
	}
}
