package utils

import (
	"time"

	"github.com/iov-one/barter"
	"github.com/tendermint/tendermint/libs/log"
)

// Logging writes one log line per handled transaction, with its path,
// phase and duration in microseconds. Failures are logged as errors.
// Successful checks are logged at debug level and successful deliveries at
// info level. The context passed down carries the path and phase, so
// handlers logging through barter.GetLogger share them.
type Logging struct{}

var _ barter.Decorator = Logging{}

func NewLogging() Logging {
	return Logging{}
}

func (Logging) Check(ctx barter.Context, db barter.KVStore, tx barter.Tx, next barter.Checker) (*barter.CheckResult, error) {
	ctx = barter.WithLogInfo(ctx, "path", barter.GetPath(tx), "phase", "check")
	start := time.Now()
	res, err := next.Check(ctx, db, tx)

	logger := withOutcome(ctx, start, err)
	if err != nil {
		logger.Error("")
	} else {
		logger.Debug(res.Log)
	}
	return res, err
}

func (Logging) Deliver(ctx barter.Context, db barter.KVStore, tx barter.Tx, next barter.Deliverer) (*barter.DeliverResult, error) {
	ctx = barter.WithLogInfo(ctx, "path", barter.GetPath(tx), "phase", "deliver")
	start := time.Now()
	res, err := next.Deliver(ctx, db, tx)

	logger := withOutcome(ctx, start, err)
	if err != nil {
		logger.Error("")
	} else {
		logger.Info(res.Log)
	}
	return res, err
}

// withOutcome returns the context logger annotated with the duration and
// the error, if any. An empty message is still logged, the fields are what
// matters.
func withOutcome(ctx barter.Context, start time.Time, err error) log.Logger {
	logger := barter.GetLogger(ctx).With("duration", time.Since(start)/time.Microsecond)
	if err != nil {
		logger = logger.With("err", err)
	}
	return logger
}
