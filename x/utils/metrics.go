package utils

import (
	"strconv"
	"time"

	"github.com/iov-one/barter"
	"github.com/iov-one/barter/errors"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics is a decorator that counts processed messages and measures the
// time spent delivering them. Messages are labeled with their path and
// the ABCI code of the result, so that ie. the number of rejected escrow
// finalizations can be observed.
type Metrics struct {
	handled  *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

var _ barter.Decorator = Metrics{}

// NewMetrics creates a Metrics decorator and registers its collectors with
// given registerer. Registration fails if collectors with the same names are
// already registered.
func NewMetrics(reg prometheus.Registerer) (Metrics, error) {
	m := Metrics{
		handled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "barter",
			Name:      "messages_total",
			Help:      "Number of processed messages.",
		}, []string{"phase", "path", "code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "barter",
			Name:      "deliver_duration_seconds",
			Help:      "Time spent delivering a message.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}, []string{"path"}),
	}
	if err := reg.Register(m.handled); err != nil {
		return m, errors.Wrapf(errors.ErrInput, "cannot register message counter: %s", err)
	}
	if err := reg.Register(m.duration); err != nil {
		return m, errors.Wrapf(errors.ErrInput, "cannot register duration histogram: %s", err)
	}
	return m, nil
}

// Check counts the checked message
func (m Metrics) Check(ctx barter.Context, store barter.KVStore, tx barter.Tx, next barter.Checker) (*barter.CheckResult, error) {
	res, err := next.Check(ctx, store, tx)
	m.count("check", tx, err)
	return res, err
}

// Deliver counts the delivered message and measures its duration
func (m Metrics) Deliver(ctx barter.Context, store barter.KVStore, tx barter.Tx, next barter.Deliverer) (*barter.DeliverResult, error) {
	start := time.Now()
	res, err := next.Deliver(ctx, store, tx)
	m.duration.WithLabelValues(barter.GetPath(tx)).Observe(time.Since(start).Seconds())
	m.count("deliver", tx, err)
	return res, err
}

func (m Metrics) count(phase string, tx barter.Tx, err error) {
	code, _ := errors.ABCIInfo(err, false)
	m.handled.WithLabelValues(phase, barter.GetPath(tx), strconv.FormatUint(uint64(code), 10)).Inc()
}
