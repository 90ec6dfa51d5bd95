package observability

import (
	"errors"
	"sync"

	"github.com/danmuck/obsidian/internal/protocol/wire"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	codecOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "obsidian",
			Subsystem: "codec",
			Name:      "operations_total",
			Help:      "Pack and unpack calls by outcome.",
		},
		[]string{"codec", "op", "result"},
	)
	codecBytes = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "obsidian",
			Subsystem: "codec",
			Name:      "message_bytes",
			Help:      "Bytes written by successful packs and consumed by successful unpacks.",
			Buckets:   prometheus.ExponentialBuckets(8, 4, 8),
		},
		[]string{"codec", "op"},
	)
)

// RegisterMetrics registers the codec collectors with the default registry.
func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(codecOperations, codecBytes)
	})
}

// CodecObserver records wire codec outcomes under a codec name.
type CodecObserver struct {
	name string
}

var _ wire.Observer = CodecObserver{}

func NewCodecObserver(name string) CodecObserver {
	RegisterMetrics()
	return CodecObserver{name: name}
}

func (o CodecObserver) ObservePack(n int, err error) {
	record(o.name, "pack", n, err)
}

func (o CodecObserver) ObserveUnpack(n int, err error) {
	record(o.name, "unpack", n, err)
}

func record(name, op string, n int, err error) {
	codecOperations.WithLabelValues(name, op, ResultLabel(err)).Inc()
	if err == nil {
		codecBytes.WithLabelValues(name, op).Observe(float64(n))
	}
}

// ResultLabel maps a codec error to a bounded label value.
func ResultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, wire.ErrCapacityExceeded):
		return "capacity_exceeded"
	case errors.Is(err, wire.ErrTruncatedInput):
		return "truncated_input"
	case errors.Is(err, wire.ErrVarintOverflow):
		return "varint_overflow"
	case errors.Is(err, wire.ErrInvalidDescriptor):
		return "invalid_descriptor"
	case errors.Is(err, wire.ErrInvalidBoolEncoding):
		return "invalid_bool"
	case errors.Is(err, wire.ErrInvalidArgument), errors.Is(err, wire.ErrInvalidWidth):
		return "invalid_argument"
	default:
		return "error"
	}
}
