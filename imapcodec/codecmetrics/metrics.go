// Package codecmetrics 把 imapcodec 的解码和编码结果导出为 Prometheus 指标。
//
//	m, err := codecmetrics.New(prometheus.DefaultRegisterer)
//	if err != nil {
//		return err
//	}
//	codec, err := imapcodec.New(&imapcodec.Options{Observer: m})
package codecmetrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/luhaoyun888/go-imap-codec/imapcodec"
	"github.com/luhaoyun888/go-imap-codec/imapwire"
)

// Metrics 实现 imapcodec.Observer。它是并发安全的。
type Metrics struct {
	decoded      *prometheus.CounterVec
	decodedBytes *prometheus.HistogramVec
	encoded      *prometheus.CounterVec
	encodedBytes *prometheus.HistogramVec
}

var _ imapcodec.Observer = (*Metrics)(nil)

var sizeBuckets = prometheus.ExponentialBuckets(16, 4, 10) // 16B 到 4MiB

// New 创建指标并注册到 reg。reg 为 nil 时使用 prometheus.DefaultRegisterer。
func New(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		decoded: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "imapcodec_decode_total",
				Help: "Decode calls by message kind and outcome.",
			},
			[]string{
				"msg",     // command, response, greeting, ...
				"outcome", // parsed, incomplete, failed
			},
		),
		decodedBytes: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "imapcodec_decode_bytes",
				Help:    "Bytes consumed by successful decode calls.",
				Buckets: sizeBuckets,
			},
			[]string{"msg"},
		),
		encoded: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "imapcodec_encode_total",
				Help: "Encode calls by message kind and result.",
			},
			[]string{
				"msg",
				"result", // ok, invalid, unsupported, resource limit
			},
		),
		encodedBytes: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "imapcodec_encode_bytes",
				Help:    "Size of successfully encoded messages.",
				Buckets: sizeBuckets,
			},
			[]string{"msg"},
		),
	}

	for _, c := range []prometheus.Collector{m.decoded, m.decodedBytes, m.encoded, m.encodedBytes} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Decoded 实现 imapcodec.Observer。
func (m *Metrics) Decoded(msg string, outcome imapcodec.Outcome, consumed int) {
	m.decoded.WithLabelValues(msg, outcome.String()).Inc()
	if outcome == imapcodec.OutcomeParsed {
		m.decodedBytes.WithLabelValues(msg).Observe(float64(consumed))
	}
}

// Encoded 实现 imapcodec.Observer。
func (m *Metrics) Encoded(msg string, size int, err error) {
	result := "ok"
	if err != nil {
		result = imapwire.KindOf(err).String()
	}
	m.encoded.WithLabelValues(msg, result).Inc()
	if err == nil {
		m.encodedBytes.WithLabelValues(msg).Observe(float64(size))
	}
}
