package services

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// 원격 호출 결과 라벨
const (
	outcomeOK          = "ok"
	outcomeTransport   = "transport_error"
	outcomeRemoteError = "remote_error"
	outcomeOther       = "error"
)

// Metrics는 원격 호출과 지원 세션 상태를 Prometheus로 노출합니다.
// nil *Metrics 는 아무 것도 기록하지 않습니다.
type Metrics struct {
	remoteCalls    *prometheus.CounterVec
	remoteDuration *prometheus.HistogramVec
	supportActive  prometheus.Gauge
}

// NewMetrics는 수집기를 생성하고 reg에 등록합니다.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		remoteCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "feedadmin",
			Name:      "remote_calls_total",
			Help:      "Remote API calls by client, operation and outcome.",
		}, []string{"client", "op", "outcome"}),
		remoteDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "feedadmin",
			Name:      "remote_call_duration_seconds",
			Help:      "Remote API call latency.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"client", "op"}),
		supportActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "feedadmin",
			Name:      "support_session_active",
			Help:      "1 while a support session identity exists.",
		}),
	}

	for _, c := range []prometheus.Collector{m.remoteCalls, m.remoteDuration, m.supportActive} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) observeRemote(client, op string, started time.Time, err error) {
	if m == nil {
		return
	}
	m.remoteCalls.WithLabelValues(client, op, outcomeOf(err)).Inc()
	m.remoteDuration.WithLabelValues(client, op).Observe(time.Since(started).Seconds())
}

func (m *Metrics) setSupportActive(active bool) {
	if m == nil {
		return
	}
	if active {
		m.supportActive.Set(1)
		return
	}
	m.supportActive.Set(0)
}

func outcomeOf(err error) string {
	if err == nil {
		return outcomeOK
	}
	var transport *TransportError
	if errors.As(err, &transport) {
		return outcomeTransport
	}
	var remote *RemoteApplicationError
	if errors.As(err, &remote) {
		return outcomeRemoteError
	}
	return outcomeOther
}
