package fec

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Telemetry exports the engine's operational counters via Prometheus,
// registered against a private registry rather than the global default
// one, grounded on client/prometheus_exporter.go's
// NewAdvancedPrometheusExporterWithRegistry pattern.
type Telemetry struct {
	encodedPackets  prometheus.Counter
	decodedPackets  prometheus.Counter
	fecMode         *prometheus.GaugeVec
	fecWindow       prometheus.Gauge
	modeSwitches    prometheus.Counter
	lossRatePermille prometheus.Gauge
	decodingTime    prometheus.Histogram
	wiedemannUsage  prometheus.Counter
	poolInUse       prometheus.Gauge
	poolCapacity    prometheus.Gauge
	poolUsageBytes  prometheus.Gauge
	overflows       prometheus.Counter
	duplicatePkts   prometheus.Counter

	currentMode string
}

// NewTelemetry registers all engine counters against reg and returns a
// handle for updating them.
func NewTelemetry(reg prometheus.Registerer) *Telemetry {
	factory := promauto.With(reg)
	return &Telemetry{
		encodedPackets: factory.NewCounter(prometheus.CounterOpts{
			Name: "fec_encoded_packets_total",
			Help: "Total repair and systematic packets encoded.",
		}),
		decodedPackets: factory.NewCounter(prometheus.CounterOpts{
			Name: "fec_decoded_packets_total",
			Help: "Total systematic packets reconstructed by decode.",
		}),
		fecMode: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "fec_mode",
			Help: "Current FEC mode (1 when active, labeled by mode name).",
		}, []string{"mode"}),
		fecWindow: factory.NewGauge(prometheus.GaugeOpts{
			Name: "fec_window",
			Help: "Current source window size.",
		}),
		modeSwitches: factory.NewCounter(prometheus.CounterOpts{
			Name: "fec_mode_switches_total",
			Help: "Total mode transitions.",
		}),
		lossRatePermille: factory.NewGauge(prometheus.GaugeOpts{
			Name: "fec_loss_rate_permille",
			Help: "Estimated loss rate in parts per thousand.",
		}),
		decodingTime: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "fec_decoding_time_ms",
			Help:    "Time spent in decode attempts, in milliseconds.",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 25, 50, 100, 250, 500},
		}),
		wiedemannUsage: factory.NewCounter(prometheus.CounterOpts{
			Name: "fec_wiedemann_usage_total",
			Help: "Total decode attempts that used the Wiedemann path.",
		}),
		poolInUse: factory.NewGauge(prometheus.GaugeOpts{
			Name: "fec_mem_pool_in_use",
			Help: "Buffers currently checked out of the memory pool.",
		}),
		poolCapacity: factory.NewGauge(prometheus.GaugeOpts{
			Name: "fec_mem_pool_capacity",
			Help: "Total buffers owned by the memory pool.",
		}),
		poolUsageBytes: factory.NewGauge(prometheus.GaugeOpts{
			Name: "fec_mem_pool_usage_bytes",
			Help: "Bytes currently owned by the memory pool.",
		}),
		overflows: factory.NewCounter(prometheus.CounterOpts{
			Name: "fec_overflows_total",
			Help: "Total pool growth events triggered by exhaustion.",
		}),
		duplicatePkts: factory.NewCounter(prometheus.CounterOpts{
			Name: "fec_duplicate_systematic_total",
			Help: "Total duplicate systematic packets silently dropped.",
		}),
	}
}

func (t *Telemetry) IncEncoded() { t.encodedPackets.Inc() }
func (t *Telemetry) IncDecoded() { t.decodedPackets.Inc() }

func (t *Telemetry) SetMode(mode string) {
	if t.currentMode != "" {
		t.fecMode.WithLabelValues(t.currentMode).Set(0)
	}
	t.fecMode.WithLabelValues(mode).Set(1)
	t.currentMode = mode
}

func (t *Telemetry) SetWindow(w int)                 { t.fecWindow.Set(float64(w)) }
func (t *Telemetry) IncModeSwitch()                  { t.modeSwitches.Inc() }
func (t *Telemetry) SetLossRatePermille(v float64)   { t.lossRatePermille.Set(v) }
func (t *Telemetry) ObserveDecodingTime(d time.Duration) {
	t.decodingTime.Observe(float64(d.Microseconds()) / 1000.0)
}
func (t *Telemetry) IncWiedemannUsage()    { t.wiedemannUsage.Inc() }
func (t *Telemetry) IncOverflow()          { t.overflows.Inc() }
func (t *Telemetry) IncDuplicateSystematic() { t.duplicatePkts.Inc() }

// SyncPool copies the pool's live counters into their gauges.
func (t *Telemetry) SyncPool(p *Pool) {
	t.poolInUse.Set(float64(p.InUse()))
	t.poolCapacity.Set(float64(p.Capacity()))
	t.poolUsageBytes.Set(float64(p.Capacity() * p.BlockSize()))
}
