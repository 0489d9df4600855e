package prom

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/discordshim/discordshim/observability"
)

// NewRegistry returns a fresh Prometheus registry.
func NewRegistry() *prometheus.Registry {
	return prometheus.NewRegistry()
}

// Handler returns a Prometheus HTTP handler bound to the registry.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

// BridgeObserver exports bridge metrics to Prometheus.
type BridgeObserver struct {
	connGauge           prometheus.Gauge
	framesTotal         *prometheus.CounterVec
	frameBytesTotal     *prometheus.CounterVec
	dispatchTotal       *prometheus.CounterVec
	broadcastTotal      *prometheus.CounterVec
	broadcastRecipients prometheus.Histogram
	closeTotal          *prometheus.CounterVec
	presenceTotal       *prometheus.CounterVec
}

// NewBridgeObserver registers bridge metrics on the registry.
func NewBridgeObserver(reg *prometheus.Registry) *BridgeObserver {
	o := &BridgeObserver{
		connGauge: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "discordshim_connections",
			Help: "Current connected instance count.",
		}),
		framesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "discordshim_frames_total",
			Help: "Frames moved over instance connections by direction.",
		}, []string{"direction"}),
		frameBytesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "discordshim_frame_bytes_total",
			Help: "Frame payload bytes moved by direction.",
		}, []string{"direction"}),
		dispatchTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "discordshim_dispatch_total",
			Help: "Downstream frame dispatch outcomes by kind.",
		}, []string{"kind", "result"}),
		broadcastTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "discordshim_broadcast_total",
			Help: "Upstream broadcasts by kind.",
		}, []string{"kind"}),
		broadcastRecipients: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "discordshim_broadcast_recipients",
			Help:    "Instances reached per upstream broadcast.",
			Buckets: []float64{0, 1, 2, 5, 10, 25, 50, 100},
		}),
		closeTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "discordshim_close_total",
			Help: "Instance connection close reasons.",
		}, []string{"reason"}),
		presenceTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "discordshim_presence_updates_total",
			Help: "Aggregate presence update outcomes.",
		}, []string{"result"}),
	}
	reg.MustRegister(
		o.connGauge,
		o.framesTotal,
		o.frameBytesTotal,
		o.dispatchTotal,
		o.broadcastTotal,
		o.broadcastRecipients,
		o.closeTotal,
		o.presenceTotal,
	)
	return o
}

func (o *BridgeObserver) ConnCount(n int64) {
	o.connGauge.Set(float64(n))
}

func (o *BridgeObserver) Frame(direction observability.FrameDirection, bytes int) {
	o.framesTotal.WithLabelValues(string(direction)).Inc()
	o.frameBytesTotal.WithLabelValues(string(direction)).Add(float64(bytes))
}

func (o *BridgeObserver) Dispatch(kind observability.DispatchKind, result observability.DispatchResult) {
	o.dispatchTotal.WithLabelValues(string(kind), string(result)).Inc()
}

func (o *BridgeObserver) Broadcast(kind observability.BroadcastKind, recipients int) {
	o.broadcastTotal.WithLabelValues(string(kind)).Inc()
	o.broadcastRecipients.Observe(float64(recipients))
}

func (o *BridgeObserver) Close(reason observability.CloseReason) {
	o.closeTotal.WithLabelValues(string(reason)).Inc()
}

func (o *BridgeObserver) Presence(result observability.PresenceResult) {
	o.presenceTotal.WithLabelValues(string(result)).Inc()
}
