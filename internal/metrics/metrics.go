// Package metrics exposes the prometheus counters, gauges, and histograms
// the core's hot paths are instrumented with.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Registry bundles every metric the actor and pipeline record against.
type Registry struct {
	MessagesSent     prometheus.Counter
	MessagesReceived prometheus.Counter
	MessagesAcked    prometheus.Counter
	MessagesExpired  prometheus.Counter
	MeshPeers        prometheus.Gauge
	DropDuration     prometheus.Histogram
}

// New registers and returns a fresh Registry on its own registry, exposed
// by the caller via promhttp.HandlerFor.
func New() (*Registry, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	r := &Registry{
		MessagesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ghostdrop_messages_sent_total",
			Help: "Ghost messages published to a recipient's inbox topic.",
		}),
		MessagesReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ghostdrop_messages_received_total",
			Help: "Ghost messages successfully decrypted from the inbox topic.",
		}),
		MessagesAcked: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ghostdrop_messages_acked_total",
			Help: "Ghost messages that received a delivery acknowledgement.",
		}),
		MessagesExpired: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ghostdrop_messages_expired_total",
			Help: "Ack table entries pruned without ever being acked.",
		}),
		MeshPeers: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ghostdrop_mesh_peers",
			Help: "Number of peers currently connected to the swarm.",
		}),
		DropDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "ghostdrop_drop_create_seconds",
			Help:    "Wall-clock duration of a dead-drop creation, end to end.",
			Buckets: prometheus.DefBuckets,
		}),
	}
	reg.MustRegister(r.MessagesSent, r.MessagesReceived, r.MessagesAcked, r.MessagesExpired, r.MeshPeers, r.DropDuration)
	return r, reg
}
