package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mcoot/colorclaim/internal/model"
)

const namespace = "colorclaim"

// Metrics holds the Prometheus collectors for the game server.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	PlayersConnected  prometheus.Gauge
	RoomsActive       prometheus.Gauge
	PhaseTransitions  *prometheus.CounterVec
	AdmissionRejected *prometheus.CounterVec
	Verdicts          *prometheus.CounterVec
	InboundDropped    *prometheus.CounterVec
	OutboundDropped   prometheus.Counter
}

// New creates collectors registered on a fresh registry, including Go runtime collectors
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		PlayersConnected: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "players_connected",
			Help:      "Number of connected players.",
		}),
		RoomsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "rooms_active",
			Help:      "Number of game rooms, excluding the lobby.",
		}),
		PhaseTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "phase_transitions_total",
			Help:      "Room phase transitions.",
		}, []string{"from", "to"}),
		AdmissionRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "admission_rejected_total",
			Help:      "Rejected room create/join requests by reason.",
		}, []string{"reason"}),
		Verdicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "verdicts_total",
			Help:      "Scored games by winning color.",
		}, []string{"winner"}),
		InboundDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "inbound_dropped_total",
			Help:      "Inbound messages dropped before reaching the gateway.",
		}, []string{"reason"}),
		OutboundDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outbound_dropped_total",
			Help:      "Outbound messages dropped because a client buffer was full.",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.PlayersConnected,
		m.RoomsActive,
		m.PhaseTransitions,
		m.AdmissionRejected,
		m.Verdicts,
		m.InboundDropped,
		m.OutboundDropped,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// SetOccupancy records the current player and room counts
func (m *Metrics) SetOccupancy(players, rooms int) {
	if m == nil {
		return
	}
	m.PlayersConnected.Set(float64(players))
	m.RoomsActive.Set(float64(rooms))
}

// ObserveTransition counts a phase transition
func (m *Metrics) ObserveTransition(from, to model.RoomPhase) {
	if m == nil {
		return
	}
	m.PhaseTransitions.WithLabelValues(string(from), string(to)).Inc()
}

// ObserveRejection counts a rejected admission
func (m *Metrics) ObserveRejection(reason string) {
	if m == nil {
		return
	}
	m.AdmissionRejected.WithLabelValues(reason).Inc()
}

// ObserveVerdict counts a scored game
func (m *Metrics) ObserveVerdict(v model.Verdict) {
	if m == nil {
		return
	}
	winner := string(v.Winner)
	if !v.HasWinner() {
		winner = "none"
	}
	m.Verdicts.WithLabelValues(winner).Inc()
}

// ObserveInboundDrop counts an inbound message dropped by the transport
func (m *Metrics) ObserveInboundDrop(reason string) {
	if m == nil {
		return
	}
	m.InboundDropped.WithLabelValues(reason).Inc()
}

// ObserveOutboundDrop counts an outbound message dropped by the transport
func (m *Metrics) ObserveOutboundDrop() {
	if m == nil {
		return
	}
	m.OutboundDropped.Inc()
}
