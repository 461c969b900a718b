package telemetry

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/badrkarrachai/WanaShip-Backend/internal/infra/config"
)

// Provider represents a telemetry provider handle.
type Provider struct {
	requestCounter prometheus.Counter
	parcelCounter  *prometheus.CounterVec
}

// Attach configures telemetry exporters and returns a provider handle.
func Attach(_ context.Context, cfg *config.AppConfig) (*Provider, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	requestCounter := promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "wanaship",
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests",
	})

	parcelCounter := promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "wanaship",
		Name:      "parcel_transitions_total",
		Help:      "Total number of parcel status transitions",
	}, []string{"status"})

	return &Provider{
		requestCounter: requestCounter,
		parcelCounter:  parcelCounter,
	}, nil
}

// RequestCounter exposes the HTTP request metric.
func (p *Provider) RequestCounter() prometheus.Counter {
	if p == nil {
		return prometheus.NewCounter(prometheus.CounterOpts{})
	}
	return p.requestCounter
}

// ParcelTransition records a parcel moving into the given status.
func (p *Provider) ParcelTransition(status string) {
	if p == nil {
		return
	}
	p.parcelCounter.WithLabelValues(status).Inc()
}
