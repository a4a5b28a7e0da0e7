// Copyright 2025 Arcentra Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package metrics exposes a ring buffer's producer cursor, gating
// sequence, and backlog as Prometheus gauges over a bare HTTP /metrics
// endpoint.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/wire"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ProviderSet is the Wire provider set for the metrics package.
var ProviderSet = wire.NewSet(NewMetricsServer)

// MetricsConfig configures the metrics HTTP listener.
type MetricsConfig struct {
	// Addr is the listen address for the /metrics endpoint, e.g. ":9090".
	Addr string
	// Path is the path the registry is served on. Defaults to /metrics.
	Path string
}

// SetDefaults fills in an empty MetricsConfig with working defaults.
func (c *MetricsConfig) SetDefaults() {
	if c.Addr == "" {
		c.Addr = ":9090"
	}
	if c.Path == "" {
		c.Path = "/metrics"
	}
}

// RingSource reports the gauges a Server samples on every scrape. A
// RingBuffer[T] implements this directly (GetCursorValue/GetMinimumGatingValue
// both return *Sequence-backed int64 reads, and GetBufferSize is
// static), so callers typically pass their ring buffer itself.
type RingSource interface {
	GetCursorValue() int64
	GetMinimumGatingValue() int64
	GetBufferSize() int64
}

// Server owns a Prometheus registry wired to a RingSource and serves it
// over HTTP. Grounded on the teacher's provider.go shape
// (MetricsConfig -> NewServer -> ProviderSet), reimplemented directly
// against prometheus/client_golang since the teacher's own Server,
// GetSink, and middleware.RegisterHttpMetrics symbols depend on packages
// outside the retrieval pack.
type Server struct {
	config   MetricsConfig
	registry *prometheus.Registry
	httpSrv  *http.Server

	cursor  prometheus.GaugeFunc
	gating  prometheus.GaugeFunc
	backlog prometheus.GaugeFunc
}

// NewServer builds a Server that samples source's gauges lazily on every
// Prometheus scrape; it does not start listening until Start is called.
func NewServer(config MetricsConfig, source RingSource) *Server {
	config.SetDefaults()
	registry := prometheus.NewRegistry()

	s := &Server{config: config, registry: registry}

	s.cursor = prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "ringway_producer_cursor",
		Help: "Producer cursor: highest sequence published (single producer) or claimed (multiple producers).",
	}, func() float64 { return float64(source.GetCursorValue()) })

	s.gating = prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "ringway_gating_sequence",
		Help: "Lowest sequence among the ring buffer's registered consumer gating sequences.",
	}, func() float64 { return float64(source.GetMinimumGatingValue()) })

	s.backlog = prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "ringway_consumer_backlog",
		Help: "Producer cursor minus the minimum gating sequence: events up to the cursor that the slowest consumer has not yet consumed.",
	}, func() float64 { return float64(source.GetCursorValue() - source.GetMinimumGatingValue()) })

	registry.MustRegister(s.cursor, s.gating, s.backlog)
	return s
}

// NewMetricsServer is the Wire-facing constructor; it builds and starts
// the HTTP listener in the background, matching the teacher's
// NewMetricsServer doing both construction and wiring in one call.
func NewMetricsServer(config MetricsConfig, source RingSource) (*Server, error) {
	server := NewServer(config, source)
	if err := server.Start(); err != nil {
		return nil, err
	}
	return server, nil
}

// Start begins serving the registry over HTTP in the background. Start
// returns once the listener is bound, or with an error if it couldn't
// bind; any error from the HTTP server itself after that point is not
// surfaced, matching a fire-and-forget metrics sidecar.
func (s *Server) Start() error {
	mux := http.NewServeMux()
	mux.Handle(s.config.Path, promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	s.httpSrv = &http.Server{Addr: s.config.Addr, Handler: mux}

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("metrics server failed to start: %w", err)
	case <-time.After(50 * time.Millisecond):
		return nil
	}
}

// Shutdown gracefully stops the HTTP listener.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	err := s.httpSrv.Shutdown(ctx)
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
