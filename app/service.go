package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/kilianp07/powerfleet/api/schedule"
	"github.com/kilianp07/powerfleet/config"
	"github.com/kilianp07/powerfleet/core/factory"
	coremetrics "github.com/kilianp07/powerfleet/core/metrics"
	coremon "github.com/kilianp07/powerfleet/core/monitoring"
	"github.com/kilianp07/powerfleet/core/planlog"
	"github.com/kilianp07/powerfleet/core/planner"
	"github.com/kilianp07/powerfleet/core/routing"
	"github.com/kilianp07/powerfleet/infra/logger"
	"github.com/kilianp07/powerfleet/infra/metrics"
	"github.com/kilianp07/powerfleet/infra/monitoring"
	"github.com/kilianp07/powerfleet/infra/mqtt"
	_ "github.com/kilianp07/powerfleet/infra/routing"
	"github.com/kilianp07/powerfleet/internal/eventbus"
)

// Service wires the planner to its provider, sinks, plan log, MQTT publisher
// and HTTP API.
type Service struct {
	Planner *planner.Planner

	cfg       *config.Config
	bus       eventbus.EventBus
	log       logger.Logger
	sink      coremetrics.MetricsSink
	store     planlog.Store
	monitor   coremon.Monitor
	publisher *mqtt.PahoClient
	handler   http.Handler
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")

	provider, err := routing.NewProvider(cfg.Routing.Provider)
	if err != nil {
		return nil, fmt.Errorf("routing provider: %w", err)
	}
	sink, err := coremetrics.NewMetricsSink(sinkConfigs(cfg.Metrics))
	if err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}
	monitor, err := monitoring.NewSentryMonitor(cfg.Sentry)
	if err != nil {
		return nil, fmt.Errorf("monitoring: %w", err)
	}
	store, err := planlog.Open(cfg.PlanLog.Options())
	if err != nil {
		return nil, fmt.Errorf("plan log: %w", err)
	}

	bus := eventbus.New()
	p, err := planner.New(provider, cfg.Routing.Concurrency, cfg.Search, sink, bus, logger.New("planner"))
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("planner: %w", err)
	}
	p.SetLogStore(store)
	p.SetMonitor(monitor)

	svc := &Service{Planner: p, cfg: cfg, bus: bus, log: logg, sink: sink, store: store, monitor: monitor}
	if cfg.MQTT.Enabled {
		client, err := mqtt.NewPahoClient(cfg.MQTT, logger.New("mqtt_client"))
		if err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("mqtt client: %w", err)
		}
		svc.publisher = client
	}

	mux := http.NewServeMux()
	schedule.Register(mux, p, cfg.Server.Token, logger.New("api"))
	svc.handler = mux
	logg.Infof("service configured: provider=%s sinks=%d plan_log=%s mqtt=%t",
		cfg.Routing.Provider.Type, len(cfg.Metrics.Sinks), cfg.PlanLog.Backend, cfg.MQTT.Enabled)
	return svc, nil
}

// sinkConfigs adds the prometheus sink when the endpoint is enabled but no
// sink of that type is listed.
func sinkConfigs(c coremetrics.Config) []factory.ModuleConfig {
	out := append([]factory.ModuleConfig(nil), c.Sinks...)
	if !c.PrometheusEnabled {
		return out
	}
	for _, s := range out {
		if s.Type == "prometheus" {
			return out
		}
	}
	return append(out, factory.ModuleConfig{Type: "prometheus"})
}

// Handler returns the HTTP API.
func (s *Service) Handler() http.Handler { return s.handler }

// Run serves the API on ln, or on the configured address when ln is nil, and
// blocks until the context is cancelled.
func (s *Service) Run(ctx context.Context, ln net.Listener) error {
	metrics.StartEventCollector(ctx, s.bus, s.sink)
	if s.publisher != nil {
		mqtt.StartRoutePublisher(ctx, s.bus, s.publisher, s.log)
	}
	if s.cfg.Metrics.PrometheusEnabled {
		go func() {
			if err := metrics.StartPromServer(ctx, s.cfg.Metrics.PrometheusAddress); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}

	if ln == nil {
		var err error
		if ln, err = net.Listen("tcp", s.cfg.Server.Address); err != nil {
			return fmt.Errorf("listen %s: %w", s.cfg.Server.Address, err)
		}
	}
	srv := &http.Server{Handler: s.handler, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.log.Errorf("http server shutdown: %v", err)
		}
	}()
	s.log.Infof("listening on %s", ln.Addr())
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	if s.publisher != nil {
		s.publisher.Disconnect()
	}
	s.bus.Close()
	monitoring.Close(s.monitor, 2*time.Second)
	if c, ok := s.sink.(interface{ Close() }); ok {
		c.Close()
	}
	return s.store.Close()
}
