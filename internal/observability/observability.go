// Package observability bundles the logger, metrics registry and tracer that
// get threaded through every module.
package observability

import (
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

type Observability struct {
	Logger   *slog.Logger
	Registry *prometheus.Registry
	Metrics  *Metrics
	Tracer   trace.Tracer
}

// New builds the shared observability bundle. Production gets JSON logs;
// anything else gets human-readable text. The tracer comes from the global
// otel provider, so it is a no-op unless an SDK is installed by the operator.
func New(environment string) *Observability {
	var handler slog.Handler
	if environment == "production" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	}
	logger := slog.New(handler)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &Observability{
		Logger:   logger,
		Registry: registry,
		Metrics:  NewMetrics(registry),
		Tracer:   otel.Tracer("advent-bot"),
	}
}
