package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/jonwraymond/ensemblops/observe"
	"github.com/jonwraymond/ensemblops/upstream"
)

// runtime is the wired access layer for one command invocation.
type runtime struct {
	observer observe.Observer
	logger   observe.Logger
	client   *upstream.Client
	registry *prometheus.Registry
}

func (c *CLI) newRuntime(ctx context.Context) (*runtime, error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	obsCfg := c.cfg.ObserveConfig()
	obsCfg.Logging.Writer = c.err
	obsCfg.Metrics.Registerer = registry

	obs, err := observe.NewObserver(ctx, obsCfg)
	if err != nil {
		return nil, fmt.Errorf("observability: %w", err)
	}
	metrics, err := observe.NewMetrics(obs.Meter())
	if err != nil {
		_ = obs.Shutdown(ctx)
		return nil, fmt.Errorf("metrics: %w", err)
	}

	clientCfg := c.cfg.ClientConfig()
	clientCfg.Logger = obs.Logger()
	clientCfg.Metrics = metrics
	clientCfg.Tracer = observe.NewTracer(obs.Tracer())

	client, err := upstream.New(clientCfg)
	if err != nil {
		_ = obs.Shutdown(ctx)
		return nil, err
	}

	return &runtime{observer: obs, logger: obs.Logger(), client: client, registry: registry}, nil
}

// close flushes telemetry. It uses a context that outlives cancellation so
// an interrupted command still exports its spans.
func (r *runtime) close(ctx context.Context) error {
	err := r.observer.Shutdown(context.WithoutCancel(ctx))
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
