// Command nodeflow is an interactive shell over a node graph registry. It can
// expose Prometheus metrics, health checks and a read-only GraphQL endpoint
// while the shell runs.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dd0wney/cluso-nodeflow/pkg/config"
	"github.com/dd0wney/cluso-nodeflow/pkg/constraints"
	"github.com/dd0wney/cluso-nodeflow/pkg/graph"
	"github.com/dd0wney/cluso-nodeflow/pkg/graphql"
	"github.com/dd0wney/cluso-nodeflow/pkg/health"
	"github.com/dd0wney/cluso-nodeflow/pkg/logging"
	"github.com/dd0wney/cluso-nodeflow/pkg/metrics"
	"github.com/dd0wney/cluso-nodeflow/pkg/pubsub"
	"github.com/dd0wney/cluso-nodeflow/pkg/server"
	"github.com/dd0wney/cluso-nodeflow/pkg/tags"
)

func main() {
	configPath := flag.String("config", "", "YAML configuration file")
	metricsAddr := flag.String("metrics-addr", "", "serve /metrics, /healthz and /readyz on this address")
	graphqlAddr := flag.String("graphql-addr", "", "serve /graphql on this address")
	flag.Parse()

	cfg, err := loadConfig(*configPath, *metricsAddr, *graphqlAddr)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, *configPath, os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads path (if set) and applies the address flags on top.
func loadConfig(path, metricsAddr, graphqlAddr string) (*config.Config, error) {
	cfg := config.Default()
	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if metricsAddr != "" {
		cfg.Metrics.Enabled = true
		cfg.Metrics.Addr = metricsAddr
	}
	if graphqlAddr != "" {
		cfg.GraphQL.Addr = graphqlAddr
	}
	return cfg, cfg.Validate()
}

// session holds everything one shell run wires together.
type session struct {
	logger  logging.Logger
	metrics *metrics.Registry
	tags    *tags.Registry
	apply   *tags.Applicator
	moves   *pubsub.Broker[graph.MoveEvent]
	graph   *graph.Registry
}

func newSession(cfg *config.Config, logOut io.Writer) (*session, error) {
	logger := logging.New(cfg.Log.Format, logOut, cfg.LogLevel())
	m := metrics.NewRegistry()

	tr := tags.NewRegistry(cfg.Tags.Capacity, tags.WithMetrics(m))
	apply := tags.NewApplicator(tr)
	keys := make([]tags.Key, 0, len(cfg.Tags.Names))
	for _, name := range cfg.Tags.Names {
		keys = append(keys, tags.NameKey(name))
	}
	if err := apply.Register(keys...); err != nil {
		return nil, fmt.Errorf("register tags: %w", err)
	}

	moves := pubsub.NewBroker[graph.MoveEvent](0)
	return &session{
		logger:  logger,
		metrics: m,
		tags:    tr,
		apply:   apply,
		moves:   moves,
		graph: graph.NewRegistry(
			graph.WithLogger(logger.With(logging.Component("graph"))),
			graph.WithMetrics(m),
			graph.WithGeometryListener(graph.GeometryListenerFunc(moves.Publish)),
		),
	}, nil
}

// logMoves reports refresh events at debug level until ctx is done.
func (s *session) logMoves(ctx context.Context) {
	sub, err := s.moves.Subscribe(ctx)
	if err != nil {
		return
	}
	logger := s.logger.With(logging.Component("view"))
	for ev := range sub.Channel() {
		logger.Debug("connection moved",
			logging.String("port", ev.Port.String()),
			logging.Bool("sink_side", ev.SinkSide),
			logging.String("position_from", ev.PositionFrom.String()),
			logging.String("bounds_from", ev.BoundsFrom.String()))
	}
}

// endpoints groups the inspection handlers by listen address, so metrics and
// GraphQL can share one port.
func (s *session) endpoints(cfg *config.Config) (map[string]server.Endpoints, error) {
	byAddr := make(map[string]server.Endpoints)

	if cfg.Metrics.Enabled {
		hc := health.NewHealthChecker()
		hc.RegisterCheck("graph", health.GraphCheck(s.graph, constraints.NewDefaultValidator()))
		hc.RegisterCheck("tags", health.TagCapacityCheck(s.tags))
		hc.RegisterReadinessCheck("graph", health.GraphCheck(s.graph, constraints.NewDefaultValidator()))

		e := byAddr[cfg.Metrics.Addr]
		e.Metrics = s.metrics
		e.Health = hc
		byAddr[cfg.Metrics.Addr] = e
	}

	if cfg.GraphQL.Addr != "" {
		schema, err := graphql.GenerateSchema(s.graph, s.tags)
		if err != nil {
			return nil, err
		}
		e := byAddr[cfg.GraphQL.Addr]
		e.GraphQL = graphql.NewGraphQLHandler(schema,
			graphql.WithTimeout(cfg.GraphQL.ReadTimeout),
			graphql.WithLogger(s.logger.With(logging.Component("graphql"))),
			graphql.WithMetrics(s.metrics),
		)
		byAddr[cfg.GraphQL.Addr] = e
	}

	return byAddr, nil
}

func run(ctx context.Context, cfg *config.Config, configPath string, in io.Reader, out, logOut io.Writer) error {
	s, err := newSession(cfg, logOut)
	if err != nil {
		return err
	}

	byAddr, err := s.endpoints(cfg)
	if err != nil {
		return err
	}

	defer s.moves.Shutdown()
	go s.logMoves(ctx)

	var servers []*server.GracefulServer
	for addr, e := range byAddr {
		gs := server.NewGracefulServer(addr, server.NewMux(e), s.logger, cfg.GraphQL.ReadTimeout)
		gs.SetConfigReloadFunc(func() error {
			if configPath == "" {
				return nil
			}
			reloaded, err := config.Load(configPath)
			if err != nil {
				return err
			}
			s.logger.SetLevel(reloaded.LogLevel())
			return nil
		})
		go func() {
			if err := gs.Start(); err != nil {
				s.logger.Error("inspection server failed", logging.String("addr", addr), logging.Error(err))
			}
		}()
		go gs.WatchSignals(ctx)
		servers = append(servers, gs)
	}
	defer func() {
		for _, gs := range servers {
			_ = gs.Shutdown(5 * time.Second)
		}
	}()

	if cfg.Metrics.Enabled {
		go reportSystemMetrics(ctx, s.metrics)
	}

	shell := NewShell(s.graph, s.tags, s.apply, out)
	fmt.Fprintln(out, shell.style.title.Render("nodeflow")+" "+shell.style.dim.Render("type 'help' for commands, 'exit' to quit"))

	done := make(chan error, 1)
	go func() { done <- shell.Run(in) }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		fmt.Fprintln(out)
		return nil
	}
}

func reportSystemMetrics(ctx context.Context, m *metrics.Registry) {
	start := time.Now()
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()
	for {
		m.UpdateSystemMetrics(start)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
