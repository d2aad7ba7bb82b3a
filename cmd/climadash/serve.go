package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spektr-org/climadash/dataset"
	"github.com/spektr-org/climadash/server"
	"github.com/spektr-org/climadash/tracing"
)

func newServeCmd(a *app) *cobra.Command {
	var (
		addr  string
		watch bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("addr") {
				a.cfg.Server.Addr = addr
			}
			if cmd.Flags().Changed("watch") {
				a.cfg.Data.Watch = watch
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	cmd.Flags().BoolVar(&watch, "watch", false, "reload the CSV when it changes on disk")
	return cmd
}

func (a *app) serve(ctx context.Context) error {
	cfg := a.cfg

	shutdownTracing, err := tracing.Setup(cfg.Tracing, version, os.Stderr)
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			a.logger.Warn("tracing shutdown", zap.Error(err))
		}
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := server.NewMetrics(reg)

	store, err := dataset.Open(cfg.Data.Path, a.schema,
		dataset.WithLogger(a.logger.Named("dataset")),
		dataset.WithReloadHook(metrics.ReloadHook()))
	if err != nil {
		return err
	}

	opts := []server.Option{
		server.WithLogger(a.logger.Named("http")),
		server.WithRegistry(reg),
		server.WithMetrics(metrics),
		server.WithExportLimit(cfg.Server.ExportPerMinute),
	}
	if cfg.Tracing.Enabled {
		opts = append(opts, server.WithTracing(cfg.Tracing.ServiceName))
	}
	srv := server.New(store, a.schema, opts...)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Run(gctx, cfg.Server) })
	if cfg.Data.Watch {
		g.Go(func() error { return store.Watch(gctx) })
	}

	err = g.Wait()
	a.logger.Info("stopped", zap.Error(err))
	return err
}
