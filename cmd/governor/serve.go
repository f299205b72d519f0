package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"mercator-hq/governor/pkg/cli"
	"mercator-hq/governor/pkg/config"
	"mercator-hq/governor/pkg/governance/eventlog"
	"mercator-hq/governor/pkg/hookfactory"
	"mercator-hq/governor/pkg/hooks"
	"mercator-hq/governor/pkg/server"
	"mercator-hq/governor/pkg/telemetry"
)

var serveFlags struct {
	listenAddress string
	logLevel      string
	watch         bool
	dryRun        bool
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the governance hook API",
	Long: `Serve the governance hook API over HTTP.

Each session gets its own governance engine. Sessions share the rule
registry, the adversarial detector and the event log. With --watch the
configuration file is reloaded on change and new sessions pick up the
reloaded governance settings.

Examples:
  # Serve with built-in defaults
  governor serve

  # Serve with a config file and hot reload
  governor serve --config /etc/governor/config.yaml --watch

  # Validate the configuration without serving
  governor serve --config governor.yaml --dry-run`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVarP(&serveFlags.listenAddress, "listen", "l", "", "override listen address")
	serveCmd.Flags().StringVar(&serveFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	serveCmd.Flags().BoolVar(&serveFlags.watch, "watch", false, "reload the config file when it changes")
	serveCmd.Flags().BoolVar(&serveFlags.dryRun, "dry-run", false, "validate config without serving")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if serveFlags.listenAddress != "" {
		cfg.Server.ListenAddress = serveFlags.listenAddress
	}
	if serveFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = serveFlags.logLevel
	}
	config.SetConfig(cfg)

	if serveFlags.dryRun {
		fmt.Fprintln(cmd.OutOrStdout(), "✓ Configuration valid")
		return nil
	}

	tel, err := telemetry.New(&cfg.Telemetry, Version, cmd.ErrOrStderr())
	if err != nil {
		return cli.NewCommandError("serve", err)
	}
	defer func() {
		if err := tel.Shutdown(context.Background()); err != nil {
			slog.Warn("telemetry shutdown failed", "error", err)
		}
	}()
	logger := tel.Logger()

	factory, err := hookfactory.New(cfg, tel.Metrics())
	if err != nil {
		return cli.NewCommandError("serve", err)
	}
	defer func() {
		if err := factory.Close(); err != nil {
			logger.Warn("failed to close event log", "error", err)
		}
	}()
	factory.RegisterHealthChecks(tel.Health())

	sessions := hooks.NewSessions(factory.NewSession,
		hooks.WithActiveCallback(tel.Metrics().SetActiveSessions))
	defer func() {
		if err := sessions.CloseAll(); err != nil {
			logger.Warn("sessions closed with errors", "error", err)
		}
	}()

	srv := server.New(cfg, sessions, tel)

	ctx, stop := cli.SignalContext(cmd.Context())
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Start(gctx)
	})

	if serveFlags.watch && cfgFile != "" {
		watcher := config.NewWatcher(cfgFile, func(reloaded *config.Config) {
			if err := factory.Apply(reloaded); err != nil {
				logger.Error("rejected reloaded governance settings", "error", err)
			}
		}, logger)
		g.Go(func() error {
			return watcher.Watch(gctx)
		})
	}

	if scheduler := retentionScheduler(cfg, factory.Sink()); scheduler != nil {
		scheduler.OnPrune(tel.Metrics().RecordRetentionPrune)
		if err := scheduler.Start(gctx); err != nil {
			stop()
			_ = g.Wait()
			return cli.NewCommandError("serve", err)
		}
		defer scheduler.Stop()
	}

	logger.Info("governor serving",
		"version", Version,
		"listen_address", cfg.Server.ListenAddress,
		"event_log", cfg.EventLog.Backend,
		"watch", serveFlags.watch,
	)

	if err := g.Wait(); err != nil {
		return cli.NewCommandError("serve", err)
	}
	return nil
}

// retentionScheduler returns a scheduler for sinks that support pruning, or
// nil when retention is off or the backend cannot delete events.
func retentionScheduler(cfg *config.Config, sink eventlog.Sink) *eventlog.Scheduler {
	retention := cfg.EventLog.Retention
	if retention.Days <= 0 || retention.PruneSchedule == "" {
		return nil
	}
	store, ok := sink.(eventlog.Store)
	if !ok {
		slog.Warn("event log backend does not support retention", "backend", cfg.EventLog.Backend)
		return nil
	}
	return eventlog.NewScheduler(eventlog.NewPruner(store, retention.Days), retention.PruneSchedule)
}
