package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"mercator-hq/governor/pkg/cli"
	"mercator-hq/governor/pkg/config"
	"mercator-hq/governor/pkg/governance/eventlog"
	"mercator-hq/governor/pkg/hookfactory"
)

var eventsFlags struct {
	session string
	typ     string
	since   time.Duration
	limit   int
	days    int
}

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Query and prune the governance event log",
}

var eventsQueryCmd = &cobra.Command{
	Use:   "query",
	Short: "Query governance events",
	Long: `Query governance events, oldest first.

The sqlite and file backends can be queried. The memory backend only lives
inside a running server.

Examples:
  governor events query --session support-42
  governor events query --type RULE_VIOLATION --since 24h
  governor events query --limit 20 -o json`,
	Args: cobra.NoArgs,
	RunE: runEventsQuery,
}

var eventsPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete events older than the retention window",
	Long: `Delete events older than the retention window. --days overrides
event_log.retention.days. Only the sqlite backend supports pruning.

Examples:
  governor events prune
  governor events prune --days 30`,
	Args: cobra.NoArgs,
	RunE: runEventsPrune,
}

func init() {
	rootCmd.AddCommand(eventsCmd)
	eventsCmd.AddCommand(eventsQueryCmd, eventsPruneCmd)

	eventsQueryCmd.Flags().StringVarP(&eventsFlags.session, "session", "s", "", "only events of this session")
	eventsQueryCmd.Flags().StringVarP(&eventsFlags.typ, "type", "t", "", "only events of this type (e.g. RULE_VIOLATION)")
	eventsQueryCmd.Flags().DurationVar(&eventsFlags.since, "since", 0, "only events newer than this duration")
	eventsQueryCmd.Flags().IntVarP(&eventsFlags.limit, "limit", "n", 100, "maximum number of events (0 for no limit)")

	eventsPruneCmd.Flags().IntVar(&eventsFlags.days, "days", 0, "retention window in days")
}

func runEventsQuery(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := setupCommandLogging(cfg, cmd.ErrOrStderr()); err != nil {
		return err
	}

	filter := eventlog.Filter{
		SessionID: eventsFlags.session,
		Type:      eventlog.Type(strings.ToUpper(eventsFlags.typ)),
		Limit:     eventsFlags.limit,
	}
	if eventsFlags.since > 0 {
		filter.Since = time.Now().Add(-eventsFlags.since)
	}

	events, err := queryEvents(cmd.Context(), cfg, filter, cmd.ErrOrStderr())
	if err != nil {
		return cli.NewCommandError("events query", err)
	}

	table := &cli.Table{Headers: []string{"timestamp", "session", "cycle", "type", "drift", "description"}}
	for _, e := range events {
		table.Rows = append(table.Rows, []string{
			e.Timestamp.Format(time.RFC3339),
			e.SessionID,
			strconv.Itoa(e.Cycle),
			string(e.Type),
			strconv.FormatFloat(e.DriftScore, 'f', 2, 64),
			e.Description,
		})
	}
	return render(cmd, table)
}

func queryEvents(ctx context.Context, cfg *config.Config, filter eventlog.Filter, warn io.Writer) ([]eventlog.Event, error) {
	if cfg.EventLog.Backend == eventlog.BackendFile {
		events, skipped, err := eventlog.ReadFile(cfg.EventLog.Path, filter)
		if skipped > 0 {
			fmt.Fprintf(warn, "skipped %d unreadable lines\n", skipped)
		}
		return events, err
	}

	store, closeFn, err := openStore(cfg)
	if err != nil {
		return nil, err
	}
	defer closeFn()
	return store.Query(ctx, filter)
}

func runEventsPrune(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := setupCommandLogging(cfg, cmd.ErrOrStderr()); err != nil {
		return err
	}

	days := cfg.EventLog.Retention.Days
	if eventsFlags.days > 0 {
		days = eventsFlags.days
	}
	if days <= 0 {
		return fmt.Errorf("retention is disabled; pass --days to prune")
	}

	store, closeFn, err := openStore(cfg)
	if err != nil {
		return cli.NewCommandError("events prune", err)
	}
	defer closeFn()

	pruner := eventlog.NewPruner(store, days)
	deleted, err := pruner.Prune(cmd.Context())
	if err != nil {
		return cli.NewCommandError("events prune", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Deleted %d events older than %s\n", deleted, pruner.Cutoff().Format(time.RFC3339))
	return nil
}

// openStore opens the configured event log and checks that it can be
// queried.
func openStore(cfg *config.Config) (eventlog.Store, func(), error) {
	sink, err := hookfactory.OpenEventLog(cfg.EventLog)
	if err != nil {
		return nil, nil, err
	}
	store, ok := sink.(eventlog.Store)
	if !ok || cfg.EventLog.Backend == eventlog.BackendMemory {
		_ = sink.Close()
		return nil, nil, fmt.Errorf("event log backend %q cannot be queried offline", cfg.EventLog.Backend)
	}
	return store, func() { _ = sink.Close() }, nil
}
