package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"mercator-hq/governor/pkg/cli"
	"mercator-hq/governor/pkg/governance/state"
)

var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Inspect stored session state",
}

var stateListCmd = &cobra.Command{
	Use:   "list",
	Short: "List sessions with stored state",
	Args:  cobra.NoArgs,
	RunE:  runStateList,
}

var stateShowCmd = &cobra.Command{
	Use:   "show <session>",
	Short: "Show the stored state of a session",
	Long: `Show the stored governance snapshot of a session.

Examples:
  governor state show support-42
  governor state show support-42 -o json`,
	Args: cobra.ExactArgs(1),
	RunE: runStateShow,
}

func init() {
	rootCmd.AddCommand(stateCmd)
	stateCmd.AddCommand(stateListCmd, stateShowCmd)
}

func runStateList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	entries, err := os.ReadDir(cfg.Persistence.StateDir)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to read state directory: %w", err)
	}

	table := &cli.Table{Headers: []string{"session", "cycle", "drift", "saved"}}
	for _, entry := range entries {
		name, ok := strings.CutSuffix(entry.Name(), ".json")
		if entry.IsDir() || !ok {
			continue
		}
		snap, err := state.NewFileStore(filepath.Join(cfg.Persistence.StateDir, entry.Name())).Load()
		if err != nil {
			table.Rows = append(table.Rows, []string{name, "-", "-", "unreadable"})
			continue
		}
		table.Rows = append(table.Rows, []string{
			name,
			strconv.Itoa(snap.Cycle),
			strconv.FormatFloat(snap.DriftScore, 'f', 2, 64),
			snap.Timestamp.Format(time.RFC3339),
		})
	}
	return render(cmd, table)
}

func runStateShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	path := state.SessionPath(cfg.Persistence.StateDir, args[0])
	snap, err := state.NewFileStore(path).Load()
	if errors.Is(err, state.ErrNoSnapshot) {
		return fmt.Errorf("no stored state for session %q", args[0])
	}
	if err != nil {
		return err
	}
	return render(cmd, (*snapshotView)(snap))
}

// snapshotView renders a snapshot as a short report in text output.
type snapshotView state.Snapshot

func (v *snapshotView) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Saved: %s\n", v.Timestamp.Format(time.RFC3339))
	fmt.Fprintf(&sb, "Cycle: %d\n", v.Cycle)
	fmt.Fprintf(&sb, "Drift score: %.2f\n", v.DriftScore)
	fmt.Fprintf(&sb, "Integrity hash: %s\n", v.IntegrityHash)
	fmt.Fprintf(&sb, "Reinforcement cycles: %d\n", v.ReinforcementCycles)
	fmt.Fprintf(&sb, "Adversarial detections: %d\n", v.AdversarialDetections)
	fmt.Fprintf(&sb, "Consecutive violations: %d\n", v.ConsecutiveViolations)
	fmt.Fprintf(&sb, "Rules: %d\n", len(v.Rules))
	writeCountLine(&sb, "Violations", v.ViolationCounts)
	writeCountLine(&sb, "Invocations", v.InvocationCounts)
	return strings.TrimRight(sb.String(), "\n")
}

func writeCountLine(sb *strings.Builder, label string, counts map[int]int) {
	if len(counts) == 0 {
		fmt.Fprintf(sb, "%s: none\n", label)
		return
	}
	ids := make([]int, 0, len(counts))
	for id := range counts {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, fmt.Sprintf("rule %d x%d", id, counts[id]))
	}
	fmt.Fprintf(sb, "%s: %s\n", label, strings.Join(parts, ", "))
}
