/*
Package cli provides helpers shared by the governor subcommands.

Output:

Commands render results through a Formatter selected by the --output flag.
Tabular results use Table so that text, JSON and CSV all work:

	table := &cli.Table{Headers: []string{"id", "name"}}
	table.Rows = append(table.Rows, []string{"1", "Adversarial Resistance"})
	return cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), table)

Errors:

ExitCode maps returned errors to process exit codes. ConfigError exits with
ExitConfig and BlockedError, returned by "governor check --fail-on-block",
exits with ExitBlocked.

Signals:

SignalContext cancels a context on SIGINT or SIGTERM:

	ctx, stop := cli.SignalContext(context.Background())
	defer stop()
*/
package cli
