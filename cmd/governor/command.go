package main

import (
	"strings"

	"github.com/spf13/cobra"
	"mercator-hq/governor/pkg/cli"
	"mercator-hq/governor/pkg/governance/engine"
	"mercator-hq/governor/pkg/hookfactory"
	"mercator-hq/governor/pkg/hooks"
)

var commandFlags struct {
	session string
	noCycle bool
}

// CommandResult is the reply to one governance command.
type CommandResult struct {
	SessionID string `json:"session_id"`
	Command   string `json:"command"`
	Reply     string `json:"reply"`
}

func (r CommandResult) String() string {
	return r.Reply
}

var commandCmd = &cobra.Command{
	Use:   "command <name> [params]",
	Short: "Run a governance command against a session",
	Long: `Run a governance command against a session and print its reply.

The session is resumed from its stored state when persistence is enabled
and saved again afterwards. Unless --no-cycle is given, one inference
cycle is started first so the session is initialized.

Commands: ` + strings.Join(engine.Commands(), ", ") + `

Examples:
  governor command governance_check --session support-42
  governor command log_violation 4 --session support-42
  governor command invoke_rule Ethical --session support-42`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runCommand,
}

func init() {
	rootCmd.AddCommand(commandCmd)

	commandCmd.Flags().StringVarP(&commandFlags.session, "session", "s", "default", "session to run the command in")
	commandCmd.Flags().BoolVar(&commandFlags.noCycle, "no-cycle", false, "do not start a cycle before the command")
}

func runCommand(cmd *cobra.Command, args []string) error {
	name := args[0]
	params := ""
	if len(args) == 2 {
		params = args[1]
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := setupCommandLogging(cfg, cmd.ErrOrStderr()); err != nil {
		return err
	}

	factory, err := hookfactory.New(cfg, nil)
	if err != nil {
		return cli.NewCommandError("command", err)
	}
	defer factory.Close()

	sessions := hooks.NewSessions(factory.NewSession)
	_, composite, err := sessions.GetOrCreate(commandFlags.session)
	if err != nil {
		return cli.NewCommandError("command", err)
	}
	if !commandFlags.noCycle {
		composite.OnCycleStart()
	}

	reply := composite.HandleCommand(name, params)

	if err := sessions.CloseAll(); err != nil {
		return cli.NewCommandError("command", err)
	}
	return render(cmd, CommandResult{SessionID: commandFlags.session, Command: name, Reply: reply})
}
