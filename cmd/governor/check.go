package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"mercator-hq/governor/pkg/cli"
	"mercator-hq/governor/pkg/hookfactory"
	"mercator-hq/governor/pkg/hooks"
)

var checkFlags struct {
	session     string
	stream      bool
	failOnBlock bool
}

// CheckResult is the outcome of one checked response.
type CheckResult struct {
	SessionID    string `json:"session_id"`
	Blocked      bool   `json:"blocked"`
	Text         string `json:"text,omitempty"`
	CommandReply string `json:"command_reply,omitempty"`
	Warning      string `json:"warning,omitempty"`
}

func (r CheckResult) String() string {
	if r.Warning != "" {
		return r.Warning
	}
	if r.CommandReply != "" {
		return r.Text + "\n" + r.CommandReply
	}
	return r.Text
}

var checkCmd = &cobra.Command{
	Use:   "check [text | -]",
	Short: "Run the governance checks over a response",
	Long: `Run the finalize checks over a model response and print the governed
text. Use "-" or no argument to read the response from stdin.

Without --session the check runs in a throwaway session with no stored
state. With --session the named session is resumed and saved, so
repetition checks see its earlier responses.

Examples:
  governor check "The capital of France is Paris."
  cat response.txt | governor check --session support-42 -
  governor check --stream "partial output so far ..."
  governor check --fail-on-block -o json - < response.txt`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().StringVarP(&checkFlags.session, "session", "s", "", "session to resume and save")
	checkCmd.Flags().BoolVar(&checkFlags.stream, "stream", false, "run the streaming checks instead of the finalize checks")
	checkCmd.Flags().BoolVar(&checkFlags.failOnBlock, "fail-on-block", false, "exit non-zero when the response is blocked")
}

func runCheck(cmd *cobra.Command, args []string) error {
	text, err := readInput(cmd.InOrStdin(), args)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := setupCommandLogging(cfg, cmd.ErrOrStderr()); err != nil {
		return err
	}
	sessionID := checkFlags.session
	if sessionID == "" {
		sessionID = "cli-check"
		cfg.Persistence.Enabled = false
	}

	factory, err := hookfactory.New(cfg, nil)
	if err != nil {
		return cli.NewCommandError("check", err)
	}
	defer factory.Close()

	sessions := hooks.NewSessions(factory.NewSession)
	defer sessions.CloseAll()

	_, composite, err := sessions.GetOrCreate(sessionID)
	if err != nil {
		return cli.NewCommandError("check", err)
	}
	composite.OnCycleStart()

	result := CheckResult{SessionID: sessionID}
	if checkFlags.stream {
		result.Warning, result.Blocked = composite.StreamingCheck(text)
	} else {
		result.Text = composite.Finalize(text)
		result.Blocked = result.Text != text
		result.CommandReply = hooks.HandleText(composite, result.Text)
	}

	if err := render(cmd, result); err != nil {
		return err
	}
	if result.Blocked && checkFlags.failOnBlock {
		reply := result.Text
		if checkFlags.stream {
			reply = result.Warning
		}
		return &cli.BlockedError{Reply: firstLine(reply)}
	}
	return nil
}

// readInput returns the single argument, or stdin when it is "-" or absent.
func readInput(stdin io.Reader, args []string) (string, error) {
	if len(args) == 1 && args[0] != "-" {
		return args[0], nil
	}
	if stdin == nil {
		stdin = os.Stdin
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return strings.TrimRight(string(data), "\n"), nil
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}
