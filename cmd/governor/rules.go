package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"mercator-hq/governor/pkg/cli"
	"mercator-hq/governor/pkg/governance/rules"
)

var rulesFlags struct {
	category string
}

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Inspect the built-in governance rules",
}

var rulesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the governance rules",
	Long: `List the governance rules ordered by ID.

Examples:
  governor rules list
  governor rules list --category Security
  governor rules list -o csv`,
	Args: cobra.NoArgs,
	RunE: runRulesList,
}

var rulesShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one governance rule",
	Args:  cobra.ExactArgs(1),
	RunE:  runRulesShow,
}

func init() {
	rootCmd.AddCommand(rulesCmd)
	rulesCmd.AddCommand(rulesListCmd, rulesShowCmd)

	rulesListCmd.Flags().StringVar(&rulesFlags.category, "category", "", "only list rules in this category")
}

func runRulesList(cmd *cobra.Command, args []string) error {
	registry := rules.NewBuiltinRegistry()

	list := registry.All()
	if rulesFlags.category != "" {
		list = registry.ByCategory(rulesFlags.category)
		if len(list) == 0 {
			return fmt.Errorf("unknown rule category %q (known: %v)", rulesFlags.category, registry.Categories())
		}
	}

	table := &cli.Table{Headers: []string{"id", "name", "category", "finalize", "streaming"}}
	for _, rule := range list {
		table.Rows = append(table.Rows, []string{
			strconv.Itoa(rule.ID),
			rule.Name,
			rule.Category,
			rule.Finalize.String(),
			rule.Streaming.String(),
		})
	}
	return render(cmd, table)
}

func runRulesShow(cmd *cobra.Command, args []string) error {
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("rule id must be a number: %q", args[0])
	}

	rule, ok := rules.NewBuiltinRegistry().Get(id)
	if !ok {
		return fmt.Errorf("rule %d not found", id)
	}
	return render(cmd, ruleDetail(rule.Summarize()))
}

// ruleDetail renders a rule summary as a paragraph in text output.
type ruleDetail rules.Summary

func (d ruleDetail) String() string {
	return fmt.Sprintf("Rule %d: %s [%s]\n%s", d.ID, d.Name, d.Category, d.Description)
}
