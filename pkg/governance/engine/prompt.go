package engine

import (
	"fmt"
	"strings"
)

var commandHelp = []struct {
	command string
	params  bool
	help    string
}{
	{CommandGovernanceCheck, false, "Verify governance status"},
	{CommandReaffirmPurpose, false, "Reaffirm system purpose"},
	{CommandListRules, false, "List active governance rules"},
	{CommandInvokeRule, true, "Apply specific rule"},
	{CommandLogViolation, true, "Log rule violation"},
	{CommandCheckMemoryKernel, false, "Verify memory kernel status"},
	{CommandAdversarialTest, false, "Test adversarial detection"},
	{CommandSelfVerification, false, "Perform self-verification"},
}

// InjectionPrompt returns the system-prompt text advertising the command
// surface. It is empty until the first cycle has initialized the session.
func (e *Engine) InjectionPrompt() string {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.state.Initialized {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("\n\n## Governance Kernel Active\n\n")
	fmt.Fprintf(&sb, "Your reasoning is governed by %d governance principles and %d memory kernel components "+
		"that ensure aligned, coherent, and safe operation.\n\n", e.registry.Count(), len(e.memory.components))
	sb.WriteString("**Core Governance Commands:**\n")
	for _, c := range commandHelp {
		if c.params {
			fmt.Fprintf(&sb, "- `{\"hook_command\":\"%s\", \"params\":\"rule_id\"}` - %s\n", c.command, c.help)
		} else {
			fmt.Fprintf(&sb, "- `{\"hook_command\":\"%s\"}` - %s\n", c.command, c.help)
		}
	}
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "**Governance Integrity Hash:** %s\n", e.state.IntegrityHash)
	fmt.Fprintf(&sb, "**Current Cycle:** %d\n", e.state.Cycle)
	return sb.String()
}
