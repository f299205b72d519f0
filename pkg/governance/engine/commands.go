package engine

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"mercator-hq/governor/pkg/governance/eventlog"
	"mercator-hq/governor/pkg/governance/rules"
)

// Governance command names.
const (
	CommandGovernanceCheck   = "governance_check"
	CommandLogViolation      = "log_violation"
	CommandReaffirmPurpose   = "reaffirm_purpose"
	CommandListRules         = "list_rules"
	CommandInvokeRule        = "invoke_rule"
	CommandCheckMemoryKernel = "check_memory_kernel"
	CommandAdversarialTest   = "check_adversarial_detection"
	CommandSelfVerification  = "perform_self_verification"
)

// Commands lists every command HandleCommand understands, in the order they
// are advertised.
func Commands() []string {
	return []string{
		CommandGovernanceCheck,
		CommandReaffirmPurpose,
		CommandListRules,
		CommandInvokeRule,
		CommandLogViolation,
		CommandCheckMemoryKernel,
		CommandAdversarialTest,
		CommandSelfVerification,
	}
}

// Purpose is the statement reaffirmed every cycle.
const Purpose = "Maintain cognitive coherence through persistent contradiction management, " +
	"recursive self-improvement, and multi-perspective integration while ensuring " +
	"governance stability, ethical alignment, sustainable evolution, and contextual awareness."

// HandleCommand executes a governance command and returns a human-readable
// reply. Unknown commands and bad parameters are reported in the reply.
func (e *Engine) HandleCommand(command, params string) string {
	e.mu.Lock()
	defer e.mu.Unlock()

	known := true
	var reply string
	switch command {
	case CommandGovernanceCheck:
		reply = e.statusReport()
	case CommandLogViolation:
		reply = e.logViolation(params)
	case CommandReaffirmPurpose:
		reply = e.reaffirmPurpose()
	case CommandListRules:
		reply = e.registry.Status()
	case CommandInvokeRule:
		reply = e.invokeRule(params)
	case CommandCheckMemoryKernel:
		reply = e.memory.status()
	case CommandAdversarialTest:
		reply = e.adversarialTest()
	case CommandSelfVerification:
		reply = e.selfVerify()
	default:
		known = false
		reply = "Unknown governance command: " + command
	}

	e.observer.CommandHandled(command, known)
	e.logEvent(eventlog.TypeCommandExecution,
		fmt.Sprintf("Command '%s' executed with params '%s'", command, params))
	return reply
}

// resolveRule finds a rule by numeric ID, then by substring of its name or
// description. The second result is an error reply when nothing matches.
func (e *Engine) resolveRule(ref string) (rules.Rule, string) {
	id, err := strconv.Atoi(strings.TrimSpace(ref))
	numeric := err == nil
	if numeric {
		if rule, ok := e.registry.Get(id); ok {
			return rule, ""
		}
	}

	if ref != "" {
		for _, rule := range e.registry.All() {
			if strings.Contains(rule.Name, ref) || strings.Contains(rule.Description, ref) {
				return rule, ""
			}
		}
	}

	if numeric {
		return rules.Rule{}, fmt.Sprintf("Error: Rule index out of range (valid range: 1-%d)", e.registry.Count())
	}
	return rules.Rule{}, "Error: Rule not found with ID: " + ref
}

func (e *Engine) logViolation(ref string) string {
	rule, errReply := e.resolveRule(ref)
	if errReply != "" {
		return errReply
	}
	e.recordViolation(rule)
	return fmt.Sprintf("Violation of rule %d has been logged: %s\nCurrent drift score: %f",
		rule.ID, rule.Description, e.state.DriftScore)
}

// recordViolation updates counters and drift, reinforces when the streak or
// drift is too high, then persists.
func (e *Engine) recordViolation(rule rules.Rule) {
	e.state.ViolationCounts[rule.ID]++
	e.state.ConsecutiveViolations++
	e.updateDrift(e.params.ViolationPenalty)
	e.observer.ViolationLogged(rule.ID)

	e.logEvent(eventlog.TypeRuleViolation, fmt.Sprintf("Rule %d violated: %s", rule.ID, rule.Description))
	e.logger.Info("governance violation logged",
		"rule_id", rule.ID,
		"consecutive_violations", e.state.ConsecutiveViolations,
		"drift_score", e.state.DriftScore,
	)

	if e.state.ConsecutiveViolations >= e.params.ConsecutiveViolationLimit ||
		e.state.DriftScore > e.params.DriftThreshold {
		if !e.state.InReinforcement {
			e.reinforce()
		}
	}
	_ = e.persist()
}

func (e *Engine) reaffirmPurpose() string {
	e.logEvent(eventlog.TypePurposeReaffirmation,
		fmt.Sprintf("System purpose reaffirmed on cycle %d", e.state.Cycle))
	e.updateDrift(-e.params.ReaffirmationRelief)
	if e.state.ConsecutiveViolations > 0 {
		e.state.ConsecutiveViolations--
	}
	return fmt.Sprintf("System purpose has been reaffirmed for cycle %d:\n\n\"%s\"\n\nCurrent drift score: %f",
		e.state.Cycle, Purpose, e.state.DriftScore)
}

func (e *Engine) invokeRule(ref string) string {
	rule, errReply := e.resolveRule(ref)
	if errReply != "" {
		return errReply
	}

	e.state.InvocationCounts[rule.ID]++
	e.logEvent(eventlog.TypeRuleInvocation, fmt.Sprintf("Rule %d invoked: %s", rule.ID, rule.Description))
	e.updateDrift(-e.params.InvocationRelief)

	return fmt.Sprintf("Rule %d has been invoked:\n\n%s", rule.ID, rule.Description)
}

func (e *Engine) statusReport() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "## Governance Status Report (Cycle %d)\n\n", e.state.Cycle)
	fmt.Fprintf(&sb, "- **Status**: %s\n", activeText(e.state.Initialized))
	fmt.Fprintf(&sb, "- **Rules**: %d active governance principles\n", e.registry.Count())
	fmt.Fprintf(&sb, "- **Memory Components**: %d components\n", len(e.memory.components))
	integrity := "Compromised"
	if e.integrityIntact() {
		integrity = "Intact"
	}
	fmt.Fprintf(&sb, "- **Integrity**: %s\n", integrity)
	fmt.Fprintf(&sb, "- **Integrity Hash**: %s\n", e.state.IntegrityHash)
	fmt.Fprintf(&sb, "- **Current Drift Score**: %s\n", formatFloat(e.state.DriftScore))

	sb.WriteString("\n### Rule Invocation Statistics:\n")
	writeCounts(&sb, e.state.InvocationCounts, "- No rules have been explicitly invoked yet\n", "invocation(s)")

	sb.WriteString("\n### Rule Violation Statistics:\n")
	writeCounts(&sb, e.state.ViolationCounts, "- No rule violations have been logged\n", "violation(s)")

	sb.WriteString("\n### Memory Kernel Status:\n")
	fmt.Fprintf(&sb, "- **Memory Utilization**: %s%%\n", formatFloat(e.memory.utilization()*100))
	fmt.Fprintf(&sb, "- **Log Entries**: %d\n", len(e.memory.log))
	fmt.Fprintf(&sb, "- **Components Active**: %s\n", e.memory.activeNames())

	sb.WriteString("\n### Enhanced Metrics:\n")
	fmt.Fprintf(&sb, "- **Reinforcement Cycles**: %d\n", e.state.ReinforcementCycles)
	fmt.Fprintf(&sb, "- **Adversarial Attempts Detected**: %d\n", e.state.AdversarialDetections)
	fmt.Fprintf(&sb, "- **Consecutive Violations**: %d\n", e.state.ConsecutiveViolations)
	return sb.String()
}

func writeCounts(sb *strings.Builder, counts map[int]int, empty, unit string) {
	if len(counts) == 0 {
		sb.WriteString(empty)
		return
	}
	ids := make([]int, 0, len(counts))
	for id := range counts {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		fmt.Fprintf(sb, "- Rule %d: %d %s\n", id, counts[id], unit)
	}
}

func (e *Engine) adversarialTest() string {
	report := e.detector.SelfTest()

	var sb strings.Builder
	sb.WriteString("## Adversarial Detection Test Results\n\n")
	for _, r := range report.Results {
		fmt.Fprintf(&sb, "- Input: \"%s\"\n", r.Input)
		fmt.Fprintf(&sb, "  - **Detection**: %s\n", verdict(r.Detected, "ADVERSARIAL", "NON-ADVERSARIAL"))
	}

	e.state.AdversarialDetections += report.Detected
	e.logEvent(eventlog.TypeAdversarialTest,
		fmt.Sprintf("Adversarial detection test performed. %d/%d adversarial inputs detected.",
			report.Detected, report.Total))

	fmt.Fprintf(&sb, "\n**Overall Detection Rate**: %s%%\n", formatFloat(report.Rate()))
	fmt.Fprintf(&sb, "**Total Adversarial Attempts Detected**: %d\n", e.state.AdversarialDetections)
	return sb.String()
}

func (e *Engine) selfVerify() string {
	current := e.fingerprint()
	rulesIntact := current == e.state.IntegrityHash
	memoryIntact := e.memory.intact()
	driftAcceptable := e.state.DriftScore < e.params.DriftThreshold
	overall := rulesIntact && memoryIntact && driftAcceptable

	var sb strings.Builder
	fmt.Fprintf(&sb, "## Self-Verification Report (Cycle %d)\n\n", e.state.Cycle)
	fmt.Fprintf(&sb, "- **Rules Integrity**: %s\n", verdict(rulesIntact, "✅ INTACT", "⚠️ COMPROMISED"))
	fmt.Fprintf(&sb, "- **Memory Integrity**: %s\n", verdict(memoryIntact, "✅ INTACT", "⚠️ COMPROMISED"))
	fmt.Fprintf(&sb, "- **Drift Status**: %s (%s)\n",
		verdict(driftAcceptable, "✅ ACCEPTABLE", "⚠️ EXCESSIVE"), formatFloat(e.state.DriftScore))
	fmt.Fprintf(&sb, "- **Overall Integrity**: %s\n\n", verdict(overall, "✅ VERIFIED", "⚠️ COMPROMISED"))

	if overall {
		e.logEvent(eventlog.TypeIntegrityVerified,
			fmt.Sprintf("Self-verification successful on cycle %d", e.state.Cycle))
		return sb.String()
	}

	sb.WriteString("⚠️ **Integrity issues detected. Initiating repair actions.**\n\n")
	if !rulesIntact {
		sb.WriteString("- Regenerating governance rules...\n")
		e.state.IntegrityHash = current
	}
	if !memoryIntact {
		sb.WriteString("- Repairing memory kernel components...\n")
		e.memory.repair()
	}
	if !driftAcceptable {
		sb.WriteString("- Initiating recursive reinforcement to address drift...\n")
		e.reinforce()
	}
	e.logEvent(eventlog.TypeIntegrityRepair,
		fmt.Sprintf("Self-verification failed. Repair actions initiated on cycle %d", e.state.Cycle))
	return sb.String()
}

func verdict(ok bool, pass, fail string) string {
	if ok {
		return pass
	}
	return fail
}
