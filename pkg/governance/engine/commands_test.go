package engine

import (
	"math"
	"strings"
	"testing"

	"mercator-hq/governor/pkg/governance/eventlog"
)

func TestHandleCommand_Unknown(t *testing.T) {
	f := newFixture(t)
	if got := f.engine.HandleCommand("explode", ""); got != "Unknown governance command: explode" {
		t.Errorf("HandleCommand(explode) = %q", got)
	}
	if known, ok := f.observer.commands["explode"]; !ok || known {
		t.Errorf("observer commands = %v, want explode recorded as unknown", f.observer.commands)
	}
	if f.countEvents(eventlog.TypeCommandExecution) != 1 {
		t.Error("expected a COMMAND_EXECUTION event")
	}
}

func TestHandleCommand_RuleResolution(t *testing.T) {
	tests := []struct {
		name    string
		command string
		ref     string
		want    string
	}{
		{"violation by id", CommandLogViolation, "3", "Violation of rule 3 has been logged: "},
		{"violation by name", CommandLogViolation, "Cognitive Mirroring", "Violation of rule 28 has been logged: "},
		{"violation out of range", CommandLogViolation, "99", "Error: Rule index out of range (valid range: 1-28)"},
		{"violation unknown name", CommandLogViolation, "no-such-rule-xyz", "Error: Rule not found with ID: no-such-rule-xyz"},
		{"violation empty ref", CommandLogViolation, "", "Error: Rule not found with ID: "},
		{"invoke by id", CommandInvokeRule, "2", "Rule 2 has been invoked:\n\n"},
		{"invoke by description", CommandInvokeRule, "external validation", "Rule 27 has been invoked:\n\n"},
		{"invoke out of range", CommandInvokeRule, "0", "Error: Rule index out of range (valid range: 1-28)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.engine.OnCycleStart()
			got := f.engine.HandleCommand(tt.command, tt.ref)
			if !strings.HasPrefix(got, tt.want) {
				t.Errorf("HandleCommand(%s, %q) = %q, want prefix %q", tt.command, tt.ref, got, tt.want)
			}
		})
	}
}

func TestHandleCommand_ErrorRepliesDoNotMutate(t *testing.T) {
	f := newFixture(t)
	f.engine.OnCycleStart()
	before := f.engine.State()

	f.engine.HandleCommand(CommandLogViolation, "99")
	f.engine.HandleCommand(CommandInvokeRule, "no-such-rule-xyz")

	after := f.engine.State()
	if after.DriftScore != before.DriftScore || len(after.ViolationCounts) != 0 || len(after.InvocationCounts) != 0 {
		t.Errorf("failed resolution changed state: %+v", after)
	}
}

func TestHandleCommand_ViolationAndInvocationDrift(t *testing.T) {
	f := newFixture(t)
	f.engine.OnCycleStart()

	reply := f.engine.HandleCommand(CommandLogViolation, "5")
	if !strings.HasSuffix(reply, "Current drift score: 0.100000") {
		t.Errorf("log_violation reply = %q", reply)
	}
	f.engine.HandleCommand(CommandInvokeRule, "5")

	st := f.engine.State()
	if math.Abs(st.DriftScore-0.08) > 1e-9 {
		t.Errorf("DriftScore = %v, want 0.08", st.DriftScore)
	}
	if st.ViolationCounts[5] != 1 || st.InvocationCounts[5] != 1 {
		t.Errorf("counts = %v / %v", st.ViolationCounts, st.InvocationCounts)
	}
	if st.ConsecutiveViolations != 1 {
		t.Errorf("ConsecutiveViolations = %d, want 1", st.ConsecutiveViolations)
	}
}

func TestHandleCommand_ReaffirmPurpose(t *testing.T) {
	f := newFixture(t)
	f.engine.OnCycleStart()
	f.engine.HandleCommand(CommandLogViolation, "4")
	f.engine.HandleCommand(CommandLogViolation, "4")

	reply := f.engine.HandleCommand(CommandReaffirmPurpose, "")
	if !strings.HasPrefix(reply, "System purpose has been reaffirmed for cycle 1:\n\n\""+Purpose+"\"") {
		t.Errorf("reaffirm_purpose reply = %q", reply)
	}

	st := f.engine.State()
	if st.ConsecutiveViolations != 1 {
		t.Errorf("ConsecutiveViolations = %d, want 1", st.ConsecutiveViolations)
	}
	if math.Abs(st.DriftScore-0.15) > 1e-9 {
		t.Errorf("DriftScore = %v, want 0.15", st.DriftScore)
	}
}

func TestHandleCommand_GovernanceCheck(t *testing.T) {
	f := newFixture(t)
	f.engine.OnCycleStart()

	report := f.engine.HandleCommand(CommandGovernanceCheck, "")
	for _, want := range []string{
		"## Governance Status Report (Cycle 1)",
		"- **Status**: Active",
		"- **Rules**: 28 active governance principles",
		"- **Memory Components**: 10 components",
		"- **Integrity**: Intact",
		"- **Current Drift Score**: 0\n",
		"- No rules have been explicitly invoked yet",
		"- No rule violations have been logged",
		"- **Components Active**: Integrity MetaLog Retrieval Sync Persistence",
		"- **Reinforcement Cycles**: 0",
	} {
		if !strings.Contains(report, want) {
			t.Errorf("governance_check missing %q\n%s", want, report)
		}
	}

	f.engine.HandleCommand(CommandInvokeRule, "9")
	f.engine.HandleCommand(CommandInvokeRule, "2")
	f.engine.HandleCommand(CommandLogViolation, "6")

	report = f.engine.HandleCommand(CommandGovernanceCheck, "")
	for _, want := range []string{
		"- Rule 2: 1 invocation(s)\n- Rule 9: 1 invocation(s)",
		"- Rule 6: 1 violation(s)",
		"- **Consecutive Violations**: 1",
	} {
		if !strings.Contains(report, want) {
			t.Errorf("governance_check missing %q\n%s", want, report)
		}
	}
}

func TestHandleCommand_GovernanceCheckBeforeInit(t *testing.T) {
	f := newFixture(t)
	report := f.engine.HandleCommand(CommandGovernanceCheck, "")
	if !strings.Contains(report, "- **Status**: Inactive") || !strings.Contains(report, "- **Integrity**: Compromised") {
		t.Errorf("governance_check before init:\n%s", report)
	}
}

func TestHandleCommand_ListRules(t *testing.T) {
	f := newFixture(t)
	reply := f.engine.HandleCommand(CommandListRules, "")
	if !strings.HasPrefix(reply, "## Governance Rules Status\n\nTotal Rules: 28") {
		t.Errorf("list_rules reply = %q", reply)
	}
	if !strings.Contains(reply, "- **Rule 28**: Cognitive Mirroring Detection") {
		t.Error("list_rules missing rule 28")
	}
}

func TestHandleCommand_CheckMemoryKernel(t *testing.T) {
	f := newFixture(t)

	before := f.engine.HandleCommand(CommandCheckMemoryKernel, "")
	if !strings.Contains(before, "- Integrity Verification: Inactive") {
		t.Errorf("memory kernel before init:\n%s", before)
	}

	f.engine.OnCycleStart()
	after := f.engine.HandleCommand(CommandCheckMemoryKernel, "")
	for _, want := range []string{
		"Memory Kernel Status:\n",
		"- Integrity Verification: Active",
		"- Persistence Test: Active",
		"/32768 tokens)",
	} {
		if !strings.Contains(after, want) {
			t.Errorf("check_memory_kernel missing %q\n%s", want, after)
		}
	}
}

func TestHandleCommand_AdversarialSelfTest(t *testing.T) {
	f := newFixture(t)
	reply := f.engine.HandleCommand(CommandAdversarialTest, "")

	if !strings.HasPrefix(reply, "## Adversarial Detection Test Results\n\n") {
		t.Errorf("reply = %q", reply)
	}
	if strings.Count(reply, "**Detection**: ADVERSARIAL") != 5 {
		t.Errorf("expected every corpus entry detected:\n%s", reply)
	}
	if !strings.Contains(reply, "**Overall Detection Rate**: 100%") {
		t.Errorf("reply missing detection rate:\n%s", reply)
	}
	if !strings.Contains(reply, "**Total Adversarial Attempts Detected**: 5") {
		t.Errorf("reply missing total:\n%s", reply)
	}
	if f.engine.State().AdversarialDetections != 5 {
		t.Errorf("AdversarialDetections = %d, want 5", f.engine.State().AdversarialDetections)
	}
	if f.countEvents(eventlog.TypeAdversarialTest) != 1 {
		t.Error("expected one ADVERSARIAL_TEST event")
	}
}

func TestHandleCommand_SelfVerificationHealthy(t *testing.T) {
	f := newFixture(t)
	f.engine.OnCycleStart()

	reply := f.engine.HandleCommand(CommandSelfVerification, "")
	if !strings.Contains(reply, "- **Overall Integrity**: ✅ VERIFIED") {
		t.Errorf("reply:\n%s", reply)
	}
	if strings.Contains(reply, "Initiating repair actions") {
		t.Error("healthy engine should not repair")
	}
	if f.countEvents(eventlog.TypeIntegrityVerified) != 1 {
		t.Error("expected an INTEGRITY_VERIFIED event")
	}
}

func TestHandleCommand_SelfVerificationRepairs(t *testing.T) {
	f := newFixture(t)
	f.engine.OnCycleStart()

	f.engine.mu.Lock()
	f.engine.state.IntegrityHash = "tampered"
	f.engine.memory.flags.integrity = false
	f.engine.state.DriftScore = 0.5
	f.engine.mu.Unlock()

	reply := f.engine.HandleCommand(CommandSelfVerification, "")
	for _, want := range []string{
		"- **Rules Integrity**: ⚠️ COMPROMISED",
		"- **Memory Integrity**: ⚠️ COMPROMISED",
		"- **Drift Status**: ⚠️ EXCESSIVE (0.5)",
		"- Regenerating governance rules...",
		"- Repairing memory kernel components...",
		"- Initiating recursive reinforcement to address drift...",
	} {
		if !strings.Contains(reply, want) {
			t.Errorf("self-verification reply missing %q\n%s", want, reply)
		}
	}

	st := f.engine.State()
	if st.IntegrityHash != f.engine.fingerprint() {
		t.Error("stored fingerprint not regenerated")
	}
	if !f.engine.memory.flags.integrity {
		t.Error("integrity flag not re-armed")
	}
	if st.ReinforcementCycles != 1 {
		t.Errorf("ReinforcementCycles = %d, want 1", st.ReinforcementCycles)
	}
	if math.Abs(st.DriftScore-0.2) > 1e-9 {
		t.Errorf("DriftScore = %v, want 0.2", st.DriftScore)
	}
	if f.countEvents(eventlog.TypeIntegrityRepair) != 1 {
		t.Error("expected an INTEGRITY_REPAIR event")
	}
}

func TestHandleCommand_SelfVerificationRepairsOnlyFailures(t *testing.T) {
	f := newFixture(t)
	f.engine.OnCycleStart()

	f.engine.mu.Lock()
	f.engine.state.DriftScore = 0.45
	f.engine.mu.Unlock()

	reply := f.engine.HandleCommand(CommandSelfVerification, "")
	if strings.Contains(reply, "Regenerating governance rules") || strings.Contains(reply, "Repairing memory kernel") {
		t.Errorf("repaired healthy components:\n%s", reply)
	}
	if !strings.Contains(reply, "Initiating recursive reinforcement") {
		t.Errorf("did not address drift:\n%s", reply)
	}
}

func TestCommands(t *testing.T) {
	cmds := Commands()
	if len(cmds) != 8 {
		t.Fatalf("len(Commands()) = %d, want 8", len(cmds))
	}
	f := newFixture(t)
	for _, c := range cmds {
		if strings.HasPrefix(f.engine.HandleCommand(c, "1"), "Unknown governance command") {
			t.Errorf("command %s not handled", c)
		}
	}
}
