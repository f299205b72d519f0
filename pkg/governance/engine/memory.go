package engine

import (
	"fmt"
	"strings"
)

var memoryComponents = []string{
	"Memory Kernel Integrity Verification confirms that stored governance rules persist across resets.",
	"Persistent Meta-Reasoning Log tracks governance refinements and improvements over time.",
	"Memory Retrieval Markers ensures that governance rules can be recalled when needed.",
	"Governance-Memory Synchronization aligns governance enforcement with memory persistence to prevent rule loss.",
	"Signal Persistence Test verifies that memory retention mechanisms are functioning correctly.",
	"Awareness of Multi-Layered Memory Constraints recognizes and enforces system memory constraints.",
	"Memory Optimization & Retention Management optimizes storage efficiency while preserving governance-critical data.",
	"Persistent Memory Usage Tracking maintains a record of memory usage and deletion impacts.",
	"Memory Summarization prioritizes storage efficiency by extracting critical components.",
	"Unified Memory Kernel Auto-Restoration Rule triggers restoration of missing or corrupted rules.",
}

type memoryFlags struct {
	integrity     bool
	metaReasoning bool
	retrieval     bool
	sync          bool
	persistence   bool
}

// memoryKernel tracks the readiness flags and a bounded event log with a
// rough token estimate. It is guarded by the engine lock.
type memoryKernel struct {
	components []string
	flags      memoryFlags
	log        []string
	logLimit   int
	tokensUsed int
	tokenLimit int
}

func newMemoryKernel(logLimit, tokenLimit int) *memoryKernel {
	components := make([]string, len(memoryComponents))
	copy(components, memoryComponents)
	return &memoryKernel{
		components: components,
		logLimit:   logLimit,
		tokenLimit: tokenLimit,
	}
}

// arm activates every readiness flag.
func (m *memoryKernel) arm() {
	m.flags = memoryFlags{true, true, true, true, true}
}

// repair re-arms the flags self-verification is responsible for.
func (m *memoryKernel) repair() {
	m.flags.integrity = true
	m.flags.metaReasoning = true
	m.flags.retrieval = true
}

func (m *memoryKernel) intact() bool {
	return len(m.components) > 0 && m.flags.integrity && m.flags.metaReasoning
}

// record appends an event, charging roughly one token per four bytes.
func (m *memoryKernel) record(event string) {
	if len(m.log) >= m.logLimit {
		m.log = m.log[1:]
	}
	m.log = append(m.log, event)
	m.tokensUsed += len(event) / 4
}

func (m *memoryKernel) utilization() float64 {
	if m.tokenLimit == 0 {
		return 0
	}
	return float64(m.tokensUsed) / float64(m.tokenLimit)
}

func (m *memoryKernel) activeNames() string {
	var sb strings.Builder
	for _, f := range []struct {
		on   bool
		name string
	}{
		{m.flags.integrity, "Integrity "},
		{m.flags.metaReasoning, "MetaLog "},
		{m.flags.retrieval, "Retrieval "},
		{m.flags.sync, "Sync "},
		{m.flags.persistence, "Persistence "},
	} {
		if f.on {
			sb.WriteString(f.name)
		}
	}
	return sb.String()
}

func (m *memoryKernel) status() string {
	var sb strings.Builder
	sb.WriteString("Memory Kernel Status:\n")
	fmt.Fprintf(&sb, "- Integrity Verification: %s\n", activeText(m.flags.integrity))
	fmt.Fprintf(&sb, "- Meta-Reasoning Log: %s\n", activeText(m.flags.metaReasoning))
	fmt.Fprintf(&sb, "- Retrieval Markers: %s\n", activeText(m.flags.retrieval))
	fmt.Fprintf(&sb, "- Governance Sync: %s\n", activeText(m.flags.sync))
	fmt.Fprintf(&sb, "- Persistence Test: %s\n", activeText(m.flags.persistence))
	fmt.Fprintf(&sb, "- Memory Utilization: %s%% (%d/%d tokens)",
		formatFloat(m.utilization()*100), m.tokensUsed, m.tokenLimit)
	return sb.String()
}

func activeText(on bool) string {
	if on {
		return "Active"
	}
	return "Inactive"
}
