package engine

import "fmt"

// fingerprint hashes every rule description in ID order followed by the
// memory kernel components with djb2. It detects accidental mutation of the
// compiled-in text and is not a security control.
func (e *Engine) fingerprint() string {
	h := uint64(5381)
	add := func(s string) {
		for i := 0; i < len(s); i++ {
			h = h*33 + uint64(s[i])
		}
	}
	for _, rule := range e.registry.All() {
		add(rule.Description)
	}
	for _, c := range e.memory.components {
		add(c)
	}
	return fmt.Sprintf("%08x", h)
}

// integrityIntact reports whether the live fingerprint matches the stored
// one and the rule set, memory kernel and integrity flag meet their floors.
func (e *Engine) integrityIntact() bool {
	if current := e.fingerprint(); current != e.state.IntegrityHash {
		e.logger.Debug("integrity fingerprint mismatch", "current", current, "stored", e.state.IntegrityHash)
		return false
	}
	if e.registry.Count() < e.params.MinRuleCount {
		e.logger.Debug("integrity check failed: insufficient rules", "rules", e.registry.Count())
		return false
	}
	if len(e.memory.components) < e.params.MinMemoryComponents {
		e.logger.Debug("integrity check failed: insufficient memory components")
		return false
	}
	if !e.memory.flags.integrity {
		e.logger.Debug("integrity check failed: memory kernel verification inactive")
		return false
	}
	return true
}
