// Package rules holds the governance rule catalog and the registry that
// indexes it.
//
// A Rule is plain data: an ID, a name, a description, a category and two
// predicate kinds (finalize and streaming). Predicate bodies live with the
// engine that owns per-session state; the registry only knows which rules
// have them and in what order they run.
//
// The registry is built once at startup and shared by every session:
//
//	reg := rules.NewBuiltinRegistry()
//	rule, ok := reg.Get(rules.RuleRepetition)
//	fmt.Print(reg.Status())
//
// Rules are evaluated in ascending ID order and the first rule that fires
// wins.
package rules
