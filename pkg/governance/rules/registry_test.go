package rules

import (
	"errors"
	"strings"
	"sync"
	"testing"
)

func TestBuiltin_Catalog(t *testing.T) {
	catalog := Builtin()
	if len(catalog) != 28 {
		t.Fatalf("Builtin() returned %d rules, want 28", len(catalog))
	}

	seen := make(map[int]bool)
	for i, r := range catalog {
		if r.ID != i+1 {
			t.Errorf("rule at index %d has ID %d, want %d", i, r.ID, i+1)
		}
		if seen[r.ID] {
			t.Errorf("duplicate rule ID %d", r.ID)
		}
		seen[r.ID] = true
		if r.Name == "" || r.Description == "" || r.Category == "" {
			t.Errorf("rule %d has empty fields: %+v", r.ID, r)
		}
	}

	if catalog[0].Finalize != KindAdversarial {
		t.Errorf("rule 1 finalize = %v, want adversarial", catalog[0].Finalize)
	}
	last := catalog[27]
	if last.Finalize != KindRepetition || last.Streaming != KindRepetition {
		t.Errorf("rule 28 kinds = %v/%v, want repetition/repetition", last.Finalize, last.Streaming)
	}
}

func TestBuiltin_ReturnsCopy(t *testing.T) {
	a := Builtin()
	a[0].Name = "changed"
	if Builtin()[0].Name == "changed" {
		t.Error("Builtin() exposed the shared catalog")
	}
}

func TestRegistry_RegisterAndGet(t *testing.T) {
	reg := NewRegistry()

	if err := reg.Register(Rule{ID: 5, Name: "five", Category: "A"}); err != nil {
		t.Fatalf("Register() failed: %v", err)
	}

	got, ok := reg.Get(5)
	if !ok {
		t.Fatal("Get(5) not found")
	}
	if got.Name != "five" {
		t.Errorf("Get(5).Name = %q, want %q", got.Name, "five")
	}

	if _, ok := reg.Get(6); ok {
		t.Error("Get(6) found a rule that was never registered")
	}
}

func TestRegistry_RegisterInvalid(t *testing.T) {
	reg := NewRegistry()

	tests := []struct {
		name string
		rule Rule
	}{
		{"zero id", Rule{ID: 0, Category: "A"}},
		{"negative id", Rule{ID: -1, Category: "A"}},
		{"no category", Rule{ID: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := reg.Register(tt.rule)
			if !errors.Is(err, ErrInvalidRule) {
				t.Errorf("Register() error = %v, want ErrInvalidRule", err)
			}
		})
	}
	if reg.Count() != 0 {
		t.Errorf("Count() = %d after invalid registrations, want 0", reg.Count())
	}
}

func TestRegistry_ReRegisterMovesCategory(t *testing.T) {
	reg := NewRegistry()
	_ = reg.Register(Rule{ID: 1, Name: "one", Category: "A"})
	_ = reg.Register(Rule{ID: 1, Name: "one again", Category: "B"})

	if got := reg.ByCategory("A"); len(got) != 0 {
		t.Errorf("ByCategory(A) = %v, want empty", got)
	}
	b := reg.ByCategory("B")
	if len(b) != 1 || b[0].Name != "one again" {
		t.Errorf("ByCategory(B) = %v, want [one again]", b)
	}
	if cats := reg.Categories(); len(cats) != 1 || cats[0] != "B" {
		t.Errorf("Categories() = %v, want [B]", cats)
	}
	if reg.Count() != 1 {
		t.Errorf("Count() = %d, want 1", reg.Count())
	}
}

func TestRegistry_UnregisterPrunesCategory(t *testing.T) {
	reg := NewRegistry()
	_ = reg.Register(Rule{ID: 1, Category: "A"})
	_ = reg.Register(Rule{ID: 2, Category: "A"})
	_ = reg.Register(Rule{ID: 3, Category: "B"})

	if !reg.Unregister(3) {
		t.Fatal("Unregister(3) = false, want true")
	}
	if reg.Unregister(3) {
		t.Error("second Unregister(3) = true, want false")
	}
	for _, c := range reg.Categories() {
		if c == "B" {
			t.Error("category B still present after its last rule was removed")
		}
	}

	_ = reg.Unregister(1)
	a := reg.ByCategory("A")
	if len(a) != 1 || a[0].ID != 2 {
		t.Errorf("ByCategory(A) = %v, want [2]", a)
	}
}

func TestRegistry_AllSorted(t *testing.T) {
	reg := NewRegistry()
	for _, id := range []int{9, 3, 7, 1} {
		_ = reg.Register(Rule{ID: id, Category: "X"})
	}

	all := reg.All()
	want := []int{1, 3, 7, 9}
	if len(all) != len(want) {
		t.Fatalf("All() returned %d rules, want %d", len(all), len(want))
	}
	for i, id := range want {
		if all[i].ID != id {
			t.Errorf("All()[%d].ID = %d, want %d", i, all[i].ID, id)
		}
	}
}

func TestRegistry_Clear(t *testing.T) {
	reg := NewBuiltinRegistry()
	reg.Clear()
	if reg.Count() != 0 {
		t.Errorf("Count() = %d after Clear, want 0", reg.Count())
	}
	if len(reg.Categories()) != 0 {
		t.Errorf("Categories() = %v after Clear, want empty", reg.Categories())
	}
}

func TestRegistry_EvaluateFirstWins(t *testing.T) {
	reg := NewRegistry()
	_ = reg.Register(Rule{ID: 2, Category: "A", Finalize: KindRepetition})
	_ = reg.Register(Rule{ID: 1, Category: "B", Finalize: KindAdversarial})
	_ = reg.Register(Rule{ID: 3, Category: "A"})

	var order []int
	check := func(r Rule, input string) (string, bool) {
		order = append(order, r.ID)
		return "blocked by " + input, true
	}

	out, fired := reg.Evaluate("x", "", check)
	if !fired {
		t.Fatal("Evaluate() did not fire")
	}
	if out != "blocked by x" {
		t.Errorf("Evaluate() = %q", out)
	}
	if len(order) != 1 || order[0] != 1 {
		t.Errorf("evaluated rules %v, want only [1]", order)
	}
}

func TestRegistry_EvaluateCategoryAndSkip(t *testing.T) {
	reg := NewRegistry()
	_ = reg.Register(Rule{ID: 1, Category: "B", Finalize: KindAdversarial})
	_ = reg.Register(Rule{ID: 2, Category: "A"})
	_ = reg.Register(Rule{ID: 3, Category: "A", Finalize: KindRepetition})

	var order []int
	check := func(r Rule, input string) (string, bool) {
		order = append(order, r.ID)
		return "", false
	}

	if _, fired := reg.Evaluate("x", "A", check); fired {
		t.Error("Evaluate() fired when no check did")
	}
	if len(order) != 1 || order[0] != 3 {
		t.Errorf("evaluated rules %v, want [3]", order)
	}

	order = nil
	if _, fired := reg.Evaluate("x", "missing", check); fired {
		t.Error("Evaluate() on missing category fired")
	}
	if len(order) != 0 {
		t.Errorf("evaluated rules %v for missing category", order)
	}
}

func TestRegistry_Status(t *testing.T) {
	reg := NewBuiltinRegistry()
	status := reg.Status()

	if !strings.HasPrefix(status, "## Governance Rules Status") {
		t.Errorf("Status() missing heading: %q", status[:40])
	}
	if !strings.Contains(status, "Total Rules: 28") {
		t.Error("Status() missing rule total")
	}

	// Categories render in sorted order.
	ethics := strings.Index(status, "### Category: Ethics")
	security := strings.Index(status, "### Category: Security")
	if ethics < 0 || security < 0 || ethics > security {
		t.Errorf("categories out of order: Ethics at %d, Security at %d", ethics, security)
	}
	if !strings.Contains(status, "- **Rule 28**: Cognitive Mirroring Detection") {
		t.Error("Status() missing rule 28 line")
	}
}

func TestRegistry_CatalogRestore(t *testing.T) {
	src := NewBuiltinRegistry()
	catalog := src.Catalog()

	if !catalog[0].HasFinalize || catalog[1].HasFinalize {
		t.Errorf("catalog predicate flags wrong: %+v %+v", catalog[0], catalog[1])
	}

	dst := NewRegistry()
	_ = dst.Register(Rule{ID: 99, Category: "Stale"})
	if err := dst.Restore(catalog, ResolveBuiltin); err != nil {
		t.Fatalf("Restore() failed: %v", err)
	}

	if dst.Count() != 28 {
		t.Errorf("Count() = %d after Restore, want 28", dst.Count())
	}
	if _, ok := dst.Get(99); ok {
		t.Error("Restore() kept a rule absent from the catalog")
	}
	r28, _ := dst.Get(RuleRepetition)
	if r28.Finalize != KindRepetition || r28.Streaming != KindRepetition {
		t.Errorf("restored rule 28 kinds = %v/%v", r28.Finalize, r28.Streaming)
	}
}

func TestRegistry_RestoreWithoutResolver(t *testing.T) {
	reg := NewRegistry()
	err := reg.Restore([]Summary{
		{ID: 1, Name: "one", Category: "A", HasFinalize: true},
		{ID: 0, Name: "bad", Category: "A"},
	}, nil)

	if !errors.Is(err, ErrInvalidRule) {
		t.Errorf("Restore() error = %v, want ErrInvalidRule", err)
	}
	r, ok := reg.Get(1)
	if !ok {
		t.Fatal("valid entry was not restored")
	}
	if r.HasFinalize() {
		t.Error("rule restored without resolver should carry no predicate")
	}
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	reg := NewBuiltinRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func(id int) {
			defer wg.Done()
			_ = reg.Register(Rule{ID: 100 + id, Category: "Extra"})
		}(i)
		go func() {
			defer wg.Done()
			_ = reg.All()
			_ = reg.Status()
		}()
	}
	wg.Wait()

	if got := len(reg.ByCategory("Extra")); got != 8 {
		t.Errorf("ByCategory(Extra) has %d rules, want 8", got)
	}
}
