package hooks

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"mercator-hq/governor/pkg/governance/engine"
	"mercator-hq/governor/pkg/governance/eventlog"
	"mercator-hq/governor/pkg/governance/state"
)

type stubHook struct {
	id       string
	cycles   int
	suffix   string
	warning  string
	reply    string
	prompt   string
	closeErr error
	closed   bool
	commands []string
}

func (s *stubHook) ID() string              { return s.id }
func (s *stubHook) OnCycleStart()           { s.cycles++ }
func (s *stubHook) InjectionPrompt() string { return s.prompt }

func (s *stubHook) Finalize(text string) string { return text + s.suffix }

func (s *stubHook) StreamingCheck(string) (string, bool) {
	return s.warning, s.warning != ""
}

func (s *stubHook) HandleCommand(command, params string) string {
	s.commands = append(s.commands, command+":"+params)
	return s.reply
}

func (s *stubHook) Close() error {
	s.closed = true
	return s.closeErr
}

type scoredHook struct {
	stubHook
	score float64
}

func (s *scoredHook) Alignment(string) float64 { return s.score }

func TestComposite_Alignment(t *testing.T) {
	if _, ok := NewComposite(&stubHook{id: "a"}).Alignment("x"); ok {
		t.Error("Alignment() ok = true with no scoring members")
	}

	comp := NewComposite(
		&scoredHook{stubHook: stubHook{id: "a"}, score: 0.9},
		&stubHook{id: "b"},
		&scoredHook{stubHook: stubHook{id: "c"}, score: 0.5},
	)
	score, ok := comp.Alignment("x")
	if !ok || score != 0.5 {
		t.Errorf("Alignment() = %v, %v; want lowest member score 0.5", score, ok)
	}
}

func TestComposite_Dispatch(t *testing.T) {
	a := &stubHook{id: "a", suffix: "+a", reply: "from a", prompt: "prompt a"}
	b := &stubHook{id: "b", suffix: "+b", warning: "careful", prompt: ""}
	c := &stubHook{id: "c", suffix: "+c", warning: "late", reply: "from c", prompt: "prompt c"}
	comp := NewComposite(a, b, c)

	if got := comp.ID(); got != "composite:[a,b,c]" {
		t.Errorf("ID() = %q", got)
	}

	comp.OnCycleStart()
	for _, h := range []*stubHook{a, b, c} {
		if h.cycles != 1 {
			t.Errorf("hook %s cycles = %d, want 1", h.id, h.cycles)
		}
	}

	if got := comp.Finalize("x"); got != "x+a+b+c" {
		t.Errorf("Finalize() = %q, want chained output", got)
	}

	warning, ok := comp.StreamingCheck("partial")
	if !ok || warning != "careful" {
		t.Errorf("StreamingCheck() = %q, %v; want first warning", warning, ok)
	}

	if got := comp.HandleCommand("status", "p"); got != "from a\nfrom c" {
		t.Errorf("HandleCommand() = %q", got)
	}
	if len(b.commands) != 1 || b.commands[0] != "status:p" {
		t.Errorf("silent member did not receive command: %v", b.commands)
	}

	if got := comp.InjectionPrompt(); got != "prompt a\nprompt c\n" {
		t.Errorf("InjectionPrompt() = %q", got)
	}
}

func TestComposite_Empty(t *testing.T) {
	comp := NewComposite()
	if comp.ID() != "composite:[]" {
		t.Errorf("ID() = %q", comp.ID())
	}
	if comp.Finalize("same") != "same" {
		t.Error("empty composite should pass text through")
	}
	if _, ok := comp.StreamingCheck("x"); ok {
		t.Error("empty composite should not warn")
	}
	if comp.HandleCommand("x", "") != "" || comp.InjectionPrompt() != "" {
		t.Error("empty composite should reply with nothing")
	}
}

func TestComposite_Close(t *testing.T) {
	boom := errors.New("boom")
	a := &stubHook{id: "a"}
	b := &stubHook{id: "b", closeErr: boom}
	err := NewComposite(a, b).Close()
	if !errors.Is(err, boom) {
		t.Errorf("Close() = %v, want %v", err, boom)
	}
	if !a.closed || !b.closed {
		t.Error("Close() should close every member")
	}
}

func TestParseEnvelope(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Envelope
		wantErr bool
	}{
		{"string params", `{"hook_command": "invoke_rule", "params": "3"}`, Envelope{"invoke_rule", "3"}, false},
		{"numeric params", `{"hook_command": "log_violation", "params": 7}`, Envelope{"log_violation", "7"}, false},
		{"no params", `{"hook_command": "governance_check"}`, Envelope{Command: "governance_check"}, false},
		{"null params", `{"hook_command": "list_rules", "params": null}`, Envelope{Command: "list_rules"}, false},
		{"missing command", `{"params": "3"}`, Envelope{}, true},
		{"empty command", `{"hook_command": ""}`, Envelope{}, true},
		{"not json", `{hook_command: nope}`, Envelope{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseEnvelope([]byte(tt.input))
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseEnvelope() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseEnvelope() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestExtractEnvelopes(t *testing.T) {
	text := `Sure. {"hook_command": "governance_check"} and {"other": 1} then
{"hook_command": "invoke_rule", "params": "2", "meta": {"k": "v"}} and {"hook_command": broken}`

	got := ExtractEnvelopes(text)
	if len(got) != 2 {
		t.Fatalf("ExtractEnvelopes() returned %d envelopes, want 2: %+v", len(got), got)
	}
	if got[0].Command != "governance_check" || got[1].Command != "invoke_rule" || got[1].Params != "2" {
		t.Errorf("ExtractEnvelopes() = %+v", got)
	}

	if ExtractEnvelopes("no commands here {}") != nil {
		t.Error("text without hook_command should yield nothing")
	}
}

func TestHandleText(t *testing.T) {
	silent := &stubHook{id: "silent"}
	loud := &stubHook{id: "loud", reply: "done"}

	tests := []struct {
		name string
		hook Hook
		text string
		want string
	}{
		{"no command", loud, "plain answer", ""},
		{"no brace", loud, "mention hook_command only", ""},
		{"executes first", loud, `x {"hook_command": "a"} {"hook_command": "b"}`, "done"},
		{"silent reply", silent, `{"hook_command": "a"}`, ""},
		{"malformed", loud, `{"hook_command": 12}`, "Error executing governance command: "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := HandleText(tt.hook, tt.text)
			if tt.want == "" && got != "" {
				t.Errorf("HandleText() = %q, want empty", got)
			}
			if tt.want != "" && !strings.HasPrefix(got, tt.want) {
				t.Errorf("HandleText() = %q, want prefix %q", got, tt.want)
			}
		})
	}

	if len(loud.commands) == 0 || loud.commands[0] != "a:" {
		t.Errorf("first envelope not executed: %v", loud.commands)
	}
}

func TestHandleText_GovernanceEngine(t *testing.T) {
	e, err := engine.New(engine.Options{
		SessionID: "hooks",
		Store:     state.NewMemoryStore(),
		Events:    eventlog.NewMemorySink(0),
	})
	if err != nil {
		t.Fatalf("engine.New() failed: %v", err)
	}
	comp := NewComposite(e)
	comp.OnCycleStart()

	reply := HandleText(comp, `Let me check. {"hook_command": "invoke_rule", "params": "2"}`)
	if !strings.HasPrefix(reply, "Rule 2 has been invoked:") {
		t.Errorf("HandleText() = %q", reply)
	}
	if e.State().InvocationCounts[2] != 1 {
		t.Errorf("InvocationCounts = %v", e.State().InvocationCounts)
	}
	if comp.ID() != "composite:["+engine.HookID+"]" {
		t.Errorf("ID() = %q", comp.ID())
	}
}

func TestSessions(t *testing.T) {
	var created []string
	var active []int
	var mu sync.Mutex
	sessions := NewSessions(func(id string) ([]Hook, error) {
		mu.Lock()
		defer mu.Unlock()
		created = append(created, id)
		return []Hook{&stubHook{id: "stub"}}, nil
	}, WithActiveCallback(func(n int) {
		active = append(active, n)
	}))

	id, first, err := sessions.GetOrCreate("alpha")
	if err != nil {
		t.Fatalf("GetOrCreate() failed: %v", err)
	}
	if id != "alpha" {
		t.Errorf("id = %q, want alpha", id)
	}
	_, again, _ := sessions.GetOrCreate("alpha")
	if first != again {
		t.Error("GetOrCreate() should return the existing composite")
	}

	anon, _, err := sessions.GetOrCreate("")
	if err != nil {
		t.Fatalf("GetOrCreate(\"\") failed: %v", err)
	}
	if len(anon) != 36 {
		t.Errorf("anonymous id = %q, want a UUID", anon)
	}
	if len(created) != 2 || sessions.Len() != 2 {
		t.Errorf("created = %v, Len() = %d", created, sessions.Len())
	}

	member := first.Hooks()[0].(*stubHook)
	if err := sessions.Close("alpha"); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}
	if !member.closed {
		t.Error("Close() should close session members")
	}
	if _, ok := sessions.Lookup("alpha"); ok {
		t.Error("closed session still present")
	}
	if err := sessions.Close("alpha"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Close(unknown) = %v, want ErrSessionNotFound", err)
	}

	if err := sessions.CloseAll(); err != nil {
		t.Fatalf("CloseAll() failed: %v", err)
	}
	if sessions.Len() != 0 {
		t.Errorf("Len() after CloseAll = %d", sessions.Len())
	}
	want := []int{1, 2, 1, 0}
	if len(active) != len(want) {
		t.Fatalf("active callbacks = %v, want %v", active, want)
	}
	for i := range want {
		if active[i] != want[i] {
			t.Errorf("active callbacks = %v, want %v", active, want)
			break
		}
	}
}

func TestSessions_FactoryError(t *testing.T) {
	boom := errors.New("no engine")
	sessions := NewSessions(func(string) ([]Hook, error) { return nil, boom })
	if _, _, err := sessions.GetOrCreate("x"); !errors.Is(err, boom) {
		t.Errorf("GetOrCreate() error = %v, want %v", err, boom)
	}
	if sessions.Len() != 0 {
		t.Error("failed session should not be stored")
	}
}

func TestSessions_IDs(t *testing.T) {
	sessions := NewSessions(func(string) ([]Hook, error) { return nil, nil })
	for _, id := range []string{"c", "a", "b"} {
		if _, _, err := sessions.GetOrCreate(id); err != nil {
			t.Fatalf("GetOrCreate(%s) failed: %v", id, err)
		}
	}
	if got := strings.Join(sessions.IDs(), ","); got != "a,b,c" {
		t.Errorf("IDs() = %q", got)
	}
}
