package dictlog

import "testing"

func TestSetTraceTogglesState(t *testing.T) {
	SetTrace(true)
	if !TraceEnabled() {
		t.Fatal("expected trace to be enabled")
	}
	SetTrace(false)
	if TraceEnabled() {
		t.Fatal("expected trace to be disabled")
	}
}

func TestTraceIsNoopWhenDisabled(t *testing.T) {
	SetTrace(false)
	// Must not panic even with an unusual value; the whole point is
	// that callers can call Trace unconditionally.
	Trace("keywords", []string{"HAUS"})
}
