package logging

import "testing"

func TestVerbosefNilReceiverDoesNotPanic(t *testing.T) {
	var l *Logger
	l.Verbosef("should be a no-op: %d", 1)
}

func TestVerbosefDisabledDoesNotPanic(t *testing.T) {
	l := New(false)
	l.Verbosef("should be a no-op: %d", 1)
}

func TestNewSetsVerbose(t *testing.T) {
	l := New(true)
	if !l.Verbose {
		t.Fatal("expected Verbose to be true")
	}
}
