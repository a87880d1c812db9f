package logger

import (
	"bytes"
	"os"
	"testing"
)

// capture redirects logger output into a buffer and restores defaults
// when the test ends.
func capture(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() {
		SetVerbose(false)
		SetOutput(os.Stderr)
	})
	return &buf
}

func TestSetVerbose(t *testing.T) {
	capture(t)

	SetVerbose(false)
	if IsVerbose() {
		t.Error("expected verbose to be false initially")
	}

	SetVerbose(true)
	if !IsVerbose() {
		t.Error("expected verbose to be true after SetVerbose(true)")
	}

	SetVerbose(false)
	if IsVerbose() {
		t.Error("expected verbose to be false after SetVerbose(false)")
	}
}

func TestDebug_WhenVerbose(t *testing.T) {
	buf := capture(t)
	SetVerbose(true)

	Debug("document %s unchanged", "guidance.txt")

	if got := buf.String(); got != "[DEBUG] document guidance.txt unchanged\n" {
		t.Errorf("unexpected output: %q", got)
	}
}

func TestDebug_WhenNotVerbose(t *testing.T) {
	buf := capture(t)
	SetVerbose(false)

	Debug("document guidance.txt unchanged")

	if buf.Len() > 0 {
		t.Error("expected no output when verbose is disabled")
	}
}

func TestSection(t *testing.T) {
	buf := capture(t)
	SetVerbose(true)

	Section("Force Reingest")

	if got := buf.String(); got != "\n=== Force Reingest ===\n" {
		t.Errorf("unexpected section output: %q", got)
	}
}

func TestInfo(t *testing.T) {
	buf := capture(t)
	SetVerbose(true)

	Info("indexed %d entries", 42)

	if got := buf.String(); got != "[INFO] indexed 42 entries\n" {
		t.Errorf("unexpected info output: %q", got)
	}
}

func TestWarn(t *testing.T) {
	buf := capture(t)
	SetVerbose(true)

	Warn("registry file corrupt, starting fresh")

	if got := buf.String(); got != "[WARN] registry file corrupt, starting fresh\n" {
		t.Errorf("unexpected warn output: %q", got)
	}
}

func TestConcurrentAccess(t *testing.T) {
	capture(t)

	done := make(chan bool)
	for i := 0; i < 10; i++ {
		go func() {
			SetVerbose(true)
			Debug("reconcile worker %d", i)
			IsVerbose()
			SetVerbose(false)
			done <- true
		}()
	}

	for i := 0; i < 10; i++ {
		<-done
	}
	// Passes if the race detector stays quiet.
}
