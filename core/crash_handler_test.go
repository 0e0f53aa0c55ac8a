package core

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func stubCrash(t *testing.T) (*bytes.Buffer, chan int) {
	t.Helper()
	var out bytes.Buffer
	codes := make(chan int, 4)

	origOut, origExit := crashOut, crashExit
	crashOut = &out
	crashExit = func(code int) { codes <- code }
	t.Cleanup(func() {
		crashOut, crashExit = origOut, origExit
		SetCrashReset(nil)
	})
	return &out, codes
}

func TestHandleCrashNil(t *testing.T) {
	out, codes := stubCrash(t)
	HandleCrash(nil)

	select {
	case code := <-codes:
		t.Errorf("Expected no exit, got code %d", code)
	default:
	}
	if out.Len() != 0 {
		t.Errorf("Expected no output, got %q", out.String())
	}
}

func TestHandleCrashResetsOnce(t *testing.T) {
	out, codes := stubCrash(t)
	resets := 0
	SetCrashReset(func() { resets++ })

	HandleCrash("boom")
	HandleCrash("again")

	if resets != 1 {
		t.Errorf("Expected reset hook once, got %d", resets)
	}
	if !strings.Contains(out.String(), "CRASH DETECTED: boom") {
		t.Errorf("Expected crash report, got %q", out.String())
	}
	if code := <-codes; code != 1 {
		t.Errorf("Expected exit code 1, got %d", code)
	}
}

func TestGoRecoversPanic(t *testing.T) {
	out, codes := stubCrash(t)

	Go(func() { panic("goroutine failure") })

	select {
	case code := <-codes:
		if code != 1 {
			t.Errorf("Expected exit code 1, got %d", code)
		}
	case <-time.After(time.Second):
		t.Fatal("Panic was not handled")
	}
	if !strings.Contains(out.String(), "goroutine failure") {
		t.Errorf("Expected panic value in report, got %q", out.String())
	}
}
