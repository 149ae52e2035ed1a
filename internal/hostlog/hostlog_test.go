package hostlog

import (
	"bytes"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestComponentsDisabledByDefault(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, log.DebugLevel)
	l.Debugf(ComponentCPU, "pc=%#x", 0x100)
	if buf.Len() != 0 {
		t.Fatalf("output = %q, want empty (component not enabled)", buf.String())
	}
}

func TestEnableLetsComponentThrough(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, log.DebugLevel)
	l.Enable(ComponentCPU)
	l.Debugf(ComponentCPU, "pc=%#x", 0x100)
	if !strings.Contains(buf.String(), "pc=0x100") {
		t.Fatalf("output = %q, want it to contain the message", buf.String())
	}
}

func TestDisableStopsOutputAgain(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, log.DebugLevel)
	l.Enable(ComponentAudio)
	l.Disable(ComponentAudio)
	l.Debugf(ComponentAudio, "voice 0 started")
	if buf.Len() != 0 {
		t.Fatalf("output = %q, want empty after Disable", buf.String())
	}
}

func TestErrorfIsNeverFiltered(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, log.DebugLevel)
	l.Errorf(ComponentFS, "open failed")
	if !strings.Contains(buf.String(), "open failed") {
		t.Fatalf("output = %q, want it to contain the error", buf.String())
	}
}

func TestForAdaptsToUxnLogger(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, log.DebugLevel)
	l.Enable(ComponentCPU)
	adapted := l.For(ComponentCPU)
	adapted.Debugf("reset soft=%v", false)
	if !strings.Contains(buf.String(), "reset soft=false") {
		t.Fatalf("output = %q, want it to contain the adapted message", buf.String())
	}
}
