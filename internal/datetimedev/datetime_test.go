package datetimedev

import (
	"testing"
	"time"

	"varvara/internal/uxn"
)

func TestBeforeDEIFieldsMatchFixedInstant(t *testing.T) {
	fixed := time.Date(2026, time.March, 5, 14, 30, 45, 0, time.UTC)
	d := &Datetime{Now: func() time.Time { return fixed }}
	m := &uxn.Machine{}

	for port := byte(portBase); port <= portBase+0xa; port++ {
		d.BeforeDEI(m, port)
	}

	year := uint16(m.Dev[portBase])<<8 | uint16(m.Dev[portBase+1])
	if year != 2026 {
		t.Fatalf("year = %d, want 2026", year)
	}
	if m.Dev[portBase+2] != 2 { // month is 0-indexed
		t.Fatalf("month = %d, want 2 (March-1)", m.Dev[portBase+2])
	}
	if m.Dev[portBase+3] != 5 {
		t.Fatalf("day = %d, want 5", m.Dev[portBase+3])
	}
	if m.Dev[portBase+4] != 14 {
		t.Fatalf("hour = %d, want 14", m.Dev[portBase+4])
	}
	if m.Dev[portBase+5] != 30 {
		t.Fatalf("minute = %d, want 30", m.Dev[portBase+5])
	}
	if m.Dev[portBase+6] != 45 {
		t.Fatalf("second = %d, want 45", m.Dev[portBase+6])
	}
}

func TestBeforeDEIIgnoresPortsOutsideRange(t *testing.T) {
	d := &Datetime{Now: func() time.Time { return time.Unix(0, 0) }}
	m := &uxn.Machine{}
	m.Dev[0x50] = 0xaa
	d.BeforeDEI(m, 0x50)
	if m.Dev[0x50] != 0xaa {
		t.Fatalf("BeforeDEI should not touch ports outside 0xc0-0xca")
	}
}
