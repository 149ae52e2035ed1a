package varvara

import (
	"testing"

	"varvara/internal/uxn"
)

func TestStackPointerReadbackAndWriteback(t *testing.T) {
	v, err := New(64, 64, nil, t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	m := &uxn.Machine{Device: v}
	m.WST.Shift(3)

	v.BeforeDEI(m, sysWST)
	if m.Dev[sysWST] != 3 {
		t.Fatalf("dev[sysWST] = %d, want 3", m.Dev[sysWST])
	}

	m.Dev[sysWST] = 5
	v.AfterDEO(m, sysWST)
	if m.WST.Depth() != 5 {
		t.Fatalf("WST.Depth() = %d, want 5 after writeback", m.WST.Depth())
	}
}

func TestSystemDebugCallback(t *testing.T) {
	v, err := New(64, 64, nil, t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	var seen bool
	v.OnSystemDebug = func(enabled bool) { seen = enabled }
	m := &uxn.Machine{Device: v}
	m.Dev[sysDebug] = 1
	v.AfterDEO(m, sysDebug)
	if !seen {
		t.Fatalf("OnSystemDebug should have fired with enabled=true")
	}
}

func TestDMACopiesBetweenBanks(t *testing.T) {
	v, err := New(64, 64, nil, t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	m := &uxn.Machine{Device: v}
	cmd := uint16(0x2000)
	m.Ram[cmd] = 0x1
	m.Poke2(cmd+1, 4)      // length
	m.Poke2(cmd+3, 0)      // src bank
	m.Poke2(cmd+5, 0x3000) // src addr
	m.Poke2(cmd+7, 1)      // dst bank
	m.Poke2(cmd+9, 0x10)   // dst addr
	copy(m.Ram[0x3000:], []byte{1, 2, 3, 4})

	m.DevPoke2(sysDMAAddr, cmd)
	v.AfterDEO(m, 0x03)

	dst := m.Bank(1)
	if dst[0x10] != 1 || dst[0x11] != 2 || dst[0x12] != 3 || dst[0x13] != 4 {
		t.Fatalf("bank 1 at 0x10 = %v, want [1 2 3 4]", dst[0x10:0x14])
	}
}

func TestDMANearTopOfRAMIsANoOp(t *testing.T) {
	v, err := New(64, 64, nil, t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	m := &uxn.Machine{Device: v}
	cmd := uint16(0xfff8) // 0xfff8 > 0x10000-10, command block wouldn't fit
	m.Ram[cmd] = 0x1

	m.DevPoke2(sysDMAAddr, cmd)
	v.AfterDEO(m, 0x03)

	dst := m.Bank(0)
	for i := uint16(0); i < 0x10; i++ {
		if dst[i] != 0 {
			t.Fatalf("bank 0 at %#x = %d, want untouched 0 (DMA should have been skipped)", i, dst[i])
		}
	}
}

func TestConsoleRoutedThroughVarvara(t *testing.T) {
	v, err := New(64, 64, nil, t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	var got byte
	v.Console.Write = func(b byte) { got = b }
	m := &uxn.Machine{Device: v}
	m.Dev[0x18] = 'x'
	v.AfterDEO(m, 0x18)
	if got != 'x' {
		t.Fatalf("console write = %q, want 'x'", got)
	}
}

func TestHalted(t *testing.T) {
	v, err := New(64, 64, nil, t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	m := &uxn.Machine{}
	if v.Halted(m) {
		t.Fatalf("should not be halted initially")
	}
	m.Dev[sysHalt] = 1
	if !v.Halted(m) {
		t.Fatalf("should be halted once port 0x0f is set")
	}
}
