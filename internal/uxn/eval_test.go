package uxn

import "testing"

func run(t *testing.T, program []byte) *Machine {
	t.Helper()
	m := &Machine{}
	if err := m.Init(program); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if !m.Eval(PageProgram) {
		t.Fatalf("Eval returned false, program never reached BRK")
	}
	return m
}

func TestLitAdd(t *testing.T) {
	m := run(t, []byte{0x80, 0x01, 0x80, 0x02, 0x18, 0x00}) // #01 #02 ADD BRK
	if got := m.WST.T(); got != 3 {
		t.Fatalf("T() = %d, want 3", got)
	}
	if m.WST.Depth() != 1 {
		t.Fatalf("Depth() = %d, want 1", m.WST.Depth())
	}
}

func TestLit2(t *testing.T) {
	m := run(t, []byte{0xa0, 0x01, 0x02, 0x00}) // #0102 BRK
	if got := m.WST.T2(); got != 0x0102 {
		t.Fatalf("T2() = %#x, want 0x0102", got)
	}
}

func TestDup(t *testing.T) {
	m := run(t, []byte{0x80, 0x07, 0x06, 0x00}) // #07 DUP BRK
	if m.WST.Depth() != 2 {
		t.Fatalf("Depth() = %d, want 2", m.WST.Depth())
	}
	if m.WST.T() != 7 || m.WST.N() != 7 {
		t.Fatalf("T()=%d N()=%d, want both 7", m.WST.T(), m.WST.N())
	}
}

func TestSwap(t *testing.T) {
	m := run(t, []byte{0x80, 0x01, 0x80, 0x02, 0x04, 0x00}) // #01 #02 SWP BRK
	if m.WST.T() != 1 || m.WST.N() != 2 {
		t.Fatalf("T()=%d N()=%d, want T=1 N=2", m.WST.T(), m.WST.N())
	}
}

func TestEqu(t *testing.T) {
	m := run(t, []byte{0x80, 0x05, 0x80, 0x05, 0x08, 0x00}) // #05 #05 EQU BRK
	if m.WST.T() != 1 {
		t.Fatalf("T() = %d, want 1 (equal)", m.WST.T())
	}
}

func TestJcnTaken(t *testing.T) {
	// #01 #02 JCN: condition (N=01) is nonzero, so pc jumps by the offset
	// (T=02) past the INC/BRK pair straight to the trailing LIT 09.
	prog := []byte{
		0x80, 0x01, // LIT 01 (addr 0x100,0x101) -> becomes N
		0x80, 0x02, // LIT 02 (addr 0x102,0x103) -> becomes T, the offset
		0x0d,       // JCN    (addr 0x104); pc after fetch = 0x105, +2 = 0x107
		0x01,       // INC (skipped, would increment T)
		0x00,       // BRK (skipped)
		0x80, 0x09, // LIT 09 (addr 0x107,0x108)
		0x00,       // BRK    (addr 0x109)
	}
	m := run(t, prog)
	if m.WST.T() != 0x09 {
		t.Fatalf("T() = %#x, want 0x09 (branch taken)", m.WST.T())
	}
}

func TestStackedToReturnStack(t *testing.T) {
	m := run(t, []byte{0x80, 0x2a, 0x0f, 0x00}) // #2a STH BRK
	if m.WST.Depth() != 0 {
		t.Fatalf("WST.Depth() = %d, want 0 (moved to RST)", m.WST.Depth())
	}
	if m.RST.Depth() != 1 || m.RST.T() != 0x2a {
		t.Fatalf("RST.T() = %#x depth=%d, want 0x2a depth=1", m.RST.T(), m.RST.Depth())
	}
}

func TestDivideByZero(t *testing.T) {
	m := run(t, []byte{0x80, 0x05, 0x80, 0x00, 0x1b, 0x00}) // #05 #00 DIV BRK
	if m.WST.T() != 0 {
		t.Fatalf("T() = %d, want 0 (div by zero yields 0)", m.WST.T())
	}
}

type recordingDevice struct {
	deiPorts []byte
	deoPorts []byte
}

func (d *recordingDevice) BeforeDEI(m *Machine, port byte) {
	d.deiPorts = append(d.deiPorts, port)
	m.Dev[port] = 0x42
}

func (d *recordingDevice) AfterDEO(m *Machine, port byte) {
	d.deoPorts = append(d.deoPorts, port)
}

func TestDeviceDeiDeo(t *testing.T) {
	dev := &recordingDevice{}
	m := &Machine{Device: dev}
	// #99 #18 DEO #18 DEI BRK
	if err := m.Init([]byte{0x80, 0x99, 0x80, 0x18, 0x17, 0x80, 0x18, 0x16, 0x00}); err != nil {
		t.Fatal(err)
	}
	m.Eval(PageProgram)
	if len(dev.deoPorts) != 1 || dev.deoPorts[0] != 0x18 {
		t.Fatalf("deoPorts = %v, want [0x18]", dev.deoPorts)
	}
	if len(dev.deiPorts) != 1 || dev.deiPorts[0] != 0x18 {
		t.Fatalf("deiPorts = %v, want [0x18]", dev.deiPorts)
	}
	if m.WST.T() != 0x42 {
		t.Fatalf("T() = %#x, want 0x42 (from DEI)", m.WST.T())
	}
}

func TestUninitializedMachineDoesNotRun(t *testing.T) {
	m := &Machine{}
	if m.Eval(PageProgram) {
		t.Fatalf("Eval on an uninitialized machine should return false")
	}
}

func TestHaltFlagStopsEval(t *testing.T) {
	m := &Machine{}
	if err := m.Init([]byte{0x00}); err != nil {
		t.Fatal(err)
	}
	m.Dev[0x0f] = 1
	if m.Eval(PageProgram) {
		t.Fatalf("Eval should refuse to run while the halt flag is set")
	}
}
