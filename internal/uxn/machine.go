// Package uxn implements the Uxn stack-machine CPU: 64KiB addressable RAM
// (plus lazily-allocated extension banks), a 256-byte device page, and the
// byte-at-a-time opcode interpreter described by the reference Uxn
// instruction set. It has no notion of screens, audio, or files — those are
// supplied by a Device hooked in by the embedding package (see
// package varvara).
package uxn

import "fmt"

// PageProgram is the first address of RAM available to a loaded ROM; the
// 256 bytes below it are zero page, reserved for program use via LDZ/STZ.
const PageProgram = 0x100

// Device receives the two hooks the reference machine calls virtual methods
// for: BeforeDEI fires just before a DEI opcode reads a device port (so the
// device can latch a live value into dev[port] first), AfterDEO fires right
// after a DEO opcode writes one (so the device can act on it).
type Device interface {
	BeforeDEI(m *Machine, port byte)
	AfterDEO(m *Machine, port byte)
}

// Logger receives CPU-level diagnostics; internal/hostlog's Logger.For
// adapts its component-tagged structured logger to this. A nil Logger is
// valid and silences diagnostics entirely.
type Logger interface {
	Debugf(format string, args ...any)
}

// Machine is one Uxn CPU: registers, RAM, the device page, and the working
// and return stacks. It has no knowledge of what's plugged into the device
// page; that's the Device's job.
type Machine struct {
	Ram [0x10001]byte
	Dev [0x101]byte

	WST, RST Stack

	Device      Device
	Logger      Logger
	Initialized bool

	banks *bankIndex1
}

// Peek2 reads a big-endian 16-bit value at addr. The second byte's index is
// widened to uint32 before adding 1, so addr=0xffff reads Ram[0xffff] and
// Ram[0x10000] (the guard byte) instead of wrapping around to Ram[0].
func (m *Machine) Peek2(addr uint16) uint16 {
	return m.rawPeek2(addr)
}

// Poke2 writes a big-endian 16-bit value at addr with the same guard-byte-
// safe addressing as Peek2.
func (m *Machine) Poke2(addr uint16, v uint16) {
	idx := uint32(addr)
	m.Ram[idx] = byte(v >> 8)
	m.Ram[idx+1] = byte(v)
}

// rawPeek2 reads two consecutive bytes at addr without wrapping the second
// index modulo 0x10000: addr=0xffff reads Ram[0xffff] and Ram[0x10000], the
// guard byte that keeps this in bounds. This mirrors the C++ reference's
// peek2(u8*), used both on ordinary 16-bit addresses and on raw pointers
// (JMI/JCI/JSI's relative jump reads).
func (m *Machine) rawPeek2(addr uint16) uint16 {
	idx := uint32(addr)
	return uint16(m.Ram[idx])<<8 | uint16(m.Ram[idx+1])
}

// DevPeek2 reads a big-endian pair from the device page the same
// guard-byte-safe way, used by CallVec to fetch a device's vector.
func (m *Machine) DevPeek2(port byte) uint16 {
	idx := uint32(port)
	return uint16(m.Dev[idx])<<8 | uint16(m.Dev[idx+1])
}

func (m *Machine) DevPoke2(port byte, v uint16) {
	idx := uint32(port)
	m.Dev[idx] = byte(v >> 8)
	m.Dev[idx+1] = byte(v)
}

// Bank returns the 64KiB page backing extension bank index, allocating it
// (and its parent index table) on first use. Bank 0 is main RAM.
func (m *Machine) Bank(index uint16) []byte {
	if index == 0 {
		return m.Ram[:]
	}
	if m.banks == nil {
		m.banks = &bankIndex1{}
	}
	b := m.banks.at(uint8(index >> 8)).at(uint8(index))
	return b.mem[:]
}

// NullTerminatedString returns the RAM slice starting at addr up to (not
// including) the first zero byte, or an empty slice if addr is already
// zero or scanning would run off the end of the address space.
func (m *Machine) NullTerminatedString(addr uint16) []byte {
	end := addr
	for end >= addr && m.Ram[end] != 0 {
		end++
		if end == 0 {
			return m.Ram[addr:addr]
		}
	}
	if end < addr {
		return m.Ram[addr:addr]
	}
	return m.Ram[addr:end]
}

// BoundedRange returns a RAM slice of length bytes starting at addr, clamped
// so it never reads past the end of the 64KiB address space.
func (m *Machine) BoundedRange(addr, length uint16) []byte {
	if uint32(addr)+uint32(length) > 0xffff {
		length = uint16(0x10000 - uint32(addr))
	}
	return m.Ram[addr : uint32(addr)+uint32(length)]
}

func (m *Machine) logf(format string, args ...any) {
	if m.Logger != nil {
		m.Logger.Debugf(format, args...)
	}
}

// Init performs a cold reset and marks the machine ready to run.
func (m *Machine) Init(bootROM []byte) error {
	if len(bootROM) == 0 {
		return fmt.Errorf("uxn: boot rom is empty")
	}
	m.Reset(false, bootROM)
	m.Initialized = true
	return nil
}

// Reset reloads RAM from bootROM starting at PageProgram, spilling into
// banks 1.. when the ROM is larger than 64KiB-PageProgram, zeroes zero page
// unless soft is set, and always clears the device page and both stack
// pointers, matching Uxn::reset.
func (m *Machine) Reset(soft bool, bootROM []byte) {
	m.banks = nil
	if !soft {
		for i := 0; i < PageProgram; i++ {
			m.Ram[i] = 0
		}
	}
	i := 0
	for off := 0; off < 0x10000-PageProgram; off++ {
		var b byte
		if i < len(bootROM) {
			b = bootROM[i]
		}
		m.Ram[PageProgram+off] = b
		i++
	}
	for bankIx := 1; bankIx < 0x10000 && i < len(bootROM); bankIx++ {
		dst := m.Bank(uint16(bankIx))
		for off := 0; off < 0x10000 && i < len(bootROM); off, i = off+1, i+1 {
			dst[off] = bootROM[i]
		}
	}
	for i := 0; i < 0x100; i++ {
		m.Dev[i] = 0
	}
	m.WST.Reset()
	m.RST.Reset()
	m.logf("reset soft=%v rom_bytes=%d", soft, len(bootROM))
}

// CallVec reads a 16-bit vector from the device page at port and, if it is
// non-zero, evaluates the program starting there. It returns false (a
// no-op) when the vector is zero, matching Uxn::call_vec.
func (m *Machine) CallVec(port byte) bool {
	addr := m.DevPeek2(port)
	if addr == 0 {
		return false
	}
	return m.Eval(addr)
}
