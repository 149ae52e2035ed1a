// Package varvara ties the CPU-level uxn.Machine to the full Varvara device
// bus: the system page (palette, debug flag, DMA, stack-pointer readback)
// plus console, screen, audio, controller, mouse, filesystem, and datetime,
// exactly the way the reference Varvara facade routes before_dei/after_deo
// to each sub-device by port range.
package varvara

import (
	"varvara/internal/audiodev"
	"varvara/internal/consoledev"
	"varvara/internal/datetimedev"
	"varvara/internal/fsdev"
	"varvara/internal/inputdev"
	"varvara/internal/screendev"
	"varvara/internal/uxn"
)

const (
	sysDMAAddr = 0x02
	sysWST     = 0x04
	sysRST     = 0x05
	sysRed     = 0x08
	sysGreen   = 0x0a
	sysBlue    = 0x0c
	sysDebug   = 0x0e
	sysHalt    = 0x0f
)

// Varvara wires every Varvara sub-device to a single uxn.Machine as one
// uxn.Device, matching the reference facade's constructor-time wiring.
type Varvara struct {
	Console    consoledev.Console
	Screen     *screendev.Screen
	Audio      audiodev.Audio
	Controller inputdev.Controller
	Mouse      inputdev.Mouse
	Filesystem *fsdev.Filesystem
	Datetime   datetimedev.Datetime

	// OnSystemDebug fires whenever the ROM toggles the system debug port
	// (0x0e), matching Varvara::on_system_debug.
	OnSystemDebug func(enabled bool)
}

// New builds a Varvara bus with a screen of the given size and a filesystem
// sandboxed to root. presenter may be nil (falls back to a no-op sink).
func New(width, height uint16, presenter screendev.Presenter, root string) (*Varvara, error) {
	fs, err := fsdev.New(root)
	if err != nil {
		return nil, err
	}
	return &Varvara{
		Screen:     screendev.New(width, height, presenter),
		Filesystem: fs,
	}, nil
}

func (v *Varvara) BeforeDEI(m *uxn.Machine, port byte) {
	switch {
	case port == sysWST:
		m.Dev[port] = m.WST.Depth()
	case port == sysRST:
		m.Dev[port] = m.RST.Depth()
	case port >= 0x20 && port <= 0x2f:
		v.Screen.BeforeDEI(m, port)
	case port >= 0x30 && port <= 0x6f:
		v.Audio.BeforeDEI(m, port)
	case port >= 0x80 && port <= 0x8f:
		v.Controller.BeforeDEI(m, port)
	case port >= 0x90 && port <= 0x9f:
		v.Mouse.BeforeDEI(m, port)
	case port >= 0xa0 && port <= 0xaf:
		v.Filesystem.BeforeDEI(m, port)
	case port >= 0xc0 && port <= 0xca:
		v.Datetime.BeforeDEI(m, port)
	}
}

func (v *Varvara) AfterDEO(m *uxn.Machine, port byte) {
	switch {
	case port == 0x03:
		v.dma(m)
	case port == sysWST:
		m.WST.SetPtr(m.Dev[port])
	case port == sysRST:
		m.RST.SetPtr(m.Dev[port])
	case port == sysRed || port == sysRed+1 ||
		port == sysGreen || port == sysGreen+1 ||
		port == sysBlue || port == sysBlue+1:
		v.Screen.UpdatePalette(m)
	case port == sysDebug:
		if v.OnSystemDebug != nil {
			v.OnSystemDebug(m.Dev[sysDebug] != 0)
		}
	case port == 0x18 || port == 0x19:
		v.Console.AfterDEO(m, port)
	case port >= 0x20 && port <= 0x2f:
		v.Screen.AfterDEO(m, port)
	case port >= 0x30 && port <= 0x6f:
		v.Audio.AfterDEO(m, port)
	case port >= 0x80 && port <= 0x8f:
		v.Controller.AfterDEO(m, port)
	case port >= 0x90 && port <= 0x9f:
		v.Mouse.AfterDEO(m, port)
	case port >= 0xa0 && port <= 0xaf:
		v.Filesystem.AfterDEO(m, port)
	case port >= 0xc0 && port <= 0xca:
		v.Datetime.AfterDEO(m, port)
	}
}

// dma implements the system page's bank-to-bank copy device: writing a
// nonzero trigger byte at the address held in dev+0x02 runs a copy whose
// parameters (length, source bank/addr, dest bank/addr) sit in the 10 bytes
// right after that trigger byte, matching Varvara::after_deo's
// port-0x03 case.
func (v *Varvara) dma(m *uxn.Machine) {
	addr := m.DevPeek2(sysDMAAddr)
	if m.Ram[addr] != 0x1 || addr > 0x10000-10 {
		return
	}
	length := m.Peek2(addr + 1)
	srcBank := m.Peek2(addr + 3)
	srcAddr := m.Peek2(addr + 5)
	dstBank := m.Peek2(addr + 7)
	dstAddr := m.Peek2(addr + 9)
	src := m.Bank(srcBank)
	dst := m.Bank(dstBank)
	for i := uint16(0); i < length; i++ {
		dst[dstAddr+i] = src[srcAddr+i]
	}
}

// Boot loads filename through the sandboxed Filesystem and runs it as the
// boot ROM.
func (v *Varvara) Boot(m *uxn.Machine, filename string) error {
	rom, err := v.Filesystem.Load(filename)
	if err != nil {
		return err
	}
	return m.Init(rom)
}

// Halted reports whether the system halt flag (port 0x0f) is set.
func (v *Varvara) Halted(m *uxn.Machine) bool { return m.Dev[sysHalt] != 0 }
