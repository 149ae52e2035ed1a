// Package consoledev implements the Varvara console device: stdin feeds the
// input vector one byte at a time, and DEO writes on ports 0x18/0x19 go to
// stdout/stderr.
package consoledev

import "varvara/internal/uxn"

// Type tags how a byte arrived at the console's read vector, mirroring the
// reference ConsoleType enum.
type Type byte

const (
	NoQueue        Type = 0
	Stdin          Type = 1
	Argument       Type = 2
	ArgumentSpacer Type = 3
	ArgumentEnd    Type = 4
)

const (
	portVector = 0x10
	portRead   = 0x12
	portType   = 0x17
	portWrite  = 0x18
	portError  = 0x19
)

// Console is a Device (see uxn.Device) plus a Go-side sink for the bytes
// the ROM writes out. Write and WriteError default to no-ops when nil, so a
// headless test machine doesn't need to wire them up.
type Console struct {
	Write      func(b byte)
	WriteError func(b byte)
}

func (c *Console) BeforeDEI(m *uxn.Machine, port byte) {}

func (c *Console) AfterDEO(m *uxn.Machine, port byte) {
	switch port {
	case portWrite:
		if c.Write != nil {
			c.Write(m.Dev[portWrite])
		}
	case portError:
		if c.WriteError != nil {
			c.WriteError(m.Dev[portError])
		}
	}
}

// ReadByte feeds one byte into the console's read vector and runs it,
// matching Console::read_byte.
func (c *Console) ReadByte(m *uxn.Machine, b byte, t Type) bool {
	m.Dev[portRead] = b
	m.Dev[portType] = byte(t)
	return m.CallVec(portVector)
}

// FeedArgs drives the ROM's argument vector the way a reference host passes
// os.Args: each argument's bytes as Argument, a single space as
// ArgumentSpacer between them, and a final zero byte as ArgumentEnd.
func (c *Console) FeedArgs(m *uxn.Machine, args []string) bool {
	for i, arg := range args {
		if i > 0 {
			if !c.ReadByte(m, ' ', ArgumentSpacer) {
				return false
			}
		}
		for _, ch := range []byte(arg) {
			if !c.ReadByte(m, ch, Argument) {
				return false
			}
		}
	}
	return c.ReadByte(m, 0, ArgumentEnd)
}
