package uxn

// Stack is one of the two 256-byte circular stacks (working or return) that
// back every Uxn opcode. Index arithmetic on ptr wraps modulo 256, exactly
// like the reference machine's uint8 pointer.
type Stack struct {
	dat [0x101]byte
	ptr uint8
}

// Depth returns the current stack pointer, i.e. the number of bytes pushed.
func (s *Stack) Depth() uint8 { return s.ptr }

// Reset empties the stack without clearing its backing bytes.
func (s *Stack) Reset() { s.ptr = 0 }

// SetPtr sets the stack pointer directly, used by the system device's
// wst/rst port writeback (ports 0x04/0x05).
func (s *Stack) SetPtr(ptr uint8) { s.ptr = ptr }

func (s *Stack) T() byte { return s.dat[s.ptr] }
func (s *Stack) N() byte { return s.dat[uint8(s.ptr-1)] }
func (s *Stack) L() byte { return s.dat[uint8(s.ptr-2)] }
func (s *Stack) X() byte { return s.dat[uint8(s.ptr-3)] }
func (s *Stack) Y() byte { return s.dat[uint8(s.ptr-4)] }
func (s *Stack) Z() byte { return s.dat[uint8(s.ptr-5)] }

func (s *Stack) SetT(v byte) { s.dat[s.ptr] = v }
func (s *Stack) SetN(v byte) { s.dat[uint8(s.ptr-1)] = v }
func (s *Stack) SetL(v byte) { s.dat[uint8(s.ptr-2)] = v }
func (s *Stack) SetX(v byte) { s.dat[uint8(s.ptr-3)] = v }
func (s *Stack) SetY(v byte) { s.dat[uint8(s.ptr-4)] = v }
func (s *Stack) SetZ(v byte) { s.dat[uint8(s.ptr-5)] = v }

func (s *Stack) T2() uint16 { return uint16(s.N())<<8 | uint16(s.T()) }
func (s *Stack) H2() uint16 { return uint16(s.L())<<8 | uint16(s.N()) }
func (s *Stack) N2() uint16 { return uint16(s.X())<<8 | uint16(s.L()) }
func (s *Stack) L2() uint16 { return uint16(s.Z())<<8 | uint16(s.Y()) }

func (s *Stack) SetT2(v uint16) { s.SetT(byte(v)); s.SetN(byte(v >> 8)) }
func (s *Stack) SetN2(v uint16) { s.SetL(byte(v)); s.SetX(byte(v >> 8)) }
func (s *Stack) SetL2(v uint16) { s.SetY(byte(v)); s.SetZ(byte(v >> 8)) }

// Shift moves the stack pointer by delta, a signed two's-complement step,
// wrapping modulo 256 the same way the reference machine's u8 pointer does.
func (s *Stack) Shift(delta int) { s.ptr = byte(int(s.ptr) + delta) }

// Peek returns the byte at index ptr+offsetFromPtr (wrapping modulo 256);
// a negative offset reads below the top, including below ptr-5.
func (s *Stack) Peek(offsetFromPtr int) byte {
	return s.dat[byte(int(s.ptr)+offsetFromPtr)]
}

// Bytes exposes the raw circular buffer, used by the screen debugger overlay.
func (s *Stack) Bytes() *[0x101]byte { return &s.dat }
