package uxn

// Eval runs the interpreter starting at pc until a BRK instruction or a
// vector-disable (dev[0x0f] nonzero, the system "halt" flag) stops it. It
// returns false without running anything when the machine is uninitialized,
// pc is zero, or the halt flag is already set, and true otherwise, matching
// Uxn::eval's bool return.
func (m *Machine) Eval(pc uint16) bool {
	if !m.Initialized || pc == 0 || m.Dev[0x0f] != 0 {
		return false
	}
	ram := &m.Ram
	for m.Dev[0x0f] == 0 {
		ins := ram[pc]
		pc++

		s := &m.WST
		if ins&0x40 != 0 {
			s = &m.RST
		}
		flip := func() {
			if ins&0x40 != 0 {
				s = &m.WST
			} else {
				s = &m.RST
			}
		}
		keep := ins&0x80 != 0
		set := func(keepDelta, normalDelta int) {
			if keep {
				s.Shift(keepDelta + normalDelta)
			} else {
				s.Shift(normalDelta)
			}
		}

		switch ins & 0x3f {
		case 0x00, 0x20:
			switch ins {
			case 0x00: // BRK
				return true
			case 0x20: // JCI
				t := s.T()
				s.Shift(-1)
				if t == 0 {
					pc += 2
				} else {
					pc += 2 + m.rawPeek2(pc)
				}
			case 0x40: // JMI
				pc += 2 + m.rawPeek2(pc)
			case 0x60: // JSI
				s.Shift(2)
				rr := pc
				pc += 2
				s.SetT2(pc)
				pc += m.rawPeek2(rr)
			case 0x80, 0xc0: // LIT
				s.Shift(1)
				s.SetT(ram[pc])
				pc++
			case 0xa0, 0xe0: // LIT2
				s.Shift(2)
				s.SetN(ram[pc])
				pc++
				s.SetT(ram[pc])
				pc++
			}
			continue
		}

		short := ins&0x20 != 0
		switch ins & 0x1f {
		case 0x01: // INC / INC2
			if short {
				t := s.T2()
				set(2, 0)
				s.SetT2(t + 1)
			} else {
				t := s.T()
				set(1, 0)
				s.SetT(t + 1)
			}
		case 0x02: // POP / POP2
			if short {
				set(2, -2)
			} else {
				set(1, -1)
			}
		case 0x03: // NIP / NIP2
			if short {
				t := s.T2()
				set(4, -2)
				s.SetT2(t)
			} else {
				t := s.T()
				set(2, -1)
				s.SetT(t)
			}
		case 0x04: // SWP / SWP2
			if short {
				t, n := s.T2(), s.N2()
				set(4, 0)
				s.SetT2(n)
				s.SetN2(t)
			} else {
				t, n := s.T(), s.N()
				set(2, 0)
				s.SetT(n)
				s.SetN(t)
			}
		case 0x05: // ROT / ROT2
			if short {
				t, n, l := s.T2(), s.N2(), s.L2()
				set(6, 0)
				s.SetT2(l)
				s.SetN2(t)
				s.SetL2(n)
			} else {
				t, n, l := s.T(), s.N(), s.L()
				set(3, 0)
				s.SetT(l)
				s.SetN(t)
				s.SetL(n)
			}
		case 0x06: // DUP / DUP2
			if short {
				t := s.T2()
				set(2, 2)
				s.SetT2(t)
				s.SetN2(t)
			} else {
				t := s.T()
				set(1, 1)
				s.SetT(t)
				s.SetN(t)
			}
		case 0x07: // OVR / OVR2
			if short {
				t, n := s.T2(), s.N2()
				set(4, 2)
				s.SetT2(n)
				s.SetN2(t)
				s.SetL2(n)
			} else {
				t, n := s.T(), s.N()
				set(2, 1)
				s.SetT(n)
				s.SetN(t)
				s.SetL(n)
			}
		case 0x08: // EQU / EQU2
			if short {
				t, n := s.T2(), s.N2()
				set(4, -3)
				s.SetT(boolByte(n == t))
			} else {
				t, n := s.T(), s.N()
				set(2, -1)
				s.SetT(boolByte(n == t))
			}
		case 0x09: // NEQ / NEQ2
			if short {
				t, n := s.T2(), s.N2()
				set(4, -3)
				s.SetT(boolByte(n != t))
			} else {
				t, n := s.T(), s.N()
				set(2, -1)
				s.SetT(boolByte(n != t))
			}
		case 0x0a: // GTH / GTH2
			if short {
				t, n := s.T2(), s.N2()
				set(4, -3)
				s.SetT(boolByte(n > t))
			} else {
				t, n := s.T(), s.N()
				set(2, -1)
				s.SetT(boolByte(n > t))
			}
		case 0x0b: // LTH / LTH2
			if short {
				t, n := s.T2(), s.N2()
				set(4, -3)
				s.SetT(boolByte(n < t))
			} else {
				t, n := s.T(), s.N()
				set(2, -1)
				s.SetT(boolByte(n < t))
			}
		case 0x0c: // JMP / JMP2
			if short {
				t := s.T2()
				set(2, -2)
				pc = t
			} else {
				t := s.T()
				set(1, -1)
				pc += uint16(int8(t))
			}
		case 0x0d: // JCN / JCN2
			if short {
				t, n := s.T2(), s.L()
				set(3, -3)
				if n != 0 {
					pc = t
				}
			} else {
				t, n := s.T(), s.N()
				set(2, -2)
				if n != 0 {
					pc += uint16(int8(t))
				}
			}
		case 0x0e: // JSR / JSR2
			if short {
				t := s.T2()
				set(2, -2)
				flip()
				s.Shift(2)
				s.SetT2(pc)
				pc = t
			} else {
				t := s.T()
				set(1, -1)
				flip()
				s.Shift(2)
				s.SetT2(pc)
				pc += uint16(int8(t))
			}
		case 0x0f: // STH / STH2
			if short {
				t := s.T2()
				set(2, -2)
				flip()
				s.Shift(2)
				s.SetT2(t)
			} else {
				t := s.T()
				set(1, -1)
				flip()
				s.Shift(1)
				s.SetT(t)
			}
		case 0x10: // LDZ / LDZ2
			if short {
				t := uint16(s.T())
				set(1, 1)
				s.SetN(ram[t])
				t++
				s.SetT(ram[uint16(uint8(t))])
			} else {
				t := s.T()
				set(1, 0)
				s.SetT(ram[t])
			}
		case 0x11: // STZ / STZ2
			if short {
				t, n := uint16(s.T()), s.H2()
				set(3, -3)
				ram[t] = byte(n >> 8)
				t++
				ram[uint16(uint8(t))] = byte(n)
			} else {
				t, n := s.T(), s.N()
				set(2, -2)
				ram[t] = n
			}
		case 0x12: // LDR / LDR2
			if short {
				t := s.T()
				set(1, 1)
				r := pc + uint16(int8(t))
				s.SetN(ram[r])
				r++
				s.SetT(ram[r])
			} else {
				t := s.T()
				set(1, 0)
				r := pc + uint16(int8(t))
				s.SetT(ram[r])
			}
		case 0x13: // STR / STR2
			if short {
				t, n := s.T(), s.H2()
				set(3, -3)
				r := pc + uint16(int8(t))
				ram[r] = byte(n >> 8)
				r++
				ram[r] = byte(n)
			} else {
				t, n := s.T(), s.N()
				set(2, -2)
				r := pc + uint16(int8(t))
				ram[r] = n
			}
		case 0x14: // LDA / LDA2
			if short {
				t := s.T2()
				set(2, 0)
				s.SetN(ram[t])
				t++
				s.SetT(ram[t])
			} else {
				t := s.T2()
				set(2, -1)
				s.SetT(ram[t])
			}
		case 0x15: // STA / STA2
			if short {
				t, n := s.T2(), s.N2()
				set(4, -4)
				ram[t] = byte(n >> 8)
				t++
				ram[t] = byte(n)
			} else {
				t, n := s.T2(), s.L()
				set(3, -3)
				ram[t] = n
			}
		case 0x16: // DEI / DEI2
			if short {
				t := s.T()
				set(1, 1)
				m.beforeDEI(t)
				m.beforeDEI(t + 1)
				s.SetN(m.Dev[t])
				t++
				s.SetT(m.Dev[t])
			} else {
				t := s.T()
				set(1, 0)
				m.beforeDEI(t)
				s.SetT(m.Dev[t])
			}
		case 0x17: // DEO / DEO2
			if short {
				t, n, l := s.T(), s.N(), s.L()
				set(3, -3)
				m.Dev[t] = l
				m.Dev[t+1] = n
				m.afterDEO(t)
				t++
				m.afterDEO(t)
			} else {
				t, n := s.T(), s.N()
				set(2, -2)
				m.Dev[t] = n
				m.afterDEO(t)
			}
		case 0x18: // ADD / ADD2
			if short {
				t, n := s.T2(), s.N2()
				set(4, -2)
				s.SetT2(n + t)
			} else {
				t, n := s.T(), s.N()
				set(2, -1)
				s.SetT(n + t)
			}
		case 0x19: // SUB / SUB2
			if short {
				t, n := s.T2(), s.N2()
				set(4, -2)
				s.SetT2(n - t)
			} else {
				t, n := s.T(), s.N()
				set(2, -1)
				s.SetT(n - t)
			}
		case 0x1a: // MUL / MUL2
			if short {
				t, n := s.T2(), s.N2()
				set(4, -2)
				s.SetT2(n * t)
			} else {
				t, n := s.T(), s.N()
				set(2, -1)
				s.SetT(n * t)
			}
		case 0x1b: // DIV / DIV2
			if short {
				t, n := s.T2(), s.N2()
				set(4, -2)
				if t == 0 {
					s.SetT2(0)
				} else {
					s.SetT2(n / t)
				}
			} else {
				t, n := s.T(), s.N()
				set(2, -1)
				if t == 0 {
					s.SetT(0)
				} else {
					s.SetT(n / t)
				}
			}
		case 0x1c: // AND / AND2
			if short {
				t, n := s.T2(), s.N2()
				set(4, -2)
				s.SetT2(n & t)
			} else {
				t, n := s.T(), s.N()
				set(2, -1)
				s.SetT(n & t)
			}
		case 0x1d: // ORA / ORA2
			if short {
				t, n := s.T2(), s.N2()
				set(4, -2)
				s.SetT2(n | t)
			} else {
				t, n := s.T(), s.N()
				set(2, -1)
				s.SetT(n | t)
			}
		case 0x1e: // EOR / EOR2
			if short {
				t, n := s.T2(), s.N2()
				set(4, -2)
				s.SetT2(n ^ t)
			} else {
				t, n := s.T(), s.N()
				set(2, -1)
				s.SetT(n ^ t)
			}
		case 0x1f: // SFT / SFT2
			if short {
				t, n := s.T(), s.H2()
				set(3, -1)
				s.SetT2(n >> (t & 0xf) << (t >> 4))
			} else {
				t, n := s.T(), s.N()
				set(2, -1)
				s.SetT(n >> (t & 0xf) << (t >> 4))
			}
		}
	}
	return true
}

func (m *Machine) beforeDEI(port byte) {
	if m.Device != nil {
		m.Device.BeforeDEI(m, port)
	}
}

func (m *Machine) afterDEO(port byte) {
	if m.Device != nil {
		m.Device.AfterDEO(m, port)
	}
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}
