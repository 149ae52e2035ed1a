// Package screendev implements the Varvara screen device: a two-layer
// (foreground/background) indexed-color raster with dirty-rectangle
// tracking, auto-advancing pixel/sprite writers, and a 4-color palette
// driven by the system device's RGB registers.
package screendev

import "varvara/internal/uxn"

const (
	portVector  = 0x20
	portWidthHi = 0x22
	portWidthLo = 0x23
	portHeiHi   = 0x24
	portHeiLo   = 0x25
	portAuto    = 0x26
	portXHi     = 0x28
	portXLo     = 0x29
	portYHi     = 0x2a
	portYLo     = 0x2b
	portAddrHi  = 0x2c
	portAddrLo  = 0x2d
	portPixel   = 0x2e
	portSprite  = 0x2f

	// System device palette registers; Varvara routes writes to these three
	// ports into Screen.UpdatePalette rather than a screen-range port.
	portRed   = 0x08
	portGreen = 0x0a
	portBlue  = 0x0c
	portDebug = 0x0e
)

// RGB is one palette entry, 8 bits per channel (expanded from the 4-bit
// nibble Varvara's palette registers actually store).
type RGB struct{ R, G, B uint8 }

// Presenter receives pixel writes and resize notifications from a Screen.
// internal/sdlhost implements this against an SDL texture; tests use
// NullPresenter.
type Presenter interface {
	OnPixel(x, y uint16, color uint8)
	OnResize(w, h uint16)
}

// NullPresenter discards everything; useful for running a machine headless.
type NullPresenter struct{}

func (NullPresenter) OnPixel(x, y uint16, color uint8) {}
func (NullPresenter) OnResize(w, h uint16)             {}

var blending = [5][16]uint8{
	{0, 0, 0, 0, 1, 0, 1, 1, 2, 2, 0, 2, 3, 3, 3, 0},
	{0, 1, 2, 3, 0, 1, 2, 3, 0, 1, 2, 3, 0, 1, 2, 3},
	{1, 2, 3, 1, 1, 2, 3, 1, 1, 2, 3, 1, 1, 2, 3, 1},
	{2, 3, 1, 2, 2, 3, 1, 2, 2, 3, 1, 2, 2, 3, 1, 2},
	{0, 1, 1, 1, 1, 0, 1, 1, 1, 1, 0, 1, 1, 1, 1, 0},
}

var paletteMap = [16]uint8{0, 1, 2, 3, 1, 1, 1, 1, 2, 2, 2, 2, 3, 3, 3, 3}

var icons = [...]uint8{
	0x00, 0x7c, 0x82, 0x82, 0x82, 0x82, 0x82, 0x7c, 0x00, 0x30, 0x10, 0x10, 0x10, 0x10, 0x10,
	0x10, 0x00, 0x7c, 0x82, 0x02, 0x7c, 0x80, 0x80, 0xfe, 0x00, 0x7c, 0x82, 0x02, 0x1c, 0x02,
	0x82, 0x7c, 0x00, 0x0c, 0x14, 0x24, 0x44, 0x84, 0xfe, 0x04, 0x00, 0xfe, 0x80, 0x80, 0x7c,
	0x02, 0x82, 0x7c, 0x00, 0x7c, 0x82, 0x80, 0xfc, 0x82, 0x82, 0x7c, 0x00, 0x7c, 0x82, 0x02,
	0x1e, 0x02, 0x02, 0x02, 0x00, 0x7c, 0x82, 0x82, 0x7c, 0x82, 0x82, 0x7c, 0x00, 0x7c, 0x82,
	0x82, 0x7e, 0x02, 0x82, 0x7c, 0x00, 0x7c, 0x82, 0x02, 0x7e, 0x82, 0x82, 0x7e, 0x00, 0xfc,
	0x82, 0x82, 0xfc, 0x82, 0x82, 0xfc, 0x00, 0x7c, 0x82, 0x80, 0x80, 0x80, 0x82, 0x7c, 0x00,
	0xfc, 0x82, 0x82, 0x82, 0x82, 0x82, 0xfc, 0x00, 0x7c, 0x82, 0x80, 0xf0, 0x80, 0x82, 0x7c,
	0x00, 0x7c, 0x82, 0x80, 0xf0, 0x80, 0x80, 0x80,
}

var arrow = [...]uint8{0x00, 0x00, 0x00, 0xfe, 0x7c, 0x38, 0x10, 0x00}

// Screen owns the foreground/background layers and the auto-advance
// registers Varvara's screen ports drive.
type Screen struct {
	Presenter Presenter
	Palette   [4]RGB

	w, h   uint16
	fg, bg []uint8
	dirty  bool

	screenX1, screenY1, screenX2, screenY2 uint16

	rX, rY, rA, rMX, rMY, rMA, rML, rDX, rDY uint16
}

// New creates a screen of the given size, clamped to the valid [8,0x800)
// range the reference machine enforces.
func New(w, h uint16, presenter Presenter) *Screen {
	if w < 8 {
		w = 8
	}
	if h < 8 {
		h = 8
	}
	if w >= 0x800 {
		w = 0x7ff
	}
	if h >= 0x800 {
		h = 0x7ff
	}
	if presenter == nil {
		presenter = NullPresenter{}
	}
	s := &Screen{Presenter: presenter, w: w, h: h}
	s.fg = make([]uint8, int(w)*int(h))
	s.bg = make([]uint8, int(w)*int(h))
	s.screenX1, s.screenY1 = 0xffff, 0xffff
	return s
}

func (s *Screen) Width() uint16  { return s.w }
func (s *Screen) Height() uint16 { return s.h }

// Reset clears both layers and marks the whole screen dirty, matching
// Screen::reset.
func (s *Screen) Reset() {
	s.fill(s.bg, 0)
	s.fill(s.fg, 0)
	s.change(0, 0, s.w, s.h)
}

func (s *Screen) BeforeDEI(m *uxn.Machine, port byte) {
	switch port {
	case portWidthHi:
		m.Dev[port] = byte(s.w >> 8)
	case portWidthLo:
		m.Dev[port] = byte(s.w)
	case portHeiHi:
		m.Dev[port] = byte(s.h >> 8)
	case portHeiLo:
		m.Dev[port] = byte(s.h)
	case portXHi:
		m.Dev[port] = byte(s.rX >> 8)
	case portXLo:
		m.Dev[port] = byte(s.rX)
	case portYHi:
		m.Dev[port] = byte(s.rY >> 8)
	case portYLo:
		m.Dev[port] = byte(s.rY)
	case portAddrHi:
		m.Dev[port] = byte(s.rA >> 8)
	case portAddrLo:
		m.Dev[port] = byte(s.rA)
	}
}

func (s *Screen) AfterDEO(m *uxn.Machine, port byte) {
	dev := &m.Dev
	switch port {
	case portWidthLo:
		s.TryResize(m.DevPeek2(portWidthHi), s.h)
	case portHeiLo:
		s.TryResize(s.w, m.DevPeek2(portHeiHi))
	case portAuto:
		ctrl := dev[portAuto]
		s.rMX = uint16(ctrl & 0x1)
		s.rMY = uint16(ctrl & 0x2)
		s.rMA = uint16(ctrl & 0x4)
		s.rML = uint16(ctrl >> 4)
		s.rDX = s.rMX << 3
		s.rDY = s.rMY << 2
	case portXHi, portXLo:
		s.rX = m.DevPeek2(portXHi)
	case portYHi, portYLo:
		s.rY = m.DevPeek2(portYHi)
	case portAddrHi, portAddrLo:
		s.rA = m.DevPeek2(portAddrHi)
	case portPixel:
		s.writePixel(dev[portPixel])
	case portSprite:
		s.writeSprite(m, dev[portSprite])
	}
}

func (s *Screen) writePixel(ctrl byte) {
	color := ctrl & 0x3
	layer := s.bg
	if ctrl&0x40 != 0 {
		layer = s.fg
	}
	if ctrl&0x80 != 0 {
		var x1, y1, x2, y2 uint16
		if ctrl&0x10 != 0 {
			x1, x2 = 0, s.rX
		} else {
			x1, x2 = s.rX, s.w
		}
		if ctrl&0x20 != 0 {
			y1, y2 = 0, s.rY
		} else {
			y1, y2 = s.rY, s.h
		}
		s.rect(layer, x1, y1, x2, y2, color)
		s.change(x1, y1, x2, y2)
		return
	}
	if s.rX < s.w && s.rY < s.h {
		layer[int(s.rX)+int(s.rY)*int(s.w)] = color
	}
	s.change(s.rX, s.rY, s.rX+1, s.rY+1)
	if s.rMX != 0 {
		s.rX++
	}
	if s.rMY != 0 {
		s.rY++
	}
}

func (s *Screen) writeSprite(m *uxn.Machine, ctrl byte) {
	twobpp := ctrl&0x80 != 0
	color := ctrl & 0xf
	layer := s.bg
	if ctrl&0x40 != 0 {
		layer = s.fg
	}
	fx := 1
	if ctrl&0x10 != 0 {
		fx = -1
	}
	fy := 1
	if ctrl&0x20 != 0 {
		fy = -1
	}
	dxy := uint16(int16(s.rDX) * int16(fy))
	dyx := uint16(int16(s.rDY) * int16(fx))
	shift := uint(1)
	if twobpp {
		shift = 2
	}
	addrIncr := s.rMA << shift
	for i := uint16(0); i <= s.rML; i++ {
		x1 := s.rX + dyx*i
		y1 := s.rY + dxy*i
		if twobpp {
			s.sprite2bpp(layer, m.Ram[s.rA:], x1, y1, color, fx, fy)
		} else {
			s.sprite1bpp(layer, m.Ram[s.rA:], x1, y1, color, fx, fy)
		}
		s.rA += addrIncr
	}
	s.change(s.rX, s.rY, s.rX+dyx*s.rML+8, s.rY+dxy*s.rML+8)
	if s.rMX != 0 {
		s.rX += uint16(int16(s.rDX) * int16(fx))
	}
	if s.rMY != 0 {
		s.rY += uint16(int16(s.rDY) * int16(fy))
	}
}

// TryResize replaces both layers with a new size, provided it's within the
// [8,0x800) bound the reference machine enforces; out-of-range or no-op
// requests are silently ignored.
func (s *Screen) TryResize(width, height uint16) {
	if width < 0x8 || height < 0x8 || width >= 0x800 || height >= 0x800 {
		return
	}
	if s.w == width && s.h == height {
		return
	}
	s.fg = make([]uint8, int(width)*int(height))
	s.bg = make([]uint8, int(width)*int(height))
	s.w, s.h = width, height
	s.change(0, 0, width, height)
	s.Presenter.OnResize(width, height)
}

func (s *Screen) change(x1, y1, x2, y2 uint16) {
	if x1 > s.w && x2 > x1 {
		return
	}
	if y1 > s.h && y2 > y1 {
		return
	}
	if x1 > x2 {
		x1 = 0
	}
	if y1 > y2 {
		y1 = 0
	}
	if x1 < s.screenX1 {
		s.screenX1 = x1
	}
	if y1 < s.screenY1 {
		s.screenY1 = y1
	}
	if x2 > s.screenX2 {
		s.screenX2 = x2
	}
	if y2 > s.screenY2 {
		s.screenY2 = y2
	}
	s.dirty = true
}

func (s *Screen) fill(layer []uint8, color uint8) {
	for i := range layer {
		layer[i] = color
	}
	s.dirty = true
}

func (s *Screen) rect(layer []uint8, x1, y1, x2, y2 uint16, color uint8) {
	for y := y1; y < y2 && y < s.h; y++ {
		row := int(y) * int(s.w)
		for x := x1; x < x2 && x < s.w; x++ {
			layer[int(x)+row] = color
		}
	}
	s.dirty = true
}

func (s *Screen) sprite2bpp(layer []uint8, addr []uint8, x1, y1 uint16, color uint8, fx, fy int) {
	opaque := blending[4][color]
	ymod := int32(0)
	if fy < 0 {
		ymod = 7
	}
	ymax := int32(y1) + ymod + int32(fy)*8
	xmod := int32(0)
	if fx > 0 {
		xmod = 7
	}
	xmax := int32(x1) + xmod - int32(fx)*8
	ai := 0
	for y := int32(y1) + ymod; y != ymax; y, ai = y+int32(fy), ai+1 {
		c := int(addr[ai]) | int(addr[ai+8])<<8
		row := int(uint16(y)) * int(s.w)
		if y >= 0 && uint16(y) < s.h {
			for x := int32(x1) + xmod; x != xmax; x, c = x-int32(fx), c>>1 {
				ch := uint8(c&1) | uint8((c>>7)&2)
				if x >= 0 && uint16(x) < s.w && (opaque != 0 || ch != 0) {
					layer[int(uint16(x))+row] = blending[ch][color]
				}
			}
		}
	}
	s.dirty = true
}

func (s *Screen) sprite1bpp(layer []uint8, addr []uint8, x1, y1 uint16, color uint8, fx, fy int) {
	opaque := blending[4][color]
	ymod := int32(0)
	if fy < 0 {
		ymod = 7
	}
	ymax := int32(y1) + ymod + int32(fy)*8
	xmod := int32(0)
	if fx > 0 {
		xmod = 7
	}
	xmax := int32(x1) + xmod - int32(fx)*8
	ai := 0
	for y := int32(y1) + ymod; y != ymax; y, ai = y+int32(fy), ai+1 {
		c := int(addr[ai])
		row := int(uint16(y)) * int(s.w)
		if y >= 0 && uint16(y) < s.h {
			for x := int32(x1) + xmod; x != xmax; x, c = x-int32(fx), c>>1 {
				ch := uint8(c & 1)
				if x >= 0 && uint16(x) < s.w && (opaque != 0 || ch != 0) {
					layer[int(uint16(x))+row] = blending[ch][color]
				}
			}
		}
	}
	s.dirty = true
}

func (s *Screen) drawByte(b uint8, x, y uint16, color uint8) {
	s.sprite1bpp(s.fg, icons[(b>>4)<<3:], x, y, color, 1, 1)
	s.sprite1bpp(s.fg, icons[(b&0xf)<<3:], x+8, y, color, 1, 1)
	s.change(x, y, x+0x10, y+0x8)
}

// debugger overlays the working/return stacks and the first 32 zero-page
// bytes onto the foreground layer, as a hex grid, exactly as the reference
// machine's debug view does when the system debug flag (port 0x0e) is set.
func (s *Screen) debugger(m *uxn.Machine) {
	wst, rst := m.WST.Bytes(), m.RST.Bytes()
	for i := 0; i < 0x08; i++ {
		pos := byte(int(m.WST.Depth()) - 4 + i)
		color := debugColor(i, pos)
		s.drawByte(wst[pos], uint16(i*0x18+0x8), s.h-0x18, color)
	}
	for i := 0; i < 0x08; i++ {
		pos := byte(int(m.RST.Depth()) - 4 + i)
		color := debugColor(i, pos)
		s.drawByte(rst[pos], uint16(i*0x18+0x8), s.h-0x10, color)
	}
	s.sprite1bpp(s.fg, arrow[:], 0x68, s.h-0x20, 3, 1, 1)
	for i := 0; i < 0x20; i++ {
		b := m.Ram[i]
		color := uint8(1)
		if b != 0 {
			color = 2
		}
		s.drawByte(b, uint16((i&0x7)*0x18+0x8), uint16(((i>>3)<<3)+0x8), color)
	}
}

func debugColor(i int, pos byte) uint8 {
	switch {
	case i > 4:
		return 0x01
	case pos == 0:
		return 0xc
	case i == 4:
		return 0x8
	default:
		return 0x2
	}
}

// UpdatePalette recomputes the 4-entry RGB palette from the system device's
// three 16-bit RGB-nibble registers at ports 0x08 (red), 0x0a (green), and
// 0x0c (blue); each nibble of each register is one color's channel value.
func (s *Screen) UpdatePalette(m *uxn.Machine) {
	red := m.DevPeek2(portRed)
	green := m.DevPeek2(portGreen)
	blue := m.DevPeek2(portBlue)
	for i := 0; i < 4; i++ {
		shift := uint((3 - i) * 4)
		r := uint8(red>>shift) & 0xf
		g := uint8(green>>shift) & 0xf
		b := uint8(blue>>shift) & 0xf
		s.Palette[i] = RGB{R: r | r<<4, G: g | g<<4, B: b | b<<4}
	}
}

// Frame runs the screen vector (port 0x20) and, if anything changed,
// repaints the dirty rectangle through Presenter, matching Screen::frame.
func (s *Screen) Frame(m *uxn.Machine) bool {
	ranVector := m.CallVec(portVector)
	if s.dirty {
		s.redraw(m)
		s.dirty = false
	}
	return ranVector
}

func (s *Screen) redraw(m *uxn.Machine) {
	x1, y1 := s.screenX1, s.screenY1
	x2, y2 := s.screenX2, s.screenY2
	if x2 > s.w {
		x2 = s.w
	}
	if y2 > s.h {
		y2 = s.h
	}
	s.screenX1, s.screenY1 = 0xffff, 0xffff
	s.screenX2, s.screenY2 = 0, 0
	if m.Dev[portDebug] != 0 {
		s.debugger(m)
	}
	for y := y1; y < y2; y++ {
		for x := x1; x < x2; x++ {
			i := int(y)*int(s.w) + int(x)
			s.Presenter.OnPixel(x, y, paletteMap[s.fg[i]<<2|s.bg[i]])
		}
	}
}
