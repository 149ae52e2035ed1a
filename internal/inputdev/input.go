// Package inputdev implements the Varvara controller and mouse devices,
// plus a host-key-to-button mapping layer for presenters that only know
// about keyboard scancodes.
package inputdev

import "varvara/internal/uxn"

const (
	controllerVector = 0x80
	controllerButton = 0x82
	controllerKey    = 0x83

	mouseVector = 0x90
	mouseX      = 0x92
	mouseY      = 0x94
	mouseButton = 0x96
	mouseScrollX = 0x9a
	mouseScrollY = 0x9c
)

// playerOffset gives the button-port offset for each of the four players
// sharing the controller device, mirroring Input::player_offset.
var playerOffset = [4]byte{0x82, 0x85, 0x86, 0x87}

// Button bits within a player's button byte.
const (
	ButtonA     = 0x01
	ButtonB     = 0x02
	ButtonSelect = 0x04
	ButtonStart  = 0x08
	ButtonUp     = 0x10
	ButtonDown   = 0x20
	ButtonLeft   = 0x40
	ButtonRight  = 0x80
)

// Controller implements uxn.Device for the four-player button + key input.
type Controller struct{}

func (c *Controller) BeforeDEI(m *uxn.Machine, port byte) {}
func (c *Controller) AfterDEO(m *uxn.Machine, port byte)  {}

// KeyDown sets a button bit for the given player (0-3) and runs the
// controller vector, mirroring Input::key_down for the controller ports.
func (c *Controller) KeyDown(m *uxn.Machine, player uint8, button byte) bool {
	port := playerOffset[player&0x3]
	m.Dev[port] |= button
	return m.CallVec(controllerVector)
}

// KeyUp clears a button bit for the given player and runs the controller
// vector.
func (c *Controller) KeyUp(m *uxn.Machine, player uint8, button byte) bool {
	port := playerOffset[player&0x3]
	m.Dev[port] &^= button
	return m.CallVec(controllerVector)
}

// Key feeds a single typed character (ASCII, not a button) through
// controller port 0x83 and runs the vector, matching Input's key-character
// path used for text entry.
func (c *Controller) Key(m *uxn.Machine, ch byte) bool {
	m.Dev[controllerKey] = ch
	return m.CallVec(controllerVector)
}

// Mouse implements uxn.Device for pointer position, buttons, and scroll.
type Mouse struct{}

func (ms *Mouse) BeforeDEI(m *uxn.Machine, port byte) {}
func (ms *Mouse) AfterDEO(m *uxn.Machine, port byte)  {}

// Move updates the pointer position and runs the mouse vector.
func (ms *Mouse) Move(m *uxn.Machine, x, y uint16) bool {
	m.DevPoke2(mouseX, x)
	m.DevPoke2(mouseY, y)
	return m.CallVec(mouseVector)
}

// Button sets or clears a mouse button bit (0x01 left, 0x10 middle, 0x02
// right, matching the reference's bit layout) and runs the vector.
func (ms *Mouse) Button(m *uxn.Machine, bit byte, down bool) bool {
	if down {
		m.Dev[mouseButton] |= bit
	} else {
		m.Dev[mouseButton] &^= bit
	}
	return m.CallVec(mouseVector)
}

// Scroll updates the scroll delta registers and runs the vector.
func (ms *Mouse) Scroll(m *uxn.Machine, dx, dy int16) bool {
	m.DevPoke2(mouseScrollX, uint16(dx))
	m.DevPoke2(mouseScrollY, uint16(dy))
	ok := m.CallVec(mouseVector)
	m.DevPoke2(mouseScrollX, 0)
	m.DevPoke2(mouseScrollY, 0)
	return ok
}

// KeyMap translates a host key identifier (e.g. an SDL keycode or a rune)
// into the controller button bits it should set, the supplemented
// equivalent of KeyMapInput's configurable key_map.button(key) lookup. A
// zero entry or missing key means "not mapped".
type KeyMap map[string]byte

// DefaultKeyMap mirrors the reference host's default_key_map: arrow keys to
// the D-pad, Z/X to A/B, Enter/Backspace to Start/Select.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		"Up":        ButtonUp,
		"Down":      ButtonDown,
		"Left":      ButtonLeft,
		"Right":     ButtonRight,
		"z":         ButtonA,
		"x":         ButtonB,
		"Return":    ButtonStart,
		"Backspace": ButtonSelect,
	}
}

// KeyMapInput drives a Controller from host key names through a KeyMap,
// so a presentation layer never needs to know the Varvara button layout.
type KeyMapInput struct {
	Controller *Controller
	Map        KeyMap
}

// NewKeyMapInput wires a Controller to a KeyMap, defaulting to
// DefaultKeyMap when m is nil.
func NewKeyMapInput(c *Controller, m KeyMap) *KeyMapInput {
	if m == nil {
		m = DefaultKeyMap()
	}
	return &KeyMapInput{Controller: c, Map: m}
}

// HandleKeyDown looks up key in the map and, if mapped, sets the
// corresponding button for player 0; a single-character key is also written
// to the key port (0x83), mapped or not.
func (k *KeyMapInput) HandleKeyDown(m *uxn.Machine, key string) bool {
	if button, ok := k.Map[key]; ok {
		if len(key) == 1 {
			m.Dev[controllerKey] = key[0]
		}
		return k.Controller.KeyDown(m, 0, button)
	}
	if len(key) == 1 {
		return k.Controller.Key(m, key[0])
	}
	return true
}

// HandleKeyUp looks up key in the map and, if mapped, clears the
// corresponding button for player 0.
func (k *KeyMapInput) HandleKeyUp(m *uxn.Machine, key string) bool {
	if button, ok := k.Map[key]; ok {
		return k.Controller.KeyUp(m, 0, button)
	}
	return true
}
