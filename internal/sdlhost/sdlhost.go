// Package sdlhost presents a running Varvara machine through SDL2: it turns
// screendev pixel/resize callbacks into a streaming texture, pumps SDL
// events into the controller and mouse devices, and drains the audio
// mixer into a queued SDL audio device.
package sdlhost

import (
	"fmt"

	"github.com/veandco/go-sdl2/sdl"

	"varvara/internal/audiodev"
	"varvara/internal/inputdev"
	"varvara/internal/screendev"
	"varvara/internal/uxn"
)

const audioSamplesPerFrame = 735

// Host owns the SDL window, renderer, and streaming texture a Screen
// paints into, plus the queued SDL audio device the Audio mixer feeds.
type Host struct {
	window   *sdl.Window
	renderer *sdl.Renderer
	texture  *sdl.Texture
	audioDev sdl.AudioDeviceID

	zoom int
	w, h uint16

	pixels []byte // RGB888, w*h*3 bytes, rebuilt by OnPixel/OnResize

	KeyMap *inputdev.KeyMapInput
	Mouse  *inputdev.Mouse
	Screen *screendev.Screen

	running bool
}

// New opens an SDL window sized for a w x h screen scaled by zoom, and an
// audio device at audiodev's fixed sample rate.
func New(w, h uint16, zoom int, keymap *inputdev.KeyMapInput, mouse *inputdev.Mouse, screen *screendev.Screen) (*Host, error) {
	if zoom < 1 {
		zoom = 1
	}
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_AUDIO); err != nil {
		return nil, fmt.Errorf("sdlhost: init sdl: %w", err)
	}
	sdl.SetHint(sdl.HINT_RENDER_SCALE_QUALITY, "0")

	window, err := sdl.CreateWindow(
		"uxn",
		sdl.WINDOWPOS_CENTERED, sdl.WINDOWPOS_CENTERED,
		int32(w)*int32(zoom), int32(h)*int32(zoom),
		sdl.WINDOW_SHOWN,
	)
	if err != nil {
		sdl.Quit()
		return nil, fmt.Errorf("sdlhost: create window: %w", err)
	}

	renderer, err := sdl.CreateRenderer(window, -1, sdl.RENDERER_ACCELERATED|sdl.RENDERER_PRESENTVSYNC)
	if err != nil {
		window.Destroy()
		sdl.Quit()
		return nil, fmt.Errorf("sdlhost: create renderer: %w", err)
	}

	texture, err := renderer.CreateTexture(sdl.PIXELFORMAT_RGB24, sdl.TEXTUREACCESS_STREAMING, int32(w), int32(h))
	if err != nil {
		renderer.Destroy()
		window.Destroy()
		sdl.Quit()
		return nil, fmt.Errorf("sdlhost: create texture: %w", err)
	}

	audioSpec := sdl.AudioSpec{
		Freq:     44100,
		Format:   sdl.AUDIO_S16LSB,
		Channels: 2,
		Samples:  audioSamplesPerFrame,
	}
	audioDev, err := sdl.OpenAudioDevice("", false, &audioSpec, nil, 0)
	if err != nil {
		audioDev = 0
	} else {
		sdl.PauseAudioDevice(audioDev, false)
	}

	h2 := &Host{
		window: window, renderer: renderer, texture: texture,
		audioDev: audioDev, zoom: zoom, w: w, h: h,
		pixels:  make([]byte, int(w)*int(h)*3),
		KeyMap:  keymap, Mouse: mouse, Screen: screen,
		running: true,
	}
	return h2, nil
}

// OnPixel implements screendev.Presenter.
func (h *Host) OnPixel(x, y uint16, color uint8) {
	if x >= h.w || y >= h.h {
		return
	}
	c := screendev.RGB{R: color * 0x55, G: color * 0x55, B: color * 0x55}
	if h.Screen != nil && int(color) < len(h.Screen.Palette) {
		c = h.Screen.Palette[color]
	}
	off := (int(y)*int(h.w) + int(x)) * 3
	h.pixels[off] = c.R
	h.pixels[off+1] = c.G
	h.pixels[off+2] = c.B
}

// OnResize implements screendev.Presenter; it recreates the backing
// texture at the new size.
func (h *Host) OnResize(w, hh uint16) {
	h.w, h.h = w, hh
	h.pixels = make([]byte, int(w)*int(hh)*3)
	h.texture.Destroy()
	h.texture, _ = h.renderer.CreateTexture(sdl.PIXELFORMAT_RGB24, sdl.TEXTUREACCESS_STREAMING, int32(w), int32(hh))
	h.window.SetSize(int32(w)*int32(h.zoom), int32(hh)*int32(h.zoom))
}

// Present uploads the pixel buffer to the texture and draws one frame.
func (h *Host) Present() error {
	if err := h.texture.Update(nil, h.pixels, int(h.w)*3); err != nil {
		return fmt.Errorf("sdlhost: update texture: %w", err)
	}
	h.renderer.Clear()
	h.renderer.Copy(h.texture, nil, nil)
	h.renderer.Present()
	return nil
}

// QueueAudio pushes mixed stereo samples (interleaved s16) to the SDL
// audio device, skipping the push if the queue already has two or more
// frames buffered so the emulator never runs ahead of playback.
func (h *Host) QueueAudio(samples []int16) error {
	if h.audioDev == 0 {
		return nil
	}
	queued := sdl.GetQueuedAudioSize(h.audioDev)
	maxQueued := uint32(audioSamplesPerFrame * 2 * 2 * 2)
	if queued >= maxQueued {
		return nil
	}
	buf := make([]byte, len(samples)*2)
	for i, s := range samples {
		buf[i*2] = byte(s)
		buf[i*2+1] = byte(s >> 8)
	}
	return sdl.QueueAudio(h.audioDev, buf)
}

// PumpEvents drains the SDL event queue, feeding keyboard and mouse events
// to the configured controller/mouse devices. It returns false once the
// window has received a quit request.
func (h *Host) PumpEvents(m *uxn.Machine) bool {
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch e := event.(type) {
		case *sdl.QuitEvent:
			h.running = false
		case *sdl.KeyboardEvent:
			name := sdl.GetKeyName(e.Keysym.Sym)
			if h.KeyMap == nil {
				continue
			}
			if e.Type == sdl.KEYDOWN {
				h.KeyMap.HandleKeyDown(m, name)
			} else if e.Type == sdl.KEYUP {
				h.KeyMap.HandleKeyUp(m, name)
			}
		case *sdl.MouseMotionEvent:
			if h.Mouse != nil {
				h.Mouse.Move(m, uint16(e.X)/uint16(h.zoom), uint16(e.Y)/uint16(h.zoom))
			}
		case *sdl.MouseButtonEvent:
			if h.Mouse == nil {
				continue
			}
			bit := mouseBit(e.Button)
			h.Mouse.Button(m, bit, e.Type == sdl.MOUSEBUTTONDOWN)
		case *sdl.MouseWheelEvent:
			if h.Mouse != nil {
				h.Mouse.Scroll(m, int16(e.X), int16(e.Y))
			}
		}
	}
	return h.running
}

func mouseBit(button uint8) byte {
	switch button {
	case sdl.BUTTON_LEFT:
		return 0x01
	case sdl.BUTTON_MIDDLE:
		return 0x10
	case sdl.BUTTON_RIGHT:
		return 0x02
	}
	return 0
}

// Close tears down the window, renderer, texture, and audio device.
func (h *Host) Close() {
	if h.audioDev != 0 {
		sdl.CloseAudioDevice(h.audioDev)
	}
	h.texture.Destroy()
	h.renderer.Destroy()
	h.window.Destroy()
	sdl.Quit()
}

// RunFrame mixes one frame's worth of audio (ceil(44100/60) samples,
// stereo) and queues it, matching the reference host's per-frame audio
// draining.
func RunFrame(m *uxn.Machine, audio *audiodev.Audio, host *Host) error {
	buf := make([]int16, audioSamplesPerFrame*2)
	audio.Mix(m, buf)
	return host.QueueAudio(buf)
}
