// Package audiodev implements the Varvara audio device: four independent
// ADSR-enveloped sample voices, mixed by Mix into a caller-supplied
// interleaved stereo int16 buffer at sampleFrequency (44100 Hz).
package audiodev

import "varvara/internal/uxn"

const (
	polyphony       = 4
	bufSize         = 256
	sampleFrequency = 44100
	soundTimer      = float32(bufSize) / sampleFrequency * 1000.0
	xfadeSamples    = 100
)

// tuning is the reference machine's 109-entry pitch-to-sample-rate table,
// indexed by (pitch-20).
var tuning = [109]float32{
	0.00058853, 0.00062352, 0.00066060, 0.00069988, 0.00074150,
	0.00078559, 0.00083230, 0.00088179, 0.00093423, 0.00098978,
	0.00104863, 0.00111099, 0.00117705, 0.00124704, 0.00132120,
	0.00139976, 0.00148299, 0.00157118, 0.00166460, 0.00176359,
	0.00186845, 0.00197956, 0.00209727, 0.00222198, 0.00235410,
	0.00249409, 0.00264239, 0.00279952, 0.00296599, 0.00314235,
	0.00332921, 0.00352717, 0.00373691, 0.00395912, 0.00419454,
	0.00444396, 0.00470821, 0.00498817, 0.00528479, 0.00559904,
	0.00593197, 0.00628471, 0.00665841, 0.00705434, 0.00747382,
	0.00791823, 0.00838908, 0.00888792, 0.00941642, 0.00997635,
	0.01056957, 0.01119807, 0.01186395, 0.01256941, 0.01331683,
	0.01410869, 0.01494763, 0.01583647, 0.01677815, 0.01777583,
	0.01883284, 0.01995270, 0.02113915, 0.02239615, 0.02372789,
	0.02513882, 0.02663366, 0.02821738, 0.02989527, 0.03167293,
	0.03355631, 0.03555167, 0.03766568, 0.03990540, 0.04227830,
	0.04479229, 0.04745578, 0.05027765, 0.05326731, 0.05643475,
	0.05979054, 0.06334587, 0.06711261, 0.07110333, 0.07533136,
	0.07981079, 0.08455659, 0.08958459, 0.09491156, 0.10055530,
	0.10653463, 0.11286951, 0.11958108, 0.12669174, 0.13422522,
	0.14220667, 0.15066272, 0.15962159, 0.16911318, 0.17916918,
	0.18982313, 0.20111060, 0.21306926, 0.22573902, 0.23916216,
	0.25338348, 0.26845044, 0.28441334, 0.30132544,
}

type envStage uint8

const (
	envAttack envStage = iota
	envDecay
	envSustain
	envRelease
)

type envelope struct {
	a, d, s, r, vol float32
	stage           envStage
}

func (e *envelope) on() {
	e.stage = envAttack
	e.vol = 0
	if e.a > 0 {
		e.a = (soundTimer / bufSize) / e.a
	} else {
		e.stage = envDecay
		e.vol = 1
	}
	if e.d < 10 {
		e.d = 10
	}
	e.d = (soundTimer / bufSize) / e.d
	if e.r < 10 {
		e.r = 10
	}
	e.r = (soundTimer / bufSize) / e.r
}

func (e *envelope) off() { e.stage = envRelease }

func (e *envelope) advance() {
	switch e.stage {
	case envAttack:
		e.vol += e.a
		if e.vol >= 1 {
			e.stage = envDecay
			e.vol = 1
		}
	case envDecay:
		e.vol -= e.d
		if e.vol <= e.s || e.d <= 0 {
			e.stage = envSustain
			e.vol = e.s
		}
	case envSustain:
		e.vol = e.s
	case envRelease:
		if e.vol <= 0 || e.r <= 0 {
			e.vol = 0
		} else {
			e.vol -= e.r
		}
	}
}

type sample struct {
	data         []uint8
	len          float32
	pos          float32
	inc          float32
	loop         float32
	env          envelope
	hasData      bool
}

func interpolate(data []uint8, length float32, pos float32) float32 {
	x0 := int(pos)
	x1 := x0 + 1
	y0 := float32(data[x0])
	y1 := float32(data[x1%int(length)])
	frac := pos - float32(x0)
	return y0 + frac*(y1-y0)
}

func (s *sample) next() int16 {
	if !s.hasData {
		return 0
	}
	if s.pos >= s.len {
		if s.loop == 0 {
			s.hasData = false
			return 0
		}
		for s.pos >= s.len {
			s.pos -= s.loop
		}
	}
	val := interpolate(s.data, s.len, s.pos)
	val *= s.env.vol
	next := int16(int8(uint8(val) ^ 0x80))
	s.pos += s.inc
	s.env.advance()
	return next
}

type channel struct {
	sample, nextSample sample
	xfade              bool
	duration           float32
	volL, volR         float32
}

func (c *channel) noteOn(dur float32, data []uint8, length uint16, vol, attack, decay, sustainLvl, release, pitch uint8, loop bool) {
	c.duration = dur
	c.volL = float32(vol>>4) / 15.0
	c.volR = float32(vol&0xf) / 15.0

	var next sample
	next.data = data
	next.len = float32(length)
	next.pos = 0
	next.env.a = float32(attack) * 64
	next.env.d = float32(decay) * 64
	next.env.s = float32(sustainLvl) / 16
	next.env.r = float32(release) * 64
	if loop {
		next.loop = float32(length)
	}
	next.env.on()
	next.hasData = len(data) > 0

	sampleRate := float32(44100) / 261.60
	if length <= 256 {
		sampleRate = float32(length)
	}
	if pitch < 20 {
		pitch = 20
	}
	next.inc = tuning[pitch-20] * sampleRate

	c.nextSample = next
	c.xfade = true
}

func (c *channel) noteOff(dur float32) {
	c.duration = dur
	c.sample.env.off()
}

func calcDuration(length uint16, pitch uint8) float32 {
	if pitch < 20 {
		pitch = 20
	}
	scale := tuning[pitch-20] / tuning[0x3c-20]
	return float32(length) / (scale * 44.1)
}

func portBase(instance uint8) byte { return byte((3 + instance) << 4) }

const (
	offDuration = 0x5
	offADSR     = 0x8
	offLength   = 0xa
	offAddr     = 0xc
	offVolume   = 0xe
	offCtrl     = 0xf
)

// Audio implements uxn.Device for the four-voice polyphonic audio mixer.
type Audio struct {
	channel [polyphony]channel
}

func (a *Audio) BeforeDEI(m *uxn.Machine, port byte) {
	for n := uint8(0); n < polyphony; n++ {
		base := portBase(n)
		switch port {
		case base + 0x2:
			m.Dev[port] = byte(a.getPosition(n) >> 8)
		case base + 0x3:
			m.Dev[port] = byte(a.getPosition(n))
		case base + 0x4:
			m.Dev[port] = a.getVU(n)
		}
	}
}

func (a *Audio) AfterDEO(m *uxn.Machine, port byte) {
	for n := uint8(0); n < polyphony; n++ {
		if port == portBase(n)+offCtrl {
			a.start(m, n)
		}
	}
}

func (a *Audio) getVU(instance uint8) byte {
	return byte(a.channel[instance].sample.env.vol * 255)
}

func (a *Audio) getPosition(instance uint8) byte {
	return byte(int32(a.channel[instance].sample.pos))
}

func (a *Audio) start(m *uxn.Machine, instance uint8) {
	base := portBase(instance)
	dur := m.DevPeek2(base + offDuration)
	ctrl := m.Dev[base+offCtrl]
	off := ctrl == 0
	length := m.DevPeek2(base + offLength)
	pitch := ctrl & 0x7f
	if pitch < 20 {
		pitch = 20
	}
	duration := float32(dur)
	if duration == 0 {
		duration = calcDuration(length, pitch)
	}
	if off {
		a.channel[instance].noteOff(duration)
		return
	}
	addr := m.DevPeek2(base + offAddr)
	data := m.BoundedRange(addr, length)
	length = uint16(len(data))
	volume := m.Dev[base+offVolume]
	loop := ctrl&0x80 == 0
	adsr := m.DevPeek2(base + offADSR)
	attack := uint8(adsr>>12) & 0xf
	decay := uint8(adsr>>8) & 0xf
	sustainLvl := uint8(adsr>>4) & 0xf
	release := uint8(adsr) & 0xf
	a.channel[instance].noteOn(duration, data, length, volume, attack, decay, sustainLvl, release, pitch, loop)
}

// Mix runs the vector of each voice whose remaining duration has reached
// zero (including voices that were never started),
// then fills out (interleaved stereo s16, len(out) must be even) with the
// cross-faded, envelope-shaped mix, matching Audio::write including the
// final <<6 normalization shift.
func (a *Audio) Mix(m *uxn.Machine, out []int16) {
	for i := range out {
		out[i] = 0
	}
	for n := uint8(0); n < polyphony; n++ {
		ch := &a.channel[n]
		if ch.duration <= 0 {
			m.CallVec(portBase(n))
		}
		ch.duration -= soundTimer

		x := 0
		if ch.xfade {
			delta := float32(1) / (xfadeSamples * 2)
			for x < xfadeSamples*2 && x+1 < len(out) {
				alpha := float32(x) * delta
				beta := 1 - alpha
				nextA := ch.nextSample.next()
				var nextB int16
				if ch.sample.hasData {
					nextB = ch.sample.next()
				}
				mixed := alpha*float32(nextA) + beta*float32(nextB)
				out[x] += int16(mixed * ch.volL)
				x++
				out[x] += int16(mixed * ch.volR)
				x++
			}
			ch.sample = ch.nextSample
			ch.xfade = false
		}
		for x+1 < len(out) {
			if !ch.sample.hasData {
				break
			}
			next := ch.sample.next()
			out[x] += int16(float32(next) * ch.volL)
			x++
			out[x] += int16(float32(next) * ch.volR)
			x++
		}
	}
	for i := range out {
		out[i] <<= 6
	}
}
