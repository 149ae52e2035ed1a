// Package datetimedev implements the Varvara datetime device: eleven
// read-only bytes (ports 0xc0-0xca) derived from the host's local time, mirroring
// PosixDatetime::datetime_byte.
package datetimedev

import (
	"time"

	"varvara/internal/uxn"
)

const portBase = 0xc0

// Datetime implements uxn.Device. Now defaults to time.Now when nil, so
// tests can pin a fixed instant.
type Datetime struct {
	Now func() time.Time
}

func (d *Datetime) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

func (d *Datetime) BeforeDEI(m *uxn.Machine, port byte) {
	if port < portBase || port > portBase+0xa {
		return
	}
	t := d.now().Local()
	switch port & 0xf {
	case 0x0:
		m.Dev[port] = byte(t.Year() >> 8)
	case 0x1:
		m.Dev[port] = byte(t.Year())
	case 0x2:
		m.Dev[port] = byte(t.Month() - 1)
	case 0x3:
		m.Dev[port] = byte(t.Day())
	case 0x4:
		m.Dev[port] = byte(t.Hour())
	case 0x5:
		m.Dev[port] = byte(t.Minute())
	case 0x6:
		m.Dev[port] = byte(t.Second())
	case 0x7:
		m.Dev[port] = byte(t.Weekday())
	case 0x8:
		m.Dev[port] = byte((t.YearDay() - 1) >> 8)
	case 0x9:
		m.Dev[port] = byte(t.YearDay() - 1)
	case 0xa:
		m.Dev[port] = isDST(t)
	}
}

func isDST(t time.Time) byte {
	_, stdOffset := t.Local().Zone()
	jan := time.Date(t.Year(), 1, 1, 0, 0, 0, 0, t.Location())
	_, janOffset := jan.Zone()
	jul := time.Date(t.Year(), 7, 1, 0, 0, 0, 0, t.Location())
	_, julOffset := jul.Zone()
	maxOffset := janOffset
	if julOffset > maxOffset {
		maxOffset = julOffset
	}
	if stdOffset == maxOffset && janOffset != julOffset {
		return 1
	}
	return 0
}

func (d *Datetime) AfterDEO(m *uxn.Machine, port byte) {}
