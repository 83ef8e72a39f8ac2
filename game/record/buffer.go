package record

import (
	"encoding/binary"

	"github.com/kasuganosora/relicsave/game/saveerr"
)

// TrailerSize is the fixed tail of the save buffer that splices never touch.
const TrailerSize = 0x1C

// Buffer is the mutable save arena. Its length never changes: growth inside
// the active region is paid for out of the zero pad that sits in front of the
// trailer, and shrinkage is returned to it. The active length is tracked
// explicitly so a splice only moves live bytes.
type Buffer struct {
	data   []byte
	active int
}

// NewBuffer takes ownership of data and measures the zero pad in front of
// the trailer.
func NewBuffer(data []byte) *Buffer {
	b := &Buffer{data: data}
	end := b.padEnd()
	b.active = end
	for b.active > 0 && data[b.active-1] == 0 {
		b.active--
	}
	return b
}

func (b *Buffer) padEnd() int {
	end := len(b.data) - TrailerSize
	if end < 0 {
		return 0
	}
	return end
}

// Bytes returns the underlying arena. Callers must not resize it.
func (b *Buffer) Bytes() []byte { return b.data }

// Len is the total buffer length.
func (b *Buffer) Len() int { return len(b.data) }

// Active is the length of the live region.
func (b *Buffer) Active() int { return b.active }

// Slack is the number of pad bytes available for growth.
func (b *Buffer) Slack() int { return b.padEnd() - b.active }

// Splice replaces oldLen bytes at off with repl, shifting the rest of the
// active region in place. The size delta is absorbed by the pad region.
func (b *Buffer) Splice(off, oldLen int, repl []byte) error {
	if off < 0 || oldLen < 0 || off+oldLen > b.active {
		return saveerr.Structural(off, "splice of %d bytes outside active region (active=%d)", oldLen, b.active)
	}
	delta := len(repl) - oldLen
	switch {
	case delta > 0:
		if delta > b.Slack() {
			return &saveerr.CapacityError{Resource: "save pad region"}
		}
		copy(b.data[off+len(repl):b.active+delta], b.data[off+oldLen:b.active])
	case delta < 0:
		copy(b.data[off+len(repl):], b.data[off+oldLen:b.active])
		clear(b.data[b.active+delta : b.active])
	}
	copy(b.data[off:], repl)
	b.active += delta
	return nil
}

// WriteAt overwrites len(p) bytes in place.
func (b *Buffer) WriteAt(off int, p []byte) error {
	if off < 0 || off+len(p) > len(b.data) {
		return saveerr.Structural(off, "write of %d bytes out of range", len(p))
	}
	copy(b.data[off:], p)
	b.touch(off + len(p))
	return nil
}

// touch grows the active region when a direct write lands in the pad.
func (b *Buffer) touch(end int) {
	if end > b.active && end <= b.padEnd() {
		b.active = end
	}
}

// Uint32 reads a little-endian u32.
func (b *Buffer) Uint32(off int) (uint32, error) {
	if off < 0 || off+4 > len(b.data) {
		return 0, saveerr.Structural(off, "u32 read out of range")
	}
	return binary.LittleEndian.Uint32(b.data[off:]), nil
}

// PutUint32 writes a little-endian u32.
func (b *Buffer) PutUint32(off int, v uint32) error {
	if off < 0 || off+4 > len(b.data) {
		return saveerr.Structural(off, "u32 write out of range")
	}
	binary.LittleEndian.PutUint32(b.data[off:], v)
	b.touch(off + 4)
	return nil
}
