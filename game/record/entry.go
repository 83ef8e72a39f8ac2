package record

import (
	"encoding/binary"

	"github.com/kasuganosora/relicsave/game/saveerr"
)

// EntrySize is the fixed size of an inventory entry.
const EntrySize = 14

// Entry is one inventory table row.
type Entry struct {
	Handle      Handle
	Amount      uint32
	Acquisition uint32
	Favorite    uint8
	Flag        uint8
}

// IsEmpty reports whether the entry slot is unused.
func (e Entry) IsEmpty() bool { return e.Handle == 0 }

// GoodsID returns the goods id of a goods entry.
func (e Entry) GoodsID() uint32 { return uint32(e.Handle) & instanceMask }

// DecodeEntry reads a 14-byte entry at off.
func DecodeEntry(buf []byte, off int) (Entry, error) {
	if off < 0 || off+EntrySize > len(buf) {
		return Entry{}, saveerr.Structural(off, "entry truncated")
	}
	le := binary.LittleEndian
	return Entry{
		Handle:      Handle(le.Uint32(buf[off:])),
		Amount:      le.Uint32(buf[off+4:]),
		Acquisition: le.Uint32(buf[off+8:]),
		Favorite:    buf[off+12],
		Flag:        buf[off+13],
	}, nil
}

// Encode returns the 14-byte form.
func (e Entry) Encode() []byte {
	out := make([]byte, EntrySize)
	le := binary.LittleEndian
	le.PutUint32(out[0:], uint32(e.Handle))
	le.PutUint32(out[4:], e.Amount)
	le.PutUint32(out[8:], e.Acquisition)
	out[12] = e.Favorite
	out[13] = e.Flag
	return out
}
