package item

import (
	"golang.org/x/text/encoding/unicode"
)

const maxNameChars = 16

var utf16le = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// PlayerName decodes the UTF-16LE character name, up to 16 characters.
func (inv *Inventory) PlayerName() string {
	data := inv.buf.Bytes()
	start := inv.layout.NameOffset
	end := start
	for end+2 <= len(data) && end-start < maxNameChars*2 {
		if data[end] == 0 && data[end+1] == 0 {
			break
		}
		end += 2
	}
	name, err := utf16le.NewDecoder().Bytes(data[start:end])
	if err != nil {
		return ""
	}
	return string(name)
}

// Murks returns the held murks.
func (inv *Inventory) Murks() uint32 {
	v, _ := inv.buf.Uint32(inv.layout.MurksOffset)
	return v
}

// SetMurks overwrites the held murks.
func (inv *Inventory) SetMurks(v uint32) error { return inv.buf.PutUint32(inv.layout.MurksOffset, v) }

// Sigs returns the held sigs.
func (inv *Inventory) Sigs() uint32 {
	v, _ := inv.buf.Uint32(inv.layout.SigsOffset)
	return v
}

// SetSigs overwrites the held sigs.
func (inv *Inventory) SetSigs(v uint32) error { return inv.buf.PutUint32(inv.layout.SigsOffset, v) }
