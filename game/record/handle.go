// Package record decodes and encodes the fixed and variable-length item
// records of a save buffer.
package record

import (
	"fmt"
	"strconv"
)

// Handle identifies one item slot: the top nibble is the type tag and the
// low 24 bits are the instance id.
type Handle uint32

// Type tags.
const (
	TypeEmpty  Handle = 0x00000000
	TypeWeapon Handle = 0x80000000
	TypeArmor  Handle = 0x90000000
	TypeGoods  Handle = 0xB0000000
	TypeRelic  Handle = 0xC0000000

	typeMask     = 0xF0000000
	instanceMask = 0x00FFFFFF
)

// Record sizes keyed by type tag.
const (
	SizeBase   = 8
	SizeArmor  = 16
	SizeRelic  = 80
	SizeWeapon = 88

	// RelicDelta is the number of bytes a relic record takes beyond an empty one.
	RelicDelta = SizeRelic - SizeBase
)

// Type returns the type tag.
func (h Handle) Type() Handle { return h & typeMask }

// Instance returns the low 24 bits.
func (h Handle) Instance() uint32 { return uint32(h) & instanceMask }

// IsRelic reports whether h is a non-zero relic handle.
func (h Handle) IsRelic() bool { return h != 0 && h.Type() == TypeRelic }

// IsEmpty reports whether h is the zero handle.
func (h Handle) IsEmpty() bool { return h == 0 }

func (h Handle) String() string { return fmt.Sprintf("0x%08X", uint32(h)) }

// ParseHandle reads a handle written in decimal or 0x-prefixed hex.
func ParseHandle(s string) (Handle, error) {
	v, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("bad handle %q", s)
	}
	return Handle(v), nil
}

// NewHandle combines a type tag and an instance id.
func NewHandle(tag Handle, instance uint32) Handle {
	return tag.Type() | Handle(instance&instanceMask)
}

// SizeOf returns the record size implied by the handle's type tag.
func SizeOf(h Handle) int {
	if h == 0 {
		return SizeBase
	}
	switch h.Type() {
	case TypeWeapon:
		return SizeWeapon
	case TypeArmor:
		return SizeArmor
	case TypeRelic:
		return SizeRelic
	default:
		return SizeBase
	}
}
