package testutil

import (
	"bytes"
	"encoding/binary"

	"github.com/kasuganosora/relicsave/game/record"
	"golang.org/x/text/encoding/unicode"
)

// Layout constants of the synthetic save.
const (
	ItemsStart   = 0x14
	ItemSlots    = 5120
	EntrySlots   = 3065
	NameGap      = 0x94
	EntryGap     = 0x5B8
	HeroCount    = 10
	PresetStride = 80
	PresetRoom   = 100
)

// LoadoutMagic is the signature in front of the hero section.
var LoadoutMagic = []byte{
	0xC2, 0x00, 0x03, 0x00, 0x00, 0x2C, 0x00, 0x00, 0x03, 0x00, 0x0A, 0x00, 0x04, 0x00, 0x46, 0x00,
	0x64, 0x00, 0x00, 0x00,
}

// VesselSpec is one 28-byte vessel record.
type VesselSpec struct {
	ID     uint32
	Relics [6]record.Handle
}

// HeroSpec is one hero header plus its four inline vessels.
type HeroSpec struct {
	ID        uint8
	PresetIdx uint8
	CurVessel uint32
	Inline    [4]VesselSpec
}

// PresetSpec is one 80-byte preset record.
type PresetSpec struct {
	Hero      uint16
	Counter   uint8
	Name      string
	Vessel    uint32
	Relics    [6]record.Handle
	Timestamp uint64
}

// SaveBuilder assembles a synthetic save buffer.
type SaveBuilder struct {
	Items   []record.Item
	Entries []record.Entry
	Name    string
	Murks   uint32
	Sigs    uint32
	// EntryCount overrides the stored entry count when non-nil.
	EntryCount *uint32

	Heroes  []HeroSpec
	Vessels []VesselSpec
	Presets []PresetSpec
	// NoLoadout omits the loadout region.
	NoLoadout bool

	Pad int
}

// Build encodes the save.
func (b *SaveBuilder) Build() []byte {
	var buf bytes.Buffer
	le := binary.LittleEndian
	u32 := func(v uint32) { _ = binary.Write(&buf, le, v) }

	buf.Write(bytes.Repeat([]byte{0xAB}, ItemsStart))
	for i := range ItemSlots {
		if i < len(b.Items) {
			buf.Write(b.Items[i].Encode())
			continue
		}
		empty := record.NewEmptyItem(0)
		buf.Write(empty.Encode())
	}

	region := make([]byte, NameGap+EntryGap)
	le.PutUint32(region[NameGap-64:], b.Sigs)
	copy(region[NameGap:], utf16(b.Name, 32))
	le.PutUint32(region[NameGap+52:], b.Murks)
	buf.Write(region)

	count := uint32(0)
	for _, e := range b.Entries {
		if !e.IsEmpty() {
			count++
		}
	}
	if b.EntryCount != nil {
		count = *b.EntryCount
	}
	u32(count)
	for i := range EntrySlots {
		if i < len(b.Entries) {
			buf.Write(b.Entries[i].Encode())
			continue
		}
		buf.Write(make([]byte, record.EntrySize))
	}

	buf.Write(bytes.Repeat([]byte{0x11}, 64))
	if !b.NoLoadout {
		buf.Write(LoadoutMagic)
		for _, h := range b.Heroes {
			buf.WriteByte(h.ID)
			buf.WriteByte(h.PresetIdx)
			buf.Write([]byte{0, 0})
			u32(h.CurVessel)
			for _, v := range h.Inline {
				writeVessel(&buf, v)
			}
		}
		for _, v := range b.Vessels {
			writeVessel(&buf, v)
		}
		u32(0)
		presets := make([]byte, PresetRoom*PresetStride)
		for i, p := range b.Presets {
			rec := presets[i*PresetStride:]
			rec[0] = 0x01
			le.PutUint16(rec[1:], p.Hero)
			rec[3] = p.Counter
			copy(rec[4:40], utf16(p.Name, 36))
			le.PutUint32(rec[44:], p.Vessel)
			for j, h := range p.Relics {
				le.PutUint32(rec[48+4*j:], uint32(h))
			}
			le.PutUint64(rec[72:], p.Timestamp)
		}
		buf.Write(presets)
	}
	buf.Write(bytes.Repeat([]byte{0x5A}, 16))

	pad := b.Pad
	if pad == 0 {
		pad = 4096
	}
	buf.Write(make([]byte, pad))
	buf.Write(bytes.Repeat([]byte{0xEE}, record.TrailerSize))
	return buf.Bytes()
}

func writeVessel(buf *bytes.Buffer, v VesselSpec) {
	_ = binary.Write(buf, binary.LittleEndian, v.ID)
	for _, h := range v.Relics {
		_ = binary.Write(buf, binary.LittleEndian, uint32(h))
	}
}

func utf16(s string, size int) []byte {
	out, _ := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewEncoder().Bytes([]byte(s))
	if len(out) > size {
		out = out[:size]
	}
	return out
}

// Fixture handles in DefaultSave.
const (
	HWeapon    record.Handle = 0x80800001
	HArmor     record.Handle = 0x90800002
	HGoods     record.Handle = 0xB0002580
	HNormal    record.Handle = 0xC0800060 // 117, valid
	HDeep      record.Handle = 0xC0800061 // 2000001, valid, needs its curse
	HMismatch  record.Handle = 0xC0800062 // 118 with a pool-B effect
	HUnique    record.Handle = 0xC0800063 // 1500
	HUniqueDup record.Handle = 0xC0800064 // 1500 again
	HStrict    record.Handle = 0xC0800065 // 2000002, strict-invalid

	// FirstRelicSlot is the state slot of HNormal; relics fill the slots after it.
	FirstRelicSlot = 84
	LastItemSlot   = FirstRelicSlot + 5
)

func relic(h record.Handle, id uint32, effects, curses [3]uint32) record.Item {
	return record.NewRelicItem(h, record.RelicTemplate{RelicID: id, Effects: effects, Curses: curses})
}

// DefaultBuilder returns the builder behind DefaultSave so tests can tweak it.
func DefaultBuilder() *SaveBuilder {
	none := [3]uint32{Empty, Empty, Empty}
	items := []record.Item{
		{Handle: HWeapon, ItemID: 1000000, Size: record.SizeWeapon, Raw: make([]byte, record.SizeWeapon-record.SizeBase)},
		{Handle: HArmor, ItemID: 2000000, Size: record.SizeArmor, Raw: make([]byte, record.SizeArmor-record.SizeBase)},
		{Handle: HGoods, ItemID: 9600, Size: record.SizeBase},
	}
	for len(items) < FirstRelicSlot {
		items = append(items, record.NewEmptyItem(0))
	}
	items = append(items,
		relic(HNormal, RelicNormal, [3]uint32{EffA, EffB, Empty}, none),
		relic(HDeep, RelicDeepCursed, [3]uint32{EffCursed, EffDeep, Empty}, [3]uint32{Curse1, Empty, Empty}),
		relic(HMismatch, RelicTriple, [3]uint32{EffB, Empty, Empty}, none),
		relic(HUnique, RelicUnique, [3]uint32{EffA, Empty, Empty}, none),
		relic(HUniqueDup, RelicUnique, [3]uint32{EffA, Empty, Empty}, none),
		relic(HStrict, RelicDeepStrict, [3]uint32{EffDeepB, Empty, Empty}, none),
	)
	var entries []record.Entry
	for _, it := range items {
		if it.Handle.IsEmpty() {
			continue
		}
		entries = append(entries, record.Entry{Handle: it.Handle, Amount: 1, Acquisition: uint32(len(entries) + 1)})
	}

	shared := [4]VesselSpec{{ID: VesselShared}, {ID: 19001}, {ID: 19002}, {ID: 19010}}
	heroes := make([]HeroSpec, HeroCount)
	for i := range heroes {
		heroes[i] = HeroSpec{ID: uint8(i + 1), PresetIdx: 0xFF, CurVessel: VesselShared, Inline: shared}
	}
	heroes[0].CurVessel = VesselHero1
	heroes[0].PresetIdx = 0
	heroes[1].CurVessel = VesselHero2

	loadout := [6]record.Handle{HNormal, 0, 0, HDeep, 0, 0}
	return &SaveBuilder{
		Items:   items,
		Entries: entries,
		Name:    "Nightfarer",
		Murks:   12345,
		Sigs:    678,
		Heroes:  heroes,
		Vessels: []VesselSpec{
			{ID: VesselHero1, Relics: loadout},
			{ID: VesselHero1Alt},
			{ID: VesselHero2},
			{ID: VesselRun},
		},
		Presets: []PresetSpec{
			{Hero: 1, Counter: 1, Name: "Main", Vessel: VesselHero1, Relics: loadout, Timestamp: 133000000000000000},
			{Hero: 2, Counter: 0, Name: "Alt", Vessel: VesselHero2, Relics: [6]record.Handle{HUnique}, Timestamp: 133000000000000001},
		},
	}
}

// DefaultSave builds the standard fixture save.
func DefaultSave() []byte { return DefaultBuilder().Build() }
