package loadout

import (
	"github.com/kasuganosora/relicsave/game/item"
	"github.com/kasuganosora/relicsave/game/saveerr"
	"github.com/kasuganosora/relicsave/resource"
)

// Placement rejection codes.
const (
	CodeHeroInvalid     = "hero-invalid"
	CodeVesselUnknown   = "vessel-unknown"
	CodeVesselNotOwned  = "vessel-not-owned"
	CodeRelicMissing    = "relic-missing"
	CodeRelicUnknown    = "relic-unknown"
	CodeNotARelic       = "not-a-relic"
	CodeSlotCategory    = "slot-category-mismatch"
	CodeColorMismatch   = "color-mismatch"
	CodeDuplicateRelic  = "duplicate-relic"
	CodePresetEmpty     = "preset-empty"
	CodePresetDuplicate = "preset-duplicate"
	CodePresetNotOwned  = "preset-not-owned"
	CodeSlotOutOfRange  = "slot-invalid"
)

type roster interface {
	lookup(id uint8) (*heroState, bool)
	presetsOf(id uint8) []Preset
}

// Validator checks vessel and preset placements before they are written.
type Validator struct {
	cat    Catalog
	inv    *item.Inventory
	roster roster
}

// NewValidator builds a Validator over a parsed loadout.
func NewValidator(cat Catalog, inv *item.Inventory, r roster) *Validator {
	return &Validator{cat: cat, inv: inv, roster: r}
}

// ValidateHero checks that hero is a real hero present in the loadout.
func (v *Validator) ValidateHero(hero uint8) error {
	if hero < 1 || hero > HeroCount {
		return saveerr.Invalid(CodeHeroInvalid, -1, "hero %d out of range", hero)
	}
	if _, ok := v.roster.lookup(hero); !ok {
		return saveerr.Invalid(CodeHeroInvalid, -1, "hero %d not in loadout", hero)
	}
	return nil
}

// ValidateVessel checks a vessel configuration for hero.
func (v *Validator) ValidateVessel(hero uint8, vessel Vessel) error {
	if err := v.ValidateHero(hero); err != nil {
		return err
	}
	meta, ok := v.cat.Vessel(vessel.ID)
	if !ok {
		return saveerr.Invalid(CodeVesselUnknown, -1, "vessel %d", vessel.ID)
	}
	if meta.Hero != hero && !meta.Universal() {
		return saveerr.Invalid(CodeVesselNotOwned, -1, "vessel %d belongs to hero %d", vessel.ID, meta.Hero)
	}
	h, _ := v.roster.lookup(hero)
	if !hasVessel(h, vessel.ID) {
		return saveerr.Invalid(CodeVesselNotOwned, -1, "vessel %d not in hero %d loadout", vessel.ID, hero)
	}

	for i, handle := range vessel.Relics {
		if handle.IsEmpty() {
			continue
		}
		if !handle.IsRelic() {
			return saveerr.Invalid(CodeNotARelic, i, "%s", handle)
		}
		if !v.inv.HasRelic(handle) {
			return saveerr.Invalid(CodeRelicMissing, i, "%s", handle)
		}
		it, _ := v.inv.Item(handle)
		def, ok := v.cat.Relic(it.RelicID())
		if !ok {
			return saveerr.Invalid(CodeRelicUnknown, i, "relic id %d", it.RelicID())
		}
		deep := def.Deep || resource.IsDeepRelicID(def.ID)
		if deep != (i >= 3) {
			return saveerr.Invalid(CodeSlotCategory, i, "relic %d deep=%t", def.ID, deep)
		}
		if !meta.Slots[i].Accepts(def.Color) {
			return saveerr.Invalid(CodeColorMismatch, i, "slot takes %s, relic is %s", meta.Slots[i], def.Color)
		}
		end := 3
		if i >= 3 {
			end = 6
		}
		for j := i + 1; j < end; j++ {
			if vessel.Relics[j] == handle {
				return saveerr.Invalid(CodeDuplicateRelic, j, "%s", handle)
			}
		}
	}
	return nil
}

// ValidatePreset checks a new preset: non-empty, a valid vessel placement and
// not identical to a preset the hero already has.
func (v *Validator) ValidatePreset(hero uint8, p Preset) error {
	empty := true
	for _, h := range p.Relics {
		if !h.IsEmpty() {
			empty = false
			break
		}
	}
	if empty {
		return saveerr.Invalid(CodePresetEmpty, -1, "")
	}
	if err := v.ValidateVessel(hero, Vessel{ID: p.Vessel, Relics: p.Relics}); err != nil {
		return err
	}
	for _, other := range v.roster.presetsOf(hero) {
		if other.Vessel == p.Vessel && other.Relics == p.Relics {
			return saveerr.Invalid(CodePresetDuplicate, -1, "same as preset %d", other.Index)
		}
	}
	return nil
}

func hasVessel(h *heroState, id uint32) bool {
	return vesselIndex(h, id) >= 0
}

func vesselIndex(h *heroState, id uint32) int {
	for i, v := range h.vessels {
		if v.ID == id {
			return i
		}
	}
	return -1
}

func checkSlot(slot int) error {
	if slot < 0 || slot >= 6 {
		return saveerr.Invalid(CodeSlotOutOfRange, slot, "slot must be 0-5")
	}
	return nil
}
