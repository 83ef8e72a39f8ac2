package loadout

import "github.com/kasuganosora/relicsave/game/record"

// RelicDetail is the resolved content of one occupied or empty slot.
type RelicDetail struct {
	Handle  record.Handle `json:"handle"`
	RelicID uint32        `json:"relic_id"`
	Effects [6]uint32     `json:"effects"`
}

// SlotSet is a vessel or preset with its slots resolved.
type SlotSet struct {
	Name   string         `json:"name,omitempty"`
	Vessel uint32         `json:"vessel"`
	Relics [6]RelicDetail `json:"relics"`
}

// Export is a shareable description of one hero's builds.
type Export struct {
	Hero    uint8         `json:"hero"`
	Vessels []SlotSet     `json:"vessels"`
	Presets []SlotSet     `json:"presets"`
	Needed  []RelicDetail `json:"all_needed_relics"`
}

var emptyDetail = RelicDetail{Effects: [6]uint32{
	0xFFFFFFFF, 0xFFFFFFFF, 0xFFFFFFFF, 0xFFFFFFFF, 0xFFFFFFFF, 0xFFFFFFFF,
}}

// Export resolves every vessel and preset of hero against the inventory.
func (l *Loadout) Export(hero uint8) (Export, error) {
	if err := l.validator.ValidateHero(hero); err != nil {
		return Export{}, err
	}
	h, _ := l.lookup(hero)
	out := Export{Hero: hero}
	seen := make(map[record.Handle]bool)
	resolve := func(relics [6]record.Handle) [6]RelicDetail {
		var ds [6]RelicDetail
		for i, handle := range relics {
			ds[i] = l.detail(handle)
			if ds[i].RelicID != 0 && !seen[handle] {
				seen[handle] = true
				out.Needed = append(out.Needed, ds[i])
			}
		}
		return ds
	}
	for _, v := range h.vessels {
		out.Vessels = append(out.Vessels, SlotSet{Vessel: v.ID, Relics: resolve(v.Relics)})
	}
	for _, pi := range h.presets {
		p := l.presets[pi]
		out.Presets = append(out.Presets, SlotSet{Name: p.Name, Vessel: p.Vessel, Relics: resolve(p.Relics)})
	}
	return out, nil
}

func (l *Loadout) detail(h record.Handle) RelicDetail {
	if h.IsEmpty() {
		return emptyDetail
	}
	r, ok := l.inv.Relic(h)
	if !ok {
		d := emptyDetail
		d.Handle = h
		return d
	}
	return RelicDetail{Handle: h, RelicID: r.ID, Effects: r.Effects}
}
