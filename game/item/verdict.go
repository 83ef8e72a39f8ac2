package item

import (
	"github.com/kasuganosora/relicsave/game/record"
	"github.com/kasuganosora/relicsave/game/relic"
	"github.com/kasuganosora/relicsave/resource"
	"go.uber.org/zap"
)

// State is the validation state of one relic handle.
type State string

const (
	Unvalidated   State = "unvalidated"
	Valid         State = "valid"
	Illegal       State = "illegal"
	IllegalCurse  State = "illegal-curse"
	StrictInvalid State = "strict-invalid"
)

// Verdict is the last validation result for a handle.
type Verdict struct {
	State     State           `json:"state"`
	Violation relic.Violation `json:"violation"`
	// StrictReason explains a strict-invalid verdict.
	StrictReason string `json:"strict_reason,omitempty"`
}

// IsIllegal reports whether the verdict is illegal or illegal-curse.
func (v Verdict) IsIllegal() bool { return v.State == Illegal || v.State == IllegalCurse }

// Summary counts verdicts after a sweep.
type Summary struct {
	Relics        int `json:"relics"`
	Illegal       int `json:"illegal"`
	CurseIllegal  int `json:"curse_illegal"`
	StrictInvalid int `json:"strict_invalid"`
}

// Verdict returns the tracked state of h, Unvalidated when never checked.
func (inv *Inventory) Verdict(h record.Handle) Verdict {
	if v, ok := inv.verdicts[h]; ok {
		return v
	}
	return Verdict{State: Unvalidated, Violation: relic.Violation{Slot: -1}}
}

func (inv *Inventory) evaluate(h record.Handle) Verdict {
	it := inv.items[inv.stateOf[h]]
	id, effects := it.RelicID(), it.EffectSet()
	res := inv.checker.Evaluate(id, effects)
	switch {
	case !res.Violation.OK() && res.Violation.IsCurse():
		return Verdict{State: IllegalCurse, Violation: res.Violation}
	case !res.Violation.OK():
		return Verdict{State: Illegal, Violation: res.Violation}
	case res.StrictInvalid:
		return Verdict{State: StrictInvalid, Violation: res.Violation, StrictReason: inv.checker.StrictInvalidReason(id, effects)}
	}
	return Verdict{State: Valid, Violation: res.Violation}
}

// SetIllegalRelics re-validates every held relic. Among copies of a
// uniqueness-constrained id, the first non-illegal copy in entry order stays
// legal and the rest become illegal with reason duplicate-unique.
func (inv *Inventory) SetIllegalRelics() Summary {
	verdicts := make(map[record.Handle]Verdict, len(inv.relics))
	keptUnique := make(map[uint32]bool)
	for _, h := range inv.relics {
		v := inv.evaluate(h)
		id := inv.items[inv.stateOf[h]].RelicID()
		if resource.IsUnique(id) && !v.IsIllegal() {
			if keptUnique[id] {
				v = Verdict{State: Illegal, Violation: relic.Violation{Reason: relic.DuplicateUnique, Slot: -1}}
			}
			keptUnique[id] = true
		}
		verdicts[h] = v
	}
	inv.verdicts = verdicts

	s := Summary{Relics: len(inv.relics)}
	for _, v := range verdicts {
		switch v.State {
		case Illegal:
			s.Illegal++
		case IllegalCurse:
			s.Illegal++
			s.CurseIllegal++
		case StrictInvalid:
			s.StrictInvalid++
		}
	}
	inv.logger.Info("relic sweep finished",
		zap.Int("relics", s.Relics), zap.Int("illegal", s.Illegal),
		zap.Int("curse_illegal", s.CurseIllegal), zap.Int("strict_invalid", s.StrictInvalid))
	return s
}

// updateVerdict re-validates a single handle.
func (inv *Inventory) updateVerdict(h record.Handle) Verdict {
	v := inv.evaluate(h)
	inv.verdicts[h] = v
	return v
}

func (inv *Inventory) handlesIn(match func(Verdict) bool) []record.Handle {
	var out []record.Handle
	for _, h := range inv.relics {
		if v, ok := inv.verdicts[h]; ok && match(v) {
			out = append(out, h)
		}
	}
	return out
}

// Illegal lists illegal handles (curse-illegal included) in entry order.
func (inv *Inventory) Illegal() []record.Handle {
	return inv.handlesIn(Verdict.IsIllegal)
}

// CurseIllegal lists handles illegal because of their curses.
func (inv *Inventory) CurseIllegal() []record.Handle {
	return inv.handlesIn(func(v Verdict) bool { return v.State == IllegalCurse })
}

// StrictInvalid lists legal handles flagged by the strict pool check.
func (inv *Inventory) StrictInvalid() []record.Handle {
	return inv.handlesIn(func(v Verdict) bool { return v.State == StrictInvalid })
}
