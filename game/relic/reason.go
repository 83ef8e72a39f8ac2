package relic

import (
	"fmt"
	"strings"

	"github.com/kasuganosora/relicsave/game/saveerr"
)

// Reason is a machine-checkable violation code.
type Reason string

const (
	None            Reason = ""
	ReservedRange   Reason = "reserved-range"
	InvalidItem     Reason = "invalid-item"
	UnknownRelic    Reason = "unknown-relic"
	PoolMismatch    Reason = "pool-mismatch"
	CurseShortage   Reason = "curse-shortage"
	Conflict        Reason = "conflict"
	Unsorted        Reason = "unsorted"
	StrictPool      Reason = "strict-pool"
	DuplicateUnique Reason = "duplicate-unique"
)

// Details attached to pool-mismatch and conflict.
const (
	DetailEffectMustEmpty = "effect-must-empty"
	DetailEffectNotRolled = "effect-not-rollable"
	DetailCurseMustEmpty  = "curse-must-empty"
	DetailCurseRequired   = "curse-required"
	DetailCurseNotRolled  = "curse-not-rollable"
	DetailConflictEffect  = "effect"
	DetailConflictCurse   = "curse"
)

// Violation is the outcome of a check. The zero value with Slot -1 means valid.
type Violation struct {
	Reason Reason `json:"reason,omitempty"`
	// Slot is the index 0-5 into the effect set, -1 when not slot-specific.
	Slot   int    `json:"slot"`
	Detail string `json:"detail,omitempty"`
}

var valid = Violation{Slot: -1}

// OK reports whether no rule failed.
func (v Violation) OK() bool { return v.Reason == None }

// IsCurse reports whether the violation is caused by curses.
func (v Violation) IsCurse() bool {
	switch v.Reason {
	case CurseShortage:
		return true
	case Conflict:
		return v.Detail == DetailConflictCurse
	case PoolMismatch:
		return strings.HasPrefix(v.Detail, "curse-")
	}
	return false
}

func (v Violation) String() string {
	if v.OK() {
		return "valid"
	}
	s := string(v.Reason)
	if v.Detail != "" {
		s += "/" + v.Detail
	}
	if v.Slot >= 0 {
		s += fmt.Sprintf("@%d", v.Slot)
	}
	return s
}

// Err converts a failed check into a *saveerr.ValidationError, nil when OK.
func (v Violation) Err() error {
	if v.OK() {
		return nil
	}
	return &saveerr.ValidationError{Code: string(v.Reason), Slot: v.Slot, Msg: v.Detail}
}
