package session

import (
	"github.com/kasuganosora/relicsave/game/item"
	"github.com/kasuganosora/relicsave/game/record"
	"github.com/kasuganosora/relicsave/game/relic"
	"github.com/kasuganosora/relicsave/game/saveerr"
	"go.uber.org/zap"
)

// RepairResult is one applied fix.
type RepairResult struct {
	Handle  record.Handle `json:"handle"`
	From    uint32        `json:"from_id"`
	Fix     relic.Fix     `json:"fix"`
	Verdict item.Verdict  `json:"verdict"`
}

// RepairReport is the outcome of a mass repair.
type RepairReport struct {
	Repaired []RepairResult  `json:"repaired"`
	Failed   []record.Handle `json:"failed"`
}

// PlanRepair proposes a fix for h without writing it. ok is false when the
// relic needs no repair or none was found.
func (s *Session) PlanRepair(h record.Handle) (relic.Fix, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	r, ok := s.inv.Relic(h)
	if !ok {
		return relic.Fix{}, false, &saveerr.LookupError{Kind: "relic", ID: int64(h)}
	}
	fix, ok := s.plan(r)
	return fix, ok, nil
}

func (s *Session) plan(r item.Relic) (relic.Fix, bool) {
	illegal := !s.checker.CheckInvalidity(r.ID, r.Effects).OK()
	if !illegal && !s.checker.IsStrictInvalid(r.ID, r.Effects) {
		return relic.Fix{}, false
	}
	return s.checker.Repair(r.ID, r.Effects, illegal)
}

// Repair applies the planned fix for h.
func (s *Session) Repair(h record.Handle) (RepairResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	r, ok := s.inv.Relic(h)
	if !ok {
		return RepairResult{}, &saveerr.LookupError{Kind: "relic", ID: int64(h)}
	}
	fix, ok := s.plan(r)
	if !ok {
		return RepairResult{}, saveerr.Invalid("no-repair", -1, "no legal configuration found for %s", h)
	}
	return s.apply(r, fix)
}

func (s *Session) apply(r item.Relic, fix relic.Fix) (RepairResult, error) {
	effects := [3]uint32(fix.Effects[:3])
	curses := [3]uint32(fix.Effects[3:])
	v, err := s.inv.ModifyRelic(r.Handle, item.RelicPatch{ID: &fix.ID, Effects: &effects, Curses: &curses})
	if err != nil {
		return RepairResult{}, err
	}
	s.dirty = true
	return RepairResult{Handle: r.Handle, From: r.ID, Fix: fix, Verdict: v}, nil
}

// RepairAll sweeps the inventory and fixes every illegal or strict-invalid
// relic it can. Relics without a fix are reported as failed.
func (s *Session) RepairAll() (RepairReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	s.inv.SetIllegalRelics()
	targets := append(s.inv.Illegal(), s.inv.StrictInvalid()...)

	var rep RepairReport
	for _, h := range targets {
		r, _ := s.inv.Relic(h)
		if r.Verdict.Violation.Reason == relic.DuplicateUnique {
			rep.Failed = append(rep.Failed, h)
			continue
		}
		fix, ok := s.plan(r)
		if !ok {
			rep.Failed = append(rep.Failed, h)
			continue
		}
		res, err := s.apply(r, fix)
		if err != nil {
			return rep, err
		}
		rep.Repaired = append(rep.Repaired, res)
	}
	s.logger.Info("mass repair finished",
		zap.Int("repaired", len(rep.Repaired)), zap.Int("failed", len(rep.Failed)))
	return rep, nil
}
