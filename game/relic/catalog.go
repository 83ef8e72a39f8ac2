// Package relic validates relic effect configurations against the game's
// roll pools and searches for repairs of illegal relics.
package relic

import "github.com/kasuganosora/relicsave/resource"

// PoolCatalog is the read-only game data the checker needs.
// *resource.Catalog implements it.
type PoolCatalog interface {
	Relic(id uint32) (resource.Relic, bool)
	RelicIDs() []uint32
	Rollable(pool int32, effect uint32) bool
	RollableStrict(pool int32, effect uint32) bool
	PoolEffects(pool int32) []uint32
	NeedsCurse(effect uint32) bool
	ConflictID(effect uint32) int32
	SortKey(effect uint32) int64
}

var _ PoolCatalog = (*resource.Catalog)(nil)

func isEmpty(id uint32) bool { return resource.IsEmptyEffect(id) }
