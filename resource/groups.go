package resource

// Group is a named relic id range.
type Group struct {
	Name     string
	Min, Max uint32
}

// Contains reports whether id falls in the group.
func (g Group) Contains(id uint32) bool { return id >= g.Min && id <= g.Max }

// Relic id ranges in scan order.
var Groups = []Group{
	{"store_102", 100, 199},
	{"store_103", 200, 299},
	{"unique_1", 1000, 2100},
	{"unique_2", 10000, 19999},
	{"illegal", 20000, 30035},
	{"reward_0", 1000000, 1000999},
	{"reward_1", 1001000, 1001999},
	{"reward_2", 1002000, 1002999},
	{"reward_3", 1003000, 1003999},
	{"reward_4", 1004000, 1004999},
	{"reward_5", 1005000, 1005999},
	{"reward_6", 1006000, 1006999},
	{"reward_7", 1007000, 1007999},
	{"reward_8", 1008000, 1008999},
	{"reward_9", 1009000, 1009999},
	{"deep_102", 2000000, 2009999},
	{"deep_103", 2010000, 2019999},
}

const (
	// ReservedGroup names the id range the game never hands out.
	ReservedGroup = "illegal"

	// Global range of ids the game can generate.
	MinRelicID uint32 = 100
	MaxRelicID uint32 = 2013322
)

// GroupOf finds the range containing id.
func GroupOf(id uint32) (Group, bool) {
	for _, g := range Groups {
		if g.Contains(id) {
			return g, true
		}
	}
	return Group{}, false
}

// IsReserved reports whether id lies in the reserved range.
func IsReserved(id uint32) bool {
	g, ok := GroupOf(id)
	return ok && g.Name == ReservedGroup
}

// IsUnique reports whether at most one legal copy of id may be held.
func IsUnique(id uint32) bool {
	g, ok := GroupOf(id)
	return ok && (g.Name == "unique_1" || g.Name == "unique_2")
}

// IsDeepRelicID reports whether id lies in a deep relic range.
func IsDeepRelicID(id uint32) bool {
	g, ok := GroupOf(id)
	return ok && (g.Name == "deep_102" || g.Name == "deep_103")
}
