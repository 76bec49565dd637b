package strategy

import "strconv"

// Name pools are drawn from once per roster to assign a unique display
// name within a class tag: each agent gets a display name drawn once from
// a class-specific name pool, unique within the roster.
var NamePools = map[string][]string{
	"WARRIOR": {"Korgath", "Bjornstad", "Thraxxus", "Vallorn", "Drevan"},
	"TRADER": {"Marcellus", "Fennick", "Osric", "Tavish", "Brantley"},
	"SURVIVOR": {"Wren", "Talon", "Marrow", "Ashgrove", "Sable"},
	"PARASITE": {"Leech", "Vermyx", "Scourge", "Nullbite", "Grimsting"},
	"GAMBLER": {"Lucky", "Ante", "Rook", "Maven", "Dice"},
}

// PickName returns pool[idx % len(pool)] with a numeric suffix once a pool
// is exhausted within a roster, guaranteeing uniqueness for any roster size.
func PickName(class string, idx int) string {
	pool := NamePools[class]
	if len(pool) == 0 {
		return class
	}
	base := pool[idx%len(pool)]
	if idx >= len(pool) {
		base = base + "-" + strconv.Itoa(idx/len(pool)+1)
	}
	return base
}
