package cathedral

import "fmt"

// PlayerPieces tracks how many copies of each building a player still
// holds. The zero value is unusable; construct with NewPlayerPieces.
type PlayerPieces struct {
	player Player
	counts [NumBuildingTypes]int8
}

// NewPlayerPieces allocates the shared pool plus the player's exclusive
// pieces.
func NewPlayerPieces(p Player) PlayerPieces {
	pp := PlayerPieces{player: p}
	pp.Reset()
	return pp
}

// Reset restores the initial allocation. Used by undo replay.
func (pp *PlayerPieces) Reset() {
	for i := range pp.counts {
		pp.counts[i] = 0
	}
	for _, t := range CommonBuildings {
		pp.counts[t] += int8(GetBuilding(t).Count)
	}
	for _, t := range exclusiveBuildings(pp.player) {
		pp.counts[t] += int8(GetBuilding(t).Count)
	}
}

func exclusiveBuildings(p Player) []BuildingType {
	if p == Black {
		return BlackBuildings[:]
	}
	return WhiteBuildings[:]
}

// Available reports whether at least one copy of the type remains.
func (pp PlayerPieces) Available(t BuildingType) bool {
	return pp.counts[t] > 0
}

// Remaining returns the count left for the type.
func (pp PlayerPieces) Remaining(t BuildingType) int {
	return int(pp.counts[t])
}

// AvailableTypes lists every type with a nonzero count, in type order.
func (pp PlayerPieces) AvailableTypes() []BuildingType {
	types := make([]BuildingType, 0, NumBuildingTypes)
	for t := BuildingType(0); t < NumBuildingTypes; t++ {
		if pp.counts[t] > 0 {
			types = append(types, t)
		}
	}
	return types
}

// Use consumes one copy. Legality checks gate every placement before this
// runs, so an exhausted type here is a caller bug, not a game condition.
func (pp *PlayerPieces) Use(t BuildingType) {
	if pp.counts[t] <= 0 {
		panic(fmt.Sprintf("cathedral: no %v left for %v", t, pp.player))
	}
	pp.counts[t]--
}

// Return puts a captured building back into the pool. The cathedral is
// lost for good once captured.
func (pp *PlayerPieces) Return(t BuildingType) {
	if t == BuildingCathedral {
		return
	}
	pp.counts[t]++
}
