package cathedral

import (
	"sort"
	"sync"
)

// BuildingType enumerates the 14 fixed pieces. The order defines the
// action encoding and must not change.
type BuildingType int8

const (
	BuildingTavern BuildingType = iota
	BuildingStable
	BuildingInn
	BuildingBridge
	BuildingManor
	BuildingSquare
	BuildingBlackAbbey
	BuildingWhiteAbbey
	BuildingBlackAcademy
	BuildingWhiteAcademy
	BuildingInfirmary
	BuildingCastle
	BuildingTower
	BuildingCathedral
)

const NumBuildingTypes = 14

var buildingNames = [NumBuildingTypes]string{
	"Tavern", "Stable", "Inn", "Bridge", "Manor", "Square",
	"BlackAbbey", "WhiteAbbey", "BlackAcademy", "WhiteAcademy",
	"Infirmary", "Castle", "Tower", "Cathedral",
}

func (t BuildingType) Valid() bool {
	return t >= 0 && t < NumBuildingTypes
}

func (t BuildingType) String() string {
	if !t.Valid() {
		return "InvalidBuilding"
	}
	return buildingNames[t]
}

// Turnable is a building's rotational symmetry class; its value is the
// highest usable rotation index.
type Turnable int8

const (
	TurnNone Turnable = 0 // symmetric under quarter turns
	TurnHalf Turnable = 1 // symmetric under half turns
	TurnFull Turnable = 3 // no rotational symmetry
)

// CommonBuildings are usable by either player.
var CommonBuildings = [...]BuildingType{
	BuildingTavern, BuildingStable, BuildingInn, BuildingBridge,
	BuildingManor, BuildingSquare, BuildingInfirmary, BuildingCastle,
	BuildingTower,
}

// Each player's exclusive pieces. The cathedral belongs to white.
var (
	BlackBuildings = [...]BuildingType{BuildingBlackAbbey, BuildingBlackAcademy}
	WhiteBuildings = [...]BuildingType{BuildingCathedral, BuildingWhiteAbbey, BuildingWhiteAcademy}
)

// Building is one immutable catalog entry: copies per owner, symmetry
// class, and per-rotation forms and corner sets relative to the anchor.
type Building struct {
	Count    int
	Turnable Turnable

	forms   [][]Square // indexed by rotation, 0..Turnable
	corners [][]Square
}

// Canonical shapes, each anchored so the form contains (0, 0).
var buildingDefs = [NumBuildingTypes]struct {
	count    int
	turnable Turnable
	form     []Square
}{
	BuildingTavern:       {2, TurnNone, []Square{{0, 0}}},
	BuildingStable:       {2, TurnHalf, []Square{{0, 0}, {1, 0}}},
	BuildingInn:          {2, TurnFull, []Square{{0, 0}, {1, 0}, {1, 1}}},
	BuildingBridge:       {1, TurnHalf, []Square{{0, 0}, {0, -1}, {0, 1}}},
	BuildingManor:        {1, TurnFull, []Square{{-1, 0}, {0, 0}, {1, 0}, {0, 1}}},
	BuildingSquare:       {1, TurnNone, []Square{{0, 0}, {0, 1}, {1, 0}, {1, 1}}},
	BuildingBlackAbbey:   {1, TurnHalf, []Square{{-1, 0}, {0, 0}, {0, 1}, {1, 1}}},
	BuildingWhiteAbbey:   {1, TurnHalf, []Square{{-1, 1}, {0, 0}, {0, 1}, {1, 0}}},
	BuildingBlackAcademy: {1, TurnFull, []Square{{-1, 0}, {0, -1}, {0, 0}, {0, 1}, {1, -1}}},
	BuildingWhiteAcademy: {1, TurnFull, []Square{{-1, -1}, {0, -1}, {0, 0}, {0, 1}, {1, 0}}},
	BuildingInfirmary:    {1, TurnNone, []Square{{-1, 0}, {0, -1}, {0, 0}, {0, 1}, {1, 0}}},
	BuildingCastle:       {1, TurnFull, []Square{{-1, 0}, {-1, 1}, {0, 0}, {1, 0}, {1, 1}}},
	BuildingTower:        {1, TurnFull, []Square{{-1, -1}, {0, -1}, {0, 0}, {1, 0}, {1, 1}}},
	BuildingCathedral:    {1, TurnFull, []Square{{-1, 0}, {0, -1}, {0, 0}, {0, 1}, {0, 2}, {1, 0}}},
}

var (
	catalogOnce sync.Once
	catalog     [NumBuildingTypes]Building
)

func initCatalog() {
	catalogOnce.Do(func() {
		for i := range buildingDefs {
			def := &buildingDefs[i]
			b := Building{Count: def.count, Turnable: def.turnable}
			for r := Rotate0; r <= Rotation(def.turnable); r++ {
				form := make([]Square, len(def.form))
				for j, sq := range def.form {
					form[j] = sq.Rotate(r)
				}
				b.forms = append(b.forms, form)
				b.corners = append(b.corners, cornersOf(form))
			}
			catalog[i] = b
		}
	})
}

// cornersOf collects the squares orthogonally or diagonally adjacent to
// the form but not inside it, ordered row-major.
func cornersOf(form []Square) []Square {
	in := make(map[Square]bool, len(form))
	for _, sq := range form {
		in[sq] = true
	}
	seen := make(map[Square]bool)
	var corners []Square
	for _, sq := range form {
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				if dx == 0 && dy == 0 {
					continue
				}
				n := Square{X: sq.X + dx, Y: sq.Y + dy}
				if in[n] || seen[n] {
					continue
				}
				seen[n] = true
				corners = append(corners, n)
			}
		}
	}
	sort.Slice(corners, func(i, j int) bool { return corners[i].Less(corners[j]) })
	return corners
}

// GetBuilding returns the catalog entry for a type. The catalog is built
// once and is read-only afterwards, safe for concurrent readers.
func GetBuilding(t BuildingType) *Building {
	initCatalog()
	return &catalog[t]
}

// MaxRotation is the highest rotation index usable for this building.
func (b *Building) MaxRotation() Rotation { return Rotation(b.Turnable) }

// Size is the number of squares the building occupies.
func (b *Building) Size() int { return len(b.forms[0]) }

// Form returns the rotated form translated to pos.
func (b *Building) Form(r Rotation, pos Square) []Square {
	return translate(b.forms[r], pos)
}

// Corners returns the rotated corner set translated to pos.
func (b *Building) Corners(r Rotation, pos Square) []Square {
	return translate(b.corners[r], pos)
}

func translate(squares []Square, pos Square) []Square {
	out := make([]Square, len(squares))
	for i, sq := range squares {
		out[i] = sq.Add(pos)
	}
	return out
}
