package httpserver

import (
	"errors"
	"fmt"

	"github.com/CasparQuast/AlphaCathedral/internal/cathedral"
)

var (
	// ErrUnknownClientID rejects GUI building ids outside the 1..23 table.
	ErrUnknownClientID = errors.New("unknown client building id")

	// ErrBadAngle rejects rotations that are not a quarter turn.
	ErrBadAngle = errors.New("rotation angle must be 0, 90, 180 or 270")
)

// The GUI numbers buildings 1..23: black pieces first, then white, with
// the cathedral last. Index is the BuildingType, zero marks a building
// the owner never holds.
var (
	clientBlackIDs = [cathedral.NumBuildingTypes]int{
		cathedral.BuildingTavern:       1,
		cathedral.BuildingStable:       2,
		cathedral.BuildingInn:          3,
		cathedral.BuildingBridge:       4,
		cathedral.BuildingManor:        5,
		cathedral.BuildingSquare:       6,
		cathedral.BuildingBlackAbbey:   7,
		cathedral.BuildingInfirmary:    8,
		cathedral.BuildingCastle:       9,
		cathedral.BuildingTower:        10,
		cathedral.BuildingBlackAcademy: 11,
	}
	clientWhiteIDs = [cathedral.NumBuildingTypes]int{
		cathedral.BuildingTavern:       12,
		cathedral.BuildingStable:       13,
		cathedral.BuildingInn:          14,
		cathedral.BuildingBridge:       15,
		cathedral.BuildingManor:        16,
		cathedral.BuildingSquare:       17,
		cathedral.BuildingWhiteAbbey:   18,
		cathedral.BuildingInfirmary:    19,
		cathedral.BuildingCastle:       20,
		cathedral.BuildingTower:        21,
		cathedral.BuildingWhiteAcademy: 22,
		cathedral.BuildingCathedral:    23,
	}

	clientBuildings [24]struct {
		typ   cathedral.BuildingType
		known bool
	}
)

func init() {
	for t := cathedral.BuildingType(0); t < cathedral.NumBuildingTypes; t++ {
		for _, id := range []int{clientBlackIDs[t], clientWhiteIDs[t]} {
			if id != 0 {
				clientBuildings[id].typ = t
				clientBuildings[id].known = true
			}
		}
	}
}

// ClientID maps a building held by p to its GUI id.
func ClientID(t cathedral.BuildingType, p cathedral.Player) (int, error) {
	if !t.Valid() {
		return 0, fmt.Errorf("%w: building type %d", cathedral.ErrActionOutOfRange, t)
	}
	var id int
	if p == cathedral.Black {
		id = clientBlackIDs[t]
	} else {
		id = clientWhiteIDs[t]
	}
	if id == 0 {
		return 0, fmt.Errorf("%v never holds %v", p, t)
	}
	return id, nil
}

// ClientBuilding resolves a GUI id back to the building and its owner.
// Ids above 11 are white's half of the table.
func ClientBuilding(id int) (cathedral.BuildingType, cathedral.Player, error) {
	if id < 1 || id >= len(clientBuildings) || !clientBuildings[id].known {
		return 0, cathedral.NoPlayer, fmt.Errorf("%w: %d", ErrUnknownClientID, id)
	}
	p := cathedral.Black
	if id > 11 {
		p = cathedral.White
	}
	return clientBuildings[id].typ, p, nil
}

// ActionString renders an action the way the GUI protocol spells moves:
// "clientID degrees x y".
func ActionString(action int, p cathedral.Player) (string, error) {
	m, err := cathedral.DecodeMove(action)
	if err != nil {
		return "", err
	}
	id, err := ClientID(m.Type, p)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d %d %d %d", id, m.Rotation.Degrees(), m.Pos.X, m.Pos.Y), nil
}

// ParseClientMove converts a GUI move tuple into a flat action id and
// the player implied by the building id.
func ParseClientMove(clientID, degrees, x, y int) (int, cathedral.Player, error) {
	t, p, err := ClientBuilding(clientID)
	if err != nil {
		return 0, cathedral.NoPlayer, err
	}
	if degrees < 0 || degrees > 270 || degrees%90 != 0 {
		return 0, cathedral.NoPlayer, fmt.Errorf("%w: got %d", ErrBadAngle, degrees)
	}
	m, err := cathedral.NewMove(cathedral.Square{X: x, Y: y}, t, cathedral.Rotation(degrees/90))
	if err != nil {
		return 0, cathedral.NoPlayer, err
	}
	return m.Encode(), p, nil
}
