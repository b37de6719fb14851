package cathedral

// Square is an integer board coordinate. Rotated forms may extend off the
// board; OnBoard gates every actual cell access.
type Square struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type Rotation int8

const (
	Rotate0 Rotation = iota
	Rotate90
	Rotate180
	Rotate270
)

// Degrees is the client-facing angle.
func (r Rotation) Degrees() int { return int(r) * 90 }

// Quarter-turn factors for 0, 90, 180, 270 degrees.
var (
	rotDX = [MaxRotations]int{1, 0, -1, 0}
	rotDY = [MaxRotations]int{0, 1, 0, -1}
)

// Rotate turns the square about the origin.
func (s Square) Rotate(r Rotation) Square {
	return Square{
		X: s.X*rotDX[r] - s.Y*rotDY[r],
		Y: s.Y*rotDX[r] + s.X*rotDY[r],
	}
}

func (s Square) Add(o Square) Square {
	return Square{X: s.X + o.X, Y: s.Y + o.Y}
}

func (s Square) OnBoard() bool {
	return s.X >= 0 && s.X < BoardWidth && s.Y >= 0 && s.Y < BoardHeight
}

// Less orders squares row-major, y before x.
func (s Square) Less(o Square) bool {
	if s.Y == o.Y {
		return s.X < o.X
	}
	return s.Y < o.Y
}
