package model

// SeatKind distinguishes fillable seats from seats that are kept out of
// automatic placement (a broken desk, the spot next to the door, ...).
type SeatKind string

const (
	SeatNormal  SeatKind = "normal"
	SeatSpecial SeatKind = "special"
)

// Valid reports whether k is one of the known seat kinds.
func (k SeatKind) Valid() bool { return k == SeatNormal || k == SeatSpecial }

// Seat describes one desk position in a grid.  Seats are identified by
// an id derived from their row and column when the grid is generated;
// the id never changes afterwards, only Kind may be toggled.
//
// Fields:
//  ID            – stable identifier, e.g. seat_2_3.
//  Row           – zero-based row index (front row is 0).
//  Col           – zero-based column index.
//  Kind          – normal or special.
//  DisplayNumber – human-facing number in sequential numbering mode.
type Seat struct {
	ID            string   `json:"id"`
	Row           int      `json:"row"`
	Col           int      `json:"col"`
	Kind          SeatKind `json:"kind"`
	DisplayNumber string   `json:"display_number,omitempty"`
}

// Normal reports whether the seat takes part in automatic filling.
func (s Seat) Normal() bool { return s.Kind == SeatNormal }

// Position is a bare (row, col) pair.
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Position returns the seat's coordinates.
func (s Seat) Position() Position { return Position{Row: s.Row, Col: s.Col} }
