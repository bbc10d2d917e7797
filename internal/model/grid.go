package model

import "time"

// NumberingMode selects how display numbers are assigned to seats.
type NumberingMode string

const (
	// NumberingSequential numbers seats column by column from the back
	// row to the front row.
	NumberingSequential NumberingMode = "sequential"
	// NumberingCoordinate leaves DisplayNumber empty; callers derive a
	// label from row and column.
	NumberingCoordinate NumberingMode = "coordinate"
)

// Grid represents one classroom seating layout.  It owns the seats
// generated for its dimensions and is referenced by students (preferred
// seat), desk-mate groups and seating records.
//
// Fields:
//  ID            – record id assigned by the store.
//  Name          – human readable label, required.
//  Rows          – number of seat rows (1..20).
//  Cols          – number of seats per row (1..20).
//  NumberingMode – sequential or coordinate.
//  Seats         – generated seats, row-major.
//  IsDefault     – at most one grid is the default.
//  CreatedAt     – creation timestamp.
//  UpdatedAt     – last update timestamp.
type Grid struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	Rows          int           `json:"rows"`
	Cols          int           `json:"cols"`
	NumberingMode NumberingMode `json:"numbering_mode"`
	Seats         []Seat        `json:"seats"`
	IsDefault     bool          `json:"is_default"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

func (g *Grid) GetID() string   { return g.ID }
func (g *Grid) SetID(id string) { g.ID = id }
func (g *Grid) SetTimestamps(created, updated time.Time) {
	if !created.IsZero() {
		g.CreatedAt = created
	}
	g.UpdatedAt = updated
}

// Capacity counts the seats that can be filled automatically.
func (g *Grid) Capacity() int {
	n := 0
	for _, s := range g.Seats {
		if s.Normal() {
			n++
		}
	}
	return n
}

// SeatByID returns the seat with the given id.
func (g *Grid) SeatByID(id string) (Seat, bool) {
	for _, s := range g.Seats {
		if s.ID == id {
			return s, true
		}
	}
	return Seat{}, false
}

// SeatAt returns the seat at (row, col).
func (g *Grid) SeatAt(row, col int) (Seat, bool) {
	for _, s := range g.Seats {
		if s.Row == row && s.Col == col {
			return s, true
		}
	}
	return Seat{}, false
}
