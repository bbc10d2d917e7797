package seating

import (
	"fmt"
	"sort"

	"github.com/iliyamo/classroom-seating/internal/model"
)

// Grid bounds.
const (
	MaxRows     = 20
	MaxCols     = 20
	MaxCapacity = 400
)

// SeatID derives the stable seat identifier for (row, col).
func SeatID(row, col int) string {
	return fmt.Sprintf("seat_%d_%d", row, col)
}

// SequentialNumber numbers seats column by column, from the back row to
// the front row, zero-padded to two digits.
func SequentialNumber(row, col, rows int) string {
	return fmt.Sprintf("%02d", col*rows+(rows-1-row)+1)
}

// Generate builds rows*cols normal seats in row-major order.
func Generate(rows, cols int, mode model.NumberingMode) []model.Seat {
	if rows <= 0 || cols <= 0 {
		return []model.Seat{}
	}
	seats := make([]model.Seat, 0, rows*cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			s := model.Seat{ID: SeatID(r, c), Row: r, Col: c, Kind: model.SeatNormal}
			if mode == model.NumberingSequential {
				s.DisplayNumber = SequentialNumber(r, c, rows)
			}
			seats = append(seats, s)
		}
	}
	return seats
}

// ValidateDimensions checks grid bounds and returns every problem found.
func ValidateDimensions(rows, cols int) []string {
	var errs []string
	if rows < 1 || rows > MaxRows {
		errs = append(errs, fmt.Sprintf("rows must be between 1 and %d", MaxRows))
	}
	if cols < 1 || cols > MaxCols {
		errs = append(errs, fmt.Sprintf("columns must be between 1 and %d", MaxCols))
	}
	if rows > 0 && cols > 0 && rows*cols > MaxCapacity {
		errs = append(errs, fmt.Sprintf("total seats cannot exceed %d", MaxCapacity))
	}
	return errs
}

// SeatsByRow groups seats by row; each row is ordered by column.
func SeatsByRow(seats []model.Seat) map[int][]model.Seat {
	out := make(map[int][]model.Seat)
	for _, s := range seats {
		out[s.Row] = append(out[s.Row], s)
	}
	for _, row := range out {
		sort.Slice(row, func(i, j int) bool { return row[i].Col < row[j].Col })
	}
	return out
}

// SeatsByCol groups seats by column; each column is ordered by row.
func SeatsByCol(seats []model.Seat) map[int][]model.Seat {
	out := make(map[int][]model.Seat)
	for _, s := range seats {
		out[s.Col] = append(out[s.Col], s)
	}
	for _, col := range out {
		sort.Slice(col, func(i, j int) bool { return col[i].Row < col[j].Row })
	}
	return out
}

// sortedKeys returns the keys of a grouping in ascending order so that
// scans over rows or columns are deterministic.
func sortedKeys(m map[int][]model.Seat) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

// NormalSeats filters out special seats, preserving order.
func NormalSeats(seats []model.Seat) []model.Seat {
	out := make([]model.Seat, 0, len(seats))
	for _, s := range seats {
		if s.Normal() {
			out = append(out, s)
		}
	}
	return out
}

// RowMajor returns a copy of seats sorted by row, then column.
func RowMajor(seats []model.Seat) []model.Seat {
	out := append([]model.Seat(nil), seats...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Row != out[j].Row {
			return out[i].Row < out[j].Row
		}
		return out[i].Col < out[j].Col
	})
	return out
}
