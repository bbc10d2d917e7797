package seating

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/iliyamo/classroom-seating/internal/model"
)

var (
	// ErrInvalidGroupSize is returned for groups outside 2..4 members.
	ErrInvalidGroupSize = fmt.Errorf("desk-mate group needs %d to %d students", model.MinGroupSize, model.MaxGroupSize)
	// ErrDuplicateMember is returned when a student id repeats in a group.
	ErrDuplicateMember = errors.New("student ids in a desk-mate group must be unique")
)

// ValidateGroupMembers checks size and uniqueness of a member list.
func ValidateGroupMembers(studentIDs []string) error {
	if len(studentIDs) < model.MinGroupSize || len(studentIDs) > model.MaxGroupSize {
		return ErrInvalidGroupSize
	}
	seen := make(map[string]struct{}, len(studentIDs))
	for _, id := range studentIDs {
		if _, dup := seen[id]; dup {
			return ErrDuplicateMember
		}
		seen[id] = struct{}{}
	}
	return nil
}

// DefaultGroupName labels a group that was created without a name.
func DefaultGroupName(size int) string {
	return fmt.Sprintf("Group of %d", size)
}

// AreSeatsAdjacent reports whether positions form one straight,
// gap-free run along a row or along a column.
func AreSeatsAdjacent(positions []model.Position) bool {
	if len(positions) < 2 {
		return true
	}
	sameRow, sameCol := true, true
	for _, p := range positions[1:] {
		if p.Row != positions[0].Row {
			sameRow = false
		}
		if p.Col != positions[0].Col {
			sameCol = false
		}
	}
	var line []int
	switch {
	case sameRow:
		for _, p := range positions {
			line = append(line, p.Col)
		}
	case sameCol:
		for _, p := range positions {
			line = append(line, p.Row)
		}
	default:
		return false
	}
	sort.Ints(line)
	for i := 1; i < len(line); i++ {
		if line[i]-line[i-1] != 1 {
			return false
		}
	}
	return true
}

// FindConsecutiveSeats looks for n free seats in a straight line.  Rows
// are scanned first (front to back, left to right), then columns.  When
// no contiguous block exists it degrades to the first n seats of the
// pool and reports contiguous=false.  Fewer than n free seats yields nil.
func FindConsecutiveSeats(available []model.Seat, n int) (block []model.Seat, contiguous bool) {
	if n <= 0 || len(available) < n {
		return nil, false
	}
	byRow := SeatsByRow(available)
	for _, r := range sortedKeys(byRow) {
		if w := firstRun(byRow[r], n, func(s model.Seat) int { return s.Col }); w != nil {
			return w, true
		}
	}
	byCol := SeatsByCol(available)
	for _, c := range sortedKeys(byCol) {
		if w := firstRun(byCol[c], n, func(s model.Seat) int { return s.Row }); w != nil {
			return w, true
		}
	}
	return append([]model.Seat(nil), available[:n]...), false
}

// firstRun returns the first window of n sorted seats whose coordinate
// increases by exactly one each step.
func firstRun(line []model.Seat, n int, coord func(model.Seat) int) []model.Seat {
	for i := 0; i+n <= len(line); i++ {
		ok := true
		for k := i + 1; k < i+n; k++ {
			if coord(line[k]) != coord(line[k-1])+1 {
				ok = false
				break
			}
		}
		if ok {
			return append([]model.Seat(nil), line[i:i+n]...)
		}
	}
	return nil
}

// GroupPlacement is the outcome of placing desk-mate groups.
type GroupPlacement struct {
	Assignments []model.SeatAssignment
	Remaining   []model.Seat        // seats still free afterwards, original order
	Placed      map[string]struct{} // student ids that received a seat
	Warnings    []string
}

// PlaceGroups claims a block of seats for every group in the order
// given.  Only members listed in eligible are placed.  A group that
// cannot get enough seats is skipped and its members fall through to
// the caller's random fill.
func PlaceGroups(available []model.Seat, groups []model.DeskMateGroup, eligible map[string]bool) GroupPlacement {
	out := GroupPlacement{
		Remaining: append([]model.Seat(nil), available...),
		Placed:    make(map[string]struct{}),
	}
	for _, g := range groups {
		var members []string
		for _, id := range g.StudentIDs {
			if _, done := out.Placed[id]; eligible[id] && !done {
				members = append(members, id)
			}
		}
		if len(members) == 0 {
			out.Warnings = append(out.Warnings, fmt.Sprintf("group %q: no members available to seat", g.Name))
			continue
		}
		if len(members) < len(g.StudentIDs) {
			out.Warnings = append(out.Warnings, fmt.Sprintf("group %q: %d member(s) not in this fill", g.Name, len(g.StudentIDs)-len(members)))
		}
		block, contiguous := FindConsecutiveSeats(out.Remaining, len(members))
		if block == nil {
			out.Warnings = append(out.Warnings, fmt.Sprintf("group %q: not enough free seats for %d students, skipped", g.Name, len(members)))
			continue
		}
		if !contiguous {
			out.Warnings = append(out.Warnings, fmt.Sprintf("group %q: no contiguous block of %d seats, placed on the first free seats", g.Name, len(members)))
		}
		taken := make(map[string]struct{}, len(block))
		for i, seat := range block {
			out.Assignments = append(out.Assignments, model.SeatAssignment{SeatID: seat.ID, StudentID: members[i]})
			out.Placed[members[i]] = struct{}{}
			taken[seat.ID] = struct{}{}
		}
		out.Remaining = withoutSeats(out.Remaining, taken)
	}
	return out
}

func withoutSeats(seats []model.Seat, drop map[string]struct{}) []model.Seat {
	out := seats[:0:0]
	for _, s := range seats {
		if _, ok := drop[s.ID]; !ok {
			out = append(out, s)
		}
	}
	return out
}

// GroupCheck is the post-hoc validation report for desk-mate groups.
type GroupCheck struct {
	Valid      bool     `json:"valid"`
	Violations []string `json:"violations"`
	Warnings   []string `json:"warnings,omitempty"`
}

// ValidateGroupPlacement checks that every group in a finished
// assignment set is fully seated in a straight contiguous run.
func ValidateGroupPlacement(assignments []model.SeatAssignment, groups []model.DeskMateGroup, seats []model.Seat) GroupCheck {
	if len(groups) == 0 {
		return GroupCheck{Valid: true, Violations: []string{}, Warnings: []string{"no desk-mate groups configured"}}
	}
	pos := make(map[string]model.Position, len(seats))
	for _, s := range seats {
		pos[s.ID] = s.Position()
	}
	seatOf := make(map[string]string, len(assignments))
	for _, a := range assignments {
		seatOf[a.StudentID] = a.SeatID
	}

	violations := []string{}
	for _, g := range groups {
		missing := 0
		var positions []model.Position
		for _, id := range g.StudentIDs {
			seatID, ok := seatOf[id]
			if !ok {
				missing++
				continue
			}
			if p, ok := pos[seatID]; ok {
				positions = append(positions, p)
			}
		}
		switch {
		case missing > 0:
			violations = append(violations, fmt.Sprintf("group %q: %d student(s) without a seat", g.Name, missing))
		case len(positions) != len(g.StudentIDs):
			violations = append(violations, fmt.Sprintf("group %q: seats of some members are not in this grid", g.Name))
		case !AreSeatsAdjacent(positions):
			violations = append(violations, fmt.Sprintf("group %q: members are not seated next to each other", g.Name))
		}
	}
	return GroupCheck{Valid: len(violations) == 0, Violations: violations}
}

// Recommendation is a set of suggested (not yet stored) groups with
// quality signals.  Score and Coverage are heuristics, not guarantees.
type Recommendation struct {
	Groups   []model.DeskMateGroup `json:"groups"`
	Score    int                   `json:"score"`
	Coverage float64               `json:"coverage"`
	Flavor   model.GroupFlavor     `json:"flavor"`
}

// RecommendGroups greedily proposes up to count groups for students.
func RecommendGroups(students []model.Student, count int, flavor model.GroupFlavor, sh *Shuffler) Recommendation {
	rec := Recommendation{Groups: []model.DeskMateGroup{}, Flavor: flavor}
	if len(students) < model.MinGroupSize || count <= 0 {
		return rec
	}
	males, females := SplitByGender(students)

	var base, weight float64
	switch flavor {
	case model.FlavorMixedGender:
		m, f := Shuffle(sh, males), Shuffle(sh, females)
		pairs := min(count, len(m), len(f))
		for i := 0; i < pairs; i++ {
			rec.Groups = append(rec.Groups, suggested(fmt.Sprintf("Mixed group %d", i+1), m[i], f[i]))
		}
		m, f = m[pairs:], f[pairs:]
		for i := 0; len(rec.Groups) < count && i+1 < len(m); i += 2 {
			rec.Groups = append(rec.Groups, suggested(fmt.Sprintf("Boys group %d", i/2+1), m[i], m[i+1]))
		}
		for i := 0; len(rec.Groups) < count && i+1 < len(f); i += 2 {
			rec.Groups = append(rec.Groups, suggested(fmt.Sprintf("Girls group %d", i/2+1), f[i], f[i+1]))
		}
		base, weight = 80, 20
	case model.FlavorSameGender:
		pool := append(Shuffle(sh, males), Shuffle(sh, females)...)
		rec.Groups = sliceGroups(pool, count, sh, func(n int, first model.Student) string {
			if first.Gender == model.Male {
				return fmt.Sprintf("Boys group %d", n)
			}
			return fmt.Sprintf("Girls group %d", n)
		})
		base, weight = 75, 25
	case model.FlavorCustom:
		rec.Score = 50
		return rec
	default:
		rec.Groups = sliceGroups(Shuffle(sh, students), count, sh, func(n int, _ model.Student) string {
			return fmt.Sprintf("Random group %d", n)
		})
		base, weight = 60, 30
	}

	placed := 0
	for _, g := range rec.Groups {
		placed += len(g.StudentIDs)
	}
	coverage := float64(placed) / float64(len(students))
	rec.Coverage = math.Round(coverage*100) / 100
	rec.Score = int(math.Round(base + coverage*weight))
	return rec
}

// sliceGroups cuts pool into consecutive groups of random size 2..4.
func sliceGroups(pool []model.Student, count int, sh *Shuffler, name func(int, model.Student) string) []model.DeskMateGroup {
	var groups []model.DeskMateGroup
	for i := 0; len(groups) < count && i+1 < len(pool); {
		size := model.MinGroupSize + sh.IntN(model.MaxGroupSize-model.MinGroupSize+1)
		end := min(i+size, len(pool))
		if end-i >= model.MinGroupSize {
			groups = append(groups, suggested(name(len(groups)+1, pool[i]), pool[i:end]...))
		}
		i += size
	}
	return groups
}

func suggested(name string, members ...model.Student) model.DeskMateGroup {
	ids := make([]string, len(members))
	for i, m := range members {
		ids[i] = m.ID
	}
	return model.DeskMateGroup{Name: name, StudentIDs: ids}
}
