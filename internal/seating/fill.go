package seating

import (
	"fmt"

	"github.com/iliyamo/classroom-seating/internal/model"
)

// FillInput is everything one fill needs.  Seats is the whole grid;
// Fixed is the caller's mapping for manual and mixed strategies.
type FillInput struct {
	Strategy model.FillStrategy
	Seats    []model.Seat
	Students []model.Student
	Fixed    []model.SeatAssignment
	Groups   []model.DeskMateGroup
	Policy   model.ConstraintPolicy
}

// FillResult is the assignment set of one fill plus what was left over.
type FillResult struct {
	Assignments  []model.SeatAssignment
	Unassigned   []string // student ids without a seat
	EmptySeatIDs []string // normal seats nobody got
	Warnings     []string
}

// Filler composes the resolvers into one assignment pass.  A Filler is
// safe for concurrent use as long as its Shuffler is.
type Filler struct {
	sh *Shuffler
}

// NewFiller returns a Filler drawing randomness from sh.
func NewFiller(sh *Shuffler) *Filler {
	if sh == nil {
		sh = NewShuffler(nil)
	}
	return &Filler{sh: sh}
}

// fillState tracks the free seat pool and unplaced students while the
// phases run.  It is local to one Fill call.
type fillState struct {
	pool     []model.Seat
	placed   map[string]struct{}
	used     map[string]struct{}
	result   FillResult
	students []model.Student
}

func (st *fillState) assign(seatID, studentID string) {
	st.result.Assignments = append(st.result.Assignments, model.SeatAssignment{SeatID: seatID, StudentID: studentID})
	st.placed[studentID] = struct{}{}
	st.used[seatID] = struct{}{}
}

func (st *fillState) warn(format string, args ...any) {
	st.result.Warnings = append(st.result.Warnings, fmt.Sprintf(format, args...))
}

// dropUsed removes claimed seats from the pool, keeping order.
func (st *fillState) dropUsed() {
	st.pool = withoutSeats(st.pool, st.used)
}

func (st *fillState) unplaced(pred func(model.Student) bool) []model.Student {
	var out []model.Student
	for _, s := range st.students {
		if _, ok := st.placed[s.ID]; !ok && pred(s) {
			out = append(out, s)
		}
	}
	return out
}

// Fill runs the phases in order: fixed mapping, desk-mate groups,
// special-needs students, the gender resolver and finally a shuffled
// fill of whatever is left.  Manual fills stop after the fixed mapping.
// Special seats are never filled automatically.
func (f *Filler) Fill(in FillInput) FillResult {
	st := &fillState{
		pool:     NormalSeats(RowMajor(in.Seats)),
		placed:   make(map[string]struct{}),
		used:     make(map[string]struct{}),
		students: uniqueStudents(in.Students),
	}

	if in.Strategy == model.StrategyRandom && len(in.Fixed) > 0 {
		st.warn("random fill ignores %d fixed assignment(s)", len(in.Fixed))
	} else {
		f.placeFixed(st, in)
	}

	if in.Strategy != model.StrategyManual {
		f.placeGroups(st, in.Groups)
		f.placeSpecialNeeds(st)
		if in.Policy == model.PolicyMixedGender || in.Policy == model.PolicySameGender {
			f.placeByGender(st, in.Policy)
		}
		f.placeRest(st)
	}

	for _, s := range st.unplaced(func(model.Student) bool { return true }) {
		st.result.Unassigned = append(st.result.Unassigned, s.ID)
	}
	for _, seat := range st.pool {
		st.result.EmptySeatIDs = append(st.result.EmptySeatIDs, seat.ID)
	}
	if n := len(st.result.Unassigned); n > 0 {
		st.warn("%d student(s) could not be seated", n)
	}
	return st.result
}

// uniqueStudents keeps the first occurrence of each student id.
func uniqueStudents(in []model.Student) []model.Student {
	seen := make(map[string]struct{}, len(in))
	out := make([]model.Student, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s.ID]; ok {
			continue
		}
		seen[s.ID] = struct{}{}
		out = append(out, s)
	}
	return out
}

func (f *Filler) placeFixed(st *fillState, in FillInput) {
	seats := make(map[string]struct{}, len(in.Seats))
	for _, s := range in.Seats {
		seats[s.ID] = struct{}{}
	}
	roster := make(map[string]struct{}, len(in.Students))
	for _, s := range in.Students {
		roster[s.ID] = struct{}{}
	}
	for _, a := range in.Fixed {
		if _, ok := seats[a.SeatID]; !ok {
			st.warn("fixed assignment: seat %s is not in this grid", a.SeatID)
			continue
		}
		if _, ok := roster[a.StudentID]; !ok {
			st.warn("fixed assignment: student %s is not in the roster", a.StudentID)
			continue
		}
		if _, ok := st.used[a.SeatID]; ok {
			st.warn("fixed assignment: seat %s assigned twice, keeping the first", a.SeatID)
			continue
		}
		if _, ok := st.placed[a.StudentID]; ok {
			st.warn("fixed assignment: student %s assigned twice, keeping the first", a.StudentID)
			continue
		}
		st.assign(a.SeatID, a.StudentID)
	}
	st.dropUsed()
}

func (f *Filler) placeGroups(st *fillState, groups []model.DeskMateGroup) {
	if len(groups) == 0 {
		return
	}
	eligible := make(map[string]bool, len(st.students))
	for _, s := range st.unplaced(func(model.Student) bool { return true }) {
		eligible[s.ID] = true
	}
	gp := PlaceGroups(st.pool, groups, eligible)
	for _, a := range gp.Assignments {
		st.assign(a.SeatID, a.StudentID)
	}
	st.result.Warnings = append(st.result.Warnings, gp.Warnings...)
	st.pool = gp.Remaining
}

func (f *Filler) placeSpecialNeeds(st *fillState) {
	for _, s := range st.unplaced(func(s model.Student) bool { return s.SpecialNeeds }) {
		if len(st.pool) == 0 {
			return
		}
		idx := -1
		if s.PreferredSeatID != "" {
			for i, seat := range st.pool {
				if seat.ID == s.PreferredSeatID {
					idx = i
					break
				}
			}
		}
		if idx < 0 {
			idx = f.sh.IntN(len(st.pool))
		}
		st.assign(st.pool[idx].ID, s.ID)
		st.pool = append(st.pool[:idx:idx], st.pool[idx+1:]...)
	}
}

func (f *Filler) placeByGender(st *fillState, policy model.ConstraintPolicy) {
	ordinary := Shuffle(f.sh, st.unplaced(func(s model.Student) bool { return !s.SpecialNeeds }))
	res := ResolveGender(st.pool, ordinary, policy, f.sh)
	for _, a := range res.Assignments {
		st.assign(a.SeatID, a.StudentID)
	}
	st.result.Warnings = append(st.result.Warnings, res.Warnings...)
	st.dropUsed()
}

func (f *Filler) placeRest(st *fillState) {
	rest := Shuffle(f.sh, st.unplaced(func(model.Student) bool { return true }))
	n := min(len(rest), len(st.pool))
	for i := 0; i < n; i++ {
		st.assign(st.pool[i].ID, rest[i].ID)
	}
	st.pool = st.pool[n:]
}

// ValidateAssignments reports whether no student repeats and every
// assigned student is in the roster.
func ValidateAssignments(assignments []model.SeatAssignment, students []model.Student) bool {
	roster := make(map[string]struct{}, len(students))
	for _, s := range students {
		roster[s.ID] = struct{}{}
	}
	seen := make(map[string]struct{}, len(assignments))
	for _, a := range assignments {
		if _, ok := roster[a.StudentID]; !ok {
			return false
		}
		if _, dup := seen[a.StudentID]; dup {
			return false
		}
		seen[a.StudentID] = struct{}{}
	}
	return true
}
