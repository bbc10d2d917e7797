package seating

import (
	"fmt"

	"github.com/iliyamo/classroom-seating/internal/model"
)

// queue hands out students head-first.  It is owned by a single
// resolution call, so pools are never shared between fills.
type queue struct {
	items []model.Student
	next  int
}

func (q *queue) len() int { return len(q.items) - q.next }

func (q *queue) pop() model.Student {
	s := q.items[q.next]
	q.next++
	return s
}

// SplitByGender partitions students, preserving order.
func SplitByGender(students []model.Student) (males, females []model.Student) {
	for _, s := range students {
		switch s.Gender {
		case model.Male:
			males = append(males, s)
		case model.Female:
			females = append(females, s)
		}
	}
	return males, females
}

// Resolution is what a resolver managed to place plus what it could not.
type Resolution struct {
	Assignments []model.SeatAssignment
	Warnings    []string
}

func (r *Resolution) assign(seat model.Seat, st model.Student) {
	r.Assignments = append(r.Assignments, model.SeatAssignment{SeatID: seat.ID, StudentID: st.ID})
}

func (r *Resolution) warn(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// ResolveGender places students row by row according to policy.  Only
// normal seats are considered.  Pools are consumed in the order given,
// so callers wanting fairness shuffle the roster first.  Rows that
// cannot satisfy the rule are left empty and reported as warnings.
func ResolveGender(seats []model.Seat, students []model.Student, policy model.ConstraintPolicy, sh *Shuffler) Resolution {
	males, females := SplitByGender(students)
	m := &queue{items: males}
	f := &queue{items: females}
	rows := SeatsByRow(NormalSeats(seats))

	var res Resolution
	switch policy {
	case model.PolicyMixedGender:
		if m.len() == 0 || f.len() == 0 {
			res.warn("not enough students of both genders for mixed_gender")
			return res
		}
		for _, r := range sortedKeys(rows) {
			mixedRow(&res, r, rows[r], m, f)
		}
	case model.PolicySameGender:
		for _, r := range sortedKeys(rows) {
			sameRow(&res, r, rows[r], m, f, sh)
		}
	}
	return res
}

func mixedRow(res *Resolution, r int, row []model.Seat, m, f *queue) {
	switch len(row) {
	case 0:
		return
	case 2:
		if m.len() == 0 || f.len() == 0 {
			res.warn("row %d: not enough students of both genders", r+1)
			return
		}
		res.assign(row[0], m.pop())
		res.assign(row[1], f.pop())
	case 3:
		if m.len() == 0 || f.len() == 0 {
			res.warn("row %d: not enough students for mixed_gender", r+1)
			return
		}
		res.assign(row[0], m.pop())
		res.assign(row[1], f.pop())
		// third seat goes to the larger pool, male on a tie
		if m.len() >= f.len() && m.len() > 0 {
			res.assign(row[2], m.pop())
		} else if f.len() > 0 {
			res.assign(row[2], f.pop())
		}
	default:
		limit := min(len(row), m.len()+f.len())
		for i := 0; i < limit; i++ {
			switch {
			case i%2 == 0 && m.len() > 0:
				res.assign(row[i], m.pop())
			case f.len() > 0:
				res.assign(row[i], f.pop())
			default:
				res.assign(row[i], m.pop())
			}
		}
	}
}

// sameRow never falls back to the other pool; a row stays partially
// empty rather than mixing genders.
func sameRow(res *Resolution, r int, row []model.Seat, m, f *queue, sh *Shuffler) {
	if len(row) == 0 {
		return
	}
	pool, gender := f, model.Female
	if sh.Coin() {
		pool, gender = m, model.Male
	}
	count := min(len(row), pool.len())
	for i := 0; i < count; i++ {
		res.assign(row[i], pool.pop())
	}
	if count < len(row) {
		res.warn("row %d: only %d of %d seats filled with %s students", r+1, count, len(row), gender)
	}
}

// Violations re-derives per-row gender counts from a finished
// assignment set and lists the rows that break policy.  It does not
// mutate its inputs, so repeated calls give identical results.
func Violations(assignments []model.SeatAssignment, students []model.Student, seats []model.Seat, policy model.ConstraintPolicy) []model.Violation {
	violations := []model.Violation{}
	if policy != model.PolicyMixedGender && policy != model.PolicySameGender {
		return violations
	}
	byID := make(map[string]model.Student, len(students))
	for _, s := range students {
		byID[s.ID] = s
	}
	occupant := make(map[string]string, len(assignments))
	for _, a := range assignments {
		occupant[a.SeatID] = a.StudentID
	}

	rows := SeatsByRow(NormalSeats(seats))
	for _, r := range sortedKeys(rows) {
		row := rows[r]
		if len(row) < 2 {
			continue
		}
		males, females := 0, 0
		for _, seat := range row {
			st, ok := byID[occupant[seat.ID]]
			if !ok {
				continue
			}
			if st.Gender == model.Male {
				males++
			} else if st.Gender == model.Female {
				females++
			}
		}
		v := model.Violation{SeatID: row[0].ID, Type: string(policy)}
		switch policy {
		case model.PolicyMixedGender:
			if len(row) == 2 && (males != 1 || females != 1) {
				v.Description = fmt.Sprintf("row %d: should have 1 male and 1 female, but has %d males and %d females", r+1, males, females)
			} else if len(row) == 3 && (males == 0 || females == 0) {
				v.Description = fmt.Sprintf("row %d: should have at least 1 male and 1 female", r+1)
			}
		case model.PolicySameGender:
			if males > 0 && females > 0 {
				v.Description = fmt.Sprintf("row %d: all students should be the same gender", r+1)
			}
		}
		if v.Description != "" {
			violations = append(violations, v)
		}
	}
	return violations
}

// CheckConstraints reports whether assignments satisfy policy.
func CheckConstraints(assignments []model.SeatAssignment, students []model.Student, seats []model.Seat, policy model.ConstraintPolicy) bool {
	return len(Violations(assignments, students, seats, policy)) == 0
}

// CanSatisfy is a cheap feasibility precheck run before a fill.
func CanSatisfy(students []model.Student, seats []model.Seat, policy model.ConstraintPolicy) bool {
	males, females := SplitByGender(students)
	switch policy {
	case model.PolicyMixedGender:
		return len(males) > 0 && len(females) > 0
	case model.PolicySameGender:
		valid := len(NormalSeats(seats))
		return float64(max(len(males), len(females))) >= float64(valid)/2
	}
	return true
}

// RecommendPolicy suggests mixed_gender for a roster whose male share is
// within [0.4, 0.6] and no gender rule otherwise.
func RecommendPolicy(students []model.Student) model.ConstraintPolicy {
	if len(students) == 0 {
		return model.PolicyNone
	}
	males, _ := SplitByGender(students)
	ratio := float64(len(males)) / float64(len(students))
	if ratio >= 0.4 && ratio <= 0.6 {
		return model.PolicyMixedGender
	}
	return model.PolicyNone
}
