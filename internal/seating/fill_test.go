package seating

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/classroom-seating/internal/model"
)

func assertBijection(t *testing.T, res FillResult) {
	t.Helper()
	seats := map[string]bool{}
	students := map[string]bool{}
	for _, a := range res.Assignments {
		assert.False(t, seats[a.SeatID], "seat %s used twice", a.SeatID)
		assert.False(t, students[a.StudentID], "student %s seated twice", a.StudentID)
		seats[a.SeatID] = true
		students[a.StudentID] = true
	}
}

func TestFill_MixedGenderTwoByTwo(t *testing.T) {
	seats := Generate(2, 2, model.NumberingSequential)
	students := []model.Student{
		{ID: "A", Name: "A", Gender: model.Male},
		{ID: "B", Name: "B", Gender: model.Female},
		{ID: "C", Name: "C", Gender: model.Male},
		{ID: "D", Name: "D", Gender: model.Female},
	}
	for seed := uint64(0); seed < 50; seed++ {
		res := NewFiller(NewSeededShuffler(seed)).Fill(FillInput{
			Strategy: model.StrategyRandom,
			Seats:    seats,
			Students: students,
			Policy:   model.PolicyMixedGender,
		})
		require.Len(t, res.Assignments, 4)
		assert.True(t, CheckConstraints(res.Assignments, students, seats, model.PolicyMixedGender))
		assert.Empty(t, res.Unassigned)
		assert.Empty(t, res.EmptySeatIDs)
	}
}

func TestFill_IsAlwaysABijection(t *testing.T) {
	seats := Generate(5, 6, model.NumberingCoordinate)
	seats[4].Kind = model.SeatSpecial
	students := roster("MFMFMFMFMFMFMFMFMFMFMFMFMFMFMFMFMF")
	students[0].SpecialNeeds = true
	students[0].PreferredSeatID = "seat_0_0"
	students[1].SpecialNeeds = true
	groups := []model.DeskMateGroup{
		{Name: "g1", StudentIDs: []string{"s2", "s3", "s4"}},
		{Name: "g2", StudentIDs: []string{"s5", "s6"}},
	}

	for _, policy := range []model.ConstraintPolicy{model.PolicyNone, model.PolicyMixedGender, model.PolicySameGender} {
		for seed := uint64(0); seed < 25; seed++ {
			res := NewFiller(NewSeededShuffler(seed)).Fill(FillInput{
				Strategy: model.StrategyRandom,
				Seats:    seats,
				Students: students,
				Groups:   groups,
				Policy:   policy,
			})
			assertBijection(t, res)
			assert.True(t, ValidateAssignments(res.Assignments, students))
			assert.Len(t, res.Assignments, 29, "every normal seat is taken")
			assert.Len(t, res.Unassigned, len(students)-29)
			assert.NotEmpty(t, res.Warnings)
		}
	}
}

func TestFill_SpecialSeatsStayEmpty(t *testing.T) {
	seats := Generate(1, 3, model.NumberingCoordinate)
	seats[1].Kind = model.SeatSpecial
	res := NewFiller(NewSeededShuffler(1)).Fill(FillInput{
		Strategy: model.StrategyRandom,
		Seats:    seats,
		Students: roster("MMM"),
	})
	require.Len(t, res.Assignments, 2)
	for _, a := range res.Assignments {
		assert.NotEqual(t, "seat_0_1", a.SeatID)
	}
	assert.Len(t, res.Unassigned, 1)
}

func TestFill_SpecialNeedsGetPreferredSeat(t *testing.T) {
	seats := Generate(3, 3, model.NumberingCoordinate)
	students := roster("MFMFM")
	students[3].SpecialNeeds = true
	students[3].PreferredSeatID = "seat_2_2"

	for seed := uint64(0); seed < 10; seed++ {
		res := NewFiller(NewSeededShuffler(seed)).Fill(FillInput{
			Strategy: model.StrategyRandom,
			Seats:    seats,
			Students: students,
		})
		assert.Contains(t, res.Assignments, model.SeatAssignment{SeatID: "seat_2_2", StudentID: "s3"})
		assert.Len(t, res.EmptySeatIDs, 4)
	}
}

func TestFill_GroupsSitTogether(t *testing.T) {
	seats := Generate(2, 4, model.NumberingCoordinate)
	students := roster("MFMFMFMF")
	groups := []model.DeskMateGroup{{Name: "trio", StudentIDs: []string{"s1", "s4", "s6"}}}

	res := NewFiller(NewSeededShuffler(9)).Fill(FillInput{
		Strategy: model.StrategyRandom,
		Seats:    seats,
		Students: students,
		Groups:   groups,
	})
	require.Len(t, res.Assignments, 8)
	assert.True(t, ValidateGroupPlacement(res.Assignments, groups, seats).Valid)
}

func TestFill_Manual(t *testing.T) {
	seats := Generate(2, 2, model.NumberingCoordinate)
	students := roster("MFMF")
	res := NewFiller(NewSeededShuffler(1)).Fill(FillInput{
		Strategy: model.StrategyManual,
		Seats:    seats,
		Students: students,
		Fixed: []model.SeatAssignment{
			{SeatID: "seat_0_0", StudentID: "s0"},
			{SeatID: "seat_0_0", StudentID: "s1"},
			{SeatID: "seat_9_9", StudentID: "s2"},
			{SeatID: "seat_1_1", StudentID: "ghost"},
		},
	})
	assert.Equal(t, []model.SeatAssignment{{SeatID: "seat_0_0", StudentID: "s0"}}, res.Assignments)
	assert.ElementsMatch(t, []string{"s1", "s2", "s3"}, res.Unassigned)
	assert.Len(t, res.EmptySeatIDs, 3)
	assert.GreaterOrEqual(t, len(res.Warnings), 3)
}

func TestFill_MixedKeepsFixedAndFillsTheRest(t *testing.T) {
	seats := Generate(2, 3, model.NumberingCoordinate)
	students := roster("MFMFMF")
	fixed := []model.SeatAssignment{{SeatID: "seat_1_2", StudentID: "s0"}}

	res := NewFiller(NewSeededShuffler(3)).Fill(FillInput{
		Strategy: model.StrategyMixed,
		Seats:    seats,
		Students: students,
		Fixed:    fixed,
	})
	require.Len(t, res.Assignments, 6)
	assert.Equal(t, fixed[0], res.Assignments[0])
	assertBijection(t, res)
}

func TestFill_RandomIgnoresFixed(t *testing.T) {
	seats := Generate(1, 2, model.NumberingCoordinate)
	res := NewFiller(NewSeededShuffler(3)).Fill(FillInput{
		Strategy: model.StrategyRandom,
		Seats:    seats,
		Students: roster("MF"),
		Fixed:    []model.SeatAssignment{{SeatID: "seat_0_0", StudentID: "s0"}},
	})
	assert.Len(t, res.Assignments, 2)
	assert.Contains(t, res.Warnings[0], "ignores")
}

func TestFill_RepeatedStudentSeatedOnce(t *testing.T) {
	seats := Generate(2, 2, model.NumberingCoordinate)
	a := model.Student{ID: "a", Name: "a", Gender: model.Male}
	res := NewFiller(NewSeededShuffler(1)).Fill(FillInput{
		Strategy: model.StrategyRandom,
		Seats:    seats,
		Students: []model.Student{a, a, a},
	})
	require.Len(t, res.Assignments, 1)
	assert.Equal(t, "a", res.Assignments[0].StudentID)
	assert.Empty(t, res.Unassigned)
	assert.Len(t, res.EmptySeatIDs, 3)
	assertBijection(t, res)
}

func TestValidateAssignments(t *testing.T) {
	students := roster("MF")
	assert.True(t, ValidateAssignments([]model.SeatAssignment{{SeatID: "x", StudentID: "s0"}}, students))
	assert.False(t, ValidateAssignments([]model.SeatAssignment{{SeatID: "x", StudentID: "s0"}, {SeatID: "y", StudentID: "s0"}}, students))
	assert.False(t, ValidateAssignments([]model.SeatAssignment{{SeatID: "x", StudentID: "nobody"}}, students))
}
