package seating

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/classroom-seating/internal/model"
)

func positionsOf(seats []model.Seat) []model.Position {
	out := make([]model.Position, len(seats))
	for i, s := range seats {
		out[i] = s.Position()
	}
	return out
}

func TestValidateGroupMembers(t *testing.T) {
	assert.ErrorIs(t, ValidateGroupMembers([]string{"a"}), ErrInvalidGroupSize)
	assert.ErrorIs(t, ValidateGroupMembers([]string{"a", "b", "c", "d", "e"}), ErrInvalidGroupSize)
	assert.ErrorIs(t, ValidateGroupMembers([]string{"a", "b", "a"}), ErrDuplicateMember)
	assert.NoError(t, ValidateGroupMembers([]string{"a", "b", "c"}))
}

func TestFindConsecutiveSeats_RowOfFive(t *testing.T) {
	seats := Generate(1, 5, model.NumberingCoordinate)
	block, contiguous := FindConsecutiveSeats(seats, 3)

	require.Len(t, block, 3)
	assert.True(t, contiguous)
	for i := 1; i < len(block); i++ {
		assert.Equal(t, block[i-1].Col+1, block[i].Col)
	}
	assert.True(t, AreSeatsAdjacent(positionsOf(block)))

	moved := positionsOf(block)
	moved[1].Col = 4
	assert.False(t, AreSeatsAdjacent(moved))
}

func TestFindConsecutiveSeats_SkipsGaps(t *testing.T) {
	all := Generate(1, 5, model.NumberingCoordinate)
	available := []model.Seat{all[0], all[2], all[3], all[4]}
	block, contiguous := FindConsecutiveSeats(available, 3)

	assert.True(t, contiguous)
	assert.Equal(t, []string{"seat_0_2", "seat_0_3", "seat_0_4"}, []string{block[0].ID, block[1].ID, block[2].ID})
}

func TestFindConsecutiveSeats_FallsBackToColumns(t *testing.T) {
	seats := Generate(3, 1, model.NumberingCoordinate)
	block, contiguous := FindConsecutiveSeats(seats, 2)

	assert.True(t, contiguous)
	require.Len(t, block, 2)
	assert.Equal(t, 0, block[0].Row)
	assert.Equal(t, 1, block[1].Row)
}

func TestFindConsecutiveSeats_DegradedAndShort(t *testing.T) {
	all := Generate(2, 2, model.NumberingCoordinate)
	diagonal := []model.Seat{all[0], all[3]}

	block, contiguous := FindConsecutiveSeats(diagonal, 2)
	assert.False(t, contiguous)
	assert.Len(t, block, 2)

	block, contiguous = FindConsecutiveSeats(diagonal, 3)
	assert.Nil(t, block)
	assert.False(t, contiguous)
}

func TestAreSeatsAdjacent(t *testing.T) {
	assert.True(t, AreSeatsAdjacent(nil))
	assert.True(t, AreSeatsAdjacent([]model.Position{{Row: 1, Col: 1}}))
	assert.True(t, AreSeatsAdjacent([]model.Position{{Row: 2, Col: 3}, {Row: 0, Col: 3}, {Row: 1, Col: 3}}))
	assert.False(t, AreSeatsAdjacent([]model.Position{{Row: 0, Col: 0}, {Row: 1, Col: 1}}))
	assert.False(t, AreSeatsAdjacent([]model.Position{{Row: 0, Col: 0}, {Row: 0, Col: 2}}))
}

func TestPlaceGroups_CallerOrderClaimsFirst(t *testing.T) {
	seats := Generate(1, 4, model.NumberingCoordinate)
	groups := []model.DeskMateGroup{
		{Name: "first", StudentIDs: []string{"a", "b", "c"}},
		{Name: "second", StudentIDs: []string{"d", "e"}},
	}
	eligible := map[string]bool{"a": true, "b": true, "c": true, "d": true, "e": true}

	gp := PlaceGroups(seats, groups, eligible)

	require.Len(t, gp.Assignments, 3)
	assert.Equal(t, "seat_0_0", gp.Assignments[0].SeatID)
	assert.Equal(t, "a", gp.Assignments[0].StudentID)
	require.Len(t, gp.Remaining, 1)
	assert.Equal(t, "seat_0_3", gp.Remaining[0].ID)
	require.Len(t, gp.Warnings, 1)
	assert.Contains(t, gp.Warnings[0], "second")
	assert.NotContains(t, gp.Placed, "d")
}

func TestPlaceGroups_DegradedPlacementWarns(t *testing.T) {
	all := Generate(2, 2, model.NumberingCoordinate)
	available := []model.Seat{all[0], all[3]}
	groups := []model.DeskMateGroup{{Name: "pair", StudentIDs: []string{"a", "b"}}}

	gp := PlaceGroups(available, groups, map[string]bool{"a": true, "b": true})

	assert.Len(t, gp.Assignments, 2)
	require.Len(t, gp.Warnings, 1)
	assert.Contains(t, gp.Warnings[0], "no contiguous block")
}

func TestValidateGroupPlacement(t *testing.T) {
	seats := Generate(2, 3, model.NumberingCoordinate)

	check := ValidateGroupPlacement(nil, nil, seats)
	assert.True(t, check.Valid)
	assert.Equal(t, []string{"no desk-mate groups configured"}, check.Warnings)

	groups := []model.DeskMateGroup{{Name: "trio", StudentIDs: []string{"a", "b", "c"}}}
	ok := []model.SeatAssignment{
		{SeatID: "seat_1_0", StudentID: "a"},
		{SeatID: "seat_1_1", StudentID: "b"},
		{SeatID: "seat_1_2", StudentID: "c"},
	}
	assert.True(t, ValidateGroupPlacement(ok, groups, seats).Valid)

	split := []model.SeatAssignment{
		{SeatID: "seat_1_0", StudentID: "a"},
		{SeatID: "seat_0_1", StudentID: "b"},
		{SeatID: "seat_1_2", StudentID: "c"},
	}
	check = ValidateGroupPlacement(split, groups, seats)
	assert.False(t, check.Valid)
	require.Len(t, check.Violations, 1)
	assert.Contains(t, check.Violations[0], "trio")

	check = ValidateGroupPlacement(ok[:2], groups, seats)
	assert.False(t, check.Valid)
	assert.Contains(t, check.Violations[0], "without a seat")
}

func TestRecommendGroups_Mixed(t *testing.T) {
	students := roster("MMMFFF")
	rec := RecommendGroups(students, 3, model.FlavorMixedGender, NewSeededShuffler(5))

	require.Len(t, rec.Groups, 3)
	for _, g := range rec.Groups {
		genders := gendersOf(t, pairAssignments(g), students)
		assert.Len(t, genders, 2)
		seen := map[model.Gender]bool{}
		for _, gender := range genders {
			seen[gender] = true
		}
		assert.Len(t, seen, 2, "group %s should mix genders", g.Name)
	}
	assert.Equal(t, 1.0, rec.Coverage)
	assert.Equal(t, 100, rec.Score)
}

func TestRecommendGroups_MixedFillsSurplusWithSameSexPairs(t *testing.T) {
	rec := RecommendGroups(roster("MMMMMF"), 3, model.FlavorMixedGender, NewSeededShuffler(5))
	require.Len(t, rec.Groups, 3)
	assert.Equal(t, 1.0, rec.Coverage)
}

func TestRecommendGroups_Random(t *testing.T) {
	students := roster("MFMFMFMFMF")
	for seed := uint64(0); seed < 20; seed++ {
		rec := RecommendGroups(students, 2, model.FlavorNone, NewSeededShuffler(seed))
		assert.LessOrEqual(t, len(rec.Groups), 2)
		seen := map[string]bool{}
		for _, g := range rec.Groups {
			assert.NoError(t, ValidateGroupMembers(g.StudentIDs))
			for _, id := range g.StudentIDs {
				assert.False(t, seen[id], "student %s in two groups", id)
				seen[id] = true
			}
		}
		assert.GreaterOrEqual(t, rec.Score, 60)
		assert.LessOrEqual(t, rec.Score, 90)
	}
}

func TestRecommendGroups_CustomAndTiny(t *testing.T) {
	rec := RecommendGroups(roster("MFMF"), 2, model.FlavorCustom, NewSeededShuffler(1))
	assert.Empty(t, rec.Groups)
	assert.Equal(t, 50, rec.Score)

	rec = RecommendGroups(roster("M"), 2, model.FlavorNone, NewSeededShuffler(1))
	assert.Empty(t, rec.Groups)
	assert.Equal(t, 0, rec.Score)
}

func pairAssignments(g model.DeskMateGroup) []model.SeatAssignment {
	out := make([]model.SeatAssignment, len(g.StudentIDs))
	for i, id := range g.StudentIDs {
		out[i] = model.SeatAssignment{SeatID: id, StudentID: id}
	}
	return out
}
