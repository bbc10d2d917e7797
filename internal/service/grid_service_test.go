package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/classroom-seating/internal/model"
)

func TestGridService_CreateMakesFirstGridDefault(t *testing.T) {
	ctx := context.Background()
	s := newFixture(t).grids

	_, err := s.Create(ctx, GridInput{Name: " ", Rows: 0, Cols: 3})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Errors, 2)

	a, err := s.Create(ctx, GridInput{Name: "A", Rows: 2, Cols: 3})
	require.NoError(t, err)
	assert.True(t, a.IsDefault)
	assert.Len(t, a.Seats, 6)
	assert.Equal(t, model.NumberingSequential, a.NumberingMode)

	b, err := s.Create(ctx, GridInput{Name: "B", Rows: 1, Cols: 1, IsDefault: true})
	require.NoError(t, err)
	assert.True(t, b.IsDefault)

	def, err := s.Default(ctx)
	require.NoError(t, err)
	assert.Equal(t, b.ID, def.ID)
	a, err = s.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.False(t, a.IsDefault)
}

func TestGridService_UpdateKeepsSeatKinds(t *testing.T) {
	ctx := context.Background()
	s := newFixture(t).grids
	g, err := s.Create(ctx, GridInput{Name: "A", Rows: 2, Cols: 2})
	require.NoError(t, err)

	_, err = s.SetSeatKind(ctx, g.ID, "seat_0_1", model.SeatSpecial)
	require.NoError(t, err)
	_, err = s.SetSeatKind(ctx, g.ID, "seat_9_9", model.SeatSpecial)
	assert.ErrorIs(t, err, ErrSeatNotFound)

	g, err = s.Update(ctx, g.ID, GridInput{Name: "A2", Rows: 3, Cols: 2})
	require.NoError(t, err)
	assert.Equal(t, "A2", g.Name)
	assert.Len(t, g.Seats, 6)
	seat, ok := g.SeatByID("seat_0_1")
	require.True(t, ok)
	assert.Equal(t, model.SeatSpecial, seat.Kind)
	assert.Equal(t, 5, g.Capacity())
}

func TestGridService_DeletePromotesNextDefault(t *testing.T) {
	ctx := context.Background()
	s := newFixture(t).grids
	a, err := s.Create(ctx, GridInput{Name: "A", Rows: 1, Cols: 2})
	require.NoError(t, err)
	b, err := s.Create(ctx, GridInput{Name: "B", Rows: 1, Cols: 2})
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, a.ID))
	def, err := s.Default(ctx)
	require.NoError(t, err)
	assert.Equal(t, b.ID, def.ID)

	assert.ErrorIs(t, s.Delete(ctx, a.ID), ErrLayoutNotFound)
}

func TestGridService_CloneAndLayout(t *testing.T) {
	ctx := context.Background()
	s := newFixture(t).grids
	g, err := s.Create(ctx, GridInput{Name: "Lab", Rows: 2, Cols: 3})
	require.NoError(t, err)
	_, err = s.SetSeatKind(ctx, g.ID, "seat_1_2", model.SeatSpecial)
	require.NoError(t, err)

	c, err := s.Clone(ctx, g.ID, "")
	require.NoError(t, err)
	assert.Equal(t, "Lab (copy)", c.Name)
	assert.False(t, c.IsDefault)
	assert.NotEqual(t, g.ID, c.ID)
	assert.Equal(t, 5, c.Capacity())

	l, err := s.Layout(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, l.Rows, 2)
	assert.Len(t, l.Rows[0], 3)
	assert.Equal(t, 5, l.Capacity)
}
