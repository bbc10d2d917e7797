package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/classroom-seating/internal/reveal"
)

func filled(t *testing.T, f *fixture, genders string, rows, cols int) *FillReport {
	t.Helper()
	f.seed(t, genders)
	g := f.grid(t, rows, cols)
	rep, err := f.fills.Fill(context.Background(), g.ID, FillRequest{})
	require.NoError(t, err)
	waitEvent(t, f)
	return rep
}

func TestRevealService_Sequence(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	rep := filled(t, f, "MFMF", 2, 2)

	seq, err := f.reveals.Sequence(ctx, rep.Record.ID, reveal.ModeDirect, reveal.Config{Speed: 10 * time.Millisecond})
	require.NoError(t, err)
	assert.Equal(t, reveal.ModeDirect, seq.Mode)
	assert.Len(t, seq.Frames, 4)

	seq, err = f.reveals.Sequence(ctx, rep.Record.ID, "", reveal.Config{})
	require.NoError(t, err)
	assert.Equal(t, reveal.ModeLottery, seq.Mode)
	assert.Len(t, seq.Frames, 4*(reveal.DefaultConfig().ShuffleCount+1))

	var verr *ValidationError
	_, err = f.reveals.Sequence(ctx, rep.Record.ID, "slow", reveal.Config{})
	assert.ErrorAs(t, err, &verr)
	_, err = f.reveals.Sequence(ctx, "missing", reveal.ModeDirect, reveal.Config{})
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestRevealService_PlaybackLifecycle(t *testing.T) {
	f := newFixture(t)
	rep := filled(t, f, "MFMF", 2, 2)
	layout := rep.Record.LayoutID

	_, err := f.reveals.State(layout)
	assert.ErrorIs(t, err, ErrNoPlayback)

	pb, err := f.reveals.Start(context.Background(), layout, RevealRequest{
		Mode:   reveal.ModeDirect,
		Config: reveal.Config{Speed: time.Hour},
	})
	require.NoError(t, err)
	assert.Equal(t, rep.Record.ID, pb.RecordID)
	assert.True(t, pb.State.IsPlaying)
	assert.Equal(t, 4, pb.State.TotalFrames)

	pb, err = f.reveals.Pause(layout)
	require.NoError(t, err)
	assert.True(t, pb.State.IsPaused)

	pb, err = f.reveals.Jump(layout, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, pb.State.CurrentIndex)
	_, err = f.reveals.Jump(layout, 9)
	assert.ErrorIs(t, err, reveal.ErrFrameOutOfRange)

	pb, err = f.reveals.Resume(layout)
	require.NoError(t, err)
	assert.False(t, pb.State.IsPaused)

	pb, err = f.reveals.Stop(layout)
	require.NoError(t, err)
	assert.False(t, pb.State.IsPlaying)
	assert.Zero(t, pb.State.CurrentIndex)

	_, err = f.reveals.Pause(layout)
	assert.ErrorIs(t, err, reveal.ErrNotPlaying)
}

func TestRevealService_StartRunsToCompletion(t *testing.T) {
	f := newFixture(t)
	rep := filled(t, f, "MF", 1, 2)

	pb, err := f.reveals.Start(context.Background(), rep.Record.LayoutID, RevealRequest{
		RecordID: rep.Record.ID,
		Mode:     reveal.ModeLottery,
		Config:   reveal.Config{Speed: 5 * time.Millisecond, ShuffleCount: 1, PauseBetweenSeats: time.Millisecond},
	})
	require.NoError(t, err)
	assert.Equal(t, reveal.ModeLottery, pb.Mode)

	require.Eventually(t, func() bool {
		st, err := f.reveals.State(rep.Record.LayoutID)
		return err == nil && !st.State.IsPlaying && len(st.Shown) == 4
	}, 5*time.Second, 5*time.Millisecond)
}

func TestRevealService_StartRejectsForeignRecord(t *testing.T) {
	f := newFixture(t)
	rep := filled(t, f, "MF", 1, 2)
	other := f.grid(t, 1, 2)

	var verr *ValidationError
	_, err := f.reveals.Start(context.Background(), other.ID, RevealRequest{RecordID: rep.Record.ID})
	assert.ErrorAs(t, err, &verr)

	_, err = f.reveals.Start(context.Background(), other.ID, RevealRequest{})
	assert.ErrorIs(t, err, ErrRecordNotFound)
}
