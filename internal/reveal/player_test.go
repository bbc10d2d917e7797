package reveal

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu     sync.Mutex
	events []EventType
}

func (r *recorder) listen(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e.Type)
}

func (r *recorder) snapshot() []EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]EventType(nil), r.events...)
}

func evenSequence(n int, step time.Duration) Sequence {
	frames := make([]Frame, n)
	for i := range frames {
		frames[i] = Frame{Index: i, SeatID: "seat", StudentID: "s", Delay: time.Duration(i+1) * step, IsFinal: true}
	}
	return Sequence{Mode: ModeDirect, Frames: frames}
}

func waitDone(t *testing.T, p *Player) {
	t.Helper()
	select {
	case <-p.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("playback did not finish")
	}
}

func TestPlayer_PlaysToCompletion(t *testing.T) {
	rec := &recorder{}
	p := NewPlayer(evenSequence(5, time.Millisecond), rec.listen)

	require.NoError(t, p.Start(context.Background()))
	waitDone(t, p)

	st := p.State()
	assert.False(t, st.IsPlaying)
	assert.Equal(t, 5, st.CurrentIndex)
	assert.Equal(t, 100.0, st.Progress)
	assert.Len(t, p.FramesSoFar(), 5)

	events := rec.snapshot()
	require.Len(t, events, 7)
	assert.Equal(t, EventStart, events[0])
	assert.Equal(t, EventComplete, events[6])
}

func TestPlayer_PauseHoldsPosition(t *testing.T) {
	p := NewPlayer(evenSequence(3, 30*time.Millisecond), nil)
	require.NoError(t, p.Start(context.Background()))
	require.NoError(t, p.Pause())

	held := p.State()
	assert.True(t, held.IsPaused)
	time.Sleep(120 * time.Millisecond)
	assert.Equal(t, held.CurrentIndex, p.State().CurrentIndex)

	require.NoError(t, p.Resume())
	waitDone(t, p)
	assert.Equal(t, 3, p.State().CurrentIndex)
}

func TestPlayer_ResumeWaitsOnlyTheRemainder(t *testing.T) {
	shown := make(chan time.Time, 1)
	p := NewPlayer(evenSequence(1, 400*time.Millisecond), func(e Event) {
		if e.Type == EventProgress {
			shown <- time.Now()
		}
	})
	require.NoError(t, p.Start(context.Background()))
	time.Sleep(250 * time.Millisecond)
	require.NoError(t, p.Pause())
	time.Sleep(150 * time.Millisecond)

	resumed := time.Now()
	require.NoError(t, p.Resume())
	waitDone(t, p)

	var at time.Time
	select {
	case at = <-shown:
	default:
		t.Fatal("frame was not shown")
	}
	gap := at.Sub(resumed)
	assert.GreaterOrEqual(t, gap, 100*time.Millisecond)
	assert.Less(t, gap, 300*time.Millisecond, "resume restarted the full wait")
}

func TestPlayer_StopRewinds(t *testing.T) {
	rec := &recorder{}
	p := NewPlayer(evenSequence(3, time.Hour), rec.listen)
	require.NoError(t, p.Start(context.Background()))
	p.Stop()
	waitDone(t, p)

	st := p.State()
	assert.False(t, st.IsPlaying)
	assert.Zero(t, st.CurrentIndex)
	assert.Equal(t, []EventType{EventStart, EventStop}, rec.snapshot())
	assert.ErrorIs(t, p.Pause(), ErrNotPlaying)
	assert.ErrorIs(t, p.Resume(), ErrNotPlaying)
}

func TestPlayer_ContextCancelStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := NewPlayer(evenSequence(3, time.Hour), nil)
	require.NoError(t, p.Start(ctx))
	cancel()
	waitDone(t, p)
	assert.False(t, p.State().IsPlaying)
}

func TestPlayer_Jump(t *testing.T) {
	p := NewPlayer(evenSequence(4, time.Millisecond), nil)
	assert.ErrorIs(t, p.Jump(4), ErrFrameOutOfRange)
	assert.ErrorIs(t, p.Jump(-1), ErrFrameOutOfRange)

	require.NoError(t, p.Jump(2))
	assert.Equal(t, 2, p.State().CurrentIndex)
	assert.Equal(t, 50.0, p.State().Progress)

	require.NoError(t, p.Start(context.Background()))
	waitDone(t, p)
	assert.Equal(t, 4, p.State().CurrentIndex)
}
