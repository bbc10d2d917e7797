package reveal

import (
	"context"
	"errors"
	"sync"
	"time"
)

var (
	ErrFrameOutOfRange = errors.New("frame index out of range")
	ErrNotPlaying      = errors.New("playback is not running")
)

// EventType names a playback transition.
type EventType string

const (
	EventStart    EventType = "start"
	EventProgress EventType = "progress"
	EventPause    EventType = "pause"
	EventResume   EventType = "resume"
	EventStop     EventType = "stop"
	EventComplete EventType = "complete"
)

// State is a snapshot of playback position.
type State struct {
	IsPlaying    bool    `json:"is_playing"`
	IsPaused     bool    `json:"is_paused"`
	CurrentIndex int     `json:"current_index"`
	TotalFrames  int     `json:"total_frames"`
	Progress     float64 `json:"progress_percent"`
}

// Event is delivered to the listener after every transition.  Frame is
// set for progress events only.
type Event struct {
	Type  EventType
	Frame *Frame
	State State
}

// Player emits the frames of one sequence in real time.  The playback
// goroutine blocks on a timer or on the wake channel, so pause and stop
// take effect immediately instead of at the next poll.  Resume waits
// out only what was left of the interrupted frame's delay.
type Player struct {
	mu      sync.Mutex
	seq     Sequence
	listen  func(Event)
	index   int // next frame to emit
	playing bool
	paused  bool
	gen     int // bumped on start and stop so stale loops exit

	remaining time.Duration // unfinished wait carried across a pause
	carry     bool
	waitFrom  time.Time
	waitFor   time.Duration

	wake chan struct{}
	done chan struct{}
}

// NewPlayer prepares playback of seq.  listen may be nil.
func NewPlayer(seq Sequence, listen func(Event)) *Player {
	if listen == nil {
		listen = func(Event) {}
	}
	done := make(chan struct{})
	close(done)
	return &Player{seq: seq, listen: listen, wake: make(chan struct{}, 1), done: done}
}

// Sequence returns the sequence being played.
func (p *Player) Sequence() Sequence { return p.seq }

func (p *Player) signal() {
	select {
	case p.wake <- struct{}{}:
	default:
	}
}

func (p *Player) stateLocked() State {
	total := len(p.seq.Frames)
	st := State{IsPlaying: p.playing, IsPaused: p.paused, CurrentIndex: p.index, TotalFrames: total}
	if total > 0 {
		st.Progress = float64(p.index) / float64(total) * 100
	}
	return st
}

// State reports the current position.
func (p *Player) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stateLocked()
}

// FramesSoFar returns the frames already emitted.
func (p *Player) FramesSoFar() []Frame {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Frame(nil), p.seq.Frames[:p.index]...)
}

// Done is closed when the current run completes or is stopped.
func (p *Player) Done() <-chan struct{} {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done
}

// Start begins playback from the current position, or from the first
// frame when a previous run finished.  Starting a paused player resumes
// it.  ctx cancellation acts like Stop.
func (p *Player) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.playing {
		p.mu.Unlock()
		if p.State().IsPaused {
			return p.Resume()
		}
		return nil
	}
	if p.index >= len(p.seq.Frames) {
		p.index = 0
	}
	p.gen++
	p.playing, p.paused, p.carry = true, false, false
	p.done = make(chan struct{})
	gen := p.gen
	ev := Event{Type: EventStart, State: p.stateLocked()}
	p.mu.Unlock()

	p.listen(ev)
	go p.run(ctx, gen)
	return nil
}

// Pause halts playback and keeps the unfinished part of the current wait.
func (p *Player) Pause() error {
	p.mu.Lock()
	if !p.playing {
		p.mu.Unlock()
		return ErrNotPlaying
	}
	if p.paused {
		p.mu.Unlock()
		return nil
	}
	p.paused = true
	if !p.waitFrom.IsZero() {
		p.remaining = max(p.waitFor-time.Since(p.waitFrom), 0)
		p.carry = true
		p.waitFrom = time.Time{}
	}
	ev := Event{Type: EventPause, State: p.stateLocked()}
	p.mu.Unlock()

	p.signal()
	p.listen(ev)
	return nil
}

// Resume continues a paused run.
func (p *Player) Resume() error {
	p.mu.Lock()
	if !p.playing {
		p.mu.Unlock()
		return ErrNotPlaying
	}
	if !p.paused {
		p.mu.Unlock()
		return nil
	}
	p.paused = false
	ev := Event{Type: EventResume, State: p.stateLocked()}
	p.mu.Unlock()

	p.signal()
	p.listen(ev)
	return nil
}

// Stop abandons playback and rewinds to the first frame.
func (p *Player) Stop() {
	p.mu.Lock()
	wasPlaying := p.playing
	p.gen++
	p.playing, p.paused = false, false
	p.index, p.carry, p.waitFrom = 0, false, time.Time{}
	ev := Event{Type: EventStop, State: p.stateLocked()}
	if wasPlaying {
		close(p.done)
	}
	p.mu.Unlock()

	p.signal()
	if wasPlaying {
		p.listen(ev)
	}
}

// Jump moves the position to frame i.  A running wait restarts for the
// new frame.
func (p *Player) Jump(i int) error {
	p.mu.Lock()
	if i < 0 || i >= len(p.seq.Frames) {
		p.mu.Unlock()
		return ErrFrameOutOfRange
	}
	p.index = i
	p.carry, p.waitFrom = false, time.Time{}
	ev := Event{Type: EventProgress, State: p.stateLocked()}
	p.mu.Unlock()

	p.signal()
	p.listen(ev)
	return nil
}

// gapLocked is the wait before frame i relative to frame i-1.
func (p *Player) gapLocked(i int) time.Duration {
	if i == 0 {
		return p.seq.Frames[0].Delay
	}
	return p.seq.Frames[i].Delay - p.seq.Frames[i-1].Delay
}

func (p *Player) run(ctx context.Context, gen int) {
	for {
		p.mu.Lock()
		if p.gen != gen {
			p.mu.Unlock()
			return
		}
		if p.index >= len(p.seq.Frames) {
			p.playing = false
			close(p.done)
			ev := Event{Type: EventComplete, State: p.stateLocked()}
			p.mu.Unlock()
			p.listen(ev)
			return
		}
		if p.paused {
			p.mu.Unlock()
			select {
			case <-p.wake:
			case <-ctx.Done():
				p.cancel(gen)
				return
			}
			continue
		}
		wait := p.gapLocked(p.index)
		if p.carry {
			wait, p.carry = p.remaining, false
		}
		p.waitFrom, p.waitFor = time.Now(), wait
		p.mu.Unlock()

		timer := time.NewTimer(wait)
		select {
		case <-p.wake:
			timer.Stop()
			continue
		case <-ctx.Done():
			timer.Stop()
			p.cancel(gen)
			return
		case <-timer.C:
		}

		p.mu.Lock()
		if p.gen != gen || p.paused {
			p.mu.Unlock()
			continue
		}
		p.waitFrom = time.Time{}
		frame := p.seq.Frames[p.index]
		p.index++
		ev := Event{Type: EventProgress, Frame: &frame, State: p.stateLocked()}
		p.mu.Unlock()
		p.listen(ev)
	}
}

func (p *Player) cancel(gen int) {
	p.mu.Lock()
	stale := p.gen != gen
	p.mu.Unlock()
	if !stale {
		p.Stop()
	}
}
