// Package reveal turns a finished seating into timed reveal frames and
// plays them back with pause, resume and stop support.
package reveal

import (
	"errors"
	"time"

	"github.com/iliyamo/classroom-seating/internal/model"
	"github.com/iliyamo/classroom-seating/internal/seating"
)

// Mode picks how a sequence is built.
type Mode string

const (
	// ModeLottery shows decoy names before settling on each occupant.
	ModeLottery Mode = "lottery"
	// ModeDirect reveals one occupant per step at a steady cadence.
	ModeDirect Mode = "direct"
)

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool { return m == ModeLottery || m == ModeDirect }

// TrailingBuffer keeps the last frame visible after it is shown.
const TrailingBuffer = 1000 * time.Millisecond

var ErrUnknownMode = errors.New("unknown reveal mode")

// Config tunes sequence timing.
type Config struct {
	Speed             time.Duration // time spent on one seat
	ShuffleCount      int           // decoys per seat in lottery mode
	PauseBetweenSeats time.Duration
	SpeedMultiplier   float64 // effective speed = Speed / SpeedMultiplier
}

// DefaultConfig mirrors the REVEAL_* environment defaults.
func DefaultConfig() Config {
	return Config{
		Speed:             1000 * time.Millisecond,
		ShuffleCount:      5,
		PauseBetweenSeats: 200 * time.Millisecond,
		SpeedMultiplier:   1,
	}
}

// normalize clamps cfg so every frame lands strictly after the previous
// one: speed is at least one millisecond per decoy and seats are at
// least one millisecond apart.
func (cfg Config) normalize() Config {
	def := DefaultConfig()
	if cfg.Speed <= 0 {
		cfg.Speed = def.Speed
	}
	if cfg.SpeedMultiplier <= 0 {
		cfg.SpeedMultiplier = 1
	}
	if cfg.ShuffleCount < 0 {
		cfg.ShuffleCount = 0
	}
	cfg.Speed = time.Duration(float64(cfg.Speed) / cfg.SpeedMultiplier)
	if floor := time.Duration(max(cfg.ShuffleCount, 1)) * time.Millisecond; cfg.Speed < floor {
		cfg.Speed = floor
	}
	if cfg.PauseBetweenSeats < time.Millisecond {
		cfg.PauseBetweenSeats = time.Millisecond
	}
	return cfg
}

// Frame is one reveal step.  Delay is measured from sequence start.
type Frame struct {
	Index       int           `json:"index"`
	SeatID      string        `json:"seat_id"`
	StudentID   string        `json:"student_id"`
	StudentName string        `json:"student_name"`
	Delay       time.Duration `json:"-"`
	DelayMS     int64         `json:"delay_ms"`
	IsFinal     bool          `json:"is_final"`
}

// Sequence is an ordered frame list with its expected running time.
type Sequence struct {
	Mode    Mode          `json:"mode"`
	Frames  []Frame       `json:"frames"`
	Total   time.Duration `json:"-"`
	TotalMS int64         `json:"total_ms"`
}

type builder struct {
	frames []Frame
}

func (b *builder) add(seatID string, st model.Student, at time.Duration, final bool) {
	b.frames = append(b.frames, Frame{
		Index:       len(b.frames),
		SeatID:      seatID,
		StudentID:   st.ID,
		StudentName: st.Name,
		Delay:       at,
		DelayMS:     at.Milliseconds(),
		IsFinal:     final,
	})
}

// Build lays out frames for assignments, visiting seats row by row and
// left to right.  Assignments pointing at unknown seats or students are
// left out.  Decoys are drawn from the roster excluding the occupant.
func Build(mode Mode, cfg Config, assignments []model.SeatAssignment, students []model.Student, seats []model.Seat, sh *seating.Shuffler) (Sequence, error) {
	if !mode.Valid() {
		return Sequence{}, ErrUnknownMode
	}
	cfg = cfg.normalize()
	if sh == nil {
		sh = seating.NewShuffler(nil)
	}

	byID := make(map[string]model.Student, len(students))
	for _, s := range students {
		byID[s.ID] = s
	}
	occupant := make(map[string]model.Student, len(assignments))
	for _, a := range assignments {
		if st, ok := byID[a.StudentID]; ok {
			occupant[a.SeatID] = st
		}
	}

	b := &builder{}
	var offset time.Duration
	for _, seat := range seating.RowMajor(seats) {
		st, ok := occupant[seat.ID]
		if !ok {
			continue
		}
		switch mode {
		case ModeLottery:
			decoys := others(students, st.ID)
			if cfg.ShuffleCount > 0 && len(decoys) > 0 {
				interval := cfg.Speed / time.Duration(cfg.ShuffleCount)
				for k := 0; k < cfg.ShuffleCount; k++ {
					b.add(seat.ID, decoys[sh.IntN(len(decoys))], offset+time.Duration(k)*interval, false)
				}
				offset += cfg.Speed
			}
			b.add(seat.ID, st, offset, true)
			offset += cfg.PauseBetweenSeats
		case ModeDirect:
			b.add(seat.ID, st, offset, true)
			offset += cfg.Speed
		}
	}

	seq := Sequence{Mode: mode, Frames: b.frames}
	if seq.Frames == nil {
		seq.Frames = []Frame{}
	}
	if n := len(seq.Frames); n > 0 {
		seq.Total = seq.Frames[n-1].Delay + TrailingBuffer
		seq.TotalMS = seq.Total.Milliseconds()
	}
	return seq, nil
}

func others(students []model.Student, except string) []model.Student {
	out := make([]model.Student, 0, len(students))
	for _, s := range students {
		if s.ID != except {
			out = append(out, s)
		}
	}
	return out
}
