package service

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/iliyamo/classroom-seating/internal/metrics"
	"github.com/iliyamo/classroom-seating/internal/model"
	"github.com/iliyamo/classroom-seating/internal/repository"
	"github.com/iliyamo/classroom-seating/internal/reveal"
	"github.com/iliyamo/classroom-seating/internal/seating"
)

// RevealRequest picks the record and timing of a sequence.  An empty
// RecordID means the current seating of the layout.
type RevealRequest struct {
	RecordID string
	Mode     reveal.Mode
	Config   reveal.Config
}

// Playback is the public view of one layout's player.
type Playback struct {
	LayoutID string         `json:"layout_id"`
	RecordID string         `json:"record_id"`
	Mode     reveal.Mode    `json:"mode"`
	State    reveal.State   `json:"state"`
	Shown    []reveal.Frame `json:"shown"`
}

type playback struct {
	recordID string
	player   *reveal.Player
}

// RevealService builds reveal sequences and owns at most one running
// player per layout.
type RevealService struct {
	fills    *FillService
	grids    repository.Store[*model.Grid]
	students repository.Store[*model.Student]
	defaults reveal.Config
	sh       *seating.Shuffler
	metrics  *metrics.Metrics
	log      *zap.Logger

	mu      sync.Mutex
	players map[string]*playback
	root    context.Context
	stop    context.CancelFunc
}

func NewRevealService(fills *FillService, grids repository.Store[*model.Grid], students repository.Store[*model.Student],
	defaults reveal.Config, sh *seating.Shuffler, m *metrics.Metrics, log *zap.Logger) *RevealService {
	root, stop := context.WithCancel(context.Background())
	return &RevealService{
		fills:    fills,
		grids:    grids,
		students: students,
		defaults: defaults,
		sh:       sh,
		metrics:  m,
		log:      log.Named("reveal"),
		players:  make(map[string]*playback),
		root:     root,
		stop:     stop,
	}
}

// merge fills zero fields of cfg from the service defaults.
func (s *RevealService) merge(cfg reveal.Config) reveal.Config {
	if cfg.Speed <= 0 {
		cfg.Speed = s.defaults.Speed
	}
	if cfg.ShuffleCount <= 0 {
		cfg.ShuffleCount = s.defaults.ShuffleCount
	}
	if cfg.PauseBetweenSeats <= 0 {
		cfg.PauseBetweenSeats = s.defaults.PauseBetweenSeats
	}
	if cfg.SpeedMultiplier <= 0 {
		cfg.SpeedMultiplier = s.defaults.SpeedMultiplier
	}
	return cfg
}

// Sequence builds the frames for a stored record.
func (s *RevealService) Sequence(ctx context.Context, recordID string, mode reveal.Mode, cfg reveal.Config) (reveal.Sequence, error) {
	rec, err := s.fills.Record(ctx, recordID)
	if err != nil {
		return reveal.Sequence{}, err
	}
	return s.build(ctx, rec, mode, cfg)
}

func (s *RevealService) build(ctx context.Context, rec *model.SeatingRecord, mode reveal.Mode, cfg reveal.Config) (reveal.Sequence, error) {
	if mode == "" {
		mode = reveal.ModeLottery
	}
	if !mode.Valid() {
		return reveal.Sequence{}, invalid([]string{reveal.ErrUnknownMode.Error() + ": " + string(mode)})
	}
	g, err := s.grids.FindByID(ctx, rec.LayoutID)
	if errors.Is(err, repository.ErrNotFound) {
		return reveal.Sequence{}, ErrLayoutNotFound
	}
	if err != nil {
		return reveal.Sequence{}, err
	}
	all, err := s.students.FindAll(ctx)
	if err != nil {
		return reveal.Sequence{}, err
	}
	return reveal.Build(mode, s.merge(cfg), rec.Assignments, deref(all), g.Seats, s.sh)
}

// Start builds a sequence for layoutID and plays it, replacing any
// player already attached to the layout.
func (s *RevealService) Start(ctx context.Context, layoutID string, req RevealRequest) (*Playback, error) {
	var (
		rec *model.SeatingRecord
		err error
	)
	if req.RecordID != "" {
		rec, err = s.fills.Record(ctx, req.RecordID)
		if err == nil && rec.LayoutID != layoutID {
			err = invalid([]string{"record does not belong to this layout"})
		}
	} else {
		rec, err = s.fills.Latest(ctx, layoutID)
	}
	if err != nil {
		return nil, err
	}
	seq, err := s.build(ctx, rec, req.Mode, req.Config)
	if err != nil {
		return nil, err
	}

	log := s.log.With(zap.String("layout_id", layoutID), zap.String("record_id", rec.ID))
	p := reveal.NewPlayer(seq, func(ev reveal.Event) {
		s.metrics.PlaybackEvent(string(ev.Type))
		if ev.Type != reveal.EventProgress {
			log.Info("playback "+string(ev.Type), zap.Int("index", ev.State.CurrentIndex), zap.Int("total", ev.State.TotalFrames))
		}
	})

	pb := &playback{recordID: rec.ID, player: p}
	s.mu.Lock()
	old := s.players[layoutID]
	s.players[layoutID] = pb
	s.mu.Unlock()
	if old != nil {
		old.player.Stop()
	}

	if err := p.Start(s.root); err != nil {
		return nil, err
	}
	return s.view(layoutID, pb), nil
}

func (s *RevealService) get(layoutID string) (*playback, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pb, ok := s.players[layoutID]
	if !ok {
		return nil, ErrNoPlayback
	}
	return pb, nil
}

func (s *RevealService) view(layoutID string, pb *playback) *Playback {
	seq := pb.player.Sequence()
	return &Playback{
		LayoutID: layoutID,
		RecordID: pb.recordID,
		Mode:     seq.Mode,
		State:    pb.player.State(),
		Shown:    pb.player.FramesSoFar(),
	}
}

// State returns the playback attached to layoutID.
func (s *RevealService) State(layoutID string) (*Playback, error) {
	pb, err := s.get(layoutID)
	if err != nil {
		return nil, err
	}
	return s.view(layoutID, pb), nil
}

func (s *RevealService) control(layoutID string, op func(*reveal.Player) error) (*Playback, error) {
	pb, err := s.get(layoutID)
	if err != nil {
		return nil, err
	}
	if err := op(pb.player); err != nil {
		return nil, err
	}
	return s.view(layoutID, pb), nil
}

func (s *RevealService) Pause(layoutID string) (*Playback, error) {
	return s.control(layoutID, (*reveal.Player).Pause)
}

func (s *RevealService) Resume(layoutID string) (*Playback, error) {
	return s.control(layoutID, (*reveal.Player).Resume)
}

// Stop rewinds the player; it stays attached so it can be started again.
func (s *RevealService) Stop(layoutID string) (*Playback, error) {
	return s.control(layoutID, func(p *reveal.Player) error {
		p.Stop()
		return nil
	})
}

// Jump moves playback to frame index.
func (s *RevealService) Jump(layoutID string, index int) (*Playback, error) {
	return s.control(layoutID, func(p *reveal.Player) error { return p.Jump(index) })
}

// Shutdown stops every player.  Used on graceful shutdown.
func (s *RevealService) Shutdown() {
	s.stop()
	s.mu.Lock()
	players := make([]*reveal.Player, 0, len(s.players))
	for _, pb := range s.players {
		players = append(players, pb.player)
	}
	s.mu.Unlock()
	for _, p := range players {
		p.Stop()
		<-p.Done()
	}
}
