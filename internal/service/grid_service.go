package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/iliyamo/classroom-seating/internal/model"
	"github.com/iliyamo/classroom-seating/internal/repository"
	"github.com/iliyamo/classroom-seating/internal/seating"
)

// GridInput describes a layout to create or update.
type GridInput struct {
	Name          string
	Rows          int
	Cols          int
	NumberingMode model.NumberingMode
	IsDefault     bool
}

// Layout is a grid arranged for display: one slice of seats per row.
type Layout struct {
	Grid     *model.Grid    `json:"grid"`
	Rows     [][]model.Seat `json:"rows"`
	Capacity int            `json:"capacity"`
}

// GridService manages seating layouts.
type GridService struct {
	grids repository.Store[*model.Grid]
	cache *repository.RecordCache
	log   *zap.Logger
}

func NewGridService(grids repository.Store[*model.Grid], cache *repository.RecordCache, log *zap.Logger) *GridService {
	return &GridService{grids: grids, cache: cache, log: log.Named("grids")}
}

// Validate checks in without touching the store.
func (s *GridService) Validate(in GridInput) model.ValidationResult {
	var errs []string
	if strings.TrimSpace(in.Name) == "" {
		errs = append(errs, "layout name is required")
	}
	errs = append(errs, seating.ValidateDimensions(in.Rows, in.Cols)...)
	if in.NumberingMode != "" && in.NumberingMode != model.NumberingSequential && in.NumberingMode != model.NumberingCoordinate {
		errs = append(errs, "numbering mode must be sequential or coordinate")
	}
	return model.NewValidationResult(errs, nil)
}

func numbering(m model.NumberingMode) model.NumberingMode {
	if m == "" {
		return model.NumberingSequential
	}
	return m
}

// Create generates the seats and stores the grid.  The first grid
// becomes the default.
func (s *GridService) Create(ctx context.Context, in GridInput) (*model.Grid, error) {
	if v := s.Validate(in); !v.IsValid {
		return nil, invalid(v.Errors)
	}
	existing, err := s.grids.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	mode := numbering(in.NumberingMode)
	g, err := s.grids.Insert(ctx, &model.Grid{
		Name:          strings.TrimSpace(in.Name),
		Rows:          in.Rows,
		Cols:          in.Cols,
		NumberingMode: mode,
		Seats:         seating.Generate(in.Rows, in.Cols, mode),
	})
	if err != nil {
		return nil, err
	}
	if in.IsDefault || len(existing) == 0 {
		if err := s.SetDefault(ctx, g.ID); err != nil {
			return nil, err
		}
		g.IsDefault = true
	}
	s.log.Info("layout created", zap.String("layout_id", g.ID), zap.Int("rows", g.Rows), zap.Int("cols", g.Cols))
	return g, nil
}

// Get returns ErrLayoutNotFound for unknown ids.
func (s *GridService) Get(ctx context.Context, id string) (*model.Grid, error) {
	g, err := s.grids.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrLayoutNotFound
	}
	return g, err
}

func (s *GridService) List(ctx context.Context) ([]*model.Grid, error) {
	return s.grids.FindAll(ctx)
}

// Update renames the grid and regenerates its seats when the dimensions
// or numbering change.  Seat kinds survive for positions that still
// exist, since seat ids depend only on position.
func (s *GridService) Update(ctx context.Context, id string, in GridInput) (*model.Grid, error) {
	g, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if v := s.Validate(in); !v.IsValid {
		return nil, invalid(v.Errors)
	}
	mode := numbering(in.NumberingMode)
	regenerate := g.Rows != in.Rows || g.Cols != in.Cols || g.NumberingMode != mode
	seats := g.Seats
	if regenerate {
		kinds := make(map[string]model.SeatKind, len(g.Seats))
		for _, seat := range g.Seats {
			kinds[seat.ID] = seat.Kind
		}
		seats = seating.Generate(in.Rows, in.Cols, mode)
		for i := range seats {
			if k, ok := kinds[seats[i].ID]; ok {
				seats[i].Kind = k
			}
		}
	}
	if _, err := s.grids.Update(ctx, id, func(g *model.Grid) {
		g.Name = strings.TrimSpace(in.Name)
		g.Rows, g.Cols, g.NumberingMode = in.Rows, in.Cols, mode
		g.Seats = seats
	}); err != nil {
		return nil, err
	}
	if in.IsDefault && !g.IsDefault {
		if err := s.SetDefault(ctx, id); err != nil {
			return nil, err
		}
	}
	if regenerate {
		s.log.Info("layout seats regenerated", zap.String("layout_id", id), zap.Int("rows", in.Rows), zap.Int("cols", in.Cols))
	}
	return s.Get(ctx, id)
}

// Delete removes the grid.  When it was the default, the oldest
// remaining grid takes over.
func (s *GridService) Delete(ctx context.Context, id string) error {
	g, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if _, err := s.grids.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.cache.Invalidate(ctx, id); err != nil {
		s.log.Warn("cache invalidate failed", zap.String("layout_id", id), zap.Error(err))
	}
	if g.IsDefault {
		rest, err := s.grids.FindAll(ctx)
		if err != nil {
			return err
		}
		if len(rest) > 0 {
			return s.SetDefault(ctx, rest[0].ID)
		}
	}
	return nil
}

// Clone copies a grid, seat kinds included, under a new name.  The copy
// is never the default.
func (s *GridService) Clone(ctx context.Context, id, name string) (*model.Grid, error) {
	src, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = src.Name + " (copy)"
	}
	return s.grids.Insert(ctx, &model.Grid{
		Name:          name,
		Rows:          src.Rows,
		Cols:          src.Cols,
		NumberingMode: src.NumberingMode,
		Seats:         append([]model.Seat(nil), src.Seats...),
	})
}

// SetDefault makes id the only default grid.
func (s *GridService) SetDefault(ctx context.Context, id string) error {
	all, err := s.grids.FindAll(ctx)
	if err != nil {
		return err
	}
	found := false
	for _, g := range all {
		want := g.ID == id
		found = found || want
		if g.IsDefault == want {
			continue
		}
		if _, err := s.grids.Update(ctx, g.ID, func(g *model.Grid) { g.IsDefault = want }); err != nil {
			return err
		}
	}
	if !found {
		return ErrLayoutNotFound
	}
	return nil
}

// Default returns the default grid, or ErrLayoutNotFound when there are
// no grids.
func (s *GridService) Default(ctx context.Context) (*model.Grid, error) {
	hits, err := s.grids.FindWhere(ctx, func(g *model.Grid) bool { return g.IsDefault })
	if err != nil {
		return nil, err
	}
	if len(hits) == 0 {
		return nil, ErrLayoutNotFound
	}
	return hits[0], nil
}

// SetSeatKind toggles a seat between normal and special.
func (s *GridService) SetSeatKind(ctx context.Context, id, seatID string, kind model.SeatKind) (*model.Grid, error) {
	if !kind.Valid() {
		return nil, invalid([]string{"seat kind must be normal or special"})
	}
	g, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, ok := g.SeatByID(seatID); !ok {
		return nil, ErrSeatNotFound
	}
	if _, err := s.grids.Update(ctx, id, func(g *model.Grid) {
		for i := range g.Seats {
			if g.Seats[i].ID == seatID {
				g.Seats[i].Kind = kind
			}
		}
	}); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Layout groups the seats of a grid by row for display.
func (s *GridService) Layout(ctx context.Context, id string) (*Layout, error) {
	g, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	byRow := seating.SeatsByRow(g.Seats)
	rows := make([][]model.Seat, g.Rows)
	for r := range rows {
		rows[r] = byRow[r]
		if rows[r] == nil {
			rows[r] = []model.Seat{}
		}
	}
	return &Layout{Grid: g, Rows: rows, Capacity: g.Capacity()}, nil
}
