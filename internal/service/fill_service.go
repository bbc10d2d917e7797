package service

import (
	"context"
	"errors"
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/classroom-seating/internal/metrics"
	"github.com/iliyamo/classroom-seating/internal/model"
	"github.com/iliyamo/classroom-seating/internal/queue"
	"github.com/iliyamo/classroom-seating/internal/repository"
	"github.com/iliyamo/classroom-seating/internal/seating"
)

// EventPublisher delivers seating events.  *queue.Publisher satisfies
// it; a nil publisher disables events.
type EventPublisher interface {
	PublishSeatingFilled(ctx context.Context, ev queue.SeatingFilledEvent) error
}

// FillRequest selects what a fill works on.  Empty StudentIDs means the
// whole roster; empty GroupIDs with UseGroups means every group usable
// with the layout.  An empty Strategy is random, or mixed when Fixed is
// set.
type FillRequest struct {
	Strategy   model.FillStrategy
	Policy     model.ConstraintPolicy
	Fixed      []model.SeatAssignment
	UseGroups  bool
	GroupIDs   []string
	StudentIDs []string
}

// FillReport is returned to the caller after a fill is stored.
type FillReport struct {
	Record               *model.SeatingRecord `json:"record"`
	Valid                bool                 `json:"valid"`
	Warnings             []string             `json:"warnings"`
	UnassignedStudentIDs []string             `json:"unassigned_student_ids"`
	EmptySeatCount       int                  `json:"empty_seat_count"`
	Violations           []model.Violation    `json:"violations"`
	GroupCheck           *seating.GroupCheck  `json:"group_check,omitempty"`
}

// PolicyAdvice answers "which gender rule can this roster satisfy on
// this layout".
type PolicyAdvice struct {
	Recommended model.ConstraintPolicy          `json:"recommended"`
	Feasible    map[model.ConstraintPolicy]bool `json:"feasible"`
	Stats       GenderStats                     `json:"stats"`
}

// FillService runs the fill orchestrator and keeps the seating history.
type FillService struct {
	grids    repository.Store[*model.Grid]
	students repository.Store[*model.Student]
	groups   repository.Store[*model.DeskMateGroup]
	records  repository.Store[*model.SeatingRecord]
	cache    *repository.RecordCache
	events   EventPublisher
	metrics  *metrics.Metrics
	filler   *seating.Filler
	log      *zap.Logger
	now      func() time.Time
}

// FillDeps bundles the collaborators of FillService.  Cache, Events and
// Metrics may be nil.
type FillDeps struct {
	Grids    repository.Store[*model.Grid]
	Students repository.Store[*model.Student]
	Groups   repository.Store[*model.DeskMateGroup]
	Records  repository.Store[*model.SeatingRecord]
	Cache    *repository.RecordCache
	Events   EventPublisher
	Metrics  *metrics.Metrics
	Shuffler *seating.Shuffler
}

func NewFillService(d FillDeps, log *zap.Logger) *FillService {
	return &FillService{
		grids:    d.Grids,
		students: d.Students,
		groups:   d.Groups,
		records:  d.Records,
		cache:    d.Cache,
		events:   d.Events,
		metrics:  d.Metrics,
		filler:   seating.NewFiller(d.Shuffler),
		log:      log.Named("fill"),
		now:      time.Now,
	}
}

func (s *FillService) grid(ctx context.Context, id string) (*model.Grid, error) {
	g, err := s.grids.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrLayoutNotFound
	}
	return g, err
}

func deref[T any](ps []*T) []T {
	out := make([]T, len(ps))
	for i, p := range ps {
		out[i] = *p
	}
	return out
}

// roster loads the students taking part in a fill.
func (s *FillService) roster(ctx context.Context, ids []string) ([]model.Student, error) {
	if len(ids) == 0 {
		all, err := s.students.FindAll(ctx)
		return deref(all), err
	}
	seen := make(map[string]struct{}, len(ids))
	out := make([]model.Student, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			return nil, invalid([]string{"student listed more than once: " + id})
		}
		seen[id] = struct{}{}
		st, err := s.students.FindByID(ctx, id)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, invalid([]string{ErrStudentNotFound.Error() + ": " + id})
		}
		if err != nil {
			return nil, err
		}
		out = append(out, *st)
	}
	return out, nil
}

func (s *FillService) groupsFor(ctx context.Context, layoutID string, ids []string) ([]model.DeskMateGroup, error) {
	if len(ids) > 0 {
		out := make([]model.DeskMateGroup, 0, len(ids))
		for _, id := range ids {
			g, err := s.groups.FindByID(ctx, id)
			if errors.Is(err, repository.ErrNotFound) {
				return nil, invalid([]string{ErrGroupNotFound.Error() + ": " + id})
			}
			if err != nil {
				return nil, err
			}
			out = append(out, *g)
		}
		return out, nil
	}
	all, err := s.groups.FindWhere(ctx, func(g *model.DeskMateGroup) bool {
		return g.LayoutID == "" || g.LayoutID == layoutID
	})
	return deref(all), err
}

func validateRequest(req *FillRequest) error {
	var errs []string
	if req.Strategy == "" {
		req.Strategy = model.StrategyRandom
		if len(req.Fixed) > 0 {
			req.Strategy = model.StrategyMixed
		}
	}
	if req.Policy == "" {
		req.Policy = model.PolicyNone
	}
	if !req.Strategy.Valid() {
		errs = append(errs, "strategy must be random, manual or mixed")
	}
	if !req.Policy.Valid() {
		errs = append(errs, "constraint policy must be none, mixed_gender or same_gender")
	}
	if req.Strategy == model.StrategyManual && len(req.Fixed) == 0 {
		errs = append(errs, "manual fill needs at least one assignment")
	}
	return invalid(errs)
}

// Fill seats the roster on layoutID, stores a new seating record and
// returns the report.  Rule violations do not abort the fill; they are
// reported and the record is stored anyway.
func (s *FillService) Fill(ctx context.Context, layoutID string, req FillRequest) (*FillReport, error) {
	start := s.now()
	if err := validateRequest(&req); err != nil {
		return nil, err
	}
	g, err := s.grid(ctx, layoutID)
	if err != nil {
		return nil, err
	}
	students, err := s.roster(ctx, req.StudentIDs)
	if err != nil {
		return nil, err
	}
	var groups []model.DeskMateGroup
	if req.UseGroups || len(req.GroupIDs) > 0 {
		if groups, err = s.groupsFor(ctx, layoutID, req.GroupIDs); err != nil {
			return nil, err
		}
	}

	res := s.filler.Fill(seating.FillInput{
		Strategy: req.Strategy,
		Seats:    g.Seats,
		Students: students,
		Fixed:    req.Fixed,
		Groups:   groups,
		Policy:   req.Policy,
	})

	violations := seating.Violations(res.Assignments, students, g.Seats, req.Policy)
	warnings := slices.Clone(res.Warnings)
	var check *seating.GroupCheck
	if len(groups) > 0 {
		gc := seating.ValidateGroupPlacement(res.Assignments, groups, g.Seats)
		check = &gc
		for _, v := range gc.Violations {
			violations = append(violations, model.Violation{Type: "group", Description: v})
		}
	}
	if req.Policy != model.PolicyNone && !seating.CanSatisfy(students, g.Seats, req.Policy) {
		warnings = append(warnings, "roster cannot fully satisfy "+string(req.Policy))
	}

	rec, err := s.records.Insert(ctx, &model.SeatingRecord{
		LayoutID:    layoutID,
		Strategy:    req.Strategy,
		Policy:      req.Policy,
		Assignments: res.Assignments,
		Warnings:    warnings,
	})
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, rec); err != nil {
		s.log.Warn("cache latest record", zap.String("layout_id", layoutID), zap.Error(err))
	}

	report := &FillReport{
		Record:               rec,
		Valid:                len(violations) == 0 && seating.ValidateAssignments(res.Assignments, students),
		Warnings:             warnings,
		UnassignedStudentIDs: nonNil(res.Unassigned),
		EmptySeatCount:       len(res.EmptySeatIDs),
		Violations:           nonNil(violations),
		GroupCheck:           check,
	}
	s.observe(report, start)
	s.publish(g, report)
	return report, nil
}

func nonNil[T any](v []T) []T {
	if v == nil {
		return []T{}
	}
	return v
}

func (s *FillService) observe(r *FillReport, start time.Time) {
	rec := r.Record
	gender, group := 0, 0
	for _, v := range r.Violations {
		if v.Type == "group" {
			group++
		} else {
			gender++
		}
	}
	s.metrics.FillObserved(string(rec.Strategy), string(rec.Policy), r.Valid,
		len(rec.Assignments), len(r.UnassignedStudentIDs), len(r.Warnings), s.now().Sub(start))
	s.metrics.ViolationsObserved("gender", gender)
	s.metrics.ViolationsObserved("group", group)

	fields := []zap.Field{
		zap.String("layout_id", rec.LayoutID),
		zap.String("record_id", rec.ID),
		zap.String("strategy", string(rec.Strategy)),
		zap.String("policy", string(rec.Policy)),
		zap.Int("seated", len(rec.Assignments)),
		zap.Int("unassigned", len(r.UnassignedStudentIDs)),
		zap.Int("violations", len(r.Violations)),
	}
	if len(r.Warnings) > 0 {
		s.log.Warn("seating filled with warnings", append(fields, zap.Strings("warnings", r.Warnings))...)
		return
	}
	s.log.Info("seating filled", fields...)
}

// publish sends the event in the background so a slow broker never
// delays the response.
func (s *FillService) publish(g *model.Grid, r *FillReport) {
	if s.events == nil {
		return
	}
	ev := queue.SeatingFilledEvent{
		RecordID:   r.Record.ID,
		LayoutID:   g.ID,
		LayoutName: g.Name,
		Strategy:   string(r.Record.Strategy),
		Policy:     string(r.Record.Policy),
		Assigned:   len(r.Record.Assignments),
		Unassigned: len(r.UnassignedStudentIDs),
		EmptySeats: r.EmptySeatCount,
		Violations: len(r.Violations),
		Warnings:   r.Warnings,
		FilledAt:   r.Record.CreatedAt.UTC().Format(time.RFC3339),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.events.PublishSeatingFilled(ctx, ev); err != nil {
			s.log.Warn("publish seating event", zap.String("record_id", ev.RecordID), zap.Error(err))
		}
	}()
}

// History lists the records of layoutID, newest first.
func (s *FillService) History(ctx context.Context, layoutID string) ([]*model.SeatingRecord, error) {
	if _, err := s.grid(ctx, layoutID); err != nil {
		return nil, err
	}
	recs, err := s.records.FindWhere(ctx, func(r *model.SeatingRecord) bool { return r.LayoutID == layoutID })
	if err != nil {
		return nil, err
	}
	slices.Reverse(recs)
	return recs, nil
}

// Latest returns the current seating of layoutID, from the cache when
// possible.
func (s *FillService) Latest(ctx context.Context, layoutID string) (*model.SeatingRecord, error) {
	if rec, ok, err := s.cache.Get(ctx, layoutID); err == nil && ok {
		return rec, nil
	} else if err != nil {
		s.log.Warn("read latest record cache", zap.String("layout_id", layoutID), zap.Error(err))
	}
	recs, err := s.History(ctx, layoutID)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, ErrRecordNotFound
	}
	if err := s.cache.Warm(ctx, recs[0]); err != nil {
		s.log.Warn("warm latest record cache", zap.String("layout_id", layoutID), zap.Error(err))
	}
	return recs[0], nil
}

// Record returns one stored record.
func (s *FillService) Record(ctx context.Context, id string) (*model.SeatingRecord, error) {
	rec, err := s.records.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrRecordNotFound
	}
	return rec, err
}

// Check re-validates the current seating of layoutID against policy
// without changing anything.  An empty policy uses the record's own.
func (s *FillService) Check(ctx context.Context, layoutID string, policy model.ConstraintPolicy) (model.ValidationResult, error) {
	if policy != "" && !policy.Valid() {
		return model.ValidationResult{}, invalid([]string{"constraint policy must be none, mixed_gender or same_gender"})
	}
	g, err := s.grid(ctx, layoutID)
	if err != nil {
		return model.ValidationResult{}, err
	}
	rec, err := s.Latest(ctx, layoutID)
	if err != nil {
		return model.ValidationResult{}, err
	}
	if policy == "" {
		policy = rec.Policy
	}
	all, err := s.students.FindAll(ctx)
	if err != nil {
		return model.ValidationResult{}, err
	}
	students := deref(all)

	var errs []string
	if !seating.ValidateAssignments(rec.Assignments, students) {
		errs = append(errs, "assignments reference unknown or repeated students")
	}
	for _, v := range seating.Violations(rec.Assignments, students, g.Seats, policy) {
		errs = append(errs, v.Description)
	}
	groups, err := s.groupsFor(ctx, layoutID, nil)
	if err != nil {
		return model.ValidationResult{}, err
	}
	gc := seating.ValidateGroupPlacement(rec.Assignments, groups, g.Seats)
	errs = append(errs, gc.Violations...)
	return model.NewValidationResult(errs, gc.Warnings), nil
}

// Policy reports which gender rules the roster can satisfy on layoutID
// and which one to use.
func (s *FillService) Policy(ctx context.Context, layoutID string) (*PolicyAdvice, error) {
	g, err := s.grid(ctx, layoutID)
	if err != nil {
		return nil, err
	}
	students, err := s.roster(ctx, nil)
	if err != nil {
		return nil, err
	}
	males, females := seating.SplitByGender(students)
	advice := &PolicyAdvice{
		Recommended: seating.RecommendPolicy(students),
		Feasible:    make(map[model.ConstraintPolicy]bool, 3),
		Stats:       GenderStats{Total: len(students), Male: len(males), Female: len(females)},
	}
	for _, p := range []model.ConstraintPolicy{model.PolicyNone, model.PolicyMixedGender, model.PolicySameGender} {
		advice.Feasible[p] = seating.CanSatisfy(students, g.Seats, p)
	}
	for _, st := range students {
		if st.SpecialNeeds {
			advice.Stats.SpecialNeeds++
		}
	}
	return advice, nil
}
