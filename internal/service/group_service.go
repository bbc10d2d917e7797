package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/iliyamo/classroom-seating/internal/model"
	"github.com/iliyamo/classroom-seating/internal/repository"
	"github.com/iliyamo/classroom-seating/internal/seating"
)

// GroupInput describes a desk-mate group to create or update.
type GroupInput struct {
	Name       string
	StudentIDs []string
	LayoutID   string
}

// GroupService manages desk-mate groups.  It keeps Student.GroupID in
// step with group membership.
type GroupService struct {
	groups   repository.Store[*model.DeskMateGroup]
	students repository.Store[*model.Student]
	sh       *seating.Shuffler
	log      *zap.Logger
}

func NewGroupService(groups repository.Store[*model.DeskMateGroup], students repository.Store[*model.Student], sh *seating.Shuffler, log *zap.Logger) *GroupService {
	return &GroupService{groups: groups, students: students, sh: sh, log: log.Named("groups")}
}

// checkMembers enforces size, uniqueness, existence and the one-group
// rule.  selfID is the group being updated, empty on create.
func (s *GroupService) checkMembers(ctx context.Context, ids []string, selfID string) error {
	if err := seating.ValidateGroupMembers(ids); err != nil {
		return invalid([]string{err.Error()})
	}
	for _, id := range ids {
		if _, err := s.students.FindByID(ctx, id); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("%w: %s", ErrStudentNotFound, id)
			}
			return err
		}
	}
	others, err := s.groups.FindWhere(ctx, func(g *model.DeskMateGroup) bool { return g.ID != selfID })
	if err != nil {
		return err
	}
	for _, g := range others {
		for _, id := range ids {
			if g.Has(id) {
				return fmt.Errorf("%w: student %s is in %q", ErrStudentInGroup, id, g.Name)
			}
		}
	}
	return nil
}

// Create stores a new group.  Construction fails fast on any broken
// invariant.
func (s *GroupService) Create(ctx context.Context, in GroupInput) (*model.DeskMateGroup, error) {
	if err := s.checkMembers(ctx, in.StudentIDs, ""); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = seating.DefaultGroupName(len(in.StudentIDs))
	}
	g, err := s.groups.Insert(ctx, &model.DeskMateGroup{
		Name:       name,
		StudentIDs: append([]string(nil), in.StudentIDs...),
		LayoutID:   in.LayoutID,
	})
	if err != nil {
		return nil, err
	}
	if err := setGroupID(ctx, s.students, g.StudentIDs, g.ID); err != nil {
		return nil, err
	}
	s.log.Info("group created", zap.String("group_id", g.ID), zap.Int("size", len(g.StudentIDs)))
	return g, nil
}

// Update replaces name, members and layout under the same invariants as
// Create.
func (s *GroupService) Update(ctx context.Context, id string, in GroupInput) (*model.DeskMateGroup, error) {
	old, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkMembers(ctx, in.StudentIDs, id); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = old.Name
	}
	if _, err := s.groups.Update(ctx, id, func(g *model.DeskMateGroup) {
		g.Name = name
		g.StudentIDs = append([]string(nil), in.StudentIDs...)
		g.LayoutID = in.LayoutID
	}); err != nil {
		return nil, err
	}
	var dropped []string
	for _, sid := range old.StudentIDs {
		if !contains(in.StudentIDs, sid) {
			dropped = append(dropped, sid)
		}
	}
	if err := clearGroupID(ctx, s.students, dropped); err != nil {
		return nil, err
	}
	if err := setGroupID(ctx, s.students, in.StudentIDs, id); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// Get returns ErrGroupNotFound for unknown ids.
func (s *GroupService) Get(ctx context.Context, id string) (*model.DeskMateGroup, error) {
	g, err := s.groups.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrGroupNotFound
	}
	return g, err
}

// List returns all groups, or only those usable with layoutID (bound to
// it or to no layout) when layoutID is set.
func (s *GroupService) List(ctx context.Context, layoutID string) ([]*model.DeskMateGroup, error) {
	return s.groups.FindWhere(ctx, func(g *model.DeskMateGroup) bool {
		return layoutID == "" || g.LayoutID == "" || g.LayoutID == layoutID
	})
}

// Delete removes the group and clears its members' back-references.
func (s *GroupService) Delete(ctx context.Context, id string) error {
	g, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if _, err := s.groups.Delete(ctx, id); err != nil {
		return err
	}
	return clearGroupID(ctx, s.students, g.StudentIDs)
}

// GroupOf returns the group of studentID, or nil when it has none.
func (s *GroupService) GroupOf(ctx context.Context, studentID string) (*model.DeskMateGroup, error) {
	hits, err := s.groups.FindWhere(ctx, func(g *model.DeskMateGroup) bool { return g.Has(studentID) })
	if err != nil || len(hits) == 0 {
		return nil, err
	}
	return hits[0], nil
}

// IsStudentInGroup reports whether studentID belongs to any group.
func (s *GroupService) IsStudentInGroup(ctx context.Context, studentID string) (bool, error) {
	g, err := s.GroupOf(ctx, studentID)
	return g != nil, err
}

// Recommend proposes groups from students that are not grouped yet.
// Nothing is stored.
func (s *GroupService) Recommend(ctx context.Context, count int, flavor model.GroupFlavor) (seating.Recommendation, error) {
	free, err := s.students.FindWhere(ctx, func(st *model.Student) bool { return st.GroupID == "" })
	if err != nil {
		return seating.Recommendation{}, err
	}
	roster := make([]model.Student, len(free))
	for i, st := range free {
		roster[i] = *st
	}
	return seating.RecommendGroups(roster, count, flavor, s.sh), nil
}
