package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/iliyamo/classroom-seating/internal/model"
	"github.com/iliyamo/classroom-seating/internal/repository"
)

const (
	maxNameLen      = 50
	maxClassNameLen = 50
	maxNotesLen     = 500
)

// StudentInput is the writable part of a student.  Gender accepts the
// spellings understood by NormalizeGender.
type StudentInput struct {
	Name            string
	Gender          string
	ClassName       string
	SpecialNeeds    bool
	PreferredSeatID string
	Notes           string
}

// GenderStats summarises the roster.
type GenderStats struct {
	Total        int `json:"total"`
	Male         int `json:"male"`
	Female       int `json:"female"`
	SpecialNeeds int `json:"special_needs"`
}

// StudentService manages the roster.
type StudentService struct {
	students repository.Store[*model.Student]
	groups   repository.Store[*model.DeskMateGroup]
	log      *zap.Logger
}

func NewStudentService(students repository.Store[*model.Student], groups repository.Store[*model.DeskMateGroup], log *zap.Logger) *StudentService {
	return &StudentService{students: students, groups: groups, log: log.Named("students")}
}

// NormalizeGender maps male/female, m/f, 1/0 and 男/女 (any case, any
// whitespace) to a Gender.
func NormalizeGender(raw string) (model.Gender, bool) {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, strings.ToLower(raw))
	switch cleaned {
	case "male", "m", "1", "男":
		return model.Male, true
	case "female", "f", "0", "女":
		return model.Female, true
	}
	switch {
	case strings.Contains(cleaned, "男"):
		return model.Male, true
	case strings.Contains(cleaned, "女"):
		return model.Female, true
	}
	return "", false
}

// Validate checks in without touching the store.
func (s *StudentService) Validate(in StudentInput) model.ValidationResult {
	var errs, warnings []string
	name := strings.TrimSpace(in.Name)
	switch {
	case name == "":
		errs = append(errs, "student name is required")
	case utf8.RuneCountInString(name) > maxNameLen:
		errs = append(errs, fmt.Sprintf("student name must be at most %d characters", maxNameLen))
	}
	if strings.TrimSpace(in.Gender) == "" {
		errs = append(errs, "gender is required")
	} else if _, ok := NormalizeGender(in.Gender); !ok {
		errs = append(errs, fmt.Sprintf("invalid gender value %q", in.Gender))
	}
	if utf8.RuneCountInString(in.ClassName) > maxClassNameLen {
		warnings = append(warnings, "class name is too long")
	}
	if utf8.RuneCountInString(in.Notes) > maxNotesLen {
		warnings = append(warnings, "notes are too long")
	}
	if in.PreferredSeatID != "" && !in.SpecialNeeds {
		warnings = append(warnings, "preferred seat is only used for special-needs students")
	}
	return model.NewValidationResult(errs, warnings)
}

func (s *StudentService) nameTaken(ctx context.Context, name, exceptID string) (bool, error) {
	hits, err := s.students.FindWhere(ctx, func(st *model.Student) bool {
		return st.ID != exceptID && strings.EqualFold(st.Name, name)
	})
	if err != nil {
		return false, err
	}
	return len(hits) > 0, nil
}

// Create validates and stores a new student.  Names are unique ignoring
// case.
func (s *StudentService) Create(ctx context.Context, in StudentInput) (*model.Student, error) {
	if v := s.Validate(in); !v.IsValid {
		return nil, invalid(v.Errors)
	}
	name := strings.TrimSpace(in.Name)
	taken, err := s.nameTaken(ctx, name, "")
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateName, name)
	}
	gender, _ := NormalizeGender(in.Gender)
	st, err := s.students.Insert(ctx, &model.Student{
		Name:            name,
		Gender:          gender,
		ClassName:       strings.TrimSpace(in.ClassName),
		SpecialNeeds:    in.SpecialNeeds,
		PreferredSeatID: in.PreferredSeatID,
		Notes:           in.Notes,
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("student created", zap.String("student_id", st.ID))
	return st, nil
}

// Import creates every row it can and reports the rest.  Duplicate and
// invalid rows are skipped with a reason.
func (s *StudentService) Import(ctx context.Context, rows []StudentInput) ([]*model.Student, []string, error) {
	var created []*model.Student
	var skipped []string
	for i, in := range rows {
		st, err := s.Create(ctx, in)
		var verr *ValidationError
		switch {
		case err == nil:
			created = append(created, st)
		case errors.As(err, &verr), errors.Is(err, ErrDuplicateName):
			skipped = append(skipped, fmt.Sprintf("row %d: %v", i+1, err))
		default:
			return created, skipped, err
		}
	}
	return created, skipped, nil
}

// Update replaces the writable fields of a student.
func (s *StudentService) Update(ctx context.Context, id string, in StudentInput) (*model.Student, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	if v := s.Validate(in); !v.IsValid {
		return nil, invalid(v.Errors)
	}
	name := strings.TrimSpace(in.Name)
	taken, err := s.nameTaken(ctx, name, id)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateName, name)
	}
	gender, _ := NormalizeGender(in.Gender)
	if _, err := s.students.Update(ctx, id, func(st *model.Student) {
		st.Name = name
		st.Gender = gender
		st.ClassName = strings.TrimSpace(in.ClassName)
		st.SpecialNeeds = in.SpecialNeeds
		st.PreferredSeatID = in.PreferredSeatID
		st.Notes = in.Notes
	}); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Get returns ErrStudentNotFound for unknown ids.
func (s *StudentService) Get(ctx context.Context, id string) (*model.Student, error) {
	st, err := s.students.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrStudentNotFound
	}
	return st, err
}

// StudentFilter narrows List.  Empty fields match everything.
type StudentFilter struct {
	Gender       model.Gender
	ClassName    string
	SpecialNeeds *bool
	Query        string // case-insensitive substring of the name
}

func (f StudentFilter) match(st *model.Student) bool {
	if f.Gender != "" && st.Gender != f.Gender {
		return false
	}
	if f.ClassName != "" && st.ClassName != f.ClassName {
		return false
	}
	if f.SpecialNeeds != nil && st.SpecialNeeds != *f.SpecialNeeds {
		return false
	}
	if f.Query != "" && !strings.Contains(strings.ToLower(st.Name), strings.ToLower(f.Query)) {
		return false
	}
	return true
}

// List returns students in insertion order.
func (s *StudentService) List(ctx context.Context, f StudentFilter) ([]*model.Student, error) {
	return s.students.FindWhere(ctx, f.match)
}

// Delete removes a student and drops it from its desk-mate group.  A
// group left with fewer than two members is deleted.
func (s *StudentService) Delete(ctx context.Context, id string) error {
	ok, err := s.students.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrStudentNotFound
	}
	groups, err := s.groups.FindWhere(ctx, func(g *model.DeskMateGroup) bool { return g.Has(id) })
	if err != nil {
		return err
	}
	for _, g := range groups {
		if len(g.StudentIDs)-1 < model.MinGroupSize {
			if _, err := s.groups.Delete(ctx, g.ID); err != nil {
				return err
			}
			if err := clearGroupID(ctx, s.students, g.StudentIDs); err != nil {
				return err
			}
			s.log.Info("group dissolved after member removal", zap.String("group_id", g.ID))
			continue
		}
		if _, err := s.groups.Update(ctx, g.ID, func(g *model.DeskMateGroup) {
			g.StudentIDs = without(g.StudentIDs, id)
		}); err != nil {
			return err
		}
	}
	s.log.Info("student deleted", zap.String("student_id", id))
	return nil
}

// Stats counts the roster by gender.
func (s *StudentService) Stats(ctx context.Context) (GenderStats, error) {
	all, err := s.students.FindAll(ctx)
	if err != nil {
		return GenderStats{}, err
	}
	stats := GenderStats{Total: len(all)}
	for _, st := range all {
		switch st.Gender {
		case model.Male:
			stats.Male++
		case model.Female:
			stats.Female++
		}
		if st.SpecialNeeds {
			stats.SpecialNeeds++
		}
	}
	return stats, nil
}

func without(ids []string, drop string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != drop {
			out = append(out, id)
		}
	}
	return out
}

// clearGroupID resets the group back-reference of the given students.
// Students that no longer exist are ignored.
func clearGroupID(ctx context.Context, students repository.Store[*model.Student], ids []string) error {
	return setGroupID(ctx, students, ids, "")
}

func setGroupID(ctx context.Context, students repository.Store[*model.Student], ids []string, groupID string) error {
	for _, id := range ids {
		if _, err := students.Update(ctx, id, func(st *model.Student) { st.GroupID = groupID }); err != nil {
			return err
		}
	}
	return nil
}
