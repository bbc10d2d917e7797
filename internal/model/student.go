package model

import "time"

// Gender of a student as used by the gender constraint policies.
type Gender string

const (
	Male   Gender = "male"
	Female Gender = "female"
)

// Valid reports whether g is male or female.
func (g Gender) Valid() bool { return g == Male || g == Female }

// Student is a roster entry.  Names are unique across the roster.
//
// Fields:
//  ID              – record id assigned by the store.
//  Name            – display name, unique, at most 50 characters.
//  Gender          – male or female.
//  ClassName       – optional class label.
//  SpecialNeeds    – placed before everyone else during random fill.
//  PreferredSeatID – seat a special-needs student should get if free.
//  GroupID         – desk-mate group the student belongs to, if any.
//  Notes           – free text.
type Student struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Gender          Gender    `json:"gender"`
	ClassName       string    `json:"class_name,omitempty"`
	SpecialNeeds    bool      `json:"special_needs"`
	PreferredSeatID string    `json:"preferred_seat_id,omitempty"`
	GroupID         string    `json:"group_id,omitempty"`
	Notes           string    `json:"notes,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (s *Student) GetID() string   { return s.ID }
func (s *Student) SetID(id string) { s.ID = id }
func (s *Student) SetTimestamps(created, updated time.Time) {
	if !created.IsZero() {
		s.CreatedAt = created
	}
	s.UpdatedAt = updated
}
