package model

import "time"

// ConstraintPolicy is the gender rule applied during one fill.
type ConstraintPolicy string

const (
	PolicyNone        ConstraintPolicy = "none"
	PolicyMixedGender ConstraintPolicy = "mixed_gender"
	PolicySameGender  ConstraintPolicy = "same_gender"
)

// Valid reports whether p is a known policy.  The empty policy is
// treated as none by callers.
func (p ConstraintPolicy) Valid() bool {
	switch p {
	case PolicyNone, PolicyMixedGender, PolicySameGender:
		return true
	}
	return false
}

// FillStrategy is the overall placement mode of one fill.
type FillStrategy string

const (
	StrategyRandom FillStrategy = "random"
	StrategyManual FillStrategy = "manual"
	StrategyMixed  FillStrategy = "mixed"
)

// Valid reports whether s is a known strategy.
func (s FillStrategy) Valid() bool {
	return s == StrategyRandom || s == StrategyManual || s == StrategyMixed
}

// SeatAssignment puts one student on one seat.
type SeatAssignment struct {
	SeatID    string `json:"seat_id"`
	StudentID string `json:"student_id"`
}

// SeatingRecord is the immutable result of one fill operation.  New
// fills append new records; the newest record of a grid is its current
// seating.
//
// Fields:
//  ID          – record id assigned by the store.
//  LayoutID    – grid the record belongs to.
//  Strategy    – random, manual or mixed.
//  Policy      – gender policy used for the fill.
//  Assignments – one entry per occupied seat.
//  Warnings    – non-fatal problems collected during the fill.
//  CreatedAt   – when the fill happened.
type SeatingRecord struct {
	ID          string           `json:"id"`
	LayoutID    string           `json:"layout_id"`
	Strategy    FillStrategy     `json:"strategy"`
	Policy      ConstraintPolicy `json:"constraint_policy"`
	Assignments []SeatAssignment `json:"assignments"`
	Warnings    []string         `json:"warnings,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
}

func (r *SeatingRecord) GetID() string   { return r.ID }
func (r *SeatingRecord) SetID(id string) { r.ID = id }

// SetTimestamps only records the creation time; records are never updated.
func (r *SeatingRecord) SetTimestamps(created, _ time.Time) {
	if !created.IsZero() {
		r.CreatedAt = created
	}
}

// Violation describes a row or group that breaks the active rule.
type Violation struct {
	SeatID      string `json:"seat_id"`
	Type        string `json:"type"`
	Description string `json:"description"`
}
