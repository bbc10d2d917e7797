package model

import "time"

// Desk-mate group size bounds.
const (
	MinGroupSize = 2
	MaxGroupSize = 4
)

// DeskMateGroup is a set of students that must sit in one contiguous
// block of seats.  A student belongs to at most one group.
type DeskMateGroup struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	StudentIDs []string  `json:"student_ids"`
	LayoutID   string    `json:"layout_id,omitempty"` // grid the group was built for (optional)
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (g *DeskMateGroup) GetID() string   { return g.ID }
func (g *DeskMateGroup) SetID(id string) { g.ID = id }
func (g *DeskMateGroup) SetTimestamps(created, updated time.Time) {
	if !created.IsZero() {
		g.CreatedAt = created
	}
	g.UpdatedAt = updated
}

// Has reports whether studentID is a member of the group.
func (g *DeskMateGroup) Has(studentID string) bool {
	for _, id := range g.StudentIDs {
		if id == studentID {
			return true
		}
	}
	return false
}

// GroupFlavor steers how groups are recommended.
type GroupFlavor string

const (
	FlavorNone        GroupFlavor = "none"
	FlavorMixedGender GroupFlavor = "mixed_gender"
	FlavorSameGender  GroupFlavor = "same_gender"
	FlavorCustom      GroupFlavor = "custom"
)
