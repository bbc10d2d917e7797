package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Collection names used by the services.
const (
	CollectionStudents = "students"
	CollectionGrids    = "grids"
	CollectionGroups   = "groups"
	CollectionRecords  = "seating_records"
)

// Entity is implemented by every stored model.  The store assigns ids
// and timestamps; a zero created time means "keep the existing one".
type Entity interface {
	GetID() string
	SetID(id string)
	SetTimestamps(created, updated time.Time)
}

// Store is the typed CRUD surface the services depend on.
type Store[P Entity] interface {
	Insert(ctx context.Context, e P) (P, error)
	FindAll(ctx context.Context) ([]P, error)
	FindByID(ctx context.Context, id string) (P, error)
	FindWhere(ctx context.Context, match func(P) bool) ([]P, error)
	Update(ctx context.Context, id string, apply func(P)) (bool, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// Backend persists opaque documents keyed by collection and id.  List
// returns documents in insertion order.
type Backend interface {
	Put(ctx context.Context, collection, id string, body []byte) error
	Replace(ctx context.Context, collection, id string, body []byte) (bool, error)
	Get(ctx context.Context, collection, id string) ([]byte, error)
	List(ctx context.Context, collection string) ([][]byte, error)
	Delete(ctx context.Context, collection, id string) (bool, error)
}

// Collection implements Store for one entity type over a Backend using
// JSON documents.
type Collection[T any, P interface {
	*T
	Entity
}] struct {
	name    string
	backend Backend
	now     func() time.Time
	newID   func() string
}

// NewCollection binds the named collection of backend to type T.
func NewCollection[T any, P interface {
	*T
	Entity
}](name string, backend Backend) *Collection[T, P] {
	return &Collection[T, P]{
		name:    name,
		backend: backend,
		now:     func() time.Time { return time.Now().UTC() },
		newID:   uuid.NewString,
	}
}

// Name returns the collection name.
func (c *Collection[T, P]) Name() string { return c.name }

func (c *Collection[T, P]) decode(body []byte) (P, error) {
	e := P(new(T))
	if err := json.Unmarshal(body, e); err != nil {
		return nil, fmt.Errorf("decode %s document: %w", c.name, err)
	}
	return e, nil
}

// Insert assigns an id (unless one is set) and timestamps, then stores e.
func (c *Collection[T, P]) Insert(ctx context.Context, e P) (P, error) {
	if e.GetID() == "" {
		e.SetID(c.newID())
	}
	now := c.now()
	e.SetTimestamps(now, now)
	body, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("encode %s document: %w", c.name, err)
	}
	if err := c.backend.Put(ctx, c.name, e.GetID(), body); err != nil {
		return nil, err
	}
	return e, nil
}

// FindAll returns every document in insertion order.
func (c *Collection[T, P]) FindAll(ctx context.Context) ([]P, error) {
	return c.FindWhere(ctx, nil)
}

// FindByID returns ErrNotFound when id is unknown.
func (c *Collection[T, P]) FindByID(ctx context.Context, id string) (P, error) {
	body, err := c.backend.Get(ctx, c.name, id)
	if err != nil {
		return nil, err
	}
	return c.decode(body)
}

// FindWhere returns the documents for which match is true.  A nil match
// selects everything.
func (c *Collection[T, P]) FindWhere(ctx context.Context, match func(P) bool) ([]P, error) {
	bodies, err := c.backend.List(ctx, c.name)
	if err != nil {
		return nil, err
	}
	out := make([]P, 0, len(bodies))
	for _, b := range bodies {
		e, err := c.decode(b)
		if err != nil {
			return nil, err
		}
		if match == nil || match(e) {
			out = append(out, e)
		}
	}
	return out, nil
}

// Update loads the document, applies the change and writes it back.  It
// reports false when id is unknown.  apply cannot change the id.
func (c *Collection[T, P]) Update(ctx context.Context, id string, apply func(P)) (bool, error) {
	e, err := c.FindByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	apply(e)
	e.SetID(id)
	e.SetTimestamps(time.Time{}, c.now())
	body, err := json.Marshal(e)
	if err != nil {
		return false, fmt.Errorf("encode %s document: %w", c.name, err)
	}
	return c.backend.Replace(ctx, c.name, id, body)
}

// Delete removes the document and reports whether it existed.
func (c *Collection[T, P]) Delete(ctx context.Context, id string) (bool, error) {
	return c.backend.Delete(ctx, c.name, id)
}
