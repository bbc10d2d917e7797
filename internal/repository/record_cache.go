package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/classroom-seating/internal/model"
)

// RecordCache keeps the newest seating record of each grid in Redis so
// "current seating" reads skip the history scan.  A nil *RecordCache is
// valid and behaves as a permanent miss.
type RecordCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	prefix string
}

// NewRecordCache returns nil when rdb is nil so callers can pass the
// result around unconditionally.
func NewRecordCache(rdb *redis.Client, ttl time.Duration) *RecordCache {
	if rdb == nil {
		return nil
	}
	return &RecordCache{rdb: rdb, ttl: ttl, prefix: "seating:latest:"}
}

func (c *RecordCache) key(layoutID string) string { return c.prefix + layoutID }

// Get returns the cached record for layoutID, if any.
func (c *RecordCache) Get(ctx context.Context, layoutID string) (*model.SeatingRecord, bool, error) {
	if c == nil {
		return nil, false, nil
	}
	raw, err := c.rdb.Get(ctx, c.key(layoutID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var rec model.SeatingRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, false, err
	}
	return &rec, true, nil
}

// Set stores rec as the newest record of its grid.
func (c *RecordCache) Set(ctx context.Context, rec *model.SeatingRecord) error {
	if c == nil || rec == nil {
		return nil
	}
	raw, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, c.key(rec.LayoutID), raw, c.ttl).Err()
}

// Warm stores rec only when the grid has no cached record yet, so a
// read-through never replaces a record written by a newer fill.
func (c *RecordCache) Warm(ctx context.Context, rec *model.SeatingRecord) error {
	if c == nil || rec == nil {
		return nil
	}
	raw, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return c.rdb.SetNX(ctx, c.key(rec.LayoutID), raw, c.ttl).Err()
}

// Invalidate drops the cached record of layoutID.
func (c *RecordCache) Invalidate(ctx context.Context, layoutID string) error {
	if c == nil {
		return nil
	}
	return c.rdb.Del(ctx, c.key(layoutID)).Err()
}
