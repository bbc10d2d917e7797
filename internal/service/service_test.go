package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iliyamo/classroom-seating/internal/model"
	"github.com/iliyamo/classroom-seating/internal/queue"
	"github.com/iliyamo/classroom-seating/internal/repository"
	"github.com/iliyamo/classroom-seating/internal/reveal"
	"github.com/iliyamo/classroom-seating/internal/seating"
)

type fakePublisher struct {
	mu     sync.Mutex
	events []queue.SeatingFilledEvent
	sent   chan struct{}
}

func (p *fakePublisher) PublishSeatingFilled(_ context.Context, ev queue.SeatingFilledEvent) error {
	p.mu.Lock()
	p.events = append(p.events, ev)
	p.mu.Unlock()
	p.sent <- struct{}{}
	return nil
}

type fixture struct {
	students *StudentService
	grids    *GridService
	groups   *GroupService
	fills    *FillService
	reveals  *RevealService
	events   *fakePublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newCachedFixture(t, nil)
}

func newCachedFixture(t *testing.T, cache *repository.RecordCache) *fixture {
	t.Helper()
	backend := repository.NewMemoryBackend()
	students := repository.NewCollection[model.Student](repository.CollectionStudents, backend)
	grids := repository.NewCollection[model.Grid](repository.CollectionGrids, backend)
	groups := repository.NewCollection[model.DeskMateGroup](repository.CollectionGroups, backend)
	records := repository.NewCollection[model.SeatingRecord](repository.CollectionRecords, backend)
	log := zap.NewNop()
	sh := seating.NewSeededShuffler(7)
	events := &fakePublisher{sent: make(chan struct{}, 16)}

	fills := NewFillService(FillDeps{
		Grids: grids, Students: students, Groups: groups, Records: records,
		Cache: cache, Events: events, Shuffler: sh,
	}, log)
	f := &fixture{
		students: NewStudentService(students, groups, log),
		grids:    NewGridService(grids, nil, log),
		groups:   NewGroupService(groups, students, sh, log),
		fills:    fills,
		reveals:  NewRevealService(fills, grids, students, reveal.DefaultConfig(), sh, nil, log),
		events:   events,
	}
	t.Cleanup(f.reveals.Shutdown)
	return f
}

// seed creates one student per letter of genders (M or F) named sa, sb...
func (f *fixture) seed(t *testing.T, genders string) []*model.Student {
	t.Helper()
	out := make([]*model.Student, 0, len(genders))
	for i, g := range genders {
		gender := "male"
		if g == 'F' {
			gender = "female"
		}
		st, err := f.students.Create(context.Background(), StudentInput{Name: "s" + string(rune('a'+i)), Gender: gender})
		require.NoError(t, err)
		out = append(out, st)
	}
	return out
}

func (f *fixture) grid(t *testing.T, rows, cols int) *model.Grid {
	t.Helper()
	g, err := f.grids.Create(context.Background(), GridInput{Name: "Room", Rows: rows, Cols: cols})
	require.NoError(t, err)
	return g
}

func ids(sts []*model.Student) []string {
	out := make([]string, len(sts))
	for i, st := range sts {
		out[i] = st.ID
	}
	return out
}
