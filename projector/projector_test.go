package projector_test

import (
	"context"
	"testing"
	"time"

	"github.com/bankledger/eventbank/bankaccount"
	"github.com/bankledger/eventbank/projector"
	"github.com/bankledger/eventbank/publisher"
	"github.com/bankledger/eventbank/readmodel"
)

type fakeDao struct {
	rows map[bankaccount.ID]readmodel.Row
}

func newFakeDao() *fakeDao {
	return &fakeDao{rows: make(map[bankaccount.ID]readmodel.Row)}
}

func (f *fakeDao) Upsert(_ context.Context, row readmodel.Row) error {
	f.rows[row.ID] = row
	return nil
}

func (f *fakeDao) Get(_ context.Context, id bankaccount.ID) (readmodel.Row, bool, error) {
	row, ok := f.rows[id]
	return row, ok, nil
}

func (f *fakeDao) Search(context.Context, string, int) ([]readmodel.Row, error) { return nil, nil }

func (f *fakeDao) Delete(_ context.Context, id bankaccount.ID) error {
	delete(f.rows, id)
	return nil
}

var _ readmodel.Dao = (*fakeDao)(nil)

func TestProjectorAppliesEventsInOrder(t *testing.T) {
	ctx := context.Background()
	dao := newFakeDao()
	p := projector.New(dao)

	id := bankaccount.NewID()
	name, err := bankaccount.ParseName("dana")
	if err != nil {
		t.Fatalf("parse name: %v", err)
	}
	now := time.Now().UTC()

	events := []publisher.Published{
		{StreamID: id.StreamID(), Version: 1, Event: bankaccount.NewOpened(id, name, now)},
		{StreamID: id.StreamID(), Version: 2, Event: bankaccount.NewDeposited(id, 300, now)},
		{StreamID: id.StreamID(), Version: 3, Event: bankaccount.NewWithdrawn(id, 100, now)},
	}
	if err := p.HandlePublished(ctx, events); err != nil {
		t.Fatalf("handle published: %v", err)
	}

	row, ok, err := dao.Get(ctx, id)
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if row.Balance != 200 || row.Closed || row.Version != 3 || !row.CreatedAt.Equal(now) {
		t.Fatalf("unexpected projected row: %+v", row)
	}

	if err := p.HandlePublished(ctx, []publisher.Published{
		{StreamID: id.StreamID(), Version: 4, Event: bankaccount.NewClosed(id, now)},
	}); err != nil {
		t.Fatalf("handle close: %v", err)
	}
	row, _, _ = dao.Get(ctx, id)
	if !row.Closed || row.Version != 4 {
		t.Fatalf("expected row closed at version 4, got %+v", row)
	}
}
