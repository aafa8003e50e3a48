package sqlitedao_test

import (
	"context"
	"testing"
	"time"

	"github.com/bankledger/eventbank/bankaccount"
	"github.com/bankledger/eventbank/readmodel"
	"github.com/bankledger/eventbank/readmodel/sqlitedao"
)

func TestUpsertGetSearchDelete(t *testing.T) {
	ctx := context.Background()
	dao, err := sqlitedao.Open(":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = dao.Close() })

	id := bankaccount.NewID()
	now := time.Now().UTC().Truncate(time.Second)

	row := readmodel.Row{ID: id, Name: "alice smith", Balance: 100, Closed: false, CreatedAt: now, UpdatedAt: now, Version: 1}
	if err := dao.Upsert(ctx, row); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	got, ok, err := dao.Get(ctx, id)
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if got.Name != "alice smith" || got.Balance != 100 || got.Version != 1 || !got.CreatedAt.Equal(now) {
		t.Fatalf("unexpected row: %+v", got)
	}

	results, err := dao.Search(ctx, "alice", 10)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 1 || results[0].ID != id {
		t.Fatalf("expected to find alice by search, got %+v", results)
	}

	row.Balance = 250
	row.Version = 2
	if err := dao.Upsert(ctx, row); err != nil {
		t.Fatalf("re-upsert: %v", err)
	}
	got, ok, err = dao.Get(ctx, id)
	if err != nil || !ok || got.Balance != 250 || got.Version != 2 || !got.CreatedAt.Equal(now) {
		t.Fatalf("expected updated balance, got %+v (ok=%v err=%v)", got, ok, err)
	}

	if err := dao.Delete(ctx, id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, err := dao.Get(ctx, id); err != nil || ok {
		t.Fatalf("expected row gone after delete, ok=%v err=%v", ok, err)
	}
}
