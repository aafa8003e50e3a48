package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bankledger/eventbank/bankaccount"
	"github.com/bankledger/eventbank/eventstore/memstore"
	"github.com/bankledger/eventbank/publisher"
	"github.com/bankledger/eventbank/publisher/memhub"
	"github.com/bankledger/eventbank/usecase"
)

func fixedClock(t time.Time) usecase.Clock {
	return func() time.Time { return t }
}

func TestHandleOpenThenDeposit(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	hub := memhub.New()
	uc := usecase.New(store, hub, fixedClock(time.Now().UTC()))

	var received []publisher.Published
	hub.Subscribe(func(_ context.Context, events []publisher.Published) error {
		received = append(received, events...)
		return nil
	})

	id := bankaccount.NewID()
	name, err := bankaccount.ParseName("alice")
	if err != nil {
		t.Fatalf("parse name: %v", err)
	}

	ctx = usecase.WithMetadata(ctx, usecase.Metadata{"correlation_id": "req-1"})

	agg, err := uc.Handle(ctx, bankaccount.NewOpen(id, name))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if agg.Version != 1 {
		t.Fatalf("expected version 1, got %d", agg.Version)
	}

	agg, err = uc.Handle(ctx, bankaccount.NewDeposit(id, 500))
	if err != nil {
		t.Fatalf("deposit: %v", err)
	}
	if agg.State.Balance != 500 || agg.Version != 2 {
		t.Fatalf("unexpected state after deposit: %+v", agg)
	}

	if len(received) != 2 {
		t.Fatalf("expected 2 published events, got %d", len(received))
	}
	if received[0].Metadata["correlation_id"] != "req-1" {
		t.Fatalf("expected correlation_id to propagate to published event, got %+v", received[0].Metadata)
	}

	got, err := uc.Get(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.State.Balance != 500 || got.Version != 2 {
		t.Fatalf("get did not match handled state: %+v", got)
	}
}

func TestRetryOnConflictAppliesIntent(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	uc := usecase.New(store, nil, fixedClock(time.Now().UTC()))

	id := bankaccount.NewID()
	name, err := bankaccount.ParseName("bob")
	if err != nil {
		t.Fatalf("parse name: %v", err)
	}
	if _, err := uc.Handle(ctx, bankaccount.NewOpen(id, name)); err != nil {
		t.Fatalf("open: %v", err)
	}

	agg, err := uc.RetryOnConflict(ctx, id, 3, func(agg bankaccount.Aggregate) (bankaccount.Command, error) {
		return bankaccount.NewDeposit(id, 100), nil
	})
	if err != nil {
		t.Fatalf("retry on conflict: %v", err)
	}
	if agg.State.Balance != 100 {
		t.Fatalf("expected balance 100, got %d", agg.State.Balance)
	}
}

func TestGetUnknownAccountReturnsNotFound(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	uc := usecase.New(store, nil, fixedClock(time.Now().UTC()))

	_, err := uc.Get(ctx, bankaccount.NewID())
	if !errors.Is(err, usecase.ErrBankAccountNotFound) {
		t.Fatalf("expected ErrBankAccountNotFound, got %v", err)
	}
	var notFound *usecase.NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected *usecase.NotFoundError, got %T", err)
	}
}
