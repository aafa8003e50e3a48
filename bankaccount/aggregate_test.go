package bankaccount_test

import (
	"errors"
	"testing"
	"time"

	"github.com/bankledger/eventbank/bankaccount"
)

func mustID(t *testing.T) bankaccount.ID {
	t.Helper()
	id, err := bankaccount.ParseID("67e55044-10b1-426f-9247-bb680e5fe0c8")
	if err != nil {
		t.Fatalf("parse id: %v", err)
	}
	return id
}

func mustName(t *testing.T, s string) bankaccount.Name {
	t.Helper()
	n, err := bankaccount.ParseName(s)
	if err != nil {
		t.Fatalf("parse name %q: %v", s, err)
	}
	return n
}

// decide folds HandleCommand then ApplyEvent, the canonical decision
// sequence a command goes through.
func decide(t *testing.T, agg bankaccount.Aggregate, cmd bankaccount.Command, now time.Time) (bankaccount.Aggregate, error) {
	t.Helper()
	events, err := bankaccount.HandleCommand(agg, cmd, now)
	if err != nil {
		return agg, err
	}
	next, err := bankaccount.LoadFromHistory(agg, events, agg.Version+uint64(len(events)))
	if err != nil {
		return agg, err
	}
	return next, nil
}

func TestOpenThenRead(t *testing.T) {
	id := mustID(t)
	name := mustName(t, "foo")
	now := time.Now()

	agg, err := decide(t, bankaccount.New(), bankaccount.NewOpen(id, name), now)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if agg.State == nil || agg.State.Name.String() != "foo" {
		t.Fatalf("expected name foo, got %+v", agg.State)
	}
	if agg.State.Balance != 0 || agg.State.Closed {
		t.Fatalf("unexpected initial state: %+v", agg.State)
	}
	if agg.Version != 1 {
		t.Fatalf("expected version 1, got %d", agg.Version)
	}
}

func TestDepositThenWithdraw(t *testing.T) {
	id := mustID(t)
	now := time.Now()
	agg, _ := decide(t, bankaccount.New(), bankaccount.NewOpen(id, mustName(t, "foo")), now)
	agg, err := decide(t, agg, bankaccount.NewDeposit(id, 500), now)
	if err != nil {
		t.Fatalf("deposit: %v", err)
	}
	agg, err = decide(t, agg, bankaccount.NewWithdraw(id, 300), now)
	if err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	if agg.State.Balance != 200 {
		t.Fatalf("expected balance 200, got %d", agg.State.Balance)
	}
	if agg.Version != 3 {
		t.Fatalf("expected version 3, got %d", agg.Version)
	}
}

func TestZeroDepositRejected(t *testing.T) {
	id := mustID(t)
	now := time.Now()
	agg, _ := decide(t, bankaccount.New(), bankaccount.NewOpen(id, mustName(t, "foo")), now)

	_, err := decide(t, agg, bankaccount.NewDeposit(id, 0), now)
	if !errors.Is(err, bankaccount.ErrDepositZero) {
		t.Fatalf("expected ErrDepositZero, got %v", err)
	}
	if agg.Version != 1 {
		t.Fatalf("aggregate should be unchanged at version 1, got %d", agg.Version)
	}
}

func TestOverWithdrawRejected(t *testing.T) {
	id := mustID(t)
	now := time.Now()
	agg, _ := decide(t, bankaccount.New(), bankaccount.NewOpen(id, mustName(t, "foo")), now)
	agg, _ = decide(t, agg, bankaccount.NewDeposit(id, 100), now)

	_, err := decide(t, agg, bankaccount.NewWithdraw(id, 200), now)
	if !errors.Is(err, bankaccount.ErrNegativeBalance) {
		t.Fatalf("expected ErrNegativeBalance, got %v", err)
	}
}

func TestCloseThenMutateRejected(t *testing.T) {
	id := mustID(t)
	now := time.Now()
	agg, _ := decide(t, bankaccount.New(), bankaccount.NewOpen(id, mustName(t, "foo")), now)
	agg, err := decide(t, agg, bankaccount.NewClose(id), now)
	if err != nil {
		t.Fatalf("close: %v", err)
	}
	if !agg.State.Closed {
		t.Fatalf("expected account to be closed")
	}

	_, err = decide(t, agg, bankaccount.NewDeposit(id, 10), now)
	if !errors.Is(err, bankaccount.ErrAlreadyClosed) {
		t.Fatalf("expected ErrAlreadyClosed, got %v", err)
	}
}

func TestReopenRejected(t *testing.T) {
	id := mustID(t)
	now := time.Now()
	agg, _ := decide(t, bankaccount.New(), bankaccount.NewOpen(id, mustName(t, "foo")), now)

	_, err := decide(t, agg, bankaccount.NewOpen(id, mustName(t, "bar")), now)
	if !errors.Is(err, bankaccount.ErrAlreadyOpened) {
		t.Fatalf("expected ErrAlreadyOpened, got %v", err)
	}
}

func TestUnrelatedIDRejected(t *testing.T) {
	id := mustID(t)
	other, err := bankaccount.ParseID("00000000-0000-0000-0000-000000000001")
	if err != nil {
		t.Fatalf("parse other id: %v", err)
	}
	now := time.Now()
	agg, _ := decide(t, bankaccount.New(), bankaccount.NewOpen(id, mustName(t, "foo")), now)

	_, err = bankaccount.HandleCommand(agg, bankaccount.NewDeposit(other, 10), now)
	if !errors.Is(err, bankaccount.ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
}

func TestLoadFromSnapshotThenHistoryMatchesFullReplay(t *testing.T) {
	id := mustID(t)
	now := time.Now()

	full, _ := decide(t, bankaccount.New(), bankaccount.NewOpen(id, mustName(t, "foo")), now)
	full, _ = decide(t, full, bankaccount.NewDeposit(id, 500), now)
	full, _ = decide(t, full, bankaccount.NewWithdraw(id, 300), now)

	snap := bankaccount.LoadFromSnapshot(*mustSnapshotAfterOpen(t, id, now).State, 1)
	rest, err := bankaccount.LoadFromHistory(snap, []bankaccount.Event{
		bankaccount.NewDeposited(id, 500, now),
		bankaccount.NewWithdrawn(id, 300, now),
	}, 3)
	if err != nil {
		t.Fatalf("load from history: %v", err)
	}

	if rest.State.Balance != full.State.Balance || rest.Version != full.Version {
		t.Fatalf("snapshot+history diverged from full replay: %+v vs %+v", rest, full)
	}
}

func mustSnapshotAfterOpen(t *testing.T, id bankaccount.ID, now time.Time) bankaccount.Aggregate {
	t.Helper()
	agg, err := decide(t, bankaccount.New(), bankaccount.NewOpen(id, mustName(t, "foo")), now)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	return agg
}

func TestNameValidation(t *testing.T) {
	if _, err := bankaccount.ParseName(""); err == nil {
		t.Fatalf("expected empty name to be rejected")
	}
	long := make([]byte, 255)
	for i := range long {
		long[i] = 'a'
	}
	if _, err := bankaccount.ParseName(string(long)); err == nil {
		t.Fatalf("expected 255-length name to be rejected")
	}
	if _, err := bankaccount.ParseName("ok"); err != nil {
		t.Fatalf("expected short name to be accepted: %v", err)
	}
}

func TestEventJSONRoundTrip(t *testing.T) {
	id := mustID(t)
	now := time.Now().UTC().Round(time.Second)
	name := mustName(t, "foo")

	cases := []bankaccount.Event{
		bankaccount.NewOpened(id, name, now),
		bankaccount.NewUpdated(id, name, now),
		bankaccount.NewDeposited(id, 10, now),
		bankaccount.NewWithdrawn(id, 10, now),
		bankaccount.NewClosed(id, now),
	}
	for _, e := range cases {
		body, err := bankaccount.EncodeEvent(e)
		if err != nil {
			t.Fatalf("encode %T: %v", e, err)
		}
		decoded, err := bankaccount.DecodeEvent("", body)
		if err != nil {
			t.Fatalf("decode %T: %v", e, err)
		}
		if decoded != e {
			t.Fatalf("round trip mismatch for %T: %+v != %+v", e, decoded, e)
		}
	}
}
