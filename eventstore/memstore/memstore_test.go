package memstore_test

import (
	"testing"

	"github.com/bankledger/eventbank/eventstore"
	"github.com/bankledger/eventbank/eventstore/memstore"
	"github.com/bankledger/eventbank/internal/storetest"
)

func TestStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) eventstore.EventStore {
		return memstore.New()
	})
}
