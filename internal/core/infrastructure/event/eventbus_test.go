package event

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	logimpl "github.com/weisyn/bcdb/internal/core/infrastructure/log"
	eventInterface "github.com/weisyn/bcdb/pkg/interfaces/infrastructure/event"
	"github.com/weisyn/bcdb/pkg/types"
)

func TestEventBus_SyncDelivery(t *testing.T) {
	bus := New(logimpl.NewNop())

	var got eventInterface.ConfigCommitted
	require.NoError(t, bus.Subscribe(eventInterface.EventTypeConfigCommitted, func(e eventInterface.ConfigCommitted) {
		got = e
	}))
	assert.True(t, bus.HasCallback(eventInterface.EventTypeConfigCommitted))
	assert.False(t, bus.HasCallback(eventInterface.EventTypeUserCommitted))

	bus.Publish(eventInterface.EventTypeConfigCommitted, eventInterface.ConfigCommitted{
		TxID:    "tx-1",
		Version: types.Version{BlockNum: 1},
		NodeIDs: []string{"bdb-node-1"},
	})
	assert.Equal(t, "tx-1", got.TxID)
	assert.Equal(t, uint64(1), bus.Published())
}

func TestEventBus_AsyncDelivery(t *testing.T) {
	bus := New(nil)

	var mu sync.Mutex
	var written []string
	require.NoError(t, bus.SubscribeAsync(eventInterface.EventTypeUserCommitted, func(e eventInterface.UserCommitted) {
		mu.Lock()
		defer mu.Unlock()
		written = append(written, e.Written...)
	}, true))

	bus.Publish(eventInterface.EventTypeUserCommitted, eventInterface.UserCommitted{Written: []string{"alice"}})
	bus.Publish(eventInterface.EventTypeUserCommitted, eventInterface.UserCommitted{Written: []string{"bob"}})
	bus.WaitAsync()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"alice", "bob"}, written)
}

func TestEventBus_Close(t *testing.T) {
	bus := New(nil)
	calls := 0
	require.NoError(t, bus.Subscribe(eventInterface.EventTypeUserCommitted, func(eventInterface.UserCommitted) { calls++ }))

	bus.Close()
	bus.Close()
	bus.Publish(eventInterface.EventTypeUserCommitted, eventInterface.UserCommitted{})
	assert.Equal(t, 0, calls)
	assert.ErrorIs(t, bus.Subscribe(eventInterface.EventTypeConfigCommitted, func() {}), ErrClosed)
}

func TestSubscribeAudit(t *testing.T) {
	bus := New(nil)
	require.NoError(t, SubscribeAudit(bus, logimpl.NewNop()))
	assert.True(t, bus.HasCallback(eventInterface.EventTypeConfigCommitted))
	assert.True(t, bus.HasCallback(eventInterface.EventTypeUserCommitted))

	bus.Publish(eventInterface.EventTypeConfigCommitted, eventInterface.ConfigCommitted{TxID: "tx"})
	bus.WaitAsync()
}
