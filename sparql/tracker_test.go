package sparql

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestState_String(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "pending", StatePending.String())
	assert.Equal(t, "success", StateSuccess.String())
	assert.Equal(t, "error", StateError.String())
	assert.Equal(t, "unknown", State(9).String())

	text, err := StateError.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "error", string(text))
}

func TestTracker_Lifecycle(t *testing.T) {
	tr := NewTracker()
	assert.Equal(t, StateIdle, tr.State())

	_, tk := tr.Begin(context.Background())
	assert.Equal(t, StatePending, tr.State())
	assert.NotEmpty(t, tk.ID)

	assert.True(t, tr.Complete(tk, nil))
	assert.Equal(t, StateSuccess, tr.State())
	assert.NoError(t, tr.Err())

	assert.False(t, tr.Complete(tk, nil), "a ticket resolves once")
}

func TestTracker_ErrorThenSuccess(t *testing.T) {
	tr := NewTracker()
	boom := errors.New("boom")

	_, tk := tr.Begin(context.Background())
	require.True(t, tr.Complete(tk, boom))
	assert.Equal(t, StateError, tr.State())
	assert.Equal(t, boom, tr.Err())

	_, tk = tr.Begin(context.Background())
	assert.NoError(t, tr.Err(), "new call clears previous error")
	require.True(t, tr.Complete(tk, nil))
	assert.Equal(t, StateSuccess, tr.State())
}

func TestTracker_SupersededCallIsStale(t *testing.T) {
	tr := NewTracker()

	oldCtx, oldTk := tr.Begin(context.Background())
	newCtx, newTk := tr.Begin(context.Background())

	assert.ErrorIs(t, oldCtx.Err(), context.Canceled, "superseded call is cancelled")
	assert.NoError(t, newCtx.Err())
	assert.NotEqual(t, oldTk.ID, newTk.ID)

	// Late arrival of the old result must not resolve the view.
	assert.False(t, tr.Complete(oldTk, nil))
	assert.Equal(t, StatePending, tr.State())

	assert.True(t, tr.Complete(newTk, nil))
	assert.Equal(t, StateSuccess, tr.State())
	assert.Equal(t, newTk.ID, tr.Current().ID)
}

func TestTracker_LateArrivalAfterNewerCompletes(t *testing.T) {
	tr := NewTracker()

	_, oldTk := tr.Begin(context.Background())
	_, newTk := tr.Begin(context.Background())
	require.True(t, tr.Complete(newTk, nil))

	assert.False(t, tr.Complete(oldTk, errors.New("late failure")))
	assert.Equal(t, StateSuccess, tr.State())
	assert.NoError(t, tr.Err())
}

func TestTracker_Abandon(t *testing.T) {
	tr := NewTracker()

	ctx, tk := tr.Begin(context.Background())
	tr.Abandon()

	assert.Equal(t, StateIdle, tr.State())
	assert.ErrorIs(t, ctx.Err(), context.Canceled)
	assert.False(t, tr.Complete(tk, nil))

	tr.Abandon()
	assert.Equal(t, StateIdle, tr.State())
}

func TestTracker_ConcurrentBegin(t *testing.T) {
	tr := NewTracker()

	var wg sync.WaitGroup
	tickets := make(chan Ticket, 50)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, tk := tr.Begin(context.Background())
			tickets <- tk
		}()
	}
	wg.Wait()
	close(tickets)

	resolved := 0
	for tk := range tickets {
		if tr.Complete(tk, nil) {
			resolved++
		}
	}
	assert.Equal(t, 1, resolved, "only the latest call may resolve")
	assert.Equal(t, StateSuccess, tr.State())
}
