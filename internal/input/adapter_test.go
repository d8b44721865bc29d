package input

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/oactree/internal/anyvalue"
)

func TestAdapterSingleRequest(t *testing.T) {
	adapter := NewAdapter(func(req Request, id uint64) Reply {
		return NewUserValueReply(true, anyvalue.FromInt32(42))
	}, func(id uint64) {})
	defer adapter.Close()

	future := adapter.AddUserInputRequest(
		NewUserValueRequest(anyvalue.FromInt32(0), "enter value"))
	require.True(t, future.IsValid())
	require.True(t, future.WaitFor(time.Second))

	reply, err := future.GetValue()
	require.NoError(t, err)
	value, ok := ParseUserValueReply(reply)
	require.True(t, ok)
	i, _ := value.AsInt64()
	assert.Equal(t, int64(42), i)

	// a second GetValue fails: the reply was consumed
	_, err = future.GetValue()
	assert.ErrorIs(t, err, ErrNoReply)
}

func TestAdapterSerialisesRequests(t *testing.T) {
	var mu sync.Mutex
	active := 0
	maxActive := 0

	adapter := NewAdapter(func(req Request, id uint64) Reply {
		mu.Lock()
		active++
		if active > maxActive {
			maxActive = active
		}
		mu.Unlock()
		time.Sleep(20 * time.Millisecond)
		mu.Lock()
		active--
		mu.Unlock()
		return NewUserChoiceReply(true, int(id))
	}, func(id uint64) {})
	defer adapter.Close()

	futures := make([]Future, 4)
	for i := range futures {
		futures[i] = adapter.AddUserInputRequest(NewUserChoiceRequest([]string{"a", "b"}, anyvalue.Empty()))
	}
	for _, f := range futures {
		require.True(t, f.WaitFor(2*time.Second))
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, maxActive, "at most one backend call may be active")
}

func TestAdapterDenseIDs(t *testing.T) {
	adapter := NewAdapter(func(req Request, id uint64) Reply {
		return NewUserValueReply(true, anyvalue.Empty())
	}, func(id uint64) {})
	defer adapter.Close()

	first := adapter.AddUserInputRequest(NewUserValueRequest(anyvalue.Empty(), ""))
	second := adapter.AddUserInputRequest(NewUserValueRequest(anyvalue.Empty(), ""))
	assert.Equal(t, first.ID()+1, second.ID())
}

func TestFutureCancel(t *testing.T) {
	release := make(chan struct{})
	interrupted := make(chan uint64, 1)

	adapter := NewAdapter(func(req Request, id uint64) Reply {
		<-release
		return NewUserValueReply(true, anyvalue.Empty())
	}, func(id uint64) {
		interrupted <- id
		close(release)
	})
	defer adapter.Close()

	future := adapter.AddUserInputRequest(NewUserValueRequest(anyvalue.Empty(), ""))
	// wait until the backend call is in flight
	time.Sleep(20 * time.Millisecond)
	future.Cancel()

	select {
	case id := <-interrupted:
		assert.Equal(t, future.ID(), id)
	case <-time.After(time.Second):
		t.Fatal("interrupt hook was not called")
	}

	assert.False(t, future.IsValid())
	_, err := future.GetValue()
	assert.ErrorIs(t, err, ErrNoReply)
}

func TestCancelQueuedRequest(t *testing.T) {
	release := make(chan struct{})
	adapter := NewAdapter(func(req Request, id uint64) Reply {
		<-release
		return NewUserValueReply(true, anyvalue.Empty())
	}, func(id uint64) {})

	blocker := adapter.AddUserInputRequest(NewUserValueRequest(anyvalue.Empty(), ""))
	queued := adapter.AddUserInputRequest(NewUserValueRequest(anyvalue.Empty(), ""))
	queued.Cancel()

	close(release)
	require.True(t, blocker.WaitFor(time.Second))
	assert.False(t, queued.WaitFor(50*time.Millisecond))
	_, err := queued.GetValue()
	assert.ErrorIs(t, err, ErrNoReply)

	adapter.Close()
}

func TestCloseInterruptsInFlight(t *testing.T) {
	release := make(chan struct{})
	var once sync.Once

	adapter := NewAdapter(func(req Request, id uint64) Reply {
		<-release
		return NewUserValueReply(true, anyvalue.Empty())
	}, func(id uint64) {
		once.Do(func() { close(release) })
	})

	future := adapter.AddUserInputRequest(NewUserValueRequest(anyvalue.Empty(), ""))
	time.Sleep(20 * time.Millisecond)

	done := make(chan struct{})
	go func() {
		adapter.Close()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Close did not join the worker")
	}
	_ = future
}

func TestUnsupportedFuture(t *testing.T) {
	var f UnsupportedFuture
	assert.False(t, f.IsValid())
	assert.False(t, f.IsReady())
	assert.False(t, f.WaitFor(10*time.Millisecond))
	_, err := f.GetValue()
	assert.ErrorIs(t, err, ErrNoReply)
}
