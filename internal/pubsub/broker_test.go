package pubsub

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestBroker_DeliversToSubscriber(t *testing.T) {
	broker := NewBroker[string]()
	defer broker.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := broker.Subscribe(ctx)
	broker.Publish(CreatedEvent, "S1 marked")

	select {
	case event := <-ch:
		require.Equal(t, "S1 marked", event.Payload)
		require.Equal(t, CreatedEvent, event.Type)
		require.False(t, event.Timestamp.IsZero())
	case <-time.After(100 * time.Millisecond):
		require.Fail(t, "timeout waiting for event")
	}
}

func TestBroker_FansOutToEverySubscriber(t *testing.T) {
	broker := NewBroker[int]()
	defer broker.Close()

	ctx := context.Background()
	subs := []<-chan Event[int]{broker.Subscribe(ctx), broker.Subscribe(ctx), broker.Subscribe(ctx)}
	require.Equal(t, 3, broker.SubscriberCount())

	broker.Publish(DeletedEvent, 3)

	for i, ch := range subs {
		select {
		case event := <-ch:
			require.Equal(t, 3, event.Payload, "subscriber %d", i)
			require.Equal(t, DeletedEvent, event.Type, "subscriber %d", i)
		case <-time.After(100 * time.Millisecond):
			require.Fail(t, "timeout waiting for event", "subscriber %d", i)
		}
	}
}

func TestBroker_CancelClosesSubscription(t *testing.T) {
	broker := NewBroker[string]()
	defer broker.Close()

	ctx, cancel := context.WithCancel(context.Background())
	ch := broker.Subscribe(ctx)
	require.Equal(t, 1, broker.SubscriberCount())

	cancel()
	require.Eventually(t, func() bool { return broker.SubscriberCount() == 0 }, time.Second, 5*time.Millisecond)

	_, ok := <-ch
	require.False(t, ok, "channel should be closed")
}

func TestBroker_FullBufferDropsInsteadOfBlocking(t *testing.T) {
	broker := NewBrokerWithBuffer[int](1)
	defer broker.Close()

	ch := broker.Subscribe(context.Background())
	broker.Publish(UpdatedEvent, 1)

	done := make(chan struct{})
	go func() {
		broker.Publish(UpdatedEvent, 2)
		broker.Publish(UpdatedEvent, 3)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(100 * time.Millisecond):
		require.Fail(t, "Publish blocked")
	}

	event := <-ch
	require.Equal(t, 1, event.Payload)
	require.Equal(t, uint64(2), broker.Dropped())
}

func TestBroker_CloseClosesSubscribers(t *testing.T) {
	broker := NewBroker[string]()
	ctx := context.Background()

	ch1 := broker.Subscribe(ctx)
	ch2 := broker.Subscribe(ctx)

	broker.Close()
	broker.Close()

	_, ok1 := <-ch1
	_, ok2 := <-ch2
	require.False(t, ok1)
	require.False(t, ok2)
	require.Equal(t, 0, broker.SubscriberCount())

	late := broker.Subscribe(ctx)
	_, ok := <-late
	require.False(t, ok, "subscribe after close returns a closed channel")

	require.NotPanics(t, func() { broker.Publish(ReloadedEvent, "ignored") })
}

func TestBroker_CancelAfterCloseDoesNotPanic(t *testing.T) {
	broker := NewBroker[string]()
	ctx, cancel := context.WithCancel(context.Background())
	_ = broker.Subscribe(ctx)

	broker.Close()
	require.NotPanics(t, func() { cancel() })
	time.Sleep(10 * time.Millisecond)
}
