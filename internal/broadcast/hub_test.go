package broadcast

import (
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHub() *Hub {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return NewHub(log)
}

func TestPublishReachesMatchSubscribers(t *testing.T) {
	hub := newTestHub()

	ch1, cancel1 := hub.Subscribe(1)
	defer cancel1()
	ch2, cancel2 := hub.Subscribe(1)
	defer cancel2()
	other, cancelOther := hub.Subscribe(2)
	defer cancelOther()

	hub.Publish(1, "snapshot")

	for _, ch := range []<-chan Event{ch1, ch2} {
		select {
		case ev := <-ch:
			assert.Equal(t, uint(1), ev.MatchID)
			assert.Equal(t, "snapshot", ev.Payload)
		case <-time.After(time.Second):
			t.Fatal("subscriber did not receive the event")
		}
	}

	select {
	case <-other:
		t.Fatal("subscriber of another match received the event")
	default:
	}
}

func TestCancelClosesChannelAndUnsubscribes(t *testing.T) {
	hub := newTestHub()

	ch, cancel := hub.Subscribe(1)
	require.Equal(t, 1, hub.SubscriberCount(1))

	cancel()
	assert.Equal(t, 0, hub.SubscriberCount(1))

	_, open := <-ch
	assert.False(t, open)

	// Cancelling twice is harmless.
	cancel()
}

func TestSlowSubscriberDropsInsteadOfBlocking(t *testing.T) {
	hub := newTestHub()

	ch, cancel := hub.Subscribe(1)
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		// Overflow the buffer without ever reading.
		for i := 0; i < 50; i++ {
			hub.Publish(1, i)
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}

	assert.Len(t, ch, 16, "buffer holds the first events, the rest are dropped")
}

func TestPublishWithoutSubscribersIsNoOp(t *testing.T) {
	hub := newTestHub()
	hub.Publish(42, "nobody listening")
	assert.Equal(t, 0, hub.SubscriberCount(42))
}
