package eventbus

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stellarsound/ringlight/internal/domain"
	"github.com/stellarsound/ringlight/internal/logger"
)

func newTestBus() *SyncBus {
	return NewSyncBus(logger.NewTestLogger())
}

func testTrack(name string) domain.Track {
	return domain.Track{Name: name, VocalRef: name + "-v", InstrumentalRef: name + "-i"}
}

func TestSyncBusPublishToTypedSubscriber(t *testing.T) {
	bus := newTestBus()
	defer bus.Close()

	var received []domain.Event
	bus.Subscribe(domain.EventTrackStarted, func(ev domain.Event) {
		received = append(received, ev)
	})

	bus.Publish(domain.NewTrackStartedEvent(testTrack("a"), 0))
	bus.Publish(domain.NewTrackStoppedEvent(testTrack("a")))

	require.Len(t, received, 1)
	assert.Equal(t, domain.EventTrackStarted, received[0].Type())
}

func TestSyncBusDeliveryOrder(t *testing.T) {
	bus := newTestBus()
	defer bus.Close()

	var order []int
	for i := 0; i < 5; i++ {
		i := i
		bus.Subscribe(domain.EventVolumeChanged, func(domain.Event) {
			order = append(order, i)
		})
	}

	bus.Publish(domain.NewVolumeChangedEvent(0.5))
	assert.Equal(t, []int{0, 1, 2, 3, 4}, order)
}

func TestSyncBusSubscribeAll(t *testing.T) {
	bus := newTestBus()
	defer bus.Close()

	var types []domain.EventType
	bus.SubscribeAll(func(ev domain.Event) {
		types = append(types, ev.Type())
	})

	bus.Publish(domain.NewTrackStartedEvent(testTrack("a"), 0))
	bus.Publish(domain.NewVolumeChangedEvent(1))
	bus.Publish(domain.NewTrackStoppedEvent(testTrack("a")))

	assert.Equal(t, []domain.EventType{
		domain.EventTrackStarted,
		domain.EventVolumeChanged,
		domain.EventTrackStopped,
	}, types)
}

func TestSyncBusTypedBeforeWildcard(t *testing.T) {
	bus := newTestBus()
	defer bus.Close()

	var order []string
	bus.SubscribeAll(func(domain.Event) { order = append(order, "all") })
	bus.Subscribe(domain.EventTrackStarted, func(domain.Event) { order = append(order, "typed") })

	bus.Publish(domain.NewTrackStartedEvent(testTrack("a"), 0))
	assert.Equal(t, []string{"typed", "all"}, order)
}

func TestSyncBusUnsubscribe(t *testing.T) {
	bus := newTestBus()
	defer bus.Close()

	var count int
	id := bus.Subscribe(domain.EventTrackStarted, func(domain.Event) { count++ })

	bus.Publish(domain.NewTrackStartedEvent(testTrack("a"), 0))
	bus.Unsubscribe(id)
	bus.Publish(domain.NewTrackStartedEvent(testTrack("a"), 0))

	assert.Equal(t, 1, count)

	// Unknown IDs are a no-op.
	bus.Unsubscribe("sub-999")
}

func TestSyncBusUnsubscribeFromWithinHandler(t *testing.T) {
	bus := newTestBus()
	defer bus.Close()

	var fired []string
	var selfID domain.SubscriptionID
	selfID = bus.Subscribe(domain.EventTrackStarted, func(domain.Event) {
		fired = append(fired, "self")
		bus.Unsubscribe(selfID)
	})
	bus.Subscribe(domain.EventTrackStarted, func(domain.Event) {
		fired = append(fired, "other")
	})

	// The snapshot taken before delivery keeps the second handler running
	// even though the first unsubscribed itself mid-publish.
	bus.Publish(domain.NewTrackStartedEvent(testTrack("a"), 0))
	bus.Publish(domain.NewTrackStartedEvent(testTrack("a"), 0))

	assert.Equal(t, []string{"self", "other", "other"}, fired)
}

func TestSyncBusHandlerPanicIsRecovered(t *testing.T) {
	bus := newTestBus()
	defer bus.Close()

	var survived bool
	bus.Subscribe(domain.EventTrackError, func(domain.Event) {
		panic("handler exploded")
	})
	bus.Subscribe(domain.EventTrackError, func(domain.Event) {
		survived = true
	})

	require.NotPanics(t, func() {
		bus.Publish(domain.NewTrackErrorEvent(testTrack("a"), assert.AnError))
	})
	assert.True(t, survived)
}

func TestSyncBusNilEvent(t *testing.T) {
	bus := newTestBus()
	defer bus.Close()

	bus.Subscribe(domain.EventTrackStarted, func(domain.Event) {
		t.Fatal("handler must not run for nil event")
	})
	require.NotPanics(t, func() { bus.Publish(nil) })
}

func TestSyncBusNilHandlerPanics(t *testing.T) {
	bus := newTestBus()
	defer bus.Close()

	assert.Panics(t, func() { bus.Subscribe(domain.EventTrackStarted, nil) })
	assert.Panics(t, func() { bus.SubscribeAll(nil) })
}

func TestSyncBusHasSubscribers(t *testing.T) {
	bus := newTestBus()
	defer bus.Close()

	assert.False(t, bus.HasSubscribers(domain.EventTrackStarted))

	id := bus.Subscribe(domain.EventTrackStarted, func(domain.Event) {})
	assert.True(t, bus.HasSubscribers(domain.EventTrackStarted))
	assert.False(t, bus.HasSubscribers(domain.EventTrackStopped))

	bus.Unsubscribe(id)
	assert.False(t, bus.HasSubscribers(domain.EventTrackStarted))

	// A wildcard subscriber listens to everything.
	bus.SubscribeAll(func(domain.Event) {})
	assert.True(t, bus.HasSubscribers(domain.EventTrackStopped))
}

func TestSyncBusClose(t *testing.T) {
	bus := newTestBus()

	var count int
	bus.Subscribe(domain.EventTrackStarted, func(domain.Event) { count++ })

	require.NoError(t, bus.Close())
	require.Error(t, bus.Close())

	bus.Publish(domain.NewTrackStartedEvent(testTrack("a"), 0))
	assert.Zero(t, count)

	assert.Panics(t, func() { bus.Subscribe(domain.EventTrackStarted, func(domain.Event) {}) })
}

func TestSyncBusConcurrentPublish(t *testing.T) {
	bus := newTestBus()
	defer bus.Close()

	var mu sync.Mutex
	var count int
	bus.SubscribeAll(func(domain.Event) {
		mu.Lock()
		count++
		mu.Unlock()
	})

	const goroutines = 8
	const perGoroutine = 50

	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perGoroutine; i++ {
				bus.Publish(domain.NewVolumeChangedEvent(0.5))
			}
		}()
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, goroutines*perGoroutine, count)
}
