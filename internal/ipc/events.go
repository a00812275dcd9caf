package ipc

import (
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/Belphemur/MediaDownloader/internal/config"
	"github.com/Belphemur/MediaDownloader/internal/metrics"
	"github.com/Belphemur/MediaDownloader/internal/models"
)

// Events pushed to presentation processes
const (
	EventExecReply         = "execReply"
	EventSetLocalPathReply = "setLocalPathReply"
	EventProxyChanged      = "proxyChanged"
	EventQuit              = "quit"
)

// DefaultEventBuffer is the per-subscriber queue length
const DefaultEventBuffer = 64

// EventBus fans events out to every subscriber. Publishing never blocks: a subscriber
// whose queue is full misses the event.
type EventBus struct {
	mu     sync.RWMutex
	subs   map[uint64]chan models.Event
	next   uint64
	buffer int
	closed bool
	// dropLog throttles the queue-full warning, the counter still sees every drop
	dropLog rate.Sometimes
}

// NewEventBus creates a bus with buffer queued events per subscriber
func NewEventBus(buffer int) *EventBus {
	if buffer <= 0 {
		buffer = DefaultEventBuffer
	}
	return &EventBus{
		subs:    make(map[uint64]chan models.Event),
		buffer:  buffer,
		dropLog: rate.Sometimes{First: 1, Interval: 10 * time.Second},
	}
}

// Subscribe registers a new subscriber. The returned function unsubscribes and closes the channel.
func (b *EventBus) Subscribe() (<-chan models.Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan models.Event, b.buffer)
	if b.closed {
		close(ch)
		return ch, func() {}
	}

	id := b.next
	b.next++
	b.subs[id] = ch
	metrics.IPCSubscribers.Inc()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if sub, ok := b.subs[id]; ok {
				delete(b.subs, id)
				close(sub)
				metrics.IPCSubscribers.Dec()
			}
		})
	}
}

// Publish sends an event to every subscriber
func (b *EventBus) Publish(channel string, data any) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	event := models.Event{Channel: channel, Data: data}
	for id, ch := range b.subs {
		select {
		case ch <- event:
		default:
			metrics.IPCEventsDropped.WithLabelValues(channel).Inc()
			b.dropLog.Do(func() {
				logger := config.GetLogger()
				logger.Warn().Str("channel", channel).Uint64("subscriber", id).Msg("Subscriber queue full, dropping events")
			})
		}
	}
}

// Close disconnects every subscriber. Later subscriptions receive a closed channel.
func (b *EventBus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
		metrics.IPCSubscribers.Dec()
	}
}
