package ipc

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"sync"

	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/fallback"
	"github.com/getsentry/sentry-go"

	"github.com/Belphemur/MediaDownloader/internal/apperrors"
	"github.com/Belphemur/MediaDownloader/internal/config"
	"github.com/Belphemur/MediaDownloader/internal/metrics"
	"github.com/Belphemur/MediaDownloader/internal/models"
)

// Handler serves one channel. The returned value becomes the envelope data.
type Handler func(ctx context.Context, args Args) (any, error)

type route struct {
	handler Handler
	// send routes run in the background; their envelope is published on reply when set
	send  bool
	reply string
}

// Bridge dispatches named requests to handlers and wraps every outcome in an Envelope.
// Handler errors and panics never escape: they become a failure envelope with code -1.
type Bridge struct {
	mu       sync.RWMutex
	routes   map[string]route
	events   *EventBus
	fallback fallback.Fallback[models.Envelope]
	wg       sync.WaitGroup
}

// NewBridge creates a bridge publishing on events
func NewBridge(events *EventBus) *Bridge {
	return &Bridge{
		routes: make(map[string]route),
		events: events,
		fallback: fallback.NewWithFunc(func(exec failsafe.Execution[models.Envelope]) (models.Envelope, error) {
			return models.Failure(models.CodeFailure, exec.LastError().Error()), nil
		}),
	}
}

// Events returns the bus replies and notifications are published on
func (b *Bridge) Events() *EventBus {
	return b.events
}

// Handle registers a request/response channel
func (b *Bridge) Handle(channel string, h Handler) {
	b.register(channel, route{handler: h})
}

// On registers a fire-and-forget channel. Invoke acknowledges it at once, the handler
// runs in the background, and when reply is set its envelope is published under reply.
func (b *Bridge) On(channel, reply string, h Handler) {
	b.register(channel, route{handler: h, send: true, reply: reply})
}

func (b *Bridge) register(channel string, r route) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, exists := b.routes[channel]; exists {
		panic(fmt.Sprintf("ipc: channel %q already registered", channel))
	}
	b.routes[channel] = r
}

// Channels returns the registered channel names in order
func (b *Bridge) Channels() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	names := make([]string, 0, len(b.routes))
	for name := range b.routes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Invoke serves one request
func (b *Bridge) Invoke(ctx context.Context, channel string, args Args) models.Envelope {
	b.mu.RLock()
	r, ok := b.routes[channel]
	b.mu.RUnlock()

	if !ok {
		env := models.Failure(models.CodeFailure, (&apperrors.ErrUnknownChannel{Channel: channel}).Error())
		b.record(channel, env)
		return env
	}

	if !r.send {
		env := b.call(ctx, channel, r.handler, args)
		b.record(channel, env)
		return env
	}

	detached := context.WithoutCancel(ctx)
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		env := b.call(detached, channel, r.handler, args)
		b.record(channel, env)
		if r.reply != "" && b.events != nil {
			b.events.Publish(r.reply, env)
		}
	}()
	return models.Success(nil)
}

// Wait blocks until background send handlers have returned
func (b *Bridge) Wait() {
	b.wg.Wait()
}

func (b *Bridge) call(ctx context.Context, channel string, h Handler, args Args) models.Envelope {
	env, _ := failsafe.Get(func() (models.Envelope, error) {
		data, err := safeCall(ctx, channel, h, args)
		if err != nil {
			return models.Envelope{}, err
		}
		return models.Success(data), nil
	}, b.fallback)
	return env
}

// safeCall runs h, turning a panic into an error
func safeCall(ctx context.Context, channel string, h Handler, args Args) (data any, err error) {
	logger := config.GetLogger()
	defer func() {
		if p := recover(); p != nil {
			sentry.CurrentHub().Recover(p)
			logger.Error().Str("channel", channel).Interface("panic", p).Msg("IPC handler panicked")
			err = fmt.Errorf("handler for %s panicked: %v", channel, p)
		}
	}()

	data, err = h(ctx, args)
	if err != nil {
		logger.Warn().Err(err).Str("channel", channel).Msg("IPC handler failed")
		if reportable(err) {
			sentry.CaptureException(err)
		}
	}
	return data, err
}

// reportable filters out errors caused by user input
func reportable(err error) bool {
	return !errors.Is(err, &apperrors.ErrNotFound{}) &&
		!errors.Is(err, &apperrors.ErrDuplicateSource{}) &&
		!errors.Is(err, &apperrors.ErrInvalidTransition{}) &&
		!errors.Is(err, &apperrors.ErrUnknownDownloader{}) &&
		!errors.Is(err, &apperrors.ErrExecFailed{})
}

func (b *Bridge) record(channel string, env models.Envelope) {
	metrics.IPCRequestsTotal.WithLabelValues(channel, strconv.Itoa(env.Code)).Inc()
}
