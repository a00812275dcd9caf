package ipc

import (
	"testing"

	"github.com/Belphemur/MediaDownloader/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func getCounterVecValue(cv *prometheus.CounterVec, labels ...string) float64 {
	c, err := cv.GetMetricWithLabelValues(labels...)
	if err != nil {
		return 0
	}
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		return 0
	}
	return m.GetCounter().GetValue()
}

func TestEventBus_FanOut(t *testing.T) {
	bus := NewEventBus(4)
	a, unsubA := bus.Subscribe()
	defer unsubA()
	b, unsubB := bus.Subscribe()
	defer unsubB()

	bus.Publish("viewReady", "https://example.com")

	if e := receive(t, a); e.Channel != "viewReady" || e.Data != "https://example.com" {
		t.Errorf("subscriber a got %+v", e)
	}
	if e := receive(t, b); e.Channel != "viewReady" {
		t.Errorf("subscriber b got %+v", e)
	}
}

func TestEventBus_PreservesOrder(t *testing.T) {
	bus := NewEventBus(8)
	ch, unsub := bus.Subscribe()
	defer unsub()

	for i := 0; i < 5; i++ {
		bus.Publish("sourceUpdated", i)
	}
	for i := 0; i < 5; i++ {
		if e := receive(t, ch); e.Data != i {
			t.Fatalf("event %d carried %v", i, e.Data)
		}
	}
}

func TestEventBus_DropsForSlowSubscriber(t *testing.T) {
	bus := NewEventBus(1)
	ch, unsub := bus.Subscribe()
	defer unsub()

	before := getCounterVecValue(metrics.IPCEventsDropped, "test-drop")
	bus.Publish("test-drop", 1)
	bus.Publish("test-drop", 2)

	if diff := getCounterVecValue(metrics.IPCEventsDropped, "test-drop") - before; diff != 1 {
		t.Errorf("Expected 1 dropped event, got %.0f", diff)
	}
	if e := receive(t, ch); e.Data != 1 {
		t.Errorf("Expected first event to be kept, got %v", e.Data)
	}
}

func TestEventBus_Unsubscribe(t *testing.T) {
	bus := NewEventBus(1)
	ch, unsub := bus.Subscribe()
	unsub()
	unsub()

	if _, ok := <-ch; ok {
		t.Error("Expected channel to be closed after unsubscribe")
	}
	bus.Publish("quit", nil)
}

func TestEventBus_Close(t *testing.T) {
	bus := NewEventBus(1)
	ch, unsub := bus.Subscribe()
	defer unsub()

	bus.Close()
	if _, ok := <-ch; ok {
		t.Error("Expected channel to be closed after Close")
	}

	late, _ := bus.Subscribe()
	if _, ok := <-late; ok {
		t.Error("Expected subscription after Close to be closed")
	}
}
