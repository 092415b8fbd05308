package observer

import (
	"context"
	"sync"
	"testing"
	"time"
)

type recordingObserver struct {
	name string
	mu   sync.Mutex
	seen []GradingEvent
	done chan struct{}
}

func newRecordingObserver(name string, expected int) *recordingObserver {
	return &recordingObserver{name: name, done: make(chan struct{}, expected)}
}

func (o *recordingObserver) OnEvent(ctx context.Context, event GradingEvent) {
	o.mu.Lock()
	o.seen = append(o.seen, event)
	o.mu.Unlock()
	o.done <- struct{}{}
}

func (o *recordingObserver) GetObserverName() string {
	return o.name
}

func (o *recordingObserver) waitFor(t *testing.T, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-o.done:
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for event %d", i+1)
		}
	}
}

func TestEventPublisherNotifiesSubscribers(t *testing.T) {
	publisher := NewEventPublisher()
	obs := newRecordingObserver("recording", 2)
	publisher.Subscribe(obs)

	publisher.NotifyObservers(context.Background(), GradingEvent{EventType: GradingStarted})
	publisher.NotifyObservers(context.Background(), GradingEvent{EventType: GradingCompleted, Score: 87})
	obs.waitFor(t, 2)

	obs.mu.Lock()
	defer obs.mu.Unlock()
	if len(obs.seen) != 2 {
		t.Fatalf("observer saw %d events, want 2", len(obs.seen))
	}
}

func TestEventPublisherUnsubscribe(t *testing.T) {
	publisher := NewEventPublisher()
	obs := newRecordingObserver("recording", 1)
	publisher.Subscribe(obs)
	publisher.Unsubscribe(obs)

	publisher.NotifyObservers(context.Background(), GradingEvent{EventType: GradingStarted})

	select {
	case <-obs.done:
		t.Error("unsubscribed observer still received an event")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestMetricsObserverAggregates(t *testing.T) {
	obs := NewMetricsObserver().(*MetricsObserver)
	ctx := context.Background()

	obs.OnEvent(ctx, GradingEvent{EventType: GradingStarted})
	obs.OnEvent(ctx, GradingEvent{EventType: GradingStarted})
	obs.OnEvent(ctx, GradingEvent{EventType: GradingStarted})
	obs.OnEvent(ctx, GradingEvent{EventType: GradingCompleted, Score: 90, ProcessingTime: time.Second})
	obs.OnEvent(ctx, GradingEvent{EventType: GradingDegraded, Score: 70, ProcessingTime: time.Second})
	obs.OnEvent(ctx, GradingEvent{EventType: GradingFailed})

	metrics := obs.GetMetrics()
	if metrics["total_sheets"].(int64) != 3 {
		t.Errorf("total_sheets = %v, want 3", metrics["total_sheets"])
	}
	if metrics["completed_sheets"].(int64) != 1 {
		t.Errorf("completed_sheets = %v, want 1", metrics["completed_sheets"])
	}
	if metrics["degraded_sheets"].(int64) != 1 {
		t.Errorf("degraded_sheets = %v, want 1", metrics["degraded_sheets"])
	}
	if metrics["failed_sheets"].(int64) != 1 {
		t.Errorf("failed_sheets = %v, want 1", metrics["failed_sheets"])
	}
	if metrics["average_score"].(float64) != 80 {
		t.Errorf("average_score = %v, want 80", metrics["average_score"])
	}
}
