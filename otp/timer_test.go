package otp

import (
	"testing"
	"time"
)

func collectEvents(t *testing.T, events <-chan Event) []Event {
	t.Helper()

	var out []Event
	deadline := time.After(5 * time.Second)
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return out
			}
			out = append(out, ev)
		case <-deadline:
			t.Fatalf("timed out waiting for countdown events, got %d so far", len(out))
		}
	}
}

func TestTimerEmitsTicksThenFinished(t *testing.T) {
	timer := NewTimerWithInterval(time.Millisecond)

	events := collectEvents(t, timer.Start(5))

	if len(events) != 6 {
		t.Fatalf("expected 5 ticks + finished, got %d events: %v", len(events), events)
	}
	for i, want := range []int{5, 4, 3, 2, 1} {
		if events[i].Finished || events[i].SecondsRemaining != want {
			t.Fatalf("event %d: expected tick %d, got %+v", i, want, events[i])
		}
	}
	if !events[5].Finished {
		t.Fatalf("expected terminal finished event, got %+v", events[5])
	}
	if timer.Running() {
		t.Fatal("timer still running after finish")
	}
}

func TestTimerZeroDuration(t *testing.T) {
	timer := NewTimerWithInterval(time.Millisecond)

	events := collectEvents(t, timer.Start(0))
	if len(events) != 1 || !events[0].Finished {
		t.Fatalf("expected only a finished event, got %v", events)
	}
}

func TestTimerRestartSilencesPreviousRun(t *testing.T) {
	timer := NewTimerWithInterval(time.Millisecond)

	first := timer.Start(1000)

	// Consume one tick so the first run is demonstrably live.
	select {
	case ev := <-first:
		if ev.SecondsRemaining != 1000 {
			t.Fatalf("expected first tick 1000, got %+v", ev)
		}
	case <-time.After(time.Second):
		t.Fatal("first run never ticked")
	}

	second := timer.Start(3)

	// The superseded stream must close without emitting anything further.
	for ev := range first {
		t.Fatalf("superseded run emitted %+v", ev)
	}

	events := collectEvents(t, second)
	if len(events) != 4 || !events[3].Finished {
		t.Fatalf("expected 3 ticks + finished from second run, got %v", events)
	}
}

func TestTimerStopIsIdempotent(t *testing.T) {
	timer := NewTimerWithInterval(time.Millisecond)

	events := timer.Start(1000)
	timer.Stop()
	timer.Stop()

	if timer.Running() {
		t.Fatal("timer reported running after Stop")
	}
	for ev := range events {
		t.Fatalf("stopped run emitted %+v", ev)
	}
}

func TestTimerStopSilencesUnconsumedRun(t *testing.T) {
	timer := NewTimerWithInterval(time.Millisecond)

	// The run goroutine may be anywhere between spawn and its first send
	// when Stop lands; no schedule may leak a tick to a late reader.
	for i := 0; i < 200; i++ {
		events := timer.Start(1000)
		timer.Stop()
		for ev := range events {
			t.Fatalf("iteration %d: stopped run emitted %+v", i, ev)
		}
	}
}

func TestTimerRunningDuringCountdown(t *testing.T) {
	timer := NewTimerWithInterval(50 * time.Millisecond)

	events := timer.Start(1000)
	if !timer.Running() {
		t.Fatal("timer not running after Start")
	}
	timer.Stop()
	for range events {
	}
}
