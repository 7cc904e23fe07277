package telemetry

import "testing"

func TestLoggerRingBufferCapsSize(t *testing.T) {
	l := NewLogger(3)
	l.SetMinLevel(Debug)
	for i := 0; i < 5; i++ {
		l.Log(Info, "test", "msg")
	}
	if len(l.Entries(0)) != 3 {
		t.Fatalf("entries = %d, want 3", len(l.Entries(0)))
	}
}

func TestLoggerFiltersBelowMinLevel(t *testing.T) {
	l := NewLogger(10)
	l.SetMinLevel(Warn)
	l.Log(Info, "test", "should be dropped")
	l.Log(Error, "test", "should be kept")
	entries := l.Entries(0)
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(entries))
	}
	if entries[0].Message != "should be kept" {
		t.Errorf("unexpected entry: %+v", entries[0])
	}
}

func TestLoggerNotifiesWriters(t *testing.T) {
	l := NewLogger(10)
	var got Entry
	l.AddWriter(func(e Entry) { got = e })
	l.Log(Info, "test", "hello")
	if got.Message != "hello" {
		t.Errorf("writer not notified: %+v", got)
	}
}

func TestEventBusDispatchesSpecificThenGlobal(t *testing.T) {
	b := NewEventBus()
	var order []string
	b.On(SecurityDecision, func(Event) { order = append(order, "specific") })
	b.OnAny(func(Event) { order = append(order, "global") })

	b.Emit(SecurityDecision, map[string]any{"outcome": "ALLOW"})

	if len(order) != 2 || order[0] != "specific" || order[1] != "global" {
		t.Fatalf("dispatch order = %v, want [specific global]", order)
	}
}

func TestEventBusOnlyDispatchesMatchingKind(t *testing.T) {
	b := NewEventBus()
	fired := false
	b.On(RobotEstopEngaged, func(Event) { fired = true })

	b.Emit(RobotEstopReleased, nil)

	if fired {
		t.Errorf("handler for a different kind must not fire")
	}
}
