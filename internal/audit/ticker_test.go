package audit

import (
	"testing"

	"github.com/tafyai/agentsh-security-core/internal/telemetry"
)

func TestFlushTickerSchedulesWithoutError(t *testing.T) {
	bus := telemetry.NewEventBus()
	ticker, err := NewFlushTicker(bus)
	if err != nil {
		t.Fatalf("NewFlushTicker: %v", err)
	}
	ticker.Start()
	ticker.Stop()
}
