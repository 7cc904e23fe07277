package audit

import (
	"github.com/robfig/cron/v3"

	"github.com/tafyai/agentsh-security-core/internal/telemetry"
)

// FlushTicker emits a periodic audit.flush telemetry tick so an
// external log rotator has a low-frequency signal to key off; actual
// rotation of the audit file is out of scope here (spec's external
// interfaces leave rotation to the host environment).
type FlushTicker struct {
	cron *cron.Cron
	bus  *telemetry.EventBus
}

// NewFlushTicker schedules an @every 1m tick that emits
// telemetry.AuditFlush on bus.
func NewFlushTicker(bus *telemetry.EventBus) (*FlushTicker, error) {
	c := cron.New()
	_, err := c.AddFunc("@every 1m", func() {
		bus.Emit(telemetry.AuditFlush, map[string]any{})
	})
	if err != nil {
		return nil, err
	}
	return &FlushTicker{cron: c, bus: bus}, nil
}

// Start begins the schedule. Non-blocking.
func (f *FlushTicker) Start() { f.cron.Start() }

// Stop halts the schedule and waits for any in-flight tick to finish.
func (f *FlushTicker) Stop() { <-f.cron.Stop().Done() }
