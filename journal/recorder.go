package journal

import (
	"log/slog"
	"time"

	"github.com/rustyeddy/breaker/internal/id"
	"github.com/rustyeddy/breaker/zone"
)

// Recorder stamps records with the run ID and fresh record IDs before
// handing them to the backend. It also implements zone.Notifier so it can
// be hung directly off the zone manager. Write failures are logged, never
// propagated; journaling must not stop the engine.
type Recorder struct {
	j   Journal
	run Run
	log *slog.Logger
}

func NewRecorder(j Journal, run Run, log *slog.Logger) *Recorder {
	if log == nil {
		log = slog.Default()
	}
	return &Recorder{j: j, run: run, log: log}
}

func (r *Recorder) Run() Run { return r.run }

// Trade records a closed trade, minting an ID when the caller left it
// empty.
func (r *Recorder) Trade(t TradeRecord) {
	if t.ID == "" {
		t.ID = id.New()
	}
	t.RunID = r.run.ID
	if t.Instrument == "" {
		t.Instrument = r.run.Instrument
	}
	if err := r.j.RecordTrade(t); err != nil {
		r.log.Warn("journal trade", "err", err)
	}
}

// Equity records an account snapshot.
func (r *Recorder) Equity(at time.Time, balance, equity float64) {
	if err := r.j.RecordEquity(EquitySnapshot{
		RunID:   r.run.ID,
		Time:    at,
		Balance: balance,
		Equity:  equity,
	}); err != nil {
		r.log.Warn("journal equity", "err", err)
	}
}

func (r *Recorder) ZoneCreated(z zone.Zone)     { r.zoneEvent("created", z, z.AnchorTime) }
func (r *Recorder) ZoneTouched(z zone.Zone)     { r.zoneEvent("touched", z, time.Now()) }
func (r *Recorder) ZoneInvalidated(z zone.Zone) { r.zoneEvent("invalidated", z, z.InvalidatedAt) }

func (r *Recorder) zoneEvent(event string, z zone.Zone, at time.Time) {
	if at.IsZero() {
		at = time.Now()
	}
	if err := r.j.RecordZoneEvent(ZoneEvent{
		RunID:     r.run.ID,
		Time:      at,
		ZoneID:    z.ID,
		Event:     event,
		Direction: z.Direction,
		Low:       z.Low,
		High:      z.High,
	}); err != nil {
		r.log.Warn("journal zone event", "err", err)
	}
}
