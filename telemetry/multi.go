package telemetry

import "github.com/rustyeddy/breaker/zone"

// Multi fans zone events out to several notifiers.
type Multi []zone.Notifier

func (m Multi) ZoneCreated(z zone.Zone) {
	for _, n := range m {
		n.ZoneCreated(z)
	}
}

func (m Multi) ZoneTouched(z zone.Zone) {
	for _, n := range m {
		n.ZoneTouched(z)
	}
}

func (m Multi) ZoneInvalidated(z zone.Zone) {
	for _, n := range m {
		n.ZoneInvalidated(z)
	}
}
