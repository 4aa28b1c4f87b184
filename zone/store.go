package zone

import "github.com/rustyeddy/breaker/market"

// Store owns the per-direction zone collections for one strategy engine
// instance. Zones are kept most-recent-first. Growth is bounded by a batch
// truncation rule: the collection may run up to twice the retention count,
// and once it exceeds that it is cut back to exactly the retention count
// in one step. Eviction is deliberately not one-at-a-time; downstream
// scans rely only on most-recent-first order, never on exact tail content.
type Store struct {
	retention int
	nextID    uint64
	bull      []*Zone
	bear      []*Zone
}

func NewStore(retention int) *Store {
	if retention < 1 {
		retention = 1
	}
	return &Store{retention: retention}
}

// Add assigns the next id, pushes the zone to the front of its directional
// collection, and applies the truncation rule. It returns the stored zone.
func (s *Store) Add(z *Zone) *Zone {
	s.nextID++
	z.ID = s.nextID

	col := s.collection(z.Direction)
	*col = append([]*Zone{z}, *col...)
	if len(*col) > 2*s.retention {
		*col = (*col)[:s.retention]
	}
	return z
}

// Zones returns the directional collection, most recent first. The slice
// is shared; callers must not reorder it.
func (s *Store) Zones(dir market.Direction) []*Zone {
	return *s.collection(dir)
}

// Len returns the size of the directional collection.
func (s *Store) Len(dir market.Direction) int {
	return len(*s.collection(dir))
}

// Retention returns the configured cap.
func (s *Store) Retention() int { return s.retention }

func (s *Store) collection(dir market.Direction) *[]*Zone {
	if dir == market.Up {
		return &s.bull
	}
	return &s.bear
}
