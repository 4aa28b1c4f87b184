// Package session implements the wall-clock gates: trading session windows
// and news blackout windows, both as time-of-day ranges in one timezone.
package session

import (
	"fmt"
	"strings"
	"time"
)

// Window is a time-of-day range. End before start means the window wraps
// past midnight.
type Window struct {
	start int // minutes since midnight
	end   int
}

// ParseWindow parses "HH:MM-HH:MM". A malformed window is a configuration
// error the caller must treat as fatal at startup.
func ParseWindow(s string) (Window, error) {
	parts := strings.Split(strings.TrimSpace(s), "-")
	if len(parts) != 2 {
		return Window{}, fmt.Errorf("session: window %q must be HH:MM-HH:MM", s)
	}
	start, err := parseClock(parts[0])
	if err != nil {
		return Window{}, fmt.Errorf("session: window %q: %w", s, err)
	}
	end, err := parseClock(parts[1])
	if err != nil {
		return Window{}, fmt.Errorf("session: window %q: %w", s, err)
	}
	return Window{start: start, end: end}, nil
}

func parseClock(s string) (int, error) {
	var h, m int
	if _, err := fmt.Sscanf(strings.TrimSpace(s), "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("bad clock %q: %w", s, err)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("clock %q out of range", s)
	}
	return h*60 + m, nil
}

// Contains reports whether the minute-of-day falls inside the window.
func (w Window) Contains(t time.Time) bool {
	m := t.Hour()*60 + t.Minute()
	if w.start <= w.end {
		return m >= w.start && m < w.end
	}
	// Overnight wrap, e.g. 22:00-06:00.
	return m >= w.start || m < w.end
}

// Gate answers the two wall-clock questions the entry path asks. Both
// window sets are normalized to a single timezone at construction.
type Gate struct {
	loc      *time.Location
	sessions []Window
	news     []Window
}

// NewGate parses the window specs; any malformed window or unknown
// timezone fails construction. An empty session list means always open,
// an empty news list means never blacked out.
func NewGate(tz string, sessions, news []string) (*Gate, error) {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("session: timezone %q: %w", tz, err)
	}

	g := &Gate{loc: loc}
	for _, s := range sessions {
		w, err := ParseWindow(s)
		if err != nil {
			return nil, err
		}
		g.sessions = append(g.sessions, w)
	}
	for _, s := range news {
		w, err := ParseWindow(s)
		if err != nil {
			return nil, err
		}
		g.news = append(g.news, w)
	}
	return g, nil
}

// IsSessionOpen reports whether now falls inside any trading window.
func (g *Gate) IsSessionOpen(now time.Time) bool {
	if len(g.sessions) == 0 {
		return true
	}
	local := now.In(g.loc)
	for _, w := range g.sessions {
		if w.Contains(local) {
			return true
		}
	}
	return false
}

// IsNewsBlackout reports whether now falls inside any blackout window.
func (g *Gate) IsNewsBlackout(now time.Time) bool {
	local := now.In(g.loc)
	for _, w := range g.news {
		if w.Contains(local) {
			return true
		}
	}
	return false
}
