package notify

import (
	"sync"
	"time"
)

// RateWindowTracker bounds outbound sends per recipient with two
// independent sliding windows: one trailing minute and one trailing hour.
// Reserve is atomic per recipient: prune, check and record happen under
// one lock, so concurrent callers can never both be admitted into the
// last remaining slot.
type RateWindowTracker struct {
	perMinute int
	perHour   int

	mu      sync.Mutex
	windows map[string]*recipientWindow

	now func() time.Time // replaced in tests
}

type recipientWindow struct {
	minute []time.Time
	hour   []time.Time
}

// NewRateWindowTracker creates a tracker with the given per-minute and
// per-hour limits. Recipient entries are created lazily on first Reserve.
func NewRateWindowTracker(perMinute, perHour int) *RateWindowTracker {
	return &RateWindowTracker{
		perMinute: perMinute,
		perHour:   perHour,
		windows:   make(map[string]*recipientWindow),
		now:       time.Now,
	}
}

// Reserve attempts to claim a send slot for the recipient. It prunes
// expired timestamps from both windows, denies without mutating state if
// either window is at its limit, and otherwise records the attempt and
// admits.
func (t *RateWindowTracker) Reserve(recipientKey string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	w, ok := t.windows[recipientKey]
	if !ok {
		w = &recipientWindow{}
		t.windows[recipientKey] = w
	}

	w.minute = prune(w.minute, now.Add(-time.Minute))
	w.hour = prune(w.hour, now.Add(-time.Hour))

	if len(w.minute) >= t.perMinute || len(w.hour) >= t.perHour {
		if len(w.minute) == 0 && len(w.hour) == 0 {
			delete(t.windows, recipientKey)
		}
		return false
	}

	w.minute = append(w.minute, now)
	w.hour = append(w.hour, now)
	return true
}

// prune drops timestamps at or before cutoff. Slices are append-ordered,
// so the survivors are a suffix.
func prune(stamps []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(stamps) && !stamps[i].After(cutoff) {
		i++
	}
	if i == 0 {
		return stamps
	}
	return append(stamps[:0], stamps[i:]...)
}
