// Package triage holds the lead-list transforms used by the dashboard:
// search, presentation sort, and the completion toggle with its in-flight
// guard. Search and Sort are pure; they never mutate their input.
package triage

import (
	"sort"
	"strings"
	"sync"

	"stagewise/models"
)

// CompletedStatus is the single recognized sentinel. Any other stored value,
// including empty, means "not completed".
const CompletedStatus = "completed"

// ResetStatus is what a completed lead toggles back to. Toggling twice does
// not restore an arbitrary free-form original; it re-normalizes to "new".
const ResetStatus = "new"

// Completed reports whether a free-form status value counts as completed.
func Completed(status string) bool {
	return strings.EqualFold(status, CompletedStatus)
}

// NextStatus returns the status the completion toggle writes.
func NextStatus(current string) string {
	if Completed(current) {
		return ResetStatus
	}
	return CompletedStatus
}

// Search filters leads by a case-insensitive substring match over name, raw
// mobile number, and city. A blank query returns the input unchanged.
func Search(leads []models.Lead, query string) []models.Lead {
	if strings.TrimSpace(query) == "" {
		return leads
	}
	q := strings.ToLower(query)
	out := make([]models.Lead, 0, len(leads))
	for _, l := range leads {
		if strings.Contains(strings.ToLower(l.Name), q) ||
			strings.Contains(l.MobileNumber, q) ||
			strings.Contains(strings.ToLower(l.City), q) {
			out = append(out, l)
		}
	}
	return out
}

// Sort orders leads for the dashboard: completed leads after all
// non-completed leads, newest first within each partition. The sort is
// stable and works on a copy.
func Sort(leads []models.Lead) []models.Lead {
	out := append([]models.Lead(nil), leads...)
	sort.SliceStable(out, func(i, j int) bool {
		ci, cj := Completed(out[i].Status), Completed(out[j].Status)
		if ci != cj {
			return !ci
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// Guard ignores re-entrant completion toggles for a lead that already has
// one in flight. It tracks a single in-flight id, matching the dashboard's
// one-spinner-at-a-time behavior.
type Guard struct {
	mu       sync.Mutex
	id       uint
	inFlight bool
}

// Begin marks the lead's toggle as in flight. It returns false if a toggle
// for the same lead is already outstanding.
func (g *Guard) Begin(id uint) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.inFlight && g.id == id {
		return false
	}
	g.id = id
	g.inFlight = true
	return true
}

// End clears the in-flight marker if it still belongs to this lead.
func (g *Guard) End(id uint) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.inFlight && g.id == id {
		g.inFlight = false
	}
}
