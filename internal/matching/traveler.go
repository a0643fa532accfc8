package matching

import (
	"sort"
	"strings"
	"time"

	"courier/internal/domain"
)

const (
	DefaultRecentDepartureWindow = 7 * 24 * time.Hour
	DefaultMaxTravelerCandidates = 4
)

// TravelerMatcher is a greedy single-pass filter over a traveler pool. It
// makes no attempt to optimize assignments across concurrent orders.
type TravelerMatcher struct {
	recentDepartureWindow time.Duration
	maxCandidates         int
	now                   func() time.Time
}

func NewTravelerMatcher(recentDepartureWindow time.Duration, maxCandidates int) *TravelerMatcher {
	if recentDepartureWindow < 0 {
		recentDepartureWindow = DefaultRecentDepartureWindow
	}
	if maxCandidates <= 0 {
		maxCandidates = DefaultMaxTravelerCandidates
	}
	return &TravelerMatcher{
		recentDepartureWindow: recentDepartureWindow,
		maxCandidates:         maxCandidates,
		now:                   time.Now,
	}
}

// WithClock replaces the time source, mainly for tests.
func (m *TravelerMatcher) WithClock(now func() time.Time) *TravelerMatcher {
	m.now = now
	return m
}

// FindCandidates returns up to maxCandidates travelers for the order, soonest
// departure first.
func (m *TravelerMatcher) FindCandidates(info domain.OrderInfo, buyerCity string, pool []domain.Traveler) []domain.Traveler {
	destination := info.Destination(buyerCity)
	earliest := m.now().Add(-m.recentDepartureWindow)

	candidates := make([]domain.Traveler, 0, m.maxCandidates)
	for _, t := range pool {
		if t.Status != domain.TravelerStatusActive {
			continue
		}
		if !departsFrom(t, buyerCity) {
			continue
		}
		if !LocationsMatch(t.DestinationCity, destination) && !LocationsMatch(t.DestinationCity, buyerCity) {
			continue
		}
		if !m.feasibleDate(t, earliest, info.PreferredDeliveryDate) {
			continue
		}
		candidates = append(candidates, t)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].DepartureDate.Before(candidates[j].DepartureDate)
	})

	if len(candidates) > m.maxCandidates {
		candidates = candidates[:m.maxCandidates]
	}
	return candidates
}

func departsFrom(t domain.Traveler, buyerCity string) bool {
	if LocationsMatch(buyerCity, t.CurrentLocation) {
		return true
	}
	if buyerCity == "" {
		return false
	}
	return strings.Contains(strings.ToLower(t.CurrentLocation), strings.ToLower(buyerCity))
}

func (m *TravelerMatcher) feasibleDate(t domain.Traveler, earliest time.Time, preferred *time.Time) bool {
	if t.DepartureDate.IsZero() || t.DepartureDate.Before(earliest) {
		return false
	}
	if preferred != nil && t.DepartureDate.After(*preferred) {
		return false
	}
	return true
}
