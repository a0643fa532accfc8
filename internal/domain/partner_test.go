package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(b bool) *bool {
	return &b
}

func dispatchablePartner() Partner {
	return Partner{
		ID:               "partner-1",
		Status:           PartnerStatusApproved,
		RegistrationType: RegistrationTypeInvestPartner,
		Category:         PartnerCategoryDelivery,
		Availability:     Availability{IsOnline: true, IsAvailable: true},
	}
}

func TestPartner_Dispatchable(t *testing.T) {
	assert.True(t, dispatchablePartner().Dispatchable())

	offline := dispatchablePartner()
	offline.Availability.IsOnline = false
	assert.False(t, offline.Dispatchable())

	pending := dispatchablePartner()
	pending.Status = PartnerStatusPending
	assert.False(t, pending.Dispatchable())

	wrongCategory := dispatchablePartner()
	wrongCategory.Category = "Storage Partner"
	assert.False(t, wrongCategory.Dispatchable())
}

func TestPartner_EffectiveLocation_PrefersLivePing(t *testing.T) {
	p := dispatchablePartner()
	p.Location = &Location{Latitude: 9.0, Longitude: 38.7}
	p.Availability.CurrentLocation = &Location{Latitude: 9.03, Longitude: 38.74}

	loc, ok := p.EffectiveLocation()
	require.True(t, ok)
	assert.Equal(t, 9.03, loc.Latitude)
}

func TestPartner_EffectiveLocation_FallsBackToStatic(t *testing.T) {
	p := dispatchablePartner()
	p.Location = &Location{Latitude: 9.0, Longitude: 38.7}

	loc, ok := p.EffectiveLocation()
	require.True(t, ok)
	assert.Equal(t, 9.0, loc.Latitude)
}

func TestPartner_EffectiveLocation_Missing(t *testing.T) {
	_, ok := dispatchablePartner().EffectiveLocation()
	assert.False(t, ok)
}

func TestPartner_ApplyAvailability(t *testing.T) {
	p := dispatchablePartner()
	p.Availability.Version = 3
	now := time.Now()
	lat, lon := 9.01, 38.76

	p.ApplyAvailability(AvailabilityUpdate{
		IsAvailable: boolPtr(false),
		Latitude:    &lat,
		Longitude:   &lon,
		Version:     3,
	}, now)

	assert.True(t, p.Availability.IsOnline)
	assert.False(t, p.Availability.IsAvailable)
	require.NotNil(t, p.Availability.CurrentLocation)
	assert.Equal(t, 9.01, p.Availability.CurrentLocation.Latitude)
	assert.Equal(t, int64(4), p.Availability.Version)
	assert.Equal(t, now, *p.Availability.LastSeen)
}
