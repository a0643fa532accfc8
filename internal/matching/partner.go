package matching

import (
	"sort"

	"courier/internal/domain"
	"courier/internal/geo"
)

// NearbyPartner is a partner annotated with its distance from the search origin.
type NearbyPartner struct {
	domain.Partner
	Distance     float64 `json:"distance"`
	DistanceText string  `json:"distanceText"`
}

// FindNearbyPartners keeps partners whose effective coordinate lies within
// radiusKm of the origin, nearest first. Business eligibility is the
// caller's concern.
func FindNearbyPartners(partners []domain.Partner, originLat, originLon, radiusKm float64) []NearbyPartner {
	type ranked struct {
		partner domain.Partner
		km      float64
	}

	within := make([]ranked, 0, len(partners))
	for _, p := range partners {
		loc, ok := p.EffectiveLocation()
		if !ok {
			continue
		}
		km := geo.DistanceKm(originLat, originLon, loc.Latitude, loc.Longitude)
		if km > radiusKm {
			continue
		}
		within = append(within, ranked{partner: p, km: km})
	}

	sort.SliceStable(within, func(i, j int) bool { return within[i].km < within[j].km })

	result := make([]NearbyPartner, len(within))
	for i, r := range within {
		result[i] = NearbyPartner{
			Partner:      r.partner,
			Distance:     geo.Round2(r.km),
			DistanceText: geo.FormatDistance(r.km),
		}
	}
	return result
}
