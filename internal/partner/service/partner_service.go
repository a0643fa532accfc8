package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"courier/internal/domain"
	apperrors "courier/internal/errors"
	"courier/internal/geo"
	"courier/internal/matching"
)

type PartnerRepository interface {
	FindByID(ctx context.Context, id string) (*domain.Partner, error)
	FindDispatchable(ctx context.Context) ([]domain.Partner, error)
	UpdateAvailability(ctx context.Context, partner *domain.Partner, expectedVersion int64) error
}

type FeeCalculator interface {
	Known(mechanism string) bool
	Fee(mechanism string, distanceKm float64) float64
}

// SearchQuery describes a nearby-partner search. A zero RadiusKm uses the
// service default and a zero Limit returns every match.
type SearchQuery struct {
	Latitude  float64
	Longitude float64
	RadiusKm  float64
	City      string
	Limit     int
}

type FeeQuote struct {
	Mechanism  string  `json:"mechanism"`
	DistanceKm float64 `json:"distanceKm"`
	BaseFee    float64 `json:"baseFee"`
	Fee        float64 `json:"fee"`
}

type PartnerService struct {
	repo            PartnerRepository
	fees            FeeCalculator
	defaultRadiusKm float64
	logger          *zap.Logger
	now             func() time.Time
}

func NewPartnerService(repo PartnerRepository, fees FeeCalculator, defaultRadiusKm float64, logger *zap.Logger) *PartnerService {
	return &PartnerService{
		repo:            repo,
		fees:            fees,
		defaultRadiusKm: defaultRadiusKm,
		logger:          logger,
		now:             func() time.Time { return time.Now().UTC() },
	}
}

// SearchNearby returns dispatchable partners within the radius of the
// origin, nearest first. Results are a snapshot; nothing is reserved.
func (s *PartnerService) SearchNearby(ctx context.Context, q SearchQuery) ([]matching.NearbyPartner, error) {
	var details []apperrors.ValidationDetail
	if !geo.ValidCoordinate(q.Latitude, q.Longitude) {
		details = append(details, apperrors.ValidationDetail{
			Field:   "latitude/longitude",
			Message: "coordinates must be within [-90, 90] and [-180, 180]",
		})
	}
	if q.RadiusKm < 0 {
		details = append(details, apperrors.ValidationDetail{Field: "radius", Message: "radius must be non-negative"})
	}
	if len(details) > 0 {
		return nil, apperrors.NewValidationError("invalid search parameters", details...)
	}

	radius := q.RadiusKm
	if radius == 0 {
		radius = s.defaultRadiusKm
	}

	pool, err := s.repo.FindDispatchable(ctx)
	if err != nil {
		return nil, err
	}

	eligible := make([]domain.Partner, 0, len(pool))
	for _, p := range pool {
		if !p.Dispatchable() {
			continue
		}
		if q.City != "" && !inCity(p, q.City) {
			continue
		}
		eligible = append(eligible, p)
	}

	nearby := matching.FindNearbyPartners(eligible, q.Latitude, q.Longitude, radius)
	if q.Limit > 0 && len(nearby) > q.Limit {
		nearby = nearby[:q.Limit]
	}

	s.logger.Debug("nearby partner search",
		zap.Float64("latitude", q.Latitude),
		zap.Float64("longitude", q.Longitude),
		zap.Float64("radiusKm", radius),
		zap.Int("pool", len(pool)),
		zap.Int("found", len(nearby)),
	)

	return nearby, nil
}

func inCity(p domain.Partner, city string) bool {
	if p.Location == nil {
		return false
	}
	return matching.LocationsMatch(city, p.Location.City) || matching.LocationsMatch(city, p.Location.Address)
}

// UpdateAvailability applies a partner's own availability write. The update
// must carry the version it was based on; stale versions are rejected.
func (s *PartnerService) UpdateAvailability(ctx context.Context, partnerID string, update domain.AvailabilityUpdate) (*domain.Partner, error) {
	if err := validateAvailability(update); err != nil {
		return nil, err
	}

	partner, err := s.repo.FindByID(ctx, partnerID)
	if err != nil {
		return nil, err
	}

	if partner.Availability.Version != update.Version {
		return nil, apperrors.NewConflictError(fmt.Sprintf(
			"availability version %d is stale, current version is %d", update.Version, partner.Availability.Version))
	}

	partner.ApplyAvailability(update, s.now())

	if err := s.repo.UpdateAvailability(ctx, partner, update.Version); err != nil {
		return nil, err
	}

	s.logger.Info("partner availability updated",
		zap.String("partnerId", partnerID),
		zap.Bool("isOnline", partner.Availability.IsOnline),
		zap.Bool("isAvailable", partner.Availability.IsAvailable),
		zap.Int64("version", partner.Availability.Version),
	)

	return partner, nil
}

func validateAvailability(u domain.AvailabilityUpdate) error {
	var details []apperrors.ValidationDetail

	if (u.Latitude == nil) != (u.Longitude == nil) {
		details = append(details, apperrors.ValidationDetail{
			Field:   "latitude/longitude",
			Message: "latitude and longitude must be provided together",
		})
	} else if u.Latitude != nil && !geo.ValidCoordinate(*u.Latitude, *u.Longitude) {
		details = append(details, apperrors.ValidationDetail{
			Field:   "latitude/longitude",
			Message: "coordinates must be within [-90, 90] and [-180, 180]",
		})
	}

	if u.Version < 0 {
		details = append(details, apperrors.ValidationDetail{Field: "version", Message: "version must be non-negative"})
	}

	if len(details) > 0 {
		return apperrors.NewValidationError("invalid availability update", details...)
	}
	return nil
}

// QuoteFee prices a trip for a known delivery mechanism.
func (s *PartnerService) QuoteFee(mechanism string, distanceKm float64) (*FeeQuote, error) {
	var details []apperrors.ValidationDetail
	if !s.fees.Known(mechanism) {
		details = append(details, apperrors.ValidationDetail{
			Field:   "mechanism",
			Message: fmt.Sprintf("unknown delivery mechanism %q", mechanism),
		})
	}
	if distanceKm < 0 {
		details = append(details, apperrors.ValidationDetail{Field: "distance", Message: "distance must be non-negative"})
	}
	if len(details) > 0 {
		return nil, apperrors.NewValidationError("invalid fee quote request", details...)
	}

	return &FeeQuote{
		Mechanism:  mechanism,
		DistanceKm: distanceKm,
		BaseFee:    s.fees.Fee(mechanism, 0),
		Fee:        geo.Round2(s.fees.Fee(mechanism, distanceKm)),
	}, nil
}
