package domain

import "time"

type PartnerStatus string

const (
	PartnerStatusPending   PartnerStatus = "pending"
	PartnerStatusApproved  PartnerStatus = "approved"
	PartnerStatusRejected  PartnerStatus = "rejected"
	PartnerStatusSuspended PartnerStatus = "suspended"
)

const (
	RegistrationTypeInvestPartner = "Invest/Partner"
	PartnerCategoryDelivery       = "Delivery Partner"
)

type Availability struct {
	IsOnline        bool       `json:"isOnline"`
	IsAvailable     bool       `json:"isAvailable"`
	CurrentLocation *Location  `json:"currentLocation,omitempty"`
	LastSeen        *time.Time `json:"lastSeen,omitempty"`
	Version         int64      `json:"version"`
}

type Partner struct {
	ID                string        `json:"id"`
	Name              string        `json:"name"`
	Phone             string        `json:"phone,omitempty"`
	Location          *Location     `json:"location,omitempty"`
	Availability      Availability  `json:"availability"`
	Status            PartnerStatus `json:"status"`
	RegistrationType  string        `json:"registrationType"`
	Category          string        `json:"partner"`
	DeliveryMechanism string        `json:"deliveryMechanism,omitempty"`
}

// EffectiveLocation prefers the live ping over the registered address.
func (p Partner) EffectiveLocation() (*Location, bool) {
	if p.Availability.CurrentLocation.HasCoordinates() {
		return p.Availability.CurrentLocation, true
	}
	if p.Location.HasCoordinates() {
		return p.Location, true
	}
	return nil, false
}

// Dispatchable reports whether the partner may be offered delivery work.
func (p Partner) Dispatchable() bool {
	return p.Status == PartnerStatusApproved &&
		p.RegistrationType == RegistrationTypeInvestPartner &&
		p.Category == PartnerCategoryDelivery &&
		p.Availability.IsOnline &&
		p.Availability.IsAvailable
}

// AvailabilityUpdate carries a partial availability write. Version must equal
// the stored version for the write to apply.
type AvailabilityUpdate struct {
	IsOnline    *bool
	IsAvailable *bool
	Latitude    *float64
	Longitude   *float64
	Version     int64
}

func (p *Partner) ApplyAvailability(u AvailabilityUpdate, now time.Time) {
	if u.IsOnline != nil {
		p.Availability.IsOnline = *u.IsOnline
	}
	if u.IsAvailable != nil {
		p.Availability.IsAvailable = *u.IsAvailable
	}
	if u.Latitude != nil && u.Longitude != nil {
		p.Availability.CurrentLocation = &Location{
			Latitude:  *u.Latitude,
			Longitude: *u.Longitude,
		}
	}
	p.Availability.LastSeen = &now
	p.Availability.Version = u.Version + 1
}
