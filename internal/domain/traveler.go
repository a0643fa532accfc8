package domain

import "time"

type TravelerStatus string

const (
	TravelerStatusActive    TravelerStatus = "active"
	TravelerStatusInactive  TravelerStatus = "inactive"
	TravelerStatusCompleted TravelerStatus = "completed"
	TravelerStatusCancelled TravelerStatus = "cancelled"
)

type Traveler struct {
	ID              string         `json:"id"`
	Name            string         `json:"name"`
	CurrentLocation string         `json:"currentLocation"`
	DestinationCity string         `json:"destinationCity"`
	DepartureDate   time.Time      `json:"departureDate"`
	ArrivalDate     *time.Time     `json:"arrivalDate,omitempty"`
	Status          TravelerStatus `json:"status"`
	TravellerType   string         `json:"travellerType,omitempty"`
}

type Buyer struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	City  string `json:"city"`
}
