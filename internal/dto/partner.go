package dto

// UpdateAvailabilityRequest is a partial availability write. Version is the
// availability version the client last read and is required.
type UpdateAvailabilityRequest struct {
	IsOnline    *bool    `json:"isOnline,omitempty"`
	IsAvailable *bool    `json:"isAvailable,omitempty"`
	Latitude    *float64 `json:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty"`
	Version     *int64   `json:"version"`
}
