package mysql

import "courier/internal/domain"

// LocationFromColumns rebuilds a location from its nullable columns. A row
// with every column NULL has no location.
func LocationFromColumns(address, city *string, lat, lon *float64) *domain.Location {
	if address == nil && city == nil && lat == nil && lon == nil {
		return nil
	}
	loc := &domain.Location{}
	if address != nil {
		loc.Address = *address
	}
	if city != nil {
		loc.City = *city
	}
	if lat != nil && lon != nil {
		loc.Latitude = *lat
		loc.Longitude = *lon
	}
	return loc
}

// LocationColumns splits a location into address, city, latitude and
// longitude column values. Missing coordinates are written as NULL.
func LocationColumns(loc *domain.Location) (address, city, lat, lon interface{}) {
	if loc == nil {
		return nil, nil, nil, nil
	}
	address, city = loc.Address, loc.City
	if loc.HasCoordinates() {
		lat, lon = loc.Latitude, loc.Longitude
	}
	return address, city, lat, lon
}
