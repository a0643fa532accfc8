package repository

import (
	"context"
	"database/sql"
	"fmt"

	"courier/internal/domain"
	"courier/internal/errors"
	"courier/internal/infrastructure/mysql"
)

const partnerColumns = `
	id, name, phone, locationAddress, locationCity, locationLat, locationLon,
	status, registrationType, category, deliveryMechanism,
	isOnline, isAvailable, currentLat, currentLon, lastSeen, availabilityVersion`

type MySQLPartnerRepository struct {
	db *sql.DB
}

func NewMySQLPartnerRepository(db *sql.DB) *MySQLPartnerRepository {
	return &MySQLPartnerRepository{db: db}
}

func (r *MySQLPartnerRepository) FindByID(ctx context.Context, id string) (*domain.Partner, error) {
	query := `SELECT ` + partnerColumns + ` FROM Partners WHERE id = ?`

	partner, err := scanPartner(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(fmt.Sprintf("partner with id %s not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying partner by id: %w", err)
	}

	return partner, nil
}

// FindDispatchable returns approved delivery partners that are online and
// available right now.
func (r *MySQLPartnerRepository) FindDispatchable(ctx context.Context) ([]domain.Partner, error) {
	query := `SELECT ` + partnerColumns + `
		FROM Partners
		WHERE status = ? AND registrationType = ? AND category = ?
		  AND isOnline = 1 AND isAvailable = 1
	`

	rows, err := r.db.QueryContext(ctx, query,
		domain.PartnerStatusApproved, domain.RegistrationTypeInvestPartner, domain.PartnerCategoryDelivery)
	if err != nil {
		return nil, fmt.Errorf("querying dispatchable partners: %w", err)
	}
	defer rows.Close()

	partners := []domain.Partner{}
	for rows.Next() {
		partner, err := scanPartner(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning partner: %w", err)
		}
		partners = append(partners, *partner)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating partners: %w", err)
	}

	return partners, nil
}

// UpdateAvailability writes the partner's availability when the stored
// version still equals expectedVersion. A lost race is a ConflictError.
func (r *MySQLPartnerRepository) UpdateAvailability(ctx context.Context, partner *domain.Partner, expectedVersion int64) error {
	query := `
		UPDATE Partners
		SET isOnline = ?, isAvailable = ?, currentLat = ?, currentLon = ?, lastSeen = ?, availabilityVersion = ?
		WHERE id = ? AND availabilityVersion = ?
	`

	a := partner.Availability
	var lat, lon interface{}
	if a.CurrentLocation.HasCoordinates() {
		lat, lon = a.CurrentLocation.Latitude, a.CurrentLocation.Longitude
	}

	result, err := r.db.ExecContext(ctx, query,
		a.IsOnline, a.IsAvailable, lat, lon, a.LastSeen, a.Version,
		partner.ID, expectedVersion,
	)
	if err != nil {
		return fmt.Errorf("updating partner availability: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return errors.NewConflictError(
			fmt.Sprintf("availability of partner %s changed since version %d", partner.ID, expectedVersion))
	}

	return nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanPartner(s scanner) (*domain.Partner, error) {
	var (
		p                        domain.Partner
		address, city            *string
		lat, lon, curLat, curLon *float64
	)

	err := s.Scan(
		&p.ID, &p.Name, &p.Phone, &address, &city, &lat, &lon,
		&p.Status, &p.RegistrationType, &p.Category, &p.DeliveryMechanism,
		&p.Availability.IsOnline, &p.Availability.IsAvailable, &curLat, &curLon,
		&p.Availability.LastSeen, &p.Availability.Version,
	)
	if err != nil {
		return nil, err
	}

	p.Location = mysql.LocationFromColumns(address, city, lat, lon)
	p.Availability.CurrentLocation = mysql.LocationFromColumns(nil, nil, curLat, curLon)

	return &p, nil
}
