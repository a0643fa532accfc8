package repository

import (
	"context"
	"database/sql"
	"fmt"

	"courier/internal/domain"
	"courier/internal/errors"
)

const travelerColumns = `id, name, currentLocation, destinationCity, departureDate, arrivalDate, status, travellerType`

type MySQLTravelerRepository struct {
	db *sql.DB
}

func NewMySQLTravelerRepository(db *sql.DB) *MySQLTravelerRepository {
	return &MySQLTravelerRepository{db: db}
}

func (r *MySQLTravelerRepository) FindByID(ctx context.Context, id string) (*domain.Traveler, error) {
	query := `SELECT ` + travelerColumns + ` FROM Travelers WHERE id = ?`

	traveler, err := scanTraveler(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(fmt.Sprintf("traveler with id %s not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying traveler by id: %w", err)
	}

	return traveler, nil
}

// FindActive returns the active traveler pool. Matching rules are applied by
// the caller.
func (r *MySQLTravelerRepository) FindActive(ctx context.Context) ([]domain.Traveler, error) {
	query := `SELECT ` + travelerColumns + ` FROM Travelers WHERE status = ? ORDER BY departureDate ASC`

	rows, err := r.db.QueryContext(ctx, query, domain.TravelerStatusActive)
	if err != nil {
		return nil, fmt.Errorf("querying active travelers: %w", err)
	}
	defer rows.Close()

	travelers := []domain.Traveler{}
	for rows.Next() {
		traveler, err := scanTraveler(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning traveler: %w", err)
		}
		travelers = append(travelers, *traveler)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating travelers: %w", err)
	}

	return travelers, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanTraveler(s scanner) (*domain.Traveler, error) {
	var t domain.Traveler
	err := s.Scan(&t.ID, &t.Name, &t.CurrentLocation, &t.DestinationCity,
		&t.DepartureDate, &t.ArrivalDate, &t.Status, &t.TravellerType)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
