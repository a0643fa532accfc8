package repository

import (
	"context"
	"database/sql"
	"fmt"

	"courier/internal/domain"
	"courier/internal/errors"
)

type MySQLBuyerRepository struct {
	db *sql.DB
}

func NewMySQLBuyerRepository(db *sql.DB) *MySQLBuyerRepository {
	return &MySQLBuyerRepository{db: db}
}

func (r *MySQLBuyerRepository) FindByID(ctx context.Context, id string) (*domain.Buyer, error) {
	query := `SELECT id, name, email, city FROM Buyers WHERE id = ?`

	var buyer domain.Buyer
	err := r.db.QueryRowContext(ctx, query, id).Scan(&buyer.ID, &buyer.Name, &buyer.Email, &buyer.City)

	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(fmt.Sprintf("buyer with id %s not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying buyer by id: %w", err)
	}

	return &buyer, nil
}
