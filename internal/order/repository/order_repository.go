package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"courier/internal/domain"
	"courier/internal/errors"
	"courier/internal/infrastructure/mysql"
)

const (
	defaultListLimit = 100
	maxListLimit     = 500
)

const orderColumns = `
	id, orderNumber, buyerId, deliveryMethod,
	productName, description, quantity, countryOfOrigin, deliveryDestination, preferredDeliveryDate, media,
	pickupAddress, pickupCity, pickupLat, pickupLon,
	deliveryAddress, deliveryCity, deliveryLat, deliveryLon,
	assignedTravelerId, assignedPartnerId, status, deliveryConfirmed, deliveryConfirmedAt,
	paymentStatus, itemValue, deliveryFee, serviceFee, platformFee, totalAmount, currency,
	transactionId, createdAt, updatedAt`

type MySQLOrderRepository struct {
	db *sql.DB
}

func NewMySQLOrderRepository(db *sql.DB) *MySQLOrderRepository {
	return &MySQLOrderRepository{db: db}
}

func (r *MySQLOrderRepository) Insert(ctx context.Context, order *domain.Order) error {
	media, err := json.Marshal(order.Info.Media)
	if err != nil {
		return fmt.Errorf("encoding order media: %w", err)
	}

	pickupAddr, pickupCity, pickupLat, pickupLon := mysql.LocationColumns(order.PickupLocation)
	deliveryAddr, deliveryCity, deliveryLat, deliveryLon := mysql.LocationColumns(order.DeliveryLocation)

	query := `INSERT INTO Orders (` + orderColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	return mysql.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, query,
			order.ID, order.OrderNumber, order.BuyerID, order.DeliveryMethod,
			order.Info.ProductName, order.Info.Description, order.Info.Quantity, order.Info.CountryOfOrigin,
			order.Info.DeliveryDestination, order.Info.PreferredDeliveryDate, media,
			pickupAddr, pickupCity, pickupLat, pickupLon,
			deliveryAddr, deliveryCity, deliveryLat, deliveryLon,
			order.AssignedTravelerID, order.AssignedPartnerID, order.Status, order.DeliveryConfirmed, order.DeliveryConfirmedAt,
			order.PaymentStatus, order.Pricing.ItemValue, order.Pricing.DeliveryFee, order.Pricing.ServiceFee,
			order.Pricing.PlatformFee, order.Pricing.TotalAmount, order.Pricing.Currency,
			order.TransactionID, order.CreatedAt, order.UpdatedAt,
		)
		if mysql.IsDuplicateKey(err) {
			return errors.NewConflictError(fmt.Sprintf("order number %s already exists", order.OrderNumber))
		}
		if err != nil {
			return fmt.Errorf("inserting order: %w", err)
		}

		for _, update := range order.TrackingUpdates {
			if err := insertTrackingUpdate(ctx, tx, order.ID, update); err != nil {
				return err
			}
		}
		return nil
	})
}

// FindByID accepts either the order id or its human-readable order number.
func (r *MySQLOrderRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM Orders WHERE id = ? OR orderNumber = ? LIMIT 1`

	order, err := scanOrder(r.db.QueryRowContext(ctx, query, id, id))
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(fmt.Sprintf("order with id %s not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying order by id: %w", err)
	}

	tracking, err := r.findTracking(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	order.TrackingUpdates = tracking[order.ID]
	if order.TrackingUpdates == nil {
		order.TrackingUpdates = []domain.TrackingUpdate{}
	}

	return order, nil
}

// Find lists orders newest first.
func (r *MySQLOrderRepository) Find(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	var (
		conditions []string
		args       []interface{}
	)
	if filter.Status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, filter.Status)
	}
	if filter.DeliveryMethod != "" {
		conditions = append(conditions, "deliveryMethod = ?")
		args = append(args, filter.DeliveryMethod)
	}
	if filter.BuyerID != "" {
		conditions = append(conditions, "buyerId = ?")
		args = append(args, filter.BuyerID)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	query := `SELECT ` + orderColumns + ` FROM Orders`
	if len(conditions) > 0 {
		query += ` WHERE ` + strings.Join(conditions, " AND ")
	}
	query += ` ORDER BY createdAt DESC LIMIT ?`
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying orders: %w", err)
	}
	defer rows.Close()

	orders := []domain.Order{}
	ids := []string{}
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning order: %w", err)
		}
		orders = append(orders, *order)
		ids = append(ids, order.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating orders: %w", err)
	}

	tracking, err := r.findTracking(ctx, ids...)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		orders[i].TrackingUpdates = tracking[orders[i].ID]
		if orders[i].TrackingUpdates == nil {
			orders[i].TrackingUpdates = []domain.TrackingUpdate{}
		}
	}

	return orders, nil
}

func (r *MySQLOrderRepository) ExistsOrderNumber(ctx context.Context, orderNumber string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM Orders WHERE orderNumber = ?)`, orderNumber).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking order number: %w", err)
	}
	return exists, nil
}

// SaveTransition persists a status change and its tracking update in one
// transaction. The write only applies while the stored status still equals
// expected; otherwise the order was changed concurrently and a
// ConflictError is returned.
func (r *MySQLOrderRepository) SaveTransition(ctx context.Context, order *domain.Order, expected domain.OrderStatus, update domain.TrackingUpdate) error {
	query := `
		UPDATE Orders
		SET status = ?, assignedTravelerId = ?, assignedPartnerId = ?,
		    deliveryConfirmed = ?, deliveryConfirmedAt = ?, updatedAt = ?
		WHERE id = ? AND status = ?
	`

	return mysql.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, query,
			order.Status, order.AssignedTravelerID, order.AssignedPartnerID,
			order.DeliveryConfirmed, order.DeliveryConfirmedAt, order.UpdatedAt,
			order.ID, expected,
		)
		if err != nil {
			return fmt.Errorf("updating order status: %w", err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("getting rows affected: %w", err)
		}

		if rowsAffected == 0 {
			return errors.NewConflictError(
				fmt.Sprintf("order %s is no longer %s", order.OrderNumber, expected))
		}

		return insertTrackingUpdate(ctx, tx, order.ID, update)
	})
}

func insertTrackingUpdate(ctx context.Context, tx *sql.Tx, orderID string, update domain.TrackingUpdate) error {
	query := `INSERT INTO OrderTrackingUpdates (orderId, status, message, location, createdAt) VALUES (?, ?, ?, ?, ?)`

	if _, err := tx.ExecContext(ctx, query, orderID, update.Status, update.Message, update.Location, update.Timestamp); err != nil {
		return fmt.Errorf("inserting tracking update: %w", err)
	}
	return nil
}

func (r *MySQLOrderRepository) findTracking(ctx context.Context, orderIDs ...string) (map[string][]domain.TrackingUpdate, error) {
	result := make(map[string][]domain.TrackingUpdate, len(orderIDs))
	if len(orderIDs) == 0 {
		return result, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(orderIDs)), ",")
	query := `
		SELECT orderId, status, message, location, createdAt
		FROM OrderTrackingUpdates
		WHERE orderId IN (` + placeholders + `)
		ORDER BY id ASC
	`

	args := make([]interface{}, len(orderIDs))
	for i, id := range orderIDs {
		args[i] = id
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying tracking updates: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			orderID string
			update  domain.TrackingUpdate
		)
		if err := rows.Scan(&orderID, &update.Status, &update.Message, &update.Location, &update.Timestamp); err != nil {
			return nil, fmt.Errorf("scanning tracking update: %w", err)
		}
		result[orderID] = append(result[orderID], update)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tracking updates: %w", err)
	}

	return result, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanOrder(s scanner) (*domain.Order, error) {
	var (
		o                          domain.Order
		description                sql.NullString
		preferred, confirmedAt     *time.Time
		media                      []byte
		pickupAddr, pickupCity     *string
		deliveryAddr, deliveryCity *string
		pickupLat, pickupLon       *float64
		deliveryLat, deliveryLon   *float64
	)

	err := s.Scan(
		&o.ID, &o.OrderNumber, &o.BuyerID, &o.DeliveryMethod,
		&o.Info.ProductName, &description, &o.Info.Quantity, &o.Info.CountryOfOrigin,
		&o.Info.DeliveryDestination, &preferred, &media,
		&pickupAddr, &pickupCity, &pickupLat, &pickupLon,
		&deliveryAddr, &deliveryCity, &deliveryLat, &deliveryLon,
		&o.AssignedTravelerID, &o.AssignedPartnerID, &o.Status, &o.DeliveryConfirmed, &confirmedAt,
		&o.PaymentStatus, &o.Pricing.ItemValue, &o.Pricing.DeliveryFee, &o.Pricing.ServiceFee,
		&o.Pricing.PlatformFee, &o.Pricing.TotalAmount, &o.Pricing.Currency,
		&o.TransactionID, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	o.Info.Description = description.String
	o.Info.PreferredDeliveryDate = preferred
	o.DeliveryConfirmedAt = confirmedAt
	if len(media) > 0 {
		if err := json.Unmarshal(media, &o.Info.Media); err != nil {
			return nil, fmt.Errorf("decoding order media: %w", err)
		}
	}
	o.PickupLocation = mysql.LocationFromColumns(pickupAddr, pickupCity, pickupLat, pickupLon)
	o.DeliveryLocation = mysql.LocationFromColumns(deliveryAddr, deliveryCity, deliveryLat, deliveryLon)

	return &o, nil
}
