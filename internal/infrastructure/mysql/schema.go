package mysql

import (
	"context"
	"database/sql"
	"fmt"
)

var schema = []struct {
	name  string
	query string
}{
	{"Buyers", `
	CREATE TABLE IF NOT EXISTS Buyers (
		id VARCHAR(36) NOT NULL PRIMARY KEY,
		name VARCHAR(150) NOT NULL,
		email VARCHAR(150) NOT NULL UNIQUE,
		city VARCHAR(100) NOT NULL DEFAULT '',
		createdAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`},
	{"Travelers", `
	CREATE TABLE IF NOT EXISTS Travelers (
		id VARCHAR(36) NOT NULL PRIMARY KEY,
		name VARCHAR(150) NOT NULL,
		currentLocation VARCHAR(255) NOT NULL,
		destinationCity VARCHAR(255) NOT NULL,
		departureDate DATETIME NOT NULL,
		arrivalDate DATETIME NULL,
		status VARCHAR(20) NOT NULL DEFAULT 'active',
		travellerType VARCHAR(50) NOT NULL DEFAULT '',
		INDEX idx_status_departure (status, departureDate)
	)`},
	{"Partners", `
	CREATE TABLE IF NOT EXISTS Partners (
		id VARCHAR(36) NOT NULL PRIMARY KEY,
		name VARCHAR(150) NOT NULL,
		phone VARCHAR(30) NOT NULL DEFAULT '',
		locationAddress VARCHAR(255) NULL,
		locationCity VARCHAR(100) NULL,
		locationLat DOUBLE NULL,
		locationLon DOUBLE NULL,
		status VARCHAR(20) NOT NULL DEFAULT 'pending',
		registrationType VARCHAR(50) NOT NULL,
		category VARCHAR(50) NOT NULL,
		deliveryMechanism VARCHAR(50) NOT NULL DEFAULT '',
		isOnline TINYINT(1) NOT NULL DEFAULT 0,
		isAvailable TINYINT(1) NOT NULL DEFAULT 0,
		currentLat DOUBLE NULL,
		currentLon DOUBLE NULL,
		lastSeen DATETIME NULL,
		availabilityVersion BIGINT NOT NULL DEFAULT 0,
		INDEX idx_dispatch (status, isOnline, isAvailable)
	)`},
	{"Orders", `
	CREATE TABLE IF NOT EXISTS Orders (
		id VARCHAR(36) NOT NULL PRIMARY KEY,
		orderNumber VARCHAR(32) NOT NULL UNIQUE,
		buyerId VARCHAR(36) NOT NULL,
		deliveryMethod VARCHAR(20) NOT NULL,
		productName VARCHAR(255) NOT NULL,
		description TEXT NULL,
		quantity VARCHAR(100) NOT NULL DEFAULT '',
		countryOfOrigin VARCHAR(100) NOT NULL DEFAULT '',
		deliveryDestination VARCHAR(255) NOT NULL DEFAULT '',
		preferredDeliveryDate DATETIME NULL,
		media JSON NULL,
		pickupAddress VARCHAR(255) NULL,
		pickupCity VARCHAR(100) NULL,
		pickupLat DOUBLE NULL,
		pickupLon DOUBLE NULL,
		deliveryAddress VARCHAR(255) NULL,
		deliveryCity VARCHAR(100) NULL,
		deliveryLat DOUBLE NULL,
		deliveryLon DOUBLE NULL,
		assignedTravelerId VARCHAR(36) NULL,
		assignedPartnerId VARCHAR(36) NULL,
		status VARCHAR(20) NOT NULL DEFAULT 'pending',
		deliveryConfirmed TINYINT(1) NOT NULL DEFAULT 0,
		deliveryConfirmedAt DATETIME NULL,
		paymentStatus VARCHAR(20) NOT NULL DEFAULT 'pending',
		itemValue DECIMAL(12,2) NOT NULL DEFAULT 0,
		deliveryFee DECIMAL(12,2) NOT NULL DEFAULT 0,
		serviceFee DECIMAL(12,2) NOT NULL DEFAULT 0,
		platformFee DECIMAL(12,2) NOT NULL DEFAULT 0,
		totalAmount DECIMAL(12,2) NOT NULL DEFAULT 0,
		currency VARCHAR(3) NOT NULL DEFAULT 'ETB',
		transactionId VARCHAR(36) NULL,
		createdAt DATETIME(3) NOT NULL,
		updatedAt DATETIME(3) NOT NULL,
		INDEX idx_buyer (buyerId),
		INDEX idx_status (status),
		CONSTRAINT chk_assignment CHECK (
			(assignedTravelerId IS NULL OR deliveryMethod = 'traveler') AND
			(assignedPartnerId IS NULL OR deliveryMethod = 'partner')
		)
	)`},
	{"OrderTrackingUpdates", `
	CREATE TABLE IF NOT EXISTS OrderTrackingUpdates (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		orderId VARCHAR(36) NOT NULL,
		status VARCHAR(20) NOT NULL,
		message VARCHAR(500) NOT NULL DEFAULT '',
		location VARCHAR(255) NOT NULL DEFAULT '',
		createdAt DATETIME(3) NOT NULL,
		FOREIGN KEY (orderId) REFERENCES Orders(id) ON DELETE CASCADE,
		INDEX idx_order (orderId)
	)`},
	{"Transactions", `
	CREATE TABLE IF NOT EXISTS Transactions (
		id VARCHAR(36) NOT NULL PRIMARY KEY,
		orderId VARCHAR(36) NOT NULL,
		buyerId VARCHAR(36) NOT NULL,
		transactionType VARCHAR(20) NOT NULL,
		paymentMethod VARCHAR(50) NOT NULL,
		amount DECIMAL(12,2) NOT NULL,
		currency VARCHAR(3) NOT NULL,
		deliveryFee DECIMAL(12,2) NOT NULL DEFAULT 0,
		serviceFee DECIMAL(12,2) NOT NULL DEFAULT 0,
		platformFee DECIMAL(12,2) NOT NULL DEFAULT 0,
		feesTotal DECIMAL(12,2) NOT NULL DEFAULT 0,
		status VARCHAR(20) NOT NULL DEFAULT 'pending',
		paymentReference VARCHAR(255) NOT NULL DEFAULT '',
		paymentProof VARCHAR(500) NOT NULL DEFAULT '',
		notes TEXT NULL,
		invoiceNumber VARCHAR(32) NULL UNIQUE,
		receiptNumber VARCHAR(32) NULL UNIQUE,
		paidAt DATETIME(3) NULL,
		createdAt DATETIME(3) NOT NULL,
		updatedAt DATETIME(3) NOT NULL,
		FOREIGN KEY (orderId) REFERENCES Orders(id),
		INDEX idx_order (orderId),
		INDEX idx_created (createdAt)
	)`},
}

// Tables lists schema tables in creation order.
func Tables() []string {
	names := make([]string, len(schema))
	for i, t := range schema {
		names[i] = t.name
	}
	return names
}

// Migrate creates any missing tables.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, tbl := range schema {
		if _, err := db.ExecContext(ctx, tbl.query); err != nil {
			return fmt.Errorf("creating table %s: %w", tbl.name, err)
		}
	}
	return nil
}
