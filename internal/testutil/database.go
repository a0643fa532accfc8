package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"testing"

	_ "github.com/go-sql-driver/mysql"

	"courier/internal/infrastructure/mysql"
)

const defaultTestDSN = "root:@tcp(localhost:3306)/courier_test?parseTime=true&loc=UTC&clientFoundRows=true"

// SetupTestDB opens the integration database named by TEST_MYSQL_DSN and
// skips the test when it is unreachable.
func SetupTestDB(t *testing.T) *sql.DB {
	dsn := os.Getenv("TEST_MYSQL_DSN")
	if dsn == "" {
		dsn = defaultTestDSN
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("test database not available: %v", err)
	}

	return db
}

// SetupTestTables creates the schema used by the repositories.
func SetupTestTables(t *testing.T, db *sql.DB) {
	if err := mysql.Migrate(context.Background(), db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
}

// CleanupTestDB empties every table, children first, and closes the pool.
func CleanupTestDB(t *testing.T, db *sql.DB) {
	if db == nil {
		return
	}

	tables := mysql.Tables()
	for i := len(tables) - 1; i >= 0; i-- {
		if _, err := db.Exec(fmt.Sprintf("DELETE FROM %s", tables[i])); err != nil {
			t.Logf("failed to clean table %s: %v", tables[i], err)
		}
	}

	db.Close()
}

func SeedBuyer(t *testing.T, db *sql.DB, id, city string) {
	_, err := db.Exec(`INSERT INTO Buyers (id, name, email, city) VALUES (?, ?, ?, ?)`,
		id, "Buyer "+id, id+"@example.com", city)
	if err != nil {
		t.Fatalf("failed to seed buyer: %v", err)
	}
}

// PartnerSeed describes a row for SeedPartner. Zero coordinates are stored
// as NULL.
type PartnerSeed struct {
	ID        string
	City      string
	Lat, Lon  float64
	Mechanism string
	Status    string
	Online    bool
	Available bool
}

func SeedPartner(t *testing.T, db *sql.DB, p PartnerSeed) {
	var lat, lon interface{}
	if p.Lat != 0 || p.Lon != 0 {
		lat, lon = p.Lat, p.Lon
	}
	status := p.Status
	if status == "" {
		status = "approved"
	}

	_, err := db.Exec(`
		INSERT INTO Partners (id, name, phone, locationAddress, locationCity, locationLat, locationLon,
			status, registrationType, category, deliveryMechanism, isOnline, isAvailable)
		VALUES (?, ?, '+251900000000', ?, ?, ?, ?, ?, 'Invest/Partner', 'Delivery Partner', ?, ?, ?)
	`, p.ID, "Partner "+p.ID, p.City, p.City, lat, lon, status, p.Mechanism, p.Online, p.Available)
	if err != nil {
		t.Fatalf("failed to seed partner: %v", err)
	}
}
