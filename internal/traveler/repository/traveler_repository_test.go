package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"courier/internal/domain"
	"courier/internal/errors"
	"courier/internal/testutil"
)

func TestNewMySQLTravelerRepository(t *testing.T) {
	db := &sql.DB{}
	repo := NewMySQLTravelerRepository(db)

	assert.NotNil(t, repo)
	assert.Equal(t, db, repo.db)
}

func insertTraveler(t *testing.T, db *sql.DB, id, status string, departure time.Time) {
	_, err := db.Exec(`
		INSERT INTO Travelers (id, name, currentLocation, destinationCity, departureDate, status)
		VALUES (?, ?, 'Addis Ababa', 'Nairobi', ?, ?)
	`, id, "Traveler "+id, departure, status)
	require.NoError(t, err)
}

func TestTravelerRepository_FindActive(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	now := time.Now().UTC().Truncate(time.Second)
	insertTraveler(t, db, "t-late", "active", now.Add(72*time.Hour))
	insertTraveler(t, db, "t-soon", "active", now.Add(24*time.Hour))
	insertTraveler(t, db, "t-off", "inactive", now.Add(24*time.Hour))

	travelers, err := NewMySQLTravelerRepository(db).FindActive(context.Background())
	require.NoError(t, err)
	require.Len(t, travelers, 2)
	assert.Equal(t, "t-soon", travelers[0].ID)
	assert.Equal(t, domain.TravelerStatusActive, travelers[1].Status)
	assert.Nil(t, travelers[0].ArrivalDate)
}

func TestTravelerRepository_FindByID_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	_, err := NewMySQLTravelerRepository(db).FindByID(context.Background(), "missing")

	_, ok := errors.IsNotFoundError(err)
	assert.True(t, ok)
}
