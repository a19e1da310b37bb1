package database

import (
	"context"
	"fmt"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	// Load env
	_ "github.com/joho/godotenv/autoload"

	m "github.com/traci1003/CareerCatalyst/internal/model"
)

var testDBInstance *DBinstanceStruct
var teardown func(context.Context, ...testcontainers.TerminateOption) error

// Exported test users & credentials
var (
	TestUser1 m.User
	TestUser2 m.User

	// TestLinkedInCred1 is a well-formed, unexpired token credential for TestUser1
	TestLinkedInCred1 m.PlatformCredential
	// TestIndeedCred1 is a well-formed publisher/key credential for TestUser1
	TestIndeedCred1 m.PlatformCredential
	// TestExpiredLinkedInCred2 is a token credential for TestUser2 whose expiry is in the past
	TestExpiredLinkedInCred2 m.PlatformCredential
)

// GetTestDB starts a PostgreSQL test container and returns a teardown function,
// the DB instance, and any error encountered during setup.
func GetTestDB() (func(context.Context, ...testcontainers.TerminateOption) error, *DBinstanceStruct, error) {

	if testDBInstance != nil && teardown != nil {
		return teardown, testDBInstance, nil
	}

	// Database configuration
	var (
		dbName = "database"
		dbPwd  = "password"
		dbUser = "user"
	)

	dbContainer, err := postgres.Run(
		context.Background(),
		"postgres:latest",
		postgres.WithDatabase(dbName),
		postgres.WithUsername(dbUser),
		postgres.WithPassword(dbPwd),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Second)),
	)
	if err != nil {
		return nil, nil, err
	}

	dbHost, err := dbContainer.Host(context.Background())
	if err != nil {
		return dbContainer.Terminate, nil, err
	}

	dbPort, err := dbContainer.MappedPort(context.Background(), nat.Port("5432/tcp"))
	if err != nil {
		return dbContainer.Terminate, nil, err
	}

	config := &DBConfig{
		useConstr: true,
		Constr:    fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable", dbHost, dbPort.Port(), dbUser, dbPwd, dbName),
	}

	db, err := NewDBInstance(config)
	if err != nil {
		return dbContainer.Terminate, nil, err
	}

	// Seed sample users and platform credentials
	if err := seedTestData(db); err != nil {
		_ = dbContainer.Terminate(context.Background())
		return nil, nil, err
	}

	testDBInstance = db
	teardown = dbContainer.Terminate

	return dbContainer.Terminate, db, nil
}

// seedTestData inserts sample users and credential rows if empty.
func seedTestData(db *DBinstanceStruct) error {
	var userCount int64
	if err := db.Model(&m.User{}).Count(&userCount).Error; err != nil {
		return err
	}
	if userCount > 0 {
		return loadTestData(db)
	}

	users := []m.User{
		{
			ID:       uuid.New(),
			Username: "job_seeker_1",
			Email:    ptr("seeker1@example.com"),
		},
		{
			ID:       uuid.New(),
			Username: "job_seeker_2",
			Email:    ptr("seeker2@example.com"),
		},
	}
	if err := db.Create(&users).Error; err != nil {
		return err
	}
	TestUser1 = users[0]
	TestUser2 = users[1]

	futureExpiry := time.Now().Add(24 * time.Hour)
	pastExpiry := time.Now().Add(-time.Hour)

	creds := []m.PlatformCredential{
		{
			UserID:       TestUser1.ID,
			Platform:     m.PlatformLinkedIn,
			AccessToken:  "seed-linkedin-token-1",
			RefreshToken: "seed-linkedin-refresh-1",
			ExpiresAt:    &futureExpiry,
			Scopes:       pq.StringArray{"r_jobs", "w_applications"},
		},
		{
			UserID:      TestUser1.ID,
			Platform:    m.PlatformIndeed,
			PublisherID: "seed-publisher-1",
			APIKey:      "seed-api-key-1",
		},
		{
			UserID:      TestUser2.ID,
			Platform:    m.PlatformLinkedIn,
			AccessToken: "seed-linkedin-token-2",
			ExpiresAt:   &pastExpiry,
		},
	}
	if err := db.Create(&creds).Error; err != nil {
		return err
	}
	TestLinkedInCred1 = creds[0]
	TestIndeedCred1 = creds[1]
	TestExpiredLinkedInCred2 = creds[2]

	return nil
}

// loadTestData populates exported variables when records already exist.
func loadTestData(db *DBinstanceStruct) error {
	if err := db.First(&TestUser1, "username = ?", "job_seeker_1").Error; err != nil {
		return err
	}
	if err := db.First(&TestUser2, "username = ?", "job_seeker_2").Error; err != nil {
		return err
	}

	_ = db.First(&TestLinkedInCred1, "user_id = ? AND platform = ?", TestUser1.ID, m.PlatformLinkedIn).Error
	_ = db.First(&TestIndeedCred1, "user_id = ? AND platform = ?", TestUser1.ID, m.PlatformIndeed).Error
	_ = db.First(&TestExpiredLinkedInCred2, "user_id = ? AND platform = ?", TestUser2.ID, m.PlatformLinkedIn).Error

	return nil
}

// ptr helper
func ptr[T any](v T) *T { return &v }
