package services

import (
	"fmt"
	"testing"
	"time"

	"gopolls/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB opens a fresh in-memory database with the full schema.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	// A single connection keeps every session on the same in-memory DB
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get raw connection: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&models.User{},
		&models.Poll{},
		&models.Choice{},
		&models.Vote{},
	)
	if err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return db
}

func createTestUser(t *testing.T, db *gorm.DB, username string) models.User {
	t.Helper()

	user := models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "not-a-real-hash",
		CreatedAt:    time.Now(),
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("Failed to create test user %q: %v", username, err)
	}
	return user
}

// createTestPoll inserts a poll with the given window directly, bypassing
// the authoring validation so tests can build closed and upcoming polls.
func createTestPoll(t *testing.T, db *gorm.DB, ownerID uint, start, end time.Time, choiceTexts ...string) models.Poll {
	t.Helper()

	poll := models.Poll{
		Question:    fmt.Sprintf("Test poll by user %d", ownerID),
		CreatedDate: time.Now(),
		StartDate:   start,
		EndDate:     end,
		CreatedByID: ownerID,
		IsActive:    true,
	}
	if err := db.Create(&poll).Error; err != nil {
		t.Fatalf("Failed to create test poll: %v", err)
	}

	for _, text := range choiceTexts {
		choice := models.Choice{PollID: poll.ID, ChoiceText: text}
		if err := db.Create(&choice).Error; err != nil {
			t.Fatalf("Failed to create test choice %q: %v", text, err)
		}
		poll.Choices = append(poll.Choices, choice)
	}

	return poll
}

func countRows(t *testing.T, db *gorm.DB, model interface{}) int64 {
	t.Helper()

	var count int64
	if err := db.Model(model).Count(&count).Error; err != nil {
		t.Fatalf("Failed to count rows: %v", err)
	}
	return count
}

func assertCategory(t *testing.T, err error, want ErrorCategory) {
	t.Helper()

	if err == nil {
		t.Fatalf("Expected %s error, got nil", want)
	}
	got, ok := CategoryOf(err)
	if !ok {
		t.Fatalf("Expected %s error, got uncategorized: %v", want, err)
	}
	if got != want {
		t.Fatalf("Expected %s error, got %s: %v", want, got, err)
	}
}
