package repository_test

import (
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/dichenko/myshadow/internal/db"
)

// setup in-memory DB
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	database, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		NowFunc: func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := db.Migrate(database); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return database
}

func createUser(t *testing.T, database *gorm.DB, tgID int64, code *string) *db.User {
	t.Helper()
	now := time.Now().UTC()
	u := db.User{TgID: tgID, FirstSeenAt: now, LastSeenAt: now, Visits: 1, PairCode: code}
	if err := database.Create(&u).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return &u
}

func createCatalog(t *testing.T, database *gorm.DB) (db.Block, db.Practice, db.Question) {
	t.Helper()
	block := db.Block{Title: "Touch", Order: 1}
	if err := database.Create(&block).Error; err != nil {
		t.Fatalf("failed to create block: %v", err)
	}
	practice := db.Practice{Title: "Massage"}
	if err := database.Create(&practice).Error; err != nil {
		t.Fatalf("failed to create practice: %v", err)
	}
	question := db.Question{BlockID: block.ID, PracticeID: practice.ID, Text: "Give a massage?", Order: 1, Role: db.RoleGiver}
	if err := database.Create(&question).Error; err != nil {
		t.Fatalf("failed to create question: %v", err)
	}
	return block, practice, question
}
