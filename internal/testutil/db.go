// Package testutil provides fixtures shared by package tests.
package testutil

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"skillgrid/internal/db"
	"skillgrid/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var dbSeq atomic.Int64

// OpenDB returns a migrated in-memory database private to the test.
func OpenDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, dbSeq.Add(1))
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("OpenDB() failed: %v", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("OpenDB() failed: %v", err)
	}
	// 保持连接，否则内存库会被释放
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("OpenDB() migrate failed: %v", err)
	}
	return gdb
}

// OpenFileDB returns a migrated on-disk database that allows several open
// connections, for tests that run transactions from more than one goroutine.
func OpenFileDB(t *testing.T) *gorm.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "skillgrid.db")
	dsn := "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_txlock=immediate"
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("OpenFileDB() failed: %v", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("OpenFileDB() failed: %v", err)
	}
	sqlDB.SetMaxOpenConns(4)
	t.Cleanup(func() { sqlDB.Close() })

	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("OpenFileDB() migrate failed: %v", err)
	}
	return gdb
}

// CreateUser inserts a verified profile with the given role and credits.
func CreateUser(t *testing.T, gdb *gorm.DB, id, name string, role models.Role, credits int) models.User {
	t.Helper()
	usr := models.User{
		ID:            id,
		Name:          name,
		Email:         id + "@campus.test",
		Role:          role,
		TotalCredits:  credits,
		EmailVerified: true,
	}
	if err := gdb.Create(&usr).Error; err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

// CreateEvent inserts a catalog event with an even skill split.
func CreateEvent(t *testing.T, gdb *gorm.DB, id, title, date string, credits int) models.Event {
	t.Helper()
	n := credits / 5
	ev := models.Event{
		ID:       id,
		Title:    title,
		Date:     date,
		Category: models.CategoryWorkshop,
		Credits:  credits,
		Status:   models.EventStatusUpcoming,
		SkillSplit: models.SkillMetrics{
			Leadership: n, Creativity: n, Teamwork: n + credits%5, Technical: n, Communication: n,
		},
		Description: "About " + title,
	}
	if err := gdb.Create(&ev).Error; err != nil {
		t.Fatalf("CreateEvent() failed: %v", err)
	}
	return ev
}
