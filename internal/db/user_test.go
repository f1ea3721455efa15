package db

import (
	"fmt"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:db-%d?mode=memory&cache=shared", time.Now().UnixNano())
	gdb, err := Open(dsn, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return gdb
}

func TestEnsureUserCreatesOnce(t *testing.T) {
	gdb := openTestDB(t)

	if err := EnsureUser(gdb, "  Admin@Example.com ", "secret123"); err != nil {
		t.Fatalf("ensure user failed: %v", err)
	}
	if err := EnsureUser(gdb, "admin@example.com", "another"); err != nil {
		t.Fatalf("second ensure user failed: %v", err)
	}

	var users []User
	if err := gdb.Find(&users).Error; err != nil {
		t.Fatalf("failed to list users: %v", err)
	}
	if len(users) != 1 {
		t.Fatalf("expected 1 user, got %d", len(users))
	}
	if users[0].Email != "admin@example.com" {
		t.Fatalf("expected normalized email, got %q", users[0].Email)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(users[0].Password), []byte("secret123")); err != nil {
		t.Fatalf("expected first password to be kept: %v", err)
	}
}

func TestEnsureUserSkipsBlankInput(t *testing.T) {
	if err := EnsureUser(nil, "", "x"); err != nil {
		t.Fatalf("expected blank email to be ignored, got %v", err)
	}
	if err := EnsureUser(nil, "a@b.c", "x"); err == nil {
		t.Fatalf("expected error without database")
	}
}
