package main

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stockimage/internal/db"
	"github.com/stockimage/internal/service"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestSeedCreatesOrderedVariedImages(t *testing.T) {
	dsn := fmt.Sprintf("file:seed-%d?mode=memory&cache=shared", time.Now().UnixNano())
	gdb, err := db.Open(dsn, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	defer func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	}()

	storage, err := service.NewLocalStorage(t.TempDir(), "/uploads")
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}
	images := service.NewImageService(gdb, storage)

	count, err := seed(context.Background(), gdb, images, "demo@example.com", "demo123")
	if err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	if count != len(seedImages) {
		t.Fatalf("expected %d images, got %d", len(seedImages), count)
	}

	again, err := seed(context.Background(), gdb, images, "demo@example.com", "demo123")
	if err != nil || again != count {
		t.Fatalf("second seed should be a no-op, got %d (%v)", again, err)
	}

	var user db.User
	if err := gdb.Where("email = ?", "demo@example.com").First(&user).Error; err != nil {
		t.Fatalf("demo user missing: %v", err)
	}
	items, err := images.List(user.ID)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}

	hasLandscape, hasPortrait, hasSquare := false, false, false
	for i, item := range items {
		if item.SortOrder != i {
			t.Fatalf("expected order %d, got %d", i, item.SortOrder)
		}
		if item.Width <= 0 || item.Height <= 0 {
			t.Fatalf("expected dimensions for item %d", item.ID)
		}
		ratio := float64(item.Width) / float64(item.Height)
		switch {
		case ratio > 1.15:
			hasLandscape = true
		case ratio < 0.9:
			hasPortrait = true
		default:
			hasSquare = true
		}
	}
	if !hasLandscape || !hasPortrait || !hasSquare {
		t.Fatalf("expected landscape, portrait, and square aspect ratios to exist")
	}
}
