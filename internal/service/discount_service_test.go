package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/bookvine/internal/models"
	"github.com/bookvine/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func newDiscountTestService(t *testing.T, name string) (*DiscountService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Discount{}, &models.DiscountUsage{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return NewDiscountService(repository.NewDiscountRepository(db)), db
}

func TestValidateDiscountNotFound(t *testing.T) {
	svc, _ := newDiscountTestService(t, "discount_not_found")
	if _, err := svc.Validate("NOPE", 1, time.Now()); !errors.Is(err, ErrDiscountNotFound) {
		t.Fatalf("expected ErrDiscountNotFound, got %v", err)
	}
	if _, err := svc.Validate("   ", 1, time.Now()); !errors.Is(err, ErrDiscountNotFound) {
		t.Fatalf("expected ErrDiscountNotFound for blank code, got %v", err)
	}
}

func TestValidateDiscountCaseInsensitive(t *testing.T) {
	svc, db := newDiscountTestService(t, "discount_case")
	if err := db.Create(&models.Discount{Code: "SAVE10", Type: "percent", PctOff: 10, IsActive: true}).Error; err != nil {
		t.Fatalf("create discount failed: %v", err)
	}
	discount, err := svc.Validate("save10", 1, time.Now())
	if err != nil {
		t.Fatalf("Validate error: %v", err)
	}
	if discount.PctOff != 10 {
		t.Fatalf("expected pct_off 10, got %d", discount.PctOff)
	}
}

func TestValidateDiscountInactive(t *testing.T) {
	svc, db := newDiscountTestService(t, "discount_inactive")
	if err := db.Create(&models.Discount{Code: "OFF", Type: "percent", PctOff: 10, IsActive: false}).Error; err != nil {
		t.Fatalf("create discount failed: %v", err)
	}
	if _, err := svc.Validate("OFF", 1, time.Now()); !errors.Is(err, ErrDiscountInactive) {
		t.Fatalf("expected ErrDiscountInactive, got %v", err)
	}
}

func TestValidateDiscountWindow(t *testing.T) {
	svc, db := newDiscountTestService(t, "discount_window")
	now := time.Now()
	future := now.Add(time.Hour)
	past := now.Add(-time.Hour)

	if err := db.Create(&models.Discount{Code: "SOON", Type: "percent", PctOff: 10, IsActive: true, StartsAt: &future}).Error; err != nil {
		t.Fatalf("create discount failed: %v", err)
	}
	if _, err := svc.Validate("SOON", 1, now); !errors.Is(err, ErrDiscountNotStarted) {
		t.Fatalf("expected ErrDiscountNotStarted, got %v", err)
	}

	if err := db.Create(&models.Discount{Code: "GONE", Type: "percent", PctOff: 10, IsActive: true, EndsAt: &past}).Error; err != nil {
		t.Fatalf("create discount failed: %v", err)
	}
	if _, err := svc.Validate("GONE", 1, now); !errors.Is(err, ErrDiscountExpired) {
		t.Fatalf("expected ErrDiscountExpired, got %v", err)
	}
}

func TestValidateDiscountExhausted(t *testing.T) {
	svc, db := newDiscountTestService(t, "discount_exhausted")
	if err := db.Create(&models.Discount{Code: "FULL", Type: "percent", PctOff: 10, IsActive: true, UsageLimit: 2, UsedCount: 2}).Error; err != nil {
		t.Fatalf("create discount failed: %v", err)
	}
	if _, err := svc.Validate("FULL", 1, time.Now()); !errors.Is(err, ErrDiscountExhausted) {
		t.Fatalf("expected ErrDiscountExhausted, got %v", err)
	}
}

func TestValidateDiscountPerUserLimit(t *testing.T) {
	svc, db := newDiscountTestService(t, "discount_per_user")
	discount := models.Discount{Code: "ONCE", Type: "percent", PctOff: 10, IsActive: true, PerUserLimit: 1}
	if err := db.Create(&discount).Error; err != nil {
		t.Fatalf("create discount failed: %v", err)
	}
	if err := db.Create(&models.DiscountUsage{DiscountID: discount.ID, UserID: 1, OrderID: 100}).Error; err != nil {
		t.Fatalf("create usage failed: %v", err)
	}

	if _, err := svc.Validate("ONCE", 1, time.Now()); !errors.Is(err, ErrDiscountUserLimit) {
		t.Fatalf("expected ErrDiscountUserLimit, got %v", err)
	}
	// 其他用户不受影响
	if _, err := svc.Validate("ONCE", 2, time.Now()); err != nil {
		t.Fatalf("expected other user to pass, got %v", err)
	}
}

func TestCreateDiscountValidation(t *testing.T) {
	svc, _ := newDiscountTestService(t, "discount_create")
	if _, err := svc.Create(CreateDiscountInput{Code: "", PctOff: 10}); !errors.Is(err, ErrDiscountInvalid) {
		t.Fatalf("expected ErrDiscountInvalid for empty code, got %v", err)
	}
	if _, err := svc.Create(CreateDiscountInput{Code: "BAD", PctOff: 0}); !errors.Is(err, ErrDiscountInvalid) {
		t.Fatalf("expected ErrDiscountInvalid for zero pct, got %v", err)
	}
	if _, err := svc.Create(CreateDiscountInput{Code: "BAD", PctOff: 101}); !errors.Is(err, ErrDiscountInvalid) {
		t.Fatalf("expected ErrDiscountInvalid for pct over 100, got %v", err)
	}

	created, err := svc.Create(CreateDiscountInput{Code: "good15", PctOff: 15, IsActive: true})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if created.Code != "GOOD15" {
		t.Fatalf("expected code uppercased, got %s", created.Code)
	}

	if _, err := svc.Create(CreateDiscountInput{Code: "GOOD15", PctOff: 20}); !errors.Is(err, ErrDiscountCodeExists) {
		t.Fatalf("expected ErrDiscountCodeExists, got %v", err)
	}
}
