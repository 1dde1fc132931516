package storage

import (
	"errors"
	"testing"

	"gorm.io/gorm"

	"github.com/s/levelup/internal/models"
)

// Гонка двух регистраций на один email должна упереться в uniqueIndex
// и прийти наверх как gorm.ErrDuplicatedKey, а не как сырая ошибка
// драйвера (для этого соединение открывается с TranslateError).
func TestCreateDuplicateEmail(t *testing.T) {
	db := setupTestDB(t)
	store := &UserStore{DB: db}

	if err := store.Create(&models.User{Name: "First", Email: "dup@levelup.com", PasswordHash: "x"}); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}

	err := store.Create(&models.User{Name: "Second", Email: "dup@levelup.com", PasswordHash: "y"})
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Fatalf("second Create = %v, want gorm.ErrDuplicatedKey", err)
	}
}

func TestUpdateDuplicateEmail(t *testing.T) {
	db := setupTestDB(t)
	store := &UserStore{DB: db}

	taken := models.User{Name: "Taken", Email: "taken@levelup.com", PasswordHash: "x"}
	other := models.User{Name: "Other", Email: "other@levelup.com", PasswordHash: "x"}
	if err := store.Create(&taken); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := store.Create(&other); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	_, err := store.Update(other.ID, map[string]interface{}{"email": "taken@levelup.com"})
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Fatalf("Update = %v, want gorm.ErrDuplicatedKey", err)
	}
}
