package repositories

import (
	"context"
	"errors"
	"testing"

	"github.com/civicsight/internal/models"
)

func TestUserCreateRejectsDuplicateEmail(t *testing.T) {
	repo := NewGormUserRepository(openTestDB(t))
	ctx := context.Background()

	if err := repo.Create(ctx, &models.User{ID: "u1", Name: "Asha", Email: "asha@example.com", PasswordHash: "x", Role: models.RoleCitizen}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	err := repo.Create(ctx, &models.User{ID: "u2", Name: "Other", Email: "asha@example.com", PasswordHash: "y", Role: models.RoleCitizen})
	if !errors.Is(err, ErrEmailExists) {
		t.Fatalf("expected ErrEmailExists, got %v", err)
	}

	u, err := repo.FindByEmail(ctx, "asha@example.com")
	if err != nil || u.ID != "u1" {
		t.Fatalf("FindByEmail: %v, %+v", err, u)
	}
	if _, err := repo.FindByID(ctx, "nobody"); !errors.Is(err, ErrRecordNotFound) {
		t.Errorf("expected ErrRecordNotFound, got %v", err)
	}
}

func TestUserFindByIDs(t *testing.T) {
	repo := NewGormUserRepository(openTestDB(t))
	ctx := context.Background()
	_ = repo.Create(ctx, &models.User{ID: "u1", Name: "A", Email: "a@example.com", PasswordHash: "x", Role: models.RoleCitizen})
	_ = repo.Create(ctx, &models.User{ID: "u2", Name: "B", Email: "b@example.com", PasswordHash: "x", Role: models.RoleAuthority})

	users, err := repo.FindByIDs(ctx, []string{"u1", "u2", "ghost"})
	if err != nil {
		t.Fatalf("FindByIDs: %v", err)
	}
	if len(users) != 2 || users["u2"].Role != models.RoleAuthority {
		t.Errorf("unexpected users: %+v", users)
	}
	if _, ok := users["ghost"]; ok {
		t.Error("missing ids should not appear in result")
	}

	none, err := repo.FindByIDs(ctx, nil)
	if err != nil || len(none) != 0 {
		t.Errorf("expected empty map, got %v, %v", none, err)
	}
}
