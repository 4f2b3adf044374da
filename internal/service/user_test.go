package service

import (
	"context"
	"errors"
	"testing"

	"github.com/Rohitkumar43/coditor/internal/apperror"
	"github.com/Rohitkumar43/coditor/internal/repository/sqlite"
)

func newTestUserService(t *testing.T) *UserService {
	t.Helper()
	db, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewUserService(db, testLogger())
}

func TestUserSync(t *testing.T) {
	svc := newTestUserService(t)
	ctx := context.Background()

	user, err := svc.SyncUser(ctx, "sub-1", "  ada@example.com ", " Ada Lovelace ")
	if err != nil {
		t.Fatalf("SyncUser() error = %v", err)
	}
	if user.Email != "ada@example.com" || user.Name != "Ada Lovelace" {
		t.Errorf("fields not trimmed: %+v", user)
	}

	found, err := svc.GetUser(ctx, "sub-1")
	if err != nil {
		t.Fatalf("GetUser() error = %v", err)
	}
	if found.ID != user.ID {
		t.Errorf("GetUser() ID = %q, want %q", found.ID, user.ID)
	}
}

func TestUserSync_BlankSubject(t *testing.T) {
	svc := newTestUserService(t)

	_, err := svc.SyncUser(context.Background(), "  ", "a@example.com", "A")
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("error = %v, want ErrValidation", err)
	}
}

func TestUpgradeToPro(t *testing.T) {
	svc := newTestUserService(t)
	ctx := context.Background()

	if _, err := svc.SyncUser(ctx, "sub-1", "a@example.com", "A"); err != nil {
		t.Fatalf("SyncUser() error = %v", err)
	}
	if err := svc.UpgradeToPro(ctx, "sub-1", "cust-1", "order-1"); err != nil {
		t.Fatalf("UpgradeToPro() error = %v", err)
	}

	user, err := svc.GetUser(ctx, "sub-1")
	if err != nil {
		t.Fatalf("GetUser() error = %v", err)
	}
	if !user.IsPro || user.ProSince == nil {
		t.Errorf("user not upgraded: %+v", user)
	}
}

func TestUpgradeToPro_UnknownSubject(t *testing.T) {
	svc := newTestUserService(t)

	err := svc.UpgradeToPro(context.Background(), "nobody", "c", "o")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}
