package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/starwishes/Nav/internal/models"
)

func TestUserStoreCreateAndCheckPassword(t *testing.T) {
	db := testDB(t)
	s := NewUserStore(db)
	ctx := context.Background()

	u, err := s.Create(ctx, "alice", "secret-pass", models.LevelMember)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if u.Username != "alice" || u.Level != models.LevelMember {
		t.Errorf("got %+v", u)
	}
	if u.PasswordHash == "secret-pass" {
		t.Error("password stored in plain text")
	}
	if !s.CheckPassword(u, "secret-pass") {
		t.Error("CheckPassword rejected the right password")
	}
	if s.CheckPassword(u, "wrong") {
		t.Error("CheckPassword accepted a wrong password")
	}

	if _, err := s.Create(ctx, "alice", "other", models.LevelUser); !errors.Is(err, ErrConflict) {
		t.Errorf("duplicate: got %v, want ErrConflict", err)
	}

	found, err := s.FindByUsername(ctx, "nobody")
	if err != nil {
		t.Fatalf("FindByUsername: %v", err)
	}
	if found != nil {
		t.Errorf("unknown user: got %+v, want nil", found)
	}
}

func TestUserStoreUpdateRenamesSessions(t *testing.T) {
	db := testDB(t)
	s := NewUserStore(db)
	sessions := NewSessionStore(db)
	ctx := context.Background()

	if _, err := s.Create(ctx, "bob", "pw", models.LevelUser); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := s.Create(ctx, "carol", "pw", models.LevelUser); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := sessions.Create(ctx, "bob", "10.0.0.1", "test", time.Hour); err != nil {
		t.Fatalf("session Create: %v", err)
	}

	if _, err := s.Update(ctx, "bob", models.UserUpdate{Username: ptr("carol")}); !errors.Is(err, ErrConflict) {
		t.Errorf("rename onto taken name: got %v, want ErrConflict", err)
	}

	u, err := s.Update(ctx, "bob", models.UserUpdate{Username: ptr("robert"), Level: ptr(models.LevelAdmin)})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if u.Username != "robert" || !u.IsAdmin() {
		t.Errorf("got %+v", u)
	}

	list, err := sessions.ListByUsername(ctx, "robert")
	if err != nil {
		t.Fatalf("ListByUsername: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("sessions after rename: got %d, want 1", len(list))
	}

	if _, err := s.Update(ctx, "ghost", models.UserUpdate{}); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown user: got %v, want ErrNotFound", err)
	}
}

func TestUserStoreDelete(t *testing.T) {
	db := testDB(t)
	s := NewUserStore(db)
	ctx := context.Background()

	if _, err := s.Create(ctx, "dave", "pw", models.LevelUser); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := s.Delete(ctx, "dave"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := s.Delete(ctx, "dave"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete: got %v, want ErrNotFound", err)
	}
}

func TestUserStoreImportMany(t *testing.T) {
	db := testDB(t)
	s := NewUserStore(db)
	ctx := context.Background()

	if _, err := s.Create(ctx, "admin", "pw", models.LevelAdmin); err != nil {
		t.Fatalf("Create: %v", err)
	}

	n, err := s.ImportMany(ctx, []ImportedUser{
		{Username: "admin", PasswordHash: "x", Level: models.LevelUser},
		{Username: "erin", PasswordHash: "$2a$10$abcdefghijklmnopqrstuv", Level: models.LevelMember},
	})
	if err != nil {
		t.Fatalf("ImportMany: %v", err)
	}
	if n != 1 {
		t.Errorf("imported: got %d, want 1", n)
	}

	admin, _ := s.FindByUsername(ctx, "admin")
	if admin == nil || admin.Level != models.LevelAdmin {
		t.Errorf("existing account overwritten: %+v", admin)
	}
	count, err := s.Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 2 {
		t.Errorf("Count: got %d, want 2", count)
	}
}
