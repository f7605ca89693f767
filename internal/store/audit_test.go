package store

import (
	"context"
	"fmt"
	"testing"
)

func TestAuditStoreLogAndList(t *testing.T) {
	db := testDB(t)
	s := NewAuditStore(db)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		s.Log(ctx, "admin", "ITEM_DELETE", fmt.Sprintf("item %d", i), "127.0.0.1")
	}
	s.Log(ctx, "bob", "LOGIN", "", "10.0.0.1")

	page, err := s.List(ctx, 1, 4)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if page.Total != 6 || len(page.Logs) != 4 {
		t.Fatalf("got total %d, %d logs, want 6, 4", page.Total, len(page.Logs))
	}
	if page.Logs[0].Username != "bob" {
		t.Errorf("newest entry: got %q, want %q", page.Logs[0].Username, "bob")
	}

	page, err = s.List(ctx, 2, 4)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(page.Logs) != 2 {
		t.Errorf("second page: got %d logs, want 2", len(page.Logs))
	}

	mine, err := s.ListByUsername(ctx, "admin", 10)
	if err != nil {
		t.Fatalf("ListByUsername: %v", err)
	}
	if len(mine) != 5 || mine[0].Details != "item 4" {
		t.Errorf("got %+v", mine)
	}
}

func TestAuditStoreRetention(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping retention test in short mode")
	}
	db := testDB(t)
	s := NewAuditStore(db)
	ctx := context.Background()

	for i := 0; i < AuditRetention+5; i++ {
		s.Log(ctx, "admin", "TEST", "", "")
	}
	page, err := s.List(ctx, 1, 1)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if page.Total != AuditRetention {
		t.Errorf("total: got %d, want %d", page.Total, AuditRetention)
	}
}
