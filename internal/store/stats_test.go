package store

import (
	"context"
	"testing"
	"time"

	"github.com/starwishes/Nav/internal/models"
)

func TestStatsStoreRecordVisit(t *testing.T) {
	db := testDB(t)
	s := NewStatsStore(db)
	ctx := context.Background()

	today := time.Date(2025, 6, 10, 15, 0, 0, 0, time.UTC)
	visits := []models.Visit{
		{IP: "1.1.1.1", OS: "Linux", Browser: "Firefox"},
		{IP: "1.1.1.1", OS: "Linux", Browser: "Firefox"},
		{IP: "2.2.2.2", OS: "Windows", Browser: "Chrome"},
	}
	for _, v := range visits {
		if err := s.RecordVisit(ctx, v, today); err != nil {
			t.Fatalf("RecordVisit: %v", err)
		}
	}
	if err := s.RecordVisit(ctx, models.Visit{IP: "1.1.1.1", OS: "Linux"}, today.AddDate(0, 0, -1)); err != nil {
		t.Fatalf("RecordVisit: %v", err)
	}

	sum, err := s.Summary(ctx, today)
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if sum.TodayPV != 3 || sum.TodayUV != 2 {
		t.Errorf("today: got pv %d uv %d, want 3, 2", sum.TodayPV, sum.TodayUV)
	}
	if sum.TotalPV != 4 || sum.TotalUV != 3 {
		t.Errorf("total: got pv %d uv %d, want 4, 3", sum.TotalPV, sum.TotalUV)
	}
	if len(sum.Trend) != 7 {
		t.Fatalf("trend: got %d days, want 7", len(sum.Trend))
	}
	if sum.Trend[0].Date != "2025-06-04" || sum.Trend[0].PV != 0 {
		t.Errorf("first trend day: got %+v", sum.Trend[0])
	}
	if sum.Trend[5].PV != 1 {
		t.Errorf("yesterday: got %+v", sum.Trend[5])
	}
	if len(sum.OS) != 2 || sum.OS[0].Name != "Linux" || sum.OS[0].Count != 3 {
		t.Errorf("os distribution: got %+v", sum.OS)
	}
}

func TestStatsStorePrunesOldDays(t *testing.T) {
	db := testDB(t)
	s := NewStatsStore(db)
	ctx := context.Background()

	old := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	if err := s.RecordVisit(ctx, models.Visit{IP: "1.1.1.1"}, old); err != nil {
		t.Fatalf("RecordVisit: %v", err)
	}
	later := old.AddDate(0, 0, StatsRetentionDays+1)
	if err := s.RecordVisit(ctx, models.Visit{IP: "1.1.1.1"}, later); err != nil {
		t.Fatalf("RecordVisit: %v", err)
	}

	sum, err := s.Summary(ctx, later)
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if sum.TotalPV != 1 {
		t.Errorf("total pv after pruning: got %d, want 1", sum.TotalPV)
	}
}
