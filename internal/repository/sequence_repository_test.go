package repository

import (
	"context"
	"testing"

	"github.com/Minsekko/SJP-HR/internal/testutil"
)

func TestNextSequence(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewSequenceRepository(db)
	ctx := context.Background()

	// 同一 (类别, 日期) 从 1 连续递增
	for want := 1; want <= 5; want++ {
		got, err := repo.Next(ctx, "sale", "20250829")
		if err != nil {
			t.Fatalf("next: %v", err)
		}
		if got != want {
			t.Errorf("seq = %d, want %d", got, want)
		}
	}

	// 类别隔离
	got, err := repo.Next(ctx, "purchase", "20250829")
	if err != nil {
		t.Fatalf("next purchase: %v", err)
	}
	if got != 1 {
		t.Errorf("purchase seq = %d, want 1", got)
	}

	// 日期隔离
	got, err = repo.Next(ctx, "sale", "20250830")
	if err != nil {
		t.Fatalf("next new day: %v", err)
	}
	if got != 1 {
		t.Errorf("new day seq = %d, want 1", got)
	}
}
