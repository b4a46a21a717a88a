package memory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/hamed0406/staffup/internal/domain"
)

func event(i int) domain.AlertEvent {
	return domain.AlertEvent{
		Airport:   fmt.Sprintf("AP%02d", i),
		Count:     i,
		Threshold: 1,
		Delivered: true,
		SentAt:    time.Date(2025, 8, 18, 12, i, 0, 0, time.UTC),
	}
}

func TestMemoryStore_RecentNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := New(8)
	for i := 0; i < 3; i++ {
		if err := s.Append(ctx, event(i)); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	got, err := s.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 events, got %d", len(got))
	}
	if got[0].Airport != "AP02" || got[2].Airport != "AP00" {
		t.Fatalf("unexpected order: %s .. %s", got[0].Airport, got[2].Airport)
	}

	got, _ = s.Recent(ctx, 1)
	if len(got) != 1 || got[0].Airport != "AP02" {
		t.Fatalf("Recent(1) = %+v", got)
	}
}

func TestMemoryStore_WrapsAtCapacity(t *testing.T) {
	ctx := context.Background()
	s := New(3)
	for i := 0; i < 5; i++ {
		_ = s.Append(ctx, event(i))
	}
	if s.Len() != 3 {
		t.Fatalf("expected len 3, got %d", s.Len())
	}
	got, _ := s.Recent(ctx, 0)
	want := []string{"AP04", "AP03", "AP02"}
	for i, w := range want {
		if got[i].Airport != w {
			t.Fatalf("event %d = %s, want %s", i, got[i].Airport, w)
		}
	}
}

func TestMemoryStore_Empty(t *testing.T) {
	got, err := New(0).Recent(context.Background(), 5)
	if err != nil || len(got) != 0 {
		t.Fatalf("expected empty result, got %v %v", got, err)
	}
}
