package memory

import (
	"context"
	"testing"

	"feedbacker-service/internal/domain"
)

func TestDeviceStorageIsPerDevice(t *testing.T) {
	ctx := context.Background()
	storage := NewDeviceStorage()

	a := storage.For("a")
	id1, _ := a.GetOrCreateSessionID(ctx)
	id2, _ := storage.For("a").GetOrCreateSessionID(ctx)
	if id1 == "" || id1 != id2 {
		t.Fatalf("expected a stable session id, got %q and %q", id1, id2)
	}
	if other, _ := storage.For("b").GetOrCreateSessionID(ctx); other == id1 {
		t.Fatalf("expected different devices to get different session ids")
	}

	_ = a.SaveCompletedObjectIDs(ctx, []string{"obj-1"})
	_ = a.SaveHasSubmittedPrizeEmail(ctx, true)
	ids, _ := storage.For("a").LoadCompletedObjectIDs(ctx)
	submitted, _ := storage.For("a").LoadHasSubmittedPrizeEmail(ctx)
	if len(ids) != 1 || ids[0] != "obj-1" || !submitted {
		t.Fatalf("expected device data restored, got %v %v", ids, submitted)
	}
	if ids, _ := storage.For("b").LoadCompletedObjectIDs(ctx); len(ids) != 0 {
		t.Fatalf("expected nothing for device b, got %v", ids)
	}
}

func TestLeaderboardUpsertsByKey(t *testing.T) {
	ctx := context.Background()
	lb := NewLeaderboard()
	_ = lb.UpsertEntry(ctx, domainEntry("s1", 10))
	_ = lb.UpsertEntry(ctx, domainEntry("s2", 30))
	_ = lb.UpsertEntry(ctx, domainEntry("s1", 50))

	entries, err := lb.Entries(ctx, "prize-submissions")
	if err != nil {
		t.Fatalf("entries: %v", err)
	}
	if n, _ := lb.Count(ctx, domain.PrizeBoardID); n != 2 {
		t.Fatalf("expected two entries counted, got %d", n)
	}
	if len(entries) != 2 || entries[0].Key != "s1" || entries[0].Score != 50 {
		t.Fatalf("expected s1 upserted to the top, got %+v", entries)
	}
}

func domainEntry(key string, score int64) domain.LeaderboardEntry {
	return domain.LeaderboardEntry{
		BoardID:         domain.PrizeBoardID,
		Key:             key,
		Order:           domain.SortDesc,
		Score:           score,
		PrivateMetadata: map[string]any{"sessionId": key},
	}
}
