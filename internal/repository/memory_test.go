package repository

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"freakmeet/internal/model"
)

func testRoom(pin string, slotCount int) *model.Room {
	slots := make([]model.TimeSlot, slotCount)
	base := time.Date(2024, 7, 23, 9, 0, 0, 0, time.UTC)
	for i := range slots {
		start := base.Add(time.Duration(i) * 30 * time.Minute)
		slots[i] = model.TimeSlot{
			ID:         strconv.Itoa(i + 1),
			Label:      start.Format("15:04"),
			Time:       start,
			Selections: 0,
			Voters:     []string{},
		}
	}
	return &model.Room{
		PIN:       pin,
		Date:      "2024-07-23",
		TimeSlots: slots,
		CreatedAt: time.Now().UTC(),
	}
}

func checkInvariant(t *testing.T, room *model.Room) {
	t.Helper()
	for _, slot := range room.TimeSlots {
		if slot.Selections != len(slot.Voters) {
			t.Fatalf("slot %s: selections %d != %d voters", slot.ID, slot.Selections, len(slot.Voters))
		}
	}
}

func TestMemoryUpsertAndGet(t *testing.T) {
	repo := NewMemoryRoomRepo()
	ctx := context.Background()

	if err := repo.Upsert(ctx, testRoom("AB3X", 4)); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}

	room, err := repo.GetByPIN(ctx, "AB3X")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if room == nil {
		t.Fatal("expected room, got nil")
	}
	if room.PIN != "AB3X" || len(room.TimeSlots) != 4 {
		t.Errorf("got pin %q with %d slots", room.PIN, len(room.TimeSlots))
	}
}

func TestMemoryGetMissing(t *testing.T) {
	repo := NewMemoryRoomRepo()

	room, err := repo.GetByPIN(context.Background(), "ZZZZ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if room != nil {
		t.Fatalf("expected nil for missing pin, got %+v", room)
	}
}

func TestMemoryUpsertOverwrites(t *testing.T) {
	repo := NewMemoryRoomRepo()
	ctx := context.Background()

	repo.Upsert(ctx, testRoom("AB3X", 4))
	repo.Upsert(ctx, testRoom("AB3X", 2))

	room, _ := repo.GetByPIN(ctx, "AB3X")
	if len(room.TimeSlots) != 2 {
		t.Errorf("expected overwrite to 2 slots, got %d", len(room.TimeSlots))
	}
}

// Callers must not be able to reach into the stored document through a
// returned room.
func TestMemoryGetReturnsCopy(t *testing.T) {
	repo := NewMemoryRoomRepo()
	ctx := context.Background()
	repo.Upsert(ctx, testRoom("AB3X", 2))

	room, _ := repo.GetByPIN(ctx, "AB3X")
	room.TimeSlots[0].Voters = append(room.TimeSlots[0].Voters, "intruder")
	room.TimeSlots[0].Selections = 99

	fresh, _ := repo.GetByPIN(ctx, "AB3X")
	if fresh.TimeSlots[0].Selections != 0 || len(fresh.TimeSlots[0].Voters) != 0 {
		t.Error("mutating a fetched room leaked into the store")
	}
}

func TestToggleVoteLifecycle(t *testing.T) {
	repo := NewMemoryRoomRepo()
	ctx := context.Background()
	repo.Upsert(ctx, testRoom("AB3X", 4))

	voted, selections, err := repo.ToggleVote(ctx, "AB3X", "2", "voter-1")
	if err != nil {
		t.Fatalf("toggle on failed: %v", err)
	}
	if !voted || selections != 1 {
		t.Errorf("expected voted=true selections=1, got %v/%d", voted, selections)
	}

	room, _ := repo.GetByPIN(ctx, "AB3X")
	checkInvariant(t, room)
	if room.TimeSlots[1].Voters[0] != "voter-1" {
		t.Errorf("voter not recorded: %v", room.TimeSlots[1].Voters)
	}

	// Toggling again restores the prior state.
	voted, selections, err = repo.ToggleVote(ctx, "AB3X", "2", "voter-1")
	if err != nil {
		t.Fatalf("toggle off failed: %v", err)
	}
	if voted || selections != 0 {
		t.Errorf("expected voted=false selections=0, got %v/%d", voted, selections)
	}

	room, _ = repo.GetByPIN(ctx, "AB3X")
	checkInvariant(t, room)
	if len(room.TimeSlots[1].Voters) != 0 {
		t.Errorf("voter set not emptied: %v", room.TimeSlots[1].Voters)
	}
}

func TestToggleVoteErrors(t *testing.T) {
	repo := NewMemoryRoomRepo()
	ctx := context.Background()
	repo.Upsert(ctx, testRoom("AB3X", 4))

	if _, _, err := repo.ToggleVote(ctx, "ZZZZ", "1", "v"); err != ErrRoomNotFound {
		t.Errorf("expected ErrRoomNotFound, got %v", err)
	}
	if _, _, err := repo.ToggleVote(ctx, "AB3X", "99", "v"); err != ErrSlotNotFound {
		t.Errorf("expected ErrSlotNotFound, got %v", err)
	}
}

// A voter id that somehow got stored twice collapses back to a clean set on
// the next toggle instead of double-decrementing.
func TestToggleSlotCollapsesDuplicates(t *testing.T) {
	slots := []model.TimeSlot{{
		ID:         "1",
		Selections: 2,
		Voters:     []string{"v1", "v1"},
	}}

	voted, selections, found := toggleSlot(slots, "1", "v1")
	if !found {
		t.Fatal("slot not found")
	}
	if voted || selections != 0 {
		t.Errorf("expected voted=false selections=0, got %v/%d", voted, selections)
	}
	if len(slots[0].Voters) != 0 {
		t.Errorf("duplicates survived: %v", slots[0].Voters)
	}
}

func TestConcurrentDistinctVoters(t *testing.T) {
	repo := NewMemoryRoomRepo()
	ctx := context.Background()
	repo.Upsert(ctx, testRoom("AB3X", 4))

	const voters = 25
	var wg sync.WaitGroup
	for i := 0; i < voters; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			if _, _, err := repo.ToggleVote(ctx, "AB3X", "1", fmt.Sprintf("voter-%d", n)); err != nil {
				t.Errorf("voter %d failed: %v", n, err)
			}
		}(i)
	}
	wg.Wait()

	room, _ := repo.GetByPIN(ctx, "AB3X")
	checkInvariant(t, room)
	if room.TimeSlots[0].Selections != voters {
		t.Errorf("expected %d selections, got %d", voters, room.TimeSlots[0].Selections)
	}
	if len(room.TimeSlots[0].Voters) != voters {
		t.Errorf("expected %d voters, got %d", voters, len(room.TimeSlots[0].Voters))
	}
}

// Two racing toggles from the same voter must serialize: whatever the final
// state, the count matches the voter set and the voter never appears twice.
func TestConcurrentSameVoter(t *testing.T) {
	repo := NewMemoryRoomRepo()
	ctx := context.Background()
	repo.Upsert(ctx, testRoom("AB3X", 4))

	voterID := uuid.NewString()
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			repo.ToggleVote(ctx, "AB3X", "1", voterID)
		}()
	}
	wg.Wait()

	room, _ := repo.GetByPIN(ctx, "AB3X")
	checkInvariant(t, room)
	if n := room.TimeSlots[0].Selections; n > 1 {
		t.Errorf("same voter double-counted: selections=%d voters=%v", n, room.TimeSlots[0].Voters)
	}
}

func TestConcurrentVotersAcrossSlots(t *testing.T) {
	repo := NewMemoryRoomRepo()
	ctx := context.Background()
	repo.Upsert(ctx, testRoom("AB3X", 4))

	const voters = 20
	var wg sync.WaitGroup
	for i := 0; i < voters; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			slotID := strconv.Itoa(n%4 + 1)
			repo.ToggleVote(ctx, "AB3X", slotID, fmt.Sprintf("voter-%d", n))
		}(i)
	}
	wg.Wait()

	room, _ := repo.GetByPIN(ctx, "AB3X")
	checkInvariant(t, room)
	total := 0
	for _, slot := range room.TimeSlots {
		total += slot.Selections
	}
	if total != voters {
		t.Errorf("expected %d total votes, got %d", voters, total)
	}
}

func TestDeleteAll(t *testing.T) {
	repo := NewMemoryRoomRepo()
	ctx := context.Background()
	repo.Upsert(ctx, testRoom("AB3X", 2))
	repo.Upsert(ctx, testRoom("CD4Y", 2))

	n, err := repo.DeleteAll(ctx)
	if err != nil {
		t.Fatalf("delete all failed: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 deleted, got %d", n)
	}

	room, _ := repo.GetByPIN(ctx, "AB3X")
	if room != nil {
		t.Error("room survived DeleteAll")
	}
}
