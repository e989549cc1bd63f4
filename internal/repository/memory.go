package repository

import (
	"context"
	"sync"

	"freakmeet/internal/model"
)

// MemoryRoomRepo is the self-contained RoomRepo: rooms live in process and
// each room carries its own lock, so voters on different rooms never contend
// with each other. The map itself has a separate lock; neither is ever held
// while the other room's lock is wanted, and there is no global lock across
// rooms. Same read-verify-write contract as the Mongo-backed repo.
type MemoryRoomRepo struct {
	mu    sync.RWMutex // guards the map, not room contents
	rooms map[string]*memoryRoom
}

type memoryRoom struct {
	mu   sync.Mutex // serializes writes to this one room
	room model.Room
}

func NewMemoryRoomRepo() *MemoryRoomRepo {
	return &MemoryRoomRepo{rooms: make(map[string]*memoryRoom)}
}

func (r *MemoryRoomRepo) Upsert(ctx context.Context, room *model.Room) error {
	entry := &memoryRoom{room: *cloneRoom(room)}

	r.mu.Lock()
	r.rooms[room.PIN] = entry
	r.mu.Unlock()
	return nil
}

func (r *MemoryRoomRepo) GetByPIN(ctx context.Context, pin string) (*model.Room, error) {
	r.mu.RLock()
	entry := r.rooms[pin]
	r.mu.RUnlock()

	if entry == nil {
		return nil, nil
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	return cloneRoom(&entry.room), nil
}

func (r *MemoryRoomRepo) ToggleVote(ctx context.Context, pin, slotID, voterID string) (bool, int, error) {
	r.mu.RLock()
	entry := r.rooms[pin]
	r.mu.RUnlock()

	if entry == nil {
		return false, 0, ErrRoomNotFound
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	voted, selections, ok := toggleSlot(entry.room.TimeSlots, slotID, voterID)
	if !ok {
		return false, 0, ErrSlotNotFound
	}
	entry.room.Version++
	return voted, selections, nil
}

func (r *MemoryRoomRepo) DeleteAll(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := int64(len(r.rooms))
	r.rooms = make(map[string]*memoryRoom)
	return n, nil
}

// cloneRoom deep-copies a room so callers never share slot or voter slices
// with the stored document.
func cloneRoom(src *model.Room) *model.Room {
	out := *src
	out.TimeSlots = make([]model.TimeSlot, len(src.TimeSlots))
	for i, slot := range src.TimeSlots {
		voters := make([]string, len(slot.Voters))
		copy(voters, slot.Voters)
		slot.Voters = voters
		out.TimeSlots[i] = slot
	}
	return &out
}
