package repository

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"freakmeet/internal/model"
)

var (
	ErrRoomNotFound = errors.New("room not found")
	ErrSlotNotFound = errors.New("time slot not found")
	// ErrVoteConflict means the optimistic-concurrency retry budget ran out
	// under contention. The vote did not register; safe for the caller to
	// retry the whole operation.
	ErrVoteConflict = errors.New("vote conflict: too many concurrent writes")
)

// maxToggleRetries bounds the compare-and-set loop so a hot slot cannot
// livelock a request forever.
const maxToggleRetries = 5

type RoomRepo interface {
	// Upsert persists a room keyed by PIN, replacing any room already stored
	// under it. Create is overwrite-on-collision, not insert-if-absent.
	Upsert(ctx context.Context, room *model.Room) error
	// GetByPIN returns (nil, nil) when no room is stored under pin.
	GetByPIN(ctx context.Context, pin string) (*model.Room, error)
	// ToggleVote atomically flips voterID's membership on one slot's voter
	// set and returns whether the voter is voting afterwards, plus the
	// slot's resulting selection count.
	ToggleVote(ctx context.Context, pin, slotID, voterID string) (voted bool, selections int, err error)
	// DeleteAll removes every room and reports how many were deleted.
	DeleteAll(ctx context.Context) (int64, error)
}

type roomRepo struct {
	collection *mongo.Collection
}

func NewRoomRepo(db *mongo.Database) RoomRepo {
	return &roomRepo{
		collection: db.Collection("rooms"),
	}
}

func (r *roomRepo) Upsert(ctx context.Context, room *model.Room) error {
	opts := options.Replace().SetUpsert(true)
	_, err := r.collection.ReplaceOne(ctx, bson.M{"pin": room.PIN}, room, opts)
	return err
}

func (r *roomRepo) GetByPIN(ctx context.Context, pin string) (*model.Room, error) {
	var room model.Room
	err := r.collection.FindOne(ctx, bson.M{"pin": pin}).Decode(&room)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}

	return &room, nil
}

// ToggleVote is a read-modify-write under optimistic concurrency control.
// Each pass reads the room, flips the voter on a copy of the slot list, then
// writes the whole list back guarded by the version the read observed. A
// concurrent committer bumps the version, the guarded update matches nothing,
// and the pass is retried against fresh state.
func (r *roomRepo) ToggleVote(ctx context.Context, pin, slotID, voterID string) (bool, int, error) {
	for attempt := 0; attempt < maxToggleRetries; attempt++ {
		var room model.Room
		err := r.collection.FindOne(ctx, bson.M{"pin": pin}).Decode(&room)
		if err == mongo.ErrNoDocuments {
			return false, 0, ErrRoomNotFound
		}
		if err != nil {
			return false, 0, err
		}

		voted, selections, ok := toggleSlot(room.TimeSlots, slotID, voterID)
		if !ok {
			return false, 0, ErrSlotNotFound
		}

		res, err := r.collection.UpdateOne(ctx,
			bson.M{"pin": pin, "version": room.Version},
			bson.M{
				"$set": bson.M{"timeSlots": room.TimeSlots},
				"$inc": bson.M{"version": 1},
			})
		if err != nil {
			return false, 0, err
		}
		if res.MatchedCount == 1 {
			return voted, selections, nil
		}
		// Lost the race to another voter; re-read and try again.
	}

	return false, 0, ErrVoteConflict
}

func (r *roomRepo) DeleteAll(ctx context.Context) (int64, error) {
	res, err := r.collection.DeleteMany(ctx, bson.M{})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// toggleSlot flips voterID's membership on the slot with the given id,
// mutating slots in place. Selections is recomputed as the voter-set size, so
// it can neither go negative nor drift from the set, and a voter id that
// somehow appears twice collapses back to one entry. The last return is
// false when no slot has that id.
func toggleSlot(timeSlots []model.TimeSlot, slotID, voterID string) (voted bool, selections int, found bool) {
	for i := range timeSlots {
		slot := &timeSlots[i]
		if slot.ID != slotID {
			continue
		}

		voters := make([]string, 0, len(slot.Voters)+1)
		wasVoting := false
		for _, v := range slot.Voters {
			if v == voterID {
				wasVoting = true
				continue
			}
			voters = append(voters, v)
		}
		if !wasVoting {
			voters = append(voters, voterID)
		}

		slot.Voters = voters
		slot.Selections = len(voters)
		return !wasVoting, slot.Selections, true
	}
	return false, 0, false
}
