package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"freakmeet/internal/cache"
	"freakmeet/internal/model"
	"freakmeet/internal/pin"
	"freakmeet/internal/repository"
	"freakmeet/internal/slots"
)

var (
	ErrInvalidPIN        = errors.New("pin must be 4 characters from the pin alphabet")
	ErrInvalidDate       = errors.New("date must be YYYY-MM-DD")
	ErrInvalidZone       = errors.New("unknown time zone")
	ErrInvalidSlotID     = errors.New("slot id is required")
	ErrInvalidVoterID    = errors.New("voter id is required")
	ErrConflictingConfig = errors.New("labels and range are mutually exclusive")
)

// SlotRange is the (start hour, end hour, duration) form of a room's slot
// configuration.
type SlotRange struct {
	StartHour       int
	EndHour         int
	DurationMinutes int
}

// CreateRoomInput carries everything the creator chose. All fields are
// optional: a zero input yields a server-picked PIN, today's date in UTC and
// the default 09:00-17:00 half-hour slots. At most one of Labels and Range
// may be set.
type CreateRoomInput struct {
	PIN      string
	Date     string // YYYY-MM-DD; empty means today in the given zone
	TimeZone string // IANA name; empty means UTC
	Labels   []string
	Range    *SlotRange
}

// RoomService orchestrates room lifecycle and voting on top of the room
// store and the meta cache.
type RoomService struct {
	repo  repository.RoomRepo
	cache cache.RoomCache
	pins  *pin.Generator
	log   zerolog.Logger
}

// NewRoomService creates a new room service
func NewRoomService(repo repository.RoomRepo, roomCache cache.RoomCache, pins *pin.Generator, log zerolog.Logger) *RoomService {
	return &RoomService{
		repo:  repo,
		cache: roomCache,
		pins:  pins,
		log:   log,
	}
}

// CreateRoom builds and persists a room. The PIN is generated unless the
// caller supplied one; either way the write is an upsert, so a colliding PIN
// silently replaces the earlier room.
func (s *RoomService) CreateRoom(ctx context.Context, in CreateRoomInput) (*model.Room, error) {
	roomPIN := pin.Normalize(in.PIN)
	if roomPIN == "" {
		roomPIN = s.pins.Generate()
	} else if !pin.Valid(roomPIN) {
		return nil, ErrInvalidPIN
	}

	loc := time.UTC
	if in.TimeZone != "" {
		var err error
		loc, err = time.LoadLocation(in.TimeZone)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidZone, in.TimeZone)
		}
	}

	date := time.Now().In(loc)
	if in.Date != "" {
		var err error
		date, err = time.ParseInLocation("2006-01-02", in.Date, loc)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidDate, in.Date)
		}
	}

	built, err := s.buildSlots(in, date, loc)
	if err != nil {
		return nil, err
	}

	timeSlots := make([]model.TimeSlot, len(built))
	for i, slot := range built {
		timeSlots[i] = model.TimeSlot{
			ID:         strconv.Itoa(i + 1),
			Label:      slot.Label,
			Time:       slot.Start,
			Selections: 0,
			Voters:     []string{},
		}
	}

	room := &model.Room{
		PIN:       roomPIN,
		Date:      date.Format("2006-01-02"),
		TimeSlots: timeSlots,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.repo.Upsert(ctx, room); err != nil {
		return nil, fmt.Errorf("failed to persist room: %w", err)
	}

	meta := &model.RoomMeta{
		Date:      room.Date,
		SlotCount: len(room.TimeSlots),
		CreatedAt: room.CreatedAt,
	}
	if err := s.cache.SetMeta(ctx, roomPIN, meta); err != nil {
		// The cache only backs the existence probe; a miss there falls back
		// to the store, so a failed write is not worth failing the create.
		s.log.Warn().Err(err).Str("pin", roomPIN).Msg("failed to cache room meta")
	}

	s.log.Info().Str("pin", roomPIN).Int("slots", len(timeSlots)).Str("date", room.Date).Msg("room created")
	return room, nil
}

func (s *RoomService) buildSlots(in CreateRoomInput, date time.Time, loc *time.Location) ([]slots.Slot, error) {
	if len(in.Labels) > 0 && in.Range != nil {
		return nil, ErrConflictingConfig
	}

	switch {
	case len(in.Labels) > 0:
		return slots.FromLabels(in.Labels, date, loc)
	case in.Range != nil:
		return slots.ExpandRange(in.Range.StartHour, in.Range.EndHour, in.Range.DurationMinutes, date, loc)
	default:
		return slots.Default(date, loc), nil
	}
}

// GetRoom retrieves a room by PIN, case-insensitively. A PIN nobody created
// is repository.ErrRoomNotFound, never a freshly auto-created empty room:
// two viewers mistyping different PINs must not end up in two silently
// different rooms.
func (s *RoomService) GetRoom(ctx context.Context, rawPIN string) (*model.Room, error) {
	roomPIN := pin.Normalize(rawPIN)
	if !pin.Valid(roomPIN) {
		return nil, ErrInvalidPIN
	}

	room, err := s.repo.GetByPIN(ctx, roomPIN)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch room: %w", err)
	}
	if room == nil {
		return nil, repository.ErrRoomNotFound
	}
	return room, nil
}

// RoomExists answers the join form's cheap validity probe from the meta
// cache, falling back to the store when the cache has no entry or is down.
func (s *RoomService) RoomExists(ctx context.Context, rawPIN string) (bool, error) {
	roomPIN := pin.Normalize(rawPIN)
	if !pin.Valid(roomPIN) {
		return false, ErrInvalidPIN
	}

	cached, err := s.cache.Exists(ctx, roomPIN)
	if err != nil {
		s.log.Warn().Err(err).Str("pin", roomPIN).Msg("cache existence check failed")
	} else if cached {
		return true, nil
	}

	room, err := s.repo.GetByPIN(ctx, roomPIN)
	if err != nil {
		return false, fmt.Errorf("failed to fetch room: %w", err)
	}
	return room != nil, nil
}

// ToggleVote flips voterID's vote on one slot and reports the state the vote
// landed in. Conflicting concurrent votes are retried inside the repo; only
// retry exhaustion surfaces, as repository.ErrVoteConflict.
func (s *RoomService) ToggleVote(ctx context.Context, rawPIN, slotID, voterID string) (bool, int, error) {
	roomPIN := pin.Normalize(rawPIN)
	if !pin.Valid(roomPIN) {
		return false, 0, ErrInvalidPIN
	}
	if slotID == "" {
		return false, 0, ErrInvalidSlotID
	}
	if voterID == "" {
		return false, 0, ErrInvalidVoterID
	}

	voted, selections, err := s.repo.ToggleVote(ctx, roomPIN, slotID, voterID)
	if err != nil {
		return false, 0, err
	}

	s.log.Debug().
		Str("pin", roomPIN).
		Str("slot", slotID).
		Bool("voted", voted).
		Int("selections", selections).
		Msg("vote toggled")
	return voted, selections, nil
}

// ClearRooms drops every room and its cached meta. Admin-only.
func (s *RoomService) ClearRooms(ctx context.Context) (int64, error) {
	deleted, err := s.repo.DeleteAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to clear rooms: %w", err)
	}

	if _, err := s.cache.Clear(ctx); err != nil {
		s.log.Warn().Err(err).Msg("failed to clear room meta cache")
	}

	s.log.Info().Int64("deleted", deleted).Msg("all rooms cleared")
	return deleted, nil
}
