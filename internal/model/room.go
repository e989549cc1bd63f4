package model

import "time"

// Room is one scheduling session, addressed by its PIN. The PIN, date and
// slot set are fixed at creation; only the per-slot vote state changes
// afterwards.
type Room struct {
	PIN       string     `json:"pin" bson:"pin"`
	Date      string     `json:"date" bson:"date"` // YYYY-MM-DD, as entered by the creator
	TimeSlots []TimeSlot `json:"timeSlots" bson:"timeSlots"`
	CreatedAt time.Time  `json:"createdAt" bson:"createdAt"`
	// Version is bumped on every committed vote write and is what the
	// store's compare-and-set checks against. Not part of the API surface.
	Version int64 `json:"-" bson:"version"`
}

// TimeSlot is one candidate meeting time within a Room. Selections always
// equals the number of entries in Voters.
type TimeSlot struct {
	ID         string    `json:"id" bson:"id"`       // "1", "2", ... in presentation order
	Label      string    `json:"label" bson:"label"` // display string, e.g. "09:30"
	Time       time.Time `json:"time" bson:"time"`   // absolute start instant
	Selections int       `json:"selections" bson:"selections"`
	Voters     []string  `json:"voters" bson:"voters"`
}

// RoomMeta is the cached summary of a room, enough for a cheap
// does-this-PIN-exist check without hitting the document store.
type RoomMeta struct {
	Date      string    `json:"date"`
	SlotCount int       `json:"slotCount"`
	CreatedAt time.Time `json:"createdAt"`
}
