package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"freakmeet/internal/repository"
	"freakmeet/internal/service"
	"freakmeet/internal/slots"
)

// RoomHandler handles room and voting endpoints
type RoomHandler struct {
	roomSvc *service.RoomService
}

// NewRoomHandler creates a new room handler
func NewRoomHandler(roomSvc *service.RoomService) *RoomHandler {
	return &RoomHandler{roomSvc: roomSvc}
}

// SlotRangeRequest is the range-plus-duration slot configuration
type SlotRangeRequest struct {
	StartHour       int `json:"startHour"`
	EndHour         int `json:"endHour"`
	DurationMinutes int `json:"durationMinutes"`
}

// CreateRoomRequest is the request body for creating a room. All fields are
// optional; at most one of labels and range may be given.
type CreateRoomRequest struct {
	PIN      string            `json:"pin,omitempty"`
	Date     string            `json:"date,omitempty"`
	TimeZone string            `json:"timeZone,omitempty"`
	Labels   []string          `json:"labels,omitempty"`
	Range    *SlotRangeRequest `json:"range,omitempty"`
}

// Create handles POST /v1/rooms
func (h *RoomHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRoomRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	in := service.CreateRoomInput{
		PIN:      req.PIN,
		Date:     req.Date,
		TimeZone: req.TimeZone,
		Labels:   req.Labels,
	}
	if req.Range != nil {
		in.Range = &service.SlotRange{
			StartHour:       req.Range.StartHour,
			EndHour:         req.Range.EndHour,
			DurationMinutes: req.Range.DurationMinutes,
		}
	}

	room, err := h.roomSvc.CreateRoom(r.Context(), in)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"pin":  room.PIN,
		"room": room,
	})
}

// Get handles GET /v1/rooms/{pin}
func (h *RoomHandler) Get(w http.ResponseWriter, r *http.Request) {
	room, err := h.roomSvc.GetRoom(r.Context(), mux.Vars(r)["pin"])
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, room)
}

// Exists handles GET /v1/rooms/{pin}/exists
func (h *RoomHandler) Exists(w http.ResponseWriter, r *http.Request) {
	exists, err := h.roomSvc.RoomExists(r.Context(), mux.Vars(r)["pin"])
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"exists": exists})
}

// VoteRequest is the request body for toggling a vote
type VoteRequest struct {
	VoterID string `json:"voterId"`
}

// Vote handles POST /v1/rooms/{pin}/slots/{slotId}/vote
func (h *RoomHandler) Vote(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	var req VoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	voted, selections, err := h.roomSvc.ToggleVote(r.Context(), vars["pin"], vars["slotId"], req.VoterID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"voted":      voted,
		"selections": selections,
	})
}

// ClearAll handles DELETE /v1/rooms (admin only)
func (h *RoomHandler) ClearAll(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.roomSvc.ClearRooms(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int64{"cleared": deleted})
}

// writeServiceError maps service and store errors onto the HTTP boundary:
// validation 400, absence 404, transient store trouble 503 so clients know a
// retry is safe.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case isValidationError(err):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, repository.ErrRoomNotFound):
		writeError(w, http.StatusNotFound, "room not found")
	case errors.Is(err, repository.ErrSlotNotFound):
		writeError(w, http.StatusNotFound, "time slot not found")
	case errors.Is(err, repository.ErrVoteConflict):
		writeError(w, http.StatusServiceUnavailable, "vote did not register, please try again")
	default:
		writeError(w, http.StatusServiceUnavailable, "store unavailable, please try again")
	}
}

func isValidationError(err error) bool {
	for _, sentinel := range []error{
		service.ErrInvalidPIN,
		service.ErrInvalidDate,
		service.ErrInvalidZone,
		service.ErrInvalidSlotID,
		service.ErrInvalidVoterID,
		service.ErrConflictingConfig,
		slots.ErrBadHour,
		slots.ErrBadDuration,
		slots.ErrNoLabels,
		slots.ErrEmptyLabel,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}
