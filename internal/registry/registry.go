// Package registry owns room admission: code allocation, room
// creation and the append-only participant log. Live broadcast
// membership is held by the transport layer, not here.
package registry

import (
	"database/sql"
	"errors"
	"fmt"
	"log"

	"github.com/mpruett/chatrelay/internal/database"
	"github.com/mpruett/chatrelay/internal/types"
)

var (
	ErrInvalidInput = errors.New("missing required field")
	ErrRoomNotFound = errors.New("room not found")
)

type Registry struct {
	log   *log.Logger
	db    database.ChatRepository
	alloc *Allocator
}

func NewRegistry(logger *log.Logger, db database.ChatRepository) *Registry {
	return &Registry{
		log:   logger,
		db:    db,
		alloc: NewAllocator(db),
	}
}

// CreateRoom allocates a code, persists the room and records the
// creator in the participant log. The returned code identifies the
// room for its whole lifetime.
func (r *Registry) CreateRoom(creatorName string) (string, error) {
	if creatorName == "" {
		return "", ErrInvalidInput
	}

	code, err := r.alloc.Allocate()
	if err != nil {
		return "", fmt.Errorf("allocate room code: %w", err)
	}

	room, err := r.db.CreateRoom(code, creatorName)
	if err != nil {
		return "", fmt.Errorf("create room: %w", err)
	}

	if _, err := r.db.AddParticipant(room.Code, creatorName); err != nil {
		return "", fmt.Errorf("record creator: %w", err)
	}

	r.log.Printf("created room %q for %q", room.Code, creatorName)
	return room.Code, nil
}

// JoinRoom verifies the room exists and appends a participant row.
// Rows are never deduplicated: joining twice under the same name
// yields two log entries.
func (r *Registry) JoinRoom(name, roomCode string) error {
	if name == "" || roomCode == "" {
		return ErrInvalidInput
	}

	if _, err := r.db.GetRoom(roomCode); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrRoomNotFound
		}
		return fmt.Errorf("lookup room %q: %w", roomCode, err)
	}

	if _, err := r.db.AddParticipant(roomCode, name); err != nil {
		return fmt.Errorf("record participant: %w", err)
	}

	r.log.Printf("%q joined room %q", name, roomCode)
	return nil
}

// RoomInfo returns the room's code and creator. The creator identity
// is informational only; it confers no extra authority.
func (r *Registry) RoomInfo(roomCode string) (types.Room, error) {
	room, err := r.db.GetRoom(roomCode)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Room{}, ErrRoomNotFound
		}
		return types.Room{}, fmt.Errorf("lookup room %q: %w", roomCode, err)
	}

	return types.Room{
		Code:    room.Code,
		Creator: room.Creator,
	}, nil
}

// Participants reads the append-only join log for display purposes.
// This is distinct from the transport's live subscription set.
func (r *Registry) Participants(roomCode string) ([]types.Participant, error) {
	rows, err := r.db.ListParticipants(roomCode)
	if err != nil {
		return nil, fmt.Errorf("list participants for %q: %w", roomCode, err)
	}

	participants := make([]types.Participant, len(rows))
	for i, p := range rows {
		participants[i] = types.Participant{
			RoomCode: p.RoomCode,
			Name:     p.Name,
		}
	}

	return participants, nil
}
