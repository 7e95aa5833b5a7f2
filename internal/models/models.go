// Package models holds the document shapes shared by the store, the
// services and the realtime layer.
package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/CuongBC195/vuivengaytet/engine"
)

// GameType selects which game a room hosts.
type GameType string

const (
	GameLoto   GameType = "loto"
	GameXiDach GameType = "xidach"
)

// RoomStatus tracks the Lô Tô caller flow. A room finishes once all 90
// numbers have been called.
type RoomStatus string

const (
	RoomWaiting  RoomStatus = "waiting"
	RoomPlaying  RoomStatus = "playing"
	RoomFinished RoomStatus = "finished"
)

// Room is the room document. CurrentNumbers grows append-only; Revision
// is the compare-and-swap token incremented on every committed update.
type Room struct {
	ID             uuid.UUID  `json:"id"`
	HostID         string     `json:"host_id"`
	GameType       GameType   `json:"game_type"`
	Status         RoomStatus `json:"status"`
	CurrentNumbers []int      `json:"current_numbers"`
	Revision       int64      `json:"revision"`
	CreatedAt      time.Time  `json:"created_at"`
}

// ChangeKind names the document kind a change event refers to.
type ChangeKind string

const (
	ChangeRoom ChangeKind = "room"
	ChangeGame ChangeKind = "xidach_game"
)

// ChangeOp is the committed operation.
type ChangeOp string

const (
	OpUpdate ChangeOp = "update"
	OpDelete ChangeOp = "delete"
)

// Change is the envelope published on a room's change channel for every
// committed document write, in commit order. Deletes carry no body.
type Change struct {
	Kind     ChangeKind    `json:"kind"`
	Op       ChangeOp      `json:"op"`
	RoomID   uuid.UUID     `json:"room_id"`
	Revision int64         `json:"revision,omitempty"`
	Room     *Room         `json:"room,omitempty"`
	Game     *engine.Round `json:"game,omitempty"`
}

// PresenceEvent notifies subscribers that a player joined or left a
// room's realtime channel.
type PresenceEvent struct {
	Event    string    `json:"event"` // "join" or "leave"
	RoomID   uuid.UUID `json:"room_id"`
	PlayerID string    `json:"player_id"`
}
