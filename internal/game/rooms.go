package game

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/CuongBC195/vuivengaytet/engine"
	"github.com/CuongBC195/vuivengaytet/internal/models"
	"github.com/CuongBC195/vuivengaytet/internal/store"
)

// RoomService owns room lifecycle: creation, lookup, cleanup when the
// last participant leaves, and dealer migration when the dealer leaves a
// Xì Dách room mid-session.
type RoomService struct {
	rooms RoomStore
	games GameStore
	pub   Publisher
	log   *logrus.Entry
}

// NewRooms builds the room service.
func NewRooms(rooms RoomStore, games GameStore, pub Publisher, log *logrus.Entry) *RoomService {
	return &RoomService{rooms: rooms, games: games, pub: pub, log: log}
}

// Create makes a new room hosted by hostID. Xì Dách rooms get their
// empty waiting-phase round document alongside; the host is the dealer.
func (s *RoomService) Create(ctx context.Context, hostID string, gameType models.GameType) (*models.Room, error) {
	room := &models.Room{
		ID:             uuid.New(),
		HostID:         hostID,
		GameType:       gameType,
		Status:         models.RoomWaiting,
		CurrentNumbers: []int{},
	}
	if err := s.rooms.CreateRoom(ctx, room); err != nil {
		return nil, err
	}
	if gameType == models.GameXiDach {
		if err := s.games.CreateGame(ctx, room.ID, engine.NewRound(hostID)); err != nil {
			return nil, err
		}
	}
	s.log.WithFields(logrus.Fields{
		"room_id":   room.ID,
		"player_id": hostID,
		"game_type": gameType,
	}).Info("room created")
	return room, nil
}

// Get fetches a room document.
func (s *RoomService) Get(ctx context.Context, id uuid.UUID) (*models.Room, error) {
	return s.rooms.GetRoom(ctx, id)
}

// Destroy deletes both documents of a room and notifies subscribers.
func (s *RoomService) Destroy(ctx context.Context, roomID uuid.UUID) error {
	if err := s.games.DeleteGame(ctx, roomID); err != nil {
		return err
	}
	if err := s.rooms.DeleteRoom(ctx, roomID); err != nil {
		return err
	}
	publishChange(ctx, s.pub, s.log, models.Change{Kind: models.ChangeGame, Op: models.OpDelete, RoomID: roomID})
	publishChange(ctx, s.pub, s.log, models.Change{Kind: models.ChangeRoom, Op: models.OpDelete, RoomID: roomID})
	s.log.WithField("room_id", roomID).Info("room destroyed")
	return nil
}

// HandleLeave reacts to a participant disconnecting. With nobody left
// the room is destroyed. When the departing player was the dealer of a
// Xì Dách room, the first remaining participant is promoted: removed
// from the roster, made dealer and room host, and the round resets to
// waiting so cards never survive a dealer change.
func (s *RoomService) HandleLeave(ctx context.Context, roomID uuid.UUID, playerID string, remaining []string) error {
	if len(remaining) == 0 {
		return s.Destroy(ctx, roomID)
	}

	room, err := s.rooms.GetRoom(ctx, roomID)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if room.GameType != models.GameXiDach {
		return nil
	}

	for attempt := 0; attempt < maxRetries; attempt++ {
		round, revision, err := s.games.GetGame(ctx, roomID)
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if round.DealerID != playerID {
			return nil
		}

		newDealer := pickDealer(round, remaining)
		round.RemoveSeat(newDealer)
		round.DealerID = newDealer
		if err := round.Reset(newDealer); err != nil {
			return err
		}

		next, err := s.games.UpdateGame(ctx, roomID, revision, round)
		if errors.Is(err, store.ErrConflict) {
			continue
		}
		if err != nil {
			return err
		}
		publishChange(ctx, s.pub, s.log, models.Change{
			Kind:     models.ChangeGame,
			Op:       models.OpUpdate,
			RoomID:   roomID,
			Revision: next,
			Game:     round,
		})

		if err := s.migrateHost(ctx, roomID, newDealer); err != nil {
			return err
		}
		s.log.WithFields(logrus.Fields{
			"room_id":   roomID,
			"player_id": newDealer,
		}).Info("dealer migrated")
		return nil
	}
	return ErrTooMuchContention
}

// pickDealer prefers the earliest-joined participant still present;
// failing that, anyone still connected.
func pickDealer(round *engine.Round, remaining []string) string {
	present := make(map[string]bool, len(remaining))
	for _, id := range remaining {
		present[id] = true
	}
	for _, id := range round.Seats {
		if present[id] {
			return id
		}
	}
	return remaining[0]
}

func (s *RoomService) migrateHost(ctx context.Context, roomID uuid.UUID, hostID string) error {
	for attempt := 0; attempt < maxRetries; attempt++ {
		room, err := s.rooms.GetRoom(ctx, roomID)
		if err != nil {
			return err
		}
		room.HostID = hostID
		if err := s.rooms.UpdateRoom(ctx, room); errors.Is(err, store.ErrConflict) {
			continue
		} else if err != nil {
			return err
		}
		publishChange(ctx, s.pub, s.log, models.Change{
			Kind:     models.ChangeRoom,
			Op:       models.OpUpdate,
			RoomID:   roomID,
			Revision: room.Revision,
			Room:     room,
		})
		return nil
	}
	return ErrTooMuchContention
}
