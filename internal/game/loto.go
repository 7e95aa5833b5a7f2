package game

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/CuongBC195/vuivengaytet/internal/models"
	"github.com/CuongBC195/vuivengaytet/internal/store"
	"github.com/CuongBC195/vuivengaytet/loto"
)

// LotoService drives the Lô Tô caller flow on the room document:
// current_numbers grows append-only and the room finishes once all 90
// numbers are out.
type LotoService struct {
	rooms RoomStore
	pub   Publisher
	log   *logrus.Entry
	seed  func() int64
}

// NewLoto builds the Lô Tô service.
func NewLoto(rooms RoomStore, pub Publisher, log *logrus.Entry) *LotoService {
	return &LotoService{
		rooms: rooms,
		pub:   pub,
		log:   log,
		seed:  func() int64 { return time.Now().UnixNano() },
	}
}

// Draw calls the next number. Host only; non-host requests and draws on
// an exhausted pool are absorbed as no-ops.
func (s *LotoService) Draw(ctx context.Context, roomID uuid.UUID, actor string) (*models.Room, error) {
	for attempt := 0; attempt < maxRetries; attempt++ {
		room, err := s.rooms.GetRoom(ctx, roomID)
		if err != nil {
			return nil, err
		}
		if room.GameType != models.GameLoto || room.HostID != actor {
			s.logRejected(roomID, actor, "draw")
			return room, nil
		}

		n, ok := loto.NextNumber(room.CurrentNumbers, rand.New(rand.NewSource(s.seed())))
		if !ok {
			s.logRejected(roomID, actor, "draw")
			return room, nil
		}
		room.CurrentNumbers = append(room.CurrentNumbers, n)
		if len(room.CurrentNumbers) >= loto.NumberCount {
			room.Status = models.RoomFinished
		} else {
			room.Status = models.RoomPlaying
		}

		if err := s.rooms.UpdateRoom(ctx, room); errors.Is(err, store.ErrConflict) {
			continue
		} else if err != nil {
			return nil, err
		}

		publishChange(ctx, s.pub, s.log, models.Change{
			Kind:     models.ChangeRoom,
			Op:       models.OpUpdate,
			RoomID:   roomID,
			Revision: room.Revision,
			Room:     room,
		})
		return room, nil
	}
	return nil, ErrTooMuchContention
}

// Reset clears the called numbers and returns the room to waiting. Host
// only.
func (s *LotoService) Reset(ctx context.Context, roomID uuid.UUID, actor string) (*models.Room, error) {
	for attempt := 0; attempt < maxRetries; attempt++ {
		room, err := s.rooms.GetRoom(ctx, roomID)
		if err != nil {
			return nil, err
		}
		if room.GameType != models.GameLoto || room.HostID != actor {
			s.logRejected(roomID, actor, "reset")
			return room, nil
		}

		room.CurrentNumbers = []int{}
		room.Status = models.RoomWaiting

		if err := s.rooms.UpdateRoom(ctx, room); errors.Is(err, store.ErrConflict) {
			continue
		} else if err != nil {
			return nil, err
		}

		publishChange(ctx, s.pub, s.log, models.Change{
			Kind:     models.ChangeRoom,
			Op:       models.OpUpdate,
			RoomID:   roomID,
			Revision: room.Revision,
			Room:     room,
		})
		return room, nil
	}
	return nil, ErrTooMuchContention
}

func (s *LotoService) logRejected(roomID uuid.UUID, actor, action string) {
	s.log.WithFields(logrus.Fields{
		"room_id":   roomID,
		"player_id": actor,
		"action":    action,
	}).Debug("loto action rejected")
}
