// Package game is the service layer between transport and the pure
// cores: it re-applies reducers against the latest committed documents
// under compare-and-swap, absorbs rejected transitions, and publishes
// committed changes to the room's change feed.
package game

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/CuongBC195/vuivengaytet/engine"
	"github.com/CuongBC195/vuivengaytet/internal/cache"
	"github.com/CuongBC195/vuivengaytet/internal/models"
	"github.com/CuongBC195/vuivengaytet/internal/store"
)

// maxRetries bounds compare-and-swap reload loops. Conflicts only happen
// when two clients race on the same room, so a couple of retries settle
// every realistic contention.
const maxRetries = 3

// ErrTooMuchContention is returned when a dispatch kept losing the
// compare-and-swap race.
var ErrTooMuchContention = errors.New("game: too much contention on room document")

// GameStore is the slice of the document store the Xì Dách service needs.
type GameStore interface {
	GetGame(ctx context.Context, roomID uuid.UUID) (*engine.Round, int64, error)
	CreateGame(ctx context.Context, roomID uuid.UUID, round *engine.Round) error
	UpdateGame(ctx context.Context, roomID uuid.UUID, revision int64, round *engine.Round) (int64, error)
	DeleteGame(ctx context.Context, roomID uuid.UUID) error
}

// RoomStore is the slice of the document store the room services need.
type RoomStore interface {
	GetRoom(ctx context.Context, id uuid.UUID) (*models.Room, error)
	CreateRoom(ctx context.Context, room *models.Room) error
	UpdateRoom(ctx context.Context, room *models.Room) error
	DeleteRoom(ctx context.Context, id uuid.UUID) error
}

// Publisher delivers committed change envelopes to a room's subscribers.
type Publisher interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

// Verb names a Xì Dách round transition.
type Verb string

const (
	VerbJoin        Verb = "join"
	VerbStart       Verb = "start"
	VerbHit         Verb = "hit"
	VerbStand       Verb = "stand"
	VerbDealerHit   Verb = "dealer_hit"
	VerbDealerStand Verb = "dealer_stand"
	VerbRevealOne   Verb = "reveal_one"
	VerbRevealAll   Verb = "reveal_all"
	VerbNewRound    Verb = "new_round"
)

// Action is one requested round transition. The actor is never part of
// the action; it always comes from the caller's verified session.
type Action struct {
	Verb   Verb   `json:"verb"`
	Name   string `json:"name,omitempty"`   // join: display name
	Target string `json:"target,omitempty"` // reveal_one: target participant
}

var errUnknownVerb = errors.New("game: unknown action verb")

// XiDachService drives Xì Dách rounds stored as xidach_game documents.
type XiDachService struct {
	games GameStore
	pub   Publisher
	log   *logrus.Entry
	seed  func() int64
}

// NewXiDach builds the Xì Dách service.
func NewXiDach(games GameStore, pub Publisher, log *logrus.Entry) *XiDachService {
	return &XiDachService{
		games: games,
		pub:   pub,
		log:   log,
		seed:  func() int64 { return time.Now().UnixNano() },
	}
}

// Snapshot returns the current committed round without applying anything.
func (s *XiDachService) Snapshot(ctx context.Context, roomID uuid.UUID) (*engine.Round, error) {
	round, _, err := s.games.GetGame(ctx, roomID)
	return round, err
}

// Dispatch applies one action for one verified actor to a room's round.
// The reducer runs against the latest committed document; a lost
// compare-and-swap reloads and re-applies. Rejected transitions are
// absorbed as no-ops: racing duplicate actions from multiple clients
// are expected and harmless. The returned round is the latest state the
// caller observed.
func (s *XiDachService) Dispatch(ctx context.Context, roomID uuid.UUID, actor string, act Action) (*engine.Round, error) {
	for attempt := 0; attempt < maxRetries; attempt++ {
		round, revision, err := s.games.GetGame(ctx, roomID)
		if err != nil {
			return nil, err
		}

		if err := applyAction(round, actor, act, s.seed); err != nil {
			if isRejection(err) {
				s.log.WithFields(logrus.Fields{
					"room_id":   roomID,
					"player_id": actor,
					"action":    act.Verb,
				}).WithError(err).Debug("transition rejected")
				return round, nil
			}
			return nil, err
		}

		next, err := s.games.UpdateGame(ctx, roomID, revision, round)
		if errors.Is(err, store.ErrConflict) {
			continue
		}
		if err != nil {
			return nil, err
		}

		s.publish(ctx, models.Change{
			Kind:     models.ChangeGame,
			Op:       models.OpUpdate,
			RoomID:   roomID,
			Revision: next,
			Game:     round,
		})
		return round, nil
	}
	return nil, ErrTooMuchContention
}

// applyAction routes a verb to its reducer. Start seeds a fresh shuffle
// per round.
func applyAction(r *engine.Round, actor string, act Action, seed func() int64) error {
	switch act.Verb {
	case VerbJoin:
		return r.Join(actor, act.Name)
	case VerbStart:
		return r.Start(actor, rand.New(rand.NewSource(seed())))
	case VerbHit:
		return r.Hit(actor)
	case VerbStand:
		return r.Stand(actor)
	case VerbDealerHit:
		return r.DealerHit(actor)
	case VerbDealerStand:
		return r.DealerStand(actor)
	case VerbRevealOne:
		return r.RevealOne(actor, act.Target)
	case VerbRevealAll:
		return r.Resolve(actor)
	case VerbNewRound:
		return r.Reset(actor)
	default:
		return fmt.Errorf("%w: %q", errUnknownVerb, act.Verb)
	}
}

// isRejection reports whether err is one of the absorbed no-op
// transitions rather than an infrastructure failure.
func isRejection(err error) bool {
	for _, sentinel := range []error{
		engine.ErrInvalidActor,
		engine.ErrInvalidPhase,
		engine.ErrNotYourTurn,
		engine.ErrRosterFull,
		engine.ErrAlreadyJoined,
		engine.ErrEmptyDeck,
		engine.ErrNoPlayers,
		engine.ErrUnknownTarget,
		errUnknownVerb,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

func (s *XiDachService) publish(ctx context.Context, change models.Change) {
	publishChange(ctx, s.pub, s.log, change)
}

// publishChange delivers a change envelope on the room's channel.
// Delivery failures are logged, not surfaced: the document is already
// committed and clients resync on reconnect.
func publishChange(ctx context.Context, pub Publisher, log *logrus.Entry, change models.Change) {
	payload, err := json.Marshal(change)
	if err != nil {
		log.WithError(err).Error("encode change envelope")
		return
	}
	if err := pub.Publish(ctx, cache.ChangeChannel(change.RoomID.String()), payload); err != nil {
		log.WithError(err).WithField("room_id", change.RoomID).Warn("publish change")
	}
}
