package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/CuongBC195/vuivengaytet/internal/cache"
	"github.com/CuongBC195/vuivengaytet/internal/game"
	"github.com/CuongBC195/vuivengaytet/internal/models"
	"github.com/CuongBC195/vuivengaytet/internal/store"
)

const (
	writeTimeout   = 10 * time.Second
	cleanupTimeout = 5 * time.Second
	sendBuffer     = 32
)

// clientMessage is one inbound websocket frame. The acting player is
// never part of the frame; it comes from the verified session token.
type clientMessage struct {
	Type   string      `json:"type"`
	Action game.Action `json:"action"` // type "action"
	Index  int         `json:"index"`  // type "peek"
}

// serverMessage is one outbound websocket frame.
type serverMessage struct {
	Type     string          `json:"type"`
	PlayerID string          `json:"player_id,omitempty"`
	Members  []string        `json:"members,omitempty"`
	Room     *models.Room    `json:"room,omitempty"`
	Game     *game.RoundView `json:"game,omitempty"`
	Event    string          `json:"event,omitempty"`
	Error    string          `json:"error,omitempty"`
}

// wsClient is one connected player. Peeked card indices live here and
// nowhere else; closing the connection forgets them.
type wsClient struct {
	conn     *websocket.Conn
	playerID string
	roomID   uuid.UUID
	send     chan serverMessage

	mu    sync.Mutex
	peeks map[int]bool
}

func (cl *wsClient) addPeek(idx int) {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	cl.peeks[idx] = true
}

func (cl *wsClient) peekSnapshot() map[int]bool {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	out := make(map[int]bool, len(cl.peeks))
	for k, v := range cl.peeks {
		out[k] = v
	}
	return out
}

// trySend queues a frame for the writer. Frames to a consumer that
// cannot keep up are dropped; the next committed change resyncs it.
func (cl *wsClient) trySend(msg serverMessage) {
	select {
	case cl.send <- msg:
	default:
	}
}

func (s *Server) handleWS(c *gin.Context) {
	roomID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid room id"})
		return
	}
	// Browsers cannot set headers on websocket dials, so the token
	// rides the query string.
	playerID, err := s.issuer.Verify(c.Query("token"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid session token"})
		return
	}
	room, err := s.rooms.Get(c.Request.Context(), roomID)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
		return
	}
	if err != nil {
		s.log.WithError(err).Error("get room")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load room"})
		return
	}

	conn, err := websocket.Accept(c.Writer, c.Request, s.acceptOptions())
	if err != nil {
		s.log.WithError(err).Warn("websocket accept")
		return
	}

	cl := &wsClient{
		conn:     conn,
		playerID: playerID,
		roomID:   roomID,
		send:     make(chan serverMessage, sendBuffer),
		peeks:    make(map[int]bool),
	}
	log := s.log.WithFields(logrus.Fields{"room_id": roomID, "player_id": playerID})

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	sub := s.rdb.Subscribe(ctx, cache.ChangeChannel(roomID.String()), cache.PresenceChannel(roomID.String()))
	defer sub.Close()

	if err := s.presence.Add(ctx, roomID.String(), playerID); err != nil {
		log.WithError(err).Error("presence add")
		conn.Close(websocket.StatusInternalError, "presence unavailable")
		return
	}
	s.publishPresence(ctx, roomID, "join", playerID)
	defer s.handleDisconnect(cl, log)

	go s.writeLoop(ctx, cl, log)
	go s.pumpChanges(ctx, cl, sub, log)

	s.sendWelcome(ctx, cl, room)
	s.readLoop(ctx, cl, room.GameType, log)
}

func (s *Server) acceptOptions() *websocket.AcceptOptions {
	for _, o := range s.origins {
		if o == "*" {
			return &websocket.AcceptOptions{InsecureSkipVerify: true}
		}
	}
	return &websocket.AcceptOptions{OriginPatterns: s.origins}
}

// sendWelcome pushes the full current state so a freshly connected or
// reconnecting client needs no extra round trip.
func (s *Server) sendWelcome(ctx context.Context, cl *wsClient, room *models.Room) {
	members, err := s.presence.Members(ctx, cl.roomID.String())
	if err != nil {
		members = nil
	}
	msg := serverMessage{
		Type:     "welcome",
		PlayerID: cl.playerID,
		Members:  members,
		Room:     room,
	}
	if room.GameType == models.GameXiDach {
		if round, err := s.xidach.Snapshot(ctx, cl.roomID); err == nil {
			view := game.BuildView(round, cl.playerID, cl.peekSnapshot())
			msg.Game = &view
		}
	}
	cl.trySend(msg)
}

// writeLoop is the only goroutine writing to the connection.
func (s *Server) writeLoop(ctx context.Context, cl *wsClient, log *logrus.Entry) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-cl.send:
			data, err := json.Marshal(msg)
			if err != nil {
				log.WithError(err).Error("marshal frame")
				continue
			}
			writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
			err = cl.conn.Write(writeCtx, websocket.MessageText, data)
			cancel()
			if err != nil {
				return
			}
		}
	}
}

// pumpChanges turns the room's Redis feed into outbound frames. Game
// documents are re-projected per observer so a card another player
// peeked never crosses this connection.
func (s *Server) pumpChanges(ctx context.Context, cl *wsClient, sub *redis.PubSub, log *logrus.Entry) {
	changeCh := cache.ChangeChannel(cl.roomID.String())
	for msg := range sub.Channel() {
		if msg.Channel == changeCh {
			var change models.Change
			if err := json.Unmarshal([]byte(msg.Payload), &change); err != nil {
				log.WithError(err).Warn("bad change payload")
				continue
			}
			s.forwardChange(cl, change)
			continue
		}
		var ev models.PresenceEvent
		if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
			log.WithError(err).Warn("bad presence payload")
			continue
		}
		cl.trySend(serverMessage{Type: "presence", Event: ev.Event, PlayerID: ev.PlayerID})
	}
}

func (s *Server) forwardChange(cl *wsClient, change models.Change) {
	if change.Op == models.OpDelete {
		cl.trySend(serverMessage{Type: "room_closed"})
		cl.conn.Close(websocket.StatusNormalClosure, "room closed")
		return
	}
	switch change.Kind {
	case models.ChangeRoom:
		cl.trySend(serverMessage{Type: "room", Room: change.Room})
	case models.ChangeGame:
		if change.Game == nil {
			return
		}
		view := game.BuildView(change.Game, cl.playerID, cl.peekSnapshot())
		cl.trySend(serverMessage{Type: "game", Game: &view})
	}
}

func (s *Server) readLoop(ctx context.Context, cl *wsClient, gameType models.GameType, log *logrus.Entry) {
	for {
		_, data, err := cl.conn.Read(ctx)
		if err != nil {
			return
		}
		var msg clientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			cl.trySend(serverMessage{Type: "error", Error: "malformed message"})
			continue
		}
		s.handleClientMessage(ctx, cl, gameType, msg, log)
	}
}

func (s *Server) handleClientMessage(ctx context.Context, cl *wsClient, gameType models.GameType, msg clientMessage, log *logrus.Entry) {
	switch msg.Type {
	case "action":
		if gameType != models.GameXiDach {
			cl.trySend(serverMessage{Type: "error", Error: "room is not a xì dách table"})
			return
		}
		if _, err := s.xidach.Dispatch(ctx, cl.roomID, cl.playerID, msg.Action); err != nil {
			log.WithError(err).WithField("verb", msg.Action.Verb).Warn("dispatch")
			cl.trySend(serverMessage{Type: "error", Error: "action failed, try again"})
		}
	case "peek":
		if gameType != models.GameXiDach {
			return
		}
		cl.addPeek(msg.Index)
		round, err := s.xidach.Snapshot(ctx, cl.roomID)
		if err != nil {
			return
		}
		view := game.BuildView(round, cl.playerID, cl.peekSnapshot())
		cl.trySend(serverMessage{Type: "game", Game: &view})
	case "draw", "reset":
		if gameType != models.GameLoto {
			cl.trySend(serverMessage{Type: "error", Error: "room is not a lô tô room"})
			return
		}
		var err error
		if msg.Type == "draw" {
			_, err = s.loto.Draw(ctx, cl.roomID, cl.playerID)
		} else {
			_, err = s.loto.Reset(ctx, cl.roomID, cl.playerID)
		}
		if err != nil {
			log.WithError(err).WithField("op", msg.Type).Warn("loto")
			cl.trySend(serverMessage{Type: "error", Error: "action failed, try again"})
		}
	default:
		cl.trySend(serverMessage{Type: "error", Error: "unknown message type"})
	}
}

// handleDisconnect runs after the read loop exits. The request context
// is already gone, so cleanup gets its own deadline.
func (s *Server) handleDisconnect(cl *wsClient, log *logrus.Entry) {
	ctx, cancel := context.WithTimeout(context.Background(), cleanupTimeout)
	defer cancel()

	remaining, err := s.presence.Remove(ctx, cl.roomID.String(), cl.playerID)
	if err != nil {
		log.WithError(err).Error("presence remove")
	}
	s.publishPresence(ctx, cl.roomID, "leave", cl.playerID)

	if err := s.rooms.HandleLeave(ctx, cl.roomID, cl.playerID, remaining); err != nil {
		log.WithError(err).Error("handle leave")
	}
	cl.conn.Close(websocket.StatusNormalClosure, "")
}

func (s *Server) publishPresence(ctx context.Context, roomID uuid.UUID, event, playerID string) {
	payload, err := json.Marshal(models.PresenceEvent{Event: event, RoomID: roomID, PlayerID: playerID})
	if err != nil {
		return
	}
	if err := s.rdb.Publish(ctx, cache.PresenceChannel(roomID.String()), payload).Err(); err != nil {
		s.log.WithError(err).Warn("publish presence")
	}
}
