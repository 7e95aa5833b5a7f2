// Package server exposes the HTTP API and the per-room realtime
// websocket endpoint.
package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/CuongBC195/vuivengaytet/internal/auth"
	"github.com/CuongBC195/vuivengaytet/internal/cache"
	"github.com/CuongBC195/vuivengaytet/internal/game"
	"github.com/CuongBC195/vuivengaytet/internal/models"
	"github.com/CuongBC195/vuivengaytet/internal/store"
	"github.com/CuongBC195/vuivengaytet/loto"
)

const ctxPlayerID = "playerID"

// Server wires the services behind the HTTP and websocket surface.
type Server struct {
	log      *logrus.Entry
	issuer   *auth.Issuer
	rooms    *game.RoomService
	xidach   *game.XiDachService
	loto     *game.LotoService
	rdb      *redis.Client
	presence *cache.Presence
	origins  []string
}

// New builds a Server over the wired services.
func New(log *logrus.Entry, issuer *auth.Issuer, rooms *game.RoomService, xidach *game.XiDachService, lotoSvc *game.LotoService, rdb *redis.Client, origins []string) *Server {
	return &Server{
		log:      log,
		issuer:   issuer,
		rooms:    rooms,
		xidach:   xidach,
		loto:     lotoSvc,
		rdb:      rdb,
		presence: cache.NewPresence(rdb),
		origins:  origins,
	}
}

// Router assembles the gin engine with CORS, logging and all routes.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(s.requestLog())
	r.Use(cors.New(s.corsConfig()))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true, "time": time.Now().UTC()})
	})

	api := r.Group("/api")
	{
		api.POST("/session", s.createSession)
		api.GET("/tickets", s.listTickets)
		api.GET("/rooms/:id", s.getRoom)

		authed := api.Group("", s.requireSession())
		authed.POST("/rooms", s.createRoom)
		authed.DELETE("/rooms/:id", s.deleteRoom)
	}

	r.GET("/ws/rooms/:id", s.handleWS)

	return r
}

func (s *Server) corsConfig() cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	cfg.AllowHeaders = []string{"Authorization", "Content-Type"}
	for _, o := range s.origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	cfg.AllowOrigins = s.origins
	return cfg
}

func (s *Server) requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
			"status": c.Writer.Status(),
			"dur":    time.Since(start),
		}).Info("http")
	}
}

// requireSession resolves the acting player from a bearer token. The
// actor identity only ever comes from the verified session, never from
// a request body.
func (s *Server) requireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing session token"})
			return
		}
		playerID, err := s.issuer.Verify(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid session token"})
			return
		}
		c.Set(ctxPlayerID, playerID)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	const prefix = "Bearer "
	h := c.GetHeader("Authorization")
	if len(h) > len(prefix) && h[:len(prefix)] == prefix {
		return h[len(prefix):]
	}
	return c.Query("token")
}

func (s *Server) createSession(c *gin.Context) {
	playerID, token, err := s.issuer.NewSession()
	if err != nil {
		s.log.WithError(err).Error("issue session")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not issue session"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"player_id": playerID, "token": token})
}

func (s *Server) listTickets(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"groups": loto.Groups()})
}

type createRoomRequest struct {
	GameType models.GameType `json:"game_type"`
}

func (s *Server) createRoom(c *gin.Context) {
	var req createRoomRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.GameType != models.GameLoto && req.GameType != models.GameXiDach {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown game type"})
		return
	}
	room, err := s.rooms.Create(c.Request.Context(), c.GetString(ctxPlayerID), req.GameType)
	if err != nil {
		s.log.WithError(err).Error("create room")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create room"})
		return
	}
	c.JSON(http.StatusCreated, room)
}

func (s *Server) getRoom(c *gin.Context) {
	roomID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid room id"})
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
	c.JSON(http.StatusOK, room)
}

func (s *Server) deleteRoom(c *gin.Context) {
	roomID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid room id"})
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
	if room.HostID != c.GetString(ctxPlayerID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "only the host can close a room"})
		return
	}
	if err := s.rooms.Destroy(c.Request.Context(), roomID); err != nil {
		s.log.WithError(err).Error("destroy room")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not close room"})
		return
	}
	if err := s.presence.Clear(c.Request.Context(), roomID.String()); err != nil {
		s.log.WithError(err).Warn("clear presence")
	}
	c.Status(http.StatusNoContent)
}
