// Package store persists the two document kinds, rooms and xidach_games,
// in Postgres. Updates are compare-and-swap on a revision column: the
// reducer is always re-applied against the latest committed document, and
// readers only ever observe fully-applied documents because each commit
// is a single row swap.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/CuongBC195/vuivengaytet/engine"
	"github.com/CuongBC195/vuivengaytet/internal/models"
)

var (
	// ErrNotFound means the document does not exist.
	ErrNotFound = errors.New("store: document not found")
	// ErrConflict means the revision moved underneath a compare-and-swap
	// update; the caller must reload and re-apply.
	ErrConflict = errors.New("store: revision conflict")
)

// Store is the pgx-backed document store.
type Store struct {
	pool *pgxpool.Pool
}

// New wraps a connection pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// CreateRoom inserts a new room document at revision 1.
func (s *Store) CreateRoom(ctx context.Context, room *models.Room) error {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO rooms (id, host_id, game_type, status, current_numbers)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING revision, created_at`,
		room.ID, room.HostID, room.GameType, room.Status, room.CurrentNumbers)
	if err := row.Scan(&room.Revision, &room.CreatedAt); err != nil {
		return fmt.Errorf("store: create room: %w", err)
	}
	return nil
}

// GetRoom fetches a room document by id.
func (s *Store) GetRoom(ctx context.Context, id uuid.UUID) (*models.Room, error) {
	room := &models.Room{ID: id}
	row := s.pool.QueryRow(ctx, `
		SELECT host_id, game_type, status, current_numbers, revision, created_at
		FROM rooms WHERE id = $1`, id)
	err := row.Scan(&room.HostID, &room.GameType, &room.Status, &room.CurrentNumbers, &room.Revision, &room.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get room: %w", err)
	}
	return room, nil
}

// UpdateRoom commits a room document if its revision is unchanged and
// bumps the revision in place.
func (s *Store) UpdateRoom(ctx context.Context, room *models.Room) error {
	row := s.pool.QueryRow(ctx, `
		UPDATE rooms
		SET host_id = $2, status = $3, current_numbers = $4, revision = revision + 1
		WHERE id = $1 AND revision = $5
		RETURNING revision`,
		room.ID, room.HostID, room.Status, room.CurrentNumbers, room.Revision)
	err := row.Scan(&room.Revision)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrConflict
	}
	if err != nil {
		return fmt.Errorf("store: update room: %w", err)
	}
	return nil
}

// DeleteRoom removes a room document. The game document cascades.
func (s *Store) DeleteRoom(ctx context.Context, id uuid.UUID) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM rooms WHERE id = $1`, id); err != nil {
		return fmt.Errorf("store: delete room: %w", err)
	}
	return nil
}

// CreateGame inserts the xidach_game document for a room at revision 1.
func (s *Store) CreateGame(ctx context.Context, roomID uuid.UUID, round *engine.Round) error {
	doc, err := json.Marshal(round)
	if err != nil {
		return fmt.Errorf("store: encode game: %w", err)
	}
	if _, err := s.pool.Exec(ctx, `
		INSERT INTO xidach_games (id, doc) VALUES ($1, $2)`, roomID, doc); err != nil {
		return fmt.Errorf("store: create game: %w", err)
	}
	return nil
}

// GetGame fetches the xidach_game document and its revision.
func (s *Store) GetGame(ctx context.Context, roomID uuid.UUID) (*engine.Round, int64, error) {
	var (
		doc []byte
		rev int64
	)
	row := s.pool.QueryRow(ctx, `SELECT doc, revision FROM xidach_games WHERE id = $1`, roomID)
	err := row.Scan(&doc, &rev)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, 0, ErrNotFound
	}
	if err != nil {
		return nil, 0, fmt.Errorf("store: get game: %w", err)
	}
	round := &engine.Round{}
	if err := json.Unmarshal(doc, round); err != nil {
		return nil, 0, fmt.Errorf("store: decode game: %w", err)
	}
	return round, rev, nil
}

// UpdateGame commits the xidach_game document when revision matches and
// returns the new revision.
func (s *Store) UpdateGame(ctx context.Context, roomID uuid.UUID, revision int64, round *engine.Round) (int64, error) {
	doc, err := json.Marshal(round)
	if err != nil {
		return 0, fmt.Errorf("store: encode game: %w", err)
	}
	row := s.pool.QueryRow(ctx, `
		UPDATE xidach_games SET doc = $2, revision = revision + 1
		WHERE id = $1 AND revision = $3
		RETURNING revision`, roomID, doc, revision)
	var next int64
	if err := row.Scan(&next); errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrConflict
	} else if err != nil {
		return 0, fmt.Errorf("store: update game: %w", err)
	}
	return next, nil
}

// DeleteGame removes the xidach_game document.
func (s *Store) DeleteGame(ctx context.Context, roomID uuid.UUID) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM xidach_games WHERE id = $1`, roomID); err != nil {
		return fmt.Errorf("store: delete game: %w", err)
	}
	return nil
}
