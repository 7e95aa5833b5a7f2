// Package cache wraps the Redis client used for the per-room change feed
// and presence tracking.
package cache

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// New connects a Redis client from a redis:// URL and verifies it.
func New(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("cache: parse url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("cache: ping: %w", err)
	}
	return client, nil
}

// Publisher adapts the Redis client to the publish interface the game
// services expect.
type Publisher struct {
	rdb *redis.Client
}

// NewPublisher wraps a Redis client for channel publishing.
func NewPublisher(rdb *redis.Client) *Publisher {
	return &Publisher{rdb: rdb}
}

// Publish sends a payload on a pub/sub channel.
func (p *Publisher) Publish(ctx context.Context, channel string, payload []byte) error {
	return p.rdb.Publish(ctx, channel, payload).Err()
}

// ChangeChannel names the pub/sub channel carrying a room's committed
// document changes, in commit order.
func ChangeChannel(roomID string) string {
	return "room:" + roomID + ":changes"
}

// PresenceChannel names the pub/sub channel carrying a room's presence
// join/leave events.
func PresenceChannel(roomID string) string {
	return "room:" + roomID + ":presence"
}

// presenceKey names the set of player ids currently connected to a room.
func presenceKey(roomID string) string {
	return "room:" + roomID + ":members"
}

// Presence tracks which players are connected to each room.
type Presence struct {
	rdb *redis.Client
}

// NewPresence wraps a Redis client for presence tracking.
func NewPresence(rdb *redis.Client) *Presence {
	return &Presence{rdb: rdb}
}

// Add records a player as present in a room.
func (p *Presence) Add(ctx context.Context, roomID, playerID string) error {
	return p.rdb.SAdd(ctx, presenceKey(roomID), playerID).Err()
}

// Remove drops a player from a room and returns the players remaining.
func (p *Presence) Remove(ctx context.Context, roomID, playerID string) ([]string, error) {
	if err := p.rdb.SRem(ctx, presenceKey(roomID), playerID).Err(); err != nil {
		return nil, err
	}
	return p.rdb.SMembers(ctx, presenceKey(roomID)).Result()
}

// Members returns the players currently present in a room.
func (p *Presence) Members(ctx context.Context, roomID string) ([]string, error) {
	return p.rdb.SMembers(ctx, presenceKey(roomID)).Result()
}

// Clear removes the presence set of a destroyed room.
func (p *Presence) Clear(ctx context.Context, roomID string) error {
	return p.rdb.Del(ctx, presenceKey(roomID)).Err()
}
