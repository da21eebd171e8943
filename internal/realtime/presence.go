// internal/realtime/presence.go

package realtime

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

const presenceTTL = 5 * time.Minute

// Presence mirrors online state into redis so other services can answer
// "is this user reachable" without talking to this process. A nil
// Presence disables mirroring; every method tolerates it.
type Presence struct {
	client *redis.Client
}

func NewPresence(client *redis.Client) *Presence {
	if client == nil {
		return nil
	}
	return &Presence{client: client}
}

func (p *Presence) MarkOnline(userID uuid.UUID) {
	if p == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := p.client.Set(ctx, presenceKey(userID), "online", presenceTTL).Err(); err != nil {
			log.Printf("Failed to record presence for %s: %v", userID, err)
		}
	}()
}

func (p *Presence) MarkOffline(userID uuid.UUID) {
	if p == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := p.client.Del(ctx, presenceKey(userID)).Err(); err != nil {
			log.Printf("Failed to clear presence for %s: %v", userID, err)
		}
	}()
}

// Refresh extends the presence TTL. Called from the heartbeat path.
func (p *Presence) Refresh(userID uuid.UUID) {
	if p == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := p.client.Expire(ctx, presenceKey(userID), presenceTTL).Err(); err != nil {
			log.Printf("Failed to refresh presence for %s: %v", userID, err)
		}
	}()
}

// IsOnline checks the mirrored presence state.
func (p *Presence) IsOnline(ctx context.Context, userID uuid.UUID) (bool, error) {
	if p == nil {
		return false, nil
	}
	n, err := p.client.Exists(ctx, presenceKey(userID)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check presence: %w", err)
	}
	return n > 0, nil
}

func presenceKey(userID uuid.UUID) string {
	return fmt.Sprintf("presence:%s", userID)
}
