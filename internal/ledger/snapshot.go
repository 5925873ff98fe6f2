package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redispkg "github.com/rsinghdev/storekhata-backend/pkg/redis"
)

// SnapshotCache persists the last good computed view per scope so a remote
// outage can still serve a best-effort balance.
type SnapshotCache interface {
	GetView(ctx context.Context, scope string) (*View, error)
	SetView(ctx context.Context, scope string, view *View, ttl time.Duration) error
}

type snapshotClient interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	SnapshotKey(scope string) string
}

type redisSnapshotCache struct {
	client snapshotClient
}

// NewSnapshotCache wraps a redis client as a view snapshot store.
func NewSnapshotCache(client snapshotClient) (SnapshotCache, error) {
	if client == nil {
		return nil, errors.New("redis client required")
	}
	return &redisSnapshotCache{client: client}, nil
}

func (c *redisSnapshotCache) GetView(ctx context.Context, scope string) (*View, error) {
	raw, err := c.client.Get(ctx, c.client.SnapshotKey(scope))
	if err != nil {
		if errors.Is(err, redispkg.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	var view View
	if err := json.Unmarshal([]byte(raw), &view); err != nil {
		// A corrupt snapshot is treated as a miss, same as corrupt local state.
		return nil, nil
	}
	return &view, nil
}

func (c *redisSnapshotCache) SetView(ctx context.Context, scope string, view *View, ttl time.Duration) error {
	if view == nil {
		return errors.New("view required")
	}
	payload, err := json.Marshal(view)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := c.client.Set(ctx, c.client.SnapshotKey(scope), string(payload), ttl); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}
