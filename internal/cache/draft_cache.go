package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/StudentTechUsher/stuV1.0-sub000/internal/model"
)

// ErrRevisionMismatch means the stored draft is not at the expected revision
var ErrRevisionMismatch = errors.New("draft revision changed")

// DraftCache handles Redis operations for unpublished requirement drafts
type DraftCache interface {
	Get(ctx context.Context, programID string) (*model.Draft, error)
	Set(ctx context.Context, draft *model.Draft) error
	// SetIfRevision stores draft only while the stored draft is at revision
	// expected. A missing draft counts as revision 0.
	SetIfRevision(ctx context.Context, draft *model.Draft, expected int) error
	Delete(ctx context.Context, programID string) error
	Exists(ctx context.Context, programID string) (bool, error)
}

type draftCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewDraftCache creates a new draft cache. Drafts expire after ttl without edits.
func NewDraftCache(client *redis.Client, ttl time.Duration) DraftCache {
	return &draftCache{
		client: client,
		ttl:    ttl,
	}
}

func (c *draftCache) key(programID string) string {
	return fmt.Sprintf("program:%s:draft", programID)
}

func (c *draftCache) Get(ctx context.Context, programID string) (*model.Draft, error) {
	data, err := c.client.Get(ctx, c.key(programID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var draft model.Draft
	if err := json.Unmarshal([]byte(data), &draft); err != nil {
		return nil, fmt.Errorf("decode draft %s: %w", programID, err)
	}
	return &draft, nil
}

func (c *draftCache) Set(ctx context.Context, draft *model.Draft) error {
	data, err := json.Marshal(draft)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(draft.ProgramID), data, c.ttl).Err()
}

func (c *draftCache) SetIfRevision(ctx context.Context, draft *model.Draft, expected int) error {
	data, err := json.Marshal(draft)
	if err != nil {
		return err
	}
	key := c.key(draft.ProgramID)

	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current := 0
		stored, err := tx.Get(ctx, key).Bytes()
		switch {
		case err == redis.Nil:
		case err != nil:
			return err
		default:
			var d model.Draft
			if err := json.Unmarshal(stored, &d); err != nil {
				return fmt.Errorf("decode draft %s: %w", draft.ProgramID, err)
			}
			current = d.Revision
		}
		if current != expected {
			return ErrRevisionMismatch
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, c.ttl)
			return nil
		})
		return err
	}, key)
	if errors.Is(err, redis.TxFailedErr) {
		return ErrRevisionMismatch
	}
	return err
}

func (c *draftCache) Delete(ctx context.Context, programID string) error {
	return c.client.Del(ctx, c.key(programID)).Err()
}

func (c *draftCache) Exists(ctx context.Context, programID string) (bool, error) {
	n, err := c.client.Exists(ctx, c.key(programID)).Result()
	return n > 0, err
}
