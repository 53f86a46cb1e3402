package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/StudentTechUsher/stuV1.0-sub000/internal/model"
)

// ProgressCache holds evaluated progress per program and student
type ProgressCache interface {
	Get(ctx context.Context, programID, studentID string) (*model.ProgramProgress, error)
	Set(ctx context.Context, progress *model.ProgramProgress) error
	InvalidateStudent(ctx context.Context, studentID string) error
	InvalidateProgram(ctx context.Context, programID string) error
}

type progressCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewProgressCache creates a new progress cache
func NewProgressCache(client *redis.Client, ttl time.Duration) ProgressCache {
	return &progressCache{
		client: client,
		ttl:    ttl,
	}
}

// Key helpers
func (c *progressCache) key(programID, studentID string) string {
	return fmt.Sprintf("progress:%s:%s", programID, studentID)
}

func (c *progressCache) programIndexKey(programID string) string {
	return fmt.Sprintf("progress:%s:index", programID)
}

func (c *progressCache) studentIndexKey(studentID string) string {
	return fmt.Sprintf("student:%s:progress", studentID)
}

func (c *progressCache) Get(ctx context.Context, programID, studentID string) (*model.ProgramProgress, error) {
	data, err := c.client.Get(ctx, c.key(programID, studentID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var progress model.ProgramProgress
	if err := json.Unmarshal([]byte(data), &progress); err != nil {
		return nil, err
	}
	return &progress, nil
}

func (c *progressCache) Set(ctx context.Context, progress *model.ProgramProgress) error {
	data, err := json.Marshal(progress)
	if err != nil {
		return err
	}
	key := c.key(progress.ProgramID, progress.StudentID)

	pipe := c.client.TxPipeline()
	pipe.Set(ctx, key, data, c.ttl)
	pipe.SAdd(ctx, c.programIndexKey(progress.ProgramID), key)
	pipe.Expire(ctx, c.programIndexKey(progress.ProgramID), c.ttl)
	pipe.SAdd(ctx, c.studentIndexKey(progress.StudentID), key)
	pipe.Expire(ctx, c.studentIndexKey(progress.StudentID), c.ttl)
	_, err = pipe.Exec(ctx)
	return err
}

// InvalidateStudent drops every cached progress of a student, e.g. after a transcript change
func (c *progressCache) InvalidateStudent(ctx context.Context, studentID string) error {
	return c.dropIndexed(ctx, c.studentIndexKey(studentID))
}

// InvalidateProgram drops every cached progress of a program, e.g. after a publish
func (c *progressCache) InvalidateProgram(ctx context.Context, programID string) error {
	return c.dropIndexed(ctx, c.programIndexKey(programID))
}

func (c *progressCache) dropIndexed(ctx context.Context, indexKey string) error {
	keys, err := c.client.SMembers(ctx, indexKey).Result()
	if err != nil && err != redis.Nil {
		return err
	}
	keys = append(keys, indexKey)
	return c.client.Del(ctx, keys...).Err()
}
