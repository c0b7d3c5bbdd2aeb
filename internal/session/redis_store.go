package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"campus-complaints/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "session:"

type redisStore struct {
	rdb *redis.Client
}

// NewRedisStore keeps each session as a JSON value that expires with it.
func NewRedisStore(rdb *redis.Client) Store {
	return &redisStore{rdb: rdb}
}

func redisKey(id string) string { return redisKeyPrefix + id }

func (s *redisStore) Create(ctx context.Context, userID uint, ttl time.Duration) (*models.Session, error) {
	now := time.Now()
	sess := models.Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}
	raw, err := json.Marshal(&sess)
	if err != nil {
		return nil, err
	}
	if err := s.rdb.Set(ctx, redisKey(sess.ID), raw, ttl).Err(); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return &sess, nil
}

func (s *redisStore) Get(ctx context.Context, id string) (*models.Session, error) {
	raw, err := s.rdb.Get(ctx, redisKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	var sess models.Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &sess, nil
}

func (s *redisStore) Revoke(ctx context.Context, id string) error {
	return s.rdb.Del(ctx, redisKey(id)).Err()
}

func (s *redisStore) SetFlash(ctx context.Context, id, msg string) error {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	sess.Flash = msg
	return s.put(ctx, sess)
}

func (s *redisStore) PopFlash(ctx context.Context, id string) (string, error) {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	msg := sess.Flash
	if msg == "" {
		return "", nil
	}
	sess.Flash = ""
	return msg, s.put(ctx, sess)
}

func (s *redisStore) put(ctx context.Context, sess *models.Session) error {
	raw, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	// XX: a key revoked since it was read stays deleted
	err = s.rdb.SetArgs(ctx, redisKey(sess.ID), raw, redis.SetArgs{Mode: "XX", KeepTTL: true}).Err()
	if errors.Is(err, redis.Nil) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	return nil
}
