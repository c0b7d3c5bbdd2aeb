package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"campus-complaints/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type gormStore struct {
	db *gorm.DB
}

// NewGormStore keeps sessions in the sessions table.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) Create(ctx context.Context, userID uint, ttl time.Duration) (*models.Session, error) {
	sess := models.Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		ExpiresAt: time.Now().Add(ttl),
	}
	if err := s.db.WithContext(ctx).Create(&sess).Error; err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return &sess, nil
}

func (s *gormStore) Get(ctx context.Context, id string) (*models.Session, error) {
	var sess models.Session
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&sess).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	return &sess, nil
}

func (s *gormStore) Revoke(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Model(&models.Session{}).
		Where("id = ?", id).
		Update("revoked", true).Error
}

func (s *gormStore) SetFlash(ctx context.Context, id, msg string) error {
	return s.db.WithContext(ctx).Model(&models.Session{}).
		Where("id = ?", id).
		Update("flash", msg).Error
}

func (s *gormStore) PopFlash(ctx context.Context, id string) (string, error) {
	var msg string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var sess models.Session
		if err := tx.Select("id", "flash").Where("id = ?", id).First(&sess).Error; err != nil {
			return err
		}
		msg = sess.Flash
		if msg == "" {
			return nil
		}
		return tx.Model(&models.Session{}).Where("id = ?", id).Update("flash", "").Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrNotFound
	}
	return msg, err
}

// PurgeExpired drops records past their expiry. Returns the number removed.
func PurgeExpired(ctx context.Context, db *gorm.DB, now time.Time) (int64, error) {
	res := db.WithContext(ctx).Where("expires_at < ? OR revoked = ?", now, true).Delete(&models.Session{})
	return res.RowsAffected, res.Error
}
