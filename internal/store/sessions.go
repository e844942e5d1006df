package store

import (
	"context"
	"time"

	"github.com/monorkin/lab-roster/internal/models"
)

func (s *Store) CreateSession(ctx context.Context, session *models.Session) error {
	return s.create(ctx, session)
}

func (s *Store) FindSession(ctx context.Context, id string) (*models.Session, error) {
	var session models.Session
	if err := s.conn(ctx).Where("id = ?", id).First(&session).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *Store) RevokeSession(ctx context.Context, id string, at time.Time) error {
	return s.conn(ctx).
		Model(&models.Session{}).
		Where("id = ? AND revoked_at IS NULL", id).
		Update("revoked_at", at).Error
}

// PruneSessions deletes sessions that expired or were revoked before cutoff.
func (s *Store) PruneSessions(ctx context.Context, cutoff time.Time) (int64, error) {
	result := s.conn(ctx).
		Where("expires_at < ? OR revoked_at < ?", cutoff, cutoff).
		Delete(&models.Session{})
	return result.RowsAffected, result.Error
}
