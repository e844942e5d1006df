package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/monorkin/lab-roster/internal/models"
)

type SessionStore struct{ mock.Mock }

func (m *SessionStore) CreateSession(ctx context.Context, session *models.Session) error {
	return m.Called(ctx, session).Error(0)
}

func (m *SessionStore) FindSession(ctx context.Context, id string) (*models.Session, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Session), args.Error(1)
}

func (m *SessionStore) RevokeSession(ctx context.Context, id string, at time.Time) error {
	return m.Called(ctx, id, at).Error(0)
}
