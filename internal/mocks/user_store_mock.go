package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/monorkin/lab-roster/internal/models"
)

type UserStore struct{ mock.Mock }

func (m *UserStore) FindUserByNumber(ctx context.Context, number int) (*models.User, error) {
	args := m.Called(ctx, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *UserStore) FindUserByID(ctx context.Context, id uint) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}
