package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/adebayor/resumetable/internal/database"
)

type MockSessionStore struct {
	mock.Mock
}

func (m *MockSessionStore) CreateSession(ctx context.Context, arg database.CreateSessionParams) (database.Session, error) {
	args := m.Called(ctx, arg)
	return args.Get(0).(database.Session), args.Error(1)
}

func (m *MockSessionStore) CreateResume(ctx context.Context, arg database.CreateResumeParams) error {
	args := m.Called(ctx, arg)
	return args.Error(0)
}

func (m *MockSessionStore) GetSession(ctx context.Context, id uuid.UUID) (database.Session, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(database.Session), args.Error(1)
}

func (m *MockSessionStore) GetAnalysesResultsBySession(ctx context.Context, sessionID uuid.UUID) (database.AnalysesResult, error) {
	args := m.Called(ctx, sessionID)
	return args.Get(0).(database.AnalysesResult), args.Error(1)
}
