package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) Generate(ctx context.Context, promptText string) (string, error) {
	args := m.Called(ctx, promptText)
	return args.String(0), args.Error(1)
}
